package inventory

import "github.com/darkroot-games/warband-api/internal/entities"

// AddInput places an outstanding card into a slot type
type AddInput struct {
	SessionID      string
	CardInstanceID entities.CardInstanceID
	SlotType       entities.SlotType
}

// AddOutput contains the created item
type AddOutput struct {
	Item *entities.InventoryItem
}

// RemoveInput deletes an inventory item
type RemoveInput struct {
	SessionID string
	ItemID    string
	// DiscardToDeck routes the card instance to its deck's discard pile
	DiscardToDeck bool
}

// RemoveOutput is empty
type RemoveOutput struct{}

// MoveInput moves an item to the other slot type
type MoveInput struct {
	SessionID string
	ItemID    string
}

// MoveOutput contains the item after the move
type MoveOutput struct {
	Item *entities.InventoryItem
}

// ReplaceInput substitutes a new card instance into an item's slot
type ReplaceInput struct {
	SessionID         string
	ItemID            string
	NewCardInstanceID entities.CardInstanceID
	DiscardOldToDeck  bool
}

// ReplaceOutput contains the item after the substitution
type ReplaceOutput struct {
	Item *entities.InventoryItem
}

// GetInventoryInput identifies the session to read
type GetInventoryInput struct {
	SessionID string
}

// SlotGroup is one slot type's items plus its current capacity
type SlotGroup struct {
	Items    []*entities.InventoryItem
	Capacity int32
}

// GetInventoryOutput lists both slot groups
type GetInventoryOutput struct {
	Active   SlotGroup
	Backpack SlotGroup
}

// ActiveWeapon joins an inventory item with its catalog definition
type ActiveWeapon struct {
	Item       *entities.InventoryItem
	Definition *entities.WeaponDefinition
}

// GetEffectiveActiveWeaponsInput identifies the session to read
type GetEffectiveActiveWeaponsInput struct {
	SessionID string
}

// GetEffectiveActiveWeaponsOutput lists the weapons counting as active
type GetEffectiveActiveWeaponsOutput struct {
	Weapons []ActiveWeapon
}

// GetHistoryInput reads the audit log, optionally for one instance
type GetHistoryInput struct {
	SessionID      string
	CardInstanceID entities.CardInstanceID
}

// GetHistoryOutput lists events in chronological order
type GetHistoryOutput struct {
	Events []entities.InventoryEvent
}
