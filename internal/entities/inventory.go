package entities

// SlotType identifies the two inventory pools
type SlotType string

// Slot types
const (
	SlotTypeActive   SlotType = "active"
	SlotTypeBackpack SlotType = "backpack"
)

// Inventory capacities. Active is the two hands; backpack grows with
// the session's ExtraInventorySlots.
const (
	ActiveCapacity       = 2
	BaseBackpackCapacity = 3
)

// InventoryItem assigns a drawn card instance to an inventory slot.
// At most one item references a given card instance at a time.
type InventoryItem struct {
	ID             string
	SlotType       SlotType
	SlotIndex      int32
	CardInstanceID CardInstanceID
	IsEquipped     bool
	CreatedAt      int64
	UpdatedAt      int64
}

// InventoryEventType tags entries in the inventory audit log
type InventoryEventType string

// Inventory event types
const (
	InventoryEventAdd     InventoryEventType = "add"
	InventoryEventRemove  InventoryEventType = "remove"
	InventoryEventMove    InventoryEventType = "move"
	InventoryEventReplace InventoryEventType = "replace"
)

// InventoryEvent is an append-only audit log entry. Events are never
// mutated or deleted once written.
type InventoryEvent struct {
	ID             string
	EventType      InventoryEventType
	SlotType       SlotType
	FromSlotType   SlotType // set on move events only
	CardInstanceID CardInstanceID
	Timestamp      int64
}
