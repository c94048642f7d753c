package entities

import "sort"

// SkillID identifies one campaign skill
type SkillID string

// SkillTier is an unlockable tier within an experience cycle
type SkillTier string

// Skill tiers
const (
	SkillTierBlue   SkillTier = "blue"
	SkillTierYellow SkillTier = "yellow"
	SkillTierOrange SkillTier = "orange"
	SkillTierRed    SkillTier = "red"
)

// SkillSet holds per-tier skill identifier lists in selection order
type SkillSet struct {
	Yellow []SkillID
	Orange []SkillID
	Red    []SkillID
}

// Tier returns the list for one tier. Blue has no skills.
func (s *SkillSet) Tier(tier SkillTier) []SkillID {
	switch tier {
	case SkillTierYellow:
		return s.Yellow
	case SkillTierOrange:
		return s.Orange
	case SkillTierRed:
		return s.Red
	}
	return nil
}

// Add appends a skill to one tier's list
func (s *SkillSet) Add(tier SkillTier, id SkillID) {
	switch tier {
	case SkillTierYellow:
		s.Yellow = append(s.Yellow, id)
	case SkillTierOrange:
		s.Orange = append(s.Orange, id)
	case SkillTierRed:
		s.Red = append(s.Red, id)
	}
}

// Contains reports whether a tier's list holds the given skill
func (s *SkillSet) Contains(tier SkillTier, id SkillID) bool {
	for _, have := range s.Tier(tier) {
		if have == id {
			return true
		}
	}
	return false
}

// GameSession is the aggregate root tying an active play session to its
// deck states, card universe, inventory, and progression fields. It is
// created when a character starts play and archived when play ends.
type GameSession struct {
	ID          string
	CharacterID string
	PresetID    string

	CurrentExperience   int32
	CurrentHealth       int32
	ExtraInventorySlots int32
	AllInventoryActive  bool

	// AvailableSkills is the character's unlockable pool per tier;
	// SelectedSkills records what has been granted. Grants are permanent.
	AvailableSkills SkillSet
	SelectedSkills  SkillSet

	Decks     map[DeckType]*DeckState
	Cards     map[CardInstanceID]*CardInstance
	Inventory []*InventoryItem
	Override  *SessionDeckOverride

	CreatedAt int64
	UpdatedAt int64
}

// Deck returns the state for one deck type, or nil if absent
func (g *GameSession) Deck(dt DeckType) *DeckState {
	if g.Decks == nil {
		return nil
	}
	return g.Decks[dt]
}

// Card returns the instance for an id, or nil when it is not part of
// this session's universe.
func (g *GameSession) Card(id CardInstanceID) *CardInstance {
	if g.Cards == nil {
		return nil
	}
	return g.Cards[id]
}

// TotalInstances counts the card universe for one deck type
func (g *GameSession) TotalInstances(dt DeckType) int {
	n := 0
	for _, c := range g.Cards {
		if c.DeckType == dt {
			n++
		}
	}
	return n
}

// OutstandingCount is the number of instances drawn but not currently
// in remaining or discard: held by the player or placed in inventory.
func (g *GameSession) OutstandingCount(dt DeckType) int {
	deck := g.Deck(dt)
	if deck == nil {
		return 0
	}
	return g.TotalInstances(dt) - len(deck.Remaining) - len(deck.Discard)
}

// BackpackCapacity is the base capacity plus any earned extra slots
func (g *GameSession) BackpackCapacity() int32 {
	return BaseBackpackCapacity + g.ExtraInventorySlots
}

// SlotCapacity returns the capacity for a slot type
func (g *GameSession) SlotCapacity(slotType SlotType) int32 {
	if slotType == SlotTypeActive {
		return ActiveCapacity
	}
	return g.BackpackCapacity()
}

// ItemsBySlot returns the items in one slot type ordered by slot index
func (g *GameSession) ItemsBySlot(slotType SlotType) []*InventoryItem {
	var items []*InventoryItem
	for _, item := range g.Inventory {
		if item.SlotType == slotType {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SlotIndex < items[j].SlotIndex
	})
	return items
}

// InventoryItemByID returns the item with the given id, or nil
func (g *GameSession) InventoryItemByID(id string) *InventoryItem {
	for _, item := range g.Inventory {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// InventoryItemByInstance returns the item referencing a card instance,
// or nil when the instance is not in inventory.
func (g *GameSession) InventoryItemByInstance(id CardInstanceID) *InventoryItem {
	for _, item := range g.Inventory {
		if item.CardInstanceID == id {
			return item
		}
	}
	return nil
}

// NextFreeSlot returns the lowest unused slot index within a slot type
func (g *GameSession) NextFreeSlot(slotType SlotType) int32 {
	used := make(map[int32]bool)
	for _, item := range g.Inventory {
		if item.SlotType == slotType {
			used[item.SlotIndex] = true
		}
	}
	for i := int32(0); ; i++ {
		if !used[i] {
			return i
		}
	}
}

// RemoveInventoryItem deletes an item from the collection.
// Returns false when the item is not present.
func (g *GameSession) RemoveInventoryItem(id string) bool {
	for i, item := range g.Inventory {
		if item.ID == id {
			g.Inventory = append(g.Inventory[:i], g.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// EffectiveActiveItems returns the items counting as active for game
// rules. With AllInventoryActive set it is the union of both slot types;
// physical slot assignment is never altered by this read-side rule.
func (g *GameSession) EffectiveActiveItems() []*InventoryItem {
	if !g.AllInventoryActive {
		return g.ItemsBySlot(SlotTypeActive)
	}
	items := g.ItemsBySlot(SlotTypeActive)
	return append(items, g.ItemsBySlot(SlotTypeBackpack)...)
}
