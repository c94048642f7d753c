// Package entities implements the warband session domain entities.
// These are data-only structs; rules live in the orchestrators.
package entities

import "fmt"

// DeckType identifies one of the three logical weapon card pools
type DeckType string

// Deck types
const (
	DeckTypeStarting DeckType = "starting"
	DeckTypeRegular  DeckType = "regular"
	DeckTypeUltrared DeckType = "ultrared"
)

// AllDeckTypes lists every deck type in build order
var AllDeckTypes = []DeckType{DeckTypeStarting, DeckTypeRegular, DeckTypeUltrared}

// Valid reports whether dt is a known deck type
func (dt DeckType) Valid() bool {
	switch dt {
	case DeckTypeStarting, DeckTypeRegular, DeckTypeUltrared:
		return true
	}
	return false
}

// DefinitionID is the deterministic composite identifier of a weapon
// definition: deckType:name:set. It is stable across catalog reloads,
// which is what keeps exported presets portable. It is not a database
// surrogate key.
type DefinitionID string

// MakeDefinitionID composes the stable identifier for a definition
func MakeDefinitionID(deckType DeckType, name, set string) DefinitionID {
	return DefinitionID(fmt.Sprintf("%s:%s:%s", deckType, name, set))
}

// WeaponStats is the combat payload carried by a definition. The engine
// never interprets these; they ride along for the game-rule layer.
type WeaponStats struct {
	Attack   int32
	Block    int32
	Range    int32
	Keywords []string
}

// WeaponDefinition is an immutable weapon catalog entry
type WeaponDefinition struct {
	ID           DefinitionID
	Name         string
	Set          string
	DeckType     DeckType
	Category     string
	DefaultCount int32
	Stats        WeaponStats
	Deprecated   bool
}

// Customization overrides the enabled flag and, optionally, the copy
// count of a single definition. It is owned by exactly one DeckPreset or
// one SessionDeckOverride, never both.
type Customization struct {
	DefinitionID DefinitionID
	IsEnabled    bool
	CustomCount  *int32
	Notes        string
}

// DeckPreset is a named, reusable customization set applied when
// building a deck. At most one preset is the default at any time.
type DeckPreset struct {
	ID             string
	Name           string
	Description    string
	IsDefault      bool
	Customizations []Customization
	LastUsedAt     int64
	CreatedAt      int64
	UpdatedAt      int64
}

// CustomizationFor returns the preset's entry for the given definition,
// or nil when the preset does not customize it.
func (p *DeckPreset) CustomizationFor(id DefinitionID) *Customization {
	for i := range p.Customizations {
		if p.Customizations[i].DefinitionID == id {
			return &p.Customizations[i]
		}
	}
	return nil
}

// SessionDeckOverride is an ephemeral customization set scoped to one
// game session. It outranks any preset and is created lazily.
type SessionDeckOverride struct {
	Customizations []Customization
	CreatedAt      int64
	UpdatedAt      int64
}

// CustomizationFor returns the override's entry for the given
// definition, or nil when the override does not customize it.
func (o *SessionDeckOverride) CustomizationFor(id DefinitionID) *Customization {
	if o == nil {
		return nil
	}
	for i := range o.Customizations {
		if o.Customizations[i].DefinitionID == id {
			return &o.Customizations[i]
		}
	}
	return nil
}
