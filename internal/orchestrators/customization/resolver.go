package customization

import (
	"sort"

	"github.com/darkroot-games/warband-api/internal/entities"
)

// ResolvedDefinition is one (definition, effective count) pair, the
// direct input to deck building.
type ResolvedDefinition struct {
	Definition entities.WeaponDefinition
	Count      int32
}

// EffectiveEnabled resolves the enabled flag for one definition through
// the override > preset > default precedence chain. A layer only
// participates when it has an explicit entry for the definition.
func EffectiveEnabled(def *entities.WeaponDefinition, preset *entities.DeckPreset, override *entities.SessionDeckOverride) bool {
	if def.Deprecated {
		return false
	}
	if c := override.CustomizationFor(def.ID); c != nil {
		return c.IsEnabled
	}
	if preset != nil {
		if c := preset.CustomizationFor(def.ID); c != nil {
			return c.IsEnabled
		}
	}
	return true
}

// EffectiveCount resolves the copy count for one definition. A layer's
// entry only overrides the count when it carries an explicit count.
func EffectiveCount(def *entities.WeaponDefinition, preset *entities.DeckPreset, override *entities.SessionDeckOverride) int32 {
	if c := override.CustomizationFor(def.ID); c != nil && c.CustomCount != nil {
		return *c.CustomCount
	}
	if preset != nil {
		if c := preset.CustomizationFor(def.ID); c != nil && c.CustomCount != nil {
			return *c.CustomCount
		}
	}
	return def.DefaultCount
}

// Resolve applies the customization layers to an ordered definition
// list, dropping deprecated, disabled, and zero-count definitions. The
// result keeps the input order.
func Resolve(defs []entities.WeaponDefinition, preset *entities.DeckPreset, override *entities.SessionDeckOverride) []ResolvedDefinition {
	resolved := make([]ResolvedDefinition, 0, len(defs))
	for i := range defs {
		def := defs[i]
		if !EffectiveEnabled(&def, preset, override) {
			continue
		}
		count := EffectiveCount(&def, preset, override)
		if count <= 0 {
			continue
		}
		resolved = append(resolved, ResolvedDefinition{Definition: def, Count: count})
	}
	return resolved
}

// Diff describes how one customized definition deviates from its
// baseline one layer below.
type Diff struct {
	DefinitionID   entities.DefinitionID
	DefinitionName string
	Enabled        bool
	EnabledChanged bool
	Count          int32
	BaseCount      int32
	CountChanged   bool
}

// lookup resolves a definition's display name; unknown ids keep their
// raw id so diffs stay renderable after catalog changes.
type lookup interface {
	Get(id entities.DefinitionID) (*entities.WeaponDefinition, error)
}

func definitionName(cat lookup, id entities.DefinitionID) string {
	def, err := cat.Get(id)
	if err != nil {
		return string(id)
	}
	return def.Name
}

// DiffsFromDefault compares a preset's customizations against the
// catalog defaults. Entries for unknown definitions are skipped.
// Results are sorted by definition name.
func DiffsFromDefault(cat lookup, preset *entities.DeckPreset) []Diff {
	var diffs []Diff
	for i := range preset.Customizations {
		c := preset.Customizations[i]
		def, err := cat.Get(c.DefinitionID)
		if err != nil {
			continue
		}

		d := Diff{
			DefinitionID:   c.DefinitionID,
			DefinitionName: def.Name,
			Enabled:        c.IsEnabled,
			EnabledChanged: c.IsEnabled != !def.Deprecated,
			Count:          def.DefaultCount,
			BaseCount:      def.DefaultCount,
		}
		if c.CustomCount != nil {
			d.Count = *c.CustomCount
			d.CountChanged = *c.CustomCount != def.DefaultCount
		}
		if d.EnabledChanged || d.CountChanged {
			diffs = append(diffs, d)
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].DefinitionName < diffs[j].DefinitionName
	})
	return diffs
}

// SessionOverrideDiffs compares a session override against its base
// preset layer (or catalog defaults where the preset is silent).
// Results are sorted by definition name.
func SessionOverrideDiffs(cat lookup, override *entities.SessionDeckOverride, basePreset *entities.DeckPreset) []Diff {
	if override == nil {
		return nil
	}

	var diffs []Diff
	for i := range override.Customizations {
		c := override.Customizations[i]
		def, err := cat.Get(c.DefinitionID)
		if err != nil {
			continue
		}

		baseEnabled := EffectiveEnabled(def, basePreset, nil)
		baseCount := EffectiveCount(def, basePreset, nil)

		d := Diff{
			DefinitionID:   c.DefinitionID,
			DefinitionName: def.Name,
			Enabled:        c.IsEnabled,
			EnabledChanged: c.IsEnabled != baseEnabled,
			Count:          baseCount,
			BaseCount:      baseCount,
		}
		if c.CustomCount != nil {
			d.Count = *c.CustomCount
			d.CountChanged = *c.CustomCount != baseCount
		}
		if d.EnabledChanged || d.CountChanged {
			diffs = append(diffs, d)
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].DefinitionName < diffs[j].DefinitionName
	})
	return diffs
}
