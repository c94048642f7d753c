package customization

import "github.com/darkroot-games/warband-api/internal/entities"

// CreatePresetInput defines a new preset
type CreatePresetInput struct {
	Name        string
	Description string
	IsDefault   bool
	// BasedOnID optionally names a preset whose customizations are copied
	BasedOnID string
}

// CreatePresetOutput contains the created preset
type CreatePresetOutput struct {
	Preset *entities.DeckPreset
}

// GetPresetInput identifies a preset to fetch
type GetPresetInput struct {
	PresetID string
}

// GetPresetOutput contains the fetched preset
type GetPresetOutput struct {
	Preset *entities.DeckPreset
}

// ListPresetsInput has no fields yet
type ListPresetsInput struct{}

// ListPresetsOutput contains all presets ordered by name
type ListPresetsOutput struct {
	Presets []*entities.DeckPreset
}

// SetDefaultPresetInput identifies the preset to mark default
type SetDefaultPresetInput struct {
	PresetID string
}

// SetDefaultPresetOutput is empty
type SetDefaultPresetOutput struct{}

// DeletePresetInput identifies the preset to delete
type DeletePresetInput struct {
	PresetID string
}

// DeletePresetOutput is empty
type DeletePresetOutput struct{}

// SetCustomizationInput upserts one entry on a preset
type SetCustomizationInput struct {
	PresetID      string
	Customization entities.Customization
}

// SetCustomizationOutput contains the updated preset
type SetCustomizationOutput struct {
	Preset *entities.DeckPreset
}

// SetSessionCustomizationInput upserts one entry on a session override
type SetSessionCustomizationInput struct {
	SessionID     string
	Customization entities.Customization
}

// SetSessionCustomizationOutput contains the session's override set
type SetSessionCustomizationOutput struct {
	Override *entities.SessionDeckOverride
}

// ClearSessionCustomizationInput removes one entry from a session override
type ClearSessionCustomizationInput struct {
	SessionID    string
	DefinitionID entities.DefinitionID
}

// ClearSessionCustomizationOutput contains the remaining override set,
// nil when the last entry was removed.
type ClearSessionCustomizationOutput struct {
	Override *entities.SessionDeckOverride
}

// PresetDiffsInput identifies the preset to diff against defaults
type PresetDiffsInput struct {
	PresetID string
}

// PresetDiffsOutput lists deviations ordered by definition name
type PresetDiffsOutput struct {
	Diffs []Diff
}

// OverrideDiffsInput identifies the session whose override to diff
type OverrideDiffsInput struct {
	SessionID string
}

// OverrideDiffsOutput lists deviations ordered by definition name
type OverrideDiffsOutput struct {
	Diffs []Diff
}

// ExportPresetInput identifies the preset to export
type ExportPresetInput struct {
	PresetID string
}

// ExportPresetOutput carries the portable JSON document
type ExportPresetOutput struct {
	Data []byte
}

// ImportPresetInput carries a portable JSON document to import
type ImportPresetInput struct {
	Data []byte
}

// ImportPresetOutput contains the created preset and any definition IDs
// skipped because they are unknown to this catalog.
type ImportPresetOutput struct {
	Preset             *entities.DeckPreset
	SkippedDefinitions []entities.DefinitionID
}
