package customization

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	deckpresetrepo "github.com/darkroot-games/warband-api/internal/repositories/deck_preset"
)

// portablePreset is the JSON shape presets travel in between
// installations. Identity and default status stay behind.
type portablePreset struct {
	Name           string                  `json:"name"`
	Description    string                  `json:"description,omitempty"`
	Customizations []portableCustomization `json:"customizations"`
}

type portableCustomization struct {
	DefinitionID string `json:"definitionId"`
	IsEnabled    bool   `json:"isEnabled"`
	CustomCount  *int32 `json:"customCount,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ExportPreset serializes a preset to the portable JSON format
func (o *orchestrator) ExportPreset(ctx context.Context, input *ExportPresetInput) (*ExportPresetOutput, error) {
	if input == nil || input.PresetID == "" {
		return nil, errors.InvalidArgument("preset ID is required")
	}

	getOutput, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: input.PresetID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get preset")
	}
	preset := getOutput.Preset

	portable := portablePreset{
		Name:           preset.Name,
		Description:    preset.Description,
		Customizations: make([]portableCustomization, 0, len(preset.Customizations)),
	}
	for _, c := range preset.Customizations {
		portable.Customizations = append(portable.Customizations, portableCustomization{
			DefinitionID: string(c.DefinitionID),
			IsEnabled:    c.IsEnabled,
			CustomCount:  c.CustomCount,
			Notes:        c.Notes,
		})
	}

	data, err := json.Marshal(portable)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal preset %s", preset.ID)
	}

	return &ExportPresetOutput{Data: data}, nil
}

// ImportPreset creates a preset from the portable JSON format. Entries
// whose definitions are not in this installation's catalog are skipped
// and reported rather than failing the whole import.
func (o *orchestrator) ImportPreset(ctx context.Context, input *ImportPresetInput) (*ImportPresetOutput, error) {
	if input == nil || len(input.Data) == 0 {
		return nil, errors.InvalidArgument("import data is required")
	}

	var portable portablePreset
	if err := json.Unmarshal(input.Data, &portable); err != nil {
		return nil, errors.InvalidArgument("malformed preset data").WithMeta("parse_error", err.Error())
	}
	if portable.Name == "" {
		return nil, errors.InvalidArgument("imported preset has no name")
	}

	var skipped []entities.DefinitionID
	customizations := make([]entities.Customization, 0, len(portable.Customizations))
	for _, pc := range portable.Customizations {
		defID := entities.DefinitionID(pc.DefinitionID)
		if !o.catalog.Has(defID) {
			slog.Warn("Skipping unknown definition during preset import",
				"definition_id", defID,
				"preset_name", portable.Name,
			)
			skipped = append(skipped, defID)
			continue
		}
		customizations = append(customizations, entities.Customization{
			DefinitionID: defID,
			IsEnabled:    pc.IsEnabled,
			CustomCount:  pc.CustomCount,
			Notes:        pc.Notes,
		})
	}

	now := o.clock.Now().Unix()
	preset := &entities.DeckPreset{
		ID:             o.idGen.Generate(),
		Name:           portable.Name,
		Description:    portable.Description,
		Customizations: customizations,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := o.presetRepo.Create(ctx, deckpresetrepo.CreateInput{Preset: preset}); err != nil {
		return nil, errors.Wrap(err, "failed to create imported preset")
	}

	slog.Info("Preset imported",
		"preset_id", preset.ID,
		"name", preset.Name,
		"customizations", len(customizations),
		"skipped", len(skipped),
	)

	return &ImportPresetOutput{Preset: preset, SkippedDefinitions: skipped}, nil
}
