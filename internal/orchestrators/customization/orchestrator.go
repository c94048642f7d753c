// Package customization implements deck customization: the layered
// override > preset > default resolution, preset lifecycle, diffing,
// and portable preset export/import.
package customization

//go:generate mockgen -destination=mock/mock_service.go -package=customizationmock github.com/darkroot-games/warband-api/internal/orchestrators/customization Service

import (
	"context"
	"log/slog"

	"github.com/darkroot-games/warband-api/internal/catalog"
	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	deckpresetrepo "github.com/darkroot-games/warband-api/internal/repositories/deck_preset"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
)

// Service defines the interface for customization operations
type Service interface {
	// Preset lifecycle
	CreatePreset(ctx context.Context, input *CreatePresetInput) (*CreatePresetOutput, error)
	GetPreset(ctx context.Context, input *GetPresetInput) (*GetPresetOutput, error)
	ListPresets(ctx context.Context, input *ListPresetsInput) (*ListPresetsOutput, error)
	SetDefaultPreset(ctx context.Context, input *SetDefaultPresetInput) (*SetDefaultPresetOutput, error)
	DeletePreset(ctx context.Context, input *DeletePresetInput) (*DeletePresetOutput, error)

	// Customization editing
	SetCustomization(ctx context.Context, input *SetCustomizationInput) (*SetCustomizationOutput, error)
	SetSessionCustomization(ctx context.Context, input *SetSessionCustomizationInput) (*SetSessionCustomizationOutput, error)
	ClearSessionCustomization(ctx context.Context, input *ClearSessionCustomizationInput) (*ClearSessionCustomizationOutput, error)

	// Diffing
	PresetDiffs(ctx context.Context, input *PresetDiffsInput) (*PresetDiffsOutput, error)
	OverrideDiffs(ctx context.Context, input *OverrideDiffsInput) (*OverrideDiffsOutput, error)

	// Portable preset format
	ExportPreset(ctx context.Context, input *ExportPresetInput) (*ExportPresetOutput, error)
	ImportPreset(ctx context.Context, input *ImportPresetInput) (*ImportPresetOutput, error)
}

// Config holds the dependencies for the customization orchestrator
type Config struct {
	PresetRepo  deckpresetrepo.Repository
	SessionRepo sessionrepo.Repository
	Catalog     *catalog.Catalog
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Locks       *sessionlock.Keyed
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.PresetRepo == nil {
		vb.RequiredField("PresetRepo")
	}
	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.Locks == nil {
		vb.RequiredField("Locks")
	}

	return vb.Build()
}

var _ Service = (*orchestrator)(nil)

type orchestrator struct {
	presetRepo  deckpresetrepo.Repository
	sessionRepo sessionrepo.Repository
	catalog     *catalog.Catalog
	idGen       idgen.Generator
	clock       clock.Clock
	locks       *sessionlock.Keyed
}

// NewOrchestrator creates a new customization orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		presetRepo:  cfg.PresetRepo,
		sessionRepo: cfg.SessionRepo,
		catalog:     cfg.Catalog,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
		locks:       cfg.Locks,
	}, nil
}

// CreatePreset creates a new preset, optionally deep-copying another
// preset's customizations.
func (o *orchestrator) CreatePreset(ctx context.Context, input *CreatePresetInput) (*CreatePresetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", input.Name, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	now := o.clock.Now().Unix()
	preset := &entities.DeckPreset{
		ID:          o.idGen.Generate(),
		Name:        input.Name,
		Description: input.Description,
		IsDefault:   input.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.BasedOnID != "" {
		baseOutput, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: input.BasedOnID})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get base preset")
		}
		preset.Customizations = make([]entities.Customization, len(baseOutput.Preset.Customizations))
		copy(preset.Customizations, baseOutput.Preset.Customizations)
	}

	if _, err := o.presetRepo.Create(ctx, deckpresetrepo.CreateInput{Preset: preset}); err != nil {
		return nil, errors.Wrap(err, "failed to create preset")
	}

	slog.Info("Preset created",
		"preset_id", preset.ID,
		"name", preset.Name,
		"is_default", preset.IsDefault,
		"based_on", input.BasedOnID,
	)

	return &CreatePresetOutput{Preset: preset}, nil
}

// GetPreset retrieves one preset
func (o *orchestrator) GetPreset(ctx context.Context, input *GetPresetInput) (*GetPresetOutput, error) {
	if input == nil || input.PresetID == "" {
		return nil, errors.InvalidArgument("preset ID is required")
	}

	output, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: input.PresetID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get preset")
	}

	return &GetPresetOutput{Preset: output.Preset}, nil
}

// ListPresets lists all presets ordered by name
func (o *orchestrator) ListPresets(ctx context.Context, _ *ListPresetsInput) (*ListPresetsOutput, error) {
	output, err := o.presetRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list presets")
	}

	return &ListPresetsOutput{Presets: output.Presets}, nil
}

// SetDefaultPreset marks a preset as default, unsetting any prior one
func (o *orchestrator) SetDefaultPreset(ctx context.Context, input *SetDefaultPresetInput) (*SetDefaultPresetOutput, error) {
	if input == nil || input.PresetID == "" {
		return nil, errors.InvalidArgument("preset ID is required")
	}

	if _, err := o.presetRepo.SetDefault(ctx, deckpresetrepo.SetDefaultInput{ID: input.PresetID}); err != nil {
		return nil, errors.Wrap(err, "failed to set default preset")
	}

	return &SetDefaultPresetOutput{}, nil
}

// DeletePreset removes a preset. Deleting the sole preset while it is
// the default is refused so the last baseline configuration survives.
func (o *orchestrator) DeletePreset(ctx context.Context, input *DeletePresetInput) (*DeletePresetOutput, error) {
	if input == nil || input.PresetID == "" {
		return nil, errors.InvalidArgument("preset ID is required")
	}

	listOutput, err := o.presetRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list presets")
	}
	if len(listOutput.Presets) == 1 &&
		listOutput.Presets[0].ID == input.PresetID &&
		listOutput.Presets[0].IsDefault {
		return nil, errors.FailedPrecondition("cannot delete the last default preset").
			WithMeta("preset_id", input.PresetID)
	}

	if _, err := o.presetRepo.Delete(ctx, deckpresetrepo.DeleteInput{ID: input.PresetID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete preset")
	}

	return &DeletePresetOutput{}, nil
}

// SetCustomization upserts one customization entry on a preset
func (o *orchestrator) SetCustomization(ctx context.Context, input *SetCustomizationInput) (*SetCustomizationOutput, error) {
	if input == nil || input.PresetID == "" {
		return nil, errors.InvalidArgument("preset ID is required")
	}
	if input.Customization.DefinitionID == "" {
		return nil, errors.InvalidArgument("definition ID is required")
	}
	if !o.catalog.Has(input.Customization.DefinitionID) {
		return nil, errors.NotFoundf("definition %s not in catalog", input.Customization.DefinitionID)
	}

	getOutput, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: input.PresetID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get preset")
	}

	preset := getOutput.Preset
	upsertCustomization(&preset.Customizations, input.Customization)
	now := o.clock.Now().Unix()
	preset.LastUsedAt = now
	preset.UpdatedAt = now

	if _, err := o.presetRepo.Update(ctx, deckpresetrepo.UpdateInput{Preset: preset}); err != nil {
		return nil, errors.Wrap(err, "failed to update preset")
	}

	return &SetCustomizationOutput{Preset: preset}, nil
}

// SetSessionCustomization upserts one customization entry on a
// session's override set, creating the set lazily.
func (o *orchestrator) SetSessionCustomization(ctx context.Context, input *SetSessionCustomizationInput) (*SetSessionCustomizationOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.Customization.DefinitionID == "" {
		return nil, errors.InvalidArgument("definition ID is required")
	}
	if !o.catalog.Has(input.Customization.DefinitionID) {
		return nil, errors.NotFoundf("definition %s not in catalog", input.Customization.DefinitionID)
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	getOutput, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}

	session := getOutput.Session
	now := o.clock.Now().Unix()
	if session.Override == nil {
		session.Override = &entities.SessionDeckOverride{CreatedAt: now}
	}
	upsertCustomization(&session.Override.Customizations, input.Customization)
	session.Override.UpdatedAt = now
	session.UpdatedAt = now

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to update session")
	}

	return &SetSessionCustomizationOutput{Override: session.Override}, nil
}

// ClearSessionCustomization removes one entry from a session's override
// set; removing the last entry discards the set entirely.
func (o *orchestrator) ClearSessionCustomization(ctx context.Context, input *ClearSessionCustomizationInput) (*ClearSessionCustomizationOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.DefinitionID == "" {
		return nil, errors.InvalidArgument("definition ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	getOutput, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}

	session := getOutput.Session
	if session.Override == nil {
		return &ClearSessionCustomizationOutput{}, nil
	}

	removed := false
	for i := range session.Override.Customizations {
		if session.Override.Customizations[i].DefinitionID == input.DefinitionID {
			session.Override.Customizations = append(
				session.Override.Customizations[:i],
				session.Override.Customizations[i+1:]...,
			)
			removed = true
			break
		}
	}
	if !removed {
		return &ClearSessionCustomizationOutput{Override: session.Override}, nil
	}

	now := o.clock.Now().Unix()
	if len(session.Override.Customizations) == 0 {
		session.Override = nil
	} else {
		session.Override.UpdatedAt = now
	}
	session.UpdatedAt = now

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to update session")
	}

	return &ClearSessionCustomizationOutput{Override: session.Override}, nil
}

// PresetDiffs computes a preset's deviations from catalog defaults
func (o *orchestrator) PresetDiffs(ctx context.Context, input *PresetDiffsInput) (*PresetDiffsOutput, error) {
	if input == nil || input.PresetID == "" {
		return nil, errors.InvalidArgument("preset ID is required")
	}

	getOutput, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: input.PresetID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get preset")
	}

	return &PresetDiffsOutput{Diffs: DiffsFromDefault(o.catalog, getOutput.Preset)}, nil
}

// OverrideDiffs computes a session override's deviations from its base
// preset layer.
func (o *orchestrator) OverrideDiffs(ctx context.Context, input *OverrideDiffsInput) (*OverrideDiffsOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	getOutput, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	session := getOutput.Session

	var basePreset *entities.DeckPreset
	if session.PresetID != "" {
		presetOutput, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: session.PresetID})
		if err != nil && !errors.IsNotFound(err) {
			return nil, errors.Wrap(err, "failed to get base preset")
		}
		if err == nil {
			basePreset = presetOutput.Preset
		}
	}

	return &OverrideDiffsOutput{
		Diffs: SessionOverrideDiffs(o.catalog, session.Override, basePreset),
	}, nil
}

// upsertCustomization replaces or appends one entry keyed by definition
func upsertCustomization(list *[]entities.Customization, c entities.Customization) {
	for i := range *list {
		if (*list)[i].DefinitionID == c.DefinitionID {
			(*list)[i] = c
			return
		}
	}
	*list = append(*list, c)
}
