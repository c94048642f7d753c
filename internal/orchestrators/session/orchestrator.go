// Package session implements the game session lifecycle: creating a
// session with its three decks built and shuffled, ending it, and the
// session-scoped modifier flags.
package session

//go:generate mockgen -destination=mock/mock_service.go -package=sessionmock github.com/darkroot-games/warband-api/internal/orchestrators/session Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/darkroot-games/warband-api/internal/catalog"
	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/orchestrators/customization"
	"github.com/darkroot-games/warband-api/internal/orchestrators/deck"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	deckpresetrepo "github.com/darkroot-games/warband-api/internal/repositories/deck_preset"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
)

// Service defines the interface for session lifecycle operations
type Service interface {
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)
	EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error)
	SetHealth(ctx context.Context, input *SetHealthInput) (*SetHealthOutput, error)
	SetExtraInventorySlots(ctx context.Context, input *SetExtraInventorySlotsInput) (*SetExtraInventorySlotsOutput, error)
	SetAllInventoryActive(ctx context.Context, input *SetAllInventoryActiveInput) (*SetAllInventoryActiveOutput, error)
}

// Config holds the dependencies for the session orchestrator
type Config struct {
	SessionRepo sessionrepo.Repository
	PresetRepo  deckpresetrepo.Repository
	Catalog     *catalog.Catalog
	IDGenerator idgen.Generator
	CardIDGen   idgen.Generator
	DiceRoller  dice.Roller
	Clock       clock.Clock
	Locks       *sessionlock.Keyed
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.PresetRepo == nil {
		vb.RequiredField("PresetRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.CardIDGen == nil {
		vb.RequiredField("CardIDGen")
	}
	if c.DiceRoller == nil {
		vb.RequiredField("DiceRoller")
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
	sessionRepo sessionrepo.Repository
	presetRepo  deckpresetrepo.Repository
	catalog     *catalog.Catalog
	idGen       idgen.Generator
	cardIDGen   idgen.Generator
	roller      dice.Roller
	clock       clock.Clock
	locks       *sessionlock.Keyed
}

// NewOrchestrator creates a new session orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		sessionRepo: cfg.SessionRepo,
		presetRepo:  cfg.PresetRepo,
		catalog:     cfg.Catalog,
		idGen:       cfg.IDGenerator,
		cardIDGen:   cfg.CardIDGen,
		roller:      cfg.DiceRoller,
		clock:       cfg.Clock,
		locks:       cfg.Locks,
	}, nil
}

// CreateSession starts play for a character: all three decks are built
// through the customization layers and shuffled. When no preset is
// named the current default preset applies; having no default at all
// means catalog defaults.
func (o *orchestrator) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterID", input.CharacterID, vb)
	if input.StartingHealth < 0 {
		vb.Field("startingHealth", "cannot be negative")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	preset, err := o.resolvePreset(ctx, input.PresetID)
	if err != nil {
		return nil, err
	}

	now := o.clock.Now().Unix()
	session := &entities.GameSession{
		ID:              o.idGen.Generate(),
		CharacterID:     input.CharacterID,
		CurrentHealth:   input.StartingHealth,
		AvailableSkills: input.AvailableSkills,
		Decks:           make(map[entities.DeckType]*entities.DeckState, len(entities.AllDeckTypes)),
		Cards:           make(map[entities.CardInstanceID]*entities.CardInstance),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if preset != nil {
		session.PresetID = preset.ID
	}

	for _, deckType := range entities.AllDeckTypes {
		resolved := customization.Resolve(o.catalog.Definitions(deckType), preset, nil)
		cards, state, err := deck.Build(deckType, resolved, o.cardIDGen, o.roller, now)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build %s deck", deckType)
		}
		session.Decks[deckType] = state
		for _, card := range cards {
			session.Cards[card.ID] = card
		}
	}

	if _, err := o.sessionRepo.Create(ctx, sessionrepo.CreateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	if preset != nil {
		preset.LastUsedAt = now
		if _, err := o.presetRepo.Update(ctx, deckpresetrepo.UpdateInput{Preset: preset}); err != nil {
			slog.Warn("Failed to stamp preset last-used time",
				"preset_id", preset.ID,
				"error", err,
			)
		}
	}

	slog.Info("Session created",
		"session_id", session.ID,
		"character_id", session.CharacterID,
		"preset_id", session.PresetID,
		"cards", len(session.Cards),
	)

	return &CreateSessionOutput{Session: session}, nil
}

// GetSession retrieves one session
func (o *orchestrator) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	output, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}

	return &GetSessionOutput{Session: output.Session}, nil
}

// EndSession removes the session, its decks, and its event log
func (o *orchestrator) EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	if _, err := o.sessionRepo.Delete(ctx, sessionrepo.DeleteInput{ID: input.SessionID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete session")
	}

	slog.Info("Session ended", "session_id", input.SessionID)
	return &EndSessionOutput{}, nil
}

// SetHealth sets the session's current health
func (o *orchestrator) SetHealth(ctx context.Context, input *SetHealthInput) (*SetHealthOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.Health < 0 {
		return nil, errors.InvalidArgument("health cannot be negative")
	}

	session, err := o.mutate(ctx, input.SessionID, func(session *entities.GameSession) {
		session.CurrentHealth = input.Health
	})
	if err != nil {
		return nil, err
	}
	return &SetHealthOutput{Session: session}, nil
}

// SetExtraInventorySlots sets the earned backpack growth. Shrinking
// below the number of occupied backpack slots is refused.
func (o *orchestrator) SetExtraInventorySlots(ctx context.Context, input *SetExtraInventorySlotsInput) (*SetExtraInventorySlotsOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.Slots < 0 {
		return nil, errors.InvalidArgument("slot count cannot be negative")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	output, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	session := output.Session

	occupied := int32(len(session.ItemsBySlot(entities.SlotTypeBackpack)))
	if entities.BaseBackpackCapacity+input.Slots < occupied {
		return nil, errors.FailedPreconditionf(
			"%d backpack items exceed the reduced capacity", occupied)
	}

	session.ExtraInventorySlots = input.Slots
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist slot change")
	}

	return &SetExtraInventorySlotsOutput{Session: session}, nil
}

// SetAllInventoryActive toggles the modifier that makes every inventory
// item count as active for game rules.
func (o *orchestrator) SetAllInventoryActive(ctx context.Context, input *SetAllInventoryActiveInput) (*SetAllInventoryActiveOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	session, err := o.mutate(ctx, input.SessionID, func(session *entities.GameSession) {
		session.AllInventoryActive = input.Active
	})
	if err != nil {
		return nil, err
	}
	return &SetAllInventoryActiveOutput{Session: session}, nil
}

// mutate applies a simple field change under the session lock
func (o *orchestrator) mutate(ctx context.Context, sessionID string, apply func(*entities.GameSession)) (*entities.GameSession, error) {
	unlock := o.locks.Acquire(sessionID)
	defer unlock()

	output, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	session := output.Session

	apply(session)
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist session")
	}

	return session, nil
}

// resolvePreset loads the named preset, or falls back to the default.
// No default configured means pure catalog defaults.
func (o *orchestrator) resolvePreset(ctx context.Context, presetID string) (*entities.DeckPreset, error) {
	if presetID != "" {
		output, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: presetID})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get preset")
		}
		return output.Preset, nil
	}

	output, err := o.presetRepo.GetDefault(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get default preset")
	}
	return output.Preset, nil
}
