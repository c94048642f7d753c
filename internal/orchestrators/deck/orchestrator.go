package deck

//go:generate mockgen -destination=mock/mock_service.go -package=deckmock github.com/darkroot-games/warband-api/internal/orchestrators/deck Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/darkroot-games/warband-api/internal/catalog"
	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/orchestrators/customization"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	deckpresetrepo "github.com/darkroot-games/warband-api/internal/repositories/deck_preset"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
)

// Service defines the interface for deck operations
type Service interface {
	Draw(ctx context.Context, input *DrawInput) (*DrawOutput, error)
	DrawTwo(ctx context.Context, input *DrawTwoInput) (*DrawTwoOutput, error)
	Discard(ctx context.Context, input *DiscardInput) (*DiscardOutput, error)
	ReturnFromDiscard(ctx context.Context, input *ReturnFromDiscardInput) (*ReturnFromDiscardOutput, error)
	ReclaimDiscard(ctx context.Context, input *ReclaimDiscardInput) (*ReclaimDiscardOutput, error)
	ResetDeck(ctx context.Context, input *ResetDeckInput) (*ResetDeckOutput, error)
	GetDeckState(ctx context.Context, input *GetDeckStateInput) (*GetDeckStateOutput, error)
}

// Config holds the dependencies for the deck orchestrator
type Config struct {
	SessionRepo sessionrepo.Repository
	PresetRepo  deckpresetrepo.Repository
	Catalog     *catalog.Catalog
	IDGenerator idgen.Generator
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
	roller      dice.Roller
	clock       clock.Clock
	locks       *sessionlock.Keyed
}

// NewOrchestrator creates a new deck orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		sessionRepo: cfg.SessionRepo,
		presetRepo:  cfg.PresetRepo,
		catalog:     cfg.Catalog,
		idGen:       cfg.IDGenerator,
		roller:      cfg.DiceRoller,
		clock:       cfg.Clock,
		locks:       cfg.Locks,
	}, nil
}

// Draw pops the top card of a deck, reclaiming and reshuffling the
// discard pile first when remaining is empty. Exhaustion with cards
// still outstanding means the card universe leaked and is surfaced as
// a data loss error, never repaired by minting fresh instances.
func (o *orchestrator) Draw(ctx context.Context, input *DrawInput) (*DrawOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateDeckInput(input.SessionID, input.DeckType); err != nil {
		return nil, err
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, deckState, err := o.getDeck(ctx, input.SessionID, input.DeckType)
	if err != nil {
		return nil, err
	}

	card, reshuffled, err := o.drawOne(session, deckState)
	if err != nil {
		return nil, err
	}

	def, err := o.catalog.Get(card.DefinitionID)
	if err != nil {
		return nil, errors.Wrapf(err, "drawn card %s references unknown definition", card.ID)
	}

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist draw")
	}

	slog.Info("Card drawn",
		"session_id", session.ID,
		"deck_type", input.DeckType,
		"card_id", card.ID,
		"definition_id", card.DefinitionID,
		"reshuffled", reshuffled,
	)

	return &DrawOutput{Card: card, Definition: def, Reshuffled: reshuffled}, nil
}

// DrawTwo performs two sequential draws. Each draw may independently
// trigger a reshuffle, and each commits before the next begins, so a
// failing second draw leaves the first one persisted.
func (o *orchestrator) DrawTwo(ctx context.Context, input *DrawTwoInput) (*DrawTwoOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateDeckInput(input.SessionID, input.DeckType); err != nil {
		return nil, err
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, deckState, err := o.getDeck(ctx, input.SessionID, input.DeckType)
	if err != nil {
		return nil, err
	}

	output := &DrawTwoOutput{}
	for i := 0; i < 2; i++ {
		card, reshuffled, err := o.drawOne(session, deckState)
		if err != nil {
			return nil, err
		}

		if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
			return nil, errors.Wrap(err, "failed to persist draw")
		}

		output.Cards = append(output.Cards, card)
		if reshuffled {
			output.Reshuffles++
		}
	}

	return output, nil
}

// Discard pushes a drawn card onto the front of its deck's discard pile
func (o *orchestrator) Discard(ctx context.Context, input *DiscardInput) (*DiscardOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.CardInstanceID == "" {
		return nil, errors.InvalidArgument("card instance ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	card := session.Card(input.CardInstanceID)
	if card == nil {
		return nil, errors.NotFoundf("card instance %s not in session", input.CardInstanceID)
	}
	deckState := session.Deck(card.DeckType)
	if deckState == nil {
		return nil, errors.Internalf("session %s has no %s deck", session.ID, card.DeckType)
	}
	if item := session.InventoryItemByInstance(card.ID); item != nil {
		return nil, errors.FailedPreconditionf("card instance %s is held in inventory", card.ID)
	}
	if containsCard(deckState.Remaining, card.ID) || containsCard(deckState.Discard, card.ID) {
		return nil, errors.FailedPreconditionf("card instance %s is not outstanding", card.ID)
	}

	deckState.PushDiscard(card.ID)
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist discard")
	}

	return &DiscardOutput{Deck: deckState}, nil
}

// ReturnFromDiscard moves a card out of the discard pile back into
// remaining, at the top or the bottom.
func (o *orchestrator) ReturnFromDiscard(ctx context.Context, input *ReturnFromDiscardInput) (*ReturnFromDiscardOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.CardInstanceID == "" {
		return nil, errors.InvalidArgument("card instance ID is required")
	}
	if input.Position != PositionTop && input.Position != PositionBottom {
		return nil, errors.InvalidArgumentf("invalid position %q", input.Position)
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	card := session.Card(input.CardInstanceID)
	if card == nil {
		return nil, errors.NotFoundf("card instance %s not in session", input.CardInstanceID)
	}
	deckState := session.Deck(card.DeckType)
	if deckState == nil {
		return nil, errors.Internalf("session %s has no %s deck", session.ID, card.DeckType)
	}
	if !deckState.RemoveFromDiscard(card.ID) {
		return nil, errors.NotFoundf("card instance %s is not in the discard pile", card.ID)
	}

	if input.Position == PositionTop {
		deckState.ReturnToTop(card.ID)
	} else {
		deckState.ReturnToBottom(card.ID)
	}
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist return")
	}

	return &ReturnFromDiscardOutput{Deck: deckState}, nil
}

// ReclaimDiscard moves every discard card back into remaining,
// optionally reshuffling the result.
func (o *orchestrator) ReclaimDiscard(ctx context.Context, input *ReclaimDiscardInput) (*ReclaimDiscardOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateDeckInput(input.SessionID, input.DeckType); err != nil {
		return nil, err
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, deckState, err := o.getDeck(ctx, input.SessionID, input.DeckType)
	if err != nil {
		return nil, err
	}

	deckState.ReclaimDiscard()
	if input.Shuffle {
		if err := o.shuffleDeck(session, deckState); err != nil {
			return nil, err
		}
	}
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist reclaim")
	}

	return &ReclaimDiscardOutput{Deck: deckState}, nil
}

// ResetDeck rebuilds one deck's card universe from the catalog through
// the customization layers and shuffles it. Discard and draw history
// are cleared. Resetting is refused while inventory still references
// the deck's instances; those items must be removed first.
func (o *orchestrator) ResetDeck(ctx context.Context, input *ResetDeckInput) (*ResetDeckOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateDeckInput(input.SessionID, input.DeckType); err != nil {
		return nil, err
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	for _, item := range session.Inventory {
		card := session.Card(item.CardInstanceID)
		if card != nil && card.DeckType == input.DeckType {
			return nil, errors.FailedPreconditionf(
				"inventory still holds %s cards; remove them before resetting", input.DeckType)
		}
	}

	var preset *entities.DeckPreset
	if session.PresetID != "" {
		presetOutput, err := o.presetRepo.Get(ctx, deckpresetrepo.GetInput{ID: session.PresetID})
		if err != nil && !errors.IsNotFound(err) {
			return nil, errors.Wrap(err, "failed to get session preset")
		}
		if err == nil {
			preset = presetOutput.Preset
		}
	}

	resolved := customization.Resolve(o.catalog.Definitions(input.DeckType), preset, session.Override)
	now := o.clock.Now().Unix()
	cards, deckState, err := Build(input.DeckType, resolved, o.idGen, o.roller, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to rebuild deck")
	}

	for id, card := range session.Cards {
		if card.DeckType == input.DeckType {
			delete(session.Cards, id)
		}
	}
	if session.Cards == nil {
		session.Cards = make(map[entities.CardInstanceID]*entities.CardInstance, len(cards))
	}
	for _, card := range cards {
		session.Cards[card.ID] = card
	}
	if session.Decks == nil {
		session.Decks = make(map[entities.DeckType]*entities.DeckState)
	}
	session.Decks[input.DeckType] = deckState
	session.UpdatedAt = now

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist deck reset")
	}

	slog.Info("Deck reset",
		"session_id", session.ID,
		"deck_type", input.DeckType,
		"cards", len(cards),
	)

	return &ResetDeckOutput{Deck: deckState}, nil
}

// GetDeckState returns one deck's current state and derived counts
func (o *orchestrator) GetDeckState(ctx context.Context, input *GetDeckStateInput) (*GetDeckStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateDeckInput(input.SessionID, input.DeckType); err != nil {
		return nil, err
	}

	session, deckState, err := o.getDeck(ctx, input.SessionID, input.DeckType)
	if err != nil {
		return nil, err
	}

	return &GetDeckStateOutput{
		Deck:        deckState,
		Total:       session.TotalInstances(input.DeckType),
		Outstanding: session.OutstandingCount(input.DeckType),
	}, nil
}

// drawOne mutates the in-memory session for a single draw. The caller
// persists the session afterwards.
func (o *orchestrator) drawOne(session *entities.GameSession, deckState *entities.DeckState) (*entities.CardInstance, bool, error) {
	if err := verifyConservation(session, deckState); err != nil {
		return nil, false, err
	}

	reshuffled := false
	if len(deckState.Remaining) == 0 {
		if len(deckState.Discard) == 0 {
			return nil, false, errors.DataLossf(
				"deck %s exhausted with %d instances outstanding",
				deckState.DeckType, session.OutstandingCount(deckState.DeckType))
		}
		deckState.ReclaimDiscard()
		if err := o.shuffleDeck(session, deckState); err != nil {
			return nil, false, err
		}
		reshuffled = true
	}

	id, ok := deckState.TakeTop()
	if !ok {
		return nil, false, errors.DataLossf("deck %s has no cards", deckState.DeckType)
	}
	deckState.RecordDraw(id)
	now := o.clock.Now().Unix()
	deckState.LastDrawAt = now
	session.UpdatedAt = now

	card := session.Card(id)
	if card == nil {
		return nil, false, errors.DataLossf("drawn card %s is not in the session card universe", id)
	}
	return card, reshuffled, nil
}

func (o *orchestrator) shuffleDeck(session *entities.GameSession, deckState *entities.DeckState) error {
	err := Shuffle(o.roller, deckState.Remaining, func(id entities.CardInstanceID) entities.DefinitionID {
		card := session.Card(id)
		if card == nil {
			return ""
		}
		return card.DefinitionID
	})
	if err != nil {
		return err
	}
	deckState.LastShuffleAt = o.clock.Now().Unix()
	return nil
}

func (o *orchestrator) getSession(ctx context.Context, sessionID string) (*entities.GameSession, error) {
	output, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	return output.Session, nil
}

func (o *orchestrator) getDeck(ctx context.Context, sessionID string, deckType entities.DeckType) (*entities.GameSession, *entities.DeckState, error) {
	session, err := o.getSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	deckState := session.Deck(deckType)
	if deckState == nil {
		return nil, nil, errors.Internalf("session %s has no %s deck", sessionID, deckType)
	}
	return session, deckState, nil
}

// verifyConservation checks that the deck's card sequences reference
// the session's card universe exactly once each. A violation means
// state was corrupted somewhere and must never be papered over.
func verifyConservation(session *entities.GameSession, deckState *entities.DeckState) error {
	seen := make(map[entities.CardInstanceID]bool, len(deckState.Remaining)+len(deckState.Discard))
	for _, id := range append(append([]entities.CardInstanceID{}, deckState.Remaining...), deckState.Discard...) {
		if seen[id] {
			return errors.DataLossf("card instance %s appears twice in deck %s", id, deckState.DeckType)
		}
		seen[id] = true
		card := session.Card(id)
		if card == nil || card.DeckType != deckState.DeckType {
			return errors.DataLossf("card instance %s does not belong to deck %s", id, deckState.DeckType)
		}
		if item := session.InventoryItemByInstance(id); item != nil {
			return errors.DataLossf("card instance %s is both in deck %s and in inventory", id, deckState.DeckType)
		}
	}
	return nil
}

func validateDeckInput(sessionID string, deckType entities.DeckType) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("sessionID", sessionID, vb)
	if !deckType.Valid() {
		vb.Fieldf("deckType", "invalid deck type %q", deckType)
	}
	return vb.Build()
}

func containsCard(ids []entities.CardInstanceID, id entities.CardInstanceID) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}
