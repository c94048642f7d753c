// Package inventory implements the capacity-constrained weapon slots:
// the two active hands, the growable backpack, move/replace semantics,
// and the append-only audit history.
package inventory

//go:generate mockgen -destination=mock/mock_service.go -package=inventorymock github.com/darkroot-games/warband-api/internal/orchestrators/inventory Service

import (
	"context"
	"log/slog"

	"github.com/darkroot-games/warband-api/internal/catalog"
	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
)

// Service defines the interface for inventory operations
type Service interface {
	Add(ctx context.Context, input *AddInput) (*AddOutput, error)
	Remove(ctx context.Context, input *RemoveInput) (*RemoveOutput, error)
	Move(ctx context.Context, input *MoveInput) (*MoveOutput, error)
	Replace(ctx context.Context, input *ReplaceInput) (*ReplaceOutput, error)
	GetInventory(ctx context.Context, input *GetInventoryInput) (*GetInventoryOutput, error)
	GetEffectiveActiveWeapons(ctx context.Context, input *GetEffectiveActiveWeaponsInput) (*GetEffectiveActiveWeaponsOutput, error)
	GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error)
}

// Config holds the dependencies for the inventory orchestrator
type Config struct {
	SessionRepo sessionrepo.Repository
	Catalog     *catalog.Catalog
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Locks       *sessionlock.Keyed
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

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
	sessionRepo sessionrepo.Repository
	catalog     *catalog.Catalog
	idGen       idgen.Generator
	clock       clock.Clock
	locks       *sessionlock.Keyed
}

// NewOrchestrator creates a new inventory orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		sessionRepo: cfg.SessionRepo,
		catalog:     cfg.Catalog,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
		locks:       cfg.Locks,
	}, nil
}

// Add places an outstanding card instance into the next free slot of
// the requested slot type. A full slot type fails the whole operation;
// no item, event, or slot assignment is left behind.
func (o *orchestrator) Add(ctx context.Context, input *AddInput) (*AddOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.CardInstanceID == "" {
		return nil, errors.InvalidArgument("card instance ID is required")
	}
	if input.SlotType != entities.SlotTypeActive && input.SlotType != entities.SlotTypeBackpack {
		return nil, errors.InvalidArgumentf("invalid slot type %q", input.SlotType)
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
	if err := o.requireOutstanding(session, card); err != nil {
		return nil, err
	}

	if err := o.requireFreeSlot(session, input.SlotType); err != nil {
		return nil, err
	}

	now := o.clock.Now().Unix()
	item := &entities.InventoryItem{
		ID:             o.idGen.Generate(),
		SlotType:       input.SlotType,
		SlotIndex:      session.NextFreeSlot(input.SlotType),
		CardInstanceID: card.ID,
		IsEquipped:     input.SlotType == entities.SlotTypeActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	session.Inventory = append(session.Inventory, item)
	session.UpdatedAt = now

	event := entities.InventoryEvent{
		ID:             o.idGen.Generate(),
		EventType:      entities.InventoryEventAdd,
		SlotType:       input.SlotType,
		CardInstanceID: card.ID,
		Timestamp:      now,
	}

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{
		Session: session,
		Events:  []entities.InventoryEvent{event},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to persist add")
	}

	slog.Info("Inventory item added",
		"session_id", session.ID,
		"item_id", item.ID,
		"slot_type", item.SlotType,
		"slot_index", item.SlotIndex,
		"card_id", card.ID,
	)

	return &AddOutput{Item: item}, nil
}

// Remove deletes an inventory item, optionally routing its card
// instance to the deck's discard pile.
func (o *orchestrator) Remove(ctx context.Context, input *RemoveInput) (*RemoveOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	item := session.InventoryItemByID(input.ItemID)
	if item == nil {
		return nil, errors.NotFoundf("inventory item %s not in session", input.ItemID)
	}

	session.RemoveInventoryItem(item.ID)
	now := o.clock.Now().Unix()
	session.UpdatedAt = now

	if input.DiscardToDeck {
		card := session.Card(item.CardInstanceID)
		if card == nil {
			return nil, errors.DataLossf("inventory item %s references unknown card %s", item.ID, item.CardInstanceID)
		}
		deckState := session.Deck(card.DeckType)
		if deckState == nil {
			return nil, errors.Internalf("session %s has no %s deck", session.ID, card.DeckType)
		}
		deckState.PushDiscard(card.ID)
	}

	event := entities.InventoryEvent{
		ID:             o.idGen.Generate(),
		EventType:      entities.InventoryEventRemove,
		SlotType:       item.SlotType,
		CardInstanceID: item.CardInstanceID,
		Timestamp:      now,
	}

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{
		Session: session,
		Events:  []entities.InventoryEvent{event},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to persist remove")
	}

	return &RemoveOutput{}, nil
}

// Move reassigns an item to the other slot type. A full destination
// fails atomically: the source item keeps its slot untouched.
func (o *orchestrator) Move(ctx context.Context, input *MoveInput) (*MoveOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	item := session.InventoryItemByID(input.ItemID)
	if item == nil {
		return nil, errors.NotFoundf("inventory item %s not in session", input.ItemID)
	}

	from := item.SlotType
	to := entities.SlotTypeBackpack
	if from == entities.SlotTypeBackpack {
		to = entities.SlotTypeActive
	}

	if err := o.requireFreeSlot(session, to); err != nil {
		return nil, err
	}

	now := o.clock.Now().Unix()
	item.SlotType = to
	item.SlotIndex = session.NextFreeSlot(to)
	item.IsEquipped = to == entities.SlotTypeActive
	item.UpdatedAt = now
	session.UpdatedAt = now

	event := entities.InventoryEvent{
		ID:             o.idGen.Generate(),
		EventType:      entities.InventoryEventMove,
		SlotType:       to,
		FromSlotType:   from,
		CardInstanceID: item.CardInstanceID,
		Timestamp:      now,
	}

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{
		Session: session,
		Events:  []entities.InventoryEvent{event},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to persist move")
	}

	return &MoveOutput{Item: item}, nil
}

// Replace substitutes a new card instance into an existing item's slot,
// optionally discarding the old instance to its deck.
func (o *orchestrator) Replace(ctx context.Context, input *ReplaceInput) (*ReplaceOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}
	if input.NewCardInstanceID == "" {
		return nil, errors.InvalidArgument("new card instance ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	item := session.InventoryItemByID(input.ItemID)
	if item == nil {
		return nil, errors.NotFoundf("inventory item %s not in session", input.ItemID)
	}
	newCard := session.Card(input.NewCardInstanceID)
	if newCard == nil {
		return nil, errors.NotFoundf("card instance %s not in session", input.NewCardInstanceID)
	}
	if err := o.requireOutstanding(session, newCard); err != nil {
		return nil, err
	}

	oldCardID := item.CardInstanceID
	now := o.clock.Now().Unix()

	if input.DiscardOldToDeck {
		oldCard := session.Card(oldCardID)
		if oldCard == nil {
			return nil, errors.DataLossf("inventory item %s references unknown card %s", item.ID, oldCardID)
		}
		deckState := session.Deck(oldCard.DeckType)
		if deckState == nil {
			return nil, errors.Internalf("session %s has no %s deck", session.ID, oldCard.DeckType)
		}
		deckState.PushDiscard(oldCardID)
	}

	item.CardInstanceID = newCard.ID
	item.UpdatedAt = now
	session.UpdatedAt = now

	event := entities.InventoryEvent{
		ID:             o.idGen.Generate(),
		EventType:      entities.InventoryEventReplace,
		SlotType:       item.SlotType,
		CardInstanceID: newCard.ID,
		Timestamp:      now,
	}

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{
		Session: session,
		Events:  []entities.InventoryEvent{event},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to persist replace")
	}

	return &ReplaceOutput{Item: item}, nil
}

// GetInventory lists both slot types with their occupancy and capacity.
func (o *orchestrator) GetInventory(ctx context.Context, input *GetInventoryInput) (*GetInventoryOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	return &GetInventoryOutput{
		Active: SlotGroup{
			Items:    session.ItemsBySlot(entities.SlotTypeActive),
			Capacity: session.SlotCapacity(entities.SlotTypeActive),
		},
		Backpack: SlotGroup{
			Items:    session.ItemsBySlot(entities.SlotTypeBackpack),
			Capacity: session.SlotCapacity(entities.SlotTypeBackpack),
		},
	}, nil
}

// GetEffectiveActiveWeapons returns the items counting as active for
// game rules, joined with their definitions. With AllInventoryActive
// set this is the union of both slot types; slots are never reassigned.
func (o *orchestrator) GetEffectiveActiveWeapons(ctx context.Context, input *GetEffectiveActiveWeaponsInput) (*GetEffectiveActiveWeaponsOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	items := session.EffectiveActiveItems()
	weapons := make([]ActiveWeapon, 0, len(items))
	for _, item := range items {
		card := session.Card(item.CardInstanceID)
		if card == nil {
			return nil, errors.DataLossf("inventory item %s references unknown card %s", item.ID, item.CardInstanceID)
		}
		def, err := o.catalog.Get(card.DefinitionID)
		if err != nil {
			return nil, errors.Wrapf(err, "card %s references unknown definition", card.ID)
		}
		weapons = append(weapons, ActiveWeapon{Item: item, Definition: def})
	}

	return &GetEffectiveActiveWeaponsOutput{Weapons: weapons}, nil
}

// GetHistory returns the audit log in chronological order, optionally
// filtered to one card instance.
func (o *orchestrator) GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	output, err := o.sessionRepo.ListEvents(ctx, sessionrepo.ListEventsInput{
		SessionID:      input.SessionID,
		CardInstanceID: input.CardInstanceID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list inventory events")
	}

	return &GetHistoryOutput{Events: output.Events}, nil
}

func (o *orchestrator) getSession(ctx context.Context, sessionID string) (*entities.GameSession, error) {
	output, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	return output.Session, nil
}

// requireOutstanding ensures a card is drawn and unassigned: not in a
// deck pile and not already referenced by another inventory item.
func (o *orchestrator) requireOutstanding(session *entities.GameSession, card *entities.CardInstance) error {
	if item := session.InventoryItemByInstance(card.ID); item != nil {
		return errors.FailedPreconditionf("card instance %s is already in inventory", card.ID)
	}
	deckState := session.Deck(card.DeckType)
	if deckState == nil {
		return errors.Internalf("session %s has no %s deck", session.ID, card.DeckType)
	}
	for _, id := range deckState.Remaining {
		if id == card.ID {
			return errors.FailedPreconditionf("card instance %s is still in the deck", card.ID)
		}
	}
	for _, id := range deckState.Discard {
		if id == card.ID {
			return errors.FailedPreconditionf("card instance %s is in the discard pile", card.ID)
		}
	}
	return nil
}

func (o *orchestrator) requireFreeSlot(session *entities.GameSession, slotType entities.SlotType) error {
	used := int32(len(session.ItemsBySlot(slotType)))
	capacity := session.SlotCapacity(slotType)
	if used >= capacity {
		return errors.ResourceExhaustedf("%s slots full (%d of %d)", slotType, used, capacity).
			WithMeta("slot_type", string(slotType)).
			WithMeta("capacity", capacity)
	}
	return nil
}
