package deck_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/orchestrators/customization"
	"github.com/darkroot-games/warband-api/internal/orchestrators/deck"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	deckpresetmock "github.com/darkroot-games/warband-api/internal/repositories/deck_preset/mock"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
	gamesessionmock "github.com/darkroot-games/warband-api/internal/repositories/game_session/mock"
	"github.com/darkroot-games/warband-api/internal/testutils"
)

type DeckOrchestratorTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	sessionRepo *gamesessionmock.MockRepository
	presetRepo  *deckpresetmock.MockRepository
	service     deck.Service
	ctx         context.Context

	session *entities.GameSession
	updates int
}

func (s *DeckOrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessionRepo = gamesessionmock.NewMockRepository(s.ctrl)
	s.presetRepo = deckpresetmock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()
	s.updates = 0

	cat := testutils.CreateTestCatalog(s.T())
	service, err := deck.NewOrchestrator(&deck.Config{
		SessionRepo: s.sessionRepo,
		PresetRepo:  s.presetRepo,
		Catalog:     cat,
		IDGenerator: idgen.NewSequential("card"),
		DiceRoller:  identityRoller{},
		Clock:       &clock.Fixed{T: time.Unix(1700000000, 0)},
		Locks:       sessionlock.New(),
	})
	s.Require().NoError(err)
	s.service = service

	resolved := customization.Resolve(cat.Definitions(entities.DeckTypeStarting), nil, nil)
	cards, state, err := deck.Build(entities.DeckTypeStarting, resolved, idgen.NewSequential("card"), identityRoller{}, 0)
	s.Require().NoError(err)
	s.Require().Len(cards, 5)

	s.session = &entities.GameSession{
		ID:          "session-1",
		CharacterID: "char-1",
		Cards:       make(map[entities.CardInstanceID]*entities.CardInstance, len(cards)),
		Decks:       map[entities.DeckType]*entities.DeckState{entities.DeckTypeStarting: state},
	}
	for _, c := range cards {
		s.session.Cards[c.ID] = c
	}

	// the orchestrator reads and writes the same in-memory session, so
	// state carries across calls the way it would through the store
	s.sessionRepo.EXPECT().
		Get(gomock.Any(), sessionrepo.GetInput{ID: "session-1"}).
		DoAndReturn(func(context.Context, sessionrepo.GetInput) (*sessionrepo.GetOutput, error) {
			return &sessionrepo.GetOutput{Session: s.session}, nil
		}).
		AnyTimes()
	s.sessionRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input sessionrepo.UpdateInput) (*sessionrepo.UpdateOutput, error) {
			s.session = input.Session
			s.updates++
			return &sessionrepo.UpdateOutput{Session: input.Session}, nil
		}).
		AnyTimes()
}

func (s *DeckOrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DeckOrchestratorTestSuite) deckState() *entities.DeckState {
	return s.session.Deck(entities.DeckTypeStarting)
}

func (s *DeckOrchestratorTestSuite) drawOne() *entities.CardInstance {
	output, err := s.service.Draw(s.ctx, &deck.DrawInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})
	s.Require().NoError(err)
	return output.Card
}

func (s *DeckOrchestratorTestSuite) TestDrawDepletesRemaining() {
	var drawn []entities.CardInstanceID
	for i := 0; i < 5; i++ {
		card := s.drawOne()
		drawn = append(drawn, card.ID)
		s.LessOrEqual(len(s.deckState().RecentDraws), entities.RecentDrawLimit)
	}

	s.Empty(s.deckState().Remaining)
	s.Len(drawn, 5)
	s.Equal(5, s.session.OutstandingCount(entities.DeckTypeStarting))

	// the ring buffer holds the last three draws, most recent first
	s.Equal([]entities.CardInstanceID{drawn[4], drawn[3], drawn[2]}, s.deckState().RecentDraws)
}

func (s *DeckOrchestratorTestSuite) TestDrawReclaimsDiscardWhenEmpty() {
	var drawn []entities.CardInstanceID
	for i := 0; i < 5; i++ {
		drawn = append(drawn, s.drawOne().ID)
	}
	for _, id := range drawn {
		_, err := s.service.Discard(s.ctx, &deck.DiscardInput{
			SessionID:      "session-1",
			CardInstanceID: id,
		})
		s.Require().NoError(err)
	}
	s.Len(s.deckState().Discard, 5)

	output, err := s.service.Draw(s.ctx, &deck.DrawInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	s.Require().NoError(err)
	s.True(output.Reshuffled)
	s.Empty(s.deckState().Discard)
	s.Len(s.deckState().Remaining, 4)
	s.Equal(1, s.session.OutstandingCount(entities.DeckTypeStarting))
}

func (s *DeckOrchestratorTestSuite) TestDrawExhaustedDeckIsDataLoss() {
	for i := 0; i < 5; i++ {
		s.drawOne()
	}

	_, err := s.service.Draw(s.ctx, &deck.DrawInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))
}

func (s *DeckOrchestratorTestSuite) TestDrawDetectsDuplicatedInstance() {
	// corrupt the state: one instance in both remaining and discard
	st := s.deckState()
	st.Discard = append(st.Discard, st.Remaining[0])

	_, err := s.service.Draw(s.ctx, &deck.DrawInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))
}

func (s *DeckOrchestratorTestSuite) TestDrawTwo() {
	output, err := s.service.DrawTwo(s.ctx, &deck.DrawTwoInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	s.Require().NoError(err)
	s.Len(output.Cards, 2)
	s.NotEqual(output.Cards[0].ID, output.Cards[1].ID)
	s.Len(s.deckState().Remaining, 3)

	// one commit per draw
	s.Equal(2, s.updates)
}

func (s *DeckOrchestratorTestSuite) TestDrawTwoCommitsFirstDrawWhenSecondFails() {
	// leave one card in the deck and everything else outstanding
	for i := 0; i < 4; i++ {
		s.drawOne()
	}
	last := s.deckState().Remaining[0]
	s.updates = 0

	_, err := s.service.DrawTwo(s.ctx, &deck.DrawTwoInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	// the second draw finds both piles empty with cards outstanding
	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))

	// the first draw committed before the failure
	s.Equal(1, s.updates)
	s.Empty(s.deckState().Remaining)
	s.Equal(last, s.deckState().RecentDraws[0])
	s.Equal(5, s.session.OutstandingCount(entities.DeckTypeStarting))
}

func (s *DeckOrchestratorTestSuite) TestDrawDoesNotCommitOnUnknownDefinition() {
	// corrupt the top card to reference a definition outside the catalog
	top := s.deckState().Remaining[0]
	s.session.Cards[top].DefinitionID = "regular:Ghost Sword:core"

	_, err := s.service.Draw(s.ctx, &deck.DrawInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	s.Require().Error(err)
	s.Equal(0, s.updates)
}

func (s *DeckOrchestratorTestSuite) TestDiscardValidation() {
	card := s.drawOne()

	s.Run("rejects cards held in inventory", func() {
		s.session.Inventory = []*entities.InventoryItem{{
			ID:             "item-1",
			SlotType:       entities.SlotTypeActive,
			CardInstanceID: card.ID,
		}}
		_, err := s.service.Discard(s.ctx, &deck.DiscardInput{
			SessionID:      "session-1",
			CardInstanceID: card.ID,
		})
		s.Require().Error(err)
		s.True(errors.IsFailedPrecondition(err))
		s.session.Inventory = nil
	})

	s.Run("rejects cards still in the deck", func() {
		_, err := s.service.Discard(s.ctx, &deck.DiscardInput{
			SessionID:      "session-1",
			CardInstanceID: s.deckState().Remaining[0],
		})
		s.Require().Error(err)
		s.True(errors.IsFailedPrecondition(err))
	})

	s.Run("discards an outstanding card to the front of the pile", func() {
		_, err := s.service.Discard(s.ctx, &deck.DiscardInput{
			SessionID:      "session-1",
			CardInstanceID: card.ID,
		})
		s.Require().NoError(err)
		s.Equal(card.ID, s.deckState().Discard[0])
	})
}

func (s *DeckOrchestratorTestSuite) TestReturnFromDiscard() {
	first := s.drawOne()
	second := s.drawOne()
	for _, id := range []entities.CardInstanceID{first.ID, second.ID} {
		_, err := s.service.Discard(s.ctx, &deck.DiscardInput{
			SessionID:      "session-1",
			CardInstanceID: id,
		})
		s.Require().NoError(err)
	}

	s.Run("to the top", func() {
		_, err := s.service.ReturnFromDiscard(s.ctx, &deck.ReturnFromDiscardInput{
			SessionID:      "session-1",
			CardInstanceID: first.ID,
			Position:       deck.PositionTop,
		})
		s.Require().NoError(err)
		s.Equal(first.ID, s.deckState().Remaining[0])
		s.NotContains(s.deckState().Discard, first.ID)
	})

	s.Run("to the bottom", func() {
		_, err := s.service.ReturnFromDiscard(s.ctx, &deck.ReturnFromDiscardInput{
			SessionID:      "session-1",
			CardInstanceID: second.ID,
			Position:       deck.PositionBottom,
		})
		s.Require().NoError(err)
		remaining := s.deckState().Remaining
		s.Equal(second.ID, remaining[len(remaining)-1])
		s.Empty(s.deckState().Discard)
	})

	s.Run("rejects cards not in the pile", func() {
		_, err := s.service.ReturnFromDiscard(s.ctx, &deck.ReturnFromDiscardInput{
			SessionID:      "session-1",
			CardInstanceID: first.ID,
			Position:       deck.PositionTop,
		})
		s.Require().Error(err)
		s.True(errors.IsNotFound(err))
	})
}

func (s *DeckOrchestratorTestSuite) TestReclaimDiscard() {
	card := s.drawOne()
	_, err := s.service.Discard(s.ctx, &deck.DiscardInput{
		SessionID:      "session-1",
		CardInstanceID: card.ID,
	})
	s.Require().NoError(err)

	output, err := s.service.ReclaimDiscard(s.ctx, &deck.ReclaimDiscardInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
		Shuffle:   true,
	})

	s.Require().NoError(err)
	s.Empty(output.Deck.Discard)
	s.Len(output.Deck.Remaining, 5)
}

func (s *DeckOrchestratorTestSuite) TestResetDeck() {
	s.Run("refused while inventory holds the deck's cards", func() {
		card := s.drawOne()
		s.session.Inventory = []*entities.InventoryItem{{
			ID:             "item-1",
			SlotType:       entities.SlotTypeActive,
			CardInstanceID: card.ID,
		}}

		_, err := s.service.ResetDeck(s.ctx, &deck.ResetDeckInput{
			SessionID: "session-1",
			DeckType:  entities.DeckTypeStarting,
		})

		s.Require().Error(err)
		s.True(errors.IsFailedPrecondition(err))
		s.session.Inventory = nil
	})

	s.Run("rebuilds the card universe and clears history", func() {
		output, err := s.service.ResetDeck(s.ctx, &deck.ResetDeckInput{
			SessionID: "session-1",
			DeckType:  entities.DeckTypeStarting,
		})

		s.Require().NoError(err)
		s.Len(output.Deck.Remaining, 5)
		s.Empty(output.Deck.Discard)
		s.Empty(output.Deck.RecentDraws)
		s.Equal(5, s.session.TotalInstances(entities.DeckTypeStarting))
		s.Equal(0, s.session.OutstandingCount(entities.DeckTypeStarting))
	})
}

func (s *DeckOrchestratorTestSuite) TestGetDeckState() {
	s.drawOne()

	output, err := s.service.GetDeckState(s.ctx, &deck.GetDeckStateInput{
		SessionID: "session-1",
		DeckType:  entities.DeckTypeStarting,
	})

	s.Require().NoError(err)
	s.Equal(5, output.Total)
	s.Equal(1, output.Outstanding)
	s.Len(output.Deck.Remaining, 4)
}

func TestDeckOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(DeckOrchestratorTestSuite))
}
