package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/orchestrators/progression"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
	gamesessionmock "github.com/darkroot-games/warband-api/internal/repositories/game_session/mock"
	"github.com/darkroot-games/warband-api/internal/testutils"
)

type ProgressionOrchestratorTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	sessionRepo *gamesessionmock.MockRepository
	service     progression.Service
	ctx         context.Context

	session *entities.GameSession
}

func (s *ProgressionOrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessionRepo = gamesessionmock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()

	service, err := progression.NewOrchestrator(&progression.Config{
		SessionRepo: s.sessionRepo,
		Clock:       &clock.Fixed{T: time.Unix(1700000000, 0)},
		Locks:       sessionlock.New(),
	})
	s.Require().NoError(err)
	s.service = service

	s.session = &entities.GameSession{
		ID:              "session-1",
		CharacterID:     "char-1",
		AvailableSkills: testutils.TestSkillSet(),
	}

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
			return &sessionrepo.UpdateOutput{Session: input.Session}, nil
		}).
		AnyTimes()
}

func (s *ProgressionOrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ProgressionOrchestratorTestSuite) addXP(amount int32) *progression.AddExperienceOutput {
	output, err := s.service.AddExperience(s.ctx, &progression.AddExperienceInput{
		SessionID: "session-1",
		Amount:    amount,
	})
	s.Require().NoError(err)
	return output
}

func (s *ProgressionOrchestratorTestSuite) selectSkill(tier entities.SkillTier, id entities.SkillID) {
	_, err := s.service.SelectSkill(s.ctx, &progression.SelectSkillInput{
		SessionID: "session-1",
		Tier:      tier,
		SkillID:   id,
	})
	s.Require().NoError(err)
}

func (s *ProgressionOrchestratorTestSuite) TestCampaignProgression() {
	// cycle 1, blue band: nothing unlocks
	output := s.addXP(5)
	s.Empty(output.AutoGranted)
	s.Equal(entities.SkillTierBlue, output.PendingSelection)

	// reaching orange grants the yellow single and asks for an orange choice
	output = s.addXP(14) // total 19
	s.Require().Len(output.AutoGranted, 1)
	s.Equal(entities.SkillID("battle-cry"), output.AutoGranted[0].SkillID)
	s.Equal(entities.SkillTierOrange, output.PendingSelection)

	s.selectSkill(entities.SkillTierOrange, "riposte")

	// cycle boundary: the new cycle's entitlements arrive immediately.
	// Orange has one unselected skill left, so it auto-grants; red was
	// reached at 43 and its first choice is pending.
	output = s.addXP(25) // total 44, cycle 2
	s.Require().Len(output.AutoGranted, 1)
	s.Equal(entities.SkillTierOrange, output.AutoGranted[0].Tier)
	s.Equal(entities.SkillID("shield-wall"), output.AutoGranted[0].SkillID)
	s.Equal(entities.SkillTierRed, output.PendingSelection)

	s.selectSkill(entities.SkillTierRed, "executioner")

	// normalized xp dropped to 0 at the boundary; nothing was revoked
	s.Equal([]entities.SkillID{"battle-cry"}, s.session.SelectedSkills.Yellow)
	s.Equal([]entities.SkillID{"riposte", "shield-wall"}, s.session.SelectedSkills.Orange)

	// the cycle 2 entitlement covers a second red choice as well
	output = s.addXP(19) // total 63
	s.Empty(output.AutoGranted)
	s.Equal(entities.SkillTierRed, output.PendingSelection)

	s.selectSkill(entities.SkillTierRed, "last-stand")

	// cycle 3 red auto-grants the last skill
	output = s.addXP(25) // total 88, cycle 3
	s.Require().Len(output.AutoGranted, 1)
	s.Equal(entities.SkillID("bloodlust"), output.AutoGranted[0].SkillID)
	s.Equal(entities.SkillTierBlue, output.PendingSelection)

	s.ElementsMatch(
		[]entities.SkillID{"executioner", "last-stand", "bloodlust"},
		s.session.SelectedSkills.Red,
	)
}

func (s *ProgressionOrchestratorTestSuite) TestSecondOrangeGrantedBeforeCycleTwoThreshold() {
	// one orange skill chosen in cycle 1; at xp 62 the normalized value
	// (18) sits below the orange threshold, but the completed cycle
	// already earned the second skill
	s.session.CurrentExperience = 62
	s.session.SelectedSkills.Add(entities.SkillTierYellow, "battle-cry")
	s.session.SelectedSkills.Add(entities.SkillTierOrange, "riposte")

	output, err := s.service.ApplyAutomaticGrants(s.ctx, &progression.ApplyAutomaticGrantsInput{
		SessionID: "session-1",
	})
	s.Require().NoError(err)
	s.Require().Len(output.Granted, 1)
	s.Equal(entities.SkillTierOrange, output.Granted[0].Tier)
	s.Equal(entities.SkillID("shield-wall"), output.Granted[0].SkillID)

	again, err := s.service.ApplyAutomaticGrants(s.ctx, &progression.ApplyAutomaticGrantsInput{
		SessionID: "session-1",
	})
	s.Require().NoError(err)
	s.Empty(again.Granted)
}

func (s *ProgressionOrchestratorTestSuite) TestApplyAutomaticGrantsIsIdempotent() {
	s.session.CurrentExperience = 19

	first, err := s.service.ApplyAutomaticGrants(s.ctx, &progression.ApplyAutomaticGrantsInput{
		SessionID: "session-1",
	})
	s.Require().NoError(err)
	s.Require().Len(first.Granted, 1)
	s.Equal(entities.SkillID("battle-cry"), first.Granted[0].SkillID)

	second, err := s.service.ApplyAutomaticGrants(s.ctx, &progression.ApplyAutomaticGrantsInput{
		SessionID: "session-1",
	})
	s.Require().NoError(err)
	s.Empty(second.Granted)
	s.Equal([]entities.SkillID{"battle-cry"}, s.session.SelectedSkills.Yellow)
}

func (s *ProgressionOrchestratorTestSuite) TestSelectSkillValidation() {
	s.session.CurrentExperience = 19
	s.session.SelectedSkills.Add(entities.SkillTierYellow, "battle-cry")

	s.Run("rejects tiers without a pending selection", func() {
		_, err := s.service.SelectSkill(s.ctx, &progression.SelectSkillInput{
			SessionID: "session-1",
			Tier:      entities.SkillTierRed,
			SkillID:   "executioner",
		})
		s.Require().Error(err)
		s.True(errors.IsFailedPrecondition(err))
	})

	s.Run("rejects tiers that never take a choice", func() {
		_, err := s.service.SelectSkill(s.ctx, &progression.SelectSkillInput{
			SessionID: "session-1",
			Tier:      entities.SkillTierYellow,
			SkillID:   "battle-cry",
		})
		s.Require().Error(err)
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("rejects skills outside the pool", func() {
		_, err := s.service.SelectSkill(s.ctx, &progression.SelectSkillInput{
			SessionID: "session-1",
			Tier:      entities.SkillTierOrange,
			SkillID:   "fireball",
		})
		s.Require().Error(err)
		s.True(errors.IsNotFound(err))
	})
}

func (s *ProgressionOrchestratorTestSuite) TestAddExperienceRejectsNegative() {
	_, err := s.service.AddExperience(s.ctx, &progression.AddExperienceInput{
		SessionID: "session-1",
		Amount:    -5,
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ProgressionOrchestratorTestSuite) TestGetProgression() {
	s.session.CurrentExperience = 62
	s.session.SelectedSkills.Add(entities.SkillTierYellow, "battle-cry")
	s.session.SelectedSkills.Add(entities.SkillTierOrange, "riposte")
	s.session.SelectedSkills.Add(entities.SkillTierRed, "executioner")

	output, err := s.service.GetProgression(s.ctx, &progression.GetProgressionInput{
		SessionID: "session-1",
	})

	s.Require().NoError(err)
	s.Equal(int32(62), output.Experience)
	s.Equal(int32(2), output.Cycle)
	s.Equal(int32(18), output.NormalizedXP)
	s.Equal(entities.SkillTierYellow, output.Tier)
	// the completed cycle entitles a second red choice
	s.Equal(entities.SkillTierRed, output.PendingSelection)
}

func TestProgressionOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(ProgressionOrchestratorTestSuite))
}
