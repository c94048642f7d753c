package progression

//go:generate mockgen -destination=mock/mock_service.go -package=progressionmock github.com/darkroot-games/warband-api/internal/orchestrators/progression Service

import (
	"context"
	"log/slog"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
)

// Service defines the interface for progression operations
type Service interface {
	AddExperience(ctx context.Context, input *AddExperienceInput) (*AddExperienceOutput, error)
	SelectSkill(ctx context.Context, input *SelectSkillInput) (*SelectSkillOutput, error)
	ApplyAutomaticGrants(ctx context.Context, input *ApplyAutomaticGrantsInput) (*ApplyAutomaticGrantsOutput, error)
	GetProgression(ctx context.Context, input *GetProgressionInput) (*GetProgressionOutput, error)
}

// Config holds the dependencies for the progression orchestrator
type Config struct {
	SessionRepo sessionrepo.Repository
	Clock       clock.Clock
	Locks       *sessionlock.Keyed
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
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
	clock       clock.Clock
	locks       *sessionlock.Keyed
}

// NewOrchestrator creates a new progression orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		sessionRepo: cfg.SessionRepo,
		clock:       cfg.Clock,
		locks:       cfg.Locks,
	}, nil
}

// AddExperience raises a session's experience total, performs any
// auto-grants the new total earns, and reports whether a manual tier
// choice is now pending. Experience never decreases and granted skills
// are never revoked.
func (o *orchestrator) AddExperience(ctx context.Context, input *AddExperienceInput) (*AddExperienceOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.Amount < 0 {
		return nil, errors.InvalidArgument("experience amount cannot be negative")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	session.CurrentExperience += input.Amount
	granted := grantPending(session)
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist experience")
	}

	pending := WhichTierNeedsSelection(session)
	slog.Info("Experience added",
		"session_id", session.ID,
		"amount", input.Amount,
		"total", session.CurrentExperience,
		"cycle", Cycle(session.CurrentExperience),
		"auto_granted", len(granted),
		"pending_tier", pending,
	)

	return &AddExperienceOutput{
		Session:          session,
		AutoGranted:      granted,
		PendingSelection: pending,
	}, nil
}

// SelectSkill records a manual tier choice. The tier must actually be
// awaiting a selection and the skill must be an unselected member of
// the tier's available pool.
func (o *orchestrator) SelectSkill(ctx context.Context, input *SelectSkillInput) (*SelectSkillOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if input.SkillID == "" {
		return nil, errors.InvalidArgument("skill ID is required")
	}
	if input.Tier != entities.SkillTierOrange && input.Tier != entities.SkillTierRed {
		return nil, errors.InvalidArgumentf("tier %s never takes a manual selection", input.Tier)
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if !pendingSelection(session, input.Tier) {
		return nil, errors.FailedPreconditionf("tier %s has no selection pending", input.Tier)
	}
	if !session.AvailableSkills.Contains(input.Tier, input.SkillID) {
		return nil, errors.NotFoundf("skill %s is not in the %s pool", input.SkillID, input.Tier)
	}
	if session.SelectedSkills.Contains(input.Tier, input.SkillID) {
		return nil, errors.AlreadyExistsf("skill %s is already selected", input.SkillID)
	}

	session.SelectedSkills.Add(input.Tier, input.SkillID)
	granted := grantPending(session)
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist skill selection")
	}

	slog.Info("Skill selected",
		"session_id", session.ID,
		"tier", input.Tier,
		"skill_id", input.SkillID,
	)

	return &SelectSkillOutput{Session: session, AutoGranted: granted}, nil
}

// ApplyAutomaticGrants performs any auto-grant the current experience
// total has earned. Repeated invocation grants nothing new.
func (o *orchestrator) ApplyAutomaticGrants(ctx context.Context, input *ApplyAutomaticGrantsInput) (*ApplyAutomaticGrantsOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	unlock := o.locks.Acquire(input.SessionID)
	defer unlock()

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	granted := grantPending(session)
	if len(granted) == 0 {
		return &ApplyAutomaticGrantsOutput{Session: session}, nil
	}
	session.UpdatedAt = o.clock.Now().Unix()

	if _, err := o.sessionRepo.Update(ctx, sessionrepo.UpdateInput{Session: session}); err != nil {
		return nil, errors.Wrap(err, "failed to persist grants")
	}

	return &ApplyAutomaticGrantsOutput{Session: session, Granted: granted}, nil
}

// GetProgression is a pure read of the session's progression state
func (o *orchestrator) GetProgression(ctx context.Context, input *GetProgressionInput) (*GetProgressionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	session, err := o.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	xp := session.CurrentExperience
	return &GetProgressionOutput{
		Experience:       xp,
		Cycle:            Cycle(xp),
		NormalizedXP:     NormalizedXP(xp),
		Tier:             TierFor(NormalizedXP(xp)),
		PendingSelection: WhichTierNeedsSelection(session),
		Selected:         session.SelectedSkills,
		Available:        session.AvailableSkills,
	}, nil
}

func (o *orchestrator) getSession(ctx context.Context, sessionID string) (*entities.GameSession, error) {
	output, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{ID: sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	return output.Session, nil
}

// grantPending applies every tier's auto-grants to the session and
// returns what was granted.
func grantPending(session *entities.GameSession) []Grant {
	var grants []Grant
	for _, tier := range []entities.SkillTier{entities.SkillTierYellow, entities.SkillTierOrange, entities.SkillTierRed} {
		for _, id := range autoGrants(session, tier) {
			session.SelectedSkills.Add(tier, id)
			grants = append(grants, Grant{Tier: tier, SkillID: id})
		}
	}
	return grants
}
