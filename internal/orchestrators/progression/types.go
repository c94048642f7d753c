package progression

import "github.com/darkroot-games/warband-api/internal/entities"

// Grant is one auto-granted skill
type Grant struct {
	Tier    entities.SkillTier
	SkillID entities.SkillID
}

// AddExperienceInput raises a session's experience total
type AddExperienceInput struct {
	SessionID string
	Amount    int32
}

// AddExperienceOutput reports the new state and what it unlocked
type AddExperienceOutput struct {
	Session     *entities.GameSession
	AutoGranted []Grant
	// PendingSelection is the tier awaiting a manual choice, or blue
	PendingSelection entities.SkillTier
}

// SelectSkillInput records a manual tier choice
type SelectSkillInput struct {
	SessionID string
	Tier      entities.SkillTier
	SkillID   entities.SkillID
}

// SelectSkillOutput contains the session after the selection and any
// auto-grant the selection completed.
type SelectSkillOutput struct {
	Session     *entities.GameSession
	AutoGranted []Grant
}

// ApplyAutomaticGrantsInput identifies the session to grant on
type ApplyAutomaticGrantsInput struct {
	SessionID string
}

// ApplyAutomaticGrantsOutput lists what was granted, if anything
type ApplyAutomaticGrantsOutput struct {
	Session *entities.GameSession
	Granted []Grant
}

// GetProgressionInput identifies the session to read
type GetProgressionInput struct {
	SessionID string
}

// GetProgressionOutput is a snapshot of the progression state
type GetProgressionOutput struct {
	Experience       int32
	Cycle            int32
	NormalizedXP     int32
	Tier             entities.SkillTier
	PendingSelection entities.SkillTier
	Selected         entities.SkillSet
	Available        entities.SkillSet
}
