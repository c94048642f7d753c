package session

import "github.com/darkroot-games/warband-api/internal/entities"

// CreateSessionInput starts play for a character
type CreateSessionInput struct {
	CharacterID    string
	StartingHealth int32
	// PresetID optionally names the deck preset to build with; empty
	// falls back to the default preset, then to catalog defaults
	PresetID string
	// AvailableSkills is the character's unlockable pool per tier
	AvailableSkills entities.SkillSet
}

// CreateSessionOutput contains the new session with decks built
type CreateSessionOutput struct {
	Session *entities.GameSession
}

// GetSessionInput identifies the session to fetch
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput contains the fetched session
type GetSessionOutput struct {
	Session *entities.GameSession
}

// EndSessionInput identifies the session to end
type EndSessionInput struct {
	SessionID string
}

// EndSessionOutput is empty
type EndSessionOutput struct{}

// SetHealthInput sets the session's current health
type SetHealthInput struct {
	SessionID string
	Health    int32
}

// SetHealthOutput contains the updated session
type SetHealthOutput struct {
	Session *entities.GameSession
}

// SetExtraInventorySlotsInput sets the earned backpack growth
type SetExtraInventorySlotsInput struct {
	SessionID string
	Slots     int32
}

// SetExtraInventorySlotsOutput contains the updated session
type SetExtraInventorySlotsOutput struct {
	Session *entities.GameSession
}

// SetAllInventoryActiveInput toggles the all-inventory-active modifier
type SetAllInventoryActiveInput struct {
	SessionID string
	Active    bool
}

// SetAllInventoryActiveOutput contains the updated session
type SetAllInventoryActiveOutput struct {
	Session *entities.GameSession
}
