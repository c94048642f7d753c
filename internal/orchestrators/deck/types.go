package deck

import "github.com/darkroot-games/warband-api/internal/entities"

// Position selects where a returned card re-enters the remaining pile
type Position string

// Return positions
const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// DrawInput identifies the deck to draw from
type DrawInput struct {
	SessionID string
	DeckType  entities.DeckType
}

// DrawOutput contains the drawn card and its catalog definition
type DrawOutput struct {
	Card       *entities.CardInstance
	Definition *entities.WeaponDefinition
	// Reshuffled is true when the draw reclaimed the discard pile first
	Reshuffled bool
}

// DrawTwoInput identifies the deck to draw two cards from
type DrawTwoInput struct {
	SessionID string
	DeckType  entities.DeckType
}

// DrawTwoOutput contains both drawn cards in draw order
type DrawTwoOutput struct {
	Cards      []*entities.CardInstance
	Reshuffles int
}

// DiscardInput identifies an outstanding card to discard
type DiscardInput struct {
	SessionID      string
	CardInstanceID entities.CardInstanceID
}

// DiscardOutput contains the deck after the discard
type DiscardOutput struct {
	Deck *entities.DeckState
}

// ReturnFromDiscardInput moves a discarded card back into remaining
type ReturnFromDiscardInput struct {
	SessionID      string
	CardInstanceID entities.CardInstanceID
	Position       Position
}

// ReturnFromDiscardOutput contains the deck after the return
type ReturnFromDiscardOutput struct {
	Deck *entities.DeckState
}

// ReclaimDiscardInput moves the whole discard pile back into remaining
type ReclaimDiscardInput struct {
	SessionID string
	DeckType  entities.DeckType
	Shuffle   bool
}

// ReclaimDiscardOutput contains the deck after the reclaim
type ReclaimDiscardOutput struct {
	Deck *entities.DeckState
}

// ResetDeckInput rebuilds one deck from the catalog
type ResetDeckInput struct {
	SessionID string
	DeckType  entities.DeckType
}

// ResetDeckOutput contains the freshly built deck
type ResetDeckOutput struct {
	Deck *entities.DeckState
}

// GetDeckStateInput identifies the deck to inspect
type GetDeckStateInput struct {
	SessionID string
	DeckType  entities.DeckType
}

// GetDeckStateOutput contains the deck state and derived counts
type GetDeckStateOutput struct {
	Deck *entities.DeckState
	// Total is the size of the deck's card universe
	Total int
	// Outstanding counts instances held by the player or in inventory
	Outstanding int
}
