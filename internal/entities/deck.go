package entities

// CardInstanceID is a unique identifier for one physical card copy
type CardInstanceID string

// CardInstance is one physical copy of a weapon definition. It belongs
// to exactly one deck's card universe for its lifetime.
type CardInstance struct {
	ID           CardInstanceID
	DefinitionID DefinitionID
	DeckType     DeckType
}

// RecentDrawLimit bounds the DeckState recent-draw ring buffer
const RecentDrawLimit = 3

// DeckState tracks one deck type's card simulation for a session.
// Remaining is ordered top-first; Discard and RecentDraws are ordered
// most-recent-first.
type DeckState struct {
	DeckType      DeckType
	Remaining     []CardInstanceID
	Discard       []CardInstanceID
	RecentDraws   []CardInstanceID
	LastShuffleAt int64
	LastDrawAt    int64
}

// TakeTop removes and returns the top remaining card.
// The second return is false when remaining is empty.
func (d *DeckState) TakeTop() (CardInstanceID, bool) {
	if len(d.Remaining) == 0 {
		return "", false
	}
	top := d.Remaining[0]
	d.Remaining = d.Remaining[1:]
	return top, true
}

// PushDiscard prepends a card to the discard pile (most-recent-first)
func (d *DeckState) PushDiscard(id CardInstanceID) {
	d.Discard = append([]CardInstanceID{id}, d.Discard...)
}

// RemoveFromDiscard removes a card from the discard pile, preserving
// order. Returns false when the card is not in the pile.
func (d *DeckState) RemoveFromDiscard(id CardInstanceID) bool {
	for i, c := range d.Discard {
		if c == id {
			d.Discard = append(d.Discard[:i], d.Discard[i+1:]...)
			return true
		}
	}
	return false
}

// ReturnToTop inserts a card at the front of remaining
func (d *DeckState) ReturnToTop(id CardInstanceID) {
	d.Remaining = append([]CardInstanceID{id}, d.Remaining...)
}

// ReturnToBottom appends a card to the back of remaining
func (d *DeckState) ReturnToBottom(id CardInstanceID) {
	d.Remaining = append(d.Remaining, id)
}

// RecordDraw pushes a card onto the recent-draw buffer, truncating it
// to RecentDrawLimit entries.
func (d *DeckState) RecordDraw(id CardInstanceID) {
	d.RecentDraws = append([]CardInstanceID{id}, d.RecentDraws...)
	if len(d.RecentDraws) > RecentDrawLimit {
		d.RecentDraws = d.RecentDraws[:RecentDrawLimit]
	}
}

// ReclaimDiscard moves every discard card into remaining, preserving
// discard order at the back of remaining, and empties the pile.
func (d *DeckState) ReclaimDiscard() {
	d.Remaining = append(d.Remaining, d.Discard...)
	d.Discard = nil
}
