// Package deck implements the card deck simulation: building decks from
// resolved definitions, shuffling, drawing, and the discard pile.
package deck

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	"github.com/darkroot-games/warband-api/internal/orchestrators/customization"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
)

// Build materializes one card instance per effective copy and returns
// the deck shuffled. Deprecated and zero-count definitions never reach
// this function; the resolver has already dropped them.
func Build(
	deckType entities.DeckType,
	resolved []customization.ResolvedDefinition,
	gen idgen.Generator,
	roller dice.Roller,
	now int64,
) ([]*entities.CardInstance, *entities.DeckState, error) {
	var cards []*entities.CardInstance
	for _, r := range resolved {
		for i := int32(0); i < r.Count; i++ {
			cards = append(cards, &entities.CardInstance{
				ID:           entities.CardInstanceID(gen.Generate()),
				DefinitionID: r.Definition.ID,
				DeckType:     deckType,
			})
		}
	}

	state := &entities.DeckState{
		DeckType:      deckType,
		Remaining:     make([]entities.CardInstanceID, 0, len(cards)),
		LastShuffleAt: now,
	}
	defs := make(map[entities.CardInstanceID]entities.DefinitionID, len(cards))
	for _, c := range cards {
		state.Remaining = append(state.Remaining, c.ID)
		defs[c.ID] = c.DefinitionID
	}

	if err := Shuffle(roller, state.Remaining, func(id entities.CardInstanceID) entities.DefinitionID {
		return defs[id]
	}); err != nil {
		return nil, nil, err
	}

	return cards, state, nil
}

// Shuffle randomizes the card order (Fisher-Yates driven by the roller)
// and then repairs adjacent duplicates of the same definition.
func Shuffle(roller dice.Roller, ids []entities.CardInstanceID, defOf func(entities.CardInstanceID) entities.DefinitionID) error {
	for i := len(ids) - 1; i > 0; i-- {
		r, err := roller.Roll(i + 1)
		if err != nil {
			return errors.Wrap(err, "shuffle roll failed")
		}
		j := r - 1
		ids[i], ids[j] = ids[j], ids[i]
	}
	repairAdjacent(ids, defOf)
	return nil
}

// repairAdjacent scans left to right and, wherever two neighbors share
// a definition, swaps the nearest differing later card into the second
// position. When the whole tail is one definition it attempts a wrap
// swap with position 0. The guarantee is best-effort: a definition that
// dominates the deck can keep adjacent pairs.
func repairAdjacent(ids []entities.CardInstanceID, defOf func(entities.CardInstanceID) entities.DefinitionID) {
	n := len(ids)
	for i := 0; i+1 < n; i++ {
		if defOf(ids[i]) != defOf(ids[i+1]) {
			continue
		}

		swapped := false
		for j := i + 2; j < n; j++ {
			if defOf(ids[j]) != defOf(ids[i]) {
				ids[i+1], ids[j] = ids[j], ids[i+1]
				swapped = true
				break
			}
		}
		if swapped {
			continue
		}

		// the tail from i+1 on is all one definition
		if defOf(ids[0]) == defOf(ids[i]) {
			continue
		}
		if i+2 < n && defOf(ids[0]) == defOf(ids[i+2]) {
			continue
		}
		if defOf(ids[i+1]) == defOf(ids[1]) {
			continue
		}
		ids[0], ids[i+1] = ids[i+1], ids[0]
	}
}
