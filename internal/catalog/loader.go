package catalog

import (
	"encoding/json"
	"os"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
)

// fileDefinition is the on-disk JSON shape for one catalog entry
type fileDefinition struct {
	Name         string   `json:"name"`
	Set          string   `json:"set"`
	DeckType     string   `json:"deckType"`
	Category     string   `json:"category"`
	DefaultCount int32    `json:"defaultCount"`
	Attack       int32    `json:"attack"`
	Block        int32    `json:"block"`
	Range        int32    `json:"range"`
	Keywords     []string `json:"keywords,omitempty"`
	Deprecated   bool     `json:"deprecated,omitempty"`
}

// LoadFile reads a weapon catalog from a JSON file. This is the
// data-loading step the server runs once at startup; the engine only
// ever sees the constructed Catalog value.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 // path comes from operator config
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog file %s", path)
	}

	var fileDefs []fileDefinition
	if err := json.Unmarshal(data, &fileDefs); err != nil {
		return nil, errors.Wrapf(err, "failed to parse catalog file %s", path)
	}

	defs := make([]entities.WeaponDefinition, 0, len(fileDefs))
	for _, fd := range fileDefs {
		deckType := entities.DeckType(fd.DeckType)
		defs = append(defs, entities.WeaponDefinition{
			ID:           entities.MakeDefinitionID(deckType, fd.Name, fd.Set),
			Name:         fd.Name,
			Set:          fd.Set,
			DeckType:     deckType,
			Category:     fd.Category,
			DefaultCount: fd.DefaultCount,
			Stats: entities.WeaponStats{
				Attack:   fd.Attack,
				Block:    fd.Block,
				Range:    fd.Range,
				Keywords: fd.Keywords,
			},
			Deprecated: fd.Deprecated,
		})
	}

	return New(defs)
}
