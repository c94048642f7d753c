// Package catalog holds the immutable weapon definition catalog. The
// catalog is constructed explicitly at startup and injected into the
// orchestrators; nothing in the engine reaches into ambient global state.
package catalog

import (
	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
)

// Catalog is an immutable, ordered collection of weapon definitions
type Catalog struct {
	defs   []entities.WeaponDefinition
	byID   map[entities.DefinitionID]*entities.WeaponDefinition
	byDeck map[entities.DeckType][]entities.WeaponDefinition
}

// New builds a catalog from an ordered definition list. Definition ids
// must be unique and consistent with their composite parts.
func New(defs []entities.WeaponDefinition) (*Catalog, error) {
	c := &Catalog{
		defs:   make([]entities.WeaponDefinition, len(defs)),
		byID:   make(map[entities.DefinitionID]*entities.WeaponDefinition, len(defs)),
		byDeck: make(map[entities.DeckType][]entities.WeaponDefinition),
	}
	copy(c.defs, defs)

	for i := range c.defs {
		def := &c.defs[i]
		if !def.DeckType.Valid() {
			return nil, errors.InvalidArgumentf("definition %q has unknown deck type %q", def.Name, def.DeckType)
		}
		want := entities.MakeDefinitionID(def.DeckType, def.Name, def.Set)
		if def.ID == "" {
			def.ID = want
		} else if def.ID != want {
			return nil, errors.InvalidArgumentf("definition id %q does not match composite id %q", def.ID, want)
		}
		if _, exists := c.byID[def.ID]; exists {
			return nil, errors.AlreadyExistsf("duplicate definition id %q", def.ID)
		}
		c.byID[def.ID] = def
		c.byDeck[def.DeckType] = append(c.byDeck[def.DeckType], *def)
	}

	return c, nil
}

// Get returns the definition for an id
func (c *Catalog) Get(id entities.DefinitionID) (*entities.WeaponDefinition, error) {
	def, ok := c.byID[id]
	if !ok {
		return nil, errors.NotFoundf("definition %q not in catalog", id)
	}
	return def, nil
}

// Has reports whether an id exists in the catalog
func (c *Catalog) Has(id entities.DefinitionID) bool {
	_, ok := c.byID[id]
	return ok
}

// Definitions returns the catalog-ordered definitions for a deck type
func (c *Catalog) Definitions(deckType entities.DeckType) []entities.WeaponDefinition {
	return c.byDeck[deckType]
}

// All returns every definition in catalog order
func (c *Catalog) All() []entities.WeaponDefinition {
	return c.defs
}

// Len is the number of definitions
func (c *Catalog) Len() int {
	return len(c.defs)
}
