package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darkroot-games/warband-api/internal/catalog"
	"github.com/darkroot-games/warband-api/internal/entities"
)

// CatalogDefinitions returns the fixture weapon catalog entries shared
// by the orchestrator tests. The starting deck deliberately matches the
// two-definition (3 + 2 copies) layout the deck tests drain and reclaim.
func CatalogDefinitions() []entities.WeaponDefinition {
	return []entities.WeaponDefinition{
		{
			Name:         "Rusted Blade",
			Set:          "core",
			DeckType:     entities.DeckTypeStarting,
			Category:     "sword",
			DefaultCount: 3,
			Stats:        entities.WeaponStats{Attack: 1},
		},
		{
			Name:         "Cracked Shield",
			Set:          "core",
			DeckType:     entities.DeckTypeStarting,
			Category:     "shield",
			DefaultCount: 2,
			Stats:        entities.WeaponStats{Block: 1},
		},
		{
			Name:         "Longsword",
			Set:          "core",
			DeckType:     entities.DeckTypeRegular,
			Category:     "sword",
			DefaultCount: 3,
			Stats:        entities.WeaponStats{Attack: 3},
		},
		{
			Name:         "War Axe",
			Set:          "core",
			DeckType:     entities.DeckTypeRegular,
			Category:     "axe",
			DefaultCount: 2,
			Stats:        entities.WeaponStats{Attack: 4},
		},
		{
			Name:         "Halberd",
			Set:          "expansion",
			DeckType:     entities.DeckTypeRegular,
			Category:     "polearm",
			DefaultCount: 1,
			Stats:        entities.WeaponStats{Attack: 3, Range: 2},
			Deprecated:   true,
		},
		{
			Name:         "Sunforged Greatblade",
			Set:          "core",
			DeckType:     entities.DeckTypeUltrared,
			Category:     "sword",
			DefaultCount: 1,
			Stats:        entities.WeaponStats{Attack: 9},
		},
	}
}

// CreateTestCatalog builds the fixture catalog
func CreateTestCatalog(t *testing.T) *catalog.Catalog {
	cat, err := catalog.New(CatalogDefinitions())
	require.NoError(t, err, "failed to build fixture catalog")
	return cat
}

// TestSkillSet returns the fixture unlockable skill pool: one yellow,
// two orange, three red, matching the per-tier unlock rules.
func TestSkillSet() entities.SkillSet {
	return entities.SkillSet{
		Yellow: []entities.SkillID{"battle-cry"},
		Orange: []entities.SkillID{"riposte", "shield-wall"},
		Red:    []entities.SkillID{"executioner", "last-stand", "bloodlust"},
	}
}
