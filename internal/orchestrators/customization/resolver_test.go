package customization_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/orchestrators/customization"
	"github.com/darkroot-games/warband-api/internal/testutils"
)

type ResolverTestSuite struct {
	suite.Suite

	longswordID entities.DefinitionID
	warAxeID    entities.DefinitionID
	halberdID   entities.DefinitionID
}

func (s *ResolverTestSuite) SetupTest() {
	s.longswordID = entities.MakeDefinitionID(entities.DeckTypeRegular, "Longsword", "core")
	s.warAxeID = entities.MakeDefinitionID(entities.DeckTypeRegular, "War Axe", "core")
	s.halberdID = entities.MakeDefinitionID(entities.DeckTypeRegular, "Halberd", "expansion")
}

func (s *ResolverTestSuite) regularDefs() []entities.WeaponDefinition {
	cat := testutils.CreateTestCatalog(s.T())
	return cat.Definitions(entities.DeckTypeRegular)
}

func (s *ResolverTestSuite) findDef(id entities.DefinitionID) *entities.WeaponDefinition {
	cat := testutils.CreateTestCatalog(s.T())
	def, err := cat.Get(id)
	s.Require().NoError(err)
	return def
}

func int32Ptr(v int32) *int32 { return &v }

func (s *ResolverTestSuite) TestEffectiveCount_LayerPrecedence() {
	def := s.findDef(s.longswordID)

	s.Run("no layers uses the catalog default", func() {
		s.Equal(int32(3), customization.EffectiveCount(def, nil, nil))
	})

	s.Run("preset count overrides the default", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(1)},
			},
		}
		s.Equal(int32(1), customization.EffectiveCount(def, preset, nil))
	})

	s.Run("override count outranks the preset", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(1)},
			},
		}
		override := &entities.SessionDeckOverride{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(5)},
			},
		}
		s.Equal(int32(5), customization.EffectiveCount(def, preset, override))
	})

	s.Run("removing the override falls back to the preset", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(1)},
			},
		}
		s.Equal(int32(1), customization.EffectiveCount(def, preset, nil))
	})

	s.Run("entry without a custom count keeps the default", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: false},
			},
		}
		s.Equal(int32(3), customization.EffectiveCount(def, preset, nil))
	})
}

func (s *ResolverTestSuite) TestEffectiveEnabled() {
	longsword := s.findDef(s.longswordID)
	halberd := s.findDef(s.halberdID)

	s.Run("enabled by default", func() {
		s.True(customization.EffectiveEnabled(longsword, nil, nil))
	})

	s.Run("deprecated definitions are always disabled", func() {
		enabling := &entities.SessionDeckOverride{
			Customizations: []entities.Customization{
				{DefinitionID: s.halberdID, IsEnabled: true},
			},
		}
		s.False(customization.EffectiveEnabled(halberd, nil, enabling))
	})

	s.Run("preset can disable", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: false},
			},
		}
		s.False(customization.EffectiveEnabled(longsword, preset, nil))
	})

	s.Run("override re-enables over a disabling preset", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: false},
			},
		}
		override := &entities.SessionDeckOverride{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true},
			},
		}
		s.True(customization.EffectiveEnabled(longsword, preset, override))
	})
}

func (s *ResolverTestSuite) TestResolve() {
	defs := s.regularDefs()

	s.Run("defaults skip deprecated definitions", func() {
		resolved := customization.Resolve(defs, nil, nil)

		s.Len(resolved, 2)
		for _, r := range resolved {
			s.NotEqual(s.halberdID, r.Definition.ID)
		}
	})

	s.Run("disabled and zero-count entries are excluded", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: false},
				{DefinitionID: s.warAxeID, IsEnabled: true, CustomCount: int32Ptr(0)},
			},
		}
		resolved := customization.Resolve(defs, preset, nil)
		s.Empty(resolved)
	})

	s.Run("keeps catalog order", func() {
		resolved := customization.Resolve(defs, nil, nil)
		s.Require().Len(resolved, 2)
		s.Equal(s.longswordID, resolved[0].Definition.ID)
		s.Equal(s.warAxeID, resolved[1].Definition.ID)
	})
}

func (s *ResolverTestSuite) TestDiffsFromDefault() {
	cat := testutils.CreateTestCatalog(s.T())

	s.Run("reports only deviations sorted by name", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				// matches the default, should not appear
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(3)},
				{DefinitionID: s.warAxeID, IsEnabled: true, CustomCount: int32Ptr(5)},
				{DefinitionID: entities.MakeDefinitionID(entities.DeckTypeStarting, "Cracked Shield", "core"), IsEnabled: false},
			},
		}

		diffs := customization.DiffsFromDefault(cat, preset)

		s.Require().Len(diffs, 2)
		s.Equal("Cracked Shield", diffs[0].DefinitionName)
		s.True(diffs[0].EnabledChanged)
		s.Equal("War Axe", diffs[1].DefinitionName)
		s.True(diffs[1].CountChanged)
		s.Equal(int32(5), diffs[1].Count)
		s.Equal(int32(2), diffs[1].BaseCount)
	})

	s.Run("skips entries for unknown definitions", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: "regular:Ghost Sword:core", IsEnabled: false},
			},
		}
		s.Empty(customization.DiffsFromDefault(cat, preset))
	})
}

func (s *ResolverTestSuite) TestSessionOverrideDiffs() {
	cat := testutils.CreateTestCatalog(s.T())

	s.Run("nil override has no diffs", func() {
		s.Empty(customization.SessionOverrideDiffs(cat, nil, nil))
	})

	s.Run("baseline is the preset layer, not the catalog default", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(1)},
			},
		}
		override := &entities.SessionDeckOverride{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(5)},
			},
		}

		diffs := customization.SessionOverrideDiffs(cat, override, preset)

		s.Require().Len(diffs, 1)
		s.Equal(int32(5), diffs[0].Count)
		s.Equal(int32(1), diffs[0].BaseCount)
		s.True(diffs[0].CountChanged)
		s.False(diffs[0].EnabledChanged)
	})

	s.Run("override matching the preset layer yields no diff", func() {
		preset := &entities.DeckPreset{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(1)},
			},
		}
		override := &entities.SessionDeckOverride{
			Customizations: []entities.Customization{
				{DefinitionID: s.longswordID, IsEnabled: true, CustomCount: int32Ptr(1)},
			},
		}
		s.Empty(customization.SessionOverrideDiffs(cat, override, preset))
	})
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
