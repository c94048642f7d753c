package deckpreset_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	deckpreset "github.com/darkroot-games/warband-api/internal/repositories/deck_preset"
	"github.com/darkroot-games/warband-api/internal/testutils"
)

type DeckPresetRepositoryTestSuite struct {
	suite.Suite
	repo    deckpreset.Repository
	cleanup func()
	ctx     context.Context
}

func (s *DeckPresetRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = deckpreset.NewRedisRepository(client)
	s.ctx = context.Background()
}

func (s *DeckPresetRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *DeckPresetRepositoryTestSuite) create(id, name string) *entities.DeckPreset {
	preset := &entities.DeckPreset{ID: id, Name: name}
	_, err := s.repo.Create(s.ctx, deckpreset.CreateInput{Preset: preset})
	s.Require().NoError(err)
	return preset
}

func (s *DeckPresetRepositoryTestSuite) TestCreateAndGet() {
	count := int32(1)
	preset := &entities.DeckPreset{
		ID:   "preset-1",
		Name: "Lean",
		Customizations: []entities.Customization{
			{DefinitionID: "regular:Longsword:core", IsEnabled: true, CustomCount: &count},
		},
	}
	_, err := s.repo.Create(s.ctx, deckpreset.CreateInput{Preset: preset})
	s.Require().NoError(err)

	output, err := s.repo.Get(s.ctx, deckpreset.GetInput{ID: "preset-1"})
	s.Require().NoError(err)
	s.Equal("Lean", output.Preset.Name)
	s.Require().Len(output.Preset.Customizations, 1)
	s.Equal(int32(1), *output.Preset.Customizations[0].CustomCount)
}

func (s *DeckPresetRepositoryTestSuite) TestListSortsByName() {
	s.create("preset-1", "Zeta")
	s.create("preset-2", "Alpha")
	s.create("preset-3", "Mid")

	output, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(output.Presets, 3)
	s.Equal("Alpha", output.Presets[0].Name)
	s.Equal("Mid", output.Presets[1].Name)
	s.Equal("Zeta", output.Presets[2].Name)
}

func (s *DeckPresetRepositoryTestSuite) TestDefaultPointer() {
	s.create("preset-1", "A")
	s.create("preset-2", "B")

	s.Run("no default initially", func() {
		_, err := s.repo.GetDefault(s.ctx)
		s.Require().Error(err)
		s.True(errors.IsNotFound(err))
	})

	s.Run("setting the default unsets the prior one", func() {
		_, err := s.repo.SetDefault(s.ctx, deckpreset.SetDefaultInput{ID: "preset-1"})
		s.Require().NoError(err)
		_, err = s.repo.SetDefault(s.ctx, deckpreset.SetDefaultInput{ID: "preset-2"})
		s.Require().NoError(err)

		output, err := s.repo.GetDefault(s.ctx)
		s.Require().NoError(err)
		s.Equal("preset-2", output.Preset.ID)
		s.True(output.Preset.IsDefault)

		first, err := s.repo.Get(s.ctx, deckpreset.GetInput{ID: "preset-1"})
		s.Require().NoError(err)
		s.False(first.Preset.IsDefault)
	})

	s.Run("deleting the default clears the pointer", func() {
		_, err := s.repo.Delete(s.ctx, deckpreset.DeleteInput{ID: "preset-2"})
		s.Require().NoError(err)

		_, err = s.repo.GetDefault(s.ctx)
		s.Require().Error(err)
		s.True(errors.IsNotFound(err))
	})
}

func (s *DeckPresetRepositoryTestSuite) TestUpdate() {
	preset := s.create("preset-1", "A")

	preset.Description = "tuned for short games"
	_, err := s.repo.Update(s.ctx, deckpreset.UpdateInput{Preset: preset})
	s.Require().NoError(err)

	output, err := s.repo.Get(s.ctx, deckpreset.GetInput{ID: "preset-1"})
	s.Require().NoError(err)
	s.Equal("tuned for short games", output.Preset.Description)
}

func (s *DeckPresetRepositoryTestSuite) TestUpdateMissing() {
	_, err := s.repo.Update(s.ctx, deckpreset.UpdateInput{
		Preset: &entities.DeckPreset{ID: "ghost", Name: "Ghost"},
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *DeckPresetRepositoryTestSuite) TestDelete() {
	s.create("preset-1", "A")

	_, err := s.repo.Delete(s.ctx, deckpreset.DeleteInput{ID: "preset-1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, deckpreset.GetInput{ID: "preset-1"})
	s.True(errors.IsNotFound(err))

	output, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(output.Presets)
}

func TestDeckPresetRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckPresetRepositoryTestSuite))
}
