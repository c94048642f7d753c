// Package deckpreset defines the interface for deck preset persistence
package deckpreset

//go:generate mockgen -destination=mock/mock_repository.go -package=deckpresetmock github.com/darkroot-games/warband-api/internal/repositories/deck_preset Repository

import (
	"context"

	"github.com/darkroot-games/warband-api/internal/entities"
)

// Repository persists deck presets. The default-preset pointer is owned
// by the repository so that at most one preset is default at any time.
type Repository interface {
	// Create stores a new preset
	// Returns errors.AlreadyExists if the preset id is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a preset by ID
	// Returns errors.NotFound if the preset doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetDefault retrieves the current default preset
	// Returns errors.NotFound when no default is set
	GetDefault(ctx context.Context) (*GetDefaultOutput, error)

	// List returns all presets ordered by name
	List(ctx context.Context) (*ListOutput, error)

	// Update replaces a preset document
	// Returns errors.NotFound if the preset doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// SetDefault atomically repoints the default-preset pointer
	// Returns errors.NotFound if the preset doesn't exist
	SetDefault(ctx context.Context, input SetDefaultInput) (*SetDefaultOutput, error)

	// Delete removes a preset; if it was the default, the pointer is
	// cleared in the same write
	// Returns errors.NotFound if the preset doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for creating a preset
type CreateInput struct {
	Preset *entities.DeckPreset
}

// CreateOutput defines the output for creating a preset
type CreateOutput struct {
	Preset *entities.DeckPreset
}

// GetInput defines the input for getting a preset
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a preset
type GetOutput struct {
	Preset *entities.DeckPreset
}

// GetDefaultOutput defines the output for getting the default preset
type GetDefaultOutput struct {
	Preset *entities.DeckPreset
}

// ListOutput defines the output for listing presets
type ListOutput struct {
	Presets []*entities.DeckPreset
}

// UpdateInput defines the input for updating a preset
type UpdateInput struct {
	Preset *entities.DeckPreset
}

// UpdateOutput defines the output for updating a preset
type UpdateOutput struct {
	Preset *entities.DeckPreset
}

// SetDefaultInput defines the input for repointing the default preset
type SetDefaultInput struct {
	ID string
}

// SetDefaultOutput defines the output for repointing the default preset
type SetDefaultOutput struct{}

// DeleteInput defines the input for deleting a preset
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a preset
type DeleteOutput struct{}
