// Package gamesession defines the interface for game session persistence
package gamesession

//go:generate mockgen -destination=mock/mock_repository.go -package=gamesessionmock github.com/darkroot-games/warband-api/internal/repositories/game_session Repository

import (
	"context"

	"github.com/darkroot-games/warband-api/internal/entities"
)

// Repository persists GameSession aggregates and their append-only
// inventory event logs.
type Repository interface {
	// Create stores a new session
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the session id is taken
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a session by ID
	// Returns errors.NotFound if the session doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a session document and, in the same atomic write,
	// appends any supplied inventory events to the session's log
	// Returns errors.NotFound if the session doesn't exist
	// Returns errors.Internal for storage failures
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a session and its event log
	// Returns errors.NotFound if the session doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListEvents returns a session's inventory event log in
	// chronological order
	ListEvents(ctx context.Context, input ListEventsInput) (*ListEventsOutput, error)
}

// CreateInput defines the input for creating a session
type CreateInput struct {
	Session *entities.GameSession
}

// CreateOutput defines the output for creating a session
type CreateOutput struct {
	Session *entities.GameSession
}

// GetInput defines the input for getting a session
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a session
type GetOutput struct {
	Session *entities.GameSession
}

// UpdateInput defines the input for updating a session. Events are
// appended to the audit log atomically with the session write.
type UpdateInput struct {
	Session *entities.GameSession
	Events  []entities.InventoryEvent
}

// UpdateOutput defines the output for updating a session
type UpdateOutput struct {
	Session *entities.GameSession
}

// DeleteInput defines the input for deleting a session
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a session
type DeleteOutput struct{}

// ListEventsInput defines the input for reading the event log
type ListEventsInput struct {
	SessionID string
	// CardInstanceID optionally filters to one instance's events
	CardInstanceID entities.CardInstanceID
}

// ListEventsOutput defines the output for reading the event log
type ListEventsOutput struct {
	Events []entities.InventoryEvent
}
