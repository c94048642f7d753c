// Package errors provides structured error handling for the warband-api project.
//
// It provides:
//   - Structured errors with codes, messages, and metadata
//   - gRPC status conversion
//   - Error context preservation through wrapping
//   - Validation error helpers
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("session not found")
//	err := errors.InvalidArgumentf("invalid deck type: %s", deckType)
//
// Adding metadata:
//
//	err := errors.NotFound("session not found").
//	    WithMeta("session_id", sessionID)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, id); err != nil {
//	    return errors.Wrap(err, "failed to get session")
//	}
//
// # Error Checking
//
//	if errors.IsNotFound(err) {
//	    // Handle not found case
//	}
//
//	code := errors.GetCode(err)
//	meta := errors.GetMeta(err)
//
// # Domain Conventions
//
// The engine maps its domain failures onto these codes:
//   - ResourceExhausted: inventory slot capacity exceeded
//   - FailedPrecondition: deleting the sole default preset, invalid skill selection
//   - DataLoss: deck conservation invariant broken (remaining and discard both
//     empty while card instances are still outstanding)
//   - Internal: storage failures, wrapped with context so callers can retry
//   - NotFound / InvalidArgument: lookup and input validation failures
//
// Repository layer returns NotFound/AlreadyExists and wraps Redis errors.
// Orchestrator layer validates inputs (InvalidArgument), checks preconditions
// (FailedPrecondition), and wraps repository errors with business context.
package errors
