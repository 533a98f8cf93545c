// Package services defines shared utilities consumed by the tagging engine,
// the HTTP transport, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp task IDs, user IDs, and correlation
//     identifiers for logging and tracing.
//   - The error taxonomy: sentinel markers plus typed ValidationError,
//     NotFoundError, ForbiddenError, ConflictError, and UnauthorizedError
//     values that unwrap to them, and the Wrap helper for contextual errors.
//
// Use these helpers so callers can classify failures with errors.Is/errors.As
// instead of matching on message text.
package services
