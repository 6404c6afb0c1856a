// Package repository keeps per-session trial sets for the HTTP host.
package repository

import (
	"context"

	"github.com/okian/fisher/internal/domain/meta"
)

// Store owns every open session's analysis.
type Store interface {
	// Create opens an empty session and returns its id.
	// Returns ErrCapacity when the session limit is reached.
	Create(ctx context.Context) (string, error)

	// With runs fn with exclusive access to the session's analysis.
	// Returns ErrNotFound if the session is unknown, otherwise fn's error.
	With(ctx context.Context, id string, fn func(*meta.Analysis) error) error

	// Delete closes a session. Returns ErrNotFound if the session is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of open sessions.
	Count(ctx context.Context) int

	// Close stops background maintenance.
	Close() error
}
