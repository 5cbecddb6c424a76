// Package repository holds user profiles in memory.
package repository

import (
	"context"

	"github.com/okian/thrive/internal/domain/model"
)

// UpdateFunc mutates a profile in place. Returning an error discards the change.
type UpdateFunc func(p *model.Profile) error

// Store provides read/write access to user profiles.
type Store interface {
	// Get returns a copy of the profile. Returns ErrNotFound for unknown users.
	Get(ctx context.Context, userID string) (model.Profile, error)

	// Update runs fn on the user's profile (a fresh one for unknown users)
	// while holding the user's lock, and stores the result when fn succeeds.
	// It returns a copy of the stored profile.
	Update(ctx context.Context, userID string, fn UpdateFunc) (model.Profile, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int
}
