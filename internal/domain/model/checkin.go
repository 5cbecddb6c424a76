// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/thrive/internal/domain/health"
)

// ErrMissingUser is returned for a check-in without a user id.
var ErrMissingUser = errors.New("check-in has no user id")

// CheckIn is one daily metrics submission for a user.
type CheckIn struct {
	ID      string              `json:"id"`      // idempotency key
	UserID  string              `json:"user_id"` // owner of the profile
	Date    time.Time           `json:"date"`    // calendar day the metrics belong to
	Metrics health.DailyMetrics `json:"metrics"`
}

// Validate checks the fields every layer relies on.
func (c CheckIn) Validate() error {
	if c.UserID == "" {
		return ErrMissingUser
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("check-in %s: %w", c.ID, err)
	}
	return nil
}
