// Package health defines daily health inputs and the per-dimension scorer
// that normalizes them into 10-100 scores.
package health

import (
	"fmt"
	"math"
)

// DailyMetrics holds one day's observed values. The date lives with the caller.
type DailyMetrics struct {
	SleepHours      float64 `json:"sleep_hours"`
	Mood            int     `json:"mood"`   // 1-10, higher is better
	Stress          int     `json:"stress"` // 1-10, lower is better
	ExerciseMinutes int     `json:"exercise_minutes"`
	ScreenTimeHours float64 `json:"screen_time_hours"`
}

// Validate rejects values that cannot be scored at all. Finite values outside
// the declared ranges are accepted; they simply land in the floor bucket.
func (m DailyMetrics) Validate() error {
	if !finite(m.SleepHours) {
		return fmt.Errorf("sleep_hours: %w", ErrInvalidInput)
	}
	if !finite(m.ScreenTimeHours) {
		return fmt.Errorf("screen_time_hours: %w", ErrInvalidInput)
	}
	return nil
}

// ValidateHistory validates every entry of a history window.
func ValidateHistory(history []DailyMetrics) error {
	for i, m := range history {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
