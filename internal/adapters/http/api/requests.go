package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/thrive/internal/domain/health"
)

// metricsRequest mirrors the DailyMetrics schema. Pointers tell a missing
// field apart from a zero value.
type metricsRequest struct {
	SleepHours      *float64 `json:"sleep_hours"`
	Mood            *int     `json:"mood"`
	Stress          *int     `json:"stress"`
	ExerciseMinutes *int     `json:"exercise_minutes"`
	ScreenTimeHours *float64 `json:"screen_time_hours"`
}

func (m metricsRequest) toDomain() (health.DailyMetrics, error) {
	var missing []string
	if m.SleepHours == nil {
		missing = append(missing, "sleep_hours")
	}
	if m.Mood == nil {
		missing = append(missing, "mood")
	}
	if m.Stress == nil {
		missing = append(missing, "stress")
	}
	if m.ExerciseMinutes == nil {
		missing = append(missing, "exercise_minutes")
	}
	if m.ScreenTimeHours == nil {
		missing = append(missing, "screen_time_hours")
	}
	if len(missing) > 0 {
		return health.DailyMetrics{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return health.DailyMetrics{
		SleepHours:      *m.SleepHours,
		Mood:            *m.Mood,
		Stress:          *m.Stress,
		ExerciseMinutes: *m.ExerciseMinutes,
		ScreenTimeHours: *m.ScreenTimeHours,
	}, nil
}

type achievementsRequest struct {
	History       []metricsRequest `json:"history"` // most recent first
	CurrentStreak int              `json:"current_streak"`
}

func (a achievementsRequest) toDomain() ([]health.DailyMetrics, error) {
	if a.CurrentStreak < 0 {
		return nil, errors.New("current_streak must not be negative")
	}
	out := make([]health.DailyMetrics, len(a.History))
	for i, m := range a.History {
		d, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

type penaltyRequest struct {
	LastLogged *string `json:"last_logged"`
	Today      string  `json:"today"`
}

type checkInRequest struct {
	ID      string         `json:"id"`
	UserID  string         `json:"user_id"`
	Date    string         `json:"date"` // YYYY-MM-DD, defaults to today
	Metrics metricsRequest `json:"metrics"`
}

// parseDate reads a YYYY-MM-DD date as midnight in loc.
func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; must be YYYY-MM-DD", field)
	}
	return t, nil
}
