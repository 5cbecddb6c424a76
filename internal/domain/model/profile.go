package model

import (
	"slices"
	"time"

	"github.com/okian/thrive/internal/domain/achievement"
	"github.com/okian/thrive/internal/domain/burnout"
	"github.com/okian/thrive/internal/domain/health"
	"github.com/okian/thrive/internal/domain/progression"
)

// Profile is the per-user state built up from check-ins.
type Profile struct {
	UserID         string                    `json:"user_id"`
	History        []health.DailyMetrics     `json:"history"` // most recent first
	Streak         int                       `json:"current_streak"`
	BestStreak     int                       `json:"best_streak"`
	LastLogged     *time.Time                `json:"last_logged,omitempty"`
	XP             int                       `json:"xp"`
	Achievements   []achievement.Key         `json:"achievements"` // grant order
	LastAssessment *burnout.Assessment       `json:"last_assessment,omitempty"`
	Level          progression.LevelProgress `json:"level"`
	CheckIns       int                       `json:"checkins"`
}

// Granted returns the set of achievement keys already awarded.
func (p *Profile) Granted() map[achievement.Key]bool {
	out := make(map[achievement.Key]bool, len(p.Achievements))
	for _, k := range p.Achievements {
		out[k] = true
	}
	return out
}

// Clone returns a deep copy.
func (p *Profile) Clone() Profile {
	c := *p
	c.History = slices.Clone(p.History)
	c.Achievements = slices.Clone(p.Achievements)
	if p.LastLogged != nil {
		t := *p.LastLogged
		c.LastLogged = &t
	}
	if p.LastAssessment != nil {
		a := *p.LastAssessment
		a.Recommendations = slices.Clone(p.LastAssessment.Recommendations)
		c.LastAssessment = &a
	}
	return c
}
