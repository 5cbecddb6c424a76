// Package achievement detects milestone unlocks from a window of recent
// daily metrics and the running streak counter.
//
// Detection is stateless: every call re-evaluates from scratch and returns
// a candidate set. Callers must drop keys they have already granted before
// persisting (see Filter).
package achievement

import (
	"github.com/okian/thrive/internal/domain/burnout"
	"github.com/okian/thrive/internal/domain/health"
)

// Key is the stable identifier of an achievement kind.
type Key string

// Achievement keys.
const (
	Streak7        Key = "streak_7"
	Streak30       Key = "streak_30"
	SleepChampion  Key = "sleep_champion"
	StressMaster   Key = "stress_master"
	FitnessWarrior Key = "fitness_warrior"
	PerfectWeek    Key = "perfect_week"
)

// Achievement is an unlocked milestone.
type Achievement struct {
	Key  Key    `json:"key"`
	Name string `json:"name"`
	XP   int    `json:"xp"`
}

// Catalog lists every achievement in detection order.
var Catalog = []Achievement{
	{Key: Streak7, Name: "Week Warrior", XP: 100},
	{Key: Streak30, Name: "Monthly Master", XP: 500},
	{Key: SleepChampion, Name: "Sleep Champion", XP: 150},
	{Key: StressMaster, Name: "Zen Master", XP: 200},
	{Key: FitnessWarrior, Name: "Fitness Warrior", XP: 300},
	{Key: PerfectWeek, Name: "Perfect Week", XP: 250},
}

// Lookup returns the catalog entry for key.
func Lookup(key Key) (Achievement, bool) {
	for _, a := range Catalog {
		if a.Key == key {
			return a, true
		}
	}
	return Achievement{}, false
}

// Window sizes and thresholds.
const (
	weekStreak  = 7
	monthStreak = 30

	sleepWindow    = 7
	stressWindow   = 14
	fitnessWindow  = 30
	perfectWindow  = 7
	perfectMinimum = 80

	sleepMin      = 7.0
	sleepMax      = 9.0
	calmStressMax = 3
	activeMinutes = 30
)

// MaxWindow is the longest history any rule inspects.
const MaxWindow = fitnessWindow

type rule struct {
	key   Key
	fires func(history []health.DailyMetrics, streak int) bool
}

// Streak rules fire only on the exact value so a long streak is rewarded
// once per milestone when called once per day.
var rules = []rule{
	{Streak7, func(_ []health.DailyMetrics, streak int) bool { return streak == weekStreak }},
	{Streak30, func(_ []health.DailyMetrics, streak int) bool { return streak == monthStreak }},
	{SleepChampion, func(h []health.DailyMetrics, _ int) bool {
		return all(h, sleepWindow, func(m health.DailyMetrics) bool {
			return m.SleepHours >= sleepMin && m.SleepHours <= sleepMax
		})
	}},
	{StressMaster, func(h []health.DailyMetrics, _ int) bool {
		return all(h, stressWindow, func(m health.DailyMetrics) bool { return m.Stress <= calmStressMax })
	}},
	{FitnessWarrior, func(h []health.DailyMetrics, _ int) bool {
		return all(h, fitnessWindow, func(m health.DailyMetrics) bool { return m.ExerciseMinutes >= activeMinutes })
	}},
	{PerfectWeek, func(h []health.DailyMetrics, _ int) bool {
		return all(h, perfectWindow, func(m health.DailyMetrics) bool {
			return burnout.Evaluate(m).OverallScore >= perfectMinimum
		})
	}},
}

// all reports whether the first n entries exist and all satisfy pred.
func all(history []health.DailyMetrics, n int, pred func(health.DailyMetrics) bool) bool {
	if len(history) < n {
		return false
	}
	for _, m := range history[:n] {
		if !pred(m) {
			return false
		}
	}
	return true
}

// Detect returns every achievement whose rule fires. history must be ordered
// most-recent-first. The result follows Catalog order and has no duplicates.
func Detect(history []health.DailyMetrics, currentStreak int) []Achievement {
	var out []Achievement
	for _, r := range rules {
		if !r.fires(history, currentStreak) {
			continue
		}
		if a, ok := Lookup(r.key); ok {
			out = append(out, a)
		}
	}
	return out
}

// Filter drops candidates whose key is already in granted.
func Filter(candidates []Achievement, granted map[Key]bool) []Achievement {
	out := make([]Achievement, 0, len(candidates))
	for _, a := range candidates {
		if granted[a.Key] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// TotalXP sums the XP of a set of achievements.
func TotalXP(as []Achievement) int {
	total := 0
	for _, a := range as {
		total += a.XP
	}
	return total
}
