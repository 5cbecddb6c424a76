package progression

import "time"

// PenaltyPerMissedDay is deducted for every missed day beyond the first.
const PenaltyPerMissedDay = 50

const secondsPerDay = 24 * 60 * 60

// PenaltyResult is the outcome of a missed-day check.
type PenaltyResult struct {
	PenaltyXP    int  `json:"penalty_xp"`
	BrokenStreak bool `json:"broken_streak"`
}

// CalculatePenalty compares the last logged date with today. Both are reduced
// to calendar dates in today's location, so same-day and next-day logging
// never penalize. A nil lastLogged means nothing was ever logged.
func CalculatePenalty(lastLogged *time.Time, today time.Time) PenaltyResult {
	if lastLogged == nil {
		return PenaltyResult{}
	}
	gap := DaysBetween(*lastLogged, today)
	if gap <= 1 {
		return PenaltyResult{}
	}
	return PenaltyResult{
		PenaltyXP:    (gap - 1) * PenaltyPerMissedDay,
		BrokenStreak: true,
	}
}

// DaysBetween returns the whole calendar days from a to b, evaluated in b's
// location. It is negative when a falls after b.
func DaysBetween(a, b time.Time) int {
	loc := b.Location()
	from := civilDate(a.In(loc))
	to := civilDate(b)
	return int(to.Unix()/secondsPerDay - from.Unix()/secondsPerDay)
}

// civilDate pins the calendar date to UTC midnight so DST shifts in the
// source location cannot produce 23 or 25 hour days. Day numbers are taken
// from Unix seconds, which do not saturate the way time.Duration does.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
