// Package simulate drives a running scoring service with synthetic users and
// checks the resulting profiles against a local replay.
package simulate

import (
	"errors"
	"time"
)

// ErrVerificationFailed is returned when a served profile differs from the replay.
var ErrVerificationFailed = errors.New("profile verification failed")

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Users         int           // Number of synthetic users
	Days          int           // Days simulated per user
	Workers       int           // Concurrent user submitters
	Timeout       time.Duration // HTTP request timeout
	Settle        time.Duration // How long to wait for the queue to drain
	Seed          uint64        // Seed for reproducible plans
	Start         time.Time     // First simulated day
	SkipRate      float64       // Chance a user skips a day
	RelogRate     float64       // Chance a user re-logs the same day with new metrics
	DuplicateRate float64       // Chance a check-in is resubmitted with the same id
	CheckInXP     int           // Must match the server's checkin_xp
	HistoryWindow int           // Must match the server's history_window
	OutputFile    string        // Optional JSON dump of the generated plan
	Verbose       bool
}

// Stats summarizes a run.
type Stats struct {
	Users      int
	Submitted  int
	Accepted   int
	Duplicates int
	Failed     int
	Verified   int
	Mismatched int
	Duration   time.Duration
}
