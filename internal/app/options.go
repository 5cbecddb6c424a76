package service

import (
	"time"

	"github.com/okian/thrive/internal/adapters/repository"
	"github.com/okian/thrive/internal/domain/achievement"
	"github.com/okian/thrive/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of buffered check-ins.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many check-in ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of profile store shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithHistoryWindow sets how many days of history each profile keeps. Values
// below the longest achievement window are ignored.
func WithHistoryWindow(days int) Option {
	return func(s *Service) {
		if days >= achievement.MaxWindow {
			s.historyWindow = days
		}
	}
}

// WithCheckInXP sets the XP granted for every applied check-in.
func WithCheckInXP(xp int) Option {
	return func(s *Service) {
		if xp >= 0 {
			s.checkInXP = xp
		}
	}
}

// WithLocation sets the time zone that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLocale sets the default locale for rendered recommendations.
func WithLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.locale = locale
		}
	}
}

// WithClock overrides the time source used for undated check-ins.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStore replaces the in-memory profile store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
