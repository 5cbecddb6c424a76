// Package service wires the scoring engine to the check-in pipeline and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/thrive/internal/adapters/mq/queue"
	workerpool "github.com/okian/thrive/internal/adapters/mq/worker"
	"github.com/okian/thrive/internal/adapters/repository"
	"github.com/okian/thrive/internal/domain/achievement"
	"github.com/okian/thrive/internal/domain/burnout"
	"github.com/okian/thrive/internal/domain/dedupe"
	"github.com/okian/thrive/internal/domain/health"
	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/internal/domain/progression"
	"github.com/okian/thrive/pkg/logger"
	"github.com/okian/thrive/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

// Service owns the profile store, the check-in queue and its workers.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   *eventqueue.Partitioned
	pool    *workerpool.Pool
	catalog *burnout.Catalog

	workerCount   int
	queueSize     int
	dedupeSize    int
	shardCount    int
	historyWindow int
	checkInXP     int
	location      *time.Location
	locale        string
	now           func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     10_000,
		dedupeSize:    100_000,
		shardCount:    8,
		historyWindow: achievement.MaxWindow,
		checkInXP:     10,
		location:      time.UTC,
		locale:        burnout.DefaultLocale,
		now:           time.Now,
		catalog:       burnout.NewCatalog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the pipeline components and starts the workers. Each worker
// owns one queue partition, so a user's check-ins are applied in order.
// Workers outlive ctx; they stop on Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		s.store = repository.NewShardedStore(repository.WithShardCount(s.shardCount))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewPartitioned(s.workerCount, s.queueSize)
	sources := make([]workerpool.Queue, 0, s.workerCount)
	for _, part := range s.queue.Partitions() {
		sources = append(sources, part)
	}
	s.pool = workerpool.NewPool(sources, s)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("history_window", s.historyWindow),
		logger.String("timezone", s.location.String()),
	)
	return nil
}

// Stop closes the queue, waits for queued check-ins to drain and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "check-in queue did not drain", logger.Error(err))
	}
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// Score returns the per-dimension breakdown for one day.
func (s *Service) Score(m health.DailyMetrics) (health.Breakdown, error) {
	if err := m.Validate(); err != nil {
		return health.Breakdown{}, err
	}
	return health.Score(m), nil
}

// Evaluate returns the burnout assessment for one day.
func (s *Service) Evaluate(m health.DailyMetrics) (burnout.Assessment, error) {
	if err := m.Validate(); err != nil {
		return burnout.Assessment{}, err
	}
	a := burnout.Evaluate(m)
	recordAssessment(a)
	return a, nil
}

// Render returns the display text for rec. An empty locale uses the service default.
func (s *Service) Render(locale string, rec burnout.Recommendation) string {
	if locale == "" {
		locale = s.locale
	}
	return s.catalog.Render(locale, rec)
}

// Detect returns the achievements a most-recent-first history qualifies for.
func (s *Service) Detect(history []health.DailyMetrics, currentStreak int) ([]achievement.Achievement, error) {
	if err := health.ValidateHistory(history); err != nil {
		return nil, err
	}
	return achievement.Detect(history, currentStreak), nil
}

// Level maps cumulative XP to level progress.
func (s *Service) Level(xp int) progression.LevelProgress {
	return progression.CalculateLevel(xp)
}

// Penalty computes the missed-day penalty between two dates.
func (s *Service) Penalty(lastLogged *time.Time, today time.Time) progression.PenaltyResult {
	return progression.CalculatePenalty(lastLogged, today)
}

// Today returns midnight of the current day in the service time zone.
func (s *Service) Today() time.Time {
	return progression.Midnight(s.now(), s.location)
}

// Location returns the time zone that defines a calendar day.
func (s *Service) Location() *time.Location {
	return s.location
}

// Enqueue validates a check-in and queues it for a worker. Missing ids are
// generated and missing dates default to today. duplicate is true when the
// id was already accepted; the check-in is then dropped. A date before the
// user's last applied day fails with ErrStaleCheckIn.
func (s *Service) Enqueue(ctx context.Context, c model.CheckIn) (accepted model.CheckIn, duplicate bool, err error) { //nolint:gocritic // hugeParam: check-ins are values end to end
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return c, false, ErrNotStarted
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Date.IsZero() {
		c.Date = s.now()
	}
	c.Date = progression.Midnight(c.Date, s.location)
	if err := c.Validate(); err != nil {
		return c, false, err
	}

	if s.deduper.SeenAndRecord(ctx, c.ID) {
		metrics.RecordCheckInDuplicate()
		s.logger.Debug(ctx, "duplicate check-in", logger.String("checkin_id", c.ID))
		return c, true, nil
	}
	if p, err := s.store.Get(ctx, c.UserID); err == nil && p.LastLogged != nil {
		if err := checkStale(*p.LastLogged, c.Date); err != nil {
			s.deduper.Unrecord(ctx, c.ID)
			metrics.RecordCheckInError("stale")
			return c, false, err
		}
	}
	if err := s.queue.Enqueue(ctx, c); err != nil {
		s.deduper.Unrecord(ctx, c.ID)
		return c, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}
	return c, false, nil
}

// Process applies a check-in. It satisfies the worker's Processor.
func (s *Service) Process(ctx context.Context, c model.CheckIn) error { //nolint:gocritic // hugeParam: check-ins are values end to end
	_, err := s.Apply(ctx, c)
	return err
}

// Apply runs the check-in pipeline against the user's profile and returns the
// updated profile.
func (s *Service) Apply(ctx context.Context, c model.CheckIn) (model.Profile, error) { //nolint:gocritic // hugeParam: check-ins are values end to end
	if s.store == nil {
		return model.Profile{}, ErrNotStarted
	}
	if err := c.Validate(); err != nil {
		return model.Profile{}, err
	}
	day := progression.Midnight(c.Date, s.location)

	var (
		penalty  progression.PenaltyResult
		unlocked []achievement.Achievement
		gained   int
	)
	p, err := s.store.Update(ctx, c.UserID, func(p *model.Profile) error {
		penalty, unlocked, gained = progression.PenaltyResult{}, nil, 0

		sameDay := false
		if p.LastLogged != nil {
			if err := checkStale(*p.LastLogged, day); err != nil {
				return err
			}
			sameDay = progression.DaysBetween(*p.LastLogged, day) == 0
		}

		penalty = progression.CalculatePenalty(p.LastLogged, day)
		if penalty.BrokenStreak {
			p.Streak = 0
			p.XP = max(0, p.XP-penalty.PenaltyXP)
		}

		if sameDay && len(p.History) > 0 {
			p.History[0] = c.Metrics
		} else {
			p.Streak++
			p.History = slices.Insert(p.History, 0, c.Metrics)
		}
		if len(p.History) > s.historyWindow {
			p.History = p.History[:s.historyWindow]
		}
		p.BestStreak = max(p.BestStreak, p.Streak)
		p.LastLogged = &day
		p.CheckIns++

		a := burnout.Evaluate(c.Metrics)
		p.LastAssessment = &a

		unlocked = achievement.Filter(achievement.Detect(p.History, p.Streak), p.Granted())
		for _, u := range unlocked {
			p.Achievements = append(p.Achievements, u.Key)
		}
		gained = achievement.TotalXP(unlocked)
		if !sameDay {
			gained += s.checkInXP
		}
		p.XP += gained
		p.Level = progression.CalculateLevel(p.XP)
		return nil
	})
	if err != nil {
		return model.Profile{}, fmt.Errorf("apply check-in %s: %w", c.ID, err)
	}

	metrics.RecordCheckInProcessed()
	recordAssessment(*p.LastAssessment)
	if penalty.BrokenStreak {
		metrics.RecordPenalty(penalty.PenaltyXP)
	}
	for _, u := range unlocked {
		metrics.RecordAchievement(string(u.Key))
	}
	metrics.RecordXPGranted(gained)

	if s.logger != nil {
		s.logger.Debug(ctx, "check-in applied",
			logger.String("checkin_id", c.ID),
			logger.String("user_id", c.UserID),
			logger.Int("streak", p.Streak),
			logger.Int("xp", p.XP),
			logger.Int("unlocked", len(unlocked)),
			logger.Bool("streak_broken", penalty.BrokenStreak),
		)
	}
	return p, nil
}

// Profile returns the stored profile of a user.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, ErrNotStarted
	}
	return s.store.Get(ctx, userID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"historyWindow":  s.historyWindow,
		"checkInXP":      s.checkInXP,
		"timezone":       s.location.String(),
		"defaultLocale":  s.locale,
		"achievementSet": len(achievement.Catalog),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["profiles"] = s.store.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}

// checkStale rejects a day that falls before the last logged day. The worker
// repeats the check because a queued check-in may not be applied yet.
func checkStale(lastLogged, day time.Time) error {
	if progression.DaysBetween(lastLogged, day) < 0 {
		return fmt.Errorf("%w: %s before %s", ErrStaleCheckIn,
			day.Format(time.DateOnly), lastLogged.Format(time.DateOnly))
	}
	return nil
}

func recordAssessment(a burnout.Assessment) { //nolint:gocritic // hugeParam: read-only copy
	metrics.RecordAssessment(string(a.RiskLevel), a.OverallScore, a.DoctorReferral)
	for _, r := range a.Recommendations {
		metrics.RecordRecommendation(string(r.Code))
	}
}
