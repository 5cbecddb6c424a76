package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/thrive/internal/adapters/repository"
	service "github.com/okian/thrive/internal/app"
	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/pkg/logger"
)

const pollInterval = 50 * time.Millisecond

// Run generates a plan, submits it to cfg.BaseURL and verifies every served
// profile against a local replay of the same check-ins.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("simulate")
	started := time.Now()
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	plans := Generate(cfg)
	if cfg.OutputFile != "" {
		if err := savePlan(cfg.OutputFile, plans); err != nil {
			return nil, err
		}
		log.Info(ctx, "plan saved", logger.String("file", cfg.OutputFile))
	}

	stats := &Stats{Users: len(plans)}
	if err := submit(ctx, cfg, client, plans, stats); err != nil {
		return stats, err
	}

	expected, err := replay(ctx, cfg, plans)
	if err != nil {
		return stats, err
	}

	for _, plan := range plans {
		want := expected[plan.UserID]
		got, err := awaitProfile(ctx, client, plan.UserID, want.CheckIns, cfg.Settle)
		if err != nil {
			return stats, err
		}
		if diff := compare(&want, &got); diff != "" {
			stats.Mismatched++
			log.Warn(ctx, "profile mismatch",
				logger.String("user_id", plan.UserID),
				logger.String("persona", plan.Persona),
				logger.String("diff", diff))
			continue
		}
		stats.Verified++
		if cfg.Verbose {
			log.Info(ctx, "profile verified",
				logger.String("user_id", plan.UserID),
				logger.Int("xp", got.XP),
				logger.Int("best_streak", got.BestStreak))
		}
	}
	stats.Duration = time.Since(started)

	log.Info(ctx, "simulation finished",
		logger.Int("users", stats.Users),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration))

	if stats.Mismatched > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d mismatched, %d failed", ErrVerificationFailed, stats.Mismatched, stats.Failed)
	}
	return stats, nil
}

// submit sends each user's check-ins in order, users in parallel.
func submit(ctx context.Context, cfg *Config, client *Client, plans []UserPlan, stats *Stats) error {
	var submitted, accepted, duplicates, failed atomic.Int64
	log := logger.Named("simulate")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i := range plans {
		plan := &plans[i]
		g.Go(func() error {
			for _, s := range plan.Submissions {
				submitted.Add(1)
				res, err := client.Submit(gctx, s)
				switch res {
				case resultAccepted:
					accepted.Add(1)
				case resultDuplicate:
					duplicates.Add(1)
				default:
					failed.Add(1)
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					log.Warn(gctx, "submission failed", logger.String("id", s.ID), logger.Error(err))
				}
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicates = int(duplicates.Load())
	stats.Failed = int(failed.Load())
	if err != nil {
		return fmt.Errorf("submit check-ins: %w", err)
	}
	return nil
}

// replay applies the plan to an in-process service and returns the
// resulting profiles by user.
func replay(ctx context.Context, cfg *Config, plans []UserPlan) (map[string]model.Profile, error) {
	opts := []service.Option{service.WithStore(repository.NewShardedStore())}
	if cfg.CheckInXP > 0 {
		opts = append(opts, service.WithCheckInXP(cfg.CheckInXP))
	}
	if cfg.HistoryWindow > 0 {
		opts = append(opts, service.WithHistoryWindow(cfg.HistoryWindow))
	}
	svc := service.New(opts...)

	out := make(map[string]model.Profile, len(plans))
	for _, plan := range plans {
		var last model.Profile
		for _, s := range plan.Submissions {
			if s.Resend {
				continue
			}
			date, err := time.ParseInLocation(time.DateOnly, s.Date, svc.Location())
			if err != nil {
				return nil, fmt.Errorf("replay %s: %w", s.ID, err)
			}
			last, err = svc.Apply(ctx, model.CheckIn{ID: s.ID, UserID: s.UserID, Date: date, Metrics: s.Metrics})
			if err != nil {
				return nil, fmt.Errorf("replay: %w", err)
			}
		}
		out[plan.UserID] = last
	}
	return out, nil
}

// awaitProfile polls until the profile has absorbed want check-ins.
func awaitProfile(ctx context.Context, client *Client, userID string, want int, settle time.Duration) (model.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, settle)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		p, found, err := client.Profile(ctx, userID)
		if err == nil && found && p.CheckIns >= want {
			return p, nil
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return model.Profile{}, fmt.Errorf("await profile %s: %w", userID, err)
			}
			return model.Profile{}, fmt.Errorf("await profile %s: %d of %d check-ins applied: %w",
				userID, p.CheckIns, want, ctx.Err())
		case <-ticker.C:
		}
	}
}

// compare returns a description of the first difference, or "".
func compare(want, got *model.Profile) string {
	switch {
	case got.XP != want.XP:
		return fmt.Sprintf("xp: want %d, got %d", want.XP, got.XP)
	case got.Streak != want.Streak:
		return fmt.Sprintf("current_streak: want %d, got %d", want.Streak, got.Streak)
	case got.BestStreak != want.BestStreak:
		return fmt.Sprintf("best_streak: want %d, got %d", want.BestStreak, got.BestStreak)
	case got.CheckIns != want.CheckIns:
		return fmt.Sprintf("checkins: want %d, got %d", want.CheckIns, got.CheckIns)
	case len(got.History) != len(want.History):
		return fmt.Sprintf("history length: want %d, got %d", len(want.History), len(got.History))
	case !slices.Equal(got.Achievements, want.Achievements):
		return fmt.Sprintf("achievements: want %v, got %v", want.Achievements, got.Achievements)
	case got.Level != want.Level:
		return fmt.Sprintf("level: want %+v, got %+v", want.Level, got.Level)
	case (got.LastAssessment == nil) != (want.LastAssessment == nil):
		return "last_assessment presence differs"
	case want.LastAssessment != nil && got.LastAssessment.OverallScore != want.LastAssessment.OverallScore:
		return fmt.Sprintf("overall_score: want %d, got %d",
			want.LastAssessment.OverallScore, got.LastAssessment.OverallScore)
	}
	return ""
}

func savePlan(path string, plans []UserPlan) error {
	data, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}
