package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	eventqueue "github.com/okian/thrive/internal/adapters/mq/queue"
	"github.com/okian/thrive/internal/adapters/repository"
	service "github.com/okian/thrive/internal/app"
	"github.com/okian/thrive/internal/domain/achievement"
	"github.com/okian/thrive/internal/domain/burnout"
	"github.com/okian/thrive/internal/domain/health"
	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/internal/domain/progression"
	"github.com/okian/thrive/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var (
	day0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	goodDay = health.DailyMetrics{SleepHours: 8, Mood: 8, Stress: 2, ExerciseMinutes: 45, ScreenTimeHours: 4}
	badDay  = health.DailyMetrics{SleepHours: 3, Mood: 1, Stress: 10, ExerciseMinutes: 0, ScreenTimeHours: 14}
)

func fixedClock() time.Time { return day0.Add(12 * time.Hour) }

func startService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{service.WithClock(fixedClock), service.WithWorkerCount(2)}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func checkIn(user string, offset int, m health.DailyMetrics) model.CheckIn {
	return model.CheckIn{UserID: user, Date: day0.AddDate(0, 0, offset), Metrics: m}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(16), service.WithShardCount(2))

		Convey("When it is not started", func() {
			_, _, err := svc.Enqueue(context.Background(), checkIn("u", 0, goodDay))

			Convey("Then check-ins are refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When started and stopped", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			started := svc.GetStats()
			svc.Stop()
			svc.Stop()

			Convey("Then stats reflect each state", func() {
				So(started["started"], ShouldEqual, true)
				So(started["workerCount"], ShouldEqual, 2)
				So(started["queueLength"], ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Stateless(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("When scoring valid metrics", func() {
			b, err := svc.Score(goodDay)
			So(err, ShouldBeNil)
			So(b, ShouldResemble, health.Breakdown{Sleep: 100, Stress: 100, Mood: 100, Exercise: 100, Screen: 100})
		})

		Convey("When metrics are not finite", func() {
			_, err := svc.Score(health.DailyMetrics{SleepHours: math.Inf(1)})
			So(errors.Is(err, health.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.Evaluate(health.DailyMetrics{ScreenTimeHours: math.NaN()})
			So(errors.Is(err, health.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.Detect([]health.DailyMetrics{goodDay, {SleepHours: math.NaN()}}, 0)
			So(errors.Is(err, health.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When evaluating a critical day", func() {
			a, err := svc.Evaluate(badDay)
			So(err, ShouldBeNil)
			So(a.RiskLevel, ShouldEqual, burnout.Critical)
			So(a.Recommendations[0].Code, ShouldEqual, burnout.AlertCritical)
			So(svc.Render("", a.Recommendations[0]), ShouldNotEqual, string(burnout.AlertCritical))
		})

		Convey("When computing level and penalty", func() {
			So(svc.Level(2600).Mastery, ShouldEqual, 2)
			last := day0
			So(svc.Penalty(&last, day0.AddDate(0, 0, 3)).PenaltyXP, ShouldEqual, 100)
			So(svc.Today(), ShouldEqual, day0)
		})
	})
}

func TestService_Apply(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := startService()
		defer svc.Stop()

		Convey("When a user checks in for the first time", func() {
			p, err := svc.Apply(ctx, checkIn("u1", 0, goodDay))
			So(err, ShouldBeNil)

			Convey("Then the profile starts a streak and earns check-in XP", func() {
				So(p.Streak, ShouldEqual, 1)
				So(p.BestStreak, ShouldEqual, 1)
				So(p.XP, ShouldEqual, 10)
				So(p.History, ShouldHaveLength, 1)
				So(p.LastLogged.Equal(day0), ShouldBeTrue)
				So(p.Level, ShouldResemble, progression.LevelProgress{Level: progression.Bronze, Progress: 10, NextLevel: 500, Mastery: 1})
				So(p.LastAssessment.RiskLevel, ShouldEqual, burnout.Optimal)
			})

			Convey("Then the profile can be read back", func() {
				got, err := svc.Profile(ctx, "u1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, p)
			})
		})

		Convey("When a user logs seven perfect days", func() {
			var p model.Profile
			var err error
			for i := 0; i < 7; i++ {
				p, err = svc.Apply(ctx, checkIn("u2", i, goodDay))
				So(err, ShouldBeNil)
			}

			Convey("Then the weekly achievements are granted once", func() {
				So(p.Streak, ShouldEqual, 7)
				So(p.Achievements, ShouldResemble, []achievement.Key{
					achievement.Streak7, achievement.SleepChampion, achievement.PerfectWeek,
				})
				So(p.XP, ShouldEqual, 7*10+100+150+250)
				So(p.Level.Level, ShouldEqual, progression.Silver)

				p, err = svc.Apply(ctx, checkIn("u2", 7, goodDay))
				So(err, ShouldBeNil)
				So(p.Achievements, ShouldHaveLength, 3)
				So(p.XP, ShouldEqual, 8*10+100+150+250)
			})
		})

		Convey("When a user logs thirty-five consecutive days", func() {
			var p model.Profile
			var err error
			for i := 0; i < 35; i++ {
				p, err = svc.Apply(ctx, checkIn("u3", i, goodDay))
				So(err, ShouldBeNil)
			}

			Convey("Then history is capped and every achievement is earned", func() {
				So(p.History, ShouldHaveLength, achievement.MaxWindow)
				So(p.Streak, ShouldEqual, 35)
				So(p.Achievements, ShouldHaveLength, len(achievement.Catalog))
				So(p.XP, ShouldEqual, 35*10+100+500+150+200+300+250)
				So(p.CheckIns, ShouldEqual, 35)
			})
		})

		Convey("When a user misses days", func() {
			_, err := svc.Apply(ctx, checkIn("u4", 0, goodDay))
			So(err, ShouldBeNil)
			_, err = svc.Apply(ctx, checkIn("u4", 1, goodDay))
			So(err, ShouldBeNil)
			p, err := svc.Apply(ctx, checkIn("u4", 4, goodDay))
			So(err, ShouldBeNil)

			Convey("Then the streak restarts and XP is floored at zero before the new grant", func() {
				So(p.Streak, ShouldEqual, 1)
				So(p.BestStreak, ShouldEqual, 2)
				So(p.XP, ShouldEqual, 10)
				So(p.History, ShouldHaveLength, 3)
			})
		})

		Convey("When a user logs the same day twice", func() {
			_, err := svc.Apply(ctx, checkIn("u5", 0, goodDay))
			So(err, ShouldBeNil)
			p, err := svc.Apply(ctx, checkIn("u5", 0, badDay))
			So(err, ShouldBeNil)

			Convey("Then the day is replaced without extending the streak", func() {
				So(p.Streak, ShouldEqual, 1)
				So(p.History, ShouldResemble, []health.DailyMetrics{badDay})
				So(p.XP, ShouldEqual, 10)
				So(p.LastAssessment.RiskLevel, ShouldEqual, burnout.Critical)
			})
		})

		Convey("When a check-in predates the last logged day", func() {
			_, err := svc.Apply(ctx, checkIn("u6", 3, goodDay))
			So(err, ShouldBeNil)
			_, err = svc.Apply(ctx, checkIn("u6", 2, badDay))

			Convey("Then it is rejected and the profile is unchanged", func() {
				So(errors.Is(err, service.ErrStaleCheckIn), ShouldBeTrue)
				p, err := svc.Profile(ctx, "u6")
				So(err, ShouldBeNil)
				So(p.History, ShouldResemble, []health.DailyMetrics{goodDay})
				So(p.XP, ShouldEqual, 10)
			})
		})

		Convey("When the profile is unknown", func() {
			_, err := svc.Profile(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Enqueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := startService()
		defer svc.Stop()

		Convey("When a check-in without id or date is enqueued", func() {
			accepted, dup, err := svc.Enqueue(ctx, model.CheckIn{UserID: "q1", Metrics: goodDay})
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)

			Convey("Then an id and today's date are assigned and a worker applies it", func() {
				So(accepted.ID, ShouldNotBeEmpty)
				So(accepted.Date, ShouldEqual, day0)
				So(eventually(func() bool {
					p, err := svc.Profile(ctx, "q1")
					return err == nil && p.CheckIns == 1
				}), ShouldBeTrue)
			})

			Convey("Then resubmitting the same id is a duplicate", func() {
				_, dup, err := svc.Enqueue(ctx, accepted)
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
			})
		})

		Convey("When the check-in is invalid", func() {
			_, _, err := svc.Enqueue(ctx, model.CheckIn{Metrics: goodDay})
			So(errors.Is(err, model.ErrMissingUser), ShouldBeTrue)

			_, _, err = svc.Enqueue(ctx, model.CheckIn{UserID: "q2", Metrics: health.DailyMetrics{SleepHours: math.NaN()}})
			So(errors.Is(err, health.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When a check-in predates the user's last applied day", func() {
			_, err := svc.Apply(ctx, checkIn("q3", 0, goodDay))
			So(err, ShouldBeNil)
			stale := checkIn("q3", -2, badDay)
			stale.ID = "q3-stale"
			_, dup, err := svc.Enqueue(ctx, stale)

			Convey("Then it is rejected before queueing and the id stays retryable", func() {
				So(errors.Is(err, service.ErrStaleCheckIn), ShouldBeTrue)
				So(dup, ShouldBeFalse)
				So(svc.GetStats()["queueLength"], ShouldEqual, 0)

				stale.Date = day0
				_, dup, err = svc.Enqueue(ctx, stale)
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})

		Convey("When a check-in is for the last applied day", func() {
			_, err := svc.Apply(ctx, checkIn("q4", 0, goodDay))
			So(err, ShouldBeNil)
			_, _, err = svc.Enqueue(ctx, checkIn("q4", 0, badDay))
			So(err, ShouldBeNil)
		})

		Convey("When the service has been stopped", func() {
			svc.Stop()
			_, _, err := svc.Enqueue(ctx, checkIn("q5", 0, goodDay))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

// blockingStore holds every Update until release is closed.
type blockingStore struct {
	*repository.ShardedStore
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Update(ctx context.Context, userID string, fn repository.UpdateFunc) (model.Profile, error) {
	<-b.release
	return b.ShardedStore.Update(ctx, userID, fn)
}

func (b *blockingStore) unblock() { b.once.Do(func() { close(b.release) }) }

func TestService_Backpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service whose single worker is stuck", t, func() {
		store := &blockingStore{ShardedStore: repository.NewShardedStore(), release: make(chan struct{})}
		svc := startService(service.WithStore(store), service.WithWorkerCount(1), service.WithQueueSize(1))
		defer svc.Stop()
		defer store.unblock()

		Convey("When the queue fills up", func() {
			var rejected model.CheckIn
			var rejectErr error
			for i := 0; i < 5 && rejectErr == nil; i++ {
				c := checkIn("bp", i, goodDay)
				c.ID = "bp-" + string(rune('a'+i))
				rejected, _, rejectErr = svc.Enqueue(ctx, c)
			}

			Convey("Then enqueue reports backpressure and forgets the id", func() {
				So(errors.Is(rejectErr, service.ErrBackpressure), ShouldBeTrue)
				So(errors.Is(rejectErr, eventqueue.ErrFull), ShouldBeTrue)

				store.unblock()
				So(eventually(func() bool {
					_, dup, err := svc.Enqueue(ctx, rejected)
					So(dup, ShouldBeFalse)
					return err == nil
				}), ShouldBeTrue)
			})
		})
	})
}
