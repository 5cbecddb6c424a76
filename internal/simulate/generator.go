package simulate

import (
	"bytes"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/thrive/internal/domain/health"
)

// Submission is one POST /v1/checkins body.
type Submission struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	Date    string              `json:"date"`
	Metrics health.DailyMetrics `json:"metrics"`

	// Resend marks a deliberate resubmission of an earlier id.
	Resend bool `json:"-"`
}

// UserPlan is the ordered list of submissions for one user.
type UserPlan struct {
	UserID      string       `json:"user_id"`
	Persona     string       `json:"persona"`
	Submissions []Submission `json:"submissions"`
}

// persona shapes the random metrics of a user.
type persona struct {
	name       string
	sleepMean  float64
	moodMean   float64
	stressMean float64
	exercise   float64
	screenMean float64
}

var personas = []persona{
	{name: "balanced", sleepMean: 8, moodMean: 8, stressMean: 2, exercise: 45, screenMean: 4},
	{name: "stretched", sleepMean: 6.5, moodMean: 6, stressMean: 5, exercise: 20, screenMean: 8},
	{name: "burning_out", sleepMean: 4.5, moodMean: 3, stressMean: 8, exercise: 3, screenMean: 11},
}

// Generate builds a reproducible plan from cfg.Seed.
func Generate(cfg *Config) []UserPlan {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // simulation data, not security sensitive
	idSource := rand.New(rand.NewPCG(cfg.Seed+1, cfg.Seed))             //nolint:gosec // deterministic ids

	plans := make([]UserPlan, cfg.Users)
	for u := range plans {
		p := personas[rng.IntN(len(personas))]
		plan := UserPlan{UserID: newID(idSource), Persona: p.name}

		for d := 0; d < cfg.Days; d++ {
			if d > 0 && rng.Float64() < cfg.SkipRate {
				continue
			}
			date := cfg.Start.AddDate(0, 0, d).Format(time.DateOnly)
			sub := Submission{ID: newID(idSource), UserID: plan.UserID, Date: date, Metrics: p.sample(rng)}
			plan.Submissions = append(plan.Submissions, sub)

			if rng.Float64() < cfg.DuplicateRate {
				dup := sub
				dup.Resend = true
				plan.Submissions = append(plan.Submissions, dup)
			}
			if rng.Float64() < cfg.RelogRate {
				plan.Submissions = append(plan.Submissions, Submission{
					ID: newID(idSource), UserID: plan.UserID, Date: date, Metrics: p.sample(rng),
				})
			}
		}
		plans[u] = plan
	}
	return plans
}

func (p persona) sample(rng *rand.Rand) health.DailyMetrics {
	return health.DailyMetrics{
		SleepHours:      round1(clamp(p.sleepMean+rng.NormFloat64(), 0, 14)),
		Mood:            int(math.Round(clamp(p.moodMean+rng.NormFloat64()*1.5, 1, 10))),
		Stress:          int(math.Round(clamp(p.stressMean+rng.NormFloat64()*1.5, 1, 10))),
		ExerciseMinutes: int(clamp(p.exercise+rng.NormFloat64()*15, 0, 180)),
		ScreenTimeHours: round1(clamp(p.screenMean+rng.NormFloat64()*2, 0, 18)),
	}
}

// newID draws a version 4 UUID from rng so plans are reproducible.
func newID(rng *rand.Rand) string {
	var b [16]byte
	for i := 0; i < len(b); i += 8 {
		v := rng.Uint64()
		for j := 0; j < 8; j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
	id, err := uuid.NewRandomFromReader(bytes.NewReader(b[:]))
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
