// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/thrive/internal/domain/achievement"
	"github.com/okian/thrive/internal/domain/burnout"
	"github.com/okian/thrive/internal/domain/health"
	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/internal/domain/progression"
)

const maxBodyBytes = 1 << 20

// ScoringDependencies are the stateless engine operations.
type ScoringDependencies interface {
	Score(m health.DailyMetrics) (health.Breakdown, error)
	Evaluate(m health.DailyMetrics) (burnout.Assessment, error)
	Render(locale string, rec burnout.Recommendation) string
	Detect(history []health.DailyMetrics, currentStreak int) ([]achievement.Achievement, error)
	Level(xp int) progression.LevelProgress
	Penalty(lastLogged *time.Time, today time.Time) progression.PenaltyResult
	Location() *time.Location
}

// CheckInDependencies accept check-ins and expose the resulting profiles.
type CheckInDependencies interface {
	Enqueue(ctx context.Context, c model.CheckIn) (model.CheckIn, bool, error)
	Profile(ctx context.Context, userID string) (model.Profile, error)
	Location() *time.Location
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoringDependencies
	CheckInDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	scoringHandler  *ScoringHandler
	checkInsHandler *CheckInsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		scoringHandler:  NewScoringHandler(deps),
		checkInsHandler: NewCheckInsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /v1/score", MetricsMiddleware(s.scoringHandler.HandleScore, "score"))
	mux.HandleFunc("POST /v1/burnout", MetricsMiddleware(s.scoringHandler.HandleBurnout, "burnout"))
	mux.HandleFunc("POST /v1/achievements", MetricsMiddleware(s.scoringHandler.HandleAchievements, "achievements"))
	mux.HandleFunc("GET /v1/level", MetricsMiddleware(s.scoringHandler.HandleLevel, "level"))
	mux.HandleFunc("POST /v1/penalty", MetricsMiddleware(s.scoringHandler.HandlePenalty, "penalty"))

	mux.HandleFunc("POST /v1/checkins", MetricsMiddleware(s.checkInsHandler.HandlePostCheckIn, "checkins"))
	mux.HandleFunc("GET /v1/profiles/{user_id}", MetricsMiddleware(s.checkInsHandler.HandleGetProfile, "profiles"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError picks the status from the error's kind.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into v. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
