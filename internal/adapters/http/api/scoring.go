package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/thrive/internal/domain/achievement"
	"github.com/okian/thrive/internal/domain/burnout"
	"github.com/okian/thrive/internal/domain/health"
)

// ScoringHandler serves the stateless engine endpoints.
type ScoringHandler struct {
	deps ScoringDependencies
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps ScoringDependencies) *ScoringHandler {
	return &ScoringHandler{deps: deps}
}

type recommendationResponse struct {
	burnout.Recommendation
	Message string `json:"message"`
}

type assessmentResponse struct {
	OverallScore    int                      `json:"overall_score"`
	RiskLevel       burnout.RiskLevel        `json:"risk_level"`
	Breakdown       health.Breakdown         `json:"breakdown"`
	Recommendations []recommendationResponse `json:"recommendations"`
	DoctorReferral  bool                     `json:"doctor_referral"`
}

type achievementsResponse struct {
	Achievements []achievement.Achievement `json:"achievements"`
	TotalXP      int                       `json:"total_xp"`
}

// readMetrics decodes and converts a DailyMetrics body.
func readMetrics(w http.ResponseWriter, r *http.Request, op string) (health.DailyMetrics, error) {
	var req metricsRequest
	if err := decode(w, r, &req); err != nil {
		return health.DailyMetrics{}, WrapKind(op, ErrBadRequest, err)
	}
	m, err := req.toDomain()
	if err != nil {
		return health.DailyMetrics{}, WrapKind(op, ErrBadRequest, err)
	}
	return m, nil
}

// HandleScore handles POST /v1/score requests.
func (h *ScoringHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	m, err := readMetrics(w, r, op)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := h.deps.Score(m)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleBurnout handles POST /v1/burnout requests. Messages are rendered in
// the ?locale= query parameter or the first Accept-Language tag.
func (h *ScoringHandler) HandleBurnout(w http.ResponseWriter, r *http.Request) {
	const op = "api.burnout"
	m, err := readMetrics(w, r, op)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := h.deps.Evaluate(m)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}

	locale := requestLocale(r)
	recs := make([]recommendationResponse, len(a.Recommendations))
	for i, rec := range a.Recommendations {
		recs[i] = recommendationResponse{Recommendation: rec, Message: h.deps.Render(locale, rec)}
	}
	writeJSON(w, http.StatusOK, assessmentResponse{
		OverallScore:    a.OverallScore,
		RiskLevel:       a.RiskLevel,
		Breakdown:       a.Breakdown,
		Recommendations: recs,
		DoctorReferral:  a.DoctorReferral,
	})
}

// HandleAchievements handles POST /v1/achievements requests.
func (h *ScoringHandler) HandleAchievements(w http.ResponseWriter, r *http.Request) {
	const op = "api.achievements"
	var req achievementsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	history, err := req.toDomain()
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	found, err := h.deps.Detect(history, req.CurrentStreak)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if found == nil {
		found = []achievement.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Achievements: found, TotalXP: achievement.TotalXP(found)})
}

// HandleLevel handles GET /v1/level?xp=N requests.
func (h *ScoringHandler) HandleLevel(w http.ResponseWriter, r *http.Request) {
	const op = "api.level"
	raw := r.URL.Query().Get("xp")
	if raw == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing xp")))
		return
	}
	xp, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("xp must be an integer")))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Level(xp))
}

// HandlePenalty handles POST /v1/penalty requests.
func (h *ScoringHandler) HandlePenalty(w http.ResponseWriter, r *http.Request) {
	const op = "api.penalty"
	var req penaltyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	loc := h.deps.Location()
	today, err := parseDate("today", req.Today, loc)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var last *time.Time
	if req.LastLogged != nil {
		t, err := parseDate("last_logged", *req.LastLogged, loc)
		if err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		last = &t
	}
	writeJSON(w, http.StatusOK, h.deps.Penalty(last, today))
}

func requestLocale(r *http.Request) string {
	if l := r.URL.Query().Get("locale"); l != "" {
		return l
	}
	al := r.Header.Get("Accept-Language")
	if i := strings.IndexAny(al, ",;"); i >= 0 {
		al = al[:i]
	}
	return strings.TrimSpace(al)
}
