package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/thrive/internal/domain/model"
)

// CheckInsHandler accepts check-ins and serves profiles.
type CheckInsHandler struct {
	deps CheckInDependencies
}

// NewCheckInsHandler creates a new check-ins handler.
func NewCheckInsHandler(deps CheckInDependencies) *CheckInsHandler {
	return &CheckInsHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	ID        string `json:"id"`
}

// HandlePostCheckIn handles POST /v1/checkins requests.
func (h *CheckInsHandler) HandlePostCheckIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkin"
	var req checkInRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := req.Metrics.toDomain()
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = parseDate("date", req.Date, h.deps.Location()); err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	accepted, duplicate, err := h.deps.Enqueue(r.Context(), model.CheckIn{
		ID:      strings.TrimSpace(req.ID),
		UserID:  strings.TrimSpace(req.UserID),
		Date:    date,
		Metrics: m,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, ID: accepted.ID})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: accepted.ID})
}

// HandleGetProfile handles GET /v1/profiles/{user_id} requests.
func (h *CheckInsHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	userID := r.PathValue("user_id")
	if userID == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	p, err := h.deps.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
