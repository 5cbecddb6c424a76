package api

import (
	"errors"
	"net/http"

	"github.com/okian/thrive/internal/adapters/mq/queue"
	"github.com/okian/thrive/internal/adapters/repository"
	service "github.com/okian/thrive/internal/app"
	"github.com/okian/thrive/internal/domain/health"
	"github.com/okian/thrive/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
)

// opError tags an error with the operation that produced it and an API kind.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err == nil:
		return e.op + ": " + e.kind.Error()
	case e.kind == nil:
		return e.op + ": " + e.err.Error()
	default:
		return e.op + ": " + e.kind.Error() + ": " + e.err.Error()
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind wraps err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// Wrap annotates err with op and classifies it by the upstream sentinels it carries.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, kind: classify(err), err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, health.ErrInvalidInput), errors.Is(err, model.ErrMissingUser),
		errors.Is(err, repository.ErrEmptyUserID), errors.Is(err, service.ErrStaleCheckIn):
		return ErrBadRequest
	case errors.Is(err, queue.ErrFull):
		return ErrBackpressure
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		return ErrUnavailable
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return nil
	}
}

// statusFor maps an API error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
