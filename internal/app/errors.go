package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("check-in queue is full")
	ErrStaleCheckIn = errors.New("check-in is older than the last logged day")
)
