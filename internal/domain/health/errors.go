package health

import "errors"

// Sentinel kinds for health input errors.
var (
	ErrInvalidInput = errors.New("invalid health input")
)
