package repository

import "errors"

// Sentinel errors for profile access.
var (
	ErrNotFound    = errors.New("profile not found")
	ErrEmptyUserID = errors.New("empty user id")
)
