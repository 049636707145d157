package domain

import "errors"

// Error kinds surfaced to callers unchanged. Wrap with fmt.Errorf("...: %w", err)
// and test with errors.Is.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrForbidden              = errors.New("forbidden")
	ErrDuplicateReview        = errors.New("review already exists for this mess")
	ErrInvalidInput           = errors.New("invalid input")
	ErrDuplicateAccount       = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrStaleRating            = errors.New("rating changed concurrently")
)
