package services

import "errors"

var (
	// ErrNotFound maps to HTTP 404 at the handler layer.
	ErrNotFound = errors.New("not found")
	// ErrValidation maps to HTTP 400.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when a donation status change is not
	// permitted by the lifecycle, including a second completion attempt.
	ErrInvalidTransition = errors.New("invalid status transition")

	errNoAccessToken = errors.New("token response missing access_token")
)
