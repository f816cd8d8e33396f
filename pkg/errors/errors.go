package carebridge_errors

import (
	"errors"
)

// Common errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTooLarge         = errors.New("file too large")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotUploaded      = errors.New("file not uploaded")
	ErrSessionRevoked   = errors.New("session revoked")
)
