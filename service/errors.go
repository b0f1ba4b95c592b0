package service

import "errors"

var (
	ErrNonRetryable       = errors.New("non-retryable error")
	ErrValidation         = errors.New("validation failed")
	ErrSessionNotFound    = errors.New("simulation not found")
	ErrSessionClosed      = errors.New("simulation already finished")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user no longer exists")
)
