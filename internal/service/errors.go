package service

import "errors"

// Domain errors shared across services. Handlers map these to response codes.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrSessionInactive   = errors.New("session is not active")
	ErrUnknownSession    = errors.New("unknown integrity session")
	ErrTaskNotAssessable = errors.New("task is not configured for assessment")
)
