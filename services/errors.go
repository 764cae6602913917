// services/errors.go - Shared service error taxonomy
package services

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these
// to HTTP status codes with errors.Is; everything else is a 500.
var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("not allowed")
	ErrAlreadyCompleted    = errors.New("participant already finished this challenge")
	ErrInvalidScore        = errors.New("score out of range")
	ErrInvalidParticipants = errors.New("invalid challenge participants")
)
