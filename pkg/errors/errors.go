package guild_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotParticipant     = errors.New("not a chat participant")
	ErrSessionClosed      = errors.New("chat session closed")
	ErrTooLarge           = errors.New("file too large")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
