package service

import (
	"errors"

	"github.com/saadjs/gonext/internal/storage"
)

var (
	// ErrNetwork covers failed places requests and non-2xx answers.
	ErrNetwork            = errors.New("network error")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCorruptState       = storage.ErrCorruptState
	// ErrInvalidInput marks caller mistakes that are not struct validation errors.
	ErrInvalidInput = errors.New("invalid input")
)

// Messages shown to the user for recoverable failures.
const (
	MessageFetchFailed = "Could not fetch places. Check your API key or connection."
)
