package model

import "errors"

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExhausted means the user already used today's allowance
	// for a capability. It is an expected terminal state, not a fault.
	ErrQuotaExhausted = errors.New("daily quota exhausted")

	// ErrNoMedia means the media library has no objects under the
	// requested prefix.
	ErrNoMedia = errors.New("no media available")

	// ErrInvalidToken is returned for malformed or expired admin tokens.
	ErrInvalidToken = errors.New("invalid token")
)
