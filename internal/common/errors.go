// Package common defines shared constants and sentinel errors used across
// AuthKeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors. Absence of a row is reported as
	// ErrNotFound; infrastructure faults wrap ErrStoreUnavailable.
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Business-rule rejections. These are terminal outcomes, not
	// transient faults, and must not be retried.
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	// Auth errors (invalid, malformed, or expired token). Verification
	// failures all collapse to this value so callers cannot distinguish
	// why a token was rejected.
	ErrInvalidToken = errors.New("invalid token")

	// Generic internal failure.
	ErrInternal = errors.New("internal error")
)
