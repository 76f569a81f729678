// Package common defines shared constants and sentinel errors used across
// the vault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorNoUserID = errors.New("no user id")

	// Auth errors. Missing account and wrong password are deliberately
	// reported as the same value so usernames cannot be enumerated.
	ErrorUsernameTaken      = errors.New("username already taken")
	ErrorInvalidCredentials = errors.New("invalid username/password")

	// Cipher errors (wrong key, tampered or truncated token).
	ErrorInvalidToken = errors.New("invalid token")

	// Vault errors.
	ErrorWrongSecretPassword = errors.New("wrong secret password")
	ErrorAmbiguousMatch      = errors.New("more than one record matches")
	ErrorValidation          = errors.New("validation error")
	ErrorCancelled           = errors.New("cancelled")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
)
