// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Client input failed structural validation (400).
	ErrorValidation = errors.New("validation error")

	// Unknown user, wrong password, missing or unknown token (401).
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")

	// Duplicate email on registration (400).
	ErrorAlreadyExists = errors.New("already exists")

	// Internal failures (500).
	ErrorPersistence = errors.New("persistence error")
	ErrorHashing     = errors.New("hashing error")
	ErrorToken       = errors.New("token error")
)
