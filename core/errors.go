package core

import "errors"

var (
	// ErrUnauthorized covers every validation failure: a missing,
	// malformed, expired, or revoked token, an unknown subject, or a
	// failed credential match. Callers never learn which.
	ErrUnauthorized = errors.New("not authorized")

	// ErrTokenMalformed is returned when a token cannot even be decoded
	// structurally, so no claims can be extracted from it.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrUnsupportedMethod is returned for an unknown credential method.
	ErrUnsupportedMethod = errors.New("unsupported authentication method")

	// ErrInvalidInput is returned when an entity cannot be constructed
	// from a payload, or the storage service rejects one with 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when an update targets a record the
	// storage service does not hold.
	ErrNotFound = errors.New("not found")

	// ErrUpstream is returned when the storage service fails with a 500
	// or cannot be reached at all.
	ErrUpstream = errors.New("upstream service unavailable")
)
