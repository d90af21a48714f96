package services

import "errors"

// Typed failures surfaced by the service layer. Handlers map these to
// transport status codes; they are deterministic outcomes of checks
// against fetched state and are never retried.
var (
	// ErrForbidden means the authorization rules denied the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, deliberately without distinguishing the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidInput means the request was rejected before any
	// authorization or persistence call.
	ErrInvalidInput = errors.New("invalid input")
)
