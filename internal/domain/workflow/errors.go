package workflow

import "errors"

var (
	// ErrValidation is returned when the payload for the requested edge is
	// missing or malformed (e.g. rejecting a brand without a reason)
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization is returned when the actor's role or ownership does
	// not match the edge's required role
	ErrAuthorization = errors.New("not authorized")

	// ErrState is returned when no edge exists from the case's current
	// status for the requested action
	ErrState = errors.New("action not allowed in current status")

	// ErrNotFound is returned when a case or invoice identifier does not resolve
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a save loses the optimistic version check
	ErrConflict = errors.New("version conflict")
)
