package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("conflict")
	// ErrInvalidStateTransition is returned when an entity's status does not
	// allow the requested change. Nothing is mutated in that case.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")

	ErrCannotAcceptReport = fmt.Errorf("cannot accept report in current state: %w", ErrInvalidStateTransition)
)
