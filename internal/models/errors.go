package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an event, user, booking or other entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for bad credentials or a missing or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the acting user is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation is returned for malformed or missing input, past schedules and capacity violations.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned for venue/resource overlaps and duplicate bookings, waitlist entries or roles.
	ErrConflict = errors.New("conflict")
	// ErrCapacityExceeded is returned when an event has no free seat.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrPersistence is returned when the aggregate could not be loaded or saved.
	ErrPersistence = errors.New("persistence error")

	// ErrRevisionConflict is returned by a store when the document changed since it was loaded.
	ErrRevisionConflict = errors.New("aggregate revision conflict")
	// ErrNoChanges may be returned by an update function to skip the save.
	ErrNoChanges = errors.New("no changes")
)

type keptError struct {
	err error
}

func (k *keptError) Error() string { return k.err.Error() }
func (k *keptError) Unwrap() error { return k.err }

// KeepChanges wraps err so that Gateway.Update still persists the mutations
// made before the failure, then reports err to the caller.
func KeepChanges(err error) error {
	if err == nil {
		return nil
	}
	return &keptError{err: err}
}

// NotFoundf, Forbiddenf, Invalidf and Conflictf wrap the matching sentinel with a message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
