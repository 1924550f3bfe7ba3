package mhrs

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means the login form could not be filled or did not complete.
	ErrAuth = errors.New("mhrs: login failed")
	// ErrRegistryUnavailable means the appointment list did not render, so
	// the number of active appointments is unknown.
	ErrRegistryUnavailable = errors.New("mhrs: appointment registry unavailable")
	// ErrMalformedRow is matched by every *MalformedRowError.
	ErrMalformedRow = errors.New("mhrs: malformed row")
	ErrInvalidTime  = errors.New("mhrs: invalid time")
	ErrInvalidInput = errors.New("mhrs: invalid input")
)

// MalformedRowError reports a scraped list row with fewer lines than its
// record needs.
type MalformedRowError struct {
	Kind string
	Want int
	Got  int
	Raw  string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("mhrs: malformed %s row: want %d lines, got %d", e.Kind, e.Want, e.Got)
}

func (e *MalformedRowError) Unwrap() error { return ErrMalformedRow }

// AmbiguousOutcomeError is returned when a booking ends on a modal whose
// status code is not recognised. The booking may or may not exist; the
// registry has to be read to find out.
type AmbiguousOutcomeError struct {
	ModalText string
}

func (e *AmbiguousOutcomeError) Error() string {
	return fmt.Sprintf("mhrs: unrecognised modal after booking: %q", e.ModalText)
}
