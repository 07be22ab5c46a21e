package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a point lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a required-field or type violation detected
// before any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a transport or backend failure. No retries happen
// at this layer; the failure propagates to the caller immediately.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
