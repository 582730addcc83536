package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a checkout precondition that was not met. The
// failing attempt leaves all state intact; the caller may correct the input
// and retry.
type ValidationError struct {
	Precondition string
	Message      string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %s: %s", e.Precondition, e.Message)
}

// PersistenceError wraps a store read or write failure. It is never fatal:
// reads fall back to an empty collection, writes leave the last committed
// snapshot intact.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes the underlying driver error for errors.Is/As.
func (e PersistenceError) Unwrap() error { return e.Err }

// StateConflictError is returned when a checkout is attempted while another
// one is already in flight. The first attempt is unaffected.
type StateConflictError struct {
	State string
}

func (e StateConflictError) Error() string {
	return fmt.Sprintf("checkout already %s", e.State)
}

// ErrCheckoutAborted is returned when an in-flight checkout is cancelled
// before completion. The transaction store is left untouched.
var ErrCheckoutAborted = errors.New("checkout aborted")
