package process

import (
	"errors"
	"fmt"
)

// ErrEndNotAfterStart is wrapped by the ValidationError returned when the
// process window is empty or inverted.
var ErrEndNotAfterStart = errors.New("end must be after start")

// ValidationError rejects a submission before anything is stored or published.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceError means the record could not be stored; nothing was published.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist process record: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PublishError describes one field message that did not leave the process.
// The stored record is kept regardless.
type PublishError struct {
	Topic string
	Err   error
}

func (e PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Topic, e.Err)
}

func (e PublishError) Unwrap() error {
	return e.Err
}
