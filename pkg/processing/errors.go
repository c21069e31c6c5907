package processing

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("process not found")

// ExtractionError covers every way the vision stage can fail: no usable
// images, a model call failure, or an unparseable response. The orchestrator
// does not distinguish them beyond the message text.
type ExtractionError struct {
	reason error
}

func (e ExtractionError) Error() string {
	return fmt.Sprintf("document extraction failed: %v", e.reason)
}

func (e ExtractionError) Unwrap() error {
	return e.reason
}

func IsExtractionError(err error) bool {
	var ee ExtractionError
	return errors.As(err, &ee)
}

// PersistenceError wraps a datastore write failure.
type PersistenceError struct {
	reason error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persisting processing outcome: %v", e.reason)
}

func (e PersistenceError) Unwrap() error {
	return e.reason
}

func IsPersistenceError(err error) bool {
	var pe PersistenceError
	return errors.As(err, &pe)
}
