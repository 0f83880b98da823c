package domain

import (
	"errors"
	"fmt"
)

var ErrPendingNotFound = errors.New("pending identity not found")

// StageError is a pipeline failure tagged with where it happened.
type StageError struct {
	Stage            Stage
	Collection       string
	BatchesCommitted int
	Err              error
}

func (e *StageError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage recorded in err's chain, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
