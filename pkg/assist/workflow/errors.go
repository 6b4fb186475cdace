package workflow

import (
	"errors"
	"fmt"
)

// ErrStateConflict is returned by Store.Put when the stored version no
// longer matches the version the caller read.
var ErrStateConflict = errors.New("workflow: state version conflict")

// ErrNotFound is returned by Store.Get when the session has no instance
// for the module.
var ErrNotFound = errors.New("workflow: state not found")

// InvalidAnswerError rejects a user answer for the current step. The
// engine recovers from it locally by re-prompting, it never escapes
// Resume.
type InvalidAnswerError struct {
	StepID string
	Reason string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("workflow: invalid answer for step %s: %s", e.StepID, e.Reason)
}
