package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/latticebench/internal/trial"
)

// TrialError represents a failure while running one trial of a sweep.
//
// Trial errors include:
//   - Dataset: the trial's data or hierarchies could not be loaded
//   - Baseline: the optimal loss of the trial's objective could not be computed
//   - Engine: the anonymization itself failed
//   - Rollback required: local recoding produced an output violating the criteria
//   - Log: the result row could not be written
//   - Invalid trial: the trial's parameters are inconsistent
type TrialError struct {
	// Code identifies the error category.
	Code TrialErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the zero-based position of the trial in the sweep.
	Index int

	// Trial is the failing trial.
	Trial trial.Trial

	// Err is the underlying cause, if any.
	Err error
}

// TrialErrorCode categorizes trial errors.
type TrialErrorCode string

const (
	ErrCodeDataset          TrialErrorCode = "DATASET"
	ErrCodeBaseline         TrialErrorCode = "BASELINE"
	ErrCodeEngine           TrialErrorCode = "ENGINE"
	ErrCodeRollbackRequired TrialErrorCode = "ROLLBACK_REQUIRED"
	ErrCodeLog              TrialErrorCode = "LOG"
	ErrCodeInvalidTrial     TrialErrorCode = "INVALID_TRIAL"
)

// Error implements the error interface.
func (e *TrialError) Error() string {
	msg := fmt.Sprintf("%s: %s (trial=%d, config=%s)", e.Code, e.Message, e.Index+1, e.Trial)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *TrialError) Unwrap() error {
	return e.Err
}

func newTrialError(code TrialErrorCode, index int, t trial.Trial, message string, err error) *TrialError {
	return &TrialError{
		Code:    code,
		Message: message,
		Index:   index,
		Trial:   t,
		Err:     err,
	}
}

// CodeOf returns the code of the TrialError in err's chain, or "" when
// there is none.
func CodeOf(err error) TrialErrorCode {
	var te *TrialError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsRollbackError returns true if local recoding of a trial required a
// rollback. Uses errors.As to handle wrapped errors.
func IsRollbackError(err error) bool {
	return CodeOf(err) == ErrCodeRollbackRequired
}

// IsBaselineError returns true if the optimal loss of a trial could not be
// computed. Uses errors.As to handle wrapped errors.
func IsBaselineError(err error) bool {
	return CodeOf(err) == ErrCodeBaseline
}
