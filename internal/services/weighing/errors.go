package weighing

import (
	"fmt"
)

// The engine reports every failure verbatim to the invoking boundary and
// never retries on its own. Four kinds cover the whole surface:
//
//   ValidationError      — bad sequence or input; state unchanged
//   NotFoundError        — a required record or link is missing
//   UnavailableError     — the scale could not be read
//   ConflictError        — an atomic claim failed; caller may retry

// ValidationError reports an operator input or sequencing problem.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a missing record or unresolved link.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// UnavailableError reports an external collaborator failure (the scale).
type UnavailableError struct {
	Msg string
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ConflictError reports a failed atomic claim of a weighing record.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Named failures of the state machine.
var (
	ErrNoScaleAssigned           = &NotFoundError{Msg: "no weighing scale assigned; select a scale first"}
	ErrLiveWeightNotFetched      = &ValidationError{Msg: "live weight has not been fetched; fetch it from the scale first"}
	ErrProductRequired           = &ValidationError{Msg: "product is required before capturing a weight"}
	ErrNotReadyForReconciliation = &ValidationError{Msg: "cannot update inventory: both weights must be captured and net weight must be positive"}
	ErrNoDocumentLinked          = &ValidationError{Msg: "no receipt or delivery linked; select one first"}
	ErrAlreadyDone               = &ValidationError{Msg: "weighing record is already done"}
	ErrCancelled                 = &ValidationError{Msg: "weighing record is cancelled"}
)

func invalidSequencef(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}
