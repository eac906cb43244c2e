package lifecycle

import "fmt"

// The engine surfaces four kinds of rejection. All of them are local to a
// single transition request; none are fatal to the process.

// ValidationError reports missing or malformed input fields.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a referenced issue or user that does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// StateConflictError reports a transition that is not legal from the
// current state, or an actor lacking the required role or assignment.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

// ConcurrentModificationError reports a conditional update that lost a
// race. The caller may re-fetch and retry.
type ConcurrentModificationError struct {
	Msg string
}

func (e *ConcurrentModificationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}
