// Package wireio provides the error types and warning sink shared by every
// binspec package.
//
// Error handling in binspec distinguishes recoverable parse conditions
// (Incomplete, Stop — see the parser package) from programmer error.
// Programmer error is never returned; it panics with an Error, wrapping a
// small set of sentinel causes with the calling function's name so the
// panic message is useful without a debugger attached.
package wireio

import (
	"errors"
	"io"
	"os"
	"runtime"
)

// Sentinel causes wrapped by Error. Check with errors.Is.
var (
	// ErrUndeclaredVariable is raised when a Spec node references a variable
	// name that was never written by an earlier Variable node in parse order.
	ErrUndeclaredVariable = errors.New("undeclared variable")

	// ErrShapeMismatch is raised when a Data tree does not conform to the
	// Spec it is being encoded against (wrong variant, wrong Seq length).
	ErrShapeMismatch = errors.New("spec/data shape mismatch")

	// ErrBadLength is raised when a declared or decoded length disagrees
	// with the data it bounds, or is negative.
	ErrBadLength = errors.New("bad length")

	// ErrBudgetExceeded is raised when a variable-sourced size exceeds
	// Config.MaxBudget. See the budget guard in the parser package.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrSyntax is raised by the spec-string compiler on malformed input.
	ErrSyntax = errors.New("spec-string syntax error")
)

// Warnings is where non-fatal oddities are reported.
// Until silently consuming leftover budget bytes is the main user; it is
// not an error; a well-formed grammar can legitimately leave residue
// (see Until's documented swallow-trailing-bytes behaviour), but seeing it
// often usually means the Spec's size accounting is wrong somewhere.
var Warnings io.Writer = os.Stderr

// NewError returns an Error wrapping cause with message, tagged with the
// name of the function that called NewError (skip callers further up with
// skip).
func NewError(cause error, message string, skip int) error {
	return Error{
		Err:     cause,
		Message: message,
		Caller:  caller(skip + 1),
	}
}

// Error is raised (via panic) for programmer-error conditions: undeclared
// variable references, Spec/Data shape mismatches, malformed spec-strings.
// These are contract violations, not runtime conditions a caller can
// recover from by retrying.
type Error struct {
	Err     error
	Message string
	Caller  string
}

func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}
	str += e.Err.Error()
	if e.Message != "" {
		str += " (" + e.Message + ")"
	}
	return str
}

// Unwrap allows errors.Is/errors.As to see through to the sentinel cause.
func (e Error) Unwrap() error {
	return e.Err
}

// caller returns the name of the calling function, skipping skip frames
// above its own caller.
func caller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return ""
	}
	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
