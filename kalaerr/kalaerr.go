// Package kalaerr gives the engine's error values a stable integer
// code alongside the usual Go error chain, mirroring the integer
// error taxonomy a foreign-callable surface would need while staying
// idiomatic on the Go side (errors.Is/errors.As keep working against
// the wrapped cause).
package kalaerr

import "github.com/pkg/errors"

// Code is a stable, FFI-shaped error code.
type Code int32

const (
	Success               Code = 0
	InvalidConfig         Code = -1
	InvalidParameters     Code = -2
	MemoryAllocation      Code = -3
	ComputationFailed     Code = -4
	ThreadError           Code = -5
	InvalidDiscriminant   Code = -6
	InvalidForm           Code = -7
	ProofGenerationFailed Code = -8
	VerificationFailed    Code = -9
	NotInitialized        Code = -10
	AlreadyRunning        Code = -11
)

var names = map[Code]string{
	Success:               "success",
	InvalidConfig:         "invalid config",
	InvalidParameters:     "invalid parameters",
	MemoryAllocation:      "memory allocation failed",
	ComputationFailed:     "computation failed",
	ThreadError:           "thread error",
	InvalidDiscriminant:   "invalid discriminant",
	InvalidForm:           "invalid form",
	ProofGenerationFailed: "proof generation failed",
	VerificationFailed:    "verification failed",
	NotInitialized:        "not initialized",
	AlreadyRunning:        "already running",
}

// String returns the stable human-readable message for a code,
// standing in for the foreign surface's get_error_message.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown error"
}

// Error wraps a cause with a stable Code and a free-form Kind used
// for log correlation ("algebraic", "input-validation", ...).
type Error struct {
	Code  Code
	Kind  string
	cause error
}

// New creates an Error with the given code, kind, and message.
func New(code Code, kind, msg string) *Error {
	return &Error{Code: code, Kind: kind, cause: errors.New(msg)}
}

// Wrap attaches code and kind to an existing cause, annotating it
// with msg via github.com/pkg/errors so the original cause is still
// reachable through Unwrap.
func Wrap(cause error, code Code, kind, msg string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Kind: kind, cause: errors.Wrap(cause, msg)}
}

func (e *Error) Error() string {
	return e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}
