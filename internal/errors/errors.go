// Package errors provides structured error types and exit codes for fieldcheck.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the fieldcheck CLI.
const (
	ExitSuccess          = 0 // Success
	ExitFailure          = 1 // A comparison exceeded its tolerance, or a runtime error
	ExitConfigError      = 2 // Configuration error (unknown tolerance, invalid suite, etc.)
	ExitEnvironmentError = 3 // Environment error (missing archive, unreadable fixture tree, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotConfigured
	KindNotFound
	KindValidation
	KindAssertion
	KindEnvironment
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotConfigured:
		return "not-configured"
	case KindNotFound:
		return "not-found"
	case KindValidation:
		return "validation"
	case KindAssertion:
		return "assertion"
	case KindEnvironment:
		return "environment"
	default:
		return "runtime"
	}
}

// Error is the base error type for fieldcheck.
type Error struct {
	Kind    ErrorKind
	Message string
	Case    string // Suite case name if applicable
	Check   string // Check name (image field, statistic) if applicable
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	if e.Case != "" && e.Check != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Case, e.Check, e.Message)
	}
	if e.Case != "" {
		return fmt.Sprintf("[%s] %s", e.Case, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindNotConfigured, KindValidation:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitFailure
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// NotConfigured reports a lookup into static configuration (tolerances,
// geometry families) that has no entry.
func NotConfigured(what, name string) *Error {
	return &Error{
		Kind:    KindNotConfigured,
		Message: fmt.Sprintf("%s not configured: %s", what, name),
	}
}

// Assertion creates a tolerance violation error.
func Assertion(message string) *Error {
	return &Error{
		Kind:    KindAssertion,
		Message: message,
	}
}

// Assertionf creates a tolerance violation error with formatting.
func Assertionf(format string, args ...interface{}) *Error {
	return Assertion(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *Error {
	return &Error{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *Error {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// CheckError attaches a case and check name to an error, keeping its kind.
func CheckError(caseName, check string, err error) *Error {
	kind := KindRuntime
	msg := err.Error()
	var fe *Error
	if errors.As(err, &fe) {
		kind = fe.Kind
		msg = fe.Message
	}
	return &Error{
		Kind:    kind,
		Case:    caseName,
		Check:   check,
		Message: msg,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// Is reports whether err (or anything it wraps) is a fieldcheck error of kind.
func Is(err error, kind ErrorKind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.ExitCode()
	}
	return ExitFailure
}
