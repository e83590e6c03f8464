// Package derrors provides custom error types for argot.
// Grammar construction failures, grammar file problems and programming misuse
// each get their own type so callers can tell a broken grammar from bad user input.
package derrors

import (
	"errors"
	"fmt"
)

// ArgotError is the base interface for all argot errors
type ArgotError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all argot errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// GrammarError represents an invalid symbol tree declaration.
// It is returned at construction time and is never deferred to parse time.
type GrammarError struct {
	baseError
	Symbol string
}

// NewGrammarError creates a new grammar construction error
func NewGrammarError(symbol string, message string) *GrammarError {
	return &GrammarError{
		baseError: baseError{
			code:    "GRAMMAR_ERROR",
			message: fmt.Sprintf("%s: %s", symbol, message),
		},
		Symbol: symbol,
	}
}

// MisuseError signals a programming error in a grammar definition, such as a
// casing condition attached to a non-string symbol. It is raised with panic.
type MisuseError struct {
	baseError
	Symbol string
}

// NewMisuseError creates a new misuse error
func NewMisuseError(symbol string, message string) *MisuseError {
	return &MisuseError{
		baseError: baseError{
			code:    "MISUSE",
			message: fmt.Sprintf("%s: %s", symbol, message),
		},
		Symbol: symbol,
	}
}

// Misuse panics with a MisuseError.
func Misuse(symbol string, format string, args ...any) {
	panic(NewMisuseError(symbol, fmt.Sprintf(format, args...)))
}

// RecoverMisuse converts a recovered MisuseError into err. Any other panic
// value is re-raised. Use it as: defer derrors.RecoverMisuse(&err)
func RecoverMisuse(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if m, ok := r.(*MisuseError); ok {
		*err = m
		return
	}
	panic(r)
}

// ConfigurationError represents errors in grammar or settings files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// NotFoundError represents errors when a resource is not found
type NotFoundError struct {
	baseError
	Resource string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, message string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			code:    "NOT_FOUND",
			message: message,
			cause:   nil,
		},
		Resource: resource,
	}
}

// IsGrammarError reports whether err wraps a GrammarError.
func IsGrammarError(err error) bool {
	var g *GrammarError
	return errors.As(err, &g)
}

// IsMisuse reports whether err wraps a MisuseError.
func IsMisuse(err error) bool {
	var m *MisuseError
	return errors.As(err, &m)
}
