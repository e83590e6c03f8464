package parser

import (
	"fmt"

	"github.com/NikitaCOEUR/argot/internal/symbol"
	"github.com/NikitaCOEUR/argot/internal/token"
)

// ErrorKind classifies a parse or validation error
type ErrorKind int

const (
	// ErrUnmatchedToken is a token no symbol accepted
	ErrUnmatchedToken ErrorKind = iota
	// ErrMissingArgument is an arity underflow
	ErrMissingArgument
	// ErrTooManyArguments is an arity overflow of a repeated option
	ErrTooManyArguments
	// ErrConversion is a value that did not convert to the declared type
	ErrConversion
	// ErrRequiredOption is a required option that was not supplied
	ErrRequiredOption
	// ErrRequiredCommand is a command that needs a subcommand
	ErrRequiredCommand
	// ErrDefault is a default value source that failed to resolve
	ErrDefault
	// ErrValidation is a failed value condition
	ErrValidation
)

var errorKindNames = map[ErrorKind]string{
	ErrUnmatchedToken:   "unmatched_token",
	ErrMissingArgument:  "missing_argument",
	ErrTooManyArguments: "too_many_arguments",
	ErrConversion:       "conversion",
	ErrRequiredOption:   "required_option",
	ErrRequiredCommand:  "required_command",
	ErrDefault:          "default",
	ErrValidation:       "validation",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is one reported violation. Errors are batched in Result.Errors.
type Error struct {
	Message string
	Kind    ErrorKind
	// Symbol is the symbol the error concerns, if any
	Symbol *symbol.Symbol
	// Token is the offending token, if any
	Token *token.Token
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError builds an error for a failed value condition
func NewValidationError(s *symbol.Symbol, message string) *Error {
	return &Error{Message: message, Kind: ErrValidation, Symbol: s}
}

func newError(kind ErrorKind, s *symbol.Symbol, tok *token.Token, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Kind: kind, Symbol: s, Token: tok}
}
