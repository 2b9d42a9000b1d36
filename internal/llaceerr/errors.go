// Package llaceerr defines the error taxonomy shared by every layer of
// the IR library, from the arena up through the interpreter.
package llaceerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the exhaustive error kinds the library can return.
// Every fallible operation returns a *Error wrapping one of these; none
// of them is surfaced as a panic or an exception.
type Kind int

const (
	None Kind = iota
	OutOfMemory
	BadArgument
	InvalidModule
	InvalidFunction
	InvalidType
	IOFailure
	InvalidFormat
	InvalidArchitecture
	InvalidSection
	InvalidSymbol
	InvalidRelocation
	SectionNotFound
	SymbolNotFound
	DuplicateSymbol
	UnresolvedSymbol
	BadAlignment
	Overflow

	// Interpreter-specific kinds (spec.md §4.10, §7).
	DivideByZero
	TypeMismatch
	StackOverflow
	Unimplemented
)

var kindNames = [...]string{
	None:                 "None",
	OutOfMemory:          "OutOfMemory",
	BadArgument:          "BadArgument",
	InvalidModule:        "InvalidModule",
	InvalidFunction:      "InvalidFunction",
	InvalidType:          "InvalidType",
	IOFailure:            "IOFailure",
	InvalidFormat:        "InvalidFormat",
	InvalidArchitecture:  "InvalidArchitecture",
	InvalidSection:       "InvalidSection",
	InvalidSymbol:        "InvalidSymbol",
	InvalidRelocation:    "InvalidRelocation",
	SectionNotFound:      "SectionNotFound",
	SymbolNotFound:       "SymbolNotFound",
	DuplicateSymbol:      "DuplicateSymbol",
	UnresolvedSymbol:     "UnresolvedSymbol",
	BadAlignment:         "BadAlignment",
	Overflow:             "Overflow",
	DivideByZero:         "DivideByZero",
	TypeMismatch:         "TypeMismatch",
	StackOverflow:        "StackOverflow",
	Unimplemented:        "Unimplemented",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// Error is the library's single error type. It carries a Kind for
// callers that branch on error category, a human-readable Message, and
// an optional Cause from github.com/pkg/errors for stack-trace-carrying
// wraps on the fatal-abort path (§7).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a stack-trace-carrying cause to a new Error of the given
// kind, for the fatal-abort path (§7: "abort after logging file, line,
// function, and an explanatory message").
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.Wrap(cause, message)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
