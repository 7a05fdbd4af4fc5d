// Package errs defines the error kinds raised while compiling a stylesheet.
//
// Every compile error is an *Error carrying a Kind sentinel, so callers can
// test the category with errors.Is. The file and line of an error are set at
// most once: the innermost frame that knows the location records it and every
// enclosing frame that rethrows leaves it alone.
package errs

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for error kind checking
var (
	// ErrParse indicates the source could not be matched by the grammar
	ErrParse = errors.New("parse error")

	// ErrSemantic indicates a construct placed where it is not allowed
	ErrSemantic = errors.New("semantic error")

	// ErrUndefined indicates an unknown variable, mixin or map key
	ErrUndefined = errors.New("undefined reference")

	// ErrType indicates an operator applied to operands of the wrong kind
	ErrType = errors.New("type error")

	// ErrRecursion indicates a file inclusion cycle or an exceeded evaluation limit
	ErrRecursion = errors.New("recursion error")

	// ErrIO indicates a file could not be read or written
	ErrIO = errors.New("i/o error")
)

// Error is a compile error with an optional source location
type Error struct {
	Kind    error
	Message string
	File    string
	Line    int
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return e.Message + " (" + e.File + ":" + strconv.Itoa(e.Line) + ")"
	case e.File != "":
		return e.Message + " (" + e.File + ")"
	case e.Line > 0:
		return e.Message + " (line " + strconv.Itoa(e.Line) + ")"
	}
	return e.Message
}

// Unwrap returns the kind sentinel and, for I/O errors, the underlying cause
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// Positioned reports whether the error already carries a line number
func (e *Error) Positioned() bool {
	return e.Line > 0
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Parse creates a parse error at the given 1-based line
func Parse(line int, format string, args ...any) *Error {
	e := newError(ErrParse, format, args...)
	e.Line = line
	return e
}

// Semantic creates an error for an illegally placed construct
func Semantic(format string, args ...any) *Error {
	return newError(ErrSemantic, format, args...)
}

// Undefined creates an error for an unknown variable, mixin or key
func Undefined(format string, args ...any) *Error {
	return newError(ErrUndefined, format, args...)
}

// Type creates an error for an operand kind mismatch
func Type(format string, args ...any) *Error {
	return newError(ErrType, format, args...)
}

// Recursion creates an error for inclusion cycles and exceeded limits
func Recursion(format string, args ...any) *Error {
	return newError(ErrRecursion, format, args...)
}

// IO wraps a file system error
func IO(cause error, format string, args ...any) *Error {
	e := newError(ErrIO, format, args...)
	e.cause = cause
	return e
}

// WithLine records line on err unless it already has one.
// Errors that are not *Error are returned untouched.
func WithLine(err error, line int) error {
	var e *Error
	if line > 0 && errors.As(err, &e) && e.Line == 0 {
		e.Line = line
	}
	return err
}

// WithFile records file on err unless it already has one.
// Errors that are not *Error are returned untouched.
func WithFile(err error, file string) error {
	var e *Error
	if file != "" && errors.As(err, &e) && e.File == "" {
		e.File = file
	}
	return err
}
