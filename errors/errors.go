// Package errors defines the diagnostic error types shared by the XML
// parser, the XPath compiler, and the evaluation engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a terminal failure of a query or edit run.
type ErrorCode string

const (
	// ErrMalformedXML indicates a structural or lexical XML violation.
	ErrMalformedXML ErrorCode = "malformed-xml"
	// ErrXPathSyntax indicates the XPath expression failed to parse.
	ErrXPathSyntax ErrorCode = "xpath-syntax"
	// ErrUnboundPrefix indicates a namespace prefix with no binding in scope.
	ErrUnboundPrefix ErrorCode = "unbound-prefix"
	// ErrEvalType indicates an operand could not be coerced to the required type.
	ErrEvalType ErrorCode = "evaluation-type"
)

// Error describes a diagnostic with a code, message, and optional
// position context. Line and column are 1-based; a zero line means the
// position is unknown. Fragment holds the offending source excerpt.
type Error struct {
	Code     ErrorCode
	Message  string
	Line     int
	Column   int
	Fragment string
}

// Error formats the diagnostic for display.
func (e *Error) Error() string {
	if e == nil {
		return "diagnostic <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Line > 0 {
		b.WriteString(fmt.Sprintf(" at line %d, column %d", e.Line, e.Column))
	}
	if e.Fragment != "" {
		b.WriteString(fmt.Sprintf(" near %q", e.Fragment))
	}
	return b.String()
}

// New builds an Error with a code and message.
func New(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf formats a message and builds an Error.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewAt builds an Error carrying a 1-based line and column.
func NewAt(code ErrorCode, line, column int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

// WithFragment returns a copy of the error annotated with the offending
// source excerpt.
func (e *Error) WithFragment(fragment string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Fragment = fragment
	return &clone
}

// AsError extracts a diagnostic from an error chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var diag *Error
	if errors.As(err, &diag) {
		return diag, true
	}
	return nil, false
}

// CodeOf returns the diagnostic code of err, or the empty string when err
// carries no diagnostic.
func CodeOf(err error) ErrorCode {
	if diag, ok := AsError(err); ok {
		return diag.Code
	}
	return ""
}
