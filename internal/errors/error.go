package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactor   Category = "reactor"
	CategoryTemplate  Category = "template"
	CategoryReconcile Category = "reconcile"
	CategorySource    Category = "source"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// LanceError is a structured error with a code, tree path and suggestion.
type LanceError struct {
	// Code is a unique error identifier (e.g., "L030").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path locates the offending node or object (tree path, template name).
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LanceError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LanceError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a LanceError with the same code.
func (e *LanceError) Is(target error) bool {
	t, ok := target.(*LanceError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithPath records where the error occurred.
func (e *LanceError) WithPath(path string) *LanceError {
	e.Path = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LanceError) WithSuggestion(s string) *LanceError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LanceError) WithDetail(d string) *LanceError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *LanceError) Wrap(err error) *LanceError {
	e.Wrapped = err
	return e
}

// New creates a LanceError from a registered error code.
func New(code string) *LanceError {
	template, ok := registry[code]
	if !ok {
		return &LanceError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LanceError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new LanceError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LanceError {
	return &LanceError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LanceError.
func FromError(err error, code string) *LanceError {
	if err == nil {
		return nil
	}
	var le *LanceError
	if stderrors.As(err, &le) {
		return le
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err (or anything it wraps) is a LanceError with code.
func HasCode(err error, code string) bool {
	var le *LanceError
	for err != nil {
		if !stderrors.As(err, &le) {
			return false
		}
		if le.Code == code {
			return true
		}
		err = le.Wrapped
	}
	return false
}
