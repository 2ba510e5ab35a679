// Package errors provides a lightweight structured error type (PublishError)
// for category-based classification in the publish pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a publish error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Space and content errors
	CategorySpace    ErrorCategory = "space"
	CategoryMarkdown ErrorCategory = "markdown"

	// Output generation errors
	CategoryTemplate   ErrorCategory = "template"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the run
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// PublishError is a structured error with category, severity, and context.
type PublishError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PublishError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *PublishError) WithContext(key string, value any) *PublishError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PublishError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PublishError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
