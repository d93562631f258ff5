package errors

import (
	"fmt"
	"strings"
)

// Category classifies builder errors for recovery decisions.
type Category string

const (
	// CategoryValidation: a config failed submission checks. Always
	// recoverable locally, the user corrects input.
	CategoryValidation Category = "VALIDATION"
	// CategoryPrecondition: a generator was called with out-of-domain
	// input. A programming error upstream of the core.
	CategoryPrecondition Category = "PRECONDITION"
	// CategoryCollaborator: a catalog, backtest or persistence call
	// failed or timed out. Recovered per-call; never blocks editing.
	CategoryCollaborator Category = "COLLABORATOR"
	// CategoryConfig: the builder process itself is misconfigured
	// (missing endpoint, unreadable file).
	CategoryConfig Category = "CONFIG"
)

// BuilderError is a categorized error with component context.
type BuilderError struct {
	Category   Category
	Component  string
	Operation  string
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *BuilderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s in %s: %v", e.Category, e.Component, e.Message, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s in %s", e.Category, e.Component, e.Message, e.Operation)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *BuilderError) Unwrap() error {
	return e.Underlying
}

// IsRetryable reports whether the caller may reasonably retry the
// operation. Only collaborator failures are. Nothing retries
// automatically; this informs the user-facing message only.
func (e *BuilderError) IsRetryable() bool {
	return e.Retryable
}

// New creates a categorized builder error.
func New(category Category, component, operation, message string) *BuilderError {
	return &BuilderError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Retryable: category == CategoryCollaborator,
	}
}

// Wrap attaches category and component context to an existing error.
func Wrap(err error, category Category, component, operation string) *BuilderError {
	message := "operation failed"
	if err != nil {
		message = firstLine(err.Error())
	}
	return &BuilderError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    message,
		Underlying: err,
		Retryable:  category == CategoryCollaborator,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
