package domain

import "fmt"

// SchemaError reports input (or a collaborator response) outside the
// enumerated, reverse-engineered taxonomy. Always fatal: the source format
// is undocumented, and a wrong guess corrupts message history irrecoverably.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return "schema: " + e.Message }

// Schemaf builds a SchemaError from a format string.
func Schemaf(format string, args ...any) *SchemaError {
	return &SchemaError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports a violated structural invariant, such as a
// one-to-one conversation resolving to the wrong participant count.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransientError reports a retryable failure that exhausted its backoff
// budget and escalated to fatal.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return "transient: " + e.Message + ": " + e.Err.Error()
	}
	return "transient: " + e.Message
}

func (e *TransientError) Unwrap() error { return e.Err }
