package utils

import (
	"errors"
	"fmt"
)

// ErrorWithSuggestion wraps an error with a user-friendly suggestion.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Err.Error(), e.Suggestion)
}

// GetSuggestion returns the suggestion text.
func (e *ErrorWithSuggestion) GetSuggestion() string {
	return e.Suggestion
}

// Unwrap returns the underlying error for error chain support.
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WrapWithSuggestion wraps an existing error with a suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// ErrTaskNotFound returns an error for when a task is not found.
func ErrTaskNotFound(ref string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("task not found: %s", ref),
		Suggestion: "Check the reference or use 'todobreeze list' to see all tasks",
	}
}

// ErrInvalidDate returns an error for an invalid date string.
func ErrInvalidDate(dateStr string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid date: %s", dateStr),
		Suggestion: "Use date format YYYY-MM-DD (e.g., 2026-01-15)",
	}
}

// ErrInvalidPriority returns an error for an invalid priority value.
func ErrInvalidPriority(priority string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid priority: %s", priority),
		Suggestion: "Priority must be one of none, low, medium, high",
	}
}

// ErrImportFormat returns an error for an import payload whose top-level
// shape is wrong.
func ErrImportFormat(cause error) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("import failed: %w", cause),
		Suggestion: "The file must contain a JSON array of task objects",
	}
}

// ErrAttachmentUnreadable returns an error for an attachment file that could
// not be read.
func ErrAttachmentUnreadable(path string, cause error) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("could not read attachment %s: %w", path, cause),
		Suggestion: "Check that the file exists and is readable",
	}
}

// ErrStorageUnavailable returns an error when no persistence backend could
// be opened.
func ErrStorageUnavailable(cause error) error {
	if cause == nil {
		cause = errors.New("no storage backend available")
	}
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("storage unavailable: %w", cause),
		Suggestion: "Check the storage paths in your config file and their permissions",
	}
}
