package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrPayloadTooLarge signals an upload above the configured limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnsupportedFormat signals a file extension the sheet extractor cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoDataFound signals that every sheet of a file was empty.
	ErrNoDataFound = errors.New("no data found in file")
	// ErrNoColumnsDetected signals that no canonical field could be mapped on any sheet.
	ErrNoColumnsDetected = errors.New("no columns detected")
	// ErrMissingRequiredColumn signals that the name column was not found even after fallbacks.
	ErrMissingRequiredColumn = errors.New("required column not found")
	// ErrNoProductsExtracted signals that sheets were processed but yielded nothing.
	ErrNoProductsExtracted = errors.New("no products extracted from any sheet")

	// ErrImportQueueFull signals a saturated import worker pool.
	ErrImportQueueFull = errors.New("import queue is full")
	// ErrIndexingFailure signals that some documents of a batch were not indexed.
	ErrIndexingFailure = errors.New("indexing failure")
	// ErrSearchBackendUnavailable signals that the search index cannot serve queries.
	ErrSearchBackendUnavailable = errors.New("search backend unavailable")
	// ErrAdvisorError signals a column advisor (LLM) failure.
	ErrAdvisorError = errors.New("column advisor error")
)

// NoColumnsDetectedError wraps ErrNoColumnsDetected with the raw columns seen in the file.
type NoColumnsDetectedError struct {
	Columns []string
}

func (e *NoColumnsDetectedError) Error() string {
	return fmt.Sprintf("%s: found columns [%s]", ErrNoColumnsDetected.Error(), strings.Join(e.Columns, ", "))
}

func (e *NoColumnsDetectedError) Unwrap() error { return ErrNoColumnsDetected }

// NewNoColumnsDetected creates a no-columns error carrying diagnostic column names.
func NewNoColumnsDetected(columns []string) error {
	return &NoColumnsDetectedError{Columns: columns}
}

// MissingColumnError wraps ErrMissingRequiredColumn with the field and the available columns.
type MissingColumnError struct {
	Field   string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s (available: %s)",
		ErrMissingRequiredColumn.Error(), e.Field, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingRequiredColumn }
