package imports

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/pricedex/internal/domain/corpus"
)

// Status is the lifecycle state of an import.
type Status string

// Import status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SheetStatus is the outcome of processing one sheet.
type SheetStatus string

// Sheet status values.
const (
	SheetProcessed SheetStatus = "processed"
	SheetSkipped   SheetStatus = "skipped"
)

// SheetInfo reports what one sheet contributed to an import.
type SheetInfo struct {
	Name               string            `json:"name"`
	Status             SheetStatus       `json:"status"`
	Reason             string            `json:"reason,omitempty"`
	Rows               int               `json:"rows"`
	Products           int               `json:"products"`
	ProductsWithSKU    int               `json:"products_with_sku"`
	ProductsWithoutSKU int               `json:"products_without_sku"`
	UniqueTags         int               `json:"unique_tags"`
	DetectedColumns    map[string]string `json:"detected_columns,omitempty"`
}

// Import tracks one uploaded price-list file through parsing and indexing.
type Import struct {
	ID              string            `json:"id"`
	SupplierID      string            `json:"supplier_id"`
	Filename        string            `json:"filename"`
	Status          Status            `json:"status"`
	TotalRows       int               `json:"total_rows"`
	ProcessedRows   int               `json:"processed_rows"`
	SuccessfulRows  int               `json:"successful_rows"`
	FailedRows      int               `json:"failed_rows"`
	NewProducts     int               `json:"new_products"`
	UpdatedProducts int               `json:"updated_products"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	DetectedColumns map[string]string `json:"detected_columns,omitempty"`
	GeneratedTags   []string          `json:"generated_tags,omitempty"`
	Sheets          []SheetInfo       `json:"sheets_info,omitempty"`
	Stats           corpus.Stats      `json:"statistics"`
	CreatedAt       time.Time         `json:"created_at"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	FinishedAt      *time.Time        `json:"finished_at,omitempty"`
}

// New creates a pending import with a fresh id.
func New(supplierID, filename string) (Import, error) {
	if supplierID == "" {
		return Import{}, fmt.Errorf("supplier id is required")
	}
	if filename == "" {
		return Import{}, fmt.Errorf("filename is required")
	}
	return Import{
		ID:         uuid.NewString(),
		SupplierID: supplierID,
		Filename:   filename,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Start moves a pending import to processing.
func (i *Import) Start() error {
	if i.Status != StatusPending {
		return fmt.Errorf("cannot start import in status %s", i.Status)
	}
	now := time.Now().UTC()
	i.Status = StatusProcessing
	i.StartedAt = &now
	return nil
}

// Complete marks the import as completed.
func (i *Import) Complete() error {
	if i.Status != StatusProcessing {
		return fmt.Errorf("cannot complete import in status %s", i.Status)
	}
	now := time.Now().UTC()
	i.Status = StatusCompleted
	i.FinishedAt = &now
	return nil
}

// Fail marks the import as failed, keeping accumulated statistics.
// Failing a terminal import is a no-op.
func (i *Import) Fail(err error) {
	if i.Status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	i.Status = StatusFailed
	i.FinishedAt = &now
	if err != nil {
		i.ErrorMessage = err.Error()
	}
}

// RecordBatch adds the outcome of one indexing batch to the row counters.
func (i *Import) RecordBatch(ok, failed int) {
	i.ProcessedRows += ok + failed
	i.SuccessfulRows += ok
	i.FailedRows += failed
}
