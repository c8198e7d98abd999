package chi

import (
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
)

// ErrorCode is the machine-readable error identifier of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeUnsupportedFormat  ErrorCode = "unsupported_format"
	ErrorCodePayloadTooLarge    ErrorCode = "payload_too_large"
	ErrorCodeQueueFull          ErrorCode = "queue_full"
	ErrorCodeBackendUnavailable ErrorCode = "backend_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query       string   `json:"query"`
	SupplierIDs []string `json:"supplier_ids,omitempty"`
	Brands      []string `json:"brands,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Limit       *int     `json:"limit,omitempty"`
}

func (r *SearchRequest) toDomain() (request.Request, error) {
	limit := 0
	if r.Limit != nil {
		if *r.Limit <= 0 || *r.Limit > request.MaxLimit {
			return request.Request{}, errLimitRange
		}
		limit = *r.Limit
	}
	return request.New(r.Query, request.Filters{
		SupplierIDs: r.SupplierIDs,
		Brands:      r.Brands,
		Categories:  r.Categories,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
	}, limit)
}

// TagsResponse is the body of GET /suppliers/{supplierID}/tags.
type TagsResponse struct {
	SupplierID string   `json:"supplier_id"`
	Tags       []string `json:"tags"`
	Total      int      `json:"total"`
}

// DeleteProductsResponse is the body of DELETE /suppliers/{supplierID}/products.
type DeleteProductsResponse struct {
	SupplierID     string `json:"supplier_id"`
	IndexedDeleted int    `json:"indexed_deleted"`
	StoredDeleted  int    `json:"stored_deleted"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
