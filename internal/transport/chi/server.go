package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
	cataloguc "github.com/kailas-cloud/pricedex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/pricedex/internal/usecase/health"
)

const (
	// multipartMemory is the part of an upload kept in memory while parsing.
	multipartMemory = 8 << 20
	// multipartOverhead covers form fields and boundaries on top of the file.
	multipartOverhead = 1 << 20
	maxSearchBody     = 1 << 20
)

// Importer queues and reports price-list imports.
type Importer interface {
	Submit(ctx context.Context, sup supplier.Supplier, filename string, data []byte) (imports.Import, error)
	Get(ctx context.Context, id string) (imports.Import, error)
	MaxFileBytes() int64
}

// Searcher answers supplier search requests.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Response, error)
}

// Catalog serves per-supplier reads and removals.
type Catalog interface {
	Supplier(ctx context.Context, id string) (supplier.Supplier, error)
	Tags(ctx context.Context, supplierID string) ([]string, error)
	DeleteProducts(ctx context.Context, supplierID string) (cataloguc.Deletion, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers of the API.
type Server struct {
	imports Importer
	search  Searcher
	catalog Catalog
	health  HealthChecker
}

// NewServer creates an HTTP API server.
func NewServer(imp Importer, search Searcher, catalog Catalog, health HealthChecker) *Server {
	return &Server{imports: imp, search: search, catalog: catalog, health: health}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/suppliers/{supplierID}/imports", s.CreateImport)
	r.Get("/suppliers/{supplierID}", s.GetSupplier)
	r.Get("/suppliers/{supplierID}/tags", s.GetSupplierTags)
	r.Delete("/suppliers/{supplierID}/products", s.DeleteSupplierProducts)
	r.Get("/imports/{importID}", s.GetImport)
	r.Post("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// CreateImport handles POST /suppliers/{supplierID}/imports.
func (s *Server) CreateImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.imports.MaxFileBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid multipart body: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "failed to read file")
		return
	}

	sup, err := supplierFromForm(chi.URLParam(r, "supplierID"), r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	imp, err := s.imports.Submit(r.Context(), sup, header.Filename, data)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/imports/"+imp.ID)
	writeJSON(w, http.StatusAccepted, imp)
}

func supplierFromForm(id string, r *http.Request) (supplier.Supplier, error) {
	var rating float64
	if v := r.FormValue("rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return supplier.Supplier{}, errors.New("rating must be a number")
		}
		rating = f
	}
	return supplier.New(id, r.FormValue("name"), r.FormValue("inn"), rating, r.FormValue("color"))
}

// GetImport handles GET /imports/{importID}.
func (s *Server) GetImport(w http.ResponseWriter, r *http.Request) {
	imp, err := s.imports.Get(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

// GetSupplier handles GET /suppliers/{supplierID}.
func (s *Server) GetSupplier(w http.ResponseWriter, r *http.Request) {
	sup, err := s.catalog.Supplier(r.Context(), chi.URLParam(r, "supplierID"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sup)
}

// GetSupplierTags handles GET /suppliers/{supplierID}/tags.
func (s *Server) GetSupplierTags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "supplierID")
	tags, err := s.catalog.Tags(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{SupplierID: id, Tags: tags, Total: len(tags)})
}

// DeleteSupplierProducts handles DELETE /suppliers/{supplierID}/products.
func (s *Server) DeleteSupplierProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "supplierID")
	d, err := s.catalog.DeleteProducts(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteProductsResponse{
		SupplierID:     id,
		IndexedDeleted: d.Indexed,
		StoredDeleted:  d.Stored,
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSearchBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
