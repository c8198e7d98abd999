package importer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/batch"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
	"github.com/kailas-cloud/pricedex/internal/ingest"
	"github.com/kailas-cloud/pricedex/internal/ingest/columns"
	"github.com/kailas-cloud/pricedex/internal/ingest/extract"
	"github.com/kailas-cloud/pricedex/internal/ingest/sheet"
	"github.com/kailas-cloud/pricedex/internal/repository/corpus"
)

const priceCSV = "Артикул;Наименование;Цена\nA-1;Фильтр для воды;100\nA-2;Картридж сменный;200\nA-3;;300\n"

// --- Mocks ---

type mockIndex struct {
	mu       sync.Mutex
	calls    int
	indexed  []product.Record
	importID string
	fail     map[string]bool
	pruned   []string
	pruneErr error
}

func (m *mockIndex) BulkIndex(
	_ context.Context, _, importID string, products []product.Record, progress func([]batch.Outcome),
) []batch.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.importID = importID
	results := make([]batch.Outcome, len(products))
	for i, p := range products {
		if m.fail[p.SKU] {
			results[i] = batch.Outcome{SKU: p.SKU, Err: domain.ErrIndexingFailure}
			continue
		}
		m.indexed = append(m.indexed, p)
		results[i] = batch.Outcome{SKU: p.SKU}
	}
	if progress != nil {
		progress(results)
	}
	return results
}

func (m *mockIndex) PruneSupplier(_ context.Context, supplierID, keepImportID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = append(m.pruned, supplierID+"/"+keepImportID)
	return 1, m.pruneErr
}

type blockingParser struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingParser) Parse(ctx context.Context, _ string, _ []byte) (*ingest.Result, error) {
	close(p.started)
	select {
	case <-p.release:
	case <-ctx.Done():
	}
	return nil, domain.ErrNoDataFound
}

// --- Helpers ---

func newParser() *ingest.Parser {
	logger := zap.NewNop()
	return ingest.NewParser(
		sheet.NewReader(sheet.Config{}, logger),
		columns.NewMapper(columns.DefaultConfig(), columns.WithLogger(logger)),
		extract.New(logger),
		logger,
	)
}

func newStore(t *testing.T) *corpus.Store {
	t.Helper()
	st, err := corpus.OpenInMemory(zap.NewNop())
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newService(t *testing.T, parser Parser, st Corpus, idx Index, cfg Config) *Service {
	t.Helper()
	svc, err := New(parser, st, idx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func acme() supplier.Supplier {
	return supplier.Supplier{ID: "s1", Name: "ООО Акме", Rating: 4}
}

// --- Tests ---

func TestSubmit_RunsJobToCompletion(t *testing.T) {
	st := newStore(t)
	idx := &mockIndex{}
	svc := newService(t, newParser(), st, idx, Config{})

	imp, err := svc.Submit(context.Background(), acme(), "price.csv", []byte(priceCSV))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if imp.Status != imports.StatusPending {
		t.Errorf("status at submit = %s, want pending", imp.Status)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := svc.Get(context.Background(), imp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != imports.StatusCompleted {
		t.Fatalf("status = %s (%s), want completed", got.Status, got.ErrorMessage)
	}
	if got.TotalRows != 3 || got.SuccessfulRows != 2 || got.FailedRows != 0 || got.ProcessedRows != 2 {
		t.Errorf("rows = total %d processed %d ok %d failed %d",
			got.TotalRows, got.ProcessedRows, got.SuccessfulRows, got.FailedRows)
	}
	if got.NewProducts != 2 || got.UpdatedProducts != 0 {
		t.Errorf("new=%d updated=%d", got.NewProducts, got.UpdatedProducts)
	}
	if got.DetectedColumns["name"] != "Наименование" {
		t.Errorf("detected columns = %v", got.DetectedColumns)
	}
	if len(got.GeneratedTags) == 0 || got.StartedAt == nil || got.FinishedAt == nil {
		t.Errorf("import = %+v", got)
	}
	if len(idx.indexed) != 2 || idx.importID != imp.ID {
		t.Errorf("indexed = %d under %q, want 2 under %q", len(idx.indexed), idx.importID, imp.ID)
	}
	if len(idx.pruned) != 1 || idx.pruned[0] != "s1/"+imp.ID {
		t.Errorf("pruned = %v, want earlier imports of s1 dropped", idx.pruned)
	}

	tags, err := st.Tags(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != len(got.GeneratedTags) {
		t.Errorf("supplier tags = %v, generated = %v", tags, got.GeneratedTags)
	}
	prof, err := st.GetSupplier(context.Background(), "s1")
	if err != nil || prof.Name != "ООО Акме" {
		t.Errorf("supplier profile = %+v, %v", prof, err)
	}
}

func TestSubmit_PriorSKUsCountAsUpdated(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	if err := st.SaveProducts(ctx, "s1", "old", []product.Record{{SKU: "A-1", Name: "Фильтр"}}); err != nil {
		t.Fatalf("SaveProducts: %v", err)
	}
	svc := newService(t, newParser(), st, &mockIndex{}, Config{})

	imp, err := svc.Submit(ctx, acme(), "price.csv", []byte(priceCSV))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_ = svc.Close()

	got, err := svc.Get(ctx, imp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.NewProducts != 1 || got.UpdatedProducts != 1 {
		t.Errorf("new=%d updated=%d, want 1/1", got.NewProducts, got.UpdatedProducts)
	}
}

func TestSubmit_IndexingFailuresAreCounted(t *testing.T) {
	st := newStore(t)
	idx := &mockIndex{fail: map[string]bool{"A-2": true}}
	svc := newService(t, newParser(), st, idx, Config{CheckpointEvery: 1})

	imp, err := svc.Submit(context.Background(), acme(), "price.csv", []byte(priceCSV))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_ = svc.Close()

	got, _ := svc.Get(context.Background(), imp.ID)
	if got.Status != imports.StatusCompleted {
		t.Fatalf("partial indexing must not fail the job, got %s", got.Status)
	}
	if got.SuccessfulRows != 1 || got.FailedRows != 1 || got.ProcessedRows != 2 {
		t.Errorf("rows = ok %d failed %d processed %d", got.SuccessfulRows, got.FailedRows, got.ProcessedRows)
	}
	if len(idx.pruned) != 0 {
		t.Errorf("earlier documents must be kept when indexing failed, pruned %v", idx.pruned)
	}
}

func TestSubmit_PruneErrorDoesNotFailJob(t *testing.T) {
	idx := &mockIndex{pruneErr: domain.ErrSearchBackendUnavailable}
	svc := newService(t, newParser(), newStore(t), idx, Config{})

	imp, err := svc.Submit(context.Background(), acme(), "price.csv", []byte(priceCSV))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_ = svc.Close()

	got, _ := svc.Get(context.Background(), imp.ID)
	if got.Status != imports.StatusCompleted {
		t.Fatalf("status = %s (%s), want completed", got.Status, got.ErrorMessage)
	}
}

func TestSubmit_FileLevelFailure(t *testing.T) {
	st := newStore(t)
	idx := &mockIndex{}
	svc := newService(t, newParser(), st, idx, Config{})

	imp, err := svc.Submit(context.Background(), acme(), "price.csv", []byte("Артикул;Цена\nA-1;100\n"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_ = svc.Close()

	got, _ := svc.Get(context.Background(), imp.ID)
	if got.Status != imports.StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if !strings.Contains(got.ErrorMessage, "required column") {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
	if got.TotalRows != 1 || len(got.Sheets) != 1 {
		t.Errorf("diagnostics lost: rows=%d sheets=%d", got.TotalRows, len(got.Sheets))
	}
	if idx.calls != 0 {
		t.Error("nothing must be indexed after a file-level failure")
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc := newService(t, newParser(), newStore(t), &mockIndex{}, Config{MaxFileBytes: 8})
	defer func() { _ = svc.Close() }()

	tests := []struct {
		name     string
		sup      supplier.Supplier
		filename string
		data     string
		want     error
	}{
		{"unsupported format", acme(), "price.docx", "x", domain.ErrUnsupportedFormat},
		{"too large", acme(), "price.csv", "0123456789", domain.ErrPayloadTooLarge},
		{"missing supplier", supplier.Supplier{}, "price.csv", "x", domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.sup, tt.filename, []byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	st := newStore(t)
	parser := &blockingParser{started: make(chan struct{}), release: make(chan struct{})}
	svc := newService(t, parser, st, &mockIndex{}, Config{Workers: 1})

	first, err := svc.Submit(context.Background(), acme(), "a.csv", []byte("x"))
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	select {
	case <-parser.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first job did not start")
	}

	_, err = svc.Submit(context.Background(), acme(), "b.csv", []byte("x"))
	if !errors.Is(err, domain.ErrImportQueueFull) {
		t.Fatalf("expected ErrImportQueueFull, got %v", err)
	}

	close(parser.release)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, _ := svc.Get(context.Background(), first.ID)
	if got.Status != imports.StatusFailed {
		t.Errorf("first import = %s", got.Status)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newService(t, newParser(), newStore(t), &mockIndex{}, Config{})
	defer func() { _ = svc.Close() }()

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyParseResult(t *testing.T) {
	imp := imports.Import{}
	applyParseResult(&imp, &ingest.Result{TotalRows: 10, FailedRows: 2, SkippedRows: 3})
	if imp.TotalRows != 10 || imp.FailedRows != 2 || imp.ProcessedRows != 2 {
		t.Errorf("import = %+v", imp)
	}
}
