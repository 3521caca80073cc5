package marketing_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tbdc/leadscope/internal/marketing"
	"github.com/tbdc/leadscope/pkg/pagination"
	"github.com/tbdc/leadscope/pkg/routes"
)

type fakeCorpus struct {
	materials []marketing.Material
	matches   []marketing.Match
	ingested  []marketing.CreateCommand
	ingestErr error
	searchErr error
	cleared   bool
}

func (f *fakeCorpus) Handler(maxIngestSize int64) *marketing.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return marketing.NewHandler(f, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, maxIngestSize)
}

func (f *fakeCorpus) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters marketing.Filters,
) (*pagination.PageResult[marketing.Material], error) {
	result := pagination.NewPageResult(f.materials, len(f.materials), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeCorpus) Ingest(ctx context.Context, cmds []marketing.CreateCommand) (int, error) {
	if f.ingestErr != nil {
		return 0, f.ingestErr
	}
	f.ingested = cmds
	return len(cmds), nil
}

func (f *fakeCorpus) Search(ctx context.Context, text string, k int) ([]marketing.Match, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if k < len(f.matches) {
		return f.matches[:k], nil
	}
	return f.matches, nil
}

func (f *fakeCorpus) Stats(ctx context.Context) (*marketing.Stats, error) {
	return &marketing.Stats{Count: len(f.materials), Dimension: 4}, nil
}

func (f *fakeCorpus) Clear(ctx context.Context) error {
	f.cleared = true
	return nil
}

func (f *fakeCorpus) Load(ctx context.Context) error { return nil }

func newCorpusMux(f *fakeCorpus, maxIngestSize int64) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, f.Handler(maxIngestSize).Routes())
	return mux
}

func TestHandlerIngest(t *testing.T) {
	f := &fakeCorpus{}
	mux := newCorpusMux(f, 1<<20)

	body := `[{"title":"Robotics ROI","industry":"Robotics"},{"title":"Fintech compliance"}]`
	req := httptest.NewRequest(http.MethodPost, "/marketing/materials", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["ingested"] != 2 {
		t.Errorf("ingested = %d, want 2", resp["ingested"])
	}
	if len(f.ingested) != 2 || f.ingested[0].Title != "Robotics ROI" {
		t.Errorf("ingested commands = %+v", f.ingested)
	}
}

func TestHandlerIngestBodyTooLarge(t *testing.T) {
	f := &fakeCorpus{}
	mux := newCorpusMux(f, 32)

	body := `[{"title":"` + strings.Repeat("x", 200) + `"}]`
	req := httptest.NewRequest(http.MethodPost, "/marketing/materials", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "request body exceeds") {
		t.Errorf("body = %s, want size limit message", rec.Body.String())
	}
	if f.ingested != nil {
		t.Error("oversized request should not reach the system")
	}
}

func TestHandlerIngestNoMaterials(t *testing.T) {
	f := &fakeCorpus{ingestErr: marketing.ErrNoMaterials}
	mux := newCorpusMux(f, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/marketing/materials", strings.NewReader("[]"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerSearch(t *testing.T) {
	f := &fakeCorpus{
		matches: []marketing.Match{
			{Material: marketing.Material{ID: uuid.New(), Title: "Robotics ROI"}, Score: 0.91},
			{Material: marketing.Material{ID: uuid.New(), Title: "Fintech compliance"}, Score: 0.42},
		},
	}
	mux := newCorpusMux(f, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/marketing/search", strings.NewReader(`{"text":"robot arms","k":1}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var matches []marketing.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &matches); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Material.Title != "Robotics ROI" {
		t.Errorf("Title = %q, want Robotics ROI", matches[0].Material.Title)
	}
}

func TestHandlerSearchEmptyCorpus(t *testing.T) {
	f := &fakeCorpus{searchErr: marketing.ErrEmptyCorpus}
	mux := newCorpusMux(f, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/marketing/search", strings.NewReader(`{"text":"anything"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != marketing.MapHTTPStatus(marketing.ErrEmptyCorpus) {
		t.Errorf("status = %d, want %d", rec.Code, marketing.MapHTTPStatus(marketing.ErrEmptyCorpus))
	}
}

func TestHandlerClear(t *testing.T) {
	f := &fakeCorpus{}
	mux := newCorpusMux(f, 1<<20)

	req := httptest.NewRequest(http.MethodDelete, "/marketing/materials", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !f.cleared {
		t.Error("Clear was not called")
	}
}

func TestHandlerStats(t *testing.T) {
	f := &fakeCorpus{materials: []marketing.Material{{Title: "one"}}}
	mux := newCorpusMux(f, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/marketing/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var stats marketing.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Count != 1 {
		t.Errorf("Count = %d, want 1", stats.Count)
	}
}
