package enrichment_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/enrichment"
	"github.com/tbdc/leadscope/internal/scrape"
	"github.com/tbdc/leadscope/pkg/routes"
)

func newHandlerMux(f *fixture) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := enrichment.NewHandler(f.system, logger)

	mux := http.NewServeMux()
	routes.Register(mux, handler.Routes())
	return mux
}

func TestHandlerEnrich(t *testing.T) {
	f := newFixture()
	mux := newHandlerMux(f)

	req := httptest.NewRequest(http.MethodGet, "/enrich/lead/100", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result enrichment.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Cached {
		t.Error("Cached = true on first run")
	}
	if result.Key != "lead:100" {
		t.Errorf("Key = %q, want lead:100", result.Key)
	}
}

func TestHandlerEnrichInvalidModule(t *testing.T) {
	f := newFixture()
	mux := newHandlerMux(f)

	req := httptest.NewRequest(http.MethodGet, "/enrich/contacts/100", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerEnrichNotFound(t *testing.T) {
	f := newFixture()
	mux := newHandlerMux(f)

	req := httptest.NewRequest(http.MethodGet, "/enrich/lead/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerEnrichRefreshParam(t *testing.T) {
	f := newFixture()
	mux := newHandlerMux(f)

	first := httptest.NewRequest(http.MethodGet, "/enrich/lead/100", nil)
	mux.ServeHTTP(httptest.NewRecorder(), first)

	req := httptest.NewRequest(http.MethodGet, "/enrich/lead/100?refresh=true", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var result enrichment.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Cached {
		t.Error("Cached = true with refresh=true, want fresh run")
	}
	if f.crm.findCalls != 2 {
		t.Errorf("crm lookups = %d, want 2", f.crm.findCalls)
	}
}

func TestHandlerEnrichURL(t *testing.T) {
	f := newFixture()
	mux := newHandlerMux(f)

	req := httptest.NewRequest(http.MethodGet, "/enrich/url?url=acme.com", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result enrichment.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Key != "url:acme.com" {
		t.Errorf("Key = %q, want url:acme.com", result.Key)
	}
}

func TestHandlerEnrichURLMissingParam(t *testing.T) {
	f := newFixture()
	mux := newHandlerMux(f)

	req := httptest.NewRequest(http.MethodGet, "/enrich/url", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"entity not found", crm.ErrEntityNotFound, http.StatusNotFound},
		{"invalid module", crm.ErrInvalidModule, http.StatusBadRequest},
		{"invalid url", scrape.ErrInvalidURL, http.StatusBadRequest},
		{"upstream failure", crm.ErrUpstreamFailure, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enrichment.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}
