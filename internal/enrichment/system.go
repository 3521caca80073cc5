package enrichment

import (
	"context"

	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/enrichcache"
)

// Result is an enrichment outcome, cached or freshly generated.
type Result struct {
	*enrichcache.Record
	Cached  bool     `json:"cached"`
	Sources []string `json:"sources,omitempty"`
}

// Options tunes a single enrichment run.
type Options struct {
	// ForceRefresh bypasses the cache read but still writes the fresh
	// result back.
	ForceRefresh bool
}

// System defines the public contract for the enrichment pipeline.
type System interface {
	Handler() *Handler

	Enrich(ctx context.Context, module crm.Module, id string, opts Options) (*Result, error)

	// EnrichURL enriches a bare website with no backing CRM record.
	EnrichURL(ctx context.Context, rawURL string, opts Options) (*Result, error)
}
