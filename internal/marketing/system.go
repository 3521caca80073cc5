package marketing

import (
	"context"

	"github.com/tbdc/leadscope/pkg/pagination"
)

// Embedder produces embedding vectors for corpus entries and queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// System defines the public contract for marketing corpus operations.
type System interface {
	Handler(maxIngestSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Material], error)

	Ingest(ctx context.Context, cmds []CreateCommand) (int, error)
	Search(ctx context.Context, text string, k int) ([]Match, error)
	Stats(ctx context.Context) (*Stats, error)
	Clear(ctx context.Context) error

	// Load hydrates the in-memory index from the database. Called once
	// at startup.
	Load(ctx context.Context) error
}
