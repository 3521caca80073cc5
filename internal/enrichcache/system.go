package enrichcache

import (
	"context"

	"github.com/tbdc/leadscope/pkg/pagination"
)

// System defines the public contract for the enrichment cache.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, cmd SaveCommand) (*Record, error)
	Delete(ctx context.Context, key string) error
}
