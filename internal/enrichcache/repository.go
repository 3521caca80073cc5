package enrichcache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tbdc/leadscope/pkg/pagination"
	"github.com/tbdc/leadscope/pkg/query"
	"github.com/tbdc/leadscope/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an enrichment cache repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "enrichcache"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "CompanyName", "Key")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

const recordColumns = `
	key, module, entity_id, company_name, fit_score,
	analysis, rubric, marketing_matches, similar_customers,
	created_at, updated_at`

// Find returns the cached record for a key. A row whose analysis payload
// no longer parses is reported as corrupt; callers treat that as a miss
// and regenerate.
func (r *repo) Find(ctx context.Context, key string) (*Record, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM enrichment_cache
		WHERE key = $1`, recordColumns)

	record, err := repository.QueryOne(ctx, r.db, q, []any{key}, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if !record.valid() {
		r.logger.Warn("cache entry failed validation", "key", key)
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, key)
	}

	return &record, nil
}

func (r *repo) Save(ctx context.Context, cmd SaveCommand) (*Record, error) {
	q := fmt.Sprintf(`
		INSERT INTO enrichment_cache(
			key, module, entity_id, company_name, fit_score,
			analysis, rubric, marketing_matches, similar_customers,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (key) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			fit_score = EXCLUDED.fit_score,
			analysis = EXCLUDED.analysis,
			rubric = EXCLUDED.rubric,
			marketing_matches = EXCLUDED.marketing_matches,
			similar_customers = EXCLUDED.similar_customers,
			updated_at = now()
		RETURNING %s`, recordColumns)

	args := []any{
		cmd.Key(), cmd.Module, cmd.EntityID, cmd.CompanyName, cmd.FitScore,
		nullable(cmd.Analysis), nullable(cmd.Rubric),
		nullable(cmd.MarketingMatches), nullable(cmd.SimilarCustomers),
	}

	record, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("cache entry saved", "key", record.Key, "company", record.CompanyName)
	return &record, nil
}

func (r *repo) Delete(ctx context.Context, key string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM enrichment_cache WHERE key = $1",
			key,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("cache entry deleted", "key", key)
	return nil
}

// nullable maps an empty JSON payload to SQL NULL.
func nullable(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
