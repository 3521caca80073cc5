package marketing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tbdc/leadscope/pkg/pagination"
	"github.com/tbdc/leadscope/pkg/query"
	"github.com/tbdc/leadscope/pkg/repository"
)

type repo struct {
	db         *sql.DB
	embedder   Embedder
	logger     *slog.Logger
	pagination pagination.Config
	dim        int

	mu         sync.RWMutex
	index      *Index
	materials  map[uuid.UUID]Material
	lastIngest *time.Time
}

// New creates a marketing corpus repository implementing the System
// interface. Vectors persist alongside their metadata; the in-memory
// index is rebuilt from those rows via Load.
func New(
	db *sql.DB,
	embedder Embedder,
	dim int,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		embedder:   embedder,
		logger:     logger.With("system", "marketing"),
		pagination: pagination,
		dim:        dim,
		index:      NewIndex(dim),
		materials:  make(map[uuid.UUID]Material),
	}
}

func (r *repo) Handler(maxIngestSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxIngestSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Material], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Industry", "BusinessTopics")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count materials: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	materials, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanMaterial)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}

	result := pagination.NewPageResult(materials, total, page.Page, page.PageSize)
	return &result, nil
}

// Ingest replaces the corpus. Each material is embedded, then metadata
// and vector are written in the same row within one transaction so the
// table can never hold one without the other.
func (r *repo) Ingest(ctx context.Context, cmds []CreateCommand) (int, error) {
	if len(cmds) == 0 {
		return 0, ErrNoMaterials
	}

	type embedded struct {
		material Material
		vector   []float32
	}

	entries := make([]embedded, 0, len(cmds))
	now := time.Now().UTC()

	for _, cmd := range cmds {
		vec, err := r.embedder.Embed(ctx, cmd.EmbedText())
		if err != nil {
			return 0, fmt.Errorf("embed %q: %w", cmd.Title, err)
		}
		if len(vec) != r.dim {
			return 0, fmt.Errorf("embed %q: got dimension %d, want %d", cmd.Title, len(vec), r.dim)
		}

		entries = append(entries, embedded{
			material: Material{
				ID:             uuid.New(),
				Title:          cmd.Title,
				Link:           cmd.Link,
				Industry:       cmd.Industry,
				BusinessTopics: cmd.BusinessTopics,
				OtherNotes:     cmd.OtherNotes,
				CreatedAt:      now,
			},
			vector: vec,
		})
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM marketing_materials"); err != nil {
			return struct{}{}, fmt.Errorf("clear materials: %w", err)
		}

		q := `
			INSERT INTO marketing_materials(
				id, title, link, industry, business_topics, other_notes,
				embedding, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		for _, e := range entries {
			embedding, err := json.Marshal(e.vector)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal embedding: %w", err)
			}

			m := e.material
			if _, err := tx.ExecContext(ctx, q,
				m.ID, m.Title, m.Link, m.Industry, m.BusinessTopics,
				m.OtherNotes, embedding, m.CreatedAt,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert material %q: %w", m.Title, err)
			}
		}

		return struct{}{}, nil
	})
	if err != nil {
		return 0, err
	}

	index := NewIndex(r.dim)
	materials := make(map[uuid.UUID]Material, len(entries))
	for _, e := range entries {
		if err := index.Add(e.material.ID, e.vector); err != nil {
			return 0, err
		}
		materials[e.material.ID] = e.material
	}

	r.mu.Lock()
	r.index = index
	r.materials = materials
	r.lastIngest = &now
	r.mu.Unlock()

	r.logger.Info("marketing corpus replaced", "count", len(entries))
	return len(entries), nil
}

func (r *repo) Search(ctx context.Context, text string, k int) ([]Match, error) {
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.index.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	hits, err := r.index.Search(vec, k)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		material, ok := r.materials[hit.ID]
		if !ok {
			continue
		}
		matches = append(matches, Match{Material: material, Score: hit.Score})
	}
	return matches, nil
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Stats{
		Count:      r.index.Len(),
		Dimension:  r.dim,
		LastIngest: r.lastIngest,
	}, nil
}

func (r *repo) Clear(ctx context.Context) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM marketing_materials"); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("clear materials: %w", err)
	}

	r.mu.Lock()
	r.index = NewIndex(r.dim)
	r.materials = make(map[uuid.UUID]Material)
	r.lastIngest = nil
	r.mu.Unlock()

	r.logger.Info("marketing corpus cleared")
	return nil
}

func (r *repo) Load(ctx context.Context) error {
	q := `
		SELECT id, title, link, industry, business_topics, other_notes,
			embedding, created_at
		FROM marketing_materials
		ORDER BY created_at`

	type row struct {
		material Material
		vector   []float32
	}

	rows, err := repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (row, error) {
		var out row
		var embedding []byte
		if err := s.Scan(
			&out.material.ID,
			&out.material.Title,
			&out.material.Link,
			&out.material.Industry,
			&out.material.BusinessTopics,
			&out.material.OtherNotes,
			&embedding,
			&out.material.CreatedAt,
		); err != nil {
			return out, err
		}
		if err := json.Unmarshal(embedding, &out.vector); err != nil {
			return out, fmt.Errorf("decode embedding for %s: %w", out.material.ID, err)
		}
		return out, nil
	})
	if err != nil {
		return fmt.Errorf("load materials: %w", err)
	}

	index := NewIndex(r.dim)
	materials := make(map[uuid.UUID]Material, len(rows))
	var latest *time.Time

	for _, entry := range rows {
		if err := index.Add(entry.material.ID, entry.vector); err != nil {
			return err
		}
		materials[entry.material.ID] = entry.material
		created := entry.material.CreatedAt
		if latest == nil || created.After(*latest) {
			latest = &created
		}
	}

	r.mu.Lock()
	r.index = index
	r.materials = materials
	r.lastIngest = latest
	r.mu.Unlock()

	r.logger.Info("marketing index loaded", "count", index.Len())
	return nil
}
