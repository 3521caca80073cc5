package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tbdc/leadscope/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a prompt template repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "prompts"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func scanTemplate(s repository.Scanner) (Template, error) {
	var t Template
	if err := s.Scan(&t.Key, &t.Content, &t.UpdatedAt); err != nil {
		return t, err
	}
	return t, nil
}

func (r *repo) All(ctx context.Context) ([]Template, error) {
	q := `
		SELECT key, content, updated_at
		FROM prompt_templates
		ORDER BY key`

	templates, err := repository.QueryMany(ctx, r.db, q, nil, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query prompt templates: %w", err)
	}
	return templates, nil
}

func (r *repo) Find(ctx context.Context, key Key) (*Template, error) {
	q := `
		SELECT key, content, updated_at
		FROM prompt_templates
		WHERE key = $1`

	t, err := repository.QueryOne(ctx, r.db, q, []any{key}, scanTemplate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Update(ctx context.Context, key Key, content string) (*Template, error) {
	if err := Validate(key, content); err != nil {
		return nil, err
	}

	q := `
		UPDATE prompt_templates
		SET content = $1, updated_at = now()
		WHERE key = $2
		RETURNING key, content, updated_at`

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Template, error) {
		return repository.QueryOne(ctx, tx, q, []any{content, key}, scanTemplate)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt template updated", "key", key)
	return &t, nil
}

func (r *repo) Reset(ctx context.Context, key Key) (*Template, error) {
	content, err := Default(key)
	if err != nil {
		return nil, err
	}

	t, err := r.Update(ctx, key, content)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt template reset", "key", key)
	return t, nil
}

// Seed populates the table with defaults on first boot. A non-empty table
// is left alone so operator edits survive restarts.
func (r *repo) Seed(ctx context.Context) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM prompt_templates").Scan(&count); err != nil {
			return struct{}{}, fmt.Errorf("count prompt templates: %w", err)
		}
		if count > 0 {
			return struct{}{}, nil
		}

		q := `
			INSERT INTO prompt_templates(key, content, updated_at)
			VALUES ($1, $2, now())`

		for _, key := range Keys() {
			if _, err := tx.ExecContext(ctx, q, key, defaults[key]); err != nil {
				return struct{}{}, fmt.Errorf("seed template %s: %w", key, err)
			}
		}

		r.logger.Info("prompt templates seeded", "count", len(Keys()))
		return struct{}{}, nil
	})

	return err
}
