package prompts

import "context"

// System defines the public contract for prompt template operations.
type System interface {
	Handler() *Handler

	All(ctx context.Context) ([]Template, error)
	Find(ctx context.Context, key Key) (*Template, error)
	Update(ctx context.Context, key Key, content string) (*Template, error)
	Reset(ctx context.Context, key Key) (*Template, error)

	// Seed inserts default templates when the table is empty. Existing
	// rows, edited or not, are left untouched.
	Seed(ctx context.Context) error
}
