package crm

import "context"

// System defines the public contract for CRM record access.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, module Module, id string) (*Entity, error)
	Attachments(ctx context.Context, module Module, id string) ([]Attachment, error)
	Download(ctx context.Context, module Module, id, attachmentID string) ([]byte, error)
	ContactEmail(ctx context.Context, entity *Entity) (string, error)

	Tokens() TokenSource
}
