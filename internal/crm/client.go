package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type client struct {
	cfg    *Config
	tokens TokenSource
	http   *http.Client
	logger *slog.Logger
}

// New creates a CRM client implementing the System interface.
func New(cfg *Config, tokens TokenSource, logger *slog.Logger) System {
	return &client{
		cfg:    cfg,
		tokens: tokens,
		http:   &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		logger: logger.With("system", "crm"),
	}
}

func (c *client) Handler() *Handler {
	return NewHandler(c, c.logger)
}

func (c *client) Tokens() TokenSource {
	return c.tokens
}

func (c *client) Find(ctx context.Context, module Module, id string) (*Entity, error) {
	body, err := c.get(ctx, fmt.Sprintf("/%s/%s", module, id))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", module, id, err)
	}
	if len(payload.Data) == 0 {
		return nil, ErrEntityNotFound
	}

	return &Entity{ID: id, Module: module, Fields: payload.Data[0]}, nil
}

func (c *client) Attachments(ctx context.Context, module Module, id string) ([]Attachment, error) {
	body, err := c.get(ctx, fmt.Sprintf("/%s/%s/Attachments", module, id))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	var payload struct {
		Data []Attachment `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode attachments for %s %s: %w", module, id, err)
	}
	return payload.Data, nil
}

func (c *client) Download(ctx context.Context, module Module, id, attachmentID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/%s/%s/Attachments/%s", module, id, attachmentID))
}

// ContactEmail resolves the email address tied to a record. Leads carry
// the email directly; deals reference a contact record that must be
// fetched separately.
func (c *client) ContactEmail(ctx context.Context, entity *Entity) (string, error) {
	if entity.Module == ModuleLeads {
		return entity.String("Email"), nil
	}

	ref, ok := entity.Fields["Contact_Name"].(map[string]any)
	if !ok {
		return "", nil
	}
	contactID, _ := ref["id"].(string)
	if contactID == "" {
		return "", nil
	}

	body, err := c.get(ctx, "/Contacts/"+contactID)
	if err != nil {
		return "", err
	}

	var payload struct {
		Data []struct {
			Email string `json:"Email"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode contact %s: %w", contactID, err)
	}
	if len(payload.Data) == 0 {
		return "", nil
	}
	return payload.Data[0].Email, nil
}

func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoToken, err)
	}

	endpoint := strings.TrimRight(c.cfg.APIURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build crm request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNoContent:
		return nil, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrEntityNotFound
	case res.StatusCode >= 400:
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstreamFailure, path, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read crm response: %w", err)
	}
	return body, nil
}
