// Package transcripts fetches meeting notes from the Fireflies GraphQL
// API for participants matched by email.
package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ErrUpstreamFailure wraps transport and service errors from the
// transcript provider.
var ErrUpstreamFailure = errors.New("transcript api request failed")

// Meeting is one transcribed meeting with its summary content.
type Meeting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ActionItems string `json:"action_items"`
}

// Format renders a meeting as a section for model prompts.
func (m *Meeting) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", m.Title)
	if m.Overview != "" {
		fmt.Fprintf(&b, "Notes: %s\n", m.Overview)
	}
	if m.ActionItems != "" {
		fmt.Fprintf(&b, "Action Items: %s\n", m.ActionItems)
	}
	return strings.TrimRight(b.String(), "\n")
}

// System defines the public contract for transcript lookups.
type System interface {
	Enabled() bool
	MeetingsForEmail(ctx context.Context, email string) ([]Meeting, error)
}

type client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a transcript client implementing the System interface.
func New(cfg *Config, logger *slog.Logger) System {
	return &client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		logger: logger.With("system", "transcripts"),
	}
}

func (c *client) Enabled() bool {
	return c.cfg.APIKey != ""
}

const listQuery = `query { transcripts { id title participants } }`

const detailQuery = `query Transcript($id: String!) {
	transcript(id: $id) {
		id
		title
		summary { overview action_items }
	}
}`

// MeetingsForEmail lists transcripts whose participants include the
// email, then fetches summaries for the most recent matches.
func (c *client) MeetingsForEmail(ctx context.Context, email string) ([]Meeting, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}

	var list struct {
		Transcripts []struct {
			ID           string   `json:"id"`
			Title        string   `json:"title"`
			Participants []string `json:"participants"`
		} `json:"transcripts"`
	}
	if err := c.query(ctx, listQuery, nil, &list); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(email))
	meetings := make([]Meeting, 0, c.cfg.MaxMeetings)

	for _, t := range list.Transcripts {
		if len(meetings) >= c.cfg.MaxMeetings {
			break
		}

		matched := false
		for _, participant := range t.Participants {
			if strings.ToLower(strings.TrimSpace(participant)) == needle {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		var detail struct {
			Transcript struct {
				ID      string `json:"id"`
				Title   string `json:"title"`
				Summary struct {
					Overview    string `json:"overview"`
					ActionItems string `json:"action_items"`
				} `json:"summary"`
			} `json:"transcript"`
		}
		if err := c.query(ctx, detailQuery, map[string]any{"id": t.ID}, &detail); err != nil {
			c.logger.Warn("transcript detail fetch failed", "id", t.ID, "error", err)
			continue
		}

		meetings = append(meetings, Meeting{
			ID:          detail.Transcript.ID,
			Title:       detail.Transcript.Title,
			Overview:    detail.Transcript.Summary.Overview,
			ActionItems: detail.Transcript.Summary.ActionItems,
		})
	}

	return meetings, nil
}

func (c *client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstreamFailure, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read graphql response: %w", err)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrUpstreamFailure, envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}
