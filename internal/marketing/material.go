// Package marketing maintains the marketing material corpus and its
// vector similarity index.
package marketing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Material is one entry in the marketing corpus.
type Material struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	Industry       string    `json:"industry"`
	BusinessTopics string    `json:"business_topics"`
	OtherNotes     string    `json:"other_notes"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateCommand carries the fields for ingesting one material.
type CreateCommand struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	Industry       string `json:"industry"`
	BusinessTopics string `json:"business_topics"`
	OtherNotes     string `json:"other_notes"`
}

// EmbedText builds the text embedded for similarity matching.
func (c *CreateCommand) EmbedText() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{c.Title, c.Industry, c.BusinessTopics, c.OtherNotes} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ". ")
}

// Match is a search hit with its cosine similarity score.
type Match struct {
	Material Material `json:"material"`
	Score    float32  `json:"score"`
}

// Stats summarizes the state of the corpus.
type Stats struct {
	Count      int        `json:"count"`
	Dimension  int        `json:"dimension"`
	LastIngest *time.Time `json:"last_ingest,omitempty"`
}
