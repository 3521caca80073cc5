// Package enrichcache persists completed enrichment results keyed by
// CRM record so repeat lookups skip the model pipeline.
package enrichcache

import (
	"encoding/json"
	"strings"
	"time"
)

// Record is a cached enrichment result. Analysis payloads differ between
// leads and deals, so they are held as raw JSON and interpreted by the
// caller.
type Record struct {
	Key              string          `json:"key"`
	Module           string          `json:"module"`
	EntityID         string          `json:"entity_id"`
	CompanyName      string          `json:"company_name"`
	FitScore         int             `json:"fit_score"`
	Analysis         json.RawMessage `json:"analysis"`
	Rubric           json.RawMessage `json:"rubric,omitempty"`
	MarketingMatches json.RawMessage `json:"marketing_matches,omitempty"`
	SimilarCustomers json.RawMessage `json:"similar_customers,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Summary is the listing view of a cached record, without payloads.
type Summary struct {
	Key         string    `json:"key"`
	Module      string    `json:"module"`
	EntityID    string    `json:"entity_id"`
	CompanyName string    `json:"company_name"`
	FitScore    int       `json:"fit_score"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveCommand carries the fields for an insert-or-replace of a cache entry.
type SaveCommand struct {
	Module           string
	EntityID         string
	CompanyName      string
	FitScore         int
	Analysis         json.RawMessage
	Rubric           json.RawMessage
	MarketingMatches json.RawMessage
	SimilarCustomers json.RawMessage
}

// BuildKey builds the cache key for a module and record id. Module names
// normalize to lowercase singular so "Leads" and "lead" address the same
// entry.
func BuildKey(module, entityID string) string {
	m := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(module)), "s")
	return m + ":" + entityID
}

// Key returns the cache key for the command's record.
func (c *SaveCommand) Key() string {
	return BuildKey(c.Module, c.EntityID)
}

// valid reports whether the stored analysis payload is a usable JSON
// object. Anything else is treated as corruption.
func (r *Record) valid() bool {
	var probe map[string]any
	if err := json.Unmarshal(r.Analysis, &probe); err != nil {
		return false
	}
	return len(probe) > 0
}
