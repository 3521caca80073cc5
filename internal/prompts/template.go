package prompts

import (
	"fmt"
	"strings"
	"time"
)

// Key identifies a prompt template slot.
type Key string

// Template keys for the enrichment pipeline.
const (
	KeyLeadSystem        Key = "lead_system"
	KeyLeadAnalysis      Key = "lead_analysis"
	KeyDealSystem        Key = "deal_system"
	KeyDealAnalysis      Key = "deal_analysis"
	KeyDealScoringSystem Key = "deal_scoring_system"
	KeyDealScoring       Key = "deal_scoring"
)

// Keys returns all template keys in a stable order.
func Keys() []Key {
	return []Key{
		KeyLeadSystem,
		KeyLeadAnalysis,
		KeyDealSystem,
		KeyDealAnalysis,
		KeyDealScoringSystem,
		KeyDealScoring,
	}
}

// ParseKey validates a raw string as a template key.
func ParseKey(s string) (Key, error) {
	key := Key(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := requiredPlaceholders[key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, s)
	}
	return key, nil
}

// requiredPlaceholders lists the substitution markers each template must
// retain. Updates that drop one are rejected before persisting.
var requiredPlaceholders = map[Key][]string{
	KeyLeadSystem:        {},
	KeyLeadAnalysis:      {"{lead_data}"},
	KeyDealSystem:        {},
	KeyDealAnalysis:      {"{deal_data}"},
	KeyDealScoringSystem: {},
	KeyDealScoring:       {"{deal_data}", "{analysis_summary}"},
}

// Template is a stored prompt template.
type Template struct {
	Key       Key       `json:"key"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that content retains every placeholder the key requires.
func Validate(key Key, content string) error {
	required, ok := requiredPlaceholders[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	for _, placeholder := range required {
		if !strings.Contains(content, placeholder) {
			return fmt.Errorf("%w: %s requires %s", ErrMissingPlaceholder, key, placeholder)
		}
	}
	return nil
}

// Render substitutes placeholder values into a template body.
func Render(content string, vars map[string]string) string {
	for name, value := range vars {
		content = strings.ReplaceAll(content, "{"+name+"}", value)
	}
	return content
}
