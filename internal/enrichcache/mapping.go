package enrichcache

import (
	"net/url"

	"github.com/tbdc/leadscope/pkg/query"
	"github.com/tbdc/leadscope/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "enrichment_cache", "e").
	Project("key", "Key").
	Project("module", "Module").
	Project("entity_id", "EntityID").
	Project("company_name", "CompanyName").
	Project("fit_score", "FitScore").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for cache listing queries.
// Nil fields are ignored.
type Filters struct {
	Module *string `json:"module,omitempty"`
}

// Apply adds the filter conditions to a query builder.
func (f Filters) Apply(qb *query.Builder) {
	if f.Module != nil {
		qb.WhereEquals("Module", *f.Module)
	}
}

// FiltersFromQuery parses filter criteria from URL query values.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("module"); v != "" {
		f.Module = &v
	}
	return f
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var row Summary
	if err := s.Scan(
		&row.Key,
		&row.Module,
		&row.EntityID,
		&row.CompanyName,
		&row.FitScore,
		&row.UpdatedAt,
	); err != nil {
		return row, err
	}
	return row, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var row Record
	var analysis, rubric, matches, similar []byte
	if err := s.Scan(
		&row.Key,
		&row.Module,
		&row.EntityID,
		&row.CompanyName,
		&row.FitScore,
		&analysis,
		&rubric,
		&matches,
		&similar,
		&row.CreatedAt,
		&row.UpdatedAt,
	); err != nil {
		return row, err
	}
	row.Analysis = analysis
	row.Rubric = rubric
	row.MarketingMatches = matches
	row.SimilarCustomers = similar
	return row, nil
}
