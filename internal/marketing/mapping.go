package marketing

import (
	"net/url"

	"github.com/tbdc/leadscope/pkg/query"
	"github.com/tbdc/leadscope/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "marketing_materials", "m").
	Project("id", "ID").
	Project("title", "Title").
	Project("link", "Link").
	Project("industry", "Industry").
	Project("business_topics", "BusinessTopics").
	Project("other_notes", "OtherNotes").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for material queries.
// Nil fields are ignored.
type Filters struct {
	Industry *string `json:"industry,omitempty"`
}

// Apply adds the filter conditions to a query builder.
func (f Filters) Apply(qb *query.Builder) {
	if f.Industry != nil {
		qb.WhereEquals("Industry", *f.Industry)
	}
}

// FiltersFromQuery parses filter criteria from URL query values.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("industry"); v != "" {
		f.Industry = &v
	}
	return f
}

func scanMaterial(s repository.Scanner) (Material, error) {
	var m Material
	if err := s.Scan(
		&m.ID,
		&m.Title,
		&m.Link,
		&m.Industry,
		&m.BusinessTopics,
		&m.OtherNotes,
		&m.CreatedAt,
	); err != nil {
		return m, err
	}
	return m, nil
}
