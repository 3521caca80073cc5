package crm

import (
	"fmt"
	"sort"
	"strings"
)

// Module identifies which CRM module a record belongs to.
type Module string

// Valid CRM modules.
const (
	ModuleLeads Module = "Leads"
	ModuleDeals Module = "Deals"
)

// ParseModule maps an API path segment to a CRM module.
func ParseModule(s string) (Module, error) {
	switch strings.ToLower(s) {
	case "lead", "leads":
		return ModuleLeads, nil
	case "deal", "deals":
		return ModuleDeals, nil
	default:
		return "", ErrInvalidModule
	}
}

// Entity is a CRM record with its raw field map. Field layouts vary per
// tenant, so access goes through typed helpers rather than a fixed struct.
type Entity struct {
	ID     string
	Module Module
	Fields map[string]any
}

// Priority fields lead the formatted output so the most decision-relevant
// attributes appear first in model prompts.
var priorityFields = map[Module][]string{
	ModuleLeads: {
		"Company", "First_Name", "Last_Name", "Email", "Website",
		"Industry", "Description", "Lead_Source", "Annual_Revenue",
		"No_of_Employees", "Country", "City",
	},
	ModuleDeals: {
		"Deal_Name", "Account_Name", "Stage", "Amount", "Website",
		"Industry", "Description", "Contact_Name", "Closing_Date",
		"Country", "Business_Model",
	},
}

// String returns the value of a field as a string, or "" when absent.
func (e *Entity) String(field string) string {
	v, ok := e.Fields[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		// Lookup fields arrive as {"name": ..., "id": ...}.
		if name, ok := t["name"].(string); ok {
			return name
		}
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// CompanyName resolves the display name used for cache records and
// similarity queries.
func (e *Entity) CompanyName() string {
	switch e.Module {
	case ModuleDeals:
		if name := e.String("Deal_Name"); name != "" {
			return name
		}
		return e.String("Account_Name")
	default:
		if name := e.String("Company"); name != "" {
			return name
		}
		return strings.TrimSpace(e.String("First_Name") + " " + e.String("Last_Name"))
	}
}

// Website returns the record's website field, if any.
func (e *Entity) Website() string {
	return e.String("Website")
}

// ProfileURL returns the LinkedIn profile link, if the record carries one.
func (e *Entity) ProfileURL() string {
	return e.String("LinkedIn_Profile")
}

// Format renders the record as field lines for model prompts. Priority
// fields come first, the rest follow sorted by name. Empty values and
// system fields are skipped.
func (e *Entity) Format() string {
	var b strings.Builder
	seen := make(map[string]bool)

	write := func(field string) {
		if seen[field] {
			return
		}
		seen[field] = true
		if v := e.String(field); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", strings.ReplaceAll(field, "_", " "), v)
		}
	}

	for _, field := range priorityFields[e.Module] {
		write(field)
	}

	rest := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		if strings.HasPrefix(field, "$") || field == "id" {
			continue
		}
		rest = append(rest, field)
	}
	sort.Strings(rest)
	for _, field := range rest {
		write(field)
	}

	return strings.TrimRight(b.String(), "\n")
}

// SearchText builds a short description of the record for vector
// similarity queries against the marketing corpus.
func (e *Entity) SearchText() string {
	parts := []string{e.CompanyName()}
	for _, field := range []string{"Industry", "Description"} {
		if v := e.String(field); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Attachment is a file attached to a CRM record.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"File_Name"`
	Size     int64  `json:"Size,string"`
}

// Contact is the subset of a CRM contact used for transcript matching.
type Contact struct {
	ID    string
	Email string
}
