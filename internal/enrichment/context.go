// Package enrichment orchestrates the lead and deal enrichment pipeline:
// collect context, run the model stages, match marketing materials, and
// cache the result.
package enrichment

import (
	"fmt"
	"strings"

	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/transcripts"
)

// AttachmentText is extracted text from one CRM attachment.
type AttachmentText struct {
	FileName string
	Text     string
}

// Context is everything gathered about a record before analysis. Any
// field beyond Entity may be absent; the pipeline degrades rather than
// failing when a source is unavailable.
type Context struct {
	Entity      *crm.Entity
	Attachments []AttachmentText
	WebsiteText string
	ProfileText string
	Meetings    []transcripts.Meeting
}

// Sources names the optional context sources that were collected.
func (c *Context) Sources() []string {
	sources := []string{"crm"}
	if len(c.Attachments) > 0 {
		sources = append(sources, "attachments")
	}
	if c.WebsiteText != "" {
		sources = append(sources, "website")
	}
	if c.ProfileText != "" {
		sources = append(sources, "profile")
	}
	if len(c.Meetings) > 0 {
		sources = append(sources, "meetings")
	}
	return sources
}

// Compose renders the collected context as the prompt data block.
func (c *Context) Compose() string {
	var b strings.Builder

	b.WriteString(c.Entity.Format())

	if len(c.Attachments) > 0 {
		b.WriteString("\n\n=== ATTACHED DOCUMENTS ===\n")
		for _, att := range c.Attachments {
			fmt.Fprintf(&b, "--- Content from: %s ---\n%s\n", att.FileName, att.Text)
		}
	}

	if c.WebsiteText != "" {
		b.WriteString("\n\n=== WEBSITE CONTENT ===\n")
		b.WriteString(c.WebsiteText)
	}

	if c.ProfileText != "" {
		b.WriteString("\n\n=== LINKEDIN PROFILE ===\n")
		b.WriteString(c.ProfileText)
	}

	if len(c.Meetings) > 0 {
		b.WriteString("\n\n=== MEETING NOTES ===\n")
		for _, meeting := range c.Meetings {
			b.WriteString(meeting.Format())
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
