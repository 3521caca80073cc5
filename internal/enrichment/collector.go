package enrichment

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/extract"
	"github.com/tbdc/leadscope/internal/scrape"
	"github.com/tbdc/leadscope/internal/transcripts"
)

const maxAttachments = 5

// Collector gathers optional context for a record from its attachments,
// website, founder profile, and meeting transcripts in parallel.
// Collection is strictly best effort: a failed source logs a warning and
// contributes nothing.
type Collector struct {
	crm         crm.System
	scraper     scrape.System
	transcripts transcripts.System
	logger      *slog.Logger
}

// NewCollector creates a Collector over the given sources.
func NewCollector(
	crmSys crm.System,
	scraper scrape.System,
	transcriptSys transcripts.System,
	logger *slog.Logger,
) *Collector {
	return &Collector{
		crm:         crmSys,
		scraper:     scraper,
		transcripts: transcriptSys,
		logger:      logger.With("system", "collector"),
	}
}

// Collect fans out to every context source and assembles whatever came
// back. It never returns an error; the entity alone is a valid context.
func (c *Collector) Collect(ctx context.Context, entity *crm.Entity) *Context {
	collected := &Context{Entity: entity}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		collected.Attachments = c.collectAttachments(gctx, entity)
		return nil
	})

	g.Go(func() error {
		collected.WebsiteText = c.collectWebsite(gctx, entity)
		return nil
	})

	if entity.Module == crm.ModuleLeads {
		g.Go(func() error {
			collected.ProfileText = c.collectProfile(gctx, entity)
			return nil
		})
	}

	g.Go(func() error {
		collected.Meetings = c.collectMeetings(gctx, entity)
		return nil
	})

	g.Wait()

	c.logger.Info("context collected",
		"module", entity.Module,
		"id", entity.ID,
		"sources", collected.Sources(),
	)
	return collected
}

func (c *Collector) collectAttachments(ctx context.Context, entity *crm.Entity) []AttachmentText {
	if entity.ID == "" {
		return nil
	}

	attachments, err := c.crm.Attachments(ctx, entity.Module, entity.ID)
	if err != nil {
		c.logger.Warn("attachment listing failed", "id", entity.ID, "error", err)
		return nil
	}

	if len(attachments) > maxAttachments {
		attachments = attachments[:maxAttachments]
	}

	var texts []AttachmentText
	total := 0

	for _, att := range attachments {
		if total >= extract.MaxCombinedChars {
			break
		}

		data, err := c.crm.Download(ctx, entity.Module, entity.ID, att.ID)
		if err != nil {
			c.logger.Warn("attachment download failed", "file", att.FileName, "error", err)
			continue
		}

		text, err := extract.Text(att.FileName, data)
		if err != nil {
			if !errors.Is(err, extract.ErrUnsupported) {
				c.logger.Warn("attachment extraction failed", "file", att.FileName, "error", err)
			}
			continue
		}
		if text == "" {
			continue
		}

		if remaining := extract.MaxCombinedChars - total; len(text) > remaining {
			text = text[:remaining]
		}
		total += len(text)

		texts = append(texts, AttachmentText{FileName: att.FileName, Text: text})
	}

	return texts
}

func (c *Collector) collectWebsite(ctx context.Context, entity *crm.Entity) string {
	website := entity.Website()
	if website == "" {
		return ""
	}

	text, err := c.scraper.FetchText(ctx, website)
	if err != nil {
		c.logger.Warn("website scrape failed", "url", website, "error", err)
		return ""
	}
	return text
}

// collectProfile fetches the founder's LinkedIn profile text. Only lead
// records carry the profile link, so deals never reach here.
func (c *Collector) collectProfile(ctx context.Context, entity *crm.Entity) string {
	profile := entity.ProfileURL()
	if profile == "" {
		return ""
	}

	text, err := c.scraper.FetchText(ctx, profile)
	if err != nil {
		c.logger.Warn("profile scrape failed", "url", profile, "error", err)
		return ""
	}
	return text
}

func (c *Collector) collectMeetings(ctx context.Context, entity *crm.Entity) []transcripts.Meeting {
	if !c.transcripts.Enabled() {
		return nil
	}

	email, err := c.crm.ContactEmail(ctx, entity)
	if err != nil {
		c.logger.Warn("contact email lookup failed", "id", entity.ID, "error", err)
		return nil
	}
	if email == "" {
		return nil
	}

	meetings, err := c.transcripts.MeetingsForEmail(ctx, email)
	if err != nil {
		c.logger.Warn("transcript lookup failed", "email", email, "error", err)
		return nil
	}
	return meetings
}
