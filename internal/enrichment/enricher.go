package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/tbdc/leadscope/internal/analysis"
	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/enrichcache"
	"github.com/tbdc/leadscope/internal/marketing"
	"github.com/tbdc/leadscope/internal/scrape"
)

const (
	marketingMatchCount = 5

	// urlModule keys cache entries for website-only enrichments that have
	// no backing CRM record.
	urlModule = "url"
)

type enricher struct {
	crm       crm.System
	cache     enrichcache.System
	analyzer  analysis.System
	marketing marketing.System
	collector *Collector
	logger    *slog.Logger
}

// New creates the enrichment pipeline implementing the System interface.
func New(
	crmSys crm.System,
	cache enrichcache.System,
	analyzer analysis.System,
	marketingSys marketing.System,
	collector *Collector,
	logger *slog.Logger,
) System {
	return &enricher{
		crm:       crmSys,
		cache:     cache,
		analyzer:  analyzer,
		marketing: marketingSys,
		collector: collector,
		logger:    logger.With("system", "enrichment"),
	}
}

func (e *enricher) Handler() *Handler {
	return NewHandler(e, e.logger)
}

// Enrich runs the cache-first pipeline for one record. Concurrent calls
// for the same record may each run the pipeline and write the cache;
// last write wins, which is acceptable because both results are fresh.
func (e *enricher) Enrich(ctx context.Context, module crm.Module, id string, opts Options) (*Result, error) {
	key := enrichcache.BuildKey(string(module), id)

	if !opts.ForceRefresh {
		if result := e.cached(ctx, key); result != nil {
			return result, nil
		}
	}

	entity, err := e.crm.Find(ctx, module, id)
	if err != nil {
		return nil, err
	}

	cmd := enrichcache.SaveCommand{
		Module:      string(module),
		EntityID:    id,
		CompanyName: entity.CompanyName(),
	}

	return e.run(ctx, entity, cmd, module == crm.ModuleDeals)
}

// EnrichURL runs the lead pipeline against a bare website with no backing
// CRM record. The domain stands in for the company name and cache key.
func (e *enricher) EnrichURL(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	normalized, err := scrape.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Hostname() == "" {
		return nil, fmt.Errorf("%w: %s", scrape.ErrInvalidURL, rawURL)
	}
	domain := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	if !opts.ForceRefresh {
		if result := e.cached(ctx, enrichcache.BuildKey(urlModule, domain)); result != nil {
			return result, nil
		}
	}

	entity := &crm.Entity{
		Module: crm.ModuleLeads,
		Fields: map[string]any{
			"Company": domain,
			"Website": normalized,
		},
	}

	cmd := enrichcache.SaveCommand{
		Module:      urlModule,
		EntityID:    domain,
		CompanyName: domain,
	}

	return e.run(ctx, entity, cmd, false)
}

func (e *enricher) cached(ctx context.Context, key string) *Result {
	record, err := e.cache.Find(ctx, key)
	if err == nil {
		e.logger.Info("cache hit", "key", key)
		return &Result{Record: record, Cached: true}
	}
	if !errors.Is(err, enrichcache.ErrNotFound) && !errors.Is(err, enrichcache.ErrCorrupt) {
		e.logger.Warn("cache read failed, regenerating", "key", key, "error", err)
	}
	return nil
}

func (e *enricher) run(ctx context.Context, entity *crm.Entity, cmd enrichcache.SaveCommand, deal bool) (*Result, error) {
	collected := e.collector.Collect(ctx, entity)
	data := collected.Compose()

	if deal {
		if err := e.analyzeDeal(ctx, data, entity, &cmd); err != nil {
			return nil, err
		}
	} else {
		if err := e.analyzeLead(ctx, data, &cmd); err != nil {
			return nil, err
		}
	}

	e.matchMarketing(ctx, entity, &cmd)
	e.findSimilar(ctx, entity, &cmd)

	record, err := e.cache.Save(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("persist enrichment: %w", err)
	}

	e.logger.Info("enrichment complete",
		"key", cmd.Key(),
		"company", cmd.CompanyName,
		"fit_score", cmd.FitScore,
		"sources", collected.Sources(),
	)

	return &Result{Record: record, Cached: false, Sources: collected.Sources()}, nil
}

func (e *enricher) analyzeLead(ctx context.Context, data string, cmd *enrichcache.SaveCommand) error {
	result, err := e.analyzer.Lead(ctx, data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal lead analysis: %w", err)
	}

	cmd.Analysis = payload
	cmd.FitScore = result.FitScore
	return nil
}

// analyzeDeal runs the two-stage deal chain: the briefing first, then
// scoring with the condensed briefing embedded in the prompt. When the
// model leaves support_required empty, the CRM field fills it in.
func (e *enricher) analyzeDeal(ctx context.Context, data string, entity *crm.Entity, cmd *enrichcache.SaveCommand) error {
	briefing, err := e.analyzer.Deal(ctx, data)
	if err != nil {
		return err
	}

	if len(briefing.SupportRequired) == 0 {
		if v := entity.String("Support_Required"); v != "" {
			briefing.SupportRequired = []string{v}
		}
	}

	rubric, err := e.analyzer.Score(ctx, data, briefing)
	if err != nil {
		return err
	}
	briefing.FitScore = rubric.FitScore
	briefing.FitAssessment = rubric.FitAssessment

	analysisJSON, err := json.Marshal(briefing)
	if err != nil {
		return fmt.Errorf("marshal deal analysis: %w", err)
	}
	rubricJSON, err := json.Marshal(rubric)
	if err != nil {
		return fmt.Errorf("marshal rubric: %w", err)
	}

	cmd.Analysis = analysisJSON
	cmd.Rubric = rubricJSON
	cmd.FitScore = rubric.FitScore
	return nil
}

// matchMarketing searches the corpus for relevant materials. Failures
// degrade to an empty match list.
func (e *enricher) matchMarketing(ctx context.Context, entity *crm.Entity, cmd *enrichcache.SaveCommand) {
	matches, err := e.marketing.Search(ctx, entity.SearchText(), marketingMatchCount)
	if err != nil {
		if errors.Is(err, marketing.ErrEmptyCorpus) {
			e.logger.Debug("marketing corpus empty, skipping matches")
		} else {
			e.logger.Warn("marketing search failed", "error", err)
		}
		return
	}

	if payload, err := json.Marshal(matches); err == nil {
		cmd.MarketingMatches = payload
	}
}

// findSimilar asks the model to name comparable portfolio companies from
// the record itself. It runs regardless of what the marketing corpus
// holds. Failures degrade to an absent similar-customer list.
func (e *enricher) findSimilar(ctx context.Context, entity *crm.Entity, cmd *enrichcache.SaveCommand) {
	similar, err := e.analyzer.SimilarCustomers(ctx, entity.Format())
	if err != nil {
		e.logger.Warn("similar customer lookup failed", "error", err)
		return
	}
	if len(similar) == 0 {
		return
	}

	if payload, err := json.Marshal(similar); err == nil {
		cmd.SimilarCustomers = payload
	}
}
