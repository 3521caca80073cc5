package api

import (
	"github.com/tbdc/leadscope/internal/analysis"
	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/enrichcache"
	"github.com/tbdc/leadscope/internal/enrichment"
	"github.com/tbdc/leadscope/internal/marketing"
	"github.com/tbdc/leadscope/internal/prompts"
	"github.com/tbdc/leadscope/internal/scrape"
	"github.com/tbdc/leadscope/internal/transcripts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	CRM        crm.System
	Prompts    prompts.System
	Cache      enrichcache.System
	Marketing  marketing.System
	Enrichment enrichment.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	crmSystem := crm.New(&runtime.Config.CRM, runtime.Tokens, runtime.Logger)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	cacheSystem := enrichcache.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	marketingSystem := marketing.New(
		runtime.Database.Connection(),
		runtime.Runtime,
		analysis.EmbedDimension,
		runtime.Logger,
		runtime.Pagination,
	)

	analyzer := analysis.NewAnalyzer(runtime.Runtime, promptsSystem, runtime.Logger)

	collector := enrichment.NewCollector(
		crmSystem,
		scrape.New(runtime.Logger),
		transcripts.New(&runtime.Config.Transcripts, runtime.Logger),
		runtime.Logger,
	)

	enrichmentSystem := enrichment.New(
		crmSystem,
		cacheSystem,
		analyzer,
		marketingSystem,
		collector,
		runtime.Logger,
	)

	return &Domain{
		CRM:        crmSystem,
		Prompts:    promptsSystem,
		Cache:      cacheSystem,
		Marketing:  marketingSystem,
		Enrichment: enrichmentSystem,
	}
}
