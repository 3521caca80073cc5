package enrichment_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tbdc/leadscope/internal/analysis"
	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/enrichcache"
	"github.com/tbdc/leadscope/internal/enrichment"
	"github.com/tbdc/leadscope/internal/marketing"
	"github.com/tbdc/leadscope/internal/scrape"
	"github.com/tbdc/leadscope/internal/transcripts"
	"github.com/tbdc/leadscope/pkg/pagination"
)

type fakeCRM struct {
	entities    map[string]*crm.Entity
	attachments []crm.Attachment
	downloads   map[string][]byte
	email       string
	findCalls   int
}

func (f *fakeCRM) Handler() *crm.Handler { return nil }
func (f *fakeCRM) Tokens() crm.TokenSource { return nil }

func (f *fakeCRM) Find(ctx context.Context, module crm.Module, id string) (*crm.Entity, error) {
	f.findCalls++
	entity, ok := f.entities[id]
	if !ok {
		return nil, crm.ErrEntityNotFound
	}
	return entity, nil
}

func (f *fakeCRM) Attachments(ctx context.Context, module crm.Module, id string) ([]crm.Attachment, error) {
	return f.attachments, nil
}

func (f *fakeCRM) Download(ctx context.Context, module crm.Module, id, attachmentID string) ([]byte, error) {
	data, ok := f.downloads[attachmentID]
	if !ok {
		return nil, crm.ErrEntityNotFound
	}
	return data, nil
}

func (f *fakeCRM) ContactEmail(ctx context.Context, entity *crm.Entity) (string, error) {
	return f.email, nil
}

type fakeCache struct {
	records   map[string]*enrichcache.Record
	findErr   error
	saveCalls int
}

func (f *fakeCache) Handler() *enrichcache.Handler { return nil }

func (f *fakeCache) List(ctx context.Context, page pagination.PageRequest, filters enrichcache.Filters) (*pagination.PageResult[enrichcache.Summary], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCache) Find(ctx context.Context, key string) (*enrichcache.Record, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	record, ok := f.records[key]
	if !ok {
		return nil, enrichcache.ErrNotFound
	}
	return record, nil
}

func (f *fakeCache) Save(ctx context.Context, cmd enrichcache.SaveCommand) (*enrichcache.Record, error) {
	f.saveCalls++
	record := &enrichcache.Record{
		Key:              cmd.Key(),
		Module:           cmd.Module,
		EntityID:         cmd.EntityID,
		CompanyName:      cmd.CompanyName,
		FitScore:         cmd.FitScore,
		Analysis:         cmd.Analysis,
		Rubric:           cmd.Rubric,
		MarketingMatches: cmd.MarketingMatches,
		SimilarCustomers: cmd.SimilarCustomers,
		UpdatedAt:        time.Now(),
	}
	if f.records == nil {
		f.records = make(map[string]*enrichcache.Record)
	}
	f.records[record.Key] = record
	return record, nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.records, key)
	return nil
}

type fakeAnalyzer struct {
	lead    *analysis.LeadAnalysis
	deal    *analysis.DealAnalysis
	rubric  *analysis.ScoringRubric
	similar []analysis.SimilarCustomer
	err     error

	leadData       string
	dealData       string
	similarProfile string
	similarCalls   int
}

func (f *fakeAnalyzer) Lead(ctx context.Context, leadData string) (*analysis.LeadAnalysis, error) {
	f.leadData = leadData
	return f.lead, f.err
}

func (f *fakeAnalyzer) Deal(ctx context.Context, dealData string) (*analysis.DealAnalysis, error) {
	f.dealData = dealData
	return f.deal, f.err
}

func (f *fakeAnalyzer) Score(ctx context.Context, dealData string, briefing *analysis.DealAnalysis) (*analysis.ScoringRubric, error) {
	return f.rubric, f.err
}

func (f *fakeAnalyzer) SimilarCustomers(ctx context.Context, profile string) ([]analysis.SimilarCustomer, error) {
	f.similarProfile = profile
	f.similarCalls++
	return f.similar, nil
}

type fakeMarketing struct {
	matches   []marketing.Match
	searchErr error
}

func (f *fakeMarketing) Handler(maxIngestSize int64) *marketing.Handler { return nil }

func (f *fakeMarketing) List(ctx context.Context, page pagination.PageRequest, filters marketing.Filters) (*pagination.PageResult[marketing.Material], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMarketing) Ingest(ctx context.Context, cmds []marketing.CreateCommand) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeMarketing) Search(ctx context.Context, text string, k int) ([]marketing.Match, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.matches, nil
}

func (f *fakeMarketing) Stats(ctx context.Context) (*marketing.Stats, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMarketing) Clear(ctx context.Context) error { return nil }
func (f *fakeMarketing) Load(ctx context.Context) error  { return nil }

type fakeScraper struct {
	text string
	err  error
}

func (f *fakeScraper) FetchText(ctx context.Context, rawURL string) (string, error) {
	return f.text, f.err
}

type fakeTranscripts struct {
	meetings []transcripts.Meeting
}

func (f *fakeTranscripts) Enabled() bool { return len(f.meetings) > 0 }

func (f *fakeTranscripts) MeetingsForEmail(ctx context.Context, email string) ([]transcripts.Meeting, error) {
	return f.meetings, nil
}

type fixture struct {
	crm       *fakeCRM
	cache     *fakeCache
	analyzer  *fakeAnalyzer
	marketing *fakeMarketing
	scraper   *fakeScraper
	meetings  *fakeTranscripts
	system    enrichment.System
}

func newFixture() *fixture {
	f := &fixture{
		crm: &fakeCRM{
			entities: map[string]*crm.Entity{
				"100": {
					ID:     "100",
					Module: crm.ModuleLeads,
					Fields: map[string]any{"Company": "Acme", "Industry": "Robotics"},
				},
				"200": {
					ID:     "200",
					Module: crm.ModuleDeals,
					Fields: map[string]any{"Deal_Name": "Acme Expansion"},
				},
			},
		},
		cache: &fakeCache{},
		analyzer: &fakeAnalyzer{
			lead: &analysis.LeadAnalysis{CompanyName: "Acme", Vertical: "Robotics", FitScore: 8, FitAssessment: "robotics vendor"},
			deal: &analysis.DealAnalysis{CompanyName: "Acme Expansion", BusinessModel: "B2B"},
			rubric: &analysis.ScoringRubric{
				ProductMaturity:  analysis.SubScore{Score: 4},
				TeamCapability:   analysis.SubScore{Score: 4},
				MarketReadiness:  analysis.SubScore{Score: 3},
				RevenuePotential: analysis.SubScore{Score: 3},
				StrategicFit:     analysis.SubScore{Score: 4},
				Total:            18,
				FitScore:         7,
				FitAssessment:    "Good fit for the program.",
			},
		},
		marketing: &fakeMarketing{searchErr: marketing.ErrEmptyCorpus},
		scraper:   &fakeScraper{},
		meetings:  &fakeTranscripts{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := enrichment.NewCollector(f.crm, f.scraper, f.meetings, logger)
	f.system = enrichment.New(f.crm, f.cache, f.analyzer, f.marketing, collector, logger)
	return f
}

func TestEnrichLeadCacheMiss(t *testing.T) {
	f := newFixture()

	result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	if result.Cached {
		t.Error("Cached = true on first run, want false")
	}
	if result.Key != "lead:100" {
		t.Errorf("Key = %q, want lead:100", result.Key)
	}
	if result.FitScore != 8 {
		t.Errorf("FitScore = %d, want 8", result.FitScore)
	}
	if f.cache.saveCalls != 1 {
		t.Errorf("save calls = %d, want 1", f.cache.saveCalls)
	}

	var parsed analysis.LeadAnalysis
	if err := json.Unmarshal(result.Analysis, &parsed); err != nil {
		t.Fatalf("stored analysis unparseable: %v", err)
	}
	if parsed.FitAssessment != "robotics vendor" {
		t.Errorf("analysis = %+v", parsed)
	}
}

func TestEnrichCacheHit(t *testing.T) {
	f := newFixture()

	if _, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{}); err != nil {
		t.Fatalf("first Enrich error: %v", err)
	}

	result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
	if err != nil {
		t.Fatalf("second Enrich error: %v", err)
	}

	if !result.Cached {
		t.Error("Cached = false on repeat run, want true")
	}
	if f.crm.findCalls != 1 {
		t.Errorf("crm lookups = %d, want 1", f.crm.findCalls)
	}
	if f.cache.saveCalls != 1 {
		t.Errorf("save calls = %d, want 1", f.cache.saveCalls)
	}
}

func TestEnrichForceRefresh(t *testing.T) {
	f := newFixture()

	if _, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{}); err != nil {
		t.Fatalf("first Enrich error: %v", err)
	}

	result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{ForceRefresh: true})
	if err != nil {
		t.Fatalf("forced Enrich error: %v", err)
	}

	if result.Cached {
		t.Error("Cached = true on forced run, want false")
	}
	if f.crm.findCalls != 2 {
		t.Errorf("crm lookups = %d, want 2", f.crm.findCalls)
	}
	if f.cache.saveCalls != 2 {
		t.Errorf("save calls = %d, want 2 (forced run must write back)", f.cache.saveCalls)
	}
}

func TestEnrichCorruptEntryRegenerates(t *testing.T) {
	f := newFixture()
	f.cache.findErr = enrichcache.ErrCorrupt

	result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	if result.Cached {
		t.Error("Cached = true for corrupt entry, want regeneration")
	}
	if f.cache.saveCalls != 1 {
		t.Errorf("save calls = %d, want 1", f.cache.saveCalls)
	}
}

func TestEnrichDealRunsScoringChain(t *testing.T) {
	f := newFixture()

	result, err := f.system.Enrich(context.Background(), crm.ModuleDeals, "200", enrichment.Options{})
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	if result.Key != "deal:200" {
		t.Errorf("Key = %q, want deal:200", result.Key)
	}
	if result.FitScore != 7 {
		t.Errorf("FitScore = %d, want overall score 7", result.FitScore)
	}
	if len(result.Rubric) == 0 {
		t.Error("Rubric empty, want stored scoring payload")
	}

	var rubric analysis.ScoringRubric
	if err := json.Unmarshal(result.Rubric, &rubric); err != nil {
		t.Fatalf("stored rubric unparseable: %v", err)
	}
	if rubric.Total != 18 {
		t.Errorf("rubric total = %d, want 18", rubric.Total)
	}

	var briefing analysis.DealAnalysis
	if err := json.Unmarshal(result.Analysis, &briefing); err != nil {
		t.Fatalf("stored analysis unparseable: %v", err)
	}
	if briefing.FitScore != 7 || briefing.FitAssessment != "Good fit for the program." {
		t.Errorf("briefing fit = %d %q, want scoring output copied in", briefing.FitScore, briefing.FitAssessment)
	}
}

func TestEnrichDealSupportBackfill(t *testing.T) {
	f := newFixture()
	f.crm.entities["200"].Fields["Support_Required"] = "Market entry strategy"

	result, err := f.system.Enrich(context.Background(), crm.ModuleDeals, "200", enrichment.Options{})
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	var briefing analysis.DealAnalysis
	if err := json.Unmarshal(result.Analysis, &briefing); err != nil {
		t.Fatalf("stored analysis unparseable: %v", err)
	}
	if len(briefing.SupportRequired) != 1 || briefing.SupportRequired[0] != "Market entry strategy" {
		t.Errorf("SupportRequired = %v, want backfill from record field", briefing.SupportRequired)
	}
}

func TestEnrichURL(t *testing.T) {
	f := newFixture()
	f.scraper.text = "Acme builds robots."

	result, err := f.system.EnrichURL(context.Background(), "www.acme.com", enrichment.Options{})
	if err != nil {
		t.Fatalf("EnrichURL error: %v", err)
	}

	if result.Key != "url:acme.com" {
		t.Errorf("Key = %q, want url:acme.com", result.Key)
	}
	if result.CompanyName != "acme.com" {
		t.Errorf("CompanyName = %q, want acme.com", result.CompanyName)
	}
	if f.crm.findCalls != 0 {
		t.Errorf("crm lookups = %d, want 0 for a bare URL", f.crm.findCalls)
	}
	if f.cache.saveCalls != 1 {
		t.Errorf("save calls = %d, want 1", f.cache.saveCalls)
	}
}

func TestEnrichURLCached(t *testing.T) {
	f := newFixture()

	if _, err := f.system.EnrichURL(context.Background(), "acme.com", enrichment.Options{}); err != nil {
		t.Fatalf("first EnrichURL error: %v", err)
	}

	result, err := f.system.EnrichURL(context.Background(), "https://www.acme.com", enrichment.Options{})
	if err != nil {
		t.Fatalf("second EnrichURL error: %v", err)
	}

	if !result.Cached {
		t.Error("Cached = false on repeat run, want true")
	}
	if f.cache.saveCalls != 1 {
		t.Errorf("save calls = %d, want 1", f.cache.saveCalls)
	}
}

func TestEnrichURLInvalid(t *testing.T) {
	f := newFixture()

	for _, raw := range []string{"", "   ", "https://"} {
		if _, err := f.system.EnrichURL(context.Background(), raw, enrichment.Options{}); !errors.Is(err, scrape.ErrInvalidURL) {
			t.Errorf("EnrichURL(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestEnrichEntityNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "missing", enrichment.Options{})
	if !errors.Is(err, crm.ErrEntityNotFound) {
		t.Errorf("Enrich error = %v, want ErrEntityNotFound", err)
	}
	if f.cache.saveCalls != 0 {
		t.Errorf("save calls = %d, want 0", f.cache.saveCalls)
	}
}

func TestEnrichMarketingMatchesStored(t *testing.T) {
	f := newFixture()
	f.marketing.searchErr = nil
	f.marketing.matches = []marketing.Match{
		{Material: marketing.Material{Title: "Expansion Guide", Industry: "Robotics"}, Score: 0.92},
	}
	f.analyzer.similar = []analysis.SimilarCustomer{
		{Name: "BotWorks", Industry: "Robotics", WhySimilar: "same vertical"},
	}

	result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	var matches []marketing.Match
	if err := json.Unmarshal(result.MarketingMatches, &matches); err != nil {
		t.Fatalf("stored matches unparseable: %v", err)
	}
	if len(matches) != 1 || matches[0].Material.Title != "Expansion Guide" {
		t.Errorf("matches = %+v", matches)
	}

	var similar []analysis.SimilarCustomer
	if err := json.Unmarshal(result.SimilarCustomers, &similar); err != nil {
		t.Fatalf("stored similar customers unparseable: %v", err)
	}
	if len(similar) != 1 || similar[0].Name != "BotWorks" {
		t.Errorf("similar = %+v", similar)
	}
}

func TestEnrichEmptyCorpusDegrades(t *testing.T) {
	f := newFixture()
	f.analyzer.similar = []analysis.SimilarCustomer{
		{Name: "BotWorks", Industry: "Robotics", WhySimilar: "same vertical"},
	}

	result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
	if err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	if len(result.MarketingMatches) != 0 {
		t.Errorf("MarketingMatches = %s, want absent", result.MarketingMatches)
	}

	// The similar-customer stage reads the record, not the corpus, so an
	// empty corpus must not suppress it.
	var similar []analysis.SimilarCustomer
	if err := json.Unmarshal(result.SimilarCustomers, &similar); err != nil {
		t.Fatalf("stored similar customers unparseable: %v", err)
	}
	if len(similar) != 1 || similar[0].Name != "BotWorks" {
		t.Errorf("similar = %+v, want stored despite empty corpus", similar)
	}
}

func TestEnrichSimilarCustomersDrivenByRecord(t *testing.T) {
	f := newFixture()

	if _, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{}); err != nil {
		t.Fatalf("Enrich error: %v", err)
	}

	if f.analyzer.similarCalls != 1 {
		t.Fatalf("similar customer calls = %d, want 1", f.analyzer.similarCalls)
	}
	if !strings.Contains(f.analyzer.similarProfile, "Acme") {
		t.Errorf("profile = %q, want record fields", f.analyzer.similarProfile)
	}
}

func TestEnrichInvocationFailure(t *testing.T) {
	f := newFixture()
	f.analyzer.err = analysis.ErrInvocationFailed

	_, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
	if !errors.Is(err, analysis.ErrInvocationFailed) {
		t.Errorf("Enrich error = %v, want ErrInvocationFailed", err)
	}
	if f.cache.saveCalls != 0 {
		t.Errorf("save calls = %d, want 0", f.cache.saveCalls)
	}
}

func TestEnrichContextCombinations(t *testing.T) {
	optional := []string{"attachments", "website", "profile", "meetings"}

	for mask := 0; mask < 1<<len(optional); mask++ {
		var present []string
		for n, name := range optional {
			if mask&(1<<n) != 0 {
				present = append(present, name)
			}
		}

		name := "crm only"
		if len(present) > 0 {
			name = strings.Join(present, "+")
		}

		t.Run(name, func(t *testing.T) {
			f := newFixture()
			entity := f.crm.entities["100"]

			for _, source := range present {
				switch source {
				case "attachments":
					f.crm.attachments = []crm.Attachment{{ID: "a1", FileName: "pitch.txt"}}
					f.crm.downloads = map[string][]byte{"a1": []byte("pitch deck content")}
				case "website":
					entity.Fields["Website"] = "acme.io"
					f.scraper.text = "Acme builds robots."
				case "profile":
					entity.Fields["LinkedIn_Profile"] = "linkedin.com/company/acme"
					f.scraper.text = "Acme builds robots."
				case "meetings":
					f.crm.email = "jane@acme.io"
					f.meetings.meetings = []transcripts.Meeting{{ID: "m1", Title: "Intro call"}}
				}
			}

			result, err := f.system.Enrich(context.Background(), crm.ModuleLeads, "100", enrichment.Options{})
			if err != nil {
				t.Fatalf("Enrich error: %v", err)
			}

			if result.Key != "lead:100" || result.FitScore != 8 {
				t.Errorf("result = key %q fit %d, want lead:100 / 8", result.Key, result.FitScore)
			}
			if len(result.Analysis) == 0 {
				t.Error("Analysis empty, want stored payload")
			}

			want := append([]string{"crm"}, present...)
			got := result.Sources
			if len(got) != len(want) {
				t.Fatalf("Sources = %v, want %v", got, want)
			}
			for n := range want {
				if got[n] != want[n] {
					t.Errorf("Sources[%d] = %q, want %q", n, got[n], want[n])
				}
			}
		})
	}
}

func TestCollectContextSources(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("entity only", func(t *testing.T) {
		f := newFixture()
		collector := enrichment.NewCollector(f.crm, f.scraper, f.meetings, logger)

		collected := collector.Collect(context.Background(), f.crm.entities["100"])

		sources := collected.Sources()
		if len(sources) != 1 || sources[0] != "crm" {
			t.Errorf("Sources = %v, want [crm]", sources)
		}
	})

	t.Run("all sources", func(t *testing.T) {
		f := newFixture()
		f.crm.attachments = []crm.Attachment{{ID: "a1", FileName: "pitch.txt"}}
		f.crm.downloads = map[string][]byte{"a1": []byte("pitch deck content")}
		f.crm.email = "jane@acme.io"
		f.scraper.text = "Acme builds robots."
		f.meetings.meetings = []transcripts.Meeting{{ID: "m1", Title: "Intro call", Overview: "went well"}}

		entity := f.crm.entities["100"]
		entity.Fields["Website"] = "acme.io"
		entity.Fields["LinkedIn_Profile"] = "linkedin.com/company/acme"

		collector := enrichment.NewCollector(f.crm, f.scraper, f.meetings, logger)
		collected := collector.Collect(context.Background(), entity)

		want := []string{"crm", "attachments", "website", "profile", "meetings"}
		got := collected.Sources()
		if len(got) != len(want) {
			t.Fatalf("Sources = %v, want %v", got, want)
		}
		for n := range want {
			if got[n] != want[n] {
				t.Errorf("Sources[%d] = %q, want %q", n, got[n], want[n])
			}
		}

		data := collected.Compose()
		for _, section := range []string{
			"=== ATTACHED DOCUMENTS ===",
			"--- Content from: pitch.txt ---",
			"=== WEBSITE CONTENT ===",
			"=== LINKEDIN PROFILE ===",
			"=== MEETING NOTES ===",
			"### Intro call",
		} {
			if !strings.Contains(data, section) {
				t.Errorf("Compose missing %q:\n%s", section, data)
			}
		}
	})

	t.Run("deal records skip the profile scrape", func(t *testing.T) {
		f := newFixture()
		f.scraper.text = "profile text"

		entity := f.crm.entities["200"]
		entity.Fields["LinkedIn_Profile"] = "linkedin.com/company/acme"

		collector := enrichment.NewCollector(f.crm, f.scraper, f.meetings, logger)
		collected := collector.Collect(context.Background(), entity)

		if collected.ProfileText != "" {
			t.Errorf("ProfileText = %q, want empty for deal records", collected.ProfileText)
		}
	})

	t.Run("failed sources degrade silently", func(t *testing.T) {
		f := newFixture()
		f.scraper.err = errors.New("connection refused")

		entity := f.crm.entities["100"]
		entity.Fields["Website"] = "acme.io"

		collector := enrichment.NewCollector(f.crm, f.scraper, f.meetings, logger)
		collected := collector.Collect(context.Background(), entity)

		if collected.WebsiteText != "" {
			t.Errorf("WebsiteText = %q, want empty on fetch failure", collected.WebsiteText)
		}
	})
}
