package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbdc/leadscope/internal/prompts"
	"github.com/tbdc/leadscope/pkg/formatting"
)

// System defines the public contract for model-backed analysis stages.
type System interface {
	Lead(ctx context.Context, leadData string) (*LeadAnalysis, error)
	Deal(ctx context.Context, dealData string) (*DealAnalysis, error)
	Score(ctx context.Context, dealData string, briefing *DealAnalysis) (*ScoringRubric, error)
	SimilarCustomers(ctx context.Context, profile string) ([]SimilarCustomer, error)
}

type analyzer struct {
	runtime Runtime
	prompts prompts.System
	logger  *slog.Logger
}

// NewAnalyzer creates an analysis service implementing the System interface.
// Templates are read from the prompt store on every invocation so edits
// take effect without a restart.
func NewAnalyzer(runtime Runtime, templates prompts.System, logger *slog.Logger) System {
	return &analyzer{
		runtime: runtime,
		prompts: templates,
		logger:  logger.With("system", "analysis"),
	}
}

func (a *analyzer) template(ctx context.Context, key prompts.Key) (string, error) {
	t, err := a.prompts.Find(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", key, err)
	}
	return t.Content, nil
}

func (a *analyzer) Lead(ctx context.Context, leadData string) (*LeadAnalysis, error) {
	system, err := a.template(ctx, prompts.KeyLeadSystem)
	if err != nil {
		return nil, err
	}
	body, err := a.template(ctx, prompts.KeyLeadAnalysis)
	if err != nil {
		return nil, err
	}

	prompt := prompts.Render(body, map[string]string{"lead_data": leadData})
	raw, err := a.runtime.Invoke(ctx, system, prompt, LeadParams)
	if err != nil {
		return nil, err
	}

	result, err := formatting.ParseRepaired[LeadAnalysis](raw)
	if err != nil {
		a.logger.Warn("lead analysis output unparseable, using fallback", "error", err)
		return DefaultLeadAnalysis("The analysis response could not be parsed."), nil
	}
	return &result, nil
}

func (a *analyzer) Deal(ctx context.Context, dealData string) (*DealAnalysis, error) {
	system, err := a.template(ctx, prompts.KeyDealSystem)
	if err != nil {
		return nil, err
	}
	body, err := a.template(ctx, prompts.KeyDealAnalysis)
	if err != nil {
		return nil, err
	}

	prompt := prompts.Render(body, map[string]string{"deal_data": dealData})
	raw, err := a.runtime.Invoke(ctx, system, prompt, DealParams)
	if err != nil {
		return nil, err
	}

	result, err := formatting.ParseRepaired[DealAnalysis](raw)
	if err != nil {
		a.logger.Warn("deal analysis output unparseable, using fallback", "error", err)
		return DefaultDealAnalysis("The analysis response could not be parsed."), nil
	}
	return &result, nil
}

func (a *analyzer) Score(ctx context.Context, dealData string, briefing *DealAnalysis) (*ScoringRubric, error) {
	system, err := a.template(ctx, prompts.KeyDealScoringSystem)
	if err != nil {
		return nil, err
	}
	body, err := a.template(ctx, prompts.KeyDealScoring)
	if err != nil {
		return nil, err
	}

	prompt := prompts.Render(body, map[string]string{
		"deal_data":        dealData,
		"analysis_summary": briefing.Summary(),
	})

	raw, err := a.runtime.Invoke(ctx, system, prompt, ScoringParams)
	if err != nil {
		return nil, err
	}

	rubric, err := formatting.ParseRepaired[ScoringRubric](raw)
	if err != nil {
		a.logger.Warn("scoring output unparseable, using neutral rubric", "error", err)
		rubric = neutralRubric()
	}

	ApplyScoringOverrides(&rubric, briefing)
	rubric.Retotal()
	if rubric.FitScore < 1 {
		rubric.FitScore = 1
	} else if rubric.FitScore > 10 {
		rubric.FitScore = 10
	}
	return &rubric, nil
}

const similarSystem = `You know TBDC's customer portfolio and the Canadian soft-landing
market. Respond with JSON only, no prose before or after.`

const similarPrompt = `Company under review:

%s

Name up to 3 existing TBDC customers or well-known comparable companies
most similar to the company under review, ranked most similar first.
Respond with a JSON array:
[{"name": "...", "description": "...", "industry": "...", "website": "...", "why_similar": "..."}]

Return [] if nothing is a reasonable match.`

func (a *analyzer) SimilarCustomers(ctx context.Context, profile string) ([]SimilarCustomer, error) {
	raw, err := a.runtime.Invoke(ctx, similarSystem, fmt.Sprintf(similarPrompt, profile), SimilarParams)
	if err != nil {
		return nil, err
	}

	result, err := formatting.ParseRepaired[[]SimilarCustomer](raw)
	if err != nil {
		a.logger.Warn("similar customer output unparseable", "error", err)
		return []SimilarCustomer{}, nil
	}
	if len(result) > 3 {
		result = result[:3]
	}
	return result, nil
}

// neutralRubric is the fallback when scoring output cannot be parsed.
// Midpoint scores keep a bad completion from sinking or inflating a deal.
func neutralRubric() ScoringRubric {
	neutral := SubScore{Score: 3, Note: "The scoring response could not be parsed."}
	rubric := ScoringRubric{
		ProductMaturity:  neutral,
		TeamCapability:   neutral,
		MarketReadiness:  neutral,
		RevenuePotential: neutral,
		StrategicFit:     neutral,
		FitScore:         5,
		FitAssessment:    "The scoring response could not be parsed.",
	}
	rubric.Retotal()
	return rubric
}
