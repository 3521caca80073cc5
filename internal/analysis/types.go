package analysis

import (
	"fmt"
	"strings"
)

// Confidence expresses how much source data backed an analysis.
type Confidence string

// Confidence levels.
const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// LeadAnalysis is the model's assessment of an inbound lead.
type LeadAnalysis struct {
	CompanyName    string     `json:"company_name"`
	Country        string     `json:"country"`
	Vertical       string     `json:"vertical"`
	BusinessModel  string     `json:"business_model"`
	FitScore       int        `json:"fit_score"`
	FitAssessment  string     `json:"fit_assessment"`
	KeyInsights    []string   `json:"key_insights"`
	QuestionsToAsk []string   `json:"questions_to_ask"`
	Confidence     Confidence `json:"confidence_level"`
	Notes          []string   `json:"notes"`
}

// ServiceLine is one priced support item in a deal briefing.
type ServiceLine struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	EstimatedPriceEUR int    `json:"estimated_price_eur"`
}

// PricingSummary totals the support a company is expected to need.
type PricingSummary struct {
	ServiceLines []ServiceLine `json:"service_lines"`
	TotalEUR     int           `json:"total_eur"`
	Notes        []string      `json:"notes"`
}

// DealAnalysis is the model's briefing for a deal under consideration.
// It carries the lead fields plus deal-only sections; the fit score and
// assessment are filled from the scoring stage, not this call.
type DealAnalysis struct {
	CompanyName     string         `json:"company_name"`
	Country         string         `json:"country"`
	Vertical        string         `json:"vertical"`
	BusinessModel   string         `json:"business_model"`
	ProductStage    string         `json:"product_stage"`
	FitScore        int            `json:"fit_score"`
	FitAssessment   string         `json:"fit_assessment"`
	RevenueSummary  string         `json:"revenue_summary"`
	CustomerSummary string         `json:"customer_summary"`
	ICPMapping      string         `json:"icp_mapping"`
	SupportRequired []string       `json:"support_required"`
	Pricing         PricingSummary `json:"pricing_summary"`
	KeyInsights     []string       `json:"key_insights"`
	QuestionsToAsk  []string       `json:"questions_to_ask"`
	Confidence      Confidence     `json:"confidence_level"`
	Notes           []string       `json:"notes"`
}

// Summary condenses a briefing into the short form embedded in the
// scoring prompt.
func (a *DealAnalysis) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Company: %s (%s)\n", a.CompanyName, a.Country)
	fmt.Fprintf(&b, "Vertical: %s\n", a.Vertical)
	fmt.Fprintf(&b, "Business model: %s\n", a.BusinessModel)
	fmt.Fprintf(&b, "Product stage: %s\n", a.ProductStage)

	if a.RevenueSummary != "" {
		fmt.Fprintf(&b, "Revenue: %s\n", a.RevenueSummary)
	}
	if a.CustomerSummary != "" {
		fmt.Fprintf(&b, "Customers: %s\n", a.CustomerSummary)
	}
	if a.ICPMapping != "" {
		fmt.Fprintf(&b, "ICP: %s\n", a.ICPMapping)
	}
	if len(a.KeyInsights) > 0 {
		fmt.Fprintf(&b, "Key insights: %s\n", strings.Join(a.KeyInsights, "; "))
	}
	if len(a.SupportRequired) > 0 {
		fmt.Fprintf(&b, "Support required: %s\n", strings.Join(a.SupportRequired, "; "))
	}

	return strings.TrimRight(b.String(), "\n")
}

// SubScore is a single rubric dimension.
type SubScore struct {
	Score int    `json:"score"`
	Note  string `json:"note"`
}

// ScoringRubric is the committee rubric applied to a deal. The five
// dimensions are scored 1-5; FitScore is the overall 1-10 score the
// scoring call produces alongside them.
type ScoringRubric struct {
	ProductMaturity  SubScore `json:"product_maturity"`
	TeamCapability   SubScore `json:"team_capability"`
	MarketReadiness  SubScore `json:"market_readiness"`
	RevenuePotential SubScore `json:"revenue_potential"`
	StrategicFit     SubScore `json:"strategic_fit"`
	Total            int      `json:"total"`
	FitScore         int      `json:"fit_score"`
	FitAssessment    string   `json:"fit_assessment"`
}

// Retotal recomputes the total from the five dimensions.
func (r *ScoringRubric) Retotal() {
	r.Total = r.ProductMaturity.Score +
		r.TeamCapability.Score +
		r.MarketReadiness.Score +
		r.RevenuePotential.Score +
		r.StrategicFit.Score
}

// SimilarCustomer is an existing customer the model considers comparable.
type SimilarCustomer struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Website     string `json:"website"`
	WhySimilar  string `json:"why_similar"`
}

// DefaultLeadAnalysis is the fallback when model output cannot be parsed.
func DefaultLeadAnalysis(note string) *LeadAnalysis {
	return &LeadAnalysis{
		CompanyName:    "Unknown",
		FitScore:       5,
		Confidence:     ConfidenceLow,
		KeyInsights:    []string{},
		QuestionsToAsk: []string{},
		Notes:          []string{note, "Analysis could not be completed from the available data."},
	}
}

// DefaultDealAnalysis is the fallback when model output cannot be parsed.
func DefaultDealAnalysis(note string) *DealAnalysis {
	return &DealAnalysis{
		CompanyName:     "Unknown",
		FitScore:        5,
		Confidence:      ConfidenceLow,
		SupportRequired: []string{},
		KeyInsights:     []string{},
		QuestionsToAsk:  []string{},
		Notes:           []string{note, "Analysis could not be completed from the available data."},
	}
}
