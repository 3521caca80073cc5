package prompts

// Default template contents. These seed the prompts table on first boot
// and back the reset endpoint.
var defaults = map[Key]string{
	KeyLeadSystem: `You are a market analyst for TBDC, a soft-landing program that helps
international startups expand into North America. You evaluate inbound
leads for program fit. Be direct and specific. Ground every claim in the
data provided and say so when information is missing. Respond with JSON
only, no prose before or after.`,

	KeyLeadAnalysis: `Analyze the following lead for fit with TBDC's soft-landing program.

=== LEAD DATA ===
{lead_data}

Consider traction, industry, funding stage, and readiness to expand into
North America. Use any attached documents, website content, and meeting
notes included above.

Respond with a single JSON object:
{
  "company_name": "...",
  "country": "country of origin",
  "vertical": "primary industry vertical",
  "business_model": "B2B, B2C, or B2B2C",
  "fit_score": 1-10,
  "fit_assessment": "two or three sentences on program fit",
  "key_insights": ["..."],
  "questions_to_ask": ["questions for the first call"],
  "confidence_level": "Low, Medium, or High based on how much data was available",
  "notes": ["caveats and missing data"]
}`,

	KeyDealSystem: `You are a senior program analyst for TBDC, a soft-landing program that
helps international startups expand into North America. You prepare deal
briefings for the program committee. Be direct and specific. Ground every
claim in the data provided and say so when information is missing. Respond
with JSON only, no prose before or after.`,

	KeyDealAnalysis: `Prepare a briefing for the following deal.

=== DEAL DATA ===
{deal_data}

Use any attached documents, website content, and meeting notes included
above. Estimate the support the company will need from the program and
price it against the TBDC service catalog (all prices EUR):

- Market Research & Validation: 4,500
- Go-to-Market Strategy: 6,000
- Business Development & Introductions: 7,500
- Soft-Landing Package (office, incorporation, banking): 9,000
- Investor Readiness & Fundraising Support: 8,000
- Talent & Recruitment Support: 5,000

Respond with a single JSON object:
{
  "company_name": "...",
  "country": "country of origin",
  "vertical": "primary industry vertical",
  "business_model": "B2B, B2C, or B2B2C",
  "product_stage": "Idea, MVP, Beta, or Launched",
  "revenue_summary": "current revenue picture and trajectory",
  "customer_summary": "who the customers are today",
  "icp_mapping": "how the company maps to TBDC's ideal customer profile",
  "support_required": ["service line names from the catalog"],
  "pricing_summary": {
    "service_lines": [
      {"name": "...", "description": "why this is needed", "estimated_price_eur": 0}
    ],
    "total_eur": 0,
    "notes": ["pricing assumptions and caveats"]
  },
  "key_insights": ["..."],
  "questions_to_ask": ["questions for the committee"],
  "confidence_level": "Low, Medium, or High based on how much data was available",
  "notes": ["caveats and missing data"]
}`,

	KeyDealScoringSystem: `You are a scoring analyst for TBDC's program committee. You apply the
committee's rubric exactly as written, without softening scores. Respond
with JSON only, no prose before or after.`,

	KeyDealScoring: `Score the following deal against the committee rubric.

=== DEAL DATA ===
{deal_data}

=== ANALYSIS SUMMARY ===
{analysis_summary}

Score each dimension from 1 (weak) to 5 (strong) with a one-sentence note:

- product_maturity: how far along the product is. An MVP-stage product
  scores at most 2.
- team_capability: founder and team track record.
- market_readiness: evidence of demand in the target market.
- revenue_potential: realistic revenue opportunity for the company.
- strategic_fit: alignment with TBDC's B2B soft-landing focus. A B2C
  company scores 1 on this dimension, no exceptions.

Then give an overall fit_score from 1 (no fit) to 10 (ideal fit) with a
short written assessment.

Respond with a single JSON object:
{
  "product_maturity": {"score": 1-5, "note": "..."},
  "team_capability": {"score": 1-5, "note": "..."},
  "market_readiness": {"score": 1-5, "note": "..."},
  "revenue_potential": {"score": 1-5, "note": "..."},
  "strategic_fit": {"score": 1-5, "note": "..."},
  "total": 5-25,
  "fit_score": 1-10,
  "fit_assessment": "two or three sentences"
}`,
}

// Default returns the seed content for a key.
func Default(key Key) (string, error) {
	content, ok := defaults[key]
	if !ok {
		return "", ErrUnknownKey
	}
	return content, nil
}
