package analysis

import "strings"

// Score floors and ceilings enforced by the committee rubric regardless
// of what the model returns.
const (
	b2cStrategicFitScore  = 1
	b2cStrategicFitNote   = "This company is B2C, so per rubric rules Strategic Fit is scored 1."
	mvpProductMaturityCap = 2
)

func isB2C(businessModel string) bool {
	model := strings.ToUpper(strings.TrimSpace(businessModel))
	return model == "B2C"
}

func isMVP(productStage string) bool {
	return strings.Contains(strings.ToLower(productStage), "mvp")
}

// ApplyScoringOverrides enforces the deterministic rubric rules on a
// model-produced score. B2C companies always score 1 on strategic fit,
// and an MVP-stage product caps product maturity at 2. The total is
// recomputed when any dimension changes.
func ApplyScoringOverrides(rubric *ScoringRubric, briefing *DealAnalysis) {
	changed := false

	if isB2C(briefing.BusinessModel) && rubric.StrategicFit.Score != b2cStrategicFitScore {
		rubric.StrategicFit = SubScore{
			Score: b2cStrategicFitScore,
			Note:  b2cStrategicFitNote,
		}
		changed = true
	}

	if isMVP(briefing.ProductStage) && rubric.ProductMaturity.Score > mvpProductMaturityCap {
		rubric.ProductMaturity.Score = mvpProductMaturityCap
		rubric.ProductMaturity.Note = "Capped at 2: product is at MVP stage. " + rubric.ProductMaturity.Note
		changed = true
	}

	if changed {
		rubric.Retotal()
	}
}
