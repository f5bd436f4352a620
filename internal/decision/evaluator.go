package decision

import "fmt"

// Thresholds used by Evaluator.
const (
	MinSplitWinRate    = 0.5  // candidate must beat the baseline on at least half the splits
	MaxMAERegression   = 0.10 // NO-GO if pooled MAE is more than 10% worse than baseline
	MinRankCorrelation = 0.0
)

// Evaluator evaluates decision criteria.
type Evaluator struct{}

// NewEvaluator creates a new decision evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces DecisionResult from GateInput.
// GO if ALL criteria pass and NO NO-GO triggers.
// NO-GO if ANY criterion fails or ANY trigger fires.
func (e *Evaluator) Evaluate(input GateInput) *DecisionResult {
	goCriteria := e.evaluateGOCriteria(input)
	nogoChecks := e.evaluateNOGOTriggers(input)

	allGOPass := true
	for _, c := range goCriteria {
		if !c.Pass {
			allGOPass = false
			break
		}
	}

	anyNOGOTriggered := false
	for _, c := range nogoChecks {
		if !c.Pass { // Pass=false means triggered
			anyNOGOTriggered = true
			break
		}
	}

	decision := DecisionGO
	if !allGOPass || anyNOGOTriggered {
		decision = DecisionNOGO
	}

	return &DecisionResult{
		Model:      input.Model,
		Baseline:   input.Baseline,
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

// evaluateGOCriteria evaluates the 4 GO criteria.
func (e *Evaluator) evaluateGOCriteria(input GateInput) []CriterionResult {
	criteria := make([]CriterionResult, 4)

	// 1. Data sufficient for a verdict
	criteria[0] = CriterionResult{
		Name:      "Data sufficient",
		Threshold: "all sufficiency checks pass",
		Actual:    fmt.Sprintf("%t", input.SufficiencyPassed),
		Pass:      input.SufficiencyPassed,
	}

	// 2. Pooled MAE no worse than baseline
	criteria[1] = CriterionResult{
		Name:      "Pooled MAE vs " + input.Baseline,
		Threshold: "<= baseline",
		Actual:    fmt.Sprintf("%.4f vs %.4f", input.MAE, input.BaselineMAE),
		Pass:      input.MAE <= input.BaselineMAE,
	}

	// 3. Beats baseline on most splits
	criteria[2] = CriterionResult{
		Name:      "Split win rate",
		Threshold: fmt.Sprintf(">= %.0f%%", MinSplitWinRate*100),
		Actual:    fmt.Sprintf("%d/%d", input.SplitWins, input.SharedSplits),
		Pass:      input.SharedSplits > 0 && input.WinRate() >= MinSplitWinRate,
	}

	// 4. Ranks players better than chance
	criteria[3] = CriterionResult{
		Name:      "Mean Spearman",
		Threshold: fmt.Sprintf("> %.1f", MinRankCorrelation),
		Actual:    formatOptional(input.Spearman),
		Pass:      input.Spearman != nil && *input.Spearman > MinRankCorrelation,
	}

	return criteria
}

// evaluateNOGOTriggers evaluates the 3 NO-GO triggers.
// Pass=true means NOT triggered, Pass=false means triggered.
func (e *Evaluator) evaluateNOGOTriggers(input GateInput) []CriterionResult {
	checks := make([]CriterionResult, 3)

	// 1. Clear regression against the baseline
	regression := 0.0
	if input.BaselineMAE > 0 {
		regression = (input.MAE - input.BaselineMAE) / input.BaselineMAE
	}
	checks[0] = CriterionResult{
		Name:      "MAE regression",
		Threshold: fmt.Sprintf("> %.0f%% worse than baseline", MaxMAERegression*100),
		Actual:    fmt.Sprintf("%+.2f%%", regression*100),
		Pass:      regression <= MaxMAERegression,
	}

	// 2. Rank correlation missing or non-positive
	checks[1] = CriterionResult{
		Name:      "No ranking signal",
		Threshold: "Spearman undefined or <= 0",
		Actual:    formatOptional(input.Spearman),
		Pass:      input.Spearman != nil && *input.Spearman > MinRankCorrelation,
	}

	// 3. Panel audit found violations
	checks[2] = CriterionResult{
		Name:      "Panel audit violations",
		Threshold: "> 0",
		Actual:    fmt.Sprintf("%d", input.AuditViolations),
		Pass:      input.AuditViolations == 0,
	}

	return checks
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}
