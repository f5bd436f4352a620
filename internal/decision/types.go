package decision

// Decision represents the final GO/NO-GO result for one candidate model.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// GateInput contains the numbers a candidate model is judged on.
type GateInput struct {
	Model    string
	Baseline string

	// Pooled season MAE of candidate and baseline
	MAE         float64
	BaselineMAE float64

	// Splits present for both models, and those where the candidate's MAE
	// is strictly lower
	SharedSplits int
	SplitWins    int

	// Mean split Spearman of the candidate, nil if never defined
	Spearman *float64

	// Run-level data checks
	SufficiencyPassed bool
	AuditViolations   int
}

// WinRate returns SplitWins / SharedSplits, 0 without shared splits.
func (in GateInput) WinRate() float64 {
	if in.SharedSplits == 0 {
		return 0
	}
	return float64(in.SplitWins) / float64(in.SharedSplits)
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DecisionResult contains the final decision with checklist.
type DecisionResult struct {
	Model      string
	Baseline   string
	Decision   Decision
	GOCriteria []CriterionResult // 4 GO criteria
	NOGOChecks []CriterionResult // 3 NO-GO triggers
}
