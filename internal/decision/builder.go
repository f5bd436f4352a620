package decision

import (
	"errors"
	"sort"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/reporting"
)

// ErrModelNotFound is returned when a model has no season aggregate in the report.
var ErrModelNotFound = errors.New("model not found in report")

// Builder constructs GateInput from a Report.
type Builder struct {
	baseline string
}

// NewBuilder creates a builder that compares candidates against baseline.
func NewBuilder(baseline string) *Builder {
	return &Builder{baseline: baseline}
}

// Baseline returns the baseline model name.
func (b *Builder) Baseline() string {
	return b.baseline
}

// Build creates GateInput for one candidate model from reporting.Report.
// SplitWins counts cutoffs present for both models where the candidate's
// split MAE is strictly lower.
func (b *Builder) Build(report *reporting.Report, model string) (*GateInput, error) {
	candidate := findModel(report, model)
	baseline := findModel(report, b.baseline)
	if candidate == nil || baseline == nil {
		return nil, ErrModelNotFound
	}

	baselineByCutoff := make(map[int]float64)
	for _, s := range report.SplitMetrics {
		if s.Model == b.baseline {
			baselineByCutoff[s.Cutoff] = s.MAE
		}
	}

	input := &GateInput{
		Model:             model,
		Baseline:          b.baseline,
		MAE:               candidate.MAE,
		BaselineMAE:       baseline.MAE,
		Spearman:          candidate.Spearman,
		SufficiencyPassed: report.DataQuality.AllChecksPassed,
		AuditViolations:   len(report.Audit.Violations),
	}
	for _, s := range report.SplitMetrics {
		if s.Model != model {
			continue
		}
		baseMAE, ok := baselineByCutoff[s.Cutoff]
		if !ok {
			continue
		}
		input.SharedSplits++
		if s.MAE < baseMAE {
			input.SplitWins++
		}
	}
	return input, nil
}

// BuildAll creates inputs for every model in the report except the baseline,
// sorted by model name. Returns nil if the baseline was not evaluated.
func (b *Builder) BuildAll(report *reporting.Report) []*GateInput {
	if findModel(report, b.baseline) == nil {
		return nil
	}

	var models []string
	for _, m := range report.ModelMetrics {
		if m.Model != b.baseline {
			models = append(models, m.Model)
		}
	}
	sort.Strings(models)

	inputs := make([]*GateInput, 0, len(models))
	for _, model := range models {
		input, err := b.Build(report, model)
		if err != nil {
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// EvaluateReport builds and evaluates every candidate against the form baseline.
func EvaluateReport(report *reporting.Report) []*DecisionResult {
	e := NewEvaluator()
	var results []*DecisionResult
	for _, input := range NewBuilder(domain.ModelForm).BuildAll(report) {
		results = append(results, e.Evaluate(*input))
	}
	return results
}

func findModel(report *reporting.Report, model string) *reporting.ModelMetricRow {
	for i := range report.ModelMetrics {
		if report.ModelMetrics[i].Model == model {
			return &report.ModelMetrics[i]
		}
	}
	return nil
}
