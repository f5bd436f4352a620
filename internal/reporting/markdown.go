package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Backtest Report %s\n\n", r.Season))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Panel: `%s` | Windows: %s\n\n", r.RunID, r.PanelFingerprint, joinInts(r.Windows)))

	// Data Summary
	d := r.DataSummary
	sb.WriteString("## Panel Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Players | %d |\n", d.Players))
	sb.WriteString(fmt.Sprintf("| Rows | %d |\n", d.Rows))
	sb.WriteString(fmt.Sprintf("| Played Rows | %d |\n", d.PlayedRows))
	sb.WriteString(fmt.Sprintf("| Blank Rows | %d |\n", d.BlankRows))
	sb.WriteString(fmt.Sprintf("| Double Gameweek Rows | %d |\n", d.DoubleRows))
	sb.WriteString(fmt.Sprintf("| Missing Data Rows | %d |\n", d.MissingRows))
	sb.WriteString(fmt.Sprintf("| Rows With Target | %d |\n", d.RowsWithTarget))
	sb.WriteString(fmt.Sprintf("| Gameweeks | %d-%d |\n", d.FirstGameweek, d.LastGameweek))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Metrics below may not be representative.\n\n")
		}
	} else if len(r.DataQuality.IntegrityErrors) == 0 {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Missing Data\n\n")
		for _, err := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}

	// Audit
	sb.WriteString("## Leakage Audit\n\n")
	sb.WriteString(fmt.Sprintf("Rows audited: %d\n\n", r.Audit.RowsAudited))
	if len(r.Audit.Violations) == 0 {
		sb.WriteString("No violations.\n\n")
	} else {
		for _, v := range r.Audit.Violations {
			sb.WriteString(fmt.Sprintf("- %s\n", v))
		}
		sb.WriteString("\n")
	}
	if r.Audit.IdempotenceMatch {
		sb.WriteString("Rebuild fingerprint: MATCH\n\n")
	} else {
		sb.WriteString("Rebuild fingerprint: MISMATCH\n\n")
	}

	// Model Metrics
	sb.WriteString("## Season Metrics\n\n")
	if len(r.ModelMetrics) > 0 {
		sb.WriteString("| Model | Splits | Test Rows | MAE | RMSE | Spearman | Minutes MAE | Minutes Calibration |\n")
		sb.WriteString("|-------|--------|-----------|-----|------|----------|-------------|---------------------|\n")
		for _, m := range r.ModelMetrics {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.4f | %.4f | %s | %s | %s |\n",
				m.Model, m.Splits, m.TestRows, m.MAE, m.RMSE,
				optFloat(m.Spearman), optFloat(m.MinutesMAE), optFloat(m.MinutesCalibration)))
		}
	} else {
		sb.WriteString("No model metrics available.\n")
	}
	sb.WriteString("\n")

	// Split Metrics
	sb.WriteString("## Walk-Forward Splits\n\n")
	if len(r.SplitMetrics) > 0 {
		sb.WriteString("| Model | Cutoff | Test GW | Train Rows | Test Rows | MAE | RMSE | Spearman |\n")
		sb.WriteString("|-------|--------|---------|------------|-----------|-----|------|----------|\n")
		for _, s := range r.SplitMetrics {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %.4f | %.4f | %s |\n",
				s.Model, s.Cutoff, s.TestGameweek, s.TrainRows, s.TestRows, s.MAE, s.RMSE, optFloat(s.Spearman)))
		}
	} else {
		sb.WriteString("No splits evaluated.\n")
	}
	sb.WriteString("\n")

	// Reproducibility
	rep := r.Reproducibility
	sb.WriteString("## Reproducibility\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Generator Version | %s |\n", rep.GeneratorVersion))
	sb.WriteString(fmt.Sprintf("| Config Hash | %s |\n", rep.ConfigHash))
	sb.WriteString(fmt.Sprintf("| Commit | %s |\n", rep.CommitHash))
	sb.WriteString(fmt.Sprintf("| Command | `%s` |\n", rep.Command))
	sb.WriteString("\n")

	return sb.String()
}

func optFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
