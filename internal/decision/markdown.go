package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders gate results as a Markdown document.
func RenderMarkdown(runID string, results []*DecisionResult) string {
	var sb strings.Builder

	sb.WriteString("# Model Gate Report\n\n")
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", runID))

	if len(results) == 0 {
		sb.WriteString("No candidate models were evaluated against a baseline.\n")
		return sb.String()
	}

	for _, result := range results {
		renderResult(&sb, result)
	}
	return sb.String()
}

func renderResult(sb *strings.Builder, result *DecisionResult) {
	// Decision header
	sb.WriteString(fmt.Sprintf("## %s vs %s: %s\n\n", result.Model, result.Baseline, result.Decision))

	// GO Criteria table
	sb.WriteString("### GO Criteria\n\n")
	sb.WriteString("| # | Criterion | Threshold | Actual | Pass |\n")
	sb.WriteString("|---|-----------|-----------|--------|------|\n")
	goPassed := 0
	for i, c := range result.GOCriteria {
		passStr := "PASS"
		if c.Pass {
			goPassed++
		} else {
			passStr = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, c.Name, c.Threshold, c.Actual, passStr))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("GO Criteria: %d/%d passed\n\n", goPassed, len(result.GOCriteria)))

	// NO-GO Triggers table
	sb.WriteString("### NO-GO Triggers\n\n")
	sb.WriteString("| # | Trigger | Condition | Actual | Status |\n")
	sb.WriteString("|---|---------|-----------|--------|--------|\n")
	nogoTriggered := 0
	for i, c := range result.NOGOChecks {
		statusStr := "NOT TRIGGERED"
		if !c.Pass { // Pass=false means triggered
			statusStr = "TRIGGERED"
			nogoTriggered++
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, c.Name, c.Threshold, c.Actual, statusStr))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("NO-GO Triggers: %d/%d triggered\n\n", nogoTriggered, len(result.NOGOChecks)))

	// Summary
	if result.Decision == DecisionGO {
		sb.WriteString("All GO criteria passed and no NO-GO triggers fired.\n\n")
		return
	}
	sb.WriteString("Decision is NO-GO due to:\n")
	for _, c := range result.GOCriteria {
		if !c.Pass {
			sb.WriteString(fmt.Sprintf("- GO criterion failed: %s (actual: %s)\n", c.Name, c.Actual))
		}
	}
	for _, c := range result.NOGOChecks {
		if !c.Pass {
			sb.WriteString(fmt.Sprintf("- NO-GO trigger fired: %s (actual: %s)\n", c.Name, c.Actual))
		}
	}
	sb.WriteString("\n")
}
