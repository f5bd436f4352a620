package pipeline

import (
	"fmt"

	"fpl-points-lab/internal/panel"
	"fpl-points-lab/internal/split"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // missing-data diagnostics
}

// SufficiencyThresholds configures the checks.
type SufficiencyThresholds struct {
	MinGameweeks   int     // at least one split needs StartCutoff+1 gameweeks
	MinPlayers     int
	MaxMissingRate float64 // fraction of panel rows flagged missing
	MinTargetRate  float64 // fraction of panel rows with a defined target
}

// DefaultThresholds returns thresholds for a walk-forward starting at startCutoff.
func DefaultThresholds(startCutoff int) SufficiencyThresholds {
	return SufficiencyThresholds{
		MinGameweeks:   startCutoff + 1,
		MinPlayers:     10,
		MaxMissingRate: 0.05,
		MinTargetRate:  0.5,
	}
}

// SufficiencyChecker validates that a panel can support a meaningful backtest.
type SufficiencyChecker struct {
	thresholds SufficiencyThresholds
}

// NewSufficiencyChecker creates a new sufficiency checker.
func NewSufficiencyChecker(thresholds SufficiencyThresholds) *SufficiencyChecker {
	return &SufficiencyChecker{thresholds: thresholds}
}

// Check runs every check. Failures are reported, never fatal.
func (c *SufficiencyChecker) Check(p *panel.Panel, splits []*split.Split) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 5),
		AllPass: true,
		Errors:  []string{},
	}

	checks := []SufficiencyCheck{
		c.checkGameweeks(p),
		c.checkPlayers(p),
		c.checkMissingRate(p),
		c.checkTargetRate(p),
		c.checkEvaluableSplits(splits, p.LastGameweek),
	}
	for _, check := range checks {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
		}
	}

	for _, m := range p.Missing {
		result.Errors = append(result.Errors, m.Error())
	}

	return result
}

// checkGameweeks: distinct panel gameweeks >= MinGameweeks.
func (c *SufficiencyChecker) checkGameweeks(p *panel.Panel) SufficiencyCheck {
	n := len(p.Gameweeks())
	return SufficiencyCheck{
		Name:      "Gameweeks in panel",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinGameweeks),
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= c.thresholds.MinGameweeks,
	}
}

// checkPlayers: distinct players >= MinPlayers.
func (c *SufficiencyChecker) checkPlayers(p *panel.Panel) SufficiencyCheck {
	players := make(map[int]struct{})
	for _, r := range p.Rows {
		players[r.PlayerID] = struct{}{}
	}
	return SufficiencyCheck{
		Name:      "Players in panel",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinPlayers),
		Actual:    fmt.Sprintf("%d", len(players)),
		Pass:      len(players) >= c.thresholds.MinPlayers,
	}
}

// checkMissingRate: missing-data rows / rows <= MaxMissingRate.
func (c *SufficiencyChecker) checkMissingRate(p *panel.Panel) SufficiencyCheck {
	rate := 0.0
	if len(p.Rows) > 0 {
		rate = float64(len(p.Missing)) / float64(len(p.Rows))
	}
	return SufficiencyCheck{
		Name:      "Missing-data rate",
		Threshold: fmt.Sprintf("<= %.2f%%", c.thresholds.MaxMissingRate*100),
		Actual:    fmt.Sprintf("%.2f%%", rate*100),
		Pass:      len(p.Rows) > 0 && rate <= c.thresholds.MaxMissingRate,
	}
}

// checkTargetRate: rows with a defined target / rows >= MinTargetRate.
func (c *SufficiencyChecker) checkTargetRate(p *panel.Panel) SufficiencyCheck {
	withTarget := 0
	for _, r := range p.Rows {
		if r.HasTarget() {
			withTarget++
		}
	}
	rate := 0.0
	if len(p.Rows) > 0 {
		rate = float64(withTarget) / float64(len(p.Rows))
	}
	return SufficiencyCheck{
		Name:      "Rows with target",
		Threshold: fmt.Sprintf(">= %.2f%%", c.thresholds.MinTargetRate*100),
		Actual:    fmt.Sprintf("%.2f%%", rate*100),
		Pass:      rate >= c.thresholds.MinTargetRate,
	}
}

// checkEvaluableSplits: every split has at least one evaluable test row.
// The split testing the season's final gameweek is exempt: its rows have no
// next gameweek to label them.
func (c *SufficiencyChecker) checkEvaluableSplits(splits []*split.Split, lastGameweek int) SufficiencyCheck {
	empty, counted := 0, 0
	for _, sp := range splits {
		if sp.TestGameweek >= lastGameweek {
			continue
		}
		counted++
		if len(sp.Evaluable()) == 0 {
			empty++
		}
	}
	return SufficiencyCheck{
		Name:      "Splits without evaluable rows",
		Threshold: "== 0",
		Actual:    fmt.Sprintf("%d of %d", empty, counted),
		Pass:      counted > 0 && empty == 0,
	}
}
