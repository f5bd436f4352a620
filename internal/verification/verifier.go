// Package verification re-checks built panels: leakage boundaries, target
// alignment, key uniqueness and rebuild determinism.
package verification

import (
	"errors"
	"fmt"
	"math"

	"fpl-points-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons of stored rows.
const FloatTolerance = 1e-9

// Audit check names.
const (
	CheckDuplicateKey   = "duplicate_key"
	CheckOrder          = "order"
	CheckStage          = "stage"
	CheckWindowBoundary = "window_boundary"
	CheckTargetShift    = "target_shift"
)

// Violation is one failed audit check.
type Violation struct {
	Key    domain.PanelKey
	Check  string
	Detail string
	Err    error // typed domain error for the violation
}

// AuditReport contains the result of auditing a panel.
type AuditReport struct {
	Rows       int
	Violations []Violation
}

// OK reports whether the audit found no violations.
func (r *AuditReport) OK() bool {
	return len(r.Violations) == 0
}

// Err returns the first violation's error, or nil.
func (r *AuditReport) Err() error {
	if r.OK() {
		return nil
	}
	return r.Violations[0].Err
}

// AuditPanel re-checks every row of a fully built panel: keys are unique
// and sorted by (season, player_id, gameweek), every feature contributor
// lies in [gameweek-size, gameweek-1], and every target references
// gameweek+1.
func AuditPanel(rows []*domain.PanelRow) *AuditReport {
	report := &AuditReport{Rows: len(rows)}
	seen := make(map[domain.PanelKey]struct{}, len(rows))

	add := func(key domain.PanelKey, check, detail string, err error) {
		report.Violations = append(report.Violations, Violation{Key: key, Check: check, Detail: detail, Err: err})
	}

	for i, r := range rows {
		key := r.Key()

		if _, dup := seen[key]; dup {
			add(key, CheckDuplicateKey, "key appears more than once", &domain.SchemaError{Key: key, Detail: "duplicate panel key"})
		}
		seen[key] = struct{}{}

		if i > 0 && !rowLess(rows[i-1], r) {
			add(key, CheckOrder, fmt.Sprintf("row follows %d/%d", rows[i-1].PlayerID, rows[i-1].Gameweek),
				&domain.SchemaError{Key: key, Detail: "panel rows out of order"})
		}

		if r.Stage != domain.StageTargets {
			add(key, CheckStage, fmt.Sprintf("stage %d", r.Stage),
				&domain.LeakageError{Key: key, Component: "stage_order", OffendingGW: r.Gameweek + 1, AllowedBeforeGW: r.Gameweek})
		}

		for _, w := range r.Windows {
			checks := []struct {
				component string
				gws       []int
			}{
				{"player_form", w.Player.Gameweeks},
				{"team_form", w.Team.Gameweeks},
				{"opponent_form", w.Opponent.Gameweeks},
			}
			for _, c := range checks {
				for _, gw := range c.gws {
					if gw >= r.Gameweek || gw < r.Gameweek-w.Size {
						add(key, CheckWindowBoundary,
							fmt.Sprintf("%s window %d uses gameweek %d", c.component, w.Size, gw),
							&domain.LeakageError{Key: key, Component: c.component, OffendingGW: gw, AllowedBeforeGW: r.Gameweek})
					}
				}
			}
		}

		if r.Target != nil && r.Target.Gameweek != r.Gameweek+1 {
			add(key, CheckTargetShift, fmt.Sprintf("target gameweek %d", r.Target.Gameweek),
				&domain.LeakageError{Key: key, Component: "target", OffendingGW: r.Target.Gameweek, AllowedBeforeGW: r.Gameweek + 2})
		}
	}

	return report
}

// rowLess orders rows by (season, player_id, gameweek).
func rowLess(a, b *domain.PanelRow) bool {
	if a.Season != b.Season {
		return a.Season < b.Season
	}
	if a.PlayerID != b.PlayerID {
		return a.PlayerID < b.PlayerID
	}
	return a.Gameweek < b.Gameweek
}

// IsLeakage reports whether any violation is a leakage error.
func (r *AuditReport) IsLeakage() bool {
	for _, v := range r.Violations {
		if errors.Is(v.Err, domain.ErrLeakage) {
			return true
		}
	}
	return false
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

// floatPtrEquals compares two *float64 values within FloatTolerance.
// Returns true if both are nil, or both are non-nil and equal.
func floatPtrEquals(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEquals(*a, *b)
}
