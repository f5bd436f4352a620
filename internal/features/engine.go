// Package features computes leakage-free rolling features on a built panel.
package features

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
)

// Engine attaches rolling player, team and opponent form plus risk flags to
// every row of a panel. For row t only gameweeks t-N..t-1 contribute.
type Engine struct {
	windows           []int
	checkAvailability bool
	logger            logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAvailabilityGuard rejects availability snapshots taken at or after the
// gameweek's first kickoff.
func WithAvailabilityGuard() Option {
	return func(e *Engine) { e.checkAvailability = true }
}

// NewEngine creates a feature engine. Windows must be positive; they are
// deduplicated and sorted ascending.
func NewEngine(windows []int, logger logrus.FieldLogger, opts ...Option) (*Engine, error) {
	if len(windows) == 0 {
		return nil, &domain.ConfigError{Field: "windows", Detail: "at least one window required"}
	}
	seen := make(map[int]bool)
	var ws []int
	for _, w := range windows {
		if w < 1 {
			return nil, &domain.ConfigError{Field: "windows", Detail: fmt.Sprintf("window %d must be >= 1", w)}
		}
		if !seen[w] {
			seen[w] = true
			ws = append(ws, w)
		}
	}
	sort.Ints(ws)

	e := &Engine{windows: ws, logger: logger.WithField("phase", "features")}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Windows returns the engine's window sizes, ascending.
func (e *Engine) Windows() []int {
	return append([]int(nil), e.windows...)
}

// Apply computes features for every row and advances it to StageFeatures.
// Returns *domain.LeakageError if a row already carries a target or any
// contributor violates the gameweek boundary. Rows are modified in place.
func (e *Engine) Apply(p *panel.Panel) error {
	for _, row := range p.Rows {
		if err := e.applyRow(p, row); err != nil {
			return err
		}
	}

	e.logger.WithFields(logrus.Fields{
		"season":  p.Season,
		"rows":    len(p.Rows),
		"windows": e.windows,
	}).Info("computed features")
	return nil
}

func (e *Engine) applyRow(p *panel.Panel, row *domain.PanelRow) error {
	key := row.Key()
	if row.Target != nil || row.Stage >= domain.StageTargets {
		offending := row.Gameweek + 1
		if row.Target != nil {
			offending = row.Target.Gameweek
		}
		return &domain.LeakageError{
			Key:             key,
			Component:       "target",
			OffendingGW:     offending,
			AllowedBeforeGW: row.Gameweek,
		}
	}

	windows := make([]domain.WindowFeatures, 0, len(e.windows))
	for _, n := range e.windows {
		wf := domain.WindowFeatures{Size: n}

		pf, err := PlayerWindow(p, key, n)
		if err != nil {
			return err
		}
		wf.Player = pf

		tf, err := TeamWindow(p, key, row.TeamID, n, "team_form")
		if err != nil {
			return err
		}
		wf.Team = tf

		if row.OpponentTeamID != nil {
			of, err := TeamWindow(p, key, *row.OpponentTeamID, n, "opponent_form")
			if err != nil {
				return err
			}
			wf.Opponent = of
		}

		windows = append(windows, wf)
	}

	risk, err := e.riskFlags(p, row)
	if err != nil {
		return err
	}

	row.Windows = windows
	row.Risk = risk
	row.Stage = domain.StageFeatures
	return nil
}
