// Package targets attaches next-gameweek targets to featured panel rows.
package targets

import (
	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
)

// Shifter attaches next_points and next_minutes from gameweek t+1.
type Shifter struct {
	logger logrus.FieldLogger
}

// NewShifter creates a target shifter.
func NewShifter(logger logrus.FieldLogger) *Shifter {
	return &Shifter{logger: logger.WithField("phase", "targets")}
}

// Apply sets Target on every row and advances it to StageTargets.
// The target is the t+1 gameweek line: summed over double gameweeks, zero on
// a blank, nil when t+1 is outside the player's range or has missing data.
//
// Returns *domain.LeakageError with Component "stage_order" if any row has
// not been through the feature engine.
func (s *Shifter) Apply(p *panel.Panel) error {
	for _, row := range p.Rows {
		if row.Stage != domain.StageFeatures {
			return &domain.LeakageError{
				Key:             row.Key(),
				Component:       "stage_order",
				OffendingGW:     row.Gameweek + 1,
				AllowedBeforeGW: row.Gameweek,
			}
		}
	}

	defined := 0
	for _, row := range p.Rows {
		row.Target = Next(p, row)
		row.Stage = domain.StageTargets
		if row.Target != nil {
			defined++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"season":  p.Season,
		"rows":    len(p.Rows),
		"defined": defined,
	}).Info("attached targets")
	return nil
}

// Next returns the target for row, or nil if undefined.
func Next(p *panel.Panel, row *domain.PanelRow) *domain.Target {
	line := p.Line(row.PlayerID, row.Gameweek+1)
	if line == nil || line.Status == domain.RowMissing {
		return nil
	}
	return &domain.Target{
		Gameweek: row.Gameweek + 1,
		Points:   line.Points,
		Minutes:  line.Minutes,
	}
}
