package features

import (
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
)

// riskFlags maps the row's pre-deadline availability snapshot and the
// previous gameweek's red cards into flags.
func (e *Engine) riskFlags(p *panel.Panel, row *domain.PanelRow) (domain.RiskFlags, error) {
	var rf domain.RiskFlags
	key := row.Key()

	if prev := p.Line(row.PlayerID, row.Gameweek-1); prev != nil && prev.Status != domain.RowMissing {
		if err := checkBefore(key, "red_card", []int{prev.Gameweek}); err != nil {
			return rf, err
		}
		red := prev.RedCards > 0
		rf.RedCardLastGW = &red
	}

	a := p.Availability(key)
	if a == nil {
		return rf, nil
	}

	if e.checkAvailability {
		if fs := p.Fixtures(row.TeamID, row.Gameweek); len(fs) > 0 && fs[0].KickoffMs > 0 && a.SnapshotAtMs >= fs[0].KickoffMs {
			return rf, &domain.LeakageError{
				Key:             key,
				Component:       "availability",
				OffendingGW:     row.Gameweek,
				AllowedBeforeGW: row.Gameweek,
			}
		}
	}

	rf.Known = true
	switch a.Status {
	case domain.StatusInjured:
		rf.Injured = true
	case domain.StatusSuspended:
		rf.Suspended = true
	case domain.StatusDoubtful:
		rf.Doubtful = true
	case domain.StatusUnavailable, domain.StatusNotInSquad:
		rf.Unavailable = true
	}
	if a.ChanceOfPlaying != nil {
		c := *a.ChanceOfPlaying
		rf.ChanceOfPlaying = &c
	}
	return rf, nil
}
