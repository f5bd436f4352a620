package panel

import (
	"fmt"
	"math"
	"sort"

	"fpl-points-lab/internal/domain"
)

// ApplyCorrections returns copies of rows with corrections overlaid in
// (recorded_at, correction_id) order. Input rows are not modified.
// A correction whose match row does not exist is a SchemaError.
func ApplyCorrections(rows []*domain.MatchStatRaw, corrections []*domain.StatCorrection) ([]*domain.MatchStatRaw, error) {
	out := make([]*domain.MatchStatRaw, len(rows))
	byKey := make(map[domain.MatchStatKey]*domain.MatchStatRaw, len(rows))
	for i, r := range rows {
		c := *r
		out[i] = &c
		byKey[c.Key()] = &c
	}

	if len(corrections) == 0 {
		return out, nil
	}

	ordered := make([]*domain.StatCorrection, len(corrections))
	copy(ordered, corrections)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].RecordedAtMs != ordered[j].RecordedAtMs {
			return ordered[i].RecordedAtMs < ordered[j].RecordedAtMs
		}
		return ordered[i].CorrectionID < ordered[j].CorrectionID
	})

	for _, c := range ordered {
		key := domain.MatchStatKey{PlayerID: c.PlayerID, Season: c.Season, Gameweek: c.Gameweek, MatchID: c.MatchID}
		row, ok := byKey[key]
		if !ok {
			return nil, &domain.SchemaError{
				Key:    domain.PanelKey{PlayerID: c.PlayerID, Season: c.Season, Gameweek: c.Gameweek},
				Detail: fmt.Sprintf("correction %s references unknown match %d", c.CorrectionID, c.MatchID),
			}
		}
		if err := applyCorrection(row, c); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func applyCorrection(row *domain.MatchStatRaw, c *domain.StatCorrection) error {
	n := int(math.Round(c.NewValue))
	switch c.Field {
	case domain.FieldMinutes:
		row.Minutes = n
	case domain.FieldTotalPoints:
		row.TotalPoints = n
	case domain.FieldGoalsScored:
		row.GoalsScored = n
	case domain.FieldAssists:
		row.Assists = n
	case domain.FieldBonus:
		row.Bonus = n
	case domain.FieldBPS:
		row.BPS = n
	case domain.FieldRedCards:
		row.RedCards = n
	case domain.FieldXG:
		v := c.NewValue
		row.XG = &v
	case domain.FieldXA:
		v := c.NewValue
		row.XA = &v
	case domain.FieldShots:
		row.Shots = &n
	case domain.FieldKeyPasses:
		row.KeyPasses = &n
	default:
		return &domain.SchemaError{
			Key:    domain.PanelKey{PlayerID: c.PlayerID, Season: c.Season, Gameweek: c.Gameweek},
			Detail: fmt.Sprintf("correction %s targets unsupported field %q", c.CorrectionID, c.Field),
		}
	}
	return nil
}
