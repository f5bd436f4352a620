package panel

import (
	"strconv"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/idhash"
)

// Fingerprint hashes the rows' keys, metadata, features and targets in order.
// Equal fingerprints mean byte-identical panels.
func Fingerprint(rows []*domain.PanelRow, windows []int) string {
	fp := idhash.NewFingerprint()
	fp.Add(FeatureColumns(windows)...)

	for _, r := range rows {
		fields := []string{
			strconv.Itoa(r.PlayerID),
			r.Season,
			strconv.Itoa(r.Gameweek),
			string(r.Position),
			strconv.Itoa(r.TeamID),
			string(r.Status),
			optInt(r.OpponentTeamID),
			strconv.Itoa(r.ObservedMinutes),
			strconv.Itoa(r.ObservedPoints),
		}
		for _, v := range FeatureVector(r, windows) {
			fields = append(fields, FormatFloat(v))
		}
		if r.Target != nil {
			fields = append(fields,
				strconv.Itoa(r.Target.Gameweek),
				strconv.Itoa(r.Target.Points),
				strconv.Itoa(r.Target.Minutes),
			)
		} else {
			fields = append(fields, "", "", "")
		}
		fp.Add(fields...)
	}

	return fp.Sum()
}

// FormatFloat renders an optional value with the shortest exact
// representation; nil renders empty.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
