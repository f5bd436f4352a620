package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
)

// RenderPanelCSV renders panel rows as CSV: keys, metadata, the flat feature
// vector for windows, observed values and targets. Null values are empty.
func RenderPanelCSV(rows []*domain.PanelRow, windows []int) string {
	var sb strings.Builder

	header := []string{"player_id", "season", "gameweek", "position", "team_id", "status", "opponent_team_id"}
	header = append(header, panel.FeatureColumns(windows)...)
	header = append(header, "observed_minutes", "observed_points", "target_gameweek", "next_points", "next_minutes")
	sb.WriteString(strings.Join(header, ","))
	sb.WriteString("\n")

	for _, r := range rows {
		fields := []string{
			strconv.Itoa(r.PlayerID),
			r.Season,
			strconv.Itoa(r.Gameweek),
			string(r.Position),
			strconv.Itoa(r.TeamID),
			string(r.Status),
			optInt(r.OpponentTeamID),
		}
		for _, v := range panel.FeatureVector(r, windows) {
			fields = append(fields, panel.FormatFloat(v))
		}
		fields = append(fields, strconv.Itoa(r.ObservedMinutes), strconv.Itoa(r.ObservedPoints))
		if r.Target != nil {
			fields = append(fields,
				strconv.Itoa(r.Target.Gameweek),
				strconv.Itoa(r.Target.Points),
				strconv.Itoa(r.Target.Minutes))
		} else {
			fields = append(fields, "", "", "")
		}
		sb.WriteString(strings.Join(fields, ","))
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderSplitMetricsCSV renders split results as CSV string.
func RenderSplitMetricsCSV(rows []SplitMetricRow) string {
	var sb strings.Builder

	sb.WriteString("model,cutoff,test_gameweek,train_rows,test_rows,mae,rmse,spearman,minutes_mae,minutes_calibration\n")
	for _, m := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%.6f,%.6f,%s,%s,%s\n",
			m.Model,
			m.Cutoff,
			m.TestGameweek,
			m.TrainRows,
			m.TestRows,
			m.MAE,
			m.RMSE,
			csvFloat(m.Spearman),
			csvFloat(m.MinutesMAE),
			csvFloat(m.MinutesCalibration),
		))
	}

	return sb.String()
}

// RenderPredictionsCSV renders predictions as CSV string in the given order.
func RenderPredictionsCSV(preds []*domain.Prediction) string {
	var sb strings.Builder

	sb.WriteString("model,player_id,season,gameweek,target_gameweek,predicted_points,predicted_minutes\n")
	for _, p := range preds {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%d,%d,%.6f,%s\n",
			p.Model,
			p.PlayerID,
			p.Season,
			p.Gameweek,
			p.Gameweek+1,
			p.Points,
			csvFloat(p.Minutes),
		))
	}

	return sb.String()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
