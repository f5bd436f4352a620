package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// PanelStore implements storage.PanelStore using ClickHouse.
// Window features and risk flags are stored as JSON strings.
type PanelStore struct {
	conn *Conn
}

// NewPanelStore creates a new PanelStore.
func NewPanelStore(conn *Conn) *PanelStore {
	return &PanelStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PanelStore = (*PanelStore)(nil)

const panelColumns = `
	version, season, player_id, gameweek, position, team_id, price, status,
	opponent_team_id, is_home, fixture_difficulty, days_rest, fixture_count, is_blank, is_double,
	observed_minutes, observed_points,
	windows_json, risk_json, target_gameweek, target_points, target_minutes, stage`

// InsertBulk adds rows for a panel version. Fails entire batch on duplicate.
func (s *PanelStore) InsertBulk(ctx context.Context, version string, rows []*domain.PanelRow) error {
	if version == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[domain.PanelKey]struct{}, len(rows))
	seasons := make(map[string]struct{})
	for _, r := range rows {
		if r == nil || r.Season == "" {
			return storage.ErrInvalidInput
		}
		k := r.Key()
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		seasons[r.Season] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for season := range seasons {
		existing, err := s.existingKeys(ctx, version, season)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for k := range existing {
			if _, clash := seen[k]; clash {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO panel_rows (`+panelColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		windowsJSON, err := json.Marshal(r.Windows)
		if err != nil {
			return fmt.Errorf("marshal windows: %w", err)
		}
		riskJSON, err := json.Marshal(r.Risk)
		if err != nil {
			return fmt.Errorf("marshal risk flags: %w", err)
		}

		var targetGW, targetPoints, targetMinutes *int64
		if r.Target != nil {
			gw, pts, mins := int64(r.Target.Gameweek), int64(r.Target.Points), int64(r.Target.Minutes)
			targetGW, targetPoints, targetMinutes = &gw, &pts, &mins
		}

		err = batch.Append(
			version, r.Season, int64(r.PlayerID), int64(r.Gameweek), string(r.Position), int64(r.TeamID), r.Price, string(r.Status),
			int64Ptr(r.OpponentTeamID), r.IsHome, r.FixtureDifficulty, r.DaysRest, int64(r.FixtureCount), r.IsBlank, r.IsDouble,
			int64(r.ObservedMinutes), int64(r.ObservedPoints),
			string(windowsJSON), string(riskJSON), targetGW, targetPoints, targetMinutes, int64(r.Stage),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySeason retrieves a version's rows for a season, ordered by (player_id, gameweek) ASC.
func (s *PanelStore) GetBySeason(ctx context.Context, version, season string) ([]*domain.PanelRow, error) {
	query := `SELECT ` + panelColumns + `
		FROM panel_rows
		WHERE version = ? AND season = ?
		ORDER BY player_id ASC, gameweek ASC`

	rows, err := s.conn.Query(ctx, query, version, season)
	if err != nil {
		return nil, fmt.Errorf("query panel by season: %w", err)
	}
	defer rows.Close()

	return scanPanelRows(rows)
}

// GetByGameweekRange retrieves a version's rows for gameweeks within [from, to] (inclusive).
func (s *PanelStore) GetByGameweekRange(ctx context.Context, version, season string, from, to int) ([]*domain.PanelRow, error) {
	query := `SELECT ` + panelColumns + `
		FROM panel_rows
		WHERE version = ? AND season = ? AND gameweek >= ? AND gameweek <= ?
		ORDER BY player_id ASC, gameweek ASC`

	rows, err := s.conn.Query(ctx, query, version, season, int64(from), int64(to))
	if err != nil {
		return nil, fmt.Errorf("query panel by gameweek range: %w", err)
	}
	defer rows.Close()

	return scanPanelRows(rows)
}

// HasVersion reports whether any row exists for the version.
func (s *PanelStore) HasVersion(ctx context.Context, version string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM panel_rows WHERE version = ?`, version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count panel version: %w", err)
	}
	return count > 0, nil
}

// existingKeys returns the stored keys of a version within one season partition.
func (s *PanelStore) existingKeys(ctx context.Context, version, season string) (map[domain.PanelKey]struct{}, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT player_id, gameweek FROM panel_rows
		WHERE version = ? AND season = ?
	`, version, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[domain.PanelKey]struct{})
	for rows.Next() {
		var playerID, gameweek int64
		if err := rows.Scan(&playerID, &gameweek); err != nil {
			return nil, err
		}
		keys[domain.PanelKey{PlayerID: int(playerID), Season: season, Gameweek: int(gameweek)}] = struct{}{}
	}
	return keys, rows.Err()
}

// scanPanelRows scans multiple rows into a slice of PanelRow.
func scanPanelRows(rows chRows) ([]*domain.PanelRow, error) {
	var result []*domain.PanelRow

	for rows.Next() {
		var (
			r                                      domain.PanelRow
			version, position, status              string
			playerID, gameweek, teamID, fixtureCnt int64
			opponentTeamID                         *int64
			windowsJSON, riskJSON                  string
			targetGW, targetPoints, targetMinutes  *int64
			observedMinutes, observedPoints        int64
			stage                                  int64
		)

		err := rows.Scan(
			&version, &r.Season, &playerID, &gameweek, &position, &teamID, &r.Price, &status,
			&opponentTeamID, &r.IsHome, &r.FixtureDifficulty, &r.DaysRest, &fixtureCnt, &r.IsBlank, &r.IsDouble,
			&observedMinutes, &observedPoints,
			&windowsJSON, &riskJSON, &targetGW, &targetPoints, &targetMinutes, &stage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan panel row: %w", err)
		}

		r.PlayerID = int(playerID)
		r.Gameweek = int(gameweek)
		r.Position = domain.Position(position)
		r.TeamID = int(teamID)
		r.Status = domain.RowStatus(status)
		r.OpponentTeamID = intPtr(opponentTeamID)
		r.FixtureCount = int(fixtureCnt)
		r.ObservedMinutes = int(observedMinutes)
		r.ObservedPoints = int(observedPoints)
		r.Stage = domain.Stage(stage)

		if err := json.Unmarshal([]byte(windowsJSON), &r.Windows); err != nil {
			return nil, fmt.Errorf("unmarshal windows: %w", err)
		}
		if err := json.Unmarshal([]byte(riskJSON), &r.Risk); err != nil {
			return nil, fmt.Errorf("unmarshal risk flags: %w", err)
		}
		if targetGW != nil && targetPoints != nil && targetMinutes != nil {
			r.Target = &domain.Target{
				Gameweek: int(*targetGW),
				Points:   int(*targetPoints),
				Minutes:  int(*targetMinutes),
			}
		}

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate panel rows: %w", err)
	}

	return result, nil
}
