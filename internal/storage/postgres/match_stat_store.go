package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// MatchStatStore implements storage.MatchStatStore using PostgreSQL.
type MatchStatStore struct {
	pool *Pool
}

// NewMatchStatStore creates a new MatchStatStore.
func NewMatchStatStore(pool *Pool) *MatchStatStore {
	return &MatchStatStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MatchStatStore = (*MatchStatStore)(nil)

const matchStatColumns = `
	player_id, season, gameweek, match_id, team_id, opponent_team_id, was_home, kickoff_ms, position,
	minutes, total_points, goals_scored, assists, clean_sheets, goals_conceded, own_goals,
	penalties_saved, penalties_missed, yellow_cards, red_cards, saves, bonus, bps,
	influence, creativity, threat, ict_index,
	value, transfers_balance, selected, transfers_in, transfers_out,
	xg, xa, shots, key_passes`

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *MatchStatStore) InsertBulk(ctx context.Context, rows []*domain.MatchStatRaw) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO player_match_stats_raw (` + matchStatColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9,
		$10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23,
		$24, $25, $26, $27,
		$28, $29, $30, $31, $32,
		$33, $34, $35, $36
	)`

	for _, r := range rows {
		_, err := tx.Exec(ctx, query,
			r.PlayerID, r.Season, r.Gameweek, r.MatchID, r.TeamID, r.OpponentTeamID, r.WasHome, r.KickoffMs, string(r.Position),
			r.Minutes, r.TotalPoints, r.GoalsScored, r.Assists, r.CleanSheets, r.GoalsConceded, r.OwnGoals,
			r.PenaltiesSaved, r.PenaltiesMissed, r.YellowCards, r.RedCards, r.Saves, r.Bonus, r.BPS,
			r.Influence, r.Creativity, r.Threat, r.ICTIndex,
			r.Value, r.TransfersBalance, r.Selected, r.TransfersIn, r.TransfersOut,
			r.XG, r.XA, r.Shots, r.KeyPasses,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert match stat in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeason retrieves all rows of a season, ordered by (player_id, gameweek, kickoff, match_id) ASC.
func (s *MatchStatStore) GetBySeason(ctx context.Context, season string) ([]*domain.MatchStatRaw, error) {
	query := `SELECT ` + matchStatColumns + `
		FROM player_match_stats_raw
		WHERE season = $1
		ORDER BY player_id ASC, gameweek ASC, kickoff_ms ASC, match_id ASC`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("get match stats by season: %w", err)
	}
	defer rows.Close()

	return scanMatchStats(rows)
}

// GetByPlayer retrieves one player's rows in a season, ordered by (gameweek, kickoff, match_id) ASC.
func (s *MatchStatStore) GetByPlayer(ctx context.Context, season string, playerID int) ([]*domain.MatchStatRaw, error) {
	query := `SELECT ` + matchStatColumns + `
		FROM player_match_stats_raw
		WHERE season = $1 AND player_id = $2
		ORDER BY gameweek ASC, kickoff_ms ASC, match_id ASC`

	rows, err := s.pool.Query(ctx, query, season, playerID)
	if err != nil {
		return nil, fmt.Errorf("get match stats by player: %w", err)
	}
	defer rows.Close()

	return scanMatchStats(rows)
}

// scanMatchStats scans multiple rows into a slice of MatchStatRaw.
func scanMatchStats(rows pgx.Rows) ([]*domain.MatchStatRaw, error) {
	var result []*domain.MatchStatRaw

	for rows.Next() {
		var r domain.MatchStatRaw
		var position string

		err := rows.Scan(
			&r.PlayerID, &r.Season, &r.Gameweek, &r.MatchID, &r.TeamID, &r.OpponentTeamID, &r.WasHome, &r.KickoffMs, &position,
			&r.Minutes, &r.TotalPoints, &r.GoalsScored, &r.Assists, &r.CleanSheets, &r.GoalsConceded, &r.OwnGoals,
			&r.PenaltiesSaved, &r.PenaltiesMissed, &r.YellowCards, &r.RedCards, &r.Saves, &r.Bonus, &r.BPS,
			&r.Influence, &r.Creativity, &r.Threat, &r.ICTIndex,
			&r.Value, &r.TransfersBalance, &r.Selected, &r.TransfersIn, &r.TransfersOut,
			&r.XG, &r.XA, &r.Shots, &r.KeyPasses,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match stat row: %w", err)
		}
		r.Position = domain.Position(position)

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match stat rows: %w", err)
	}

	return result, nil
}
