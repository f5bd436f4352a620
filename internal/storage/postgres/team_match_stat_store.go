package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// TeamMatchStatStore implements storage.TeamMatchStatStore using PostgreSQL.
type TeamMatchStatStore struct {
	pool *Pool
}

// NewTeamMatchStatStore creates a new TeamMatchStatStore.
func NewTeamMatchStatStore(pool *Pool) *TeamMatchStatStore {
	return &TeamMatchStatStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TeamMatchStatStore = (*TeamMatchStatStore)(nil)

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *TeamMatchStatStore) InsertBulk(ctx context.Context, rows []*domain.TeamMatchStat) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO team_match_stats (
			team_id, season, gameweek, match_id, opponent_team_id, was_home,
			goals_scored, goals_conceded, clean_sheet, total_points, bps, xg, xga
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, r := range rows {
		_, err := tx.Exec(ctx, query,
			r.TeamID, r.Season, r.Gameweek, r.MatchID, r.OpponentTeamID, r.WasHome,
			r.GoalsScored, r.GoalsConceded, r.CleanSheet, r.TotalPoints, r.BPS, r.XG, r.XGA,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert team match stat in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeason retrieves all rows of a season, ordered by (team_id, gameweek, match_id) ASC.
func (s *TeamMatchStatStore) GetBySeason(ctx context.Context, season string) ([]*domain.TeamMatchStat, error) {
	query := `
		SELECT team_id, season, gameweek, match_id, opponent_team_id, was_home,
			goals_scored, goals_conceded, clean_sheet, total_points, bps, xg, xga
		FROM team_match_stats
		WHERE season = $1
		ORDER BY team_id ASC, gameweek ASC, match_id ASC
	`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("get team match stats by season: %w", err)
	}
	defer rows.Close()

	return scanTeamMatchStats(rows)
}

// scanTeamMatchStats scans multiple rows into a slice of TeamMatchStat.
func scanTeamMatchStats(rows pgx.Rows) ([]*domain.TeamMatchStat, error) {
	var result []*domain.TeamMatchStat

	for rows.Next() {
		var r domain.TeamMatchStat

		err := rows.Scan(
			&r.TeamID, &r.Season, &r.Gameweek, &r.MatchID, &r.OpponentTeamID, &r.WasHome,
			&r.GoalsScored, &r.GoalsConceded, &r.CleanSheet, &r.TotalPoints, &r.BPS, &r.XG, &r.XGA,
		)
		if err != nil {
			return nil, fmt.Errorf("scan team match stat row: %w", err)
		}

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team match stat rows: %w", err)
	}

	return result, nil
}
