package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// FixtureStore implements storage.FixtureStore using PostgreSQL.
type FixtureStore struct {
	pool *Pool
}

// NewFixtureStore creates a new FixtureStore.
func NewFixtureStore(pool *Pool) *FixtureStore {
	return &FixtureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FixtureStore = (*FixtureStore)(nil)

// InsertBulk adds multiple fixtures atomically. Fails entire batch on any duplicate.
func (s *FixtureStore) InsertBulk(ctx context.Context, fixtures []*domain.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO fixtures (
			season, gameweek, match_id, team_id, opponent_team_id, is_home, difficulty,
			kickoff_ms, finished, team_score, opponent_score, days_rest, is_double_gw
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, f := range fixtures {
		_, err := tx.Exec(ctx, query,
			f.Season, f.Gameweek, f.MatchID, f.TeamID, f.OpponentTeamID, f.IsHome, f.Difficulty,
			f.KickoffMs, f.Finished, f.TeamScore, f.OpponentScore, f.DaysRest, f.IsDoubleGW,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert fixture in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeason retrieves all fixtures of a season, ordered by (team_id, gameweek, kickoff, match_id) ASC.
func (s *FixtureStore) GetBySeason(ctx context.Context, season string) ([]*domain.Fixture, error) {
	query := `
		SELECT season, gameweek, match_id, team_id, opponent_team_id, is_home, difficulty,
			kickoff_ms, finished, team_score, opponent_score, days_rest, is_double_gw
		FROM fixtures
		WHERE season = $1
		ORDER BY team_id ASC, gameweek ASC, kickoff_ms ASC, match_id ASC
	`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("get fixtures by season: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

// ListSeasons returns all seasons with at least one fixture, ascending.
func (s *FixtureStore) ListSeasons(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT season FROM fixtures ORDER BY season ASC`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var season string
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w", err)
	}

	return seasons, nil
}

// scanFixtures scans multiple rows into a slice of Fixture.
func scanFixtures(rows pgx.Rows) ([]*domain.Fixture, error) {
	var result []*domain.Fixture

	for rows.Next() {
		var f domain.Fixture

		err := rows.Scan(
			&f.Season, &f.Gameweek, &f.MatchID, &f.TeamID, &f.OpponentTeamID, &f.IsHome, &f.Difficulty,
			&f.KickoffMs, &f.Finished, &f.TeamScore, &f.OpponentScore, &f.DaysRest, &f.IsDoubleGW,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fixture row: %w", err)
		}

		result = append(result, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixture rows: %w", err)
	}

	return result, nil
}
