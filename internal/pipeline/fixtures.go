package pipeline

import (
	"context"
	"fmt"

	"fpl-points-lab/internal/storage"
)

// LoadFixtures populates raw stores with a season's rows.
// Used with fixtures.DemoSeason for demonstration runs and tests.
func LoadFixtures(ctx context.Context, stores *storage.RawStores, raw *storage.SeasonRaw) error {
	if err := stores.Fixtures.InsertBulk(ctx, raw.Fixtures); err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	if err := stores.MatchStats.InsertBulk(ctx, raw.MatchStats); err != nil {
		return fmt.Errorf("load match stats: %w", err)
	}
	if err := stores.TeamStats.InsertBulk(ctx, raw.TeamStats); err != nil {
		return fmt.Errorf("load team stats: %w", err)
	}
	if stores.Availability != nil {
		if err := stores.Availability.InsertBulk(ctx, raw.Availability); err != nil {
			return fmt.Errorf("load availability: %w", err)
		}
	}
	if stores.Corrections != nil {
		for _, c := range raw.Corrections {
			if err := stores.Corrections.Insert(ctx, c); err != nil {
				return fmt.Errorf("load correction %s: %w", c.CorrectionID, err)
			}
		}
	}
	return nil
}
