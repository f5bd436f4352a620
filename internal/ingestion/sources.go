package ingestion

import (
	"context"

	"fpl-points-lab/internal/storage"
)

// SeasonSource provides one season's raw tables from an external source.
type SeasonSource interface {
	// Load returns every raw row of a season. Rows may be unordered;
	// Manager enforces deterministic ordering.
	Load(ctx context.Context, season string) (*storage.SeasonRaw, error)
}
