package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/observability"
	"fpl-points-lab/internal/storage"
)

// Manager moves one season from a source into raw storage.
// It enforces deterministic ordering and relies on the storage layer for
// duplicate rejection.
type Manager struct {
	source SeasonSource
	stores *storage.RawStores
	log    logrus.FieldLogger
	now    func() time.Time
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source SeasonSource
	Stores *storage.RawStores
	Logger logrus.FieldLogger
	Clock  func() time.Time
}

// Counts reports rows written per raw table.
type Counts struct {
	MatchStats   int
	TeamStats    int
	Fixtures     int
	Availability int
	Corrections  int
}

// NewManager creates a new ingestion manager with the provided source and stores.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		source: opts.Source,
		stores: opts.Stores,
		log:    opts.Logger,
		now:    opts.Clock,
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Ingest loads a season from the source and stores every raw table.
// Each table is written with one InsertBulk call, so a re-ingest of the same
// season fails with storage.ErrDuplicateKey on the first table.
func (m *Manager) Ingest(ctx context.Context, season string) (*Counts, error) {
	if m.source == nil || m.stores == nil {
		return nil, errors.New("ingestion manager requires a source and stores")
	}
	log := m.log.WithField("season", season)

	raw, err := m.source.Load(ctx, season)
	if err != nil {
		observability.RecordIngestError("source")
		return nil, fmt.Errorf("load season %s: %w", season, err)
	}

	SortMatchStats(raw.MatchStats)
	SortFixtures(raw.Fixtures)
	SortTeamStats(raw.TeamStats)
	SortAvailability(raw.Availability)

	counts := &Counts{}

	if len(raw.Fixtures) > 0 {
		if err := m.stores.Fixtures.InsertBulk(ctx, raw.Fixtures); err != nil {
			return nil, m.storeError("fixtures", err)
		}
		counts.Fixtures = len(raw.Fixtures)
	}
	if len(raw.MatchStats) > 0 {
		if err := m.stores.MatchStats.InsertBulk(ctx, raw.MatchStats); err != nil {
			return nil, m.storeError("match_stats", err)
		}
		counts.MatchStats = len(raw.MatchStats)
	}
	if len(raw.TeamStats) > 0 {
		if err := m.stores.TeamStats.InsertBulk(ctx, raw.TeamStats); err != nil {
			return nil, m.storeError("team_match_stats", err)
		}
		counts.TeamStats = len(raw.TeamStats)
	}
	if len(raw.Availability) > 0 && m.stores.Availability != nil {
		if err := m.stores.Availability.InsertBulk(ctx, raw.Availability); err != nil {
			return nil, m.storeError("player_availability", err)
		}
		counts.Availability = len(raw.Availability)
	}
	if m.stores.Corrections != nil {
		for _, c := range raw.Corrections {
			err := m.stores.Corrections.Insert(ctx, c)
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			if err != nil {
				return nil, m.storeError("stat_corrections", err)
			}
			counts.Corrections++
		}
	}

	observability.RecordRawRows("fixtures", counts.Fixtures)
	observability.RecordRawRows("match_stats", counts.MatchStats)
	observability.RecordRawRows("team_match_stats", counts.TeamStats)
	observability.RecordRawRows("player_availability", counts.Availability)
	observability.RecordRawRows("stat_corrections", counts.Corrections)
	observability.MarkIngestionSuccess(m.now().Unix())

	log.WithFields(logrus.Fields{
		"fixtures":     counts.Fixtures,
		"match_stats":  counts.MatchStats,
		"team_stats":   counts.TeamStats,
		"availability": counts.Availability,
		"corrections":  counts.Corrections,
	}).Info("Season ingested")

	return counts, nil
}

func (m *Manager) storeError(table string, err error) error {
	observability.RecordIngestError(table)
	return fmt.Errorf("store %s: %w", table, err)
}
