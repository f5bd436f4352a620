package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/config"
	"fpl-points-lab/internal/fixtures"
	"fpl-points-lab/internal/ingestion"
	"fpl-points-lab/internal/pipeline"
	"fpl-points-lab/internal/storage"
	chstore "fpl-points-lab/internal/storage/clickhouse"
	"fpl-points-lab/internal/storage/memory"
	"fpl-points-lab/internal/storage/migrations"
	pgstore "fpl-points-lab/internal/storage/postgres"
	"fpl-points-lab/internal/storage/sqlite"
)

// Source selects where raw tables come from.
type Source string

const (
	SourcePostgres Source = "postgres" // raw tables already ingested
	SourceDumps    Source = "dumps"    // FPL JSON dumps under general.data_dir, loaded into memory
	SourceDemo     Source = "demo"     // deterministic demo season, loaded into memory
)

// DemoGameweeks is the length of the demo season.
const DemoGameweeks = 12

// Backends holds the opened stores of one process.
type Backends struct {
	Raw    *storage.RawStores
	Panel  storage.PanelStore
	Splits storage.SplitMetricsStore
	Runs   storage.RunStore

	closers []func()
}

// Close releases every connection in reverse open order.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// OpenBackends opens raw stores per source, ClickHouse panel and split
// stores when a DSN is configured (memory otherwise) and the SQLite run
// registry when a path is configured.
func OpenBackends(ctx context.Context, cfg *config.Config, source Source, logger logrus.FieldLogger) (*Backends, error) {
	b := &Backends{}
	log := logger.WithField("source", string(source))

	switch source {
	case SourcePostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, fmt.Errorf("source %s requires storage.postgres_dsn", source)
		}
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			b.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		b.Raw = pool.RawStores()

	case SourceDumps:
		b.Raw = memory.NewRawStores()
		mgr := ingestion.NewManager(ingestion.ManagerOptions{
			Source: ingestion.NewDumpSource(cfg.General.DataDir),
			Stores: b.Raw,
			Logger: log,
		})
		if _, err := mgr.Ingest(ctx, cfg.General.Season); err != nil {
			return nil, err
		}

	case SourceDemo:
		b.Raw = memory.NewRawStores()
		if err := pipeline.LoadFixtures(ctx, b.Raw, fixtures.DemoSeason(cfg.General.Season, DemoGameweeks)); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		b.closers = append(b.closers, func() { _ = conn.Close() })
		b.Panel = chstore.NewPanelStore(conn)
		b.Splits = chstore.NewSplitMetricsStore(conn)
		log.Info("Using ClickHouse for panel and split metrics")
	} else {
		b.Panel = memory.NewPanelStore()
		b.Splits = memory.NewSplitMetricsStore()
	}

	if cfg.Storage.RegistryPath != "" {
		db, err := sqlite.Open(cfg.Storage.RegistryPath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := db.Migrate(); err != nil {
			b.Close()
			return nil, err
		}
		b.Runs = sqlite.NewRunStore(db)
	} else {
		b.Runs = memory.NewRunStore()
	}

	return b, nil
}
