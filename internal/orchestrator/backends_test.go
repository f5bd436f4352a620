package orchestrator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/config"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/storage/memory"
	"fpl-points-lab/internal/storage/sqlite"
)

func TestOpenBackends_DemoWithRegistry(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.General.Season = testSeason
	cfg.General.OutputDir = t.TempDir()
	cfg.Storage.RegistryPath = filepath.Join(t.TempDir(), "registry.db")

	b, err := OpenBackends(ctx, cfg, SourceDemo, logging.Discard())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.PanelStore{}, b.Panel)
	assert.IsType(t, &memory.SplitMetricsStore{}, b.Splits)
	assert.IsType(t, &sqlite.RunStore{}, b.Runs)

	stats, err := b.Raw.MatchStats.GetBySeason(ctx, testSeason)
	require.NoError(t, err)
	assert.NotEmpty(t, stats)

	opts := Options{
		RawStores:   b.Raw,
		SplitStore:  b.Splits,
		PanelStore:  b.Panel,
		RunStore:    b.Runs,
		Windows:     cfg.Panel.Windows,
		Models:      cfg.Backtest.Models,
		StartCutoff: cfg.Backtest.StartCutoff,
		Workers:     cfg.Backtest.Workers,
		OutputDir:   cfg.General.OutputDir,
		Logger:      logging.Discard(),
	}
	orch, err := New(opts)
	require.NoError(t, err)

	result, err := orch.Run(ctx, testSeason)
	require.NoError(t, err)

	registered, err := b.Runs.GetByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.OutputDir, registered.OutputDir)
}

func TestOpenBackends_Errors(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.General.Season = testSeason
	cfg.Storage.RegistryPath = ""

	_, err := OpenBackends(ctx, cfg, SourcePostgres, logging.Discard())
	assert.Error(t, err, "postgres source without DSN")

	_, err = OpenBackends(ctx, cfg, Source("s3"), logging.Discard())
	assert.Error(t, err)

	cfg.General.DataDir = t.TempDir()
	_, err = OpenBackends(ctx, cfg, SourceDumps, logging.Discard())
	assert.Error(t, err, "empty dump directory")
}

func TestOpenBackends_MemoryRegistry(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.Season = testSeason
	cfg.Storage.RegistryPath = ""

	b, err := OpenBackends(context.Background(), cfg, SourceDemo, logging.Discard())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.RunStore{}, b.Runs)
}
