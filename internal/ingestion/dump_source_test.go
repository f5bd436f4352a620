package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeBaseDump(t *testing.T, dir, season string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "bootstrap-static_"+season+".json"), testBootstrapJSON)
	writeFile(t, filepath.Join(dir, "fixtures_"+season+".json"), testFixturesJSON)
}

func TestDumpSource_AllPlayersFile(t *testing.T) {
	dir := t.TempDir()
	writeBaseDump(t, dir, "2024-25")
	writeFile(t, filepath.Join(dir, "all_players_data_2024-25.json"), fmt.Sprintf(
		`{"players": [{"player_id": 101, "data": %s}, {"player_id": 201, "data": %s}]}`,
		testHistory101JSON, testHistory201JSON))

	raw, err := NewDumpSource(dir).Load(context.Background(), "2024-25")
	require.NoError(t, err)

	assert.Equal(t, "2024-25", raw.Season)
	assert.Len(t, raw.Fixtures, 4)
	assert.Len(t, raw.MatchStats, 4)
	assert.Len(t, raw.TeamStats, 4)
	require.Len(t, raw.Availability, 2)

	info, err := os.Stat(filepath.Join(dir, "bootstrap-static_2024-25.json"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime().UnixMilli(), raw.Availability[0].SnapshotAtMs)
}

func TestDumpSource_ElementSummaryDir(t *testing.T) {
	dir := t.TempDir()
	writeBaseDump(t, dir, "2024-25")
	writeFile(t, filepath.Join(dir, "element-summary_2024-25", "101.json"), testHistory101JSON)
	writeFile(t, filepath.Join(dir, "element-summary_2024-25", "201.json"), testHistory201JSON)
	writeFile(t, filepath.Join(dir, "element-summary_2024-25", "README.txt"), "ignored")

	dump, err := NewDumpSource(dir, WithWorkers(2)).ReadDump(context.Background(), "2024-25")
	require.NoError(t, err)

	require.Len(t, dump.Histories, 2)
	assert.Equal(t, 101, dump.Histories[0].PlayerID)
	assert.Equal(t, 201, dump.Histories[1].PlayerID)
	assert.Len(t, dump.Histories[1].Data.History, 2)
}

func TestDumpSource_BadSummaryName(t *testing.T) {
	dir := t.TempDir()
	writeBaseDump(t, dir, "2024-25")
	writeFile(t, filepath.Join(dir, "element-summary_2024-25", "keeper.json"), testHistory201JSON)

	_, err := NewDumpSource(dir).Load(context.Background(), "2024-25")
	assert.Error(t, err)
}

func TestDumpSource_MissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDumpSource(dir).Load(context.Background(), "2024-25")
	assert.Error(t, err)

	writeBaseDump(t, dir, "2024-25")
	_, err = NewDumpSource(dir).Load(context.Background(), "2024-25")
	assert.Error(t, err, "player histories are required")
}

func TestDumpSource_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeBaseDump(t, dir, "2024-25")
	writeFile(t, filepath.Join(dir, "element-summary_2024-25", "101.json"), `{"history": [`)

	_, err := NewDumpSource(dir).Load(context.Background(), "2024-25")
	assert.Error(t, err)
}
