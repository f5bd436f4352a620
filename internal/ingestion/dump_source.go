package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fpl-points-lab/internal/storage"
)

// DumpSource reads FPL API dumps from a directory:
//
//	bootstrap-static_<season>.json
//	fixtures_<season>.json
//	all_players_data_<season>.json  (or element-summary_<season>/<id>.json)
//
// Implements SeasonSource.
type DumpSource struct {
	dir     string
	workers int
	now     func() time.Time
}

// DumpSourceOption configures a DumpSource.
type DumpSourceOption func(*DumpSource)

// WithWorkers bounds concurrent element-summary reads.
func WithWorkers(n int) DumpSourceOption {
	return func(s *DumpSource) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewDumpSource creates a source over dir.
func NewDumpSource(dir string, opts ...DumpSourceOption) *DumpSource {
	s := &DumpSource{dir: dir, workers: 8, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and transforms one season's dump. The availability snapshot time
// is the modification time of the bootstrap file.
func (s *DumpSource) Load(ctx context.Context, season string) (*storage.SeasonRaw, error) {
	dump, err := s.ReadDump(ctx, season)
	if err != nil {
		return nil, err
	}
	return Transform(dump)
}

// ReadDump decodes the season's files without transforming them.
func (s *DumpSource) ReadDump(ctx context.Context, season string) (*Dump, error) {
	bootstrapPath := filepath.Join(s.dir, fmt.Sprintf("bootstrap-static_%s.json", season))
	var bootstrap Bootstrap
	if err := readJSON(bootstrapPath, &bootstrap); err != nil {
		return nil, err
	}
	snapshotAt := s.now()
	if info, err := os.Stat(bootstrapPath); err == nil {
		snapshotAt = info.ModTime()
	}

	var fixtures []Fixture
	if err := readJSON(filepath.Join(s.dir, fmt.Sprintf("fixtures_%s.json", season)), &fixtures); err != nil {
		return nil, err
	}

	histories, err := s.readHistories(ctx, season)
	if err != nil {
		return nil, err
	}

	return &Dump{
		Season:     season,
		Bootstrap:  &bootstrap,
		Fixtures:   fixtures,
		Histories:  histories,
		SnapshotAt: snapshotAt,
	}, nil
}

func (s *DumpSource) readHistories(ctx context.Context, season string) ([]PlayerHistory, error) {
	combined := filepath.Join(s.dir, fmt.Sprintf("all_players_data_%s.json", season))
	if _, err := os.Stat(combined); err == nil {
		var all AllPlayers
		if err := readJSON(combined, &all); err != nil {
			return nil, err
		}
		return all.Players, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", combined, err)
	}

	dir := filepath.Join(s.dir, fmt.Sprintf("element-summary_%s", season))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no player histories for %s: %w", season, err)
	}

	var ids []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, fmt.Errorf("element summary %s: file name is not a player id", name)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]PlayerHistory, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var summary ElementSummary
			if err := readJSON(filepath.Join(dir, strconv.Itoa(id)+".json"), &summary); err != nil {
				return err
			}
			out[i] = PlayerHistory{PlayerID: id, Data: summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var _ SeasonSource = (*DumpSource)(nil)
