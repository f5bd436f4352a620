package domain

// RowStatus describes what a player's gameweek looked like.
type RowStatus string

const (
	RowPlayed  RowStatus = "PLAYED"  // team had a fixture and raw stats exist
	RowBlank   RowStatus = "BLANK"   // team had no fixture in the gameweek
	RowMissing RowStatus = "MISSING" // team had a fixture but raw stats are absent
)

// Stage tracks how far a PanelRow has progressed through the pipeline.
// Features must be computed before targets are attached.
type Stage int

const (
	StageBuilt Stage = iota + 1
	StageFeatures
	StageTargets
)

// PanelKey is the composite key of a PanelRow.
type PanelKey struct {
	PlayerID int
	Season   string
	Gameweek int
}

// GameweekLine is a player's observed statistics for one gameweek,
// summed over all matches in that gameweek (double gameweeks).
// Blank gameweeks carry zero counts and nil advanced stats.
type GameweekLine struct {
	PlayerID int
	Season   string
	Gameweek int
	Status   RowStatus
	Matches  int

	Minutes  int
	Points   int
	Goals    int
	Assists  int
	Bonus    int
	BPS      int
	RedCards int

	XG        *float64 // nil if no match in the gameweek reported it
	XA        *float64
	Shots     *int
	KeyPasses *int
}

// PlayerForm holds rolling means of a player's prior gameweeks.
// A nil mean means no contributing data (never zero-filled).
type PlayerForm struct {
	SampleSize int   `json:"sample_size"`
	Gameweeks  []int `json:"gameweeks"` // contributing gameweeks, ascending

	Minutes   *float64 `json:"minutes"`
	Points    *float64 `json:"points"`
	Goals     *float64 `json:"goals"`
	Assists   *float64 `json:"assists"`
	Bonus     *float64 `json:"bonus"`
	BPS       *float64 `json:"bps"`
	XG        *float64 `json:"xg"`
	XA        *float64 `json:"xa"`
	Shots     *float64 `json:"shots"`
	KeyPasses *float64 `json:"key_passes"`
}

// TeamForm holds rolling per-match means of a team's prior matches.
type TeamForm struct {
	SampleSize int   `json:"sample_size"` // number of matches
	Gameweeks  []int `json:"gameweeks"`   // contributing gameweeks, ascending

	GoalsScored    *float64 `json:"goals_scored"`
	GoalsConceded  *float64 `json:"goals_conceded"`
	XG             *float64 `json:"xg"`
	XGA            *float64 `json:"xga"`
	CleanSheetRate *float64 `json:"clean_sheet_rate"`
}

// WindowFeatures groups all rolling aggregates for one window size.
type WindowFeatures struct {
	Size     int        `json:"size"`
	Player   PlayerForm `json:"player"`
	Team     TeamForm   `json:"team"`
	Opponent TeamForm   `json:"opponent"`
}

// RiskFlags are availability indicators known before kickoff.
type RiskFlags struct {
	Known           bool  `json:"known"` // an availability snapshot existed
	Injured         bool  `json:"injured"`
	Suspended       bool  `json:"suspended"`
	Doubtful        bool  `json:"doubtful"`
	Unavailable     bool  `json:"unavailable"`
	ChanceOfPlaying *int  `json:"chance_of_playing"`
	RedCardLastGW   *bool `json:"red_card_last_gw"` // nil if no prior gameweek
}

// Target is the forward-shifted prediction target of a PanelRow.
type Target struct {
	Gameweek int `json:"gameweek"` // always row gameweek + 1
	Points   int `json:"points"`
	Minutes  int `json:"minutes"`
}

// PanelRow is one (player, season, gameweek) row of the modelling panel.
// Every feature is computed from gameweeks strictly before Gameweek.
// Corresponds to panel_rows table in ClickHouse.
type PanelRow struct {
	PlayerID int
	Season   string
	Gameweek int

	// Metadata
	Position Position
	TeamID   int
	Price    float64 // millions, carried forward on blank/missing gameweeks
	Status   RowStatus

	// Fixture context (nil on blank gameweeks)
	OpponentTeamID    *int
	IsHome            *bool
	FixtureDifficulty *float64 // mean over the gameweek's fixtures
	DaysRest          *float64
	FixtureCount      int
	IsBlank           bool
	IsDouble          bool

	// Observed in Gameweek itself. Bookkeeping only, never a feature.
	ObservedMinutes int
	ObservedPoints  int

	// Features
	Windows []WindowFeatures // ascending by Size
	Risk    RiskFlags

	// Target, nil when undefined (season end, player left the league, missing data)
	Target *Target

	Stage Stage
}

// Key returns the composite key of the row.
func (r *PanelRow) Key() PanelKey {
	return PanelKey{PlayerID: r.PlayerID, Season: r.Season, Gameweek: r.Gameweek}
}

// Window returns the features for the given window size, or nil.
func (r *PanelRow) Window(size int) *WindowFeatures {
	for i := range r.Windows {
		if r.Windows[i].Size == size {
			return &r.Windows[i]
		}
	}
	return nil
}

// HasTarget reports whether the row has a defined target.
func (r *PanelRow) HasTarget() bool {
	return r.Target != nil
}

// Clone returns a deep copy of the row.
func (r *PanelRow) Clone() *PanelRow {
	c := *r
	if r.OpponentTeamID != nil {
		v := *r.OpponentTeamID
		c.OpponentTeamID = &v
	}
	if r.IsHome != nil {
		v := *r.IsHome
		c.IsHome = &v
	}
	if r.FixtureDifficulty != nil {
		v := *r.FixtureDifficulty
		c.FixtureDifficulty = &v
	}
	if r.DaysRest != nil {
		v := *r.DaysRest
		c.DaysRest = &v
	}
	if r.Windows != nil {
		c.Windows = make([]WindowFeatures, len(r.Windows))
		for i, w := range r.Windows {
			c.Windows[i] = WindowFeatures{
				Size:     w.Size,
				Player:   w.Player.clone(),
				Team:     w.Team.clone(),
				Opponent: w.Opponent.clone(),
			}
		}
	}
	if r.Risk.ChanceOfPlaying != nil {
		v := *r.Risk.ChanceOfPlaying
		c.Risk.ChanceOfPlaying = &v
	}
	if r.Risk.RedCardLastGW != nil {
		v := *r.Risk.RedCardLastGW
		c.Risk.RedCardLastGW = &v
	}
	if r.Target != nil {
		t := *r.Target
		c.Target = &t
	}
	return &c
}

func (f PlayerForm) clone() PlayerForm {
	c := f
	c.Gameweeks = append([]int(nil), f.Gameweeks...)
	c.Minutes = cloneFloat(f.Minutes)
	c.Points = cloneFloat(f.Points)
	c.Goals = cloneFloat(f.Goals)
	c.Assists = cloneFloat(f.Assists)
	c.Bonus = cloneFloat(f.Bonus)
	c.BPS = cloneFloat(f.BPS)
	c.XG = cloneFloat(f.XG)
	c.XA = cloneFloat(f.XA)
	c.Shots = cloneFloat(f.Shots)
	c.KeyPasses = cloneFloat(f.KeyPasses)
	return c
}

func (f TeamForm) clone() TeamForm {
	c := f
	c.Gameweeks = append([]int(nil), f.Gameweeks...)
	c.GoalsScored = cloneFloat(f.GoalsScored)
	c.GoalsConceded = cloneFloat(f.GoalsConceded)
	c.XG = cloneFloat(f.XG)
	c.XGA = cloneFloat(f.XGA)
	c.CleanSheetRate = cloneFloat(f.CleanSheetRate)
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
