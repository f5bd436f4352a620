package ingestion

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Subsets of the FPL API payloads read from disk. Unknown fields are ignored.

// Bootstrap is bootstrap-static.json.
type Bootstrap struct {
	Events   []Event   `json:"events"`
	Teams    []Team    `json:"teams"`
	Elements []Element `json:"elements"`
}

// Event is one gameweek.
type Event struct {
	ID           int    `json:"id"`
	DeadlineTime string `json:"deadline_time"`
	IsCurrent    bool   `json:"is_current"`
	IsNext       bool   `json:"is_next"`
	Finished     bool   `json:"finished"`
}

// Team holds bootstrap team metadata.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Element is a player entry of bootstrap-static.
type Element struct {
	ID                       int    `json:"id"`
	WebName                  string `json:"web_name"`
	Team                     int    `json:"team"`
	ElementType              int    `json:"element_type"`
	Status                   string `json:"status"`
	ChanceOfPlayingNextRound *int   `json:"chance_of_playing_next_round"`
	News                     string `json:"news"`
}

// Fixture is an entry of fixtures.json. Event is nil for unscheduled
// matches; scores are nil until the match has started.
type Fixture struct {
	ID              int    `json:"id"`
	Event           *int   `json:"event"`
	KickoffTime     string `json:"kickoff_time"`
	TeamH           int    `json:"team_h"`
	TeamA           int    `json:"team_a"`
	TeamHScore      *int   `json:"team_h_score"`
	TeamAScore      *int   `json:"team_a_score"`
	TeamHDifficulty int    `json:"team_h_difficulty"`
	TeamADifficulty int    `json:"team_a_difficulty"`
	Finished        bool   `json:"finished"`
}

// ElementSummary is element-summary/<id>.json.
type ElementSummary struct {
	History []HistoryEntry `json:"history"`
}

// PlayerHistory is one player's match history with its element id.
type PlayerHistory struct {
	PlayerID int            `json:"player_id"`
	Data     ElementSummary `json:"data"`
}

// AllPlayers is all_players_data_<season>.json.
type AllPlayers struct {
	Players []PlayerHistory `json:"players"`
}

// HistoryEntry is one match of a player's element-summary history.
type HistoryEntry struct {
	Element          int      `json:"element"`
	Fixture          int      `json:"fixture"`
	OpponentTeam     int      `json:"opponent_team"`
	WasHome          bool     `json:"was_home"`
	KickoffTime      string   `json:"kickoff_time"`
	Round            int      `json:"round"`
	Minutes          int      `json:"minutes"`
	TotalPoints      int      `json:"total_points"`
	GoalsScored      int      `json:"goals_scored"`
	Assists          int      `json:"assists"`
	CleanSheets      int      `json:"clean_sheets"`
	GoalsConceded    int      `json:"goals_conceded"`
	OwnGoals         int      `json:"own_goals"`
	PenaltiesSaved   int      `json:"penalties_saved"`
	PenaltiesMissed  int      `json:"penalties_missed"`
	YellowCards      int      `json:"yellow_cards"`
	RedCards         int      `json:"red_cards"`
	Saves            int      `json:"saves"`
	Bonus            int      `json:"bonus"`
	BPS              int      `json:"bps"`
	Influence        Decimal  `json:"influence"`
	Creativity       Decimal  `json:"creativity"`
	Threat           Decimal  `json:"threat"`
	ICTIndex         Decimal  `json:"ict_index"`
	Value            int      `json:"value"`
	TransfersBalance int      `json:"transfers_balance"`
	Selected         int      `json:"selected"`
	TransfersIn      int      `json:"transfers_in"`
	TransfersOut     int      `json:"transfers_out"`
	ExpectedGoals    *Decimal `json:"expected_goals"`
	ExpectedAssists  *Decimal `json:"expected_assists"`
}

// Decimal decodes FPL numbers that arrive either as JSON numbers or as
// quoted strings ("0.12"). An empty string decodes as zero.
type Decimal float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decimal %q: %w", s, err)
	}
	*d = Decimal(v)
	return nil
}

// Float returns the value as float64.
func (d Decimal) Float() float64 {
	return float64(d)
}

// parseKickoff parses an FPL timestamp into Unix ms. Empty input yields 0.
func parseKickoff(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("kickoff %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}
