package domain

// Prediction is a model's output for one panel row.
type Prediction struct {
	PlayerID int
	Season   string
	Gameweek int      // row gameweek; the prediction is for Gameweek+1
	Model    string   // predictor name
	Points   float64  // predicted next-gameweek points
	Minutes  *float64 // predicted next-gameweek minutes, nil if not modelled
}

// Key returns the panel key the prediction belongs to.
func (p *Prediction) Key() PanelKey {
	return PanelKey{PlayerID: p.PlayerID, Season: p.Season, Gameweek: p.Gameweek}
}

// SplitMetrics holds evaluation metrics for one walk-forward split.
// Corresponds to split_metrics table in ClickHouse.
type SplitMetrics struct {
	RunID        string
	Season       string
	Model        string
	Cutoff       int // train gameweeks 1..Cutoff
	TestGameweek int // Cutoff + 1

	TrainRows int // rows used for fitting (target defined, purged)
	TestRows  int // test rows with a defined target

	MAE      float64
	RMSE     float64
	Spearman *float64 // nil if fewer than 2 rows or zero variance

	MinutesMAE         *float64 // nil if minutes not modelled
	MinutesCalibration *float64 // binned expected calibration error, minutes
}

// SeasonMetrics aggregates SplitMetrics across a walk-forward run.
type SeasonMetrics struct {
	RunID  string
	Season string
	Model  string

	Splits             int
	TestRows           int
	MAE                float64 // pooled over all test rows
	RMSE               float64 // pooled over all test rows
	Spearman           *float64 // mean of defined split correlations
	MinutesMAE         *float64
	MinutesCalibration *float64
}

// Predictor names.
const (
	ModelForm     = "form"
	ModelTwoStage = "two_stage"
)
