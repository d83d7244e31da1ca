package models

import "time"

// InstrumentEvaluation is everything computed for one instrument in a pass.
// DataUnavailable marks a fetch outage ("stream down"); Err carries a
// contract violation such as a malformed bar.
type InstrumentEvaluation struct {
	Symbol          string            `json:"symbol"`
	Name            string            `json:"name"`
	Score           ScoreResult       `json:"score"`
	Yield           *YieldBias        `json:"yield,omitempty"`
	Volatility      *VolatilityRegime `json:"volatility,omitempty"`
	DataUnavailable bool              `json:"data_unavailable"`
	Err             string            `json:"error,omitempty"`
	News            string            `json:"news,omitempty"`
	Target          string            `json:"target,omitempty"`
}

// EvaluationPass is the result of scoring the whole universe once. AsOf is
// set on replays to the last session date the data was limited to.
type EvaluationPass struct {
	At          time.Time              `json:"at"`
	AsOf        *time.Time             `json:"as_of,omitempty"`
	Instruments []InstrumentEvaluation `json:"instruments"`
	Ranking     []InstrumentScore      `json:"ranking"`
	Pick        *RankedPick            `json:"pick,omitempty"`
	Errors      map[string]string      `json:"errors,omitempty"`
}

// ReportRow is one line of the daily-close report.
type ReportRow struct {
	Pair            string `json:"pair"`
	Score           string `json:"score"`
	Status          Status `json:"status"`
	NewsFocus       string `json:"news_focus,omitempty"`
	Target          string `json:"target,omitempty"`
	StreamDown      bool   `json:"stream_down"`
	EnableForLondon bool   `json:"enable_for_london"`
}

// DailyReport is the daily-close summary of a pass.
type DailyReport struct {
	Date time.Time   `json:"date"`
	Rows []ReportRow `json:"rows"`
	Pick *RankedPick `json:"pick,omitempty"`
}
