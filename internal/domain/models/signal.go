package models

// Status is the qualitative label of a conviction score.
type Status string

const (
	StatusLow   Status = "LOW"
	StatusMid   Status = "MID"
	StatusHigh  Status = "HIGH"
	StatusError Status = "ERROR"
)

// Criteria records which scoring criteria fired for a bar.
type Criteria struct {
	SessionOfWeek bool `json:"session_of_week"`
	RangeBand     bool `json:"range_band"`
	Displacement  bool `json:"displacement"`
}

// ScoreResult is the output of the displacement scorer.
type ScoreResult struct {
	Score            int      `json:"score"`
	RangePips        float64  `json:"range_pips"`
	Status           Status   `json:"status"`
	BodyToRangeRatio float64  `json:"body_to_range_ratio"`
	Criteria         Criteria `json:"criteria"`
}

// ErrorScore is the sentinel returned when an instrument could not be scored.
func ErrorScore() ScoreResult {
	return ScoreResult{Score: 0, Status: StatusError}
}

// IsError reports whether r is the error sentinel.
func (r ScoreResult) IsError() bool { return r.Status == StatusError }

type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
	SentimentNeutral Sentiment = "NEUTRAL"
)

type YieldTrend string

const (
	TrendRising  YieldTrend = "RISING"
	TrendFalling YieldTrend = "FALLING"
	TrendStable  YieldTrend = "STABLE"
)

type Divergence string

const (
	DivergenceConvergent Divergence = "CONVERGENT"
	DivergenceBuyWait    Divergence = "DIVERGENT_BUY_WAIT"
	DivergenceSellWait   Divergence = "DIVERGENT_SELL_WAIT"
	DivergenceNoData     Divergence = "NO_DATA"
)

// YieldBias compares an instrument's reference yield with the baseline yield.
type YieldBias struct {
	Spread     float64    `json:"spread"`
	Sentiment  Sentiment  `json:"sentiment"`
	Trend      YieldTrend `json:"trend"`
	Divergence Divergence `json:"divergence"`
	DataError  bool       `json:"data_error"`
}

// NoYieldData is the sentinel bias used when either series is unusable.
func NoYieldData() YieldBias {
	return YieldBias{
		Sentiment:  SentimentNeutral,
		Trend:      TrendStable,
		Divergence: DivergenceNoData,
		DataError:  true,
	}
}

type VolatilityMode string

const (
	ModeSqueeze      VolatilityMode = "SQUEEZE"
	ModeTrendBullish VolatilityMode = "TREND_BULLISH"
	ModeTrendBearish VolatilityMode = "TREND_BEARISH"
)

// VolatilityRegime is the squeeze/trend classification of a window.
// MA20 is zero when the mode is SQUEEZE.
type VolatilityRegime struct {
	Mode         VolatilityMode `json:"mode"`
	CurrentRange float64        `json:"current_range"`
	AvgRange10   float64        `json:"avg_range_10"`
	MA20         float64        `json:"ma_20,omitempty"`
	LastClose    float64        `json:"last_close"`
}

// InstrumentScore pairs a symbol with its score for selection and ranking.
type InstrumentScore struct {
	Symbol string      `json:"symbol"`
	Result ScoreResult `json:"result"`
}

// RankedPick is the highest-conviction instrument of one pass.
type RankedPick struct {
	Symbol          string      `json:"symbol"`
	Result          ScoreResult `json:"result"`
	HighProbability bool        `json:"high_probability"`
}
