package signals

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"FxPulse/internal/domain/models"
)

// Criterion weights. A score is the sum of the weights that fired, so the
// reachable values are 0, 30, 35, 65, 70 and 100.
const (
	SessionWeight      = 35
	RangeBandWeight    = 35
	DisplacementWeight = 30
)

// Status thresholds on the summed score.
const (
	MidThreshold  = 40
	HighThreshold = 70
)

// MinDisplacementRatio is the body/range ratio at which a candle counts as displacement.
const MinDisplacementRatio = 0.55

var minDisplacementRatio = decimal.NewFromFloat(MinDisplacementRatio)

// Score computes the conviction score of the most recent bar in window.
// evalDay is the weekday of the evaluation timestamp; the scorer never reads a clock.
// On error the returned result is the ERROR sentinel.
func Score(window models.BarWindow, cfg models.InstrumentConfig, evalDay time.Weekday) (models.ScoreResult, error) {
	last, ok := window.Last()
	if !ok {
		return models.ErrorScore(), insufficient(1, 0)
	}
	if cfg.PipMultiplier != models.PipMultiplierYen && cfg.PipMultiplier != models.PipMultiplierStandard {
		return models.ErrorScore(), fmt.Errorf("%w: %s pip multiplier %d", ErrInvalidInstrument, cfg.Symbol, cfg.PipMultiplier)
	}
	if err := validateWindow(window); err != nil {
		return models.ErrorScore(), err
	}

	mult := decimal.NewFromInt(int64(cfg.PipMultiplier))
	rangePips := dec(last.High).Sub(dec(last.Low)).Mul(mult)
	bodyPips := dec(last.Close).Sub(dec(last.Open)).Abs().Mul(mult)

	// zero-range bars have no displacement
	ratio := decimal.Zero
	if rangePips.IsPositive() {
		ratio = bodyPips.Div(rangePips)
	}

	var res models.ScoreResult
	if isMidWeek(evalDay) {
		res.Score += SessionWeight
		res.Criteria.SessionOfWeek = true
	}
	if rangePips.GreaterThanOrEqual(dec(cfg.ExpectedRangeMinPips)) && rangePips.LessThanOrEqual(dec(cfg.ExpectedRangeMaxPips)) {
		res.Score += RangeBandWeight
		res.Criteria.RangeBand = true
	}
	if ratio.GreaterThanOrEqual(minDisplacementRatio) {
		res.Score += DisplacementWeight
		res.Criteria.Displacement = true
	}

	res.RangePips = rangePips.InexactFloat64()
	res.BodyToRangeRatio = ratio.InexactFloat64()
	res.Status = StatusFor(res.Score)
	return res, nil
}

// StatusFor maps a score to LOW (<40), MID (40-69) or HIGH (>=70).
func StatusFor(score int) models.Status {
	switch {
	case score >= HighThreshold:
		return models.StatusHigh
	case score >= MidThreshold:
		return models.StatusMid
	default:
		return models.StatusLow
	}
}

// isMidWeek is true Tuesday through Thursday.
func isMidWeek(d time.Weekday) bool {
	return d >= time.Tuesday && d <= time.Thursday
}
