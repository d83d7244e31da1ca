package signals

import (
	"github.com/shopspring/decimal"

	"FxPulse/internal/domain/models"
)

const (
	// RangeLookback is the number of trailing bars, the current one included,
	// averaged for the reference range.
	RangeLookback = 10
	// MALookback is the moving-average length used for trend direction.
	MALookback = 20
	// SqueezeRatio is the fraction of the average range below which the
	// current bar counts as a squeeze.
	SqueezeRatio = 0.7
	// VolatilityMinBars is the shortest window ClassifyVolatility accepts.
	VolatilityMinBars = MALookback
)

var squeezeRatio = decimal.NewFromFloat(SqueezeRatio)

// ClassifyVolatility labels the window as a squeeze or a bullish/bearish trend.
func ClassifyVolatility(window models.BarWindow) (models.VolatilityRegime, error) {
	if len(window) < VolatilityMinBars {
		return models.VolatilityRegime{}, insufficient(VolatilityMinBars, len(window))
	}
	if err := validateWindow(window); err != nil {
		return models.VolatilityRegime{}, err
	}

	recent := window.Tail(RangeLookback)
	ranges := make([]decimal.Decimal, len(recent))
	for i, b := range recent {
		ranges[i] = dec(b.High).Sub(dec(b.Low))
	}
	current := ranges[len(ranges)-1]
	avgRange := meanOf(ranges)
	last, _ := window.Last()

	regime := models.VolatilityRegime{
		CurrentRange: current.InexactFloat64(),
		AvgRange10:   avgRange.InexactFloat64(),
		LastClose:    last.Close,
	}
	if current.LessThan(avgRange.Mul(squeezeRatio)) {
		regime.Mode = models.ModeSqueeze
		return regime, nil
	}

	maBars := window.Tail(MALookback)
	closes := make([]decimal.Decimal, len(maBars))
	for i, b := range maBars {
		closes[i] = dec(b.Close)
	}
	ma := meanOf(closes)
	regime.MA20 = ma.InexactFloat64()
	if dec(last.Close).GreaterThan(ma) {
		regime.Mode = models.ModeTrendBullish
	} else {
		regime.Mode = models.ModeTrendBearish
	}
	return regime, nil
}
