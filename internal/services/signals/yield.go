package signals

import (
	"math"

	"github.com/shopspring/decimal"

	"FxPulse/internal/domain/models"
)

// SentimentThreshold is the spread, in percentage points, beyond which the
// yield bias turns bullish or bearish.
const SentimentThreshold = 0.4

// Trend thresholds seen in the dashboards. DefaultTrendThreshold is used
// unless StrictTrendThreshold is configured explicitly.
const (
	DefaultTrendThreshold = 0.10
	StrictTrendThreshold  = 0.15
)

type direction int8

const (
	down direction = iota
	up
)

type directionPair struct {
	reference direction
	baseline  direction
}

// divergenceTable maps a non-matching pair of short-term directions to the
// actionable label. For FOREIGN/USD a rising foreign yield against a falling
// US yield means foreign strength not yet priced in: wait for a buy. USD/FOREIGN
// pairs move the other way, so the mapping inverts.
var divergenceTable = map[models.QuoteConvention]map[directionPair]models.Divergence{
	models.QuoteForeignUSD: {
		{reference: up, baseline: down}: models.DivergenceBuyWait,
		{reference: down, baseline: up}: models.DivergenceSellWait,
	},
	models.QuoteUSDForeign: {
		{reference: up, baseline: down}: models.DivergenceSellWait,
		{reference: down, baseline: up}: models.DivergenceBuyWait,
	},
}

// YieldAnalyzer compares a reference sovereign yield series with the baseline series.
type YieldAnalyzer struct {
	TrendThreshold float64
}

// NewYieldAnalyzer returns an analyzer using threshold for the trend label.
// A non-positive threshold selects DefaultTrendThreshold.
func NewYieldAnalyzer(threshold float64) YieldAnalyzer {
	if threshold <= 0 {
		threshold = DefaultTrendThreshold
	}
	return YieldAnalyzer{TrendThreshold: threshold}
}

// Analyze never fails: unusable input yields the NO_DATA sentinel with DataError set.
func (a YieldAnalyzer) Analyze(reference, baseline []float64, quote models.QuoteConvention) models.YieldBias {
	if !usableSeries(reference) || !usableSeries(baseline) {
		return models.NoYieldData()
	}
	table, ok := divergenceTable[quote]
	if !ok {
		return models.NoYieldData()
	}

	refLast := dec(reference[len(reference)-1])
	baseLast := dec(baseline[len(baseline)-1])
	spread := refLast.Sub(baseLast)

	bias := models.YieldBias{
		Spread:     spread.InexactFloat64(),
		Sentiment:  sentimentFor(spread),
		Trend:      a.trendFor(reference),
		Divergence: models.DivergenceConvergent,
	}

	dirs := directionPair{reference: directionOf(reference), baseline: directionOf(baseline)}
	if dirs.reference != dirs.baseline {
		bias.Divergence = table[dirs]
	}
	return bias
}

func (a YieldAnalyzer) trendFor(series []float64) models.YieldTrend {
	threshold := a.TrendThreshold
	if threshold <= 0 {
		threshold = DefaultTrendThreshold
	}
	vals := make([]decimal.Decimal, len(series))
	for i, v := range series {
		vals[i] = dec(v)
	}
	diff := vals[len(vals)-1].Sub(meanOf(vals))
	t := dec(threshold)
	switch {
	case diff.GreaterThan(t):
		return models.TrendRising
	case diff.LessThan(t.Neg()):
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

func sentimentFor(spread decimal.Decimal) models.Sentiment {
	t := dec(SentimentThreshold)
	switch {
	case spread.GreaterThan(t):
		return models.SentimentBullish
	case spread.LessThan(t.Neg()):
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// directionOf is up when the last value exceeds the one before it.
func directionOf(series []float64) direction {
	n := len(series)
	if series[n-1] > series[n-2] {
		return up
	}
	return down
}

func usableSeries(series []float64) bool {
	if len(series) < 2 {
		return false
	}
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
