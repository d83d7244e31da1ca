package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"FxPulse/internal/domain/models"
)

var (
	rising  = []float64{2.40, 2.45, 2.50}
	falling = []float64{4.30, 4.25, 4.20}
)

func TestAnalyze_DivergenceInvertsByQuoteConvention(t *testing.T) {
	a := NewYieldAnalyzer(DefaultTrendThreshold)

	cases := []struct {
		name      string
		ref, base []float64
		quote     models.QuoteConvention
		want      models.Divergence
	}{
		{"foreign/usd ref up base down", rising, falling, models.QuoteForeignUSD, models.DivergenceBuyWait},
		{"usd/foreign ref up base down", rising, falling, models.QuoteUSDForeign, models.DivergenceSellWait},
		{"foreign/usd ref down base up", falling, rising, models.QuoteForeignUSD, models.DivergenceSellWait},
		{"usd/foreign ref down base up", falling, rising, models.QuoteUSDForeign, models.DivergenceBuyWait},
		{"both up", rising, rising, models.QuoteForeignUSD, models.DivergenceConvergent},
		{"both down", falling, falling, models.QuoteUSDForeign, models.DivergenceConvergent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bias := a.Analyze(tc.ref, tc.base, tc.quote)
			assert.False(t, bias.DataError)
			assert.Equal(t, tc.want, bias.Divergence)
		})
	}
}

func TestAnalyze_FlatLastStepCountsAsDown(t *testing.T) {
	a := NewYieldAnalyzer(0)
	bias := a.Analyze([]float64{2.5, 2.5}, []float64{4.1, 4.2}, models.QuoteForeignUSD)
	assert.Equal(t, models.DivergenceSellWait, bias.Divergence)
}

func TestAnalyze_Sentiment(t *testing.T) {
	a := NewYieldAnalyzer(0)
	flat := []float64{4.1, 4.1}

	cases := []struct {
		ref  []float64
		want models.Sentiment
	}{
		{[]float64{4.6, 4.6}, models.SentimentBullish},
		{[]float64{4.5, 4.5}, models.SentimentNeutral}, // spread exactly +0.4
		{[]float64{3.7, 3.7}, models.SentimentNeutral}, // spread exactly -0.4
		{[]float64{2.6, 2.6}, models.SentimentBearish},
	}
	for _, tc := range cases {
		bias := a.Analyze(tc.ref, flat, models.QuoteForeignUSD)
		assert.Equal(t, tc.want, bias.Sentiment, "ref %v", tc.ref)
	}

	bias := a.Analyze([]float64{2.6, 2.6}, flat, models.QuoteForeignUSD)
	assert.InDelta(t, -1.5, bias.Spread, 1e-12)
}

func TestAnalyze_Trend(t *testing.T) {
	base := []float64{4.0, 4.0, 4.0, 4.0}

	def := NewYieldAnalyzer(DefaultTrendThreshold)
	strict := NewYieldAnalyzer(StrictTrendThreshold)

	// last 2.16 against a mean of 2.04
	modest := []float64{2.0, 2.0, 2.0, 2.16}
	assert.Equal(t, models.TrendRising, def.Analyze(modest, base, models.QuoteForeignUSD).Trend)
	assert.Equal(t, models.TrendStable, strict.Analyze(modest, base, models.QuoteForeignUSD).Trend)

	assert.Equal(t, models.TrendFalling, def.Analyze([]float64{2.3, 2.3, 2.3, 2.0}, base, models.QuoteForeignUSD).Trend)
	assert.Equal(t, models.TrendStable, def.Analyze([]float64{2.0, 2.1, 2.0, 2.05}, base, models.QuoteForeignUSD).Trend)
}

func TestAnalyze_DataError(t *testing.T) {
	a := NewYieldAnalyzer(0)
	cases := map[string]struct {
		ref, base []float64
		quote     models.QuoteConvention
	}{
		"missing reference": {nil, falling, models.QuoteForeignUSD},
		"missing baseline":  {rising, nil, models.QuoteForeignUSD},
		"single point":      {[]float64{2.5}, falling, models.QuoteForeignUSD},
		"nan":               {[]float64{2.5, math.NaN()}, falling, models.QuoteForeignUSD},
		"unknown quote":     {rising, falling, models.QuoteConvention("EUR/GBP")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			bias := a.Analyze(tc.ref, tc.base, tc.quote)
			assert.Equal(t, models.NoYieldData(), bias)
		})
	}
}

func TestNewYieldAnalyzer_Default(t *testing.T) {
	assert.Equal(t, DefaultTrendThreshold, NewYieldAnalyzer(0).TrendThreshold)
	assert.Equal(t, StrictTrendThreshold, NewYieldAnalyzer(StrictTrendThreshold).TrendThreshold)
}
