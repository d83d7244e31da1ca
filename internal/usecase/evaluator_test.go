package usecase

import (
	"context"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T, src *fakeSource, m *fakeMetrics) *Evaluator {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return NewEvaluator(src, universe(), signals.NewYieldAnalyzer(0), m, EvaluatorConfig{
		Lookback:       30,
		YieldLookback:  5,
		Workers:        2,
		BaselineSeries: "^TNX",
		Location:       loc,
		FetchTimeout:   time.Second,
	}, nil)
}

func TestEvaluatePass(t *testing.T) {
	src := marketFixture()
	m := newFakeMetrics()
	ev := newTestEvaluator(t, src, m)

	pass, err := ev.Evaluate(context.Background(), tuesdayClose)
	require.NoError(t, err)

	require.Len(t, pass.Instruments, 4)
	for i, inst := range universe() {
		assert.Equal(t, inst.Symbol, pass.Instruments[i].Symbol, "configured order is kept")
	}

	eur := pass.Instruments[0]
	assert.Equal(t, "EUR/USD", eur.Name)
	assert.Equal(t, 100, eur.Score.Score)
	assert.Equal(t, models.StatusHigh, eur.Score.Status)
	require.NotNil(t, eur.Volatility)
	assert.Equal(t, models.ModeTrendBullish, eur.Volatility.Mode)
	require.NotNil(t, eur.Yield)
	assert.False(t, eur.Yield.DataError)
	// DE10Y rising while ^TNX falls on a FOREIGN/USD pair
	assert.Equal(t, models.DivergenceBuyWait, eur.Yield.Divergence)
	assert.Equal(t, "ECB", eur.News)

	gbp := pass.Instruments[1]
	assert.Equal(t, 65, gbp.Score.Score)
	assert.Equal(t, models.StatusMid, gbp.Score.Status)
	require.NotNil(t, gbp.Yield)
	assert.Equal(t, models.DivergenceNoData, gbp.Yield.Divergence)

	jpy := pass.Instruments[2]
	assert.True(t, jpy.DataUnavailable)
	assert.True(t, jpy.Score.IsError())
	assert.Nil(t, jpy.Volatility)
	assert.Contains(t, jpy.Err, "upstream timeout")

	aud := pass.Instruments[3]
	assert.False(t, aud.DataUnavailable)
	assert.True(t, aud.Score.IsError())
	assert.Contains(t, pass.Errors, "AUDUSD=X")

	require.NotNil(t, pass.Pick)
	assert.Equal(t, "EURUSD=X", pass.Pick.Symbol)
	assert.True(t, pass.Pick.HighProbability)

	ranked := make([]string, len(pass.Ranking))
	for i, r := range pass.Ranking {
		ranked[i] = r.Symbol
	}
	assert.Equal(t, []string{"EURUSD=X", "GBPUSD=X", "JPY=X", "AUDUSD=X"}, ranked)

	assert.Equal(t, 1, m.passes)
	assert.Equal(t, 1, m.dataErrors[kindFetch])
	assert.Equal(t, 1, m.dataErrors[kindMalformed])
	assert.Equal(t, 1, m.dataErrors[kindYield], "JP10Y is missing")
	assert.Equal(t, models.StatusError, m.scores["JPY=X"].Status)

	// baseline fetched once per pass
	assert.Equal(t, 1, src.yieldHits["^TNX"])
}

func TestEvaluateUsesConfiguredTimezoneForWeekday(t *testing.T) {
	ev := newTestEvaluator(t, marketFixture(), newFakeMetrics())

	// 03:00 UTC Tuesday is Monday evening in New York
	pass, err := ev.Evaluate(context.Background(), time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 65, pass.Instruments[0].Score.Score)
	assert.False(t, pass.Instruments[0].Score.Criteria.SessionOfWeek)
	assert.Equal(t, "EURUSD=X", pass.Pick.Symbol)
	assert.False(t, pass.Pick.HighProbability)
}

func TestEvaluateWithoutBaselineYields(t *testing.T) {
	src := marketFixture()
	delete(src.yields, "^TNX")
	ev := newTestEvaluator(t, src, newFakeMetrics())

	pass, err := ev.Evaluate(context.Background(), tuesdayClose)
	require.NoError(t, err)
	for _, inst := range pass.Instruments {
		require.NotNil(t, inst.Yield)
		assert.True(t, inst.Yield.DataError, inst.Symbol)
	}
	assert.Contains(t, pass.Errors, "^TNX")
	// scoring is unaffected
	assert.Equal(t, 100, pass.Instruments[0].Score.Score)
}

func TestEvaluateAllStreamsDown(t *testing.T) {
	src := &fakeSource{barErrs: map[string]error{
		"EURUSD=X": errUpstream, "GBPUSD=X": errUpstream, "JPY=X": errUpstream, "AUDUSD=X": errUpstream,
	}}
	ev := newTestEvaluator(t, src, newFakeMetrics())

	pass, err := ev.Evaluate(context.Background(), tuesdayClose)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD=X", pass.Pick.Symbol)
	assert.True(t, pass.Pick.Result.IsError())
	assert.False(t, pass.Pick.HighProbability)
}

func TestEvaluateSymbol(t *testing.T) {
	ev := newTestEvaluator(t, marketFixture(), newFakeMetrics())

	got, err := ev.EvaluateSymbol(context.Background(), "GBPUSD=X", tuesdayClose)
	require.NoError(t, err)
	assert.Equal(t, 65, got.Score.Score)

	_, err = ev.EvaluateSymbol(context.Background(), "XAUUSD=X", tuesdayClose)
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestEvaluateAsOfIgnoresLaterSessions(t *testing.T) {
	src := marketFixture()
	eur := src.bars["EURUSD=X"]
	// a flat Wednesday bar after the replayed Tuesday close
	src.bars["EURUSD=X"] = append(eur[:len(eur):len(eur)], models.PriceBar{
		Session: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		Open:    1.0870, High: 1.0875, Low: 1.0865, Close: 1.0870,
	})
	ev := newTestEvaluator(t, src, newFakeMetrics())

	replay, err := ev.EvaluateAsOf(context.Background(), tuesdayClose)
	require.NoError(t, err)
	require.NotNil(t, replay.AsOf)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *replay.AsOf)
	assert.Equal(t, 100, replay.Instruments[0].Score.Score)
	require.NotNil(t, replay.Instruments[0].Volatility)

	live, err := ev.Evaluate(context.Background(), tuesdayClose)
	require.NoError(t, err)
	assert.Nil(t, live.AsOf)
	assert.Less(t, live.Instruments[0].Score.Score, 100)
	assert.Contains(t, src.asOfs, time.Time{})
	assert.Contains(t, src.asOfs, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
}

func TestEvaluateSymbolAsOf(t *testing.T) {
	src := marketFixture()
	ev := newTestEvaluator(t, src, newFakeMetrics())

	// Monday close only sees bars through 2024-03-04
	monday := time.Date(2024, 3, 4, 21, 0, 0, 0, time.UTC)
	got, err := ev.EvaluateSymbolAsOf(context.Background(), "EURUSD=X", monday)
	require.NoError(t, err)
	assert.Less(t, got.Score.Score, 100)
	assert.Equal(t, []time.Time{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}, src.asOfs)
}
