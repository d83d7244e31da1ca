package signals

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPulse/internal/domain/models"
)

var eurusd = models.InstrumentConfig{
	Symbol:               "EURUSD=X",
	PipMultiplier:        models.PipMultiplierStandard,
	ExpectedRangeMinPips: 40,
	ExpectedRangeMaxPips: 80,
	Quote:                models.QuoteForeignUSD,
}

func bar(o, h, l, c float64) models.PriceBar {
	return models.PriceBar{Open: o, High: h, Low: l, Close: c}
}

func TestScore_AllCriteriaOnTuesday(t *testing.T) {
	w := models.BarWindow{bar(1.0810, 1.0860, 1.0800, 1.0850)}

	res, err := Score(w, eurusd, time.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, models.StatusHigh, res.Status)
	assert.InDelta(t, 60.0, res.RangePips, 1e-9)
	assert.InDelta(t, 40.0/60.0, res.BodyToRangeRatio, 1e-9)
	assert.Equal(t, models.Criteria{SessionOfWeek: true, RangeBand: true, Displacement: true}, res.Criteria)
}

func TestScore_NothingOnSunday(t *testing.T) {
	w := models.BarWindow{bar(1.0830, 1.0900, 1.0800, 1.0835)}

	res, err := Score(w, eurusd, time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, models.StatusLow, res.Status)
	assert.InDelta(t, 100.0, res.RangePips, 1e-9)
}

func TestScore_SessionOfWeek(t *testing.T) {
	// doji outside the band: only the weekday can score
	w := models.BarWindow{bar(1.0830, 1.0900, 1.0800, 1.0830)}
	cases := map[time.Weekday]int{
		time.Sunday:    0,
		time.Monday:    0,
		time.Tuesday:   SessionWeight,
		time.Wednesday: SessionWeight,
		time.Thursday:  SessionWeight,
		time.Friday:    0,
		time.Saturday:  0,
	}
	for day, want := range cases {
		res, err := Score(w, eurusd, day)
		require.NoError(t, err)
		assert.Equal(t, want, res.Score, day.String())
	}
}

func TestScore_RangeBandIsInclusive(t *testing.T) {
	for _, w := range []models.BarWindow{
		{bar(1.0800, 1.0840, 1.0800, 1.0801)}, // 40 pips
		{bar(1.0800, 1.0880, 1.0800, 1.0801)}, // 80 pips
	} {
		res, err := Score(w, eurusd, time.Monday)
		require.NoError(t, err)
		assert.True(t, res.Criteria.RangeBand, "range %.1f", res.RangePips)
		assert.Equal(t, RangeBandWeight, res.Score)
	}

	res, err := Score(models.BarWindow{bar(1.0800, 1.0881, 1.0800, 1.0801)}, eurusd, time.Monday)
	require.NoError(t, err)
	assert.False(t, res.Criteria.RangeBand)
}

func TestScore_YenPipMultiplier(t *testing.T) {
	usdjpy := models.InstrumentConfig{
		Symbol:               "JPY=X",
		PipMultiplier:        models.PipMultiplierYen,
		ExpectedRangeMinPips: 60,
		ExpectedRangeMaxPips: 120,
		Quote:                models.QuoteUSDForeign,
	}
	res, err := Score(models.BarWindow{bar(150.10, 150.80, 150.00, 150.70)}, usdjpy, time.Friday)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, res.RangePips, 1e-9)
	assert.True(t, res.Criteria.RangeBand)
	assert.True(t, res.Criteria.Displacement)
	assert.Equal(t, 65, res.Score)
	assert.Equal(t, models.StatusMid, res.Status)
}

func TestScore_DisplacementThreshold(t *testing.T) {
	// body 55 of a 100 pip range
	res, err := Score(models.BarWindow{bar(1.0800, 1.0900, 1.0800, 1.0855)}, eurusd, time.Monday)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, res.BodyToRangeRatio, 1e-12)
	assert.True(t, res.Criteria.Displacement)
	assert.Equal(t, DisplacementWeight, res.Score)

	res, err = Score(models.BarWindow{bar(1.0800, 1.0900, 1.0800, 1.0854)}, eurusd, time.Monday)
	require.NoError(t, err)
	assert.False(t, res.Criteria.Displacement)
}

func TestScore_ZeroRangeNeverDisplaces(t *testing.T) {
	cfg := eurusd
	cfg.ExpectedRangeMinPips = 0
	for _, day := range []time.Weekday{time.Monday, time.Wednesday} {
		res, err := Score(models.BarWindow{bar(1.08, 1.08, 1.08, 1.08)}, cfg, day)
		require.NoError(t, err)
		assert.Zero(t, res.RangePips)
		assert.Zero(t, res.BodyToRangeRatio)
		assert.False(t, res.Criteria.Displacement)
	}
}

func TestScore_ReachableSums(t *testing.T) {
	reachable := map[int]bool{0: true, 30: true, 35: true, 65: true, 70: true, 100: true}
	windows := []models.BarWindow{
		{bar(1.0810, 1.0860, 1.0800, 1.0850)},
		{bar(1.0830, 1.0900, 1.0800, 1.0835)},
		{bar(1.0800, 1.0900, 1.0800, 1.0890)},
		{bar(1.0830, 1.0860, 1.0800, 1.0831)},
		{bar(1.08, 1.08, 1.08, 1.08)},
	}
	for _, w := range windows {
		for d := time.Sunday; d <= time.Saturday; d++ {
			res, err := Score(w, eurusd, d)
			require.NoError(t, err)
			assert.True(t, reachable[res.Score], "unexpected score %d", res.Score)
			assert.Equal(t, StatusFor(res.Score), res.Status)
		}
	}
}

func TestScore_UsesLastBarOnly(t *testing.T) {
	w := models.BarWindow{
		bar(1.0830, 1.0900, 1.0800, 1.0835),
		bar(1.0810, 1.0860, 1.0800, 1.0850),
	}
	snapshot := append(models.BarWindow(nil), w...)

	res, err := Score(w, eurusd, time.Wednesday)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, snapshot, w)
}

func TestScore_Errors(t *testing.T) {
	t.Run("empty window", func(t *testing.T) {
		res, err := Score(nil, eurusd, time.Tuesday)
		require.ErrorIs(t, err, ErrInsufficientData)
		assert.Equal(t, models.ErrorScore(), res)
	})

	t.Run("pip multiplier", func(t *testing.T) {
		cfg := eurusd
		cfg.PipMultiplier = 1000
		res, err := Score(models.BarWindow{bar(1.0810, 1.0860, 1.0800, 1.0850)}, cfg, time.Tuesday)
		require.ErrorIs(t, err, ErrInvalidInstrument)
		assert.True(t, res.IsError())
	})

	t.Run("malformed bar", func(t *testing.T) {
		w := models.BarWindow{
			bar(1.0810, 1.0840, 1.0800, 1.0850),
			bar(1.0810, 1.0860, 1.0800, 1.0850),
		}
		res, err := Score(w, eurusd, time.Tuesday)
		require.ErrorIs(t, err, ErrMalformedBar)
		var mbe *MalformedBarError
		require.True(t, errors.As(err, &mbe))
		assert.Equal(t, 0, mbe.Index)
		assert.Equal(t, models.StatusError, res.Status)
		assert.Zero(t, res.Score)
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[int]models.Status{
		0:   models.StatusLow,
		35:  models.StatusLow,
		39:  models.StatusLow,
		40:  models.StatusMid,
		65:  models.StatusMid,
		69:  models.StatusMid,
		70:  models.StatusHigh,
		100: models.StatusHigh,
	}
	for score, want := range cases {
		assert.Equal(t, want, StatusFor(score), "score %d", score)
	}
}
