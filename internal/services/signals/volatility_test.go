package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPulse/internal/domain/models"
)

// volWindow builds 20 bars: ten quiet ones, eight with a 3.1 range, one with
// a 3.13 range and the given last bar. The trailing 10 ranges therefore sum
// to 27.93 plus the last range.
func volWindow(last models.PriceBar) models.BarWindow {
	w := make(models.BarWindow, 0, 20)
	for i := 0; i < 10; i++ {
		w = append(w, bar(100.2, 101, 100, 100.5))
	}
	for i := 0; i < 8; i++ {
		w = append(w, bar(100.2, 103.1, 100, 100.5))
	}
	w = append(w, bar(100.2, 103.13, 100, 100.5))
	return append(w, last)
}

func TestClassifyVolatility_SqueezeBoundary(t *testing.T) {
	// 2.07 is 69% of the 3.0 average
	reg, err := ClassifyVolatility(volWindow(bar(100, 102.07, 100, 102)))
	require.NoError(t, err)
	assert.Equal(t, models.ModeSqueeze, reg.Mode)
	assert.InDelta(t, 3.0, reg.AvgRange10, 1e-12)
	assert.InDelta(t, 2.07, reg.CurrentRange, 1e-12)
	assert.Zero(t, reg.MA20)
}

func TestClassifyVolatility_TrendAtThreshold(t *testing.T) {
	// last range 2.1 with nine ranges of 3.1: exactly 70% of the 3.0 average
	base := volWindow(bar(100, 102.1, 100, 102.1))
	base[18] = bar(100.2, 103.1, 100, 100.5)

	reg, err := ClassifyVolatility(base)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, reg.AvgRange10, 1e-12)
	assert.Equal(t, models.ModeTrendBullish, reg.Mode)
	assert.InDelta(t, 100.58, reg.MA20, 1e-9)
	assert.Equal(t, 102.1, reg.LastClose)

	base[19] = bar(102.1, 102.1, 100, 100)
	reg, err = ClassifyVolatility(base)
	require.NoError(t, err)
	assert.Equal(t, models.ModeTrendBearish, reg.Mode)
}

func TestClassifyVolatility_OnlyTrailingBarsCount(t *testing.T) {
	w := volWindow(bar(100, 102.1, 100, 102.1))
	w[18] = bar(100.2, 103.1, 100, 100.5)
	w = append(models.BarWindow{bar(100, 140, 90, 100)}, w...)

	reg, err := ClassifyVolatility(w)
	require.NoError(t, err)
	assert.Equal(t, models.ModeTrendBullish, reg.Mode)
}

func TestClassifyVolatility_Errors(t *testing.T) {
	short := volWindow(bar(100, 102.1, 100, 102.1))[1:]
	_, err := ClassifyVolatility(short)
	require.ErrorIs(t, err, ErrInsufficientData)

	bad := volWindow(bar(100, 102.1, 100, 102.1))
	bad[5] = bar(100, 99, 98, 100.5)
	_, err = ClassifyVolatility(bad)
	require.ErrorIs(t, err, ErrMalformedBar)
}
