package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPulse/internal/domain/models"
)

func entry(symbol string, score int) models.InstrumentScore {
	return models.InstrumentScore{Symbol: symbol, Result: models.ScoreResult{Score: score, Status: StatusFor(score)}}
}

func errEntry(symbol string) models.InstrumentScore {
	return models.InstrumentScore{Symbol: symbol, Result: models.ErrorScore()}
}

func TestSelectBest_MaxScore(t *testing.T) {
	pick, err := SelectBest([]models.InstrumentScore{entry("A", 35), entry("B", 70), entry("C", 65)})
	require.NoError(t, err)
	assert.Equal(t, "B", pick.Symbol)
	assert.True(t, pick.HighProbability)
}

func TestSelectBest_TiesFollowSuppliedOrder(t *testing.T) {
	in := []models.InstrumentScore{entry("A", 65), entry("B", 100), entry("C", 100)}

	first, err := SelectBest(in)
	require.NoError(t, err)
	again, err := SelectBest(in)
	require.NoError(t, err)
	assert.Equal(t, "B", first.Symbol)
	assert.Equal(t, first, again)

	reordered, err := SelectBest([]models.InstrumentScore{entry("C", 100), entry("A", 65), entry("B", 100)})
	require.NoError(t, err)
	assert.Equal(t, "C", reordered.Symbol)
}

func TestSelectBest_ErrorSentinels(t *testing.T) {
	pick, err := SelectBest([]models.InstrumentScore{errEntry("DOWN"), entry("A", 0), entry("B", 0)})
	require.NoError(t, err)
	assert.Equal(t, "A", pick.Symbol)
	assert.False(t, pick.HighProbability)

	pick, err = SelectBest([]models.InstrumentScore{errEntry("X"), errEntry("Y")})
	require.NoError(t, err)
	assert.Equal(t, "X", pick.Symbol)
	assert.Equal(t, models.StatusError, pick.Result.Status)
	assert.False(t, pick.HighProbability)
}

func TestSelectBest_Empty(t *testing.T) {
	_, err := SelectBest(nil)
	require.ErrorIs(t, err, ErrEmptyUniverse)
}

func TestIsHighProbability(t *testing.T) {
	assert.True(t, IsHighProbability(entry("A", 70).Result))
	assert.True(t, IsHighProbability(entry("A", 100).Result))
	assert.False(t, IsHighProbability(entry("A", 65).Result))
	assert.False(t, IsHighProbability(models.ErrorScore()))
}

func TestRank(t *testing.T) {
	in := []models.InstrumentScore{errEntry("E"), entry("A", 35), entry("B", 70), entry("C", 35), entry("D", 0)}
	snapshot := append([]models.InstrumentScore(nil), in...)

	out := Rank(in)
	syms := make([]string, len(out))
	for i, e := range out {
		syms[i] = e.Symbol
	}
	assert.Equal(t, []string{"B", "A", "C", "D", "E"}, syms)
	assert.Equal(t, snapshot, in)
}
