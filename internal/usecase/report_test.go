package usecase

import (
	"context"
	"testing"
	"time"

	"FxPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	ev := newTestEvaluator(t, marketFixture(), newFakeMetrics())
	pass, err := ev.Evaluate(context.Background(), tuesdayClose)
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	report := BuildReport(pass, loc)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), report.Date)
	require.Len(t, report.Rows, 4)

	assert.Equal(t, models.ReportRow{
		Pair:            "EUR/USD",
		Score:           "100%",
		Status:          models.StatusHigh,
		NewsFocus:       "ECB",
		Target:          "PDH",
		EnableForLondon: true,
	}, report.Rows[0])

	assert.Equal(t, "65%", report.Rows[1].Score)
	assert.False(t, report.Rows[1].EnableForLondon)

	assert.True(t, report.Rows[2].StreamDown)
	assert.Equal(t, models.StatusError, report.Rows[2].Status)
	assert.False(t, report.Rows[3].StreamDown)

	require.NotNil(t, report.Pick)
	assert.Equal(t, "EURUSD=X", report.Pick.Symbol)
}

func TestBuildReportScoreOfSeventyIsNotEnough(t *testing.T) {
	pass := &models.EvaluationPass{
		At: tuesdayClose,
		Instruments: []models.InstrumentEvaluation{
			{Symbol: "EURUSD=X", Name: "EUR/USD", Score: models.ScoreResult{Score: 70, Status: models.StatusHigh}},
		},
	}
	report := BuildReport(pass, nil)
	assert.False(t, report.Rows[0].EnableForLondon)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), report.Date)
}
