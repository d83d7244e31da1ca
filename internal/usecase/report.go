package usecase

import (
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/signals"
)

// LondonEnableThreshold is the score above which the daily report recommends
// enabling execution for the London session.
const LondonEnableThreshold = signals.HighThreshold

// BuildReport renders the daily-close summary of pass, one row per
// instrument in configured order. The report date is the pass date in loc.
func BuildReport(pass *models.EvaluationPass, loc *time.Location) models.DailyReport {
	if loc == nil {
		loc = time.UTC
	}
	at := pass.At.In(loc)

	rows := make([]models.ReportRow, 0, len(pass.Instruments))
	for _, ev := range pass.Instruments {
		rows = append(rows, models.ReportRow{
			Pair:            ev.Name,
			Score:           fmt.Sprintf("%d%%", ev.Score.Score),
			Status:          ev.Score.Status,
			NewsFocus:       ev.News,
			Target:          ev.Target,
			StreamDown:      ev.DataUnavailable,
			EnableForLondon: !ev.Score.IsError() && ev.Score.Score > LondonEnableThreshold,
		})
	}

	return models.DailyReport{
		Date: time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc),
		Rows: rows,
		Pick: pass.Pick,
	}
}
