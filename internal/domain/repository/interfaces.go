package repository

import (
	"context"
	"errors"
	"time"

	"FxPulse/internal/domain/models"
)

// ErrNoData is returned by sources that have nothing for the requested
// symbol or series.
var ErrNoData = errors.New("no data")

// BarSource returns the most recent daily bars for a symbol, oldest first.
// A zero asOf means the newest data available; otherwise only sessions dated
// on or before asOf (a session date, see models.SessionOf) are returned.
type BarSource interface {
	LatestBars(ctx context.Context, symbol string, n int, asOf time.Time) (models.BarWindow, error)
}

// YieldSource returns the most recent daily yield observations for a series,
// oldest first, bounded by asOf like BarSource.
type YieldSource interface {
	LatestYields(ctx context.Context, series string, n int, asOf time.Time) ([]float64, error)
}

type MarketData interface {
	BarSource
	YieldSource
}

// PassSink delivers a finished evaluation pass somewhere outside the process.
type PassSink interface {
	Name() string
	Publish(ctx context.Context, pass *models.EvaluationPass) error
}

type Metrics interface {
	RecordPass(d time.Duration)
	RecordScore(symbol string, result models.ScoreResult)
	RecordDataError(kind string)
	RecordSinkError(sink string)
}
