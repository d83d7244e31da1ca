package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/pkg/logger"
)

// CHBarStore reads daily bars and yield quotes loaded into ClickHouse by an
// external ingestion job.
type CHBarStore struct {
	db          *sql.DB
	barsTable   string
	yieldsTable string
	l           *logger.Logger
}

var _ domrepo.MarketData = (*CHBarStore)(nil)

// NewCHBarStore creates a store over fully qualified table names.
func NewCHBarStore(db *sql.DB, barsTable, yieldsTable string, l *logger.Logger) *CHBarStore {
	if l == nil {
		l = logger.Nop()
	}
	return &CHBarStore{db: db, barsTable: barsTable, yieldsTable: yieldsTable, l: l}
}

// SchemaStatements returns the DDL for the store's tables.
func SchemaStatements(database, barsTable, yieldsTable string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol String,
            session Date,
            open Float64,
            high Float64,
            low Float64,
            close Float64
        ) ENGINE = ReplacingMergeTree ORDER BY (symbol, session)`, barsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            series String,
            session Date,
            value Float64
        ) ENGINE = ReplacingMergeTree ORDER BY (series, session)`, yieldsTable),
	}
}

// asOfFilter narrows a query to sessions on or before asOf.
func asOfFilter(asOf time.Time, args []any) (string, []any) {
	if asOf.IsZero() {
		return "", args
	}
	return "AND session <= ?", append(args, asOf)
}

func (s *CHBarStore) LatestBars(ctx context.Context, symbol string, n int, asOf time.Time) (models.BarWindow, error) {
	start := time.Now()
	const qtpl = `
        SELECT session, open, high, low, close
        FROM %s FINAL
        WHERE symbol = ? %s
        ORDER BY session DESC
        LIMIT ?
    `
	filter, args := asOfFilter(asOf, []any{symbol})
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.barsTable, filter), append(args, n)...)
	if err != nil {
		s.l.Error("clickhouse latest_bars query error",
			logger.String("table", s.barsTable),
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return nil, fmt.Errorf("latest bars %s: %w", symbol, err)
	}
	defer rows.Close()

	out := make(models.BarWindow, 0, n)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Session, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scan bar %s: %w", symbol, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", symbol, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("clickhouse %s: %w", symbol, domrepo.ErrNoData)
	}

	// newest first from the query
	slices.Reverse(out)

	s.l.Debug("clickhouse latest_bars ok",
		logger.String("symbol", symbol),
		logger.Int("rows", len(out)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHBarStore) LatestYields(ctx context.Context, series string, n int, asOf time.Time) ([]float64, error) {
	const qtpl = `
        SELECT value
        FROM %s FINAL
        WHERE series = ? %s
        ORDER BY session DESC
        LIMIT ?
    `
	filter, args := asOfFilter(asOf, []any{series})
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.yieldsTable, filter), append(args, n)...)
	if err != nil {
		s.l.Error("clickhouse latest_yields query error",
			logger.String("table", s.yieldsTable),
			logger.String("series", series),
			logger.Error(err),
		)
		return nil, fmt.Errorf("latest yields %s: %w", series, err)
	}
	defer rows.Close()

	out := make([]float64, 0, n)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan yield %s: %w", series, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", series, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("clickhouse %s: %w", series, domrepo.ErrNoData)
	}

	slices.Reverse(out)
	return out, nil
}
