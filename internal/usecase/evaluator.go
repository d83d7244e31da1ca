package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/services/signals"
	"FxPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

// Data error kinds reported to metrics.
const (
	kindFetch      = "fetch"
	kindYield      = "yield"
	kindMalformed  = "malformed_bar"
	kindShortData  = "insufficient_data"
	kindInstrument = "invalid_instrument"
)

// EvaluatorConfig holds pass parameters.
type EvaluatorConfig struct {
	Lookback       int
	YieldLookback  int
	Workers        int
	BaselineSeries string
	Location       *time.Location
	FetchTimeout   time.Duration
}

// Evaluator runs evaluation passes over an immutable instrument universe.
type Evaluator struct {
	source      domrepo.MarketData
	instruments []models.InstrumentConfig
	analyzer    signals.YieldAnalyzer
	metrics     domrepo.Metrics
	cfg         EvaluatorConfig
	l           *logger.Logger
}

func NewEvaluator(
	source domrepo.MarketData,
	instruments []models.InstrumentConfig,
	analyzer signals.YieldAnalyzer,
	metrics domrepo.Metrics,
	cfg EvaluatorConfig,
	l *logger.Logger,
) *Evaluator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if l == nil {
		l = logger.Nop()
	}
	return &Evaluator{
		source:      source,
		instruments: instruments,
		analyzer:    analyzer,
		metrics:     metrics,
		cfg:         cfg,
		l:           l,
	}
}

// Instruments returns the configured universe in order.
func (e *Evaluator) Instruments() []models.InstrumentConfig {
	return e.instruments
}

// Evaluate scores every instrument on the newest data, taking the session
// criterion from at, and selects the pass winner. Per-instrument failures are
// folded into sentinels; the returned error is reserved for an empty universe.
func (e *Evaluator) Evaluate(ctx context.Context, at time.Time) (*models.EvaluationPass, error) {
	return e.evaluate(ctx, at, time.Time{})
}

// EvaluateAsOf replays a pass at a past time. Bars and yields are limited to
// sessions dated on or before at in the evaluation timezone.
func (e *Evaluator) EvaluateAsOf(ctx context.Context, at time.Time) (*models.EvaluationPass, error) {
	return e.evaluate(ctx, at, models.SessionOf(at, e.cfg.Location))
}

func (e *Evaluator) evaluate(ctx context.Context, at, asOf time.Time) (*models.EvaluationPass, error) {
	start := time.Now()
	if e.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
		defer cancel()
	}

	day := at.In(e.cfg.Location).Weekday()
	baseline := e.baseline(ctx, asOf)

	results := make([]models.InstrumentEvaluation, len(e.instruments))
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i, inst := range e.instruments {
		i, inst := i, inst
		g.Go(func() error {
			results[i] = e.evaluateOne(ctx, inst, baseline, day, asOf)
			return nil
		})
	}
	_ = g.Wait()

	pass := &models.EvaluationPass{
		At:          at,
		Instruments: results,
		Errors:      map[string]string{},
	}
	if !asOf.IsZero() {
		pass.AsOf = &asOf
	}
	if baseline == nil {
		pass.Errors[e.cfg.BaselineSeries] = "baseline yield unavailable"
	}

	entries := make([]models.InstrumentScore, len(results))
	for i, r := range results {
		entries[i] = models.InstrumentScore{Symbol: r.Symbol, Result: r.Score}
		if r.Err != "" {
			pass.Errors[r.Symbol] = r.Err
		}
	}

	pick, err := signals.SelectBest(entries)
	if err != nil {
		return nil, err
	}
	pass.Pick = &pick
	pass.Ranking = signals.Rank(entries)

	elapsed := time.Since(start)
	e.metrics.RecordPass(elapsed)
	e.l.Info("evaluation pass done",
		logger.Time("at", at),
		logger.Int("instruments", len(results)),
		logger.String("pick", pick.Symbol),
		logger.Int("score", pick.Result.Score),
		logger.Bool("high_probability", pick.HighProbability),
		logger.Int("errors", len(pass.Errors)),
		logger.Duration("duration_ms", elapsed),
	)
	return pass, nil
}

// EvaluateSymbol evaluates one configured instrument on the newest data.
func (e *Evaluator) EvaluateSymbol(ctx context.Context, symbol string, at time.Time) (*models.InstrumentEvaluation, error) {
	return e.evaluateSymbol(ctx, symbol, at, time.Time{})
}

// EvaluateSymbolAsOf evaluates one instrument on the data available at at.
func (e *Evaluator) EvaluateSymbolAsOf(ctx context.Context, symbol string, at time.Time) (*models.InstrumentEvaluation, error) {
	return e.evaluateSymbol(ctx, symbol, at, models.SessionOf(at, e.cfg.Location))
}

func (e *Evaluator) evaluateSymbol(ctx context.Context, symbol string, at, asOf time.Time) (*models.InstrumentEvaluation, error) {
	for _, inst := range e.instruments {
		if inst.Symbol != symbol {
			continue
		}
		if e.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
			defer cancel()
		}
		ev := e.evaluateOne(ctx, inst, e.baseline(ctx, asOf), at.In(e.cfg.Location).Weekday(), asOf)
		return &ev, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, symbol)
}

// baseline returns nil when the series cannot be fetched, which the yield
// analyzer reports as missing data for every instrument.
func (e *Evaluator) baseline(ctx context.Context, asOf time.Time) []float64 {
	values, err := e.source.LatestYields(ctx, e.cfg.BaselineSeries, e.cfg.YieldLookback, asOf)
	if err != nil {
		e.metrics.RecordDataError(kindYield)
		e.l.Warn("baseline yield fetch failed",
			logger.String("series", e.cfg.BaselineSeries),
			logger.Error(err),
		)
		return nil
	}
	return values
}

func (e *Evaluator) evaluateOne(ctx context.Context, inst models.InstrumentConfig, baseline []float64, day time.Weekday, asOf time.Time) models.InstrumentEvaluation {
	ev := models.InstrumentEvaluation{
		Symbol: inst.Symbol,
		Name:   inst.DisplayName(),
		News:   inst.News,
		Target: inst.Target,
	}
	yield := e.yieldBias(ctx, inst, baseline, asOf)
	ev.Yield = &yield

	bars, err := e.source.LatestBars(ctx, inst.Symbol, e.cfg.Lookback, asOf)
	if err != nil {
		e.metrics.RecordDataError(kindFetch)
		e.l.Warn("bar fetch failed, instrument marked stream down",
			logger.String("symbol", inst.Symbol),
			logger.Error(err),
		)
		ev.Score = models.ErrorScore()
		ev.DataUnavailable = true
		ev.Err = err.Error()
		e.metrics.RecordScore(inst.Symbol, ev.Score)
		return ev
	}

	result, err := signals.Score(bars, inst, day)
	ev.Score = result
	e.metrics.RecordScore(inst.Symbol, result)
	if err != nil {
		e.metrics.RecordDataError(errorKind(err))
		e.l.Error("instrument score failed",
			logger.String("symbol", inst.Symbol),
			logger.Int("bars", len(bars)),
			logger.Error(err),
		)
		ev.Err = err.Error()
		return ev
	}

	regime, err := signals.ClassifyVolatility(bars)
	if err != nil {
		e.metrics.RecordDataError(errorKind(err))
		e.l.Warn("volatility regime unavailable",
			logger.String("symbol", inst.Symbol),
			logger.Int("bars", len(bars)),
			logger.Error(err),
		)
	} else {
		ev.Volatility = &regime
	}

	e.l.Debug("instrument scored",
		logger.String("symbol", inst.Symbol),
		logger.Int("score", result.Score),
		logger.String("status", string(result.Status)),
		logger.Float("range_pips", result.RangePips),
		logger.String("divergence", string(yield.Divergence)),
	)
	return ev
}

func (e *Evaluator) yieldBias(ctx context.Context, inst models.InstrumentConfig, baseline []float64, asOf time.Time) models.YieldBias {
	if inst.YieldSeries == "" || baseline == nil {
		return models.NoYieldData()
	}
	ref, err := e.source.LatestYields(ctx, inst.YieldSeries, e.cfg.YieldLookback, asOf)
	if err != nil {
		e.metrics.RecordDataError(kindYield)
		e.l.Warn("reference yield fetch failed",
			logger.String("symbol", inst.Symbol),
			logger.String("series", inst.YieldSeries),
			logger.Error(err),
		)
		return models.NoYieldData()
	}
	return e.analyzer.Analyze(ref, baseline, inst.Quote)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, signals.ErrMalformedBar):
		return kindMalformed
	case errors.Is(err, signals.ErrInsufficientData):
		return kindShortData
	case errors.Is(err, signals.ErrInvalidInstrument):
		return kindInstrument
	default:
		return kindFetch
	}
}
