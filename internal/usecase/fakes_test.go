package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
)

type fakeSource struct {
	mu        sync.Mutex
	bars      map[string]models.BarWindow
	yields    map[string][]float64
	barErrs   map[string]error
	barCalls  map[string]int
	yieldHits map[string]int
	asOfs     []time.Time
}

func (s *fakeSource) LatestBars(_ context.Context, symbol string, n int, asOf time.Time) (models.BarWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asOfs = append(s.asOfs, asOf)
	if s.barCalls == nil {
		s.barCalls = map[string]int{}
	}
	s.barCalls[symbol]++
	if err := s.barErrs[symbol]; err != nil {
		return nil, err
	}
	w, ok := s.bars[symbol]
	if !ok {
		return nil, domrepo.ErrNoData
	}
	if !asOf.IsZero() {
		kept := models.BarWindow{}
		for _, b := range w {
			if !b.Session.After(asOf) {
				kept = append(kept, b)
			}
		}
		w = kept
	}
	return w.Tail(n), nil
}

func (s *fakeSource) LatestYields(_ context.Context, series string, n int, _ time.Time) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.yieldHits == nil {
		s.yieldHits = map[string]int{}
	}
	s.yieldHits[series]++
	v, ok := s.yields[series]
	if !ok {
		return nil, domrepo.ErrNoData
	}
	if len(v) > n {
		v = v[len(v)-n:]
	}
	return v, nil
}

type fakeMetrics struct {
	mu         sync.Mutex
	passes     int
	scores     map[string]models.ScoreResult
	dataErrors map[string]int
	sinkErrors map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		scores:     map[string]models.ScoreResult{},
		dataErrors: map[string]int{},
		sinkErrors: map[string]int{},
	}
}

func (m *fakeMetrics) RecordPass(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes++
}

func (m *fakeMetrics) RecordScore(symbol string, r models.ScoreResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[symbol] = r
}

func (m *fakeMetrics) RecordDataError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataErrors[kind]++
}

func (m *fakeMetrics) RecordSinkError(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinkErrors[sink]++
}

type memorySink struct {
	mu     sync.Mutex
	name   string
	err    error
	passes []*models.EvaluationPass
}

func (s *memorySink) Name() string { return s.name }

func (s *memorySink) Publish(_ context.Context, p *models.EvaluationPass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.passes = append(s.passes, p)
	return nil
}

var errUpstream = errors.New("upstream timeout")

// Tuesday 2024-03-05 16:00 in New York.
var tuesdayClose = time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC)

// history returns 29 quiet 40-pip bars around base followed by last.
func history(base float64, last models.PriceBar) models.BarWindow {
	start := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	w := make(models.BarWindow, 0, 30)
	for i := 0; i < 29; i++ {
		w = append(w, models.PriceBar{
			Session: start.AddDate(0, 0, i),
			Open:    base,
			High:    base + 0.0030,
			Low:     base - 0.0010,
			Close:   base + 0.0010,
		})
	}
	last.Session = start.AddDate(0, 0, 29)
	return append(w, last)
}

func universe() []models.InstrumentConfig {
	return []models.InstrumentConfig{
		{Symbol: "EURUSD=X", Name: "EUR/USD", PipMultiplier: 10000, ExpectedRangeMinPips: 50, ExpectedRangeMaxPips: 110,
			YieldSeries: "DE10Y", Quote: models.QuoteForeignUSD, News: "ECB", Target: "PDH"},
		{Symbol: "GBPUSD=X", Name: "GBP/USD", PipMultiplier: 10000, ExpectedRangeMinPips: 60, ExpectedRangeMaxPips: 130,
			Quote: models.QuoteForeignUSD},
		{Symbol: "JPY=X", Name: "USD/JPY", PipMultiplier: 100, ExpectedRangeMinPips: 60, ExpectedRangeMaxPips: 140,
			YieldSeries: "JP10Y", Quote: models.QuoteUSDForeign},
		{Symbol: "AUDUSD=X", Name: "AUD/USD", PipMultiplier: 10000, ExpectedRangeMinPips: 40, ExpectedRangeMaxPips: 90,
			Quote: models.QuoteForeignUSD},
	}
}

func marketFixture() *fakeSource {
	return &fakeSource{
		bars: map[string]models.BarWindow{
			// 90 pip range, 70 pip body: all three criteria on a Tuesday
			"EURUSD=X": history(1.0800, models.PriceBar{Open: 1.0800, High: 1.0880, Low: 1.0790, Close: 1.0870}),
			// 40 pip range misses the band, 30 pip body displaces
			"GBPUSD=X": history(1.2700, models.PriceBar{Open: 1.2700, High: 1.2735, Low: 1.2695, Close: 1.2730}),
			// high below close
			"AUDUSD=X": history(0.6500, models.PriceBar{Open: 0.6500, High: 0.6510, Low: 0.6490, Close: 0.6520}),
		},
		barErrs: map[string]error{"JPY=X": errUpstream},
		yields: map[string][]float64{
			"^TNX":  {4.30, 4.25, 4.20, 4.18, 4.10},
			"DE10Y": {2.20, 2.25, 2.30, 2.32, 2.40},
		},
	}
}
