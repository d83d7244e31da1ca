package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/pkg/logger"
)

// Scheduler runs evaluation passes on an interval, keeps the latest one in
// memory and hands every live pass to the configured sinks.
type Scheduler struct {
	eval     *Evaluator
	sinks    []domrepo.PassSink
	metrics  domrepo.Metrics
	interval time.Duration
	l        *logger.Logger
	now      func() time.Time

	mu     sync.Mutex
	latest atomic.Pointer[models.EvaluationPass]
}

func NewScheduler(eval *Evaluator, sinks []domrepo.PassSink, metrics domrepo.Metrics, interval time.Duration, l *logger.Logger) *Scheduler {
	if l == nil {
		l = logger.Nop()
	}
	return &Scheduler{
		eval:     eval,
		sinks:    sinks,
		metrics:  metrics,
		interval: interval,
		l:        l,
		now:      time.Now,
	}
}

// Run evaluates immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.l.Info("scheduler started", logger.Duration("interval_ms", s.interval))
	if _, err := s.RunOnce(ctx); err != nil {
		s.l.Error("evaluation pass failed", logger.Error(err))
	}
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.l.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.l.Error("evaluation pass failed", logger.Error(err))
			}
		}
	}
}

// RunOnce evaluates the universe now, stores the pass as the latest one and
// publishes it. Concurrent callers are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) (*models.EvaluationPass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, err := s.eval.Evaluate(ctx, s.now())
	if err != nil {
		return nil, err
	}
	s.latest.Store(pass)
	s.publish(ctx, pass)
	return pass, nil
}

// Replay evaluates the universe on the data available at at, without
// touching the latest pass or the sinks.
func (s *Scheduler) Replay(ctx context.Context, at time.Time) (*models.EvaluationPass, error) {
	return s.eval.EvaluateAsOf(ctx, at)
}

// Latest returns the most recent live pass.
func (s *Scheduler) Latest() (*models.EvaluationPass, bool) {
	p := s.latest.Load()
	return p, p != nil
}

// Evaluator exposes the underlying evaluator for single-instrument queries.
func (s *Scheduler) Evaluator() *Evaluator { return s.eval }

func (s *Scheduler) publish(ctx context.Context, pass *models.EvaluationPass) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, pass); err != nil {
			s.metrics.RecordSinkError(sink.Name())
			s.l.Warn("pass publish failed",
				logger.String("sink", sink.Name()),
				logger.Error(err),
			)
		}
	}
}
