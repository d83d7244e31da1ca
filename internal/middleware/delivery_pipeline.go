package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/pkg/logger"
)

var ErrBufferFull = errors.New("delivery buffer full")

// DeliveryPipeline sits between the scheduler and a slow sink. Publish only
// enqueues; a background worker delivers with bounded retries so a broker
// outage never stalls evaluation.
type DeliveryPipeline struct {
	sink    domrepo.PassSink
	metrics domrepo.Metrics
	l       *logger.Logger

	bufCh       chan *models.EvaluationPass
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
	timeout     time.Duration

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var _ domrepo.PassSink = (*DeliveryPipeline)(nil)

type PipelineOption func(*DeliveryPipeline)

// WithBufferSize sets how many passes may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *DeliveryPipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.EvaluationPass, n)
		}
	}
}

// WithRetry sets delivery attempts per pass and the backoff bounds between them.
func WithRetry(attempts int, min, max time.Duration) PipelineOption {
	return func(p *DeliveryPipeline) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
		p.backoffMin = min
		p.backoffMax = max
	}
}

// WithAttemptTimeout bounds a single delivery attempt.
func WithAttemptTimeout(d time.Duration) PipelineOption {
	return func(p *DeliveryPipeline) { p.timeout = d }
}

func NewDeliveryPipeline(sink domrepo.PassSink, metrics domrepo.Metrics, l *logger.Logger, opts ...PipelineOption) *DeliveryPipeline {
	p := &DeliveryPipeline{
		sink:        sink,
		metrics:     metrics,
		l:           l,
		bufCh:       make(chan *models.EvaluationPass, 16),
		maxAttempts: 3,
		backoffMin:  100 * time.Millisecond,
		backoffMax:  2 * time.Second,
		timeout:     10 * time.Second,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.l == nil {
		p.l = logger.Nop()
	}
	return p
}

func (p *DeliveryPipeline) Name() string { return p.sink.Name() }

// Publish enqueues pass without blocking.
func (p *DeliveryPipeline) Publish(_ context.Context, pass *models.EvaluationPass) error {
	select {
	case p.bufCh <- pass:
		return nil
	default:
		return ErrBufferFull
	}
}

// Start launches the delivery worker.
func (p *DeliveryPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.doneCh)
		for {
			select {
			case <-p.stopCh:
				p.drain(ctx)
				return
			case <-ctx.Done():
				return
			case pass := <-p.bufCh:
				p.deliver(ctx, pass)
			}
		}
	}()
}

// Stop makes a last delivery attempt for queued passes, bounded by ctx.
func (p *DeliveryPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)

	select {
	case <-p.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *DeliveryPipeline) drain(ctx context.Context) {
	for {
		select {
		case pass := <-p.bufCh:
			if err := p.attempt(ctx, pass); err != nil {
				p.metrics.RecordSinkError(p.sink.Name())
				p.l.Error("pass delivery dropped on shutdown",
					logger.String("sink", p.sink.Name()),
					logger.Error(err),
				)
			}
		default:
			return
		}
	}
}

func (p *DeliveryPipeline) deliver(ctx context.Context, pass *models.EvaluationPass) {
	backoff := p.backoffMin
	for attempt := 1; ; attempt++ {
		err := p.attempt(ctx, pass)
		if err == nil {
			return
		}
		if attempt >= p.maxAttempts {
			p.metrics.RecordSinkError(p.sink.Name())
			p.l.Error("pass delivery dropped",
				logger.String("sink", p.sink.Name()),
				logger.Time("at", pass.At),
				logger.Int("attempts", attempt),
				logger.Error(err),
			)
			return
		}
		p.l.Warn("pass delivery failed, retrying",
			logger.String("sink", p.sink.Name()),
			logger.Int("attempt", attempt),
			logger.Duration("backoff_ms", backoff),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			// shutting down; drain makes one more attempt
			p.requeue(pass)
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > p.backoffMax {
			backoff = p.backoffMax
		}
	}
}

func (p *DeliveryPipeline) attempt(ctx context.Context, pass *models.EvaluationPass) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.sink.Publish(ctx, pass)
}

func (p *DeliveryPipeline) requeue(pass *models.EvaluationPass) {
	select {
	case p.bufCh <- pass:
	default:
		p.metrics.RecordSinkError(p.sink.Name())
	}
}
