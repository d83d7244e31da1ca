package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mid "FxPulse/internal/middleware"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	sched      *usecase.Scheduler
	pipe       *mid.DeliveryPipeline
	httpServer *xhttp.Server
}

// New creates a new App. pipe may be nil when Kafka delivery is off.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	sched *usecase.Scheduler,
	pipe *mid.DeliveryPipeline,
	httpServer *xhttp.Server,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		sched:      sched,
		pipe:       pipe,
		httpServer: httpServer,
	}
}

// Run starts the scheduler, the delivery pipeline and the HTTP server, and
// blocks until ctx is cancelled, a termination signal arrives or the HTTP
// listener fails.
func (a *App) Run(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the pipeline outlives sigCtx so queued passes can drain on shutdown
	pipeCtx, cancelPipe := context.WithCancel(context.Background())
	defer cancelPipe()
	if a.pipe != nil {
		a.pipe.Start(pipeCtx)
	}

	httpErr := a.httpServer.Start()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return a.sched.Run(gctx)
	})
	g.Go(func() error {
		select {
		case err := <-httpErr:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	a.l.Info("fxpulse started",
		applogger.Int("instruments", len(a.cfg.Instruments)),
		applogger.Duration("interval_ms", a.cfg.Evaluation.Interval),
		applogger.String("source", a.cfg.Data.Source),
	)

	err := g.Wait()
	if err != nil {
		a.l.Error("application error", applogger.Error(err))
	} else {
		a.l.Info("shutdown signal received")
	}

	a.shutdown()
	return err
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	if a.pipe != nil {
		if err := a.pipe.Stop(ctx); err != nil {
			a.l.Warn("delivery pipeline stop error", applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
}
