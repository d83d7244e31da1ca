package di

import (
	"context"
	"fmt"
	"time"

	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/handler/api"
	"FxPulse/internal/handler/ws"
	mid "FxPulse/internal/middleware"
	internalrepo "FxPulse/internal/repository"
	"FxPulse/internal/service/ratelimit"
	"FxPulse/internal/service/yahoo"
	"FxPulse/internal/services/signals"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/cache"
	pkgch "FxPulse/pkg/clickhouse"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	pkgkafka "FxPulse/pkg/kafka"
	"FxPulse/pkg/logger"
	"FxPulse/pkg/metrics"
	"FxPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideLocation resolves the evaluation timezone.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := cfg.Evaluation.Location()
	if err != nil {
		return nil, fmt.Errorf("evaluation timezone: %w", err)
	}
	return loc, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// UpstreamSource is the uncached market data source.
type UpstreamSource interface {
	domrepo.MarketData
}

// ProvideMarketSource creates the upstream bar and yield source selected by
// data.source.
func ProvideMarketSource(cfg *config.Config, l *logger.Logger) (UpstreamSource, func(), error) {
	switch cfg.Data.Source {
	case "clickhouse":
		ch := cfg.Data.ClickHouse
		client, err := pkgch.NewClient(
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithMaxConnections(cfg.Evaluation.Workers*2, cfg.Evaluation.Workers),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
			pkgch.WithHTTP(ch.UseHTTP),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}

		bars, yields := ch.Database+"."+ch.BarsTable, ch.Database+"."+ch.YieldsTable
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.SchemaStatements(ch.Database, bars, yields)); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}

		store := internalrepo.NewCHBarStore(client.DB(), bars, yields, l)
		cleanup := func() {
			if err := client.Close(); err != nil {
				l.Warn("clickhouse close error", logger.Error(err))
			}
		}
		l.Info("market data source ready", logger.String("source", "clickhouse"), logger.String("database", ch.Database))
		return store, cleanup, nil

	default:
		y := cfg.Data.Yahoo
		client := yahoo.New(y.BaseURL,
			yahoo.WithRange(y.Range),
			yahoo.WithTimeout(y.Timeout),
			yahoo.WithBreaker(y.BreakerFailures, y.BreakerTimeout),
			yahoo.WithLogger(l),
		)
		l.Info("market data source ready", logger.String("source", "yahoo"), logger.String("range", y.Range))
		return client, func() {}, nil
	}
}

// ProvideCache creates the fetch cache. It returns nil for backend "none".
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	c := cfg.Data.Cache

	var svc cache.Service
	switch c.Backend {
	case "none":
		return nil, func() {}, nil
	case "memory":
		svc = cache.NewMemoryCache(cache.WithMemoryMaxSize(c.MaxEntries))
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(c.Redis.Host, c.Redis.Port),
			cache.WithRedisAuth(c.Redis.Password, c.Redis.DB),
			cache.WithRedisPrefix(c.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = rc
		if c.Backend == "layered" {
			svc = cache.NewLayeredCache(rc, c.MaxEntries, c.TTL/2)
		}
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	return svc, func() { _ = svc.Close() }, nil
}

// ProvideCachedSource wraps the source with the fetch cache, or returns nil
// when caching is off.
func ProvideCachedSource(src UpstreamSource, c cache.Service, cfg *config.Config, l *logger.Logger) *internalrepo.CachedSource {
	if c == nil {
		return nil
	}
	return internalrepo.NewCachedSource(src, c, cfg.Data.Cache.TTL, l)
}

// ProvideMarketData picks the cached source when there is one.
func ProvideMarketData(src UpstreamSource, cached *internalrepo.CachedSource) domrepo.MarketData {
	if cached != nil {
		return cached
	}
	return src
}

// ProvidePurger exposes cache purging to the API.
func ProvidePurger(cached *internalrepo.CachedSource) api.Purger {
	if cached == nil {
		return nil
	}
	return cached
}

// ProvideEvaluator creates the evaluation use case.
func ProvideEvaluator(
	cfg *config.Config,
	source domrepo.MarketData,
	m domrepo.Metrics,
	loc *time.Location,
	l *logger.Logger,
) *usecase.Evaluator {
	ev := cfg.Evaluation
	return usecase.NewEvaluator(
		source,
		cfg.Instruments,
		signals.YieldAnalyzer{TrendThreshold: ev.YieldTrendThreshold},
		m,
		usecase.EvaluatorConfig{
			Lookback:       ev.Lookback,
			YieldLookback:  ev.YieldLookback,
			Workers:        ev.Workers,
			BaselineSeries: ev.BaselineYield,
			Location:       loc,
			FetchTimeout:   ev.FetchTimeout,
		},
		l,
	)
}

// ProvideHub creates the WebSocket hub.
func ProvideHub(l *logger.Logger) (*ws.Hub, func()) {
	hub := ws.NewHub(l)
	return hub, hub.Close
}

// ProvideKafkaPipeline creates the Kafka pass sink behind a delivery
// pipeline. It returns nil when Kafka is disabled.
func ProvideKafkaPipeline(cfg *config.Config, m domrepo.Metrics, l *logger.Logger) (*mid.DeliveryPipeline, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithBatchTimeout(50*time.Millisecond),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	sink := internalrepo.NewKafkaPassSink(producer, cfg.Kafka.Topic)
	pipe := mid.NewDeliveryPipeline(sink, m, l,
		mid.WithBufferSize(16),
		mid.WithRetry(cfg.Kafka.MaxAttempts, 500*time.Millisecond, 10*time.Second),
		mid.WithAttemptTimeout(cfg.Kafka.WriteTimeout),
	)
	cleanup := func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}
	l.Info("kafka delivery enabled", logger.String("topic", cfg.Kafka.Topic), logger.Strings("brokers", cfg.Kafka.Brokers))
	return pipe, cleanup, nil
}

// ProvideSinks lists the sinks every live pass is published to.
func ProvideSinks(hub *ws.Hub, pipe *mid.DeliveryPipeline) []domrepo.PassSink {
	sinks := []domrepo.PassSink{hub}
	if pipe != nil {
		sinks = append(sinks, pipe)
	}
	return sinks
}

// ProvideScheduler creates the periodic evaluation loop.
func ProvideScheduler(cfg *config.Config, eval *usecase.Evaluator, sinks []domrepo.PassSink, m domrepo.Metrics, l *logger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(eval, sinks, m, cfg.Evaluation.Interval, l)
}

// ProvideLimiter limits on-demand passes per client.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.PassRate, cfg.Server.PassBurst)
}

// ProvideSignalsHandler creates the REST handler.
func ProvideSignalsHandler(
	l *logger.Logger,
	sched *usecase.Scheduler,
	rl *ratelimit.Limiter,
	purger api.Purger,
	loc *time.Location,
) *api.SignalsHandler {
	return api.NewSignalsHandler(l, sched, rl, purger, loc)
}

// ProvideHTTPServer creates the Echo server with every handler registered.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, h *api.SignalsHandler, hub *ws.Hub) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h, hub},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	sched *usecase.Scheduler,
	pipe *mid.DeliveryPipeline,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, l, sched, pipe, srv)
}
