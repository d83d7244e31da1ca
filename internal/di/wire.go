//go:build wireinject
// +build wireinject

package di

import (
	"FxPulse/internal/usecase"
	"FxPulse/pkg/config"
	"FxPulse/pkg/server"

	"github.com/google/wire"
)

var sourceSet = wire.NewSet(
	ProvideLogger,
	ProvideLocation,
	ProvideMetrics,
	ProvideMarketSource,
	ProvideCache,
	ProvideCachedSource,
	ProvideMarketData,
	ProvideEvaluator,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		sourceSet,

		// Delivery
		ProvideHub,
		ProvideKafkaPipeline,
		ProvideSinks,
		ProvideScheduler,

		// HTTP
		ProvidePurger,
		ProvideLimiter,
		ProvideSignalsHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializeEvaluator wires the evaluator alone for one-shot passes.
func InitializeEvaluator(cfg *config.Config) (*usecase.Evaluator, func(), error) {
	wire.Build(sourceSet)
	return &usecase.Evaluator{}, nil, nil
}
