package api

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/health"
	"github.com/statuswatch/status-plane/internal/system"
)

func Provide(i *do.Injector) {
	provideHandler(i)
	provideServer(i)
}

func provideHandler(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Handler, error) {
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		aggregator, err := do.Invoke[*health.Aggregator](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get aggregator: %w", err)
		}
		collector, err := do.Invoke[*system.Collector](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get system collector: %w", err)
		}
		return NewHandler(logger, aggregator, collector), nil
	})
}

func provideServer(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Server, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		handler, err := do.Invoke[*Handler](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get api handler: %w", err)
		}
		return NewServer(cfg.HTTP, handler, logger), nil
	})
}
