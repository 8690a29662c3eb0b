package monitor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/health"
)

func Provide(i *do.Injector) {
	provideMonitor(i)
}

func provideMonitor(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Monitor, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		aggregator, err := do.Invoke[*health.Aggregator](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get aggregator: %w", err)
		}
		interval := time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
		return New(logger, aggregator, interval), nil
	})
}
