package health

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/config"
)

func Provide(i *do.Injector) {
	provideAggregator(i)
}

func provideAggregator(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Aggregator, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		return NewAggregator(logger, AggregatorConfig{
			CacheTTL:     time.Duration(cfg.Checks.CacheTTLMillis) * time.Millisecond,
			CheckTimeout: time.Duration(cfg.Checks.TimeoutSeconds) * time.Second,
		}), nil
	})
}
