package dag

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/config"
)

func Provide(i *do.Injector) {
	provideIndicator(i)
	provideListener(i)
}

func provideIndicator(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*Indicator, error) {
		return NewIndicator(), nil
	})
}

func provideListener(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Listener, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get logger: %w", err)
		}
		indicator, err := do.Invoke[*Indicator](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get dag indicator: %w", err)
		}
		return NewListener(logger, cfg.MQTT, indicator)
	})
}
