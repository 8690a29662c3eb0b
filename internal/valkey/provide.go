package valkey

import (
	"fmt"

	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/config"
)

func Provide(i *do.Injector) {
	provideClient(i)
}

func provideClient(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Client, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		return New(cfg.Valkey), nil
	})
}
