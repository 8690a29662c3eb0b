package database

import (
	"context"
	"fmt"

	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/config"
)

func Provide(i *do.Injector) {
	provideDatabase(i)
}

func provideDatabase(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Database, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		db, err := Connect(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	})
}
