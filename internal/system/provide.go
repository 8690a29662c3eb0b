package system

import (
	"fmt"

	"github.com/samber/do"
	"github.com/spf13/afero"

	"github.com/statuswatch/status-plane/internal/config"
)

func Provide(i *do.Injector) {
	provideProvider(i)
	provideCollector(i)
	provideStorageIndicator(i)
	provideHeapIndicator(i)
	provideRSSIndicator(i)
}

func provideProvider(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (Provider, error) {
		return NewProvider(afero.NewOsFs()), nil
	})
}

func provideCollector(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Collector, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		provider, err := do.Invoke[Provider](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get system provider: %w", err)
		}
		return NewCollector(afero.NewOsFs(), provider, CollectorConfig{
			DrivePath: cfg.Checks.StoragePath,
		}), nil
	})
}

func provideStorageIndicator(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*StorageIndicator, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		provider, err := do.Invoke[Provider](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get system provider: %w", err)
		}
		return NewStorageIndicator(provider, cfg.Checks.StoragePath, cfg.Checks.StorageThreshold)
	})
}

func provideHeapIndicator(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*HeapIndicator, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		provider, err := do.Invoke[Provider](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get system provider: %w", err)
		}
		return NewHeapIndicator(provider, cfg.Checks.HeapLimitBytes)
	})
}

func provideRSSIndicator(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RSSIndicator, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		provider, err := do.Invoke[Provider](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get system provider: %w", err)
		}
		return NewRSSIndicator(provider, cfg.Checks.RSSLimitBytes)
	})
}
