package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/statuswatch/status-plane/internal/api"
	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/dag"
	"github.com/statuswatch/status-plane/internal/database"
	"github.com/statuswatch/status-plane/internal/health"
	"github.com/statuswatch/status-plane/internal/monitor"
	"github.com/statuswatch/status-plane/internal/system"
	"github.com/statuswatch/status-plane/internal/valkey"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg      config.Config
	logger   zerolog.Logger
	injector *do.Injector

	server   *api.Server
	listener *dag.Listener
	monitor  *monitor.Monitor
	db       *database.Database
	cache    *valkey.Client
}

func NewApp(i *do.Injector) (*App, error) {
	cfg, err := do.Invoke[config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	logger, err := do.Invoke[zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get logger: %w", err)
	}
	return &App{
		cfg:      cfg,
		logger:   logger,
		injector: i,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	aggregator, err := a.registerIndicators()
	if err != nil {
		return err
	}
	a.logger.Info().
		Strs("indicators", aggregator.IndicatorNames()).
		Msg("health indicators registered")

	if a.cfg.MQTT.Enabled {
		listener, err := do.Invoke[*dag.Listener](a.injector)
		if err != nil {
			return fmt.Errorf("failed to get dag listener: %w", err)
		}
		if err := listener.Start(ctx); err != nil {
			return fmt.Errorf("failed to start dag listener: %w", err)
		}
		a.listener = listener
	}

	if a.cfg.Monitor.Enabled {
		mon, err := do.Invoke[*monitor.Monitor](a.injector)
		if err != nil {
			return fmt.Errorf("failed to get monitor: %w", err)
		}
		if err := mon.Start(ctx); err != nil {
			return fmt.Errorf("failed to start monitor: %w", err)
		}
		a.monitor = mon
	}

	if a.cfg.HTTP.Enabled {
		server, err := do.Invoke[*api.Server](a.injector)
		if err != nil {
			return fmt.Errorf("failed to get api server: %w", err)
		}
		server.Start()
		a.server = server
	}

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("got shutdown signal")
		return a.Shutdown(nil)
	case err := <-a.serverErr():
		return a.Shutdown(err)
	}
}

// registerIndicators builds the aggregation set. Order is fixed: the
// local system checks first, then the external dependencies.
func (a *App) registerIndicators() (*health.Aggregator, error) {
	aggregator, err := do.Invoke[*health.Aggregator](a.injector)
	if err != nil {
		return nil, fmt.Errorf("failed to get aggregator: %w", err)
	}

	storage, err := do.Invoke[*system.StorageIndicator](a.injector)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage indicator: %w", err)
	}
	aggregator.Register(storage)

	heap, err := do.Invoke[*system.HeapIndicator](a.injector)
	if err != nil {
		return nil, fmt.Errorf("failed to get heap indicator: %w", err)
	}
	aggregator.Register(heap)

	rss, err := do.Invoke[*system.RSSIndicator](a.injector)
	if err != nil {
		return nil, fmt.Errorf("failed to get rss indicator: %w", err)
	}
	aggregator.Register(rss)

	if a.cfg.Database.Enabled {
		db, err := do.Invoke[*database.Database](a.injector)
		if err != nil {
			return nil, fmt.Errorf("failed to get database: %w", err)
		}
		a.db = db
		aggregator.Register(db)
	}

	if a.cfg.Valkey.Enabled {
		cache, err := do.Invoke[*valkey.Client](a.injector)
		if err != nil {
			return nil, fmt.Errorf("failed to get valkey client: %w", err)
		}
		a.cache = cache
		aggregator.Register(cache)
	}

	if a.cfg.MQTT.Enabled {
		indicator, err := do.Invoke[*dag.Indicator](a.injector)
		if err != nil {
			return nil, fmt.Errorf("failed to get dag indicator: %w", err)
		}
		aggregator.Register(indicator)
	}

	return aggregator, nil
}

func (a *App) serverErr() <-chan error {
	if a.server == nil {
		// No HTTP listener, block until the context ends.
		return make(chan error)
	}
	return a.server.Err()
}

func (a *App) Shutdown(reason error) error {
	errs := []error{reason}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.monitor != nil {
		a.logger.Info().Msg("stopping monitor")
		errs = append(errs, a.monitor.Shutdown())
	}
	if a.server != nil {
		a.logger.Info().Msg("stopping api server")
		errs = append(errs, a.server.Stop(shutdownCtx))
	}
	if a.listener != nil {
		a.logger.Info().Msg("stopping dag listener")
		errs = append(errs, a.listener.Stop(shutdownCtx))
	}
	if a.cache != nil {
		a.logger.Info().Msg("closing valkey client")
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		a.logger.Info().Msg("closing database pool")
		a.db.Close()
	}

	return errors.Join(errs...)
}
