package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/statuswatch/status-plane/internal/health"
	"github.com/statuswatch/status-plane/internal/logging"
)

// Monitor periodically re-runs the health aggregation in the background
// and logs status transitions, so a degradation is visible in the logs
// even when nobody is polling the HTTP endpoint.
type Monitor struct {
	logger     zerolog.Logger
	aggregator *health.Aggregator
	interval   time.Duration
	scheduler  *gocron.Scheduler

	mu         sync.Mutex
	lastStatus health.ReportStatus
}

func New(logger zerolog.Logger, aggregator *health.Aggregator, interval time.Duration) *Monitor {
	return &Monitor{
		logger:     logging.Component(logger, "monitor"),
		aggregator: aggregator,
		interval:   interval,
	}
}

func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info().
		Dur("interval", m.interval).
		Msg("starting health monitor")

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(m.interval).Do(func() {
		m.check(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule health monitor: %w", err)
	}
	m.scheduler = scheduler
	scheduler.StartAsync()

	return nil
}

func (m *Monitor) Shutdown() error {
	m.logger.Info().Msg("shutting down health monitor")
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	return nil
}

func (m *Monitor) check(ctx context.Context) {
	report, err := m.aggregator.Check(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("background health check failed")
		return
	}

	m.mu.Lock()
	previous := m.lastStatus
	m.lastStatus = report.Status
	m.mu.Unlock()

	switch {
	case report.Status == health.ReportError:
		evt := m.logger.Warn().Str("message", report.ErrorMessage())
		if previous != health.ReportError {
			evt.Msg("health status degraded")
		} else {
			evt.Msg("health status still degraded")
		}
	case previous == health.ReportError:
		m.logger.Info().Msg("health status recovered")
	default:
		m.logger.Debug().Msg("health status ok")
	}
}
