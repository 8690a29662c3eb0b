package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const checkCacheKey = "health:check"

const (
	defaultCacheTTL     = time.Second
	defaultCheckTimeout = 10 * time.Second
)

type AggregatorConfig struct {
	// CacheTTL bounds the staleness of a memoized report.
	CacheTTL time.Duration

	// CheckTimeout is the hard upper bound on one aggregation pass.
	// Indicators still pending at the deadline contribute Down results.
	CheckTimeout time.Duration
}

// Aggregator runs a named, ordered set of indicators and combines their
// results into one report. Indicator failures are data, not errors: a
// Check call fails only on internal faults.
type Aggregator struct {
	logger zerolog.Logger
	cfg    AggregatorConfig
	cache  *ReportCache
	group  singleflight.Group

	mu         sync.RWMutex
	indicators []Indicator
}

func NewAggregator(logger zerolog.Logger, cfg AggregatorConfig) *Aggregator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaultCheckTimeout
	}
	return &Aggregator{
		logger: logger,
		cfg:    cfg,
		cache:  NewReportCache(cfg.CacheTTL),
	}
}

// Register adds an indicator. Registration order is the invocation
// order. Registering a name twice replaces the earlier indicator in
// place.
func (a *Aggregator) Register(ind Indicator) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, existing := range a.indicators {
		if existing.Name() == ind.Name() {
			a.indicators[i] = ind
			return
		}
	}
	a.indicators = append(a.indicators, ind)
}

// IndicatorNames returns the registered names in invocation order.
func (a *Aggregator) IndicatorNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.indicators))
	for i, ind := range a.indicators {
		names[i] = ind.Name()
	}
	return names
}

// Check returns the cached report when one is live, otherwise runs every
// registered indicator and assembles a fresh report. Concurrent misses
// are collapsed into a single underlying pass. The pass is detached from
// the triggering caller: a caller whose context ends stops waiting and
// gets the context error, but the pass runs to completion so the cache
// only ever holds genuine snapshots.
func (a *Aggregator) Check(ctx context.Context) (*Report, error) {
	if report, ok := a.cache.Get(checkCacheKey); ok {
		return report, nil
	}

	resultCh := a.group.DoChan(checkCacheKey, func() (interface{}, error) {
		// A concurrent caller may have populated the cache between our
		// miss and acquiring the flight.
		if report, ok := a.cache.Get(checkCacheKey); ok {
			return report, nil
		}
		report, err := a.run(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		a.cache.Put(checkCacheKey, report)
		return report, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to aggregate health checks: %w", ctx.Err())
	case res := <-resultCh:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to aggregate health checks: %w", res.Err)
		}
		report, ok := res.Val.(*Report)
		if !ok {
			return nil, errors.New("failed to aggregate health checks: unexpected report type")
		}
		return report, nil
	}
}

func (a *Aggregator) run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.CheckTimeout)
	defer cancel()

	a.mu.RLock()
	indicators := make([]Indicator, len(a.indicators))
	copy(indicators, a.indicators)
	a.mu.RUnlock()

	results := make([]Result, len(indicators))
	var wg sync.WaitGroup
	for i, ind := range indicators {
		wg.Add(1)
		go func(i int, ind Indicator) {
			defer wg.Done()
			results[i] = a.runIndicator(ctx, ind)
		}(i, ind)
	}
	wg.Wait()

	return newReport(results), nil
}

// runIndicator isolates a single check: a panic or a deadline inside one
// indicator becomes a Down result without disturbing the others.
func (a *Aggregator) runIndicator(ctx context.Context, ind Indicator) Result {
	resultCh := make(chan Result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				a.logger.Error().
					Str("indicator", ind.Name()).
					Interface("panic", rec).
					Msg("health indicator panicked")
				resultCh <- Down(ind.Name(), fmt.Sprintf("check panicked: %v", rec))
			}
		}()
		resultCh <- ind.Check(ctx)
	}()

	select {
	case result := <-resultCh:
		if result.Name == "" {
			result.Name = ind.Name()
		}
		if result.Status == StatusDown && result.Error == "" {
			result.Error = "check failed"
		}
		return result
	case <-ctx.Done():
		reason := "check timed out"
		if errors.Is(ctx.Err(), context.Canceled) {
			reason = "check cancelled"
		}
		return Down(ind.Name(), reason)
	}
}
