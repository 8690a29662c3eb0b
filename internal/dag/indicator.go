package dag

import (
	"context"
	"sync"

	"github.com/statuswatch/status-plane/internal/health"
)

const IndicatorName = "dag"

var _ health.Indicator = (*Indicator)(nil)

// Indicator reflects the liveness of the external dag network as
// reported by the monitoring subsystem. State is pushed by threshold
// notifications, never polled: until the first online notification
// arrives the network is assumed down. There are no internal timers;
// the indicator only reflects what it was last told.
type Indicator struct {
	mu      sync.RWMutex
	healthy bool
	network map[string]any
}

func NewIndicator() *Indicator {
	return &Indicator{}
}

// ThresholdCrossed records a network transition. It is the sole mutator
// of state; the most recently delivered notification wins.
func (i *Indicator) ThresholdCrossed(online bool, network map[string]any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.healthy = online
	i.network = network
}

func (i *Indicator) Name() string {
	return IndicatorName
}

// Check reads a single consistent snapshot of (healthy, network): a
// notification landing mid-check can never produce a result mixing the
// old verdict with the new descriptor.
func (i *Indicator) Check(_ context.Context) health.Result {
	i.mu.RLock()
	healthy, network := i.healthy, i.network
	i.mu.RUnlock()

	result := health.NewResult(IndicatorName, healthy, map[string]any{
		"network": network,
	})
	if !healthy {
		if network == nil {
			result.Error = "no network status received yet"
		} else {
			result.Error = "network is offline"
		}
	}
	return result
}

// IsHealthy returns the current result, failing with a CheckFailedError
// that carries the same result when the network is offline so callers
// can still inspect the detail.
func (i *Indicator) IsHealthy() (health.Result, error) {
	result := i.Check(context.Background())
	if !result.Healthy() {
		return result, &health.CheckFailedError{Result: result}
	}
	return result, nil
}
