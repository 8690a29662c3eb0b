package dag

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/status-plane/internal/health"
)

func TestIndicatorInitialState(t *testing.T) {
	indicator := NewIndicator()

	result := indicator.Check(context.Background())
	assert.Equal(t, health.StatusDown, result.Status)
	assert.Equal(t, "no network status received yet", result.Error)

	_, err := indicator.IsHealthy()
	var checkErr *health.CheckFailedError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, health.StatusDown, checkErr.Result.Status)
}

func TestIndicatorTransitions(t *testing.T) {
	network := map[string]any{"id": "net-1", "peers": float64(12)}

	t.Run("online carries the descriptor", func(t *testing.T) {
		indicator := NewIndicator()
		indicator.ThresholdCrossed(true, network)

		result := indicator.Check(context.Background())
		assert.Equal(t, health.StatusUp, result.Status)
		assert.Equal(t, network, result.Details["network"])

		got, err := indicator.IsHealthy()
		require.NoError(t, err)
		assert.Equal(t, network, got.Details["network"])
	})

	t.Run("offline keeps the last descriptor", func(t *testing.T) {
		indicator := NewIndicator()
		indicator.ThresholdCrossed(true, network)
		indicator.ThresholdCrossed(false, network)

		result := indicator.Check(context.Background())
		assert.Equal(t, health.StatusDown, result.Status)
		assert.Equal(t, "network is offline", result.Error)
		assert.Equal(t, network, result.Details["network"])
	})

	t.Run("latest notification wins", func(t *testing.T) {
		indicator := NewIndicator()
		indicator.ThresholdCrossed(false, map[string]any{"id": "old"})
		indicator.ThresholdCrossed(true, map[string]any{"id": "new"})

		result := indicator.Check(context.Background())
		assert.Equal(t, health.StatusUp, result.Status)
		assert.Equal(t, map[string]any{"id": "new"}, result.Details["network"])
	})
}

func TestIndicatorSnapshotConsistency(t *testing.T) {
	indicator := NewIndicator()

	// Writers flip between a healthy and an unhealthy state, each with a
	// descriptor that names its verdict. A torn read would pair a
	// verdict with the other state's descriptor.
	done := make(chan struct{})
	writerStopped := make(chan struct{})

	go func() {
		defer close(writerStopped)
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			online := i%2 == 0
			indicator.ThresholdCrossed(online, map[string]any{"online": online})
		}
	}()

	var wg sync.WaitGroup
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				result := indicator.Check(context.Background())
				network, ok := result.Details["network"].(map[string]any)
				if !ok {
					continue
				}
				expected := result.Status == health.StatusUp
				assert.Equal(t, expected, network["online"],
					fmt.Sprintf("status %s paired with descriptor %v", result.Status, network))
			}
		}()
	}

	wg.Wait()
	close(done)
	<-writerStopped
}
