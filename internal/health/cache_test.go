package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCache(t *testing.T) {
	t.Run("miss on unknown key", func(t *testing.T) {
		cache := NewReportCache(time.Minute)
		_, ok := cache.Get("absent")
		assert.False(t, ok)
	})

	t.Run("hit returns the stored report", func(t *testing.T) {
		cache := NewReportCache(time.Minute)
		report := newReport([]Result{Up("alpha")})
		cache.Put("key", report)

		got, ok := cache.Get("key")
		require.True(t, ok)
		assert.Same(t, report, got)
	})

	t.Run("expiry is absolute", func(t *testing.T) {
		cache := NewReportCache(30 * time.Millisecond)
		cache.Put("key", newReport(nil))

		// Repeated hits must not extend the entry's lifetime.
		deadline := time.Now().Add(100 * time.Millisecond)
		for time.Now().Before(deadline) {
			cache.Get("key")
			time.Sleep(10 * time.Millisecond)
		}

		_, ok := cache.Get("key")
		assert.False(t, ok)
	})
}
