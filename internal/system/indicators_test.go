package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/status-plane/internal/health"
)

type fakeProvider struct {
	usage    FilesystemUsage
	usageErr error
	heap     uint64
	heapErr  error
	rss      uint64
	rssErr   error
}

func (f *fakeProvider) FilesystemUsage(string) (FilesystemUsage, error) {
	return f.usage, f.usageErr
}

func (f *fakeProvider) HeapAlloc() (uint64, error) {
	return f.heap, f.heapErr
}

func (f *fakeProvider) ResidentMemory() (uint64, error) {
	return f.rss, f.rssErr
}

func TestNewStorageIndicator(t *testing.T) {
	provider := &fakeProvider{}

	tests := []struct {
		name      string
		path      string
		threshold float64
		wantErr   string
	}{
		{name: "valid", path: "/", threshold: 0.9},
		{name: "threshold of one", path: "/", threshold: 1},
		{name: "empty path", path: "", threshold: 0.9, wantErr: "storage path cannot be empty"},
		{name: "zero threshold", path: "/", threshold: 0, wantErr: "storage threshold must be in (0,1]"},
		{name: "negative threshold", path: "/", threshold: -0.5, wantErr: "storage threshold must be in (0,1]"},
		{name: "threshold above one", path: "/", threshold: 1.1, wantErr: "storage threshold must be in (0,1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStorageIndicator(provider, tt.path, tt.threshold)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestStorageIndicatorCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("usage at threshold is up", func(t *testing.T) {
		provider := &fakeProvider{usage: FilesystemUsage{TotalBytes: 1000, UsedBytes: 900}}
		indicator, err := NewStorageIndicator(provider, "/", 0.9)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusUp, result.Status)
		assert.Equal(t, 0.9, result.Details["used_fraction"])
	})

	t.Run("usage above threshold is down", func(t *testing.T) {
		provider := &fakeProvider{usage: FilesystemUsage{TotalBytes: 1000, UsedBytes: 901}}
		indicator, err := NewStorageIndicator(provider, "/", 0.9)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusDown, result.Status)
		assert.Contains(t, result.Error, "exceeds threshold")
	})

	t.Run("provider failure is down", func(t *testing.T) {
		provider := &fakeProvider{usageErr: errors.New("statfs failed")}
		indicator, err := NewStorageIndicator(provider, "/", 0.9)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusDown, result.Status)
		assert.Equal(t, "statfs failed", result.Error)
	})

	t.Run("zero capacity is down", func(t *testing.T) {
		provider := &fakeProvider{}
		indicator, err := NewStorageIndicator(provider, "/mnt/ghost", 0.9)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusDown, result.Status)
		assert.Contains(t, result.Error, "zero capacity")
	})
}

func TestHeapIndicator(t *testing.T) {
	ctx := context.Background()

	_, err := NewHeapIndicator(&fakeProvider{}, 0)
	assert.ErrorContains(t, err, "heap limit must be greater than zero")

	tests := []struct {
		name string
		heap uint64
		want health.Status
	}{
		{name: "under limit", heap: 100, want: health.StatusUp},
		{name: "at limit", heap: 1024, want: health.StatusUp},
		{name: "over limit", heap: 1025, want: health.StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indicator, err := NewHeapIndicator(&fakeProvider{heap: tt.heap}, 1024)
			require.NoError(t, err)

			result := indicator.Check(ctx)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.heap, result.Details["used_bytes"])
		})
	}

	t.Run("provider failure is down", func(t *testing.T) {
		indicator, err := NewHeapIndicator(&fakeProvider{heapErr: errors.New("no stats")}, 1024)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusDown, result.Status)
	})
}

func TestRSSIndicator(t *testing.T) {
	ctx := context.Background()

	_, err := NewRSSIndicator(&fakeProvider{}, 0)
	assert.ErrorContains(t, err, "rss limit must be greater than zero")

	t.Run("over limit is down", func(t *testing.T) {
		indicator, err := NewRSSIndicator(&fakeProvider{rss: 2048}, 1024)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusDown, result.Status)
		assert.Contains(t, result.Error, "exceeds limit")
	})

	t.Run("under limit is up", func(t *testing.T) {
		indicator, err := NewRSSIndicator(&fakeProvider{rss: 512}, 1024)
		require.NoError(t, err)

		result := indicator.Check(ctx)
		assert.Equal(t, health.StatusUp, result.Status)
	})
}
