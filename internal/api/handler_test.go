package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/status-plane/internal/health"
	"github.com/statuswatch/status-plane/internal/system"
)

type countingProvider struct {
	usageCalls atomic.Int64
}

func (p *countingProvider) FilesystemUsage(string) (system.FilesystemUsage, error) {
	p.usageCalls.Add(1)
	return system.FilesystemUsage{TotalBytes: 100 << 30, UsedBytes: 40 << 30}, nil
}

func (p *countingProvider) HeapAlloc() (uint64, error) {
	return 1 << 20, nil
}

func (p *countingProvider) ResidentMemory() (uint64, error) {
	return 1 << 20, nil
}

func newTestHandler(t *testing.T, indicators ...health.Indicator) (*Handler, *countingProvider) {
	t.Helper()

	aggregator := health.NewAggregator(zerolog.Nop(), health.AggregatorConfig{
		CacheTTL: time.Minute,
	})
	for _, ind := range indicators {
		aggregator.Register(ind)
	}

	provider := &countingProvider{}
	collector := system.NewCollector(afero.NewMemMapFs(), provider, system.CollectorConfig{
		CPUSampleInterval: 10 * time.Millisecond,
	})

	return NewHandler(zerolog.Nop(), aggregator, collector), provider
}

func doRequest(t *testing.T, handler *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	newRouter(handler).ServeHTTP(rec, req)

	return rec
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("healthy report returns 200", func(t *testing.T) {
		handler, _ := newTestHandler(t,
			health.NewIndicatorFunc("alpha", func(context.Context) health.Result {
				return health.Up("alpha")
			}),
		)

		rec := doRequest(t, handler, "/health/check")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.NotContains(t, body, "message")

		details, ok := body["details"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "alpha")
	})

	t.Run("failing dependency returns 424 with the full report", func(t *testing.T) {
		handler, _ := newTestHandler(t,
			health.NewIndicatorFunc("alpha", func(context.Context) health.Result {
				return health.Up("alpha")
			}),
			health.NewIndicatorFunc("beta", func(context.Context) health.Result {
				return health.Down("beta", "connection refused")
			}),
		)

		rec := doRequest(t, handler, "/health/check")
		require.Equal(t, http.StatusFailedDependency, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "beta: connection refused", body["message"])

		errs, ok := body["error"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "beta")

		info, ok := body["info"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, info, "alpha")

		details, ok := body["details"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, details, 2)
	})

	t.Run("empty indicator set is healthy", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := doRequest(t, handler, "/health/check")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthInfosEndpoint(t *testing.T) {
	t.Run("returns a snapshot", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := doRequest(t, handler, "/health/infos")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		for _, key := range []string{"platform", "release", "machine", "arch", "uptime", "cpu", "memory", "drive", "network"} {
			assert.Contains(t, body, key)
		}

		drive, ok := body["drive"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 100.0, drive["totalGb"])
		assert.Equal(t, 40.0, drive["usedGb"])
	})

	t.Run("collection is memoized across close requests", func(t *testing.T) {
		handler, provider := newTestHandler(t)

		for n := 0; n < 3; n++ {
			rec := doRequest(t, handler, "/health/infos")
			require.Equal(t, http.StatusOK, rec.Code)
		}

		assert.EqualValues(t, 1, provider.usageCalls.Load())
	})

	t.Run("never consults the aggregator", func(t *testing.T) {
		handler, _ := newTestHandler(t,
			health.NewIndicatorFunc("broken", func(context.Context) health.Result {
				return health.Down("broken", "boom")
			}),
		)

		rec := doRequest(t, handler, "/health/infos")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVersionEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doRequest(t, handler, "/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "go_version")
}

func TestNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doRequest(t, handler, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body["error"])
}
