package api

import (
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/statuswatch/status-plane/internal/health"
	"github.com/statuswatch/status-plane/internal/system"
	"github.com/statuswatch/status-plane/internal/version"
)

const (
	infosCacheKey = "system:infos"
	infosCacheTTL = time.Second
)

// checkResponse is the health report as served over HTTP. Message is
// only present on failing reports.
type checkResponse struct {
	*health.Report
	Message string `json:"message,omitempty"`
}

type Handler struct {
	logger     zerolog.Logger
	aggregator *health.Aggregator
	collector  *system.Collector

	infosGroup singleflight.Group
	infosCache *ttlcache.Cache[string, *system.Snapshot]
}

func NewHandler(logger zerolog.Logger, aggregator *health.Aggregator, collector *system.Collector) *Handler {
	return &Handler{
		logger:     logger,
		aggregator: aggregator,
		collector:  collector,
		infosCache: ttlcache.New(
			ttlcache.WithTTL[string, *system.Snapshot](infosCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *system.Snapshot](),
		),
	}
}

// HealthCheck serves the aggregate report. A failing dependency is 424
// with the full report attached; only an internal aggregation fault is
// a 500.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.Check(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("health check aggregation failed")
		writeError(w, http.StatusInternalServerError, "health check aggregation failed")
		return
	}

	resp := checkResponse{Report: report}
	status := http.StatusOK
	if report.Status == health.ReportError {
		status = http.StatusFailedDependency
		resp.Message = report.ErrorMessage()
	}
	writeJSON(w, status, resp)
}

// HealthInfos serves a point-in-time system snapshot. It never consults
// the indicators: a host over its storage threshold still reports its
// numbers here.
func (h *Handler) HealthInfos(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshot(r)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to collect system snapshot")
		writeError(w, http.StatusInternalServerError, "failed to collect system information")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	info, err := version.GetInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read build info")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// snapshot memoizes collection for a short TTL; sampling CPU usage
// takes a noticeable fraction of a second, so concurrent pollers share
// one collection pass.
func (h *Handler) snapshot(r *http.Request) (*system.Snapshot, error) {
	if item := h.infosCache.Get(infosCacheKey); item != nil {
		return item.Value(), nil
	}

	value, err, _ := h.infosGroup.Do(infosCacheKey, func() (any, error) {
		if item := h.infosCache.Get(infosCacheKey); item != nil {
			return item.Value(), nil
		}
		snapshot, err := h.collector.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		h.infosCache.Set(infosCacheKey, snapshot, ttlcache.DefaultTTL)
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*system.Snapshot), nil
}
