package system

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/statuswatch/status-plane/internal/health"
)

const (
	StorageIndicatorName = "storage"
	HeapIndicatorName    = "memory_heap"
	RSSIndicatorName     = "memory_rss"
)

// StorageIndicator reports Down when the used fraction of a mounted
// filesystem exceeds a configured threshold. Usage exactly at the
// threshold is still Up.
type StorageIndicator struct {
	provider  Provider
	path      string
	threshold float64
}

func NewStorageIndicator(provider Provider, path string, threshold float64) (*StorageIndicator, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("storage threshold must be in (0,1], got %v", threshold)
	}
	return &StorageIndicator{
		provider:  provider,
		path:      path,
		threshold: threshold,
	}, nil
}

func (s *StorageIndicator) Name() string {
	return StorageIndicatorName
}

func (s *StorageIndicator) Check(_ context.Context) health.Result {
	usage, err := s.provider.FilesystemUsage(s.path)
	if err != nil {
		return health.Down(StorageIndicatorName, err.Error())
	}
	if usage.TotalBytes == 0 {
		return health.Down(StorageIndicatorName, fmt.Sprintf("filesystem %q reports zero capacity", s.path))
	}

	fraction := float64(usage.UsedBytes) / float64(usage.TotalBytes)
	result := health.NewResult(StorageIndicatorName, fraction <= s.threshold, map[string]any{
		"path":          s.path,
		"threshold":     s.threshold,
		"used_fraction": fraction,
		"used":          humanize.IBytes(usage.UsedBytes),
		"total":         humanize.IBytes(usage.TotalBytes),
	})
	if !result.Healthy() {
		result.Error = fmt.Sprintf("storage usage %.1f%% exceeds threshold %.1f%%", fraction*100, s.threshold*100)
	}
	return result
}

// HeapIndicator reports Down when the process heap allocation exceeds a
// fixed byte limit.
type HeapIndicator struct {
	provider   Provider
	limitBytes uint64
}

func NewHeapIndicator(provider Provider, limitBytes uint64) (*HeapIndicator, error) {
	if limitBytes == 0 {
		return nil, fmt.Errorf("heap limit must be greater than zero")
	}
	return &HeapIndicator{provider: provider, limitBytes: limitBytes}, nil
}

func (h *HeapIndicator) Name() string {
	return HeapIndicatorName
}

func (h *HeapIndicator) Check(_ context.Context) health.Result {
	used, err := h.provider.HeapAlloc()
	if err != nil {
		return health.Down(HeapIndicatorName, err.Error())
	}
	return memoryResult(HeapIndicatorName, used, h.limitBytes)
}

// RSSIndicator reports Down when the process resident set size exceeds
// a fixed byte limit.
type RSSIndicator struct {
	provider   Provider
	limitBytes uint64
}

func NewRSSIndicator(provider Provider, limitBytes uint64) (*RSSIndicator, error) {
	if limitBytes == 0 {
		return nil, fmt.Errorf("rss limit must be greater than zero")
	}
	return &RSSIndicator{provider: provider, limitBytes: limitBytes}, nil
}

func (r *RSSIndicator) Name() string {
	return RSSIndicatorName
}

func (r *RSSIndicator) Check(_ context.Context) health.Result {
	used, err := r.provider.ResidentMemory()
	if err != nil {
		return health.Down(RSSIndicatorName, err.Error())
	}
	return memoryResult(RSSIndicatorName, used, r.limitBytes)
}

func memoryResult(name string, used, limit uint64) health.Result {
	result := health.NewResult(name, used <= limit, map[string]any{
		"used_bytes":  used,
		"limit_bytes": limit,
		"used":        humanize.IBytes(used),
		"limit":       humanize.IBytes(limit),
	})
	if !result.Healthy() {
		result.Error = fmt.Sprintf("memory usage %s exceeds limit %s", humanize.IBytes(used), humanize.IBytes(limit))
	}
	return result
}
