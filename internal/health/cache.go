package health

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ReportCache memoizes aggregate reports for a short, fixed TTL so
// bursts of near-simultaneous checks collapse into one underlying pass.
// Expiry is absolute: a hit does not extend an entry's lifetime.
type ReportCache struct {
	cache *ttlcache.Cache[string, *Report]
}

func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		cache: ttlcache.New(
			ttlcache.WithTTL[string, *Report](ttl),
			ttlcache.WithDisableTouchOnHit[string, *Report](),
		),
	}
}

func (c *ReportCache) Get(key string) (*Report, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *ReportCache) Put(key string, report *Report) {
	c.cache.Set(key, report, ttlcache.DefaultTTL)
}

// Start runs the background eviction loop. Not required for the single
// health-check key, but keeps larger key spaces bounded.
func (c *ReportCache) Start() {
	go c.cache.Start()
}

func (c *ReportCache) Stop() {
	c.cache.Stop()
}
