package valkey

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/health"
)

const IndicatorName = "cache"

var _ health.Indicator = (*Client)(nil)

// Client wraps the valkey/redis connection and exposes a ping-based
// health indicator for it.
type Client struct {
	client      *redis.Client
	cfg         config.Valkey
	pingTimeout time.Duration
}

func New(cfg config.Valkey) *Client {
	opts := &redis.Options{
		Addr:        cfg.Addr(),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: time.Duration(cfg.DialTimeoutSeconds) * time.Second,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &Client{
		client:      redis.NewClient(opts),
		cfg:         cfg,
		pingTimeout: time.Duration(cfg.PingTimeoutSeconds) * time.Second,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *Client) Name() string {
	return IndicatorName
}

// Check performs a bounded PING round-trip. Refused connections and
// timeouts become Down results, never faults.
func (c *Client) Check(ctx context.Context) health.Result {
	if err := c.Ping(ctx); err != nil {
		return health.Down(IndicatorName, err.Error()).WithDetails(map[string]any{
			"addr": c.cfg.Addr(),
		})
	}
	return health.Up(IndicatorName).WithDetails(map[string]any{
		"addr": c.cfg.Addr(),
	})
}
