package redisdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/platform/logger"
)

// Client wraps a go-redis client together with the key prefix and history
// bound configured for monitoring snapshots.
type Client struct {
	rdb          *goredis.Client
	log          *logger.Logger
	keyPrefix    string
	historyLimit int64
}

// New connects and pings. Callers treat an empty cfg.Addr as "disabled" and
// should not call New at all.
func New(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("redisdb: logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redisdb: missing addr")
	}
	dial := cfg.DialTimeout.Duration
	if dial <= 0 {
		dial = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisdb: ping: %w", err)
	}

	prefix := strings.TrimSuffix(strings.TrimSpace(cfg.KeyPrefix), ":")
	if prefix == "" {
		prefix = "geo:monitoring"
	}
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = 12
	}

	log.Info("redis connected", "addr", addr, "db", cfg.DB)
	return &Client{
		rdb:          rdb,
		log:          log.With("client", "RedisDB"),
		keyPrefix:    prefix,
		historyLimit: limit,
	}, nil
}

func (c *Client) Redis() *goredis.Client { return c.rdb }

func (c *Client) KeyPrefix() string { return c.keyPrefix }

func (c *Client) HistoryLimit() int64 { return c.historyLimit }

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
