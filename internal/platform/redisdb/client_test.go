package redisdb

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/platform/logger"
)

func TestNewAppliesDefaults(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "geo:test:"}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if c.KeyPrefix() != "geo:test" {
		t.Fatalf("prefix: want=%q got=%q", "geo:test", c.KeyPrefix())
	}
	if c.HistoryLimit() != 12 {
		t.Fatalf("history limit: want=12 got=%d", c.HistoryLimit())
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestNewRejectsMissingAddr(t *testing.T) {
	if _, err := New(context.Background(), config.RedisConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := New(context.Background(), config.RedisConfig{Addr: "127.0.0.1:6379"}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestNewPingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.SetError("ERR injected failure")
	if _, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()}, logger.Nop()); err == nil {
		t.Fatalf("expected ping error")
	}
}
