package monitoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/geograph/internal/platform/logger"
)

func newTestSnapshotStore(t *testing.T, limit int64) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewSnapshotStore(rdb, "geo:monitoring", limit, logger.Nop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	return s, mr
}

func TestSnapshotStoreEmpty(t *testing.T) {
	s, _ := newTestSnapshotStore(t, 3)
	ctx := context.Background()

	h, err := s.LatestHealth(ctx)
	if err != nil || h != nil {
		t.Fatalf("LatestHealth: %v %v", h, err)
	}
	r, err := s.LatestReport(ctx)
	if err != nil || r != nil {
		t.Fatalf("LatestReport: %v %v", r, err)
	}
	hist, err := s.History(ctx, 0)
	if err != nil || len(hist) != 0 {
		t.Fatalf("History: %v %v", hist, err)
	}
}

func TestSnapshotStoreHealth(t *testing.T) {
	s, mr := newTestSnapshotStore(t, 3)
	ctx := context.Background()

	if err := s.SaveHealth(ctx, SystemHealth{Neo4jStatus: StatusOnline, TotalNodes: 42, HealthScore: 80}); err != nil {
		t.Fatalf("SaveHealth: %v", err)
	}
	if !mr.Exists("geo:monitoring:health:latest") {
		t.Fatalf("health key not written; keys=%v", mr.Keys())
	}
	h, err := s.LatestHealth(ctx)
	if err != nil {
		t.Fatalf("LatestHealth: %v", err)
	}
	if h == nil || h.TotalNodes != 42 || h.HealthScore != 80 {
		t.Fatalf("health=%+v", h)
	}
}

func TestSnapshotStoreReportHistoryBounded(t *testing.T) {
	s, mr := newTestSnapshotStore(t, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := s.SaveReport(ctx, WeeklyReport{ReportDate: fmt.Sprintf("week-%d", i)}); err != nil {
			t.Fatalf("SaveReport %d: %v", i, err)
		}
	}

	latest, err := s.LatestReport(ctx)
	if err != nil {
		t.Fatalf("LatestReport: %v", err)
	}
	if latest == nil || latest.ReportDate != "week-5" {
		t.Fatalf("latest=%+v", latest)
	}

	items, err := mr.List("geo:monitoring:report:history")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("history length: want=3 got=%d", len(items))
	}

	hist, err := s.History(ctx, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].ReportDate != "week-5" || hist[1].ReportDate != "week-4" {
		t.Fatalf("history=%+v", hist)
	}
}

func TestSnapshotStoreSkipsCorruptHistory(t *testing.T) {
	s, mr := newTestSnapshotStore(t, 3)
	ctx := context.Background()

	if err := s.SaveReport(ctx, WeeklyReport{ReportDate: "ok"}); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if _, err := mr.Lpush("geo:monitoring:report:history", "{not json"); err != nil {
		t.Fatalf("Lpush: %v", err)
	}
	hist, err := s.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 1 || hist[0].ReportDate != "ok" {
		t.Fatalf("history=%+v", hist)
	}
}

func TestSnapshotStoreRedisError(t *testing.T) {
	s, mr := newTestSnapshotStore(t, 3)
	mr.SetError("ERR injected failure")
	if err := s.SaveHealth(context.Background(), SystemHealth{}); err == nil {
		t.Fatalf("expected error from redis")
	}
}
