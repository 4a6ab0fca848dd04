package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/geograph/internal/platform/logger"
)

// SnapshotStore keeps the latest health check and weekly report in Redis,
// plus a capped list of past reports (newest first).
type SnapshotStore struct {
	rdb    *goredis.Client
	prefix string
	limit  int64
	log    *logger.Logger
}

func NewSnapshotStore(rdb *goredis.Client, prefix string, historyLimit int64, log *logger.Logger) (*SnapshotStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("monitoring: redis client required")
	}
	if log == nil {
		return nil, fmt.Errorf("monitoring: logger required")
	}
	if prefix == "" {
		prefix = "geo:monitoring"
	}
	if historyLimit <= 0 {
		historyLimit = 12
	}
	return &SnapshotStore{
		rdb:    rdb,
		prefix: prefix,
		limit:  historyLimit,
		log:    log.With("component", "SnapshotStore"),
	}, nil
}

func (s *SnapshotStore) healthKey() string  { return s.prefix + ":health:latest" }
func (s *SnapshotStore) reportKey() string  { return s.prefix + ":report:latest" }
func (s *SnapshotStore) historyKey() string { return s.prefix + ":report:history" }

func (s *SnapshotStore) SaveHealth(ctx context.Context, h SystemHealth) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode health: %w", err)
	}
	if err := s.rdb.Set(ctx, s.healthKey(), raw, 0).Err(); err != nil {
		return fmt.Errorf("store health: %w", err)
	}
	return nil
}

// LatestHealth returns nil when no snapshot was ever stored.
func (s *SnapshotStore) LatestHealth(ctx context.Context) (*SystemHealth, error) {
	var h SystemHealth
	ok, err := s.get(ctx, s.healthKey(), &h)
	if err != nil || !ok {
		return nil, err
	}
	return &h, nil
}

// SaveReport replaces the latest report and pushes it onto the history list,
// trimming the list to the configured limit in the same transaction.
func (s *SnapshotStore) SaveReport(ctx context.Context, r WeeklyReport) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.reportKey(), raw, 0)
		p.LPush(ctx, s.historyKey(), raw)
		p.LTrim(ctx, s.historyKey(), 0, s.limit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	s.log.Debug("report snapshot stored", "report_date", r.ReportDate)
	return nil
}

// LatestReport returns nil when no report was ever stored.
func (s *SnapshotStore) LatestReport(ctx context.Context) (*WeeklyReport, error) {
	var r WeeklyReport
	ok, err := s.get(ctx, s.reportKey(), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// History returns up to n stored reports, newest first. Entries that no
// longer decode are skipped.
func (s *SnapshotStore) History(ctx context.Context, n int64) ([]WeeklyReport, error) {
	if n <= 0 || n > s.limit {
		n = s.limit
	}
	raws, err := s.rdb.LRange(ctx, s.historyKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read report history: %w", err)
	}
	out := make([]WeeklyReport, 0, len(raws))
	for _, raw := range raws {
		var r WeeklyReport
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			s.log.Warn("skipping undecodable report snapshot", "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *SnapshotStore) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
