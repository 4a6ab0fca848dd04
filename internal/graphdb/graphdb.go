// Package graphdb is the query contract every graph-backed component is written
// against: a parameterised Cypher statement in, a list of row mappings out.
package graphdb

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Row map[string]any

// Runner executes Cypher. Read runs in a read transaction, Write in a write
// transaction; both return every row of the result.
type Runner interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]Row, error)
	Write(ctx context.Context, cypher string, params map[string]any) ([]Row, error)
}

// First returns the first row or nil.
func First(rows []Row) Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func (r Row) Has(key string) bool {
	if r == nil {
		return false
	}
	v, ok := r[key]
	return ok && v != nil
}

func (r Row) String(key string) string {
	if r == nil {
		return ""
	}
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// FloatOK reports the numeric value under key and whether one was present.
func (r Row) FloatOK(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	return toFloat(r[key])
}

func (r Row) Float(key string) float64 {
	f, _ := r.FloatOK(key)
	return f
}

func (r Row) FloatOr(key string, def float64) float64 {
	if f, ok := r.FloatOK(key); ok {
		return f
	}
	return def
}

func (r Row) Int(key string) int64 {
	f, ok := r.FloatOK(key)
	if !ok {
		return 0
	}
	return int64(math.Round(f))
}

func (r Row) Strings(key string) []string {
	if r == nil {
		return nil
	}
	raw, ok := r[key].([]any)
	if !ok {
		if ss, ok := r[key].([]string); ok {
			return append([]string(nil), ss...)
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		s := Row{"v": v}.String("v")
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Rows decodes a list-of-maps column (collect({...}) results).
func (r Row) Rows(key string) []Row {
	if r == nil {
		return nil
	}
	switch raw := r[key].(type) {
	case []any:
		out := make([]Row, 0, len(raw))
		for _, v := range raw {
			switch m := v.(type) {
			case map[string]any:
				out = append(out, Row(m))
			case Row:
				out = append(out, m)
			}
		}
		return out
	case []Row:
		return append([]Row(nil), raw...)
	case []map[string]any:
		out := make([]Row, 0, len(raw))
		for _, m := range raw {
			out = append(out, Row(m))
		}
		return out
	}
	return nil
}

// Time decodes driver temporal values, time.Time, or RFC3339 strings.
func (r Row) Time(key string) (time.Time, bool) {
	if r == nil {
		return time.Time{}, false
	}
	switch v := r[key].(type) {
	case time.Time:
		return v, true
	case interface{ Time() time.Time }:
		return v.Time(), true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
