// Package graphdbtest provides an in-memory graphdb.Runner for tests.
package graphdbtest

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/geograph/internal/graphdb"
)

type Call struct {
	Write  bool
	Cypher string
	Params map[string]any
}

type rule struct {
	fragment string
	fn       func(params map[string]any) ([]graphdb.Row, error)
}

// Fake answers queries by the first registered rule whose fragment occurs in
// the Cypher text. Unmatched queries return no rows.
type Fake struct {
	mu    sync.Mutex
	rules []rule
	calls []Call
}

func New() *Fake { return &Fake{} }

func (f *Fake) On(fragment string, rows ...graphdb.Row) *Fake {
	return f.OnFunc(fragment, func(map[string]any) ([]graphdb.Row, error) { return rows, nil })
}

func (f *Fake) OnFunc(fragment string, fn func(params map[string]any) ([]graphdb.Row, error)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{fragment: fragment, fn: fn})
	return f
}

func (f *Fake) Fail(fragment string, err error) *Fake {
	return f.OnFunc(fragment, func(map[string]any) ([]graphdb.Row, error) { return nil, err })
}

func (f *Fake) Read(ctx context.Context, cypher string, params map[string]any) ([]graphdb.Row, error) {
	return f.run(false, cypher, params)
}

func (f *Fake) Write(ctx context.Context, cypher string, params map[string]any) ([]graphdb.Row, error) {
	return f.run(true, cypher, params)
}

func (f *Fake) run(write bool, cypher string, params map[string]any) ([]graphdb.Row, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Write: write, Cypher: cypher, Params: params})
	var match func(map[string]any) ([]graphdb.Row, error)
	for _, r := range f.rules {
		if strings.Contains(cypher, r.fragment) {
			match = r.fn
			break
		}
	}
	f.mu.Unlock()
	if match == nil {
		return nil, nil
	}
	return match(params)
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsMatching returns calls whose Cypher contains fragment.
func (f *Fake) CallsMatching(fragment string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if strings.Contains(c.Cypher, fragment) {
			out = append(out, c)
		}
	}
	return out
}
