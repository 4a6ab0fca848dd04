package infranodus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/platform/logger"
)

const graphWithoutGaps = `{
  "nodes": [
    {"id": 1, "name": "retrieval", "betweenness_centrality": 0.9, "degree": 4, "community": 0},
    {"id": 2, "name": "ranking", "betweenness_centrality": 0.4, "degree": 2, "community": 0},
    {"id": 3, "name": "citations", "betweenness_centrality": 0.7, "degree": 3, "community": "1"},
    {"id": 4, "name": "orphan", "betweenness_centrality": "0.1", "degree": 1}
  ],
  "edges": [
    {"source": 1, "target": 3, "weight": 2},
    {"source": "ranking", "target": "citations"}
  ]
}`

type fakeService struct {
	loginStatus int
	graph       string
	statements  string
	logins      atomic.Int32
	sawCookie   atomic.Bool
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		if r.Method != http.MethodPost || r.FormValue("username") != "demo_user" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.loginStatus != http.StatusOK {
			w.WriteHeader(f.loginStatus)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/user/nodes/", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil && c.Value == "abc" {
			f.sawCookie.Store(true)
		}
		if f.graph == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(f.graph))
	})
	mux.HandleFunc("/api/user/statements/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(f.statements))
	})
	return mux
}

func newTestClient(t *testing.T, svc *fakeService) *Client {
	t.Helper()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)
	c, err := New(config.InfraNodusConfig{BaseURL: srv.URL, Username: "demo_user", Password: "demo"}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestGraphLogsInAndMapsEdgeIDs(t *testing.T) {
	svc := &fakeService{loginStatus: http.StatusOK, graph: graphWithoutGaps}
	c := newTestClient(t, svc)

	g, err := c.Graph(context.Background(), "")
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if svc.logins.Load() != 1 || !svc.sawCookie.Load() {
		t.Fatalf("expected one login and a session cookie, logins=%d", svc.logins.Load())
	}
	if len(g.Nodes) != 4 || g.Nodes[0].Community != "0" || g.Nodes[3].Betweenness != 0.1 {
		t.Fatalf("unexpected nodes %+v", g.Nodes)
	}
	if g.Edges[0].Source != "retrieval" || g.Edges[0].Target != "citations" || g.Edges[0].Weight != 2 {
		t.Fatalf("edge ids not mapped: %+v", g.Edges[0])
	}
	if g.Edges[1].Weight != 1.0 {
		t.Fatalf("missing weight should default to 1, got %v", g.Edges[1].Weight)
	}
	if g.HasGaps {
		t.Fatalf("payload has no gaps")
	}

	if _, err := c.Graph(context.Background(), ""); err != nil {
		t.Fatalf("second Graph: %v", err)
	}
	if svc.logins.Load() != 1 {
		t.Fatalf("session should be reused, logins=%d", svc.logins.Load())
	}
}

func TestLoginRejected(t *testing.T) {
	svc := &fakeService{loginStatus: http.StatusUnauthorized, graph: graphWithoutGaps}
	c := newTestClient(t, svc)

	ok, err := c.Login(context.Background())
	if err != nil || ok {
		t.Fatalf("expected rejected login without error, got ok=%v err=%v", ok, err)
	}
	g, err := c.Graph(context.Background(), "@private")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if !g.Empty() {
		t.Fatalf("expected empty graph on failure")
	}
}

func TestGraphUnavailable(t *testing.T) {
	svc := &fakeService{loginStatus: http.StatusOK}
	c := newTestClient(t, svc)

	_, err := c.Graph(context.Background(), "@private")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected HTTPError 500, got %v", err)
	}
}

func TestUnreachableService(t *testing.T) {
	c, err := New(config.InfraNodusConfig{BaseURL: "http://127.0.0.1:1"}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ok, err := c.Login(context.Background())
	if ok || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got ok=%v err=%v", ok, err)
	}
}

func TestConceptsAndCommunities(t *testing.T) {
	c := newTestClient(t, &fakeService{loginStatus: http.StatusOK, graph: graphWithoutGaps})

	concepts, err := c.Concepts(context.Background(), "@private", 2)
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if len(concepts) != 2 || concepts[0].Name != "retrieval" || concepts[1].Name != "citations" {
		t.Fatalf("unexpected concepts %+v", concepts)
	}

	comms, err := c.Communities(context.Background(), "@private")
	if err != nil {
		t.Fatalf("Communities: %v", err)
	}
	if len(comms) != 2 {
		t.Fatalf("expected 2 communities (orphan has none), got %+v", comms)
	}
	if comms[0].Name != "0" || len(comms[0].Members) != 2 || comms[0].Members[0] != "retrieval" {
		t.Fatalf("unexpected first community %+v", comms[0])
	}
}

func TestGapsFallback(t *testing.T) {
	c := newTestClient(t, &fakeService{loginStatus: http.StatusOK, graph: graphWithoutGaps})

	gaps, err := c.Gaps(context.Background(), "@private")
	if err != nil {
		t.Fatalf("Gaps: %v", err)
	}
	// communities in node order: "0", "1", "default"
	if len(gaps) != 3 {
		t.Fatalf("expected 3 fallback gaps, got %+v", gaps)
	}
	if gaps[0].TopicA != "retrieval / ranking" || gaps[0].TopicB != "citations" {
		t.Fatalf("unexpected topics %+v", gaps[0])
	}
	if gaps[0].OpportunityScore != 0.75 || len(gaps[0].BridgingKeywords) != 0 {
		t.Fatalf("unexpected fallback gap %+v", gaps[0])
	}
}

func TestGapsEmbedded(t *testing.T) {
	payload := `{"nodes": [], "edges": [], "gaps": [
		{"topic_a": "ai", "topic_b": "seo", "opportunity_score": 0.9, "bridging_keywords": ["rag"]}
	]}`
	c := newTestClient(t, &fakeService{loginStatus: http.StatusOK, graph: payload})

	gaps, err := c.Gaps(context.Background(), "@private")
	if err != nil {
		t.Fatalf("Gaps: %v", err)
	}
	if len(gaps) != 1 || gaps[0].OpportunityScore != 0.9 || gaps[0].BridgingKeywords[0] != "rag" {
		t.Fatalf("unexpected gaps %+v", gaps)
	}

	c2 := newTestClient(t, &fakeService{loginStatus: http.StatusOK, graph: `{"nodes": [], "edges": [], "gaps": []}`})
	gaps, err = c2.Gaps(context.Background(), "@private")
	if err != nil || len(gaps) != 0 {
		t.Fatalf("expected empty embedded gap list, got %+v %v", gaps, err)
	}
}

func TestStatementsAndExport(t *testing.T) {
	svc := &fakeService{
		loginStatus: http.StatusOK,
		graph:       graphWithoutGaps,
		statements:  `[{"id": 7, "text": "retrieval improves citations", "context": "@private", "timestamp": "2025-10-15T10:00:00Z"}]`,
	}
	c := newTestClient(t, svc)

	stmts, err := c.Statements(context.Background(), "@private")
	if err != nil {
		t.Fatalf("Statements: %v", err)
	}
	if len(stmts) != 1 || stmts[0].ID != "7" || stmts[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected statements %+v", stmts)
	}

	path := filepath.Join(t.TempDir(), "out", "export.json")
	if _, err := c.Export(context.Background(), "@private", path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	for _, key := range []string{"context", "graph", "concepts", "statements", "gaps", "communities"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("export missing %q", key)
		}
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(config.InfraNodusConfig{BaseURL: "localhost"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for URL without scheme")
	}
	if _, err := New(config.InfraNodusConfig{}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}
