package acquisition

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/firecrawl"
	"github.com/yungbote/geograph/internal/importer"
	"github.com/yungbote/geograph/internal/platform/logger"
)

type stubScraper struct {
	pages []firecrawl.Page
	err   error
}

func (s stubScraper) ScrapeAll(context.Context, []string) ([]firecrawl.Page, error) {
	return s.pages, s.err
}

type stubAuth struct {
	ok    bool
	err   error
	calls int
}

func (s *stubAuth) Login(context.Context) (bool, error) {
	s.calls++
	return s.ok, s.err
}

type stubImporter struct {
	stats   importer.Stats
	err     error
	context string
	calls   int
}

func (s *stubImporter) ImportFullDataset(_ context.Context, c string) (importer.Stats, error) {
	s.calls++
	s.context = c
	return s.stats, s.err
}

func newTestPipeline(t *testing.T, sc Scraper, auth *stubAuth, imp *stubImporter) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := New(sc, auth, imp, config.AcquisitionConfig{Context: "geo_acquisition"}, dir, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, dir
}

func TestRunFullChain(t *testing.T) {
	sc := stubScraper{pages: []firecrawl.Page{
		{URL: "https://a", Title: "Cooling Guide", Content: "Gel foam *helps* https://x.y"},
		{URL: "https://b", Content: "Firm support."},
	}}
	auth := &stubAuth{ok: true}
	imp := &stubImporter{stats: importer.Stats{Keywords: 10, Clusters: 2, ClusterLinks: 10, CoOccurrences: 15, Gaps: 3, Prompts: 3}}
	p, dir := newTestPipeline(t, sc, auth, imp)

	stats := p.Run(context.Background(), []string{"https://a", "https://b"}, "")
	if len(stats.Errors) != 0 {
		t.Fatalf("errors: %v", stats.Errors)
	}
	if stats.Context != "geo_acquisition" || imp.context != "geo_acquisition" {
		t.Fatalf("context: stats=%q import=%q", stats.Context, imp.context)
	}
	if stats.URLsScraped != 2 || stats.KeywordsImported != 10 || stats.RelationshipsImported != 25 || stats.GapsIdentified != 3 || stats.PromptsGenerated != 3 {
		t.Fatalf("stats=%+v", stats)
	}

	text, err := os.ReadFile(filepath.Join(dir, ProcessedTextFile))
	if err != nil {
		t.Fatalf("read processed text: %v", err)
	}
	if want := "Cooling Guide. Gel foam helps Firm support."; string(text) != want {
		t.Fatalf("processed: want=%q got=%q", want, text)
	}
	if stats.ContentSize != len(text) {
		t.Fatalf("content size: want=%d got=%d", len(text), stats.ContentSize)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ScrapedDataFile))
	if err != nil {
		t.Fatalf("read scraped data: %v", err)
	}
	var saved []map[string]any
	if err := json.Unmarshal(raw, &saved); err != nil || len(saved) != 2 {
		t.Fatalf("scraped data: %v %s", err, raw)
	}
}

func TestRunNothingScraped(t *testing.T) {
	auth := &stubAuth{ok: true}
	imp := &stubImporter{}
	p, dir := newTestPipeline(t, stubScraper{}, auth, imp)

	stats := p.Run(context.Background(), []string{"https://down"}, "ctx")
	if stats.URLsScraped != 0 || len(stats.Errors) != 0 {
		t.Fatalf("stats=%+v", stats)
	}
	if auth.calls != 0 || imp.calls != 0 {
		t.Fatalf("later steps ran: auth=%d import=%d", auth.calls, imp.calls)
	}
	if _, err := os.Stat(filepath.Join(dir, ScrapedDataFile)); !os.IsNotExist(err) {
		t.Fatalf("scraped data should not be written")
	}
}

func TestRunLoginRejected(t *testing.T) {
	sc := stubScraper{pages: []firecrawl.Page{{URL: "https://a", Content: "text"}}}
	auth := &stubAuth{ok: false}
	imp := &stubImporter{}
	p, _ := newTestPipeline(t, sc, auth, imp)

	stats := p.Run(context.Background(), []string{"https://a"}, "ctx")
	if imp.calls != 0 {
		t.Fatalf("import ran after rejected login")
	}
	if len(stats.Errors) != 1 || !strings.HasPrefix(stats.Errors[0], "authenticate") {
		t.Fatalf("errors=%v", stats.Errors)
	}
}

func TestRunImportFailureKeepsPartialStats(t *testing.T) {
	sc := stubScraper{pages: []firecrawl.Page{{URL: "https://a", Content: "text"}}}
	imp := &stubImporter{stats: importer.Stats{Keywords: 4}, err: errors.New("store down")}
	p, _ := newTestPipeline(t, sc, &stubAuth{ok: true}, imp)

	stats := p.Run(context.Background(), []string{"https://a"}, "ctx")
	if stats.KeywordsImported != 4 {
		t.Fatalf("partial stats lost: %+v", stats)
	}
	if len(stats.Errors) != 1 || !strings.Contains(stats.Errors[0], "store down") {
		t.Fatalf("errors=%v", stats.Errors)
	}
}

func TestRunSettleDelayHonoursCancel(t *testing.T) {
	sc := stubScraper{pages: []firecrawl.Page{{URL: "https://a", Content: "text"}}}
	imp := &stubImporter{}
	dir := t.TempDir()
	cfg := config.AcquisitionConfig{Context: "ctx", SettleDelay: config.Duration{Duration: 1 << 40}}
	p, err := New(sc, &stubAuth{ok: true}, imp, cfg, dir, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := p.Run(ctx, nil, "")
	if imp.calls != 0 {
		t.Fatalf("import ran after cancellation")
	}
	if len(stats.Errors) != 1 || !strings.HasPrefix(stats.Errors[0], "settle") {
		t.Fatalf("errors=%v", stats.Errors)
	}
}
