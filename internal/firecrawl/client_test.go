package firecrawl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/platform/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(config.FirecrawlConfig{
		BaseURL:  baseURL,
		APIKey:   "fs-test",
		Interval: config.Duration{Duration: time.Millisecond},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func scrapeServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/scrape" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fs-test" {
			t.Errorf("authorization: want=%q got=%q", "Bearer fs-test", got)
		}
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		body, ok := pages[req.URL]
		if !ok {
			http.Error(w, `{"error":"unreachable"}`, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeMarkdown(t *testing.T) {
	srv := scrapeServer(t, map[string]string{
		"https://example.com/a": `{"success":true,"data":{"markdown":"# Cooling\nGel foam helps.","metadata":{"title":"Cooling Guide","sourceURL":"https://example.com/a"}}}`,
	})
	c := newTestClient(t, srv.URL)

	p, err := c.Scrape(context.Background(), "https://example.com/a", nil)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if p.Title != "Cooling Guide" || p.Content != "# Cooling\nGel foam helps." || p.ScrapedAt != "https://example.com/a" {
		t.Fatalf("page=%+v", p)
	}
}

func TestScrapeHTMLFallback(t *testing.T) {
	srv := scrapeServer(t, map[string]string{
		"https://example.com/h": `{"success":true,"data":{"markdown":"","html":"<html><head><title>T</title><style>p{}</style></head><body><p>Firm   support</p><script>x()</script><p>for back pain</p></body></html>"}}`,
	})
	c := newTestClient(t, srv.URL)

	p, err := c.Scrape(context.Background(), "https://example.com/h", []string{"markdown", "html"})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if want := "Firm supportfor back pain"; p.Content != want {
		t.Fatalf("content: want=%q got=%q", want, p.Content)
	}
	if p.Metadata == nil {
		t.Fatalf("metadata should default to an empty map")
	}
}

func TestArticleTextKeepsBody(t *testing.T) {
	body := strings.Repeat("Cooling gel foam draws heat away from the sleeper and keeps the surface cool through the night. ", 6)
	page := `<html><head><title>Cooling Guide</title></head><body>` +
		`<nav><a href="/">Home</a> <a href="/about">About</a></nav>` +
		`<article><h1>Cooling Guide</h1><p>` + body + `</p></article>` +
		`<script>track()</script></body></html>`

	got, err := ArticleText(page, "https://example.com/guide")
	if err != nil {
		t.Fatalf("ArticleText: %v", err)
	}
	if !strings.Contains(got, "Cooling gel foam draws heat away from the sleeper") {
		t.Fatalf("article text missing body: %q", got)
	}
	if strings.Contains(got, "track()") {
		t.Fatalf("script leaked into text: %q", got)
	}
}

func TestScrapeNon200(t *testing.T) {
	srv := scrapeServer(t, nil)
	c := newTestClient(t, srv.URL)

	_, err := c.Scrape(context.Background(), "https://example.com/missing", nil)
	if !errors.Is(err, ErrScrapeFailed) {
		t.Fatalf("want ErrScrapeFailed, got %v", err)
	}
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadGateway {
		t.Fatalf("want HTTPError 502, got %v", err)
	}
}

func TestScrapeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c := newTestClient(t, base)

	if _, err := c.Scrape(context.Background(), "https://example.com/a", nil); !errors.Is(err, ErrScrapeFailed) {
		t.Fatalf("want ErrScrapeFailed, got %v", err)
	}
}

func TestScrapeAllSkipsFailures(t *testing.T) {
	srv := scrapeServer(t, map[string]string{
		"https://example.com/1": `{"success":true,"data":{"markdown":"one"}}`,
		"https://example.com/3": `{"success":true,"data":{"markdown":"three"}}`,
	})
	c := newTestClient(t, srv.URL)

	pages, err := c.ScrapeAll(context.Background(), []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"})
	if err != nil {
		t.Fatalf("ScrapeAll: %v", err)
	}
	if len(pages) != 2 || pages[0].Content != "one" || pages[1].Content != "three" {
		t.Fatalf("pages=%+v", pages)
	}
}

func TestScrapeAllCancelled(t *testing.T) {
	srv := scrapeServer(t, nil)
	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, err := c.ScrapeAll(ctx, []string{"https://example.com/1"})
	if err == nil {
		t.Fatalf("expected context error")
	}
	if len(pages) != 0 {
		t.Fatalf("pages=%+v", pages)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(config.FirecrawlConfig{BaseURL: "not a url"}, logger.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}
