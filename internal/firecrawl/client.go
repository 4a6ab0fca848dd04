// Package firecrawl talks to a self-hosted Firecrawl scraping service.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/platform/logger"
)

// ErrScrapeFailed wraps every per-URL failure: transport errors, non-200
// responses and undecodable bodies.
var ErrScrapeFailed = errors.New("firecrawl: scrape failed")

const (
	defaultBaseURL  = "http://localhost:3002"
	defaultTimeout  = 60 * time.Second
	defaultInterval = time.Second
)

var DefaultFormats = []string{"markdown"}

// Page is one scraped URL.
type Page struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	ScrapedAt string         `json:"scraped_at"`
}

type Client struct {
	cfg        config.FirecrawlConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
	tracer     trace.Tracer
}

func New(cfg config.FirecrawlConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid firecrawl base url %q", cfg.BaseURL)
	}
	if cfg.Timeout.Duration <= 0 {
		cfg.Timeout = config.Duration{Duration: defaultTimeout}
	}
	if cfg.Interval.Duration <= 0 {
		cfg.Interval = config.Duration{Duration: defaultInterval}
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration},
		limiter:    rate.NewLimiter(rate.Every(cfg.Interval.Duration), 1),
		log:        log.With("client", "FirecrawlClient"),
		tracer:     otel.Tracer("geograph/firecrawl"),
	}, nil
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string         `json:"markdown"`
		HTML     string         `json:"html"`
		RawHTML  string         `json:"rawHtml"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
}

type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "firecrawl: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("firecrawl http %d for %s: %s", e.StatusCode, e.URL, msg)
}

func (e *HTTPError) Unwrap() error { return ErrScrapeFailed }

// Scrape fetches one URL. formats defaults to markdown. When the service
// returns no markdown but does return HTML, the visible text is extracted
// from the HTML instead.
func (c *Client) Scrape(ctx context.Context, pageURL string, formats []string) (Page, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	ctx, span := c.tracer.Start(ctx, "firecrawl.scrape", trace.WithAttributes(attribute.String("scrape.url", pageURL)))
	defer span.End()

	body, err := json.Marshal(scrapeRequest{URL: pageURL, Formats: formats})
	if err != nil {
		return Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("Scraping URL", "url", pageURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return Page{}, fmt.Errorf("%w: %s: %v", ErrScrapeFailed, pageURL, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("%w: read %s: %v", ErrScrapeFailed, pageURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, resp.Status)
		return Page{}, &HTTPError{StatusCode: resp.StatusCode, URL: pageURL, Body: string(raw)}
	}

	var sr scrapeResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return Page{}, fmt.Errorf("%w: decode %s: %v", ErrScrapeFailed, pageURL, err)
	}

	content := sr.Data.Markdown
	if strings.TrimSpace(content) == "" {
		switch {
		case sr.Data.HTML != "":
			content, err = TextFromHTML(sr.Data.HTML)
		case sr.Data.RawHTML != "":
			content, err = ArticleText(sr.Data.RawHTML, pageURL)
		}
		if err != nil {
			return Page{}, fmt.Errorf("%w: parse html %s: %v", ErrScrapeFailed, pageURL, err)
		}
	}

	meta := sr.Data.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	page := Page{
		URL:       pageURL,
		Title:     metaString(meta, "title"),
		Content:   content,
		Metadata:  meta,
		ScrapedAt: metaString(meta, "sourceURL"),
	}
	c.log.Info("Scraped URL", "url", pageURL, "chars", len(content))
	return page, nil
}

// ScrapeAll scrapes urls one at a time, spaced by the configured interval.
// Failed URLs are logged and left out. Only context cancellation stops the
// loop early, in which case the pages gathered so far are returned with the
// context error.
func (c *Client) ScrapeAll(ctx context.Context, urls []string) ([]Page, error) {
	out := make([]Page, 0, len(urls))
	for _, u := range urls {
		if err := c.limiter.Wait(ctx); err != nil {
			return out, err
		}
		page, err := c.Scrape(ctx, u, nil)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.log.Error("Firecrawl scrape failed", "url", u, "error", err)
			continue
		}
		out = append(out, page)
	}
	return out, nil
}

// TextFromHTML returns the body text of an HTML document with whitespace
// collapsed. Head, script, style and noscript elements are dropped.
func TextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("head, script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// ArticleText extracts the main article of a full page, dropping navigation
// and other boilerplate. Pages readability cannot parse fall back to
// TextFromHTML.
func ArticleText(rawHTML, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err == nil {
		var b strings.Builder
		if err := article.RenderText(&b); err == nil {
			if text := strings.Join(strings.Fields(b.String()), " "); text != "" {
				return text, nil
			}
		}
	}
	return TextFromHTML(rawHTML)
}

func metaString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
