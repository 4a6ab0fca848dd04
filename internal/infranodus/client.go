// Package infranodus is the session client for the content-graph service: it
// fetches the keyword co-occurrence network, its communities, structural gaps
// and statements for a named context.
package infranodus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/domain/knowledge"
	"github.com/yungbote/geograph/internal/platform/logger"
)

var (
	// ErrUnavailable marks transport failures and non-2xx responses.
	ErrUnavailable = errors.New("infranodus: service unavailable")
	// ErrNotAuthenticated is returned when a call needs a session and login fails.
	ErrNotAuthenticated = errors.New("infranodus: not authenticated")
)

const (
	defaultBaseURL      = "http://localhost:3000"
	defaultTimeout      = 30 * time.Second
	DefaultContext      = "@private"
	DefaultConceptLimit = 100
)

type Client struct {
	cfg        config.InfraNodusConfig
	httpClient *http.Client
	log        *logger.Logger
	tracer     trace.Tracer

	mu            sync.Mutex
	authenticated bool
}

// New builds a client with its own cookie jar; the session lives as long as
// the client.
func New(cfg config.InfraNodusConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid infranodus base url %q", cfg.BaseURL)
	}
	if cfg.Timeout.Duration <= 0 {
		cfg.Timeout = config.Duration{Duration: defaultTimeout}
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("infranodus: cookie jar: %w", err)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration, Jar: jar},
		log:        log.With("client", "InfraNodusClient"),
		tracer:     otel.Tracer("geograph/infranodus"),
	}, nil
}

// Close drops idle connections and forgets the session.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.authenticated = false
	c.mu.Unlock()
	c.httpClient.CloseIdleConnections()
}

func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Login posts the configured credentials. A 200 response authenticates the
// session; any other status is a rejected login (false, nil). Transport
// failures return ErrUnavailable.
func (c *Client) Login(ctx context.Context) (bool, error) {
	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	ctx, span := c.tracer.Start(ctx, "infranodus.login")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		c.log.Error("InfraNodus login error", "error", err)
		return false, fmt.Errorf("%w: login: %v", ErrUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	ok := resp.StatusCode == http.StatusOK
	c.mu.Lock()
	c.authenticated = ok
	c.mu.Unlock()
	if !ok {
		c.log.Error("InfraNodus authentication failed", "status", resp.StatusCode)
		return false, nil
	}
	c.log.Info("InfraNodus authenticated", "username", c.cfg.Username)
	return true, nil
}

func (c *Client) ensureAuthenticated(ctx context.Context) error {
	if c.Authenticated() {
		return nil
	}
	ok, err := c.Login(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !ok {
		return ErrNotAuthenticated
	}
	return nil
}

// Graph fetches the co-occurrence network of a context. Edge endpoints that
// reference node ids are rewritten to node names.
func (c *Client) Graph(ctx context.Context, graphContext string) (knowledge.GraphData, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return knowledge.GraphData{}, err
	}
	raw, err := c.get(ctx, "/api/user/nodes/"+url.PathEscape(contextOrDefault(graphContext)))
	if err != nil {
		c.log.Error("Failed to get graph", "context", graphContext, "error", err)
		return knowledge.GraphData{}, err
	}
	g, err := decodeGraph(raw)
	if err != nil {
		c.log.Error("Failed to decode graph", "context", graphContext, "error", err)
		return knowledge.GraphData{}, fmt.Errorf("%w: decode graph: %v", ErrUnavailable, err)
	}
	c.log.Info("Retrieved graph", "context", graphContext, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// Concepts returns the top limit nodes by betweenness (limit <= 0 keeps all).
func (c *Client) Concepts(ctx context.Context, graphContext string, limit int) ([]knowledge.Concept, error) {
	g, err := c.Graph(ctx, graphContext)
	if err != nil {
		return []knowledge.Concept{}, err
	}
	concepts := knowledge.ConceptsByBetweenness(g.Nodes, limit)
	c.log.Info("Extracted concepts", "count", len(concepts))
	return concepts, nil
}

// Communities groups the default concept window by community.
func (c *Client) Communities(ctx context.Context, graphContext string) ([]knowledge.Community, error) {
	concepts, err := c.Concepts(ctx, graphContext, DefaultConceptLimit)
	if err != nil {
		return []knowledge.Community{}, err
	}
	comms := knowledge.GroupCommunities(concepts)
	c.log.Info("Extracted communities", "count", len(comms))
	return comms, nil
}

// Gaps returns the gaps embedded in the graph payload, or derives placeholder
// gaps from the community structure when the payload has none.
func (c *Client) Gaps(ctx context.Context, graphContext string) ([]knowledge.Gap, error) {
	g, err := c.Graph(ctx, graphContext)
	if err != nil {
		return []knowledge.Gap{}, err
	}
	return GapsFromGraph(g, c.log), nil
}

// GapsFromGraph applies the embedded-or-fallback rule to an already fetched
// graph.
func GapsFromGraph(g knowledge.GraphData, log *logger.Logger) []knowledge.Gap {
	if g.HasGaps {
		if log != nil {
			log.Info("Retrieved gaps from graph data", "count", len(g.Gaps))
		}
		return g.Gaps
	}
	gaps := knowledge.FallbackGaps(g.Nodes)
	if log != nil {
		log.Info("Identified potential gaps from community structure", "count", len(gaps))
	}
	return gaps
}

func (c *Client) Statements(ctx context.Context, graphContext string) ([]knowledge.Statement, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return []knowledge.Statement{}, err
	}
	raw, err := c.get(ctx, "/api/user/statements/"+url.PathEscape(contextOrDefault(graphContext)))
	if err != nil {
		c.log.Error("Failed to get statements", "context", graphContext, "error", err)
		return []knowledge.Statement{}, err
	}
	var items []wireStatement
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Error("Failed to decode statements", "context", graphContext, "error", err)
		return []knowledge.Statement{}, fmt.Errorf("%w: decode statements: %v", ErrUnavailable, err)
	}
	out := make([]knowledge.Statement, 0, len(items))
	for _, it := range items {
		out = append(out, it.toStatement())
	}
	c.log.Info("Retrieved statements", "context", graphContext, "count", len(out))
	return out, nil
}

type HTTPError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "infranodus: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("infranodus http %d %s: %s", e.StatusCode, e.Path, msg)
}

func (e *HTTPError) Unwrap() error { return ErrUnavailable }

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "infranodus.get", trace.WithAttributes(attribute.String("http.path", path)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, resp.Status)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Path: path, Body: string(raw)}
	}
	return raw, nil
}

func contextOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultContext
	}
	return s
}
