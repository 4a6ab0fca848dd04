package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/analytics"
	"github.com/yungbote/geograph/internal/graphdb/graphdbtest"
	httpH "github.com/yungbote/geograph/internal/http/handlers"
	"github.com/yungbote/geograph/internal/observability"
	"github.com/yungbote/geograph/internal/platform/logger"
)

func newTestRouter(t *testing.T, metrics *observability.Metrics) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	lib, err := analytics.New(graphdbtest.New(), logger.Nop())
	if err != nil {
		t.Fatalf("analytics.New: %v", err)
	}
	return NewRouter(RouterConfig{
		CORSOrigins:      []string{"http://dash.local"},
		Log:              logger.Nop(),
		Metrics:          metrics,
		HealthHandler:    httpH.NewHealthHandler(nil),
		AnalyticsHandler: httpH.NewAnalyticsHandler(lib, "", logger.Nop()),
	})
}

func TestRouterServesRoutesAndMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	r := newTestRouter(t, metrics)

	for _, target := range []string{"/healthz", "/readyz", "/v1/coverage", "/v1/topics/emerging"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, target, nil))
		if rec.Code != nethttp.StatusOK {
			t.Fatalf("%s: status=%d body=%s", target, rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: missing request id header", target)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`geo_api_requests_total{method="GET",route="/v1/coverage",status="200"} 1`,
		`geo_api_requests_total{method="GET",route="/healthz",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestRouterKeepsIncomingRequestID(t *testing.T) {
	r := newTestRouter(t, nil)
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("request id: want=%q got=%q", "req-42", got)
	}
	if got := rec.Header().Get("X-Trace-Id"); got != "req-42" {
		t.Fatalf("trace id falls back to request id: got=%q", got)
	}
}

func TestRouterOmitsUnconfiguredHandlers(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, target := range []string{"/v1/monitoring/health", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, target, nil))
		if rec.Code != nethttp.StatusNotFound {
			t.Fatalf("%s: want=404 got=%d", target, rec.Code)
		}
	}
}
