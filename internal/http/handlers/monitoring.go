package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/http/response"
	"github.com/yungbote/geograph/internal/monitoring"
	"github.com/yungbote/geograph/internal/observability"
	"github.com/yungbote/geograph/internal/platform/logger"
)

const defaultHistoryLimit = 4

type MonitoringHandler struct {
	mon     *monitoring.Monitor
	store   *monitoring.SnapshotStore
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewMonitoringHandler serves live health and reports. store may be nil, in
// which case nothing is persisted and the history route answers 404.
func NewMonitoringHandler(mon *monitoring.Monitor, store *monitoring.SnapshotStore, metrics *observability.Metrics, log *logger.Logger) *MonitoringHandler {
	return &MonitoringHandler{mon: mon, store: store, metrics: metrics, log: log.With("handler", "MonitoringHandler")}
}

// GET /v1/monitoring/health
func (h *MonitoringHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	health, err := h.mon.CheckHealth(ctx)
	if err != nil {
		h.log.Error("health check failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "health_check_failed", err)
		return
	}
	h.metrics.SetHealthScore(health.HealthScore)
	if h.store != nil {
		if err := h.store.SaveHealth(ctx, health); err != nil {
			h.log.Warn("health snapshot not stored", "error", err)
		}
	}
	response.RespondOK(c, health)
}

// GET /v1/monitoring/report
// ?format=markdown returns the rendered report.
func (h *MonitoringHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := h.mon.WeeklyReport(ctx)
	if err != nil {
		h.log.Error("weekly report failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "report_failed", err)
		return
	}
	h.metrics.SetHealthScore(report.SystemHealth.HealthScore)
	for label, n := range report.GraphMetrics.ByLabel() {
		h.metrics.SetGraphNodes(label, n)
	}
	if h.store != nil {
		if err := h.store.SaveReport(ctx, report); err != nil {
			h.log.Warn("report snapshot not stored", "error", err)
		}
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(monitoring.RenderMarkdown(report)))
		return
	}
	response.RespondOK(c, report)
}

// GET /v1/monitoring/history
func (h *MonitoringHandler) History(c *gin.Context) {
	if h.store == nil {
		response.RespondError(c, http.StatusNotFound, "history_disabled", nil)
		return
	}
	n, err := queryInt(c, "n", defaultHistoryLimit)
	if err != nil {
		response.RespondErr(c, "", err)
		return
	}
	reports, err := h.store.History(c.Request.Context(), int64(n))
	if err != nil {
		h.log.Error("load report history failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"reports": reports})
}
