package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/http/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

// NewHealthHandler takes the graph store probed by /readyz. A nil store
// leaves readiness always true.
func NewHealthHandler(store Pinger) *HealthHandler { return &HealthHandler{store: store} }

// GET /healthz
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			response.RespondError(c, http.StatusServiceUnavailable, "graph_unavailable", err)
			return
		}
	}
	c.String(http.StatusOK, "ready")
}
