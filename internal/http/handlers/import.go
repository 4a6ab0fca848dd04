package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/http/response"
	"github.com/yungbote/geograph/internal/importer"
	"github.com/yungbote/geograph/internal/observability"
	"github.com/yungbote/geograph/internal/platform/ctxutil"
	"github.com/yungbote/geograph/internal/platform/logger"
)

type DatasetImporter interface {
	ImportFullDataset(ctx context.Context, graphContext string) (importer.Stats, error)
}

type ImportHandler struct {
	imp            DatasetImporter
	defaultContext string
	outputDir      string
	metrics        *observability.Metrics
	log            *logger.Logger
}

// NewImportHandler runs imports synchronously. outputDir, when set, receives
// the stats file of every run.
func NewImportHandler(imp DatasetImporter, defaultContext, outputDir string, metrics *observability.Metrics, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		imp:            imp,
		defaultContext: defaultContext,
		outputDir:      outputDir,
		metrics:        metrics,
		log:            log.With("handler", "ImportHandler"),
	}
}

type importRequest struct {
	Context string `json:"context"`
}

// POST /v1/import
func (h *ImportHandler) Import(c *gin.Context) {
	var req importRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	graphContext := strings.TrimSpace(req.Context)
	if graphContext == "" {
		graphContext = h.defaultContext
	}

	stats, err := h.imp.ImportFullDataset(c.Request.Context(), graphContext)
	h.metrics.ObserveImport(map[string]int64{
		"keywords":      stats.Keywords,
		"clusters":      stats.Clusters,
		"cluster_links": stats.ClusterLinks,
		"cooccurrences": stats.CoOccurrences,
		"gaps":          stats.Gaps,
		"prompts":       stats.Prompts,
	}, err)
	if h.outputDir != "" && stats.RunID != "" {
		if _, serr := stats.Save(h.outputDir); serr != nil {
			h.log.Warn("import stats not saved", "error", serr, "run_id", stats.RunID)
		}
	}
	if err != nil {
		h.log.Error("import failed", append([]interface{}{"error", err, "context", graphContext, "run_id", stats.RunID}, ctxutil.LogFields(c.Request.Context())...)...)
		status, code := http.StatusBadGateway, "import_failed"
		if errors.Is(err, importer.ErrAuthentication) {
			code = "infranodus_auth_failed"
		}
		c.JSON(status, gin.H{
			"error": response.APIError{Message: err.Error(), Code: code},
			"stats": stats,
		})
		return
	}
	response.RespondOK(c, stats)
}
