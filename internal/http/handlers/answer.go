package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/graphrag"
	"github.com/yungbote/geograph/internal/http/response"
	"github.com/yungbote/geograph/internal/observability"
	"github.com/yungbote/geograph/internal/platform/ctxutil"
	"github.com/yungbote/geograph/internal/platform/logger"
)

type AnswerHandler struct {
	engine  *graphrag.Engine
	metrics *observability.Metrics
	log     *logger.Logger
}

func NewAnswerHandler(engine *graphrag.Engine, metrics *observability.Metrics, log *logger.Logger) *AnswerHandler {
	return &AnswerHandler{engine: engine, metrics: metrics, log: log.With("handler", "AnswerHandler")}
}

type answerRequest struct {
	Question string `json:"question"`
}

// POST /v1/answer
// ?format=text returns the rendered answer instead of JSON.
func (h *AnswerHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_question", errors.New("question is required"))
		return
	}

	ans, err := h.engine.Answer(c.Request.Context(), req.Question)
	if err != nil {
		h.log.Error("answer failed", append([]interface{}{"error", err}, ctxutil.LogFields(c.Request.Context())...)...)
		response.RespondError(c, http.StatusBadGateway, "graph_query_failed", err)
		return
	}
	h.metrics.ObserveAnswer(string(ans.Category))

	if strings.EqualFold(c.Query("format"), "text") {
		c.String(http.StatusOK, graphrag.Format(ans))
		return
	}
	response.RespondOK(c, ans)
}
