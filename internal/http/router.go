package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/geograph/internal/http/handlers"
	httpMW "github.com/yungbote/geograph/internal/http/middleware"
	"github.com/yungbote/geograph/internal/observability"
	"github.com/yungbote/geograph/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	Log         *logger.Logger
	Metrics     *observability.Metrics

	HealthHandler     *httpH.HealthHandler
	AnalyticsHandler  *httpH.AnalyticsHandler
	AnswerHandler     *httpH.AnswerHandler
	MonitoringHandler *httpH.MonitoringHandler
	ImportHandler     *httpH.ImportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := r.Group("/v1")
	{
		// Answering
		if cfg.AnswerHandler != nil {
			v1.POST("/answer", cfg.AnswerHandler.Answer)
		}

		// Analytics
		if h := cfg.AnalyticsHandler; h != nil {
			v1.GET("/gaps", h.StructureHoles)
			v1.GET("/gaps/keywords", h.KeywordGaps)
			v1.GET("/gaps/prompts", h.GapPrompts)
			v1.GET("/prompts/ranked", h.RankedPrompts)
			v1.GET("/prompts/uncovered", h.UncoveredPrompts)
			v1.GET("/prompts/context", h.PromptContext)
			v1.GET("/personas/matrix", h.PersonaMatrix)
			v1.GET("/personas/underserved", h.UnderservedPersonas)
			v1.GET("/claims", h.VerifyClaims)
			v1.GET("/claims/unsupported", h.UnsupportedClaims)
			v1.POST("/assets/citation-scores", h.ScoreCitations)
			v1.GET("/assets/low-quality", h.LowQualityAssets)
			v1.GET("/coverage", h.Coverage)
			v1.GET("/products/compare", h.CompareProducts)
			v1.GET("/products/differentiation", h.Differentiation)
			v1.GET("/keywords/trends", h.KeywordTrends)
			v1.GET("/topics/emerging", h.EmergingTopics)
			v1.GET("/clusters/bridges", h.BridgingKeywords)
			v1.GET("/features/lookup", h.LookupFeature)
			v1.GET("/pain-points/lookup", h.LookupPainPoint)
			v1.GET("/search", h.Search)
		}

		// Monitoring
		if h := cfg.MonitoringHandler; h != nil {
			v1.GET("/monitoring/health", h.Health)
			v1.GET("/monitoring/report", h.Report)
			v1.GET("/monitoring/history", h.History)
		}

		// Import
		if cfg.ImportHandler != nil {
			v1.POST("/import", cfg.ImportHandler.Import)
		}
	}

	return r
}
