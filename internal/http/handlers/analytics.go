package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/analytics"
	"github.com/yungbote/geograph/internal/http/response"
	"github.com/yungbote/geograph/internal/platform/apierr"
	"github.com/yungbote/geograph/internal/platform/ctxutil"
	"github.com/yungbote/geograph/internal/platform/logger"
)

const (
	defaultHoleMinScore     = 0.7
	defaultHoleLimit        = 10
	defaultKeywordGapLimit  = 20
	defaultRankLimit        = 20
	defaultMinSeverity      = 7
	defaultMinConfidence    = 0.7
	defaultMaxCitationScore = 0.5
	defaultMinPriority      = 7
	defaultBrand            = "SweetNight"
	defaultTrendDays        = 30
	defaultBridgeLimit      = 5
)

type AnalyticsHandler struct {
	lib   *analytics.Library
	brand string
	log   *logger.Logger
}

// NewAnalyticsHandler serves the analytics library read-only over HTTP.
// brand is the default for /v1/products/differentiation.
func NewAnalyticsHandler(lib *analytics.Library, brand string, log *logger.Logger) *AnalyticsHandler {
	if strings.TrimSpace(brand) == "" {
		brand = defaultBrand
	}
	return &AnalyticsHandler{lib: lib, brand: brand, log: log.With("handler", "AnalyticsHandler")}
}

func (h *AnalyticsHandler) fail(c *gin.Context, code string, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		h.log.Error("analytics query failed", append([]interface{}{"route", c.FullPath(), "error", err}, ctxutil.LogFields(c.Request.Context())...)...)
	}
	response.RespondErr(c, code, err)
}

// GET /v1/gaps
func (h *AnalyticsHandler) StructureHoles(c *gin.Context) {
	minScore, err := queryFloat(c, "min_score", defaultHoleMinScore)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	limit, err := queryInt(c, "limit", defaultHoleLimit)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	holes, err := h.lib.FindStructureHoles(c.Request.Context(), minScore, limit)
	if err != nil {
		h.fail(c, "load_gaps_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"gaps": holes})
}

// GET /v1/gaps/keywords
func (h *AnalyticsHandler) KeywordGaps(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultKeywordGapLimit)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	gaps, err := h.lib.FindKeywordGaps(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "load_keyword_gaps_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"keyword_gaps": gaps})
}

// GET /v1/gaps/prompts?gap_id=a <-> b
func (h *AnalyticsHandler) GapPrompts(c *gin.Context) {
	prompts, err := h.lib.GeneratePromptsForGaps(c.Request.Context(), queryList(c, "gap_id"))
	if err != nil {
		h.fail(c, "generate_prompts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"prompts": prompts})
}

// GET /v1/prompts/ranked
func (h *AnalyticsHandler) RankedPrompts(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultRankLimit)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	prompts, err := h.lib.RankPrompts(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "rank_prompts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"prompts": prompts})
}

// GET /v1/prompts/uncovered
func (h *AnalyticsHandler) UncoveredPrompts(c *gin.Context) {
	minPriority, err := queryInt(c, "min_priority", defaultMinPriority)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	prompts, err := h.lib.FindUncoveredPrompts(c.Request.Context(), minPriority)
	if err != nil {
		h.fail(c, "load_uncovered_prompts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"prompts": prompts})
}

// GET /v1/prompts/context?prompt=...
func (h *AnalyticsHandler) PromptContext(c *gin.Context) {
	text, err := requireQuery(c, "prompt")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	pc, err := h.lib.PromptContext(c.Request.Context(), text)
	if err != nil {
		h.fail(c, "load_prompt_context_failed", err)
		return
	}
	if pc == nil {
		h.fail(c, "", apierr.NotFound("prompt_not_found", "prompt not found"))
		return
	}
	response.RespondOK(c, pc)
}

// GET /v1/personas/matrix
func (h *AnalyticsHandler) PersonaMatrix(c *gin.Context) {
	entries, err := h.lib.PersonaScenarioMatrix(c.Request.Context())
	if err != nil {
		h.fail(c, "load_persona_matrix_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"matrix": entries})
}

// GET /v1/personas/underserved
func (h *AnalyticsHandler) UnderservedPersonas(c *gin.Context) {
	minSeverity, err := queryFloat(c, "min_severity", defaultMinSeverity)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	personas, err := h.lib.FindUnderservedPersonas(c.Request.Context(), minSeverity)
	if err != nil {
		h.fail(c, "load_underserved_personas_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"personas": personas})
}

// GET /v1/claims?text=...
func (h *AnalyticsHandler) VerifyClaims(c *gin.Context) {
	text, err := requireQuery(c, "text")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	claims, err := h.lib.VerifyClaims(c.Request.Context(), text)
	if err != nil {
		h.fail(c, "verify_claims_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"claims": claims})
}

// GET /v1/claims/unsupported
func (h *AnalyticsHandler) UnsupportedClaims(c *gin.Context) {
	minConfidence, err := queryFloat(c, "min_confidence", defaultMinConfidence)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	claims, err := h.lib.FindUnsupportedClaims(c.Request.Context(), minConfidence)
	if err != nil {
		h.fail(c, "load_unsupported_claims_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"claims": claims})
}

type citationScoreRequest struct {
	AssetID string `json:"asset_id"`
}

// POST /v1/assets/citation-scores
// An empty body or asset_id rescores every asset.
func (h *AnalyticsHandler) ScoreCitations(c *gin.Context) {
	var req citationScoreRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	scores, err := h.lib.ScoreCitationReadiness(c.Request.Context(), strings.TrimSpace(req.AssetID))
	if err != nil {
		h.fail(c, "score_citations_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"scores": scores})
}

// GET /v1/assets/low-quality
func (h *AnalyticsHandler) LowQualityAssets(c *gin.Context) {
	maxScore, err := queryFloat(c, "max_score", defaultMaxCitationScore)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	assets, err := h.lib.FindLowQualityAssets(c.Request.Context(), maxScore)
	if err != nil {
		h.fail(c, "load_low_quality_assets_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}

// GET /v1/coverage
func (h *AnalyticsHandler) Coverage(c *gin.Context) {
	cov, err := h.lib.AnalyzePromptCoverage(c.Request.Context())
	if err != nil {
		h.fail(c, "analyze_coverage_failed", err)
		return
	}
	response.RespondOK(c, cov)
}

// GET /v1/products/compare?ours=...&competitor=...
func (h *AnalyticsHandler) CompareProducts(c *gin.Context) {
	ours, err := requireQuery(c, "ours")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	theirs, err := requireQuery(c, "competitor")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	cmp, err := h.lib.CompareProducts(c.Request.Context(), ours, theirs)
	if err != nil {
		h.fail(c, "compare_products_failed", err)
		return
	}
	response.RespondOK(c, cmp)
}

// GET /v1/products/differentiation
func (h *AnalyticsHandler) Differentiation(c *gin.Context) {
	brand := strings.TrimSpace(c.DefaultQuery("brand", h.brand))
	opps, err := h.lib.FindDifferentiationOpportunities(c.Request.Context(), brand)
	if err != nil {
		h.fail(c, "load_differentiation_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"brand": brand, "opportunities": opps})
}

// GET /v1/keywords/trends
func (h *AnalyticsHandler) KeywordTrends(c *gin.Context) {
	days, err := queryInt(c, "days", defaultTrendDays)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	trends, err := h.lib.TrackKeywordTrends(c.Request.Context(), days)
	if err != nil {
		h.fail(c, "load_keyword_trends_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"trends": trends})
}

// GET /v1/topics/emerging
func (h *AnalyticsHandler) EmergingTopics(c *gin.Context) {
	topics, err := h.lib.DetectEmergingTopics(c.Request.Context())
	if err != nil {
		h.fail(c, "load_emerging_topics_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

// GET /v1/clusters/bridges?a=...&b=...
func (h *AnalyticsHandler) BridgingKeywords(c *gin.Context) {
	a, err := requireQuery(c, "a")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	b, err := requireQuery(c, "b")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	limit, err := queryInt(c, "limit", defaultBridgeLimit)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	bridges, err := h.lib.FindBridgingKeywords(c.Request.Context(), a, b, limit)
	if err != nil {
		h.fail(c, "load_bridging_keywords_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"bridges": bridges})
}

// GET /v1/features/lookup?keyword=...
func (h *AnalyticsHandler) LookupFeature(c *gin.Context) {
	kw, err := requireQuery(c, "keyword")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	rec, err := h.lib.LookupFeature(c.Request.Context(), kw)
	if err != nil {
		h.fail(c, "lookup_feature_failed", err)
		return
	}
	if rec == nil {
		h.fail(c, "", apierr.NotFound("feature_not_found", "no feature matches %q", kw))
		return
	}
	response.RespondOK(c, rec)
}

// GET /v1/pain-points/lookup?keyword=...
func (h *AnalyticsHandler) LookupPainPoint(c *gin.Context) {
	kw, err := requireQuery(c, "keyword")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	rec, err := h.lib.LookupPainPoint(c.Request.Context(), kw)
	if err != nil {
		h.fail(c, "lookup_pain_point_failed", err)
		return
	}
	if rec == nil {
		h.fail(c, "", apierr.NotFound("pain_point_not_found", "no pain point matches %q", kw))
		return
	}
	response.RespondOK(c, rec)
}

// GET /v1/search?q=...&kind=feature|pain|keyword
func (h *AnalyticsHandler) Search(c *gin.Context) {
	q, err := requireQuery(c, "q")
	if err != nil {
		h.fail(c, "", err)
		return
	}
	kind := analytics.SearchKind(strings.ToLower(strings.TrimSpace(c.DefaultQuery("kind", string(analytics.SearchKeyword)))))
	res, err := h.lib.SearchGraph(c.Request.Context(), q, kind)
	if err != nil {
		h.fail(c, "search_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"found": res.Found(), "result": res})
}
