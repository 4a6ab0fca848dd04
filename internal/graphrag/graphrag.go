// Package graphrag answers natural-language questions from the knowledge
// graph: classify the question, retrieve a record by keyword, compose a
// templated answer with citations and a heuristic confidence.
package graphrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/geograph/internal/analytics"
	"github.com/yungbote/geograph/internal/platform/logger"
	"github.com/yungbote/geograph/internal/scoring"
)

// Retriever is the slice of the analytics library the answerer reads from.
type Retriever interface {
	LookupFeature(ctx context.Context, keyword string) (*analytics.FeatureRecord, error)
	LookupPainPoint(ctx context.Context, keyword string) (*analytics.PainPointRecord, error)
	CompareProducts(ctx context.Context, ours, theirs string) (analytics.ProductComparison, error)
	VerifyClaims(ctx context.Context, claimText string) ([]analytics.VerifiedClaim, error)
}

type Citation struct {
	Source           string  `json:"source"`
	URL              string  `json:"url,omitempty"`
	CredibilityScore float64 `json:"credibility_score"`
	Quote            string  `json:"quote,omitempty"`
}

type Answer struct {
	Question   string     `json:"question"`
	Category   Category   `json:"category"`
	AnswerText string     `json:"answer_text"`
	Citations  []Citation `json:"citations"`
	Confidence float64    `json:"confidence"`
	GraphPath  []string   `json:"graph_path"`
}

const (
	msgNoFeature     = "I don't have information about that feature in the knowledge graph."
	msgNoPainPoint   = "I don't have specific solutions for that issue in the knowledge graph."
	msgNoComparison  = "I don't have enough information to compare those products."
	msgNoEvidence    = "I don't have evidence for that claim in the knowledge graph."
	msgNeedProducts  = "Please specify two products to compare."
	msgUnsupported   = "I'm not sure how to answer that type of question yet."
	msgEmptyQuestion = "Please ask a question."

	confidenceUnsupported    = 0.2
	confidenceNoComparison   = 0.3
	confidenceComparison     = 0.7
	maxListedItems           = 3
	maxCitations             = 3
	maxRecommendedProducts   = 2
	defaultCitationCredScore = 0.5
)

// retrieval carries whichever record a strategy fetched. message is set when
// retrieval short-circuits with a fixed reply.
type retrieval struct {
	feature    *analytics.FeatureRecord
	pain       *analytics.PainPointRecord
	comparison *analytics.ProductComparison
	claim      *analytics.VerifiedClaim
	message    string
}

type strategy struct {
	retrieve func(ctx context.Context, r Retriever, question string) (retrieval, error)
	compose  func(retrieval) Answer
}

var defaultStrategies = map[Category]strategy{
	CategoryFeature:        {retrieve: retrieveFeature, compose: composeFeature},
	CategoryHowTo:          {retrieve: retrieveFeature, compose: composeFeature},
	CategoryPainPoint:      {retrieve: retrievePainPoint, compose: composePainPoint},
	CategoryRecommendation: {retrieve: retrievePainPoint, compose: composePainPoint},
	CategoryProduct:        {retrieve: retrievePainPoint, compose: composePainPoint},
	CategoryComparison:     {retrieve: retrieveComparison, compose: composeComparison},
	CategoryEvidence:       {retrieve: retrieveEvidence, compose: composeEvidence},
}

type Engine struct {
	ret        Retriever
	log        *logger.Logger
	strategies map[Category]strategy
}

func New(ret Retriever, log *logger.Logger) (*Engine, error) {
	if ret == nil {
		return nil, fmt.Errorf("graphrag: retriever required")
	}
	if log == nil {
		return nil, fmt.Errorf("graphrag: logger required")
	}
	return &Engine{ret: ret, log: log.With("component", "GraphRAG"), strategies: defaultStrategies}, nil
}

// Answer classifies, retrieves and composes. It holds no state between
// calls. The error is non-nil only when the store failed.
func (e *Engine) Answer(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{AnswerText: msgEmptyQuestion, Citations: []Citation{}, GraphPath: []string{}}, nil
	}
	return e.answerAs(ctx, question, Classify(question))
}

func (e *Engine) answerAs(ctx context.Context, question string, cat Category) (Answer, error) {
	e.log.Info("Answering question", "category", cat)
	s, ok := e.strategies[cat]
	if !ok {
		return finish(question, cat, Answer{AnswerText: msgUnsupported, Confidence: confidenceUnsupported}), nil
	}
	data, err := s.retrieve(ctx, e.ret, question)
	if err != nil {
		return Answer{}, fmt.Errorf("answer %s question: %w", cat, err)
	}
	var ans Answer
	if data.message != "" {
		ans = Answer{AnswerText: data.message}
	} else {
		ans = s.compose(data)
	}
	ans = finish(question, cat, ans)
	e.log.Info("Answer generated", "category", cat, "confidence", ans.Confidence)
	return ans, nil
}

func finish(question string, cat Category, a Answer) Answer {
	a.Question = question
	a.Category = cat
	if a.Citations == nil {
		a.Citations = []Citation{}
	}
	if a.GraphPath == nil {
		a.GraphPath = []string{}
	}
	return a
}

func retrieveFeature(ctx context.Context, r Retriever, question string) (retrieval, error) {
	for _, kw := range Keywords(question) {
		rec, err := r.LookupFeature(ctx, kw)
		if err != nil {
			return retrieval{}, err
		}
		if rec != nil {
			return retrieval{feature: rec}, nil
		}
	}
	return retrieval{}, nil
}

func retrievePainPoint(ctx context.Context, r Retriever, question string) (retrieval, error) {
	for _, kw := range Keywords(question) {
		rec, err := r.LookupPainPoint(ctx, kw)
		if err != nil {
			return retrieval{}, err
		}
		if rec != nil {
			return retrieval{pain: rec}, nil
		}
	}
	return retrieval{}, nil
}

func retrieveComparison(ctx context.Context, r Retriever, question string) (retrieval, error) {
	products := ComparisonProducts(question)
	if len(products) < 2 {
		return retrieval{message: msgNeedProducts}, nil
	}
	cmp, err := r.CompareProducts(ctx, products[0], products[1])
	if err != nil {
		return retrieval{}, err
	}
	return retrieval{comparison: &cmp}, nil
}

func retrieveEvidence(ctx context.Context, r Retriever, question string) (retrieval, error) {
	for _, kw := range Keywords(question) {
		claims, err := r.VerifyClaims(ctx, kw)
		if err != nil {
			return retrieval{}, err
		}
		if len(claims) > 0 {
			return retrieval{claim: &claims[0]}, nil
		}
	}
	return retrieval{}, nil
}

func composeFeature(d retrieval) Answer {
	f := d.feature
	if f == nil {
		return Answer{AnswerText: msgNoFeature}
	}
	var parts []string
	if desc := strings.TrimRight(strings.TrimSpace(f.Description), "."); desc != "" {
		parts = append(parts, fmt.Sprintf("%s is a feature that %s.", f.Feature, desc))
	} else {
		parts = append(parts, fmt.Sprintf("%s is a feature.", f.Feature))
	}
	if len(f.Relieves) > 0 {
		parts = append(parts, fmt.Sprintf("It helps relieve %s.", strings.Join(firstN(f.Relieves, maxListedItems), ", ")))
	}
	if len(f.Products) > 0 {
		parts = append(parts, fmt.Sprintf("You can find this feature in %s.", strings.Join(firstN(f.Products, maxListedItems), ", ")))
	}
	citations := citationsFrom(f.Evidence, true)

	path := []string{"Feature"}
	if len(f.Relieves) > 0 {
		path = append(path, "PainPoint")
	}
	if len(f.Products) > 0 {
		path = append(path, "Product")
	}
	if len(citations) > 0 {
		path = append(path, "Claim", "Evidence")
	}
	return Answer{
		AnswerText: strings.Join(parts, " "),
		Citations:  capCitations(citations),
		Confidence: FeatureConfidence(len(citations)),
		GraphPath:  path,
	}
}

func composePainPoint(d retrieval) Answer {
	p := d.pain
	if p == nil {
		return Answer{AnswerText: msgNoPainPoint}
	}
	level := "moderate"
	if p.Severity >= scoring.SeveritySignificantAt {
		level = "significant"
	}
	parts := []string{fmt.Sprintf("%s is a %s issue (severity: %s/10).", p.PainPoint, level, formatNumber(p.Severity))}
	if p.ReportedCases > 0 {
		parts = append(parts, fmt.Sprintf("It has been reported %d times.", p.ReportedCases))
	}
	var features, products []string
	for _, s := range p.Solutions {
		if s.Feature != "" {
			features = append(features, s.Feature)
		}
		if s.Product != "" {
			products = append(products, s.Product)
		}
	}
	if len(features) > 0 {
		parts = append(parts, fmt.Sprintf("Solutions include: %s.", strings.Join(firstN(features, maxListedItems), ", ")))
		if len(products) > 0 {
			parts = append(parts, fmt.Sprintf("You can find these features in %s.", strings.Join(firstN(products, maxRecommendedProducts), " or ")))
		}
	}
	citations := citationsFrom(p.Evidence, false)
	return Answer{
		AnswerText: strings.Join(parts, " "),
		Citations:  capCitations(citations),
		Confidence: PainPointConfidence(len(p.Solutions), len(citations)),
		GraphPath:  []string{"PainPoint", "Feature", "Product", "Evidence"},
	}
}

func composeComparison(d retrieval) Answer {
	c := d.comparison
	if c == nil || len(c.UniqueToUs) == 0 {
		return Answer{AnswerText: msgNoComparison, Confidence: confidenceNoComparison}
	}
	var parts []string
	if len(c.UniqueToUs) > 0 {
		parts = append(parts, fmt.Sprintf("Unique features: %s.", strings.Join(firstN(c.UniqueToUs, maxListedItems), ", ")))
	}
	if len(c.UniqueToCompetitor) > 0 {
		parts = append(parts, fmt.Sprintf("Competitor has: %s.", strings.Join(firstN(c.UniqueToCompetitor, maxListedItems), ", ")))
	}
	if len(c.SharedFeatures) > 0 {
		parts = append(parts, fmt.Sprintf("They share %d common features.", len(c.SharedFeatures)))
	}
	switch {
	case c.OurAdvantageCount > c.TheirAdvantageCount:
		parts = append(parts, fmt.Sprintf("Our product has %d unique advantages vs %d for the competitor.", c.OurAdvantageCount, c.TheirAdvantageCount))
	case c.TheirAdvantageCount > c.OurAdvantageCount:
		parts = append(parts, fmt.Sprintf("The competitor has %d unique features vs %d for us.", c.TheirAdvantageCount, c.OurAdvantageCount))
	default:
		parts = append(parts, "Both products have similar feature counts.")
	}
	return Answer{
		AnswerText: strings.Join(parts, " "),
		Confidence: confidenceComparison,
		GraphPath:  []string{"Product", "Feature"},
	}
}

func composeEvidence(d retrieval) Answer {
	c := d.claim
	if c == nil {
		return Answer{AnswerText: msgNoEvidence}
	}
	parts := []string{fmt.Sprintf("%q is supported by %d piece(s) of evidence with an average credibility of %.2f.",
		c.Claim, len(c.SupportingEvidence), c.AvgCredibility)}
	if c.SubjectName != "" && c.SubjectName != "N/A" {
		parts = append(parts, fmt.Sprintf("The claim is about %s.", c.SubjectName))
	}
	if c.Status != "" {
		parts = append(parts, fmt.Sprintf("Verification status: %s.", c.Status))
	}
	var citations []Citation
	for _, ev := range c.SupportingEvidence {
		if ev.Source == "" {
			continue
		}
		citations = append(citations, Citation{Source: ev.Source, URL: ev.URL, CredibilityScore: ev.Credibility, Quote: ev.Quote})
	}
	path := []string{"Claim", "Evidence"}
	if c.SubjectType != "" {
		path = append(path, c.SubjectType)
	}
	return Answer{
		AnswerText: strings.Join(parts, " "),
		Citations:  capCitations(citations),
		Confidence: FeatureConfidence(len(citations)),
		GraphPath:  path,
	}
}

// FeatureConfidence is min(1, citations*0.3 + 0.4).
func FeatureConfidence(citations int) float64 {
	return clamp1(float64(citations)*0.3 + 0.4)
}

// PainPointConfidence is min(1, solutions*0.3 + citations*0.2 + 0.2).
func PainPointConfidence(solutions, citations int) float64 {
	return clamp1(float64(solutions)*0.3 + float64(citations)*0.2 + 0.2)
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func citationsFrom(evidence []analytics.EvidenceRef, withQuote bool) []Citation {
	var out []Citation
	for _, ev := range evidence {
		if ev.Source == "" {
			continue
		}
		c := Citation{Source: ev.Source, URL: ev.URL, CredibilityScore: defaultCitationCredScore}
		if ev.Credibility != nil {
			c.CredibilityScore = *ev.Credibility
		}
		if withQuote {
			c.Quote = ev.Quote
		}
		out = append(out, c)
	}
	return out
}

func capCitations(in []Citation) []Citation {
	if len(in) > maxCitations {
		return in[:maxCitations]
	}
	return in
}

func firstN(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
