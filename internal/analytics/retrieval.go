package analytics

import (
	"context"
	"fmt"

	"github.com/yungbote/geograph/internal/graphdb"
)

// EvidenceRef is one claim/evidence pair attached to a retrieved entity.
// Fields are empty when the entity has no claim or evidence.
type EvidenceRef struct {
	Claim       string   `json:"claim,omitempty"`
	Source      string   `json:"source,omitempty"`
	URL         string   `json:"url,omitempty"`
	Credibility *float64 `json:"credibility,omitempty"`
	Quote       string   `json:"quote,omitempty"`
}

type FeatureRecord struct {
	Feature     string        `json:"feature"`
	Description string        `json:"description"`
	Relieves    []string      `json:"relieves"`
	Products    []string      `json:"products"`
	Evidence    []EvidenceRef `json:"evidence"`
}

type Solution struct {
	Feature string `json:"feature,omitempty"`
	Product string `json:"product,omitempty"`
}

type PainPointRecord struct {
	PainPoint     string        `json:"pain_point"`
	Description   string        `json:"description"`
	Severity      float64       `json:"severity"`
	ReportedCases int64         `json:"reported_cases"`
	Solutions     []Solution    `json:"solutions"`
	Evidence      []EvidenceRef `json:"evidence"`
}

type KeywordRecord struct {
	Keyword         string   `json:"keyword"`
	Importance      float64  `json:"importance"`
	Topic           string   `json:"topic"`
	RelatedKeywords []string `json:"related_keywords"`
}

type FeatureSearchHit struct {
	FeatureName    string        `json:"feature_name"`
	Description    string        `json:"description"`
	Products       []string      `json:"products"`
	Relieves       []string      `json:"relieves"`
	Evidence       []EvidenceRef `json:"supporting_evidence"`
	RelevanceScore float64       `json:"relevance_score"`
}

// SearchKind selects the traversal used by SearchGraph.
type SearchKind string

const (
	SearchFeature SearchKind = "feature"
	SearchPain    SearchKind = "pain"
	SearchKeyword SearchKind = "keyword"
)

// GraphSearchResult carries exactly one populated record, or none.
type GraphSearchResult struct {
	Kind      SearchKind       `json:"kind"`
	Feature   *FeatureSearchHit `json:"feature,omitempty"`
	PainPoint *PainPointRecord `json:"pain_point,omitempty"`
	Keyword   *KeywordRecord   `json:"keyword,omitempty"`
}

func (r GraphSearchResult) Found() bool {
	return r.Feature != nil || r.PainPoint != nil || r.Keyword != nil
}

type PromptContext struct {
	Prompt             string        `json:"prompt"`
	TargetPersonas     []string      `json:"target_personas"`
	PainPoints         []string      `json:"pain_points"`
	RelevantFeatures   []string      `json:"relevant_features"`
	SupportingEvidence []EvidenceRef `json:"supporting_evidence"`
	ExistingContent    []string      `json:"existing_content"`
}

const featureLookupQuery = `
MATCH (f:Feature)
WHERE toLower(f.name) CONTAINS toLower($keyword)
   OR toLower(coalesce(f.description, '')) CONTAINS toLower($keyword)
WITH f LIMIT 1
OPTIONAL MATCH (f)-[:RELIEVED_BY]-(pp:PainPoint)
OPTIONAL MATCH (f)-[:IMPLEMENTED_IN]->(product:Product)
OPTIONAL MATCH (claim:Claim)-[:ABOUT]->(f)
OPTIONAL MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
RETURN f.name AS feature,
       f.description AS description,
       collect(DISTINCT pp.name) AS relieves,
       collect(DISTINCT product.name) AS products,
       collect(DISTINCT {
           claim: claim.text,
           source: evidence.source,
           url: evidence.url,
           credibility: evidence.credibility_score,
           quote: evidence.quote
       }) AS evidence
`

// LookupFeature returns the first feature whose name or description contains
// keyword, or nil.
func (l *Library) LookupFeature(ctx context.Context, keyword string) (*FeatureRecord, error) {
	rows, err := l.db.Read(ctx, featureLookupQuery, map[string]any{"keyword": keyword})
	if err != nil {
		return nil, fmt.Errorf("lookup feature %q: %w", keyword, err)
	}
	r := graphdb.First(rows)
	if r == nil || !r.Has("feature") {
		return nil, nil
	}
	return &FeatureRecord{
		Feature:     r.String("feature"),
		Description: r.String("description"),
		Relieves:    r.Strings("relieves"),
		Products:    r.Strings("products"),
		Evidence:    evidenceRefs(r.Rows("evidence")),
	}, nil
}

const painLookupQuery = `
MATCH (pp:PainPoint)
WHERE toLower(pp.name) CONTAINS toLower($keyword)
   OR toLower(coalesce(pp.description, '')) CONTAINS toLower($keyword)
WITH pp LIMIT 1
OPTIONAL MATCH (pp)-[:RELIEVED_BY]->(feature:Feature)-[:IMPLEMENTED_IN]->(product:Product)
OPTIONAL MATCH (claim:Claim)-[:ABOUT]->(pp)
OPTIONAL MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
RETURN pp.name AS pain_point,
       pp.description AS description,
       pp.severity AS severity,
       pp.evidence_count AS reported_cases,
       collect(DISTINCT {feature: feature.name, product: product.name}) AS solutions,
       collect(DISTINCT {
           claim: claim.text,
           source: evidence.source,
           url: evidence.url,
           credibility: evidence.credibility_score
       }) AS evidence
`

// LookupPainPoint returns the first pain point whose name or description
// contains keyword, or nil.
func (l *Library) LookupPainPoint(ctx context.Context, keyword string) (*PainPointRecord, error) {
	rows, err := l.db.Read(ctx, painLookupQuery, map[string]any{"keyword": keyword})
	if err != nil {
		return nil, fmt.Errorf("lookup pain point %q: %w", keyword, err)
	}
	r := graphdb.First(rows)
	if r == nil || !r.Has("pain_point") {
		return nil, nil
	}
	rec := &PainPointRecord{
		PainPoint:     r.String("pain_point"),
		Description:   r.String("description"),
		Severity:      r.Float("severity"),
		ReportedCases: r.Int("reported_cases"),
		Evidence:      evidenceRefs(r.Rows("evidence")),
	}
	for _, s := range r.Rows("solutions") {
		sol := Solution{Feature: s.String("feature"), Product: s.String("product")}
		// A feature counts as a solution only when some product implements it.
		if sol.Feature == "" || sol.Product == "" {
			continue
		}
		rec.Solutions = append(rec.Solutions, sol)
	}
	return rec, nil
}

const featureSearchQuery = `
CALL db.index.fulltext.queryNodes('feature_search', $question)
YIELD node AS feature, score
WITH feature, score
ORDER BY score DESC
LIMIT 3
OPTIONAL MATCH (feature)-[:IMPLEMENTED_IN]->(product:Product)
OPTIONAL MATCH (feature)-[:RELIEVED_BY]-(pp:PainPoint)
OPTIONAL MATCH (claim:Claim)-[:ABOUT]->(feature)
OPTIONAL MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
RETURN feature.name AS feature_name,
       feature.description AS description,
       collect(DISTINCT product.name) AS products,
       collect(DISTINCT pp.name) AS relieves,
       collect(DISTINCT {
           claim: claim.text,
           source: evidence.source,
           credibility: evidence.credibility_score
       }) AS supporting_evidence,
       score AS relevance_score
ORDER BY relevance_score DESC
LIMIT 1
`

const keywordSearchQuery = `
MATCH (k:Keyword)
WHERE toLower(k.name) CONTAINS toLower($question)
OPTIONAL MATCH (k)-[:CO_OCCURS_WITH]-(related:Keyword)
RETURN k.name AS keyword,
       k.betweenness AS importance,
       k.community AS topic,
       collect(DISTINCT related.name) AS related_keywords
ORDER BY importance DESC
LIMIT 1
`

// SearchGraph runs a single traversal over the raw question text: full-text
// feature search, pain point match, or keyword match.
func (l *Library) SearchGraph(ctx context.Context, question string, kind SearchKind) (GraphSearchResult, error) {
	out := GraphSearchResult{Kind: kind}
	switch kind {
	case SearchFeature:
		rows, err := l.db.Read(ctx, featureSearchQuery, map[string]any{"question": question})
		if err != nil {
			return out, fmt.Errorf("search graph (feature): %w", err)
		}
		if r := graphdb.First(rows); r != nil && r.Has("feature_name") {
			out.Feature = &FeatureSearchHit{
				FeatureName:    r.String("feature_name"),
				Description:    r.String("description"),
				Products:       r.Strings("products"),
				Relieves:       r.Strings("relieves"),
				Evidence:       evidenceRefs(r.Rows("supporting_evidence")),
				RelevanceScore: r.Float("relevance_score"),
			}
		}
	case SearchPain:
		rec, err := l.LookupPainPoint(ctx, question)
		if err != nil {
			return out, err
		}
		out.PainPoint = rec
	default:
		out.Kind = SearchKeyword
		rows, err := l.db.Read(ctx, keywordSearchQuery, map[string]any{"question": question})
		if err != nil {
			return out, fmt.Errorf("search graph (keyword): %w", err)
		}
		if r := graphdb.First(rows); r != nil && r.Has("keyword") {
			out.Keyword = &KeywordRecord{
				Keyword:         r.String("keyword"),
				Importance:      r.Float("importance"),
				Topic:           r.String("topic"),
				RelatedKeywords: r.Strings("related_keywords"),
			}
		}
	}
	return out, nil
}

const promptContextQuery = `
MATCH (p:Prompt {text: $prompt_text})
OPTIONAL MATCH (p)-[:TARGETS]->(persona:Persona)
OPTIONAL MATCH (p)-[:ADDRESSES]->(pp:PainPoint)
OPTIONAL MATCH (pp)-[:RELIEVED_BY]->(feature:Feature)
OPTIONAL MATCH (claim:Claim)-[:ABOUT]->(pp)
OPTIONAL MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
OPTIONAL MATCH (p)<-[:GENERATED_FROM]-(:Brief)<-[:DERIVES_FROM]-(asset:Asset)
RETURN p.text AS prompt,
       collect(DISTINCT persona.name) AS target_personas,
       collect(DISTINCT pp.name) AS pain_points,
       collect(DISTINCT feature.name) AS relevant_features,
       collect(DISTINCT {
           claim: claim.text,
           source: evidence.source,
           credibility: evidence.credibility_score
       }) AS supporting_evidence,
       collect(DISTINCT asset.url) AS existing_content
`

// PromptContext gathers personas, pain points, features, evidence and
// existing content for a prompt. It returns nil when the prompt is unknown.
func (l *Library) PromptContext(ctx context.Context, promptText string) (*PromptContext, error) {
	rows, err := l.db.Read(ctx, promptContextQuery, map[string]any{"prompt_text": promptText})
	if err != nil {
		return nil, fmt.Errorf("prompt context: %w", err)
	}
	r := graphdb.First(rows)
	if r == nil || !r.Has("prompt") {
		return nil, nil
	}
	return &PromptContext{
		Prompt:             r.String("prompt"),
		TargetPersonas:     r.Strings("target_personas"),
		PainPoints:         r.Strings("pain_points"),
		RelevantFeatures:   r.Strings("relevant_features"),
		SupportingEvidence: evidenceRefs(r.Rows("supporting_evidence")),
		ExistingContent:    r.Strings("existing_content"),
	}, nil
}

// evidenceRefs drops the all-null entries collect() produces when an entity
// has no claims.
func evidenceRefs(rows []graphdb.Row) []EvidenceRef {
	var out []EvidenceRef
	for _, ev := range rows {
		ref := EvidenceRef{
			Claim:       ev.String("claim"),
			Source:      ev.String("source"),
			URL:         ev.String("url"),
			Credibility: optFloat(ev, "credibility"),
			Quote:       ev.String("quote"),
		}
		if ref.Claim == "" && ref.Source == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}
