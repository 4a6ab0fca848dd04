// Package scoring holds the opportunity, priority and citation formulas.
// Queries return raw inputs; every weight and default lives here.
package scoring

import "math"

const (
	UnbridgedPenalty = 1.0
	BridgedPenalty   = 0.3

	KeywordMinBetweenness = 0.5
	KeywordGapThreshold   = 0.4

	PromptGapWeight     = 0.4
	PromptPainWeight    = 0.3
	PromptNoveltyWeight = 0.2
	PromptBaseWeight    = 0.1
	DefaultGapScore     = 0.5
	DefaultPainSeverity = 5.0

	ConnectivityWeight    = 0.6
	EvidenceWeight        = 0.4
	DefaultCredibility    = 0.5
	MentionNormalizer     = 10.0
	EvidenceNormalizer    = 5.0
	ExcellentThreshold    = 0.8
	GoodThreshold         = 0.6
	FairThreshold         = 0.4
	QualityExcellent      = "Excellent"
	QualityGood           = "Good"
	QualityFair           = "Fair"
	QualityNeedsImprove   = "Needs Improvement"
	SeveritySignificantAt = 7.0
)

// Cluster is the input of the structure-hole formula.
type Cluster struct {
	Modularity float64
	Size       float64
}

// StructureHole scores two clusters. The +1 keeps the size term defined for
// empty clusters.
func StructureHole(a, b Cluster, bridged bool) float64 {
	penalty := UnbridgedPenalty
	if bridged {
		penalty = BridgedPenalty
	}
	balance := 1.0 - math.Abs(a.Size-b.Size)/(a.Size+b.Size+1.0)
	return penalty * ((a.Modularity + b.Modularity) / 2.0) * balance
}

// KeywordGap scores a keyword pair; connection is the existing co-occurrence
// weight (0 when there is no edge).
func KeywordGap(betweennessA, betweennessB, connection float64) float64 {
	return ((betweennessA + betweennessB) / 2.0) * (1.0 - connection)
}

// KeywordGapEligible reports whether both keywords are central enough to pair.
func KeywordGapEligible(betweennessA, betweennessB float64) bool {
	return betweennessA > KeywordMinBetweenness && betweennessB > KeywordMinBetweenness
}

type PromptInputs struct {
	// GapScore and PainSeverity are nil when the prompt has no such link.
	GapScore       *float64
	PainSeverity   *float64
	ExistingAssets int64
	BasePriority   float64
}

type PromptBreakdown struct {
	GapComponent     float64 `json:"gap_component"`
	PainComponent    float64 `json:"pain_component"`
	NoveltyComponent float64 `json:"novelty_component"`
	FinalScore       float64 `json:"final_score"`
}

func PromptPriority(in PromptInputs) PromptBreakdown {
	gap := DefaultGapScore
	if in.GapScore != nil {
		gap = *in.GapScore
	}
	severity := DefaultPainSeverity
	if in.PainSeverity != nil {
		severity = *in.PainSeverity
	}
	assets := in.ExistingAssets
	if assets < 0 {
		assets = 0
	}
	out := PromptBreakdown{
		GapComponent:     gap,
		PainComponent:    severity / 10.0,
		NoveltyComponent: 1.0 / (float64(assets) + 1.0),
	}
	out.FinalScore = PromptGapWeight*out.GapComponent +
		PromptPainWeight*out.PainComponent +
		PromptNoveltyWeight*out.NoveltyComponent +
		PromptBaseWeight*(in.BasePriority/10.0)
	return out
}

type CitationInputs struct {
	Mentions int64
	Evidence int64
	// AvgCredibility is nil when there is no evidence.
	AvgCredibility *float64
}

type CitationBreakdown struct {
	ConnectivityScore  float64 `json:"connectivity_score"`
	EvidenceScore      float64 `json:"evidence_score"`
	CitationReadyScore float64 `json:"citation_ready_score"`
	QualityRating      string  `json:"quality_rating"`
}

// CitationReady computes the citation-ready score. Connectivity is not
// clamped, so the total can exceed 1.
func CitationReady(in CitationInputs) CitationBreakdown {
	cred := DefaultCredibility
	if in.AvgCredibility != nil {
		cred = *in.AvgCredibility
	}
	out := CitationBreakdown{
		ConnectivityScore: float64(in.Mentions) / MentionNormalizer,
		EvidenceScore:     (float64(in.Evidence) / EvidenceNormalizer) * cred,
	}
	out.CitationReadyScore = ConnectivityWeight*out.ConnectivityScore + EvidenceWeight*out.EvidenceScore
	out.QualityRating = QualityBand(out.CitationReadyScore)
	return out
}

func QualityBand(score float64) string {
	switch {
	case score >= ExcellentThreshold:
		return QualityExcellent
	case score >= GoodThreshold:
		return QualityGood
	case score >= FairThreshold:
		return QualityFair
	default:
		return QualityNeedsImprove
	}
}

func BridgeScore(connectionsA, connectionsB int64, betweenness float64) float64 {
	return float64(connectionsA+connectionsB) * betweenness
}

// ScorePriority maps an opportunity score onto the 1..10 prompt priority scale.
func ScorePriority(score float64) int {
	p := int(math.Round(score * 10))
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

// PositionPriority is the ingestion-order priority: 1-based, capped at 10.
func PositionPriority(index int) int {
	p := index + 1
	if p > 10 {
		return 10
	}
	if p < 1 {
		return 1
	}
	return p
}

// CoverageRate guards the zero-prompt case.
func CoverageRate(covered, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(covered) / float64(total)
}

func Float(v float64) *float64 { return &v }
