package scoring

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestCitationReadyScenario(t *testing.T) {
	got := CitationReady(CitationInputs{Mentions: 5, Evidence: 3, AvgCredibility: Float(0.8)})
	if !near(got.ConnectivityScore, 0.5) {
		t.Fatalf("connectivity=%v", got.ConnectivityScore)
	}
	if !near(got.EvidenceScore, 0.48) {
		t.Fatalf("evidence=%v", got.EvidenceScore)
	}
	if !near(got.CitationReadyScore, 0.492) {
		t.Fatalf("score=%v", got.CitationReadyScore)
	}
	if got.QualityRating != QualityFair {
		t.Fatalf("rating=%q", got.QualityRating)
	}
}

func TestCitationReadyDefaultsAndUnclamped(t *testing.T) {
	noEvidence := CitationReady(CitationInputs{Mentions: 0, Evidence: 0})
	if noEvidence.CitationReadyScore != 0 || noEvidence.QualityRating != QualityNeedsImprove {
		t.Fatalf("empty asset=%+v", noEvidence)
	}

	// Credibility defaults to 0.5 when evidence exists but carries none.
	got := CitationReady(CitationInputs{Evidence: 5})
	if !near(got.EvidenceScore, 0.5) {
		t.Fatalf("evidence=%v", got.EvidenceScore)
	}

	big := CitationReady(CitationInputs{Mentions: 30})
	if !near(big.ConnectivityScore, 3.0) || !near(big.CitationReadyScore, 1.8) {
		t.Fatalf("unclamped=%+v", big)
	}
}

func TestQualityBandBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.8, QualityExcellent},
		{0.79999, QualityGood},
		{0.6, QualityGood},
		{0.59999, QualityFair},
		{0.4, QualityFair},
		{0.39999, QualityNeedsImprove},
		{2.5, QualityExcellent},
	}
	for _, tc := range cases {
		if got := QualityBand(tc.score); got != tc.want {
			t.Fatalf("QualityBand(%v)=%q want %q", tc.score, got, tc.want)
		}
	}
}

func TestPromptPriorityScenario(t *testing.T) {
	got := PromptPriority(PromptInputs{
		GapScore:       Float(0.9),
		PainSeverity:   Float(8),
		ExistingAssets: 0,
		BasePriority:   5,
	})
	if !near(got.GapComponent, 0.9) || !near(got.PainComponent, 0.8) || !near(got.NoveltyComponent, 1.0) {
		t.Fatalf("components=%+v", got)
	}
	if !near(got.FinalScore, 0.85) {
		t.Fatalf("final=%v", got.FinalScore)
	}
}

func TestPromptPriorityDefaults(t *testing.T) {
	got := PromptPriority(PromptInputs{ExistingAssets: 1, BasePriority: 10})
	// 0.4*0.5 + 0.3*0.5 + 0.2*0.5 + 0.1*1.0
	if !near(got.FinalScore, 0.55) {
		t.Fatalf("final=%v", got.FinalScore)
	}
}

func TestKeywordGapScenario(t *testing.T) {
	if !KeywordGapEligible(0.6, 0.7) {
		t.Fatalf("expected eligible")
	}
	got := KeywordGap(0.6, 0.7, 0.2)
	if !near(got, 0.52) {
		t.Fatalf("score=%v", got)
	}
	if !(got > KeywordGapThreshold) {
		t.Fatalf("expected above threshold")
	}
	if KeywordGapEligible(0.5, 0.9) {
		t.Fatalf("betweenness must be strictly above 0.5")
	}
}

func TestStructureHoleBridgePenalty(t *testing.T) {
	got := StructureHole(Cluster{Modularity: 0.8, Size: 10}, Cluster{Modularity: 0.6, Size: 10}, true)
	if !near(got, 0.21) {
		t.Fatalf("score=%v", got)
	}
	unbridged := StructureHole(Cluster{Modularity: 0.8, Size: 10}, Cluster{Modularity: 0.6, Size: 10}, false)
	if !near(unbridged, 0.7) {
		t.Fatalf("unbridged=%v", unbridged)
	}
}

func TestStructureHoleEmptyClusters(t *testing.T) {
	got := StructureHole(Cluster{}, Cluster{}, false)
	if got != 0 || math.IsNaN(got) {
		t.Fatalf("score=%v", got)
	}
	skewed := StructureHole(Cluster{Modularity: 1, Size: 99}, Cluster{Modularity: 1, Size: 0}, false)
	if !near(skewed, 0.01) {
		t.Fatalf("skewed=%v", skewed)
	}
}

func TestBridgeScore(t *testing.T) {
	if got := BridgeScore(2, 3, 0.4); !near(got, 2.0) {
		t.Fatalf("bridge=%v", got)
	}
}

func TestPriorityScales(t *testing.T) {
	if PositionPriority(0) != 1 || PositionPriority(9) != 10 || PositionPriority(42) != 10 {
		t.Fatalf("position priority broken")
	}
	if ScorePriority(0.75) != 8 || ScorePriority(0) != 1 || ScorePriority(3) != 10 {
		t.Fatalf("score priority broken")
	}
}

func TestCoverageRate(t *testing.T) {
	if CoverageRate(3, 0) != 0 {
		t.Fatalf("zero total must not divide")
	}
	if !near(CoverageRate(1, 4), 0.25) {
		t.Fatalf("rate=%v", CoverageRate(1, 4))
	}
}
