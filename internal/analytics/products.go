package analytics

import (
	"context"
	"fmt"

	"github.com/yungbote/geograph/internal/graphdb"
)

type ProductComparison struct {
	UniqueToUs          []string `json:"unique_to_us"`
	UniqueToCompetitor  []string `json:"unique_to_competitor"`
	SharedFeatures      []string `json:"shared_features"`
	OurAdvantageCount   int      `json:"our_advantage_count"`
	TheirAdvantageCount int      `json:"their_advantage_count"`
	ParityCount         int      `json:"parity_count"`
}

// Empty reports whether neither product had any features.
func (c ProductComparison) Empty() bool {
	return len(c.UniqueToUs) == 0 && len(c.UniqueToCompetitor) == 0 && len(c.SharedFeatures) == 0
}

type DifferentiationOpportunity struct {
	PainPoint           string   `json:"pain_point"`
	Severity            float64  `json:"severity"`
	EvidenceCount       int64    `json:"evidence_count"`
	OurSolutions        []string `json:"our_solutions"`
	CompetitorSolutions []string `json:"competitor_solutions"`
	CompetitorCount     int64    `json:"competitor_count"`
	Status              string   `json:"status"`
}

const compareProductsQuery = `
OPTIONAL MATCH (our:Product)<-[:IMPLEMENTED_IN]-(of:Feature)
WHERE toLower(our.name) = toLower($our_product)
WITH collect(DISTINCT of.name) AS our_features
OPTIONAL MATCH (comp:Product)<-[:IMPLEMENTED_IN]-(cf:Feature)
WHERE toLower(comp.name) = toLower($competitor_product)
RETURN our_features, collect(DISTINCT cf.name) AS competitor_features
`

// CompareProducts splits the two products' features into unique and shared
// sets, keeping store order within each set. Product names match
// case-insensitively.
func (l *Library) CompareProducts(ctx context.Context, ourProduct, competitorProduct string) (ProductComparison, error) {
	rows, err := l.db.Read(ctx, compareProductsQuery, map[string]any{
		"our_product":        ourProduct,
		"competitor_product": competitorProduct,
	})
	if err != nil {
		return ProductComparison{}, fmt.Errorf("compare products: %w", err)
	}
	r := graphdb.First(rows)
	out := compareFeatureSets(r.Strings("our_features"), r.Strings("competitor_features"))
	l.log.Info("compared products",
		"ours", ourProduct, "competitor", competitorProduct,
		"our_advantage", out.OurAdvantageCount, "their_advantage", out.TheirAdvantageCount)
	return out, nil
}

func compareFeatureSets(ours, theirs []string) ProductComparison {
	inOurs := make(map[string]bool, len(ours))
	for _, f := range ours {
		inOurs[f] = true
	}
	inTheirs := make(map[string]bool, len(theirs))
	for _, f := range theirs {
		inTheirs[f] = true
	}
	out := ProductComparison{UniqueToUs: []string{}, UniqueToCompetitor: []string{}, SharedFeatures: []string{}}
	for _, f := range ours {
		if inTheirs[f] {
			out.SharedFeatures = append(out.SharedFeatures, f)
		} else {
			out.UniqueToUs = append(out.UniqueToUs, f)
		}
	}
	for _, f := range theirs {
		if !inOurs[f] {
			out.UniqueToCompetitor = append(out.UniqueToCompetitor, f)
		}
	}
	out.OurAdvantageCount = len(out.UniqueToUs)
	out.TheirAdvantageCount = len(out.UniqueToCompetitor)
	out.ParityCount = len(out.SharedFeatures)
	return out
}

const differentiationQuery = `
MATCH (:Product {brand: $brand})<-[:IMPLEMENTED_IN]-(f:Feature)-[:RELIEVED_BY]-(pp:PainPoint)
WITH pp, collect(DISTINCT f.name) AS our_solutions
OPTIONAL MATCH (pp)-[:RELIEVED_BY]-(cf:Feature)-[:IMPLEMENTED_IN]->(cp:Product)
WHERE cp.brand <> $brand
WITH pp, our_solutions,
     collect(DISTINCT cf.name) AS competitor_solutions,
     count(DISTINCT cp) AS competitor_count
WHERE competitor_count < 2
RETURN pp.name AS pain_point,
       pp.severity AS severity,
       pp.evidence_count AS evidence_count,
       our_solutions,
       competitor_solutions,
       competitor_count
ORDER BY severity DESC, evidence_count DESC
`

const statusDifferentiation = "Differentiation opportunity"

// FindDifferentiationOpportunities lists pain points the brand relieves that
// fewer than two competitor products address.
func (l *Library) FindDifferentiationOpportunities(ctx context.Context, brand string) ([]DifferentiationOpportunity, error) {
	if brand == "" {
		return nil, fmt.Errorf("find differentiation opportunities: brand required")
	}
	rows, err := l.db.Read(ctx, differentiationQuery, map[string]any{"brand": brand})
	if err != nil {
		return nil, fmt.Errorf("find differentiation opportunities: %w", err)
	}
	out := make([]DifferentiationOpportunity, 0, len(rows))
	for _, r := range rows {
		out = append(out, DifferentiationOpportunity{
			PainPoint:           r.String("pain_point"),
			Severity:            r.Float("severity"),
			EvidenceCount:       r.Int("evidence_count"),
			OurSolutions:        r.Strings("our_solutions"),
			CompetitorSolutions: r.Strings("competitor_solutions"),
			CompetitorCount:     r.Int("competitor_count"),
			Status:              statusDifferentiation,
		})
	}
	l.log.Info("found differentiation opportunities", "brand", brand, "count", len(out))
	return out, nil
}
