package analytics

import (
	"context"
	"fmt"
)

type MatrixEntry struct {
	Persona             string   `json:"persona"`
	PersonaPriority     int64    `json:"persona_priority"`
	Scenario            string   `json:"scenario"`
	Frequency           string   `json:"frequency"`
	PainPoint           string   `json:"pain_point"`
	Severity            float64  `json:"severity"`
	ReportedCount       int64    `json:"reported_count"`
	ValidatedEvidence   int64    `json:"validated_evidence"`
	RelievingFeatures   []string `json:"relieving_features"`
	RecommendedProducts []string `json:"recommended_products"`
}

type UnderservedPersona struct {
	Persona       string  `json:"persona"`
	Description   string  `json:"description"`
	PainPoint     string  `json:"pain_point"`
	Severity      float64 `json:"severity"`
	EvidenceCount int64   `json:"evidence_count"`
	FeatureCount  int64   `json:"feature_count"`
	ProductCount  int64   `json:"product_count"`
	Status        string  `json:"status"`
}

const personaMatrixQuery = `
MATCH (persona:Persona)-[:OCCURS_IN]->(scenario:Scenario)-[:SUFFERS]->(pp:PainPoint)
OPTIONAL MATCH (pp)-[:RELIEVED_BY]->(feature:Feature)
OPTIONAL MATCH (feature)-[:IMPLEMENTED_IN]->(product:Product)
OPTIONAL MATCH (claim:Claim)-[:ABOUT]->(pp)
OPTIONAL MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
WITH persona, scenario, pp,
     collect(DISTINCT feature.name) AS relieving_features,
     collect(DISTINCT product.name) AS recommended_products,
     count(DISTINCT evidence) AS validated_evidence
RETURN persona.name AS persona,
       persona.priority AS persona_priority,
       scenario.name AS scenario,
       scenario.frequency AS frequency,
       pp.name AS pain_point,
       pp.severity AS severity,
       pp.evidence_count AS reported_count,
       validated_evidence,
       relieving_features,
       recommended_products
ORDER BY persona_priority, severity DESC, frequency
`

// PersonaScenarioMatrix lists persona × scenario × pain point combinations
// with the features and products that relieve each pain point.
func (l *Library) PersonaScenarioMatrix(ctx context.Context) ([]MatrixEntry, error) {
	rows, err := l.db.Read(ctx, personaMatrixQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("persona scenario matrix: %w", err)
	}
	out := make([]MatrixEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, MatrixEntry{
			Persona:             r.String("persona"),
			PersonaPriority:     r.Int("persona_priority"),
			Scenario:            r.String("scenario"),
			Frequency:           r.String("frequency"),
			PainPoint:           r.String("pain_point"),
			Severity:            r.Float("severity"),
			ReportedCount:       r.Int("reported_count"),
			ValidatedEvidence:   r.Int("validated_evidence"),
			RelievingFeatures:   r.Strings("relieving_features"),
			RecommendedProducts: r.Strings("recommended_products"),
		})
	}
	l.log.Info("built persona matrix", "entries", len(out))
	return out, nil
}

const underservedQuery = `
MATCH (persona:Persona)-[:OCCURS_IN]->(:Scenario)-[:SUFFERS]->(pp:PainPoint)
WHERE pp.severity >= $min_severity
OPTIONAL MATCH (pp)-[:RELIEVED_BY]->(feature:Feature)-[:IMPLEMENTED_IN]->(product:Product)
WITH persona, pp,
     count(DISTINCT feature) AS feature_count,
     count(DISTINCT product) AS product_count
WHERE feature_count < 2
RETURN persona.name AS persona,
       persona.description AS description,
       pp.name AS pain_point,
       pp.severity AS severity,
       pp.evidence_count AS evidence_count,
       feature_count,
       product_count
ORDER BY severity DESC, evidence_count DESC
`

const statusUnderserved = "Underserved - needs more solutions"

// FindUnderservedPersonas lists severe pain points with fewer than two
// relieving features.
func (l *Library) FindUnderservedPersonas(ctx context.Context, minSeverity float64) ([]UnderservedPersona, error) {
	rows, err := l.db.Read(ctx, underservedQuery, map[string]any{"min_severity": minSeverity})
	if err != nil {
		return nil, fmt.Errorf("find underserved personas: %w", err)
	}
	out := make([]UnderservedPersona, 0, len(rows))
	for _, r := range rows {
		out = append(out, UnderservedPersona{
			Persona:       r.String("persona"),
			Description:   r.String("description"),
			PainPoint:     r.String("pain_point"),
			Severity:      r.Float("severity"),
			EvidenceCount: r.Int("evidence_count"),
			FeatureCount:  r.Int("feature_count"),
			ProductCount:  r.Int("product_count"),
			Status:        statusUnderserved,
		})
	}
	l.log.Info("found underserved personas", "count", len(out))
	return out, nil
}
