package analytics

import (
	"context"
	"fmt"
)

type EvidenceItem struct {
	Source      string  `json:"source"`
	URL         string  `json:"url,omitempty"`
	Date        string  `json:"date,omitempty"`
	Credibility float64 `json:"credibility"`
	Quote       string  `json:"quote,omitempty"`
}

type VerifiedClaim struct {
	Claim              string         `json:"claim"`
	Confidence         float64        `json:"confidence"`
	Status             string         `json:"status"`
	SubjectType        string         `json:"subject_type"`
	SubjectName        string         `json:"subject_name"`
	SupportingEvidence []EvidenceItem `json:"supporting_evidence"`
	AvgCredibility     float64        `json:"avg_credibility"`
}

type UnsupportedClaim struct {
	Claim          string  `json:"claim"`
	Confidence     float64 `json:"confidence"`
	SubjectType    string  `json:"subject_type"`
	SubjectName    string  `json:"subject_name"`
	EvidenceCount  int64   `json:"evidence_count"`
	AvgCredibility float64 `json:"avg_credibility"`
	Recommendation string  `json:"recommendation"`
}

const verifyClaimsQuery = `
MATCH (claim:Claim)
WHERE $claim_text IS NULL OR toLower(claim.text) CONTAINS toLower($claim_text)
MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
OPTIONAL MATCH (claim)-[:ABOUT]->(subject)
WITH claim, subject, evidence
ORDER BY evidence.credibility_score DESC
RETURN claim.text AS claim,
       claim.confidence AS confidence,
       claim.verification_status AS status,
       labels(subject)[0] AS subject_type,
       coalesce(subject.name, 'N/A') AS subject_name,
       collect({
           source: evidence.source,
           url: evidence.url,
           date: toString(evidence.date),
           credibility: evidence.credibility_score,
           quote: evidence.quote
       }) AS supporting_evidence,
       avg(evidence.credibility_score) AS avg_credibility
ORDER BY confidence DESC, avg_credibility DESC
`

// VerifyClaims returns claims backed by at least one piece of evidence,
// optionally filtered by a case-insensitive text fragment.
func (l *Library) VerifyClaims(ctx context.Context, claimText string) ([]VerifiedClaim, error) {
	rows, err := l.db.Read(ctx, verifyClaimsQuery, map[string]any{"claim_text": nullable(claimText)})
	if err != nil {
		return nil, fmt.Errorf("verify claims: %w", err)
	}
	out := make([]VerifiedClaim, 0, len(rows))
	for _, r := range rows {
		vc := VerifiedClaim{
			Claim:          r.String("claim"),
			Confidence:     r.Float("confidence"),
			Status:         r.String("status"),
			SubjectType:    r.String("subject_type"),
			SubjectName:    r.String("subject_name"),
			AvgCredibility: r.Float("avg_credibility"),
		}
		for _, ev := range r.Rows("supporting_evidence") {
			vc.SupportingEvidence = append(vc.SupportingEvidence, EvidenceItem{
				Source:      ev.String("source"),
				URL:         ev.String("url"),
				Date:        ev.String("date"),
				Credibility: ev.Float("credibility"),
				Quote:       ev.String("quote"),
			})
		}
		out = append(out, vc)
	}
	l.log.Info("retrieved verified claims", "count", len(out))
	return out, nil
}

const unsupportedClaimsQuery = `
MATCH (claim:Claim)
WHERE claim.confidence >= $min_confidence
OPTIONAL MATCH (claim)-[:SUPPORTED_BY]->(evidence:Evidence)
WITH claim, count(evidence) AS evidence_count, avg(evidence.credibility_score) AS avg_credibility
WHERE evidence_count < 2
OPTIONAL MATCH (claim)-[:ABOUT]->(subject)
RETURN claim.text AS claim,
       claim.confidence AS confidence,
       labels(subject)[0] AS subject_type,
       coalesce(subject.name, 'Unknown') AS subject_name,
       evidence_count,
       coalesce(avg_credibility, 0.0) AS avg_credibility
ORDER BY confidence DESC, evidence_count ASC
`

const recommendMoreEvidence = "Needs more evidence"

// FindUnsupportedClaims lists confident claims with fewer than two pieces of
// evidence.
func (l *Library) FindUnsupportedClaims(ctx context.Context, minConfidence float64) ([]UnsupportedClaim, error) {
	rows, err := l.db.Read(ctx, unsupportedClaimsQuery, map[string]any{"min_confidence": minConfidence})
	if err != nil {
		return nil, fmt.Errorf("find unsupported claims: %w", err)
	}
	out := make([]UnsupportedClaim, 0, len(rows))
	for _, r := range rows {
		out = append(out, UnsupportedClaim{
			Claim:          r.String("claim"),
			Confidence:     r.Float("confidence"),
			SubjectType:    r.String("subject_type"),
			SubjectName:    r.String("subject_name"),
			EvidenceCount:  r.Int("evidence_count"),
			AvgCredibility: r.Float("avg_credibility"),
			Recommendation: recommendMoreEvidence,
		})
	}
	l.log.Info("found claims needing evidence", "count", len(out))
	return out, nil
}
