package infranodus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/geograph/internal/domain/knowledge"
)

// The upstream payload is loosely typed: ids and communities arrive as
// strings or numbers, numeric fields occasionally as strings.

type wireGraph struct {
	Nodes []wireNode      `json:"nodes"`
	Edges []wireEdge      `json:"edges"`
	Gaps  json.RawMessage `json:"gaps"`
}

type wireNode struct {
	ID          any `json:"id"`
	Name        any `json:"name"`
	Betweenness any `json:"betweenness_centrality"`
	Degree      any `json:"degree"`
	Community   any `json:"community"`
}

type wireEdge struct {
	Source any `json:"source"`
	Target any `json:"target"`
	Weight any `json:"weight"`
}

type wireGap struct {
	TopicA           string   `json:"topic_a"`
	TopicB           string   `json:"topic_b"`
	OpportunityScore any      `json:"opportunity_score"`
	BridgingKeywords []string `json:"bridging_keywords"`
}

type wireStatement struct {
	ID        any    `json:"id"`
	Text      string `json:"text"`
	Context   string `json:"context"`
	Timestamp string `json:"timestamp"`
}

func (w wireStatement) toStatement() knowledge.Statement {
	st := knowledge.Statement{ID: text(w.ID), Text: w.Text, Context: w.Context}
	if ts := strings.TrimSpace(w.Timestamp); ts != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, ts); err == nil {
				st.CreatedAt = t
				break
			}
		}
	}
	return st
}

func decodeGraph(raw []byte) (knowledge.GraphData, error) {
	var w wireGraph
	if err := json.Unmarshal(raw, &w); err != nil {
		return knowledge.GraphData{}, err
	}

	out := knowledge.GraphData{
		Nodes: make([]knowledge.Node, 0, len(w.Nodes)),
		Edges: make([]knowledge.Edge, 0, len(w.Edges)),
	}
	names := make(map[string]string, len(w.Nodes))
	for _, n := range w.Nodes {
		node := knowledge.Node{
			ID:          text(n.ID),
			Name:        text(n.Name),
			Betweenness: number(n.Betweenness, 0),
			Degree:      int64(math.Round(number(n.Degree, 0))),
			Community:   text(n.Community),
		}
		if node.ID != "" {
			names[node.ID] = node.Label()
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range w.Edges {
		src, dst := text(e.Source), text(e.Target)
		if name, ok := names[src]; ok {
			src = name
		}
		if name, ok := names[dst]; ok {
			dst = name
		}
		if src == "" || dst == "" {
			continue
		}
		out.Edges = append(out.Edges, knowledge.Edge{Source: src, Target: dst, Weight: number(e.Weight, 1.0)})
	}

	trimmed := bytes.TrimSpace(w.Gaps)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		var gaps []wireGap
		if err := json.Unmarshal(trimmed, &gaps); err != nil {
			return knowledge.GraphData{}, fmt.Errorf("gaps: %w", err)
		}
		out.HasGaps = true
		out.Gaps = make([]knowledge.Gap, 0, len(gaps))
		for _, g := range gaps {
			bk := g.BridgingKeywords
			if bk == nil {
				bk = []string{}
			}
			out.Gaps = append(out.Gaps, knowledge.Gap{
				TopicA:           g.TopicA,
				TopicB:           g.TopicB,
				OpportunityScore: number(g.OpportunityScore, 0),
				BridgingKeywords: bk,
			})
		}
	}
	return out, nil
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func number(v any, def float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}
