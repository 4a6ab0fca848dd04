// Package knowledge holds the normalized records that flow from the
// content-graph service into the knowledge graph.
package knowledge

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultCommunity       = "uncategorized"
	FallbackCommunity      = "default"
	FallbackGapScore       = 0.75
	PromptTypeExploratory  = "exploratory"
	MaxPromptPriority      = 10
	fallbackTopicKeywords  = 3
	fallbackTopicSeparator = " / "
)

// Concept is one keyword of the upstream text network.
type Concept struct {
	Name        string  `json:"name"`
	Betweenness float64 `json:"betweenness"`
	Degree      int64   `json:"degree"`
	// Community is empty when the upstream node had none.
	Community string `json:"community,omitempty"`
}

type Node struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Betweenness float64 `json:"betweenness_centrality"`
	Degree      int64   `json:"degree"`
	Community   string  `json:"community,omitempty"`
}

// Label is the display name, falling back to the id.
func (n Node) Label() string {
	if strings.TrimSpace(n.Name) != "" {
		return n.Name
	}
	return n.ID
}

type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

type GraphData struct {
	Nodes []Node  `json:"nodes"`
	Edges []Edge  `json:"edges"`
	Gaps  []Gap   `json:"gaps,omitempty"`
	// HasGaps distinguishes an upstream gap list that is present but empty
	// from one that is missing altogether.
	HasGaps bool `json:"-"`
}

func (g GraphData) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}

// Community is an ordered cluster of concept names.
type Community struct {
	Name       string   `json:"name"`
	Members    []string `json:"members"`
	Modularity float64  `json:"modularity"`
}

type Gap struct {
	TopicA           string   `json:"topic_a"`
	TopicB           string   `json:"topic_b"`
	OpportunityScore float64  `json:"opportunity_score"`
	BridgingKeywords []string `json:"bridging_keywords"`
	CommunityA       string   `json:"community_a,omitempty"`
	CommunityB       string   `json:"community_b,omitempty"`
	KeywordsA        []string `json:"keywords_a,omitempty"`
	KeywordsB        []string `json:"keywords_b,omitempty"`
}

// Normalized returns the gap with its topic pair in canonical order so the
// unordered pair has a single identity.
func (g Gap) Normalized() Gap {
	if g.TopicA > g.TopicB {
		g.TopicA, g.TopicB = g.TopicB, g.TopicA
		g.CommunityA, g.CommunityB = g.CommunityB, g.CommunityA
		g.KeywordsA, g.KeywordsB = g.KeywordsB, g.KeywordsA
	}
	return g
}

// ID is the "topic_a <-> topic_b" identifier used to select gaps.
func (g Gap) ID() string {
	return g.TopicA + " <-> " + g.TopicB
}

type Statement struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ConceptsByBetweenness sorts descending by betweenness and keeps the first
// limit entries (limit <= 0 keeps all).
func ConceptsByBetweenness(nodes []Node, limit int) []Concept {
	out := make([]Concept, 0, len(nodes))
	for _, n := range nodes {
		name := n.Label()
		if strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, Concept{
			Name:        name,
			Betweenness: n.Betweenness,
			Degree:      n.Degree,
			Community:   n.Community,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Betweenness > out[j].Betweenness })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GroupCommunities groups concepts with a community, keeping first-seen order
// for both communities and members.
func GroupCommunities(concepts []Concept) []Community {
	idx := map[string]int{}
	var out []Community
	for _, c := range concepts {
		if c.Community == "" {
			continue
		}
		i, ok := idx[c.Community]
		if !ok {
			i = len(out)
			idx[c.Community] = i
			out = append(out, Community{Name: c.Community})
		}
		out[i].Members = append(out[i].Members, c.Name)
	}
	return out
}

// FallbackGaps derives gaps when the upstream payload carries none: every
// unordered pair of communities among the nodes, in first-seen order, with a
// fixed placeholder score and topics built from the first three members.
func FallbackGaps(nodes []Node) []Gap {
	idx := map[string]int{}
	var comms []Community
	for _, n := range nodes {
		name := n.Label()
		if strings.TrimSpace(name) == "" {
			continue
		}
		comm := n.Community
		if comm == "" {
			comm = FallbackCommunity
		}
		i, ok := idx[comm]
		if !ok {
			i = len(comms)
			idx[comm] = i
			comms = append(comms, Community{Name: comm})
		}
		comms[i].Members = append(comms[i].Members, name)
	}

	var gaps []Gap
	for i := 0; i < len(comms); i++ {
		for j := i + 1; j < len(comms); j++ {
			a, b := comms[i], comms[j]
			if len(a.Members) == 0 || len(b.Members) == 0 {
				continue
			}
			ka, kb := firstN(a.Members, fallbackTopicKeywords), firstN(b.Members, fallbackTopicKeywords)
			gaps = append(gaps, Gap{
				TopicA:           strings.Join(ka, fallbackTopicSeparator),
				TopicB:           strings.Join(kb, fallbackTopicSeparator),
				OpportunityScore: FallbackGapScore,
				BridgingKeywords: []string{},
				CommunityA:       a.Name,
				CommunityB:       b.Name,
				KeywordsA:        ka,
				KeywordsB:        kb,
			})
		}
	}
	return gaps
}

func firstN(in []string, n int) []string {
	if len(in) <= n {
		return append([]string(nil), in...)
	}
	return append([]string(nil), in[:n]...)
}
