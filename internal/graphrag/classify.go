package graphrag

import (
	"strings"
	"unicode"
)

type Category string

const (
	CategoryFeature        Category = "feature"
	CategoryPainPoint      Category = "pain_point"
	CategoryProduct        Category = "product"
	CategoryComparison     Category = "comparison"
	CategoryEvidence       Category = "evidence"
	CategoryHowTo          Category = "how_to"
	CategoryRecommendation Category = "recommendation"
)

// Checked in order; the first category with a matching phrase wins.
var categoryPhrases = []struct {
	category Category
	phrases  []string
}{
	{CategoryFeature, []string{"what is", "explain", "describe"}},
	{CategoryPainPoint, []string{"solve", "fix", "relieve", "help with", "pain"}},
	{CategoryComparison, []string{"compare", "vs", "versus", "difference between"}},
	{CategoryEvidence, []string{"evidence", "prove", "support", "research", "study"}},
	{CategoryHowTo, []string{"how does", "how to", "how can"}},
	{CategoryRecommendation, []string{"recommend", "best", "which", "should i", "suggest"}},
}

// Classify assigns a category by substring match on the lowercased question.
// Questions matching nothing are product questions.
func Classify(question string) Category {
	q := strings.ToLower(question)
	for _, c := range categoryPhrases {
		for _, p := range c.phrases {
			if strings.Contains(q, p) {
				return c.category
			}
		}
	}
	return CategoryProduct
}

const minKeywordLen = 4

// Keywords returns the question's words longer than three characters, in
// question order. Length is measured on the raw word; surrounding punctuation
// is trimmed afterwards so "gel?" yields "gel".
func Keywords(question string) []string {
	var out []string
	for _, w := range strings.Fields(question) {
		if len([]rune(w)) < minKeywordLen {
			continue
		}
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) })
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// ComparisonProducts splits "X vs Y" / "X or Y" questions into product name
// candidates. Candidates of two characters or fewer are dropped. " and " only
// separates products after "difference between". " with " and " to " only
// separate after "compare" when no vs/versus/or separator is present, so
// names like "Back to Sleep" stay whole.
func ComparisonProducts(question string) []string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.TrimRight(q, "?!. ")
	seps := []string{" versus ", " vs. ", " vs "}
	if i := strings.Index(q, "difference between "); i >= 0 {
		q = q[i+len("difference between "):]
		seps = append(seps, " and ")
	} else if i := strings.Index(q, "compare "); i >= 0 {
		q = q[i+len("compare "):]
		if !containsAny(q, " versus ", " vs. ", " vs ", " or ") {
			seps = append(seps, " with ", " to ")
		}
	}
	for _, sep := range seps {
		q = strings.ReplaceAll(q, sep, " or ")
	}
	var out []string
	for _, part := range strings.Split(q, " or ") {
		part = strings.TrimSpace(part)
		if len(part) > 2 {
			out = append(out, part)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
