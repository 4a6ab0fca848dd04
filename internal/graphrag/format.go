package graphrag

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders an answer for terminal output.
func Format(a Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Q: %s", a.Question)
	fmt.Fprintf(&b, "\nA: %s", a.AnswerText)

	if len(a.Citations) > 0 {
		b.WriteString("\n\nSources:")
		for i, c := range a.Citations {
			fmt.Fprintf(&b, "\n[%d] %s", i+1, c.Source)
			if c.URL != "" {
				fmt.Fprintf(&b, "\n    %s", c.URL)
			}
			if c.CredibilityScore != 0 {
				fmt.Fprintf(&b, "\n    Credibility: %.2f", c.CredibilityScore)
			}
			if c.Quote != "" {
				fmt.Fprintf(&b, "\n    Quote: %q", c.Quote)
			}
		}
	}

	fmt.Fprintf(&b, "\n\nGraph path: %s", strings.Join(a.GraphPath, " → "))
	fmt.Fprintf(&b, "\nConfidence: %.0f%%", a.Confidence*100)
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
