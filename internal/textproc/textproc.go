// Package textproc cleans scraped page text before it is handed to the
// content-graph service.
package textproc

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	spacePattern      = regexp.MustCompile(`\s+`)
	disallowedPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-']`)
	sentenceBoundary  = regexp.MustCompile(`[.!?]+`)
)

// MinSentenceLen is the length a trimmed sentence must exceed to be kept.
const MinSentenceLen = 10

// Clean strips URLs and every character other than letters, digits, basic
// punctuation and whitespace, then collapses whitespace to single spaces.
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = disallowedPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Sentences splits on runs of . ! ? and keeps trimmed sentences longer than
// MinSentenceLen characters.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > MinSentenceLen {
			out = append(out, s)
		}
	}
	return out
}

// Document is the minimal view of a scraped page.
type Document struct {
	Title   string
	Content string
}

// Prepare joins all documents into one text. Each title becomes its own
// sentence ahead of the cleaned body.
func Prepare(docs []Document) string {
	parts := make([]string, 0, 2*len(docs))
	for _, d := range docs {
		if t := strings.TrimSpace(d.Title); t != "" {
			parts = append(parts, t+".")
		}
		parts = append(parts, Clean(d.Content))
	}
	return strings.Join(parts, " ")
}
