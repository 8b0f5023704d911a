package dedup

import (
	"strings"
	"unicode"
)

const (
	maxKeywords = 20
	minTokenLen = 3

	// TitleSimilarityThreshold and BodySimilarityThreshold are the Jaccard
	// scores above which two articles are treated as near-duplicates.
	TitleSimilarityThreshold = 0.70
	BodySimilarityThreshold  = 0.80
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "his": {}, "how": {},
	"its": {}, "now": {}, "who": {}, "why": {}, "will": {},
	"with": {}, "this": {}, "that": {}, "from": {}, "they": {}, "have": {},
	"been": {}, "were": {}, "said": {}, "says": {}, "than": {}, "then": {},
	"them": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "after": {},
	"before": {}, "their": {}, "there": {}, "these": {}, "those": {},
	"into": {}, "over": {}, "under": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "only": {}, "also": {}, "just": {}, "being": {},
}

// Keywords extracts a bounded, normalized token set from free text:
// lower-case, punctuation stripped, whitespace-tokenized, short tokens
// and stop words dropped, capped at 20 distinct tokens.
func Keywords(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) < minTokenLen {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}

// Jaccard returns |A∩B| / |A∪B| for two keyword sets, 0 when either is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, k := range a {
		setA[k] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, k := range b {
		setB[k] = struct{}{}
	}

	intersection := 0
	for k := range setB {
		if _, ok := setA[k]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
