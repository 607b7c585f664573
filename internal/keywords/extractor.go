package keywords

import (
	"sort"
	"strings"
	"unicode"
)

// MaxKeywords is the number of keywords returned per text
const MaxKeywords = 5

// Extractor ranks the non-stopword tokens of a text by frequency
type Extractor struct {
	stopwords map[string]struct{}
	limit     int
}

// NewExtractor creates an extractor with the built-in stopwords plus extra
func NewExtractor(extra ...string) *Extractor {
	stop := make(map[string]struct{}, len(defaultStopwords)+len(extra))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}

	return &Extractor{stopwords: stop, limit: MaxKeywords}
}

type tokenCount struct {
	token string
	count int
	first int
}

// Extract returns up to MaxKeywords distinct tokens, most frequent first.
// Equal frequencies keep the order in which the tokens first appeared.
func (e *Extractor) Extract(text string) []string {
	counts := make(map[string]*tokenCount)
	var ordered []*tokenCount

	for _, token := range tokenize(text) {
		if e.IsStopword(token) {
			continue
		}
		if tc, ok := counts[token]; ok {
			tc.count++
			continue
		}
		tc := &tokenCount{token: token, count: 1, first: len(ordered)}
		counts[token] = tc
		ordered = append(ordered, tc)
	}

	if len(ordered) == 0 {
		return []string{}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	n := min(len(ordered), e.limit)
	result := make([]string, 0, n)
	for _, tc := range ordered[:n] {
		result = append(result, tc.token)
	}
	return result
}

// IsStopword reports whether token is ignored by the extractor
func (e *Extractor) IsStopword(token string) bool {
	_, ok := e.stopwords[token]
	return ok
}

// tokenize lowercases text, drops every rune that is neither a letter nor
// whitespace (digits included) and splits on whitespace.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	return strings.Fields(cleaned)
}
