package sentiment

import (
	"strings"
	"unicode"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// Analyzer performs lexicon-based sentiment analysis
type Analyzer struct {
	lexicon *Lexicon
}

// NewAnalyzer creates new sentiment analyzer over a shared lexicon.
// A nil lexicon behaves like an empty one.
func NewAnalyzer(lexicon *Lexicon) *Analyzer {
	if lexicon == nil {
		lexicon = NewLexicon(nil, nil)
	}
	return &Analyzer{lexicon: lexicon}
}

// AnalyzeSentiment analyzes text and returns sentiment score (-1.0 to 1.0)
func (a *Analyzer) AnalyzeSentiment(text string) float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0.0
	}

	positive, negative := 0, 0
	for _, token := range tokens {
		// Independent tests: a word listed on both sides counts twice
		if a.lexicon.IsPositive(token) {
			positive++
		}
		if a.lexicon.IsNegative(token) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0.0
	}

	return clamp(float64(positive-negative)/float64(total), -1.0, 1.0)
}

// Label returns the polarity label of text
func (a *Analyzer) Label(text string) models.SentimentLabel {
	return models.LabelFor(a.AnalyzeSentiment(text))
}

// Tokenize lowercases text, turns every rune that is not a letter, number or
// whitespace into a separator and splits on whitespace.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	return strings.Fields(cleaned)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
