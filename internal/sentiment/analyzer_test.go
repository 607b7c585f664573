package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

func testLexicon() *Lexicon {
	return NewLexicon(
		[]string{"amazing", "excellent", "great", "love", "Good", "solid"},
		[]string{"terrible", "bad", "disappointed", "broken", "solid"},
	)
}

func TestAnalyzer_AnalyzeSentiment(t *testing.T) {
	analyzer := NewAnalyzer(testLexicon())

	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"all positive", "This phone is amazing and excellent!", 1.0},
		{"all negative", "Terrible battery, very disappointed.", -1.0},
		{"mixed", "Great screen but terrible battery and bad speaker", -1.0 / 3.0},
		{"balanced", "good camera, bad battery", 0.0},
		{"no matches", "The phone arrived on Tuesday", 0.0},
		{"empty", "", 0.0},
		{"whitespace only", "   \t\n ", 0.0},
		{"punctuation glued", "love!!!great...", 1.0},
		{"uppercase folded", "AMAZING", 1.0},
		{"word on both sides counts twice", "solid", 0.0},
		{"both-sided word with positive", "solid amazing", 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, analyzer.AnalyzeSentiment(tt.text), 1e-9)
		})
	}
}

func TestAnalyzer_ScoreRange(t *testing.T) {
	analyzer := NewAnalyzer(testLexicon())

	texts := []string{
		"amazing amazing amazing amazing",
		"terrible bad broken",
		"neutral stable sideways",
		"amazing terrible great bad love broken excellent",
		"ünïcödé 漢字 123 amazing",
	}

	for _, text := range texts {
		score := analyzer.AnalyzeSentiment(text)
		assert.GreaterOrEqual(t, score, -1.0, text)
		assert.LessOrEqual(t, score, 1.0, text)
	}
}

func TestAnalyzer_Deterministic(t *testing.T) {
	analyzer := NewAnalyzer(testLexicon())
	text := "Great camera, terrible battery, love the screen"

	first := analyzer.AnalyzeSentiment(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, analyzer.AnalyzeSentiment(text))
	}
}

func TestAnalyzer_EmptyLexiconIsNeutral(t *testing.T) {
	for _, analyzer := range []*Analyzer{NewAnalyzer(nil), NewAnalyzer(NewLexicon(nil, nil))} {
		assert.Equal(t, 0.0, analyzer.AnalyzeSentiment("amazing excellent terrible"))
	}
}

func TestAnalyzer_Label(t *testing.T) {
	analyzer := NewAnalyzer(testLexicon())

	assert.Equal(t, models.SentimentPositive, analyzer.Label("amazing phone"))
	assert.Equal(t, models.SentimentNegative, analyzer.Label("broken phone"))
	assert.Equal(t, models.SentimentNeutral, analyzer.Label("good and bad"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"it", "s", "a", "4k", "tv"}, Tokenize("It's a 4K-TV!"))
	assert.Equal(t, []string{"écran", "génial"}, Tokenize("ÉCRAN génial"))
	assert.Empty(t, Tokenize("!!! ... ???"))
}
