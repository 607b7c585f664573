package keywords

// defaultStopwords are common English function words that never carry a
// product signal.
var defaultStopwords = []string{
	"the", "is", "are", "was", "were", "and", "but", "for", "with", "this",
	"that", "from", "have", "has",
	"a", "an", "or", "in", "on", "at", "to", "of", "by", "be", "been",
	"being", "had", "do", "does", "did", "will", "would", "could", "should",
	"may", "might", "these", "those", "it", "its", "i", "we", "you", "he",
	"she", "they", "my", "your", "how", "what", "when", "where", "why", "not",
	"no", "new", "just", "about", "up", "out", "if", "so", "can", "all",
	"more", "also", "than", "very",
}

// DefaultStopwords returns a copy of the built-in stopword list
func DefaultStopwords() []string {
	out := make([]string, len(defaultStopwords))
	copy(out, defaultStopwords)
	return out
}
