package models

// SentimentLabel is the coarse polarity of a sentiment score
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// PolarityThreshold separates neutral from polar sentiment scores
const PolarityThreshold = 0.3

// LabelFor maps a score in [-1, 1] to its label
func LabelFor(score float64) SentimentLabel {
	switch {
	case score > PolarityThreshold:
		return SentimentPositive
	case score < -PolarityThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
