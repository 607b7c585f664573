package metrics

import "time"

// ScoreComputedMetric is one score computation, kept as score history
type ScoreComputedMetric struct {
	Timestamp    time.Time
	ItemID       int64
	Score        float64
	ReviewCount  int
	AvgRating    float64
	AvgSentiment float64
	Engagement   int
	Forced       bool
	Degraded     string
}

func (m *ScoreComputedMetric) TableName() string {
	return "score_history"
}

func (m *ScoreComputedMetric) Columns() []string {
	return []string{
		"timestamp", "item_id", "score", "review_count", "avg_rating",
		"avg_sentiment", "engagement", "forced", "degraded",
	}
}

func (m *ScoreComputedMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.ItemID,
		m.Score,
		m.ReviewCount,
		m.AvgRating,
		m.AvgSentiment,
		m.Engagement,
		m.Forced,
		m.Degraded,
	}
}

// InsightMergedMetric records which keywords a post contributed to a product
type InsightMergedMetric struct {
	Timestamp   time.Time
	ProductName string
	Side        string
	Sentiment   float64
	Keywords    []string
}

func (m *InsightMergedMetric) TableName() string {
	return "insight_merges"
}

func (m *InsightMergedMetric) Columns() []string {
	return []string{"timestamp", "product_name", "side", "sentiment", "keywords"}
}

func (m *InsightMergedMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.ProductName,
		m.Side,
		m.Sentiment,
		m.Keywords,
	}
}
