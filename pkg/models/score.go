package models

import "time"

// ScoreRecord is the persisted score of an item
type ScoreRecord struct {
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	ItemID      int64     `json:"item_id" db:"item_id"`
	Score       float64   `json:"score" db:"score_value"`
}

// Age returns how long ago the record was written relative to now
func (r *ScoreRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.LastUpdated)
}

// RankedItem is one row of a score-ordered listing
type RankedItem struct {
	Title       string  `json:"title" db:"title"`
	ItemID      int64   `json:"item_id" db:"item_id"`
	Score       float64 `json:"score" db:"score"`
	AvgRating   float64 `json:"avg_rating" db:"avg_rating"`
	ReviewCount int     `json:"review_count" db:"review_count"`
}

// Item is a catalog entry
type Item struct {
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	ID          int64  `json:"item_id" db:"id"`
}

// ItemComparison is one side of a side-by-side comparison
type ItemComparison struct {
	Title        string   `json:"title"`
	Degraded     string   `json:"degraded,omitempty"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
	ItemID       int64    `json:"item_id"`
	Score        float64  `json:"score"`
	AvgRating    float64  `json:"avg_rating"`
	AvgSentiment float64  `json:"avg_sentiment"`
	ReviewCount  int      `json:"review_count"`
}
