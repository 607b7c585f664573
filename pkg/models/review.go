package models

import "time"

// ReviewStats aggregates the reviews of one item.
// AvgRating and AvgSentiment are meaningless when ReviewCount is zero.
type ReviewStats struct {
	LatestReviewAt time.Time `json:"latest_review_at" db:"latest_review_at"`
	ReviewCount    int       `json:"review_count" db:"review_count"`
	AvgRating      float64   `json:"avg_rating" db:"avg_rating"`
	AvgSentiment   float64   `json:"avg_sentiment" db:"avg_sentiment"`
}

// HasReviews reports whether the stats describe at least one review
func (s ReviewStats) HasReviews() bool {
	return s.ReviewCount > 0
}

// EngagementStats counts reactions to the reviews of one item
type EngagementStats struct {
	Likes        int `json:"likes" db:"likes"`
	Dislikes     int `json:"dislikes" db:"dislikes"`
	CommentCount int `json:"comment_count" db:"comment_count"`
}

// Net returns likes minus dislikes plus comments. May be negative.
func (e EngagementStats) Net() int {
	return e.Likes - e.Dislikes + e.CommentCount
}
