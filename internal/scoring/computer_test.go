package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestCompute_NoReviews(t *testing.T) {
	stats := models.ReviewStats{ReviewCount: 0, AvgRating: 5, AvgSentiment: 1, LatestReviewAt: testNow}
	engagement := models.EngagementStats{Likes: 500}

	assert.Equal(t, 0.0, Compute(stats, engagement, testNow))
}

func TestCompute_Example(t *testing.T) {
	stats := models.ReviewStats{ReviewCount: 10, AvgRating: 4.5, AvgSentiment: 0.5, LatestReviewAt: testNow}
	engagement := models.EngagementStats{Likes: 20, Dislikes: 2, CommentCount: 8}

	score := Compute(stats, engagement, testNow)

	assert.Greater(t, score, 50.0)
	assert.InDelta(t, 83.212, score, 0.001)
	assert.Equal(t, 83.21, models.RoundScore(score))
}

func TestCompute_Extremes(t *testing.T) {
	worst := Compute(
		models.ReviewStats{ReviewCount: 1, AvgRating: 1, AvgSentiment: -1, LatestReviewAt: testNow},
		models.EngagementStats{Dislikes: 5},
		testNow,
	)
	// Only recency contributes
	assert.InDelta(t, 10.0, worst, 1e-9)

	best := Compute(
		models.ReviewStats{ReviewCount: 1, AvgRating: 5, AvgSentiment: 1, LatestReviewAt: testNow},
		models.EngagementStats{Likes: 1000},
		testNow,
	)
	assert.InDelta(t, 100.0, best, 1e-9)
}

func TestCompute_ClampsOutOfRangeInputs(t *testing.T) {
	score := Compute(
		models.ReviewStats{ReviewCount: 3, AvgRating: 9, AvgSentiment: 4, LatestReviewAt: testNow.Add(48 * time.Hour)},
		models.EngagementStats{Likes: 1 << 30},
		testNow,
	)
	assert.InDelta(t, 100.0, score, 1e-9)

	score = Compute(
		models.ReviewStats{ReviewCount: 3, AvgRating: -3, AvgSentiment: -7},
		models.EngagementStats{Dislikes: 1 << 30},
		testNow,
	)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestCompute_Range(t *testing.T) {
	for rating := 1.0; rating <= 5.0; rating += 0.5 {
		for sentiment := -1.0; sentiment <= 1.0; sentiment += 0.25 {
			for _, net := range []int{-50, 0, 3, 99, 100, 5000} {
				for _, days := range []int{0, 1, 30, 365, 5000} {
					stats := models.ReviewStats{
						ReviewCount:    4,
						AvgRating:      rating,
						AvgSentiment:   sentiment,
						LatestReviewAt: testNow.Add(-time.Duration(days) * 24 * time.Hour),
					}
					eng := models.EngagementStats{Likes: max(net, 0), Dislikes: max(-net, 0)}

					score := Compute(stats, eng, testNow)
					assert.GreaterOrEqual(t, score, 0.0)
					assert.LessOrEqual(t, score, 100.0)
				}
			}
		}
	}
}

func TestCompute_MonotoneInRating(t *testing.T) {
	base := models.ReviewStats{ReviewCount: 7, AvgSentiment: 0.2, LatestReviewAt: testNow.Add(-72 * time.Hour)}
	eng := models.EngagementStats{Likes: 4, Dislikes: 1, CommentCount: 2}

	prev := -1.0
	for rating := 1.0; rating <= 5.0; rating += 0.1 {
		base.AvgRating = rating
		score := Compute(base, eng, testNow)
		assert.GreaterOrEqual(t, score, prev, "rating %.1f", rating)
		prev = score
	}
}

func TestCompute_RecencyDecay(t *testing.T) {
	stats := models.ReviewStats{ReviewCount: 10, AvgRating: 4.5, AvgSentiment: 0.5, LatestReviewAt: testNow.Add(-30 * 24 * time.Hour)}
	engagement := models.EngagementStats{Likes: 20, Dislikes: 2, CommentCount: 8}

	// Thirty days halve the recency component: 10 -> 5 points
	assert.InDelta(t, 78.212, Compute(stats, engagement, testNow), 0.001)
}

func TestNormalize_NegativeEngagementFloorsAtZero(t *testing.T) {
	c := Normalize(
		models.ReviewStats{ReviewCount: 1, AvgRating: 3},
		models.EngagementStats{Likes: 1, Dislikes: 40},
		testNow,
	)
	assert.Equal(t, 0.0, c.Engagement)
	assert.Equal(t, 0.5, c.Rating)
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		expected int
	}{
		{"same instant", testNow, 0},
		{"23 hours", testNow.Add(-23 * time.Hour), 0},
		{"exactly one day", testNow.Add(-24 * time.Hour), 1},
		{"47 hours", testNow.Add(-47 * time.Hour), 1},
		{"future", testNow.Add(72 * time.Hour), 0},
		{"zero time", time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysSince(tt.at, testNow))
		})
	}
}

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, RatingWeight+SentimentWeight+EngagementWeight+RecencyWeight, 1e-12)
}
