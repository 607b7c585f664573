package scoring

import (
	"math"
	"time"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// Component weights of the item score. They sum to 1.
const (
	RatingWeight     = 0.50
	SentimentWeight  = 0.25
	EngagementWeight = 0.15
	RecencyWeight    = 0.10
)

const (
	// engagementSaturation is the net interaction count at which the
	// engagement component reaches 1.
	engagementSaturation = 100
	// recencyDecayDays is the age in days at which recency halves.
	recencyDecayDays = 30
)

// Components are the normalized score inputs, each in [0,1]
type Components struct {
	Rating     float64
	Sentiment  float64
	Engagement float64
	Recency    float64
}

// Weighted returns the combined score in [0,1]
func (c Components) Weighted() float64 {
	return clamp01(RatingWeight*c.Rating +
		SentimentWeight*c.Sentiment +
		EngagementWeight*c.Engagement +
		RecencyWeight*c.Recency)
}

// Normalize maps review and engagement stats onto the four components
func Normalize(stats models.ReviewStats, engagement models.EngagementStats, now time.Time) Components {
	return Components{
		Rating:     clamp01((stats.AvgRating - 1) / 4),
		Sentiment:  clamp01((stats.AvgSentiment + 1) / 2),
		Engagement: engagementNorm(engagement.Net()),
		Recency:    recencyNorm(DaysSince(stats.LatestReviewAt, now)),
	}
}

// Compute returns the item score in [0,100] at full precision.
// Items without reviews score 0.
func Compute(stats models.ReviewStats, engagement models.EngagementStats, now time.Time) float64 {
	if !stats.HasReviews() {
		return 0.0
	}

	return Normalize(stats, engagement, now).Weighted() * 100
}

// DaysSince returns whole days elapsed from t to now, never negative
func DaysSince(t, now time.Time) int {
	if t.IsZero() || !now.After(t) {
		return 0
	}
	return int(now.Sub(t) / (24 * time.Hour))
}

// engagementNorm floors negative net engagement at zero before the log
func engagementNorm(net int) float64 {
	if net < 0 {
		net = 0
	}
	return clamp01(math.Log1p(float64(net)) / math.Log(1+engagementSaturation))
}

func recencyNorm(days int) float64 {
	return clamp01(1 / (1 + float64(days)/recencyDecayDays))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
