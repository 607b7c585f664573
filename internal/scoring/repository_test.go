package scoring

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/catalog-ranker/internal/testdb"
)

func seedPhone(t *testing.T, db *testdb.TestDB) int64 {
	t.Helper()

	item := db.InsertItem("Phone X", "flagship phone with a great camera")
	r1 := db.InsertReview(item, 4, 0.5, "good phone", testNow.Add(-5*24*time.Hour))
	r2 := db.InsertReview(item, 5, 1.0, "amazing camera", testNow.Add(-2*24*time.Hour))

	db.InsertLike(r1, 100, 1)
	db.InsertLike(r1, 101, 1)
	db.InsertLike(r2, 100, -1)
	db.InsertComment(r2, 102, "agreed")
	return item
}

func TestRepository_FetchReviewStats(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		item := seedPhone(t, db)

		stats, err := repo.FetchReviewStats(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.ReviewCount)
		assert.InDelta(t, 4.5, stats.AvgRating, 1e-9)
		assert.InDelta(t, 0.75, stats.AvgSentiment, 1e-9)
		assert.True(t, stats.LatestReviewAt.Equal(testNow.Add(-2*24*time.Hour)), "latest %v", stats.LatestReviewAt)

		empty := db.InsertItem("Tablet", "")
		stats, err = repo.FetchReviewStats(ctx, empty)
		require.NoError(t, err)
		assert.False(t, stats.HasReviews())
		assert.True(t, stats.LatestReviewAt.IsZero())
	})
}

func TestRepository_FetchEngagementStats(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		item := seedPhone(t, db)

		eng, err := repo.FetchEngagementStats(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, 2, eng.Likes)
		assert.Equal(t, 1, eng.Dislikes)
		assert.Equal(t, 1, eng.CommentCount)

		other := db.InsertItem("Tablet", "")
		eng, err = repo.FetchEngagementStats(ctx, other)
		require.NoError(t, err)
		assert.Zero(t, eng.Net())
	})
}

func TestRepository_ScoreRecordRoundTrip(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		item := db.InsertItem("Phone X", "")

		rec, err := repo.FetchScoreRecord(ctx, item)
		require.NoError(t, err)
		assert.Nil(t, rec)

		require.NoError(t, repo.UpsertScore(ctx, item, 61.25, testNow))
		require.NoError(t, repo.UpsertScore(ctx, item, 70.5, testNow.Add(time.Hour)))

		rec, err = repo.FetchScoreRecord(ctx, item)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, item, rec.ItemID)
		assert.Equal(t, 70.5, rec.Score)
		assert.True(t, rec.LastUpdated.Equal(testNow.Add(time.Hour)))
	})
}

func TestRepository_ListStaleItems(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		fresh := db.InsertItem("fresh", "")
		stale := db.InsertItem("stale", "")
		unscored := db.InsertItem("unscored", "")
		db.InsertItem("no reviews", "")

		for _, id := range []int64{fresh, stale, unscored} {
			db.InsertReview(id, 3, 0, "ok", testNow.Add(-time.Hour))
		}
		require.NoError(t, repo.UpsertScore(ctx, fresh, 50, testNow))
		require.NoError(t, repo.UpsertScore(ctx, stale, 40, testNow.Add(-3*time.Hour)))

		ids, err := repo.ListStaleItems(ctx, testNow.Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{unscored, stale}, ids)

		ids, err = repo.ListStaleItems(ctx, testNow.Add(-time.Hour), 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{unscored}, ids)
	})
}

func TestRepository_ListRanked(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		phone := seedPhone(t, db)
		tablet := db.InsertItem("Tablet S", "big screen tablet")
		db.InsertReview(tablet, 3, 0, "fine", testNow)
		watch := db.InsertItem("Watch", "phone companion")
		db.InsertReview(watch, 5, 0, "nice", testNow)

		require.NoError(t, repo.UpsertScore(ctx, phone, 78.571, testNow))
		require.NoError(t, repo.UpsertScore(ctx, tablet, 55.0, testNow))

		items, err := repo.ListRanked(ctx, RankOptions{Limit: 10})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, phone, items[0].ItemID)
		assert.Equal(t, 78.57, items[0].Score)
		assert.Equal(t, 4.5, items[0].AvgRating)
		assert.Equal(t, 2, items[0].ReviewCount)
		assert.Equal(t, tablet, items[1].ItemID)
		assert.Equal(t, watch, items[2].ItemID)
		assert.Equal(t, 0.0, items[2].Score)

		items, err = repo.ListRanked(ctx, RankOptions{Query: "PHONE"})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Phone X", items[0].Title)
		assert.Equal(t, "Watch", items[1].Title)

		items, err = repo.ListRanked(ctx, RankOptions{MinScore: 60})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, phone, items[0].ItemID)
	})
}

func TestCache_WithRepositoryStore(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		item := seedPhone(t, db)
		cache := NewCache(repo, WithClock(clockwork.NewFakeClockAt(testNow)))

		res := cache.GetOrCompute(ctx, item)
		require.False(t, res.IsDegraded(), "%v", res.Err)
		assert.InDelta(t, 78.5707, res.Value, 0.0001)

		db.InsertReview(item, 1, -1, "terrible", testNow)
		assert.Equal(t, res.Value, cache.GetOrCompute(ctx, item).Value)

		refreshed := cache.Refresh(ctx, item)
		assert.Less(t, refreshed.Value, res.Value)

		score, ok, err := cache.Cached(ctx, item)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, refreshed.Value, score)
	})
}

func TestRepository_FetchItemAndHighlights(t *testing.T) {
	testdb.Each(t, func(t *testing.T, db *testdb.TestDB) {
		repo := NewRepository(db.DB.DB())
		ctx := context.Background()

		item := db.InsertItem("Phone X", "flagship")
		long := strings.Repeat("é", 120)
		db.InsertReview(item, 5, 0.9, "love it", testNow)
		db.InsertReview(item, 4, 1.0, long, testNow)
		db.InsertReview(item, 3, 0.0, "meh", testNow)
		db.InsertReview(item, 1, -1.0, "broken on arrival", testNow)
		db.InsertReview(item, 2, -0.2, "slow", testNow)

		got, err := repo.FetchItem(ctx, item)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Phone X", got.Title)
		assert.Equal(t, "flagship", got.Description)

		missing, err := repo.FetchItem(ctx, item+100)
		require.NoError(t, err)
		assert.Nil(t, missing)

		pros, err := repo.FetchReviewHighlights(ctx, item, true, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{strings.Repeat("é", 100) + "...", "love it"}, pros)

		cons, err := repo.FetchReviewHighlights(ctx, item, false, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"broken on arrival"}, cons)
	})
}
