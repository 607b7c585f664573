package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/catalog-ranker/internal/keywords"
	"github.com/selivandex/catalog-ranker/pkg/models"
)

type memoryStore struct {
	mu       sync.Mutex
	rows     map[string]models.CommunityInsight
	fetchErr error
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[string]models.CommunityInsight{}}
}

func (m *memoryStore) FetchCommunityInsight(_ context.Context, name string) (*models.CommunityInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	row, ok := m.rows[name]
	if !ok {
		return nil, nil
	}
	row.PositiveKeywords = append([]string{}, row.PositiveKeywords...)
	row.NegativeKeywords = append([]string{}, row.NegativeKeywords...)
	return &row, nil
}

func (m *memoryStore) UpsertCommunityInsight(_ context.Context, in *models.CommunityInsight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows[in.ProductName] = *in
	return nil
}

var insightNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newTestAggregator(store Store) *Aggregator {
	return NewAggregator(store, keywords.NewExtractor(), WithClock(clockwork.NewFakeClockAt(insightNow)))
}

func TestSideFor(t *testing.T) {
	assert.Equal(t, SidePositive, SideFor(0.6))
	assert.Equal(t, SideNone, SideFor(0.3))
	assert.Equal(t, SideNone, SideFor(0))
	assert.Equal(t, SideNone, SideFor(-0.3))
	assert.Equal(t, SideNegative, SideFor(-0.5))
}

func TestAggregator_PhoneXExample(t *testing.T) {
	store := newMemoryStore()
	agg := newTestAggregator(store)
	ctx := context.Background()

	_, err := agg.Merge(ctx, "Phone X", "Great camera and battery", 0.6)
	require.NoError(t, err)
	in, err := agg.Merge(ctx, "Phone X", "Camera is terrible", -0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"great", "camera", "battery"}, in.PositiveKeywords)
	assert.Equal(t, []string{"camera", "terrible"}, in.NegativeKeywords)
	require.NotNil(t, in.CommonPraise)
	assert.Equal(t, "great, camera, battery", *in.CommonPraise)
	require.NotNil(t, in.CommonComplaints)
	assert.Equal(t, "camera, terrible", *in.CommonComplaints)
	assert.Equal(t, insightNow, in.LastUpdated)

	assert.Equal(t, in.PositiveKeywords, store.rows["Phone X"].PositiveKeywords)
}

func TestAggregator_FirstPostSeedsOnlyRelevantSide(t *testing.T) {
	store := newMemoryStore()
	agg := newTestAggregator(store)

	in, err := agg.Merge(context.Background(), "Tablet", "Screen cracked, awful hinge", -0.9)
	require.NoError(t, err)

	assert.Empty(t, in.PositiveKeywords)
	assert.Equal(t, []string{"screen", "cracked", "awful", "hinge"}, in.NegativeKeywords)
	assert.Nil(t, in.CommonPraise)
}

func TestAggregator_NeutralCreatesEmptyRowAndLeavesListsAlone(t *testing.T) {
	store := newMemoryStore()
	agg := newTestAggregator(store)
	ctx := context.Background()

	in, err := agg.Merge(ctx, "Watch", "It arrived on Tuesday", 0.1)
	require.NoError(t, err)
	assert.Empty(t, in.PositiveKeywords)
	assert.Empty(t, in.NegativeKeywords)
	require.Contains(t, store.rows, "Watch")

	_, err = agg.Merge(ctx, "Watch", "Lovely strap", 0.8)
	require.NoError(t, err)
	in, err = agg.Merge(ctx, "Watch", "Strap color is fine I guess", 0.3)
	require.NoError(t, err)
	assert.Equal(t, []string{"lovely", "strap"}, in.PositiveKeywords)
}

func TestAggregator_MostRecentFirstAndCapped(t *testing.T) {
	store := newMemoryStore()
	agg := newTestAggregator(store)
	ctx := context.Background()

	posts := []string{
		"alpha bravo charlie delta echo",
		"foxtrot golf hotel india juliet",
		"kilo lima alpha",
	}
	var in *models.CommunityInsight
	var err error
	for _, p := range posts {
		in, err = agg.Merge(ctx, "Phone X", p, 0.9)
		require.NoError(t, err)
	}

	assert.Len(t, in.PositiveKeywords, models.MaxInsightKeywords)
	assert.Equal(t, []string{"kilo", "lima", "alpha", "foxtrot", "golf", "hotel", "india", "juliet", "bravo", "charlie"}, in.PositiveKeywords)
}

func TestAggregator_Errors(t *testing.T) {
	store := newMemoryStore()
	agg := newTestAggregator(store)
	ctx := context.Background()

	_, err := agg.Merge(ctx, "  ", "great", 1)
	assert.Error(t, err)

	store.fetchErr = errors.New("db down")
	_, err = agg.Merge(ctx, "Phone X", "great", 1)
	assert.ErrorIs(t, err, store.fetchErr)

	store.fetchErr = nil
	store.saveErr = errors.New("read only")
	_, err = agg.Merge(ctx, "Phone X", "great", 1)
	assert.ErrorIs(t, err, store.saveErr)
}

func TestAggregator_ConcurrentMergesKeepEveryKeyword(t *testing.T) {
	store := newMemoryStore()
	agg := newTestAggregator(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			word := fmt.Sprintf("word%c", 'a'+rune(i))
			_, err := agg.Merge(ctx, "Phone X", word, 0.9)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.rows["Phone X"].PositiveKeywords, 8)
	assert.Empty(t, agg.locks)
}

func TestMergeKeywords(t *testing.T) {
	tests := []struct {
		name     string
		fresh    []string
		existing []string
		limit    int
		expected []string
	}{
		{"empty", nil, nil, 10, []string{}},
		{"fresh first", []string{"c", "d"}, []string{"a", "b"}, 10, []string{"c", "d", "a", "b"}},
		{"dedupe keeps first", []string{"b", "x"}, []string{"a", "b"}, 10, []string{"b", "x", "a"}},
		{"truncates", []string{"a", "b", "c"}, []string{"d", "e"}, 4, []string{"a", "b", "c", "d"}},
		{"skips blanks", []string{"", "a"}, []string{""}, 10, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeKeywords(tt.fresh, tt.existing, tt.limit))
		})
	}
}
