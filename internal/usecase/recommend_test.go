package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/usecase"
)

func evaluated(id string, topics []string, tradition string, overall float64, createdAt time.Time) domain.Sermon {
	return domain.Sermon{
		ID:        id,
		OwnerID:   "owner-1",
		CreatedAt: createdAt,
		Analysis: &domain.SermonAnalysis{
			Topics:               topics,
			TheologicalTradition: tradition,
			OverallScore:         overall,
		},
	}
}

func TestScore_Formula(t *testing.T) {
	t.Parallel()
	profile := domain.PreferenceProfile{
		FavoriteTopics:       []string{"grace", "hope"},
		TheologicalTradition: "Reformed",
	}
	// Two topic matches, a tradition match, overall 8:
	// 2*2 + 3 + 8/2 = 11.
	s := evaluated("a", []string{"grace", "hope", "judgment"}, "Reformed", 8, time.Now())
	assert.InDelta(t, 11.0, usecase.Score(s, profile), 1e-9)
}

func TestScore_UnevaluatedIsZero(t *testing.T) {
	t.Parallel()
	profile := domain.PreferenceProfile{FavoriteTopics: []string{"grace"}}
	assert.Zero(t, usecase.Score(domain.Sermon{ID: "a"}, profile))
}

func TestScore_NoMatches(t *testing.T) {
	t.Parallel()
	profile := domain.PreferenceProfile{
		FavoriteTopics:       []string{"grace"},
		TheologicalTradition: "Reformed",
	}
	s := evaluated("a", []string{"judgment"}, "Baptist", 6, time.Now())
	assert.InDelta(t, 3.0, usecase.Score(s, profile), 1e-9)
}

func TestRank_ExcludesRecentlyViewed(t *testing.T) {
	t.Parallel()
	now := time.Now()
	profile := domain.PreferenceProfile{
		FavoriteTopics: []string{"grace"},
		RecentlyViewed: []string{"seen"},
	}
	out := usecase.Rank([]domain.Sermon{
		evaluated("seen", []string{"grace"}, "", 9, now),
		evaluated("fresh", []string{"grace"}, "", 5, now),
	}, profile)
	require.Len(t, out, 1)
	assert.Equal(t, "fresh", out[0].ID)
}

func TestRank_TopNAndOrdering(t *testing.T) {
	t.Parallel()
	now := time.Now()
	profile := domain.PreferenceProfile{FavoriteTopics: []string{"grace"}}
	var candidates []domain.Sermon
	for i, overall := range []float64{2, 9, 5, 7, 3, 8, 6} {
		candidates = append(candidates, evaluated(
			string(rune('a'+i)), []string{"grace"}, "", overall, now.Add(-time.Duration(i)*time.Hour)))
	}
	out := usecase.Rank(candidates, profile)
	require.Len(t, out, usecase.TopN)
	// Descending by score.
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t,
			usecase.Score(out[i-1], profile),
			usecase.Score(out[i], profile))
	}
	assert.Equal(t, "b", out[0].ID)
}

func TestRank_TieBreakDeterministic(t *testing.T) {
	t.Parallel()
	now := time.Now()
	profile := domain.PreferenceProfile{}
	older := evaluated("older", nil, "", 6, now.Add(-time.Hour))
	newer := evaluated("newer", nil, "", 6, now)
	sameA := evaluated("aa", nil, "", 6, now)
	sameB := evaluated("bb", nil, "", 6, now)

	out := usecase.Rank([]domain.Sermon{older, sameB, newer, sameA}, profile)
	require.Len(t, out, 4)
	// Equal scores: most recent first, then id ascending.
	assert.Equal(t, "aa", out[0].ID)
	assert.Equal(t, "bb", out[1].ID)
	assert.Equal(t, "newer", out[2].ID)
	assert.Equal(t, "older", out[3].ID)

	// Shuffled input produces the identical output.
	again := usecase.Rank([]domain.Sermon{sameA, newer, older, sameB}, profile)
	require.Equal(t, out, again)
}

func TestRecommend_NoProfileMeansEmptyList(t *testing.T) {
	t.Parallel()
	svc := usecase.NewRecommendService(newFakeSermonRepo(), newFakeProfileRepo(), nil)
	out, err := svc.Recommend(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRecommend_CacheHitServesWithoutRanking(t *testing.T) {
	t.Parallel()
	now := time.Now()
	a := evaluated("a", []string{"grace"}, "Reformed", 8, now)
	b := evaluated("b", []string{"grace"}, "Reformed", 6, now)
	sermons := newFakeSermonRepo(a, b)
	profiles := newFakeProfileRepo(domain.PreferenceProfile{OwnerID: "owner-1", Version: 1})
	cache := newFakeCache()
	cache.entries["owner-1"] = []string{"b", "a"}

	svc := usecase.NewRecommendService(sermons, profiles, cache)
	out, err := svc.Recommend(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	// Cached ordering wins over freshly computed ranking.
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
}

func TestRecommend_StaleCacheFallsBackToRanking(t *testing.T) {
	t.Parallel()
	now := time.Now()
	a := evaluated("a", []string{"grace"}, "Reformed", 8, now)
	sermons := newFakeSermonRepo(a)
	profiles := newFakeProfileRepo(domain.PreferenceProfile{
		OwnerID:        "owner-1",
		FavoriteTopics: []string{"grace"},
		Version:        1,
	})
	cache := newFakeCache()
	cache.entries["owner-1"] = []string{"deleted-sermon"}

	svc := usecase.NewRecommendService(sermons, profiles, cache)
	out, err := svc.Recommend(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
	// The recomputed list replaces the stale entry.
	assert.Equal(t, []string{"a"}, cache.entries["owner-1"])
}
