package usecase

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// TopN is the number of recommendations returned by Rank.
const TopN = 5

// Score computes the recommendation score of a candidate sermon against a
// preference profile. Pure and deterministic: two topic-match points per
// shared topic, three points for a tradition match, half the overall score
// as a quality bonus. Unevaluated sermons score zero so they never rank
// ahead of evaluated ones.
func Score(candidate domain.Sermon, profile domain.PreferenceProfile) float64 {
	if candidate.Analysis == nil {
		return 0
	}
	favorites := make(map[string]struct{}, len(profile.FavoriteTopics))
	for _, t := range profile.FavoriteTopics {
		favorites[t] = struct{}{}
	}
	var score float64
	for _, t := range candidate.Analysis.Topics {
		if _, ok := favorites[t]; ok {
			score += 2
		}
	}
	if candidate.Analysis.TheologicalTradition == profile.TheologicalTradition {
		score += 3
	}
	score += candidate.Analysis.OverallScore / 2
	return score
}

// Rank returns the top-N candidates by descending score, excluding any
// candidate already in the profile's recently-viewed list. Ties break by
// most-recent CreatedAt, then by id, so identical inputs always produce the
// identical output list.
func Rank(candidates []domain.Sermon, profile domain.PreferenceProfile) []domain.Sermon {
	viewed := make(map[string]struct{}, len(profile.RecentlyViewed))
	for _, id := range profile.RecentlyViewed {
		viewed[id] = struct{}{}
	}

	type scored struct {
		sermon domain.Sermon
		score  float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := viewed[c.ID]; ok {
			continue
		}
		ranked = append(ranked, scored{sermon: c, score: Score(c, profile)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if !ranked[i].sermon.CreatedAt.Equal(ranked[j].sermon.CreatedAt) {
			return ranked[i].sermon.CreatedAt.After(ranked[j].sermon.CreatedAt)
		}
		return ranked[i].sermon.ID < ranked[j].sermon.ID
	})

	n := TopN
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]domain.Sermon, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, r.sermon)
	}
	return out
}

// RecommendService serves ranked recommendations per owner, with an optional
// cache in front of the ranking pass.
type RecommendService struct {
	Sermons  domain.SermonRepository
	Profiles domain.ProfileRepository
	Cache    domain.RecommendationCache
}

// NewRecommendService constructs a RecommendService.
func NewRecommendService(sermons domain.SermonRepository, profiles domain.ProfileRepository, cache domain.RecommendationCache) RecommendService {
	return RecommendService{Sermons: sermons, Profiles: profiles, Cache: cache}
}

// Recommend ranks the owner's sermons against their profile. An owner with
// no profile yet gets an empty list rather than an error.
func (s RecommendService) Recommend(ctx domain.Context, ownerID string) ([]domain.Sermon, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("op=recommend: %w", domain.ErrUnauthorized)
	}
	profile, err := s.Profiles.Get(ctx, ownerID)
	if err != nil {
		if isNotFound(err) {
			return []domain.Sermon{}, nil
		}
		return nil, err
	}
	candidates, err := s.Sermons.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if ids, ok, err := s.Cache.Get(ctx, ownerID); err == nil && ok {
			if out, complete := resolve(ids, candidates); complete {
				return out, nil
			}
		} else if err != nil {
			slog.Warn("recommendation cache read failed", slog.String("owner_id", ownerID), slog.Any("error", err))
		}
	}

	out := Rank(candidates, profile)
	if s.Cache != nil {
		ids := make([]string, len(out))
		for i, sm := range out {
			ids[i] = sm.ID
		}
		if err := s.Cache.Set(ctx, ownerID, ids); err != nil {
			slog.Warn("recommendation cache write failed", slog.String("owner_id", ownerID), slog.Any("error", err))
		}
	}
	return out, nil
}

// resolve maps cached ids back onto loaded sermons; a stale id invalidates
// the cached list.
func resolve(ids []string, candidates []domain.Sermon) ([]domain.Sermon, bool) {
	byID := make(map[string]domain.Sermon, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	out := make([]domain.Sermon, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
