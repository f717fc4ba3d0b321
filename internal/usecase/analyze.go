package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/sermon-evaluator/internal/config"
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// AnalyzeService orchestrates the evaluation pipeline: prompt composition,
// the remote completion call, parsing, validation, persistence and the
// preference-profile side effect.
type AnalyzeService struct {
	Sermons  domain.SermonRepository
	Profiles domain.ProfileRepository
	AI       domain.AIClient
	Cache    domain.RecommendationCache
	Rubric   config.RubricConfig
	// MaxTokens bounds the completion length requested from the capability.
	MaxTokens int
}

// NewAnalyzeService constructs an AnalyzeService with its dependencies.
func NewAnalyzeService(sermons domain.SermonRepository, profiles domain.ProfileRepository, ai domain.AIClient, cache domain.RecommendationCache, rubric config.RubricConfig, maxTokens int) AnalyzeService {
	return AnalyzeService{Sermons: sermons, Profiles: profiles, AI: ai, Cache: cache, Rubric: rubric, MaxTokens: maxTokens}
}

// Analyze runs one evaluation for the principal's sermon. No retries happen
// here; retry/backoff is a caller policy layered onto the AI client. Writes
// are strictly ordered: the analysis is persisted before the profile is
// touched, and a failed persist leaves the profile untouched.
func (s AnalyzeService) Analyze(ctx domain.Context, principalID, sermonID string) (domain.SermonAnalysis, error) {
	tracer := otel.Tracer("usecase.analyze")
	ctx, span := tracer.Start(ctx, "analyze.Analyze")
	defer span.End()

	sermon, err := s.Sermons.Get(ctx, sermonID)
	if err != nil {
		return domain.SermonAnalysis{}, err
	}
	if sermon.OwnerID != principalID {
		return domain.SermonAnalysis{}, fmt.Errorf("op=analyze: %w", domain.ErrUnauthorized)
	}

	slog.Info("starting sermon analysis", slog.String("sermon_id", sermonID))
	raw, err := s.AI.ChatJSON(ctx, s.Rubric.SystemPrompt, sermon.Content, s.MaxTokens)
	if err != nil {
		observability.FailAnalysis("ai_call")
		return domain.SermonAnalysis{}, err
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		observability.FailAnalysis("malformed")
		slog.Warn("ai response not parseable", slog.String("sermon_id", sermonID), slog.Any("error", err))
		return domain.SermonAnalysis{}, err
	}
	if ferr := ValidateAnalysis(&analysis); ferr != nil {
		observability.FailAnalysis("invalid")
		slog.Warn("ai response failed validation",
			slog.String("sermon_id", sermonID),
			slog.Int("field_errors", len(ferr.Fields)))
		return domain.SermonAnalysis{}, ferr
	}
	if s.Rubric.RecomputeOverall {
		sc := analysis.Scores
		analysis.OverallScore = s.Rubric.WeightedOverall(sc.BiblicalFidelity, sc.Structure, sc.PracticalApplication, sc.Authenticity, sc.Interactivity)
	}
	analysis.CreatedAt = time.Now().UTC()

	if err := s.Sermons.AttachAnalysis(ctx, sermon.ID, sermon.Version, analysis); err != nil {
		observability.FailAnalysis("persist")
		return domain.SermonAnalysis{}, err
	}

	if err := s.updateProfile(ctx, sermon.OwnerID, sermon.ID, analysis); err != nil {
		return domain.SermonAnalysis{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, sermon.OwnerID); err != nil {
			slog.Warn("recommendation cache invalidation failed", slog.String("owner_id", sermon.OwnerID), slog.Any("error", err))
		}
	}

	observability.CompleteAnalysis(analysis.OverallScore)
	slog.Info("sermon analysis completed",
		slog.String("sermon_id", sermonID),
		slog.Float64("overall_score", analysis.OverallScore))
	return analysis, nil
}

// updateProfile applies the accumulated-signal invariant: topics set-union
// into favorites, sermon id prepended to the recently-viewed list, truncated
// to the 10 most recent.
func (s AnalyzeService) updateProfile(ctx domain.Context, ownerID, sermonID string, a domain.SermonAnalysis) error {
	profile, err := s.Profiles.Get(ctx, ownerID)
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("op=analyze.profile: %w", err)
		}
		profile = domain.PreferenceProfile{OwnerID: ownerID, TheologicalTradition: a.TheologicalTradition}
	}

	profile.FavoriteTopics = unionTopics(profile.FavoriteTopics, a.Topics)
	if profile.TheologicalTradition == "" {
		profile.TheologicalTradition = a.TheologicalTradition
	}
	recent := append([]string{sermonID}, profile.RecentlyViewed...)
	if len(recent) > domain.MaxRecentlyViewed {
		recent = recent[:domain.MaxRecentlyViewed]
	}
	profile.RecentlyViewed = recent

	if err := s.Profiles.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("op=analyze.profile: %w", err)
	}
	return nil
}

func unionTopics(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, t := range existing {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range incoming {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
