// Package domain holds the core entities, ports and error taxonomy of the
// sermon evaluation service.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	// ErrMalformedResponse: the remote completion capability returned text
	// that does not parse as structured data.
	ErrMalformedResponse = errors.New("malformed ai response")
	// ErrInvalidAnalysis: the response parsed but failed field-level
	// validation; wrapped errors carry the full field list.
	ErrInvalidAnalysis = errors.New("invalid analysis")
	// ErrQuotaExceeded: upstream rate/quota limiting; callers may back off.
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrCredentialRejected: upstream rejected the service credential.
	// Operator intervention required, never retried automatically.
	ErrCredentialRejected = errors.New("ai credential rejected")
	ErrInternal           = errors.New("internal error")
)

// EngagementPoint categories. Unknown categories are a validation error,
// never silently dropped.
const (
	EngagementEmotional   = "emotional"
	EngagementTheological = "theological"
	EngagementPractical   = "practical"
)

// Sermon is a user-submitted text artifact. Immutable once created except
// for attaching an Analysis; owned exclusively by the creating principal.
type Sermon struct {
	ID             string
	OwnerID        string
	Title          string
	Content        string
	BibleReference string
	Analysis       *SermonAnalysis
	Version        int64
	CreatedAt      time.Time
}

// CriterionScores are the five rubric criteria, each in [1,10].
type CriterionScores struct {
	BiblicalFidelity     float64 `json:"biblicalFidelity" validate:"gte=1,lte=10"`
	Structure            float64 `json:"structure" validate:"gte=1,lte=10"`
	PracticalApplication float64 `json:"practicalApplication" validate:"gte=1,lte=10"`
	Authenticity         float64 `json:"authenticity" validate:"gte=1,lte=10"`
	Interactivity        float64 `json:"interactivity" validate:"gte=1,lte=10"`
}

// AudienceEngagement sub-scores, each in [1,10].
type AudienceEngagement struct {
	Emotional    float64 `json:"emotional" validate:"gte=1,lte=10"`
	Intellectual float64 `json:"intellectual" validate:"gte=1,lte=10"`
	Practical    float64 `json:"practical" validate:"gte=1,lte=10"`
}

// EngagementPoint is an intensity sample along the sermon. RawPosition is in
// arbitrary units (tokens); the report layer normalizes it to [0,100].
type EngagementPoint struct {
	RawPosition float64 `json:"position" validate:"gte=0"`
	Intensity   float64 `json:"intensity" validate:"gte=0,lte=1"`
	Category    string  `json:"category" validate:"oneof=emotional theological practical"`
	Note        string  `json:"note,omitempty"`
}

// SermonAnalysis is the canonical evaluation record attached 0-or-1 to a
// Sermon. Produced only by the analysis orchestrator after validation.
type SermonAnalysis struct {
	Scores               CriterionScores    `json:"scores"`
	OverallScore         float64            `json:"overallScore" validate:"gte=1,lte=10"`
	Strengths            []string           `json:"strengths" validate:"min=1"`
	Improvements         []string           `json:"improvements" validate:"min=1"`
	Summary              string             `json:"summary" validate:"required"`
	Topics               []string           `json:"topics" validate:"min=1"`
	TheologicalTradition string             `json:"theologicalTradition" validate:"required"`
	KeyScriptures        []string           `json:"keyScriptures" validate:"min=1"`
	ApplicationPoints    []string           `json:"applicationPoints" validate:"min=1"`
	IllustrationsUsed    []string           `json:"illustrationsUsed"`
	AudienceEngagement   AudienceEngagement `json:"audienceEngagement"`
	EngagementTimeline   []EngagementPoint  `json:"engagementTimeline" validate:"dive"`
	CreatedAt            time.Time          `json:"-"`
}

// PreferenceProfile accumulates per-owner recommendation signal. Mutated only
// as a side effect of a successful analysis on one of the owner's sermons.
type PreferenceProfile struct {
	OwnerID              string
	FavoriteTopics       []string
	TheologicalTradition string
	// RecentlyViewed keeps at most MaxRecentlyViewed sermon ids,
	// most-recent-first; oldest evicted.
	RecentlyViewed []string
	Version        int64
}

// MaxRecentlyViewed bounds PreferenceProfile.RecentlyViewed.
const MaxRecentlyViewed = 10

// Repositories (ports)

type SermonRepository interface {
	Create(ctx Context, s Sermon) (string, error)
	Get(ctx Context, id string) (Sermon, error)
	ListByOwner(ctx Context, ownerID string) ([]Sermon, error)
	// AttachAnalysis writes the analysis onto the sermon row identified by
	// id, guarded by the version read; stale versions fail with ErrConflict.
	AttachAnalysis(ctx Context, id string, version int64, a SermonAnalysis) error
}

type ProfileRepository interface {
	Get(ctx Context, ownerID string) (PreferenceProfile, error)
	// Upsert writes the profile guarded by the version read (0 for a new
	// profile); stale versions fail with ErrConflict.
	Upsert(ctx Context, p PreferenceProfile) error
}

// AIClient (port) calls the remote completion capability. Implementations
// must request structured JSON output with bounded length and low sampling
// temperature, and classify upstream failures into ErrQuotaExceeded /
// ErrCredentialRejected.
type AIClient interface {
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// IdentityVerifier (port) resolves a bearer credential to a principal id.
type IdentityVerifier interface {
	Verify(ctx Context, credential string) (string, error)
}

// RecommendationCache (port) stores ranked sermon ids per owner.
type RecommendationCache interface {
	Get(ctx Context, ownerID string) ([]string, bool, error)
	Set(ctx Context, ownerID string, sermonIDs []string) error
	Invalidate(ctx Context, ownerID string) error
}

// Context is an alias so the domain package stays decoupled from call sites;
// adapters and usecases pass context.Context through.
type Context = context.Context
