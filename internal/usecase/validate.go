// Package usecase contains application business logic services.
package usecase

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// FieldError describes a single failed field of an analysis payload.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FieldErrors carries every field that failed validation, not just the
// first, so callers can log or display complete diagnostics in one pass.
type FieldErrors struct {
	Fields []FieldError
}

func (e *FieldErrors) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return fmt.Sprintf("%v: %s", domain.ErrInvalidAnalysis, strings.Join(parts, "; "))
}

// Unwrap makes errors.Is(err, domain.ErrInvalidAnalysis) hold.
func (e *FieldErrors) Unwrap() error { return domain.ErrInvalidAnalysis }

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func analysisValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		// Report JSON field names so errors line up with the wire payload.
		vld.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// rawAnalysis mirrors the expected wire shape with loosely typed numerics so
// that numbers arriving as JSON strings still coerce instead of failing the
// whole decode.
type rawAnalysis struct {
	Scores               map[string]any `json:"scores"`
	OverallScore         any            `json:"overallScore"`
	Strengths            []string       `json:"strengths"`
	Improvements         []string       `json:"improvements"`
	Summary              string         `json:"summary"`
	Topics               []string       `json:"topics"`
	TheologicalTradition string         `json:"theologicalTradition"`
	KeyScriptures        []string       `json:"keyScriptures"`
	ApplicationPoints    []string       `json:"applicationPoints"`
	IllustrationsUsed    []string       `json:"illustrationsUsed"`
	AudienceEngagement   map[string]any `json:"audienceEngagement"`
	EngagementTimeline   []rawPoint     `json:"engagementTimeline"`
}

type rawPoint struct {
	Position  any    `json:"position"`
	Intensity any    `json:"intensity"`
	Category  string `json:"category"`
	Note      string `json:"note"`
}

// toNumber coerces JSON numbers and numeric strings; anything else (missing
// field included, arriving as nil) fails.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseAnalysis decodes raw completion text into the canonical analysis
// record. A payload that is not parseable JSON classifies as
// domain.ErrMalformedResponse; field-level problems are left for
// ValidateAnalysis.
func ParseAnalysis(raw string) (domain.SermonAnalysis, error) {
	var ra rawAnalysis
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&ra); err != nil {
		return domain.SermonAnalysis{}, fmt.Errorf("op=analysis.parse: %w: %v", domain.ErrMalformedResponse, err)
	}

	a := domain.SermonAnalysis{
		Strengths:            ra.Strengths,
		Improvements:         ra.Improvements,
		Summary:              strings.TrimSpace(ra.Summary),
		Topics:               ra.Topics,
		TheologicalTradition: strings.TrimSpace(ra.TheologicalTradition),
		KeyScriptures:        ra.KeyScriptures,
		ApplicationPoints:    ra.ApplicationPoints,
		IllustrationsUsed:    ra.IllustrationsUsed,
	}
	// Numeric coercion: a missing or non-numeric value maps to 0, which is
	// outside the valid [1,10] range and surfaces as a field error.
	a.Scores.BiblicalFidelity, _ = toNumber(ra.Scores["biblicalFidelity"])
	a.Scores.Structure, _ = toNumber(ra.Scores["structure"])
	a.Scores.PracticalApplication, _ = toNumber(ra.Scores["practicalApplication"])
	a.Scores.Authenticity, _ = toNumber(ra.Scores["authenticity"])
	a.Scores.Interactivity, _ = toNumber(ra.Scores["interactivity"])
	a.OverallScore, _ = toNumber(ra.OverallScore)
	a.AudienceEngagement.Emotional, _ = toNumber(ra.AudienceEngagement["emotional"])
	a.AudienceEngagement.Intellectual, _ = toNumber(ra.AudienceEngagement["intellectual"])
	a.AudienceEngagement.Practical, _ = toNumber(ra.AudienceEngagement["practical"])

	if len(ra.EngagementTimeline) > 0 {
		a.EngagementTimeline = make([]domain.EngagementPoint, 0, len(ra.EngagementTimeline))
		for _, p := range ra.EngagementTimeline {
			pos, _ := toNumber(p.Position)
			intensity, okIntensity := toNumber(p.Intensity)
			if !okIntensity {
				// Force out of range so validation reports the field.
				intensity = -1
			}
			a.EngagementTimeline = append(a.EngagementTimeline, domain.EngagementPoint{
				RawPosition: pos,
				Intensity:   intensity,
				Category:    strings.TrimSpace(p.Category),
				Note:        strings.TrimSpace(p.Note),
			})
		}
	}
	return a, nil
}

// normalizeList trims entries and drops blanks, preserving order.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dedupe preserves first-occurrence order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ValidateAnalysis normalizes the record in place and returns the full list
// of field errors, or nil when the record is canonical. It is total: it
// never panics and reports every failing field in one pass.
func ValidateAnalysis(a *domain.SermonAnalysis) *FieldErrors {
	a.Strengths = normalizeList(a.Strengths)
	a.Improvements = normalizeList(a.Improvements)
	a.Topics = dedupe(normalizeList(a.Topics))
	a.KeyScriptures = normalizeList(a.KeyScriptures)
	a.ApplicationPoints = normalizeList(a.ApplicationPoints)
	// Empty after trimming is accepted only for illustrations: not every
	// sermon uses them.
	a.IllustrationsUsed = normalizeList(a.IllustrationsUsed)

	var fields []FieldError
	if err := analysisValidator().Struct(a); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			fields = append(fields, FieldError{Field: "analysis", Reason: err.Error()})
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: jsonPath(fe.Namespace()), Reason: reasonFor(fe)})
		}
	}
	if len(fields) == 0 {
		return nil
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &FieldErrors{Fields: fields}
}

// jsonPath strips the root struct name from a validator namespace, e.g.
// "SermonAnalysis.scores.biblicalFidelity" -> "scores.biblicalFidelity".
func jsonPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "min":
		return fmt.Sprintf("requires at least %s entry after trimming", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "required":
		return "required"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
