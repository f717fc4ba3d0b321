package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// RubricConfig is the instruction payload sent alongside sermon content to
// the completion capability, plus the documented criterion weights. The
// prompt text is opaque to the orchestrator.
type RubricConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
	// RecomputeOverall makes the orchestrator replace the model-returned
	// overall score with the weighted sum of the criterion scores. Off by
	// default: the original trusts the model's overall score.
	RecomputeOverall bool           `yaml:"recompute_overall"`
	Weights          CriterionWeights `yaml:"weights"`
}

// CriterionWeights are the documented percentage weights of the five rubric
// criteria. They must sum to 1.
type CriterionWeights struct {
	BiblicalFidelity     float64 `yaml:"biblical_fidelity"`
	Structure            float64 `yaml:"structure"`
	PracticalApplication float64 `yaml:"practical_application"`
	Authenticity         float64 `yaml:"authenticity"`
	Interactivity        float64 `yaml:"interactivity"`
}

// defaultSystemPrompt asks for strictly structured JSON and reproducible
// scoring (the same sermon must always receive the same score).
const defaultSystemPrompt = `Mission: provide a comprehensive and constructive evaluation of Christian sermons. Be as objective as possible: the same sermon should always receive the same score.

Analyze the provided sermon and respond in JSON format with the following structure:
{
  "scores": {
    "biblicalFidelity": number (1-10, evaluation of Scripture anchoring and interpretation),
    "structure": number (1-10, evaluation of clarity and simplicity),
    "practicalApplication": number (1-10, evaluation of concrete application and emotional engagement),
    "authenticity": number (1-10, evaluation of passion and spiritual impact),
    "interactivity": number (1-10, evaluation of time management and contextual relevance)
  },
  "overallScore": number (1-10),
  "strengths": string[] (3-5 specific strengths),
  "improvements": string[] (3-5 concrete improvement suggestions),
  "summary": string (concise summary of main points),
  "topics": string[] (3-5 main theological themes),
  "theologicalTradition": string (identified theological tradition),
  "keyScriptures": string[] (key biblical references used),
  "applicationPoints": string[] (2-3 practical application points),
  "illustrationsUsed": string[] (main illustrations used),
  "audienceEngagement": {
    "emotional": number (1-10, emotional connection),
    "intellectual": number (1-10, theological understanding),
    "practical": number (1-10, daily applicability)
  },
  "engagementTimeline": [
    {"position": number (token offset within the sermon), "intensity": number (0-1), "category": "emotional"|"theological"|"practical", "note": string (optional)}
  ]
}`

// DefaultRubric returns the built-in rubric with the documented 40/15/15/15/15
// criterion weights.
func DefaultRubric() RubricConfig {
	return RubricConfig{
		SystemPrompt: defaultSystemPrompt,
		Weights: CriterionWeights{
			BiblicalFidelity:     0.40,
			Structure:            0.15,
			PracticalApplication: 0.15,
			Authenticity:         0.15,
			Interactivity:        0.15,
		},
	}
}

// LoadRubric reads a rubric YAML file, falling back to the embedded default
// when path is empty. Missing fields inherit the default.
func LoadRubric(path string) (RubricConfig, error) {
	rc := DefaultRubric()
	if path == "" {
		return rc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return RubricConfig{}, fmt.Errorf("op=config.LoadRubric: %w", err)
	}
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return RubricConfig{}, fmt.Errorf("op=config.LoadRubric: %w", err)
	}
	if err := rc.Validate(); err != nil {
		return RubricConfig{}, err
	}
	return rc, nil
}

// Validate checks the prompt is present and the weights sum to 1.
func (rc RubricConfig) Validate() error {
	if rc.SystemPrompt == "" {
		return fmt.Errorf("op=config.RubricConfig: system_prompt required")
	}
	w := rc.Weights
	sum := w.BiblicalFidelity + w.Structure + w.PracticalApplication + w.Authenticity + w.Interactivity
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("op=config.RubricConfig: weights sum to %v, want 1", sum)
	}
	return nil
}

// WeightedOverall computes the locally recomputed overall score from the
// criterion scores using the configured weights.
func (rc RubricConfig) WeightedOverall(biblicalFidelity, structure, practicalApplication, authenticity, interactivity float64) float64 {
	w := rc.Weights
	return biblicalFidelity*w.BiblicalFidelity +
		structure*w.Structure +
		practicalApplication*w.PracticalApplication +
		authenticity*w.Authenticity +
		interactivity*w.Interactivity
}
