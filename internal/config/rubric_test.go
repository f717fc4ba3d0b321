package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/sermon-evaluator/internal/config"
)

func TestDefaultRubric(t *testing.T) {
	t.Parallel()
	rc := config.DefaultRubric()
	require.NoError(t, rc.Validate())
	assert.False(t, rc.RecomputeOverall)
	assert.InDelta(t, 0.40, rc.Weights.BiblicalFidelity, 1e-9)
	assert.Contains(t, rc.SystemPrompt, "JSON")
}

func TestLoadRubric_EmptyPathFallsBack(t *testing.T) {
	t.Parallel()
	rc, err := config.LoadRubric("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRubric(), rc)
}

func TestLoadRubric_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
recompute_overall: true
weights:
  biblical_fidelity: 0.5
  structure: 0.2
  practical_application: 0.1
  authenticity: 0.1
  interactivity: 0.1
`), 0o600))

	rc, err := config.LoadRubric(path)
	require.NoError(t, err)
	assert.True(t, rc.RecomputeOverall)
	assert.InDelta(t, 0.5, rc.Weights.BiblicalFidelity, 1e-9)
	// Prompt inherits the default when the file leaves it unset.
	assert.Equal(t, config.DefaultRubric().SystemPrompt, rc.SystemPrompt)
}

func TestLoadRubric_BadWeightsRejected(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weights:
  biblical_fidelity: 0.9
  structure: 0.9
  practical_application: 0.1
  authenticity: 0.1
  interactivity: 0.1
`), 0o600))

	_, err := config.LoadRubric(path)
	require.Error(t, err)
}

func TestLoadRubric_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.LoadRubric(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_EmptyPromptRejected(t *testing.T) {
	t.Parallel()
	rc := config.DefaultRubric()
	rc.SystemPrompt = ""
	require.Error(t, rc.Validate())
}

func TestWeightedOverall(t *testing.T) {
	t.Parallel()
	rc := config.DefaultRubric()
	// 8*0.40 + 7*0.15 + 7*0.15 + 9*0.15 + 6*0.15 = 7.55
	assert.InDelta(t, 7.55, rc.WeightedOverall(8, 7, 7, 9, 6), 1e-9)
	// All-equal scores collapse to the score itself.
	assert.InDelta(t, 7, rc.WeightedOverall(7, 7, 7, 7, 7), 1e-9)
}
