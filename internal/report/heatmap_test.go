package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/report"
)

func TestNormalize_LaneOrderFixed(t *testing.T) {
	t.Parallel()
	lanes := report.Normalize(nil, 100)
	require.Len(t, lanes, 3)
	assert.Equal(t, domain.EngagementEmotional, lanes[0].Category)
	assert.Equal(t, domain.EngagementTheological, lanes[1].Category)
	assert.Equal(t, domain.EngagementPractical, lanes[2].Category)
	for _, lane := range lanes {
		assert.Empty(t, lane.Points)
	}
}

func TestNormalize_PositionScaling(t *testing.T) {
	t.Parallel()
	points := []domain.EngagementPoint{
		{RawPosition: 0, Intensity: 0.2, Category: domain.EngagementEmotional},
		{RawPosition: 250, Intensity: 0.9, Category: domain.EngagementEmotional},
		{RawPosition: 500, Intensity: 0.5, Category: domain.EngagementEmotional},
	}
	lanes := report.Normalize(points, 500)
	require.Len(t, lanes[0].Points, 3)
	assert.InDelta(t, 0.0, lanes[0].Points[0].Position, 1e-9)
	assert.InDelta(t, 50.0, lanes[0].Points[1].Position, 1e-9)
	assert.InDelta(t, 100.0, lanes[0].Points[2].Position, 1e-9)
}

func TestNormalize_ClampsOutOfRange(t *testing.T) {
	t.Parallel()
	points := []domain.EngagementPoint{
		{RawPosition: 900, Intensity: 1.5, Category: domain.EngagementPractical},
		{RawPosition: -10, Intensity: -0.5, Category: domain.EngagementPractical},
	}
	lanes := report.Normalize(points, 500)
	require.Len(t, lanes[2].Points, 2)
	assert.InDelta(t, 100.0, lanes[2].Points[0].Position, 1e-9)
	assert.InDelta(t, 1.0, lanes[2].Points[0].Intensity, 1e-9)
	assert.InDelta(t, 0.0, lanes[2].Points[1].Position, 1e-9)
	assert.InDelta(t, 0.0, lanes[2].Points[1].Intensity, 1e-9)
}

func TestNormalize_ZeroLengthCollapsesToOrigin(t *testing.T) {
	t.Parallel()
	points := []domain.EngagementPoint{
		{RawPosition: 42, Intensity: 0.5, Category: domain.EngagementTheological},
	}
	lanes := report.Normalize(points, 0)
	require.Len(t, lanes[1].Points, 1)
	assert.InDelta(t, 0.0, lanes[1].Points[0].Position, 1e-9)
}

func TestNormalize_StableOrderWithinLane(t *testing.T) {
	t.Parallel()
	points := []domain.EngagementPoint{
		{RawPosition: 300, Intensity: 0.3, Category: domain.EngagementEmotional, Note: "first"},
		{RawPosition: 100, Intensity: 0.7, Category: domain.EngagementTheological},
		{RawPosition: 200, Intensity: 0.5, Category: domain.EngagementEmotional, Note: "second"},
	}
	lanes := report.Normalize(points, 1000)
	require.Len(t, lanes[0].Points, 2)
	assert.Equal(t, "first", lanes[0].Points[0].Note)
	assert.Equal(t, "second", lanes[0].Points[1].Note)
}

func TestNormalize_UnknownCategorySkipped(t *testing.T) {
	t.Parallel()
	points := []domain.EngagementPoint{
		{RawPosition: 10, Intensity: 0.5, Category: "comedic"},
	}
	lanes := report.Normalize(points, 100)
	for _, lane := range lanes {
		assert.Empty(t, lane.Points)
	}
}
