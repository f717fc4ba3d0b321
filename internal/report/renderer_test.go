package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/report"
)

func sampleAnalysis() domain.SermonAnalysis {
	return domain.SermonAnalysis{
		Scores: domain.CriterionScores{
			BiblicalFidelity: 8, Structure: 7, PracticalApplication: 7, Authenticity: 9, Interactivity: 6,
		},
		OverallScore:         7.6,
		Strengths:            []string{"clear exposition", "strong illustrations", "warm delivery"},
		Improvements:         []string{"tighter conclusion"},
		Summary:              "An expository walk through John 1.",
		Topics:               []string{"grace"},
		TheologicalTradition: "Reformed",
		KeyScriptures:        []string{"John 1:14"},
		ApplicationPoints:    []string{"practice hospitality"},
		AudienceEngagement:   domain.AudienceEngagement{Emotional: 7, Intellectual: 8, Practical: 6},
	}
}

func sampleSermon() domain.Sermon {
	return domain.Sermon{ID: "s1", Title: "Grace and Truth"}
}

var generatedAt = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func headings(ops []report.Instruction) []string {
	var out []string
	for _, op := range ops {
		if op.Kind == report.OpHeading {
			out = append(out, op.Text)
		}
	}
	return out
}

func TestRender_SectionOrder(t *testing.T) {
	t.Parallel()
	ops := report.Render(sampleSermon(), sampleAnalysis(), generatedAt)
	require.Equal(t, report.OpTitle, ops[0].Kind)
	assert.Equal(t, []string{
		"Overall Score",
		"Detailed Evaluation",
		"Key Insights",
		"Strengths",
		"Improvement Recommendations",
		"Biblical References",
		"Practical Applications",
		"Theological Analysis",
		"Engagement Analysis",
	}, headings(ops))
	assert.Equal(t, report.OpFooter, ops[len(ops)-1].Kind)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()
	a := sampleAnalysis()
	first := report.Render(sampleSermon(), a, generatedAt)
	second := report.Render(sampleSermon(), a, generatedAt)
	require.Equal(t, first, second)
}

func TestRender_CriterionBarWidths(t *testing.T) {
	t.Parallel()
	ops := report.Render(sampleSermon(), sampleAnalysis(), generatedAt)
	var bars []report.Instruction
	inDetail := false
	for _, op := range ops {
		if op.Kind == report.OpHeading {
			inDetail = op.Text == "Detailed Evaluation"
			continue
		}
		if inDetail && op.Kind == report.OpBar {
			bars = append(bars, op)
		}
	}
	require.Len(t, bars, 5)
	for _, b := range bars {
		assert.InDelta(t, b.Value*report.UnitWidth, b.BarWidth, 1e-9, b.Text)
	}
	assert.Equal(t, "Biblical Fidelity", bars[0].Text)
	assert.InDelta(t, 320.0, bars[0].BarWidth, 1e-9)
}

func TestRender_StrengthsHistogramDescending(t *testing.T) {
	t.Parallel()
	ops := report.Render(sampleSermon(), sampleAnalysis(), generatedAt)
	var widths []float64
	inStrengths := false
	for _, op := range ops {
		if op.Kind == report.OpHeading {
			inStrengths = op.Text == "Strengths"
			continue
		}
		if inStrengths && op.Kind == report.OpBar {
			widths = append(widths, op.BarWidth)
		}
	}
	require.Len(t, widths, 3)
	assert.InDelta(t, report.MaxBarWidth, widths[0], 1e-9)
	for i := 1; i < len(widths); i++ {
		assert.Greater(t, widths[i-1], widths[i])
	}
}

func TestRender_SingleStrengthIsBullet(t *testing.T) {
	t.Parallel()
	a := sampleAnalysis()
	a.Strengths = []string{"only one"}
	ops := report.Render(sampleSermon(), a, generatedAt)
	for i, op := range ops {
		if op.Kind == report.OpHeading && op.Text == "Strengths" {
			require.Less(t, i+1, len(ops))
			assert.Equal(t, report.OpBullet, ops[i+1].Kind)
			assert.Equal(t, "only one", ops[i+1].Text)
			return
		}
	}
	t.Fatal("strengths heading not found")
}

func TestRender_EmptySectionsSkipped(t *testing.T) {
	t.Parallel()
	a := sampleAnalysis()
	a.Summary = ""
	a.KeyScriptures = nil
	a.TheologicalTradition = ""
	ops := report.Render(sampleSermon(), a, generatedAt)
	hs := headings(ops)
	assert.NotContains(t, hs, "Key Insights")
	assert.NotContains(t, hs, "Biblical References")
	assert.NotContains(t, hs, "Theological Analysis")
}

func TestRender_HeadingsNeverOrphaned(t *testing.T) {
	t.Parallel()
	// Enough long bullets to force several page breaks.
	a := sampleAnalysis()
	var items []string
	for i := 0; i < 200; i++ {
		items = append(items, strings.Repeat("improvement detail ", 3))
	}
	a.Improvements = items
	a.ApplicationPoints = items[:150]
	ops := report.Render(sampleSermon(), a, generatedAt)

	sawBreak := false
	for i, op := range ops {
		if op.Kind == report.OpNewPage {
			sawBreak = true
		}
		if op.Kind == report.OpHeading {
			require.Less(t, i+1, len(ops))
			assert.NotEqual(t, report.OpNewPage, ops[i+1].Kind,
				"heading %q orphaned at bottom of page", op.Text)
		}
	}
	require.True(t, sawBreak, "fixture did not overflow a page")
}

func TestRender_GeneratedDateStamp(t *testing.T) {
	t.Parallel()
	ops := report.Render(sampleSermon(), sampleAnalysis(), generatedAt)
	found := false
	for _, op := range ops {
		if op.Kind == report.OpText && op.Text == "Generated: 2026-03-14" {
			found = true
		}
	}
	assert.True(t, found)
}
