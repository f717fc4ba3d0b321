package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/report"
	"github.com/fairyhunter13/sermon-evaluator/internal/usecase"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(text) }

func TestReportFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "analysis-report-abc123.pdf", usecase.ReportFilename("abc123", "pdf"))
}

func TestReportRender_MissingAnalysisFailsLoudly(t *testing.T) {
	t.Parallel()
	repo := newFakeSermonRepo(domain.Sermon{ID: "s1", OwnerID: "owner-1"})
	svc := usecase.NewReportService(repo, wordCounter{})

	_, _, err := svc.Render(context.Background(), "owner-1", "s1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportRender_Success(t *testing.T) {
	t.Parallel()
	a, err := usecase.ParseAnalysis(validAnalysisJSON)
	require.NoError(t, err)
	repo := newFakeSermonRepo(domain.Sermon{ID: "s1", OwnerID: "owner-1", Title: "Grace", Analysis: &a})
	svc := usecase.NewReportService(repo, wordCounter{})

	ops, sermon, err := svc.Render(context.Background(), "owner-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sermon.ID)
	assert.NotEmpty(t, ops)
	assert.Equal(t, report.OpTitle, ops[0].Kind)
}

func TestReportRender_OwnershipEnforced(t *testing.T) {
	t.Parallel()
	a, err := usecase.ParseAnalysis(validAnalysisJSON)
	require.NoError(t, err)
	repo := newFakeSermonRepo(domain.Sermon{ID: "s1", OwnerID: "owner-1", Analysis: &a})
	svc := usecase.NewReportService(repo, wordCounter{})

	_, _, err = svc.Render(context.Background(), "intruder", "s1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReportHeatmap_NormalizesAgainstLength(t *testing.T) {
	t.Parallel()
	a, err := usecase.ParseAnalysis(validAnalysisJSON)
	require.NoError(t, err)
	a.EngagementTimeline = []domain.EngagementPoint{
		{RawPosition: 50, Intensity: 0.5, Category: domain.EngagementTheological},
	}
	content := make([]byte, 100)
	for i := range content {
		content[i] = 'x'
	}
	repo := newFakeSermonRepo(domain.Sermon{ID: "s1", OwnerID: "owner-1", Content: string(content), Analysis: &a})
	svc := usecase.NewReportService(repo, wordCounter{})

	lanes, err := svc.Heatmap(context.Background(), "owner-1", "s1")
	require.NoError(t, err)
	require.Len(t, lanes, 3)
	require.Len(t, lanes[1].Points, 1)
	assert.InDelta(t, 50.0, lanes[1].Points[0].Position, 1e-9)
}
