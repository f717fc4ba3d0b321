package usecase

import (
	"fmt"
	"time"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/report"
)

// LengthCounter measures sermon length in tokens for the engagement
// timeline axis.
type LengthCounter interface {
	Count(text string) int
}

// ReportService renders analysis reports and engagement heatmaps for a
// principal's sermons.
type ReportService struct {
	Sermons domain.SermonRepository
	Length  LengthCounter
}

// NewReportService constructs a ReportService.
func NewReportService(sermons domain.SermonRepository, length LengthCounter) ReportService {
	return ReportService{Sermons: sermons, Length: length}
}

// ReportFilename is the download filename convention for rendered reports.
func ReportFilename(sermonID, ext string) string {
	return fmt.Sprintf("analysis-report-%s.%s", sermonID, ext)
}

// Render produces the draw-instruction stream for the sermon's analysis
// report. A sermon without an attached analysis fails loudly with
// ErrNotFound; substituting default scores would corrupt downstream
// consumers.
func (s ReportService) Render(ctx domain.Context, principalID, sermonID string) ([]report.Instruction, domain.Sermon, error) {
	sermon, err := s.ownedSermon(ctx, principalID, sermonID)
	if err != nil {
		return nil, domain.Sermon{}, err
	}
	if sermon.Analysis == nil {
		return nil, domain.Sermon{}, fmt.Errorf("op=report.render: analysis missing for sermon %s: %w", sermonID, domain.ErrNotFound)
	}
	return report.Render(sermon, *sermon.Analysis, time.Now().UTC()), sermon, nil
}

// Heatmap normalizes the sermon's engagement timeline onto a 0-100% axis
// grouped into category lanes.
func (s ReportService) Heatmap(ctx domain.Context, principalID, sermonID string) ([]report.Lane, error) {
	sermon, err := s.ownedSermon(ctx, principalID, sermonID)
	if err != nil {
		return nil, err
	}
	if sermon.Analysis == nil {
		return nil, fmt.Errorf("op=report.heatmap: analysis missing for sermon %s: %w", sermonID, domain.ErrNotFound)
	}
	length := s.Length.Count(sermon.Content)
	return report.Normalize(sermon.Analysis.EngagementTimeline, length), nil
}

func (s ReportService) ownedSermon(ctx domain.Context, principalID, sermonID string) (domain.Sermon, error) {
	sermon, err := s.Sermons.Get(ctx, sermonID)
	if err != nil {
		return domain.Sermon{}, err
	}
	if sermon.OwnerID != principalID {
		return domain.Sermon{}, fmt.Errorf("op=report: %w", domain.ErrUnauthorized)
	}
	return sermon, nil
}
