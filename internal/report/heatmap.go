package report

import (
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// NormalizedPoint is an engagement sample mapped onto a 0-100% timeline.
type NormalizedPoint struct {
	Position  float64 `json:"position"`
	Intensity float64 `json:"intensity"`
	Category  string  `json:"category"`
	Note      string  `json:"note,omitempty"`
}

// Lane groups normalized points of one category for independent rendering.
type Lane struct {
	Category string            `json:"category"`
	Points   []NormalizedPoint `json:"points"`
}

// Normalize maps raw engagement points onto a 0-100% timeline and groups
// them by category into rendering lanes. sermonLength is the sermon's token
// count; positions clamp to [0,100] rather than escape the axis. Grouping is
// stable: each lane preserves the original relative order, which the heatmap
// relies on for left-to-right chronology.
func Normalize(points []domain.EngagementPoint, sermonLength int) []Lane {
	lanes := []Lane{
		{Category: domain.EngagementEmotional, Points: []NormalizedPoint{}},
		{Category: domain.EngagementTheological, Points: []NormalizedPoint{}},
		{Category: domain.EngagementPractical, Points: []NormalizedPoint{}},
	}
	index := map[string]int{
		domain.EngagementEmotional:   0,
		domain.EngagementTheological: 1,
		domain.EngagementPractical:   2,
	}
	for _, p := range points {
		i, ok := index[p.Category]
		if !ok {
			// Validation rejects unknown categories before points reach the
			// report layer; skipping here keeps Normalize total.
			continue
		}
		lanes[i].Points = append(lanes[i].Points, NormalizedPoint{
			Position:  normalizePosition(p.RawPosition, sermonLength),
			Intensity: clamp(p.Intensity, 0, 1),
			Category:  p.Category,
			Note:      p.Note,
		})
	}
	return lanes
}

func normalizePosition(raw float64, length int) float64 {
	if length <= 0 {
		return 0
	}
	return clamp(raw/float64(length)*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
