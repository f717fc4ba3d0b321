package report

import (
	"fmt"
	"time"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// Render converts a sermon and its canonical analysis into the fixed-order
// instruction stream of the analysis report. Sections backed by empty data
// are skipped; criterion scores and the overall score are always emitted.
// The generation date is passed in so rendering stays deterministic.
func Render(sermon domain.Sermon, a domain.SermonAnalysis, generatedAt time.Time) []Instruction {
	p := &pager{}

	// 1. Title block.
	p.push(Instruction{Kind: OpTitle, Text: "Sermon Analysis Report"}, titleHeight)
	p.push(Instruction{Kind: OpText, Text: sermon.Title}, lineHeight)
	p.push(Instruction{Kind: OpText, Text: "Generated: " + generatedAt.UTC().Format("2006-01-02")}, lineHeight)

	// 2. Overall score headline.
	p.spacing()
	p.heading("Overall Score", lineHeight)
	p.push(Instruction{Kind: OpText, Text: fmt.Sprintf("%.1f/10", a.OverallScore), Value: a.OverallScore}, lineHeight)

	// 3. Per-criterion score bars.
	p.spacing()
	p.heading("Detailed Evaluation", barRowHeight)
	for _, c := range criterionRows(a.Scores) {
		p.push(Instruction{
			Kind:     OpBar,
			Text:     c.label,
			Value:    c.score,
			BarWidth: c.score * UnitWidth,
		}, barRowHeight)
	}

	// 4. Summary paragraph.
	if a.Summary != "" {
		p.spacing()
		p.heading("Key Insights", textHeight(a.Summary))
		p.push(Instruction{Kind: OpText, Text: a.Summary}, textHeight(a.Summary))
	}

	// 5. Strengths: a single strength renders as a bullet; more than one
	// renders as an importance histogram where earlier-listed strengths get
	// longer bars. Report consumers read ordering as importance.
	if len(a.Strengths) > 0 {
		p.spacing()
		if len(a.Strengths) > 1 {
			p.heading("Strengths", barRowHeight)
			n := float64(len(a.Strengths))
			for i, s := range a.Strengths {
				p.push(Instruction{
					Kind:     OpBar,
					Text:     s,
					BarWidth: MaxBarWidth * (n - float64(i)) / n,
				}, barRowHeight)
			}
		} else {
			p.heading("Strengths", bulletHeight)
			p.push(Instruction{Kind: OpBullet, Text: a.Strengths[0]}, bulletHeight)
		}
	}

	// 6. Improvements.
	bulletSection(p, "Improvement Recommendations", a.Improvements)
	// 7. Key scripture references.
	bulletSection(p, "Biblical References", a.KeyScriptures)
	// 8. Application points.
	bulletSection(p, "Practical Applications", a.ApplicationPoints)

	// 9. Theological tradition line.
	if a.TheologicalTradition != "" {
		p.spacing()
		p.heading("Theological Analysis", lineHeight)
		p.push(Instruction{Kind: OpText, Text: "Theological Tradition: " + a.TheologicalTradition}, lineHeight)
	}

	// 10. Audience engagement sub-scores.
	p.spacing()
	p.heading("Engagement Analysis", lineHeight)
	for _, row := range []struct {
		label string
		score float64
	}{
		{"Emotional Connection", a.AudienceEngagement.Emotional},
		{"Theological Understanding", a.AudienceEngagement.Intellectual},
		{"Daily Applicability", a.AudienceEngagement.Practical},
	} {
		p.push(Instruction{Kind: OpText, Text: fmt.Sprintf("%s: %.1f/10", row.label, row.score), Value: row.score}, lineHeight)
	}

	// 11. Footer, pinned to the bottom of the final page by the sink.
	p.ops = append(p.ops, Instruction{Kind: OpFooter, Text: "Sermon Evaluator - AI Sermon Analysis"})
	return p.ops
}

func bulletSection(p *pager, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	p.spacing()
	p.heading(heading, bulletHeight)
	for _, item := range items {
		p.push(Instruction{Kind: OpBullet, Text: item}, bulletHeight)
	}
}

type criterionRow struct {
	label string
	score float64
}

func criterionRows(s domain.CriterionScores) []criterionRow {
	return []criterionRow{
		{"Biblical Fidelity", s.BiblicalFidelity},
		{"Structure", s.Structure},
		{"Practical Application", s.PracticalApplication},
		{"Authenticity", s.Authenticity},
		{"Interactivity", s.Interactivity},
	}
}
