// Package pdf replays report draw instructions into a PDF document.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fairyhunter13/sermon-evaluator/internal/report"
)

// Sink converts an instruction stream into PDF bytes. The sink owns fonts,
// colors, and page mechanics; the renderer owns content and ordering.
type Sink struct{}

// New constructs a PDF sink.
func New() *Sink { return &Sink{} }

const (
	headingSize = 14.0
	titleSize   = 20.0
	bodySize    = 10.0
	footerSize  = 8.0

	barHeight = 14.0
)

// Render replays the instruction stream into a single PDF document.
func (s *Sink) Render(ops []report.Instruction) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: report.PageWidth, Ht: report.PageHeight},
	})
	pdf.SetMargins(report.Margin, report.Margin, report.Margin)
	pdf.SetAutoPageBreak(true, report.Margin)
	pdf.AddPage()

	for _, op := range ops {
		switch op.Kind {
		case report.OpNewPage:
			pdf.AddPage()
		case report.OpTitle:
			pdf.SetFont("Helvetica", "B", titleSize)
			pdf.MultiCell(report.ContentWidth, titleSize+4, op.Text, "", "L", false)
			pdf.Ln(6)
		case report.OpHeading:
			pdf.SetFont("Helvetica", "B", headingSize)
			pdf.CellFormat(report.ContentWidth, headingSize+6, op.Text, "", 1, "L", false, 0, "")
			pdf.Ln(2)
		case report.OpText:
			pdf.SetFont("Helvetica", "", bodySize)
			pdf.MultiCell(report.ContentWidth, bodySize+5, op.Text, "", "L", false)
			pdf.Ln(3)
		case report.OpBullet:
			pdf.SetFont("Helvetica", "", bodySize)
			x := pdf.GetX()
			pdf.CellFormat(12, bodySize+5, "-", "", 0, "L", false, 0, "")
			pdf.MultiCell(report.ContentWidth-12, bodySize+5, op.Text, "", "L", false)
			pdf.SetX(x)
		case report.OpBar:
			s.drawBar(pdf, op)
		case report.OpFooter:
			s.drawFooter(pdf, op.Text)
		default:
			return nil, fmt.Errorf("pdf.Render: unknown instruction kind %q", op.Kind)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf.Render: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBar renders a labeled proportional bar with the numeric value printed
// at its right edge.
func (s *Sink) drawBar(pdf *gofpdf.Fpdf, op report.Instruction) {
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.CellFormat(report.ContentWidth, bodySize+4, op.Text, "", 1, "L", false, 0, "")

	x := pdf.GetX()
	y := pdf.GetY()
	pdf.SetFillColor(54, 96, 146)
	pdf.Rect(x, y, op.BarWidth, barHeight, "F")
	pdf.SetXY(x+op.BarWidth+6, y)
	pdf.CellFormat(60, barHeight, fmt.Sprintf("%.1f", op.Value), "", 0, "L", false, 0, "")
	pdf.SetXY(x, y+barHeight+6)
}

// drawFooter pins the footer text to the bottom of the current (last) page.
func (s *Sink) drawFooter(pdf *gofpdf.Fpdf, text string) {
	pdf.SetY(report.PageHeight - report.Margin)
	pdf.SetFont("Helvetica", "I", footerSize)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(report.ContentWidth, footerSize+4, text, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
