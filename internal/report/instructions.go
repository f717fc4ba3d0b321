// Package report turns a canonical sermon analysis into an ordered sequence
// of drawing instructions for a paginated document sink. Rendering is pure:
// identical inputs always produce the identical instruction stream.
package report

// Layout constants for an A4 page with 50pt margins, mirroring the layout
// the report consumers expect.
const (
	PageWidth     = 595.0
	PageHeight    = 842.0
	Margin        = 50.0
	ContentWidth  = PageWidth - 2*Margin
	ContentHeight = PageHeight - 2*Margin

	// UnitWidth scales criterion score bars: barWidth = score * UnitWidth.
	UnitWidth = 40.0
	// MaxBarWidth caps the strengths importance histogram.
	MaxBarWidth = 400.0

	headingHeight  = 26.0
	titleHeight    = 34.0
	lineHeight     = 16.0
	barRowHeight   = 28.0
	bulletHeight   = 18.0
	footerHeight   = 14.0
	sectionSpacing = 10.0

	// charsPerLine approximates wrapping for height estimation of paragraph
	// text at the body font size.
	charsPerLine = 95
)

// OpKind discriminates draw instructions.
type OpKind string

const (
	// OpHeading starts a section; sinks render it larger and bolder.
	OpHeading OpKind = "heading"
	// OpTitle is the document title block line.
	OpTitle OpKind = "title"
	// OpText is a body text block, wrapped by the sink.
	OpText OpKind = "text"
	// OpBar is a labeled proportional bar (label, numeric value, width in
	// points).
	OpBar OpKind = "bar"
	// OpBullet is a single bulleted line.
	OpBullet OpKind = "bullet"
	// OpNewPage starts a new page before the next instruction.
	OpNewPage OpKind = "newpage"
	// OpFooter is pinned to the bottom of the final page.
	OpFooter OpKind = "footer"
)

// Instruction is one abstract draw operation. Sinks replay the stream
// sequentially; only OpFooter carries positioning semantics (page bottom).
type Instruction struct {
	Kind     OpKind
	Text     string
	Value    float64
	BarWidth float64
}

// pager tracks the vertical cursor and emits OpNewPage when a block would
// overflow the content area.
type pager struct {
	ops    []Instruction
	cursor float64
}

// ensure starts a new page unless a block of height h fits on the current
// page.
func (p *pager) ensure(h float64) {
	if p.cursor+h > ContentHeight && p.cursor > 0 {
		p.ops = append(p.ops, Instruction{Kind: OpNewPage})
		p.cursor = 0
	}
}

func (p *pager) push(op Instruction, h float64) {
	p.ensure(h)
	p.ops = append(p.ops, op)
	p.cursor += h
}

// heading emits a section heading while guaranteeing it is never orphaned:
// the heading plus at least one line of its content must fit on the page,
// otherwise both move to a new page together.
func (p *pager) heading(text string, firstBlockHeight float64) {
	p.ensure(headingHeight + firstBlockHeight)
	p.ops = append(p.ops, Instruction{Kind: OpHeading, Text: text})
	p.cursor += headingHeight
}

func (p *pager) spacing() {
	if p.cursor > 0 {
		p.cursor += sectionSpacing
	}
}

// textHeight estimates the rendered height of wrapped paragraph text.
func textHeight(text string) float64 {
	lines := len(text)/charsPerLine + 1
	return float64(lines) * lineHeight
}
