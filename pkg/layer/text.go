package layer

import (
	"image"
	"math"
	"strings"

	"github.com/kurishiro/voxlayer/pkg/attr"
	"github.com/kurishiro/voxlayer/pkg/errors"
)

// Source supplies the text to draw at a given time. An empty string
// means nothing to draw.
type Source interface {
	Text(t float64) string
}

// Static is a time-independent text source.
type Static string

func (s Static) Text(float64) string { return string(s) }

// Entry is one timed text interval. End is exclusive.
type Entry struct {
	Start float64
	End   float64
	Text  string
}

// TimedText returns the entry active at the given time, or an empty
// string when the time falls outside all intervals.
type TimedText []Entry

func (tt TimedText) Text(t float64) string {
	for _, e := range tt {
		if t >= e.Start && t < e.End {
			return e.Text
		}
	}
	return ""
}

// Text draws multi-line text with per-line metrics-based layout.
//
// Lines are split on newlines; the literal two-character `\n` marker
// produced by timeline text wrapping is honored as well. Lines stack
// top to bottom using each line's natural advance, or LineSpacing when
// set; the last line always uses its natural height so the canvas has
// no trailing blank space.
type Text struct {
	Source   Source
	Font     string
	FontSize attr.Scalar

	// LineSpacing overrides the natural line advance when > 0.
	LineSpacing float64

	Style Style
}

// Draw renders the text at time t. It returns nil with no error when
// the style is empty or the source has no text at t.
func (tx *Text) Draw(p Painter, t float64) (*image.RGBA, error) {
	if len(tx.Style) == 0 {
		return nil, nil
	}
	if tx.Source == nil {
		return nil, nil
	}
	content := tx.Source.Text(t)
	if content == "" {
		return nil, nil
	}
	if tx.FontSize == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "text has no font size attribute")
	}

	if err := p.SetFont(tx.Font, tx.FontSize.At(t)); err != nil {
		return nil, err
	}

	lines := splitLines(content)
	metrics := make([]TextMetrics, len(lines))
	width, height := 0.0, 0.0
	for i, line := range lines {
		m, err := p.MeasureText(line)
		if err != nil {
			return nil, err
		}
		metrics[i] = m
		if m.Width > width {
			width = m.Width
		}
		height += tx.advance(m, i == len(lines)-1)
	}

	maxStroke := tx.Style.MaxStrokeWidth()
	cw := int(math.Ceil(width + maxStroke + 2*canvasMargin))
	ch := int(math.Ceil(height + maxStroke + 2*canvasMargin))
	if err := p.Begin(cw, ch); err != nil {
		return nil, err
	}

	inset := canvasMargin + maxStroke/2
	for _, paint := range tx.Style {
		y := inset
		for i, line := range lines {
			baseline := y + metrics[i].Ascent
			switch pl := paint.(type) {
			case Fill:
				p.FillText(line, inset, baseline, pl.Color, pl.Opacity)
			case Stroke:
				p.StrokeText(line, inset, baseline, pl.Color, pl.Width, pl.Opacity)
			default:
				return nil, errors.New(errors.ErrCodeInvalidStyle, "unsupported style layer %T", paint)
			}
			y += tx.advance(metrics[i], i == len(lines)-1)
		}
	}
	return p.Image(), nil
}

// advance is the vertical step consumed by one line.
func (tx *Text) advance(m TextMetrics, last bool) float64 {
	if tx.LineSpacing > 0 && !last {
		return tx.LineSpacing
	}
	return m.Height
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.Split(s, "\n")
}
