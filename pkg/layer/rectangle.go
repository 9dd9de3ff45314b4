package layer

import (
	"image"
	"math"

	"github.com/kurishiro/voxlayer/pkg/attr"
	"github.com/kurishiro/voxlayer/pkg/errors"
)

// canvasMargin keeps anti-aliased edges off the canvas boundary.
const canvasMargin = 1.0

// Rectangle draws a rounded rectangle with time-varying size and corner
// radius.
type Rectangle struct {
	Size   attr.Vec2
	Radius attr.Scalar
	Style  Style
}

// Draw renders the rectangle at time t. It returns nil with no error
// when the style is empty.
func (r *Rectangle) Draw(p Painter, t float64) (*image.RGBA, error) {
	if len(r.Style) == 0 {
		return nil, nil
	}
	if r.Size == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "rectangle has no size attribute")
	}

	w, h := r.Size.At(t)
	radius := 0.0
	if r.Radius != nil {
		radius = r.Radius.At(t)
	}

	maxStroke := r.Style.MaxStrokeWidth()
	cw := int(math.Ceil(w + maxStroke + 2*canvasMargin))
	ch := int(math.Ceil(h + maxStroke + 2*canvasMargin))
	if err := p.Begin(cw, ch); err != nil {
		return nil, err
	}

	// Inset so strokes centered on the boundary stay inside the canvas.
	inset := canvasMargin + maxStroke/2
	for _, paint := range r.Style {
		switch pl := paint.(type) {
		case Fill:
			p.FillRoundedRect(inset, inset, w, h, radius, pl.Color, pl.Opacity)
		case Stroke:
			p.StrokeRoundedRect(inset, inset, w, h, radius, pl.Color, pl.Width, pl.Opacity)
		default:
			return nil, errors.New(errors.ErrCodeInvalidStyle, "unsupported style layer %T", paint)
		}
	}
	return p.Image(), nil
}
