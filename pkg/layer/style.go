package layer

// Color is an opaque RGB color. Opacity lives on the style layer, not
// the color, because the same color commonly appears at several
// opacities within one style.
type Color struct {
	R, G, B uint8
}

// Paint is one style layer. Fill and Stroke are the implementations;
// the unexported method keeps the set closed to this package.
type Paint interface {
	paintOpacity() float64
}

// Fill paints the interior of a shape or the glyph fills of text.
type Fill struct {
	Color   Color
	Opacity float64
}

func (f Fill) paintOpacity() float64 { return f.Opacity }

// Stroke paints the outline of a shape or text, centered on the
// geometric boundary.
type Stroke struct {
	Color   Color
	Width   float64
	Opacity float64
}

func (s Stroke) paintOpacity() float64 { return s.Opacity }

// Style is an ordered list of style layers, applied in declaration
// order. An empty style means nothing is drawn.
type Style []Paint

// MaxStrokeWidth returns the widest stroke in the style, or 0 if the
// style has no strokes. Canvas sizing pads by this amount so strokes
// never clip at the edge.
func (s Style) MaxStrokeWidth() float64 {
	max := 0.0
	for _, p := range s {
		if st, ok := p.(Stroke); ok && st.Width > max {
			max = st.Width
		}
	}
	return max
}
