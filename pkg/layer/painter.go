package layer

import "image"

// TextMetrics describes one line of text under the painter's current
// font. Width is the horizontal advance, Ascent the distance from the
// top of the line box to the baseline, and Height the natural vertical
// advance to the next line.
type TextMetrics struct {
	Width  float64
	Ascent float64
	Height float64
}

// Painter is the minimal 2D drawing capability layers render through.
// Implementations are not safe for concurrent use; use one painter per
// render call or serialize externally.
type Painter interface {
	// Begin allocates a fully transparent canvas of the given pixel size,
	// replacing any previous canvas.
	Begin(width, height int) error

	// SetFont resolves and activates a font for subsequent text calls.
	// The name may be a font file path or a family name looked up on the
	// host system.
	SetFont(name string, size float64) error

	FillRoundedRect(x, y, w, h, radius float64, c Color, opacity float64)
	StrokeRoundedRect(x, y, w, h, radius float64, c Color, width, opacity float64)

	// FillText and StrokeText draw one line with its left edge at x and
	// its baseline at y.
	FillText(line string, x, y float64, c Color, opacity float64)
	StrokeText(line string, x, y float64, c Color, width, opacity float64)

	// MeasureText measures one line under the active font.
	MeasureText(line string) (TextMetrics, error)

	// Image returns the current canvas.
	Image() *image.RGBA
}
