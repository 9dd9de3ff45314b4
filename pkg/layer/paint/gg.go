// Package paint provides the raster drawing backend for pkg/layer,
// built on fogleman/gg with freetype font rendering. Font files are
// resolved by family name through the host font directories and parsed
// once per process.
package paint

import (
	"image"
	"math"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/kurishiro/voxlayer/pkg/errors"
	"github.com/kurishiro/voxlayer/pkg/layer"
)

// fontCache holds parsed fonts keyed by resolved file path. Parsing a
// TrueType file is expensive; faces at specific sizes are cheap.
var fontCache sync.Map

// GG is a layer.Painter drawing into a gg raster context. It is not
// safe for concurrent use.
type GG struct {
	dc   *gg.Context
	face font.Face
}

// New returns an empty painter. Begin must be called before drawing.
func New() *GG { return &GG{} }

func (g *GG) Begin(width, height int) error {
	if width < 1 || height < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d must be positive", width, height)
	}
	// gg allocates a zeroed RGBA image, which is fully transparent.
	g.dc = gg.NewContext(width, height)
	if g.face != nil {
		g.dc.SetFontFace(g.face)
	}
	return nil
}

func (g *GG) SetFont(name string, size float64) error {
	fnt, err := loadFont(name)
	if err != nil {
		return err
	}
	g.face = truetype.NewFace(fnt, &truetype.Options{Size: size})
	if g.dc != nil {
		g.dc.SetFontFace(g.face)
	}
	return nil
}

func loadFont(name string) (*truetype.Font, error) {
	path := name
	if _, err := os.Stat(path); err != nil {
		resolved, err := findfont.Find(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "font %q not found", name)
		}
		path = resolved
	}

	if cached, ok := fontCache.Load(path); ok {
		return cached.(*truetype.Font), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "failed to read font %s", path)
	}
	fnt, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "failed to parse font %s", path)
	}
	fontCache.Store(path, fnt)
	return fnt, nil
}

func (g *GG) setColor(c layer.Color, opacity float64) {
	g.dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, opacity)
}

func (g *GG) FillRoundedRect(x, y, w, h, radius float64, c layer.Color, opacity float64) {
	g.dc.DrawRoundedRectangle(x, y, w, h, radius)
	g.setColor(c, opacity)
	g.dc.Fill()
}

func (g *GG) StrokeRoundedRect(x, y, w, h, radius float64, c layer.Color, width, opacity float64) {
	g.dc.DrawRoundedRectangle(x, y, w, h, radius)
	g.setColor(c, opacity)
	g.dc.SetLineWidth(width)
	g.dc.Stroke()
}

func (g *GG) FillText(line string, x, y float64, c layer.Color, opacity float64) {
	g.setColor(c, opacity)
	g.dc.DrawString(line, x, y)
}

// strokeSamples is the number of stamp positions used to approximate a
// glyph outline.
const strokeSamples = 16

// StrokeText approximates glyph outlines by stamping the string around
// a circle of half the stroke width; gg exposes no glyph path API.
func (g *GG) StrokeText(line string, x, y float64, c layer.Color, width, opacity float64) {
	g.setColor(c, opacity)
	r := width / 2
	for i := 0; i < strokeSamples; i++ {
		a := 2 * math.Pi * float64(i) / strokeSamples
		g.dc.DrawString(line, x+r*math.Cos(a), y+r*math.Sin(a))
	}
}

// MeasureText reports per-line extents from the line's own bounding
// box, so a line of x-height glyphs takes less vertical room than one
// with ascenders and descenders.
func (g *GG) MeasureText(line string) (layer.TextMetrics, error) {
	if g.face == nil {
		return layer.TextMetrics{}, errors.New(errors.ErrCodeInvalidInput, "no font set")
	}
	bounds, advance := font.BoundString(g.face, line)
	tm := layer.TextMetrics{
		Width:  fixedToFloat(advance),
		Ascent: fixedToFloat(-bounds.Min.Y),
		Height: fixedToFloat(bounds.Max.Y - bounds.Min.Y),
	}
	// A blank line has an empty bounding box; fall back to the face
	// metrics so it still advances the layout.
	if tm.Height <= 0 {
		m := g.face.Metrics()
		tm.Ascent = fixedToFloat(m.Ascent)
		tm.Height = fixedToFloat(m.Height)
	}
	return tm, nil
}

func (g *GG) Image() *image.RGBA {
	if g.dc == nil {
		return nil
	}
	return g.dc.Image().(*image.RGBA)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

var _ layer.Painter = (*GG)(nil)
