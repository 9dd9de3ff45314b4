package paint

import (
	"testing"

	"github.com/flopp/go-findfont"

	"github.com/kurishiro/voxlayer/pkg/attr"
	"github.com/kurishiro/voxlayer/pkg/errors"
	"github.com/kurishiro/voxlayer/pkg/layer"
)

func TestBeginClearsToTransparent(t *testing.T) {
	g := New()
	if err := g.Begin(10, 10); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	img := g.Image()
	if img == nil {
		t.Fatal("no image after Begin")
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("bounds = %v", b)
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("pixel byte %d = %d, want fully transparent canvas", i, v)
		}
	}
}

func TestBeginRejectsEmptyCanvas(t *testing.T) {
	if err := New().Begin(0, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("want INVALID_INPUT, got %v", err)
	}
}

func TestFillRoundedRectPaints(t *testing.T) {
	g := New()
	if err := g.Begin(20, 20); err != nil {
		t.Fatal(err)
	}
	g.FillRoundedRect(2, 2, 16, 16, 4, layer.Color{R: 255}, 1)

	img := g.Image()
	// Center pixel is inside the rect and fully opaque red.
	r, _, _, a := img.At(10, 10).RGBA()
	if r == 0 || a == 0 {
		t.Errorf("center pixel not painted: r=%d a=%d", r, a)
	}
	// Corner pixel stays transparent (outside the rounded corner).
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("corner pixel should stay transparent")
	}
}

func TestImageBeforeBegin(t *testing.T) {
	if img := New().Image(); img != nil {
		t.Error("Image before Begin should be nil")
	}
}

func TestSetFontMissing(t *testing.T) {
	err := New().SetFont("no-such-font-family-at-all", 20)
	if !errors.Is(err, errors.ErrCodeFontNotFound) {
		t.Errorf("want FONT_NOT_FOUND, got %v", err)
	}
}

func TestMeasureWithoutFont(t *testing.T) {
	if _, err := New().MeasureText("x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("want INVALID_INPUT, got %v", err)
	}
}

// anyFont returns some installed TrueType font, or skips the test.
func anyFont(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"DejaVuSans", "Arial", "Helvetica", "LiberationSans"} {
		if path, err := findfont.Find(name + ".ttf"); err == nil {
			return path
		}
	}
	t.Skip("no usable system font found")
	return ""
}

func TestMeasureTextPerLineExtents(t *testing.T) {
	g := New()
	if err := g.SetFont(anyFont(t), 48); err != nil {
		t.Fatalf("SetFont: %v", err)
	}

	low, err := g.MeasureText("ace")
	if err != nil {
		t.Fatal(err)
	}
	tall, err := g.MeasureText("Agj")
	if err != nil {
		t.Fatal(err)
	}

	// Extents come from each line's own bounding box: x-height glyphs
	// take less room than ascenders plus descenders.
	if tall.Height <= low.Height {
		t.Errorf("height of Agj = %v, want more than ace = %v", tall.Height, low.Height)
	}
	if low.Width <= 0 || low.Ascent <= 0 {
		t.Errorf("metrics of ace = %+v", low)
	}

	// A blank line still consumes a full line height.
	blank, err := g.MeasureText("")
	if err != nil {
		t.Fatal(err)
	}
	if blank.Height <= 0 {
		t.Errorf("blank line height = %v, want positive", blank.Height)
	}
}

func TestTextLayerEndToEnd(t *testing.T) {
	fontPath := anyFont(t)

	tx := &layer.Text{
		Source:   layer.Static("hello\nworld"),
		Font:     fontPath,
		FontSize: attr.Fixed(24),
		Style: layer.Style{
			layer.Stroke{Color: layer.Color{}, Width: 2, Opacity: 1},
			layer.Fill{Color: layer.Color{R: 255, G: 255, B: 255}, Opacity: 1},
		},
	}
	img, err := tx.Draw(New(), 0)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img == nil {
		t.Fatal("want an image")
	}

	// Something was painted somewhere.
	painted := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			painted = true
			break
		}
	}
	if !painted {
		t.Error("text draw left the canvas fully transparent")
	}
}

func TestFontCache(t *testing.T) {
	fontPath := anyFont(t)

	first, err := loadFont(fontPath)
	if err != nil {
		t.Fatalf("loadFont: %v", err)
	}
	second, err := loadFont(fontPath)
	if err != nil {
		t.Fatalf("loadFont: %v", err)
	}
	if first != second {
		t.Error("font parsed twice for the same path")
	}
}
