package layer

import (
	"fmt"
	"image"
	"testing"

	"github.com/kurishiro/voxlayer/pkg/attr"
	"github.com/kurishiro/voxlayer/pkg/errors"
)

// fakePainter records drawing calls and reports fixed text metrics:
// every rune advances 10px, ascent 8, line height 12.
type fakePainter struct {
	w, h int
	font string
	size float64
	ops  []string
}

func (f *fakePainter) Begin(w, h int) error {
	f.w, f.h = w, h
	f.ops = append(f.ops, fmt.Sprintf("begin %dx%d", w, h))
	return nil
}

func (f *fakePainter) SetFont(name string, size float64) error {
	f.font, f.size = name, size
	return nil
}

func (f *fakePainter) FillRoundedRect(x, y, w, h, radius float64, c Color, opacity float64) {
	f.ops = append(f.ops, fmt.Sprintf("fillrect %.1f,%.1f %gx%g r=%g", x, y, w, h, radius))
}

func (f *fakePainter) StrokeRoundedRect(x, y, w, h, radius float64, c Color, width, opacity float64) {
	f.ops = append(f.ops, fmt.Sprintf("strokerect %.1f,%.1f %gx%g w=%g", x, y, w, h, width))
}

func (f *fakePainter) FillText(line string, x, y float64, c Color, opacity float64) {
	f.ops = append(f.ops, fmt.Sprintf("filltext %q %.1f,%.1f", line, x, y))
}

func (f *fakePainter) StrokeText(line string, x, y float64, c Color, width, opacity float64) {
	f.ops = append(f.ops, fmt.Sprintf("stroketext %q %.1f,%.1f", line, x, y))
}

func (f *fakePainter) MeasureText(line string) (TextMetrics, error) {
	return TextMetrics{Width: float64(10 * len([]rune(line))), Ascent: 8, Height: 12}, nil
}

func (f *fakePainter) Image() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, f.w, f.h))
}

func TestRectangleEmptyStyle(t *testing.T) {
	r := &Rectangle{Size: attr.FixedVec2(100, 50)}
	img, err := r.Draw(&fakePainter{}, 0)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img != nil {
		t.Error("empty style should draw nothing")
	}
}

func TestRectangleFill(t *testing.T) {
	p := &fakePainter{}
	r := &Rectangle{
		Size:   attr.FixedVec2(100, 50),
		Radius: attr.Fixed(8),
		Style:  Style{Fill{Color: Color{0, 128, 0}, Opacity: 1}},
	}
	img, err := r.Draw(p, 0)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img == nil {
		t.Fatal("want an image")
	}

	// No strokes: canvas is the size plus the 1px margin on each side.
	if p.w != 102 || p.h != 52 {
		t.Errorf("canvas = %dx%d, want 102x52", p.w, p.h)
	}
	if got := p.ops[1]; got != `fillrect 1.0,1.0 100x50 r=8` {
		t.Errorf("fill op = %q", got)
	}
}

func TestRectangleStrokePadding(t *testing.T) {
	p := &fakePainter{}
	r := &Rectangle{
		Size:   attr.FixedVec2(100, 50),
		Radius: attr.Fixed(0),
		Style: Style{
			Fill{Color: Color{255, 255, 255}, Opacity: 1},
			Stroke{Color: Color{0, 0, 0}, Width: 4, Opacity: 1},
		},
	}
	if _, err := r.Draw(p, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Canvas grows by the widest stroke; geometry is inset by half of it
	// plus the margin, so the centered stroke stays inside.
	if p.w != 106 || p.h != 56 {
		t.Errorf("canvas = %dx%d, want 106x56", p.w, p.h)
	}
	if got := p.ops[1]; got != `fillrect 3.0,3.0 100x50 r=0` {
		t.Errorf("fill op = %q", got)
	}
	if got := p.ops[2]; got != `strokerect 3.0,3.0 100x50 w=4` {
		t.Errorf("stroke op = %q", got)
	}
}

func TestRectangleNilSize(t *testing.T) {
	r := &Rectangle{Style: Style{Fill{Opacity: 1}}}
	_, err := r.Draw(&fakePainter{}, 0)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("want INVALID_INPUT, got %v", err)
	}
}

func TestRectangleTimeVarying(t *testing.T) {
	track, err := attr.NewTrack([]attr.Keyframe{{Time: 0, Value: 10}, {Time: 1, Value: 20}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := &fakePainter{}
	r := &Rectangle{
		Size:   attr.XY(track, attr.Fixed(10)),
		Radius: attr.Fixed(0),
		Style:  Style{Fill{Opacity: 1}},
	}
	if _, err := r.Draw(p, 0.5); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if p.w != 17 { // ceil(15 + 2)
		t.Errorf("canvas width = %d, want 17", p.w)
	}
}

type bogusPaint struct{}

func (bogusPaint) paintOpacity() float64 { return 1 }

func TestRectangleInvalidStyle(t *testing.T) {
	r := &Rectangle{
		Size:  attr.FixedVec2(10, 10),
		Style: Style{bogusPaint{}},
	}
	_, err := r.Draw(&fakePainter{}, 0)
	if !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("want INVALID_STYLE, got %v", err)
	}
}

func TestTimedText(t *testing.T) {
	tt := TimedText{
		{Start: 0, End: 1, Text: "first"},
		{Start: 1, End: 2.5, Text: "second"},
	}
	cases := []struct {
		t    float64
		want string
	}{
		{0, "first"},
		{0.99, "first"},
		{1, "second"},
		{2.5, ""},
		{-1, ""},
	}
	for _, c := range cases {
		if got := tt.Text(c.t); got != c.want {
			t.Errorf("Text(%v) = %q, want %q", c.t, got, c.want)
		}
	}
}

func TestTextEmptySource(t *testing.T) {
	tx := &Text{
		Source:   TimedText{{Start: 0, End: 1, Text: "hi"}},
		FontSize: attr.Fixed(20),
		Style:    Style{Fill{Opacity: 1}},
	}
	img, err := tx.Draw(&fakePainter{}, 5) // outside all intervals
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img != nil {
		t.Error("text outside all intervals should draw nothing")
	}
}

func TestTextNilSource(t *testing.T) {
	tx := &Text{FontSize: attr.Fixed(20), Style: Style{Fill{Opacity: 1}}}
	img, err := tx.Draw(&fakePainter{}, 0)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img != nil {
		t.Error("nil source should draw nothing")
	}
}

func TestTextNilFontSize(t *testing.T) {
	tx := &Text{
		Source: Static("hi"),
		Style:  Style{Fill{Opacity: 1}},
	}
	_, err := tx.Draw(&fakePainter{}, 0)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("want INVALID_INPUT, got %v", err)
	}
}

func TestTextLayout(t *testing.T) {
	p := &fakePainter{}
	tx := &Text{
		Source:   Static(`あいう\nえおか`),
		Font:     "testfont",
		FontSize: attr.Fixed(24),
		Style:    Style{Fill{Color: Color{255, 255, 255}, Opacity: 1}},
	}
	img, err := tx.Draw(p, 0)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img == nil {
		t.Fatal("want an image")
	}
	if p.font != "testfont" || p.size != 24 {
		t.Errorf("font = %q %v", p.font, p.size)
	}

	// Two 3-rune lines at 10px per rune and 12px line height.
	if p.w != 32 || p.h != 26 {
		t.Errorf("canvas = %dx%d, want 32x26", p.w, p.h)
	}
	want := []string{
		"begin 32x26",
		`filltext "あいう" 1.0,9.0`,
		`filltext "えおか" 1.0,21.0`,
	}
	if len(p.ops) != len(want) {
		t.Fatalf("ops = %v", p.ops)
	}
	for i, w := range want {
		if p.ops[i] != w {
			t.Errorf("op %d = %q, want %q", i, p.ops[i], w)
		}
	}
}

func TestTextLineSpacing(t *testing.T) {
	p := &fakePainter{}
	tx := &Text{
		Source:      Static("a\nb\nc"),
		FontSize:    attr.Fixed(16),
		LineSpacing: 20,
		Style:       Style{Fill{Opacity: 1}},
	}
	if _, err := tx.Draw(p, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Two spaced advances plus the last line's natural height.
	if p.h != 54 { // ceil(20 + 20 + 12 + 2)
		t.Errorf("canvas height = %d, want 54", p.h)
	}
	if got := p.ops[3]; got != `filltext "c" 1.0,49.0` {
		t.Errorf("last line op = %q", got)
	}
}

func TestTextStrokeThenFill(t *testing.T) {
	p := &fakePainter{}
	tx := &Text{
		Source:   Static("ab"),
		FontSize: attr.Fixed(16),
		Style: Style{
			Stroke{Color: Color{0, 0, 0}, Width: 2, Opacity: 1},
			Fill{Color: Color{255, 255, 255}, Opacity: 1},
		},
	}
	if _, err := tx.Draw(p, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Style layers apply in order: outline first, fill on top. Each layer
	// draws every line.
	want := []string{
		"begin 24x16",
		`stroketext "ab" 2.0,10.0`,
		`filltext "ab" 2.0,10.0`,
	}
	for i, w := range want {
		if p.ops[i] != w {
			t.Errorf("op %d = %q, want %q", i, p.ops[i], w)
		}
	}
}
