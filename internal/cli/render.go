package cli

import (
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/spf13/cobra"

	"github.com/kurishiro/voxlayer/pkg/attr"
	"github.com/kurishiro/voxlayer/pkg/errors"
	"github.com/kurishiro/voxlayer/pkg/layer"
	"github.com/kurishiro/voxlayer/pkg/layer/paint"
)

// styleFlags collects the shared style and timing flags of the render
// subcommands. Stroke layers are applied before fill layers, the usual
// subtitle styling where the outline sits under the glyph fill.
type styleFlags struct {
	fills   []string
	strokes []string
	time    float64
	output  string
}

func (s *styleFlags) register(cmd *cobra.Command, defaultOutput string) {
	cmd.Flags().StringArrayVar(&s.fills, "fill", nil, "fill layer as R,G,B[,opacity] (repeatable)")
	cmd.Flags().StringArrayVar(&s.strokes, "stroke", nil, "stroke layer as R,G,B,width[,opacity] (repeatable)")
	cmd.Flags().Float64VarP(&s.time, "time", "t", 0, "timeline position in seconds")
	cmd.Flags().StringVarP(&s.output, "output", "o", defaultOutput, "output PNG file")
}

// style builds the ordered style layer list from the flags.
func (s *styleFlags) style() (layer.Style, error) {
	var style layer.Style
	for _, raw := range s.strokes {
		st, err := parseStroke(raw)
		if err != nil {
			return nil, err
		}
		style = append(style, st)
	}
	for _, raw := range s.fills {
		f, err := parseFill(raw)
		if err != nil {
			return nil, err
		}
		style = append(style, f)
	}
	return style, nil
}

// newRenderCmd creates the render command group.
func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Rasterize a layer to a PNG frame",
	}

	cmd.AddCommand(newRenderRectCmd())
	cmd.AddCommand(newRenderTextCmd())

	return cmd
}

// newRenderRectCmd creates the "render rect" subcommand.
func newRenderRectCmd() *cobra.Command {
	var (
		size   string
		radius float64
		flags  styleFlags
	)

	cmd := &cobra.Command{
		Use:   "rect",
		Short: "Render a rounded rectangle",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			w, h, err := parseSize(size)
			if err != nil {
				return err
			}
			style, err := flags.style()
			if err != nil {
				return err
			}

			rect := &layer.Rectangle{
				Size:   attr.FixedVec2(w, h),
				Radius: attr.Fixed(radius),
				Style:  style,
			}
			img, err := rect.Draw(paint.New(), flags.time)
			if err != nil {
				return err
			}
			if img == nil {
				printWarning("Nothing to draw (no style layers)")
				return nil
			}
			logger.Debugf("Rendered %dx%d frame", img.Bounds().Dx(), img.Bounds().Dy())

			if err := gg.SavePNG(flags.output, img); err != nil {
				return err
			}
			printSuccess("Rendered rectangle")
			printFile(flags.output)
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", "1000x250", "rectangle size as WxH")
	cmd.Flags().Float64Var(&radius, "radius", 0, "corner radius")
	flags.register(cmd, "rect.png")

	return cmd
}

// newRenderTextCmd creates the "render text" subcommand.
func newRenderTextCmd() *cobra.Command {
	var (
		text        string
		font        string
		fontSize    float64
		lineSpacing float64
		flags       styleFlags
	)

	cmd := &cobra.Command{
		Use:   "text",
		Short: "Render multi-line text",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			style, err := flags.style()
			if err != nil {
				return err
			}

			tx := &layer.Text{
				Source:      layer.Static(text),
				Font:        font,
				FontSize:    attr.Fixed(fontSize),
				LineSpacing: lineSpacing,
				Style:       style,
			}
			img, err := tx.Draw(paint.New(), flags.time)
			if err != nil {
				return err
			}
			if img == nil {
				printWarning("Nothing to draw (no text or no style layers)")
				return nil
			}
			logger.Debugf("Rendered %dx%d frame", img.Bounds().Dx(), img.Bounds().Dy())

			if err := gg.SavePNG(flags.output, img); err != nil {
				return err
			}
			printSuccess("Rendered text")
			printFile(flags.output)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", `text to draw (\n for line breaks)`)
	cmd.Flags().StringVar(&font, "font", "DejaVuSans", "font file path or family name")
	cmd.Flags().Float64Var(&fontSize, "font-size", 50, "font size in points")
	cmd.Flags().Float64Var(&lineSpacing, "line-spacing", 0, "fixed line advance (0 = natural)")
	flags.register(cmd, "text.png")

	return cmd
}

// parseSize parses a WxH size string.
func parseSize(s string) (float64, float64, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "invalid size %q (want WxH)", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid width %q", w)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid height %q", h)
	}
	return width, height, nil
}

// parseFill parses a fill layer flag: R,G,B with an optional trailing
// opacity (default 1).
func parseFill(s string) (layer.Fill, error) {
	parts, err := splitFloats(s)
	if err != nil {
		return layer.Fill{}, err
	}
	if len(parts) != 3 && len(parts) != 4 {
		return layer.Fill{}, errors.New(errors.ErrCodeInvalidColor, "invalid fill %q (want R,G,B[,opacity])", s)
	}
	c, err := toColor(parts[0], parts[1], parts[2], s)
	if err != nil {
		return layer.Fill{}, err
	}
	opacity := 1.0
	if len(parts) == 4 {
		opacity = parts[3]
	}
	return layer.Fill{Color: c, Opacity: opacity}, nil
}

// parseStroke parses a stroke layer flag: R,G,B,width with an optional
// trailing opacity (default 1).
func parseStroke(s string) (layer.Stroke, error) {
	parts, err := splitFloats(s)
	if err != nil {
		return layer.Stroke{}, err
	}
	if len(parts) != 4 && len(parts) != 5 {
		return layer.Stroke{}, errors.New(errors.ErrCodeInvalidColor, "invalid stroke %q (want R,G,B,width[,opacity])", s)
	}
	c, err := toColor(parts[0], parts[1], parts[2], s)
	if err != nil {
		return layer.Stroke{}, err
	}
	opacity := 1.0
	if len(parts) == 5 {
		opacity = parts[4]
	}
	return layer.Stroke{Color: c, Width: parts[3], Opacity: opacity}, nil
}

func splitFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid number %q in %q", f, s)
		}
		out[i] = v
	}
	return out, nil
}

func toColor(r, g, b float64, src string) (layer.Color, error) {
	for _, v := range []float64{r, g, b} {
		if v < 0 || v > 255 {
			return layer.Color{}, errors.New(errors.ErrCodeInvalidColor, "channel out of range in %q", src)
		}
	}
	return layer.Color{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}
