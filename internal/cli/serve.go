package cli

import (
	"image"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/kurishiro/voxlayer/pkg/attr"
	"github.com/kurishiro/voxlayer/pkg/errors"
	"github.com/kurishiro/voxlayer/pkg/layer"
	"github.com/kurishiro/voxlayer/pkg/layer/paint"
)

// newServeCmd creates the serve command, a development preview server
// for eyeballing layer styles while composing.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layer previews over HTTP",
		Long: `serve starts a preview server rendering layers to PNG per request:

  GET /rect?w=1000&h=250&radius=20&fill=57,62,36&stroke=255,255,255,6
  GET /text?text=hello&font=DejaVuSans&size=50&fill=255,255,255

Both accept a t query parameter for the timeline position in seconds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			r := chi.NewRouter()
			r.Use(middleware.Recoverer)
			r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			r.Get("/rect", handleRect)
			r.Get("/text", handleText)

			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				srv.Close()
			}()

			printInfo("Preview server listening on %s", addr)
			logger.Debugf("routes: /rect /text /healthz")
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8972", "listen address")

	return cmd
}

// queryStyle builds a style from repeated fill and stroke query
// parameters, strokes first.
func queryStyle(r *http.Request) (layer.Style, error) {
	var style layer.Style
	for _, raw := range r.URL.Query()["stroke"] {
		st, err := parseStroke(raw)
		if err != nil {
			return nil, err
		}
		style = append(style, st)
	}
	for _, raw := range r.URL.Query()["fill"] {
		f, err := parseFill(raw)
		if err != nil {
			return nil, err
		}
		style = append(style, f)
	}
	return style, nil
}

func queryFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", name, raw)
	}
	return v, nil
}

func handleRect(w http.ResponseWriter, r *http.Request) {
	width, err := queryFloat(r, "w", 1000)
	if err != nil {
		httpError(w, err)
		return
	}
	height, err := queryFloat(r, "h", 250)
	if err != nil {
		httpError(w, err)
		return
	}
	radius, err := queryFloat(r, "radius", 0)
	if err != nil {
		httpError(w, err)
		return
	}
	t, err := queryFloat(r, "t", 0)
	if err != nil {
		httpError(w, err)
		return
	}
	style, err := queryStyle(r)
	if err != nil {
		httpError(w, err)
		return
	}

	rect := &layer.Rectangle{
		Size:   attr.FixedVec2(width, height),
		Radius: attr.Fixed(radius),
		Style:  style,
	}
	img, err := rect.Draw(paint.New(), t)
	writeFrame(w, img, err)
}

func handleText(w http.ResponseWriter, r *http.Request) {
	size, err := queryFloat(r, "size", 50)
	if err != nil {
		httpError(w, err)
		return
	}
	spacing, err := queryFloat(r, "spacing", 0)
	if err != nil {
		httpError(w, err)
		return
	}
	t, err := queryFloat(r, "t", 0)
	if err != nil {
		httpError(w, err)
		return
	}
	style, err := queryStyle(r)
	if err != nil {
		httpError(w, err)
		return
	}

	font := r.URL.Query().Get("font")
	if font == "" {
		font = "DejaVuSans"
	}

	tx := &layer.Text{
		Source:      layer.Static(r.URL.Query().Get("text")),
		Font:        font,
		FontSize:    attr.Fixed(size),
		LineSpacing: spacing,
		Style:       style,
	}
	img, err := tx.Draw(paint.New(), t)
	writeFrame(w, img, err)
}

// writeFrame encodes a rendered frame as PNG, mapping a nil frame (the
// nothing-to-draw sentinel) to 204 No Content.
func writeFrame(w http.ResponseWriter, img *image.RGBA, err error) {
	if err != nil {
		httpError(w, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		httpError(w, err)
	}
}

func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidColor, errors.ErrCodeInvalidStyle:
		status = http.StatusBadRequest
	case errors.ErrCodeFontNotFound:
		status = http.StatusNotFound
	}
	http.Error(w, errors.UserMessage(err), status)
}
