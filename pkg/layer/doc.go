// Package layer renders rounded rectangles and multi-line text into
// transparent RGBA buffers.
//
// Layers describe what to draw: a geometry (rectangle size and corner
// radius, or a text source with font settings) plus an ordered list of
// style layers (fills and strokes). Drawing goes through the Painter
// capability interface, so the concrete raster backend is an injected
// dependency; pkg/layer/paint ships a gg-based implementation.
//
// All attribute inputs are time-varying (pkg/attr), resolved once per
// Draw call. A layer with no style layers, or a text layer whose source
// is empty at the requested time, has nothing to draw and returns a nil
// image with no error.
package layer
