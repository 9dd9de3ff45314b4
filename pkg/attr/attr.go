// Package attr provides time-varying attribute values for layer rendering.
//
// Renderers resolve their parameters (size, radius, font size) through the
// Scalar and Vec2 interfaces instead of plain numbers, so any animation
// system can drive them. The package ships two implementations: fixed
// values for static parameters, and keyframed tracks with easing for
// simple animations. External interpolators plug in by implementing the
// one-method interfaces.
package attr

import (
	"sort"

	"github.com/kurishiro/voxlayer/pkg/errors"
)

// Scalar is a time-varying scalar value, resolved once per frame.
type Scalar interface {
	// At returns the instantaneous value at time t (seconds).
	At(t float64) float64
}

// Vec2 is a time-varying 2D value, e.g. a rectangle's size.
type Vec2 interface {
	// At returns the instantaneous (x, y) at time t (seconds).
	At(t float64) (x, y float64)
}

type fixedScalar float64

func (v fixedScalar) At(float64) float64 { return float64(v) }

// Fixed returns a Scalar that always resolves to v.
func Fixed(v float64) Scalar { return fixedScalar(v) }

type fixedVec2 struct{ x, y float64 }

func (v fixedVec2) At(float64) (float64, float64) { return v.x, v.y }

// FixedVec2 returns a Vec2 that always resolves to (x, y).
func FixedVec2(x, y float64) Vec2 { return fixedVec2{x, y} }

type pair struct{ x, y Scalar }

func (p pair) At(t float64) (float64, float64) { return p.x.At(t), p.y.At(t) }

// XY combines two scalars into a Vec2, so each axis can animate
// independently.
func XY(x, y Scalar) Vec2 { return pair{x, y} }

// Easing reshapes the interpolation parameter within a keyframe span.
// Input and output are both in [0, 1].
type Easing func(u float64) float64

// Linear is the identity easing.
func Linear(u float64) float64 { return u }

// EaseInOutCubic accelerates into and decelerates out of a span.
func EaseInOutCubic(u float64) float64 {
	if u < 0.5 {
		return 4 * u * u * u
	}
	d := -2*u + 2
	return 1 - d*d*d/2
}

// Keyframe pins a value at a point in time.
type Keyframe struct {
	Time  float64
	Value float64
}

// Track is a keyframed Scalar. Between keyframes the value is
// interpolated with the track's easing; before the first and after the
// last keyframe the value is clamped to the endpoint.
type Track struct {
	keys []Keyframe
	ease Easing
}

// NewTrack builds a track from keyframes, sorted by time. The easing may
// be nil for linear interpolation. At least one keyframe is required.
func NewTrack(keys []Keyframe, ease Easing) (*Track, error) {
	if len(keys) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "track needs at least one keyframe")
	}
	if ease == nil {
		ease = Linear
	}
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Track{keys: sorted, ease: ease}, nil
}

// At resolves the track at time t.
func (tr *Track) At(t float64) float64 {
	keys := tr.keys
	if t <= keys[0].Time {
		return keys[0].Value
	}
	if t >= keys[len(keys)-1].Time {
		return keys[len(keys)-1].Value
	}

	// Find the span containing t.
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t }) - 1
	k0, k1 := keys[i], keys[i+1]

	span := k1.Time - k0.Time
	if span <= 0 {
		return k1.Value
	}
	u := tr.ease((t - k0.Time) / span)
	return k0.Value + (k1.Value-k0.Value)*u
}

// Ensure Track implements Scalar.
var _ Scalar = (*Track)(nil)
