// Package sdfray implements a procedural solid-modeling core for ray
// marched rendering. Shapes are represented as signed distance fields
// arranged in an immutable tree of primitives, boolean (CSG) composites
// with optional smooth blending, and space-warping deformer chains.
// Trees are built through [Builder] or the staged [ShapeBuilder] and are
// read-only afterwards, so a single tree may be evaluated from any number
// of goroutines with no synchronization.
package sdfray

import (
	"github.com/chewxy/math32"
)

const (
	// For an equilateral triangle of side length L the length of bisector is L multiplied this number which is sqrt(1-0.25).
	tribisect = 0.8660254037844386467637231707529361834714026269051903140279034897
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization or taper scale factors.
	epstol = 6e-7
)

// Material is an opaque handle bound to a distance field subtree. The
// renderer resolves handles to shading data; this package only transports
// them. The zero handle means "unbound".
type Material uint32

// MaterialNone is the unbound material handle.
const MaterialNone Material = 0

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func hypotf(a, b float32) float32 {
	return math32.Hypot(a, b)
}

func signf(a float32) float32 {
	if a == 0 {
		return 0
	}
	return math32.Copysign(1, a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}
