// Package march resolves rays against signed distance field trees by
// adaptive sphere tracing. Marching is a pure read-only traversal of the
// tree: any number of rays may march one shared tree concurrently with
// no synchronization.
package march

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/sdfray/sdfray"
)

// Ray is a marching query: an origin, a unit direction and the valid
// parametric interval [TMin, TMax]. Rays are transient values owned by
// the caller; object-to-world placement happens before the ray reaches
// this package.
type Ray struct {
	Origin ms3.Vec
	Dir    ms3.Vec
	TMin   float32
	TMax   float32
}

// At returns the point at parametric distance t along the ray.
func (r Ray) At(t float32) ms3.Vec {
	return ms3.Add(r.Origin, ms3.Scale(t, r.Dir))
}

// HitInfo describes a converged surface intersection.
type HitInfo struct {
	// Point is the surface point at parametric distance T.
	Point ms3.Vec
	// Normal is the unit surface normal estimated by central
	// differences of the distance field.
	Normal ms3.Vec
	// T is the parametric distance along the ray.
	T float32
	// Material is the handle resolved at the surface point.
	Material sdfray.Material
}

// Outcome is the terminal state of a marching query. Both miss variants
// mean "no surface found" and must be treated identically by shading;
// MissMaxSteps is distinguishable for performance diagnostics only.
type Outcome uint8

const (
	// MissOutOfRange reports the ray left [TMin, TMax] without
	// converging, or a non-finite evaluation forced an abort.
	MissOutOfRange Outcome = iota
	// MissMaxSteps reports the step budget ran out before convergence.
	MissMaxSteps
	// Hit reports convergence onto the surface.
	Hit
)

// String implements [fmt.Stringer].
func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case MissMaxSteps:
		return "miss(max steps)"
	case MissOutOfRange:
		return "miss(out of range)"
	}
	return "unknown"
}

// Default marching parameters, applied by [Marcher.March] wherever the
// corresponding field is zero.
const (
	DefaultEpsilon  = 1e-4
	DefaultMaxSteps = 256
)

// Marcher holds marching parameters. The zero value marches with
// defaults. Marcher is stateless between queries and safe for
// concurrent use.
type Marcher struct {
	// Epsilon is the surface convergence threshold, in scene units.
	Epsilon float32
	// MaxSteps bounds distance evaluations per query. Marching always
	// terminates within MaxSteps evaluations or upon leaving the ray
	// interval.
	MaxSteps int
	// StepScale caps the fraction of the reported distance advanced
	// per step, additionally to the tree's own conservative factor.
	// Values above 1 are clamped to 1.
	StepScale float32
	// NormalStep is the central-difference offset for normal
	// estimation. Zero selects 2*Epsilon.
	NormalStep float32
}

// March walks r through f. It returns Hit with a populated HitInfo, or a
// zero HitInfo with one of the miss outcomes. Non-finite distances or
// normals abort as MissOutOfRange, never as a hit.
func (m Marcher) March(f *sdfray.Field, r Ray) (HitInfo, Outcome) {
	eps := m.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	maxSteps := m.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	scale := f.StepScale()
	if m.StepScale > 0 {
		scale = math32.Min(scale, m.StepScale)
	}
	scale = math32.Min(scale, 1)

	// Cheap slab pre-clip against the tree bounds: rays that never
	// reach the bounding box miss without evaluating the tree.
	tEnter, tExit, crosses := rayBoxSpan(r, f.Bounds(), eps)
	if !crosses || tEnter > r.TMax || tExit < r.TMin {
		return HitInfo{}, MissOutOfRange
	}
	t := math32.Max(r.TMin, tEnter)
	tMax := math32.Min(r.TMax, tExit)

	for i := 0; i < maxSteps; i++ {
		if t > tMax {
			return HitInfo{}, MissOutOfRange
		}
		d := f.Distance(r.At(t))
		if math32.IsNaN(d) || math32.IsInf(d, 0) {
			return HitInfo{}, MissOutOfRange
		}
		if d < eps {
			p := r.At(t)
			n, ok := m.Normal(f, p)
			if !ok {
				return HitInfo{}, MissOutOfRange
			}
			return HitInfo{
				Point:    p,
				Normal:   n,
				T:        t,
				Material: f.MaterialAt(p),
			}, Hit
		}
		t += d * scale
	}
	return HitInfo{}, MissMaxSteps
}

// Normal estimates the unit surface normal at p by central differences
// of the distance field, six evaluations total. ok is false when the
// gradient is non-finite or degenerate.
func (m Marcher) Normal(f *sdfray.Field, p ms3.Vec) (n ms3.Vec, ok bool) {
	step := m.NormalStep
	if step <= 0 {
		eps := m.Epsilon
		if eps <= 0 {
			eps = DefaultEpsilon
		}
		step = 2 * eps
	}
	h := step * 0.5
	n = ms3.Vec{
		X: f.Distance(ms3.Add(p, ms3.Vec{X: h})) - f.Distance(ms3.Sub(p, ms3.Vec{X: h})),
		Y: f.Distance(ms3.Add(p, ms3.Vec{Y: h})) - f.Distance(ms3.Sub(p, ms3.Vec{Y: h})),
		Z: f.Distance(ms3.Add(p, ms3.Vec{Z: h})) - f.Distance(ms3.Sub(p, ms3.Vec{Z: h})),
	}
	norm := ms3.Norm(n)
	if math32.IsNaN(norm) || math32.IsInf(norm, 0) || norm < 1e-12 {
		return ms3.Vec{}, false
	}
	return ms3.Scale(1/norm, n), true
}

// rayBoxSpan intersects the ray line with bb inflated by margin and
// returns the parametric overlap.
func rayBoxSpan(r Ray, bb ms3.Box, margin float32) (tEnter, tExit float32, crosses bool) {
	bb.Min = ms3.AddScalar(-margin, bb.Min)
	bb.Max = ms3.AddScalar(margin, bb.Max)
	tEnter = -math32.Inf(1)
	tExit = math32.Inf(1)
	o := r.Origin.Array()
	d := r.Dir.Array()
	lo := bb.Min.Array()
	hi := bb.Max.Array()
	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (lo[i] - o[i]) * inv
		t2 := (hi[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tEnter = math32.Max(tEnter, t1)
		tExit = math32.Min(tExit, t2)
		if tEnter > tExit {
			return 0, 0, false
		}
	}
	return tEnter, tExit, true
}
