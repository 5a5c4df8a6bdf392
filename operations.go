package sdfray

import (
	"github.com/soypat/geometry/ms3"
)

// Op is a CSG boolean operator combining two child distance values.
type Op uint8

const (
	// OpUnion joins both shapes: min(d1, d2).
	OpUnion Op = iota
	// OpDifference carves the right shape out of the left: max(d1, -d2).
	OpDifference
	// OpIntersection keeps the overlap of both shapes: max(d1, d2).
	OpIntersection
)

// String implements [fmt.Stringer].
func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	}
	return "unknown"
}

// smoothStepFactor is the conservative marching factor applied to smooth
// composites. Blended regions are a weighted minimum, not a metric
// distance field, so steps through them must undershoot.
const smoothStepFactor = 0.8

// Combine resolves op over two child distances with blend radius k.
// k == 0 yields the exact hard operator; k > 0 yields the polynomial
// smooth variant, which converges to the hard operator as k approaches 0.
func Combine(op Op, k, d1, d2 float32) float32 {
	if k <= 0 {
		switch op {
		case OpUnion:
			return minf(d1, d2)
		case OpDifference:
			return maxf(d1, -d2)
		case OpIntersection:
			return maxf(d1, d2)
		}
		panic("sdfray: unknown Op")
	}
	switch op {
	case OpUnion:
		h := clampf(0.5+0.5*(d2-d1)/k, 0, 1)
		return mixf(d2, d1, h) - k*h*(1-h)
	case OpDifference:
		h := clampf(0.5-0.5*(d2+d1)/k, 0, 1)
		return mixf(d1, -d2, h) + k*h*(1-h)
	case OpIntersection:
		h := clampf(0.5-0.5*(d2-d1)/k, 0, 1)
		return mixf(d2, d1, h) + k*h*(1-h)
	}
	panic("sdfray: unknown Op")
}

// Union joins the shapes of two SDFs into one. Is exact.
func (bld *Builder) Union(a, b *Field) *Field {
	return bld.composite(OpUnion, 0, a, b)
}

// Difference is the SDF difference of a-b. Does not produce a true SDF.
func (bld *Builder) Difference(a, b *Field) *Field {
	return bld.composite(OpDifference, 0, a, b)
}

// Intersection is the SDF intersection of a ^ b. Does not produce an
// exact SDF.
func (bld *Builder) Intersection(a, b *Field) *Field {
	return bld.composite(OpIntersection, 0, a, b)
}

// SmoothUnion joins the shapes of two SDFs into one with a smoothing
// blend of radius k.
func (bld *Builder) SmoothUnion(k float32, a, b *Field) *Field {
	return bld.composite(OpUnion, bld.checkBlend(k), a, b)
}

// SmoothDifference performs the difference of two SDFs with a smoothing
// parameter k.
func (bld *Builder) SmoothDifference(k float32, a, b *Field) *Field {
	return bld.composite(OpDifference, bld.checkBlend(k), a, b)
}

// SmoothIntersect performs the intersection of two SDFs with a smoothing
// parameter k.
func (bld *Builder) SmoothIntersect(k float32, a, b *Field) *Field {
	return bld.composite(OpIntersection, bld.checkBlend(k), a, b)
}

func (bld *Builder) checkBlend(k float32) float32 {
	if k < 0 {
		bld.shapeErrorf("negative smoothing radius")
		return 0
	}
	return k
}

func (bld *Builder) composite(op Op, k float32, a, b *Field) *Field {
	if a == nil || b == nil {
		bld.nilsdf(op.String())
	}
	var bb ms3.Box
	switch op {
	case OpUnion:
		bb = a.bb.Union(b.bb)
	case OpDifference:
		bb = a.bb
	case OpIntersection:
		bb = a.bb.Intersect(b.bb)
	}
	step := minf(a.step, b.step)
	if k > 0 {
		// A smooth blend can bulge past both children in the crease.
		bb.Min = ms3.AddScalar(-k/4, bb.Min)
		bb.Max = ms3.AddScalar(k/4, bb.Max)
		step *= smoothStepFactor
	}
	return &Field{
		kind:  kindComposite,
		op:    op,
		blend: k,
		left:  a,
		right: b,
		bb:    bb,
		step:  step,
	}
}

// Translate moves the SDF s in the given direction (dirX, dirY, dirZ)
// and returns the result.
func (bld *Builder) Translate(s *Field, dirX, dirY, dirZ float32) *Field {
	return bld.Deform(s, OffsetDeformer(ms3.Vec{X: dirX, Y: dirY, Z: dirZ}))
}

// Rotate is the rotation of radians angle around an axis vector.
func (bld *Builder) Rotate(s *Field, radians float32, axis ms3.Vec) *Field {
	return bld.Deform(s, RotateDeformer(radians, axis))
}

// WithMaterial binds a material handle to s. The original node is not
// mutated; a shallow wrapper sharing s's children is returned.
func (bld *Builder) WithMaterial(s *Field, m Material) *Field {
	if s == nil {
		bld.nilsdf("WithMaterial")
	}
	bound := *s
	bound.mat = m
	return &bound
}
