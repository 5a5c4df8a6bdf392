package sdfray

import (
	"github.com/soypat/geometry/ms3"
)

// kind discriminates the closed set of Field variants. Primitive kinds,
// CSG operators and deformers are each a closed family dispatched by
// exhaustive switching; there is no open extension point.
type kind uint8

const (
	kindInvalid kind = iota
	kindSphere
	kindBox
	kindCylinder
	kindTorus
	kindTube
	kindPrism
	kindEllipsoid
	kindCone
	kindCapsule
	kindRing
	kindComposite
	kindDeformed
)

// Field is a node of an immutable signed distance field tree. A node is
// one of three variants: a closed-form primitive in its local
// origin-centered frame, a CSG composite over two shared children, or a
// deformed wrapper applying an ordered chain of space warps to a shared
// child. Nodes are constructed through [Builder] or [ShapeBuilder] and
// never mutated afterwards; subtrees may be shared freely between
// composites and between concurrently marching rays.
type Field struct {
	kind kind

	// Composite fields.
	op          Op
	blend       float32
	left, right *Field

	// Deformed fields.
	inner *Field
	chain []Deformer

	// Primitive dimensions. size holds vector extents (box half
	// extents, ellipsoid radii); a, b, c hold scalar dimensions whose
	// meaning depends on kind.
	size    ms3.Vec
	a, b, c float32

	mat Material

	// Cached at construction.
	bb   ms3.Box
	step float32
}

// Distance evaluates the signed distance from p to the field surface.
// Negative inside, positive outside. Pure function of (tree, point).
//
// Deformed subtrees and smooth blends are not exact Euclidean distance
// fields; [Field.StepScale] reports the conservative marching factor
// that compensates.
func (f *Field) Distance(p ms3.Vec) float32 {
	switch f.kind {
	case kindSphere:
		return ms3.Norm(p) - f.a
	case kindBox:
		return distBox(p, f.size)
	case kindCylinder:
		return distCylinder(p, f.a, f.b)
	case kindTorus:
		return distTorus(p, f.a, f.b)
	case kindTube:
		return distTube(p, f.a, f.b, f.c)
	case kindPrism:
		return distHexPrism(p, f.a, f.b)
	case kindEllipsoid:
		return distEllipsoid(p, f.size)
	case kindCone:
		return distCone(p, f.a, f.b)
	case kindCapsule:
		return distCapsule(p, f.a, f.b)
	case kindRing:
		return distRing(p, f.a, f.b, f.c)
	case kindComposite:
		return Combine(f.op, f.blend, f.left.Distance(p), f.right.Distance(p))
	case kindDeformed:
		return f.inner.Distance(applyChain(f.chain, p))
	}
	panic("sdfray: invalid Field")
}

// MaterialAt resolves the material handle governing the surface nearest
// to p. Composites resolve to whichever child's distance is active at p
// ("nearer child wins"); smooth blend regions do not interpolate
// handles. A node's own bound material acts as fallback when the
// resolved subtree is unbound.
func (f *Field) MaterialAt(p ms3.Vec) Material {
	var m Material
	switch f.kind {
	case kindComposite:
		dl := f.left.Distance(p)
		dr := f.right.Distance(p)
		switch f.op {
		case OpUnion:
			if dl <= dr {
				m = f.left.MaterialAt(p)
			} else {
				m = f.right.MaterialAt(p)
			}
		case OpDifference:
			if dl >= -dr {
				m = f.left.MaterialAt(p)
			} else {
				m = f.right.MaterialAt(p)
			}
		case OpIntersection:
			if dl >= dr {
				m = f.left.MaterialAt(p)
			} else {
				m = f.right.MaterialAt(p)
			}
		}
	case kindDeformed:
		m = f.inner.MaterialAt(applyChain(f.chain, p))
	default:
		// Primitive: its own binding, resolved below.
	}
	if m == MaterialNone {
		m = f.mat
	}
	return m
}

// Bounds returns a conservative axis-aligned box containing the surface.
// Deformed bounds are expanded for the worst-case warp and may be loose.
func (f *Field) Bounds() ms3.Box {
	return f.bb
}

// StepScale is the conservative ray-marching step factor in (0, 1] for
// this subtree. It is 1 for exact distance fields and shrinks below 1
// where smooth blends or non-isometric deformers may cause the reported
// distance to overestimate the true distance to the warped surface.
func (f *Field) StepScale() float32 {
	return f.step
}

// Material returns the handle bound directly to this node, or
// [MaterialNone]. Most callers want [Field.MaterialAt] instead.
func (f *Field) Material() Material {
	return f.mat
}
