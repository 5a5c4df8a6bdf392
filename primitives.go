package sdfray

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// NewSphere creates a sphere centered at the origin of radius r.
func (bld *Builder) NewSphere(r float32) *Field {
	if r <= 0 {
		bld.shapeErrorf("zero or negative sphere radius")
	}
	return &Field{
		kind: kindSphere,
		a:    r,
		step: 1,
		bb:   ms3.NewCenteredBox(ms3.Vec{}, ms3.Vec{X: 2 * r, Y: 2 * r, Z: 2 * r}),
	}
}

// NewBox creates a box centered at the origin with x,y,z dimensions.
func (bld *Builder) NewBox(x, y, z float32) *Field {
	if x <= 0 || y <= 0 || z <= 0 {
		bld.shapeErrorf("zero or negative box dimension")
	}
	dims := ms3.Vec{X: x, Y: y, Z: z}
	return &Field{
		kind: kindBox,
		size: ms3.Scale(0.5, dims),
		step: 1,
		bb:   ms3.NewCenteredBox(ms3.Vec{}, dims),
	}
}

// NewCylinder creates a cylinder centered at the origin with given radius
// and height. The cylinder's axis points in z direction.
func (bld *Builder) NewCylinder(r, h float32) *Field {
	if r <= 0 || h <= 0 {
		bld.shapeErrorf("bad cylinder dimension")
	}
	return &Field{
		kind: kindCylinder,
		a:    r,
		b:    h / 2,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -r, Y: -r, Z: -h / 2},
			Max: ms3.Vec{X: r, Y: r, Z: h / 2},
		},
	}
}

// NewTorus creates a torus given 2 radii to define the radius across
// (greaterRadius) and the "solid" radius (lesserRadius). The torus' axis
// is the z axis.
func (bld *Builder) NewTorus(greaterRadius, lesserRadius float32) *Field {
	if greaterRadius <= 0 || lesserRadius <= 0 {
		bld.shapeErrorf("invalid torus parameter")
	}
	if greaterRadius < 2*lesserRadius {
		bld.shapeErrorf("too large torus lesser radius")
	}
	R := greaterRadius + lesserRadius
	return &Field{
		kind: kindTorus,
		a:    greaterRadius,
		b:    lesserRadius,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -R, Y: -R, Z: -lesserRadius},
			Max: ms3.Vec{X: R, Y: R, Z: lesserRadius},
		},
	}
}

// NewTube creates a hollow cylinder with outer radius outerR, inner
// radius innerR and height h. The tube's axis points in z direction.
func (bld *Builder) NewTube(outerR, innerR, h float32) *Field {
	if outerR <= 0 || innerR <= 0 || h <= 0 {
		bld.shapeErrorf("zero or negative tube dimension")
	}
	if innerR >= outerR {
		bld.shapeErrorf("tube inner radius must be smaller than outer radius")
	}
	return &Field{
		kind: kindTube,
		a:    outerR,
		b:    innerR,
		c:    h / 2,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -outerR, Y: -outerR, Z: -h / 2},
			Max: ms3.Vec{X: outerR, Y: outerR, Z: h / 2},
		},
	}
}

// NewHexagonalPrism creates a hexagonal prism given a face-to-face
// dimension and height. The prism's length is in the z axis.
func (bld *Builder) NewHexagonalPrism(face2Face, h float32) *Field {
	if face2Face <= 0 || h <= 0 {
		bld.shapeErrorf("invalid hexagonal prism parameter")
	}
	apothem := face2Face / 2
	circum := apothem / tribisect
	return &Field{
		kind: kindPrism,
		a:    apothem,
		b:    h / 2,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -circum, Y: -apothem, Z: -h / 2},
			Max: ms3.Vec{X: circum, Y: apothem, Z: h / 2},
		},
	}
}

// NewEllipsoid creates an ellipsoid centered at the origin with the
// argument semi-axis radii. The distance field is a bound, not exact,
// away from the axes; the error is small and one-sided (conservative).
func (bld *Builder) NewEllipsoid(rx, ry, rz float32) *Field {
	if rx <= 0 || ry <= 0 || rz <= 0 {
		bld.shapeErrorf("zero or negative ellipsoid radius")
	}
	r := ms3.Vec{X: rx, Y: ry, Z: rz}
	return &Field{
		kind: kindEllipsoid,
		size: r,
		step: 1,
		bb:   ms3.NewCenteredBox(ms3.Vec{}, ms3.Scale(2, r)),
	}
}

// NewCone creates a cone with base radius r spanning height h. The base
// sits at z=-h/2 and the apex at z=+h/2.
func (bld *Builder) NewCone(r, h float32) *Field {
	if r <= 0 || h <= 0 {
		bld.shapeErrorf("bad cone dimension")
	}
	return &Field{
		kind: kindCone,
		a:    r,
		b:    h / 2,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -r, Y: -r, Z: -h / 2},
			Max: ms3.Vec{X: r, Y: r, Z: h / 2},
		},
	}
}

// NewCapsule creates a capsule of radius r whose cylindrical section has
// length h, so total length is h+2r. The capsule's axis is the z axis.
func (bld *Builder) NewCapsule(r, h float32) *Field {
	if r <= 0 || h <= 0 {
		bld.shapeErrorf("bad capsule dimension")
	}
	zmax := h/2 + r
	return &Field{
		kind: kindCapsule,
		a:    r,
		b:    h / 2,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -r, Y: -r, Z: -zmax},
			Max: ms3.Vec{X: r, Y: r, Z: zmax},
		},
	}
}

// NewRing creates a flat ring: a rectangle of the given width (radial)
// and height (axial) revolved at greaterRadius around the z axis.
func (bld *Builder) NewRing(greaterRadius, width, height float32) *Field {
	if greaterRadius <= 0 || width <= 0 || height <= 0 {
		bld.shapeErrorf("invalid ring parameter")
	}
	if width/2 >= greaterRadius {
		bld.shapeErrorf("ring width too large for revolve radius")
	}
	R := greaterRadius + width/2
	return &Field{
		kind: kindRing,
		a:    greaterRadius,
		b:    width / 2,
		c:    height / 2,
		step: 1,
		bb: ms3.Box{
			Min: ms3.Vec{X: -R, Y: -R, Z: -height / 2},
			Max: ms3.Vec{X: R, Y: R, Z: height / 2},
		},
	}
}

func distBox(p, half ms3.Vec) float32 {
	q := ms3.Sub(ms3.AbsElem(p), half)
	return ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0)
}

func distCylinder(p ms3.Vec, r, halfH float32) float32 {
	dr := hypotf(p.X, p.Y) - r
	dz := absf(p.Z) - halfH
	return minf(maxf(dr, dz), 0) + hypotf(maxf(dr, 0), maxf(dz, 0))
}

func distTorus(p ms3.Vec, greaterR, lesserR float32) float32 {
	q := ms2.Vec{X: hypotf(p.X, p.Y) - greaterR, Y: p.Z}
	return ms2.Norm(q) - lesserR
}

func distTube(p ms3.Vec, outerR, innerR, halfH float32) float32 {
	mid := (outerR + innerR) / 2
	halfWall := (outerR - innerR) / 2
	dr := absf(hypotf(p.X, p.Y)-mid) - halfWall
	dz := absf(p.Z) - halfH
	return minf(maxf(dr, dz), 0) + hypotf(maxf(dr, 0), maxf(dz, 0))
}

func distHexPrism(p ms3.Vec, apothem, halfH float32) float32 {
	const k1, k2, k3 = -tribisect, 0.5, 0.57735
	clm := k3 * apothem
	p = ms3.AbsElem(p)
	pm := minf(k1*p.X+k2*p.Y, 0)
	p.X -= 2 * k1 * pm
	p.Y -= 2 * k2 * pm
	d1 := hypotf(p.X-clampf(p.X, -clm, clm), p.Y-apothem) * signf(p.Y-apothem)
	d2 := p.Z - halfH
	return minf(maxf(d1, d2), 0) + hypotf(maxf(d1, 0), maxf(d2, 0))
}

func distEllipsoid(p, r ms3.Vec) float32 {
	k0 := ms3.Norm(ms3.DivElem(p, r))
	k1 := ms3.Norm(ms3.DivElem(p, ms3.MulElem(r, r)))
	if k1 < epstol {
		// Query at the center, where the scaled gradient vanishes.
		return -r.Min()
	}
	return k0 * (k0 - 1) / k1
}

func distCone(p ms3.Vec, r, halfH float32) float32 {
	q := ms2.Vec{X: hypotf(p.X, p.Y), Y: p.Z}
	k1 := ms2.Vec{Y: halfH}
	k2 := ms2.Vec{X: -r, Y: 2 * halfH}
	var baseR float32
	if q.Y < 0 {
		baseR = r
	}
	ca := ms2.Vec{X: q.X - minf(q.X, baseR), Y: absf(q.Y) - halfH}
	cb := ms2.Add(ms2.Sub(q, k1), ms2.Scale(clampf(ms2.Dot(ms2.Sub(k1, q), k2)/ms2.Norm2(k2), 0, 1), k2))
	s := float32(1)
	if cb.X < 0 && ca.Y < 0 {
		s = -1
	}
	return s * math32.Sqrt(minf(ms2.Norm2(ca), ms2.Norm2(cb)))
}

func distCapsule(p ms3.Vec, r, halfH float32) float32 {
	z := p.Z - clampf(p.Z, -halfH, halfH)
	return hypotf(hypotf(p.X, p.Y), z) - r
}

func distRing(p ms3.Vec, greaterR, halfW, halfH float32) float32 {
	q := ms2.Vec{X: absf(hypotf(p.X, p.Y)-greaterR) - halfW, Y: absf(p.Z) - halfH}
	return minf(maxf(q.X, q.Y), 0) + ms2.Norm(ms2.MaxElem(q, ms2.Vec{}))
}
