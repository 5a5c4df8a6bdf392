package sdfray

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

type deformKind uint8

const (
	deformInvalid deformKind = iota
	deformTwist
	deformBend
	deformTaper
	deformNoise
	deformWave
	deformOffset
	deformRotate
)

// Deformer is a pure space-warping function mapping a query point to a
// point in the wrapped shape's local frame. Deformers carry no per-call
// state and are chained as a flat ordered sequence on a deformed node;
// chain order is preserved exactly as constructed and is not commutative.
//
// Twist, Taper, Noise and Wave are not isometries: the wrapped field
// stops being an exact distance field and marching compensates through
// [Field.StepScale].
type Deformer struct {
	kind deformKind
	axis ms3.Vec // Unit primary axis.
	aux  ms3.Vec // Bend axis, wave drive direction or offset vector.
	inv  ms3.Mat4
	a    float32
	b    float32
	c    float32
	oct  int
	err  string
}

// TwistDeformer rotates space around axis by an angle proportional to the
// coordinate along axis times rate (radians per unit length). Composing
// with a negated-rate twist restores the original point exactly.
func TwistDeformer(axis ms3.Vec, rate float32) Deformer {
	u, ok := unitAxis(axis)
	if !ok {
		return Deformer{err: "null twist axis"}
	}
	return Deformer{kind: deformTwist, axis: u, a: rate}
}

// BendDeformer rotates space around axis proportionally to the signed
// coordinate along bendAxis, scaled by strength. The bend angle follows
// tanh of the coordinate so it is smooth through the pivot and bounded.
func BendDeformer(axis, bendAxis ms3.Vec, strength float32) Deformer {
	u, ok := unitAxis(axis)
	if !ok {
		return Deformer{err: "null bend rotation axis"}
	}
	v, ok := unitAxis(bendAxis)
	if !ok {
		return Deformer{err: "null bend axis"}
	}
	return Deformer{kind: deformBend, axis: u, aux: v, a: strength}
}

// TaperDeformer scales the components perpendicular to axis by a factor
// interpolated linearly from scaleStart to scaleEnd over length centered
// on the origin.
func TaperDeformer(axis ms3.Vec, scaleStart, scaleEnd, length float32) Deformer {
	u, ok := unitAxis(axis)
	if !ok {
		return Deformer{err: "null taper axis"}
	}
	if scaleStart <= 0 || scaleEnd <= 0 {
		return Deformer{err: "zero or negative taper scale"}
	}
	if length <= 0 {
		return Deformer{err: "zero or negative taper length"}
	}
	return Deformer{kind: deformTaper, axis: u, a: scaleStart, b: scaleEnd, c: length}
}

// NoiseDeformer offsets the query point by a fractal lattice noise field
// sampled at point*frequency, summing octaves with amplitudes multiplied
// by persistence each octave. Deterministic: equal points always map to
// equal offsets.
func NoiseDeformer(frequency, amplitude float32, octaves int, persistence float32) Deformer {
	if frequency <= 0 {
		return Deformer{err: "zero or negative noise frequency"}
	}
	if amplitude < 0 {
		return Deformer{err: "negative noise amplitude"}
	}
	if octaves < 1 {
		return Deformer{err: "noise octaves must be at least 1"}
	}
	if persistence <= 0 {
		return Deformer{err: "zero or negative noise persistence"}
	}
	return Deformer{kind: deformNoise, a: frequency, b: amplitude, c: persistence, oct: octaves}
}

// WaveDeformer displaces space along axis by amplitude*sin(frequency*s)
// where s is the coordinate along a fixed perpendicular of axis. The
// displacement is orthogonal to its drive coordinate so the mapping is
// exactly invertible.
func WaveDeformer(axis ms3.Vec, amplitude, frequency float32) Deformer {
	u, ok := unitAxis(axis)
	if !ok {
		return Deformer{err: "null wave axis"}
	}
	ref := ms3.Vec{X: 1}
	if absf(ms3.Dot(u, ref)) > 0.9 {
		ref = ms3.Vec{Y: 1}
	}
	drive, _ := unitAxis(ms3.Cross(u, ref))
	return Deformer{kind: deformWave, axis: u, aux: drive, a: amplitude, b: frequency}
}

// OffsetDeformer translates space by -off, placing the wrapped shape at
// off. Exact isometry.
func OffsetDeformer(off ms3.Vec) Deformer {
	return Deformer{kind: deformOffset, aux: off}
}

// RotateDeformer rotates the wrapped shape by radians around axis.
// Exact isometry.
func RotateDeformer(radians float32, axis ms3.Vec) Deformer {
	u, ok := unitAxis(axis)
	if !ok {
		return Deformer{err: "null rotation axis"}
	}
	return Deformer{kind: deformRotate, axis: u, a: radians, inv: ms3.RotationMat4(-radians, u)}
}

func unitAxis(v ms3.Vec) (ms3.Vec, bool) {
	n := ms3.Norm(v)
	if n < epstol {
		return ms3.Vec{}, false
	}
	return ms3.Scale(1/n, v), true
}

// applyChain maps a world-space query point through every deformer in
// sequence order to the innermost local frame.
func applyChain(chain []Deformer, p ms3.Vec) ms3.Vec {
	for i := range chain {
		p = chain[i].apply(p)
	}
	return p
}

func (d *Deformer) apply(p ms3.Vec) ms3.Vec {
	switch d.kind {
	case deformTwist:
		ang := -d.a * ms3.Dot(p, d.axis)
		return ms3.RotationMat4(ang, d.axis).MulPosition(p)
	case deformBend:
		ang := -d.a * math32.Tanh(ms3.Dot(p, d.aux))
		return ms3.RotationMat4(ang, d.axis).MulPosition(p)
	case deformTaper:
		s := ms3.Dot(p, d.axis)
		sc := maxf(mixf(d.a, d.b, clampf(s/d.c+0.5, 0, 1)), epstol)
		axial := ms3.Scale(s, d.axis)
		return ms3.Add(axial, ms3.Scale(1/sc, ms3.Sub(p, axial)))
	case deformNoise:
		q := ms3.Scale(d.a, p)
		disp := ms3.Vec{
			X: fractalNoise(q, d.oct, d.c, 0x7feb352d),
			Y: fractalNoise(q, d.oct, d.c, 0x846ca68b),
			Z: fractalNoise(q, d.oct, d.c, 0x9e3779b9),
		}
		return ms3.Sub(p, ms3.Scale(d.b, disp))
	case deformWave:
		off := d.a * math32.Sin(d.b*ms3.Dot(p, d.aux))
		return ms3.Sub(p, ms3.Scale(off, d.axis))
	case deformOffset:
		return ms3.Sub(p, d.aux)
	case deformRotate:
		return d.inv.MulPosition(p)
	}
	panic("sdfray: invalid Deformer")
}

// stepFactor is the conservative marching factor contributed by the
// deformer when wrapping a shape bounded by bb.
func (d *Deformer) stepFactor(bb ms3.Box) float32 {
	switch d.kind {
	case deformTwist:
		return 1 / (1 + absf(d.a)*radialExtent(bb, d.axis))
	case deformBend:
		return 1 / (1 + absf(d.a)*radialExtent(bb, d.axis))
	case deformTaper:
		return maxf(minf(1, minf(d.a, d.b)), 0.05)
	case deformNoise:
		// Displacement slope grows as 2*persistence per octave.
		lip := d.a * d.b
		gain := float32(1)
		total := float32(0)
		for i := 0; i < d.oct; i++ {
			total += gain
			gain *= 2 * d.c
		}
		return 1 / (1 + lip*total)
	case deformWave:
		return 1 / (1 + absf(d.a*d.b))
	case deformOffset, deformRotate:
		return 1
	}
	return 1
}

// expandBounds maps the wrapped shape's bounding box through the inverse
// of the deformer, conservatively.
func (d *Deformer) expandBounds(bb ms3.Box) ms3.Box {
	switch d.kind {
	case deformTwist, deformBend:
		// Arbitrary rotation of every point: bounding sphere box.
		r := maxCornerNorm(bb)
		return ms3.NewCenteredBox(ms3.Vec{}, ms3.Vec{X: 2 * r, Y: 2 * r, Z: 2 * r})
	case deformTaper:
		// The world shape is the child with its perpendicular
		// components multiplied by a factor in [min(s0,s1), max(s0,s1)].
		// The factor is linear per point, so bounding every corner
		// scaled by both extremes covers all intermediate scales.
		lo := minf(d.a, d.b)
		hi := maxf(d.a, d.b)
		var out ms3.Box
		for i, c := range boxCorners(bb) {
			axial := ms3.Scale(ms3.Dot(c, d.axis), d.axis)
			perp := ms3.Sub(c, axial)
			for _, f := range [2]float32{lo, hi} {
				q := ms3.Add(axial, ms3.Scale(f, perp))
				if i == 0 && f == lo {
					out = ms3.Box{Min: q, Max: q}
					continue
				}
				out.Min = ms3.MinElem(out.Min, q)
				out.Max = ms3.MaxElem(out.Max, q)
			}
		}
		return out
	case deformNoise:
		amp := float32(0)
		gain := d.b
		for i := 0; i < d.oct; i++ {
			amp += gain
			gain *= d.c
		}
		bb.Min = ms3.AddScalar(-amp, bb.Min)
		bb.Max = ms3.AddScalar(amp, bb.Max)
		return bb
	case deformWave:
		bb.Min = ms3.AddScalar(-absf(d.a), bb.Min)
		bb.Max = ms3.AddScalar(absf(d.a), bb.Max)
		return bb
	case deformOffset:
		return bb.Add(d.aux)
	case deformRotate:
		return d.inv.Inverse().MulBox(bb)
	}
	return bb
}

// radialExtent is the largest distance of a box corner from the line
// through the origin along axis.
func radialExtent(bb ms3.Box, axis ms3.Vec) float32 {
	var r float32
	for _, c := range boxCorners(bb) {
		perp := ms3.Sub(c, ms3.Scale(ms3.Dot(c, axis), axis))
		r = maxf(r, ms3.Norm(perp))
	}
	return r
}

func maxCornerNorm(bb ms3.Box) float32 {
	var r float32
	for _, c := range boxCorners(bb) {
		r = maxf(r, ms3.Norm(c))
	}
	return r
}

func boxCorners(bb ms3.Box) [8]ms3.Vec {
	return [8]ms3.Vec{
		{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		{X: bb.Max.X, Y: bb.Min.Y, Z: bb.Min.Z},
		{X: bb.Min.X, Y: bb.Max.Y, Z: bb.Min.Z},
		{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Min.Z},
		{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Max.Z},
		{X: bb.Max.X, Y: bb.Min.Y, Z: bb.Max.Z},
		{X: bb.Min.X, Y: bb.Max.Y, Z: bb.Max.Z},
		{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

// Deform wraps s with an ordered deformer chain. Deforming an unbound
// deformed node flattens into a single chain rather than nesting.
func (bld *Builder) Deform(s *Field, deformers ...Deformer) *Field {
	if s == nil {
		bld.nilsdf("Deform")
	}
	if len(deformers) == 0 {
		bld.shapeErrorf("empty deformer chain")
		return s
	}
	for i := range deformers {
		if deformers[i].kind == deformInvalid {
			msg := deformers[i].err
			if msg == "" {
				msg = "uninitialized deformer"
			}
			bld.shapeErrorf("%s", msg)
			return s
		}
	}
	inner := s
	chain := deformers
	if s.kind == kindDeformed && s.mat == MaterialNone {
		// Query points traverse the chain outside-in, so the new
		// outermost deformers go in front of the existing chain.
		inner = s.inner
		chain = make([]Deformer, 0, len(deformers)+len(s.chain))
		chain = append(chain, deformers...)
		chain = append(chain, s.chain...)
	} else {
		chain = append([]Deformer(nil), deformers...)
	}
	// The chain maps query points outside-in; shape bounds grow in the
	// opposite direction, innermost deformer first.
	bb := inner.bb
	step := inner.step
	for i := len(chain) - 1; i >= 0; i-- {
		step *= chain[i].stepFactor(bb)
		bb = chain[i].expandBounds(bb)
	}
	return &Field{
		kind:  kindDeformed,
		inner: inner,
		chain: chain,
		bb:    bb,
		step:  step,
	}
}

// Twist wraps s in a [TwistDeformer] around axis with the given rate in
// radians per unit length.
func (bld *Builder) Twist(s *Field, axis ms3.Vec, rate float32) *Field {
	return bld.Deform(s, TwistDeformer(axis, rate))
}

// Bend wraps s in a [BendDeformer].
func (bld *Builder) Bend(s *Field, axis, bendAxis ms3.Vec, strength float32) *Field {
	return bld.Deform(s, BendDeformer(axis, bendAxis, strength))
}

// Taper wraps s in a [TaperDeformer] along axis.
func (bld *Builder) Taper(s *Field, axis ms3.Vec, scaleStart, scaleEnd, length float32) *Field {
	return bld.Deform(s, TaperDeformer(axis, scaleStart, scaleEnd, length))
}

// Noise wraps s in a [NoiseDeformer].
func (bld *Builder) Noise(s *Field, frequency, amplitude float32, octaves int, persistence float32) *Field {
	return bld.Deform(s, NoiseDeformer(frequency, amplitude, octaves, persistence))
}

// Waves wraps s in a [WaveDeformer] displacing along axis.
func (bld *Builder) Waves(s *Field, axis ms3.Vec, amplitude, frequency float32) *Field {
	return bld.Deform(s, WaveDeformer(axis, amplitude, frequency))
}

// fractalNoise sums octaves of lattice value noise. Result is in [-1, 1].
func fractalNoise(p ms3.Vec, octaves int, persistence float32, seed uint32) float32 {
	var sum, norm float32
	amp := float32(1)
	for i := 0; i < octaves; i++ {
		sum += amp * valueNoise(p, seed+uint32(i)*0x68e31da4)
		norm += amp
		amp *= persistence
		p = ms3.Scale(2, p)
	}
	return sum / norm
}

// valueNoise is trilinearly interpolated hashed lattice noise in [-1, 1].
func valueNoise(p ms3.Vec, seed uint32) float32 {
	fx, fy, fz := math32.Floor(p.X), math32.Floor(p.Y), math32.Floor(p.Z)
	ix, iy, iz := int32(fx), int32(fy), int32(fz)
	tx := smoothstep(p.X - fx)
	ty := smoothstep(p.Y - fy)
	tz := smoothstep(p.Z - fz)
	c000 := latticeHash(ix, iy, iz, seed)
	c100 := latticeHash(ix+1, iy, iz, seed)
	c010 := latticeHash(ix, iy+1, iz, seed)
	c110 := latticeHash(ix+1, iy+1, iz, seed)
	c001 := latticeHash(ix, iy, iz+1, seed)
	c101 := latticeHash(ix+1, iy, iz+1, seed)
	c011 := latticeHash(ix, iy+1, iz+1, seed)
	c111 := latticeHash(ix+1, iy+1, iz+1, seed)
	v := mixf(
		mixf(mixf(c000, c100, tx), mixf(c010, c110, tx), ty),
		mixf(mixf(c001, c101, tx), mixf(c011, c111, tx), ty),
		tz,
	)
	return 2*v - 1
}

func smoothstep(t float32) float32 {
	return t * t * (3 - 2*t)
}

// latticeHash maps an integer lattice point to [0, 1).
func latticeHash(x, y, z int32, seed uint32) float32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ uint32(z)*0xcb1ab31f ^ seed
	h ^= h >> 13
	h *= 0x85ebca6b
	h ^= h >> 16
	return float32(h&0xffffff) / (1 << 24)
}
