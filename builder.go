package sdfray

import (
	"errors"
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms3"
)

// Construction errors. All are surfaced synchronously from the failing
// call or from [ShapeBuilder.Build]; invalid input is never silently
// defaulted.
var (
	// ErrMissingBaseShape reports a boolean, deformation or material
	// operation requested before any base primitive was established.
	ErrMissingBaseShape = errors.New("no base shape established")
	// ErrMissingMaterial reports Build called with no material bound.
	ErrMissingMaterial = errors.New("no material bound")
	// ErrInvalidParameter wraps dimension and parameter validation
	// failures such as negative radii or extents.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Builder wraps all SDF primitive, operation and deformer construction
// logic. Construction errors accumulate on the Builder and are reported
// by [Builder.Err]; setting PanicOnError instead panics at the failing
// call, which aids debugging hardcoded shapes.
//
// The zero value is ready to use.
type Builder struct {
	PanicOnError bool
	accumErrs    []error
}

// Err returns all accumulated construction errors joined, or nil.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated construction errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = nil
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	err := fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(msg, args...))
	if bld.PanicOnError {
		panic(err)
	}
	bld.accumErrs = append(bld.accumErrs, err)
}

func (*Builder) nilsdf(msg string) {
	panic("nil SDF argument: " + msg)
}

// ShapeBuilder is a staged, fluent construction facade over [Builder].
// A shape starts from exactly one base primitive, is then combined with
// other subtrees and wrapped in deformers, and is finalized by
// [ShapeBuilder.WithMaterial] and [ShapeBuilder.Build]. Every call
// returns an updated builder value; earlier values remain valid, so
// builder states may be branched freely.
type ShapeBuilder struct {
	root *Field
	mat  Material
	errs []error
}

// NewShape returns an empty shape builder.
func NewShape() ShapeBuilder {
	return ShapeBuilder{}
}

func (s ShapeBuilder) withErr(err error) ShapeBuilder {
	s.errs = append(slices.Clone(s.errs), err)
	return s
}

func (s ShapeBuilder) prim(name string, build func(bld *Builder) *Field) ShapeBuilder {
	if s.root != nil {
		return s.withErr(fmt.Errorf("%w: %s: base shape already established", ErrInvalidParameter, name))
	}
	var bld Builder
	f := build(&bld)
	if err := bld.Err(); err != nil {
		s = s.withErr(err)
	}
	s.root = f
	return s
}

func (s ShapeBuilder) combine(name string, apply func(bld *Builder, base *Field) *Field) ShapeBuilder {
	if s.root == nil {
		return s.withErr(fmt.Errorf("%w: %s requires a base shape", ErrMissingBaseShape, name))
	}
	var bld Builder
	f := apply(&bld, s.root)
	if err := bld.Err(); err != nil {
		s = s.withErr(err)
	}
	s.root = f
	return s
}

// Sphere establishes a sphere of radius r as the base shape.
func (s ShapeBuilder) Sphere(r float32) ShapeBuilder {
	return s.prim("Sphere", func(bld *Builder) *Field { return bld.NewSphere(r) })
}

// Box establishes a box with x,y,z dimensions as the base shape.
func (s ShapeBuilder) Box(x, y, z float32) ShapeBuilder {
	return s.prim("Box", func(bld *Builder) *Field { return bld.NewBox(x, y, z) })
}

// Cylinder establishes a z-axis cylinder as the base shape.
func (s ShapeBuilder) Cylinder(r, h float32) ShapeBuilder {
	return s.prim("Cylinder", func(bld *Builder) *Field { return bld.NewCylinder(r, h) })
}

// Torus establishes a z-axis torus as the base shape.
func (s ShapeBuilder) Torus(greaterRadius, lesserRadius float32) ShapeBuilder {
	return s.prim("Torus", func(bld *Builder) *Field { return bld.NewTorus(greaterRadius, lesserRadius) })
}

// Tube establishes a hollow z-axis cylinder as the base shape.
func (s ShapeBuilder) Tube(outerR, innerR, h float32) ShapeBuilder {
	return s.prim("Tube", func(bld *Builder) *Field { return bld.NewTube(outerR, innerR, h) })
}

// Prism establishes a hexagonal prism as the base shape.
func (s ShapeBuilder) Prism(face2Face, h float32) ShapeBuilder {
	return s.prim("Prism", func(bld *Builder) *Field { return bld.NewHexagonalPrism(face2Face, h) })
}

// Ellipsoid establishes an ellipsoid as the base shape.
func (s ShapeBuilder) Ellipsoid(rx, ry, rz float32) ShapeBuilder {
	return s.prim("Ellipsoid", func(bld *Builder) *Field { return bld.NewEllipsoid(rx, ry, rz) })
}

// Cone establishes a cone as the base shape.
func (s ShapeBuilder) Cone(r, h float32) ShapeBuilder {
	return s.prim("Cone", func(bld *Builder) *Field { return bld.NewCone(r, h) })
}

// Capsule establishes a capsule as the base shape.
func (s ShapeBuilder) Capsule(r, h float32) ShapeBuilder {
	return s.prim("Capsule", func(bld *Builder) *Field { return bld.NewCapsule(r, h) })
}

// Ring establishes a flat ring as the base shape.
func (s ShapeBuilder) Ring(greaterRadius, width, height float32) ShapeBuilder {
	return s.prim("Ring", func(bld *Builder) *Field { return bld.NewRing(greaterRadius, width, height) })
}

// Union joins other onto the shape.
func (s ShapeBuilder) Union(other *Field) ShapeBuilder {
	return s.combine("Union", func(bld *Builder, base *Field) *Field { return bld.Union(base, other) })
}

// Subtract carves other out of the shape.
func (s ShapeBuilder) Subtract(other *Field) ShapeBuilder {
	return s.combine("Subtract", func(bld *Builder, base *Field) *Field { return bld.Difference(base, other) })
}

// Intersect keeps only the overlap of the shape and other.
func (s ShapeBuilder) Intersect(other *Field) ShapeBuilder {
	return s.combine("Intersect", func(bld *Builder, base *Field) *Field { return bld.Intersection(base, other) })
}

// SmoothUnion joins other onto the shape with blend radius k.
func (s ShapeBuilder) SmoothUnion(k float32, other *Field) ShapeBuilder {
	return s.combine("SmoothUnion", func(bld *Builder, base *Field) *Field { return bld.SmoothUnion(k, base, other) })
}

// SmoothSubtract carves other out of the shape with blend radius k.
func (s ShapeBuilder) SmoothSubtract(k float32, other *Field) ShapeBuilder {
	return s.combine("SmoothSubtract", func(bld *Builder, base *Field) *Field { return bld.SmoothDifference(k, base, other) })
}

// SmoothIntersect intersects other with the shape with blend radius k.
func (s ShapeBuilder) SmoothIntersect(k float32, other *Field) ShapeBuilder {
	return s.combine("SmoothIntersect", func(bld *Builder, base *Field) *Field { return bld.SmoothIntersect(k, base, other) })
}

// Twist appends a twist deformer around axis.
func (s ShapeBuilder) Twist(axis ms3.Vec, rate float32) ShapeBuilder {
	return s.combine("Twist", func(bld *Builder, base *Field) *Field { return bld.Twist(base, axis, rate) })
}

// Bend appends a bend deformer.
func (s ShapeBuilder) Bend(axis, bendAxis ms3.Vec, strength float32) ShapeBuilder {
	return s.combine("Bend", func(bld *Builder, base *Field) *Field { return bld.Bend(base, axis, bendAxis, strength) })
}

// Taper appends a taper deformer along axis.
func (s ShapeBuilder) Taper(axis ms3.Vec, scaleStart, scaleEnd, length float32) ShapeBuilder {
	return s.combine("Taper", func(bld *Builder, base *Field) *Field {
		return bld.Taper(base, axis, scaleStart, scaleEnd, length)
	})
}

// AddNoise appends a fractal noise deformer.
func (s ShapeBuilder) AddNoise(frequency, amplitude float32, octaves int, persistence float32) ShapeBuilder {
	return s.combine("AddNoise", func(bld *Builder, base *Field) *Field {
		return bld.Noise(base, frequency, amplitude, octaves, persistence)
	})
}

// AddWaves appends a sinusoidal wave deformer displacing along axis.
func (s ShapeBuilder) AddWaves(axis ms3.Vec, amplitude, frequency float32) ShapeBuilder {
	return s.combine("AddWaves", func(bld *Builder, base *Field) *Field {
		return bld.Waves(base, axis, amplitude, frequency)
	})
}

// Translate moves the shape by (x, y, z).
func (s ShapeBuilder) Translate(x, y, z float32) ShapeBuilder {
	return s.combine("Translate", func(bld *Builder, base *Field) *Field { return bld.Translate(base, x, y, z) })
}

// Rotate rotates the shape by radians around axis.
func (s ShapeBuilder) Rotate(radians float32, axis ms3.Vec) ShapeBuilder {
	return s.combine("Rotate", func(bld *Builder, base *Field) *Field { return bld.Rotate(base, radians, axis) })
}

// WithMaterial binds the material handle for the built tree. Mandatory.
func (s ShapeBuilder) WithMaterial(m Material) ShapeBuilder {
	if m == MaterialNone {
		return s.withErr(fmt.Errorf("%w: cannot bind MaterialNone", ErrInvalidParameter))
	}
	s.mat = m
	return s
}

// Build validates the accumulated construction and returns the immutable
// distance field tree with its bound material. On failure all recorded
// errors are returned joined and the tree is nil.
func (s ShapeBuilder) Build() (*Field, error) {
	errs := s.errs
	if s.root == nil {
		errs = append(slices.Clone(errs), ErrMissingBaseShape)
	}
	if s.mat == MaterialNone {
		errs = append(slices.Clone(errs), ErrMissingMaterial)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	var bld Builder
	return bld.WithMaterial(s.root, s.mat), nil
}
