package sdfray_test

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/sdfray/sdfray"
)

func TestShapeBuilderHappyPath(t *testing.T) {
	var bld sdfray.Builder
	arm := bld.Translate(bld.NewCapsule(0.3, 1), 1, 0, 0)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	shape, err := sdfray.NewShape().
		Sphere(1).
		SmoothUnion(0.2, arm).
		Twist(ms3.Vec{Z: 1}, 0.5).
		Translate(0, 0, 2).
		WithMaterial(3).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	center := ms3.Vec{Z: 2}
	if d := shape.Distance(center); d >= 0 {
		t.Errorf("distance at translated center %v, want negative", d)
	}
	if m := shape.MaterialAt(center); m != 3 {
		t.Errorf("material %d, want 3", m)
	}
}

func TestBuildEmpty(t *testing.T) {
	_, err := sdfray.NewShape().Build()
	if err == nil {
		t.Fatal("expected error from empty builder")
	}
	if !errors.Is(err, sdfray.ErrMissingBaseShape) {
		t.Errorf("error %v does not wrap ErrMissingBaseShape", err)
	}
	if !errors.Is(err, sdfray.ErrMissingMaterial) {
		t.Errorf("error %v does not wrap ErrMissingMaterial", err)
	}
}

func TestBuildMissingMaterial(t *testing.T) {
	shape, err := sdfray.NewShape().Sphere(1).Build()
	if shape != nil {
		t.Error("tree returned alongside error")
	}
	if !errors.Is(err, sdfray.ErrMissingMaterial) {
		t.Errorf("error %v does not wrap ErrMissingMaterial", err)
	}
	if errors.Is(err, sdfray.ErrMissingBaseShape) {
		t.Errorf("error %v wrongly reports a missing base shape", err)
	}
}

func TestOperationBeforeBaseShape(t *testing.T) {
	var bld sdfray.Builder
	other := bld.NewSphere(1)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		name string
		s    sdfray.ShapeBuilder
	}{
		{"union", sdfray.NewShape().Union(other)},
		{"subtract", sdfray.NewShape().Subtract(other)},
		{"smooth intersect", sdfray.NewShape().SmoothIntersect(0.1, other)},
		{"twist", sdfray.NewShape().Twist(ms3.Vec{Z: 1}, 1)},
		{"translate", sdfray.NewShape().Translate(1, 0, 0)},
		{"noise", sdfray.NewShape().AddNoise(1, 0.1, 3, 0.5)},
	} {
		_, err := tc.s.WithMaterial(1).Build()
		if !errors.Is(err, sdfray.ErrMissingBaseShape) {
			t.Errorf("%s: error %v does not wrap ErrMissingBaseShape", tc.name, err)
		}
	}
}

func TestSecondBaseShapeRejected(t *testing.T) {
	_, err := sdfray.NewShape().Sphere(1).Box(1, 1, 1).WithMaterial(1).Build()
	if !errors.Is(err, sdfray.ErrInvalidParameter) {
		t.Errorf("error %v does not wrap ErrInvalidParameter", err)
	}
}

func TestInvalidPrimitiveParameterSurfacesAtBuild(t *testing.T) {
	_, err := sdfray.NewShape().Sphere(-1).WithMaterial(1).Build()
	if !errors.Is(err, sdfray.ErrInvalidParameter) {
		t.Errorf("error %v does not wrap ErrInvalidParameter", err)
	}
	var bld sdfray.Builder
	other := bld.NewSphere(1)
	_, err = sdfray.NewShape().Cylinder(1, 2).SmoothUnion(-0.5, other).WithMaterial(1).Build()
	if !errors.Is(err, sdfray.ErrInvalidParameter) {
		t.Errorf("negative smoothing radius: error %v does not wrap ErrInvalidParameter", err)
	}
}

func TestWithMaterialNoneRejected(t *testing.T) {
	_, err := sdfray.NewShape().Sphere(1).WithMaterial(sdfray.MaterialNone).Build()
	if !errors.Is(err, sdfray.ErrInvalidParameter) {
		t.Errorf("error %v does not wrap ErrInvalidParameter", err)
	}
}

func TestShapeBuilderBranching(t *testing.T) {
	// Builder values are immutable snapshots: branches evolve
	// independently and errors on one branch never leak into another.
	base := sdfray.NewShape().Sphere(1)

	left, err := base.WithMaterial(1).Build()
	if err != nil {
		t.Fatal(err)
	}
	right, err := base.Translate(4, 0, 0).WithMaterial(2).Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := base.Sphere(2).WithMaterial(3).Build(); err == nil {
		t.Error("second base shape accepted on a branch")
	}

	if d := left.Distance(ms3.Vec{}); math32.Abs(d+1) > 1e-5 {
		t.Errorf("left branch center distance %v, want -1", d)
	}
	if d := right.Distance(ms3.Vec{X: 4}); math32.Abs(d+1) > 1e-5 {
		t.Errorf("right branch center distance %v, want -1", d)
	}
	if m := left.MaterialAt(ms3.Vec{}); m != 1 {
		t.Errorf("left branch material %d, want 1", m)
	}
	if m := right.MaterialAt(ms3.Vec{X: 4}); m != 2 {
		t.Errorf("right branch material %d, want 2", m)
	}
}

func TestBuildReportsAllErrors(t *testing.T) {
	_, err := sdfray.NewShape().Sphere(-1).Twist(ms3.Vec{}, 1).Build()
	if !errors.Is(err, sdfray.ErrInvalidParameter) {
		t.Errorf("error %v does not wrap ErrInvalidParameter", err)
	}
	if !errors.Is(err, sdfray.ErrMissingMaterial) {
		t.Errorf("error %v does not wrap ErrMissingMaterial", err)
	}
}

func TestBuilderErrAndClear(t *testing.T) {
	var bld sdfray.Builder
	bld.NewSphere(-1)
	bld.NewBox(0, 1, 1)
	err := bld.Err()
	if err == nil {
		t.Fatal("expected accumulated errors")
	}
	if !errors.Is(err, sdfray.ErrInvalidParameter) {
		t.Errorf("error %v does not wrap ErrInvalidParameter", err)
	}
	bld.ClearErrors()
	if err := bld.Err(); err != nil {
		t.Errorf("Err after ClearErrors = %v, want nil", err)
	}
}
