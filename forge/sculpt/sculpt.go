// Package sculpt provides ready-made composite shapes showcasing CSG
// and deformer combinations. The returned trees carry no material
// binding; bind one with [sdfray.Builder.WithMaterial] before handing
// the tree to a renderer.
package sculpt

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/sdfray/sdfray"
)

// SwissCheeseSphere is a sphere of the argument radius with holes smooth
// carved at points of a fibonacci spiral over the surface.
func SwissCheeseSphere(radius float32, holes int) (*sdfray.Field, error) {
	var bld sdfray.Builder
	if holes < 1 {
		holes = 8
	}
	body := bld.NewSphere(radius)
	const goldenAngle = math32.Pi * (3 - 2.2360679774997896964091736687747) // pi*(3-sqrt(5))
	for i := 0; i < holes; i++ {
		z := 1 - 2*(float32(i)+0.5)/float32(holes)
		r := math32.Sqrt(1 - z*z)
		sin, cos := math32.Sincos(goldenAngle * float32(i))
		hole := bld.NewSphere(radius * 0.35)
		hole = bld.Translate(hole, radius*r*cos, radius*r*sin, radius*z)
		body = bld.SmoothDifference(radius*0.08, body, hole)
	}
	return body, bld.Err()
}

// TwistedCylinder is a cylinder twisted around its own axis by rate
// radians per unit length.
func TwistedCylinder(radius, height, rate float32) (*sdfray.Field, error) {
	var bld sdfray.Builder
	// A round cylinder is twist-invariant; a hexagonal cross-section
	// makes the twist visible, as the original showcase did with a box.
	body := bld.NewHexagonalPrism(2*radius, height)
	body = bld.Twist(body, ms3.Vec{Z: 1}, rate)
	return body, bld.Err()
}

// OrganicBlob smooth-unions a cluster of spheres and perturbs the result
// with fractal noise for an organic look.
func OrganicBlob(radius float32, lumps int) (*sdfray.Field, error) {
	var bld sdfray.Builder
	if lumps < 2 {
		lumps = 5
	}
	body := bld.NewSphere(radius)
	for i := 0; i < lumps; i++ {
		ang := 2 * math32.Pi * float32(i) / float32(lumps)
		sin, cos := math32.Sincos(ang)
		lump := bld.NewSphere(radius * 0.6)
		lump = bld.Translate(lump, radius*0.8*cos, radius*0.8*sin, radius*0.3*sin)
		body = bld.SmoothUnion(radius*0.4, body, lump)
	}
	body = bld.Noise(body, 2/radius, radius*0.08, 3, 0.5)
	return body, bld.Err()
}

// ComplexSculpture intersects a rounded box with a sphere, drills
// cylinders through all three axes and twists the result. It exercises
// every node variant at once.
func ComplexSculpture(size float32) (*sdfray.Field, error) {
	var bld sdfray.Builder
	box := bld.NewBox(size, size, size)
	sphere := bld.NewSphere(size * 0.65)
	body := bld.Intersection(box, sphere)

	drill := bld.NewCylinder(size*0.22, 2*size)
	body = bld.Difference(body, drill)
	body = bld.Difference(body, bld.Rotate(drill, math32.Pi/2, ms3.Vec{X: 1}))
	body = bld.Difference(body, bld.Rotate(drill, math32.Pi/2, ms3.Vec{Y: 1}))

	body = bld.Twist(body, ms3.Vec{Z: 1}, 0.3/size)
	return body, bld.Err()
}
