package march_test

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/sdfray/sdfray"
	"github.com/sdfray/sdfray/march"
)

func unitSphere(t *testing.T, m sdfray.Material) *sdfray.Field {
	t.Helper()
	var bld sdfray.Builder
	s := bld.WithMaterial(bld.NewSphere(1), m)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMarchHitSphere(t *testing.T) {
	s := unitSphere(t, 5)
	var m march.Marcher
	hit, outcome := m.March(s, march.Ray{
		Origin: ms3.Vec{Z: 5},
		Dir:    ms3.Vec{Z: -1},
		TMax:   100,
	})
	if outcome != march.Hit {
		t.Fatalf("outcome %v, want hit", outcome)
	}
	if math32.Abs(hit.T-4) > 1e-2 {
		t.Errorf("hit T %v, want ~4", hit.T)
	}
	if ms3.Norm(ms3.Sub(hit.Point, ms3.Vec{Z: 1})) > 1e-2 {
		t.Errorf("hit point %+v, want ~(0,0,1)", hit.Point)
	}
	if ms3.Norm(ms3.Sub(hit.Normal, ms3.Vec{Z: 1})) > 1e-2 {
		t.Errorf("hit normal %+v, want ~(0,0,1)", hit.Normal)
	}
	if n := ms3.Norm(hit.Normal); math32.Abs(n-1) > 1e-4 {
		t.Errorf("normal length %v, want 1", n)
	}
	if hit.Material != 5 {
		t.Errorf("hit material %d, want 5", hit.Material)
	}
}

func TestMarchMissPointingAway(t *testing.T) {
	s := unitSphere(t, 1)
	var m march.Marcher
	_, outcome := m.March(s, march.Ray{
		Origin: ms3.Vec{Z: 5},
		Dir:    ms3.Vec{Z: 1},
		TMax:   100,
	})
	if outcome != march.MissOutOfRange {
		t.Fatalf("outcome %v, want miss(out of range)", outcome)
	}
}

func TestMarchMissOffsetRay(t *testing.T) {
	s := unitSphere(t, 1)
	var m march.Marcher
	_, outcome := m.March(s, march.Ray{
		Origin: ms3.Vec{X: 3, Z: 5},
		Dir:    ms3.Vec{Z: -1},
		TMax:   100,
	})
	if outcome != march.MissOutOfRange {
		t.Fatalf("outcome %v, want miss(out of range)", outcome)
	}
}

func TestMarchTMaxLimitsHit(t *testing.T) {
	s := unitSphere(t, 1)
	var m march.Marcher
	_, outcome := m.March(s, march.Ray{
		Origin: ms3.Vec{Z: 5},
		Dir:    ms3.Vec{Z: -1},
		TMax:   2, // Surface lies at t=4, past the interval.
	})
	if outcome != march.MissOutOfRange {
		t.Fatalf("outcome %v, want miss(out of range)", outcome)
	}
}

// torusHoleRay marches straight through the hole of a z-axis torus: it
// crosses the bounds but never converges.
func torusHoleRay() march.Ray {
	return march.Ray{
		Origin: ms3.Vec{Z: 5},
		Dir:    ms3.Vec{Z: -1},
		TMax:   100,
	}
}

func TestMarchThroughTorusHole(t *testing.T) {
	var bld sdfray.Builder
	torus := bld.NewTorus(1, 0.25)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	var m march.Marcher
	_, outcome := m.March(torus, torusHoleRay())
	if outcome != march.MissOutOfRange {
		t.Fatalf("outcome %v, want miss(out of range)", outcome)
	}
}

func TestMarchMaxStepsExhausted(t *testing.T) {
	var bld sdfray.Builder
	torus := bld.NewTorus(1, 0.25)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	// Tiny steps starve the budget while still inside the bounds.
	m := march.Marcher{StepScale: 1e-3, MaxSteps: 8}
	_, outcome := m.March(torus, torusHoleRay())
	if outcome != march.MissMaxSteps {
		t.Fatalf("outcome %v, want miss(max steps)", outcome)
	}
}

func TestMarchNonFiniteRay(t *testing.T) {
	s := unitSphere(t, 1)
	nan := math32.NaN()
	var m march.Marcher
	for _, r := range []march.Ray{
		{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{X: nan, Z: -1}, TMax: 100},
		{Origin: ms3.Vec{X: nan, Z: 5}, Dir: ms3.Vec{Z: -1}, TMax: 100},
		{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: math32.Inf(-1)}, TMax: 100},
	} {
		hit, outcome := m.March(s, r)
		if outcome == march.Hit {
			t.Errorf("non-finite ray %+v reported a hit at %+v", r, hit)
		}
	}
}

func TestMarchHitDeformedShape(t *testing.T) {
	var bld sdfray.Builder
	shape := bld.WithMaterial(bld.Twist(bld.NewBox(1, 1, 2), ms3.Vec{Z: 1}, 0.8), 2)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	var m march.Marcher
	hit, outcome := m.March(shape, march.Ray{
		Origin: ms3.Vec{Z: 5},
		Dir:    ms3.Vec{Z: -1},
		TMax:   100,
	})
	if outcome != march.Hit {
		t.Fatalf("outcome %v, want hit", outcome)
	}
	// Twisting does not move the flat top face on the axis.
	if math32.Abs(hit.T-4) > 1e-2 {
		t.Errorf("hit T %v, want ~4", hit.T)
	}
	if hit.Material != 2 {
		t.Errorf("hit material %d, want 2", hit.Material)
	}
	if d := shape.Distance(hit.Point); math32.Abs(d) > 2e-4 {
		t.Errorf("hit point distance %v, want within epsilon of surface", d)
	}
}

func TestMarchTaperedOffAxisShape(t *testing.T) {
	// A uniform 0.5 taper moves an off-axis sphere radially inward; the
	// bounds pre-clip must follow the reshaped geometry or every ray at
	// the new location would miss.
	var bld sdfray.Builder
	shape := bld.WithMaterial(
		bld.Taper(bld.Translate(bld.NewSphere(1), 2, 0, 0), ms3.Vec{Z: 1}, 0.5, 0.5, 2), 3)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	var m march.Marcher
	hit, outcome := m.March(shape, march.Ray{
		Origin: ms3.Vec{X: 1, Z: 5},
		Dir:    ms3.Vec{Z: -1},
		TMax:   100,
	})
	if outcome != march.Hit {
		t.Fatalf("outcome %v, want hit", outcome)
	}
	if math32.Abs(hit.T-4) > 1e-2 {
		t.Errorf("hit T %v, want ~4", hit.T)
	}
	if hit.Material != 3 {
		t.Errorf("hit material %d, want 3", hit.Material)
	}
}

func TestNormalMatchesAnalytic(t *testing.T) {
	s := unitSphere(t, 1)
	var m march.Marcher
	for _, p := range []ms3.Vec{
		{Z: 1},
		{X: 1},
		{X: 0.70710678, Y: 0.70710678},
	} {
		n, ok := m.Normal(s, p)
		if !ok {
			t.Fatalf("normal at %+v not available", p)
		}
		want := ms3.Unit(p)
		if ms3.Norm(ms3.Sub(n, want)) > 1e-3 {
			t.Errorf("normal at %+v = %+v, want %+v", p, n, want)
		}
	}
}

func TestNormalDegenerateGradient(t *testing.T) {
	s := unitSphere(t, 1)
	var m march.Marcher
	// The sphere center has a vanishing central-difference gradient.
	if _, ok := m.Normal(s, ms3.Vec{}); ok {
		t.Error("degenerate gradient reported ok")
	}
}

func TestMarchConcurrentConsistency(t *testing.T) {
	var bld sdfray.Builder
	shape := bld.SmoothUnion(0.2,
		bld.NewSphere(1),
		bld.Translate(bld.NewBox(1, 1, 1), 0.8, 0, 0),
	)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	var m march.Marcher
	const n = 64
	rays := make([]march.Ray, n)
	for i := range rays {
		x := -2 + 4*float32(i)/float32(n-1)
		rays[i] = march.Ray{Origin: ms3.Vec{X: x, Z: 5}, Dir: ms3.Vec{Z: -1}, TMax: 100}
	}
	serialT := make([]float32, n)
	serialOutcome := make([]march.Outcome, n)
	for i, r := range rays {
		hit, outcome := m.March(shape, r)
		serialT[i] = hit.T
		serialOutcome[i] = outcome
	}
	var wg sync.WaitGroup
	for i := range rays {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hit, outcome := m.March(shape, rays[i])
			if outcome != serialOutcome[i] || hit.T != serialT[i] {
				t.Errorf("ray %d: concurrent result (%v, %v) differs from serial (%v, %v)",
					i, outcome, hit.T, serialOutcome[i], serialT[i])
			}
		}(i)
	}
	wg.Wait()
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[march.Outcome]string{
		march.Hit:            "hit",
		march.MissMaxSteps:   "miss(max steps)",
		march.MissOutOfRange: "miss(out of range)",
	} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", o, got, want)
		}
	}
}
