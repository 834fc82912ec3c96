package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestRandomPointInSphere_Uniform(t *testing.T) {
	const (
		samples = 10000
		radius  = 2.0
	)
	rng := rand.New(rand.NewPCG(1, 2))
	center := Vector3D{1, 2, 3}

	sum := 0.0
	outside := 0
	for i := 0; i < samples; i++ {
		p := RandomPointInSphere(rng, center, radius)
		d := p.DistanceTo(center)
		if d > radius+Epsilon {
			outside++
		}
		sum += d
	}

	if outside != 0 {
		t.Errorf("%d points fell outside radius %v", outside, radius)
	}
	// For a uniform ball the expected distance from the center is 3R/4.
	mean := sum / samples
	if want := 0.75 * radius; math.Abs(mean-want) > 0.02*radius {
		t.Errorf("mean distance = %v; want about %v", mean, want)
	}
}

func TestRandomVectorInCube(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 1000; i++ {
		v := RandomVectorInCube(rng, 3)
		if math.Abs(v.X) > 3 || math.Abs(v.Y) > 3 || math.Abs(v.Z) > 3 {
			t.Fatalf("vector %v outside cube of half size 3", v)
		}
	}
}

func TestSphereDirections(t *testing.T) {
	if got := SphereDirections(0); got != nil {
		t.Errorf("SphereDirections(0) = %v; want nil", got)
	}

	dirs := SphereDirections(100)
	if len(dirs) != 100 {
		t.Fatalf("len = %d; want 100", len(dirs))
	}
	if !vecNear(dirs[0], Vector3D{0, 0, 1}, 1e-12) {
		t.Errorf("first direction = %v; want +Z", dirs[0])
	}
	if !vecNear(dirs[99], Vector3D{0, 0, -1}, 1e-12) {
		t.Errorf("last direction = %v; want -Z", dirs[99])
	}

	var mean Vector3D
	for _, d := range dirs {
		if math.Abs(d.Len()-1) > 1e-9 {
			t.Errorf("direction %v is not a unit vector", d)
		}
		mean = mean.Add(d)
	}
	if l := mean.Mul(1.0 / 100).Len(); l > 0.05 {
		t.Errorf("directions are not evenly spread, mean length = %v", l)
	}
}
