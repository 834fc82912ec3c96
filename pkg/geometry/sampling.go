package geometry

import (
	"math"
	"math/rand/v2"
)

// goldenAngle is the azimuth increment of the golden spiral, 2π/φ².
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// RandomPointInSphere returns a point uniformly distributed in the volume of
// the ball of given radius around center. The cube root on the radius avoids
// bunching samples near the center.
func RandomPointInSphere(rng *rand.Rand, center Vector3D, radius float64) Vector3D {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	r := radius * math.Cbrt(rng.Float64())
	return NewVectorSpherical(r, phi, theta).Add(center)
}

// RandomVectorInCube returns a vector with each component uniform in [-half, half).
func RandomVectorInCube(rng *rand.Rand, half float64) Vector3D {
	return Vector3D{
		X: (rng.Float64() - 0.5) * 2 * half,
		Y: (rng.Float64() - 0.5) * 2 * half,
		Z: (rng.Float64() - 0.5) * 2 * half,
	}
}

// SphereDirections returns n unit vectors spread evenly over the sphere
// along a golden spiral. The first direction is +Z and the last is -Z, so
// callers walking the slice try directions close to +Z first.
func SphereDirections(n int) []Vector3D {
	if n <= 0 {
		return nil
	}
	dirs := make([]Vector3D, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		inclination := math.Acos(1 - 2*t)
		azimuth := goldenAngle * float64(i)
		dirs[i] = NewVectorSpherical(1, inclination, azimuth).Normalize()
	}
	return dirs
}
