package geometry

import "math"

// Ray is a half line starting at Origin and going along Direction.
// Direction is expected to be a unit vector, NewRay takes care of it.
type Ray struct {
	Origin    Vector3D
	Direction Vector3D
}

// NewRay creates a ray with a normalized direction.
func NewRay(origin, direction Vector3D) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vector3D {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectSphere returns the distance to the nearest intersection with the
// sphere that lies in [0, maxDistance]. A ray starting inside the sphere
// hits its far side.
func (r Ray) IntersectSphere(center Vector3D, radius, maxDistance float64) (float64, bool) {
	if r.Direction.IsZero() {
		return 0, false
	}
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.LenSqr() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDistance {
		return 0, false
	}
	return t, true
}

// IntersectAABB returns the distance to the nearest intersection with the
// axis aligned box [min, max] that lies in [0, maxDistance].
// A ray starting inside the box hits its exit face.
func (r Ray) IntersectAABB(min, max Vector3D, maxDistance float64) (float64, bool) {
	if r.Direction.IsZero() {
		return 0, false
	}
	o := r.Origin.Slice()
	d := r.Direction.Slice()
	lo := min.Slice()
	hi := max.Slice()

	tNear := math.Inf(-1)
	tFar := math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < Epsilon {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, false
		}
	}
	if tFar < 0 {
		return 0, false
	}
	t := tNear
	if t < 0 {
		t = tFar
	}
	if t > maxDistance {
		return 0, false
	}
	return t, true
}

// Bounds returns the axis aligned box enclosing the segment [0, maxDistance] of the ray.
func (r Ray) Bounds(maxDistance float64) (Vector3D, Vector3D) {
	end := r.At(maxDistance)
	return r.Origin.Min(end), r.Origin.Max(end)
}
