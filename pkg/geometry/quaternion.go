package geometry

import (
	"fmt"
	"math"
)

// Quaternion represents a rotation in 3D space. Only unit quaternions are
// meaningful as rotations; the helpers in this file keep them normalized.
type Quaternion struct {
	X, Y, Z, W float64
}

// IdentityQuaternion is the "no rotation" quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// NewQuaternionAxisAngle creates a rotation of angle radians around axis.
func NewQuaternionAxisAngle(axis Vector3D, angle float64) Quaternion {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quaternion{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: math.Cos(angle / 2)}
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f, %.3f)", q.X, q.Y, q.Z, q.W)
}

// Mul returns the Hamilton product q*other (apply other first, then q).
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.X*other.W + q.W*other.X + q.Y*other.Z - q.Z*other.Y,
		Y: q.Y*other.W + q.W*other.Y + q.Z*other.X - q.X*other.Z,
		Z: q.Z*other.W + q.W*other.Z + q.X*other.Y - q.Y*other.X,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Conjugate is the inverse rotation of a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Len returns the norm of the quaternion.
func (q Quaternion) Len() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns the unit quaternion, or identity for a degenerate one.
func (q Quaternion) Normalize() Quaternion {
	l := q.Len()
	if l < Epsilon {
		return IdentityQuaternion()
	}
	return Quaternion{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Rotate applies the rotation to v.
func (q Quaternion) Rotate(v Vector3D) Vector3D {
	u := Vector3D{q.X, q.Y, q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// Eq compares two quaternions component-wise with Epsilon tolerance.
func (q Quaternion) Eq(other Quaternion) bool {
	return math.Abs(q.X-other.X) <= Epsilon &&
		math.Abs(q.Y-other.Y) <= Epsilon &&
		math.Abs(q.Z-other.Z) <= Epsilon &&
		math.Abs(q.W-other.W) <= Epsilon
}

// QuaternionFromRotationMatrix builds the rotation whose matrix has the
// given orthonormal basis as columns.
func QuaternionFromRotationMatrix(xAxis, yAxis, zAxis Vector3D) Quaternion {
	m11, m12, m13 := xAxis.X, yAxis.X, zAxis.X
	m21, m22, m23 := xAxis.Y, yAxis.Y, zAxis.Y
	m31, m32, m33 := xAxis.Z, yAxis.Z, zAxis.Z

	var q Quaternion
	trace := m11 + m22 + m33
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1.0)
		q = Quaternion{W: 0.25 / s, X: (m32 - m23) * s, Y: (m13 - m31) * s, Z: (m21 - m12) * s}
	case m11 > m22 && m11 > m33:
		s := 2.0 * math.Sqrt(1.0+m11-m22-m33)
		q = Quaternion{W: (m32 - m23) / s, X: 0.25 * s, Y: (m12 + m21) / s, Z: (m13 + m31) / s}
	case m22 > m33:
		s := 2.0 * math.Sqrt(1.0+m22-m11-m33)
		q = Quaternion{W: (m13 - m31) / s, X: (m12 + m21) / s, Y: 0.25 * s, Z: (m23 + m32) / s}
	default:
		s := 2.0 * math.Sqrt(1.0+m33-m11-m22)
		q = Quaternion{W: (m21 - m12) / s, X: (m13 + m31) / s, Y: (m23 + m32) / s, Z: 0.25 * s}
	}
	return q.Normalize()
}

// LookAtQuaternion returns the orientation that turns an object's local +Z
// axis from eye toward target, keeping its local +Y as close to up as possible.
// When the facing is parallel to up it is nudged slightly so a basis exists.
func LookAtQuaternion(eye, target, up Vector3D) Quaternion {
	z := target.Sub(eye)
	if z.LenSqr() == 0 {
		z.Z = 1
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.LenSqr() < Epsilon*Epsilon {
		if math.Abs(up.Z) == 1 {
			z.X += 0.0001
		} else {
			z.Z += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	return QuaternionFromRotationMatrix(x, y, z)
}
