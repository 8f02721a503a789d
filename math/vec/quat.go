package vec

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Quat is a rotation quaternion. The zero value is not a valid rotation,
// use QuatIdent.
type Quat struct {
	X, Y, Z, W float32
}

const degenerate = 1e-12

func QuatIdent() Quat {
	return Quat{W: 1}
}

func (q Quat) mgl() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func fromMglQuat(q mgl32.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// QuatAxisAngle returns the rotation of angle radians about axis.
// A zero axis yields the identity.
func QuatAxisAngle(axis Vec3, angle float32) Quat {
	n := axis.Normalize()
	if n == Zero {
		return QuatIdent()
	}
	return fromMglQuat(mgl32.QuatRotate(angle, n.mgl()))
}

// QuatBetween returns the shortest rotation turning a onto b.
func QuatBetween(a, b Vec3) Quat {
	if a.LengthSquared() < degenerate || b.LengthSquared() < degenerate {
		return QuatIdent()
	}
	return fromMglQuat(mgl32.QuatBetweenVectors(a.mgl(), b.mgl())).Normalize()
}

// Mul returns q*r, the rotation r followed by q.
func (q Quat) Mul(r Quat) Quat {
	return fromMglQuat(q.mgl().Mul(r.mgl()))
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return fromMgl(q.mgl().Rotate(v.mgl()))
}

// Inverse returns the inverse rotation.
func (q Quat) Inverse() Quat {
	return fromMglQuat(q.mgl().Inverse())
}

func (q Quat) Normalize() Quat {
	l := q.mgl().Len()
	if l < degenerate {
		return QuatIdent()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Dot returns the 4d dot product.
func (q Quat) Dot(r Quat) float32 {
	return q.mgl().Dot(r.mgl())
}

// Angle returns the rotation angle in [0, Pi].
func (q Quat) Angle() float32 {
	q = q.Normalize()
	s := Vec3{q.X, q.Y, q.Z}.Length()
	return 2 * math32.Atan2(s, math32.Abs(q.W))
}

// AxisAngle returns the axis and the angle in [0, Pi] of the rotation.
// The identity returns the X axis with angle 0.
func (q Quat) AxisAngle() (Vec3, float32) {
	q = q.Normalize()
	if q.W < 0 {
		q = Quat{-q.X, -q.Y, -q.Z, -q.W}
	}
	axis := Vec3{q.X, q.Y, q.Z}
	s := axis.Length()
	if s < 1e-7 {
		return UnitX, 0
	}
	return axis.Scale(1 / s), 2 * math32.Atan2(s, q.W)
}

// AngleBetween returns the angle of the rotation taking a to b.
func AngleBetween(a, b Quat) float32 {
	return a.Inverse().Mul(b).Angle()
}

// Slerp interpolates along the shortest arc from a to b.
func Slerp(a, b Quat, t float32) Quat {
	if a.Dot(b) < 0 {
		b = Quat{-b.X, -b.Y, -b.Z, -b.W}
	}
	return fromMglQuat(mgl32.QuatSlerp(a.mgl(), b.mgl(), t)).Normalize()
}

// RotateTowards moves from toward to by at most maxAngle radians.
func RotateTowards(from, to Quat, maxAngle float32) Quat {
	angle := AngleBetween(from, to)
	if angle <= maxAngle || angle < 1e-6 {
		return to.Normalize()
	}
	if maxAngle <= 0 {
		return from
	}
	return Slerp(from, to, maxAngle/angle)
}

// Twist returns the signed rotation angle of q about the unit axis,
// discarding the swing part. The result is within [-Pi, Pi].
func Twist(q Quat, axis Vec3) float32 {
	q = q.Normalize()
	p := Dot(Vec3{q.X, q.Y, q.Z}, axis)
	a := 2 * math32.Atan2(p, q.W)
	if a > math32.Pi {
		a -= 2 * math32.Pi
	} else if a < -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}

// QuatApproxEqual reports whether a and b describe rotations within eps radians.
func QuatApproxEqual(a, b Quat, eps float32) bool {
	return AngleBetween(a, b) <= eps
}

// QuatFromBasis returns the rotation whose matrix has the columns x, y, z.
// The columns must be orthonormal and right handed.
func QuatFromBasis(x, y, z Vec3) Quat {
	m := mgl32.Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
	return fromMglQuat(mgl32.Mat4ToQuat(m)).Normalize()
}
