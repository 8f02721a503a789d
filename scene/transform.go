// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"goquadruped/math/vec"
)

// Transform is a translation, rotation, scale triple. Composition assumes
// uniform or axis aligned scale, which is all a rig declaration produces.
type Transform struct {
	Translation vec.Vec3
	Rotation    vec.Quat
	Scale       vec.Vec3
}

func Identity() Transform {
	return Transform{
		Rotation: vec.QuatIdent(),
		Scale:    vec.One,
	}
}

// Mul returns t applied after c, i.e. the world transform of a child c of t.
func (t Transform) Mul(c Transform) Transform {
	return Transform{
		Translation: t.Point(c.Translation),
		Rotation:    t.Rotation.Mul(c.Rotation).Normalize(),
		Scale:       vec.MulComp(t.Scale, c.Scale),
	}
}

// Point maps a local point into the parent space.
func (t Transform) Point(p vec.Vec3) vec.Vec3 {
	return vec.Add(t.Translation, t.Vector(p))
}

// Vector maps a local direction into the parent space, ignoring translation.
func (t Transform) Vector(v vec.Vec3) vec.Vec3 {
	return t.Rotation.Rotate(vec.MulComp(t.Scale, v))
}

// InversePoint maps a parent space point into local space.
func (t Transform) InversePoint(p vec.Vec3) vec.Vec3 {
	return vec.MulComp(t.Rotation.Inverse().Rotate(vec.Sub(p, t.Translation)), inverseScale(t.Scale))
}

// InverseVector maps a parent space direction into local space.
func (t Transform) InverseVector(v vec.Vec3) vec.Vec3 {
	return vec.MulComp(t.Rotation.Inverse().Rotate(v), inverseScale(t.Scale))
}

func (t Transform) Inverse() Transform {
	r := t.Rotation.Inverse()
	s := inverseScale(t.Scale)
	return Transform{
		Translation: vec.MulComp(s, r.Rotate(t.Translation)).Neg(),
		Rotation:    r,
		Scale:       s,
	}
}

func inverseScale(s vec.Vec3) vec.Vec3 {
	inv := func(f float32) float32 {
		if f == 0 {
			return 0
		}
		return 1 / f
	}
	return vec.Vec3{X: inv(s.X), Y: inv(s.Y), Z: inv(s.Z)}
}
