// SPDX-License-Identifier: GPL-2.0-or-later

// Package constraint evaluates the joint constraints of an IK chain.
// Every function is pure; target positions are passed in by the caller,
// read from the stage snapshot.
package constraint

import (
	"goquadruped/math"
	"goquadruped/math/vec"
)

// Kind tags a constraint variant.
type Kind int

const (
	KindDirection Kind = iota
	KindHinge
	KindPole
)

func (k Kind) String() string {
	switch k {
	case KindDirection:
		return "direction"
	case KindHinge:
		return "hinge"
	case KindPole:
		return "pole"
	}
	return "unknown"
}

// HingeParams restricts a joint to one rotation axis, in the joint's rest
// frame, with the angle limited to [Min, Max] radians.
type HingeParams struct {
	Axis     vec.Vec3
	Min, Max float32
}

// HingeAngle returns the signed rotation of local about axis, measured from rest.
func HingeAngle(rest, local vec.Quat, axis vec.Vec3) float32 {
	return vec.Twist(rest.Inverse().Mul(local), axis.Normalize())
}

// Hinge projects local onto the hinge: the swing part relative to rest is
// dropped and the remaining angle is clamped, never rejected.
func Hinge(rest, local vec.Quat, h HingeParams) (vec.Quat, float32) {
	axis := h.Axis.Normalize()
	if axis == vec.Zero {
		axis = vec.UnitX
	}
	angle := math.Clamp(h.Min, HingeAngle(rest, local, axis), h.Max)
	return rest.Mul(vec.QuatAxisAngle(axis, angle)).Normalize(), angle
}

// Pole places joint, the middle of the two segment sub-chain root, joint,
// end, on the side of the root-end axis facing pole. Segment lengths are
// kept. Degenerate input returns joint unchanged.
func Pole(root, joint, end, pole vec.Vec3) vec.Vec3 {
	axis := vec.Sub(end, root)
	d := axis.Length()
	if d < math.Epsilon {
		return joint
	}
	axis = axis.Scale(1 / d)
	a := vec.Distance(joint, root)
	b := vec.Distance(end, joint)

	bend := vec.Reject(vec.Sub(pole, root), axis).Normalize()
	if bend == vec.Zero {
		bend = vec.Reject(vec.Sub(joint, root), axis).Normalize()
		if bend == vec.Zero {
			return joint
		}
	}
	x := (a*a - b*b + d*d) / (2 * d)
	h := float32(0)
	if h2 := a*a - x*x; h2 > 0 {
		h = math.Sqrt(h2)
	}
	return vec.Add(vec.Add(root, axis.Scale(x)), bend.Scale(h))
}

// Direction returns the local rotation turning the joint's forward axis
// toward to, seen from the joint position from. parentWorld is the rotation
// of the joint's parent in the solve space. ok is false when from and to
// coincide; current is returned then.
func Direction(parentWorld, current vec.Quat, forward, from, to vec.Vec3) (vec.Quat, bool) {
	dir := vec.Sub(to, from)
	if dir.LengthSquared() < math.Epsilon*math.Epsilon {
		return current, false
	}
	w := parentWorld.Mul(current)
	w = vec.QuatBetween(w.Rotate(forward), dir).Mul(w)
	return parentWorld.Inverse().Mul(w).Normalize(), true
}
