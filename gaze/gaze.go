// SPDX-License-Identifier: GPL-2.0-or-later

// Package gaze turns head and eye joints toward a target.
package gaze

import (
	"goquadruped/math"
	"goquadruped/math/vec"
)

// Params of one tracked joint. Limit is the largest deviation from the rest
// rotation, 0 means unlimited. Speed is in radians per second, 0 snaps.
type Params struct {
	Forward vec.Vec3
	Limit   float32
	Speed   float32
}

// Input is the joint state read from the stage snapshot.
type Input struct {
	// ParentWorld is the world rotation of the joint's parent.
	ParentWorld vec.Quat
	Position    vec.Vec3
	Rest        vec.Quat
	Current     vec.Quat
	Target      vec.Vec3
	DT          float32
}

func (p Params) limit() float32 {
	if p.Limit <= 0 || p.Limit > math.Pi {
		return math.Pi
	}
	return p.Limit
}

// Desired is the local rotation aiming Forward at the target, clamped to
// the limit around rest.
func Desired(in Input, p Params) vec.Quat {
	forward := p.Forward
	if forward == vec.Zero {
		forward = vec.UnitY
	}
	dir := in.ParentWorld.Inverse().Rotate(vec.Sub(in.Target, in.Position))
	if dir.LengthSquared() < math.Epsilon*math.Epsilon {
		return in.Rest
	}
	q := vec.QuatBetween(in.Rest.Rotate(forward), dir).Mul(in.Rest).Normalize()
	return clamp(in.Rest, q, p.limit())
}

func clamp(rest, q vec.Quat, limit float32) vec.Quat {
	if a := vec.AngleBetween(rest, q); a > limit {
		return vec.Slerp(rest, q, limit/a)
	}
	return q
}

// Track slews the current rotation toward Desired by at most Speed*DT.
func Track(in Input, p Params) vec.Quat {
	want := Desired(in, p)
	if p.Speed <= 0 {
		return want
	}
	out := vec.RotateTowards(in.Current, want, p.Speed*in.DT)
	return clamp(in.Rest, out, p.limit())
}
