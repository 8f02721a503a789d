// SPDX-License-Identifier: GPL-2.0-or-later

// Package ik solves joint chains toward a target position with FABRIK,
// projecting the joint constraints after every pass.
package ik

import (
	"goquadruped/constraint"
	"goquadruped/math/vec"
)

// Link is one joint of a chain, in solve space.
type Link struct {
	// Bone is the offset of the next joint in this joint's frame. It is
	// zero for the end effector.
	Bone  vec.Vec3
	Rest  vec.Quat
	Local vec.Quat
	Hinge *constraint.HingeParams
	// Pole, if set, is the pole position for the sub-chain starting here.
	Pole *vec.Vec3
}

// Chain is ordered root first. Root is the position of the first joint and
// ParentRotation the world rotation of its parent.
type Chain struct {
	Root           vec.Vec3
	ParentRotation vec.Quat
	Links          []Link
}

type Options struct {
	Iterations int
	Tolerance  float32
}

type Result struct {
	Local      []vec.Quat
	Positions  []vec.Vec3
	Iterations int
	Converged  bool
	// Reachable is false when the target is at or beyond the chain length.
	Reachable bool
}

// Length is the sum of all bone lengths.
func (c *Chain) Length() float32 {
	var total float32
	for _, l := range c.Links {
		total += l.Bone.Length()
	}
	return total
}

// Positions runs forward kinematics over local, one rotation per link.
func (c *Chain) Positions(local []vec.Quat) []vec.Vec3 {
	pos := make([]vec.Vec3, len(c.Links))
	if len(pos) == 0 {
		return pos
	}
	pos[0] = c.Root
	w := c.ParentRotation
	for i := 0; i < len(c.Links)-1; i++ {
		w = w.Mul(local[i])
		pos[i+1] = vec.Add(pos[i], w.Rotate(c.Links[i].Bone))
	}
	return pos
}

// Solve moves the end effector toward target. Running out of iterations is
// not an error, the best pose found is returned.
func Solve(c Chain, target vec.Vec3, o Options) Result {
	n := len(c.Links)
	res := Result{Local: make([]vec.Quat, n)}
	for i, l := range c.Links {
		res.Local[i] = l.Local
	}
	pos := c.Positions(res.Local)
	res.Positions = pos
	if n < 2 {
		res.Reachable = n == 1 && vec.Distance(c.Root, target) <= o.Tolerance
		res.Converged = res.Reachable
		return res
	}

	lengths := make([]float32, n-1)
	var total float32
	for i := range lengths {
		lengths[i] = c.Links[i].Bone.Length()
		total += lengths[i]
	}
	res.Reachable = vec.Distance(c.Root, target) < total
	if res.Reachable {
		prebend(pos, &c, target, total)
	}

	for res.Iterations < o.Iterations {
		if vec.Distance(pos[n-1], target) <= o.Tolerance {
			res.Converged = true
			break
		}
		res.Iterations++
		if res.Reachable {
			fabrik(pos, lengths, c.Root, target)
		} else {
			straighten(pos, lengths, c.Root, target)
		}
		for i := 0; i+2 < n; i++ {
			if p := c.Links[i].Pole; p != nil {
				pos[i+1] = constraint.Pole(pos[i], pos[i+1], pos[i+2], *p)
			}
		}
		pos = c.project(res.Local, pos)
	}
	if !res.Converged {
		res.Converged = vec.Distance(pos[n-1], target) <= o.Tolerance
	}
	res.Positions = pos
	return res
}

func fabrik(pos []vec.Vec3, lengths []float32, root, target vec.Vec3) {
	n := len(pos)
	pos[n-1] = target
	for i := n - 2; i >= 0; i-- {
		d := vec.Sub(pos[i], pos[i+1]).Normalize()
		pos[i] = vec.Add(pos[i+1], d.Scale(lengths[i]))
	}
	pos[0] = root
	for i := 0; i < n-1; i++ {
		d := vec.Sub(pos[i+1], pos[i]).Normalize()
		pos[i+1] = vec.Add(pos[i], d.Scale(lengths[i]))
	}
}

// straighten lays the chain out on the line from root toward target.
func straighten(pos []vec.Vec3, lengths []float32, root, target vec.Vec3) {
	d := vec.Sub(target, root).Normalize()
	pos[0] = root
	for i := range lengths {
		pos[i+1] = vec.Add(pos[i], d.Scale(lengths[i]))
	}
}

// prebend nudges a fully straight chain off its line so the passes have a
// bend plane to work in. The first pole decides the side.
func prebend(pos []vec.Vec3, c *Chain, target vec.Vec3, total float32) {
	n := len(pos)
	if n < 3 {
		return
	}
	axis := vec.Sub(pos[n-1], pos[0]).Normalize()
	if axis == vec.Zero {
		return
	}
	eps := total * 1e-4
	for i := 1; i < n-1; i++ {
		if vec.Reject(vec.Sub(pos[i], pos[0]), axis).Length() > eps {
			return
		}
	}
	var side vec.Vec3
	for _, l := range c.Links {
		if l.Pole != nil {
			side = vec.Reject(vec.Sub(*l.Pole, pos[0]), axis).Normalize()
			break
		}
	}
	if side == vec.Zero {
		side = vec.Reject(vec.Sub(target, pos[0]), axis).Normalize()
	}
	if side == vec.Zero {
		side = vec.Reject(vec.UnitZ, axis).Normalize()
	}
	if side == vec.Zero {
		side = vec.UnitX
	}
	for i := 1; i < n-1; i++ {
		pos[i] = vec.Add(pos[i], side.Scale(total*0.01))
	}
}

// project turns solved positions into local rotations root to tip, clamps
// hinges and returns the positions reached by forward kinematics.
func (c *Chain) project(local []vec.Quat, pos []vec.Vec3) []vec.Vec3 {
	n := len(c.Links)
	out := make([]vec.Vec3, n)
	out[0] = c.Root
	parent := c.ParentRotation
	for i := 0; i < n-1; i++ {
		l := &c.Links[i]
		w := parent.Mul(local[i])
		want := vec.Sub(pos[i+1], out[i])
		w = vec.QuatBetween(w.Rotate(l.Bone), want).Mul(w)
		loc := parent.Inverse().Mul(w).Normalize()
		if l.Hinge != nil {
			loc, _ = constraint.Hinge(l.Rest, loc, *l.Hinge)
			w = parent.Mul(loc)
		}
		local[i] = loc
		out[i+1] = vec.Add(out[i], w.Rotate(l.Bone))
		parent = w
	}
	return out
}
