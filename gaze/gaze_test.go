// SPDX-License-Identifier: GPL-2.0-or-later

package gaze

import (
	"testing"

	"goquadruped/math/vec"
)

func TestLimitHoldsForAnyTarget(t *testing.T) {
	p := Params{Forward: vec.UnitZ, Limit: 0.5, Speed: 3}
	targets := []vec.Vec3{
		{Z: -10},        // straight behind
		{X: 1000, Z: 1}, // far to the side
		{Y: -5},
		{X: -1, Y: 2, Z: -3},
	}
	for _, target := range targets {
		in := Input{
			ParentWorld: vec.QuatAxisAngle(vec.UnitY, 0.3),
			Position:    vec.Vec3{Y: 1},
			Rest:        vec.QuatIdent(),
			Current:     vec.QuatIdent(),
			Target:      target,
			DT:          0.05,
		}
		for i := 0; i < 100; i++ {
			prev := in.Current
			in.Current = Track(in, p)
			if d := vec.AngleBetween(in.Rest, in.Current); d > p.Limit+1e-4 {
				t.Fatalf("target %v: deviation %v exceeds limit", target, d)
			}
			if step := vec.AngleBetween(prev, in.Current); step > p.Speed*in.DT+1e-4 {
				t.Fatalf("target %v: turned %v in one tick", target, step)
			}
		}
		if d := vec.AngleBetween(in.Rest, in.Current); d < p.Limit-1e-3 {
			t.Errorf("target %v: settled at %v, want the limit", target, d)
		}
	}
}

func TestAimsWithinLimit(t *testing.T) {
	p := Params{Forward: vec.UnitZ, Limit: 1.2, Speed: 2}
	in := Input{
		ParentWorld: vec.QuatIdent(),
		Rest:        vec.QuatIdent(),
		Current:     vec.QuatIdent(),
		Target:      vec.Vec3{X: 1, Z: 1},
		DT:          0.1,
	}
	for i := 0; i < 20; i++ {
		in.Current = Track(in, p)
	}
	got := in.Current.Rotate(vec.UnitZ)
	want := vec.Vec3{X: 1, Z: 1}.Normalize()
	if !vec.ApproxEqual(got, want, 1e-4) {
		t.Errorf("looking along %v want %v", got, want)
	}
}

func TestParentFrame(t *testing.T) {
	parent := vec.QuatAxisAngle(vec.UnitY, 1)
	in := Input{
		ParentWorld: parent,
		Rest:        vec.QuatIdent(),
		Current:     vec.QuatIdent(),
		Target:      vec.Vec3{Z: 10},
	}
	q := Desired(in, Params{Forward: vec.UnitZ})
	if got := parent.Mul(q).Rotate(vec.UnitZ); !vec.ApproxEqual(got, vec.UnitZ, 1e-4) {
		t.Errorf("world forward %v want +z", got)
	}
}

func TestTargetAtJoint(t *testing.T) {
	rest := vec.QuatAxisAngle(vec.UnitX, 0.2)
	in := Input{ParentWorld: vec.QuatIdent(), Rest: rest, Current: rest}
	if q := Desired(in, Params{}); q != rest {
		t.Errorf("coincident target gave %v", q)
	}
}
