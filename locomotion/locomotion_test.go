// SPDX-License-Identifier: GPL-2.0-or-later

package locomotion

import (
	"testing"

	"github.com/chewxy/math32"

	"goquadruped/math/vec"
	"goquadruped/scene"
)

var dog = Params{LinearSpeed: 4, AngularSpeed: 2, Stiffness: 6}

func TestTarget(t *testing.T) {
	c := NewController(dog)
	tests := []struct {
		in           Intent
		linear, turn float32
	}{
		{Intent{Forward: 1}, 2, 0},
		{Intent{Forward: 1, Run: true}, 4, 0},
		{Intent{Forward: -0.5, Turn: 1}, -1, 2},
		{Intent{Forward: 3, Turn: -7, Run: true}, 4, -2},
	}
	for _, test := range tests {
		l, a := c.Target(test.in)
		if l != test.linear || a != test.turn {
			t.Errorf("Target(%+v) = %v, %v want %v, %v", test.in, l, a, test.linear, test.turn)
		}
	}
}

func TestSpringNoOvershoot(t *testing.T) {
	for _, stiffness := range []float32{0.5, 6, 60} {
		p := dog
		p.Stiffness = stiffness
		c := NewController(p)
		prev := float32(0)
		for i := 0; i < 600; i++ {
			s := c.Update(Intent{Forward: 1, Run: true}, 1.0/60)
			if s.Linear > 4+1e-5 {
				t.Fatalf("stiffness %v: linear velocity %v overshot 4", stiffness, s.Linear)
			}
			if s.Linear < prev-1e-6 {
				t.Fatalf("stiffness %v: velocity went back from %v to %v", stiffness, prev, s.Linear)
			}
			prev = s.Linear
		}
		if stiffness >= 6 && math32.Abs(prev-4) > 1e-3 {
			t.Errorf("stiffness %v: settled at %v", stiffness, prev)
		}
	}
}

func TestStiffnessSpeedsConvergence(t *testing.T) {
	soft := NewController(Params{LinearSpeed: 1, Stiffness: 2})
	hard := NewController(Params{LinearSpeed: 1, Stiffness: 8})
	for i := 0; i < 10; i++ {
		soft.Update(Intent{Forward: 1, Run: true}, 0.02)
		hard.Update(Intent{Forward: 1, Run: true}, 0.02)
	}
	if soft.State().Linear >= hard.State().Linear {
		t.Errorf("soft %v is not slower than hard %v", soft.State().Linear, hard.State().Linear)
	}
}

func TestApply(t *testing.T) {
	c := &Controller{params: dog, state: State{Linear: 2}}
	root := scene.Identity()
	for i := 0; i < 100; i++ {
		root = c.Apply(root, 0.01)
	}
	if !vec.ApproxEqual(root.Translation, vec.Vec3{Z: 2}, 1e-4) {
		t.Errorf("root at %v want z 2", root.Translation)
	}

	c.state = State{Angular: math32.Pi / 2}
	root = c.Apply(scene.Identity(), 1)
	if got := root.Rotation.Rotate(vec.UnitZ); !vec.ApproxEqual(got, vec.UnitX, 1e-5) {
		t.Errorf("left turn faces %v want +x", got)
	}
}

func TestPointVelocity(t *testing.T) {
	c := &Controller{params: dog, state: State{Linear: 1, Angular: 2}}
	root := scene.Identity()
	got := c.PointVelocity(root, vec.Vec3{Z: 1})
	// forward 1 plus 2 rad/s about +y at 1m ahead
	if !vec.ApproxEqual(got, vec.Vec3{X: 2, Z: 1}, 1e-5) {
		t.Errorf("PointVelocity = %v", got)
	}
}
