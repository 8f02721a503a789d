// SPDX-License-Identifier: GPL-2.0-or-later

// Package locomotion turns player intents into smoothed body velocity and
// moves the body root with it.
package locomotion

import (
	"github.com/chewxy/math32"

	"goquadruped/math"
	"goquadruped/math/vec"
	"goquadruped/scene"
)

// WalkFraction scales the linear speed when not running.
const WalkFraction = 0.5

// Intent is the player's request for one tick. Forward and Turn are in
// [-1, 1], positive Turn is to the left.
type Intent struct {
	Forward float32
	Turn    float32
	Run     bool
}

type Params struct {
	LinearSpeed  float32
	AngularSpeed float32
	Stiffness    float32
}

// State is the body velocity. Linear is along body +Z in m/s, Angular is
// about body +Y in rad/s.
type State struct {
	Linear      float32
	LinearRate  float32
	Angular     float32
	AngularRate float32
}

type Controller struct {
	params Params
	state  State
}

func NewController(p Params) *Controller {
	return &Controller{params: p}
}

func (c *Controller) State() State { return c.state }

// MaxSpeed is the running linear speed.
func (c *Controller) MaxSpeed() float32 { return c.params.LinearSpeed }

// Target is the velocity the intent asks for.
func (c *Controller) Target(in Intent) (linear, angular float32) {
	scale := float32(WalkFraction)
	if in.Run {
		scale = 1
	}
	linear = math.Clamp(-1, in.Forward, 1) * c.params.LinearSpeed * scale
	angular = math.Clamp(-1, in.Turn, 1) * c.params.AngularSpeed
	return linear, angular
}

// Update moves both channels toward the target along a critically damped
// spring.
func (c *Controller) Update(in Intent, dt float32) State {
	linear, angular := c.Target(in)
	s := &c.state
	s.Linear, s.LinearRate = spring(s.Linear, s.LinearRate, linear, c.params.Stiffness, dt)
	s.Angular, s.AngularRate = spring(s.Angular, s.AngularRate, angular, c.params.Stiffness, dt)
	return c.state
}

// spring is the exact step of x'' = -2w x' - w^2 (x - target).
func spring(x, rate, target, omega, dt float32) (float32, float32) {
	if omega <= 0 || dt <= 0 {
		return x, rate
	}
	e := x - target
	k := (rate + omega*e) * dt
	decay := math32.Exp(-omega * dt)
	return target + (e+k)*decay, (rate - omega*k) * decay
}

// Apply yaws the root and then moves it along its new forward axis.
func (c *Controller) Apply(root scene.Transform, dt float32) scene.Transform {
	root.Rotation = root.Rotation.Mul(vec.QuatAxisAngle(vec.UnitY, c.state.Angular*dt)).Normalize()
	step := root.Rotation.Rotate(vec.UnitZ).Scale(c.state.Linear * dt)
	root.Translation = vec.Add(root.Translation, step)
	return root
}

// WorldVelocity is the linear velocity of the root in world space.
func (c *Controller) WorldVelocity(root scene.Transform) vec.Vec3 {
	return root.Rotation.Rotate(vec.UnitZ).Scale(c.state.Linear)
}

// AngularVelocity is the world space angular velocity vector of the root.
func (c *Controller) AngularVelocity(root scene.Transform) vec.Vec3 {
	return root.Rotation.Rotate(vec.UnitY).Scale(c.state.Angular)
}

// PointVelocity is the velocity of a point rigidly attached to the root.
func (c *Controller) PointVelocity(root scene.Transform, p vec.Vec3) vec.Vec3 {
	r := vec.Sub(p, root.Translation)
	return vec.Add(c.WorldVelocity(root), vec.Cross(c.AngularVelocity(root), r))
}
