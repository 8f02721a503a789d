// SPDX-License-Identifier: GPL-2.0-or-later

// Package gait drives the four feet of a quadruped through stance and
// swing from the body motion.
package gait

import (
	"goquadruped/conlog"
	"goquadruped/math"
	"goquadruped/math/vec"

	"github.com/chewxy/math32"
)

// MinDutyFactor is the lowest duty factor the controller ever uses.
const MinDutyFactor = 0.05

// Limbs are indexed in this order everywhere.
const (
	LeftHind = iota
	RightHind
	LeftFore
	RightFore
	NumLimbs
)

var limbNames = [NumLimbs]string{"left-hind", "right-hind", "left-fore", "right-fore"}

func LimbName(i int) string {
	if i < 0 || i >= NumLimbs {
		return "unknown"
	}
	return limbNames[i]
}

type Params struct {
	MaxAngularVelocity float32
	MaxDutyFactor      float32
	StepMin, StepMax   float32
	FlightTime         float32
	FlightHeight       float32
	GroundHeight       float32
	// StanceHeight is the rest height of the limb origins above the
	// ground. Zero disables the body bounce.
	StanceHeight float32
	// BounceFactor scales the lift of a limb origin during swing.
	BounceFactor float32
}

// DutyFactor is the stance fraction of a cycle at the given body speed.
// Faster bodies need shorter stances to keep the stride under StepMax;
// the turn rate of the legs puts a floor under it.
func DutyFactor(speed float32, p Params) float32 {
	stride := float32(1)
	if speed > 0 {
		stride = p.StepMax / (p.StepMax + speed*p.FlightTime)
	}
	floor := 1 - p.MaxAngularVelocity*p.FlightTime/math.Tau
	return math32.Min(p.MaxDutyFactor, math32.Max(math32.Max(stride, floor), MinDutyFactor))
}

// Period is the cycle length for duty factor d. A limb that never swings
// has an infinite period.
func Period(d, flightTime float32) float32 {
	if d >= 1 {
		return math32.Inf(1)
	}
	return flightTime / (1 - d)
}

func StanceDuration(d, flightTime float32) float32 {
	return d * Period(d, flightTime)
}

// SwingArc is the foot position at swing progress s in [0,1]. Horizontal
// motion eases in and out, height follows a half sine.
func SwingArc(lift, land vec.Vec3, height, s float32) vec.Vec3 {
	s = math.Clamp(0, s, 1)
	p := vec.Lerp(lift, land, math.Smoothstep(s))
	p.Y = math.Lerp(lift.Y, land.Y, s) + height*math32.Sin(math.Pi*s)
	return p
}

// Bounce is the vertical offset of a limb origin from its rest height.
// The origin sinks toward the height at which half of StepMax fits under a
// leg of StanceHeight as speed approaches maxSpeed, and rises along a
// parabola while the limb swings.
func Bounce(p Params, l Limb, speed, maxSpeed float32) float32 {
	if p.StanceHeight <= 0 {
		return 0
	}
	length := p.StanceHeight
	radius := p.StepMax / 2
	baseline := math32.Sqrt(math32.Max(length*length-radius*radius, 0))
	var f float32
	if maxSpeed > 0 {
		f = math.Clamp(0, speed/maxSpeed, 1)
	}
	off := math.Lerp(length, baseline, f) - length
	if l.Mode == Swing && p.FlightTime > 0 {
		s := math.Clamp(0, l.Timer/p.FlightTime, 1)
		off += 2 * p.BounceFactor * p.FlightTime * speed * s * (1 - s)
	}
	return off
}

type Mode int

const (
	Stance Mode = iota
	Swing
)

func (m Mode) String() string {
	if m == Swing {
		return "swing"
	}
	return "stance"
}

// Limb is the gait state of one leg.
type Limb struct {
	Phase float32
	Mode  Mode
	// Lift is where the current or last swing started.
	Lift vec.Vec3
	// Land is the predicted touch down point of the current swing.
	Land  vec.Vec3
	Foot  vec.Vec3
	Timer float32

	stepped bool
}

// Input is the per limb body motion: the anchor the foot returns under and
// its world velocity.
type Input struct {
	Anchor   vec.Vec3
	Velocity vec.Vec3
}

type Controller struct {
	params  Params
	pattern Pattern
	clock   float32
	limbs   [NumLimbs]Limb
}

// NewController plants every foot at its current position.
func NewController(p Params, pattern Pattern, feet [NumLimbs]vec.Vec3) *Controller {
	c := &Controller{params: p, pattern: pattern}
	for i := range c.limbs {
		c.limbs[i] = Limb{
			Phase: math.Wrap01(pattern[i]),
			Foot:  feet[i],
			Lift:  feet[i],
			Land:  feet[i],
		}
	}
	return c
}

func (c *Controller) Params() Params   { return c.params }
func (c *Controller) Pattern() Pattern { return c.pattern }
func (c *Controller) Limb(i int) Limb  { return c.limbs[i] }

func (c *Controller) Feet() [NumLimbs]vec.Vec3 {
	var out [NumLimbs]vec.Vec3
	for i := range c.limbs {
		out[i] = c.limbs[i].Foot
	}
	return out
}

// Tick holds the values shared by all limbs during one update.
type Tick struct {
	DT      float32
	Speed   float32
	Duty    float32
	Period  float32
	Stride  float32
	Idle    bool
	advance float32
	clock   float32
}

// Begin computes the shared clock for this update. speed is the fastest
// limb anchor speed over ground.
func (c *Controller) Begin(dt float32, in [NumLimbs]Input) Tick {
	var speed float32
	for _, l := range in {
		speed = math32.Max(speed, l.Velocity.Horizontal().Length())
	}
	p := c.params
	t := Tick{DT: dt, Speed: speed, clock: c.clock}
	t.Duty = DutyFactor(speed, p)
	t.Period = Period(t.Duty, p.FlightTime)
	if t.Duty < 1 {
		t.Stride = speed * t.Duty * t.Period
	}
	t.Idle = t.Duty >= 1 || t.Stride < p.StepMin
	if !t.Idle {
		t.advance = math32.Min(dt/t.Period, 1)
		c.clock = math.Wrap01(c.clock + t.advance)
	}
	return t
}

// Step advances limb i and returns its foot target. It only touches the
// state of that limb so limbs may step concurrently after Begin.
func (c *Controller) Step(t Tick, i int, in Input) vec.Vec3 {
	p := c.params
	l := &c.limbs[i]
	before := math.Wrap01(t.clock + c.pattern[i])
	after := before + t.advance
	l.Phase = math.Wrap01(after)
	crossed := (before < t.Duty && after >= t.Duty) || after >= 1+t.Duty
	if after >= 1 {
		l.stepped = false
	}

	switch l.Mode {
	case Stance:
		if t.Duty >= 1 {
			break
		}
		drift := vec.Sub(l.Foot, in.Anchor).Horizontal().Length()
		if (!t.Idle && crossed && !l.stepped) || drift >= p.StepMax {
			l.Mode = Swing
			l.Lift = l.Foot
			l.Timer = 0
			l.stepped = true
			conlog.Logger().Debug("gait: lift off", "limb", LimbName(i), "phase", l.Phase, "drift", drift)
		}
	case Swing:
		l.Timer += t.DT
		l.Land = c.landing(t, in, p.FlightTime-l.Timer)
		if l.Timer >= p.FlightTime {
			l.Foot = l.Land
			l.Mode = Stance
			conlog.Logger().Debug("gait: touch down", "limb", LimbName(i), "at", l.Foot)
			break
		}
		l.Foot = SwingArc(l.Lift, l.Land, p.FlightHeight, l.Timer/p.FlightTime)
	}
	return l.Foot
}

// landing predicts where the anchor will be when the swing ends and puts
// the foot half a stride ahead of it on the ground.
func (c *Controller) landing(t Tick, in Input, remaining float32) vec.Vec3 {
	p := c.params
	remaining = math32.Max(remaining, 0)
	land := vec.Add(in.Anchor, in.Velocity.Scale(remaining))
	land.Y = p.GroundHeight
	ahead := math32.Min(t.Stride/2, p.StepMax/2)
	return vec.Add(land, in.Velocity.Horizontal().Normalize().Scale(ahead))
}

// Update runs Begin and every Step in order.
func (c *Controller) Update(dt float32, in [NumLimbs]Input) [NumLimbs]vec.Vec3 {
	t := c.Begin(dt, in)
	var out [NumLimbs]vec.Vec3
	for i := range in {
		out[i] = c.Step(t, i, in[i])
	}
	return out
}
