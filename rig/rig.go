// SPDX-License-Identifier: GPL-2.0-or-later

// Package rig loads the declarative description of an animated quadruped
// and resolves it against its skeletons. A loaded Rig is immutable.
package rig

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"goquadruped/conlog"
	"goquadruped/constraint"
	"goquadruped/gait"
	"goquadruped/gaze"
	"goquadruped/locomotion"
	"goquadruped/math"
	"goquadruped/math/vec"
	"goquadruped/scene"
	"goquadruped/skeleton"
)

// AssetSource resolves model references to skeletons.
type AssetSource interface {
	Skeleton(ref string) (*skeleton.Skeleton, error)
}

// None marks an absent entity reference.
const None = -1

type Model struct {
	Entity   int
	Ref      string
	Skeleton *skeleton.Skeleton
}

// Binder ties an entity to a joint of Models[Model].
type Binder struct {
	Entity int
	Model  int
	Bone   string
	Joint  skeleton.Joint
}

// Chain is solved from Joints[0] to the end effector Joints[len-1]. It
// writes every joint but the last.
type Chain struct {
	Entity int
	Model  int
	Joints []skeleton.Joint
	Target int
}

type Constraint struct {
	Entity int
	Model  int
	Joint  skeleton.Joint
	Kind   constraint.Kind
	// Target is the direction or pole target, None for hinges.
	Target  int
	Hinge   constraint.HingeParams
	Forward vec.Vec3
}

type Tracker struct {
	Entity int
	Model  int
	Joint  skeleton.Joint
	Target int
	Params gaze.Params
}

type Player struct {
	Entity int
	Params locomotion.Params
}

// Quadruped drives four feet. Limb arrays are ordered left-hind,
// right-hind, left-fore, right-fore.
type Quadruped struct {
	Entity  int
	Feet    [gait.NumLimbs]int
	Anchors [gait.NumLimbs]int
	Params  gait.Params
	// Player is the entity whose motion drives the gait, None if static.
	Player     int
	Body       int
	FrameBlend float32
}

type Rig struct {
	Nodes       []scene.Node
	Models      []Model
	Binders     []Binder
	Chains      []Chain
	Constraints []Constraint
	Trackers    []Tracker
	Players     []Player
	Quadrupeds  []Quadruped
}

// NewScene builds a fresh scene graph from the declared transforms.
func (r *Rig) NewScene() (*scene.Graph, error) {
	return scene.New(r.Nodes)
}

const tracerName = "goquadruped/rig"

// Load decodes, validates and resolves a rig declaration. Any error rejects
// the whole rig and is a *FieldError.
func Load(ctx context.Context, data []byte, src AssetSource) (*Rig, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "rig.Load")
	defer span.End()

	r, err := load(data, src)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("rig.entities", len(r.Nodes)),
		attribute.Int("rig.chains", len(r.Chains)),
		attribute.Int("rig.trackers", len(r.Trackers)),
	)
	conlog.Logger().Info("rig loaded",
		"entities", len(r.Nodes),
		"models", len(r.Models),
		"chains", len(r.Chains),
		"constraints", len(r.Constraints),
		"trackers", len(r.Trackers),
		"quadrupeds", len(r.Quadrupeds))
	return r, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func load(data []byte, src AssetSource) (*Rig, error) {
	decls, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := checkHierarchy(decls); err != nil {
		return nil, err
	}
	l := &loader{decls: decls, src: src, r: &Rig{}, modelOf: map[int]int{}}
	steps := []func() error{
		l.nodes,
		l.models,
		l.binders,
		l.chains,
		l.constraints,
		l.trackers,
		l.players,
		l.quadrupeds,
		l.writers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return l.r, nil
}

type loader struct {
	decls []entityDecl
	src   AssetSource
	r     *Rig
	// modelOf maps a model entity to its index in Models.
	modelOf map[int]int
	// binderOf maps an entity to the index of its binder.
	binderOf map[int]int
}

func (l *loader) ref(entity int, field string, target *int) (int, error) {
	if target == nil {
		return None, fieldErr(entity, field, ErrUnknownEntity, "missing")
	}
	if *target < 0 || *target >= len(l.decls) {
		return None, fieldErr(entity, field, ErrUnknownEntity, "%d", *target)
	}
	return *target, nil
}

func (l *loader) nodes() error {
	l.r.Nodes = make([]scene.Node, len(l.decls))
	for i, d := range l.decls {
		l.r.Nodes[i] = scene.Node{Parent: d.parent, Local: d.transform}
	}
	return nil
}

func (l *loader) models() error {
	for i, d := range l.decls {
		if d.model == nil {
			continue
		}
		s, err := l.src.Skeleton(*d.model)
		if err != nil {
			return &FieldError{Entity: i, Field: "model", Err: errors.Wrapf(ErrAsset, "%s: %v", *d.model, err)}
		}
		l.modelOf[i] = len(l.r.Models)
		l.r.Models = append(l.r.Models, Model{Entity: i, Ref: *d.model, Skeleton: s})
	}
	return nil
}

// modelFor finds the skeleton a binder on entity resolves against: the
// nearest model on the entity or its ancestors, else the only model.
func (l *loader) modelFor(entity int) (int, bool) {
	for e := entity; e != scene.NoParent; e = l.decls[e].parent {
		if m, ok := l.modelOf[e]; ok {
			return m, true
		}
	}
	if len(l.r.Models) == 1 {
		return 0, true
	}
	return 0, false
}

func (l *loader) binders() error {
	l.binderOf = map[int]int{}
	for i, d := range l.decls {
		if d.binder == nil {
			continue
		}
		m, ok := l.modelFor(i)
		if !ok {
			return fieldErr(i, "binder", ErrNoModel, "%d models declared", len(l.r.Models))
		}
		s := l.r.Models[m].Skeleton
		j, ok := s.Lookup(*d.binder)
		if !ok {
			return fieldErr(i, "binder", ErrUnknownBone, "%q in %s", *d.binder, s.Name())
		}
		l.binderOf[i] = len(l.r.Binders)
		l.r.Binders = append(l.r.Binders, Binder{Entity: i, Model: m, Bone: *d.binder, Joint: j})
	}
	return nil
}

func (l *loader) binder(entity int, field string) (Binder, error) {
	b, ok := l.binderOf[entity]
	if !ok {
		return Binder{}, fieldErr(entity, field, ErrMissingBinder, "entity has no binder")
	}
	return l.r.Binders[b], nil
}

func (l *loader) chains() error {
	for i, d := range l.decls {
		if d.chain == nil {
			continue
		}
		b, err := l.binder(i, "chain")
		if err != nil {
			return err
		}
		target, err := l.ref(i, "chain.target", d.chain.Target)
		if err != nil {
			return err
		}
		if d.chain.Length < 2 {
			return fieldErr(i, "chain.length", ErrRange, "%d, a chain needs at least 2 joints", d.chain.Length)
		}
		joints, ok := l.r.Models[b.Model].Skeleton.Ancestors(b.Joint, d.chain.Length)
		if !ok {
			return fieldErr(i, "chain.length", ErrRange, "%d exceeds the depth of %q", d.chain.Length, b.Bone)
		}
		l.r.Chains = append(l.r.Chains, Chain{Entity: i, Model: b.Model, Joints: joints, Target: target})
	}
	return nil
}

func axisOr(v vector, def vec.Vec3, entity int, field string) (vec.Vec3, error) {
	if v == nil {
		return def, nil
	}
	a, ok := v.vec3()
	if !ok || a.LengthSquared() < math.Epsilon {
		return vec.Vec3{}, fieldErr(entity, field, ErrRange, "want a non zero 3 vector")
	}
	return a.Normalize(), nil
}

func (l *loader) constraints() error {
	for i, d := range l.decls {
		if d.constrain == nil {
			continue
		}
		b, err := l.binder(i, "constrain")
		if err != nil {
			return err
		}
		c := Constraint{Entity: i, Model: b.Model, Joint: b.Joint, Target: None}
		switch {
		case d.constrain.Direction != nil:
			c.Kind = constraint.KindDirection
			if c.Target, err = l.ref(i, "constrain.direction.target", d.constrain.Direction.Target); err != nil {
				return err
			}
			if c.Forward, err = axisOr(d.constrain.Direction.Forward, vec.UnitY, i, "constrain.direction.forward"); err != nil {
				return err
			}
		case d.constrain.Hinge != nil:
			h := d.constrain.Hinge
			c.Kind = constraint.KindHinge
			c.Hinge = constraint.HingeParams{Min: -math.Pi, Max: math.Pi}
			if h.Min != nil {
				c.Hinge.Min = float32(*h.Min)
			}
			if h.Max != nil {
				c.Hinge.Max = float32(*h.Max)
			}
			if c.Hinge.Min > c.Hinge.Max {
				return fieldErr(i, "constrain.hinge", ErrRange, "min %v > max %v", c.Hinge.Min, c.Hinge.Max)
			}
			if c.Hinge.Axis, err = axisOr(h.Axis, vec.UnitX, i, "constrain.hinge.axis"); err != nil {
				return err
			}
		case d.constrain.Pole != nil:
			c.Kind = constraint.KindPole
			if c.Target, err = l.ref(i, "constrain.pole.target", d.constrain.Pole.Target); err != nil {
				return err
			}
		}
		l.r.Constraints = append(l.r.Constraints, c)
	}
	return nil
}

func (l *loader) trackers() error {
	for i, d := range l.decls {
		if d.tracker == nil {
			continue
		}
		b, err := l.binder(i, "tracker")
		if err != nil {
			return err
		}
		t := Tracker{Entity: i, Model: b.Model, Joint: b.Joint}
		if t.Target, err = l.ref(i, "tracker.target", d.tracker.Target); err != nil {
			return err
		}
		t.Params.Limit = float32(d.tracker.Limit)
		t.Params.Speed = float32(d.tracker.Speed)
		if t.Params.Limit < 0 || t.Params.Speed < 0 {
			return fieldErr(i, "tracker", ErrRange, "limit %v and speed %v must not be negative", t.Params.Limit, t.Params.Speed)
		}
		if t.Params.Forward, err = axisOr(d.tracker.Forward, vec.UnitY, i, "tracker.forward"); err != nil {
			return err
		}
		l.r.Trackers = append(l.r.Trackers, t)
	}
	return nil
}

func (l *loader) players() error {
	for i, d := range l.decls {
		if d.player == nil {
			continue
		}
		p := locomotion.Params{
			LinearSpeed:  float32(d.player.LinearSpeed),
			AngularSpeed: float32(d.player.AngularSpeed),
			Stiffness:    float32(d.player.Stiffness),
		}
		if p.LinearSpeed < 0 || p.AngularSpeed < 0 {
			return fieldErr(i, "player", ErrRange, "speeds must not be negative")
		}
		if p.Stiffness <= 0 {
			return fieldErr(i, "player.stiffness", ErrRange, "%v, must be positive", p.Stiffness)
		}
		l.r.Players = append(l.r.Players, Player{Entity: i, Params: p})
	}
	return nil
}

func (l *loader) playerFor(entity int) int {
	for e := entity; e != scene.NoParent; e = l.decls[e].parent {
		if l.decls[e].player != nil {
			return e
		}
	}
	return None
}

func (l *loader) quadrupeds() error {
	for i, d := range l.decls {
		if d.quadruped == nil {
			continue
		}
		q := d.quadruped
		out := Quadruped{Entity: i, Player: l.playerFor(i), Body: None, FrameBlend: 1}
		if len(q.Feet) != gait.NumLimbs || len(q.Anchors) != gait.NumLimbs {
			return fieldErr(i, "quadruped", ErrRange, "want %d feet and anchors, got %d and %d", gait.NumLimbs, len(q.Feet), len(q.Anchors))
		}
		for k := 0; k < gait.NumLimbs; k++ {
			var err error
			if out.Feet[k], err = l.ref(i, "quadruped.feet", &q.Feet[k]); err != nil {
				return err
			}
			if out.Anchors[k], err = l.ref(i, "quadruped.anchors", &q.Anchors[k]); err != nil {
				return err
			}
		}
		if q.Body != nil {
			var err error
			if out.Body, err = l.ref(i, "quadruped.body", q.Body); err != nil {
				return err
			}
		}
		if q.FrameBlend != nil {
			out.FrameBlend = float32(*q.FrameBlend)
			if out.FrameBlend < 0 || out.FrameBlend > 1 {
				return fieldErr(i, "quadruped.frame_blend", ErrRange, "%v outside [0,1]", out.FrameBlend)
			}
		}
		if len(q.StepLimit) != 2 {
			return fieldErr(i, "quadruped.step_limit", ErrRange, "want [min, max]")
		}
		p := gait.Params{
			MaxAngularVelocity: float32(q.MaxAngularVelocity),
			MaxDutyFactor:      float32(q.MaxDutyFactor),
			StepMin:            float32(q.StepLimit[0]),
			StepMax:            float32(q.StepLimit[1]),
			FlightTime:         float32(q.FlightTime),
			FlightHeight:       float32(q.FlightHeight),
			GroundHeight:       float32(q.GroundHeight),
			StanceHeight:       float32(q.StanceHeight),
			BounceFactor:       float32(q.BounceFactor),
		}
		switch {
		case p.MaxDutyFactor <= 0 || p.MaxDutyFactor > 1:
			return fieldErr(i, "quadruped.max_duty_factor", ErrRange, "%v outside (0,1]", p.MaxDutyFactor)
		case p.StepMin < 0 || p.StepMin > p.StepMax:
			return fieldErr(i, "quadruped.step_limit", ErrRange, "min %v, max %v", p.StepMin, p.StepMax)
		case p.FlightTime <= 0:
			return fieldErr(i, "quadruped.flight_time", ErrRange, "%v, must be positive", p.FlightTime)
		case p.FlightHeight < 0:
			return fieldErr(i, "quadruped.flight_height", ErrRange, "%v is negative", p.FlightHeight)
		case p.MaxAngularVelocity < 0:
			return fieldErr(i, "quadruped.max_angular_velocity", ErrRange, "%v is negative", p.MaxAngularVelocity)
		case p.StanceHeight < 0:
			return fieldErr(i, "quadruped.stance_height", ErrRange, "%v is negative", p.StanceHeight)
		case p.BounceFactor < 0:
			return fieldErr(i, "quadruped.bounce_factor", ErrRange, "%v is negative", p.BounceFactor)
		}
		out.Params = p
		l.r.Quadrupeds = append(l.r.Quadrupeds, out)
	}
	return nil
}
