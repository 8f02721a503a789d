// SPDX-License-Identifier: GPL-2.0-or-later

// Package animator runs the per frame update of a loaded rig: body motion,
// gait, IK chains, directions and gaze, merged into one pose per skeleton.
package animator

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"goquadruped/conlog"
	"goquadruped/constraint"
	"goquadruped/frame"
	"goquadruped/gait"
	"goquadruped/gaze"
	"goquadruped/ik"
	"goquadruped/locomotion"
	"goquadruped/math/vec"
	"goquadruped/posecodec"
	"goquadruped/rig"
	"goquadruped/scene"
	"goquadruped/skeleton"
)

// Frame is the override map of one skeleton after a tick.
type Frame struct {
	Tick      uint64
	Model     int
	Overrides map[skeleton.Joint]vec.Quat
}

// Encode converts f into its wire form, overrides ordered by joint.
func (f Frame) Encode(time float64) *posecodec.Frame {
	out := &posecodec.Frame{Tick: f.Tick, Time: time, Model: uint32(f.Model)}
	for j, q := range f.Overrides {
		out.Overrides = append(out.Overrides, posecodec.Override{Joint: uint32(j), Rotation: q})
	}
	out.SortOverrides()
	return out
}

type player struct {
	entity int
	ctl    *locomotion.Controller
}

type quadruped struct {
	rig.Quadruped
	gait     *gait.Controller
	player   *locomotion.Controller
	bodyRest scene.Transform
	// anchor speeds of the last gait step
	speed [gait.NumLimbs]float32
}

type chain struct {
	rig.Chain
	hinge []*constraint.HingeParams
	pole  []int
}

// slot is the private output of one solver for one tick.
type slot struct {
	model  int
	joints []skeleton.Joint
	local  []vec.Quat
	ok     bool
}

type Animator struct {
	id    uuid.UUID
	rig   *rig.Rig
	scene *scene.Graph
	opts  Options

	poses      []*skeleton.Pose
	written    [][]skeleton.Joint
	players    []player
	quadrupeds []quadruped
	chains     []chain

	mu     sync.Mutex
	warned map[int]bool

	tick uint64
	time float64
}

// New attaches runtime state to r: a live scene, rest poses and one gait
// controller per quadruped with every foot planted where it is declared.
func New(r *rig.Rig, opts Options) (*Animator, error) {
	g, err := r.NewScene()
	if err != nil {
		return nil, errors.Wrap(err, "animator: scene")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "animator: id")
	}
	a := &Animator{
		id:     id,
		rig:    r,
		scene:  g,
		opts:   opts,
		warned: map[int]bool{},
	}
	for _, m := range r.Models {
		a.poses = append(a.poses, m.Skeleton.RestPose())
	}
	a.collectWriters()

	byEntity := map[int]*locomotion.Controller{}
	for _, p := range r.Players {
		ctl := locomotion.NewController(p.Params)
		byEntity[p.Entity] = ctl
		a.players = append(a.players, player{entity: p.Entity, ctl: ctl})
	}
	for _, q := range r.Quadrupeds {
		var feet [gait.NumLimbs]vec.Vec3
		for k, f := range q.Feet {
			feet[k], _ = g.WorldPosition(f)
		}
		st := quadruped{
			Quadruped: q,
			gait:      gait.NewController(q.Params, opts.Pattern, feet),
			player:    byEntity[q.Player],
		}
		if q.Body != rig.None {
			st.bodyRest, _ = g.Local(q.Body)
		}
		a.quadrupeds = append(a.quadrupeds, st)
	}

	for _, c := range r.Chains {
		st := chain{Chain: c, hinge: make([]*constraint.HingeParams, len(c.Joints)), pole: make([]int, len(c.Joints))}
		for k, j := range c.Joints {
			st.pole[k] = rig.None
			for _, con := range r.Constraints {
				if con.Model != c.Model || con.Joint != j {
					continue
				}
				switch con.Kind {
				case constraint.KindHinge:
					h := con.Hinge
					st.hinge[k] = &h
				case constraint.KindPole:
					st.pole[k] = con.Target
				}
			}
		}
		a.chains = append(a.chains, st)
	}
	conlog.Logger().Info("animator attached", "id", a.id.String(), "chains", len(a.chains), "quadrupeds", len(a.quadrupeds))
	return a, nil
}

// collectWriters lists, per model, every joint some solver writes.
func (a *Animator) collectWriters() {
	sets := make([]map[skeleton.Joint]bool, len(a.rig.Models))
	for i := range sets {
		sets[i] = map[skeleton.Joint]bool{}
	}
	for _, c := range a.rig.Chains {
		for _, j := range c.Joints[:len(c.Joints)-1] {
			sets[c.Model][j] = true
		}
	}
	for _, c := range a.rig.Constraints {
		if c.Kind == constraint.KindDirection {
			sets[c.Model][c.Joint] = true
		}
	}
	for _, t := range a.rig.Trackers {
		sets[t.Model][t.Joint] = true
	}
	a.written = make([][]skeleton.Joint, len(sets))
	for m, s := range sets {
		for j := range s {
			a.written[m] = append(a.written[m], j)
		}
		sort.Slice(a.written[m], func(x, y int) bool { return a.written[m][x] < a.written[m][y] })
	}
}

func (a *Animator) ID() uuid.UUID       { return a.id }
func (a *Animator) Scene() *scene.Graph { return a.scene }
func (a *Animator) Rig() *rig.Rig       { return a.rig }
func (a *Animator) TickCount() uint64   { return a.tick }
func (a *Animator) Time() float64       { return a.time }

// Pose returns a copy of the pose buffer of Models[model].
func (a *Animator) Pose(model int) *skeleton.Pose {
	return a.poses[model].Clone()
}

// Limb returns the gait state of limb i of quadruped q.
func (a *Animator) Limb(q, i int) gait.Limb {
	return a.quadrupeds[q].gait.Limb(i)
}

// Locomotion returns the body state of the player entity, false if the
// entity has no player.
func (a *Animator) Locomotion(entity int) (locomotion.State, bool) {
	for _, p := range a.players {
		if p.entity == entity {
			return p.ctl.State(), true
		}
	}
	return locomotion.State{}, false
}

// hold records that node is missing and the dependent output keeps its
// last value. Each node is reported once.
func (a *Animator) hold(node int, what string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.warned[node] {
		return
	}
	a.warned[node] = true
	conlog.Logger().Warn("target unavailable, holding last pose", "node", node, "user", what, "animator", a.id.String())
}

// each runs f for 0..n-1, concurrently when the options ask for it.
func (a *Animator) each(n int, f func(i int) error) error {
	if !a.opts.Parallel || n < 2 {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return f(i) })
	}
	return g.Wait()
}

// Tick advances the rig by dt seconds under the player intent and returns
// the overrides of every skeleton.
func (a *Animator) Tick(dt float32, in locomotion.Intent) ([]Frame, error) {
	a.tick++
	a.time += float64(dt)

	a.moveBodies(dt, in)
	if err := a.stepGaits(dt); err != nil {
		return nil, err
	}

	snap, err := a.scene.Snapshot()
	if err != nil {
		return nil, errors.Wrap(err, "animator: snapshot")
	}
	if err := a.solve(snap, dt); err != nil {
		return nil, err
	}
	a.fitBodies()

	frames := make([]Frame, len(a.poses))
	for m, p := range a.poses {
		f := Frame{Tick: a.tick, Model: m, Overrides: make(map[skeleton.Joint]vec.Quat, len(a.written[m]))}
		for _, j := range a.written[m] {
			f.Overrides[j] = p.Local[j]
		}
		frames[m] = f
	}
	conlog.Logger().Debug("tick", "tick", a.tick, "dt", dt)
	return frames, nil
}

func (a *Animator) moveBodies(dt float32, in locomotion.Intent) {
	for _, p := range a.players {
		p.ctl.Update(in, dt)
		local, ok := a.scene.Local(p.entity)
		if !ok || !a.scene.Available(p.entity) {
			a.hold(p.entity, "player")
			continue
		}
		a.scene.SetLocal(p.entity, p.ctl.Apply(local, dt))
	}
}

func (a *Animator) stepGaits(dt float32) error {
	for qi := range a.quadrupeds {
		q := &a.quadrupeds[qi]
		var in [gait.NumLimbs]gait.Input
		var have [gait.NumLimbs]bool
		body, bodyOK := a.scene.World(q.Player)
		for k, anchor := range q.Anchors {
			pos, ok := a.scene.WorldPosition(anchor)
			if !ok {
				a.hold(anchor, "gait anchor")
				continue
			}
			in[k].Anchor = pos
			if q.player != nil && bodyOK {
				in[k].Velocity = q.player.PointVelocity(body, pos)
			}
			q.speed[k] = in[k].Velocity.Length()
			have[k] = true
		}
		t := q.gait.Begin(dt, in)
		var feet [gait.NumLimbs]vec.Vec3
		err := a.each(gait.NumLimbs, func(k int) error {
			if have[k] {
				feet[k] = q.gait.Step(t, k, in[k])
			}
			return nil
		})
		if err != nil {
			return err
		}
		for k, foot := range q.Feet {
			if !have[k] {
				continue
			}
			if !a.scene.SetWorldPosition(foot, feet[k]) {
				a.hold(foot, "gait foot")
			}
		}
	}
	return nil
}

// solve runs the chains on the snapshot and the previous pose, then
// directions and trackers on top of the chain results.
func (a *Animator) solve(snap scene.Reader, dt float32) error {
	model := make([][]scene.Transform, len(a.poses))
	for m, p := range a.poses {
		model[m] = a.rig.Models[m].Skeleton.Model(p)
	}
	chains := make([]slot, len(a.chains))
	err := a.each(len(a.chains), func(i int) error {
		chains[i] = a.solveChain(snap, &a.chains[i], model[a.chains[i].Model])
		return nil
	})
	if err != nil {
		return err
	}
	a.merge(chains)

	for m, p := range a.poses {
		model[m] = a.rig.Models[m].Skeleton.Model(p)
	}
	var directions []rig.Constraint
	for _, c := range a.rig.Constraints {
		if c.Kind == constraint.KindDirection {
			directions = append(directions, c)
		}
	}
	trackers := a.rig.Trackers
	second := make([]slot, len(directions)+len(trackers))
	err = a.each(len(second), func(i int) error {
		if i < len(directions) {
			c := directions[i]
			second[i] = a.solveDirection(snap, c, model[c.Model])
		} else {
			t := trackers[i-len(directions)]
			second[i] = a.solveTracker(snap, t, model[t.Model], dt)
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.merge(second)
	return nil
}

func (a *Animator) merge(slots []slot) {
	for _, s := range slots {
		if !s.ok {
			continue
		}
		for k, j := range s.joints {
			a.poses[s.model].Local[j] = s.local[k]
		}
	}
}

// modelTarget returns the position of node in the space of Models[m].
func (a *Animator) modelTarget(snap scene.Reader, m, node int, what string) (vec.Vec3, bool) {
	root, ok := snap.World(a.rig.Models[m].Entity)
	if !ok {
		a.hold(a.rig.Models[m].Entity, what)
		return vec.Vec3{}, false
	}
	p, ok := snap.WorldPosition(node)
	if !ok {
		a.hold(node, what)
		return vec.Vec3{}, false
	}
	return root.InversePoint(p), true
}

func parentRotation(s *skeleton.Skeleton, model []scene.Transform, j skeleton.Joint) vec.Quat {
	if p := s.Parent(j); p != skeleton.NoJoint {
		return model[p].Rotation
	}
	return vec.QuatIdent()
}

func (a *Animator) solveChain(snap scene.Reader, c *chain, model []scene.Transform) slot {
	s := a.rig.Models[c.Model].Skeleton
	pose := a.poses[c.Model]
	target, ok := a.modelTarget(snap, c.Model, c.Target, "chain target")
	if !ok {
		return slot{}
	}
	n := len(c.Joints)
	ch := ik.Chain{
		Root:           model[c.Joints[0]].Translation,
		ParentRotation: parentRotation(s, model, c.Joints[0]),
		Links:          make([]ik.Link, n),
	}
	for k, j := range c.Joints {
		l := ik.Link{Rest: s.Rest(j), Local: pose.Local[j], Hinge: c.hinge[k]}
		if k+1 < n {
			l.Bone = s.Offset(c.Joints[k+1])
		}
		if c.pole[k] != rig.None {
			p, ok := a.modelTarget(snap, c.Model, c.pole[k], "pole")
			if !ok {
				return slot{}
			}
			l.Pole = &p
		}
		ch.Links[k] = l
	}
	res := ik.Solve(ch, target, a.opts.IK)
	return slot{model: c.Model, joints: c.Joints[:n-1], local: res.Local[:n-1], ok: true}
}

func (a *Animator) solveDirection(snap scene.Reader, c rig.Constraint, model []scene.Transform) slot {
	s := a.rig.Models[c.Model].Skeleton
	to, ok := a.modelTarget(snap, c.Model, c.Target, "direction")
	if !ok {
		return slot{}
	}
	local, ok := constraint.Direction(parentRotation(s, model, c.Joint), a.poses[c.Model].Local[c.Joint], c.Forward, model[c.Joint].Translation, to)
	if !ok {
		return slot{}
	}
	return slot{model: c.Model, joints: []skeleton.Joint{c.Joint}, local: []vec.Quat{local}, ok: true}
}

func (a *Animator) solveTracker(snap scene.Reader, t rig.Tracker, model []scene.Transform, dt float32) slot {
	s := a.rig.Models[t.Model].Skeleton
	target, ok := a.modelTarget(snap, t.Model, t.Target, "tracker")
	if !ok {
		return slot{}
	}
	q := gaze.Track(gaze.Input{
		ParentWorld: parentRotation(s, model, t.Joint),
		Position:    model[t.Joint].Translation,
		Rest:        s.Rest(t.Joint),
		Current:     a.poses[t.Model].Local[t.Joint],
		Target:      target,
		DT:          dt,
	}, t.Params)
	return slot{model: t.Model, joints: []skeleton.Joint{t.Joint}, local: []vec.Quat{q}, ok: true}
}

// fitBodies carries each body frame with the feet: the rigid motion taking
// the anchors onto the feet, raised or lowered by the gait bounce, is
// blended into the body's rest transform.
func (a *Animator) fitBodies() {
	for qi := range a.quadrupeds {
		q := &a.quadrupeds[qi]
		if q.Body == rig.None || q.FrameBlend == 0 {
			continue
		}
		parent, ok := a.scene.ParentWorld(q.Body)
		if !ok {
			a.hold(q.Body, "body frame")
			continue
		}
		var maxSpeed float32
		if q.player != nil {
			maxSpeed = q.player.MaxSpeed()
		}
		anchors := make([]vec.Vec3, 0, gait.NumLimbs)
		feet := make([]vec.Vec3, 0, gait.NumLimbs)
		for k := 0; k < gait.NumLimbs; k++ {
			ap, aok := a.scene.WorldPosition(q.Anchors[k])
			fp, fok := a.scene.WorldPosition(q.Feet[k])
			if !aok || !fok {
				continue
			}
			fp.Y += gait.Bounce(q.Params, q.gait.Limb(k), q.speed[k], maxSpeed)
			anchors = append(anchors, parent.InversePoint(ap))
			feet = append(feet, parent.InversePoint(fp))
		}
		trans, rot, err := frame.Fit(anchors, feet)
		if err != nil {
			conlog.Logger().Debug("body frame skipped", "entity", q.Body, "err", err)
			continue
		}
		a.scene.SetLocal(q.Body, frame.Blend(q.bodyRest, trans, rot, q.FrameBlend))
	}
}
