// SPDX-License-Identifier: GPL-2.0-or-later

package rig

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"goquadruped/math/vec"
	"goquadruped/scene"
)

// Kind is a component key of an entity declaration.
type Kind int

const (
	KindParent Kind = iota
	KindTransform
	KindModel
	KindPlayer
	KindQuadruped
	KindBinder
	KindChain
	KindConstrain
	KindTracker
	KindCamera
	KindLight
	KindAutoFov
	numKinds
)

var kindNames = [numKinds]string{
	"parent", "transform", "model", "player", "quadruped", "binder",
	"chain", "constrain", "tracker", "camera", "light", "auto_fov",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

func KindByName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

type vector []Scalar

func (v vector) vec3() (vec.Vec3, bool) {
	if len(v) != 3 {
		return vec.Vec3{}, false
	}
	return vec.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}, true
}

type transformDecl struct {
	Translation vector `json:"translation"`
	Rotation    vector `json:"rotation"`
	Scale       vector `json:"scale"`
}

type playerDecl struct {
	LinearSpeed  Scalar `json:"linear_speed"`
	AngularSpeed Scalar `json:"angular_speed"`
	Stiffness    Scalar `json:"stiffness"`
}

type quadrupedDecl struct {
	Feet               []int   `json:"feet"`
	Anchors            []int   `json:"anchors"`
	MaxAngularVelocity Scalar  `json:"max_angular_velocity"`
	MaxDutyFactor      Scalar  `json:"max_duty_factor"`
	StepLimit          vector  `json:"step_limit"`
	FlightTime         Scalar  `json:"flight_time"`
	FlightHeight       Scalar  `json:"flight_height"`
	GroundHeight       Scalar  `json:"ground_height"`
	StanceHeight       Scalar  `json:"stance_height"`
	BounceFactor       Scalar  `json:"bounce_factor"`
	Body               *int    `json:"body"`
	FrameBlend         *Scalar `json:"frame_blend"`
}

type chainDecl struct {
	Length int  `json:"length"`
	Target *int `json:"target"`
}

type directionDecl struct {
	Target  *int   `json:"target"`
	Forward vector `json:"forward"`
}

type hingeDecl struct {
	Min  *Scalar `json:"min"`
	Max  *Scalar `json:"max"`
	Axis vector  `json:"axis"`
}

type poleDecl struct {
	Target *int `json:"target"`
}

// constrainDecl holds exactly one variant.
type constrainDecl struct {
	Direction *directionDecl `json:"direction"`
	Hinge     *hingeDecl     `json:"hinge"`
	Pole      *poleDecl      `json:"pole"`
}

type trackerDecl struct {
	Target  *int   `json:"target"`
	Limit   Scalar `json:"limit"`
	Speed   Scalar `json:"speed"`
	Forward vector `json:"forward"`
}

// entityDecl is one decoded entity before references are resolved.
type entityDecl struct {
	index     int
	parent    int
	transform scene.Transform
	model     *string
	player    *playerDecl
	quadruped *quadrupedDecl
	binder    *string
	chain     *chainDecl
	constrain *constrainDecl
	tracker   *trackerDecl
}

type componentDecoder func(e *entityDecl, raw json.RawMessage) error

// decoders is the closed set of components. Rendering components are
// accepted and dropped.
var decoders = [numKinds]componentDecoder{
	KindParent: func(e *entityDecl, raw json.RawMessage) error {
		return strict(raw, &e.parent)
	},
	KindTransform: decodeTransform,
	KindModel: func(e *entityDecl, raw json.RawMessage) error {
		e.model = new(string)
		return strict(raw, e.model)
	},
	KindPlayer: func(e *entityDecl, raw json.RawMessage) error {
		e.player = new(playerDecl)
		return strict(raw, e.player)
	},
	KindQuadruped: func(e *entityDecl, raw json.RawMessage) error {
		e.quadruped = new(quadrupedDecl)
		return strict(raw, e.quadruped)
	},
	KindBinder: func(e *entityDecl, raw json.RawMessage) error {
		e.binder = new(string)
		return strict(raw, e.binder)
	},
	KindChain: func(e *entityDecl, raw json.RawMessage) error {
		e.chain = new(chainDecl)
		return strict(raw, e.chain)
	},
	KindConstrain: decodeConstrain,
	KindTracker: func(e *entityDecl, raw json.RawMessage) error {
		e.tracker = new(trackerDecl)
		return strict(raw, e.tracker)
	},
	KindCamera:  ignore,
	KindLight:   ignore,
	KindAutoFov: ignore,
}

func ignore(*entityDecl, json.RawMessage) error { return nil }

func strict(raw json.RawMessage, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.DisallowUnknownFields()
	return d.Decode(v)
}

func decodeTransform(e *entityDecl, raw json.RawMessage) error {
	var d transformDecl
	if err := strict(raw, &d); err != nil {
		return err
	}
	t := scene.Identity()
	if d.Translation != nil {
		v, ok := d.Translation.vec3()
		if !ok {
			return errors.Wrap(ErrRange, "translation needs 3 components")
		}
		t.Translation = v
	}
	if d.Scale != nil {
		v, ok := d.Scale.vec3()
		if !ok {
			return errors.Wrap(ErrRange, "scale needs 3 components")
		}
		t.Scale = v
	}
	if d.Rotation != nil {
		if len(d.Rotation) != 4 {
			return errors.Wrap(ErrRange, "rotation needs x, y, z, w")
		}
		q := vec.Quat{X: float32(d.Rotation[0]), Y: float32(d.Rotation[1]), Z: float32(d.Rotation[2]), W: float32(d.Rotation[3])}
		if q.Dot(q) < 1e-12 {
			return errors.Wrap(ErrRange, "rotation is zero")
		}
		t.Rotation = q.Normalize()
	}
	e.transform = t
	return nil
}

func decodeConstrain(e *entityDecl, raw json.RawMessage) error {
	var d constrainDecl
	if err := strict(raw, &d); err != nil {
		return err
	}
	n := 0
	for _, set := range []bool{d.Direction != nil, d.Hinge != nil, d.Pole != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return errors.Wrapf(ErrRange, "want exactly one of direction, hinge or pole, got %d", n)
	}
	e.constrain = &d
	return nil
}

type fileDecl struct {
	Entities []map[string]json.RawMessage `json:"entities"`
}

// decode parses the declaration. Component keys are handled in sorted
// order so the first error reported is stable.
func decode(data []byte) ([]entityDecl, error) {
	var f fileDecl
	if err := strict(data, &f); err != nil {
		return nil, &FieldError{Entity: -1, Field: "entities", Err: errors.Wrap(ErrSyntax, err.Error())}
	}
	out := make([]entityDecl, len(f.Entities))
	for i, raw := range f.Entities {
		e := &out[i]
		e.index = i
		e.parent = scene.NoParent
		e.transform = scene.Identity()
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kind, ok := KindByName(k)
			if !ok {
				return nil, fieldErr(i, k, ErrUnknownComponent, "%q", k)
			}
			if err := decoders[kind](e, raw[k]); err != nil {
				if errors.Is(err, ErrRange) {
					return nil, &FieldError{Entity: i, Field: k, Err: err}
				}
				return nil, fieldErr(i, k, ErrSyntax, "%v", err)
			}
		}
	}
	return out, nil
}
