// SPDX-License-Identifier: GPL-2.0-or-later

// Package skeleton holds a resolved skeleton asset: joint hierarchy, bind
// pose and rest orientations, and the pose buffer written by the solvers.
package skeleton

import (
	"github.com/pkg/errors"

	"goquadruped/math/vec"
	"goquadruped/scene"
)

// Joint is a handle into a Skeleton's joint table.
type Joint int

const NoJoint Joint = -1

// JointDef is one joint of the bind pose. Translation and Rotation are
// relative to the parent joint.
type JointDef struct {
	Name        string
	Parent      Joint
	Translation vec.Vec3
	Rotation    vec.Quat
}

type Skeleton struct {
	name   string
	joints []JointDef
	byName map[string]Joint
}

// New validates and indexes a joint table. Parents must precede their
// children so forward kinematics is a single pass.
func New(name string, joints []JointDef) (*Skeleton, error) {
	s := &Skeleton{
		name:   name,
		joints: make([]JointDef, len(joints)),
		byName: make(map[string]Joint, len(joints)),
	}
	copy(s.joints, joints)
	for i, j := range s.joints {
		if j.Name == "" {
			return nil, errors.Errorf("skeleton %s: joint %d has no name", name, i)
		}
		if _, dup := s.byName[j.Name]; dup {
			return nil, errors.Errorf("skeleton %s: duplicate joint %q", name, j.Name)
		}
		if j.Parent != NoJoint && (j.Parent < 0 || int(j.Parent) >= i) {
			return nil, errors.Errorf("skeleton %s: joint %q has parent %d, parents must come first", name, j.Name, j.Parent)
		}
		s.joints[i].Rotation = j.Rotation.Normalize()
		s.byName[j.Name] = Joint(i)
	}
	return s, nil
}

func (s *Skeleton) Name() string {
	return s.name
}

func (s *Skeleton) Len() int {
	return len(s.joints)
}

func (s *Skeleton) Valid(j Joint) bool {
	return j >= 0 && int(j) < len(s.joints)
}

// Lookup resolves a bone name to its joint handle.
func (s *Skeleton) Lookup(name string) (Joint, bool) {
	j, ok := s.byName[name]
	return j, ok
}

func (s *Skeleton) JointName(j Joint) string {
	return s.joints[j].Name
}

func (s *Skeleton) Parent(j Joint) Joint {
	return s.joints[j].Parent
}

// Offset is the bind translation of j in its parent's frame.
func (s *Skeleton) Offset(j Joint) vec.Vec3 {
	return s.joints[j].Translation
}

// Rest is the bind local rotation of j.
func (s *Skeleton) Rest(j Joint) vec.Quat {
	return s.joints[j].Rotation
}

// Ancestors returns length joints ending at end, ordered root first.
// ok is false when the hierarchy is shorter than length.
func (s *Skeleton) Ancestors(end Joint, length int) ([]Joint, bool) {
	if length < 1 || !s.Valid(end) {
		return nil, false
	}
	out := make([]Joint, length)
	j := end
	for i := length - 1; i >= 0; i-- {
		if j == NoJoint {
			return nil, false
		}
		out[i] = j
		j = s.joints[j].Parent
	}
	return out, true
}

// Pose holds one local rotation per joint. Translations stay at the bind pose.
type Pose struct {
	Local []vec.Quat
}

func (s *Skeleton) RestPose() *Pose {
	p := &Pose{Local: make([]vec.Quat, len(s.joints))}
	for i, j := range s.joints {
		p.Local[i] = j.Rotation
	}
	return p
}

func (p *Pose) Clone() *Pose {
	c := &Pose{Local: make([]vec.Quat, len(p.Local))}
	copy(c.Local, p.Local)
	return c
}

// Model returns the skeleton space transform of every joint under pose p.
func (s *Skeleton) Model(p *Pose) []scene.Transform {
	out := make([]scene.Transform, len(s.joints))
	for i, j := range s.joints {
		local := scene.Identity()
		local.Translation = j.Translation
		local.Rotation = p.Local[i]
		if j.Parent == NoJoint {
			out[i] = local
		} else {
			out[i] = out[j.Parent].Mul(local)
		}
	}
	return out
}
