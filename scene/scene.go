// SPDX-License-Identifier: GPL-2.0-or-later

// Package scene is the node arena of a rig: integer ids, a non owning parent
// index per node, local transforms and world transform composition.
package scene

import (
	"github.com/pkg/errors"
	"github.com/tiendc/go-deepcopy"

	"goquadruped/math/vec"
)

const NoParent = -1

type Node struct {
	Parent  int
	Local   Transform
	Removed bool
}

// Reader is the read side shared by a live Graph and a Snapshot.
type Reader interface {
	World(id int) (Transform, bool)
	WorldPosition(id int) (vec.Vec3, bool)
}

type Graph struct {
	nodes []Node
}

// New builds a graph from nodes. Parents must reference existing nodes and
// must not form a cycle; the rig loader validates both before calling New.
func New(nodes []Node) (*Graph, error) {
	g := &Graph{nodes: make([]Node, len(nodes))}
	copy(g.nodes, nodes)
	for id, n := range g.nodes {
		if n.Parent != NoParent && (n.Parent < 0 || n.Parent >= len(g.nodes)) {
			return nil, errors.Errorf("scene: node %d has unknown parent %d", id, n.Parent)
		}
		if _, ok := g.depth(id); !ok {
			return nil, errors.Errorf("scene: node %d is part of a parent cycle", id)
		}
	}
	return g, nil
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// depth walks up the parents, failing on cycles.
func (g *Graph) depth(id int) (int, bool) {
	d := 0
	for p := g.nodes[id].Parent; p != NoParent; p = g.nodes[p].Parent {
		d++
		if d > len(g.nodes) {
			return 0, false
		}
	}
	return d, true
}

// Available reports whether id exists and neither it nor an ancestor was removed.
func (g *Graph) Available(id int) bool {
	return available(g.nodes, id)
}

func available(nodes []Node, id int) bool {
	if id < 0 || id >= len(nodes) {
		return false
	}
	for n := id; n != NoParent; n = nodes[n].Parent {
		if nodes[n].Removed {
			return false
		}
	}
	return true
}

// world composes the local transforms from id up to its root.
func world(nodes []Node, id int) (Transform, bool) {
	if !available(nodes, id) {
		return Transform{}, false
	}
	w := nodes[id].Local
	for p := nodes[id].Parent; p != NoParent; p = nodes[p].Parent {
		w = nodes[p].Local.Mul(w)
	}
	return w, true
}

func (g *Graph) Remove(id int) {
	if id >= 0 && id < len(g.nodes) {
		g.nodes[id].Removed = true
	}
}

func (g *Graph) Local(id int) (Transform, bool) {
	if !g.Available(id) {
		return Transform{}, false
	}
	return g.nodes[id].Local, true
}

func (g *Graph) Parent(id int) int {
	if id < 0 || id >= len(g.nodes) {
		return NoParent
	}
	return g.nodes[id].Parent
}

func (g *Graph) SetLocal(id int, t Transform) bool {
	if !g.Available(id) {
		return false
	}
	g.nodes[id].Local = t
	return true
}

func (g *Graph) World(id int) (Transform, bool) {
	return world(g.nodes, id)
}

func (g *Graph) WorldPosition(id int) (vec.Vec3, bool) {
	w, ok := g.World(id)
	return w.Translation, ok
}

// ParentWorld returns the world transform of id's parent, identity for roots.
func (g *Graph) ParentWorld(id int) (Transform, bool) {
	if !g.Available(id) {
		return Transform{}, false
	}
	if p := g.nodes[id].Parent; p != NoParent {
		return g.World(p)
	}
	return Identity(), true
}

// SetWorldPosition moves node id so its world translation becomes p.
func (g *Graph) SetWorldPosition(id int, p vec.Vec3) bool {
	pw, ok := g.ParentWorld(id)
	if !ok {
		return false
	}
	g.nodes[id].Local.Translation = pw.InversePoint(p)
	return true
}

var (
	_ Reader = (*Graph)(nil)
	_ Reader = (*Snapshot)(nil)
)

// Snapshot is an immutable copy of the graph nodes with all world
// transforms resolved from the copy. Cross entity reads during a stage go
// through a snapshot so the evaluation order of solvers never changes their
// results.
type Snapshot struct {
	nodes []Node
	world []Transform
	ok    []bool
}

func (g *Graph) Snapshot() (*Snapshot, error) {
	s := &Snapshot{}
	if err := deepcopy.Copy(&s.nodes, g.nodes); err != nil {
		return nil, errors.Wrap(err, "scene: snapshot")
	}
	s.world = make([]Transform, len(s.nodes))
	s.ok = make([]bool, len(s.nodes))
	for id := range s.nodes {
		s.world[id], s.ok[id] = world(s.nodes, id)
	}
	return s, nil
}

func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Available reports availability at the time of the snapshot.
func (s *Snapshot) Available(id int) bool {
	return id >= 0 && id < len(s.ok) && s.ok[id]
}

// Local returns the copied local transform of id.
func (s *Snapshot) Local(id int) (Transform, bool) {
	if !s.Available(id) {
		return Transform{}, false
	}
	return s.nodes[id].Local, true
}

func (s *Snapshot) World(id int) (Transform, bool) {
	if id < 0 || id >= len(s.nodes) || !s.ok[id] {
		return Transform{}, false
	}
	return s.world[id], true
}

func (s *Snapshot) WorldPosition(id int) (vec.Vec3, bool) {
	w, ok := s.World(id)
	return w.Translation, ok
}
