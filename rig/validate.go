// SPDX-License-Identifier: GPL-2.0-or-later

package rig

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"goquadruped/constraint"
	"goquadruped/scene"
	"goquadruped/skeleton"
)

// checkHierarchy rejects dangling parents and parent cycles.
func checkHierarchy(decls []entityDecl) error {
	g := simple.NewDirectedGraph()
	for i := range decls {
		g.AddNode(simple.Node(i))
	}
	for i, d := range decls {
		if d.parent == scene.NoParent {
			continue
		}
		if d.parent < 0 || d.parent >= len(decls) {
			return fieldErr(i, "parent", ErrUnknownEntity, "%d", d.parent)
		}
		if d.parent == i {
			return fieldErr(i, "parent", ErrCycle, "entity is its own parent")
		}
		g.SetEdge(g.NewEdge(simple.Node(d.parent), simple.Node(i)))
	}
	if _, err := topo.Sort(g); err != nil {
		cycles, ok := err.(topo.Unorderable)
		if !ok || len(cycles) == 0 {
			return fieldErr(None, "parent", ErrCycle, "%v", err)
		}
		return fieldErr(lowest(cycles[0]), "parent", ErrCycle, "entities %v", ids(cycles[0]))
	}
	return nil
}

func lowest(nodes []graph.Node) int {
	low := int(nodes[0].ID())
	for _, n := range nodes[1:] {
		if id := int(n.ID()); id < low {
			low = id
		}
	}
	return low
}

func ids(nodes []graph.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	return out
}

type jointKey struct {
	model int
	joint skeleton.Joint
}

type chainSlot struct {
	chain, index, length int
}

// writers enforces one writer per joint and checks that hinges and poles
// sit on joints a chain solves.
func (l *loader) writers() error {
	owner := map[jointKey]string{}
	claim := func(k jointKey, entity int, field, who string) error {
		if prev, ok := owner[k]; ok {
			name := l.r.Models[k.model].Skeleton.JointName(k.joint)
			return fieldErr(entity, field, ErrConflict, "%q is already written by %s", name, prev)
		}
		owner[k] = who
		return nil
	}

	slots := map[jointKey]chainSlot{}
	for ci, c := range l.r.Chains {
		for k, j := range c.Joints[:len(c.Joints)-1] {
			key := jointKey{c.Model, j}
			if err := claim(key, c.Entity, "chain", fmt.Sprintf("the chain of entity %d", c.Entity)); err != nil {
				return err
			}
			slots[key] = chainSlot{chain: ci, index: k, length: len(c.Joints)}
		}
	}

	seen := map[jointKey]map[constraint.Kind]int{}
	for _, c := range l.r.Constraints {
		key := jointKey{c.Model, c.Joint}
		field := "constrain." + c.Kind.String()
		if seen[key] == nil {
			seen[key] = map[constraint.Kind]int{}
		}
		if prev, dup := seen[key][c.Kind]; dup {
			return fieldErr(c.Entity, field, ErrConflict, "joint already has a %s from entity %d", c.Kind, prev)
		}
		seen[key][c.Kind] = c.Entity

		slot, inChain := slots[key]
		switch c.Kind {
		case constraint.KindDirection:
			if err := claim(key, c.Entity, field, fmt.Sprintf("the direction of entity %d", c.Entity)); err != nil {
				return err
			}
		case constraint.KindHinge:
			if !inChain {
				return fieldErr(c.Entity, field, ErrUnusedConstraint, "no chain solves this joint")
			}
		case constraint.KindPole:
			if !inChain || slot.index+2 >= slot.length {
				return fieldErr(c.Entity, field, ErrUnusedConstraint, "a pole needs two more chain joints below it")
			}
		}
	}

	for _, t := range l.r.Trackers {
		key := jointKey{t.Model, t.Joint}
		if err := claim(key, t.Entity, "tracker", fmt.Sprintf("the tracker of entity %d", t.Entity)); err != nil {
			return err
		}
	}
	return nil
}
