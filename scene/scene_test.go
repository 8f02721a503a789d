// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"testing"

	"github.com/chewxy/math32"

	"goquadruped/math/vec"
)

func translated(p vec.Vec3) Transform {
	t := Identity()
	t.Translation = p
	return t
}

func testGraph(t *testing.T) *Graph {
	t.Helper()
	root := Identity()
	root.Translation = vec.Vec3{X: 1}
	root.Rotation = vec.QuatAxisAngle(vec.UnitY, math32.Pi/2)
	g, err := New([]Node{
		{Parent: NoParent, Local: root},
		{Parent: 0, Local: translated(vec.Vec3{Z: 2})},
		{Parent: 1, Local: translated(vec.Vec3{Y: 1})},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestWorldComposition(t *testing.T) {
	g := testGraph(t)
	got, ok := g.WorldPosition(2)
	if !ok {
		t.Fatalf("node 2 unavailable")
	}
	// z offset of 2 rotated 90deg about y becomes +x
	want := vec.Vec3{X: 3, Y: 1}
	if !vec.ApproxEqual(got, want, 1e-5) {
		t.Errorf("WorldPosition(2) = %v want %v", got, want)
	}
}

func TestSetWorldPosition(t *testing.T) {
	g := testGraph(t)
	target := vec.Vec3{X: -4, Y: 2, Z: 7}
	if !g.SetWorldPosition(2, target) {
		t.Fatalf("SetWorldPosition failed")
	}
	got, _ := g.WorldPosition(2)
	if !vec.ApproxEqual(got, target, 1e-5) {
		t.Errorf("WorldPosition after set = %v want %v", got, target)
	}
}

func TestInverse(t *testing.T) {
	tr := Identity()
	tr.Translation = vec.Vec3{X: 1, Y: 2, Z: 3}
	tr.Rotation = vec.QuatAxisAngle(vec.Vec3{X: 1, Y: 1}, 0.6)
	tr.Scale = vec.Vec3{X: 2, Y: 2, Z: 2}
	p := vec.Vec3{X: 0.5, Y: -1, Z: 4}
	got := tr.Inverse().Point(tr.Point(p))
	if !vec.ApproxEqual(got, p, 1e-5) {
		t.Errorf("Inverse round trip = %v want %v", got, p)
	}
	if got := tr.InversePoint(tr.Point(p)); !vec.ApproxEqual(got, p, 1e-5) {
		t.Errorf("InversePoint round trip = %v want %v", got, p)
	}
}

func TestRejectsCycle(t *testing.T) {
	_, err := New([]Node{
		{Parent: 1, Local: Identity()},
		{Parent: 0, Local: Identity()},
	})
	if err == nil {
		t.Errorf("New accepted a parent cycle")
	}
	_, err = New([]Node{{Parent: 5, Local: Identity()}})
	if err == nil {
		t.Errorf("New accepted an unknown parent")
	}
}

func TestRemoveHidesDescendants(t *testing.T) {
	g := testGraph(t)
	g.Remove(1)
	if g.Available(1) || g.Available(2) {
		t.Errorf("removed subtree still available")
	}
	if _, ok := g.WorldPosition(2); ok {
		t.Errorf("WorldPosition of a removed subtree succeeded")
	}
	if !g.Available(0) {
		t.Errorf("root became unavailable")
	}
}

func TestSnapshotIsStable(t *testing.T) {
	g := testGraph(t)
	s, err := g.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	before, _ := s.WorldPosition(2)
	g.SetWorldPosition(2, vec.Vec3{X: 100})
	g.Remove(0)
	after, ok := s.WorldPosition(2)
	if !ok || after != before {
		t.Errorf("snapshot changed with the graph: %v -> %v", before, after)
	}
}

func TestSnapshotAnswersFromCopy(t *testing.T) {
	g := testGraph(t)
	g.Remove(1)
	s, err := g.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	local, _ := g.Local(0)
	moved := local
	moved.Translation = vec.Vec3{Y: 50}
	g.SetLocal(0, moved)

	if got, ok := s.Local(0); !ok || got != local {
		t.Errorf("snapshot Local(0) = %v, %v want %v", got, ok, local)
	}
	if w, ok := s.World(0); !ok || w.Translation != local.Translation {
		t.Errorf("snapshot World(0) = %v, %v", w, ok)
	}
	for _, id := range []int{1, 2} {
		if s.Available(id) {
			t.Errorf("node %d removed before the snapshot is available", id)
		}
	}
	if s.Available(3) || s.Available(-1) {
		t.Errorf("out of range node available")
	}
}
