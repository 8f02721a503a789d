// SPDX-License-Identifier: GPL-2.0-or-later

package sim

import (
	"context"
	"os"
	"testing"
	"time"

	"goquadruped/animator"
	"goquadruped/config"
	"goquadruped/input"
	"goquadruped/rig"
	"goquadruped/skeleton"
)

const frameTime = 16 * time.Millisecond

func newSession(t *testing.T) *Session {
	t.Helper()
	data, err := os.ReadFile("../rig/testdata/fox.rig.json")
	if err != nil {
		t.Fatal(err)
	}
	r, err := rig.Load(context.Background(), data, &skeleton.DirSource{Dir: "../rig/testdata"})
	if err != nil {
		t.Fatal(err)
	}
	a, err := animator.New(r, animator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(a, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestScriptedWalk(t *testing.T) {
	s := newSession(t)
	s.AddScript(`alias stroll "+forward; wait 120; -forward"`)
	s.AddScript("place 26 0 1.2 -3; stroll; wait 30")
	n, err := s.Run(context.Background(), 1000, frameTime)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 151 {
		t.Errorf("ran %d frames want 151", n)
	}
	if s.Buttons().Down(input.Forward) {
		t.Errorf("forward still held")
	}
	root, _ := s.Animator().Scene().WorldPosition(0)
	if root.Z < 0.5 {
		t.Errorf("root at %v did not walk forward", root)
	}
	look, _ := s.Animator().Scene().WorldPosition(26)
	if look.Z != -3 {
		t.Errorf("look target at %v", look)
	}
	frames, err := s.Replay()
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != n || frames[len(frames)-1].Tick != uint64(n) {
		t.Errorf("recorded %d frames", len(frames))
	}
}

func TestQuit(t *testing.T) {
	s := newSession(t)
	s.AddScript("+left; quit; wait 100")
	n, err := s.Run(context.Background(), 1000, frameTime)
	if err != nil || n != 1 {
		t.Errorf("Run = %d, %v want 1 frame", n, err)
	}
	if !s.Buttons().Down(input.Left) {
		t.Errorf("left not held")
	}
}

func TestRemoveTarget(t *testing.T) {
	s := newSession(t)
	s.AddScript("remove 22; +forward; wait 30")
	if _, err := s.Run(context.Background(), 1000, frameTime); err != nil {
		t.Errorf("Run: %v", err)
	}
	if s.Animator().Scene().Available(22) {
		t.Errorf("entity 22 still available")
	}
}

func TestBadCommand(t *testing.T) {
	s := newSession(t)
	s.AddScript("place 26 a b c")
	if _, err := s.Run(context.Background(), 10, frameTime); err == nil {
		t.Errorf("bad coordinates accepted")
	}
}

func TestCancel(t *testing.T) {
	s := newSession(t)
	s.AddScript("wait 100")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if n, err := s.Run(ctx, 10, frameTime); err == nil || n != 0 {
		t.Errorf("Run = %d, %v on a cancelled context", n, err)
	}
}
