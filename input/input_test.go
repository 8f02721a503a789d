// SPDX-License-Identifier: GPL-2.0-or-later

package input

import (
	"testing"
)

func TestImpulse(t *testing.T) {
	tests := []struct {
		name string
		do   func(b *button)
		want float32
	}{
		{"idle", func(b *button) {}, 0},
		{"pressed", func(b *button) { b.downKey(1) }, 0.5},
		{"tapped", func(b *button) { b.downKey(1); b.upKey(1) }, 0.25},
		{"held", func(b *button) { b.downKey(1); b.ResetImpulse() }, 1},
		{"released", func(b *button) { b.downKey(1); b.ResetImpulse(); b.upKey(1) }, 0},
		{"retapped", func(b *button) { b.downKey(1); b.upKey(1); b.downKey(2) }, 0.75},
	}
	for _, test := range tests {
		var b button
		test.do(&b)
		if got := b.GetImpulse(); got != test.want {
			t.Errorf("%s: GetImpulse() = %v want %v", test.name, got, test.want)
		}
	}
}

func TestTwoKeysHoldButton(t *testing.T) {
	var b button
	b.downKey(1)
	b.downKey(2)
	b.upKey(1)
	if !b.Down() {
		t.Errorf("button released while a second key holds it")
	}
	b.upKey(2)
	if b.Down() {
		t.Errorf("button still down after both keys released")
	}
}

func TestIntent(t *testing.T) {
	var s Buttons
	s.Press(Forward, 'w')
	s.Press(Left, 'a')
	s.Press(Speed, 1)
	first := s.Intent()
	if first.Forward != 0.5 || first.Turn != 0.5 || !first.Run {
		t.Errorf("first frame intent = %+v", first)
	}
	second := s.Intent()
	if second.Forward != 1 || second.Turn != 1 {
		t.Errorf("held intent = %+v", second)
	}
	s.Release(Left, 'a')
	s.Press(Right, 'd')
	third := s.Intent()
	if third.Turn != -0.5 {
		t.Errorf("turn after switching = %v want -0.5", third.Turn)
	}
}

func TestActionByName(t *testing.T) {
	for a := Forward; a < numActions; a++ {
		got, ok := ActionByName(a.String())
		if !ok || got != a {
			t.Errorf("ActionByName(%q) = %v, %v", a.String(), got, ok)
		}
	}
	if _, ok := ActionByName("jump"); ok {
		t.Errorf("ActionByName accepted jump")
	}
}
