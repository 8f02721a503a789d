// SPDX-License-Identifier: GPL-2.0-or-later

// package input handles button event tracking and folds it into locomotion intents
package input

import (
	"goquadruped/locomotion"
	"goquadruped/math"
)

type button struct {
	// key nums holding it down, can handle 2 keys with the same action
	holdingDown [2]int
	down        bool
	impulseDown bool
	impulseUp   bool
}

func (b button) Down() bool {
	return b.down
}

// Returns 0.25 if a button was pressed and released during the frame,
// 0.5 if it was pressed and held
// 0 if held then released, and
// 1 if held for the entire time
func (b button) GetImpulse() float32 {
	if b.impulseDown && b.impulseUp {
		if b.down {
			return 0.75
		}
		return 0.25
	}
	if !b.impulseDown && !b.impulseUp {
		if b.down {
			return 1
		}
		return 0
	}
	if b.impulseUp && !b.impulseDown {
		return 0
	}
	if b.impulseDown && !b.impulseUp {
		if b.down {
			return 0.5
		}
		return 0
	}
	return 0 // unreachable
}

func (b *button) ResetImpulse() {
	b.impulseDown = false
	b.impulseUp = false
}

func (b *button) upKey(k int) {
	if b.holdingDown[0] == k {
		b.holdingDown[0] = 0
	} else if b.holdingDown[1] == k {
		b.holdingDown[1] = 0
	} else {
		return
	}
	if b.holdingDown[0] != 0 || b.holdingDown[1] != 0 {
		// some other key is still holding it down
		return
	}
	if !b.down {
		return
	}
	b.down = false
	b.impulseUp = true
}

func (b *button) downKey(k int) {
	if b.holdingDown[0] == k || b.holdingDown[1] == k {
		return
	}
	if b.holdingDown[0] == 0 {
		b.holdingDown[0] = k
	} else if b.holdingDown[1] == 0 {
		b.holdingDown[1] = k
	} else {
		// three keys down for a button
		return
	}
	if b.down {
		return
	}
	b.down = true
	b.impulseDown = true
}

type Action int

const (
	Forward Action = iota
	Back
	Left
	Right
	Speed
	numActions
)

var actionNames = [numActions]string{"forward", "back", "left", "right", "speed"}

func (a Action) String() string {
	if a < 0 || a >= numActions {
		return "unknown"
	}
	return actionNames[a]
}

// ActionByName looks up an action by its lower case name.
func ActionByName(n string) (Action, bool) {
	for i, name := range actionNames {
		if name == n {
			return Action(i), true
		}
	}
	return 0, false
}

// Buttons is the button state of one player.
type Buttons struct {
	b [numActions]button
}

// Press registers key k (non zero) going down for action a.
func (s *Buttons) Press(a Action, k int) {
	if a < 0 || a >= numActions || k == 0 {
		return
	}
	s.b[a].downKey(k)
}

// Release registers key k going up for action a.
func (s *Buttons) Release(a Action, k int) {
	if a < 0 || a >= numActions || k == 0 {
		return
	}
	s.b[a].upKey(k)
}

func (s *Buttons) Down(a Action) bool {
	return s.b[a].Down()
}

// Intent folds the frame's button state into a locomotion intent and
// resets the impulses for the next frame.
func (s *Buttons) Intent() locomotion.Intent {
	i := locomotion.Intent{
		Forward: math.Clamp(-1, s.b[Forward].GetImpulse()-s.b[Back].GetImpulse(), 1),
		Turn:    math.Clamp(-1, s.b[Left].GetImpulse()-s.b[Right].GetImpulse(), 1),
		Run:     s.b[Speed].Down(),
	}
	for j := range s.b {
		s.b[j].ResetImpulse()
	}
	return i
}
