// SPDX-License-Identifier: GPL-2.0-or-later

package gait

import "strings"

// Pattern is the phase offset of each limb within the shared cycle.
type Pattern [NumLimbs]float32

var (
	// Trot moves the diagonal pairs together.
	Trot = Pattern{LeftHind: 0, RightHind: 0.5, LeftFore: 0.5, RightFore: 0}
	// Walk is the four beat lateral sequence.
	Walk = Pattern{LeftHind: 0, RightHind: 0.5, LeftFore: 0.75, RightFore: 0.25}
	// Pace moves the lateral pairs together.
	Pace = Pattern{LeftHind: 0, RightHind: 0.5, LeftFore: 0, RightFore: 0.5}
)

func PatternByName(name string) (Pattern, bool) {
	switch strings.ToLower(name) {
	case "trot", "":
		return Trot, true
	case "walk":
		return Walk, true
	case "pace":
		return Pace, true
	}
	return Pattern{}, false
}
