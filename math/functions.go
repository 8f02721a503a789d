// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
)

const (
	Pi  = math32.Pi
	Tau = 2 * math32.Pi

	// Epsilon is the tolerance used for degenerate vectors and angles.
	Epsilon = 1e-6
)

func Sqrt(x float32) float32 {
	return math32.Sqrt(x)
}
