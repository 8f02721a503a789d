// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
)

// Wrap01 returns the fractional part of a phase value, always within [0,1).
func Wrap01(p float32) float32 {
	f := p - math32.Floor(p)
	if f >= 1 {
		// float rounding of tiny negative inputs
		return 0
	}
	return f
}
