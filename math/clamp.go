// SPDX-License-Identifier: GPL-2.0-or-later

package math

type Number interface {
	int64 | float64 | float32 | int
}

func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// Lerp computes a weighted average between a and b
func Lerp(a, b, frac float32) float32 {
	return a + (b-a)*frac
}

// Smoothstep eases frac from 0 to 1 with zero slope at both ends.
// frac is clamped to [0,1].
func Smoothstep(frac float32) float32 {
	f := Clamp(0, frac, 1)
	return f * f * (3 - 2*f)
}
