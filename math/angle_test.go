// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestWrap01(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.5, 0.5},
		{-0.25, 0.75},
		{-1e-9, 0},
	}
	for _, test := range tests {
		if got := Wrap01(test.in); math32.Abs(got-test.want) > 1e-6 || got >= 1 {
			t.Errorf("Wrap01(%v) = %v want %v", test.in, got, test.want)
		}
	}
}
