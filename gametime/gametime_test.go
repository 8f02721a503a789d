// SPDX-License-Identifier: GPL-2.0-or-later

package gametime

import (
	"testing"
	"time"
)

func TestAdvanceClamps(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float32
	}{
		{0, 0.001},
		{16 * time.Millisecond, 0.016},
		{2 * time.Second, 0.1},
	}
	for _, test := range tests {
		h := New(time.Millisecond, 100*time.Millisecond)
		if got := h.Advance(test.elapsed); got-test.want > 1e-7 || test.want-got > 1e-7 {
			t.Errorf("Advance(%v) = %v want %v", test.elapsed, got, test.want)
		}
	}
}

func TestAdvanceAccumulates(t *testing.T) {
	h := New(time.Millisecond, 100*time.Millisecond)
	for i := 0; i < 10; i++ {
		h.Advance(10 * time.Millisecond)
	}
	if h.FrameCount() != 10 {
		t.Errorf("FrameCount = %d want 10", h.FrameCount())
	}
	if d := h.Time() - 0.1; d > 1e-9 || d < -1e-9 {
		t.Errorf("Time = %v want 0.1", h.Time())
	}
	h.Reset()
	if h.Time() != 0 || h.FrameCount() != 0 {
		t.Errorf("Reset left %v/%v", h.Time(), h.FrameCount())
	}
}

func TestScale(t *testing.T) {
	h := New(time.Millisecond, 100*time.Millisecond)
	h.SetScale(0.5)
	h.SetScale(-1)
	if got := h.Advance(20 * time.Millisecond); got-0.01 > 1e-7 || 0.01-got > 1e-7 {
		t.Errorf("scaled Advance = %v want 0.01", got)
	}
}
