// SPDX-License-Identifier: GPL-2.0-or-later

package gametime

import (
	"time"

	"goquadruped/math"
)

// GameTime turns raw wall clock frame durations into the tick delta handed
// to the animation core.
type GameTime struct {
	time       float64
	frameTime  float64
	frameCount uint64

	minFrame time.Duration
	maxFrame time.Duration
	scale    float64
}

func New(minFrame, maxFrame time.Duration) *GameTime {
	return &GameTime{
		minFrame: minFrame,
		maxFrame: maxFrame,
		scale:    1,
	}
}

// Reset returns the clock to time zero.
func (h *GameTime) Reset() {
	h.time = 0
	h.frameTime = 0
	h.frameCount = 0
}

func (h *GameTime) Time() float64      { return h.time }
func (h *GameTime) FrameTime() float64 { return h.frameTime }
func (h *GameTime) FrameCount() uint64 { return h.frameCount }

// SetScale slows down or speeds up simulated time. Non positive values are ignored.
func (h *GameTime) SetScale(s float64) {
	if s > 0 {
		h.scale = s
	}
}

// Advance consumes the real duration of the last frame and returns the tick
// delta in seconds. Hitches are clamped to the max frame time so a stall
// never produces a huge gait or spring step.
func (h *GameTime) Advance(elapsed time.Duration) float32 {
	ft := math.Clamp(h.minFrame.Seconds(), elapsed.Seconds(), h.maxFrame.Seconds())
	h.frameTime = ft * h.scale
	h.time += h.frameTime
	h.frameCount++
	return float32(h.frameTime)
}
