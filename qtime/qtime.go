// SPDX-License-Identifier: GPL-2.0-or-later

// Package qtime measures wall clock time since process start.
package qtime

import (
	"time"
)

var (
	startTime = time.Now()
)

func QTime() time.Duration {
	return time.Since(startTime)
}

// Stopwatch reports the real time between successive laps.
type Stopwatch struct {
	last time.Duration
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{last: QTime()}
}

// Lap returns the time since the previous lap or since creation.
func (s *Stopwatch) Lap() time.Duration {
	now := QTime()
	d := now - s.last
	s.last = now
	return d
}
