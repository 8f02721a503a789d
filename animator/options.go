// SPDX-License-Identifier: GPL-2.0-or-later

package animator

import (
	"github.com/pkg/errors"

	"goquadruped/config"
	"goquadruped/gait"
	"goquadruped/ik"
)

type Options struct {
	IK      ik.Options
	Pattern gait.Pattern
	// Parallel runs limbs, chains and trackers of a stage concurrently.
	Parallel bool
}

func DefaultOptions() Options {
	o, _ := OptionsFromConfig(config.Default())
	return o
}

func OptionsFromConfig(c config.Config) (Options, error) {
	p, ok := gait.PatternByName(c.GaitPattern)
	if !ok {
		return Options{}, errors.Errorf("animator: unknown gait pattern %q", c.GaitPattern)
	}
	return Options{
		IK:       ik.Options{Iterations: c.IKIterations, Tolerance: c.IKTolerance},
		Pattern:  p,
		Parallel: c.Parallel,
	}, nil
}
