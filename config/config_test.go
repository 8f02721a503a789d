// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if c.IKIterations != 10 {
		t.Errorf("IKIterations = %d want 10", c.IKIterations)
	}
	if c.IKTolerance != 0.001 {
		t.Errorf("IKTolerance = %v want 0.001", c.IKTolerance)
	}
	if c.GaitPattern != "trot" {
		t.Errorf("GaitPattern = %q want trot", c.GaitPattern)
	}
	if c.MinFrameTime != time.Millisecond || c.MaxFrameTime != 100*time.Millisecond {
		t.Errorf("frame time range = %v..%v", c.MinFrameTime, c.MaxFrameTime)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("QUADRUPED_IK_ITERATIONS", "25")
	t.Setenv("QUADRUPED_PARALLEL", "true")
	t.Setenv("QUADRUPED_GAIT_PATTERN", "walk")
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.IKIterations != 25 || !c.Parallel || c.GaitPattern != "walk" {
		t.Errorf("FromEnv = %+v", c)
	}
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("QUADRUPED_IK_ITERATIONS", "0")
	if _, err := FromEnv(); err == nil {
		t.Errorf("FromEnv accepted zero iterations")
	}
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("QUADRUPED_IK_TOLERANCE", "tiny")
	if _, err := FromEnv(); err == nil {
		t.Errorf("FromEnv accepted a non numeric tolerance")
	}
}
