// SPDX-License-Identifier: GPL-2.0-or-later

// Package config holds the runtime tunables of the animation core.
// Values come from QUADRUPED_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// IKIterations caps the forward/backward passes per chain and tick.
	IKIterations int `env:"IK_ITERATIONS" envDefault:"10"`
	// IKTolerance is the end effector distance counted as converged.
	IKTolerance float32 `env:"IK_TOLERANCE" envDefault:"0.001"`

	GaitPattern string `env:"GAIT_PATTERN" envDefault:"trot"`

	// Parallel evaluates limbs, chains and trackers on goroutines.
	Parallel bool `env:"PARALLEL" envDefault:"false"`

	MinFrameTime time.Duration `env:"MIN_FRAME_TIME" envDefault:"1ms"`
	MaxFrameTime time.Duration `env:"MAX_FRAME_TIME" envDefault:"100ms"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HistoryFrames int `env:"HISTORY_FRAMES" envDefault:"600"`
}

const prefix = "QUADRUPED_"

// Default returns the configuration with every default applied.
func Default() Config {
	var c Config
	// defaults only, parse errors are impossible here
	_ = env.ParseWithOptions(&c, env.Options{Prefix: prefix, Environment: map[string]string{}})
	return c
}

// FromEnv parses the process environment.
func FromEnv() (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.IKIterations < 1 {
		return fmt.Errorf("config: %sIK_ITERATIONS must be at least 1, got %d", prefix, c.IKIterations)
	}
	if c.IKTolerance <= 0 {
		return fmt.Errorf("config: %sIK_TOLERANCE must be positive, got %v", prefix, c.IKTolerance)
	}
	if c.MinFrameTime <= 0 || c.MinFrameTime > c.MaxFrameTime {
		return fmt.Errorf("config: frame time range %v..%v is invalid", c.MinFrameTime, c.MaxFrameTime)
	}
	if c.HistoryFrames < 0 {
		return fmt.Errorf("config: %sHISTORY_FRAMES must not be negative", prefix)
	}
	return nil
}
