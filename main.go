// SPDX-License-Identifier: GPL-2.0-or-later

// quadruped loads a rig, drives it with a command script and records the
// resulting pose frames.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"goquadruped/animator"
	"goquadruped/config"
	"goquadruped/conlog"
	"goquadruped/qtime"
	"goquadruped/rig"
	"goquadruped/sim"
	"goquadruped/skeleton"
)

var (
	rigPath   = flag.String("rig", "", "rig description (json)")
	assetDir  = flag.String("assets", "", "skeleton directory, defaults to the rig's directory")
	script    = flag.String("script", "", "command script file")
	exec      = flag.String("e", "", "commands executed before the script")
	maxFrames = flag.Int("frames", 3600, "stop after this many frames")
	frameTime = flag.Duration("frametime", time.Second/60, "simulated frame duration")
	realtime  = flag.Bool("realtime", false, "pace frames by the wall clock")
	record    = flag.String("record", "", "write the recorded frames to this file")
	resume    = flag.Bool("resume", false, "append to the frames already in -record")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		conlog.Logger().Error("quadruped failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if !conlog.SetLevel(cfg.LogLevel) {
		conlog.Logger().Warn("unknown log level", "level", cfg.LogLevel)
	}
	if *rigPath == "" {
		flag.Usage()
		return nil
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := os.ReadFile(*rigPath)
	if err != nil {
		return err
	}
	dir := *assetDir
	if dir == "" {
		dir = filepath.Dir(*rigPath)
	}
	r, err := rig.Load(ctx, data, &skeleton.DirSource{Dir: dir})
	if err != nil {
		return err
	}
	opts, err := animator.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	a, err := animator.New(r, opts)
	if err != nil {
		return err
	}
	s, err := sim.New(a, cfg)
	if err != nil {
		return err
	}
	if *record != "" && *resume {
		if err := s.Recorder().Load(*record); err != nil {
			return err
		}
	}
	if *exec != "" {
		s.AddScript(*exec)
	}
	if *script != "" {
		text, err := os.ReadFile(*script)
		if err != nil {
			return err
		}
		s.AddScript(string(text))
	}

	var frames int
	if *realtime {
		frames, err = runRealtime(ctx, s)
	} else {
		frames, err = s.Run(ctx, *maxFrames, *frameTime)
	}
	if err != nil {
		return err
	}
	summary(s, frames)
	if *record != "" {
		return s.Recorder().Save(*record)
	}
	return nil
}

func runRealtime(ctx context.Context, s *sim.Session) (int, error) {
	watch := qtime.NewStopwatch()
	tick := time.NewTicker(*frameTime)
	defer tick.Stop()
	n := 0
	for ; n < *maxFrames && !s.Done(); n++ {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-tick.C:
		}
		if _, err := s.Frame(watch.Lap()); err != nil {
			return n, err
		}
	}
	return n, nil
}

func summary(s *sim.Session, frames int) {
	a := s.Animator()
	l := conlog.Logger().With("animator", a.ID().String())
	l.Info("run finished", "frames", frames, "time", s.Clock().Time(), "recorded", s.Recorder().Len())
	for _, p := range a.Rig().Players {
		pos, _ := a.Scene().WorldPosition(p.Entity)
		st, _ := a.Locomotion(p.Entity)
		l.Info("player", "entity", p.Entity, "position", pos, "speed", st.Linear, "turn", st.Angular)
	}
}
