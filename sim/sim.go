// SPDX-License-Identifier: GPL-2.0-or-later

// Package sim drives an animator from a command script, one buffer batch
// per frame.
package sim

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"goquadruped/alias"
	"goquadruped/animator"
	"goquadruped/cbuf"
	"goquadruped/cmd"
	"goquadruped/config"
	"goquadruped/conlog"
	"goquadruped/gametime"
	"goquadruped/history"
	"goquadruped/input"
	"goquadruped/math/vec"
	"goquadruped/posecodec"
)

// scriptKey stands in for the key number when a script holds a button.
const scriptKey = 1

type Session struct {
	anim    *animator.Animator
	buttons input.Buttons
	buf     cbuf.CommandBuffer
	cmds    *cmd.Commands
	aliases *alias.Aliases
	clock   *gametime.GameTime
	rec     *history.Recorder
	quit    bool
}

func New(a *animator.Animator, c config.Config) (*Session, error) {
	s := &Session{
		anim:    a,
		cmds:    cmd.New(),
		aliases: alias.New(),
		clock:   gametime.New(c.MinFrameTime, c.MaxFrameTime),
		rec:     history.New(c.HistoryFrames),
	}
	if err := s.register(); err != nil {
		return nil, err
	}
	s.buf.SetCommandExecutors([]cbuf.Efunc{s.cmds.Execute(), s.aliases.Execute()})
	return s, nil
}

func (s *Session) register() error {
	if err := s.aliases.Register(s.cmds); err != nil {
		return err
	}
	for a := input.Forward; a <= input.Speed; a++ {
		a := a
		key := func(args cbuf.Arguments) int {
			if k := args.Argv(1).Int(); k != 0 {
				return k
			}
			return scriptKey
		}
		if err := s.cmds.Add("+"+a.String(), func(args cbuf.Arguments) error {
			s.buttons.Press(a, key(args))
			return nil
		}); err != nil {
			return err
		}
		if err := s.cmds.Add("-"+a.String(), func(args cbuf.Arguments) error {
			s.buttons.Release(a, key(args))
			return nil
		}); err != nil {
			return err
		}
	}
	adds := []struct {
		name string
		f    cmd.Func
	}{
		{"place", s.place},
		{"remove", s.remove},
		{"timescale", s.timescale},
		{"echo", func(a cbuf.Arguments) error {
			conlog.Printf("%s", a.ArgumentString())
			return nil
		}},
		{"quit", func(cbuf.Arguments) error {
			s.quit = true
			return nil
		}},
	}
	for _, c := range adds {
		if err := s.cmds.Add(c.name, c.f); err != nil {
			return err
		}
	}
	return nil
}

func entity(a cbuf.Arguments) (int, error) {
	if len(a.Args()) < 2 {
		return 0, errors.Errorf("%s: missing entity", a.Argv(0))
	}
	return a.Argv(1).Int(), nil
}

// place <entity> <x> <y> <z> moves a node to a world position.
func (s *Session) place(a cbuf.Arguments) error {
	if len(a.Args()) != 5 {
		return errors.New("usage: place <entity> <x> <y> <z>")
	}
	e, _ := entity(a)
	var p [3]float32
	for i := range p {
		v, err := a.Argv(i + 2).ParseFloat32()
		if err != nil {
			return errors.Wrapf(err, "place: coordinate %d", i)
		}
		p[i] = v
	}
	if !s.anim.Scene().SetWorldPosition(e, vec.VFromA(p)) {
		conlog.Logger().Warn("place: entity unavailable", "entity", e)
	}
	return nil
}

func (s *Session) remove(a cbuf.Arguments) error {
	e, err := entity(a)
	if err != nil {
		return err
	}
	s.anim.Scene().Remove(e)
	return nil
}

func (s *Session) timescale(a cbuf.Arguments) error {
	s.clock.SetScale(a.Argv(1).Float64())
	return nil
}

// AddScript queues script text behind what is already buffered.
func (s *Session) AddScript(text string) {
	s.buf.AddText(text + "\n")
}

func (s *Session) Animator() *animator.Animator { return s.anim }
func (s *Session) Recorder() *history.Recorder  { return s.rec }
func (s *Session) Clock() *gametime.GameTime    { return s.clock }
func (s *Session) Buttons() *input.Buttons      { return &s.buttons }

// Done reports a quit command or a fully consumed script.
func (s *Session) Done() bool {
	return s.quit || !s.buf.Pending()
}

// Frame executes one script batch, then ticks the animator with the
// resulting intent and records the frames.
func (s *Session) Frame(elapsed time.Duration) ([]animator.Frame, error) {
	if err := s.buf.Execute(); err != nil {
		return nil, err
	}
	dt := s.clock.Advance(elapsed)
	frames, err := s.anim.Tick(dt, s.buttons.Intent())
	if err != nil {
		return nil, err
	}
	for _, f := range frames {
		s.rec.Add(f.Encode(s.clock.Time()))
	}
	return frames, nil
}

// Run calls Frame with a fixed frame duration until the script is done,
// max frames ran or ctx is cancelled. It returns the frame count.
func (s *Session) Run(ctx context.Context, maxFrames int, frameTime time.Duration) (int, error) {
	n := 0
	for ; n < maxFrames && !s.Done(); n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := s.Frame(frameTime); err != nil {
			return n, errors.Wrapf(err, "frame %d", n)
		}
	}
	return n, nil
}

// Replay decodes the recorded frames.
func (s *Session) Replay() ([]posecodec.Frame, error) {
	return s.rec.Frames()
}
