// SPDX-License-Identifier: GPL-2.0-or-later

// Package cbuf buffers script text and executes it a line at a time, one
// batch per frame.
package cbuf

import (
	"github.com/pkg/errors"

	"goquadruped/conlog"
)

// MaxExpansions bounds the in place insertions of one batch. A script
// that keeps expanding without a wait is abandoned.
const MaxExpansions = 1024

var ErrExpansionLimit = errors.New("cbuf: expansion limit reached without a wait")

// Efunc handles a parsed line. It reports whether it consumed the line.
type Efunc func(*CommandBuffer, Arguments) (bool, error)

type CommandBuffer struct {
	text string
	// frames left to skip before executing again
	skip      int
	inserts   int
	executors []Efunc
}

func (c *CommandBuffer) SetCommandExecutors(e []Efunc) {
	c.executors = e
}

// AddText appends text at the end of the buffer.
func (c *CommandBuffer) AddText(text string) {
	c.text += text
}

// InsertText puts text in front of the remaining buffer, used to expand a
// line in place.
func (c *CommandBuffer) InsertText(text string) {
	c.text = text + "\n" + c.text
	c.inserts++
}

// Wait stops the current batch. Execution continues frames frames later.
func (c *CommandBuffer) Wait(frames int) {
	c.skip = max(frames, 1)
}

// Pending reports whether text or a wait is left.
func (c *CommandBuffer) Pending() bool {
	return len(c.text) != 0 || c.skip > 0
}

// Execute runs lines until the buffer is empty or a wait is hit. A batch
// expanding more than MaxExpansions times drops the rest of the buffer and
// fails with ErrExpansionLimit.
func (c *CommandBuffer) Execute() error {
	c.inserts = 0
	if c.skip > 0 {
		c.skip--
		if c.skip > 0 {
			return nil
		}
	}
	for len(c.text) != 0 {
		i := 0
		quote := false
	LineLoop:
		for i = 0; i < len(c.text); i++ {
			switch c.text[i] {
			case '"':
				quote = !quote
			case ';':
				if !quote {
					break LineLoop
				}
			case '\n':
				break LineLoop
			}
		}
		line := c.text[:i]
		if i < len(c.text) {
			i++
		}
		c.text = c.text[i:]
		if err := c.execute(line); err != nil {
			return err
		}
		if c.inserts > MaxExpansions {
			c.text = ""
			return errors.WithStack(ErrExpansionLimit)
		}
		if c.skip > 0 {
			return nil
		}
	}
	return nil
}

func (c *CommandBuffer) execute(line string) error {
	a := Parse(line)
	args := a.Args()
	if len(args) == 0 {
		return nil
	}
	if args[0].String() == "wait" {
		n := 1
		if len(args) > 1 {
			n = args[1].Int()
		}
		c.Wait(n)
		return nil
	}
	for _, e := range c.executors {
		ok, err := e(c, a)
		if err != nil {
			return errors.Wrapf(err, "cbuf: %q", line)
		}
		if ok {
			return nil
		}
	}
	conlog.Logger().Warn("unknown command", "name", args[0].String())
	return nil
}
