// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd is the registry of named script commands.
package cmd

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"goquadruped/cbuf"
)

type Func func(args cbuf.Arguments) error

type Commands map[string]Func

func New() *Commands {
	c := make(Commands)
	return &c
}

// Add registers f under the lower case name.
func (c *Commands) Add(name string, f Func) error {
	ln := strings.ToLower(name)
	if _, ok := (*c)[ln]; ok {
		return errors.Errorf("cmd: %s already defined", ln)
	}
	(*c)[ln] = f
	return nil
}

func (c *Commands) Exists(name string) bool {
	_, ok := (*c)[strings.ToLower(name)]
	return ok
}

func (c *Commands) List() []string {
	cmds := make([]string, 0, len(*c))
	for cmd := range *c {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// Execute returns the buffer executor running registered commands.
func (c *Commands) Execute() cbuf.Efunc {
	return func(_ *cbuf.CommandBuffer, a cbuf.Arguments) (bool, error) {
		args := a.Args()
		if len(args) == 0 {
			return false, nil
		}
		f, ok := (*c)[strings.ToLower(args[0].String())]
		if !ok {
			return false, nil
		}
		return true, f(a)
	}
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}
