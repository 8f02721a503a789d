// SPDX-License-Identifier: GPL-2.0-or-later

// Package alias lets scripts name a sequence of commands.
package alias

import (
	"sort"
	"strings"

	"goquadruped/cbuf"
	"goquadruped/cmd"
	"goquadruped/conlog"
)

type Aliases struct {
	m map[string]string
}

func New() *Aliases {
	return &Aliases{m: map[string]string{}}
}

// Register adds alias, unalias and unaliasall to c.
func (al *Aliases) Register(c *cmd.Commands) error {
	if err := c.Add("alias", al.alias); err != nil {
		return err
	}
	if err := c.Add("unalias", al.unalias); err != nil {
		return err
	}
	return c.Add("unaliasall", func(cbuf.Arguments) error {
		al.m = map[string]string{}
		return nil
	})
}

func (al *Aliases) alias(a cbuf.Arguments) error {
	args := a.Args()[1:]
	switch len(args) {
	case 0:
		names := make([]string, 0, len(al.m))
		for k := range al.m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			conlog.Printf("  %s: %s", k, al.m[k])
		}
		conlog.Printf("%v alias command(s)", len(al.m))
	case 1:
		if v, ok := al.m[args[0].String()]; ok {
			conlog.Printf("  %s: %s", args[0], v)
		}
	default:
		parts := make([]string, 0, len(args)-1)
		for _, p := range args[1:] {
			parts = append(parts, p.String())
		}
		al.m[args[0].String()] = strings.TrimSpace(strings.Join(parts, " ")) + "\n"
	}
	return nil
}

func (al *Aliases) unalias(a cbuf.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		conlog.Printf("unalias <name> : delete alias")
		return nil
	}
	name := args[0].String()
	if _, ok := al.m[name]; !ok {
		conlog.Printf("No alias named %s", name)
		return nil
	}
	delete(al.m, name)
	return nil
}

func (al *Aliases) Get(name string) (string, bool) {
	a, ok := al.m[name]
	return a, ok
}

// Execute returns the buffer executor expanding aliases in place.
func (al *Aliases) Execute() cbuf.Efunc {
	return func(cb *cbuf.CommandBuffer, a cbuf.Arguments) (bool, error) {
		args := a.Args()
		if len(args) == 0 {
			return false, nil
		}
		v, ok := al.Get(args[0].String())
		if !ok {
			return false, nil
		}
		cb.InsertText(v)
		return true, nil
	}
}
