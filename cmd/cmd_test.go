// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"testing"

	"goquadruped/cbuf"
)

func TestCommands(t *testing.T) {
	c := New()
	var got []string
	Must(c.Add("Look", func(a cbuf.Arguments) error {
		got = append(got, a.ArgumentString())
		return nil
	}))
	Must(c.Add("remove", func(cbuf.Arguments) error { return nil }))
	if err := c.Add("look", nil); err == nil {
		t.Errorf("duplicate add accepted")
	}
	if !c.Exists("LOOK") {
		t.Errorf("Exists is case sensitive")
	}
	if l := c.List(); len(l) != 2 || l[0] != "look" || l[1] != "remove" {
		t.Errorf("List() = %v", l)
	}

	var cb cbuf.CommandBuffer
	ex := c.Execute()
	if ok, err := ex(&cb, cbuf.Parse("look 1 2 3")); !ok || err != nil {
		t.Errorf("look not executed: %v %v", ok, err)
	}
	if ok, _ := ex(&cb, cbuf.Parse("jump")); ok {
		t.Errorf("unknown command consumed")
	}
	if len(got) != 1 || got[0] != "1 2 3" {
		t.Errorf("look got %q", got)
	}
}
