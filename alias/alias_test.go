// SPDX-License-Identifier: GPL-2.0-or-later

package alias

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"goquadruped/cbuf"
	"goquadruped/cmd"
	"goquadruped/conlog"
)

func setup(t *testing.T) (*Aliases, *cbuf.CommandBuffer, *int) {
	t.Helper()
	al := New()
	cmds := cmd.New()
	if err := al.Register(cmds); err != nil {
		t.Fatal(err)
	}
	cb := &cbuf.CommandBuffer{}
	worldCount := 0
	p := func(cb *cbuf.CommandBuffer, a cbuf.Arguments) (bool, error) {
		if a.Full() != "world" {
			t.Errorf("got %q, want %q", a.Full(), "world")
		} else {
			worldCount++
		}
		return true, nil
	}
	cb.SetCommandExecutors([]cbuf.Efunc{
		cmds.Execute(), // 'alias'
		al.Execute(),   // 'hello'
		p,              // 'world'
	})
	return al, cb, &worldCount
}

func TestExecuteAlias(t *testing.T) {
	_, cb, worldCount := setup(t)
	cb.AddText("alias hello world\n")
	cb.Execute()
	cb.AddText("hello\n")
	cb.AddText("world\n")
	cb.Execute()
	if *worldCount != 2 {
		// for 'hello' -> 'world' and 'world'
		t.Errorf("Executed 'world' %d times, want %d", *worldCount, 2)
	}
}

func TestUnalias(t *testing.T) {
	al, cb, _ := setup(t)
	cb.AddText("alias hello world; alias bye world; unalias hello\n")
	cb.Execute()
	if _, ok := al.Get("hello"); ok {
		t.Errorf("hello survived unalias")
	}
	if v, ok := al.Get("bye"); !ok || v != "world\n" {
		t.Errorf("bye = %q, %v", v, ok)
	}
	cb.AddText("unaliasall\n")
	cb.Execute()
	if _, ok := al.Get("bye"); ok {
		t.Errorf("bye survived unaliasall")
	}
}

func TestPrintAlias(t *testing.T) {
	var out bytes.Buffer
	conlog.SetOutput(&out)
	defer conlog.SetOutput(os.Stderr)
	_, cb, _ := setup(t)

	cb.AddText("alias hello world\n")
	cb.Execute()
	cb.AddText("alias\n")
	cb.Execute()
	if s := out.String(); !strings.Contains(s, "hello: world") || !strings.Contains(s, "1 alias command(s)") {
		t.Errorf("listing = %q", s)
	}
}

func TestRecursiveAliasIsBounded(t *testing.T) {
	al := New()
	cmds := cmd.New()
	if err := al.Register(cmds); err != nil {
		t.Fatal(err)
	}
	echoes := 0
	cb := &cbuf.CommandBuffer{}
	cb.SetCommandExecutors([]cbuf.Efunc{
		cmds.Execute(),
		al.Execute(),
		func(*cbuf.CommandBuffer, cbuf.Arguments) (bool, error) {
			echoes++
			return true, nil
		},
	})
	cb.AddText(`alias loop "echo x; loop"` + "\n")
	cb.AddText("loop\n")
	if err := cb.Execute(); !errors.Is(err, cbuf.ErrExpansionLimit) {
		t.Fatalf("Execute() = %v, want %v", err, cbuf.ErrExpansionLimit)
	}
	if cb.Pending() {
		t.Errorf("buffer kept the runaway expansion")
	}
	if echoes > cbuf.MaxExpansions+1 {
		t.Errorf("%d lines ran past the limit", echoes)
	}
}

func TestWaitingAliasRepeats(t *testing.T) {
	_, cb, worldCount := setup(t)
	cb.AddText(`alias tick "world; wait; tick"` + "\n")
	cb.AddText("tick\n")
	for i := 0; i < 3*cbuf.MaxExpansions; i++ {
		if err := cb.Execute(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if *worldCount != 3*cbuf.MaxExpansions {
		t.Errorf("ran %d times, want %d", *worldCount, 3*cbuf.MaxExpansions)
	}
}
