// SPDX-License-Identifier: GPL-2.0-or-later

package cbuf

import (
	"testing"

	"github.com/pkg/errors"
)

func counter(n *int) []Efunc {
	return []Efunc{func(cb *CommandBuffer, a Arguments) (bool, error) {
		*n++
		return true, nil
	}}
}

func TestWait(t *testing.T) {
	c := CommandBuffer{}
	runCount := 0
	c.SetCommandExecutors(counter(&runCount))
	c.AddText("wait\n")
	c.AddText("test\n")
	c.AddText("test\n")
	c.AddText("wait\n")
	c.AddText("test\n")
	for i, want := range []int{0, 2, 3} {
		if err := c.Execute(); err != nil {
			t.Fatal(err)
		}
		if runCount != want {
			t.Errorf("frame %d: runCount=%v, want %v", i, runCount, want)
		}
	}
	if c.Pending() {
		t.Errorf("buffer still pending")
	}
}

func TestWaitFrames(t *testing.T) {
	c := CommandBuffer{}
	runCount := 0
	c.SetCommandExecutors(counter(&runCount))
	c.AddText("a; wait 3; b")
	want := []int{1, 1, 1, 2}
	for i := range want {
		c.Execute()
		if runCount != want[i] {
			t.Errorf("frame %d: runCount=%v, want %v", i, runCount, want[i])
		}
	}
}

func TestQuotedSeparator(t *testing.T) {
	c := CommandBuffer{}
	var got []string
	c.SetCommandExecutors([]Efunc{func(cb *CommandBuffer, a Arguments) (bool, error) {
		got = append(got, a.Full())
		return true, nil
	}})
	c.AddText(`echo "a;b"; next`)
	c.Execute()
	if len(got) != 2 || got[0] != `echo "a;b"` || got[1] != "next" {
		t.Errorf("lines = %q", got)
	}
}

func TestExecutorError(t *testing.T) {
	c := CommandBuffer{}
	boom := errors.New("boom")
	c.SetCommandExecutors([]Efunc{func(cb *CommandBuffer, a Arguments) (bool, error) {
		return false, boom
	}})
	c.AddText("x\n")
	if err := c.Execute(); !errors.Is(err, boom) {
		t.Errorf("Execute() = %v, want %v", err, boom)
	}
}
