// SPDX-License-Identifier: GPL-2.0-or-later

package cbuf

import "testing"

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in     string
		wantF  string
		wantAS string
		wantA  []Arg
	}{
		{
			in:     `look 0 1.2 5`,
			wantF:  `look 0 1.2 5`,
			wantAS: `0 1.2 5`,
			wantA:  []Arg{{"look"}, {"0"}, {"1.2"}, {"5"}},
		},
		{
			in:     `alias stroll "+forward; wait 60"`,
			wantF:  `alias stroll "+forward; wait 60"`,
			wantAS: `stroll "+forward; wait 60"`,
			wantA:  []Arg{{"alias"}, {"stroll"}, {"+forward; wait 60"}},
		},
		{
			in:     ` +left  // turn around `,
			wantF:  `+left  // turn around`,
			wantAS: ``,
			wantA:  []Arg{{"+left"}},
		},
		{
			in:    `// nothing`,
			wantF: `// nothing`,
			wantA: []Arg{},
		},
	} {
		arg := Parse(tc.in)
		if tc.wantF != arg.Full() {
			t.Errorf("Parse(%q).Full()=%q, want %q", tc.in, arg.Full(), tc.wantF)
		}
		if tc.wantAS != arg.ArgumentString() {
			t.Errorf("Parse(%q).ArgumentString()=%q, want %q", tc.in, arg.ArgumentString(), tc.wantAS)
		}
		as := arg.Args()
		if len(tc.wantA) != len(as) {
			t.Fatalf("Parse(%q).Args() has len(%d), want %d", tc.in, len(as), len(tc.wantA))
		}
		for i := range tc.wantA {
			if tc.wantA[i] != as[i] {
				t.Errorf("Arg[%d]=%q, want %q", i, as[i], tc.wantA[i])
			}
		}
	}
}

func TestArgConversions(t *testing.T) {
	a := Parse("x 12 0.5 on nope")
	if a.Argv(1).Int() != 12 || a.Argv(2).Float32() != 0.5 || !a.Argv(3).Bool() || a.Argv(4).Bool() {
		t.Errorf("conversions of %q failed", a.Full())
	}
	if a.Argv(9).String() != "" {
		t.Errorf("out of range Argv not empty")
	}
	if _, err := a.Argv(4).ParseFloat32(); err == nil {
		t.Errorf("ParseFloat32(nope) succeeded")
	}
}
