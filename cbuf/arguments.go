// SPDX-License-Identifier: GPL-2.0-or-later

package cbuf

import (
	"strconv"
	"strings"
	"unicode"
)

// Arg is one token of a script line.
type Arg struct {
	a string
}

func (a Arg) String() string {
	return a.a
}

func (a Arg) Int() int {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

func (a Arg) Float32() float32 {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0
	}
	return float32(r)
}

func (a Arg) Float64() float64 {
	r, err := strconv.ParseFloat(a.a, 64)
	if err != nil {
		return 0
	}
	return r
}

// ParseFloat32 is Float32 with the conversion error.
func (a Arg) ParseFloat32() (float32, error) {
	r, err := strconv.ParseFloat(a.a, 32)
	return float32(r), err
}

func (a Arg) Bool() bool {
	switch strings.ToLower(a.a) {
	case "1", "t", "true", "on":
		return true
	default:
		return false
	}
}

type Arguments struct {
	args []Arg
	// the trimmed source line
	full string
}

// Argv returns argument i or the empty argument when out of range.
func (c Arguments) Argv(i int) Arg {
	if i < 0 || i >= len(c.args) {
		return Arg{}
	}
	return c.args[i]
}

func (c Arguments) Full() string {
	return c.full
}

func (c Arguments) Args() []Arg {
	return c.args
}

// ArgumentString is the line without the command name, quotes around a
// single argument removed.
func (c Arguments) ArgumentString() string {
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	if len(r) > 1 && r[0] == '"' {
		r = strings.Trim(r, "\"\t\n\v\f\r ")
	}
	return r
}

// Parse splits one line into tokens. Quoted strings form a single token
// and // starts a comment running to the end of the line.
func Parse(s string) Arguments {
	args := Arguments{full: strings.TrimFunc(s, unicode.IsSpace), args: []Arg{}}
	in := args.full
	for len(in) > 0 {
		switch {
		case in[0] == ' ' || in[0] == '\t':
			in = in[1:]
		case strings.HasPrefix(in, "//"):
			return args
		case in[0] == '"':
			end := strings.IndexByte(in[1:], '"')
			if end < 0 {
				// unterminated, take the rest
				args.args = append(args.args, Arg{in[1:]})
				return args
			}
			args.args = append(args.args, Arg{in[1 : end+1]})
			in = in[end+2:]
		default:
			end := strings.IndexAny(in, " \t\"")
			if end < 0 {
				end = len(in)
			}
			args.args = append(args.args, Arg{in[:end]})
			in = in[end:]
		}
	}
	return args
}
