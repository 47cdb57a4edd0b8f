// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwgen

import (
	"strconv"

	"github.com/pkg/errors"
)

// Dir is a pin direction.
//
type Dir int

// Pin directions.
//
const (
	In Dir = iota
	Out
	InOut
)

var dirNames = [...]string{In: "i", Out: "o", InOut: "io"}

// String returns the descriptor letter for d: "i", "o" or "io".
//
func (d Dir) String() string {
	if d < In || d > InOut {
		return "Dir(" + strconv.Itoa(int(d)) + ")"
	}
	return dirNames[d]
}

// Reverse returns the opposite direction. InOut is its own opposite.
//
func (d Dir) Reverse() Dir {
	switch d {
	case In:
		return Out
	case Out:
		return In
	}
	return d
}

// ParseDir parses a direction letter.
//
func ParseDir(s string) (Dir, error) {
	for d, n := range dirNames {
		if n == s {
			return Dir(d), nil
		}
	}
	return In, errors.Wrapf(ErrInvalidPinSpec, "unknown direction %q", s)
}

// A Pin is a named, directional signal.
//
type Pin struct {
	Dir   Dir
	Name  string
	Width int // 0 means 1
}

// Bits returns the pin width in bits.
//
func (p Pin) Bits() int {
	if p.Width == 0 {
		return 1
	}
	return p.Width
}

func (p Pin) String() string {
	if p.Bits() == 1 {
		return "[" + p.Dir.String() + " " + p.Name + "]"
	}
	return "[" + p.Dir.String() + " " + p.Name + " " + strconv.Itoa(p.Width) + "]"
}

func (p Pin) check() error {
	if p.Name == "" {
		return errors.Wrap(ErrInvalidPinSpec, "empty pin name")
	}
	if p.Width < 0 || p.Dir < In || p.Dir > InOut {
		return errors.Wrapf(ErrInvalidPinSpec, "pin %s", p.Name)
	}
	return nil
}

// ParsePin parses a positional pin descriptor: [dir, name] or
// [dir, name, width]. The width is a numeric literal or the name of a constant
// bound in syms. syms may be nil if no symbolic widths are used.
//
//	ParsePin([]string{"i", "a_opcode", "3"}, nil) // Pin{In, "a_opcode", 3}
//
func ParsePin(fields []string, syms *Symbols) (Pin, error) {
	var p Pin
	if len(fields) != 2 && len(fields) != 3 {
		return p, errors.Wrapf(ErrInvalidPinSpec, "%q: expected 2 or 3 fields, got %d", fields, len(fields))
	}
	d, err := ParseDir(fields[0])
	if err != nil {
		return p, errors.Wrapf(err, "%q", fields)
	}
	p.Dir, p.Name, p.Width = d, fields[1], 1
	if p.Name == "" {
		return p, errors.Wrapf(ErrInvalidPinSpec, "%q: empty pin name", fields)
	}
	if len(fields) == 2 {
		return p, nil
	}

	var w uint64
	if syms != nil {
		w, err = syms.Resolve(fields[2])
	} else {
		var l Literal
		l, err = ParseLiteral(fields[2])
		if err == nil && l.Symbolic {
			err = errors.Wrap(ErrUnresolvedConstant, l.Token)
		}
		w = l.Value
	}
	if err != nil {
		return p, errors.Wrapf(err, "pin %s width", p.Name)
	}
	if w < 1 || w > 1<<16 {
		return p, errors.Wrapf(ErrInvalidPinSpec, "pin %s: invalid width %d", p.Name, w)
	}
	p.Width = int(w)
	return p, nil
}
