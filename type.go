// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwgen

import "github.com/pkg/errors"

// A Type is an interface type: an ordered bundle of pins describing one side
// of a connection.
//
// Types are treated as values. The functions below never modify their
// arguments.
//
type Type []Pin

// ParseType parses a list of positional pin descriptors. See ParsePin.
//
func ParseType(rows [][]string, syms *Symbols) (Type, error) {
	t := make(Type, 0, len(rows))
	for i, r := range rows {
		p, err := ParsePin(r, syms)
		if err != nil {
			return nil, errors.Wrapf(err, "pin #%d", i)
		}
		t = append(t, p)
	}
	return t, nil
}

// Clone returns a copy of t.
//
func (t Type) Clone() Type { return t.clone(0) }

func (t Type) clone(extra int) Type {
	r := make(Type, len(t), len(t)+extra)
	copy(r, t)
	return r
}

// Reverse returns t with In and Out swapped. InOut pins are unchanged.
//
func Reverse(t Type) Type {
	r := t.clone(0)
	for i := range r {
		r[i].Dir = r[i].Dir.Reverse()
	}
	return r
}

// Handshake returns t followed by a valid input and a ready output.
//
func Handshake(t Type) Type {
	return append(t.clone(2),
		Pin{Dir: In, Name: "valid", Width: 1},
		Pin{Dir: Out, Name: "ready", Width: 1})
}

// Prefix returns t with every pin renamed to name_<pin name>.
//
func Prefix(name string, t Type) Type {
	r := t.clone(0)
	for i := range r {
		r[i].Name = name + "_" + r[i].Name
	}
	return r
}

// Concat returns the pins of ts in order.
//
func Concat(ts ...Type) Type {
	var r Type
	for _, t := range ts {
		r = append(r, t...)
	}
	return r
}

// WidthSum returns the total width of t in bits.
//
func WidthSum(t Type) int {
	n := 0
	for _, p := range t {
		n += p.Bits()
	}
	return n
}

// Names returns the pin names of t in order.
//
func (t Type) Names() []string {
	r := make([]string, len(t))
	for i, p := range t {
		r[i] = p.Name
	}
	return r
}

// Lookup returns the index of the pin with the given name, or -1.
//
func (t Type) Lookup(name string) int {
	for i, p := range t {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks that every pin of t is well formed and that pin names are
// unique.
//
func (t Type) Validate() error {
	seen := make(map[string]int, len(t))
	for i, p := range t {
		if err := p.check(); err != nil {
			return errors.Wrapf(err, "pin #%d", i)
		}
		if j, ok := seen[p.Name]; ok {
			return errors.Wrapf(ErrAmbiguousName, "%s: pins #%d and #%d", p.Name, j, i)
		}
		seen[p.Name] = i
	}
	return nil
}
