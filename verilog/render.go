// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package verilog renders interface types as Verilog source fragments.
//
// Every function renders into a buffer first and writes nothing to w if the
// type is invalid, so a failed call never leaves a partial fragment behind.
//
package verilog

import (
	"bytes"
	"io"
	"strconv"

	"github.com/db47h/hwgen"
	"github.com/pkg/errors"
)

// Options control rendering. A nil *Options is valid and uses the defaults.
//
type Options struct {
	// Count is the number of replicas of the type. Values below 2 render a
	// single copy with no index suffix.
	Count int
	// Reg declares output ports as reg instead of wire (Ports only).
	Reg bool
	// LastComma keeps the list separator after the last item (Ports and
	// Connect). Use it when more items follow in the enclosing list.
	LastComma bool
	// WirePrefix is the prefix of the wire side in Connect and the source side
	// in Capture. Defaults to the port prefix.
	WirePrefix string
	// Indent is written at the start of every line.
	Indent string
}

func (o *Options) count() int {
	if o == nil || o.Count < 1 {
		return 1
	}
	return o.Count
}

func (o *Options) indent() string {
	if o == nil {
		return ""
	}
	return o.Indent
}

// Storage is the kind of a declaration.
//
type Storage int

// Storage kinds.
//
const (
	Wire Storage = iota
	Reg
)

func (s Storage) String() string {
	if s == Reg {
		return "reg"
	}
	return "wire"
}

var keywords = [...]string{hwgen.In: "input", hwgen.Out: "output", hwgen.InOut: "inout"}

// Ident returns the name of pin name of replica i out of count, in namespace
// prefix:
//
//	Ident("tl", "a_valid", 0, 1) // "tl_a_valid"
//	Ident("tl", "a_valid", 1, 2) // "tl_a_valid1"
//
// An empty prefix leaves the pin name alone.
//
func Ident(prefix, name string, i, count int) string {
	if prefix != "" {
		name = prefix + "_" + name
	}
	if count > 1 {
		name += strconv.Itoa(i)
	}
	return name
}

// Range returns the bit range annotation for width: "[w-1:0]", or "" if
// width is 1.
//
func Range(width int) string {
	if width <= 1 {
		return ""
	}
	return "[" + strconv.Itoa(width-1) + ":0]"
}

func check(t hwgen.Type, opt *Options) error {
	if opt != nil && opt.Count < 0 {
		return errors.Wrapf(hwgen.ErrInvalidPinSpec, "negative replica count %d", opt.Count)
	}
	return t.Validate()
}

// decl writes "<kw> <range> <name>" with single spaces.
//
func decl(b *bytes.Buffer, kw string, width int, name string) {
	b.WriteString(kw)
	b.WriteByte(' ')
	if r := Range(width); r != "" {
		b.WriteString(r)
		b.WriteByte(' ')
	}
	b.WriteString(name)
}

// list renders a comma separated list of n items per replica, one per line.
//
func list(w io.Writer, t hwgen.Type, opt *Options, item func(b *bytes.Buffer, p hwgen.Pin, i, cnt int)) error {
	if err := check(t, opt); err != nil {
		return err
	}
	var b bytes.Buffer
	cnt := opt.count()
	for i := 0; i < cnt; i++ {
		for j, p := range t {
			b.WriteString(opt.indent())
			item(&b, p, i, cnt)
			if i < cnt-1 || j < len(t)-1 || (opt != nil && opt.LastComma) {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
	}
	_, err := w.Write(b.Bytes())
	return errors.Wrap(err, "write")
}

// Ports renders t as module port declarations in namespace prefix:
//
//	input wire [2:0] tl_a_opcode,
//	output reg tl_a_ready
//
func Ports(w io.Writer, prefix string, t hwgen.Type, opt *Options) error {
	return list(w, t, opt, func(b *bytes.Buffer, p hwgen.Pin, i, cnt int) {
		kind := Wire
		if opt != nil && opt.Reg && p.Dir == hwgen.Out {
			kind = Reg
		}
		decl(b, keywords[p.Dir]+" "+kind.String(), p.Bits(), Ident(prefix, p.Name, i, cnt))
	})
}

// Connect renders instance connections binding the ports of t in namespace
// prefix to wires in namespace opt.WirePrefix:
//
//	.uart_tx_valid(tx_valid),
//
func Connect(w io.Writer, prefix string, t hwgen.Type, opt *Options) error {
	wp := prefix
	if opt != nil && opt.WirePrefix != "" {
		wp = opt.WirePrefix
	}
	return list(w, t, opt, func(b *bytes.Buffer, p hwgen.Pin, i, cnt int) {
		b.WriteByte('.')
		b.WriteString(Ident(prefix, p.Name, i, cnt))
		b.WriteByte('(')
		b.WriteString(Ident(wp, p.Name, i, cnt))
		b.WriteByte(')')
	})
}

// Decls renders wire or reg declarations for t in namespace prefix:
//
//	wire [31:0] s_data;
//
func Decls(w io.Writer, kind Storage, prefix string, t hwgen.Type, opt *Options) error {
	if err := check(t, opt); err != nil {
		return err
	}
	var b bytes.Buffer
	cnt := opt.count()
	for i := 0; i < cnt; i++ {
		for _, p := range t {
			b.WriteString(opt.indent())
			decl(&b, kind.String(), p.Bits(), Ident(prefix, p.Name, i, cnt))
			b.WriteString(";\n")
		}
	}
	_, err := w.Write(b.Bytes())
	return errors.Wrap(err, "write")
}

// Capture renders non-blocking assignments of every pin of t in namespace
// opt.WirePrefix to the same pin in namespace dst:
//
//	q_data <= d_data;
//
func Capture(w io.Writer, dst string, t hwgen.Type, opt *Options) error {
	if err := check(t, opt); err != nil {
		return err
	}
	src := dst
	if opt != nil && opt.WirePrefix != "" {
		src = opt.WirePrefix
	}
	var b bytes.Buffer
	cnt := opt.count()
	for i := 0; i < cnt; i++ {
		for _, p := range t {
			b.WriteString(opt.indent())
			b.WriteString(Ident(dst, p.Name, i, cnt))
			b.WriteString(" <= ")
			b.WriteString(Ident(src, p.Name, i, cnt))
			b.WriteString(";\n")
		}
	}
	_, err := w.Write(b.Bytes())
	return errors.Wrap(err, "write")
}

// Cat renders the concatenation of all pins of t in namespace prefix. The
// first pin of the first replica is the most significant:
//
//	{s_valid,s_data}
//
// No newline or indentation is written.
//
func Cat(w io.Writer, prefix string, t hwgen.Type, opt *Options) error {
	if err := check(t, opt); err != nil {
		return err
	}
	if len(t) == 0 {
		return errors.Wrap(hwgen.ErrInvalidPinSpec, "empty concatenation")
	}
	var b bytes.Buffer
	b.WriteByte('{')
	cnt := opt.count()
	for i := 0; i < cnt; i++ {
		for j, p := range t {
			if i > 0 || j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Ident(prefix, p.Name, i, cnt))
		}
	}
	b.WriteByte('}')
	_, err := w.Write(b.Bytes())
	return errors.Wrap(err, "write")
}

// Defines renders a `define directive for every constant in syms, in bind
// order, using the token as it was bound.
//
func Defines(w io.Writer, syms *hwgen.Symbols) error {
	var b bytes.Buffer
	for _, n := range syms.Names() {
		l, err := syms.Lookup(n)
		if err != nil {
			return err
		}
		b.WriteString("`define ")
		b.WriteString(n)
		b.WriteByte(' ')
		b.WriteString(l.Token)
		b.WriteByte('\n')
	}
	_, err := w.Write(b.Bytes())
	return errors.Wrap(err, "write")
}
