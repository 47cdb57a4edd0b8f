// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package design loads register bank descriptions from YAML files.
//
// A design file looks like:
//
//	module: uart_csr
//	bus:
//	  prefix: tl
//	  address_width: 32
//	  data_width: 32
//	defines:
//	  - {name: DATA_W, value: "8'd8"}
//	registers:
//	  prefix: uart
//	  pins:
//	    - [i, tx_data, DATA_W]
//	    - [i, tx_valid]
//	    - [o, tx_ready]
//
// Files are checked against an embedded CUE schema before decoding.
//
package design

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/csr"
	"github.com/db47h/hwgen/tilelink"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schema []byte

// ErrInvalidDesign is returned for design files that do not match the schema.
//
var ErrInvalidDesign = errors.New("invalid design")

// Default bus parameters.
//
const (
	DefaultBusPrefix    = "tl"
	DefaultAddressWidth = 32
	DefaultDataWidth    = 32
)

// Design is a register bank description.
//
type Design struct {
	Module    string    `yaml:"module"`
	Bus       Bus       `yaml:"bus"`
	Defines   []Define  `yaml:"defines"`
	Registers Registers `yaml:"registers"`
}

// Bus describes the TL-UL bus.
//
type Bus struct {
	Prefix       string `yaml:"prefix"`
	AddressWidth int    `yaml:"address_width"`
	DataWidth    int    `yaml:"data_width"`
}

// Define is a named constant.
//
type Define struct {
	Name  string `yaml:"name"`
	Value Scalar `yaml:"value"`
}

// Registers is the register list, as seen by the user logic.
//
type Registers struct {
	Prefix string    `yaml:"prefix"`
	Pins   []Scalars `yaml:"pins"`
}

// Scalar is a YAML scalar kept as its source text.
//
type Scalar string

// UnmarshalYAML implements yaml.Unmarshaler.
//
func (s *Scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: expected a scalar", n.Line)
	}
	*s = Scalar(n.Value)
	return nil
}

// Scalars is a sequence of YAML scalars.
//
type Scalars []string

// UnmarshalYAML implements yaml.Unmarshaler.
//
func (s *Scalars) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return errors.Errorf("line %d: expected a sequence", n.Line)
	}
	r := make(Scalars, 0, len(n.Content))
	for _, c := range n.Content {
		var v Scalar
		if err := v.UnmarshalYAML(c); err != nil {
			return err
		}
		r = append(r, string(v))
	}
	*s = r
	return nil
}

// check validates the raw document against the #Design schema.
//
func check(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "yaml")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "yaml")
	}

	ctx := cuecontext.New()
	s := ctx.CompileBytes(schema)
	if s.Err() != nil {
		return errors.Wrap(s.Err(), "compiling schema")
	}
	def := s.LookupPath(cue.ParsePath("#Design"))
	if def.Err() != nil {
		return errors.Wrap(def.Err(), "looking up #Design")
	}
	v := ctx.CompileBytes(js)
	if v.Err() != nil {
		return errors.Wrap(v.Err(), "compiling design")
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return errors.Wrapf(ErrInvalidDesign, "%v", err)
	}
	return nil
}

// Parse parses and validates a design.
//
func Parse(data []byte) (*Design, error) {
	if err := check(data); err != nil {
		return nil, err
	}
	d := &Design{
		Bus: Bus{
			Prefix:       DefaultBusPrefix,
			AddressWidth: DefaultAddressWidth,
			DataWidth:    DefaultDataWidth,
		},
	}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	return d, nil
}

// Load reads and parses the design file at path.
//
func Load(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	d, err := Parse(data)
	return d, errors.Wrap(err, path)
}

// Symbols returns a new symbol table with the TileLink opcodes and the design
// defines bound, in that order. Defines may override opcodes.
//
func (d *Design) Symbols(log *slog.Logger) (*hwgen.Symbols, error) {
	s := hwgen.NewSymbols(log)
	if err := tilelink.Define(s); err != nil {
		return nil, err
	}
	for _, def := range d.Defines {
		if err := s.Bind(def.Name, string(def.Value)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Type parses the register list, resolving symbolic widths in syms.
//
func (d *Design) Type(syms *hwgen.Symbols) (hwgen.Type, error) {
	rows := make([][]string, len(d.Registers.Pins))
	for i, p := range d.Registers.Pins {
		rows[i] = p
	}
	t, err := hwgen.ParseType(rows, syms)
	return t, errors.Wrap(err, "registers")
}

// Build builds the endpoint described by d. It returns the endpoint together
// with the symbol table used to build it.
//
func (d *Design) Build(log *slog.Logger) (*csr.Endpoint, *hwgen.Symbols, error) {
	if log == nil {
		log = slog.Default()
	}
	syms, err := d.Symbols(log)
	if err != nil {
		return nil, nil, err
	}
	regs, err := d.Type(syms)
	if err != nil {
		return nil, nil, err
	}
	e, err := csr.MakeBuilder().
		WithAddrWidth(d.Bus.AddressWidth).
		WithDataWidth(d.Bus.DataWidth).
		WithModule(d.Module).
		WithSymbols(syms).
		WithLogger(log).
		Build(regs, d.Registers.Prefix, d.Bus.Prefix)
	if err != nil {
		return nil, nil, err
	}
	return e, syms, nil
}
