// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package csr synthesizes TileLink Uncached Lightweight (TL-UL) responders for
// banks of control and status registers.
//
// A register bank is an interface type as seen from the user logic. Register
// i is mapped at byte offset 4*i. The endpoint drives the registers that are
// inputs of the user logic and reads the ones that are outputs; see Classify
// for the handling of FIFO handshake signals.
//
// The endpoint accepts one request at a time: a_ready is low while the stall
// register is set, and the stall register is set for as long as a response
// sits unconsumed on channel D, from the cycle it is first presented on.
//
package csr

import (
	"log/slog"
	"strings"

	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/tilelink"
	"github.com/pkg/errors"
)

// MaxDataWidth is the widest data bus supported.
//
const MaxDataWidth = 64

// Internal signal names, in the bus namespace.
//
const (
	sigStall = "stall"
	sigRData = "rdata"
	sigWMask = "wmask"
	sigSel   = "sel"
)

// Clock and reset port names.
//
const (
	Clk = "clk"
	Rst = "rst"
)

// A Register is a register of an endpoint.
//
type Register struct {
	Index int       // word address
	Pin   hwgen.Pin // as declared, from the user logic side
	Class Class
	Port  string // endpoint port name
	// Pair is the index of the valid signal paired with a FIFO ready signal,
	// -1 for other classes.
	Pair int
}

// Offset returns the byte offset of r.
//
func (r *Register) Offset() uint64 { return uint64(r.Index) * 4 }

// Stored returns true if the endpoint holds the value of r.
//
func (r *Register) Stored() bool { return r.Pin.Dir == hwgen.In }

// Readable returns true if r is visible through the read multiplexer.
//
func (r *Register) Readable() bool { return r.Class != WriteOnly }

// Writable returns true if bus writes update r.
//
func (r *Register) Writable() bool {
	return r.Stored() && (r.Class == ReadWrite || r.Class == InputFIFO)
}

// Access returns a short access description: "rw", "r", "w" or "-".
//
func (r *Register) Access() string {
	var s string
	if r.Readable() {
		s = "r"
	}
	if r.Writable() {
		s += "w"
	}
	if s == "" {
		s = "-"
	}
	return s
}

type opcodes struct {
	get, putFull, putPartial uint64
	ack, ackData             uint64
}

// Endpoint is a synthesized TL-UL register endpoint.
//
type Endpoint struct {
	module    string
	regNS     string
	busNS     string
	addrWidth int
	dataWidth int
	addrBits  int
	regs      []Register
	regType   hwgen.Type // user side register type
	op        opcodes
}

// Builder builds endpoints.
//
type Builder struct {
	addrWidth int
	dataWidth int
	module    string
	syms      *hwgen.Symbols
	log       *slog.Logger
}

// MakeBuilder returns a Builder with a 32 bits address and data bus.
//
func MakeBuilder() Builder {
	return Builder{addrWidth: 32, dataWidth: 32}
}

// WithAddrWidth sets the width of the a_address field.
//
func (b Builder) WithAddrWidth(w int) Builder {
	b.addrWidth = w
	return b
}

// WithDataWidth sets the width of the data fields. It must be a multiple of 8
// and no wider than MaxDataWidth.
//
func (b Builder) WithDataWidth(w int) Builder {
	b.dataWidth = w
	return b
}

// WithModule sets the name of the generated Verilog module. It defaults to
// <regNS>_csr.
//
func (b Builder) WithModule(name string) Builder {
	b.module = name
	return b
}

// WithSymbols sets the symbol table used to resolve the TileLink opcodes. The
// table must have the tilelink opcode constants bound. If no table is set, a
// fresh one is created with the default opcodes.
//
func (b Builder) WithSymbols(s *hwgen.Symbols) Builder {
	b.syms = s
	return b
}

// WithLogger sets the logger. Defaults to slog.Default().
//
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.log = l
	return b
}

// Build synthesizes an endpoint for registers regs. Endpoint ports are named
// <regNS>_<name> for registers and <busNS>_<name> for the TL-UL bus.
//
// Registers must be inputs or outputs of the user logic; InOut registers are
// rejected with hwgen.ErrInvalidPinSpec.
//
func (b Builder) Build(regs hwgen.Type, regNS, busNS string) (*Endpoint, error) {
	log := b.log
	if log == nil {
		log = slog.Default()
	}
	if len(regs) == 0 {
		return nil, errors.New("empty register list")
	}
	if b.dataWidth < 8 || b.dataWidth > MaxDataWidth || b.dataWidth%8 != 0 {
		return nil, errors.Errorf("unsupported data width %d", b.dataWidth)
	}
	if regNS == "" || busNS == "" {
		return nil, errors.New("empty namespace")
	}
	if err := regs.Validate(); err != nil {
		return nil, errors.Wrap(err, "registers")
	}

	e := &Endpoint{
		module:    b.module,
		regNS:     regNS,
		busNS:     busNS,
		addrWidth: b.addrWidth,
		dataWidth: b.dataWidth,
		addrBits:  AddrBits(len(regs)),
		regType:   regs.Clone(),
	}
	if e.module == "" {
		e.module = regNS + "_csr"
	}
	if e.addrBits+2 > b.addrWidth {
		return nil, errors.Errorf("%d registers do not fit in a %d bits address", len(regs), b.addrWidth)
	}

	syms := b.syms
	if syms == nil {
		syms = hwgen.NewSymbols(log)
		if err := tilelink.Define(syms); err != nil {
			return nil, err
		}
	}
	if err := e.resolveOpcodes(syms); err != nil {
		return nil, err
	}

	// classification pass, index = address
	e.regs = make([]Register, len(regs))
	for i, p := range regs {
		// the endpoint would have to both hold and sample an inout.
		if p.Dir == hwgen.InOut {
			return nil, errors.Wrapf(hwgen.ErrInvalidPinSpec, "register %s: inout registers are not supported", p.Name)
		}
		if p.Bits() > b.dataWidth {
			return nil, errors.Errorf("register %s: width %d exceeds data width %d", p.Name, p.Bits(), b.dataWidth)
		}
		e.regs[i] = Register{
			Index: i,
			Pin:   p,
			Class: Classify(p),
			Port:  regNS + "_" + p.Name,
			Pair:  -1,
		}
	}
	for i := range e.regs {
		if err := e.pair(&e.regs[i]); err != nil {
			return nil, err
		}
	}

	// all names in the module must be distinct once qualified.
	if err := hwgen.Concat(e.Ports(), e.internals()).Validate(); err != nil {
		return nil, errors.Wrap(err, "endpoint "+e.module)
	}

	log.Debug("csr endpoint",
		"module", e.module,
		"registers", len(e.regs),
		"addr_bits", e.addrBits,
		"data_width", e.dataWidth)
	return e, nil
}

func (e *Endpoint) resolveOpcodes(s *hwgen.Symbols) error {
	for _, r := range []struct {
		name string
		v    *uint64
	}{
		{tilelink.OpGet, &e.op.get},
		{tilelink.OpPutFullData, &e.op.putFull},
		{tilelink.OpPutPartialData, &e.op.putPartial},
		{tilelink.OpAccessAck, &e.op.ack},
		{tilelink.OpAccessAckData, &e.op.ackData},
	} {
		v, err := s.Value(r.name)
		if err != nil {
			return errors.Wrap(err, "opcode")
		}
		if v >= 1<<tilelink.OpcodeWidth {
			return errors.Errorf("opcode %s: value %d does not fit in %d bits", r.name, v, tilelink.OpcodeWidth)
		}
		*r.v = v
	}
	return nil
}

// pair links FIFO ready signals to their valid signal.
//
func (e *Endpoint) pair(r *Register) error {
	if r.Class != InputFIFO && r.Class != OutputFIFO {
		return nil
	}
	base := strings.TrimSuffix(r.Pin.Name, suffixReady)
	i := e.regType.Lookup(base + suffixValid)
	if i < 0 {
		return errors.Wrapf(hwgen.ErrInvalidPinSpec, "%s: no matching %s%s", r.Pin.Name, base, suffixValid)
	}
	// the endpoint clears the valid bit of output FIFOs: it must hold it.
	if r.Class == OutputFIFO && !e.regs[i].Stored() {
		return errors.Wrapf(hwgen.ErrInvalidPinSpec, "%s: %s must be an input of the user logic", r.Pin.Name, e.regs[i].Pin.Name)
	}
	r.Pair = i
	return nil
}

// internals returns the internal signals of the endpoint, for name checks.
//
func (e *Endpoint) internals() hwgen.Type {
	return hwgen.Prefix(e.busNS, hwgen.Type{
		{Dir: hwgen.Out, Name: sigStall},
		{Dir: hwgen.Out, Name: sigRData},
		{Dir: hwgen.Out, Name: sigWMask},
		{Dir: hwgen.Out, Name: sigSel},
	})
}

// Module returns the Verilog module name.
//
func (e *Endpoint) Module() string { return e.module }

// BusNS returns the bus namespace.
//
func (e *Endpoint) BusNS() string { return e.busNS }

// RegNS returns the register namespace.
//
func (e *Endpoint) RegNS() string { return e.regNS }

// AddrBits returns the number of address bits decoded. The register index is
// a_address[AddrBits()+1:2].
//
func (e *Endpoint) AddrBits() int { return e.addrBits }

// DataWidth returns the width of the data bus.
//
func (e *Endpoint) DataWidth() int { return e.dataWidth }

// AddrWidth returns the width of the address bus.
//
func (e *Endpoint) AddrWidth() int { return e.addrWidth }

// Registers returns the registers of e, indexed by address.
//
func (e *Endpoint) Registers() []Register {
	r := make([]Register, len(e.regs))
	copy(r, e.regs)
	return r
}

// BusPorts returns the TL-UL ports of the endpoint.
//
func (e *Endpoint) BusPorts() hwgen.Type {
	return hwgen.Prefix(e.busNS, tilelink.UL(e.addrWidth, e.dataWidth))
}

// RegisterPorts returns the register ports of the endpoint: the reverse of
// the register type, in the register namespace.
//
func (e *Endpoint) RegisterPorts() hwgen.Type {
	return hwgen.Prefix(e.regNS, hwgen.Reverse(e.regType))
}

// Ports returns all ports of the endpoint module: clock, reset, bus and
// registers.
//
func (e *Endpoint) Ports() hwgen.Type {
	return hwgen.Concat(clkRst, e.BusPorts(), e.RegisterPorts())
}

var clkRst = hwgen.Type{
	{Dir: hwgen.In, Name: Clk, Width: 1},
	{Dir: hwgen.In, Name: Rst, Width: 1},
}

func (e *Endpoint) bus(name string) string { return e.busNS + "_" + name }
