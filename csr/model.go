// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package csr

import (
	"github.com/db47h/hwgen/sim"
)

// WriteMask returns the value of a register of the given width after a bus
// write of data with byte strobes strobe:
//
//	((old & mask) | data) & (1<<width - 1)
//
// where mask has every strobe bit replicated over its byte lane. Note that
// the data byte lanes are merged without regard to the strobes.
//
func WriteMask(old, data, strobe uint64, width int) uint64 {
	var mask uint64
	for i := 0; i < 8; i++ {
		if strobe&(1<<uint(i)) != 0 {
			mask |= 0xff << (8 * uint(i))
		}
	}
	return ((old & mask) | data) & widthMask(width)
}

func widthMask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(w) - 1
}

// BusIn holds the TL-UL signals driven by the bus master.
//
type BusIn struct {
	AOpcode  uint64
	AAddress uint64
	AMask    uint64
	AData    uint64
	AValid   bool
	DReady   bool
}

// BusOut holds the TL-UL signals driven by the endpoint.
//
type BusOut struct {
	AReady  bool
	DOpcode uint64
	DData   uint64
	DValid  bool
}

// Model is a cycle accurate behavioural model of an endpoint. A Model is not
// safe for concurrent use.
//
type Model struct {
	e      *Endpoint
	stall  bool
	dValid bool
	dOp    uint64
	dData  uint64
	regs   []uint64
	next   []uint64
}

// NewModel returns a model of e in its reset state.
//
func (e *Endpoint) NewModel() *Model {
	return &Model{
		e:    e,
		regs: make([]uint64, len(e.regs)),
		next: make([]uint64, len(e.regs)),
	}
}

// Reset clears the stall register, the response channel and all registers
// held by the endpoint.
//
func (m *Model) Reset() {
	m.stall, m.dValid, m.dOp, m.dData = false, false, 0, 0
	for i := range m.regs {
		if m.e.regs[i].Stored() {
			m.regs[i] = 0
		}
	}
}

// Stall returns the state of the stall register.
//
func (m *Model) Stall() bool { return m.stall }

// Out returns the current outputs on the bus side.
//
func (m *Model) Out() BusOut {
	return BusOut{
		AReady:  !m.stall,
		DOpcode: m.dOp,
		DData:   m.dData,
		DValid:  m.dValid,
	}
}

// Reg returns the current value of register i.
//
func (m *Model) Reg(i int) uint64 { return m.regs[i] }

// SetReg sets the value of register i, truncated to its width. Registers that
// are not held by the endpoint are inputs and must be set before every clock
// edge. For held registers, SetReg overwrites the stored value.
//
func (m *Model) SetReg(i int, v uint64) {
	m.regs[i] = v & widthMask(m.e.regs[i].Pin.Bits())
}

// Select returns the register index decoded from addr.
//
func (m *Model) Select(addr uint64) uint64 {
	return (addr >> 2) & widthMask(m.e.addrBits)
}

// ReadMux returns the value presented by the read multiplexer for address
// addr. It returns false for addresses that do not decode to a readable
// register, in which case the hardware value is undefined.
//
func (m *Model) ReadMux(addr uint64) (uint64, bool) {
	sel := m.Select(addr)
	if sel >= uint64(len(m.regs)) || !m.e.regs[sel].Readable() {
		return 0, false
	}
	return m.regs[sel], true
}

// Clock applies a rising clock edge with bus inputs in. All updates use the
// values sampled before the edge.
//
func (m *Model) Clock(in BusIn) {
	e := m.e
	next := m.next
	copy(next, m.regs)
	dValid, dOp, dData := m.dValid, m.dOp, m.dData

	for i := range e.regs {
		r := &e.regs[i]
		switch r.Class {
		case InputFIFO:
			if m.regs[r.Pair] != 0 && m.regs[i] != 0 {
				next[i] = 0
			}
		case OutputFIFO:
			if m.regs[r.Pair] != 0 && m.regs[i] != 0 {
				next[r.Pair] = 0
			}
		}
	}
	if m.dValid && in.DReady {
		dValid = false
	}
	if !m.stall && in.AValid {
		switch in.AOpcode {
		case e.op.get:
			dData, _ = m.ReadMux(in.AAddress)
			dOp = e.op.ackData
		case e.op.putFull, e.op.putPartial:
			dOp = e.op.ack
			if sel := m.Select(in.AAddress); sel < uint64(len(next)) {
				if r := &e.regs[sel]; r.Writable() {
					data := in.AData & widthMask(e.dataWidth)
					next[sel] = WriteMask(m.regs[sel], data, in.AMask, r.Pin.Bits())
				}
			}
		default:
			dOp = e.op.ack
		}
		dValid = in.AValid
	}
	// stall while the response stays pending after this edge.
	m.stall = dValid

	m.regs, m.next = next, m.regs
	m.dValid, m.dOp, m.dData = dValid, dOp, dData
}

// Part returns a simulation part for e. The part connects to wires named
// after the endpoint ports plus the clk and rst wires.
//
func (e *Endpoint) Part(name string) sim.Part {
	return sim.Part{
		Name:  name,
		Mount: e.mount,
	}
}

func (e *Endpoint) mount(s *sim.Socket) []sim.Component {
	var (
		m   = e.NewModel()
		rst = s.Wire(Rst)
		w   = func(n string) int { return s.Wire(e.bus(n)) }

		aOpcode  = w("a_opcode")
		aAddress = w("a_address")
		aMask    = w("a_mask")
		aData    = w("a_data")
		aValid   = w("a_valid")
		aReady   = w("a_ready")
		dOpcode  = w("d_opcode")
		dData    = w("d_data")
		dValid   = w("d_valid")
		dReady   = w("d_ready")
	)
	regs := make([]int, len(e.regs))
	for i := range e.regs {
		regs[i] = s.Wire(e.regs[i].Port)
	}

	return []sim.Component{
		func(c *sim.Circuit) {
			for i, n := range regs {
				if !e.regs[i].Stored() {
					m.SetReg(i, c.Get(n))
				}
			}
			if c.Posedge() {
				if c.Bool(rst) {
					m.Reset()
				} else {
					m.Clock(BusIn{
						AOpcode:  c.Get(aOpcode),
						AAddress: c.Get(aAddress),
						AMask:    c.Get(aMask),
						AData:    c.Get(aData),
						AValid:   c.Bool(aValid),
						DReady:   c.Bool(dReady),
					})
				}
			}
			out := m.Out()
			c.SetBool(aReady, out.AReady)
			c.Set(dOpcode, out.DOpcode)
			c.Set(dData, out.DData)
			c.SetBool(dValid, out.DValid)
			for i, n := range regs {
				if e.regs[i].Stored() {
					c.Set(n, m.Reg(i))
				}
			}
		},
	}
}
