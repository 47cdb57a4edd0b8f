// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package csr

import (
	"bytes"
	"io"
	"strconv"

	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/tilelink"
	"github.com/db47h/hwgen/verilog"
	"github.com/pkg/errors"
)

const indent = "    "

// sized returns a sized decimal Verilog literal: 3'd4.
//
func sized(width int, v uint64) string {
	return strconv.Itoa(width) + "'d" + strconv.FormatUint(v, 10)
}

// lsb returns the select of the low width bits of name.
//
func lsb(name string, width int) string {
	if width == 1 {
		return name + "[0]"
	}
	return name + "[" + strconv.Itoa(width-1) + ":0]"
}

type emitter struct {
	e *Endpoint
	b bytes.Buffer
}

func (m *emitter) line(depth int, s ...string) {
	for i := 0; i < depth; i++ {
		m.b.WriteString(indent)
	}
	for _, p := range s {
		m.b.WriteString(p)
	}
	m.b.WriteByte('\n')
}

// WriteVerilog writes the Verilog module implementing e to w. Nothing is
// written if an error occurs.
//
func (e *Endpoint) WriteVerilog(w io.Writer) error {
	m := &emitter{e: e}
	if err := m.module(); err != nil {
		return errors.Wrapf(err, "module %s", e.module)
	}
	_, err := w.Write(m.b.Bytes())
	return errors.Wrap(err, "write")
}

func (m *emitter) module() error {
	e := m.e
	m.line(0, "module ", e.module, " (")
	if err := m.ports(); err != nil {
		return err
	}
	m.line(0, ");")
	m.line(0)
	m.decls()
	m.line(0)
	m.assigns()
	m.line(0)
	m.readMux()
	m.line(0)
	m.sync()
	m.line(0, "endmodule")
	return nil
}

func (m *emitter) ports() error {
	e := m.e
	opt := &verilog.Options{Indent: indent, LastComma: true}
	if err := verilog.Ports(&m.b, "", clkRst, opt); err != nil {
		return err
	}
	// a_ready is combinational, all other bus outputs are registered.
	ready := e.bus("a_ready")
	for _, p := range e.BusPorts() {
		o := *opt
		o.Reg = p.Name != ready
		if err := verilog.Ports(&m.b, "", hwgen.Type{p}, &o); err != nil {
			return err
		}
	}
	return verilog.Ports(&m.b, "", e.RegisterPorts(), &verilog.Options{Indent: indent, Reg: true})
}

func (m *emitter) decls() {
	e := m.e
	m.line(1, "reg ", e.bus(sigStall), ";")
	m.line(1, "reg ", verilog.Range(e.dataWidth), " ", e.bus(sigRData), ";")
	m.line(1, "wire ", verilog.Range(e.dataWidth), " ", e.bus(sigWMask), ";")
	if e.addrBits > 0 {
		m.line(1, "wire ", prefixRange(e.addrBits), e.bus(sigSel), ";")
	}
}

func prefixRange(w int) string {
	if r := verilog.Range(w); r != "" {
		return r + " "
	}
	return ""
}

func (m *emitter) assigns() {
	e := m.e
	m.line(1, "assign ", e.bus("a_ready"), " = !", e.bus(sigStall), ";")
	if e.addrBits > 0 {
		m.line(1, "assign ", e.bus(sigSel), " = ", e.bus("a_address"),
			"[", strconv.Itoa(e.addrBits+1), ":2];")
	}
	// replicate every strobe bit over its byte lane, msb first
	lanes := e.dataWidth / 8
	var mask bytes.Buffer
	mask.WriteByte('{')
	for i := lanes - 1; i >= 0; i-- {
		mask.WriteString("{8{")
		mask.WriteString(e.bus("a_mask"))
		if lanes > 1 {
			mask.WriteString("[" + strconv.Itoa(i) + "]")
		}
		mask.WriteString("}}")
		if i > 0 {
			mask.WriteByte(',')
		}
	}
	mask.WriteByte('}')
	m.line(1, "assign ", e.bus(sigWMask), " = ", mask.String(), ";")
}

// readValue returns the zero extended value of register r.
//
func (m *emitter) readValue(r *Register) string {
	w := r.Pin.Bits()
	if w == m.e.dataWidth {
		return r.Port
	}
	return "{{" + strconv.Itoa(m.e.dataWidth-w) + "{1'b0}}," + r.Port + "}"
}

func (m *emitter) dontCare() string {
	return "{" + strconv.Itoa(m.e.dataWidth) + "{1'bx}}"
}

func (m *emitter) readMux() {
	e := m.e
	rdata := e.bus(sigRData)
	if e.addrBits == 0 {
		v := m.dontCare()
		if r := &e.regs[0]; r.Readable() {
			v = m.readValue(r)
		}
		m.line(1, "always @(*) ", rdata, " = ", v, ";")
		return
	}
	m.line(1, "always @(*) begin")
	m.line(2, "case (", e.bus(sigSel), ")")
	for i := range e.regs {
		r := &e.regs[i]
		if !r.Readable() {
			continue
		}
		m.line(3, sized(e.addrBits, uint64(r.Index)), ": ", rdata, " = ", m.readValue(r), ";")
	}
	m.line(3, "default: ", rdata, " = ", m.dontCare(), ";")
	m.line(2, "endcase")
	m.line(1, "end")
}

func (m *emitter) sync() {
	e := m.e
	var (
		stall   = e.bus(sigStall)
		dValid  = e.bus("d_valid")
		dReady  = e.bus("d_ready")
		dOpcode = e.bus("d_opcode")
		dData   = e.bus("d_data")
		aValid  = e.bus("a_valid")
		opw     = tilelink.OpcodeWidth
	)
	m.line(1, "always @(posedge ", Clk, ") begin")
	m.line(2, "if (", Rst, ") begin")
	m.line(3, stall, " <= 1'b0;")
	m.line(3, dValid, " <= 1'b0;")
	m.line(3, dOpcode, " <= ", sized(opw, 0), ";")
	m.line(3, dData, " <= ", sized(e.dataWidth, 0), ";")
	for i := range e.regs {
		if r := &e.regs[i]; r.Stored() {
			m.line(3, r.Port, " <= ", sized(r.Pin.Bits(), 0), ";")
		}
	}
	m.line(2, "end else begin")

	for i := range e.regs {
		r := &e.regs[i]
		switch r.Class {
		case InputFIFO:
			v := e.regs[r.Pair].Port
			m.line(3, "if (", v, " && ", r.Port, ") ", r.Port, " <= 1'b0;")
		case OutputFIFO:
			v := e.regs[r.Pair].Port
			m.line(3, "if (", v, " && ", r.Port, ") ", v, " <= 1'b0;")
		}
	}
	m.line(3, "if (", dValid, " && ", dReady, ") ", dValid, " <= 1'b0;")

	m.line(3, "if (!", stall, " && ", aValid, ") begin")
	m.line(4, "case (", e.bus("a_opcode"), ")")
	m.line(5, sized(opw, e.op.get), ": begin")
	m.line(6, dData, " <= ", e.bus(sigRData), ";")
	m.line(6, dOpcode, " <= ", sized(opw, e.op.ackData), ";")
	m.line(5, "end")
	m.line(5, sized(opw, e.op.putFull), ", ", sized(opw, e.op.putPartial), ": begin")
	m.line(6, dOpcode, " <= ", sized(opw, e.op.ack), ";")
	m.writes(6)
	m.line(5, "end")
	m.line(5, "default: ", dOpcode, " <= ", sized(opw, e.op.ack), ";")
	m.line(4, "endcase")
	m.line(4, dValid, " <= ", aValid, ";")
	m.line(3, "end")

	m.line(3, stall, " <= (", dValid, " && !", dReady, ") || (!", stall, " && ", aValid, ");")
	m.line(2, "end")
	m.line(1, "end")
}

// write renders the masked write of r, after an optional case label.
//
func (m *emitter) write(depth int, label string, r *Register) {
	w := r.Pin.Bits()
	m.line(depth, label, r.Port, " <= (", r.Port, " & ", lsb(m.e.bus(sigWMask), w), ") | ",
		lsb(m.e.bus("a_data"), w), ";")
}

func (m *emitter) writes(depth int) {
	e := m.e
	if e.addrBits == 0 {
		if r := &e.regs[0]; r.Writable() {
			m.write(depth, "", r)
		}
		return
	}
	m.line(depth, "case (", e.bus(sigSel), ")")
	for i := range e.regs {
		if r := &e.regs[i]; r.Writable() {
			m.write(depth+1, sized(e.addrBits, uint64(r.Index))+": ", r)
		}
	}
	m.line(depth+1, "default: ;")
	m.line(depth, "endcase")
}
