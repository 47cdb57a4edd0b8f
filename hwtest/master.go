// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utilities for testing bus endpoints in a simulated
// circuit.
//
package hwtest

import (
	"github.com/db47h/hwgen/csr"
	"github.com/db47h/hwgen/sim"
	"github.com/db47h/hwgen/tilelink"
	"github.com/pkg/errors"
)

// ErrTimeout is returned by Master transactions that do not complete within
// the configured number of cycles.
//
var ErrTimeout = errors.New("bus timeout")

// Request holds the signals driven by a Master.
//
type Request struct {
	Opcode  uint64
	Address uint64
	Mask    uint64
	Data    uint64
	Valid   bool
	DReady  bool
	Reset   bool
}

// Response is a response received on channel D.
//
type Response struct {
	Opcode uint64
	Data   uint64
}

// Master is a TL-UL bus master. It drives the request channel of a bus in
// namespace ns and samples the endpoint outputs on every step.
//
// A Master must be mounted in a circuit with Part then attached to it with
// Attach before running transactions.
//
type Master struct {
	// Timeout is the maximum number of cycles a transaction waits for
	// a_ready or d_valid. Defaults to 16.
	Timeout int

	ns   string
	mask uint64 // full strobe
	c    *sim.Circuit
	req  Request
	out  csr.BusOut
}

// NewMaster returns a new master for a bus in namespace ns with the given
// data width.
//
func NewMaster(ns string, dataWidth int) *Master {
	return &Master{
		Timeout: 16,
		ns:      ns,
		mask:    1<<uint(dataWidth/8) - 1,
		req:     Request{DReady: true},
	}
}

// Part returns the simulation part of m.
//
func (m *Master) Part() sim.Part {
	return sim.Part{
		Name:  "master(" + m.ns + ")",
		Mount: m.mount,
	}
}

func (m *Master) mount(s *sim.Socket) []sim.Component {
	var (
		w        = func(n string) int { return s.Wire(m.ns + "_" + n) }
		rst      = s.Wire(csr.Rst)
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
	return []sim.Component{
		func(c *sim.Circuit) {
			c.SetBool(rst, m.req.Reset)
			c.Set(aOpcode, m.req.Opcode)
			c.Set(aAddress, m.req.Address)
			c.Set(aMask, m.req.Mask)
			c.Set(aData, m.req.Data)
			c.SetBool(aValid, m.req.Valid)
			c.SetBool(dReady, m.req.DReady)
			m.out = csr.BusOut{
				AReady:  c.Bool(aReady),
				DOpcode: c.Get(dOpcode),
				DData:   c.Get(dData),
				DValid:  c.Bool(dValid),
			}
		},
	}
}

// Attach sets the circuit m is mounted in.
//
func (m *Master) Attach(c *sim.Circuit) { m.c = c }

// Drive sets the signals driven from the next cycle on.
//
func (m *Master) Drive(r Request) { m.req = r }

// Driven returns the signals currently driven.
//
func (m *Master) Driven() Request { return m.req }

// Sample returns the endpoint outputs as last sampled.
//
func (m *Master) Sample() csr.BusOut { return m.out }

// Cycle runs the circuit for one clock cycle.
//
func (m *Master) Cycle() { m.c.TickTock() }

// Reset holds the reset line for one cycle.
//
func (m *Master) Reset() {
	r := m.req
	m.req = Request{Reset: true}
	m.Cycle()
	m.req = r
}

// Get reads the register at byte address addr.
//
func (m *Master) Get(addr uint64) (Response, error) {
	return m.do(Request{Opcode: tilelink.Get, Address: addr, Mask: m.mask})
}

// Put writes data to the register at byte address addr with all byte strobes
// set.
//
func (m *Master) Put(addr, data uint64) (Response, error) {
	return m.do(Request{Opcode: tilelink.PutFullData, Address: addr, Mask: m.mask, Data: data})
}

// PutPartial writes data to the register at byte address addr with byte
// strobes mask.
//
func (m *Master) PutPartial(addr, data, mask uint64) (Response, error) {
	return m.do(Request{Opcode: tilelink.PutPartialData, Address: addr, Mask: mask, Data: data})
}

// do runs a single transaction: it presents r until accepted, then waits for
// the response and consumes it.
//
func (m *Master) do(r Request) (Response, error) {
	if m.c == nil {
		return Response{}, errors.New("master not attached")
	}
	r.Valid, r.DReady = true, false
	m.req = r
	n := 0
	for {
		ready := m.out.AReady
		m.Cycle()
		if ready {
			break
		}
		if n++; n >= m.Timeout {
			m.req = Request{DReady: true}
			return Response{}, errors.Wrapf(ErrTimeout, "request %#x", r.Address)
		}
	}
	m.req = Request{}
	for n = 0; !m.out.DValid; n++ {
		if n >= m.Timeout {
			m.req = Request{DReady: true}
			return Response{}, errors.Wrapf(ErrTimeout, "response %#x", r.Address)
		}
		m.Cycle()
	}
	resp := Response{Opcode: m.out.DOpcode, Data: m.out.DData}
	m.req = Request{DReady: true}
	m.Cycle()
	return resp, nil
}
