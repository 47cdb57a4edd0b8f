// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sim is a small cycle-based simulator for single clock synchronous
// circuits.
//
// A Circuit is a set of Components connected by named wires. Each wire carries
// up to 64 bits. The simulation advances in steps: during a step every
// component reads wire values as they were at the start of the step and its
// writes become visible at the next step, so all updates within a step are
// atomic. The driver of a wire must set it on every step.
//
// The clock is low during the first half of a cycle and high during the
// second. Clocked components update their state on the step where Posedge
// returns true:
//
//	func(c *sim.Circuit) {
//		if c.Posedge() {
//			q = c.Get(d)
//		}
//		c.Set(out, q)
//	}
//
package sim

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Component updates a part of a circuit. It is called once per step.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query the socket for
// wire numbers and return closures around them.
//
type MountFn func(s *Socket) []Component

// A Part is a named blueprint of circuit components.
//
type Part struct {
	Name  string
	Mount MountFn
}

// Clk is the name of the clock wire.
//
const Clk = "clk"

const (
	cstClk = iota
	cstCount
)

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	s0    []uint64 // wire states frame #0
	s1    []uint64 // wire states frame #1
	cs    []Component
	names map[string]int
	count int  // wire count
	tpc   uint // ticks per clock cycle
	tick  uint

	wc []chan struct{}
	wg sync.WaitGroup
}

// NewCircuit builds a new circuit based on the given parts.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// stepsPerCycle indicates how many simulation steps to run per clock cycle. It
// is rounded up to a power of two, with a minimum of 4: inputs need one step
// to reach their wires before the rising edge and registered outputs one step
// to reach probes after it.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, stepsPerCycle uint, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}

	if stepsPerCycle < 4 {
		stepsPerCycle = 4
	}
	stepsPerCycle--
	stepsPerCycle |= stepsPerCycle >> 1
	stepsPerCycle |= stepsPerCycle >> 2
	stepsPerCycle |= stepsPerCycle >> 4
	stepsPerCycle |= stepsPerCycle >> 8
	stepsPerCycle |= stepsPerCycle >> 16
	stepsPerCycle |= stepsPerCycle >> 32
	stepsPerCycle++

	c := &Circuit{
		names: map[string]int{Clk: cstClk},
		count: cstCount,
		tpc:   stepsPerCycle,
	}
	s := &Socket{c: c}
	var ups []Component
	for _, p := range parts {
		if p.Mount == nil {
			return nil, errors.Errorf("part %q has no mount function", p.Name)
		}
		ups = append(ups, p.Mount(s)...)
	}
	ups = append(ups, updClock)
	c.cs = ups
	c.s0 = make([]uint64, c.count)
	c.s1 = make([]uint64, c.count)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	for len(ups) > 0 {
		size := len(ups) / workers
		if size*workers < len(ups) {
			size++
		}
		wc := make(chan struct{}, 1)
		c.wc = append(c.wc, wc)
		go worker(c, ups[:size], wc)
		ups = ups[size:]
	}

	return c, nil
}

func updClock(c *Circuit) {
	tick := c.tick + 1
	switch {
	case tick&(c.tpc-1) == 0:
		c.s1[cstClk] = 0
	case tick&(c.tpc/2-1) == 0:
		c.s1[cstClk] = 1
	default:
		c.s1[cstClk] = c.s0[cstClk]
	}
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

func (c *Circuit) allocWire() int {
	cnt := c.count
	c.count++
	return cnt
}

// Wire returns the number of the named wire.
//
func (c *Circuit) Wire(name string) (int, bool) {
	n, ok := c.names[name]
	return n, ok
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint {
	return c.tick
}

// SPC returns the stepsPerCycle value.
//
func (c *Circuit) SPC() uint {
	return c.tpc
}

// Cycles returns the number of completed clock cycles.
//
func (c *Circuit) Cycles() uint {
	return c.tick / c.tpc
}

// Posedge returns true if the current step is the rising edge of the clock.
//
func (c *Circuit) Posedge() bool {
	return c.tick&(c.tpc-1) == c.tpc/2
}

// Get returns the value of wire n as seen at the start of the current step.
//
func (c *Circuit) Get(n int) uint64 {
	return c.s0[n]
}

// Bool returns true if wire n is non-zero.
//
func (c *Circuit) Bool(n int) bool {
	return c.s0[n] != 0
}

// Set sets the value of wire n for the next step.
//
func (c *Circuit) Set(n int, v uint64) {
	c.s1[n] = v
}

// SetBool sets wire n to 1 if v is true, 0 otherwise.
//
func (c *Circuit) SetBool(n int, v bool) {
	if v {
		c.s1[n] = 1
	} else {
		c.s1[n] = 0
	}
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}

	c.wg.Wait()
	c.tick++
	c.s0, c.s1 = c.s1, c.s0
}

// Tick runs the simulation until the rising edge of the clock.
//
func (c *Circuit) Tick() {
	for c.s0[cstClk] == 0 {
		c.Step()
	}
}

// Tock runs the simulation through the rising edge until the end of the
// cycle. Once Tock returns, the outputs of clocked components have settled.
//
func (c *Circuit) Tock() {
	for c.s0[cstClk] != 0 {
		c.Step()
	}
}

// TickTock runs the simulation for a whole clock cycle.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }
