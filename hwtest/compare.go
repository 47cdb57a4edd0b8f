// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/db47h/hwgen/csr"
	"github.com/db47h/hwgen/sim"
	"github.com/db47h/hwgen/tilelink"
)

func randBool(r *rand.Rand) bool {
	return r.Int63()&(1<<62) != 0
}

var randOps = [...]uint64{
	tilelink.Get, tilelink.Get,
	tilelink.PutFullData, tilelink.PutPartialData,
	tilelink.Intent,
}

// randRequest returns a random request for an endpoint decoding ab address
// bits. Addresses may fall outside of the register range.
//
func randRequest(r *rand.Rand, ab, dataWidth int) Request {
	return Request{
		Opcode:  randOps[r.Intn(len(randOps))],
		Address: uint64(r.Intn(4<<uint(ab)+4)) &^ 3,
		Mask:    uint64(r.Intn(1 << uint(dataWidth/8))),
		Data:    r.Uint64() & (1<<uint(dataWidth) - 1),
		Valid:   randBool(r),
		DReady:  randBool(r),
	}
}

// CheckMount checks the simulation part of endpoint e against a standalone
// model of e. It runs random bus traffic through e mounted in a circuit with
// tpc steps per cycle and through the model, and checks that bus outputs and
// register values match at every cycle.
//
// The part wraps the same model, so CheckMount tests the mounting of an
// endpoint in a circuit: wire naming, input sampling, edge timing and output
// propagation. It does not test endpoint semantics.
//
// Registers not held by the endpoint are driven with random values.
//
func CheckMount(t *testing.T, tpc uint, e *csr.Endpoint, iter int) {
	t.Helper()

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))
	regs := e.Registers()

	model := e.NewModel()
	inputs := make([]uint64, len(regs))
	values := make([]uint64, len(regs))

	m := NewMaster(e.BusNS(), e.DataWidth())
	parts := []sim.Part{m.Part(), e.Part(e.Module())}
	for i := range regs {
		k := i
		if regs[i].Stored() {
			parts = append(parts, sim.Output(regs[i].Port, func(v uint64) { values[k] = v }))
		} else {
			parts = append(parts, sim.Input(regs[i].Port, func() uint64 { return inputs[k] }))
		}
	}

	c, err := sim.NewCircuit(0, tpc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	m.Attach(c)

	m.Reset()
	model.Reset()

	errString := func(i int, req Request, what string, ex, got interface{}) string {
		return fmt.Sprintf("seed %d, cycle %d, request %+v\nExpected %s = %v\nGot %v", seed, i, req, what, ex, got)
	}

	start := time.Now()
	for i := 0; i < iter; i++ {
		req := randRequest(rnd, e.AddrBits(), e.DataWidth())
		for k := range regs {
			if !regs[k].Stored() {
				inputs[k] = rnd.Uint64()
				model.SetReg(k, inputs[k])
			}
		}
		m.Drive(req)
		m.Cycle()
		model.Clock(csr.BusIn{
			AOpcode:  req.Opcode,
			AAddress: req.Address,
			AMask:    req.Mask,
			AData:    req.Data,
			AValid:   req.Valid,
			DReady:   req.DReady,
		})

		if ex, got := model.Out(), m.Sample(); ex != got {
			t.Fatal(errString(i, req, "bus", ex, got))
		}
		for k := range regs {
			if regs[k].Stored() && values[k] != model.Reg(k) {
				t.Fatal(errString(i, req, regs[k].Port, model.Reg(k), values[k]))
			}
		}
	}

	elapsed := time.Since(start)
	cycles := c.Cycles()
	t.Logf("%d components. %d steps in %v. %d clock cycles => %.2f Hz", c.Size(), c.Steps(), elapsed, cycles, float64(cycles)/(float64(elapsed)/float64(time.Second)))
}
