package csr_test

import (
	"math/rand"

	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/csr"
	"github.com/db47h/hwgen/hwtest"
	"github.com/db47h/hwgen/sim"
	"github.com/db47h/hwgen/tilelink"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// bench is an endpoint mounted in a circuit with a bus master, probes on the
// registers it holds and drivers for the other ones.
type bench struct {
	e      *csr.Endpoint
	m      *hwtest.Master
	c      *sim.Circuit
	values map[string]uint64
	inputs map[string]uint64
}

func newBench(regs hwgen.Type, regNS string) *bench {
	e, err := csr.MakeBuilder().Build(regs, regNS, "tl")
	Expect(err).ToNot(HaveOccurred())

	b := &bench{
		e:      e,
		m:      hwtest.NewMaster("tl", e.DataWidth()),
		values: make(map[string]uint64),
		inputs: make(map[string]uint64),
	}
	parts := []sim.Part{b.m.Part(), e.Part(e.Module())}
	for _, r := range e.Registers() {
		name := r.Pin.Name
		b.values[name] = 0
		if r.Stored() {
			parts = append(parts, sim.Output(r.Port, func(v uint64) { b.values[name] = v }))
		} else {
			b.inputs[name] = 0
			parts = append(parts, sim.Input(r.Port, func() uint64 { return b.inputs[name] }))
		}
	}
	b.c, err = sim.NewCircuit(1, 4, parts...)
	Expect(err).ToNot(HaveOccurred())
	b.m.Attach(b.c)
	b.m.Reset()
	return b
}

func (b *bench) put(addr, data uint64) {
	r, err := b.m.Put(addr, data)
	Expect(err).ToNot(HaveOccurred())
	Expect(r.Opcode).To(BeEquivalentTo(tilelink.AccessAck))
}

func (b *bench) get(addr uint64) uint64 {
	r, err := b.m.Get(addr)
	Expect(err).ToNot(HaveOccurred())
	Expect(r.Opcode).To(BeEquivalentTo(tilelink.AccessAckData))
	return r.Data
}

var _ = Describe("Endpoint", func() {
	var b *bench

	AfterEach(func() {
		b.c.Dispose()
	})

	Context("with a four register bank", func() {
		BeforeEach(func() {
			b = newBench(bank, "regs")
		})

		It("should answer a Get one cycle later and stall until consumed", func() {
			b.put(8, 0xdeadbeef)
			Expect(b.values["scratch"]).To(BeEquivalentTo(0xdeadbeef))

			Expect(b.m.Sample().AReady).To(BeTrue())
			b.m.Drive(hwtest.Request{Opcode: tilelink.Get, Address: 8, Mask: 0xf, Valid: true})
			b.m.Cycle()

			out := b.m.Sample()
			Expect(out.DValid).To(BeTrue())
			Expect(out.DOpcode).To(BeEquivalentTo(tilelink.AccessAckData))
			Expect(out.DData).To(BeEquivalentTo(0xdeadbeef))
			Expect(out.AReady).To(BeFalse())

			b.m.Drive(hwtest.Request{})
			b.m.Cycle()
			Expect(b.m.Sample().AReady).To(BeFalse())
			Expect(b.m.Sample().DValid).To(BeTrue())

			b.m.Cycle()
			Expect(b.m.Sample().AReady).To(BeFalse())

			b.m.Drive(hwtest.Request{DReady: true})
			b.m.Cycle()
			Expect(b.m.Sample().DValid).To(BeFalse())
			Expect(b.m.Sample().AReady).To(BeTrue())
		})

		It("should ignore requests while stalled", func() {
			b.put(0, 1)
			b.m.Drive(hwtest.Request{Opcode: tilelink.Get, Address: 0, Valid: true})
			b.m.Cycle()
			b.m.Drive(hwtest.Request{})
			b.m.Cycle()
			Expect(b.m.Sample().AReady).To(BeFalse())

			b.m.Drive(hwtest.Request{Opcode: tilelink.PutFullData, Address: 0, Mask: 0xf, Data: 2, Valid: true})
			b.m.Cycle()
			b.m.Cycle()
			Expect(b.values["ctrl"]).To(BeEquivalentTo(1))
			Expect(b.m.Sample().DOpcode).To(BeEquivalentTo(tilelink.AccessAckData))
		})

		It("should decode word addresses", func() {
			b.put(0, 0x11)
			b.put(8, 0x22)
			b.put(12, 0x33)
			Expect(b.get(0)).To(BeEquivalentTo(0x11))
			Expect(b.get(8)).To(BeEquivalentTo(0x22))
			Expect(b.get(12)).To(BeEquivalentTo(0x3))
			Expect(b.get(16)).To(BeEquivalentTo(0x11))
			Expect(b.values["mode"]).To(BeEquivalentTo(0x3))
		})

		It("should not write to write-only registers", func() {
			b.inputs["irq"] = 1
			b.put(4, 0)
			Expect(b.get(4)).To(BeEquivalentTo(0))
			Expect(b.values["ctrl"]).To(BeEquivalentTo(0))
		})

		It("should not overwrite a pending response with a back-to-back request", func() {
			b.put(0, 0x1111)
			b.put(8, 0x2222)
			b.m.Drive(hwtest.Request{Opcode: tilelink.Get, Address: 0, Mask: 0xf, Valid: true})
			b.m.Cycle()
			Expect(b.m.Sample().DData).To(BeEquivalentTo(0x1111))

			b.m.Drive(hwtest.Request{Opcode: tilelink.Get, Address: 8, Mask: 0xf, Valid: true})
			b.m.Cycle()
			Expect(b.m.Sample().DValid).To(BeTrue())
			Expect(b.m.Sample().DData).To(BeEquivalentTo(0x1111))

			// the second request is accepted once the first response is consumed
			b.m.Drive(hwtest.Request{Opcode: tilelink.Get, Address: 8, Mask: 0xf, Valid: true, DReady: true})
			b.m.Cycle()
			Expect(b.m.Sample().DValid).To(BeFalse())
			Expect(b.m.Sample().AReady).To(BeTrue())
			b.m.Cycle()
			Expect(b.m.Sample().DValid).To(BeTrue())
			Expect(b.m.Sample().DData).To(BeEquivalentTo(0x2222))
		})

		It("should merge partial writes with the literal write mask", func() {
			b.put(0, 0x11223344)
			_, err := b.m.PutPartial(0, 0x00aa0000, 0x4)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.get(0)).To(BeEquivalentTo(0x00aa0000))
			b.put(0, 0x11223344)
			_, err = b.m.PutPartial(0, 0x00aa0000, 0xb)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.get(0)).To(BeEquivalentTo(0x11aa3344))
		})

		It("should clear state on reset", func() {
			b.put(0, 5)
			b.m.Drive(hwtest.Request{Opcode: tilelink.Get, Valid: true})
			b.m.Cycle()
			b.m.Drive(hwtest.Request{})
			b.m.Cycle()
			Expect(b.m.Sample().AReady).To(BeFalse())

			b.m.Reset()
			Expect(b.m.Sample().AReady).To(BeTrue())
			Expect(b.m.Sample().DValid).To(BeFalse())
			Expect(b.values["ctrl"]).To(BeEquivalentTo(0))
		})
	})

	Context("with FIFO control registers", func() {
		const (
			txValid = 4
			txReady = 8
			rxValid = 12
			rxReady = 16
		)

		BeforeEach(func() {
			b = newBench(fifos, "uart")
		})

		It("should clear an output FIFO valid once consumed", func() {
			b.put(0, 'A')
			b.put(txValid, 1)
			b.m.Cycle()
			b.m.Cycle()
			Expect(b.values["tx_valid"]).To(BeEquivalentTo(1))
			Expect(b.get(txReady)).To(BeEquivalentTo(0))

			b.inputs["tx_ready"] = 1
			b.m.Cycle()
			Expect(b.values["tx_valid"]).To(BeEquivalentTo(0))
			Expect(b.get(txValid)).To(BeEquivalentTo(0))
			Expect(b.get(txReady)).To(BeEquivalentTo(1))
		})

		It("should ignore writes to an output FIFO ready", func() {
			b.put(txReady, 1)
			Expect(b.get(txReady)).To(BeEquivalentTo(0))
		})

		It("should clear an input FIFO ready only once", func() {
			b.put(rxReady, 1)
			b.m.Cycle()
			Expect(b.values["rx_ready"]).To(BeEquivalentTo(1))

			b.inputs["rx_valid"] = 1
			Expect(b.get(rxValid)).To(BeEquivalentTo(1))
			Expect(b.values["rx_ready"]).To(BeEquivalentTo(0))
			for i := 0; i < 4; i++ {
				b.m.Cycle()
				Expect(b.values["rx_ready"]).To(BeEquivalentTo(0))
			}

			b.inputs["rx_valid"] = 0
			b.put(rxReady, 1)
			Expect(b.get(rxReady)).To(BeEquivalentTo(1))
		})
	})
})

var _ = Describe("Model", func() {
	It("should stall exactly while a response is pending", func() {
		e, err := csr.MakeBuilder().Build(fifos, "uart", "tl")
		Expect(err).ToNot(HaveOccurred())
		m := e.NewModel()
		rnd := rand.New(rand.NewSource(GinkgoRandomSeed()))

		for i := 0; i < 2000; i++ {
			in := csr.BusIn{
				AOpcode:  uint64(rnd.Intn(8)),
				AAddress: uint64(rnd.Intn(32)),
				AMask:    uint64(rnd.Intn(16)),
				AData:    uint64(rnd.Uint32()),
				AValid:   rnd.Intn(2) == 0,
				DReady:   rnd.Intn(3) == 0,
			}
			m.SetReg(2, uint64(rnd.Intn(2)))
			m.SetReg(3, uint64(rnd.Intn(2)))
			before := m.Out()
			stalled := m.Stall()
			m.Clock(in)
			after := m.Out()

			Expect(before.AReady).To(Equal(!stalled))
			Expect(m.Stall()).To(Equal((before.DValid && !in.DReady) || (!stalled && in.AValid)))
			Expect(m.Stall()).To(Equal(after.DValid))
			if !stalled && in.AValid {
				Expect(after.DValid).To(BeTrue())
			}
			if stalled {
				// the response channel only changes when consumed
				Expect(after.DOpcode).To(Equal(before.DOpcode))
				Expect(after.DData).To(Equal(before.DData))
			}
		}
	})

	It("should never re-arm an input FIFO ready by itself", func() {
		e, err := csr.MakeBuilder().Build(fifos, "uart", "tl")
		Expect(err).ToNot(HaveOccurred())
		m := e.NewModel()
		m.SetReg(4, 1)
		m.SetReg(3, 1)
		m.Clock(csr.BusIn{})
		Expect(m.Reg(4)).To(BeZero())
		rnd := rand.New(rand.NewSource(GinkgoRandomSeed()))
		for i := 0; i < 100; i++ {
			m.SetReg(3, uint64(rnd.Intn(2)))
			// traffic everywhere but the ready register
			m.Clock(csr.BusIn{
				AOpcode:  tilelink.PutFullData,
				AAddress: uint64(rnd.Intn(4)) * 4,
				AMask:    1,
				AData:    1,
				AValid:   true,
				DReady:   true,
			})
			Expect(m.Reg(4)).To(BeZero())
		}
	})
})
