package csr_test

import (
	"testing"

	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/csr"
)

func TestClassify(t *testing.T) {
	data := []struct {
		p  hwgen.Pin
		ex csr.Class
	}{
		{hwgen.Pin{Dir: hwgen.In, Name: "rx_ready"}, csr.InputFIFO},
		{hwgen.Pin{Dir: hwgen.Out, Name: "tx_ready"}, csr.OutputFIFO},
		{hwgen.Pin{Dir: hwgen.Out, Name: "rx_valid"}, csr.ReadWrite},
		{hwgen.Pin{Dir: hwgen.In, Name: "tx_valid"}, csr.ReadWrite},
		{hwgen.Pin{Dir: hwgen.Out, Name: "irq"}, csr.WriteOnly},
		{hwgen.Pin{Dir: hwgen.In, Name: "ctrl", Width: 32}, csr.ReadWrite},
		{hwgen.Pin{Dir: hwgen.InOut, Name: "gpio_ready"}, csr.ReadWrite},
		{hwgen.Pin{Dir: hwgen.Out, Name: "ready"}, csr.WriteOnly},
	}
	for _, d := range data {
		if got := csr.Classify(d.p); got != d.ex {
			t.Errorf("Classify(%v) = %v, expected %v", d.p, got, d.ex)
		}
	}
}

func TestAddrBits(t *testing.T) {
	for _, d := range [][2]int{{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {1024, 10}} {
		if got := csr.AddrBits(d[0]); got != d[1] {
			t.Errorf("AddrBits(%d) = %d, expected %d", d[0], got, d[1])
		}
	}
}
