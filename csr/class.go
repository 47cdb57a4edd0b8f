// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package csr

import (
	"math/bits"
	"strings"

	"github.com/db47h/hwgen"
)

// Class is the role of a register in an endpoint.
//
type Class int

// Register classes.
//
const (
	// ReadWrite is a plain register.
	ReadWrite Class = iota
	// InputFIFO is the ready bit of a FIFO consumed by software. Software arms
	// it and the endpoint clears it when the paired valid is seen.
	InputFIFO
	// OutputFIFO is the ready signal of a FIFO produced by software. It is
	// driven by the user logic; the endpoint clears the paired valid bit when
	// both are set.
	OutputFIFO
	// WriteOnly is a plain user logic output. It is not visible on the bus.
	WriteOnly
)

var classNames = [...]string{
	ReadWrite:  "read/write",
	InputFIFO:  "input FIFO",
	OutputFIFO: "output FIFO",
	WriteOnly:  "write-only",
}

func (c Class) String() string {
	if c < ReadWrite || c > WriteOnly {
		return "unknown"
	}
	return classNames[c]
}

const (
	suffixValid = "_valid"
	suffixReady = "_ready"
)

// Classify returns the class of register p, as seen by the user logic:
//
//	*_ready  In     InputFIFO
//	*_ready  Out    OutputFIFO
//	other    Out    WriteOnly, unless named *_valid
//	anything else   ReadWrite
//
func Classify(p hwgen.Pin) Class {
	ready := strings.HasSuffix(p.Name, suffixReady)
	switch {
	case ready && p.Dir == hwgen.In:
		return InputFIFO
	case ready && p.Dir == hwgen.Out:
		return OutputFIFO
	case p.Dir == hwgen.Out && !strings.HasSuffix(p.Name, suffixValid):
		return WriteOnly
	}
	return ReadWrite
}

// AddrBits returns the number of address bits needed to decode n registers:
// ceil(log2(n)). It returns 0 for n <= 1.
//
func AddrBits(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
