// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tilelink defines the TileLink Uncached Lightweight (TL-UL) and
// Uncached Heavyweight (TL-UH) bus shapes as seen from a responder (slave),
// together with the channel A and D opcodes.
//
package tilelink

import (
	"github.com/db47h/hwgen"
	"github.com/pkg/errors"
)

// Channel A (request) opcodes.
//
const (
	PutFullData    = 0
	PutPartialData = 1
	ArithmeticData = 2
	LogicalData    = 3
	Get            = 4
	Intent         = 5
)

// Channel D (response) opcodes.
//
const (
	AccessAck     = 0
	AccessAckData = 1
	HintAck       = 2
)

// OpcodeWidth is the width of the a_opcode and d_opcode fields.
//
const OpcodeWidth = 3

// Opcode constant names, in the order bound by Define.
//
const (
	OpGet            = "TL_OP_Get"
	OpPutFullData    = "TL_OP_PutFullData"
	OpPutPartialData = "TL_OP_PutPartialData"
	OpArithmeticData = "TL_OP_ArithmeticData"
	OpLogicalData    = "TL_OP_LogicalData"
	OpIntent         = "TL_OP_Intent"
	OpAccessAck      = "TL_OP_AccessAck"
	OpAccessAckData  = "TL_OP_AccessAckData"
	OpHintAck        = "TL_OP_HintAck"
)

var opcodes = [...][2]string{
	{OpGet, "3'd4"},
	{OpPutFullData, "3'd0"},
	{OpPutPartialData, "3'd1"},
	{OpArithmeticData, "3'd2"},
	{OpLogicalData, "3'd3"},
	{OpIntent, "3'd5"},
	{OpAccessAck, "3'd0"},
	{OpAccessAckData, "3'd1"},
	{OpHintAck, "3'd2"},
}

// Define binds the opcode constants in s.
//
func Define(s *hwgen.Symbols) error {
	for _, op := range opcodes {
		if err := s.Bind(op[0], op[1]); err != nil {
			return errors.Wrap(err, "tilelink")
		}
	}
	return nil
}

func checkWidths(addr, data int) {
	if addr < 1 || data < 8 || data%8 != 0 {
		panic(errors.Errorf("tilelink: invalid bus widths addr=%d data=%d", addr, data))
	}
}

// UL returns the TL-UL responder interface for the given address and data
// widths. The data width must be a multiple of 8.
//
//	a_opcode[3] a_address[addr] a_mask[data/8] a_data[data] a_valid	(in)
//	a_ready									(out)
//	d_opcode[3] d_data[data] d_valid					(out)
//	d_ready									(in)
//
func UL(addr, data int) hwgen.Type {
	checkWidths(addr, data)
	return hwgen.Type{
		{Dir: hwgen.In, Name: "a_opcode", Width: OpcodeWidth},
		{Dir: hwgen.In, Name: "a_address", Width: addr},
		{Dir: hwgen.In, Name: "a_mask", Width: data / 8},
		{Dir: hwgen.In, Name: "a_data", Width: data},
		{Dir: hwgen.In, Name: "a_valid", Width: 1},
		{Dir: hwgen.Out, Name: "a_ready", Width: 1},
		{Dir: hwgen.Out, Name: "d_opcode", Width: OpcodeWidth},
		{Dir: hwgen.Out, Name: "d_data", Width: data},
		{Dir: hwgen.Out, Name: "d_valid", Width: 1},
		{Dir: hwgen.In, Name: "d_ready", Width: 1},
	}
}

// UH returns the TL-UH responder interface. sink is accepted for symmetry
// with the other TileLink conformance levels; TL-UH has no sink field.
//
func UH(addr, data, source, sink int) hwgen.Type {
	checkWidths(addr, data)
	if source < 1 {
		panic(errors.Errorf("tilelink: invalid source width %d", source))
	}
	return hwgen.Type{
		{Dir: hwgen.In, Name: "a_opcode", Width: OpcodeWidth},
		{Dir: hwgen.In, Name: "a_param", Width: 3},
		{Dir: hwgen.In, Name: "a_size", Width: 3},
		{Dir: hwgen.In, Name: "a_source", Width: source},
		{Dir: hwgen.In, Name: "a_address", Width: addr},
		{Dir: hwgen.In, Name: "a_mask", Width: data / 8},
		{Dir: hwgen.In, Name: "a_data", Width: data},
		{Dir: hwgen.In, Name: "a_corrupt", Width: 1},
		{Dir: hwgen.In, Name: "a_valid", Width: 1},
		{Dir: hwgen.Out, Name: "a_ready", Width: 1},
		{Dir: hwgen.Out, Name: "d_opcode", Width: OpcodeWidth},
		{Dir: hwgen.Out, Name: "d_param", Width: 2},
		{Dir: hwgen.Out, Name: "d_size", Width: 3},
		{Dir: hwgen.Out, Name: "d_denied", Width: 1},
		{Dir: hwgen.Out, Name: "d_data", Width: data},
		{Dir: hwgen.Out, Name: "d_corrupt", Width: 1},
		{Dir: hwgen.Out, Name: "d_valid", Width: 1},
		{Dir: hwgen.In, Name: "d_ready", Width: 1},
	}
}
