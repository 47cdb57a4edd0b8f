/*
Package hwgen generates register-transfer level descriptions from abstract
interface types.

An interface type (Type) is an ordered list of directional pins. Types are
values: Reverse, Handshake and Prefix return new types and never modify their
input, so bus shapes can be built by composing them:

	stream := hwgen.Handshake(hwgen.Type{{Dir: hwgen.In, Name: "data", Width: 8}})
	sink := hwgen.Reverse(hwgen.Prefix("rx", stream))

Pin order matters: it fixes the bit order of concatenations and the address
of registers handed to the csr package.

Numeric constants use Verilog literal syntax ("3'd4", "'hFF", "42") and are
bound by name in a Symbols table owned by the caller. Sub packages render
types as Verilog (verilog), define the TileLink bus shapes (tilelink) and
synthesize a TL-UL control/status register endpoint (csr).

*/
package hwgen
