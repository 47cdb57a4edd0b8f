package verilog_test

import (
	"strings"
	"testing"

	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/verilog"
	"github.com/pkg/errors"
)

var stream = hwgen.Handshake(hwgen.Type{
	{Dir: hwgen.In, Name: "data", Width: 8},
	{Dir: hwgen.InOut, Name: "sda"},
})

func TestPorts(t *testing.T) {
	td := []struct {
		name string
		opt  *verilog.Options
		exp  string
	}{
		{"default", nil, "" +
			"input wire [7:0] rx_data,\n" +
			"inout wire rx_sda,\n" +
			"input wire rx_valid,\n" +
			"output wire rx_ready\n"},
		{"reg", &verilog.Options{Reg: true, LastComma: true, Indent: "    "}, "" +
			"    input wire [7:0] rx_data,\n" +
			"    inout wire rx_sda,\n" +
			"    input wire rx_valid,\n" +
			"    output reg rx_ready,\n"},
		{"count", &verilog.Options{Count: 2}, "" +
			"input wire [7:0] rx_data0,\n" +
			"inout wire rx_sda0,\n" +
			"input wire rx_valid0,\n" +
			"output wire rx_ready0,\n" +
			"input wire [7:0] rx_data1,\n" +
			"inout wire rx_sda1,\n" +
			"input wire rx_valid1,\n" +
			"output wire rx_ready1\n"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			var b strings.Builder
			if err := verilog.Ports(&b, "rx", stream, d.opt); err != nil {
				t.Fatal(err)
			}
			if b.String() != d.exp {
				t.Fatalf("expected:\n%s\ngot:\n%s", d.exp, b.String())
			}
		})
	}
}

func TestConnect(t *testing.T) {
	var b strings.Builder
	tp := hwgen.Type{{Dir: hwgen.In, Name: "valid"}, {Dir: hwgen.Out, Name: "ready"}}
	if err := verilog.Connect(&b, "u", tp, nil); err != nil {
		t.Fatal(err)
	}
	if err := verilog.Connect(&b, "u", tp, &verilog.Options{WirePrefix: "s", Count: 2, LastComma: true}); err != nil {
		t.Fatal(err)
	}
	exp := "" +
		".u_valid(u_valid),\n" +
		".u_ready(u_ready)\n" +
		".u_valid0(s_valid0),\n" +
		".u_ready0(s_ready0),\n" +
		".u_valid1(s_valid1),\n" +
		".u_ready1(s_ready1),\n"
	if b.String() != exp {
		t.Fatalf("expected:\n%s\ngot:\n%s", exp, b.String())
	}
}

func TestDecls(t *testing.T) {
	var b strings.Builder
	if err := verilog.Decls(&b, verilog.Wire, "s", stream[:1], nil); err != nil {
		t.Fatal(err)
	}
	if err := verilog.Decls(&b, verilog.Reg, "q", stream[2:], &verilog.Options{Count: 2, Indent: "\t"}); err != nil {
		t.Fatal(err)
	}
	exp := "" +
		"wire [7:0] s_data;\n" +
		"\treg q_valid0;\n" +
		"\treg q_ready0;\n" +
		"\treg q_valid1;\n" +
		"\treg q_ready1;\n"
	if b.String() != exp {
		t.Fatalf("expected:\n%s\ngot:\n%s", exp, b.String())
	}
}

func TestCapture(t *testing.T) {
	var b strings.Builder
	if err := verilog.Capture(&b, "q", stream[:1], &verilog.Options{WirePrefix: "d"}); err != nil {
		t.Fatal(err)
	}
	if exp := "q_data <= d_data;\n"; b.String() != exp {
		t.Fatalf("expected %q, got %q", exp, b.String())
	}
}

func TestCat(t *testing.T) {
	var b strings.Builder
	if err := verilog.Cat(&b, "s", stream, nil); err != nil {
		t.Fatal(err)
	}
	if exp := "{s_data,s_sda,s_valid,s_ready}"; b.String() != exp {
		t.Fatalf("expected %q, got %q", exp, b.String())
	}
	b.Reset()
	if err := verilog.Cat(&b, "s", stream[:1], &verilog.Options{Count: 3}); err != nil {
		t.Fatal(err)
	}
	if exp := "{s_data0,s_data1,s_data2}"; b.String() != exp {
		t.Fatalf("expected %q, got %q", exp, b.String())
	}
	if err := verilog.Cat(&b, "s", nil, nil); errors.Cause(err) != hwgen.ErrInvalidPinSpec {
		t.Fatalf("expected ErrInvalidPinSpec, got %v", err)
	}
}

func TestDefines(t *testing.T) {
	syms := hwgen.NewSymbols(nil)
	for _, d := range [][2]string{{"TL_OP_Get", "3'd4"}, {"WIDTH", "32"}} {
		if err := syms.Bind(d[0], d[1]); err != nil {
			t.Fatal(err)
		}
	}
	var b strings.Builder
	if err := verilog.Defines(&b, syms); err != nil {
		t.Fatal(err)
	}
	if exp := "`define TL_OP_Get 3'd4\n`define WIDTH 32\n"; b.String() != exp {
		t.Fatalf("expected %q, got %q", exp, b.String())
	}
}

func TestIdent(t *testing.T) {
	td := []struct {
		prefix, name string
		i, cnt       int
		exp          string
	}{
		{"tl", "a_valid", 0, 1, "tl_a_valid"},
		{"tl", "a_valid", 1, 2, "tl_a_valid1"},
		{"", "clk", 0, 1, "clk"},
	}
	for _, d := range td {
		if got := verilog.Ident(d.prefix, d.name, d.i, d.cnt); got != d.exp {
			t.Errorf("expected %q, got %q", d.exp, got)
		}
	}
	if r := verilog.Range(1); r != "" {
		t.Errorf("expected no range, got %q", r)
	}
	if r := verilog.Range(32); r != "[31:0]" {
		t.Errorf("expected [31:0], got %q", r)
	}
}

// Rendering an invalid type must fail without writing anything.
//
func TestRender_invalid(t *testing.T) {
	bad := hwgen.Type{{Dir: hwgen.In, Name: "ok", Width: 4}, {Dir: hwgen.Out, Name: "", Width: 1}}
	dup := hwgen.Type{{Dir: hwgen.In, Name: "x"}, {Dir: hwgen.Out, Name: "x"}}
	fns := map[string]func(*strings.Builder, hwgen.Type) error{
		"Ports":   func(b *strings.Builder, t hwgen.Type) error { return verilog.Ports(b, "p", t, nil) },
		"Connect": func(b *strings.Builder, t hwgen.Type) error { return verilog.Connect(b, "p", t, nil) },
		"Decls":   func(b *strings.Builder, t hwgen.Type) error { return verilog.Decls(b, verilog.Reg, "p", t, nil) },
		"Capture": func(b *strings.Builder, t hwgen.Type) error { return verilog.Capture(b, "p", t, nil) },
		"Cat":     func(b *strings.Builder, t hwgen.Type) error { return verilog.Cat(b, "p", t, nil) },
	}
	for name, f := range fns {
		var b strings.Builder
		if err := f(&b, bad); errors.Cause(err) != hwgen.ErrInvalidPinSpec {
			t.Errorf("%s: expected ErrInvalidPinSpec, got %v", name, err)
		}
		if err := f(&b, dup); errors.Cause(err) != hwgen.ErrAmbiguousName {
			t.Errorf("%s: expected ErrAmbiguousName, got %v", name, err)
		}
		if b.Len() != 0 {
			t.Errorf("%s: partial output %q", name, b.String())
		}
	}
	var b strings.Builder
	if err := verilog.Ports(&b, "p", stream, &verilog.Options{Count: -1}); errors.Cause(err) != hwgen.ErrInvalidPinSpec {
		t.Errorf("expected ErrInvalidPinSpec for negative count, got %v", err)
	}
}
