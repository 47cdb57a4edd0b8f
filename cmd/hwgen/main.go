// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command hwgen generates TL-UL register endpoints from design files.
//
//	hwgen gen uart.yaml -o uart_csr.v
//	hwgen map uart.yaml
//
package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/db47h/hwgen"
	"github.com/db47h/hwgen/csr"
	"github.com/db47h/hwgen/internal/design"
	"github.com/db47h/hwgen/verilog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	verbose bool
	output  string
)

var rootCmd = &cobra.Command{
	Use:           "hwgen",
	Short:         "TL-UL control and status register endpoint generator",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lvl := slog.LevelInfo
		if verbose {
			lvl = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	},
}

var genCmd = &cobra.Command{
	Use:   "gen <design.yaml>",
	Short: "Generate the Verilog module of an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := load(args[0])
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), e.WriteVerilog)
	},
}

var mapCmd = &cobra.Command{
	Use:   "map <design.yaml>",
	Short: "Print the address map of an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := load(args[0])
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), func(w io.Writer) error {
			_, err := io.WriteString(w, addressMap(e)+"\n")
			return err
		})
	},
}

var definesCmd = &cobra.Command{
	Use:   "defines <design.yaml>",
	Short: "Print the `define directives of all constants of a design",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, syms, err := load(args[0])
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), func(w io.Writer) error {
			return verilog.Defines(w, syms)
		})
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports <design.yaml>",
	Short: "Print the port list of an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := load(args[0])
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), func(w io.Writer) error {
			return verilog.Ports(w, "", e.Ports(), &verilog.Options{Reg: true})
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(genCmd, mapCmd, definesCmd, portsCmd)
}

func load(path string) (*csr.Endpoint, *hwgen.Symbols, error) {
	d, err := design.Load(path)
	if err != nil {
		return nil, nil, err
	}
	e, syms, err := d.Build(slog.Default())
	if err != nil {
		return nil, nil, errors.Wrap(err, path)
	}
	return e, syms, nil
}

// emit runs f on the output file, or w if no output file is set. The output
// file is only created once f succeeded.
//
func emit(w io.Writer, f func(io.Writer) error) error {
	if output == "" {
		return f(w)
	}
	var b bytes.Buffer
	if err := f(&b); err != nil {
		return err
	}
	if err := os.WriteFile(output, b.Bytes(), 0644); err != nil {
		return errors.WithStack(err)
	}
	slog.Debug("written", "file", output, "bytes", b.Len())
	return nil
}

func addressMap(e *csr.Endpoint) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%d address bits)", e.Module(), e.AddrBits()))
	t.AppendHeader(table.Row{"Offset", "Register", "Port", "Width", "Class", "Access"})
	for _, r := range e.Registers() {
		t.AppendRow(table.Row{
			fmt.Sprintf("0x%02x", r.Offset()),
			r.Pin.Name,
			r.Port,
			r.Pin.Bits(),
			r.Class.String(),
			r.Access(),
		})
	}
	return t.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hwgen: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
