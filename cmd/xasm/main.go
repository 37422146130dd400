// Command xasm is a thin CLI driver over the engine, syntax front-ends,
// CPU back-ends, and xasmio writers: it parses flags, wires the chosen
// front-end/back-end pair into engine.Engine, and writes the requested
// output formats. No assembly semantics live here, per the teacher's
// own main.go (flag.StringVar + a single AssembleFile call).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/cpu"
	"github.com/retrotoolkit/xasm/cpu/m6809"
	"github.com/retrotoolkit/xasm/cpu/mos6502"
	"github.com/retrotoolkit/xasm/cpu/z80"
	"github.com/retrotoolkit/xasm/engine"
	"github.com/retrotoolkit/xasm/syntax"
	"github.com/retrotoolkit/xasm/syntax/edtasm"
	"github.com/retrotoolkit/xasm/syntax/generic"
	"github.com/retrotoolkit/xasm/syntax/merlin"
	"github.com/retrotoolkit/xasm/syntax/scmasm"
	"github.com/retrotoolkit/xasm/xasmio/intelhex"
	"github.com/retrotoolkit/xasm/xasmio/listing"
	"github.com/retrotoolkit/xasm/xasmio/srecord"
	"github.com/retrotoolkit/xasm/xasmio/symbols"
	"github.com/retrotoolkit/xasm/xerr"
	"github.com/retrotoolkit/xasm/xlog"
)

var (
	cpuName    string
	variant    string
	syntaxName string
	output     string
	format     string
	listFile   string
	symFile    string
	origin     int
	colorMode  string
	verbose    bool
)

func init() {
	flag.StringVar(&cpuName, "cpu", "6502", "CPU family: 6502, 6809, z80")
	flag.StringVar(&variant, "variant", "", "CPU variant (e.g. 65C02, 65816, GameBoy); defaults to the family's base variant")
	flag.StringVar(&syntaxName, "syntax", "generic", "assembly dialect: generic, merlin, scmasm, edtasm")
	flag.StringVar(&output, "o", "", "output file (default: stdout)")
	flag.StringVar(&format, "format", "intelhex", "output format: intelhex, srecord")
	flag.StringVar(&listFile, "list", "", "write a listing to this file")
	flag.StringVar(&symFile, "symbols", "", "write a symbol table dump to this file")
	flag.IntVar(&origin, "origin", 0, "default origin if the source has no ORG")
	flag.StringVar(&colorMode, "color", "auto", "error color: auto, always, never")
	flag.BoolVar(&verbose, "v", false, "trace each assembly pass to stderr")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: xasm [flags] file ..\nFlags:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	backend, err := newBackend(cpuName, variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xasm: %v\n", err)
		os.Exit(1)
	}

	frontend, err := newFrontend(syntaxName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xasm: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(backend)
	eng.Origin = origin
	if verbose {
		eng.Tracer = &xlog.Verbose{W: os.Stderr}
	}

	sec := atom.NewSection("code")
	for _, filename := range args {
		f, err := os.Open(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xasm: %v\n", err)
			os.Exit(1)
		}
		atoms, errs := frontend.Parse(f, filename)
		f.Close()
		if errs.HasErrors() {
			reportErrors(errs)
			os.Exit(1)
		}
		for _, a := range atoms {
			sec.Append(a)
		}
	}

	result, errs := eng.Assemble([]*atom.Section{sec})
	if errs.HasErrors() {
		reportErrors(errs)
		os.Exit(1)
	}

	if err := writeOutput(result.Sections); err != nil {
		fmt.Fprintf(os.Stderr, "xasm: %v\n", err)
		os.Exit(1)
	}
	if listFile != "" {
		if err := writeToFile(listFile, func(w *os.File) error { return listing.Write(w, result.Sections) }); err != nil {
			fmt.Fprintf(os.Stderr, "xasm: %v\n", err)
			os.Exit(1)
		}
	}
	if symFile != "" {
		if err := writeToFile(symFile, func(w *os.File) error { return symbols.Write(w, eng.Symbols) }); err != nil {
			fmt.Fprintf(os.Stderr, "xasm: %v\n", err)
			os.Exit(1)
		}
	}
}

func newBackend(name, variant string) (cpu.Backend, error) {
	var b cpu.Backend
	switch name {
	case "6502":
		b = mos6502.New()
	case "6809":
		b = m6809.New()
	case "z80", "gameboy":
		b = z80.New()
		if name == "gameboy" && variant == "" {
			variant = "GameBoy"
		}
	default:
		return nil, fmt.Errorf("unknown CPU family %q", name)
	}
	if variant != "" {
		if err := b.SetVariant(variant); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func newFrontend(name string) (syntax.Frontend, error) {
	switch name {
	case "generic":
		return generic.New(), nil
	case "merlin":
		return merlin.New(), nil
	case "scmasm":
		return scmasm.New(), nil
	case "edtasm":
		return edtasm.New(), nil
	default:
		return nil, fmt.Errorf("unknown syntax dialect %q", name)
	}
}

func writeOutput(sections []*atom.Section) error {
	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch format {
	case "intelhex":
		return intelhex.Write(w, sections)
	case "srecord":
		return srecord.Write(w, sections)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeToFile(filename string, fn func(*os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func reportErrors(errs *xerr.List) {
	mode := xerr.ColorAuto
	switch colorMode {
	case "always":
		mode = xerr.ColorAlways
	case "never":
		mode = xerr.ColorNever
	}
	f := xerr.NewFormatter(mode)
	f.WriteAll(os.Stderr, errs)
}
