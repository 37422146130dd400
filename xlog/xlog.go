// Package xlog provides the assembler's verbose pass tracing, grounded on
// the teacher's asm.assembler.log/logLine/logSection: a conditional,
// human-readable trace rather than structured logging, matching the
// lightweight ambient logging style the whole retrieved pack uses for
// this kind of tool.
package xlog

import (
	"fmt"
	"io"
	"strings"

	"github.com/retrotoolkit/xasm/xerr"
)

// Tracer receives progress notes from the engine.
// The default Tracer (Discard) does nothing; Verbose writes teacher-style
// tabular trace lines to an io.Writer.
type Tracer interface {
	Section(name string)
	Line(loc xerr.Location, format string, args ...interface{})
	Bytes(addr int, b []byte)
}

type discard struct{}

func (discard) Section(string)                             {}
func (discard) Line(xerr.Location, string, ...interface{}) {}
func (discard) Bytes(int, []byte)                          {}

// Discard is the no-op Tracer used when verbose tracing is disabled.
var Discard Tracer = discard{}

// Verbose writes trace output to w in the "row col | detail" style
// the teacher's assembler used internally during development.
type Verbose struct {
	W io.Writer
}

func (v Verbose) Section(name string) {
	bar := strings.Repeat("-", len(name)+6)
	fmt.Fprintln(v.W, bar)
	fmt.Fprintf(v.W, "-- %s --\n", name)
	fmt.Fprintln(v.W, bar)
}

func (v Verbose) Line(loc xerr.Location, format string, args ...interface{}) {
	detail := fmt.Sprintf(format, args...)
	fmt.Fprintf(v.W, "%-3d %-3d | %s\n", loc.Line, loc.Column+1, detail)
}

func (v Verbose) Bytes(addr int, b []byte) {
	const hex = "0123456789ABCDEF"
	for i, n := 0, len(b); i < n; i += 8 {
		j := i + 8
		if j > n {
			j = n
		}
		var sb strings.Builder
		for _, by := range b[i:j] {
			sb.WriteByte(hex[by>>4])
			sb.WriteByte(hex[by&0xf])
			sb.WriteByte(' ')
		}
		fmt.Fprintf(v.W, "%04X- %s\n", addr+i, sb.String())
	}
}
