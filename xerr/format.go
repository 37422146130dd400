package xerr

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ColorMode controls whether Format emits ANSI escapes.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Formatter renders Errors as "file:line:col: error: message", optionally
// followed by a source-line echo, a column caret, and (for undefined
// symbols) a "did you mean" line.
type Formatter struct {
	errColor    *color.Color
	suggColor   *color.Color
	caretColor  *color.Color
}

func NewFormatter(mode ColorMode) *Formatter {
	f := &Formatter{
		errColor:   color.New(color.FgRed, color.Bold),
		suggColor:  color.New(color.FgYellow),
		caretColor: color.New(color.FgCyan),
	}
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
		// leave fatih/color's own terminal detection (the pack's own
		// default behavior) in place.
	}
	return f
}

// Write renders one error to w.
func (f *Formatter) Write(w io.Writer, e *Error) {
	fmt.Fprintf(w, "%s: %s\n", e.Loc, f.errColor.Sprintf("error: %s", e.Message))
	if e.SourceLine != "" {
		fmt.Fprintln(w, e.SourceLine)
		fmt.Fprintln(w, f.caretColor.Sprint(strings.Repeat("-", e.Loc.Column)+"^"))
	}
	if len(e.Suggestion) > 0 {
		fmt.Fprintln(w, f.suggColor.Sprintf("did you mean %s?", strings.Join(e.Suggestion, ", ")))
	}
}

// WriteAll renders every error in a List.
func (f *Formatter) WriteAll(w io.Writer, l *List) {
	for _, e := range l.Errors() {
		f.Write(w, e)
	}
}
