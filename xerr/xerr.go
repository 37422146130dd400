// Package xerr implements the assembler's error taxonomy: typed,
// location-carrying errors that are collected rather than returned early,
// so one run can surface every problem in the source instead of just
// the first.
package xerr

import "fmt"

// Kind classifies an error into one of the taxonomy buckets a caller may
// want to filter or count separately.
type Kind int

const (
	KindSyntax Kind = iota
	KindSymbol
	KindExpression
	KindRange
	KindCPU
	KindMacro
	KindConvergence
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindSymbol:
		return "symbol"
	case KindExpression:
		return "expression"
	case KindRange:
		return "range"
	case KindCPU:
		return "cpu"
	case KindMacro:
		return "macro"
	case KindConvergence:
		return "convergence"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Location identifies a point in a source file.
type Location struct {
	File   string
	Line   int
	Column int // 0-based
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column+1)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column+1)
}

// Error is one diagnostic produced during assembly.
type Error struct {
	Kind       Kind
	Loc        Location
	Message    string
	SourceLine string   // optional: the offending source line, for listing
	Suggestion []string // optional: "did you mean" candidates
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Loc, e.Message)
}

// New builds an Error with a formatted message.
func New(kind Kind, loc Location, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)}
}

// List accumulates errors across a pass without interrupting it. Every
// component that must keep processing atoms after a failure (directive
// handlers, expression evaluation, CPU encoding) reports into one of these.
type List struct {
	errs []*Error
}

func (l *List) Add(e *Error) {
	l.errs = append(l.errs, e)
}

func (l *List) Addf(kind Kind, loc Location, format string, args ...interface{}) {
	l.Add(New(kind, loc, format, args...))
}

func (l *List) Errors() []*Error { return l.errs }

func (l *List) HasErrors() bool { return len(l.errs) > 0 }

func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.errs = append(l.errs, other.errs...)
}

func (l *List) Reset() { l.errs = nil }
