// Package syntax defines the shared front-end contract every assembly
// dialect package (generic, merlin, scmasm, edtasm) implements, per
// spec.md §4.7.
package syntax

import (
	"io"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/xerr"
)

// Frontend turns one source file into an atom stream. Multiple Parse
// calls against the same Frontend instance (one per include file)
// share the front-end's directive registry, conditional stack and macro
// table, so labels and macros defined in one file are visible from
// files included after it. The edtasm front-end's segment manager is
// not shared: each of its Parse calls starts a fresh one.
type Frontend interface {
	Parse(r io.Reader, filename string) ([]*atom.Atom, *xerr.List)
}
