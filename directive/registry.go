// Package directive implements the case-insensitive directive/pseudo-op
// registry shared by every syntax front-end, with "did you mean"
// suggestions for an unrecognized name. Grounded on the teacher's
// debugger/command.go use of github.com/beevik/prefixtree/v2 for
// unique-prefix command lookup, generalized into a reusable generic
// registry (the teacher's own asm.pseudoOps was a plain map with no
// abbreviation or suggestion support).
package directive

import (
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/retrotoolkit/xasm/xerr"
)

// Registry maps directive names to handlers of type H, case-
// insensitively, with alias support and prefix-based lookup.
type Registry[H any] struct {
	byName map[string]H
	tree   *prefixtree.Tree[H]
	names  []string // for Suggest
}

// NewRegistry creates an empty registry.
func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{
		byName: make(map[string]H),
		tree:   prefixtree.New[H](),
	}
}

// Register adds name -> handler. Name is stored upper-cased; lookups
// fold case the same way.
func (r *Registry[H]) Register(name string, handler H) {
	r.RegisterAliases(handler, name)
}

// RegisterAliases binds every name in names to the same handler, for
// directives with multiple spellings (DB/DEFB/BYTE).
func (r *Registry[H]) RegisterAliases(handler H, names ...string) {
	for _, name := range names {
		up := strings.ToUpper(name)
		r.byName[up] = handler
		r.tree.Add(up, handler)
		r.names = append(r.names, up)
	}
}

// Lookup resolves an exact (case-insensitive) directive name.
func (r *Registry[H]) Lookup(name string) (H, bool) {
	h, ok := r.byName[strings.ToUpper(name)]
	return h, ok
}

// ResolvePrefix resolves name as a unique abbreviation of a registered
// directive (EDTASM/M80 dialects allow truncated mnemonics). Returns
// false, with no error, on no match; ambiguous prefixes are reported
// via the returned error from the tree.
func (r *Registry[H]) ResolvePrefix(name string) (H, error, bool) {
	h, err := r.tree.FindValue(strings.ToUpper(name))
	if err == prefixtree.ErrPrefixNotFound {
		var zero H
		return zero, nil, false
	}
	if err != nil {
		var zero H
		return zero, err, true
	}
	return h, nil, true
}

// Suggest returns "did you mean" candidates for an unrecognized name.
func (r *Registry[H]) Suggest(name string) []string {
	return xerr.Suggest(strings.ToUpper(name), r.names)
}
