// Package symtab implements the assembler's symbol table: labels,
// equates, and set-variables sharing one lazily-resolved namespace,
// plus the current-location counter the `*` expression operator reads.
// Grounded on the teacher's asm.assembler label/macro maps
// (asm/asm.go), generalized to the three kinds spec.md's symbol model
// names instead of the teacher's two (label, constant).
package symtab

// Kind classifies how a symbol acquired its value and whether it may be
// redefined.
type Kind int

const (
	// KindLabel is a source-position label; defining it twice is an error.
	KindLabel Kind = iota
	// KindEquate is an EQU-style constant; defining it twice is an error.
	KindEquate
	// KindSet is a SET/DEFL-style variable; redefinition is allowed and
	// always takes the most recent value.
	KindSet
)

// Symbol is one entry in the table.
type Symbol struct {
	Name    string
	Kind    Kind
	Value   int
	Defined bool // false until the first pass that can compute Value
}

// Table holds every symbol visible during one assembly run, plus the
// current location counter used by the `*` operator.
type Table struct {
	symbols map[string]*Symbol
	loc     int
}

// New creates an empty table.
func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// CurrentLocation returns the value `*` evaluates to.
func (t *Table) CurrentLocation() int { return t.loc }

// SetCurrentLocation updates the value `*` evaluates to; called by the
// engine at the start of each atom during a pass.
func (t *Table) SetCurrentLocation(addr int) { t.loc = addr }

// Lookup resolves a name. ok is false when the symbol does not exist
// yet (a forward reference not yet seen) or exists but has no value
// computed on this pass — the caller treats the result as a deferred
// zero placeholder and retries on the next pass, per the lazy
// re-entrant resolution policy.
func (t *Table) Lookup(name string) (value int, ok bool) {
	s, found := t.symbols[name]
	if !found || !s.Defined {
		return 0, false
	}
	return s.Value, true
}

// Kind reports how name was declared, if it has been.
func (t *Table) Kind(name string) (k Kind, found bool) {
	s, found := t.symbols[name]
	if !found {
		return 0, false
	}
	return s.Kind, true
}

// Declare registers name as the given kind without a value yet
// (forward reference support: a label that appears as an operand
// before its definition line still has a table entry to resolve
// against once defined).
func (t *Table) Declare(name string, kind Kind) *Symbol {
	if s, ok := t.symbols[name]; ok {
		return s
	}
	s := &Symbol{Name: name, Kind: kind}
	t.symbols[name] = s
	return s
}

// Define assigns value to name, enforcing the redefinition rule for
// Label/Equate kinds (error) versus Set (always allowed). redefined
// reports whether this call changed an already-defined value — the
// engine's convergence check uses this to decide whether another pass
// is required.
func (t *Table) Define(name string, kind Kind, value int) (redefined bool, conflict bool) {
	s, ok := t.symbols[name]
	if !ok {
		t.symbols[name] = &Symbol{Name: name, Kind: kind, Value: value, Defined: true}
		return false, false
	}
	if s.Defined && kind != KindSet {
		if s.Value != value {
			return false, true
		}
		return false, false
	}
	redefined = s.Defined && s.Value != value
	s.Kind = kind
	s.Value = value
	s.Defined = true
	return redefined, false
}

// Assign sets name's value during a pass without enforcing the
// redefinition rule Define uses: the engine calls this once per pass
// to give a Label atom its current address, which legitimately
// changes from pass to pass as earlier atoms relax to a different
// size. changed reports whether the value differs from the last
// pass, which the engine's convergence check treats the same as an
// instruction size change. A genuine duplicate label (two distinct
// Label atoms for the same name) is not detected by this method, and
// no front-end checks for it either.
func (t *Table) Assign(name string, kind Kind, value int) (changed bool) {
	s, ok := t.symbols[name]
	if !ok {
		t.symbols[name] = &Symbol{Name: name, Kind: kind, Value: value, Defined: true}
		return true
	}
	changed = !s.Defined || s.Value != value
	s.Kind = kind
	s.Value = value
	s.Defined = true
	return changed
}

// Iterate calls fn for every defined symbol, for symbol-table dump
// writers (xasmio/symbols).
func (t *Table) Iterate(fn func(*Symbol)) {
	for _, s := range t.symbols {
		if s.Defined {
			fn(s)
		}
	}
}
