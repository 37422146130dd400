// Package engine implements the fixed-point multi-pass assembler
// driver of spec.md §4.10: repeated encode/label passes over an atom
// stream until every atom's size stops changing. Grounded on the
// teacher's Assemble step list (asm/asm.go's parse/evaluateExpressions/
// assignAddresses/resolveLabels/evaluateExpressions/
// handleUnevaluatedExpressions/generateCode), generalized from the
// teacher's single evaluate-then-fix-addresses-once model to true
// per-pass re-encoding so relaxable instructions can change size
// across passes.
package engine

import (
	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/cpu"
	"github.com/retrotoolkit/xasm/symtab"
	"github.com/retrotoolkit/xasm/xerr"
	"github.com/retrotoolkit/xasm/xlog"
)

// MaxPasses bounds the fixed-point loop: a program that hasn't
// converged by then is reported as a convergence error rather than
// looping forever on an oscillating relaxation.
const MaxPasses = 500

// Engine holds all mutable assembly state for one assembly run. No
// package-level mutable singletons exist anywhere in the module.
type Engine struct {
	Symbols  *symtab.Table
	Backend  cpu.Backend
	Tracer   xlog.Tracer
	Sections []*atom.Section

	Origin int
}

// New creates an Engine for the given CPU backend. Tracer defaults to
// a no-op if nil.
func New(backend cpu.Backend) *Engine {
	return &Engine{
		Symbols: symtab.New(),
		Backend: backend,
		Tracer:  xlog.Discard,
	}
}

// Result is the outcome of a successful Assemble call.
type Result struct {
	Sections []*atom.Section
	Passes   int
}

// Assemble resolves addresses and encodes every instruction atom
// across sections, iterating until atom sizes stop changing (or
// MaxPasses is exceeded, reported as a KindConvergence error).
func (e *Engine) Assemble(sections []*atom.Section) (*Result, *xerr.List) {
	e.Sections = sections
	errs := &xerr.List{}

	for pass := 1; pass <= MaxPasses; pass++ {
		e.Tracer.Section("Pass")
		changed := e.runPass(errs)
		if errs.HasErrors() {
			return nil, errs
		}
		if !changed {
			return &Result{Sections: sections, Passes: pass}, errs
		}
	}

	errs.Add(xerr.New(xerr.KindConvergence, xerr.Location{},
		"assembly did not converge within %d passes", MaxPasses))
	return nil, errs
}

// runPass walks the atoms once, assigning each its address and, in the
// same walk, defining labels and encoding instruction and data atoms at
// that address. It reports whether any atom's size or any label or
// equate value changed from the previous pass.
func (e *Engine) runPass(errs *xerr.List) bool {
	changed := false
	addr := e.Origin

	for _, sec := range e.Sections {
		for _, a := range sec.Atoms {
			a.Address = addr
			e.Symbols.SetCurrentLocation(addr)

			switch p := a.Payload.(type) {
			case atom.LabelPayload:
				if e.Symbols.Assign(p.Name, symtab.KindLabel, addr) {
					changed = true
				}

			case atom.EquatePayload:
				value, resolved := 0, true
				if p.Value != nil {
					value, resolved = p.Value.Eval(e.Symbols)
				}
				if !resolved {
					changed = true
					break
				}
				if p.Mutable {
					if e.Symbols.Assign(p.Name, symtab.KindSet, value) {
						changed = true
					}
					break
				}
				if redefined, conflict := e.Symbols.Define(p.Name, symtab.KindEquate, value); conflict {
					errs.Add(xerr.New(xerr.KindSymbol, a.Loc,
						"'%s' redefined with a conflicting value", p.Name))
				} else if redefined {
					changed = true
				}

			case atom.InstructionPayload:
				size := e.encodeInstruction(a, &p, addr, errs)
				a.Payload = p
				a.MarkSize(size)
				if a.Size != a.LastSize {
					changed = true
				}
				e.Tracer.Bytes(addr, p.Bytes)
				addr += a.Size
				continue

			case atom.DataPayload:
				if p.Elements == nil {
					break
				}
				size := e.encodeData(a, &p, errs)
				a.Payload = p
				a.MarkSize(size)
				if a.Size != a.LastSize {
					changed = true
				}
				e.Tracer.Bytes(addr, p.Bytes)
				addr += a.Size
				continue

			case atom.OrgPayload:
				// PHASE/ORG both reposition the location counter for
				// everything that follows; the distinct output address a
				// true PHASE block needs (assembled-at vs. loads-at) is a
				// segment/writer concern outside this engine's address
				// bookkeeping.
				addr = p.Address
				a.Address = addr
				a.LastSize = a.Size
				e.Tracer.Bytes(addr, nil)
				continue

			case atom.AlignPayload:
				pad := 0
				if p.Boundary > 0 {
					pad = p.Boundary*((addr+p.Boundary-1)/p.Boundary) - addr
				}
				a.MarkSize(pad)
				if a.Size != a.LastSize {
					changed = true
				}
				e.Tracer.Bytes(addr, a.Bytes())
				addr += a.Size
				continue
			}

			if a.Size != a.LastSize {
				changed = true
			}
			a.LastSize = a.Size
			e.Tracer.Bytes(addr, a.Bytes())
			addr += a.Size
		}
	}

	return changed
}

// encodeInstruction asks the CPU backend to encode one instruction
// atom, preferring EncodeSpecial for relaxable mnemonics (branches,
// jumps) so the backend can pick a smaller or larger form as target
// addresses firm up across passes. On an unresolved forward reference
// it leaves the atom at its previous size rather than erroring, since
// later passes may still resolve it.
func (e *Engine) encodeInstruction(a *atom.Atom, p *atom.InstructionPayload, addr int, errs *xerr.List) int {
	value, resolved := 0, true
	if p.Operand != nil {
		value, resolved = p.Operand.Eval(e.Symbols)
	}

	if !resolved {
		e.Tracer.Line(a.Loc, "%s %s: operand unresolved this pass", p.Mnemonic, p.OperandText)
		return a.Size
	}

	var bytes []byte
	var ok bool
	if e.Backend.RequiresSpecialEncoding(p.Mnemonic) {
		bytes, ok = e.Backend.EncodeSpecial(p.Mnemonic, value, addr)
	} else {
		bytes, ok = e.Backend.Encode(p.Mnemonic, value, p.OperandText, addr)
	}

	if !ok {
		errs.Add(xerr.New(xerr.KindCPU, a.Loc,
			"cannot encode '%s %s'", p.Mnemonic, p.OperandText))
		return a.Size
	}

	p.Bytes = bytes
	return len(bytes)
}

// encodeData resolves every expression element of a data atom against
// the current symbol table, packing each into its declared width and
// byte order. On the first element that fails to resolve it returns
// the atom's previous size unchanged, exactly like encodeInstruction,
// so a forward-referenced table entry defers to a later pass instead
// of reporting an error.
func (e *Engine) encodeData(a *atom.Atom, p *atom.DataPayload, errs *xerr.List) int {
	out := make([]byte, 0, len(p.Elements))
	for _, el := range p.Elements {
		if el.Expr == nil {
			out = append(out, el.Literal...)
			continue
		}

		value, resolved := el.Expr.Eval(e.Symbols)
		if !resolved {
			e.Tracer.Line(a.Loc, "data value unresolved this pass")
			return a.Size
		}

		for i := 0; i < el.Width; i++ {
			shift := i
			if el.BigEndian {
				shift = el.Width - 1 - i
			}
			out = append(out, byte(value>>(8*shift)))
		}
	}

	p.Bytes = out
	return len(out)
}
