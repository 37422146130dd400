package generic

import (
	"strings"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/fstr"
	"github.com/retrotoolkit/xasm/macro"
	"github.com/retrotoolkit/xasm/symtab"
	"github.com/retrotoolkit/xasm/xerr"
)

// literalTab backs the handful of directives (ORG, DS, ALIGN) whose
// atom payload stores an already-resolved int rather than an
// *expr.Tree: the engine's symtab doesn't exist yet at parse time, so
// these directives can only evaluate literal constants, never a
// forward- or even backward-referenced symbol. An empty table makes
// Eval fail closed (ok=false, symbol unresolved) instead of panicking
// on a nil receiver.
var literalTab = symtab.New()

func (f *Frontend) evalLiteral(loc xerr.Location, rest fstr.Cursor, what string) int {
	tree, _ := f.parser.Parse(rest, loc, f.errs)
	if tree == nil {
		return 0
	}
	value, ok := tree.Eval(literalTab)
	if !ok {
		f.errs.Addf(xerr.KindExpression, loc, "%s requires a constant expression", what)
		return 0
	}
	return value
}

func (f *Frontend) dirOrigin(_ string, loc xerr.Location, rest fstr.Cursor) {
	f.emit(atom.Org(loc, f.evalLiteral(loc, rest, "ORG"), false))
}

func (f *Frontend) dirEqu(label string, loc xerr.Location, rest fstr.Cursor) {
	f.defineEquate(label, loc, rest, false)
}

func (f *Frontend) dirSet(label string, loc xerr.Location, rest fstr.Cursor) {
	f.defineEquate(label, loc, rest, true)
}

func (f *Frontend) defineEquate(label string, loc xerr.Location, rest fstr.Cursor, mutable bool) {
	if label == "" {
		f.errs.Addf(xerr.KindSyntax, loc, "EQU/SET requires a label")
		return
	}
	tree, _ := f.parser.Parse(rest, loc, f.errs)
	f.emit(atom.Equate(loc, label, tree, mutable))
}

func (f *Frontend) dirByte(_ string, loc xerr.Location, rest fstr.Cursor) {
	f.emit(atom.DataExpr(loc, f.parseDataList(loc, rest, 1, false)))
}

func (f *Frontend) dirWord(_ string, loc xerr.Location, rest fstr.Cursor) {
	f.emit(atom.DataExpr(loc, f.parseDataList(loc, rest, 2, false)))
}

// parseDataList splits a comma-separated DB/DW operand list into data
// elements without evaluating any of them: quoted runs become literal
// bytes immediately, everything else is kept as an unevaluated
// expression so the engine can re-check it against the symbol table
// every pass, picking up both forward and backward references.
func (f *Frontend) parseDataList(loc xerr.Location, rest fstr.Cursor, width int, bigEndian bool) []atom.DataElement {
	var out []atom.DataElement
	c := rest
	for {
		c = c.ConsumeWhitespace()
		if c.IsEmpty() {
			break
		}
		if c.StartsWith(fstr.StringQuote) {
			quote := c.Text[0]
			body, after := c.Consume(1).ConsumeUntilChar(quote)
			out = append(out, atom.DataElement{Literal: []byte(body.Text)})
			c = after
			if !c.IsEmpty() {
				c = c.Consume(1)
			}
		} else {
			field, after := c.ConsumeUntilChar(',')
			tree, _ := f.parser.Parse(field, loc, f.errs)
			if tree != nil {
				out = append(out, atom.DataElement{Expr: tree, Width: width, BigEndian: bigEndian})
			}
			c = after
		}
		c = c.ConsumeWhitespace()
		if c.StartsWithChar(',') {
			c = c.Consume(1)
			continue
		}
		break
	}
	return out
}

func (f *Frontend) dirSpace(_ string, loc xerr.Location, rest fstr.Cursor) {
	count, fill := f.parseCountFill(loc, rest)
	f.emit(atom.Space(loc, count, fill))
}

func (f *Frontend) dirAlign(_ string, loc xerr.Location, rest fstr.Cursor) {
	boundary, fill := f.parseCountFill(loc, rest)
	f.emit(atom.Align(loc, boundary, fill))
}

// parseCountFill handles both DS's "count[,fill]" and ALIGN's
// "boundary[,fill]" operand shapes, which are identical.
func (f *Frontend) parseCountFill(loc xerr.Location, rest fstr.Cursor) (count int, fill byte) {
	field, after := rest.ConsumeUntilChar(',')
	count = f.evalLiteral(loc, field, "DS/ALIGN")
	after = after.ConsumeWhitespace()
	if after.StartsWithChar(',') {
		fill = byte(f.evalLiteral(loc, after.Consume(1), "DS/ALIGN fill"))
	}
	return count, fill
}

func (f *Frontend) dirIf(_ string, loc xerr.Location, rest fstr.Cursor) {
	value := f.evalLiteral(loc, rest, "IF")
	if err := f.cond.PushIf(value != 0); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

func (f *Frontend) dirElse(_ string, loc xerr.Location, _ fstr.Cursor) {
	if err := f.cond.Else(); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

func (f *Frontend) dirEndif(_ string, loc xerr.Location, _ fstr.Cursor) {
	if err := f.cond.EndIf(); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

// dirMacro opens capture mode: subsequent raw lines are appended to the
// definition body by Parse's scan loop (captureMacroLine) until a bare
// ENDM closes it, rather than being parsed as atoms now.
func (f *Frontend) dirMacro(label string, loc xerr.Location, rest fstr.Cursor) {
	if label == "" {
		f.errs.Addf(xerr.KindSyntax, loc, "MACRO requires a name")
		return
	}
	if f.capturing != nil {
		f.errs.Addf(xerr.KindMacro, loc, "nested MACRO definitions are not allowed")
		return
	}
	f.capturing = &macro.Definition{Name: label, Params: splitParams(rest.Text)}
}

// dirEndm only fires for a stray ENDM outside capture mode; the normal
// case is intercepted by Parse before dispatch ever sees it.
func (f *Frontend) dirEndm(_ string, loc xerr.Location, _ fstr.Cursor) {
	f.errs.Addf(xerr.KindMacro, loc, "ENDM without matching MACRO")
}

func splitParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
