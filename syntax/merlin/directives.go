package merlin

import (
	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/fstr"
	"github.com/retrotoolkit/xasm/xerr"
)

func (f *Frontend) evalLiteral(loc xerr.Location, rest fstr.Cursor, what string) int {
	tree, _ := f.parser.Parse(rest, loc, f.errs)
	if tree == nil {
		return 0
	}
	v, ok := tree.Eval(literalTab)
	if !ok {
		f.errs.Addf(xerr.KindExpression, loc, "%s requires a constant expression", what)
	}
	return v
}

func (f *Frontend) dirOrg(_ string, loc xerr.Location, rest fstr.Cursor) {
	f.emit(atom.Org(loc, f.evalLiteral(loc, rest, "ORG"), false))
}

func (f *Frontend) dirEqu(label string, loc xerr.Location, rest fstr.Cursor) {
	if label == "" {
		f.errs.Addf(xerr.KindSyntax, loc, "EQU requires a label")
		return
	}
	tree, _ := f.parser.Parse(rest, loc, f.errs)
	f.emit(atom.Equate(loc, label, tree, false))
}

// dirDB/dirDW emit bytes only outside a DUM block (Merlin doesn't emit
// bytes for structure templates, only offset equates for their labels);
// inside one they emit nothing but still advance the offset so later
// DUM labels land at the right spot.
// The element count/width is known without evaluating anything, so the
// DUM-offset bookkeeping stays correct even for a forward-referencing
// table entry.
func (f *Frontend) dirDB(_ string, loc xerr.Location, rest fstr.Cursor) {
	elements := f.parseDataList(loc, rest, 1)
	if f.inDum {
		f.dumOffset += dataElementsSize(elements)
		return
	}
	f.emit(atom.DataExpr(loc, elements))
}

func (f *Frontend) dirDW(_ string, loc xerr.Location, rest fstr.Cursor) {
	elements := f.parseDataList(loc, rest, 2)
	if f.inDum {
		f.dumOffset += dataElementsSize(elements)
		return
	}
	f.emit(atom.DataExpr(loc, elements))
}

// parseDataList builds an unevaluated element list from a comma
// separated DB/DW operand: quoted runs reduce to literal bytes now,
// everything else is deferred so the engine can re-check it against
// the symbol table every pass.
func (f *Frontend) parseDataList(loc xerr.Location, rest fstr.Cursor, width int) []atom.DataElement {
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
				out = append(out, atom.DataElement{Expr: tree, Width: width})
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

// dataElementsSize gives the byte width of a data-element list without
// evaluating any of its expressions.
func dataElementsSize(elements []atom.DataElement) int {
	n := 0
	for _, el := range elements {
		if el.Expr != nil {
			n += el.Width
		} else {
			n += len(el.Literal)
		}
	}
	return n
}

// dirHex decodes a run of hex-digit pairs (comma-separated or
// contiguous: "HEX DE,AD,BE,EF" and "HEX DEADBEEF" both produce the
// same four bytes), Merlin's raw-hex-byte pseudo-op.
func (f *Frontend) dirHex(_ string, loc xerr.Location, rest fstr.Cursor) {
	digits := ""
	for i := 0; i < len(rest.Text); i++ {
		c := rest.Text[i]
		if fstr.Hexadecimal(c) {
			digits += string(c)
		}
	}
	if len(digits)%2 != 0 {
		f.errs.Addf(xerr.KindSyntax, loc, "HEX requires an even number of digits")
		return
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = byte(parseRadix(digits[i*2:i*2+2], 16))
	}
	if f.inDum {
		f.dumOffset += len(out)
		return
	}
	f.emit(atom.Data(loc, out))
}

func (f *Frontend) dirDS(_ string, loc xerr.Location, rest fstr.Cursor) {
	field, after := rest.ConsumeUntilChar(',')
	count := f.evalLiteral(loc, field, "DS")
	fill := byte(0)
	after = after.ConsumeWhitespace()
	if after.StartsWithChar(',') {
		fill = byte(f.evalLiteral(loc, after.Consume(1), "DS fill"))
	}
	if f.inDum {
		f.dumOffset += count
		return
	}
	f.emit(atom.Space(loc, count, fill))
}

func (f *Frontend) dirAsc(_ string, loc xerr.Location, rest fstr.Cursor) {
	c := rest.ConsumeWhitespace()
	if !c.StartsWith(fstr.StringQuote) {
		f.errs.Addf(xerr.KindSyntax, loc, "ASC requires a delimited string")
		return
	}
	quote := c.Text[0]
	body, _ := c.Consume(1).ConsumeUntilChar(quote)
	data := []byte(body.Text)
	if f.inDum {
		f.dumOffset += len(data)
		return
	}
	f.emit(atom.Data(loc, data))
}

func (f *Frontend) dirDum(label string, loc xerr.Location, rest fstr.Cursor) {
	f.inDum = true
	f.dumOffset = f.evalLiteral(loc, rest, "DUM")
	f.emitLabel(loc, label)
}

func (f *Frontend) dirDend(_ string, _ xerr.Location, _ fstr.Cursor) {
	f.inDum = false
}

func (f *Frontend) dirNoop(_ string, _ xerr.Location, _ fstr.Cursor) {}

func (f *Frontend) dirDo(_ string, loc xerr.Location, rest fstr.Cursor) {
	value := f.evalLiteral(loc, rest, "DO")
	if err := f.cond.PushIf(value != 0); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

func (f *Frontend) dirElse(_ string, loc xerr.Location, _ fstr.Cursor) {
	if err := f.cond.Else(); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

func (f *Frontend) dirFin(_ string, loc xerr.Location, _ fstr.Cursor) {
	if err := f.cond.EndIf(); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}
