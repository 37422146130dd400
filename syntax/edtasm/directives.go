package edtasm

import (
	"strings"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/fstr"
	"github.com/retrotoolkit/xasm/macro"
	"github.com/retrotoolkit/xasm/segment"
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
	addr := f.evalLiteral(loc, rest, "ORG")
	f.seg.SetPC(addr)
	f.active.hasOrg = true
	f.emit(atom.Org(loc, addr, false))
}

// dirEnd stops parsing the remainder of the file, matching EDTASM/M80's
// own end-of-program marker. An optional transfer-address operand
// isn't modeled; nothing in the atom stream records an entry point.
func (f *Frontend) dirEnd(_ string, _ xerr.Location, _ fstr.Cursor) {
	f.ended = true
}

func (f *Frontend) dirEqu(label string, loc xerr.Location, rest fstr.Cursor) {
	if label == "" {
		f.errs.Addf(xerr.KindSyntax, loc, "EQU requires a label")
		return
	}
	tree, _ := f.parser.Parse(rest, loc, f.errs)
	f.emit(atom.Equate(loc, label, tree, false))
}

// dirSet backs SET, DEFL, and the bare "=" form; all three redefine
// their label's value freely, unlike EQU's one-shot binding.
func (f *Frontend) dirSet(label string, loc xerr.Location, rest fstr.Cursor) {
	if label == "" {
		f.errs.Addf(xerr.KindSyntax, loc, "SET/DEFL/= requires a label")
		return
	}
	tree, _ := f.parser.Parse(rest, loc, f.errs)
	f.emit(atom.Equate(loc, label, tree, true))
}

func (f *Frontend) dirByte(_ string, loc xerr.Location, rest fstr.Cursor) {
	f.emit(atom.DataExpr(loc, f.parseDataList(loc, rest, 1)))
}

func (f *Frontend) dirWord(_ string, loc xerr.Location, rest fstr.Cursor) {
	f.emit(atom.DataExpr(loc, f.parseDataList(loc, rest, 2)))
}

// parseDataList splits a comma-separated DB/DW operand list into data
// elements without evaluating any of them: quoted runs become literal
// bytes immediately, everything else is kept as an unevaluated
// expression so the engine can re-check it against the symbol table
// every pass, picking up both forward and backward references. Words
// always pack little-endian, the Z80's native byte order (unlike the
// 6809 dialect's big-endian FDB).
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

func (f *Frontend) dirSpace(_ string, loc xerr.Location, rest fstr.Cursor) {
	field, after := rest.ConsumeUntilChar(',')
	count := f.evalLiteral(loc, field, "DS/DEFS")
	fill := byte(0)
	after = after.ConsumeWhitespace()
	if after.StartsWithChar(',') {
		fill = byte(f.evalLiteral(loc, after.Consume(1), "DS/DEFS fill"))
	}
	f.emit(atom.Space(loc, count, fill))
}

func (f *Frontend) dirCseg(_ string, _ xerr.Location, _ fstr.Cursor) {
	f.selectSegment(segment.Code, "")
}

func (f *Frontend) dirDseg(_ string, _ xerr.Location, _ fstr.Cursor) {
	f.selectSegment(segment.Data, "")
}

func (f *Frontend) dirAseg(_ string, _ xerr.Location, _ fstr.Cursor) {
	f.selectSegment(segment.Absolute, "")
}

// dirCommon selects a named COMMON block, written either "COMMON /NAME/"
// or the bare "COMMON NAME" form; each distinct name gets its own
// independent location counter via the segment manager.
func (f *Frontend) dirCommon(_ string, _ xerr.Location, rest fstr.Cursor) {
	f.selectSegment(segment.Common, parseCommonName(rest))
}

func parseCommonName(rest fstr.Cursor) string {
	c := rest.ConsumeWhitespace()
	if c.StartsWithChar('/') {
		body, _ := c.Consume(1).ConsumeUntilChar('/')
		return strings.ToUpper(body.Text)
	}
	word, _ := c.ConsumeWhile(fstr.IdentifierChar)
	return strings.ToUpper(word.Text)
}

// dirPhase overlays the following code at a different assembled-at
// address (ROM shadow copies, relocated boot code) without changing
// where it actually loads; DEPHASE restores the address that was
// active before the matching PHASE.
func (f *Frontend) dirPhase(_ string, loc xerr.Location, rest fstr.Cursor) {
	addr := f.evalLiteral(loc, rest, "PHASE")
	f.phaseStack = append(f.phaseStack, f.seg.PC())
	f.seg.SetPC(addr)
	f.active.hasOrg = true
	f.emit(atom.Org(loc, addr, true))
}

func (f *Frontend) dirDephase(_ string, loc xerr.Location, _ fstr.Cursor) {
	if len(f.phaseStack) == 0 {
		f.errs.Addf(xerr.KindSyntax, loc, "DEPHASE without matching PHASE")
		return
	}
	addr := f.phaseStack[len(f.phaseStack)-1]
	f.phaseStack = f.phaseStack[:len(f.phaseStack)-1]
	f.seg.SetPC(addr)
	f.emit(atom.Org(loc, addr, false))
}

// dirPublic/dirExtern record linkage names for diagnostic purposes;
// this assembler never links separately assembled modules together, so
// neither directive affects encoding.
func (f *Frontend) dirPublic(_ string, _ xerr.Location, rest fstr.Cursor) {
	f.publics = append(f.publics, splitParams(rest.Text)...)
}

func (f *Frontend) dirExtern(_ string, _ xerr.Location, rest fstr.Cursor) {
	f.externs = append(f.externs, splitParams(rest.Text)...)
}

func (f *Frontend) dirIfeq(_ string, loc xerr.Location, rest fstr.Cursor) {
	value := f.evalLiteral(loc, rest, "IFEQ")
	if err := f.cond.PushIf(value == 0); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

func (f *Frontend) dirIflt(_ string, loc xerr.Location, rest fstr.Cursor) {
	value := f.evalLiteral(loc, rest, "IFLT")
	if err := f.cond.PushIf(value < 0); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

// dirIfidn compares its two angle-bracketed or bare operands as literal
// text, case-insensitively, for "IFIDN <a>,<b>".
func (f *Frontend) dirIfidn(_ string, loc xerr.Location, rest fstr.Cursor) {
	a, b := splitFirstComma(rest.Text)
	same := strings.EqualFold(stripAngleBrackets(a), stripAngleBrackets(b))
	if err := f.cond.PushIf(same); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

func stripAngleBrackets(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s[1 : len(s)-1]
	}
	return s
}

// dirIf1 backs both IF1 and IF2, M80's pass-number conditionals. This
// front-end parses a compiland in a single pass (the engine's own
// fixed-point loop handles convergence separately), so there's no
// first-pass/second-pass distinction to report; both always take their
// body, matching the common single-pass assembler behavior for sources
// that don't actually depend on listing-pass timing.
func (f *Frontend) dirIf1(_ string, loc xerr.Location, _ fstr.Cursor) {
	if err := f.cond.PushIf(true); err != nil {
		f.errs.Addf(xerr.KindSyntax, loc, "%s", err)
	}
}

// dirIfb is true when its operand, with optional angle brackets
// stripped, is blank.
func (f *Frontend) dirIfb(_ string, loc xerr.Location, rest fstr.Cursor) {
	arg := strings.TrimSpace(stripAngleBrackets(rest.Text))
	if err := f.cond.PushIf(arg == ""); err != nil {
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
// definition body by Parse's scan loop (captureLine) until a bare ENDM
// closes it, rather than being parsed as atoms now. A nested MACRO
// (or REPT/IRP/IRPC) opened inside the body increments capture.depth so
// its own ENDM doesn't prematurely close the outer definition.
func (f *Frontend) dirMacro(label string, loc xerr.Location, rest fstr.Cursor) {
	if label == "" {
		f.errs.Addf(xerr.KindSyntax, loc, "MACRO requires a name")
		return
	}
	if f.capture != nil {
		f.errs.Addf(xerr.KindMacro, loc, "nested MACRO/REPT/IRP/IRPC definitions are not allowed")
		return
	}
	f.capture = &capture{kind: captureMacro, def: &macro.Definition{Name: label, Params: splitParams(rest.Text)}}
}

func (f *Frontend) dirRept(_ string, loc xerr.Location, rest fstr.Cursor) {
	if f.capture != nil {
		f.errs.Addf(xerr.KindMacro, loc, "nested MACRO/REPT/IRP/IRPC definitions are not allowed")
		return
	}
	count := f.evalLiteral(loc, rest, "REPT")
	f.capture = &capture{kind: captureRept, count: count}
}

// dirIrp opens an IRP block: "IRP param,<val1,val2,...>".
func (f *Frontend) dirIrp(_ string, loc xerr.Location, rest fstr.Cursor) {
	if f.capture != nil {
		f.errs.Addf(xerr.KindMacro, loc, "nested MACRO/REPT/IRP/IRPC definitions are not allowed")
		return
	}
	param, values := splitFirstComma(rest.Text)
	f.capture = &capture{kind: captureIrp, param: strings.TrimSpace(param), values: splitParams(stripAngleBrackets(values))}
}

// dirIrpc opens an IRPC block: "IRPC param,characters", substituting
// param with one character of the run at a time.
func (f *Frontend) dirIrpc(_ string, loc xerr.Location, rest fstr.Cursor) {
	if f.capture != nil {
		f.errs.Addf(xerr.KindMacro, loc, "nested MACRO/REPT/IRP/IRPC definitions are not allowed")
		return
	}
	param, chars := splitFirstComma(rest.Text)
	f.capture = &capture{kind: captureIrpc, param: strings.TrimSpace(param), chars: strings.TrimSpace(stripAngleBrackets(chars))}
}

// dirEndm only fires for a stray ENDM outside capture mode; the normal
// case is intercepted by Parse before dispatch ever sees it.
func (f *Frontend) dirEndm(_ string, loc xerr.Location, _ fstr.Cursor) {
	f.errs.Addf(xerr.KindMacro, loc, "ENDM without matching MACRO/REPT/IRP/IRPC")
}

// dirRadix changes the default base .RADIX-suffix-less decimal words
// parse in, per the M80 header's documented "mutable default base"
// behavior.
func (f *Frontend) dirRadix(_ string, loc xerr.Location, rest fstr.Cursor) {
	radix := f.evalLiteral(loc, rest, ".RADIX")
	if radix < 2 || radix > 16 {
		f.errs.Addf(xerr.KindSyntax, loc, ".RADIX requires a base between 2 and 16")
		return
	}
	f.radix = radix
}

// captureLine appends one raw line to whichever MACRO/REPT/IRP/IRPC
// body is being collected, tracking nested opens/closes so only a
// matching top-level ENDM closes the capture.
func (f *Frontend) captureLine(line fstr.Cursor) {
	switch strings.ToUpper(firstWord(line)) {
	case "MACRO", "REPT", "IRP", "IRPC":
		f.capture.depth++
	case "ENDM":
		if f.capture.depth > 0 {
			f.capture.depth--
		} else {
			f.closeCapture()
			return
		}
	}
	f.capture.body = append(f.capture.body, line.Text)
}

// firstWord extracts the directive-position word from a line, skipping
// an optional leading label exactly the way parseLine does, so capture
// mode recognizes a labeled "NAME MACRO ..." the same way dispatch
// would have.
func firstWord(line fstr.Cursor) string {
	if line.IsEmpty() {
		return ""
	}
	if line.StartsWith(fstr.Whitespace) {
		w, _ := line.ConsumeWhitespace().ConsumeWhile(fstr.WordChar)
		return w.Text
	}
	candidate, rest := line.ConsumeWhile(fstr.IdentifierChar)
	if isNestingKeyword(candidate.Text) {
		return candidate.Text
	}
	for rest.StartsWithChar(':') {
		rest = rest.Consume(1)
	}
	rest = rest.ConsumeWhitespace()
	if rest.IsEmpty() {
		return ""
	}
	w, _ := rest.ConsumeWhile(fstr.WordChar)
	return w.Text
}

// isNestingKeyword reports whether word, the first word at column one
// (whatever follows it on the line), is one of the block markers
// captureLine tracks. Checked before assuming the
// word is a label, so a flush-left ENDM closes its block without
// needing a placeholder label first.
func isNestingKeyword(word string) bool {
	switch strings.ToUpper(word) {
	case "MACRO", "REPT", "IRP", "IRPC", "ENDM":
		return true
	}
	return false
}

// closeCapture substitutes and re-parses whichever block just closed.
func (f *Frontend) closeCapture() {
	c := f.capture
	f.capture = nil
	loc := f.loc(fstr.New(f.currentFile, f.currentRow, ""))

	switch c.kind {
	case captureMacro:
		c.def.Body = c.body
		f.macros.Define(c.def)
	case captureRept:
		f.expandCaptured(loc, func() ([]string, error) { return f.macros.ExpandRept(c.count, c.body) })
	case captureIrp:
		f.expandCaptured(loc, func() ([]string, error) { return f.macros.ExpandIrp(c.param, c.values, c.body) })
	case captureIrpc:
		f.expandCaptured(loc, func() ([]string, error) { return f.macros.ExpandIrpc(c.param, c.chars, c.body) })
	}
}

func (f *Frontend) expandCaptured(loc xerr.Location, expand func() ([]string, error)) {
	if err := f.macros.Enter(); err != nil {
		f.errs.Addf(xerr.KindMacro, loc, "%s", err)
		return
	}
	defer f.macros.Leave()
	lines, err := expand()
	if err != nil {
		f.errs.Addf(xerr.KindMacro, loc, "%s", err)
		return
	}
	f.reparseLines(lines)
}

func splitFirstComma(s string) (string, string) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return s[:i], s[i+1:]
}
