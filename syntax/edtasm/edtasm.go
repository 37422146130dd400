// Package edtasm implements EDTASM-M80++, a Z80 superset dialect that
// accepts source written for EDTASM+, M80, ZMAC, or Z80ASM without a
// mode flag: DB/DEFB/DM/DEFM, DW/DEFW, DS/DEFS data directives, EQU/
// SET/DEFL/"=" equates, CSEG/DSEG/ASEG/COMMON segments, PHASE/DEPHASE
// overlays, PUBLIC/EXTERN linkage, the IFEQ/IFLT/IFIDN/IF1/IFB
// conditional family, a full MACRO/REPT/IRP/IRPC set, .RADIX, and
// M80's suffixed number forms (0FFH, 377O/Q, 11111111B, 255D)
// alongside the $hex/0x-hex/'char forms the rest of this module
// shares. Grounded on
// original_source/include/xasm++/syntax/edtasm_m80_plusplus_syntax.h.
package edtasm

import (
	"bufio"
	"io"
	"strings"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/cond"
	"github.com/retrotoolkit/xasm/directive"
	"github.com/retrotoolkit/xasm/expr"
	"github.com/retrotoolkit/xasm/fstr"
	"github.com/retrotoolkit/xasm/macro"
	"github.com/retrotoolkit/xasm/segment"
	"github.com/retrotoolkit/xasm/symtab"
	"github.com/retrotoolkit/xasm/xerr"
)

var literalTab = symtab.New()

type handlerFunc func(f *Frontend, label string, loc xerr.Location, rest fstr.Cursor)

// segBucket accumulates the atoms assigned to one segment (CSEG, DSEG,
// ASEG, or a named COMMON block) so they can be concatenated
// contiguously once parsing finishes, regardless of how many times the
// source switched in and out of it.
type segBucket struct {
	id     segment.Id
	name   string
	atoms  []*atom.Atom
	hasOrg bool
}

// captureKind distinguishes the four block forms that all close on a
// bare ENDM: a macro definition and the three repeat-block forms.
type captureKind int

const (
	captureMacro captureKind = iota
	captureRept
	captureIrp
	captureIrpc
)

// capture holds whichever ENDM-terminated block is currently being
// collected as raw text, to be substituted and re-parsed once closed.
// depth tracks nested MACRO/REPT/IRP/IRPC openings seen while scanning
// so an inner block's own ENDM doesn't close the outer one early.
type capture struct {
	kind   captureKind
	depth  int
	def    *macro.Definition
	count  int
	param  string
	values []string
	chars  string
	body   []string
}

// Frontend implements syntax.Frontend for EDTASM-M80++.
type Frontend struct {
	directives *directive.Registry[handlerFunc]
	cond       cond.Stack
	macros     *macro.Processor
	parser     *expr.Parser
	seg        *segment.Manager
	radix      int

	fileIndex   int
	filenames   []string
	currentFile int
	currentRow  int

	errs  *xerr.List
	ended bool

	buckets     map[string]*segBucket
	bucketOrder []string
	active      *segBucket
	phaseStack  []int

	publics []string
	externs []string

	capture *capture
}

// New creates a Frontend with EDTASM-M80++'s pseudo-op set registered.
func New() *Frontend {
	f := &Frontend{
		macros: macro.New(),
		seg:    segment.New(),
		radix:  10,
		parser: &expr.Parser{IsIdentStart: fstr.IdentifierStartChar, IsIdentChar: fstr.IdentifierChar},
	}
	f.parser.ReadNumber = f.readNumber
	f.directives = directive.NewRegistry[handlerFunc]()
	f.registerDirectives()
	return f
}

func (f *Frontend) registerDirectives() {
	f.directives.RegisterAliases((*Frontend).dirOrg, "ORG")
	f.directives.RegisterAliases((*Frontend).dirEnd, "END")

	f.directives.RegisterAliases((*Frontend).dirEqu, "EQU")
	f.directives.RegisterAliases((*Frontend).dirSet, "SET", "DEFL", "=")

	f.directives.RegisterAliases((*Frontend).dirByte, "DB", "DEFB", "DM", "DEFM")
	f.directives.RegisterAliases((*Frontend).dirWord, "DW", "DEFW")
	f.directives.RegisterAliases((*Frontend).dirSpace, "DS", "DEFS")

	f.directives.RegisterAliases((*Frontend).dirCseg, "CSEG")
	f.directives.RegisterAliases((*Frontend).dirDseg, "DSEG")
	f.directives.RegisterAliases((*Frontend).dirAseg, "ASEG")
	f.directives.RegisterAliases((*Frontend).dirCommon, "COMMON")
	f.directives.RegisterAliases((*Frontend).dirPhase, "PHASE")
	f.directives.RegisterAliases((*Frontend).dirDephase, "DEPHASE")

	f.directives.RegisterAliases((*Frontend).dirPublic, "PUBLIC", "GLOBAL", "ENTRY")
	f.directives.RegisterAliases((*Frontend).dirExtern, "EXTERN", "EXTRN", "EXT")

	f.directives.RegisterAliases((*Frontend).dirIfeq, "IFEQ")
	f.directives.RegisterAliases((*Frontend).dirIflt, "IFLT")
	f.directives.RegisterAliases((*Frontend).dirIfidn, "IFIDN")
	f.directives.RegisterAliases((*Frontend).dirIf1, "IF1", "IF2")
	f.directives.RegisterAliases((*Frontend).dirIfb, "IFB")
	f.directives.RegisterAliases((*Frontend).dirElse, "ELSE")
	f.directives.RegisterAliases((*Frontend).dirEndif, "ENDIF")

	f.directives.RegisterAliases((*Frontend).dirMacro, "MACRO")
	f.directives.RegisterAliases((*Frontend).dirRept, "REPT")
	f.directives.RegisterAliases((*Frontend).dirIrp, "IRP")
	f.directives.RegisterAliases((*Frontend).dirIrpc, "IRPC")
	f.directives.RegisterAliases((*Frontend).dirEndm, "ENDM")

	f.directives.RegisterAliases((*Frontend).dirRadix, ".RADIX")
}

// Parse reads one EDTASM-M80++ source file and returns every segment's
// atoms concatenated in CSEG/DSEG/ASEG/COMMON first-use order, each
// non-CSEG run preceded by an explicit Org atom at address 0 unless the
// source already issued one inside it. Segments don't persist across separate Parse calls: a
// single compiland is assumed, since linking multiple modules'
// PUBLIC/EXTERN symbols together is outside this assembler's scope.
func (f *Frontend) Parse(r io.Reader, filename string) ([]*atom.Atom, *xerr.List) {
	f.errs = &xerr.List{}
	f.ended = false
	fi := f.fileIndex
	f.fileIndex++
	f.filenames = append(f.filenames, filename)
	f.currentFile = fi

	f.seg = segment.New()
	f.buckets = make(map[string]*segBucket)
	f.bucketOrder = nil
	f.phaseStack = nil
	f.selectSegment(segment.Code, "")

	scanner := bufio.NewScanner(r)
	row := 1
	for scanner.Scan() {
		if f.ended {
			break
		}
		f.currentRow = row
		text := scanner.Text()
		if strings.HasPrefix(text, "*") {
			row++
			continue
		}
		line := fstr.New(fi, row, text).StripTrailingComment(isCommentStart)
		if f.capture != nil {
			f.captureLine(line)
			row++
			continue
		}
		f.parseLine(line)
		row++
	}

	if f.cond.Unclosed() {
		f.errs.Addf(xerr.KindSyntax, xerr.Location{File: filename, Line: row}, "unterminated conditional block")
	}
	if f.capture != nil {
		f.errs.Addf(xerr.KindMacro, xerr.Location{File: filename, Line: row}, "unterminated MACRO/REPT/IRP/IRPC block")
		f.capture = nil
	}

	return f.flattenSegments(), f.errs
}

// flattenSegments concatenates every segment bucket, in first-seen
// order, into one atom stream: CSEG's content stays contiguous with
// wherever the engine already has the address pointer, and every other
// segment without an ORG of its own opens with an explicit Org atom at
// address 0, so its addresses can overlap CSEG's.
func (f *Frontend) flattenSegments() []*atom.Atom {
	var out []*atom.Atom
	for _, key := range f.bucketOrder {
		b := f.buckets[key]
		if len(b.atoms) == 0 {
			continue
		}
		if b.id != segment.Code && !b.hasOrg {
			out = append(out, atom.Org(b.atoms[0].Loc, 0, false))
		}
		out = append(out, b.atoms...)
	}
	return out
}

func isCommentStart(c byte) bool { return c == ';' }

func (f *Frontend) loc(c fstr.Cursor) xerr.Location {
	name := ""
	if c.File >= 0 && c.File < len(f.filenames) {
		name = f.filenames[c.File]
	}
	return xerr.Location{File: name, Line: c.Row, Column: c.Column}
}

// selectSegment switches the active bucket, creating it on first use.
// The segment manager's own counter tracks alongside it for
// CSEG/DSEG/ASEG/COMMON bookkeeping; actual output addresses are fixed
// up by the engine from the Org atom each bucket carries.
func (f *Frontend) selectSegment(id segment.Id, name string) {
	f.seg.Select(id, name)
	key := id.String()
	if id == segment.Common {
		key = "COMMON:" + name
	}
	b, ok := f.buckets[key]
	if !ok {
		b = &segBucket{id: id, name: name}
		f.buckets[key] = b
		f.bucketOrder = append(f.bucketOrder, key)
	}
	f.active = b
}

func (f *Frontend) emit(a *atom.Atom) {
	if !f.cond.Active() {
		return
	}
	f.active.atoms = append(f.active.atoms, a)
	f.seg.Advance(dataElementsSize(dataElementsOf(a)))
}

// dataElementsOf reports the element list backing a data atom, if any,
// so emit can keep the segment manager's counter roughly in step for
// directives whose width is known without evaluating anything.
func dataElementsOf(a *atom.Atom) []atom.DataElement {
	if p, ok := a.Payload.(atom.DataPayload); ok {
		return p.Elements
	}
	return nil
}

func (f *Frontend) emitLabel(loc xerr.Location, name string) {
	if name == "" {
		return
	}
	f.emit(atom.Label(loc, name))
}

// parseLine handles a line that doesn't start with whitespace. The
// leading identifier run is ambiguous between a label and a bare
// directive/macro invocation with no label (CSEG, ENDIF, a
// no-argument macro call): it's only a label if it isn't itself a
// registered directive or macro name, so reserved words never need a
// placeholder label to be recognized flush against column one.
func (f *Frontend) parseLine(line fstr.Cursor) {
	if line.IsEmpty() {
		return
	}
	if line.StartsWith(fstr.Whitespace) {
		f.parseUnlabeled(line.ConsumeWhitespace())
		return
	}

	candidate, after := line.ConsumeWhile(fstr.IdentifierChar)
	for after.StartsWithChar(':') {
		after = after.Consume(1)
	}
	after = after.ConsumeWhitespace()

	if f.isDirectiveOrMacro(candidate.Text) {
		f.dispatch("", f.loc(candidate), candidate.Text, after)
		return
	}

	if !after.IsEmpty() {
		word, rest := after.ConsumeWhile(fstr.WordChar)
		f.dispatch(candidate.Text, f.loc(word), word.Text, rest.ConsumeWhitespace())
		return
	}
	if candidate.Text != "" {
		f.emitLabel(f.loc(line), candidate.Text)
	}
}

func (f *Frontend) isDirectiveOrMacro(word string) bool {
	if word == "" {
		return false
	}
	if _, ok := f.directives.Lookup(word); ok {
		return true
	}
	if _, ok := f.macros.Lookup(word); ok {
		return true
	}
	return false
}

func (f *Frontend) parseUnlabeled(line fstr.Cursor) {
	word, rest := line.ConsumeWhile(fstr.WordChar)
	if word.IsEmpty() {
		return
	}
	f.dispatch("", f.loc(line), word.Text, rest.ConsumeWhitespace())
}

func (f *Frontend) dispatch(label string, loc xerr.Location, word string, rest fstr.Cursor) {
	if h, ok := f.directives.Lookup(word); ok {
		if !f.cond.Active() && !isConditionalWord(word) {
			return
		}
		if !consumesLabel(word) {
			f.emitLabel(loc, label)
		}
		h(f, label, loc, rest)
		return
	}
	if !f.cond.Active() {
		return
	}
	if d, ok := f.macros.Lookup(word); ok {
		f.expandMacro(label, loc, d, rest)
		return
	}
	f.emitLabel(loc, label)
	f.parseMnemonic(loc, word, rest)
}

func isConditionalWord(word string) bool {
	switch strings.ToUpper(word) {
	case "IFEQ", "IFLT", "IFIDN", "IF1", "IF2", "IFB", "ELSE", "ENDIF":
		return true
	}
	return false
}

// consumesLabel reports whether a directive handles its own label
// rather than wanting the ordinary position-label atom dispatch would
// otherwise emit for it.
func consumesLabel(word string) bool {
	switch strings.ToUpper(word) {
	case "EQU", "SET", "DEFL", "=", "MACRO":
		return true
	}
	return false
}

func (f *Frontend) expandMacro(label string, loc xerr.Location, d *macro.Definition, rest fstr.Cursor) {
	f.emitLabel(loc, label)
	if err := f.macros.Enter(); err != nil {
		f.errs.Addf(xerr.KindMacro, loc, "%s", err)
		return
	}
	defer f.macros.Leave()
	args := splitParams(rest.Text)
	lines, err := f.macros.Expand(d, args)
	if err != nil {
		f.errs.Addf(xerr.KindMacro, loc, "%s", err)
		return
	}
	f.reparseLines(lines)
}

func (f *Frontend) reparseLines(lines []string) {
	for _, l := range lines {
		f.parseLine(fstr.New(f.currentFile, f.currentRow, l).StripTrailingComment(isCommentStart))
	}
}

func (f *Frontend) parseMnemonic(loc xerr.Location, mnemonic string, rest fstr.Cursor) {
	m := strings.ToUpper(mnemonic)
	if m == "JR" {
		if cc, _, found := strings.Cut(rest.Text, ","); found {
			switch c := strings.ToUpper(strings.TrimSpace(cc)); c {
			case "Z", "NZ", "C", "NC":
				m += c
				rest = rest.Consume(len(cc) + 1).ConsumeWhitespace()
			}
		}
	}
	operandText := strings.TrimSpace(rest.Text)
	tree := f.operandExpr(rest, loc)
	f.emit(atom.Instruction(loc, m, operandText, tree))
}

func (f *Frontend) operandExpr(c fstr.Cursor, loc xerr.Location) *expr.Tree {
	c = c.ConsumeWhitespace()
	if c.IsEmpty() {
		return nil
	}
	switch {
	case c.StartsWithChar('('):
		body, _ := c.Consume(1).ConsumeUntilUnquotedChar(')')
		tree, _ := f.parser.Parse(body, loc, f.errs)
		return tree
	default:
		body, _, _ := strings.Cut(c.Text, ",")
		inner := c.Trunc(len(body))
		if isBareRegister(inner.Text) {
			return nil
		}
		tree, _ := f.parser.Parse(inner, loc, f.errs)
		return tree
	}
}

func isBareRegister(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "A", "B", "C", "D", "E", "H", "L", "IX", "IY", "HL", "DE", "BC", "SP", "AF", "I", "R":
		return true
	}
	return false
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

// readNumber recognizes $hex, 0x/0X hex, %binary, 'A' (single-quoted
// ASCII), and the M80 suffixed forms (0FFH, 377O/377Q, 11111111B,
// 255D), plus a bare decimal (or, with .RADIX in effect, the current
// default radix). M80 numbers always start with a decimal digit; the
// suffix letter is found by scanning the longest run of alphanumeric
// characters and checking its last byte, which is the only way to tell
// "11111111B" (binary) from a bare hex digit run ending in B without
// mis-consuming the trailing letter as a hex digit first.
func (f *Frontend) readNumber(c fstr.Cursor) (int, fstr.Cursor, bool) {
	switch {
	case c.StartsWithChar('$'):
		digits, rest := c.Consume(1).ConsumeWhile(fstr.Hexadecimal)
		if digits.IsEmpty() {
			return 0, c, false
		}
		return parseRadix(digits.Text, 16), rest, true

	case c.StartsWithString("0x") || c.StartsWithString("0X"):
		digits, rest := c.Consume(2).ConsumeWhile(fstr.Hexadecimal)
		if digits.IsEmpty() {
			return 0, c, false
		}
		return parseRadix(digits.Text, 16), rest, true

	case c.StartsWithChar('%'):
		digits, rest := c.Consume(1).ConsumeWhile(fstr.Binary)
		if digits.IsEmpty() {
			return 0, c, false
		}
		return parseRadix(digits.Text, 2), rest, true

	case c.StartsWithChar('\'') && len(c.Text) >= 2:
		return int(c.Text[1]), c.Consume(2), true

	case c.StartsWith(fstr.Decimal):
		word, rest := c.ConsumeWhile(isNumWordChar)
		return f.parseSuffixedNumber(word.Text), rest, true
	}
	return 0, c, false
}

func isNumWordChar(c byte) bool {
	return fstr.Decimal(c) || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func (f *Frontend) parseSuffixedNumber(word string) int {
	if word == "" {
		return 0
	}
	last := word[len(word)-1]
	if last >= 'a' && last <= 'z' {
		last -= 32
	}
	switch last {
	case 'H':
		return parseRadix(word[:len(word)-1], 16)
	case 'O', 'Q':
		return parseRadix(word[:len(word)-1], 8)
	case 'B':
		return parseRadix(word[:len(word)-1], 2)
	case 'D':
		return parseRadix(word[:len(word)-1], 10)
	default:
		return parseRadix(word, f.radix)
	}
}

func parseRadix(s string, radix int) int {
	v := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		var d int
		switch {
		case ch >= '0' && ch <= '9':
			d = int(ch - '0')
		case ch >= 'a' && ch <= 'f':
			d = int(ch-'a') + 10
		case ch >= 'A' && ch <= 'F':
			d = int(ch-'A') + 10
		}
		v = v*radix + d
	}
	return v
}
