// Package scmasm implements the S-C Macro Assembler dialect (Bob
// Sander-Cederlof's Apple II assembler): optional leading BASIC-style
// line numbers, dot-prefixed directives (.OR/.EQ/.SE/.AS/.AT/.AZ/.DA/
// .HS/.BS/.MA/.EM/.DO/.FIN/.LU/.ENDU), '.'-prefixed numeric local
// labels (.0-.9), and the delimiter high-bit rule for character/string
// literals: a delimiter below '\'' (0x27) sets the high bit on every
// byte, '\'' or above clears it. Grounded on
// original_source/include/xasm++/syntax/scmasm_syntax.h and
// .../directives/scmasm_directive_handlers.h.
package scmasm

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
	"github.com/retrotoolkit/xasm/symtab"
	"github.com/retrotoolkit/xasm/xerr"
)

var literalTab = symtab.New()

type handlerFunc func(f *Frontend, label string, loc xerr.Location, rest fstr.Cursor)

// Frontend implements syntax.Frontend for the SCMASM dialect.
type Frontend struct {
	directives *directive.Registry[handlerFunc]
	cond       cond.Stack
	macros     *macro.Processor
	parser     *expr.Parser

	fileIndex   int
	filenames   []string
	currentFile int
	currentRow  int

	scopeLabel string
	errs       *xerr.List
	atoms      []*atom.Atom

	capturing *macro.Definition // non-nil while inside .MA....EM
	looping   *loopCapture      // non-nil while inside .LU....ENDU
}

type loopCapture struct {
	count int
	body  []string
}

// New creates a Frontend with SCMASM's pseudo-op set registered.
func New() *Frontend {
	f := &Frontend{
		macros: macro.New(),
		parser: &expr.Parser{ReadNumber: readNumber, IsIdentStart: identStart, IsIdentChar: identChar},
	}
	f.directives = directive.NewRegistry[handlerFunc]()
	f.registerDirectives()
	return f
}

func identStart(c byte) bool { return fstr.IdentifierStartChar(c) }
func identChar(c byte) bool  { return fstr.IdentifierChar(c) }

func (f *Frontend) registerDirectives() {
	f.directives.RegisterAliases((*Frontend).dirOr, ".OR")
	f.directives.RegisterAliases((*Frontend).dirEq, ".EQ")
	f.directives.RegisterAliases((*Frontend).dirSe, ".SE")
	f.directives.RegisterAliases((*Frontend).dirAs, ".AS")
	f.directives.RegisterAliases((*Frontend).dirAt, ".AT")
	f.directives.RegisterAliases((*Frontend).dirAz, ".AZ")
	f.directives.RegisterAliases((*Frontend).dirDa, ".DA", ".DFB")
	f.directives.RegisterAliases((*Frontend).dirHs, ".HS")
	f.directives.RegisterAliases((*Frontend).dirBs, ".BS")
	f.directives.RegisterAliases((*Frontend).dirMa, ".MA")
	f.directives.RegisterAliases((*Frontend).dirEm, ".EM")
	f.directives.RegisterAliases((*Frontend).dirDo, ".DO")
	f.directives.RegisterAliases((*Frontend).dirFin, ".FIN")
	f.directives.RegisterAliases((*Frontend).dirLu, ".LU")
	f.directives.RegisterAliases((*Frontend).dirEndu, ".ENDU")
}

// Parse reads one SCMASM source file and appends its atoms to the
// running stream.
func (f *Frontend) Parse(r io.Reader, filename string) ([]*atom.Atom, *xerr.List) {
	f.errs = &xerr.List{}
	f.atoms = nil
	fi := f.fileIndex
	f.fileIndex++
	f.filenames = append(f.filenames, filename)
	f.currentFile = fi

	scanner := bufio.NewScanner(r)
	row := 1
	for scanner.Scan() {
		f.currentRow = row
		text := scanner.Text()
		if strings.HasPrefix(text, "*") {
			row++
			continue
		}
		line := stripLineNumber(fstr.New(fi, row, text))
		stripped := line.StripTrailingComment(isCommentStart)

		if f.looping != nil {
			if f.captureLoopLine(stripped) {
				row++
				continue
			}
			row++
			continue
		}
		if f.capturing != nil {
			f.captureMacroLine(stripped)
			row++
			continue
		}
		f.parseLine(stripped)
		row++
	}

	if f.cond.Unclosed() {
		f.errs.Addf(xerr.KindSyntax, xerr.Location{File: filename, Line: row}, "unterminated .DO block")
	}
	if f.capturing != nil {
		f.errs.Addf(xerr.KindMacro, xerr.Location{File: filename, Line: row}, "unterminated .MA '%s'", f.capturing.Name)
		f.capturing = nil
	}
	if f.looping != nil {
		f.errs.Addf(xerr.KindMacro, xerr.Location{File: filename, Line: row}, "unterminated .LU block")
		f.looping = nil
	}
	return f.atoms, f.errs
}

func isCommentStart(c byte) bool { return c == ';' }

// stripLineNumber removes an optional BASIC-style decimal line number
// from the head of the line, SCMASM's own source-listing convention.
// Any whitespace separating the number from the rest of the line is
// left in place, so the usual leading-whitespace-means-unlabeled rule
// still applies to what follows.
func stripLineNumber(c fstr.Cursor) fstr.Cursor {
	digits, rest := c.ConsumeWhile(fstr.Decimal)
	if digits.IsEmpty() {
		return c
	}
	return rest
}

func (f *Frontend) loc(c fstr.Cursor) xerr.Location {
	name := ""
	if c.File >= 0 && c.File < len(f.filenames) {
		name = f.filenames[c.File]
	}
	return xerr.Location{File: name, Line: c.Row, Column: c.Column}
}

func (f *Frontend) emit(a *atom.Atom) {
	if f.cond.Active() {
		f.atoms = append(f.atoms, a)
	}
}

// captureMacroLine appends to the .MA body being captured, closing on
// a bare ".EM".
func (f *Frontend) captureMacroLine(line fstr.Cursor) {
	word, _ := line.ConsumeWhitespace().ConsumeWhile(fstr.WordChar)
	if strings.EqualFold(word.Text, ".EM") {
		f.macros.Define(f.capturing)
		f.capturing = nil
		return
	}
	f.capturing.Body = append(f.capturing.Body, line.Text)
}

// captureLoopLine appends to the .LU body being captured, closing and
// re-parsing the expansion on a bare ".ENDU". Returns true once
// consumed (always, since a loop body line is never itself parsed
// directly).
func (f *Frontend) captureLoopLine(line fstr.Cursor) bool {
	word, _ := line.ConsumeWhitespace().ConsumeWhile(fstr.WordChar)
	if !strings.EqualFold(word.Text, ".ENDU") {
		f.looping.body = append(f.looping.body, line.Text)
		return true
	}
	loop := f.looping
	f.looping = nil
	lines, _ := f.macros.ExpandRept(loop.count, loop.body)
	for _, l := range lines {
		f.parseLine(fstr.New(f.currentFile, f.currentRow, l).StripTrailingComment(isCommentStart))
	}
	return true
}

func (f *Frontend) parseLine(line fstr.Cursor) {
	if line.IsEmpty() {
		return
	}
	if line.StartsWith(fstr.Whitespace) {
		f.parseUnlabeled(line.ConsumeWhitespace())
		return
	}

	label, rest := line.ConsumeWhile(fstr.IdentifierChar)
	if _, ok := f.directives.Lookup(label.Text); ok {
		f.dispatch("", f.loc(line), label.Text, rest.ConsumeWhitespace())
		return
	}
	rest = rest.ConsumeWhitespace()
	name := f.qualifyLabel(label.Text)

	if !rest.IsEmpty() {
		word, after := rest.ConsumeWhile(func(c byte) bool { return c != ' ' && c != '\t' })
		f.dispatch(name, f.loc(rest), word.Text, after.ConsumeWhitespace())
		return
	}
	f.emitLabel(f.loc(line), name)
}

func (f *Frontend) parseUnlabeled(line fstr.Cursor) {
	word, rest := line.ConsumeWhile(fstr.WordChar)
	if word.IsEmpty() {
		return
	}
	f.dispatch("", f.loc(line), word.Text, rest.ConsumeWhitespace())
}

func (f *Frontend) emitLabel(loc xerr.Location, name string) {
	if name == "" {
		return
	}
	f.emit(atom.Label(loc, name))
}

// qualifyLabel scopes a numeric local label (".0" through ".9") to the
// last global label seen; any other name updates the active scope.
func (f *Frontend) qualifyLabel(name string) string {
	if name == "" {
		return name
	}
	if len(name) == 2 && name[0] == '.' && name[1] >= '0' && name[1] <= '9' {
		if f.scopeLabel == "" {
			f.errs.Addf(xerr.KindSymbol, xerr.Location{}, "local label '%s' has no enclosing global label", name)
			return name
		}
		return f.scopeLabel + name
	}
	f.scopeLabel = name
	return name
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
	case ".DO", ".FIN":
		return true
	}
	return false
}

// consumesLabel reports whether a directive handles its own label
// rather than wanting the ordinary position-label atom dispatch would
// otherwise emit for it.
func consumesLabel(word string) bool {
	switch strings.ToUpper(word) {
	case ".EQ", ".SE", ".MA":
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
	for _, line := range lines {
		f.parseLine(fstr.New(f.currentFile, f.currentRow, line).StripTrailingComment(isCommentStart))
	}
}

func (f *Frontend) parseMnemonic(loc xerr.Location, mnemonic string, rest fstr.Cursor) {
	operandText := strings.TrimSpace(rest.Text)
	tree := f.operandExpr(rest, loc)
	f.emit(atom.Instruction(loc, strings.ToUpper(mnemonic), operandText, tree))
}

func (f *Frontend) operandExpr(c fstr.Cursor, loc xerr.Location) *expr.Tree {
	c = c.ConsumeWhitespace()
	if c.IsEmpty() {
		return nil
	}
	switch {
	case c.StartsWithChar('#'):
		tree, _ := f.parser.Parse(c.Consume(1), loc, f.errs)
		return tree
	case c.StartsWithChar('('):
		body, _ := c.Consume(1).ConsumeUntilUnquotedChar(')')
		tree, _ := f.parser.Parse(body, loc, f.errs)
		return tree
	default:
		body, _, _ := strings.Cut(c.Text, ",")
		inner := c.Trunc(len(body))
		if isBareIndexRegister(inner.Text) {
			return nil
		}
		tree, _ := f.parser.Parse(inner, loc, f.errs)
		return tree
	}
}

func isBareIndexRegister(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "A", "X", "Y":
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

// readNumber parses $hex, %binary (with optional '.' nibble
// separators), decimal, and the high-bit-rule character constant
// ('A / "A / /A).
func readNumber(c fstr.Cursor) (int, fstr.Cursor, bool) {
	switch {
	case c.StartsWithChar('$'):
		digits, rest := c.Consume(1).ConsumeWhile(fstr.Hexadecimal)
		if digits.IsEmpty() {
			return 0, c, false
		}
		return parseRadix(digits.Text, 16), rest, true

	case c.StartsWithChar('%'):
		rest := c.Consume(1)
		v := 0
		any := false
		for rest.StartsWith(fstr.Binary) || rest.StartsWithChar('.') {
			if rest.StartsWithChar('.') {
				rest = rest.Consume(1)
				continue
			}
			v = v*2 + int(rest.Text[0]-'0')
			any = true
			rest = rest.Consume(1)
		}
		if !any {
			return 0, c, false
		}
		return v, rest, true

	case c.StartsWithChar('\'') || c.StartsWithChar('"') || c.StartsWithChar('/'):
		if len(c.Text) < 2 {
			return 0, c, false
		}
		delim := c.Text[0]
		ch := c.Text[1]
		return int(applyHighBit(ch, delim)), c.Consume(2), true

	case c.StartsWith(fstr.Decimal):
		digits, rest := c.ConsumeWhile(fstr.Decimal)
		return parseRadix(digits.Text, 10), rest, true
	}
	return 0, c, false
}

// applyHighBit implements SCMASM's delimiter rule: a delimiter below
// '\'' (0x27) sets the high bit, '\'' or above clears it.
func applyHighBit(c, delimiter byte) byte {
	if delimiter < 0x27 {
		return c | 0x80
	}
	return c &^ 0x80
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
