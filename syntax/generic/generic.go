// Package generic implements the teacher's own assembly dialect,
// generalized from 6502-only pseudo-ops to the CPU-agnostic mnemonic/
// operand-text split the engine needs: numeric literal syntax
// ("$FF", "0xFF", "%1010", decimal), column-one labels with an
// optional trailing ':', and
// the pseudo-op set of spec.md §4.8 (ORG, EQU, DB/DW, DS, ALIGN,
// IF/ELSE/ENDIF, macros). Grounded on asm/asm.go's
// parseLine/parseLabeledLine/parseUnlabeledLine/parseInstruction/
// parseOperand and asm/fstring.go's cursor-based scanning style.
package generic

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
	"github.com/retrotoolkit/xasm/xerr"
)

// Frontend implements syntax.Frontend for the generic dialect.
type Frontend struct {
	directives *directive.Registry[handlerFunc]
	cond       cond.Stack
	macros     *macro.Processor
	parser     *expr.Parser

	fileIndex   int
	filenames   []string
	currentFile int
	currentRow  int
	scopeLabel  string
	errs        *xerr.List
	atoms       []*atom.Atom

	capturing *macro.Definition // non-nil while inside a MACRO...ENDM body
}

type handlerFunc func(f *Frontend, label string, loc xerr.Location, rest fstr.Cursor)

// New creates a Frontend with the standard pseudo-op set registered.
func New() *Frontend {
	f := &Frontend{
		macros: macro.New(),
		parser: expr.NewParser(readNumber),
	}
	f.directives = directive.NewRegistry[handlerFunc]()
	f.registerDirectives()
	return f
}

func (f *Frontend) registerDirectives() {
	f.directives.RegisterAliases((*Frontend).dirOrigin, "ORG", "OR")
	f.directives.RegisterAliases((*Frontend).dirEqu, "EQU", "EQ", "=")
	f.directives.RegisterAliases((*Frontend).dirSet, "SET")
	f.directives.RegisterAliases((*Frontend).dirByte, "DB", "DEFB", "BYTE", ".BYTE")
	f.directives.RegisterAliases((*Frontend).dirWord, "DW", "DEFW", "WORD", ".WORD")
	f.directives.RegisterAliases((*Frontend).dirSpace, "DS", "DEFS", "RMB", "BLKB")
	f.directives.RegisterAliases((*Frontend).dirAlign, "ALIGN")
	f.directives.RegisterAliases((*Frontend).dirIf, "IF")
	f.directives.RegisterAliases((*Frontend).dirElse, "ELSE")
	f.directives.RegisterAliases((*Frontend).dirEndif, "ENDIF", "FIN")
	f.directives.RegisterAliases((*Frontend).dirMacro, "MACRO")
	f.directives.RegisterAliases((*Frontend).dirEndm, "ENDM")
}

// Parse reads one source file and appends its atoms to the running
// stream, sharing directive/conditional/macro state across calls so
// included files see symbols and macros defined earlier.
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
		line := fstr.New(fi, row, scanner.Text())
		stripped := line.StripTrailingComment(isCommentStart)

		if f.capturing != nil {
			f.captureMacroLine(stripped)
			row++
			continue
		}
		f.parseLine(stripped)
		row++
	}

	if f.cond.Unclosed() {
		f.errs.Addf(xerr.KindSyntax, xerr.Location{File: filename, Line: row}, "unterminated IF block")
	}
	if f.capturing != nil {
		f.errs.Addf(xerr.KindMacro, xerr.Location{File: filename, Line: row},
			"unterminated MACRO '%s'", f.capturing.Name)
		f.capturing = nil
	}

	return f.atoms, f.errs
}

func isCommentStart(c byte) bool { return c == ';' }

func (f *Frontend) loc(c fstr.Cursor) xerr.Location {
	name := ""
	if c.File >= 0 && c.File < len(f.filenames) {
		name = f.filenames[c.File]
	}
	return xerr.Location{File: name, Line: c.Row, Column: c.Column}
}

// captureMacroLine appends one raw source line to the macro body being
// captured, recognizing a line whose first word is ENDM (no label;
// anything after the ENDM is ignored) as the terminator, matching the
// teacher's own single-pass macro capture.
func (f *Frontend) captureMacroLine(line fstr.Cursor) {
	word, _ := line.ConsumeWhitespace().ConsumeWhile(fstr.WordChar)
	if strings.EqualFold(word.Text, "ENDM") {
		f.macros.Define(f.capturing)
		f.capturing = nil
		return
	}
	f.capturing.Body = append(f.capturing.Body, line.Text)
}

func (f *Frontend) emit(a *atom.Atom) {
	if f.cond.Active() {
		f.atoms = append(f.atoms, a)
	}
}

func (f *Frontend) parseLine(line fstr.Cursor) {
	if line.IsEmpty() {
		return
	}

	if line.StartsWith(fstr.Whitespace) {
		f.parseUnlabeledLine(line.ConsumeWhitespace())
		return
	}
	f.parseLabeledLine(line)
}

func (f *Frontend) parseUnlabeledLine(line fstr.Cursor) {
	word, rest := line.ConsumeWhile(fstr.WordChar)
	if word.IsEmpty() {
		return
	}
	f.dispatch("", f.loc(line), word.Text, rest.ConsumeWhitespace())
}

func (f *Frontend) parseLabeledLine(line fstr.Cursor) {
	label, rest := line.ConsumeWhile(fstr.IdentifierChar)
	if label.IsEmpty() {
		f.errs.Addf(xerr.KindSyntax, f.loc(line), "invalid label")
		return
	}
	if rest.StartsWithChar(':') {
		rest = rest.Consume(1)
	}
	rest = rest.ConsumeWhitespace()

	if _, ok := f.directives.Lookup(label.Text); ok {
		f.dispatch("", f.loc(line), label.Text, rest)
		return
	}

	name := f.qualifyLabel(label.Text)
	if !rest.IsEmpty() {
		word, after := rest.ConsumeWhile(fstr.WordChar)
		if isDirectiveLike(word.Text) {
			f.dispatch(name, f.loc(rest), word.Text, after.ConsumeWhitespace())
			return
		}
	}

	if f.cond.Active() {
		f.emit(atom.Label(f.loc(line), name))
	}
	if !rest.IsEmpty() {
		f.parseInstruction(rest)
	}
}

// qualifyLabel prefixes a leading-dot local label with the active
// scope label, the same "~scope.local" scheme the teacher's
// storeLabel uses, and updates the scope for a non-local label.
func (f *Frontend) qualifyLabel(name string) string {
	if strings.HasPrefix(name, ".") {
		if f.scopeLabel == "" {
			f.errs.Addf(xerr.KindSymbol, xerr.Location{}, "local label '%s' has no enclosing global label", name)
			return name
		}
		return "~" + f.scopeLabel + name
	}
	f.scopeLabel = name
	return name
}

func isDirectiveLike(word string) bool {
	if word == "" {
		return false
	}
	return true
}

// dispatch routes a word following a label (or starting an unlabeled
// line) to a registered directive handler if one matches, otherwise
// treats it as a CPU mnemonic.
func (f *Frontend) dispatch(label string, loc xerr.Location, word string, rest fstr.Cursor) {
	if h, ok := f.directives.Lookup(word); ok {
		if !f.cond.Active() && !isConditionalDirective(word) {
			return
		}
		if !consumesLabel(word) && label != "" {
			f.emit(atom.Label(loc, label))
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
	if label != "" {
		f.emit(atom.Label(loc, label))
	}
	f.parseMnemonic(loc, word, rest)
}

// expandMacro substitutes args into d's captured body and re-parses the
// result as if it appeared inline at the call site, the same
// expand-then-reparse cycle macro.Processor's doc comment describes.
func (f *Frontend) expandMacro(label string, loc xerr.Location, d *macro.Definition, rest fstr.Cursor) {
	if label != "" {
		f.emit(atom.Label(loc, label))
	}
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

func isConditionalDirective(word string) bool {
	switch strings.ToUpper(word) {
	case "IF", "ELSE", "ENDIF", "FIN":
		return true
	}
	return false
}

// consumesLabel reports whether a directive handles its own label
// (defining a symbol with a non-Label kind) rather than wanting the
// ordinary position-label atom dispatch would otherwise emit for it.
func consumesLabel(word string) bool {
	switch strings.ToUpper(word) {
	case "EQU", "EQ", "=", "SET", "MACRO":
		return true
	}
	return false
}

func (f *Frontend) parseInstruction(line fstr.Cursor) {
	word, rest := line.ConsumeWhile(fstr.WordChar)
	if word.IsEmpty() {
		return
	}
	f.dispatch("", f.loc(line), word.Text, rest.ConsumeWhitespace())
}

func (f *Frontend) parseMnemonic(loc xerr.Location, mnemonic string, rest fstr.Cursor) {
	operandText := strings.TrimSpace(rest.Text)
	tree := f.operandExpr(rest, loc)
	f.emit(atom.Instruction(loc, strings.ToUpper(mnemonic), operandText, tree))
}

// operandExpr extracts and parses the expression portion of an
// operand, stripping the addressing-mode syntax (#, (...)/,X/,Y) the
// CPU backend disambiguates from the raw operand text itself. Returns
// nil when there is no expression to evaluate (implied/accumulator
// operands, or a bare register name).
func (f *Frontend) operandExpr(c fstr.Cursor, loc xerr.Location) *expr.Tree {
	c = c.ConsumeWhitespace()
	if c.IsEmpty() {
		return nil
	}

	switch {
	case c.StartsWithChar('#'):
		inner := c.Consume(1)
		if inner.StartsWithChar('<') || inner.StartsWithChar('>') {
			inner = inner.Consume(1)
		}
		tree, _ := f.parser.Parse(inner, loc, f.errs)
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

func readNumber(c fstr.Cursor) (int, fstr.Cursor, bool) {
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

	case c.StartsWith(fstr.Decimal):
		digits, rest := c.ConsumeWhile(fstr.Decimal)
		return parseRadix(digits.Text, 10), rest, true
	}
	return 0, c, false
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
