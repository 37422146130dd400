// Package merlin implements the Merlin assembly dialect (the Prince of
// Persia source format): column-1 '*' full-line comments alongside
// inline ';' comments, ':'-prefixed local labels scoped to the last
// global label, ']'-prefixed variables, and a DUM/DEND block that
// assigns labels as structure-offset equates instead of position
// labels. Grounded on
// original_source/include/xasm++/syntax/merlin_syntax.h and
// original_source/src/syntax/merlin_syntax.cpp, built the way
// syntax/generic shares its fstr/expr/directive/cond/macro plumbing.
package merlin

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

// Frontend implements syntax.Frontend for the Merlin dialect.
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

	inDum     bool
	dumOffset int
}

// New creates a Frontend with Merlin's pseudo-op set registered.
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
	f.directives.RegisterAliases((*Frontend).dirOrg, "ORG")
	f.directives.RegisterAliases((*Frontend).dirEqu, "EQU")
	f.directives.RegisterAliases((*Frontend).dirDB, "DB")
	f.directives.RegisterAliases((*Frontend).dirDW, "DW", "DA")
	f.directives.RegisterAliases((*Frontend).dirHex, "HEX")
	f.directives.RegisterAliases((*Frontend).dirDS, "DS")
	f.directives.RegisterAliases((*Frontend).dirAsc, "ASC")
	f.directives.RegisterAliases((*Frontend).dirDum, "DUM")
	f.directives.RegisterAliases((*Frontend).dirDend, "DEND")
	f.directives.RegisterAliases((*Frontend).dirNoop, "PUT", "LST", "LSTDO", "TR")
	f.directives.RegisterAliases((*Frontend).dirDo, "DO")
	f.directives.RegisterAliases((*Frontend).dirElse, "ELSE")
	f.directives.RegisterAliases((*Frontend).dirFin, "FIN")
}

// Parse reads one Merlin source file and appends its atoms to the
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
		line := fstr.New(fi, row, text)
		f.parseLine(line.StripTrailingComment(isCommentStart))
		row++
	}

	if f.cond.Unclosed() {
		f.errs.Addf(xerr.KindSyntax, xerr.Location{File: filename, Line: row}, "unterminated DO block")
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

func (f *Frontend) emit(a *atom.Atom) {
	if f.cond.Active() {
		f.atoms = append(f.atoms, a)
	}
}

func isLabelStartChar(c byte) bool {
	return fstr.IdentifierStartChar(c) || c == ':' || c == ']'
}
func isLabelChar(c byte) bool {
	return fstr.IdentifierChar(c) || c == ':' || c == ']'
}

func (f *Frontend) parseLine(line fstr.Cursor) {
	if line.IsEmpty() {
		return
	}
	if line.StartsWith(fstr.Whitespace) {
		f.parseUnlabeled(line.ConsumeWhitespace())
		return
	}

	label, rest := line.ConsumeWhile(isLabelChar)
	rest = rest.ConsumeWhitespace()
	name := f.qualifyLabel(label.Text)

	if !rest.IsEmpty() {
		word, after := rest.ConsumeWhile(fstr.WordChar)
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

// emitLabel defines name at the current address, or — inside a DUM
// block — as an immediate offset equate instead, since Merlin's DUM
// labels describe a structure's field offsets rather than real
// assembled positions.
func (f *Frontend) emitLabel(loc xerr.Location, name string) {
	if name == "" {
		return
	}
	if f.inDum {
		f.emit(atom.Equate(loc, name, expr.Literal(f.dumOffset), false))
		return
	}
	f.emit(atom.Label(loc, name))
}

// qualifyLabel scopes ':'-prefixed local labels to the last global
// label and leaves ']'-prefixed variables and plain globals as is; a
// plain global label updates the active scope.
func (f *Frontend) qualifyLabel(name string) string {
	if name == "" {
		return name
	}
	if strings.HasPrefix(name, ":") {
		if f.scopeLabel == "" {
			f.errs.Addf(xerr.KindSymbol, xerr.Location{}, "local label '%s' has no enclosing global label", name)
			return name
		}
		return f.scopeLabel + name
	}
	if strings.HasPrefix(name, "]") {
		return name
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
	case "DO", "ELSE", "FIN":
		return true
	}
	return false
}

// consumesLabel reports whether a directive handles its own label
// rather than wanting the ordinary position-label (or DUM-offset-equate)
// atom dispatch would otherwise emit for it.
func consumesLabel(word string) bool {
	switch strings.ToUpper(word) {
	case "EQU", "DUM":
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

func readNumber(c fstr.Cursor) (int, fstr.Cursor, bool) {
	switch {
	case c.StartsWithChar('$'):
		digits, rest := c.Consume(1).ConsumeWhile(fstr.Hexadecimal)
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
