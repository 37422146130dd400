package expr

import (
	"github.com/retrotoolkit/xasm/fstr"
	"github.com/retrotoolkit/xasm/xerr"
)

// opdata mirrors the teacher's exprParser.ops precedence table:
// precedence, arity, and associativity drive the shunting-yard
// reduction.
type opdata struct {
	op         Op
	precedence int
	arity      int // 1 = unary, 2 = binary
	leftAssoc  bool
	symbol     string
}

// Binary operator table, ordered low to high precedence. Matches
// spec.md §4.1's operator set: logical or/and, comparisons, bitwise
// or/xor/and, shift, additive, multiplicative.
var binaryOps = []opdata{
	{OpLogOr, 1, 2, true, "||"},
	{OpLogAnd, 2, 2, true, "&&"},
	{OpEq, 3, 2, true, "=="},
	{OpNeq, 3, 2, true, "!="},
	{OpLt, 3, 2, true, "<"},
	{OpLe, 3, 2, true, "<="},
	{OpGt, 3, 2, true, ">"},
	{OpGe, 3, 2, true, ">="},
	{OpOr, 4, 2, true, "|"},
	{OpXor, 5, 2, true, "^"},
	{OpAnd, 6, 2, true, "&"},
	{OpShl, 7, 2, true, "<<"},
	{OpShr, 7, 2, true, ">>"},
	{OpAdd, 8, 2, true, "+"},
	{OpSub, 8, 2, true, "-"},
	{OpMul, 9, 2, true, "*"},
	{OpDiv, 9, 2, true, "/"},
	{OpMod, 9, 2, true, "%"},
}

const unaryPrecedence = 10

// NumberReader parses a dialect-specific numeric literal from the head
// of c, returning the value and the remaining cursor. Each syntax
// front-end supplies its own (generic's "$"/"%" vs scmasm's Merlin-like
// rules vs edtasm's "0FFH"/"377O" suffixes), per spec.md §4.1's
// pluggable-reader requirement.
type NumberReader func(c fstr.Cursor) (value int, remain fstr.Cursor, ok bool)

// Parser turns one line's operand text into a Tree using Dijkstra's
// shunting-yard algorithm, grounded on the teacher's exprParser.parse/
// parseToken/parseNumber (asm/expr.go).
type Parser struct {
	ReadNumber NumberReader
	// IsIdentStart/IsIdentChar let a dialect admit extra symbol
	// characters (e.g. Merlin's ']' variable sigil) without forking
	// the whole parser.
	IsIdentStart func(byte) bool
	IsIdentChar  func(byte) bool
}

// NewParser builds a Parser with the generic dialect's defaults.
func NewParser(readNumber NumberReader) *Parser {
	return &Parser{
		ReadNumber:   readNumber,
		IsIdentStart: fstr.IdentifierStartChar,
		IsIdentChar:  fstr.IdentifierChar,
	}
}

// Parse consumes a full expression from the head of c and returns the
// tree plus the cursor positioned just after it.
func (p *Parser) Parse(c fstr.Cursor, loc xerr.Location, errs *xerr.List) (*Tree, fstr.Cursor) {
	var operands stack[*Tree]
	var operators stack[opdata]

	apply := func() bool {
		top, ok := operators.pop()
		if !ok {
			return false
		}
		if top.arity == 1 {
			a, ok := operands.pop()
			if !ok {
				return false
			}
			operands.push(Unary(top.op, a))
			return true
		}
		b, ok1 := operands.pop()
		a, ok0 := operands.pop()
		if !ok0 || !ok1 {
			return false
		}
		operands.push(Binary(top.op, a, b))
		return true
	}

	reduceWhile := func(minPrec int, leftAssoc bool) {
		for {
			top, ok := operators.peek()
			if !ok || top.op == OpNone /* paren marker */ {
				return
			}
			if top.precedence > minPrec || (top.precedence == minPrec && leftAssoc) {
				if !apply() {
					return
				}
				continue
			}
			return
		}
	}

	expectOperand := true
	parenDepth := 0

	for {
		c = c.ConsumeWhitespace()
		if c.IsEmpty() {
			break
		}

		if expectOperand {
			if c.StartsWithChar('(') {
				operators.push(opdata{OpNone, -1, 0, false, "("})
				c = c.Consume(1)
				parenDepth++
				continue
			}
			if op, ok := matchUnaryPrefix(c); ok {
				operators.push(opdata{op.op, unaryPrecedence, 1, false, op.symbol})
				c = c.Consume(len(op.symbol))
				continue
			}
			leaf, rest, ok := p.parseOperand(c, loc, errs)
			if !ok {
				return nil, c
			}
			operands.push(leaf)
			c = rest
			expectOperand = false
			continue
		}

		// operand already parsed: expect binary op, ')', or end.
		if c.StartsWithChar(')') {
			if parenDepth == 0 {
				break
			}
			for {
				top, ok := operators.peek()
				if !ok {
					errs.Addf(xerr.KindExpression, loc, "mismatched parentheses")
					return nil, c
				}
				if top.op == OpNone {
					operators.pop()
					break
				}
				if !apply() {
					errs.Addf(xerr.KindExpression, loc, "malformed expression")
					return nil, c
				}
			}
			parenDepth--
			c = c.Consume(1)
			continue
		}

		op, n, ok := matchBinary(c)
		if !ok {
			break
		}
		reduceWhile(op.precedence, op.leftAssoc)
		operators.push(op)
		c = c.Consume(n)
		expectOperand = true
	}

	for {
		if _, ok := operators.peek(); !ok {
			break
		}
		if !apply() {
			errs.Addf(xerr.KindExpression, loc, "malformed expression")
			return nil, c
		}
	}

	result, ok := operands.pop()
	if !ok {
		errs.Addf(xerr.KindExpression, loc, "expected expression")
		return nil, c
	}
	return result, c
}

var unaryPrefixes = []opdata{
	{OpLowByte, unaryPrecedence, 1, false, "<"},
	{OpHighByte, unaryPrecedence, 1, false, ">"},
	{OpNeg, unaryPrecedence, 1, false, "-"},
	{OpPos, unaryPrecedence, 1, false, "+"},
	{OpBitNot, unaryPrecedence, 1, false, "~"},
	{OpNot, unaryPrecedence, 1, false, "!"},
}

func matchUnaryPrefix(c fstr.Cursor) (opdata, bool) {
	for _, o := range unaryPrefixes {
		if c.StartsWithString(o.symbol) {
			return o, true
		}
	}
	return opdata{}, false
}

func matchBinary(c fstr.Cursor) (opdata, int, bool) {
	// longest symbols first so "<=" isn't shadowed by "<".
	best := -1
	var bestOp opdata
	for _, o := range binaryOps {
		if c.StartsWithString(o.symbol) && len(o.symbol) > best {
			best = len(o.symbol)
			bestOp = o
		}
	}
	if best < 0 {
		return opdata{}, 0, false
	}
	return bestOp, best, true
}

func (p *Parser) parseOperand(c fstr.Cursor, loc xerr.Location, errs *xerr.List) (*Tree, fstr.Cursor, bool) {
	if c.StartsWithChar('*') {
		return CurrentLocation(), c.Consume(1), true
	}
	if c.StartsWith(fstr.StringQuote) {
		return p.parseStringOrChar(c, loc, errs)
	}
	if v, rest, ok := p.ReadNumber(c); ok {
		return Literal(v), rest, true
	}
	if c.StartsWith(p.IsIdentStart) {
		name, rest := c.ConsumeWhile(p.IsIdentChar)
		if !rest.IsEmpty() && rest.StartsWithChar('(') && isFunctionName(name.Text) {
			inner := rest.Consume(1)
			arg, after := p.Parse(inner, loc, errs)
			after = after.ConsumeWhitespace()
			if after.StartsWithChar(')') {
				after = after.Consume(1)
			}
			return Call(name.Text, arg), after, true
		}
		return Symbol(name.Text), rest, true
	}
	errs.Addf(xerr.KindExpression, loc, "expected expression, found %q", c.Text)
	return nil, c, false
}

func isFunctionName(name string) bool {
	switch name {
	case "LOW", "HIGH", "BANK":
		return true
	}
	return false
}

func (p *Parser) parseStringOrChar(c fstr.Cursor, loc xerr.Location, errs *xerr.List) (*Tree, fstr.Cursor, bool) {
	quote := c.Text[0]
	body, rest := c.Consume(1).ConsumeUntilChar(quote)
	if rest.IsEmpty() {
		errs.Addf(xerr.KindSyntax, loc, "unterminated string literal")
		return nil, c, false
	}
	rest = rest.Consume(1)
	if quote == '\'' && len(body.Text) == 1 {
		return Literal(int(body.Text[0])), rest, true
	}
	return StringLiteral(body.Text), rest, true
}

// stack is the teacher's generic stack[T any] helper (asm/expr.go),
// reused verbatim for the same purpose here.
type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) { s.items = append(s.items, v) }

func (s *stack[T]) pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func (s *stack[T]) peek() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}
