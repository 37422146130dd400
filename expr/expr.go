// Package expr implements the expression tree and shunting-yard parser
// shared by every syntax front-end, grounded on the teacher's
// asm/expr.go (exprOp/ops/expr/exprParser), generalized from the
// 6502-only operator set to the full arithmetic/bitwise/logical/
// comparison set and a pluggable NumberReader per dialect.
package expr

import (
	"github.com/retrotoolkit/xasm/symtab"
)

// Kind tags the sum type a Tree node belongs to.
type Kind int

const (
	KindLiteral Kind = iota
	KindSymbol
	KindCurrentLocation
	KindUnary
	KindBinary
	KindFunctionCall
)

// Tree is one node of an expression AST. Only the fields relevant to
// Kind are populated; this mirrors the teacher's single "expr" struct
// carrying every variant's fields rather than a Go interface per kind,
// which keeps eval() a single recursive function as in the original.
type Tree struct {
	Kind     Kind
	Value    int    // KindLiteral
	Name     string // KindSymbol, KindFunctionCall (function name)
	Op       Op     // KindUnary, KindBinary
	Child0   *Tree  // KindUnary operand, KindBinary left, KindFunctionCall arg
	Child1   *Tree  // KindBinary right
	IsString bool
	String   string // string-literal payload, when IsString
}

// Op identifies a unary or binary operator.
type Op byte

const (
	OpNone Op = iota
	OpNeg            // unary -
	OpPos            // unary +
	OpLowByte        // unary <
	OpHighByte       // unary >
	OpBitNot         // unary ~
	OpNot            // unary !
	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpAnd
	OpXor
	OpOr
	OpLogAnd
	OpLogOr
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
)

// Eval walks the tree, resolving symbols against tab and the current
// location counter. ok is false when a symbol could not yet be
// resolved (forward reference on an early pass) or a function name is
// unknown; the returned value is then 0, and the engine defers the
// atom to a later pass instead of encoding it.
func (t *Tree) Eval(tab *symtab.Table) (value int, ok bool) {
	if t == nil {
		return 0, true
	}
	switch t.Kind {
	case KindLiteral:
		return t.Value, true

	case KindCurrentLocation:
		return tab.CurrentLocation(), true

	case KindSymbol:
		return tab.Lookup(t.Name)

	case KindUnary:
		v, ok := t.Child0.Eval(tab)
		if !ok {
			return 0, false
		}
		return evalUnary(t.Op, v), true

	case KindBinary:
		a, ok0 := t.Child0.Eval(tab)
		b, ok1 := t.Child1.Eval(tab)
		if !ok0 || !ok1 {
			return 0, false
		}
		return evalBinary(t.Op, a, b), true

	case KindFunctionCall:
		v, ok := t.Child0.Eval(tab)
		if !ok {
			return 0, false
		}
		switch t.Name {
		case "LOW":
			return v & 0xff, true
		case "HIGH":
			return (v >> 8) & 0xff, true
		case "BANK":
			return (v >> 16) & 0xff, true
		default:
			return 0, false
		}
	}
	return 0, false
}

func evalUnary(op Op, v int) int {
	switch op {
	case OpNeg:
		return -v
	case OpPos:
		return v
	case OpLowByte:
		return v & 0xff
	case OpHighByte:
		return (v >> 8) & 0xff
	case OpBitNot:
		return ^v
	case OpNot:
		if v == 0 {
			return 1
		}
		return 0
	}
	return v
}

func evalBinary(op Op, a, b int) int {
	switch op {
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case OpMod:
		if b == 0 {
			return 0
		}
		return a % b
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpShl:
		return a << uint(b)
	case OpShr:
		return a >> uint(b)
	case OpAnd:
		return a & b
	case OpXor:
		return a ^ b
	case OpOr:
		return a | b
	case OpLogAnd:
		return boolInt(a != 0 && b != 0)
	case OpLogOr:
		return boolInt(a != 0 || b != 0)
	case OpEq:
		return boolInt(a == b)
	case OpNeq:
		return boolInt(a != b)
	case OpLt:
		return boolInt(a < b)
	case OpLe:
		return boolInt(a <= b)
	case OpGt:
		return boolInt(a > b)
	case OpGe:
		return boolInt(a >= b)
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Literal builds a KindLiteral leaf.
func Literal(v int) *Tree { return &Tree{Kind: KindLiteral, Value: v} }

// StringLiteral builds a KindLiteral leaf carrying string data (used by
// directives like DB/ASC that accept either a number or a quoted run).
func StringLiteral(s string) *Tree {
	return &Tree{Kind: KindLiteral, IsString: true, String: s}
}

// Symbol builds a KindSymbol leaf.
func Symbol(name string) *Tree { return &Tree{Kind: KindSymbol, Name: name} }

// CurrentLocation builds the `*` node.
func CurrentLocation() *Tree { return &Tree{Kind: KindCurrentLocation} }

// Unary builds a KindUnary node.
func Unary(op Op, child *Tree) *Tree {
	return &Tree{Kind: KindUnary, Op: op, Child0: child}
}

// Binary builds a KindBinary node.
func Binary(op Op, left, right *Tree) *Tree {
	return &Tree{Kind: KindBinary, Op: op, Child0: left, Child1: right}
}

// Call builds a KindFunctionCall node.
func Call(name string, arg *Tree) *Tree {
	return &Tree{Kind: KindFunctionCall, Name: name, Child0: arg}
}
