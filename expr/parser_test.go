package expr_test

import (
	"testing"

	"github.com/retrotoolkit/xasm/expr"
	"github.com/retrotoolkit/xasm/fstr"
	"github.com/retrotoolkit/xasm/symtab"
	"github.com/retrotoolkit/xasm/xerr"
)

func readDecimalOrHex(c fstr.Cursor) (int, fstr.Cursor, bool) {
	if c.StartsWithChar('$') {
		digits, rest := c.Consume(1).ConsumeWhile(fstr.Hexadecimal)
		if digits.IsEmpty() {
			return 0, c, false
		}
		v := 0
		for i := 0; i < len(digits.Text); i++ {
			v = v*16 + hexVal(digits.Text[i])
		}
		return v, rest, true
	}
	if c.StartsWith(fstr.Decimal) {
		digits, rest := c.ConsumeWhile(fstr.Decimal)
		v := 0
		for i := 0; i < len(digits.Text); i++ {
			v = v*10 + int(digits.Text[i]-'0')
		}
		return v, rest, true
	}
	return 0, c, false
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

func eval(t *testing.T, text string) int {
	t.Helper()
	p := expr.NewParser(readDecimalOrHex)
	errs := &xerr.List{}
	tree, _ := p.Parse(fstr.New(0, 1, text), xerr.Location{Line: 1}, errs)
	if errs.HasErrors() {
		t.Fatalf("parse %q: %v", text, errs.Errors())
	}
	v, ok := tree.Eval(symtab.New())
	if !ok {
		t.Fatalf("eval %q: not ok", text)
	}
	return v
}

func TestPrecedence(t *testing.T) {
	cases := map[string]int{
		"1+2*3":       7,
		"(1+2)*3":     9,
		"10-4-2":      4,
		"1<<4":        16,
		"$ff&$0f":     0x0f,
		"2==2":        1,
		"1&&0":        0,
		"1||0":        1,
		"-5+3":        -2,
		"<$1234":      0x34,
		">$1234":      0x12,
		"LOW($1234)":  0x34,
		"HIGH($1234)": 0x12,
	}
	for text, want := range cases {
		if got := eval(t, text); got != want {
			t.Errorf("eval(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestSymbolForwardReference(t *testing.T) {
	tab := symtab.New()
	p := expr.NewParser(readDecimalOrHex)
	errs := &xerr.List{}
	tree, _ := p.Parse(fstr.New(0, 1, "FOO+1"), xerr.Location{Line: 1}, errs)
	if errs.HasErrors() {
		t.Fatalf("parse: %v", errs.Errors())
	}
	if _, ok := tree.Eval(tab); ok {
		t.Fatalf("expected unresolved forward reference")
	}
	tab.Define("FOO", symtab.KindEquate, 41)
	v, ok := tree.Eval(tab)
	if !ok || v != 42 {
		t.Fatalf("got %d,%v want 42,true", v, ok)
	}
}

func TestCurrentLocation(t *testing.T) {
	tab := symtab.New()
	tab.SetCurrentLocation(0x8000)
	p := expr.NewParser(readDecimalOrHex)
	errs := &xerr.List{}
	tree, _ := p.Parse(fstr.New(0, 1, "*+3"), xerr.Location{Line: 1}, errs)
	v, ok := tree.Eval(tab)
	if !ok || v != 0x8003 {
		t.Fatalf("got %d,%v want 0x8003,true", v, ok)
	}
}
