package symbols

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retrotoolkit/xasm/symtab"
)

func TestWriteSortsByNameAndTagsKind(t *testing.T) {
	tab := symtab.New()
	tab.Define("SCREEN", symtab.KindEquate, 0x400)
	tab.Assign("START", symtab.KindLabel, 0x8000)
	tab.Define("COUNT", symtab.KindSet, 5)

	var buf bytes.Buffer
	if err := Write(&buf, tab); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "COUNT") {
		t.Errorf("first line = %q, want COUNT first (alphabetical)", lines[0])
	}
	if !strings.Contains(lines[0], "; set") {
		t.Errorf("COUNT line missing kind tag: %q", lines[0])
	}
	if !strings.Contains(lines[1], "$0400") && !strings.Contains(lines[2], "$0400") {
		t.Errorf("expected $0400 for SCREEN somewhere: %v", lines)
	}
}

func TestWriteOmitsUndefinedSymbols(t *testing.T) {
	tab := symtab.New()
	tab.Declare("FORWARD", symtab.KindLabel)

	var buf bytes.Buffer
	if err := Write(&buf, tab); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for an undefined (forward-declared-only) symbol, got %q", buf.String())
	}
}
