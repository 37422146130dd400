package directive_test

import (
	"testing"

	"github.com/retrotoolkit/xasm/directive"
)

func TestAliasesShareOneHandler(t *testing.T) {
	r := directive.NewRegistry[int]()
	r.RegisterAliases(1, "DB", "DEFB", "BYTE")

	for _, name := range []string{"db", "DEFB", "Byte"} {
		v, ok := r.Lookup(name)
		if !ok || v != 1 {
			t.Fatalf("Lookup(%q) = %v,%v want 1,true", name, v, ok)
		}
	}
}

func TestSuggestFindsCloseMisspelling(t *testing.T) {
	r := directive.NewRegistry[int]()
	r.Register("ORG", 1)
	r.Register("EQU", 2)

	got := r.Suggest("ORGG")
	if len(got) == 0 || got[0] != "ORG" {
		t.Fatalf("Suggest(%q) = %v, want ORG first", "ORGG", got)
	}
}

func TestUnknownDirectiveNotFound(t *testing.T) {
	r := directive.NewRegistry[int]()
	r.Register("ORG", 1)

	_, err, found := r.ResolvePrefix("ZZZ")
	if found || err != nil {
		t.Fatalf("expected not found with no error, got found=%v err=%v", found, err)
	}
}
