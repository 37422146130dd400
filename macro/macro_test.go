package macro_test

import (
	"reflect"
	"testing"

	"github.com/retrotoolkit/xasm/macro"
)

func TestExpandSubstitutesParams(t *testing.T) {
	p := macro.New()
	d := &macro.Definition{
		Name:   "PUSHALL",
		Params: []string{"REG1", "REG2"},
		Body:   []string{"PUSH REG1", "PUSH REG2"},
	}
	p.Define(d)

	got, err := p.Expand(d, []string{"A", "B"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"PUSH A", "PUSH B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExitmTruncatesExpansion(t *testing.T) {
	p := macro.New()
	d := &macro.Definition{
		Name: "ONCE",
		Body: []string{"NOP", "EXITM", "NOP"},
	}
	got, err := p.Expand(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "NOP" {
		t.Fatalf("EXITM should stop expansion, got %v", got)
	}
}

func TestLocalUniquification(t *testing.T) {
	p := macro.New()
	d := &macro.Definition{
		Name:   "LOOP",
		Locals: []string{"AGAIN"},
		Body:   []string{"AGAIN: DEX", "BNE AGAIN"},
	}
	first, _ := p.Expand(d, nil)
	second, _ := p.Expand(d, nil)
	if first[0] == second[0] {
		t.Fatalf("two expansions of the same macro must get distinct LOCAL labels: %v vs %v", first, second)
	}
}

func TestExpandRept(t *testing.T) {
	p := macro.New()
	got, err := p.ExpandRept(3, []string{"NOP"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 NOPs, got %v", got)
	}
}

func TestExpandIrpc(t *testing.T) {
	p := macro.New()
	got, err := p.ExpandIrpc("C", "ABC", []string{"DB 'C'"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"DB 'A'", "DB 'B'", "DB 'C'"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMaxExpansionDepth(t *testing.T) {
	p := macro.New()
	for i := 0; i < macro.MaxExpansionDepth; i++ {
		if err := p.Enter(); err != nil {
			t.Fatalf("Enter %d should still be under the limit: %v", i, err)
		}
	}
	if err := p.Enter(); err == nil {
		t.Fatal("expected an error past max expansion depth")
	}
	p.Leave()
	if err := p.Enter(); err != nil {
		t.Fatalf("Leave should free up a slot: %v", err)
	}
}
