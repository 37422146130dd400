package edtasm

import (
	"strings"
	"testing"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/symtab"
)

func parse(t *testing.T, src string) []*atom.Atom {
	t.Helper()
	f := New()
	atoms, errs := f.Parse(strings.NewReader(src), "test.s")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	return atoms
}

func dataElements(t *testing.T, a *atom.Atom) []atom.DataElement {
	t.Helper()
	p, ok := a.Payload.(atom.DataPayload)
	if !ok {
		t.Fatalf("expected a data atom, got %v", a)
	}
	return p.Elements
}

// evalConst resolves a constant-only element expression (no symbol
// references) against an empty table, for asserting readNumber's
// output without running the engine.
func evalConst(t *testing.T, el atom.DataElement) int {
	t.Helper()
	v, ok := el.Expr.Eval(symtab.New())
	if !ok {
		t.Fatalf("expected element to resolve as a constant")
	}
	return v
}

func TestSuffixedNumberForms(t *testing.T) {
	atoms := parse(t, "DB 0FFH,377O,377Q,11111111B,255D\n")
	els := dataElements(t, atoms[0])
	if len(els) != 5 {
		t.Fatalf("expected 5 elements, got %d: %v", len(els), els)
	}
	want := []int{0xFF, 0xFF, 0xFF, 0xFF, 255}
	for i, w := range want {
		if got := evalConst(t, els[i]); got != w {
			t.Errorf("element %d = %d, want %d", i, got, w)
		}
	}
}

func TestHexAndBinaryAndDollarForms(t *testing.T) {
	atoms := parse(t, "DB $FF,0xFF,%11111111\n")
	els := dataElements(t, atoms[0])
	for i, el := range els {
		if got := evalConst(t, el); got != 0xFF {
			t.Errorf("element %d = %#x, want 0xff", i, got)
		}
	}
}

func TestRadixChangesBareDecimalWordBase(t *testing.T) {
	atoms := parse(t, ".RADIX 8\nDB 17\n")
	els := dataElements(t, atoms[0])
	if got := evalConst(t, els[0]); got != 15 {
		t.Errorf("17 under .RADIX 8 = %d, want 15", got)
	}
}

func TestDwPacksLittleEndian(t *testing.T) {
	atoms := parse(t, "DW 1234D\n")
	els := dataElements(t, atoms[0])
	if len(els) != 1 || els[0].Width != 2 || els[0].BigEndian {
		t.Fatalf("expected one little-endian word element, got %v", els)
	}
}

func TestForwardReferencedWordIsDeferred(t *testing.T) {
	atoms := parse(t, "TABLE: DW LABEL\nLABEL: DB 1\n")
	var data *atom.Atom
	for _, a := range atoms {
		if a.Kind == atom.KindData {
			data = a
			break
		}
	}
	if data == nil {
		t.Fatal("expected a data atom")
	}
	els := dataElements(t, data)
	if len(els) != 1 || els[0].Expr == nil || els[0].Width != 2 {
		t.Fatalf("expected one deferred word element, got %v", els)
	}
	if _, ok := els[0].Expr.Eval(symtab.New()); ok {
		t.Error("forward reference should not resolve against an empty table")
	}
}

func TestSegmentSwitchInjectsOrgForNonCodeSegments(t *testing.T) {
	src := "CSEG\nSTART: DB 1\nDSEG\nBUFFER: DS 2\n"
	atoms := parse(t, src)

	var kinds []atom.Kind
	for _, a := range atoms {
		kinds = append(kinds, a.Kind)
	}
	want := []atom.Kind{atom.KindLabel, atom.KindData, atom.KindOrg, atom.KindLabel, atom.KindSpace}
	if len(kinds) != len(want) {
		t.Fatalf("got kinds %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("atom %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
	org := atoms[2].Payload.(atom.OrgPayload)
	if org.Address != 0 {
		t.Errorf("DSEG's injected org address = %d, want 0", org.Address)
	}
}

func TestPhaseDephaseRestoresPriorAddress(t *testing.T) {
	src := "ORG 100H\nSTART: DB 1\nPHASE 8000H\nSHADOW: DB 2\nDEPHASE\nAFTER: DB 3\n"
	atoms := parse(t, src)

	var orgs []atom.OrgPayload
	for _, a := range atoms {
		if a.Kind == atom.KindOrg {
			orgs = append(orgs, a.Payload.(atom.OrgPayload))
		}
	}
	if len(orgs) != 3 {
		t.Fatalf("expected 3 org atoms, got %d: %v", len(orgs), orgs)
	}
	if orgs[0].Address != 0x100 {
		t.Errorf("initial ORG = %#x, want 0x100", orgs[0].Address)
	}
	if !orgs[1].Phase || orgs[1].Address != 0x8000 {
		t.Errorf("PHASE org = %+v, want phase at 0x8000", orgs[1])
	}
	if orgs[2].Phase || orgs[2].Address != 0x101 {
		t.Errorf("DEPHASE org = %+v, want non-phase at 0x101", orgs[2])
	}
}

func TestIfeqIfltConditionals(t *testing.T) {
	src := `
IFEQ 0
DB 1
ELSE
DB 2
ENDIF
IFLT -1
DB 3
ENDIF
IFLT 1
DB 4
ENDIF
`
	atoms := parse(t, src)
	var bytes []int
	for _, a := range atoms {
		els := dataElements(t, a)
		bytes = append(bytes, evalConst(t, els[0]))
	}
	want := []int{1, 3}
	if len(bytes) != len(want) {
		t.Fatalf("got %v, want %v", bytes, want)
	}
	for i := range want {
		if bytes[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, bytes[i], want[i])
		}
	}
}

func TestIfidnAndIfb(t *testing.T) {
	src := `
IFIDN <ABC>,<ABC>
DB 1
ENDIF
IFIDN <ABC>,<XYZ>
DB 2
ENDIF
IFB <>
DB 3
ENDIF
`
	atoms := parse(t, src)
	var bytes []int
	for _, a := range atoms {
		els := dataElements(t, a)
		bytes = append(bytes, evalConst(t, els[0]))
	}
	want := []int{1, 3}
	if len(bytes) != len(want) {
		t.Fatalf("got %v, want %v", bytes, want)
	}
}

func TestMacroDefinitionAndExpansion(t *testing.T) {
	src := `
INCBOTH MACRO
	INC A
	INC B
ENDM
INCBOTH
`
	atoms := parse(t, src)
	count := 0
	for _, a := range atoms {
		if a.Kind == atom.KindInstruction {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 expanded instructions, got %d: %v", count, atoms)
	}
}

func TestReptExpandsFixedCount(t *testing.T) {
	atoms := parse(t, "REPT 3\n\tINC A\nENDM\n")
	count := 0
	for _, a := range atoms {
		if a.Kind == atom.KindInstruction {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 expanded instructions, got %d: %v", count, atoms)
	}
}

func TestIrpSubstitutesEachValue(t *testing.T) {
	atoms := parse(t, "IRP REG,<B,C,D>\n\tINC REG\nENDM\n")
	var operands []string
	for _, a := range atoms {
		if a.Kind == atom.KindInstruction {
			operands = append(operands, a.Payload.(atom.InstructionPayload).OperandText)
		}
	}
	want := []string{"B", "C", "D"}
	if len(operands) != len(want) {
		t.Fatalf("got %v, want %v", operands, want)
	}
	for i := range want {
		if operands[i] != want[i] {
			t.Errorf("operand %d = %q, want %q", i, operands[i], want[i])
		}
	}
}

func TestIrpcSubstitutesEachCharacter(t *testing.T) {
	atoms := parse(t, "IRPC DIGIT,12\nDB DIGIT\nENDM\n")
	if len(atoms) != 2 {
		t.Fatalf("expected 2 expanded data atoms, got %d: %v", len(atoms), atoms)
	}
}

func TestEquRejectsRedefinitionSetAllows(t *testing.T) {
	atoms := parse(t, "LIMIT EQU 100\nCOUNT SET 0\nCOUNT SET 1\n")
	if len(atoms) != 3 {
		t.Fatalf("expected 3 equate atoms, got %d: %v", len(atoms), atoms)
	}
	eq := atoms[0].Payload.(atom.EquatePayload)
	if eq.Mutable {
		t.Error("EQU should not be mutable")
	}
	set := atoms[1].Payload.(atom.EquatePayload)
	if !set.Mutable {
		t.Error("SET should be mutable")
	}
}

func TestEndStopsParsingRemainingLines(t *testing.T) {
	src := "ORG 1000H\nDB 1\nEND\nDB 2\n"
	atoms := parse(t, src)
	count := 0
	for _, a := range atoms {
		if a.Kind == atom.KindData {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected only the DB before END, got %d data atoms", count)
	}
}

func TestUnterminatedMacroReportsError(t *testing.T) {
	f := New()
	_, errs := f.Parse(strings.NewReader("FOO MACRO\n\tINC A\n"), "test.s")
	if !errs.HasErrors() {
		t.Fatal("expected an error for an unterminated MACRO block")
	}
}
