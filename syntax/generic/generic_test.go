package generic

import (
	"strings"
	"testing"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/engine"
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

// assembled runs a through the engine, which resolves a data atom's
// deferred elements into bytes.
func assembled(t *testing.T, a *atom.Atom) *atom.Atom {
	t.Helper()
	sec := atom.NewSection("code")
	sec.Append(a)
	if _, errs := engine.New(nil).Assemble([]*atom.Section{sec}); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	return a
}

func TestLabeledDataDirectiveEmitsBothAtoms(t *testing.T) {
	atoms := parse(t, "BUFFER DS 16\n")
	if len(atoms) != 2 {
		t.Fatalf("expected label + space atom, got %d: %v", len(atoms), atoms)
	}
	if atoms[0].Kind != atom.KindLabel {
		t.Fatalf("first atom = %v, want KindLabel", atoms[0].Kind)
	}
	if atoms[0].Payload.(atom.LabelPayload).Name != "BUFFER" {
		t.Errorf("label name = %q, want BUFFER", atoms[0].Payload.(atom.LabelPayload).Name)
	}
	space := atoms[1].Payload.(atom.SpacePayload)
	if space.Count != 16 {
		t.Errorf("count = %d, want 16", space.Count)
	}
}

func TestEquDoesNotAlsoEmitPositionLabel(t *testing.T) {
	atoms := parse(t, "SCREEN EQU $400\n")
	if len(atoms) != 1 {
		t.Fatalf("expected exactly one equate atom, got %d: %v", len(atoms), atoms)
	}
	if atoms[0].Kind != atom.KindEquate {
		t.Fatalf("kind = %v, want KindEquate", atoms[0].Kind)
	}
}

func TestNumberFormsHexDecimalBinaryAndCStyleHex(t *testing.T) {
	atoms := parse(t, "DB $FF,255,%11111111,0xFF\n")
	data := assembled(t, atoms[0]).Payload.(atom.DataPayload).Bytes
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if len(data) != len(want) {
		t.Fatalf("got %v, want %v", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, data[i], want[i])
		}
	}
}

func TestDwPacksLittleEndian(t *testing.T) {
	atoms := parse(t, "DW $1234\n")
	data := assembled(t, atoms[0]).Payload.(atom.DataPayload).Bytes
	want := []byte{0x34, 0x12}
	if len(data) != len(want) || data[0] != want[0] || data[1] != want[1] {
		t.Errorf("got %v, want %v", data, want)
	}
}

func TestDottedLocalLabelScoping(t *testing.T) {
	src := `
LOOP  LDA $00
.again INC $01
      BNE .again
`
	atoms := parse(t, src)
	var labels []string
	for _, a := range atoms {
		if a.Kind == atom.KindLabel {
			labels = append(labels, a.Payload.(atom.LabelPayload).Name)
		}
	}
	want := []string{"LOOP", "~LOOP.again"}
	if len(labels) != len(want) {
		t.Fatalf("got labels %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestMacroDefinitionAndExpansion(t *testing.T) {
	src := `
INCBOTH MACRO
	INC 1
	INC 2
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

func TestIfElseEndifConditional(t *testing.T) {
	src := `
IF 0
	LDA #$01
ELSE
	LDA #$02
ENDIF
`
	atoms := parse(t, src)
	if len(atoms) != 1 {
		t.Fatalf("expected exactly one instruction atom, got %d: %v", len(atoms), atoms)
	}
	instr := atoms[0].Payload.(atom.InstructionPayload)
	if instr.OperandText != "$02" {
		t.Errorf("operand = %q, want $02", instr.OperandText)
	}
}

func TestUnterminatedIfReportsError(t *testing.T) {
	f := New()
	_, errs := f.Parse(strings.NewReader("IF 1\nLDA #$00\n"), "test.s")
	if !errs.HasErrors() {
		t.Fatal("expected an error for an unterminated IF block")
	}
}

func TestUnterminatedMacroReportsError(t *testing.T) {
	f := New()
	_, errs := f.Parse(strings.NewReader("FOO MACRO\nINC 1\n"), "test.s")
	if !errs.HasErrors() {
		t.Fatal("expected an error for an unterminated MACRO block")
	}
}
