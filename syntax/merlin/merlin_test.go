package merlin

import (
	"strings"
	"testing"

	"github.com/retrotoolkit/xasm/atom"
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

func TestLocalLabelScoping(t *testing.T) {
	src := `
LOOP   LDA $00
:AGAIN INC $01
       BNE :AGAIN
OTHER  LDA $02
:AGAIN INC $03
`
	atoms := parse(t, src)

	var labels []string
	for _, a := range atoms {
		if a.Kind == atom.KindLabel {
			labels = append(labels, a.Payload.(atom.LabelPayload).Name)
		}
	}
	want := []string{"LOOP", "LOOP:AGAIN", "OTHER", "OTHER:AGAIN"}
	if len(labels) != len(want) {
		t.Fatalf("got labels %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestVariableLabelPassthrough(t *testing.T) {
	atoms := parse(t, "]TEMP EQU $10\n")
	if len(atoms) != 1 || atoms[0].Kind != atom.KindEquate {
		t.Fatalf("expected one equate atom, got %v", atoms)
	}
	eq := atoms[0].Payload.(atom.EquatePayload)
	if eq.Name != "]TEMP" {
		t.Errorf("name = %q, want ]TEMP", eq.Name)
	}
}

func TestDumEmitsOffsetEquatesNotLabels(t *testing.T) {
	src := `
PLAYER DUM $0
FLAGS  DS 1
XPOS   DS 2
YPOS   DS 2
       DEND
`
	atoms := parse(t, src)
	for _, a := range atoms {
		if a.Kind == atom.KindSpace || a.Kind == atom.KindLabel {
			t.Fatalf("DUM block should emit no space/label atoms, got %v", a.Kind)
		}
	}

	offsets := map[string]int{}
	for _, a := range atoms {
		if a.Kind != atom.KindEquate {
			continue
		}
		eq := a.Payload.(atom.EquatePayload)
		v, ok := eq.Value.Eval(nil)
		_ = ok
		offsets[eq.Name] = v
	}
	if offsets["PLAYER"] != 0 {
		t.Errorf("PLAYER offset = %d, want 0", offsets["PLAYER"])
	}
	if offsets["FLAGS"] != 0 {
		t.Errorf("FLAGS offset = %d, want 0", offsets["FLAGS"])
	}
	if offsets["XPOS"] != 1 {
		t.Errorf("XPOS offset = %d, want 1", offsets["XPOS"])
	}
	if offsets["YPOS"] != 3 {
		t.Errorf("YPOS offset = %d, want 3", offsets["YPOS"])
	}
}

func TestHexDirective(t *testing.T) {
	atoms := parse(t, "HEX DE,AD,BE,EF\n")
	if len(atoms) != 1 || atoms[0].Kind != atom.KindData {
		t.Fatalf("expected one data atom, got %v", atoms)
	}
	data := atoms[0].Payload.(atom.DataPayload).Bytes
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if len(data) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(data), len(want))
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, data[i], want[i])
		}
	}
}

func TestHexDirectiveContiguousDigits(t *testing.T) {
	atoms := parse(t, "HEX DEADBEEF\n")
	data := atoms[0].Payload.(atom.DataPayload).Bytes
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, data[i], want[i])
		}
	}
}

func TestDoElseFinConditional(t *testing.T) {
	src := `
DO 0
       LDA #$01
ELSE
       LDA #$02
FIN
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

func TestUnterminatedDoReportsError(t *testing.T) {
	f := New()
	_, errs := f.Parse(strings.NewReader("DO 1\nLDA #$00\n"), "test.s")
	if !errs.HasErrors() {
		t.Fatal("expected an error for an unterminated DO block")
	}
}
