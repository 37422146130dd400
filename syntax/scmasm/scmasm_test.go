package scmasm

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

// dataBytes runs atoms through the engine, which resolves each data
// atom's deferred elements into bytes, and collects those bytes.
func dataBytes(t *testing.T, atoms []*atom.Atom) []byte {
	t.Helper()
	sec := atom.NewSection("code")
	for _, a := range atoms {
		sec.Append(a)
	}
	if _, errs := engine.New(nil).Assemble([]*atom.Section{sec}); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	var out []byte
	for _, a := range atoms {
		if a.Kind == atom.KindData {
			out = append(out, a.Payload.(atom.DataPayload).Bytes...)
		}
	}
	return out
}

func TestHighBitRuleCharacterConstantInExpression(t *testing.T) {
	atoms := parse(t, ".DA \"A\n")
	data := dataBytes(t, atoms)
	if len(data) != 1 {
		t.Fatalf("got %d bytes, want 1", len(data))
	}
	if data[0] != ('A' | 0x80) {
		t.Errorf("got %#x, want high bit set on \"A", data[0])
	}
}

func TestHighBitRuleOnStringLiteral(t *testing.T) {
	atoms := parse(t, ".AS \"HI\"\n")
	data := dataBytes(t, atoms)
	if len(data) != 2 {
		t.Fatalf("got %d bytes, want 2", len(data))
	}
	if data[0] != ('H' | 0x80) || data[1] != ('I' | 0x80) {
		t.Errorf("got %#x %#x, want high bit set on both", data[0], data[1])
	}
}

func TestHighDelimiterClearsHighBit(t *testing.T) {
	atoms := parse(t, ".AS /HI/\n")
	data := dataBytes(t, atoms)
	if len(data) != 2 {
		t.Fatalf("got %d bytes, want 2", len(data))
	}
	if data[0] != 'H' || data[1] != 'I' {
		t.Errorf("got %#x %#x, want high bit clear", data[0], data[1])
	}
}

func TestAtSetsHighBitOnLastByteOnly(t *testing.T) {
	atoms := parse(t, ".AT /HI/\n")
	data := dataBytes(t, atoms)
	if len(data) != 2 {
		t.Fatalf("got %d bytes, want 2", len(data))
	}
	if data[0] != 'H' {
		t.Errorf("first byte = %#x, want plain H", data[0])
	}
	if data[1] != ('I' | 0x80) {
		t.Errorf("last byte = %#x, want high bit set", data[1])
	}
}

func TestAzAppendsNulTerminator(t *testing.T) {
	atoms := parse(t, ".AZ /HI/\n")
	data := dataBytes(t, atoms)
	want := []byte{'H', 'I', 0}
	if len(data) != len(want) {
		t.Fatalf("got %v, want %v", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, data[i], want[i])
		}
	}
}

func TestDaWidensOutOfByteRangeValues(t *testing.T) {
	atoms := parse(t, ".DA 1,2,$1234\n")
	data := dataBytes(t, atoms)
	want := []byte{1, 2, 0x34, 0x12}
	if len(data) != len(want) {
		t.Fatalf("got %v, want %v", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, data[i], want[i])
		}
	}
}

func TestNumericLocalLabelScoping(t *testing.T) {
	src := `
LOOP   LDA $00
.1     INC $01
       BNE .1
OTHER  LDA $02
.1     INC $03
`
	f := New()
	atoms, errs := f.Parse(strings.NewReader(src), "test.s")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}

	var labels []string
	for _, a := range atoms {
		if a.Kind == atom.KindLabel {
			labels = append(labels, a.Payload.(atom.LabelPayload).Name)
		}
	}
	want := []string{"LOOP", "LOOP.1", "OTHER", "OTHER.1"}
	if len(labels) != len(want) {
		t.Fatalf("got labels %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestMacroCaptureAndInvocation(t *testing.T) {
	src := `
INCBOTH .MA
       INC 1
       INC 2
       .EM
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

func TestLeadingLineNumberIsStripped(t *testing.T) {
	atoms := parse(t, "100 LDA #$01\n110 STA $02\n")
	count := 0
	for _, a := range atoms {
		if a.Kind == atom.KindInstruction {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 instructions, got %d: %v", count, atoms)
	}
}

func TestLuEnduExpandsRepeatCount(t *testing.T) {
	src := `
.LU 3
       INC 1
.ENDU
`
	atoms := parse(t, src)
	count := 0
	for _, a := range atoms {
		if a.Kind == atom.KindInstruction {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 repeated instructions, got %d: %v", count, atoms)
	}
}

func TestDoFinConditional(t *testing.T) {
	src := `
.DO 0
       LDA #$01
.FIN
       STA $02
`
	atoms := parse(t, src)
	if len(atoms) != 1 {
		t.Fatalf("expected exactly one instruction atom, got %d: %v", len(atoms), atoms)
	}
	instr := atoms[0].Payload.(atom.InstructionPayload)
	if instr.Mnemonic != "STA" {
		t.Errorf("mnemonic = %q, want STA", instr.Mnemonic)
	}
}
