package mos6502_test

import (
	"bytes"
	"testing"

	"github.com/retrotoolkit/xasm/cpu/mos6502"
)

func TestBranchInRangeStaysShort(t *testing.T) {
	b := mos6502.New()
	got, ok := b.EncodeSpecial("BEQ", 0x1010, 0x1000)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0xf0, 0x0e} // BEQ, offset 0x10-(0x1000+2-0x1000)=14
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestBranchRelaxesWhenOutOfRange(t *testing.T) {
	b := mos6502.New()
	// target far beyond signed-byte range from current+2
	got, ok := b.EncodeSpecial("BEQ", 0x10cc, 0x1000)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0xd0, 0x03, 0x4c, 0xcc, 0x10} // BNE *+5 ; JMP $10CC
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestComplementaryOpcodeIsXor0x20(t *testing.T) {
	b := mos6502.New()
	beq, _ := b.EncodeSpecial("BEQ", 0x2000, 0x1000)
	bne, _ := b.EncodeSpecial("BNE", 0x2000, 0x1000)
	if beq[0]^0x20 != bne[0] {
		t.Fatalf("BEQ opcode %#x and BNE opcode %#x aren't XOR 0x20 apart", beq[0], bne[0])
	}
}

func TestImmediateVsZeroPageVsAbsolute(t *testing.T) {
	b := mos6502.New()

	imm, ok := b.Encode("LDA", 0x10, "#$10", 0)
	if !ok || !bytes.Equal(imm, []byte{0xa9, 0x10}) {
		t.Fatalf("immediate LDA: got % x, ok=%v", imm, ok)
	}

	zp, ok := b.Encode("LDA", 0x10, "$10", 0)
	if !ok || !bytes.Equal(zp, []byte{0xa5, 0x10}) {
		t.Fatalf("zero-page LDA: got % x, ok=%v", zp, ok)
	}

	abs, ok := b.Encode("LDA", 0x1234, "$1234", 0)
	if !ok || !bytes.Equal(abs, []byte{0xad, 0x34, 0x12}) {
		t.Fatalf("absolute LDA: got % x, ok=%v", abs, ok)
	}
}

func Test65C02OnlyOnCmosVariant(t *testing.T) {
	b := mos6502.New()
	if _, ok := b.Encode("STZ", 0x10, "$10", 0); ok {
		t.Fatal("STZ must not be recognized on plain 6502")
	}
	if err := b.SetVariant("65C02"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Encode("STZ", 0x10, "$10", 0); !ok {
		t.Fatal("STZ must be recognized once 65C02 is selected")
	}
}
