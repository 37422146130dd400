package z80_test

import (
	"bytes"
	"testing"

	"github.com/retrotoolkit/xasm/cpu/z80"
)

func TestLDRegPairImmediateIsLittleEndian(t *testing.T) {
	b := z80.New()
	got, ok := b.Encode("LD", 0x1234, "HL,#$1234", 0)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0x21, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestLDRegReg(t *testing.T) {
	b := z80.New()
	got, ok := b.Encode("LD", 0, "A,B", 0)
	if !ok || !bytes.Equal(got, []byte{0x78}) {
		t.Fatalf("got % x ok=%v", got, ok)
	}
}

func TestJRStaysShortInRange(t *testing.T) {
	b := z80.New()
	got, ok := b.EncodeSpecial("JR", 0x0010, 0x0000)
	if !ok || !bytes.Equal(got, []byte{0x18, 0x0e}) {
		t.Fatalf("got % x ok=%v", got, ok)
	}
}

func TestJRRelaxesToJPOutOfRange(t *testing.T) {
	b := z80.New()
	got, ok := b.EncodeSpecial("JR", 0x2000, 0x0000)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0xc3, 0x00, 0x20}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestJRZRelaxesToConditionalJP(t *testing.T) {
	b := z80.New()
	got, ok := b.EncodeSpecial("JRZ", 0x4000, 0x0000)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0xca, 0x00, 0x40}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestDJNZRelaxation(t *testing.T) {
	b := z80.New()
	got, ok := b.EncodeSpecial("DJNZ", 0x5000, 0x0000)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0x10, 0x02, 0x18, 0x03, 0xc3, 0x00, 0x50}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestGameBoyRejectsIndexRegisters(t *testing.T) {
	b := z80.New()
	if err := b.SetVariant("GameBoy"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Encode("LD", 5, "(IX+$05),A", 0); ok {
		t.Fatal("expected GameBoy variant to reject IX-indexed addressing")
	}
}

func TestGameBoyRejectsLDIR(t *testing.T) {
	b := z80.New()
	if err := b.SetVariant("GameBoy"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Encode("LDIR", 0, "", 0); ok {
		t.Fatal("expected GameBoy variant to reject LDIR")
	}
}

func TestUnsupportedVariant(t *testing.T) {
	b := z80.New()
	if err := b.SetVariant("8080"); err == nil {
		t.Fatal("expected error for unsupported variant")
	}
}
