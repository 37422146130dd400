package m6809_test

import (
	"bytes"
	"testing"

	"github.com/retrotoolkit/xasm/cpu/m6809"
)

func TestLDDIsBigEndian(t *testing.T) {
	b := m6809.New()
	got, ok := b.Encode("LDD", 0x1234, "#$1234", 0)
	if !ok {
		t.Fatal("expected ok")
	}
	want := []byte{0xcc, 0x12, 0x34}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestDirectPageAffectsDirectMode(t *testing.T) {
	b := m6809.New()
	b.SetDirectPage(0x20)
	if b.DirectPage() != 0x20 {
		t.Fatalf("DirectPage() = %#x", b.DirectPage())
	}
	got, ok := b.Encode("LDA", 0x80, "<$80", 0)
	if !ok || !bytes.Equal(got, []byte{0x96, 0x80}) {
		t.Fatalf("got % x ok=%v", got, ok)
	}
	got, ok = b.Encode("LDA", 0x2080, "$2080", 0)
	if !ok || !bytes.Equal(got, []byte{0x96, 0x80}) {
		t.Fatalf("address inside the direct page: got % x ok=%v", got, ok)
	}
}

func TestShortBranchStaysShortInRange(t *testing.T) {
	b := m6809.New()
	got, ok := b.EncodeSpecial("BEQ", 0x1010, 0x1000)
	if !ok || !bytes.Equal(got, []byte{0x27, 0x0e}) {
		t.Fatalf("got % x ok=%v", got, ok)
	}
}

func TestLongBranchUsedWhenOutOfRange(t *testing.T) {
	b := m6809.New()
	got, ok := b.EncodeSpecial("BEQ", 0x3000, 0x1000)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(got) != 4 || got[0] != 0x10 || got[1] != 0x27 {
		t.Fatalf("expected LBEQ (prefix 0x10, opcode 0x27), got % x", got)
	}
}

func TestInherentOpcodes(t *testing.T) {
	b := m6809.New()
	got, ok := b.Encode("RTS", 0, "", 0)
	if !ok || !bytes.Equal(got, []byte{0x39}) {
		t.Fatalf("got % x ok=%v", got, ok)
	}
}
