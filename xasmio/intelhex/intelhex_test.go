package intelhex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retrotoolkit/xasm/atom"
	"github.com/retrotoolkit/xasm/xerr"
)

func section(addr int, data []byte) *atom.Section {
	sec := atom.NewSection("code")
	a := atom.Data(xerr.Location{}, data)
	a.Address = addr
	a.Size = len(data)
	sec.Append(a)
	return sec
}

func TestWriteSingleRecord(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []*atom.Section{section(0x100, []byte{0x01, 0x02, 0x03})})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a data record + EOF record, got %d lines: %v", len(lines), lines)
	}
	if lines[0] != ":03010000010203F6" {
		t.Errorf("record = %q, want :03010000010203F6", lines[0])
	}
	if lines[1] != ":00000001FF" {
		t.Errorf("EOF record = %q, want :00000001FF", lines[1])
	}
}

func TestWriteSplitsOnRecordLengthBoundary(t *testing.T) {
	data := make([]byte, BytesPerRecord+1)
	for i := range data {
		data[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := Write(&buf, []*atom.Section{section(0, data)}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected two data records + EOF, got %d: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], ":10") {
		t.Errorf("first record length byte = %q, want :10...", lines[0])
	}
	if !strings.HasPrefix(lines[1], ":01") {
		t.Errorf("second record length byte = %q, want :01...", lines[1])
	}
}

func TestWriteEmptySectionsProducesOnlyEOF(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []*atom.Section{atom.NewSection("empty")}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != ":00000001FF" {
		t.Errorf("got %q, want only the EOF record", buf.String())
	}
}
