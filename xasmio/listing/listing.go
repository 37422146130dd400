// Package listing writes a plain-text assembly listing: one line per
// atom giving its address, encoded bytes, and source text, in the
// address-bytes-then-detail column layout the teacher's own
// logBytes/logLine traced to stderr under -v. Grounded on
// asm/asm.go's logBytes ("%04X-*%s" byte-dump) and logLine
// ("%-3d %-3d | %-20s | %s") formats.
package listing

import (
	"fmt"
	"io"

	"github.com/retrotoolkit/xasm/atom"
)

// bytesPerGroup matches the teacher's own 3-bytes-per-dash-group style.
const bytesPerGroup = 3

// Write renders one listing line per atom that carries bytes or names
// a label or equate, grouped under a "-- name --" banner per section.
func Write(w io.Writer, sections []*atom.Section) error {
	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "-- %s --\n", sec.Name); err != nil {
			return err
		}
		for _, a := range sec.Atoms {
			if err := writeAtom(w, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAtom(w io.Writer, a *atom.Atom) error {
	b := a.Bytes()
	if len(b) == 0 {
		if name, ok := labelName(a); ok {
			_, err := fmt.Fprintf(w, "%04X-                   | %s:\n", a.Address, name)
			return err
		}
		return nil
	}

	_, err := fmt.Fprintf(w, "%04X-%-18s | %s\n", a.Address, codeString(b), sourceText(a))
	return err
}

// codeString hex-dumps b in bytesPerGroup-wide groups separated by a
// dash, matching the teacher's own byte-dump format.
func codeString(b []byte) string {
	s := ""
	for i, v := range b {
		if i > 0 && i%bytesPerGroup == 0 {
			s += "-"
		}
		s += fmt.Sprintf("%02X", v)
	}
	return s
}

func sourceText(a *atom.Atom) string {
	switch p := a.Payload.(type) {
	case atom.InstructionPayload:
		if p.OperandText == "" {
			return p.Mnemonic
		}
		return p.Mnemonic + " " + p.OperandText
	case atom.DataPayload:
		return "<data>"
	case atom.SpacePayload:
		return fmt.Sprintf("<space %d>", p.Count)
	case atom.AlignPayload:
		return fmt.Sprintf("<align %d>", p.Boundary)
	}
	return ""
}

func labelName(a *atom.Atom) (string, bool) {
	switch p := a.Payload.(type) {
	case atom.LabelPayload:
		return p.Name, true
	case atom.EquatePayload:
		return p.Name, true
	}
	return "", false
}
