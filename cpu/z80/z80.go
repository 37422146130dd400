// Package z80 implements the Zilog Z80 backend (and, via the GameBoy
// variant, the LR35902's restricted subset): little-endian emission,
// the 0xCB/0xDD/0xED/0xFD prefix families, and JR/DJNZ relative-jump
// relaxation. Grounded on
// original_source/include/xasm++/cpu/cpu_z80.h, reworked from the
// original's one-method-per-instruction shape into the teacher's
// table-driven style (asm/instructions.go).
package z80

import "strings"

// Variant selects the Z80 or the GameBoy's LR35902 instruction subset.
type Variant int

const (
	VariantZ80 Variant = iota
	VariantGameBoy
)

// Backend implements cpu.Backend for the Z80 family.
type Backend struct {
	variant Variant
}

// New creates a Backend defaulting to plain Z80.
func New() *Backend { return &Backend{} }

func (b *Backend) FamilyName() string { return "Z80" }

func (b *Backend) SupportedVariants() []string { return []string{"Z80", "GameBoy"} }

func (b *Backend) SetVariant(name string) error {
	switch strings.ToUpper(name) {
	case "Z80":
		b.variant = VariantZ80
	case "GAMEBOY", "GB", "LR35902":
		b.variant = VariantGameBoy
	default:
		return unsupportedVariant(name)
	}
	return nil
}

type unsupportedVariantError string

func (e unsupportedVariantError) Error() string { return "unsupported Z80-family variant: " + string(e) }
func unsupportedVariant(name string) error       { return unsupportedVariantError(name) }

// littleEndian16 returns {low, high}: the Z80's byte order, same as
// the 6502 and unlike the 6809's big-endian emission.
func littleEndian16(v int) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

var reg8 = map[string]byte{"B": 0, "C": 1, "D": 2, "E": 3, "H": 4, "L": 5, "(HL)": 6, "A": 7}
var regPair = map[string]byte{"BC": 0, "DE": 1, "HL": 2, "SP": 3}
var regPair2 = map[string]byte{"BC": 0, "DE": 1, "HL": 2, "AF": 3} // PUSH/POP encoding
var condCode = map[string]byte{"NZ": 0, "Z": 1, "NC": 2, "C": 3, "PO": 4, "PE": 5, "P": 6, "M": 7}
var jrCondCode = map[string]byte{"NZ": 0, "Z": 1, "NC": 2, "C": 3}

// gameboyExcluded lists mnemonics the LR35902 dropped from the Z80
// instruction set (no IX/IY index registers, no block I/O, limited ED
// page): a GameBoy backend refuses to encode these.
var gameboyExcluded = map[string]bool{
	"LDIR": true, "LDDR": true, "CPIR": true, "CPDR": true, "OTIR": true, "OTDR": true,
	"INIR": true, "INDR": true, "IN": true, "OUT": true, "EX": true, "EXX": true,
	"RLD": true, "RRD": true, "RETN": true,
}

func (b *Backend) allowed(mnemonic string, usesIndex bool) bool {
	if b.variant != VariantGameBoy {
		return true
	}
	if usesIndex {
		return false
	}
	return !gameboyExcluded[strings.ToUpper(mnemonic)]
}
