// Package m6809 implements the Motorola 6809 backend: big-endian
// emission, a settable direct-page register, the 16-submode indexed
// post-byte encoding, and long branches (LBxx, prefix 0x10). Grounded
// on original_source/include/xasm++/cpu/cpu_6809.h, in the teacher's
// table-driven idiom (instructions.go) rather than the original's
// per-mnemonic Encode* methods.
package m6809

import "strings"

// Mode identifies one of the 6809's addressing modes, mirroring
// AddressingMode6809 from cpu_6809.h.
type Mode int

const (
	ModeInherent Mode = iota
	ModeImmediate8
	ModeImmediate16
	ModeDirect
	ModeExtended
	ModeIndexed
	ModeRelative8
	ModeRelative16
)

// IndexMode identifies one of the 16 indexed addressing sub-modes
// encoded into the post-byte.
type IndexMode int

const (
	IndexZeroOffset IndexMode = iota
	Index5Bit
	Index8Bit
	Index16Bit
	IndexAccumA
	IndexAccumB
	IndexAccumD
	IndexAutoInc1
	IndexAutoInc2
	IndexAutoDec1
	IndexAutoDec2
	IndexPCRelative8
	IndexPCRelative16
	IndexIndirect
	IndexExtendedIndirect
)

// Register identifies one of the four indexable registers.
type Register int

const (
	RegX Register = iota
	RegY
	RegU
	RegS
)

// Backend implements cpu.Backend for the 6809.
type Backend struct {
	directPage byte
}

// New creates a Backend with the direct page register at its reset
// value of $00.
func New() *Backend { return &Backend{} }

func (b *Backend) FamilyName() string { return "6809" }

func (b *Backend) SupportedVariants() []string { return []string{"6809"} }

func (b *Backend) SetVariant(name string) error {
	if strings.ToUpper(name) != "6809" {
		return errUnsupportedVariant(name)
	}
	return nil
}

// SetDirectPage sets the register the Direct addressing mode's high
// byte is taken from (default $00).
func (b *Backend) SetDirectPage(dp byte) { b.directPage = dp }

// DirectPage returns the current direct page register value.
func (b *Backend) DirectPage() byte { return b.directPage }

func errUnsupportedVariant(name string) error {
	return &unsupportedVariantError{name}
}

type unsupportedVariantError struct{ name string }

func (e *unsupportedVariantError) Error() string {
	return "unsupported 6809 variant " + e.name
}

// bigEndian16 returns {high, low}, matching ToBigEndian in
// cpu_6809.h: the 6809's defining difference from the 6502 backend.
func bigEndian16(v int) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func isBranch(mnemonic string) bool {
	switch strings.ToUpper(mnemonic) {
	case "BRA", "BRN", "BHI", "BLS", "BCC", "BCS", "BNE", "BEQ",
		"BVC", "BVS", "BPL", "BMI", "BGE", "BLT", "BGT", "BLE", "BSR":
		return true
	}
	return false
}

func isLongBranch(mnemonic string) bool {
	return strings.HasPrefix(strings.ToUpper(mnemonic), "L") && isBranch(strings.TrimPrefix(strings.ToUpper(mnemonic), "L"))
}

// RequiresSpecialEncoding reports the short-branch mnemonics: the
// engine must be able to relax them to their long form (LBxx, prefix
// 0x10) across passes once a target falls out of 8-bit range.
func (b *Backend) RequiresSpecialEncoding(mnemonic string) bool {
	return isBranch(mnemonic)
}

// EncodeSpecial implements 6809 branch relaxation: a short branch
// (Relative8) whose target is out of [-128,127] from the byte after
// the instruction is rewritten as its long form (LBxx, 0x10 prefix,
// 16-bit relative offset, Relative16), per spec.md §4.6's 6809
// requirement.
func (b *Backend) EncodeSpecial(mnemonic string, targetAddr, currentAddr int) ([]byte, bool) {
	mnemonic = strings.ToUpper(mnemonic)
	short, shortOK := shortBranchOpcodes[mnemonic]
	if !shortOK {
		return nil, false
	}

	offset8 := targetAddr - (currentAddr + 2)
	if offset8 >= -128 && offset8 <= 127 {
		return []byte{short, byte(offset8)}, true
	}

	long, longOK := longBranchOpcodes[mnemonic]
	if !longOK {
		return nil, false
	}
	if long.prefix != 0 {
		be := bigEndian16(targetAddr - (currentAddr + 4))
		return []byte{long.prefix, long.opcode, be[0], be[1]}, true
	}
	be := bigEndian16(targetAddr - (currentAddr + 3))
	return []byte{long.opcode, be[0], be[1]}, true
}

type longOpcode struct {
	prefix byte // 0 for BSR->LBSR which needs no prefix but widens; 0x10 for the rest
	opcode byte
}

var shortBranchOpcodes = map[string]byte{
	"BRA": 0x20, "BRN": 0x21, "BHI": 0x22, "BLS": 0x23, "BCC": 0x24, "BCS": 0x25,
	"BNE": 0x26, "BEQ": 0x27, "BVC": 0x28, "BVS": 0x29, "BPL": 0x2a, "BMI": 0x2b,
	"BGE": 0x2c, "BLT": 0x2d, "BGT": 0x2e, "BLE": 0x2f, "BSR": 0x8d,
}

var longBranchOpcodes = map[string]longOpcode{
	"BRA": {0x10, 0x20}, "BRN": {0x10, 0x21}, "BHI": {0x10, 0x22}, "BLS": {0x10, 0x23},
	"BCC": {0x10, 0x24}, "BCS": {0x10, 0x25}, "BNE": {0x10, 0x26}, "BEQ": {0x10, 0x27},
	"BVC": {0x10, 0x28}, "BVS": {0x10, 0x29}, "BPL": {0x10, 0x2a}, "BMI": {0x10, 0x2b},
	"BGE": {0x10, 0x2c}, "BLT": {0x10, 0x2d}, "BGT": {0x10, 0x2e}, "BLE": {0x10, 0x2f},
	"BSR": {0, 0x17}, // LBSR has no page-2 prefix of its own
}
