// Package cpu defines the back-end plugin contract every supported CPU
// family implements, per spec.md §4.6. Concrete families live in
// cpu/mos6502, cpu/m6809, and cpu/z80.
package cpu

// Backend encodes mnemonics for one CPU family/variant into bytes. An
// Encode call may be asked to run more than once across passes as
// operand values firm up (forward references resolving), so
// implementations must be pure functions of their inputs.
type Backend interface {
	// FamilyName identifies the CPU family ("6502", "6809", "Z80").
	FamilyName() string

	// SupportedVariants lists the variant names this backend accepts
	// via SetVariant (e.g. "6502", "65C02", "65816" for FamilyName
	// "6502"; "Z80", "GameBoy" for FamilyName "Z80").
	SupportedVariants() []string

	// SetVariant restricts encoding to the named variant's instruction
	// set. An unrecognized name is an error.
	SetVariant(name string) error

	// Encode returns the bytes for mnemonic given an already-evaluated
	// operand value and the raw operand text (needed for addressing-
	// mode disambiguation a bare value can't express, e.g. 6502 "LDA
	// #$10" vs "LDA $10" vs "LDA ($10,X)"). ok is false when mnemonic
	// or the addressing mode implied by operandText is not recognized.
	Encode(mnemonic string, value int, operandText string, currentAddr int) (bytes []byte, ok bool)

	// RequiresSpecialEncoding reports whether mnemonic needs
	// EncodeSpecial instead of Encode — branch/jump instructions whose
	// size can change across passes as relative-offset range is
	// exceeded (6502 Bxx relaxing to B!xx+JMP, 6809 short/long branch,
	// Z80 JR/DJNZ).
	RequiresSpecialEncoding(mnemonic string) bool

	// EncodeSpecial encodes a branch/jump mnemonic given the target
	// address and the address the instruction itself will be placed
	// at, which may require relaxing to a longer encoding.
	EncodeSpecial(mnemonic string, targetAddr, currentAddr int) (bytes []byte, ok bool)
}
