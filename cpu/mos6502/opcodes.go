package mos6502

// table holds the official NMOS 6502 instruction set: mnemonic -> mode
// -> opcode byte, transcribed from the teacher's instructions.go data
// table (asm/instructions.go or the emulator-side instructions.go),
// stripped of cycle counts and the emulation function pointers.
var table = map[string]map[Mode]byte{
	"ADC": {ModeImmediate: 0x69, ModeZeroPage: 0x65, ModeZeroPageX: 0x75, ModeAbsolute: 0x6d, ModeAbsoluteX: 0x7d, ModeAbsoluteY: 0x79, ModeIndexedIndirectX: 0x61, ModeIndirectIndexedY: 0x71},
	"AND": {ModeImmediate: 0x29, ModeZeroPage: 0x25, ModeZeroPageX: 0x35, ModeAbsolute: 0x2d, ModeAbsoluteX: 0x3d, ModeAbsoluteY: 0x39, ModeIndexedIndirectX: 0x21, ModeIndirectIndexedY: 0x31},
	"ASL": {ModeAccumulator: 0x0a, ModeZeroPage: 0x06, ModeZeroPageX: 0x16, ModeAbsolute: 0x0e, ModeAbsoluteX: 0x1e, ModeImplied: 0x0a},
	"BCC": {ModeRelative: 0x90},
	"BCS": {ModeRelative: 0xb0},
	"BEQ": {ModeRelative: 0xf0},
	"BIT": {ModeZeroPage: 0x24, ModeAbsolute: 0x2c},
	"BMI": {ModeRelative: 0x30},
	"BNE": {ModeRelative: 0xd0},
	"BPL": {ModeRelative: 0x10},
	"BRK": {ModeImplied: 0x00},
	"BVC": {ModeRelative: 0x50},
	"BVS": {ModeRelative: 0x70},
	"CLC": {ModeImplied: 0x18},
	"CLD": {ModeImplied: 0xd8},
	"CLI": {ModeImplied: 0x58},
	"CLV": {ModeImplied: 0xb8},
	"CMP": {ModeImmediate: 0xc9, ModeZeroPage: 0xc5, ModeZeroPageX: 0xd5, ModeAbsolute: 0xcd, ModeAbsoluteX: 0xdd, ModeAbsoluteY: 0xd9, ModeIndexedIndirectX: 0xc1, ModeIndirectIndexedY: 0xd1},
	"CPX": {ModeImmediate: 0xe0, ModeZeroPage: 0xe4, ModeAbsolute: 0xec},
	"CPY": {ModeImmediate: 0xc0, ModeZeroPage: 0xc4, ModeAbsolute: 0xcc},
	"DEC": {ModeZeroPage: 0xc6, ModeZeroPageX: 0xd6, ModeAbsolute: 0xce, ModeAbsoluteX: 0xde},
	"DEX": {ModeImplied: 0xca},
	"DEY": {ModeImplied: 0x88},
	"EOR": {ModeImmediate: 0x49, ModeZeroPage: 0x45, ModeZeroPageX: 0x55, ModeAbsolute: 0x4d, ModeAbsoluteX: 0x5d, ModeAbsoluteY: 0x59, ModeIndexedIndirectX: 0x41, ModeIndirectIndexedY: 0x51},
	"INC": {ModeZeroPage: 0xe6, ModeZeroPageX: 0xf6, ModeAbsolute: 0xee, ModeAbsoluteX: 0xfe},
	"INX": {ModeImplied: 0xe8},
	"INY": {ModeImplied: 0xc8},
	"JMP": {ModeAbsolute: 0x4c, ModeIndirect: 0x6c},
	"JSR": {ModeAbsolute: 0x20},
	"LDA": {ModeImmediate: 0xa9, ModeZeroPage: 0xa5, ModeZeroPageX: 0xb5, ModeAbsolute: 0xad, ModeAbsoluteX: 0xbd, ModeAbsoluteY: 0xb9, ModeIndexedIndirectX: 0xa1, ModeIndirectIndexedY: 0xb1},
	"LDX": {ModeImmediate: 0xa2, ModeZeroPage: 0xa6, ModeZeroPageY: 0xb6, ModeAbsolute: 0xae, ModeAbsoluteY: 0xbe},
	"LDY": {ModeImmediate: 0xa0, ModeZeroPage: 0xa4, ModeZeroPageX: 0xb4, ModeAbsolute: 0xac, ModeAbsoluteX: 0xbc},
	"LSR": {ModeAccumulator: 0x4a, ModeZeroPage: 0x46, ModeZeroPageX: 0x56, ModeAbsolute: 0x4e, ModeAbsoluteX: 0x5e, ModeImplied: 0x4a},
	"NOP": {ModeImplied: 0xea},
	"ORA": {ModeImmediate: 0x09, ModeZeroPage: 0x05, ModeZeroPageX: 0x15, ModeAbsolute: 0x0d, ModeAbsoluteX: 0x1d, ModeAbsoluteY: 0x19, ModeIndexedIndirectX: 0x01, ModeIndirectIndexedY: 0x11},
	"PHA": {ModeImplied: 0x48},
	"PHP": {ModeImplied: 0x08},
	"PLA": {ModeImplied: 0x68},
	"PLP": {ModeImplied: 0x28},
	"ROL": {ModeAccumulator: 0x2a, ModeZeroPage: 0x26, ModeZeroPageX: 0x36, ModeAbsolute: 0x2e, ModeAbsoluteX: 0x3e, ModeImplied: 0x2a},
	"ROR": {ModeAccumulator: 0x6a, ModeZeroPage: 0x66, ModeZeroPageX: 0x76, ModeAbsolute: 0x6e, ModeAbsoluteX: 0x7e, ModeImplied: 0x6a},
	"RTI": {ModeImplied: 0x40},
	"RTS": {ModeImplied: 0x60},
	"SBC": {ModeImmediate: 0xe9, ModeZeroPage: 0xe5, ModeZeroPageX: 0xf5, ModeAbsolute: 0xed, ModeAbsoluteX: 0xfd, ModeAbsoluteY: 0xf9, ModeIndexedIndirectX: 0xe1, ModeIndirectIndexedY: 0xf1},
	"SEC": {ModeImplied: 0x38},
	"SED": {ModeImplied: 0xf8},
	"SEI": {ModeImplied: 0x78},
	"STA": {ModeZeroPage: 0x85, ModeZeroPageX: 0x95, ModeAbsolute: 0x8d, ModeAbsoluteX: 0x9d, ModeAbsoluteY: 0x99, ModeIndexedIndirectX: 0x81, ModeIndirectIndexedY: 0x91},
	"STX": {ModeZeroPage: 0x86, ModeZeroPageY: 0x96, ModeAbsolute: 0x8e},
	"STY": {ModeZeroPage: 0x84, ModeZeroPageX: 0x94, ModeAbsolute: 0x8c},
	"TAX": {ModeImplied: 0xaa},
	"TAY": {ModeImplied: 0xa8},
	"TSX": {ModeImplied: 0xba},
	"TXA": {ModeImplied: 0x8a},
	"TXS": {ModeImplied: 0x9a},
	"TYA": {ModeImplied: 0x98},
}

// cmosTable holds the instructions and addressing modes the 65C02
// added over NMOS 6502 (BRA, PHX/PHY/PLX/PLY, STZ, TRB/TSB, and the
// (zp)/(abs,X) indirect modes on existing opcodes), looked up only
// when the backend's variant is not plain 6502.
var cmosTable = map[string]map[Mode]byte{
	"BRA": {ModeRelative: 0x80},
	"PHX": {ModeImplied: 0xda},
	"PHY": {ModeImplied: 0x5a},
	"PLX": {ModeImplied: 0xfa},
	"PLY": {ModeImplied: 0x7a},
	"STZ": {ModeZeroPage: 0x64, ModeZeroPageX: 0x74, ModeAbsolute: 0x9c, ModeAbsoluteX: 0x9e},
	"TRB": {ModeZeroPage: 0x14, ModeAbsolute: 0x1c},
	"TSB": {ModeZeroPage: 0x04, ModeAbsolute: 0x0c},
	"INC": {ModeAccumulator: 0x1a, ModeImplied: 0x1a},
	"DEC": {ModeAccumulator: 0x3a, ModeImplied: 0x3a},
	"JMP": {ModeAbsoluteIndexedIndirect: 0x7c},
	"ADC": {ModeZeroPageIndirect: 0x72},
	"AND": {ModeZeroPageIndirect: 0x32},
	"CMP": {ModeZeroPageIndirect: 0xd2},
	"EOR": {ModeZeroPageIndirect: 0x52},
	"LDA": {ModeZeroPageIndirect: 0xb2},
	"ORA": {ModeZeroPageIndirect: 0x12},
	"SBC": {ModeZeroPageIndirect: 0xf2},
	"STA": {ModeZeroPageIndirect: 0x92},
}
