package m6809

import "strings"

// opcodeSet gives the page-1 opcode byte for each addressing mode a
// mnemonic supports. Only Direct/Extended/Indexed/Immediate are
// stored per-mnemonic here; Inherent-only mnemonics are looked up in
// inherentOpcodes instead, matching the teacher's style of one small
// table per addressing-mode family rather than one giant combined
// table.
type opcodeSet struct {
	immediate8  *byte
	immediate16 *byte
	direct      *byte
	extended    *byte
	indexed     *byte
}

func b(v byte) *byte { return &v }

var opcodes = map[string]opcodeSet{
	"LDA": {immediate8: b(0x86), direct: b(0x96), extended: b(0xb6), indexed: b(0xa6)},
	"LDB": {immediate8: b(0xc6), direct: b(0xd6), extended: b(0xf6), indexed: b(0xe6)},
	"LDD": {immediate16: b(0xcc), direct: b(0xdc), extended: b(0xfc), indexed: b(0xec)},
	"LDX": {immediate16: b(0x8e), direct: b(0x9e), extended: b(0xbe), indexed: b(0xae)},
	"LDU": {immediate16: b(0xce), direct: b(0xde), extended: b(0xfe), indexed: b(0xee)},
	"STA": {direct: b(0x97), extended: b(0xb7), indexed: b(0xa7)},
	"STB": {direct: b(0xd7), extended: b(0xf7), indexed: b(0xe7)},
	"STD": {direct: b(0xdd), extended: b(0xfd), indexed: b(0xed)},
	"STX": {direct: b(0x9f), extended: b(0xbf), indexed: b(0xaf)},
	"ADDA": {immediate8: b(0x8b), direct: b(0x9b), extended: b(0xbb), indexed: b(0xab)},
	"ADDB": {immediate8: b(0xcb), direct: b(0xdb), extended: b(0xfb), indexed: b(0xeb)},
	"ADDD": {immediate16: b(0xc3), direct: b(0xd3), extended: b(0xf3), indexed: b(0xe3)},
	"SUBA": {immediate8: b(0x80), direct: b(0x90), extended: b(0xb0), indexed: b(0xa0)},
	"SUBB": {immediate8: b(0xc0), direct: b(0xd0), extended: b(0xf0), indexed: b(0xe0)},
	"CMPA": {immediate8: b(0x81), direct: b(0x91), extended: b(0xb1), indexed: b(0xa1)},
	"CMPB": {immediate8: b(0xc1), direct: b(0xd1), extended: b(0xf1), indexed: b(0xe1)},
	"ANDA": {immediate8: b(0x84), direct: b(0x94), extended: b(0xb4), indexed: b(0xa4)},
	"ANDB": {immediate8: b(0xc4), direct: b(0xd4), extended: b(0xf4), indexed: b(0xe4)},
	"ORA":  {immediate8: b(0x8a), direct: b(0x9a), extended: b(0xba), indexed: b(0xaa)},
	"ORB":  {immediate8: b(0xca), direct: b(0xda), extended: b(0xfa), indexed: b(0xea)},
	"EORA": {immediate8: b(0x88), direct: b(0x98), extended: b(0xb8), indexed: b(0xa8)},
	"EORB": {immediate8: b(0xc8), direct: b(0xd8), extended: b(0xf8), indexed: b(0xe8)},
	"BITA": {immediate8: b(0x85), direct: b(0x95), extended: b(0xb5), indexed: b(0xa5)},
	"BITB": {immediate8: b(0xc5), direct: b(0xd5), extended: b(0xf5), indexed: b(0xe5)},
	"JMP":  {direct: b(0x0e), extended: b(0x7e), indexed: b(0x6e)},
	"JSR":  {direct: b(0x9d), extended: b(0xbd), indexed: b(0xad)},
	"LEAX": {indexed: b(0x30)},
	"LEAY": {indexed: b(0x31)},
	"LEAS": {indexed: b(0x32)},
	"LEAU": {indexed: b(0x33)},
}

var inherentOpcodes = map[string]byte{
	"NOP": 0x12, "RTS": 0x39, "RTI": 0x3b, "SWI": 0x3f,
	"CLRA": 0x4f, "CLRB": 0x5f, "COMA": 0x43, "COMB": 0x53,
	"NEGA": 0x40, "NEGB": 0x50, "INCA": 0x4c, "INCB": 0x5c,
	"DECA": 0x4a, "DECB": 0x5a, "TSTA": 0x4d, "TSTB": 0x5d,
	"ABX": 0x3a, "DAA": 0x19, "SEX": 0x1d,
	"PSHS": 0x34, "PULS": 0x35, "PSHU": 0x36, "PULU": 0x37,
}

// operandShape classifies operand text the way the m6809-specific
// syntax conventions distinguish modes: '#' immediate, '<' forced
// direct, indexed text containing ',' plus one of X/Y/U/S.
type operandShape struct {
	immediate bool
	direct    bool
	indexed   bool
	indexExpr string
}

func classify(operandText string) operandShape {
	t := strings.TrimSpace(operandText)
	if strings.HasPrefix(t, "#") {
		return operandShape{immediate: true}
	}
	if strings.HasPrefix(t, "<") {
		return operandShape{direct: true}
	}
	if strings.Contains(t, ",") {
		return operandShape{indexed: true, indexExpr: t}
	}
	return operandShape{}
}

func (b *Backend) Encode(mnemonic string, value int, operandText string, currentAddr int) ([]byte, bool) {
	mnemonic = strings.ToUpper(mnemonic)

	if op, ok := inherentOpcodes[mnemonic]; ok {
		return []byte{op}, true
	}

	set, ok := opcodes[mnemonic]
	if !ok {
		return nil, false
	}
	shape := classify(operandText)

	switch {
	case shape.immediate && set.immediate16 != nil:
		return append([]byte{*set.immediate16}, bigEndian16(value)...), true
	case shape.immediate && set.immediate8 != nil:
		return []byte{*set.immediate8, byte(value)}, true
	case shape.indexed && set.indexed != nil:
		post, ok := encodeIndexedOperand(shape.indexExpr, value)
		if !ok {
			return nil, false
		}
		return append([]byte{*set.indexed}, post...), true
	case shape.direct && set.direct != nil:
		return []byte{*set.direct, byte(value)}, true
	default:
		if set.direct != nil && value>>8 == int(b.directPage) {
			return []byte{*set.direct, byte(value)}, true
		}
		if set.extended != nil {
			return append([]byte{*set.extended}, bigEndian16(value)...), true
		}
		return nil, false
	}
}

// encodeIndexedOperand encodes the post-byte for the common indexed
// sub-modes: ",R" (zero offset), "n,R" (5/8/16-bit offset), ",R+"/
// ",R++" (auto-increment), ",-R"/",--R" (auto-decrement). The register
// field occupies bits 6-5 of the post-byte for the simple forms used
// here.
func encodeIndexedOperand(text string, offset int) ([]byte, bool) {
	body := strings.TrimSpace(text)

	autoInc2 := strings.HasSuffix(body, "++")
	autoInc1 := !autoInc2 && strings.HasSuffix(body, "+")
	if autoInc2 {
		body = strings.TrimSuffix(body, "++")
	} else if autoInc1 {
		body = strings.TrimSuffix(body, "+")
	}

	parts := strings.SplitN(body, ",", 2)
	if len(parts) != 2 {
		return nil, false
	}
	regText := strings.TrimSpace(parts[1])
	autoDec2 := strings.HasPrefix(regText, "--")
	autoDec1 := !autoDec2 && strings.HasPrefix(regText, "-")
	if autoDec2 {
		regText = strings.TrimPrefix(regText, "--")
	} else if autoDec1 {
		regText = strings.TrimPrefix(regText, "-")
	}
	reg, ok := registerCode(regText)
	if !ok {
		return nil, false
	}
	regBits := byte(reg) << 5

	switch {
	case autoInc1:
		return []byte{0x80 | regBits | 0x00}, true
	case autoInc2:
		return []byte{0x80 | regBits | 0x01}, true
	case autoDec1:
		return []byte{0x80 | regBits | 0x02}, true
	case autoDec2:
		return []byte{0x80 | regBits | 0x03}, true
	case strings.TrimSpace(parts[0]) == "":
		return []byte{regBits | 0x84}, true // zero offset, indexed-indirect style base
	case offset >= -16 && offset <= 15:
		return []byte{regBits | byte(offset&0x1f)}, true // 5-bit offset, bit 7 clear
	case offset >= -128 && offset <= 127:
		return []byte{0x80 | regBits | 0x08, byte(offset)}, true // 8-bit offset
	default:
		be := bigEndian16(offset)
		return []byte{0x80 | regBits | 0x09, be[0], be[1]}, true // 16-bit offset
	}
}

func registerCode(name string) (Register, bool) {
	switch strings.ToUpper(name) {
	case "X":
		return RegX, true
	case "Y":
		return RegY, true
	case "U":
		return RegU, true
	case "S":
		return RegS, true
	}
	return 0, false
}
