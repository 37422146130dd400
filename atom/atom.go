// Package atom implements the assembler's intermediate representation:
// one Atom per source construct (label, instruction, data run, etc.)
// strung together into a Section, each carrying the size/change
// bookkeeping the multi-pass engine needs to detect convergence.
// Grounded on the teacher's asm.segment interface and its
// instruction/data/bytedata/alignment/export structs (asm/asm.go),
// generalized from the teacher's single-pass fixed-size model to the
// Size/LastSize/Changes convergence tracking spec.md §4.3 requires.
package atom

import (
	"github.com/retrotoolkit/xasm/expr"
	"github.com/retrotoolkit/xasm/xerr"
)

// Kind tags which payload an Atom carries.
type Kind int

const (
	KindLabel Kind = iota
	KindInstruction
	KindData
	KindSpace
	KindAlign
	KindOrg
	KindListingControl
	KindEquate
)

// LabelPayload names a symbol defined at the atom's address.
type LabelPayload struct {
	Name string
}

// InstructionPayload is one CPU instruction awaiting (or holding)
// encoded bytes. OperandText is handed unparsed to the CPU backend so
// the engine stays CPU-agnostic, per spec.md §4.7.
type InstructionPayload struct {
	Mnemonic    string
	OperandText string
	Operand     *expr.Tree // nil if the backend parses operand text itself
	Bytes       []byte
}

// DataElement is one field of a DataPayload that still needs per-pass
// resolution: either a literal run already reduced to bytes (a quoted
// string), or an expression to pack into Width bytes once it resolves.
type DataElement struct {
	Literal   []byte
	Expr      *expr.Tree
	Width     int
	BigEndian bool
}

// DataPayload is a byte/word run (DB/DW/HEX/ASC/...). Elements is nil
// for a purely literal run (HEX, quoted strings, anything already
// reduced to bytes at parse time); Bytes holds the final encoding in
// both cases. When Elements is non-nil the engine re-evaluates it
// every pass, the same way InstructionPayload.Operand defers, so a
// data value may reference a symbol defined later in the source.
type DataPayload struct {
	Bytes    []byte
	Elements []DataElement
}

// SpacePayload reserves n bytes (DS/BLKB/RMB), optionally filled.
type SpacePayload struct {
	Count int
	Fill  byte
}

// AlignPayload pads the location counter up to the next multiple of
// Boundary.
type AlignPayload struct {
	Boundary int
	Fill     byte
}

// OrgPayload sets the location counter to an absolute or PHASE address.
type OrgPayload struct {
	Address int
	Phase   bool
}

// ListingPayload toggles listing generation (.LIST/.NOLIST style).
type ListingPayload struct {
	Enabled bool
}

// EquatePayload binds a name to a computed value: EQU-style (Mutable
// false, redefinition is an error) or SET/DEFL-style (Mutable true,
// redefinition always takes the latest value), per the Kind split
// symtab.Table enforces.
type EquatePayload struct {
	Name    string
	Value   *expr.Tree
	Mutable bool
}

// Atom is one node of the instruction/data stream produced by a syntax
// front-end and consumed by the engine.
type Atom struct {
	Kind Kind
	Loc  xerr.Location

	Address int // computed by the engine during the label pass

	Size     int // this pass's computed size, in bytes
	LastSize int // previous pass's size, for convergence comparison
	Changes  int // number of passes in which Size differed from LastSize

	Payload any
}

// Label creates a label-defining atom.
func Label(loc xerr.Location, name string) *Atom {
	return &Atom{Kind: KindLabel, Loc: loc, Payload: LabelPayload{Name: name}}
}

// Instruction creates an instruction atom awaiting encoding.
func Instruction(loc xerr.Location, mnemonic, operandText string, operand *expr.Tree) *Atom {
	return &Atom{
		Kind: KindInstruction,
		Loc:  loc,
		Payload: InstructionPayload{
			Mnemonic:    mnemonic,
			OperandText: operandText,
			Operand:     operand,
		},
	}
}

// Equate creates an EQU (mutable=false) or SET/DEFL (mutable=true) atom.
func Equate(loc xerr.Location, name string, value *expr.Tree, mutable bool) *Atom {
	return &Atom{Kind: KindEquate, Loc: loc, Payload: EquatePayload{Name: name, Value: value, Mutable: mutable}}
}

// Data creates a literal-byte atom.
func Data(loc xerr.Location, bytes []byte) *Atom {
	return &Atom{Kind: KindData, Loc: loc, Size: len(bytes), Payload: DataPayload{Bytes: bytes}}
}

// DataExpr creates a data atom whose elements may carry unevaluated
// expressions (forward references included); the engine fills in Size
// and Bytes once every element resolves.
func DataExpr(loc xerr.Location, elements []DataElement) *Atom {
	return &Atom{Kind: KindData, Loc: loc, Payload: DataPayload{Elements: elements}}
}

// Space creates a reserved-space atom.
func Space(loc xerr.Location, count int, fill byte) *Atom {
	return &Atom{Kind: KindSpace, Loc: loc, Size: count, Payload: SpacePayload{Count: count, Fill: fill}}
}

// Align creates an alignment atom.
func Align(loc xerr.Location, boundary int, fill byte) *Atom {
	return &Atom{Kind: KindAlign, Loc: loc, Payload: AlignPayload{Boundary: boundary, Fill: fill}}
}

// Org creates an origin-setting atom.
func Org(loc xerr.Location, address int, phase bool) *Atom {
	return &Atom{Kind: KindOrg, Loc: loc, Payload: OrgPayload{Address: address, Phase: phase}}
}

// Listing creates a listing-control atom.
func Listing(loc xerr.Location, enabled bool) *Atom {
	return &Atom{Kind: KindListingControl, Loc: loc, Payload: ListingPayload{Enabled: enabled}}
}

// MarkSize records this pass's computed size and updates the
// convergence-change counter the engine inspects to decide whether
// another pass is required.
func (a *Atom) MarkSize(size int) {
	if size != a.Size {
		a.Changes++
	}
	a.LastSize = a.Size
	a.Size = size
}

// Bytes returns the atom's current encoded bytes, if any. Space/Align
// atoms synthesize their fill bytes lazily here rather than storing
// them, since a large DS can be megabytes wide.
func (a *Atom) Bytes() []byte {
	switch p := a.Payload.(type) {
	case InstructionPayload:
		return p.Bytes
	case DataPayload:
		return p.Bytes
	case SpacePayload:
		b := make([]byte, p.Count)
		for i := range b {
			b[i] = p.Fill
		}
		return b
	case AlignPayload:
		if a.Size <= 0 {
			return nil
		}
		b := make([]byte, a.Size)
		for i := range b {
			b[i] = p.Fill
		}
		return b
	}
	return nil
}
