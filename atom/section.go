package atom

import "iter"

// Section is an ordered run of Atoms sharing one address space (the
// default code section, or one of the edtasm CSEG/DSEG/ASEG/COMMON
// segments managed by the segment package). Grounded on the teacher's
// []segment slice held by assembler, generalized to a named, reusable
// type since multiple segments now coexist.
type Section struct {
	Name  string
	Atoms []*Atom
}

// NewSection creates an empty, named section.
func NewSection(name string) *Section {
	return &Section{Name: name}
}

// Append adds an atom to the end of the section.
func (s *Section) Append(a *Atom) {
	s.Atoms = append(s.Atoms, a)
}

// Size returns the sum of every atom's current Size.
func (s *Section) Size() int {
	total := 0
	for _, a := range s.Atoms {
		total += a.Size
	}
	return total
}

// Bytes is the AddressedByteStream contract of spec.md §6: a lazy
// (address, byte) sequence so a writer can range over the section
// without the engine ever materializing the whole image up front.
func (s *Section) Bytes() iter.Seq2[int, byte] {
	return func(yield func(int, byte) bool) {
		for _, a := range s.Atoms {
			addr := a.Address
			for i, b := range a.Bytes() {
				if !yield(addr+i, b) {
					return
				}
			}
		}
	}
}
