// Package segment implements the segment manager: independent address
// counters for the code, data, absolute, and common segments that
// edtasm-family sources select with CSEG/DSEG/ASEG/COMMON, grounded on
// original_source/include/xasm++/segment_manager.h (the teacher's own
// asm package only ever had one implicit segment).
package segment

// Id names one of the four segment kinds.
type Id int

const (
	Code Id = iota
	Data
	Absolute
	Common
)

func (id Id) String() string {
	switch id {
	case Code:
		return "CSEG"
	case Data:
		return "DSEG"
	case Absolute:
		return "ASEG"
	case Common:
		return "COMMON"
	default:
		return "?"
	}
}

// Manager tracks one location counter per segment kind, plus a set of
// named COMMON blocks (each COMMON/name/ has its own independent
// counter starting at zero, since common blocks are overlaid by the
// linker/loader rather than concatenated).
type Manager struct {
	counters map[Id]int
	commons  map[string]int
	current  Id
	curName  string // COMMON block name, when current == Common
	pc       int    // cache of the active segment's counter
}

// New creates a Manager with every counter at zero and Code selected.
func New() *Manager {
	return &Manager{
		counters: map[Id]int{Code: 0, Data: 0, Absolute: 0},
		commons:  make(map[string]int),
		current:  Code,
	}
}

// Select switches the active segment. name is only meaningful when id
// is Common.
func (m *Manager) Select(id Id, name string) {
	m.save()
	m.current = id
	m.curName = name
	m.load()
}

func (m *Manager) save() {
	if m.current == Common {
		m.commons[m.curName] = m.pc
	} else {
		m.counters[m.current] = m.pc
	}
}

func (m *Manager) load() {
	if m.current == Common {
		m.pc = m.commons[m.curName]
	} else {
		m.pc = m.counters[m.current]
	}
}

// Current returns the active segment id and, for Common, its name.
func (m *Manager) Current() (Id, string) { return m.current, m.curName }

// PC returns the active segment's location counter.
func (m *Manager) PC() int { return m.pc }

// SetPC sets the active segment's location counter (ORG/PHASE).
func (m *Manager) SetPC(addr int) { m.pc = addr }

// Advance moves the active segment's counter forward by n bytes,
// returning the address the advance started from.
func (m *Manager) Advance(n int) int {
	addr := m.pc
	m.pc += n
	return addr
}
