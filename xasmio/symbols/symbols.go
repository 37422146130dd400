// Package symbols writes a symbol-table dump: one "name = value" line
// per defined symbol, sorted by name for reproducible output. Grounded
// on symtab.Table.Iterate.
package symbols

import (
	"fmt"
	"io"
	"sort"

	"github.com/retrotoolkit/xasm/symtab"
)

// Write renders every defined symbol in tab as "name = $hex  ; kind".
func Write(w io.Writer, tab *symtab.Table) error {
	var syms []*symtab.Symbol
	tab.Iterate(func(s *symtab.Symbol) {
		syms = append(syms, s)
	})
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })

	for _, s := range syms {
		if _, err := fmt.Fprintf(w, "%-32s = $%04X  ; %s\n", s.Name, s.Value, kindName(s.Kind)); err != nil {
			return err
		}
	}
	return nil
}

func kindName(k symtab.Kind) string {
	switch k {
	case symtab.KindLabel:
		return "label"
	case symtab.KindEquate:
		return "equate"
	case symtab.KindSet:
		return "set"
	}
	return "unknown"
}
