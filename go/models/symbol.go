package models

import (
	"encoding/json"
	"sort"
)

// SymbolEntry is a direct or indirect symbol. For an indirect entry Index
// holds the position in the direct table rather than a string table offset.
type SymbolEntry struct {
	Index uint32
	Value uint64
	Name  string

	Type uint8
	Sect uint8
	Desc uint16
}

type SymbolTable struct {
	entries []SymbolEntry
}

func (t *SymbolTable) Add(e SymbolEntry) {
	t.entries = append(t.entries, e)
}

func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// At returns a pointer to entry i so the resolver can fill it in place.
func (t *SymbolTable) At(i int) *SymbolEntry {
	return &t.entries[i]
}

// Entries returns the table in file order. The caller must not modify it.
func (t *SymbolTable) Entries() []SymbolEntry {
	if t == nil {
		return nil
	}
	return t.entries
}

type Symbol struct {
	Name       string
	Start, End uint64
	Dynamic    bool
}

func (s Symbol) Contains(addr uint64) bool {
	return s.Start <= addr && (addr < s.End || s.End == 0)
}

// SymbolIndex looks up symbols by address.
type SymbolIndex struct {
	syms []Symbol
}

// NewSymbolIndex builds an index over the named, section-bound direct
// symbols of b plus its resolved stub entries. A direct symbol ends where the
// next one starts.
func NewSymbolIndex(b *BinaryObject, stubSize uint64) *SymbolIndex {
	var syms []Symbol
	for _, e := range b.SymbolTable.Entries() {
		if e.Sect == 0 || e.Name == "" {
			continue
		}
		syms = append(syms, Symbol{Name: e.Name, Start: e.Value})
	}
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Start < syms[j].Start })
	for i := range syms {
		if i+1 < len(syms) {
			syms[i].End = syms[i+1].Start
		}
	}
	for _, e := range b.DynSymbolTable.Entries() {
		if e.Name == "" || e.Value == 0 {
			continue
		}
		syms = append(syms, Symbol{Name: e.Name, Start: e.Value, End: e.Value + stubSize, Dynamic: true})
	}
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Start < syms[j].Start })
	return &SymbolIndex{syms}
}

func (x *SymbolIndex) Symbols() []Symbol {
	return x.syms
}

// Lookup returns the symbol containing addr.
func (x *SymbolIndex) Lookup(addr uint64) (Symbol, bool) {
	i := sort.Search(len(x.syms), func(i int) bool {
		return addr < x.syms[i].Start
	})
	for i > 0 {
		s := x.syms[i-1]
		if s.Contains(addr) {
			return s, true
		}
		if !s.Dynamic {
			break
		}
		i--
	}
	return Symbol{}, false
}

// SymName returns the name and base of the symbol containing addr, or "", 0.
// It matches the symbol callback used by golang.org/x/arch disassemblers.
func (x *SymbolIndex) SymName(addr uint64) (string, uint64) {
	if s, ok := x.Lookup(addr); ok {
		return s.Name, s.Start
	}
	return "", 0
}

func (t *SymbolTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.entries)
}

func (t *SymbolTable) UnmarshalJSON(p []byte) error {
	return json.Unmarshal(p, &t.entries)
}
