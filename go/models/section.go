package models

import "fmt"

type SectionType int

const (
	SectionProgram SectionType = iota
	SectionSymbolStubs
	SectionCString
	SectionObjcMethodNames
	SectionStringTable
	SectionFunctionStarts
	SectionCodeSignature
	SectionSymbolTable
	SectionDynamicSymbolTable
)

var sectionTypeNames = [...]string{
	"program", "stubs", "cstring", "objc-methnames", "strtab",
	"funcstarts", "codesig", "symtab", "dysymtab",
}

func (t SectionType) String() string {
	if t >= 0 && int(t) < len(sectionTypeNames) {
		return sectionTypeNames[t]
	}
	return fmt.Sprintf("SectionType(%d)", int(t))
}

// ParseSectionType accepts the short names printed by SectionType.String.
func ParseSectionType(name string) (SectionType, bool) {
	for i, n := range sectionTypeNames {
		if n == name {
			return SectionType(i), true
		}
	}
	return 0, false
}

// Section is a typed byte range of the file. Offset is absolute within the
// whole file. Data stays empty until the resolver runs.
type Section struct {
	Type    SectionType
	Name    string
	Source  string
	Address uint64
	Size    uint64
	Offset  uint64
	Data    []byte
}

func (s *Section) Contains(addr uint64) bool {
	return s.Address <= addr && addr < s.Address+s.Size
}

func (s *Section) String() string {
	return fmt.Sprintf("%-16s addr=%#x size=%#x off=%#x", s.Name, s.Address, s.Size, s.Offset)
}
