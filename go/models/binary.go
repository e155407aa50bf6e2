package models

import (
	"encoding/binary"
	"fmt"
	"sort"
)

type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

type CpuType int

const (
	CpuX86 CpuType = iota
	CpuX86_64
	CpuHPPA
	CpuARM
	CpuARM64
	CpuSPARC
	CpuI860
	CpuPowerPC
	CpuPowerPC64
)

var cpuNames = map[CpuType]string{
	CpuX86:       "x86",
	CpuX86_64:    "x86_64",
	CpuHPPA:      "hppa",
	CpuARM:       "arm",
	CpuARM64:     "arm64",
	CpuSPARC:     "sparc",
	CpuI860:      "i860",
	CpuPowerPC:   "ppc",
	CpuPowerPC64: "ppc64",
}

func (c CpuType) String() string {
	if name, ok := cpuNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CpuType(%d)", int(c))
}

type CpuSubType int

const (
	SubI386 CpuSubType = iota
	SubI486
	SubI486SX
	SubPentium
	SubPentiumPro
	SubPentiumIIM3
	SubPentiumIIM5
	SubCeleron
	SubCeleronMobile
	SubPentium3
	SubPentium3M
	SubPentium3Xeon
	SubPentiumM
	SubPentium4
	SubPentium4M
	SubItanium
	SubItanium2
	SubXeon
	SubXeonMP
)

var subNames = [...]string{
	"i386", "i486", "i486sx", "pentium", "pentium-pro", "pentium-ii-m3",
	"pentium-ii-m5", "celeron", "celeron-mobile", "pentium-3", "pentium-3-m",
	"pentium-3-xeon", "pentium-m", "pentium-4", "pentium-4-m", "itanium",
	"itanium-2", "xeon", "xeon-mp",
}

func (s CpuSubType) String() string {
	if s >= 0 && int(s) < len(subNames) {
		return subNames[s]
	}
	return fmt.Sprintf("CpuSubType(%d)", int(s))
}

type FileType int

const (
	FileObject FileType = iota
	FileExecute
	FileCore
	FilePreload
	FileDylib
	FileDylinker
	FileBundle
)

var fileNames = [...]string{"object", "execute", "core", "preload", "dylib", "dylinker", "bundle"}

func (f FileType) String() string {
	if f >= 0 && int(f) < len(fileNames) {
		return fileNames[f]
	}
	return fmt.Sprintf("FileType(%d)", int(f))
}

// LoadCommand records where a load command sat in the command stream.
type LoadCommand struct {
	Cmd    uint32
	Name   string
	Size   uint32
	Offset uint64
}

type Segment struct {
	Name           string
	Addr, Memsz    uint64
	Offset, Filesz uint64
	MaxProt, Prot  uint32
	Nsect, Flags   uint32
}

type Dylib struct {
	Kind           string
	Path           string
	Timestamp      uint32
	CurrentVersion Version
	CompatVersion  Version
}

type EntryPoint struct {
	Offset    uint64
	StackSize uint64
}

// BinaryObject is one parsed architecture.
type BinaryObject struct {
	WordSize   int
	Endian     Endian
	CpuType    CpuType
	CpuSubType CpuSubType
	FileType   FileType

	RawCpuType    uint32
	RawCpuSubType uint32
	RawFileType   uint32
	Flags         uint32

	// Offset and SliceSize locate the architecture inside a fat container.
	// Both are zero for a single object.
	Offset    uint64
	SliceSize uint64

	Sections       map[SectionType]*Section
	SymbolTable    *SymbolTable
	DynSymbolTable *SymbolTable

	Commands      []LoadCommand
	Segments      []Segment
	Dylibs        []Dylib
	Dylinker      string
	Rpaths        []string
	UUID          string
	MinVersion    Version
	SDKVersion    Version
	SourceVersion SourceVersion
	Entry         *EntryPoint
}

func NewBinaryObject() *BinaryObject {
	return &BinaryObject{Sections: make(map[SectionType]*Section)}
}

// AddSection registers s, replacing any earlier section of the same type.
func (b *BinaryObject) AddSection(s *Section) {
	if b.Sections == nil {
		b.Sections = make(map[SectionType]*Section)
	}
	b.Sections[s.Type] = s
}

func (b *BinaryObject) Section(t SectionType) *Section {
	return b.Sections[t]
}

// SortedSections returns the registered sections ordered by type.
func (b *BinaryObject) SortedSections() []*Section {
	ret := make([]*Section, 0, len(b.Sections))
	for _, s := range b.Sections {
		ret = append(ret, s)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Type < ret[j].Type })
	return ret
}

func (b *BinaryObject) ByteOrder() binary.ByteOrder {
	return b.Endian.ByteOrder()
}

func (b *BinaryObject) String() string {
	return fmt.Sprintf("%s %s %d-bit %s-endian %s", b.CpuType, b.CpuSubType, b.WordSize, b.Endian, b.FileType)
}

// Version is an X.Y.Z version packed as xxxx.yy.zz nibbles.
type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v>>16, (v>>8)&0xff, v&0xff)
}

// SourceVersion is A.B.C.D.E packed as a24.b10.c10.d10.e10.
type SourceVersion uint64

func (v SourceVersion) String() string {
	a := v >> 40
	b := (v >> 30) & 0x3ff
	c := (v >> 20) & 0x3ff
	d := (v >> 10) & 0x3ff
	e := v & 0x3ff
	return fmt.Sprintf("%d.%d.%d.%d.%d", a, b, c, d, e)
}
