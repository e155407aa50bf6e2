package loader

import (
	"fmt"

	"github.com/lunixbochs/binspect/go/models"
)

type loadCmd uint32

const lcReqDyld = 0x80000000

const (
	lcSegment          loadCmd = 0x1
	lcSymtab           loadCmd = 0x2
	lcThread           loadCmd = 0x4
	lcUnixThread       loadCmd = 0x5
	lcDysymtab         loadCmd = 0xb
	lcLoadDylib        loadCmd = 0xc
	lcIdDylib          loadCmd = 0xd
	lcLoadDylinker     loadCmd = 0xe
	lcLoadWeakDylib    loadCmd = 0x18 | lcReqDyld
	lcSegment64        loadCmd = 0x19
	lcUUID             loadCmd = 0x1b
	lcRpath            loadCmd = 0x1c | lcReqDyld
	lcCodeSignature    loadCmd = 0x1d
	lcSegmentSplitInfo loadCmd = 0x1e
	lcDyldInfo         loadCmd = 0x22
	lcDyldInfoOnly     loadCmd = 0x22 | lcReqDyld
	lcVersionMinMacOS  loadCmd = 0x24
	lcVersionMinIOS    loadCmd = 0x25
	lcFunctionStarts   loadCmd = 0x26
	lcDyldEnvironment  loadCmd = 0x27
	lcMain             loadCmd = 0x28 | lcReqDyld
	lcDataInCode       loadCmd = 0x29
	lcSourceVersion    loadCmd = 0x2a
	lcDylibCodeSignDrs loadCmd = 0x2b
	lcVersionMinTVOS   loadCmd = 0x2f
	lcVersionMinWatch  loadCmd = 0x30
	lcBuildVersion     loadCmd = 0x32
	lcDyldExportsTrie  loadCmd = 0x33 | lcReqDyld
	lcDyldChainedFixup loadCmd = 0x34 | lcReqDyld
)

var loadCmdNames = map[loadCmd]string{
	lcSegment:          "LC_SEGMENT",
	lcSymtab:           "LC_SYMTAB",
	lcThread:           "LC_THREAD",
	lcUnixThread:       "LC_UNIXTHREAD",
	lcDysymtab:         "LC_DYSYMTAB",
	lcLoadDylib:        "LC_LOAD_DYLIB",
	lcIdDylib:          "LC_ID_DYLIB",
	lcLoadDylinker:     "LC_LOAD_DYLINKER",
	lcLoadWeakDylib:    "LC_LOAD_WEAK_DYLIB",
	lcSegment64:        "LC_SEGMENT_64",
	lcUUID:             "LC_UUID",
	lcRpath:            "LC_RPATH",
	lcCodeSignature:    "LC_CODE_SIGNATURE",
	lcSegmentSplitInfo: "LC_SEGMENT_SPLIT_INFO",
	lcDyldInfo:         "LC_DYLD_INFO",
	lcDyldInfoOnly:     "LC_DYLD_INFO_ONLY",
	lcVersionMinMacOS:  "LC_VERSION_MIN_MACOSX",
	lcVersionMinIOS:    "LC_VERSION_MIN_IPHONEOS",
	lcFunctionStarts:   "LC_FUNCTION_STARTS",
	lcDyldEnvironment:  "LC_DYLD_ENVIRONMENT",
	lcMain:             "LC_MAIN",
	lcDataInCode:       "LC_DATA_IN_CODE",
	lcSourceVersion:    "LC_SOURCE_VERSION",
	lcDylibCodeSignDrs: "LC_DYLIB_CODE_SIGN_DRS",
	lcVersionMinTVOS:   "LC_VERSION_MIN_TVOS",
	lcVersionMinWatch:  "LC_VERSION_MIN_WATCHOS",
	lcBuildVersion:     "LC_BUILD_VERSION",
	lcDyldExportsTrie:  "LC_DYLD_EXPORTS_TRIE",
	lcDyldChainedFixup: "LC_DYLD_CHAINED_FIXUPS",
}

func (c loadCmd) String() string {
	if name, ok := loadCmdNames[c]; ok {
		return name
	}
	return fmt.Sprintf("LC_%#x", uint32(c))
}

// LoadCommandName returns the symbolic name of a raw load command type.
func LoadCommandName(cmd uint32) string {
	return loadCmd(cmd).String()
}

// command is the decoded fixed part of one load command. The set of
// implementations is closed; the parser applies them with a type switch.
type command interface {
	kind() loadCmd
}

type segment32 struct {
	Name           [16]byte
	Addr, Memsz    uint32
	Offset, Filesz uint32
	MaxProt, Prot  uint32
	Nsect, Flags   uint32
}

type segment64 struct {
	Name           [16]byte
	Addr, Memsz    uint64
	Offset, Filesz uint64
	MaxProt, Prot  uint32
	Nsect, Flags   uint32
}

type section32 struct {
	Name      [16]byte
	Seg       [16]byte
	Addr      uint32
	Size      uint32
	Offset    uint32
	Align     uint32
	Reloff    uint32
	Nreloc    uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
}

type section64 struct {
	Name      [16]byte
	Seg       [16]byte
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	Reloff    uint32
	Nreloc    uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32
}

// sectionHeader is a section record with the word size erased.
type sectionHeader struct {
	Name, Seg string
	Addr      uint64
	Size      uint64
	Offset    uint32
}

type segmentCmd struct {
	Cmd      loadCmd
	Segment  models.Segment
	Sections []sectionHeader
}

type dyldInfoCmd struct {
	RebaseOff, RebaseSize     uint32
	BindOff, BindSize         uint32
	WeakBindOff, WeakBindSize uint32
	LazyBindOff, LazyBindSize uint32
	ExportOff, ExportSize     uint32

	Cmd loadCmd `struc:"skip"`
}

type symtabCmd struct {
	Symoff, Nsyms   uint32
	Stroff, Strsize uint32
}

type dysymtabCmd struct {
	Ilocalsym, Nlocalsym          uint32
	Iextdefsym, Nextdefsym        uint32
	Iundefsym, Nundefsym          uint32
	Tocoff, Ntoc                  uint32
	Modtaboff, Nmodtab            uint32
	Extrefsymoff, Nextrefsyms     uint32
	Indirectsymoff, Nindirectsyms uint32
	Extreloff, Nextrel            uint32
	Locreloff, Nlocrel            uint32
}

type dylibCmd struct {
	NameOff        uint32
	Timestamp      uint32
	CurrentVersion uint32
	CompatVersion  uint32

	Cmd  loadCmd `struc:"skip"`
	Path string  `struc:"skip"`
}

// pathCmd covers the commands that carry nothing but a path string.
type pathCmd struct {
	NameOff uint32

	Cmd  loadCmd `struc:"skip"`
	Path string  `struc:"skip"`
}

type uuidCmd struct {
	UUID [16]byte
}

type versionMinCmd struct {
	Version, SDK uint32

	Cmd loadCmd `struc:"skip"`
}

type buildVersionCmd struct {
	Platform uint32
	MinOS    uint32
	SDK      uint32
	NTools   uint32
}

type sourceVersionCmd struct {
	Version uint64
}

type entryPointCmd struct {
	EntryOff  uint64
	StackSize uint64
}

type linkeditCmd struct {
	Off, Size uint32

	Cmd loadCmd `struc:"skip"`
}

type dataInCodeCmd struct {
	Offset uint32
	Length uint16
	Kind   uint16
}

type threadCmd struct {
	Flavor, Count uint32

	Cmd loadCmd `struc:"skip"`
}

func (c *segmentCmd) kind() loadCmd       { return c.Cmd }
func (c *dyldInfoCmd) kind() loadCmd      { return c.Cmd }
func (c *symtabCmd) kind() loadCmd        { return lcSymtab }
func (c *dysymtabCmd) kind() loadCmd      { return lcDysymtab }
func (c *dylibCmd) kind() loadCmd         { return c.Cmd }
func (c *pathCmd) kind() loadCmd          { return c.Cmd }
func (c *uuidCmd) kind() loadCmd          { return lcUUID }
func (c *versionMinCmd) kind() loadCmd    { return c.Cmd }
func (c *buildVersionCmd) kind() loadCmd  { return lcBuildVersion }
func (c *sourceVersionCmd) kind() loadCmd { return lcSourceVersion }
func (c *entryPointCmd) kind() loadCmd    { return lcMain }
func (c *linkeditCmd) kind() loadCmd      { return c.Cmd }
func (c *dataInCodeCmd) kind() loadCmd    { return lcDataInCode }
func (c *threadCmd) kind() loadCmd        { return c.Cmd }

var dylibKinds = map[loadCmd]string{
	lcLoadDylib:     "load",
	lcIdDylib:       "id",
	lcLoadWeakDylib: "weak",
}

// linkeditSections lists the linkedit blobs that become sections.
var linkeditSections = map[loadCmd]models.SectionType{
	lcFunctionStarts: models.SectionFunctionStarts,
	lcCodeSignature:  models.SectionCodeSignature,
}
