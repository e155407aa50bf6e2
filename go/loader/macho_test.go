package loader

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
)

func TestDetect(t *testing.T) {
	tests := map[uint32]Kind{
		MagicLE32:  KindObject,
		MagicLE64:  KindObject,
		MagicBE32:  KindObject,
		MagicBE64:  KindObject,
		MagicFat:   KindFat,
		MagicFatR:  KindFat,
		0x464c457f: KindUnknown,
		0:          KindUnknown,
	}
	for magic, kind := range tests {
		p := []byte{byte(magic), byte(magic >> 8), byte(magic >> 16), byte(magic >> 24)}
		if got := Detect(bytes.NewReader(p)); got != kind {
			t.Errorf("%#x: got %s, expected %s", magic, got, kind)
		}
	}
	if Detect(bytes.NewReader([]byte{0xce, 0xfa})) != KindUnknown {
		t.Error("short input detected as Mach-O")
	}
}

func TestTypeMaps(t *testing.T) {
	cpus := map[uint32]models.CpuType{
		7:          models.CpuX86,
		0x01000007: models.CpuX86_64,
		12:         models.CpuARM,
		0x0100000c: models.CpuARM64,
		18:         models.CpuPowerPC,
		0x01000012: models.CpuPowerPC64,
		99:         models.CpuX86,
	}
	for raw, cpu := range cpus {
		if got := mapCpuType(raw); got != cpu {
			t.Errorf("cpu %#x: got %s, expected %s", raw, got, cpu)
		}
	}
	subs := map[uint32]models.CpuSubType{
		3:               models.SubI386,
		0x80000003:      models.SubI386,
		4 + 8<<4:        models.SubI486SX,
		7 + 7<<4:        models.SubCeleronMobile,
		0x80000000 | 28: models.SubXeonMP,
		999:             models.SubI386,
	}
	for raw, sub := range subs {
		if got := mapCpuSubType(raw); got != sub {
			t.Errorf("subtype %#x: got %s, expected %s", raw, got, sub)
		}
	}
	if mapFileType(6) != models.FileDylib || mapFileType(3) != models.FileObject {
		t.Error("bad file type mapping")
	}
}

func TestStringAt(t *testing.T) {
	data := []byte("foo\x00bar\x00")
	tests := map[uint32]string{0: "foo", 1: "oo", 4: "bar", 7: "", 8: "", 100: ""}
	for idx, s := range tests {
		if got := stringAt(data, idx); got != s {
			t.Errorf("index %d: got %q, expected %q", idx, got, s)
		}
	}
	if got := stringAt([]byte("a\xffb\x00"), 0); got != "a\ufffdb" {
		t.Errorf("invalid UTF-8 not replaced: %q", got)
	}
}

func TestResolveIndirect(t *testing.T) {
	obj := models.NewBinaryObject()
	obj.SymbolTable = &models.SymbolTable{}
	for _, name := range []string{"_a", "_b", "_c"} {
		obj.SymbolTable.Add(models.SymbolEntry{Name: name})
	}
	obj.DynSymbolTable = &models.SymbolTable{}
	for _, idx := range []uint32{0, 2, 5} {
		obj.DynSymbolTable.Add(models.SymbolEntry{Index: idx})
	}

	// without a stubs section nothing is resolved
	resolveIndirect(obj, StubSize)
	for _, e := range obj.DynSymbolTable.Entries() {
		if e.Name != "" || e.Value != 0 {
			t.Fatalf("resolved without stubs: %+v", e)
		}
	}

	obj.AddSection(&models.Section{Type: models.SectionSymbolStubs, Address: 0x2000})
	resolveIndirect(obj, StubSize)
	ind := obj.DynSymbolTable.Entries()
	if ind[0].Name != "_a" || ind[0].Value != 0x2000 {
		t.Errorf("entry 0: %+v", ind[0])
	}
	if ind[1].Name != "_c" || ind[1].Value != 0x2006 {
		t.Errorf("entry 1: %+v", ind[1])
	}
	if ind[2].Name != "" || ind[2].Value != 0 {
		t.Errorf("entry 2 should be unresolved: %+v", ind[2])
	}
}

func TestCommands(t *testing.T) {
	o := mock.NewObject(64, nil, mock.CpuX86_64, 3, 6)
	o.Raw(0x22|lcReqDyld, o.Pack(uint32(1), uint32(2), uint32(3), uint32(4), uint32(5), uint32(6), uint32(7), uint32(8), uint32(9), uint32(10)))
	o.Raw(0xd, o.Pack(uint32(24), uint32(2), uint32(0x10203), uint32(0x10000), "/usr/lib/libfoo.dylib\x00\x00\x00"))
	o.Raw(0xc, o.Pack(uint32(24), uint32(2), uint32(0x5040000), uint32(0x10000), "/usr/lib/libSystem.B.dylib\x00\x00\x00\x00\x00\x00"))
	o.Raw(0xe, o.Pack(uint32(12), "/usr/lib/dyld\x00\x00\x00\x00\x00\x00\x00"))
	o.Raw(0x1b, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15})
	o.Raw(0x24, o.Pack(uint32(0x000a0f00), uint32(0x000a1000)))
	o.Raw(0x2a, o.Pack(uint64(1<<40|2<<30)))
	o.Raw(0x28|lcReqDyld, o.Pack(uint64(0xf00), uint64(0x8000)))
	o.Raw(0x26, o.Pack(uint32(0x700), uint32(8)))
	o.Raw(0x1d, o.Pack(uint32(0x710), uint32(0x10)))
	o.Raw(0x1e, o.Pack(uint32(0x9999), uint32(4)))
	o.Raw(0x2b, o.Pack(uint32(0x9999), uint32(4)))
	o.Raw(0x29, o.Pack(uint32(0), uint16(0), uint16(0)))
	o.Raw(0x5, o.Pack(uint32(1), uint32(4), uint32(0)))
	o.Raw(0x4, o.Pack(uint32(2), uint32(2), uint32(0)))
	o.Raw(0x27, o.Pack(uint32(12), "DYLD_X=1\x00\x00\x00\x00"))
	o.Raw(0x1c|lcReqDyld, o.Pack(uint32(12), "@loader_path\x00\x00\x00\x00"))
	o.Put(0x700, bytes.Repeat([]byte{1}, 8))
	o.Put(0x710, bytes.Repeat([]byte{2}, 0x10))

	objs, err := parseBytes(o.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	obj := objs[0]
	if obj.FileType != models.FileDylib || len(obj.Commands) != 17 {
		t.Fatalf("got %s with %d commands", obj.FileType, len(obj.Commands))
	}
	if obj.Commands[0].Name != "LC_DYLD_INFO_ONLY" || obj.Commands[0].Offset != 32 || obj.Commands[0].Size != 48 {
		t.Fatalf("bad first command record: %+v", obj.Commands[0])
	}
	if len(obj.Dylibs) != 2 {
		t.Fatalf("expected 2 dylibs, got %d", len(obj.Dylibs))
	}
	id, lib := obj.Dylibs[0], obj.Dylibs[1]
	if id.Kind != "id" || id.Path != "/usr/lib/libfoo.dylib" || id.CurrentVersion.String() != "1.2.3" {
		t.Fatalf("bad id dylib: %+v", id)
	}
	if lib.Kind != "load" || lib.Path != "/usr/lib/libSystem.B.dylib" || lib.CompatVersion.String() != "1.0.0" {
		t.Fatalf("bad dylib: %+v", lib)
	}
	if obj.Dylinker != "/usr/lib/dyld" {
		t.Fatalf("bad dylinker: %q", obj.Dylinker)
	}
	if obj.UUID != "00010203-0405-0607-0809-0a0b0c0d0e0f" {
		t.Fatalf("bad uuid: %s", obj.UUID)
	}
	if obj.MinVersion.String() != "10.15.0" || obj.SDKVersion.String() != "10.16.0" {
		t.Fatalf("bad versions: %s %s", obj.MinVersion, obj.SDKVersion)
	}
	if obj.SourceVersion.String() != "1.2.0.0.0" {
		t.Fatalf("bad source version: %s", obj.SourceVersion)
	}
	if obj.Entry == nil || obj.Entry.Offset != 0xf00 || obj.Entry.StackSize != 0x8000 {
		t.Fatalf("bad entry point: %+v", obj.Entry)
	}
	if len(obj.Rpaths) != 1 || obj.Rpaths[0] != "@loader_path" {
		t.Fatalf("bad rpaths: %v", obj.Rpaths)
	}
	fs := obj.Section(models.SectionFunctionStarts)
	if fs == nil || fs.Address != 0x700 || fs.Offset != 0x700 || len(fs.Data) != 8 {
		t.Fatalf("bad function starts: %v", fs)
	}
	cs := obj.Section(models.SectionCodeSignature)
	if cs == nil || cs.Size != 0x10 || !bytes.Equal(cs.Data, bytes.Repeat([]byte{2}, 0x10)) {
		t.Fatalf("bad code signature: %v", cs)
	}
	if len(obj.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(obj.Sections))
	}
	if obj.SymbolTable != nil || obj.DynSymbolTable != nil {
		t.Fatal("symbol tables present without their commands")
	}
}

func TestBuildVersion(t *testing.T) {
	o := mock.NewObject(64, nil, mock.CpuARM64, 0, 2)
	o.Raw(0x32, o.Pack(uint32(1), uint32(0x000b0000), uint32(0x000c0100), uint32(1), uint32(3), uint32(0x02000000)))
	objs, err := parseBytes(o.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if objs[0].CpuType != models.CpuARM64 || objs[0].MinVersion.String() != "11.0.0" || objs[0].SDKVersion.String() != "12.1.0" {
		t.Fatalf("bad build version: %s %s %s", objs[0].CpuType, objs[0].MinVersion, objs[0].SDKVersion)
	}
}

func TestUnsupportedCommand(t *testing.T) {
	o := mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.Segment("__TEXT")
	o.Raw(0x7777, make([]byte, 4))
	_, err := parseBytes(o.Bytes())
	uerr, ok := errors.Cause(err).(*UnsupportedCommandError)
	if !ok {
		t.Fatalf("expected an unsupported command error, got %v", err)
	}
	if uerr.Cmd != 0x7777 || uerr.Index != 1 || uerr.Offset != 28+56 {
		t.Fatalf("bad error fields: %+v", uerr)
	}
	if !IsUnsupportedCommand(err) {
		t.Fatal("IsUnsupportedCommand returned false")
	}
}

func TestMalformedCommand(t *testing.T) {
	o := mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.RawSized(0x1b, 4, nil)
	if _, err := parseBytes(o.Bytes()); errors.Cause(err) != ErrMalformedCommand {
		t.Fatalf("expected ErrMalformedCommand, got %v", err)
	}

	o = mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.Raw(0xc, o.Pack(uint32(200), uint32(0), uint32(0), uint32(0)))
	if _, err := parseBytes(o.Bytes()); errors.Cause(err) != ErrMalformedCommand {
		t.Fatalf("expected ErrMalformedCommand for a bad name offset, got %v", err)
	}
}

func TestCommandOverrun(t *testing.T) {
	// one section claimed, none present: the record would come from the
	// next command and the zero fill after it
	o := mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.Raw(0x1, o.Pack([16]byte{'_', '_', 'T', 'E', 'X', 'T'}, uint32(0), uint32(0), uint32(0), uint32(0), uint32(7), uint32(5), uint32(1), uint32(0)))
	o.Raw(0x1b, make([]byte, 16))
	o.Put(0x100, make([]byte, 0x100))
	objs, err := parseBytes(o.Bytes())
	if errors.Cause(err) != ErrMalformedCommand {
		t.Fatalf("expected ErrMalformedCommand, got %v", err)
	}
	if objs != nil {
		t.Fatal("got objects with an error")
	}
}

func TestThreadState(t *testing.T) {
	// arm64 thread state, flavor 6 with 68 words: flavor*count runs past
	// the command and is cut at cmdsize
	o := mock.NewObject(64, nil, mock.CpuARM64, 0, 2)
	o.Raw(0x5, append(o.Pack(uint32(6), uint32(68)), make([]byte, 68*4)...))
	o.Raw(0x1b, make([]byte, 16))
	objs, err := parseBytes(o.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	cmds := objs[0].Commands
	if len(cmds) != 2 || cmds[0].Name != "LC_UNIXTHREAD" || cmds[1].Name != "LC_UUID" {
		t.Fatalf("bad commands: %+v", cmds)
	}
}

func TestSegmentWordSize(t *testing.T) {
	// LC_SEGMENT_64 in a 32-bit object is read with the 32-bit layout
	o := mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.SegmentAs(0x19, "__TEXT", mock.Section{Seg: "__TEXT", Name: "__text", Addr: 0x1000, Size: 4, Offset: 0x100})
	o.Put(0x100, []byte{1, 2, 3, 4})
	objs, err := parseBytes(o.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	obj := objs[0]
	if len(obj.Segments) != 1 || obj.Segments[0].Name != "__TEXT" || obj.Commands[0].Name != "LC_SEGMENT_64" {
		t.Fatalf("bad segment: %+v", obj.Segments)
	}
	prog := obj.Section(models.SectionProgram)
	if prog == nil || prog.Address != 0x1000 || !bytes.Equal(prog.Data, []byte{1, 2, 3, 4}) {
		t.Fatalf("bad program section: %v", prog)
	}
}

func TestSectionLastWriteWins(t *testing.T) {
	o := mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.Segment("__TEXT",
		mock.Section{Seg: "__TEXT", Name: "__cstring", Addr: 0x100, Size: 2, Offset: 0x200},
		mock.Section{Seg: "__TEXT", Name: "__cstring", Addr: 0x300, Size: 2, Offset: 0x210},
	)
	o.Segment("__TEXT",
		mock.Section{Seg: "__TEXT", Name: "__symbol_stub", Addr: 0x400, Size: 2, Offset: 0x220},
		mock.Section{Seg: "__TEXT", Name: "__stubs", Addr: 0x500, Size: 2, Offset: 0x230},
	)
	o.Put(0x200, []byte("a\x00"))
	o.Put(0x210, []byte("b\x00"))
	o.Put(0x220, []byte{1, 2})
	o.Put(0x230, []byte{3, 4})
	objs, err := parseBytes(o.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	obj := objs[0]
	if cstr := obj.Section(models.SectionCString); cstr.Address != 0x300 || string(cstr.Data) != "b\x00" {
		t.Fatalf("expected the later cstring section, got %v", cstr)
	}
	if stubs := obj.Section(models.SectionSymbolStubs); stubs.Address != 0x500 {
		t.Fatalf("expected the later stubs section, got %v", stubs)
	}
}

func TestZeroCountTables(t *testing.T) {
	o := mock.NewObject(32, nil, mock.CpuX86, 3, 2)
	o.Symtab(0x100, 0, 0x100, 0)
	o.Dysymtab(0x100, 0)
	objs, err := parseBytes(o.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	obj := objs[0]
	if obj.SymbolTable == nil || obj.SymbolTable.Len() != 0 || obj.DynSymbolTable == nil {
		t.Fatal("empty tables should still be present")
	}
	if s := obj.Section(models.SectionSymbolTable); s == nil || s.Size != 0 {
		t.Fatalf("bad empty symbol table section: %v", s)
	}
}

func TestVerify(t *testing.T) {
	p := sampleObject(64, nil).Bytes()
	objs, err := parseBytes(p)
	if err != nil {
		t.Fatal(err)
	}
	mismatches, err := Verify(bytes.NewReader(p), objs)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range mismatches {
		t.Error(m)
	}
	objs[0].SymbolTable.At(1).Name = "_other"
	mismatches, err = Verify(bytes.NewReader(p), objs)
	if err != nil {
		t.Fatal(err)
	}
	if len(mismatches) != 1 || mismatches[0].Field != "symbol 1" {
		t.Fatalf("expected one symbol mismatch, got %v", mismatches)
	}
}
