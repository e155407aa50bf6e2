package loader

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
)

func TestParseBadMagic(t *testing.T) {
	for _, p := range [][]byte{nil, {0xfe}, []byte("\x7fELF\x02\x01\x01\x00")} {
		objs, err := parseBytes(p)
		if errors.Cause(err) != ErrNotMachO {
			t.Fatalf("%x: expected ErrNotMachO, got %v", p, err)
		}
		if objs != nil {
			t.Fatalf("%x: got objects with an error", p)
		}
	}
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		bits   int
		order  binary.ByteOrder
		cpu    models.CpuType
		endian models.Endian
	}{
		{32, binary.LittleEndian, models.CpuX86, models.LittleEndian},
		{64, binary.LittleEndian, models.CpuX86_64, models.LittleEndian},
		{32, binary.BigEndian, models.CpuX86, models.BigEndian},
		{64, binary.BigEndian, models.CpuX86_64, models.BigEndian},
	}
	for _, test := range tests {
		objs, err := parseBytes(sampleObject(test.bits, test.order).Bytes())
		if err != nil {
			t.Fatalf("%d-bit %s: %v", test.bits, test.endian, err)
		}
		if len(objs) != 1 {
			t.Fatalf("expected 1 object, got %d", len(objs))
		}
		obj := objs[0]
		if obj.WordSize != test.bits || obj.Endian != test.endian || obj.CpuType != test.cpu {
			t.Fatalf("bad header: %s", obj)
		}
		if obj.CpuSubType != models.SubI386 || obj.FileType != models.FileExecute {
			t.Fatalf("bad header: %s", obj)
		}
		if len(obj.Segments) != 2 || obj.Segments[0].Name != "__TEXT" {
			t.Fatalf("bad segments: %+v", obj.Segments)
		}
		if len(obj.Sections) != 6 {
			t.Fatalf("expected 6 sections, got %d", len(obj.Sections))
		}
		prog := obj.Section(models.SectionProgram)
		if prog == nil || prog.Name != "Program" || prog.Address != 0x1000 || prog.Size != 0x10 || prog.Offset != 0x400 {
			t.Fatalf("bad program section: %v", prog)
		}
		if !bytes.Equal(prog.Data, textData) {
			t.Fatalf("bad program data: %x", prog.Data)
		}
		cstr := obj.Section(models.SectionCString)
		if cstr == nil || cstr.Address != 0x3000 || !bytes.Equal(cstr.Data, cstrData) {
			t.Fatalf("bad cstring section: %v", cstr)
		}
		strtab := obj.Section(models.SectionStringTable)
		if strtab == nil || strtab.Address != 0x600 || strtab.Offset != 0x600 || strtab.Size != uint64(len(strtabRaw)) {
			t.Fatalf("bad string table: %v", strtab)
		}
		nlistSize := uint64(12)
		if test.bits == 64 {
			nlistSize = 16
		}
		symtab := obj.Section(models.SectionSymbolTable)
		if symtab == nil || symtab.Address != 0x500 || symtab.Size != 3*nlistSize {
			t.Fatalf("bad symbol table section: %v", symtab)
		}
		dysymtab := obj.Section(models.SectionDynamicSymbolTable)
		if dysymtab == nil || dysymtab.Address != 0x580 || dysymtab.Size != 12 {
			t.Fatalf("bad dynamic symbol table section: %v", dysymtab)
		}
		checkSymbols(t, obj)
	}
}

func checkSymbols(t *testing.T, obj *models.BinaryObject) {
	t.Helper()
	names := []string{"_main", "_helper", "_puts"}
	values := []uint64{0x1000, 0x1008, 0}
	if obj.SymbolTable.Len() != 3 {
		t.Fatalf("expected 3 symbols, got %d", obj.SymbolTable.Len())
	}
	for i, e := range obj.SymbolTable.Entries() {
		if e.Name != names[i] || e.Value != values[i] {
			t.Fatalf("symbol %d: got %s@%#x", i, e.Name, e.Value)
		}
	}
	ind := obj.DynSymbolTable.Entries()
	if len(ind) != 3 {
		t.Fatalf("expected 3 indirect symbols, got %d", len(ind))
	}
	if ind[0].Name != "_puts" || ind[0].Value != 0x2000 {
		t.Fatalf("indirect 0: got %s@%#x", ind[0].Name, ind[0].Value)
	}
	if ind[1].Name != "_main" || ind[1].Value != 0x2006 {
		t.Fatalf("indirect 1: got %s@%#x", ind[1].Name, ind[1].Value)
	}
	if ind[2].Name != "" || ind[2].Value != 0 || ind[2].Index != 9 {
		t.Fatalf("indirect 2 should be unresolved: %+v", ind[2])
	}
}

func TestParseIdempotent(t *testing.T) {
	p := sampleObject(64, nil).Bytes()
	a, err := parseBytes(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := parseBytes(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two parses of the same input differ")
	}
}

func TestParseTruncated(t *testing.T) {
	for _, bits := range []int{32, 64} {
		p := sampleObject(bits, nil).Bytes()
		if _, err := parseBytes(p); err != nil {
			t.Fatal(err)
		}
		for n := 0; n < len(p); n++ {
			objs, err := parseBytes(p[:n])
			if err == nil || objs != nil {
				t.Fatalf("%d-bit prefix of %d bytes parsed without error", bits, n)
			}
			if n >= 4 && errors.Cause(err) != ErrTruncated {
				t.Fatalf("%d-bit prefix of %d bytes: expected truncation, got %v", bits, n, err)
			}
		}
	}
}

func TestParseFat(t *testing.T) {
	a := sampleObject(32, nil).Bytes()
	b := sampleObject(64, nil).Bytes()
	for _, magic := range []uint32{MagicFat, MagicFatR} {
		p := mock.Fat(magic,
			mock.FatSlice{CpuType: mock.CpuX86, SubType: 3, Offset: 0x1000, Data: a},
			mock.FatSlice{CpuType: mock.CpuX86_64, SubType: 3, Offset: 0x2000, Data: b},
		)
		if Detect(bytes.NewReader(p)) != KindFat {
			t.Fatalf("%#x: fat magic not detected", magic)
		}
		arches, err := ReadFatArches(bytes.NewReader(p), int64(len(p)))
		if err != nil {
			t.Fatalf("%#x: %v", magic, err)
		}
		if len(arches) != 2 || arches[1].Offset != 0x2000 || arches[1].Size != uint32(len(b)) || arches[1].Cpu() != models.CpuX86_64 {
			t.Fatalf("%#x: bad fat arches: %+v", magic, arches)
		}
		objs, err := parseBytes(p)
		if err != nil {
			t.Fatalf("%#x: %v", magic, err)
		}
		if len(objs) != 2 {
			t.Fatalf("%#x: expected 2 objects, got %d", magic, len(objs))
		}
		if objs[0].WordSize != 32 || objs[1].WordSize != 64 {
			t.Fatalf("%#x: objects out of file order", magic)
		}
		for i, base := range []uint64{0x1000, 0x2000} {
			obj := objs[i]
			if obj.Offset != base {
				t.Fatalf("%#x arch %d: offset %#x", magic, i, obj.Offset)
			}
			prog := obj.Section(models.SectionProgram)
			if prog.Offset != base+0x400 || !bytes.Equal(prog.Data, textData) {
				t.Fatalf("%#x arch %d: bad program section %v", magic, i, prog)
			}
			if strtab := obj.Section(models.SectionStringTable); strtab.Address != 0x600 || strtab.Offset != base+0x600 {
				t.Fatalf("%#x arch %d: bad string table %v", magic, i, strtab)
			}
			checkSymbols(t, obj)
		}
	}
}

func TestParseFatTruncated(t *testing.T) {
	for _, magic := range []uint32{MagicFat, MagicFatR} {
		p := mock.Fat(magic,
			mock.FatSlice{CpuType: mock.CpuX86, SubType: 3, Offset: 0x1000, Data: sampleObject(32, nil).Bytes()},
			mock.FatSlice{CpuType: mock.CpuX86_64, SubType: 3, Offset: 0x2000, Data: sampleObject(64, nil).Bytes()},
		)
		// magic, count and two 20-byte descriptors
		for n := 4; n < 8+2*20; n++ {
			objs, err := parseBytes(p[:n])
			if objs != nil {
				t.Fatalf("%#x: %d-byte header prefix returned objects", magic, n)
			}
			if errors.Cause(err) != ErrTruncated {
				t.Fatalf("%#x: %d-byte header prefix: expected truncation, got %v", magic, n, err)
			}
		}
	}
}

func TestParseFatBadSlice(t *testing.T) {
	bad := sampleObject(64, nil).Raw(0x99, make([]byte, 8)).Bytes()
	p := mock.Fat(MagicFatR,
		mock.FatSlice{CpuType: mock.CpuX86, SubType: 3, Offset: 0x1000, Data: sampleObject(32, nil).Bytes()},
		mock.FatSlice{CpuType: mock.CpuX86_64, SubType: 3, Offset: 0x2000, Data: bad},
	)
	objs, err := parseBytes(p)
	if err == nil || objs != nil {
		t.Fatal("bad slice did not fail the parse")
	}
	uerr, ok := errors.Cause(err).(*UnsupportedCommandError)
	if !ok || uerr.Cmd != 0x99 || uerr.Index != 4 {
		t.Fatalf("expected unsupported command error, got %v", err)
	}
	objs, err = parseBytes(p, WithSkipBadSlices(true))
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 1 || objs[0].Offset != 0x1000 {
		t.Fatalf("expected only the first slice, got %d objects", len(objs))
	}
}

func TestParseFatEmpty(t *testing.T) {
	objs, err := parseBytes(mock.Fat(MagicFatR))
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 0 {
		t.Fatalf("expected no objects, got %d", len(objs))
	}
}
