package snapshot

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/loader"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
)

func testObjects(t *testing.T) []*models.BinaryObject {
	o := mock.NewObject(32, nil, mock.CpuX86, 3, mock.FileExecute)
	o.Segment("__TEXT",
		mock.Section{Seg: "__TEXT", Name: "__text", Addr: 0x1000, Size: 4, Offset: 0x200},
		mock.Section{Seg: "__TEXT", Name: "__symbol_stub", Addr: 0x2000, Size: 6, Offset: 0x210},
	)
	o.Symtab(0x300, 1, 0x380, 8)
	o.Dysymtab(0x340, 1)
	o.Raw(0x1b, bytes.Repeat([]byte{0xab}, 16))
	o.Put(0x200, []byte{0x55, 0x89, 0xe5, 0xc3})
	o.Put(0x210, []byte{0xff, 0x25, 1, 2, 3, 4})
	o.Put(0x300, o.Nlist(1, 0x0f, 1, 0, 0x1000))
	o.Put(0x340, o.Pack(uint32(0)))
	o.Put(0x380, []byte("\x00_main\x00\x00"))
	p := o.Bytes()
	objs, err := loader.Parse(bytes.NewReader(p), int64(len(p)))
	if err != nil {
		t.Fatal(err)
	}
	return objs
}

func TestRoundTrip(t *testing.T) {
	objs := testObjects(t)
	var buf bytes.Buffer
	if err := Write(&buf, "a.out", objs); err != nil {
		t.Fatal(err)
	}
	if !Match(buf.Bytes()) {
		t.Fatal("snapshot magic missing")
	}
	header, got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if header.Source != "a.out" || header.Arches != 1 {
		t.Fatalf("bad header: %+v", header)
	}
	if !reflect.DeepEqual(objs, got) {
		t.Fatalf("objects changed across a round trip:\n%+v\n%+v", objs[0], got[0])
	}
	if got[0].DynSymbolTable.At(0).Name != "_main" || got[0].DynSymbolTable.At(0).Value != 0x2000 {
		t.Fatal("indirect symbol lost")
	}
}

func TestBadMagic(t *testing.T) {
	p := make([]byte, 80)
	copy(p, "NOPE")
	if _, _, err := Read(bytes.NewReader(p)); errors.Cause(err) != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}
