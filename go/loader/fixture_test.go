package loader

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
)

var (
	textData  = bytes.Repeat([]byte{0x90}, 0x10)
	stubData  = bytes.Repeat([]byte{0xff, 0x25, 0, 0, 0, 0}, 3)
	cstrData  = []byte("foo\x00bar\x00")
	strtabRaw = []byte("\x00_main\x00_helper\x00_puts\x00\x00\x00\x00")
)

// sampleObject builds an executable with a __TEXT segment, a symbol table
// of three symbols and an indirect table of {2, 0, 9}.
func sampleObject(bits int, order binary.ByteOrder) *mock.Object {
	cpu, sub := uint32(mock.CpuX86), uint32(3)
	if bits == 64 {
		cpu, sub = mock.CpuX86_64, 0x80000003
	}
	o := mock.NewObject(bits, order, cpu, sub, mock.FileExecute)
	o.Segment("__TEXT",
		mock.Section{Seg: "__TEXT", Name: "__text", Addr: 0x1000, Size: 0x10, Offset: 0x400},
		mock.Section{Seg: "__TEXT", Name: "__stubs", Addr: 0x2000, Size: 0x12, Offset: 0x410},
		mock.Section{Seg: "__TEXT", Name: "__cstring", Addr: 0x3000, Size: 8, Offset: 0x430},
		mock.Section{Seg: "__TEXT", Name: "__const", Addr: 0x3100, Size: 4, Offset: 0x440},
	)
	o.Segment("__DATA",
		mock.Section{Seg: "__DATA", Name: "__cstring", Addr: 0x4000, Size: 4, Offset: 0x999},
	)
	o.Symtab(0x500, 3, 0x600, uint32(len(strtabRaw)))
	o.Dysymtab(0x580, 3)

	var syms []byte
	syms = append(syms, o.Nlist(1, 0x0f, 1, 0, 0x1000)...)
	syms = append(syms, o.Nlist(7, 0x0f, 1, 0, 0x1008)...)
	syms = append(syms, o.Nlist(15, 0x01, 0, 0, 0)...)

	o.Put(0x400, textData)
	o.Put(0x410, stubData)
	o.Put(0x430, cstrData)
	o.Put(0x500, syms)
	o.Put(0x580, o.Pack(uint32(2), uint32(0), uint32(9)))
	o.Put(0x600, strtabRaw)
	return o
}

func parseBytes(p []byte, opts ...Option) ([]*models.BinaryObject, error) {
	return Parse(bytes.NewReader(p), int64(len(p)), opts...)
}
