// Package mock builds small synthetic Mach-O images for tests.
package mock

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/lunixbochs/struc"
)

const (
	CpuX86    = 7
	CpuX86_64 = 7 | 0x01000000
	CpuARM64  = 12 | 0x01000000

	FileExecute = 2
)

type Section struct {
	Seg, Name string
	Addr      uint64
	Size      uint64
	Offset    uint32
}

type blob struct {
	off  uint64
	data []byte
}

// Object assembles one architecture: a header, the load commands in the
// order they were added, then data blobs at fixed offsets.
type Object struct {
	Bits     int
	Order    binary.ByteOrder
	CpuType  uint32
	SubType  uint32
	FileType uint32
	Flags    uint32

	cmds  [][]byte
	blobs []blob
}

func NewObject(bits int, order binary.ByteOrder, cpu, subtype, filetype uint32) *Object {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Object{Bits: bits, Order: order, CpuType: cpu, SubType: subtype, FileType: filetype}
}

func (o *Object) Magic() uint32 {
	switch {
	case o.Bits == 64 && o.Order == binary.BigEndian:
		return 0xfcafdeef
	case o.Bits == 64:
		return 0xfeedfacf
	case o.Order == binary.BigEndian:
		return 0xecafdeef
	default:
		return 0xfeedface
	}
}

// Pack encodes values back to back in the object's byte order. Structs go
// through struc; integers are written at their natural width.
func (o *Object) Pack(vals ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		var err error
		switch n := v.(type) {
		case uint8, uint16, uint32, uint64, []byte, [16]byte:
			err = binary.Write(&buf, o.Order, n)
		case string:
			buf.WriteString(n)
		default:
			err = struc.PackWithOrder(&buf, v, o.Order)
		}
		if err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func (o *Object) word(v uint64) interface{} {
	if o.Bits == 64 {
		return v
	}
	return uint32(v)
}

// Raw appends a load command with the given body. cmdsize covers the body
// plus the 8-byte command header.
func (o *Object) Raw(cmd uint32, body []byte) *Object {
	return o.RawSized(cmd, uint32(len(body)+8), body)
}

// RawSized appends a load command with an explicit cmdsize.
func (o *Object) RawSized(cmd, size uint32, body []byte) *Object {
	o.cmds = append(o.cmds, append(o.Pack(cmd, size), body...))
	return o
}

func name16(s string) [16]byte {
	var b [16]byte
	copy(b[:], s)
	return b
}

type section32 struct {
	Name, Seg                     [16]byte
	Addr, Size                    uint32
	Offset, Align, Reloff, Nreloc uint32
	Flags, Reserved1, Reserved2   uint32
}

type section64 struct {
	Name, Seg                              [16]byte
	Addr, Size                             uint64
	Offset, Align, Reloff, Nreloc          uint32
	Flags, Reserved1, Reserved2, Reserved3 uint32
}

// Segment appends LC_SEGMENT or LC_SEGMENT_64 to match the word size.
func (o *Object) Segment(name string, sects ...Section) *Object {
	if o.Bits == 64 {
		return o.SegmentAs(0x19, name, sects...)
	}
	return o.SegmentAs(0x1, name, sects...)
}

// SegmentAs appends a segment command of type cmd laid out for the
// object's word size.
func (o *Object) SegmentAs(cmd uint32, name string, sects ...Section) *Object {
	var body []byte
	n := uint32(len(sects))
	if o.Bits == 64 {
		body = o.Pack(name16(name), uint64(0), uint64(0), uint64(0), uint64(0), uint32(7), uint32(5), n, uint32(0))
		for _, s := range sects {
			body = append(body, o.Pack(&section64{
				Name: name16(s.Name), Seg: name16(s.Seg),
				Addr: s.Addr, Size: s.Size, Offset: s.Offset,
			})...)
		}
		return o.Raw(cmd, body)
	}
	body = o.Pack(name16(name), uint32(0), uint32(0), uint32(0), uint32(0), uint32(7), uint32(5), n, uint32(0))
	for _, s := range sects {
		body = append(body, o.Pack(&section32{
			Name: name16(s.Name), Seg: name16(s.Seg),
			Addr: uint32(s.Addr), Size: uint32(s.Size), Offset: s.Offset,
		})...)
	}
	return o.Raw(cmd, body)
}

func (o *Object) Symtab(symoff, nsyms, stroff, strsize uint32) *Object {
	return o.Raw(0x2, o.Pack(symoff, nsyms, stroff, strsize))
}

// Dysymtab appends LC_DYSYMTAB with only the indirect table filled in.
func (o *Object) Dysymtab(indirectOff, nindirect uint32) *Object {
	fields := make([]interface{}, 18)
	for i := range fields {
		fields[i] = uint32(0)
	}
	fields[12] = indirectOff
	fields[13] = nindirect
	return o.Raw(0xb, o.Pack(fields...))
}

// Nlist encodes one symbol table entry.
func (o *Object) Nlist(strx uint32, typ, sect uint8, desc uint16, value uint64) []byte {
	return o.Pack(strx, typ, sect, desc, o.word(value))
}

// Put places data at a fixed offset relative to the start of the object.
func (o *Object) Put(off uint64, data []byte) *Object {
	o.blobs = append(o.blobs, blob{off, data})
	return o
}

func (o *Object) Bytes() []byte {
	var sizeofcmds int
	for _, c := range o.cmds {
		sizeofcmds += len(c)
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, o.Magic())
	buf.Write(o.Pack(o.CpuType, o.SubType, o.FileType, uint32(len(o.cmds)), uint32(sizeofcmds), o.Flags))
	if o.Bits == 64 {
		buf.Write(o.Pack(uint32(0)))
	}
	for _, c := range o.cmds {
		buf.Write(c)
	}
	blobs := append([]blob(nil), o.blobs...)
	sort.SliceStable(blobs, func(i, j int) bool { return blobs[i].off < blobs[j].off })
	for _, b := range blobs {
		if uint64(buf.Len()) > b.off {
			panic(fmt.Sprintf("blob at %#x overlaps data ending at %#x", b.off, buf.Len()))
		}
		buf.Write(make([]byte, b.off-uint64(buf.Len())))
		buf.Write(b.data)
	}
	return buf.Bytes()
}

type FatSlice struct {
	CpuType, SubType uint32
	Offset           uint32
	Data             []byte
}

// Fat wraps slices in a universal header. magic is written as it reads in
// little-endian order; the count and descriptors are big-endian either way.
// Slice offsets must leave room for the header and must not overlap.
func Fat(magic uint32, slices ...FatSlice) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, magic)
	binary.Write(&buf, binary.BigEndian, uint32(len(slices)))
	for _, s := range slices {
		binary.Write(&buf, binary.BigEndian, []uint32{s.CpuType, s.SubType, s.Offset, uint32(len(s.Data)), 12})
	}
	for _, s := range slices {
		if uint32(buf.Len()) > s.Offset {
			panic(fmt.Sprintf("slice at %#x overlaps data ending at %#x", s.Offset, buf.Len()))
		}
		buf.Write(make([]byte, s.Offset-uint32(buf.Len())))
		buf.Write(s.Data)
	}
	return buf.Bytes()
}
