package mock

// Sample returns a small little-endian x86-64 executable: a __text of
// push/mov/pop/ret at 0x1000, one jmp stub at 0x2000 bound to _puts, and
// two C strings at 0x3000.
func Sample() []byte {
	o := NewObject(64, nil, CpuX86_64, 3, FileExecute)
	o.Segment("__TEXT",
		Section{Seg: "__TEXT", Name: "__text", Addr: 0x1000, Size: 6, Offset: 0x400},
		Section{Seg: "__TEXT", Name: "__stubs", Addr: 0x2000, Size: 6, Offset: 0x410},
		Section{Seg: "__TEXT", Name: "__cstring", Addr: 0x3000, Size: 13, Offset: 0x420},
	)
	o.Symtab(0x500, 2, 0x600, 16)
	o.Dysymtab(0x580, 1)
	o.Put(0x400, []byte{0x55, 0x48, 0x89, 0xe5, 0x5d, 0xc3})
	o.Put(0x410, []byte{0xff, 0x25, 0, 0, 0, 0})
	o.Put(0x420, []byte("hello\x00\x00wor\nd\x00"))
	o.Put(0x500, append(o.Nlist(1, 0x0f, 1, 0, 0x1000), o.Nlist(7, 0x01, 0, 0, 0)...))
	o.Put(0x580, o.Pack(uint32(1)))
	o.Put(0x600, []byte("\x00_main\x00_puts\x00\x00\x00\x00"))
	return o.Bytes()
}
