package loader

import (
	"encoding/hex"
	"fmt"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

type machHeader struct {
	CpuType    uint32
	CpuSubType uint32
	FileType   uint32
	Ncmds      uint32
	Sizeofcmds uint32
	Flags      uint32
}

// tableRef is a symbol table location noted during the command pass and
// read once every command has been seen.
type tableRef struct {
	offset, count uint32
}

type objectParser struct {
	c   *models.Cursor
	obj *models.BinaryObject
	log log.Interface

	symtab   *tableRef
	indirect *tableRef
}

func newObjectParser(c *models.Cursor, offset, size uint64) *objectParser {
	obj := models.NewBinaryObject()
	obj.Offset = offset
	obj.SliceSize = size
	return &objectParser{
		c:   c,
		obj: obj,
		log: log.WithField("slice", fmt.Sprintf("%#x", offset)),
	}
}

// parse decodes the header and load commands of the slice at obj.Offset,
// then runs the resolver.
func (p *objectParser) parse() (*models.BinaryObject, error) {
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}
	return p.obj, nil
}

func (p *objectParser) readHeader() error {
	c, obj := p.c, p.obj
	c.Seek(obj.Offset)
	magic, err := c.U32()
	if err != nil {
		return errors.Wrap(err, "failed to read magic")
	}
	bits, endian, ok := objectMagic(magic)
	if !ok {
		return errors.Wrapf(ErrNotMachO, "bad object magic %#x", magic)
	}
	obj.WordSize = bits
	obj.Endian = endian
	c.SetOrder(endian.ByteOrder())

	var hdr machHeader
	if err := c.Unpack(&hdr); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	if bits == 64 {
		if err := c.Skip(4); err != nil {
			return errors.Wrap(err, "failed to read header")
		}
	}
	obj.RawCpuType = hdr.CpuType
	obj.RawCpuSubType = hdr.CpuSubType
	obj.RawFileType = hdr.FileType
	obj.Flags = hdr.Flags
	obj.CpuType = mapCpuType(hdr.CpuType)
	obj.CpuSubType = mapCpuSubType(hdr.CpuSubType)
	obj.FileType = mapFileType(hdr.FileType)
	p.log.WithFields(log.Fields{
		"cpu":   obj.CpuType,
		"bits":  bits,
		"type":  obj.FileType,
		"ncmds": hdr.Ncmds,
	}).Debug("header")

	for i := 0; i < int(hdr.Ncmds); i++ {
		if err := p.readLoadCommand(i); err != nil {
			return err
		}
	}
	return nil
}

func (p *objectParser) readLoadCommand(index int) error {
	c := p.c
	start := c.Pos()
	raw, err := c.U32()
	if err != nil {
		return errors.Wrapf(err, "failed to read load command %d", index)
	}
	size, err := c.U32()
	if err != nil {
		return errors.Wrapf(err, "failed to read load command %d", index)
	}
	cmd := loadCmd(raw)
	if size < 8 {
		return errors.Wrapf(ErrMalformedCommand, "%s (command %d at %#x) has size %d", cmd, index, start, size)
	}
	p.log.WithFields(log.Fields{
		"cmd":    cmd,
		"size":   size,
		"offset": fmt.Sprintf("%#x", start),
	}).Debug("load command")

	parsed, err := p.readCommand(cmd, start, size)
	if err != nil {
		if uerr, ok := err.(*UnsupportedCommandError); ok {
			uerr.Index = index
			return uerr
		}
		return errors.Wrapf(err, "%s (command %d at %#x)", cmd, index, start)
	}
	end := start + uint64(size)
	if c.Pos() > end {
		return errors.Wrapf(ErrMalformedCommand, "%s (command %d at %#x) reads %d bytes past cmdsize %d", cmd, index, start, c.Pos()-end, size)
	}
	p.apply(parsed)
	p.obj.Commands = append(p.obj.Commands, models.LoadCommand{
		Cmd:    raw,
		Name:   cmd.String(),
		Size:   size,
		Offset: start,
	})

	if c.Pos() != end {
		p.log.Debugf("%s consumed %d bytes, cmdsize is %d", cmd, int64(c.Pos()-start), size)
	}
	c.Seek(end)
	return nil
}

// readCommand decodes the body of one load command. The cursor sits just
// past the type and size fields.
func (p *objectParser) readCommand(cmd loadCmd, start uint64, size uint32) (command, error) {
	c := p.c
	switch cmd {
	case lcSegment, lcSegment64:
		return p.readSegment(cmd)
	case lcDyldInfo, lcDyldInfoOnly:
		v := &dyldInfoCmd{Cmd: cmd}
		return v, c.Unpack(v)
	case lcSymtab:
		v := &symtabCmd{}
		return v, c.Unpack(v)
	case lcDysymtab:
		v := &dysymtabCmd{}
		return v, c.Unpack(v)
	case lcLoadDylib, lcIdDylib, lcLoadWeakDylib:
		v := &dylibCmd{Cmd: cmd}
		if err := c.Unpack(v); err != nil {
			return nil, err
		}
		path, err := p.readPath(start, size, v.NameOff)
		v.Path = path
		return v, err
	case lcLoadDylinker, lcDyldEnvironment, lcRpath:
		v := &pathCmd{Cmd: cmd}
		if err := c.Unpack(v); err != nil {
			return nil, err
		}
		path, err := p.readPath(start, size, v.NameOff)
		v.Path = path
		return v, err
	case lcUUID:
		v := &uuidCmd{}
		return v, c.Unpack(v)
	case lcVersionMinMacOS, lcVersionMinIOS, lcVersionMinTVOS, lcVersionMinWatch:
		v := &versionMinCmd{Cmd: cmd}
		return v, c.Unpack(v)
	case lcBuildVersion:
		v := &buildVersionCmd{}
		return v, c.Unpack(v)
	case lcSourceVersion:
		v := &sourceVersionCmd{}
		return v, c.Unpack(v)
	case lcMain:
		v := &entryPointCmd{}
		return v, c.Unpack(v)
	case lcFunctionStarts, lcDylibCodeSignDrs, lcSegmentSplitInfo, lcCodeSignature,
		lcDyldExportsTrie, lcDyldChainedFixup:
		v := &linkeditCmd{Cmd: cmd}
		return v, c.Unpack(v)
	case lcDataInCode:
		v := &dataInCodeCmd{}
		return v, c.Unpack(v)
	case lcThread, lcUnixThread:
		v := &threadCmd{Cmd: cmd}
		if err := c.Unpack(v); err != nil {
			return nil, err
		}
		// flavor*count bytes of register state, clamped to the command
		n, end := uint64(v.Flavor)*uint64(v.Count), start+uint64(size)
		if c.Pos() >= end {
			n = 0
		} else if n > end-c.Pos() {
			n = end - c.Pos()
		}
		return v, c.Skip(n)
	}
	return nil, &UnsupportedCommandError{Cmd: uint32(cmd), Offset: start}
}

// readPath reads the NUL-terminated string stored at nameOff within the
// command and discards the rest of the command.
func (p *objectParser) readPath(start uint64, size, nameOff uint32) (string, error) {
	if nameOff > size {
		return "", errors.Wrapf(ErrMalformedCommand, "name offset %d past command size %d", nameOff, size)
	}
	p.c.Seek(start + uint64(nameOff))
	data, err := p.c.Read(uint64(size - nameOff))
	if err != nil {
		return "", err
	}
	return models.CString(data), nil
}

func (p *objectParser) readSegment(cmd loadCmd) (*segmentCmd, error) {
	c := p.c
	v := &segmentCmd{Cmd: cmd}
	// layout follows the header's word size, whichever segment command it is
	wide := p.obj.WordSize == 64
	if wide {
		var seg segment64
		if err := c.Unpack(&seg); err != nil {
			return nil, err
		}
		v.Segment = models.Segment{
			Name: models.CString(seg.Name[:]),
			Addr: seg.Addr, Memsz: seg.Memsz,
			Offset: seg.Offset, Filesz: seg.Filesz,
			MaxProt: seg.MaxProt, Prot: seg.Prot,
			Nsect: seg.Nsect, Flags: seg.Flags,
		}
	} else {
		var seg segment32
		if err := c.Unpack(&seg); err != nil {
			return nil, err
		}
		v.Segment = models.Segment{
			Name: models.CString(seg.Name[:]),
			Addr: uint64(seg.Addr), Memsz: uint64(seg.Memsz),
			Offset: uint64(seg.Offset), Filesz: uint64(seg.Filesz),
			MaxProt: seg.MaxProt, Prot: seg.Prot,
			Nsect: seg.Nsect, Flags: seg.Flags,
		}
	}
	for i := uint32(0); i < v.Segment.Nsect; i++ {
		var sh sectionHeader
		if wide {
			var s section64
			if err := c.Unpack(&s); err != nil {
				return nil, errors.Wrapf(err, "section %d", i)
			}
			sh = sectionHeader{models.CString(s.Name[:]), models.CString(s.Seg[:]), s.Addr, s.Size, s.Offset}
		} else {
			var s section32
			if err := c.Unpack(&s); err != nil {
				return nil, errors.Wrapf(err, "section %d", i)
			}
			sh = sectionHeader{models.CString(s.Name[:]), models.CString(s.Seg[:]), uint64(s.Addr), uint64(s.Size), s.Offset}
		}
		v.Sections = append(v.Sections, sh)
	}
	return v, nil
}

// textSections maps the __TEXT section names that become typed sections.
var textSections = map[string]struct {
	typ  models.SectionType
	name string
}{
	"__text":          {models.SectionProgram, "Program"},
	"__symbol_stub":   {models.SectionSymbolStubs, "Symbol Stubs"},
	"__stubs":         {models.SectionSymbolStubs, "Symbol Stubs"},
	"__cstring":       {models.SectionCString, "C-Strings"},
	"__objc_methname": {models.SectionObjcMethodNames, "ObjC Method Names"},
}

func (p *objectParser) apply(cmd command) {
	obj := p.obj
	switch c := cmd.(type) {
	case *segmentCmd:
		obj.Segments = append(obj.Segments, c.Segment)
		if c.Segment.Name != "__TEXT" {
			return
		}
		for _, s := range c.Sections {
			known, ok := textSections[s.Name]
			if !ok {
				continue
			}
			obj.AddSection(&models.Section{
				Type:    known.typ,
				Name:    known.name,
				Source:  s.Seg + "," + s.Name,
				Address: s.Addr,
				Size:    s.Size,
				Offset:  obj.Offset + uint64(s.Offset),
			})
		}
	case *symtabCmd:
		p.symtab = &tableRef{c.Symoff, c.Nsyms}
		obj.AddSection(&models.Section{
			Type:    models.SectionStringTable,
			Name:    "String Table",
			Source:  lcSymtab.String(),
			Address: uint64(c.Stroff),
			Size:    uint64(c.Strsize),
			Offset:  obj.Offset + uint64(c.Stroff),
		})
	case *dysymtabCmd:
		p.indirect = &tableRef{c.Indirectsymoff, c.Nindirectsyms}
	case *linkeditCmd:
		if typ, ok := linkeditSections[c.Cmd]; ok {
			name := "Function Starts"
			if typ == models.SectionCodeSignature {
				name = "Code Signature"
			}
			obj.AddSection(&models.Section{
				Type:    typ,
				Name:    name,
				Source:  c.Cmd.String(),
				Address: uint64(c.Off),
				Size:    uint64(c.Size),
				Offset:  obj.Offset + uint64(c.Off),
			})
		}
	case *dylibCmd:
		obj.Dylibs = append(obj.Dylibs, models.Dylib{
			Kind:           dylibKinds[c.Cmd],
			Path:           c.Path,
			Timestamp:      c.Timestamp,
			CurrentVersion: models.Version(c.CurrentVersion),
			CompatVersion:  models.Version(c.CompatVersion),
		})
	case *pathCmd:
		switch c.Cmd {
		case lcLoadDylinker:
			obj.Dylinker = c.Path
		case lcRpath:
			obj.Rpaths = append(obj.Rpaths, c.Path)
		}
	case *uuidCmd:
		obj.UUID = formatUUID(c.UUID)
	case *versionMinCmd:
		obj.MinVersion = models.Version(c.Version)
		obj.SDKVersion = models.Version(c.SDK)
	case *buildVersionCmd:
		obj.MinVersion = models.Version(c.MinOS)
		obj.SDKVersion = models.Version(c.SDK)
	case *sourceVersionCmd:
		obj.SourceVersion = models.SourceVersion(c.Version)
	case *entryPointCmd:
		obj.Entry = &models.EntryPoint{Offset: c.EntryOff, StackSize: c.StackSize}
	}
}

func formatUUID(u [16]byte) string {
	s := hex.EncodeToString(u[:])
	return fmt.Sprintf("%s-%s-%s-%s-%s", s[:8], s[8:12], s[12:16], s[16:20], s[20:])
}
