package loader

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

// StubSize is the size of one __symbol_stub entry on i386 (a 6-byte
// indirect jmp). Indirect symbol n resolves to stubs+n*StubSize.
const StubSize = 6

type nlistHeader struct {
	Strx uint32
	Type uint8
	Sect uint8
	Desc uint16
}

func (p *objectParser) resolve() error {
	if p.symtab != nil {
		if err := p.readSymbols(); err != nil {
			return errors.Wrap(err, "failed to read symbol table")
		}
	}
	if p.indirect != nil {
		if err := p.readIndirect(); err != nil {
			return errors.Wrap(err, "failed to read indirect symbol table")
		}
	}
	for _, s := range p.obj.SortedSections() {
		if err := loadSectionData(p.c, s); err != nil {
			return errors.Wrapf(err, "failed to read %s", s.Name)
		}
	}
	resolveNames(p.obj)
	resolveIndirect(p.obj, StubSize)
	return nil
}

// readSymbols reads the nlist table. Names are filled in later from the
// string table.
func (p *objectParser) readSymbols() error {
	c, obj := p.c, p.obj
	start := obj.Offset + uint64(p.symtab.offset)
	c.Seek(start)
	table := &models.SymbolTable{}
	for i := uint32(0); i < p.symtab.count; i++ {
		var hdr nlistHeader
		if err := c.Unpack(&hdr); err != nil {
			return errors.Wrapf(err, "symbol %d", i)
		}
		value, err := c.Word(obj.WordSize)
		if err != nil {
			return errors.Wrapf(err, "symbol %d", i)
		}
		table.Add(models.SymbolEntry{
			Index: hdr.Strx,
			Value: value,
			Type:  hdr.Type,
			Sect:  hdr.Sect,
			Desc:  hdr.Desc,
		})
	}
	obj.SymbolTable = table
	obj.AddSection(&models.Section{
		Type:    models.SectionSymbolTable,
		Name:    "Symbol Table",
		Source:  lcSymtab.String(),
		Address: uint64(p.symtab.offset),
		Size:    c.Pos() - start,
		Offset:  start,
	})
	return nil
}

func (p *objectParser) readIndirect() error {
	c, obj := p.c, p.obj
	start := obj.Offset + uint64(p.indirect.offset)
	c.Seek(start)
	table := &models.SymbolTable{}
	for i := uint32(0); i < p.indirect.count; i++ {
		idx, err := c.U32()
		if err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
		table.Add(models.SymbolEntry{Index: idx})
	}
	obj.DynSymbolTable = table
	obj.AddSection(&models.Section{
		Type:    models.SectionDynamicSymbolTable,
		Name:    "Dynamic Symbol Table",
		Source:  lcDysymtab.String(),
		Address: uint64(p.indirect.offset),
		Size:    c.Pos() - start,
		Offset:  start,
	})
	return nil
}

func loadSectionData(c *models.Cursor, s *models.Section) error {
	if s.Size == 0 {
		return nil
	}
	c.Seek(s.Offset)
	data, err := c.Read(s.Size)
	if err != nil {
		return err
	}
	s.Data = data
	return nil
}

// resolveNames fills direct symbol names from the string table. An index
// past the end of the table yields an empty name.
func resolveNames(obj *models.BinaryObject) {
	strtab := obj.Section(models.SectionStringTable)
	if strtab == nil || obj.SymbolTable == nil {
		return
	}
	for i := 0; i < obj.SymbolTable.Len(); i++ {
		e := obj.SymbolTable.At(i)
		e.Name = stringAt(strtab.Data, e.Index)
	}
}

func stringAt(data []byte, idx uint32) string {
	if uint64(idx) >= uint64(len(data)) {
		return ""
	}
	return strings.ToValidUTF8(models.CString(data[idx:]), "\ufffd")
}

// resolveIndirect names each in-range indirect entry after its direct
// symbol and gives it the address of its stub.
func resolveIndirect(obj *models.BinaryObject, stubSize uint64) {
	stubs := obj.Section(models.SectionSymbolStubs)
	if stubs == nil || obj.DynSymbolTable == nil {
		return
	}
	nsyms := obj.SymbolTable.Len()
	for h := 0; h < obj.DynSymbolTable.Len(); h++ {
		e := obj.DynSymbolTable.At(h)
		if int64(e.Index) >= int64(nsyms) {
			continue
		}
		e.Name = obj.SymbolTable.At(int(e.Index)).Name
		e.Value = stubs.Address + uint64(h)*stubSize
	}
}
