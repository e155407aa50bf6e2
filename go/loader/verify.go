package loader

import (
	"debug/macho"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

// Mismatch is one field where a parsed object disagrees with debug/macho.
type Mismatch struct {
	Arch   int
	Field  string
	Ours   string
	Theirs string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("arch %d: %s: got %s, debug/macho has %s", m.Arch, m.Field, m.Ours, m.Theirs)
}

type refFile struct {
	file   *macho.File
	offset uint64
}

func openReference(r io.ReaderAt) ([]refFile, func(), error) {
	if Detect(r) == KindFat {
		ff, err := macho.NewFatFile(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "debug/macho rejected the file")
		}
		files := make([]refFile, len(ff.Arches))
		for i, arch := range ff.Arches {
			files[i] = refFile{arch.File, uint64(arch.Offset)}
		}
		return files, func() { ff.Close() }, nil
	}
	f, err := macho.NewFile(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "debug/macho rejected the file")
	}
	return []refFile{{f, 0}}, func() { f.Close() }, nil
}

// Verify cross-checks objs, as returned by Parse(r), against the standard
// library's Mach-O reader.
func Verify(r io.ReaderAt, objs []*models.BinaryObject) ([]Mismatch, error) {
	refs, closer, err := openReference(r)
	if err != nil {
		return nil, err
	}
	defer closer()

	var out []Mismatch
	add := func(arch int, field string, ours, theirs interface{}) {
		a, b := fmt.Sprint(ours), fmt.Sprint(theirs)
		if a != b {
			out = append(out, Mismatch{arch, field, a, b})
		}
	}
	add(-1, "architectures", len(objs), len(refs))
	for i, obj := range objs {
		if i >= len(refs) {
			break
		}
		ref := refs[i]
		f := ref.file
		bits := 32
		if f.Magic == macho.Magic64 {
			bits = 64
		}
		add(i, "word size", obj.WordSize, bits)
		add(i, "offset", obj.Offset, ref.offset)
		add(i, "cpu type", fmt.Sprintf("%#x", obj.RawCpuType), fmt.Sprintf("%#x", uint32(f.Cpu)))
		add(i, "file type", obj.RawFileType, uint32(f.Type))
		add(i, "load commands", len(obj.Commands), len(f.Loads))

		if text := f.Section("__text"); text != nil && text.Seg == "__TEXT" {
			prog := obj.Section(models.SectionProgram)
			if prog == nil {
				add(i, "__text", "missing", "present")
			} else {
				add(i, "__text address", fmt.Sprintf("%#x", prog.Address), fmt.Sprintf("%#x", text.Addr))
				add(i, "__text size", fmt.Sprintf("%#x", prog.Size), fmt.Sprintf("%#x", text.Size))
				add(i, "__text offset", fmt.Sprintf("%#x", prog.Offset), fmt.Sprintf("%#x", ref.offset+uint64(text.Offset)))
			}
		}
		if f.Symtab != nil {
			add(i, "symbols", obj.SymbolTable.Len(), len(f.Symtab.Syms))
			entries := obj.SymbolTable.Entries()
			for j, sym := range f.Symtab.Syms {
				if j >= len(entries) {
					break
				}
				if entries[j].Name != sym.Name || entries[j].Value != sym.Value {
					add(i, fmt.Sprintf("symbol %d", j),
						fmt.Sprintf("%s@%#x", entries[j].Name, entries[j].Value),
						fmt.Sprintf("%s@%#x", sym.Name, sym.Value))
					break
				}
			}
		}
		if f.Dysymtab != nil {
			add(i, "indirect symbols", obj.DynSymbolTable.Len(), len(f.Dysymtab.IndirectSyms))
		}
	}
	return out, nil
}
