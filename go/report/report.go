// Package report renders parsed objects as text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/cpu"
	"github.com/lunixbochs/binspect/go/loader"
	"github.com/lunixbochs/binspect/go/models"
)

var ErrNoSection = errors.New("section not present")

type Report struct {
	Obj    *models.BinaryObject
	Arch   int
	Config *models.Config

	paint models.Painter
	index *models.SymbolIndex
}

func New(obj *models.BinaryObject, arch int, config *models.Config) *Report {
	if config == nil {
		config = models.DefaultConfig()
	}
	return &Report{
		Obj:    obj,
		Arch:   arch,
		Config: config,
		paint:  models.Painter{Enabled: config.Color},
	}
}

// Index returns the address index over direct symbols and resolved stubs.
func (r *Report) Index() *models.SymbolIndex {
	if r.index == nil {
		r.index = models.NewSymbolIndex(r.Obj, loader.StubSize)
	}
	return r.index
}

func (r *Report) name(s string) string {
	if r.Config.Demangle {
		return models.Demangle(s)
	}
	return s
}

func (r *Report) addr(v uint64) string {
	return r.paint.Paint(fmt.Sprintf("%#x", v), models.StyleAddr)
}

func (r *Report) heading(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, r.paint.Paint(fmt.Sprintf(format, a...), models.StyleHeading))
}

// Section looks up a section by type and fails if it was not registered.
func (r *Report) Section(t models.SectionType) (*models.Section, error) {
	s := r.Obj.Section(t)
	if s == nil {
		return nil, errors.Wrapf(ErrNoSection, "arch %d: %s", r.Arch, t)
	}
	return s, nil
}

func (r *Report) Info(w io.Writer) error {
	obj := r.Obj
	r.heading(w, "arch %d: %s", r.Arch, obj)
	row := func(key, format string, a ...interface{}) {
		fmt.Fprintf(w, "  %s %s\n", r.paint.Pad(key, models.StyleName, 10), fmt.Sprintf(format, a...))
	}
	row("offset", "%#x", obj.Offset)
	if obj.SliceSize > 0 {
		row("size", "%#x", obj.SliceSize)
	}
	row("cpu", "%#x subtype %#x", obj.RawCpuType, obj.RawCpuSubType)
	row("flags", "%#x", obj.Flags)
	if obj.UUID != "" {
		row("uuid", "%s", obj.UUID)
	}
	if obj.MinVersion != 0 || obj.SDKVersion != 0 {
		row("min os", "%s (sdk %s)", obj.MinVersion, obj.SDKVersion)
	}
	if obj.SourceVersion != 0 {
		row("source", "%s", obj.SourceVersion)
	}
	if obj.Entry != nil {
		row("entry", "offset %#x stack %#x", obj.Entry.Offset, obj.Entry.StackSize)
	}
	if obj.Dylinker != "" {
		row("dylinker", "%s", obj.Dylinker)
	}
	for _, path := range obj.Rpaths {
		row("rpath", "%s", path)
	}
	row("commands", "%d", len(obj.Commands))
	row("segments", "%d", len(obj.Segments))
	row("sections", "%d", len(obj.Sections))
	row("symbols", "%d (%d indirect)", obj.SymbolTable.Len(), obj.DynSymbolTable.Len())
	row("dylibs", "%d", len(obj.Dylibs))
	return nil
}

func (r *Report) Commands(w io.Writer) error {
	r.heading(w, "arch %d: %d load commands", r.Arch, len(r.Obj.Commands))
	for i, c := range r.Obj.Commands {
		fmt.Fprintf(w, "  %3d %s %s size %d\n", i, r.addr(c.Offset), r.paint.Pad(c.Name, models.StyleName, 24), c.Size)
	}
	return nil
}

func (r *Report) Segments(w io.Writer) error {
	r.heading(w, "arch %d: %d segments", r.Arch, len(r.Obj.Segments))
	for _, s := range r.Obj.Segments {
		fmt.Fprintf(w, "  %s addr %s memsz %#x off %#x filesz %#x prot %d/%d nsect %d\n",
			r.paint.Pad(s.Name, models.StyleName, 16), r.addr(s.Addr), s.Memsz, s.Offset, s.Filesz, s.Prot, s.MaxProt, s.Nsect)
	}
	return nil
}

func (r *Report) Sections(w io.Writer) error {
	sections := r.Obj.SortedSections()
	r.heading(w, "arch %d: %d sections", r.Arch, len(sections))
	for _, s := range sections {
		fmt.Fprintf(w, "  %s %s addr %s size %#x off %#x (%s)\n",
			r.paint.Pad(s.Type.String(), models.StyleName, 14), r.paint.Pad(s.Name, "", 20),
			r.addr(s.Address), s.Size, s.Offset, s.Source)
	}
	return nil
}

func (r *Report) Dylibs(w io.Writer) error {
	r.heading(w, "arch %d: %d dylibs", r.Arch, len(r.Obj.Dylibs))
	for _, d := range r.Obj.Dylibs {
		fmt.Fprintf(w, "  %-5s %s (current %s, compat %s)\n", d.Kind, r.paint.Paint(d.Path, models.StyleName), d.CurrentVersion, d.CompatVersion)
	}
	return nil
}

type SymbolOptions struct {
	// Filter keeps symbols whose name contains it.
	Filter  string
	Dynamic bool
	Sort    bool
}

func (r *Report) Symbols(w io.Writer, opts SymbolOptions) error {
	table, kind := r.Obj.SymbolTable, "symbols"
	if opts.Dynamic {
		table, kind = r.Obj.DynSymbolTable, "indirect symbols"
	}
	type row struct {
		i int
		e models.SymbolEntry
	}
	var rows []row
	for i, e := range table.Entries() {
		if opts.Filter == "" || strings.Contains(e.Name, opts.Filter) {
			rows = append(rows, row{i, e})
		}
	}
	if opts.Sort {
		sort.SliceStable(rows, func(i, j int) bool { return sortorder.NaturalLess(rows[i].e.Name, rows[j].e.Name) })
	}
	r.heading(w, "arch %d: %d %s", r.Arch, len(rows), kind)
	width := r.Obj.WordSize / 4
	for _, row := range rows {
		e := row.e
		value := r.paint.Paint(fmt.Sprintf("%0*x", width, e.Value), models.StyleAddr)
		if opts.Dynamic {
			fmt.Fprintf(w, "  %5d %s idx %-5d %s\n", row.i, value, e.Index, r.paint.Paint(r.name(e.Name), models.StyleName))
		} else {
			fmt.Fprintf(w, "  %5d %s %02x %2d %04x %s\n", row.i, value, e.Type, e.Sect, e.Desc, r.paint.Paint(r.name(e.Name), models.StyleName))
		}
	}
	return nil
}

// Stubs lists the indirect symbols that resolved to a stub address.
func (r *Report) Stubs(w io.Writer) error {
	if _, err := r.Section(models.SectionSymbolStubs); err != nil {
		return err
	}
	var n int
	for _, e := range r.Obj.DynSymbolTable.Entries() {
		if e.Value != 0 {
			n++
		}
	}
	r.heading(w, "arch %d: %d stubs", r.Arch, n)
	for _, e := range r.Obj.DynSymbolTable.Entries() {
		if e.Value != 0 {
			fmt.Fprintf(w, "  %s %s\n", r.addr(e.Value), r.paint.Paint(r.name(e.Name), models.StyleName))
		}
	}
	return nil
}

// Strings prints each NUL-terminated string in a string-bearing section.
func (r *Report) Strings(w io.Writer, t models.SectionType) error {
	switch t {
	case models.SectionCString, models.SectionObjcMethodNames, models.SectionStringTable:
	default:
		return errors.Errorf("%s does not hold strings", t)
	}
	s, err := r.Section(t)
	if err != nil {
		return err
	}
	r.heading(w, "arch %d: %s", r.Arch, s.Name)
	data := s.Data
	for off := 0; off < len(data); {
		end := off
		for end < len(data) && data[end] != 0 {
			end++
		}
		if end > off {
			fmt.Fprintf(w, "  %s %s\n", r.addr(s.Address+uint64(off)), models.Repr(data[off:end], r.Config.Strsize))
		}
		off = end + 1
	}
	return nil
}

// Hexdump dumps n bytes of a section starting off bytes in. n <= 0 dumps
// to the end.
func (r *Report) Hexdump(w io.Writer, t models.SectionType, off uint64, n int) error {
	s, err := r.Section(t)
	if err != nil {
		return err
	}
	lines, err := s.Dump(off, n, r.Obj.WordSize)
	if err != nil {
		return err
	}
	r.heading(w, "arch %d: %s", r.Arch, s.Name)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

// Disas disassembles count instructions of a code section starting at
// addr, or at the section start when addr is zero. count <= 0 disassembles
// the whole section.
func (r *Report) Disas(w io.Writer, t models.SectionType, addr uint64, count int) error {
	s, err := r.Section(t)
	if err != nil {
		return err
	}
	if addr == 0 {
		addr = s.Address
	}
	if !s.Contains(addr) && !(s.Size == 0 && addr == s.Address) {
		return errors.Errorf("address %#x outside %s", addr, s.Name)
	}
	symname := r.Index().SymName
	dis, err := cpu.New(r.Config.DisBackend, r.Config.DisSyntax, r.Obj, symname)
	if err != nil {
		return err
	}
	ins, err := cpu.Take(dis, s.Data[addr-s.Address:], addr, count)
	if err != nil {
		return err
	}
	r.heading(w, "arch %d: %s", r.Arch, s.Name)
	fmt.Fprintln(w, models.FormatIns(ins, r.Config.DisBytes, func(a uint64) (string, uint64) {
		name, base := symname(a)
		return r.name(name), base
	}))
	return nil
}
