package lua

import (
	"strconv"
	"strings"

	"github.com/lunixbochs/luaish"
	"github.com/lunixbochs/luaish-luar"

	"github.com/lunixbochs/binspect/go/cpu"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

func (L *LuaRepl) printFunc(_ *lua.LState) int {
	L.PrettyPrint(L.getArgs(), false)
	return 0
}

func (L *LuaRepl) intFunc(_ *lua.LState) int {
	switch v := L.CheckAny(1).(type) {
	case lua.LString:
		n, err := strconv.ParseUint(string(v), 0, 64)
		if err == nil {
			L.Push(lua.LInt(n))
			return 1
		}
	case lua.LFloat:
		L.Push(lua.LInt(v))
		return 1
	case lua.LInt:
		L.Push(v)
		return 1
	}
	return 0
}

func (L *LuaRepl) loadBindings() error {
	L.SetGlobal("print", L.NewFunction(L.printFunc))
	L.SetGlobal("int", L.NewFunction(L.intFunc))
	if err := L.DoString(builtinsRc); err != nil {
		return err
	}

	b := &binding{L}
	L.SetGlobal("bin", L.SetFuncs(L.NewTable(), b.Exports()))
	sect := L.NewTable()
	for t := models.SectionProgram; t <= models.SectionDynamicSymbolTable; t++ {
		sect.RawSetString(t.String(), lua.LString(t.String()))
	}
	L.SetGlobal("sect", sect)
	if len(L.objs) > 0 {
		L.Select(0)
	}

	if err := L.DoString(sugarRc); err != nil {
		return err
	} else if err := L.DoString(cmdRc); err != nil {
		return err
	}
	return nil
}

type binding struct {
	L *LuaRepl
}

func (b *binding) Exports() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"arches": b.Arches,
		"select": b.Select,
		"object": b.Object,

		"info":     b.Info,
		"commands": b.Commands,
		"sections": b.Sections,
		"section":  b.Section,

		"symbols":  b.Symbols,
		"indirect": b.Indirect,
		"sym":      b.Sym,

		"dis":    b.Dis,
		"report": b.Report,
	}
}

func (b *binding) checkErr(err error) {
	if err != nil {
		b.L.RaiseError(err.Error())
	}
}

func (b *binding) checkSection(L *lua.LState, n int) models.SectionType {
	name := L.CheckString(n)
	t, ok := models.ParseSectionType(name)
	if !ok {
		L.ArgError(n, "unknown section type "+strconv.Quote(name))
	}
	return t
}

func (b *binding) Arches(L *lua.LState) int {
	tbl := L.NewTable()
	for _, obj := range b.L.objs {
		tbl.Append(lua.LString(obj.String()))
	}
	L.Push(tbl)
	return 1
}

func (b *binding) Select(L *lua.LState) int {
	b.checkErr(b.L.Select(L.CheckInt(1)))
	return 0
}

// Object exposes the current BinaryObject itself through reflection.
func (b *binding) Object(L *lua.LState) int {
	L.Push(luar.New(L, b.L.obj()))
	return 1
}

func (b *binding) Info(L *lua.LState) int {
	obj := b.L.obj()
	tbl := L.NewTable()
	tbl.RawSetString("bits", lua.LInt(obj.WordSize))
	tbl.RawSetString("endian", lua.LString(obj.Endian.String()))
	tbl.RawSetString("cpu", lua.LString(obj.CpuType.String()))
	tbl.RawSetString("subtype", lua.LString(obj.CpuSubType.String()))
	tbl.RawSetString("filetype", lua.LString(obj.FileType.String()))
	tbl.RawSetString("flags", lua.LInt(obj.Flags))
	tbl.RawSetString("offset", lua.LInt(obj.Offset))
	tbl.RawSetString("size", lua.LInt(obj.SliceSize))
	if obj.UUID != "" {
		tbl.RawSetString("uuid", lua.LString(obj.UUID))
	}
	if obj.Dylinker != "" {
		tbl.RawSetString("dylinker", lua.LString(obj.Dylinker))
	}
	if obj.MinVersion != 0 {
		tbl.RawSetString("minos", lua.LString(obj.MinVersion.String()))
	}
	if obj.Entry != nil {
		tbl.RawSetString("entry", lua.LInt(obj.Entry.Offset))
	}
	L.Push(tbl)
	return 1
}

func (b *binding) Commands(L *lua.LState) int {
	tbl := L.NewTable()
	for _, c := range b.L.obj().Commands {
		cmd := L.NewTable()
		cmd.RawSetString("cmd", lua.LInt(c.Cmd))
		cmd.RawSetString("name", lua.LString(c.Name))
		cmd.RawSetString("size", lua.LInt(c.Size))
		cmd.RawSetString("offset", lua.LInt(c.Offset))
		tbl.Append(cmd)
	}
	L.Push(tbl)
	return 1
}

func sectionToLua(L *lua.LState, s *models.Section) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(s.Type.String()))
	tbl.RawSetString("name", lua.LString(s.Name))
	tbl.RawSetString("source", lua.LString(s.Source))
	tbl.RawSetString("addr", lua.LInt(s.Address))
	tbl.RawSetString("size", lua.LInt(s.Size))
	tbl.RawSetString("offset", lua.LInt(s.Offset))
	return tbl
}

func (b *binding) Sections(L *lua.LState) int {
	tbl := L.NewTable()
	for _, s := range b.L.obj().SortedSections() {
		tbl.Append(sectionToLua(L, s))
	}
	L.Push(tbl)
	return 1
}

// Section returns the described section and its bytes, or nil if the
// object has no section of that type.
func (b *binding) Section(L *lua.LState) int {
	s := b.L.obj().Section(b.checkSection(L, 1))
	if s == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(sectionToLua(L, s))
	L.Push(lua.LString(s.Data))
	return 2
}

func symbolsToLua(L *lua.LState, table *models.SymbolTable, filter string) *lua.LTable {
	tbl := L.NewTable()
	for _, e := range table.Entries() {
		if filter != "" && !strings.Contains(e.Name, filter) {
			continue
		}
		sym := L.NewTable()
		sym.RawSetString("index", lua.LInt(e.Index))
		sym.RawSetString("name", lua.LString(e.Name))
		sym.RawSetString("value", lua.LInt(e.Value))
		sym.RawSetString("type", lua.LInt(e.Type))
		sym.RawSetString("sect", lua.LInt(e.Sect))
		sym.RawSetString("desc", lua.LInt(e.Desc))
		tbl.Append(sym)
	}
	return tbl
}

func (b *binding) Symbols(L *lua.LState) int {
	L.Push(symbolsToLua(L, b.L.obj().SymbolTable, L.OptString(1, "")))
	return 1
}

func (b *binding) Indirect(L *lua.LState) int {
	L.Push(symbolsToLua(L, b.L.obj().DynSymbolTable, L.OptString(1, "")))
	return 1
}

// Sym returns the symbol covering an address and its start, or nil.
func (b *binding) Sym(L *lua.LState) int {
	name, base := b.L.report().Index().SymName(L.CheckUint64(1))
	if name == "" {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(name))
	L.Push(lua.LInt(base))
	return 2
}

func disToLua(L *lua.LState, dis []models.Ins) *lua.LTable {
	tbl := L.NewTable()
	for _, ins := range dis {
		t := L.NewTable()
		t.RawSetString("addr", lua.LInt(ins.Addr()))
		t.RawSetString("bytes", lua.LString(ins.Bytes()))
		t.RawSetString("name", lua.LString(ins.Mnemonic()))
		t.RawSetString("op_str", lua.LString(ins.OpStr()))
		tbl.Append(t)
	}
	return tbl
}

// Dis decodes count instructions at addr, which must fall in the program
// or stub section.
func (b *binding) Dis(L *lua.LState) int {
	r := b.L.report()
	var s *models.Section
	addr, count := optUint64(L, 1), L.OptInt(2, b.L.config.DisCount)
	for _, t := range []models.SectionType{models.SectionProgram, models.SectionSymbolStubs} {
		if cand := r.Obj.Section(t); cand != nil && (addr == 0 || cand.Contains(addr)) {
			s = cand
			break
		}
	}
	if s == nil {
		L.RaiseError("no code section at %#x", addr)
	}
	if addr == 0 {
		addr = s.Address
	}
	dis, err := cpu.New(b.L.config.DisBackend, b.L.config.DisSyntax, r.Obj, r.Index().SymName)
	b.checkErr(err)
	ins, err := cpu.Take(dis, s.Data[addr-s.Address:], addr, count)
	b.checkErr(err)
	L.Push(disToLua(L, ins))
	return 1
}

// Report prints one of the text reports for the current architecture.
func (b *binding) Report(L *lua.LState) int {
	r, w := b.L.report(), b.L.Writer
	var err error
	switch kind := L.CheckString(1); kind {
	case "info":
		err = r.Info(w)
	case "commands":
		err = r.Commands(w)
	case "segments":
		err = r.Segments(w)
	case "sections":
		err = r.Sections(w)
	case "dylibs":
		err = r.Dylibs(w)
	case "symbols", "indirect":
		err = r.Symbols(w, report.SymbolOptions{Filter: L.OptString(2, ""), Dynamic: kind == "indirect", Sort: L.OptBool(3, false)})
	case "stubs":
		err = r.Stubs(w)
	case "strings":
		err = r.Strings(w, b.checkSection(L, 2))
	case "hexdump":
		err = r.Hexdump(w, b.checkSection(L, 2), optUint64(L, 3), L.OptInt(4, 0))
	case "dis":
		err = r.Disas(w, b.checkSection(L, 2), optUint64(L, 3), L.OptInt(4, b.L.config.DisCount))
	default:
		L.ArgError(1, "unknown report "+strconv.Quote(kind))
	}
	b.checkErr(err)
	return 0
}

func optUint64(L *lua.LState, n int) uint64 {
	if L.Get(n) == lua.LNil {
		return 0
	}
	return L.CheckUint64(n)
}
