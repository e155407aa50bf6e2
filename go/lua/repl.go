package lua

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lunixbochs/luaish"
	"github.com/lunixbochs/luaish/parse"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

const InitScript = "init.lua"

// LuaRepl is a Lua state bound to a set of parsed architectures. One of
// them is current at a time; the bin.* functions act on it.
type LuaRepl struct {
	*lua.LState
	io.Writer

	objs    []*models.BinaryObject
	cur     int
	config  *models.Config
	reports []*report.Report
}

// NewRepl returns a Lua state with the bin module loaded and any init.lua
// from the config folders already run.
func NewRepl(objs []*models.BinaryObject, config *models.Config, o io.Writer) (*LuaRepl, error) {
	if config == nil {
		config = models.DefaultConfig()
	}
	repl := &LuaRepl{
		LState:  lua.NewState(),
		Writer:  o,
		objs:    objs,
		config:  config,
		reports: make([]*report.Report, len(objs)),
	}
	if err := repl.loadBindings(); err != nil {
		repl.Close()
		return nil, errors.Wrap(err, "failed to load lua bindings")
	}
	for _, dir := range models.ConfigDirs("lua").QueryFolders(configdir.All) {
		if data, err := dir.ReadFile(InitScript); err == nil {
			if err := repl.DoString(string(data)); err != nil {
				repl.Printf("error while running %s: %v\n", filepath.Join(dir.Path, InitScript), err)
			}
		}
	}
	return repl, nil
}

func (L *LuaRepl) SetOutput(w io.Writer) {
	L.Writer = w
}

// Select makes architecture i current.
func (L *LuaRepl) Select(i int) error {
	if i < 0 || i >= len(L.objs) {
		return errors.Errorf("arch %d out of range (%d arches)", i, len(L.objs))
	}
	L.cur = i
	L.SetGlobal("arch", lua.LInt(i))
	return nil
}

// Arch returns the index of the current architecture.
func (L *LuaRepl) Arch() int {
	return L.cur
}

func (L *LuaRepl) obj() *models.BinaryObject {
	if len(L.objs) == 0 {
		L.RaiseError("no architectures loaded")
	}
	return L.objs[L.cur]
}

func (L *LuaRepl) report() *report.Report {
	L.obj()
	if L.reports[L.cur] == nil {
		L.reports[L.cur] = report.New(L.objs[L.cur], L.cur, L.config)
	}
	return L.reports[L.cur]
}

func (L *LuaRepl) postRun(lv []lua.LValue) {
	// a bare function name calls it
	if len(lv) == 1 && lv[0].Type() == lua.LTFunction {
		if lv2, err := L.call(lv[0].(*lua.LFunction)); err != nil {
			L.Println(err)
			lv = nil
		} else {
			lv = lv2
		}
	}
	if len(lv) == 1 && lv[0] == lua.LNil {
	} else if len(lv) > 0 {
		L.PrettyPrint(lv, true)
	}

	switch len(lv) {
	case 0:
		L.SetGlobal("_", lua.LNil)
	case 1:
		L.SetGlobal("_", lv[0])
	default:
		tmp := L.NewTable()
		for i, v := range lv {
			L.RawSetInt(tmp, i+1, v)
		}
		L.SetGlobal("_", tmp)
	}
}

func (L *LuaRepl) loadstring(lines []string, recurse bool) (*lua.LFunction, error, bool) {
	code := strings.Join(lines, "\n")
	if len(lines) == 1 && recurse {
		code = "return " + code
	}
	fn, err := L.LoadString(code)
	if err == nil {
		return fn, nil, false
	}
	// an error at EOF means the chunk is unfinished
	if lerr, ok := err.(*lua.ApiError); ok {
		if perr, ok := lerr.Cause.(*parse.Error); ok {
			if perr.Pos.Line == parse.EOF {
				return nil, err, true
			} else if recurse {
				return L.loadstring(lines, false)
			}
		}
	}
	return nil, err, false
}

// Exec runs a chunk, returning true if more input is needed. Errors are
// printed to the repl output.
func (L *LuaRepl) Exec(lines []string) bool {
	if len(lines) == 0 {
		return true
	}
	fn, err, incomplete := L.loadstring(lines, true)
	if incomplete {
		return true
	}
	if err != nil {
		L.Println(err)
		return false
	}
	lv, err := L.call(fn)
	if err != nil {
		L.Println(err)
	}
	L.postRun(lv)
	return false
}

// Run executes a script file with arg set to args.
func (L *LuaRepl) Run(path string, args []string) error {
	argv := L.NewTable()
	L.RawSetInt(argv, 0, lua.LString(path))
	for i, a := range args {
		L.RawSetInt(argv, i+1, lua.LString(a))
	}
	L.SetGlobal("arg", argv)
	return errors.Wrapf(L.DoFile(path), "%s failed", path)
}

func (L *LuaRepl) getArgs() []lua.LValue {
	lv := make([]lua.LValue, L.GetTop())
	for i := range lv {
		lv[i] = L.CheckAny(i + 1)
	}
	return lv
}

func (L *LuaRepl) call(fn *lua.LFunction) ([]lua.LValue, error) {
	L.SetTop(0)
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, err
	}
	return L.getArgs(), nil
}

func (L *LuaRepl) Printf(f string, arg ...interface{}) {
	fmt.Fprintf(L, f, arg...)
}

func (L *LuaRepl) Println(arg ...interface{}) {
	fmt.Fprintln(L, arg...)
}
