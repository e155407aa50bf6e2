package repl

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/lua"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

// Command is a shell command. Run must be a func taking *Shell first and
// returning nothing or an error. Raw commands get the rest of the line as a
// single string argument.
type Command struct {
	Name     string
	Usage    string
	Desc     string
	Defaults []string
	Raw      bool
	Run      interface{}
}

var Commands = make(map[string]*Command)

var shellType = reflect.TypeOf(&Shell{})

func cmd(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.Type().NumIn() == 0 || fn.Type().In(0) != shellType {
		panic(fmt.Sprintf("Command.Run must be a func(*Shell, ...): got (%T) %#v\n", c.Run, c.Run))
	}
	Commands[c.Name] = c
	return c
}

var HelpCmd = cmd(&Command{
	Name: "help",
	Desc: "List commands.",
	Run: func(s *Shell) {
		names := make([]string, 0, len(Commands))
		for name := range Commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := Commands[name]
			s.Printf("  %-28s %s\n", c.Name+" "+c.Usage, c.Desc)
		}
	},
})

var QuitCmd = cmd(&Command{
	Name: "quit",
	Desc: "Leave the shell.",
	Run:  func(s *Shell) error { return ErrQuit },
})

var ArchesCmd = cmd(&Command{
	Name: "arches",
	Desc: "List architectures in the file.",
	Run: func(s *Shell) {
		for i, obj := range s.Objs {
			mark := " "
			if i == s.arch {
				mark = "*"
			}
			s.Printf("%s %d: %s\n", mark, i, obj)
		}
	},
})

var ArchCmd = cmd(&Command{
	Name:  "arch",
	Usage: "<n>",
	Desc:  "Select an architecture.",
	Run: func(s *Shell, n int) error {
		if n < 0 || n >= len(s.Objs) {
			return errors.Errorf("arch %d out of range (%d arches)", n, len(s.Objs))
		}
		s.arch = n
		if s.lua != nil {
			return s.lua.Select(n)
		}
		return nil
	},
})

var InfoCmd = cmd(&Command{
	Name: "info",
	Desc: "Show header and load command summary.",
	Run:  func(s *Shell) error { return s.withReport(func(r *report.Report) error { return r.Info(s) }) },
})

var LoadCmd = cmd(&Command{
	Name: "commands",
	Desc: "List load commands.",
	Run:  func(s *Shell) error { return s.withReport(func(r *report.Report) error { return r.Commands(s) }) },
})

var SegmentsCmd = cmd(&Command{
	Name: "segments",
	Desc: "List segments.",
	Run:  func(s *Shell) error { return s.withReport(func(r *report.Report) error { return r.Segments(s) }) },
})

var SectionsCmd = cmd(&Command{
	Name: "sections",
	Desc: "List typed sections.",
	Run:  func(s *Shell) error { return s.withReport(func(r *report.Report) error { return r.Sections(s) }) },
})

var DylibsCmd = cmd(&Command{
	Name: "dylibs",
	Desc: "List linked libraries.",
	Run:  func(s *Shell) error { return s.withReport(func(r *report.Report) error { return r.Dylibs(s) }) },
})

var StubsCmd = cmd(&Command{
	Name: "stubs",
	Desc: "List resolved stubs.",
	Run:  func(s *Shell) error { return s.withReport(func(r *report.Report) error { return r.Stubs(s) }) },
})

var SymbolsCmd = cmd(&Command{
	Name:     "symbols",
	Usage:    "[filter]",
	Desc:     "List direct symbols.",
	Defaults: []string{""},
	Run: func(s *Shell, filter string) error {
		return s.withReport(func(r *report.Report) error {
			return r.Symbols(s, report.SymbolOptions{Filter: filter})
		})
	},
})

var IndirectCmd = cmd(&Command{
	Name:     "indirect",
	Usage:    "[filter]",
	Desc:     "List indirect symbols.",
	Defaults: []string{""},
	Run: func(s *Shell, filter string) error {
		return s.withReport(func(r *report.Report) error {
			return r.Symbols(s, report.SymbolOptions{Filter: filter, Dynamic: true})
		})
	},
})

var StringsCmd = cmd(&Command{
	Name:     "strings",
	Usage:    "[section]",
	Desc:     "Print the strings of a string section.",
	Defaults: []string{"cstring"},
	Run: func(s *Shell, t models.SectionType) error {
		return s.withReport(func(r *report.Report) error { return r.Strings(s, t) })
	},
})

var HexdumpCmd = cmd(&Command{
	Name:     "hexdump",
	Usage:    "<section> [off] [n]",
	Desc:     "Hex dump part of a section.",
	Defaults: []string{"0", "256"},
	Run: func(s *Shell, t models.SectionType, off uint64, n int) error {
		return s.withReport(func(r *report.Report) error { return r.Hexdump(s, t, off, n) })
	},
})

var DisCmd = cmd(&Command{
	Name:     "dis",
	Usage:    "[addr|symbol] [count]",
	Desc:     "Disassemble code.",
	Defaults: []string{"0", "0"},
	Run: func(s *Shell, addr uint64, count int) error {
		return s.withReport(func(r *report.Report) error {
			if count == 0 {
				count = s.Config.DisCount
			}
			t := models.SectionProgram
			if stubs := r.Obj.Section(models.SectionSymbolStubs); stubs != nil && stubs.Contains(addr) {
				t = models.SectionSymbolStubs
			}
			return r.Disas(s, t, addr, count)
		})
	},
})

var SymCmd = cmd(&Command{
	Name:  "sym",
	Usage: "<addr>",
	Desc:  "Name the symbol covering an address.",
	Run: func(s *Shell, addr uint64) error {
		return s.withReport(func(r *report.Report) error {
			name, base := r.Index().SymName(addr)
			if name == "" {
				s.Printf("%#x: no symbol\n", addr)
			} else if base == addr {
				s.Printf("%#x: %s\n", addr, name)
			} else {
				s.Printf("%#x: %s+%#x\n", addr, name, addr-base)
			}
			return nil
		})
	},
})

var LuaCmd = cmd(&Command{
	Name:  "lua",
	Usage: "<code>",
	Desc:  "Run Lua against the current architecture.",
	Raw:   true,
	Run: func(s *Shell, code string) error {
		if s.lua == nil {
			L, err := lua.NewRepl(s.Objs, s.Config, s)
			if err != nil {
				return err
			}
			s.lua = L
			if len(s.Objs) > 0 {
				L.Select(s.arch)
			}
		}
		s.lua.SetOutput(s)
		if s.lua.Exec([]string{code}) {
			return errors.Errorf("incomplete lua statement")
		}
		return nil
	},
})
