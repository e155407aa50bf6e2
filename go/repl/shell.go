// Package repl is a line-oriented command shell over parsed objects.
package repl

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/lunixbochs/argjoy"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/lua"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

var ErrQuit = errors.New("quit")

type Shell struct {
	io.Writer
	Objs   []*models.BinaryObject
	Config *models.Config

	arch    int
	reports []*report.Report
	lua     *lua.LuaRepl
	aj      argjoy.Argjoy
}

func NewShell(objs []*models.BinaryObject, config *models.Config, w io.Writer) *Shell {
	if config == nil {
		config = models.DefaultConfig()
	}
	s := &Shell{
		Writer:  w,
		Objs:    objs,
		Config:  config,
		reports: make([]*report.Report, len(objs)),
	}
	s.aj.Register(s.argCodec)
	return s
}

func (s *Shell) Printf(format string, a ...interface{}) {
	fmt.Fprintf(s, format, a...)
}

func (s *Shell) Report() (*report.Report, error) {
	if len(s.Objs) == 0 {
		return nil, errors.New("no architectures loaded")
	}
	if s.reports[s.arch] == nil {
		s.reports[s.arch] = report.New(s.Objs[s.arch], s.arch, s.Config)
	}
	return s.reports[s.arch], nil
}

func (s *Shell) withReport(fn func(r *report.Report) error) error {
	r, err := s.Report()
	if err != nil {
		return err
	}
	return fn(r)
}

// lookup resolves a symbol name in the current architecture, direct
// symbols first.
func (s *Shell) lookup(name string) (uint64, bool) {
	if len(s.Objs) == 0 {
		return 0, false
	}
	obj := s.Objs[s.arch]
	for _, e := range obj.SymbolTable.Entries() {
		if e.Name == name && e.Sect != 0 {
			return e.Value, true
		}
	}
	for _, e := range obj.DynSymbolTable.Entries() {
		if e.Name == name && e.Value != 0 {
			return e.Value, true
		}
	}
	return 0, false
}

// argCodec converts one shell word into a command argument.
func (s *Shell) argCodec(arg interface{}, vals []interface{}) error {
	word, ok := vals[0].(string)
	if !ok {
		return argjoy.NoMatch
	}
	switch v := arg.(type) {
	case *string:
		*v = word
	case *int:
		n, err := strconv.ParseInt(word, 0, 0)
		if err != nil {
			return errors.Errorf("invalid number %q", word)
		}
		*v = int(n)
	case *uint64:
		n, err := strconv.ParseUint(word, 0, 64)
		if err != nil {
			addr, ok := s.lookup(word)
			if !ok {
				return errors.Errorf("invalid address or symbol %q", word)
			}
			n = addr
		}
		*v = n
	case *bool:
		b, err := strconv.ParseBool(word)
		if err != nil {
			return errors.Errorf("invalid bool %q", word)
		}
		*v = b
	case *models.SectionType:
		t, ok := models.ParseSectionType(word)
		if !ok {
			return errors.Errorf("unknown section type %q", word)
		}
		*v = t
	default:
		return argjoy.NoMatch
	}
	return nil
}

// Eval runs one command line. Command errors are printed, not returned;
// only ErrQuit and tokenizer errors come back.
func (s *Shell) Eval(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, rest = line[:i], strings.TrimSpace(line[i+1:])
	}
	c, ok := Commands[name]
	if !ok {
		s.Printf("command not found: %s\n", name)
		return nil
	}
	var args []string
	if c.Raw {
		if rest != "" {
			args = []string{rest}
		}
	} else {
		var err error
		if args, err = shellquote.Split(rest); err != nil {
			return errors.Wrap(err, "parse error")
		}
	}
	err := s.call(c, args)
	if err == ErrQuit {
		return err
	} else if err != nil {
		s.Printf("error: %v\n", err)
	}
	return nil
}

func (s *Shell) call(c *Command, args []string) error {
	fn := reflect.ValueOf(c.Run)
	ft := fn.Type()
	in := make([]reflect.Type, ft.NumIn()-1)
	for i := range in {
		in[i] = ft.In(i + 1)
	}
	// trailing defaults fill omitted optional args
	if missing := len(in) - len(args); missing > 0 && missing <= len(c.Defaults) {
		args = append(args, c.Defaults[len(c.Defaults)-missing:]...)
	}
	if len(args) != len(in) {
		return errors.Errorf("usage: %s %s", c.Name, c.Usage)
	}
	vals := make([]interface{}, len(args))
	for i, a := range args {
		vals[i] = a
	}
	converted, err := s.aj.Convert(in, false, vals)
	if err != nil {
		return err
	}
	out := fn.Call(append([]reflect.Value{reflect.ValueOf(s)}, converted...))
	if len(out) > 0 {
		if err, ok := out[0].Interface().(error); ok {
			return err
		}
	}
	return nil
}

func (s *Shell) prompt() string {
	if len(s.Objs) == 0 {
		return "> "
	}
	return fmt.Sprintf("%d:%s> ", s.arch, s.Objs[s.arch].CpuType)
}

// Run reads commands from the terminal until EOF or quit.
func (s *Shell) Run() error {
	cacheDir := models.ConfigDirs("shell").QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	} else {
		log.WithError(err).Debug("history disabled")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		InterruptPrompt: "\n",
		HistoryFile:     historyPath,
	})
	if err != nil {
		return errors.Wrap(err, "readline setup failed")
	}
	defer rl.Close()
	s.Writer = rl.Stdout()
	defer s.Close()

	for {
		ln := rl.Line()
		if ln.Error == readline.ErrInterrupt {
			continue
		} else if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			return nil
		}
		if err := s.Eval(ln.Line); err == ErrQuit {
			return nil
		} else if err != nil {
			s.Printf("%v\n", err)
		}
		rl.SetPrompt(s.prompt())
	}
}

func (s *Shell) Close() {
	if s.lua != nil {
		s.lua.Close()
		s.lua = nil
	}
}
