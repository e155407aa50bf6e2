package ui

import (
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/lua"
	"github.com/lunixbochs/binspect/go/models"
)

// Repl is an interactive Lua prompt over the parsed architectures.
type Repl struct {
	objs []*models.BinaryObject
	lua  *lua.LuaRepl
	rl   *readline.Instance

	multiline bool
	lines     []string
}

func historyPath(app string) string {
	cacheDir := models.ConfigDirs(app).QueryCacheFolder()
	if err := cacheDir.MkdirAll(); err != nil {
		log.WithError(err).Debug("history disabled")
		return ""
	}
	return filepath.Join(cacheDir.Path, "history")
}

func NewRepl(objs []*models.BinaryObject, config *models.Config) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "\n",
		UniqueEditLine:  false,
		HistoryFile:     historyPath("repl"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "readline setup failed")
	}
	luaRepl, err := lua.NewRepl(objs, config, rl.Stderr())
	if err != nil {
		rl.Close()
		return nil, err
	}
	return &Repl{objs: objs, lua: luaRepl, rl: rl}, nil
}

func (r *Repl) OnChange(line []rune, pos int, key rune) (newLine []rune, newPos int, ok bool) {
	rl := r.rl
	if key == '\n' || key == '\r' && !r.multiline {
		rl.Config.UniqueEditLine = true
	} else if key > 0 {
		rl.Config.UniqueEditLine = false
	}
	// returning false keeps readline from messing up the prompt
	return line, pos, false
}

func (r *Repl) setPrompt() {
	if len(r.objs) == 0 {
		r.rl.SetPrompt("> ")
		return
	}
	arch := r.lua.Arch()
	r.rl.SetPrompt(fmt.Sprintf("%d:%s> ", arch, r.objs[arch].CpuType))
}

func (r *Repl) Reset() {
	r.lines = nil
	r.multiline = false
	r.rl.Config.UniqueEditLine = false
	r.setPrompt()
}

// Run reads chunks until EOF.
func (r *Repl) Run() {
	defer r.Close()
	r.rl.Config.Listener = r
	r.setPrompt()
	for {
		ln := r.rl.Line()
		if ln.Error == readline.ErrInterrupt {
			r.Reset()
			continue
		} else if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			break
		}
		if !r.multiline {
			if ln.Line == "" {
				continue
			}
			r.lines = []string{ln.Line}
		} else {
			r.lines = append(r.lines, ln.Line)
		}
		if r.lua.Exec(r.lines) {
			r.rl.Config.UniqueEditLine = false
			r.rl.SetPrompt("... ")
			r.multiline = true
		} else {
			r.multiline = false
			r.setPrompt()
		}
	}
}

func (r *Repl) Close() {
	r.lua.Close()
	r.rl.Close()
}
