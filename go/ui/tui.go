package ui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/repl"
	"github.com/lunixbochs/binspect/go/report"
)

// browser is the gocui-free state of the Tui: the current architecture,
// its pages and the selected one.
type browser struct {
	objs   []*models.BinaryObject
	config *models.Config

	arch    int
	report  *report.Report
	pages   []Page
	sel     int
	content []string
}

func newBrowser(objs []*models.BinaryObject, config *models.Config) *browser {
	b := &browser{objs: objs, config: config}
	if len(objs) > 0 {
		b.selectArch(0)
	} else {
		b.render()
	}
	return b
}

func (b *browser) selectArch(i int) {
	if i < 0 || i >= len(b.objs) {
		return
	}
	b.arch = i
	b.report = report.New(b.objs[i], i, b.config)
	b.pages = Pages(b.objs[i])
	b.sel = 0
	b.render()
}

func (b *browser) move(delta int) {
	if len(b.pages) == 0 {
		return
	}
	b.sel = (b.sel + delta + len(b.pages)) % len(b.pages)
	b.render()
}

func (b *browser) render() {
	if len(b.pages) == 0 {
		b.content = []string{"no architectures"}
		return
	}
	b.content = RenderPage(b.report, b.pages[b.sel])
}

func (b *browser) nav() []string {
	names := make([]string, len(b.pages))
	for i, p := range b.pages {
		names[i] = p.Name
	}
	return names
}

func (b *browser) title() string {
	if len(b.objs) == 0 {
		return ""
	}
	return fmt.Sprintf("arch %d/%d: %s", b.arch, len(b.objs), b.objs[b.arch])
}

// Tui browses the parsed architectures. A command line at the bottom runs
// shell commands into the main view.
type Tui struct {
	*browser
	g     *gocui.Gui
	shell *repl.Shell
}

func NewTui(objs []*models.BinaryObject, config *models.Config) (*Tui, error) {
	// escapes are stripped anyway, don't emit them
	c := *config
	c.Color = false
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "gocui failed")
	}
	t := &Tui{
		browser: newBrowser(objs, &c),
		g:       g,
		shell:   repl.NewShell(objs, &c, nil),
	}
	g.SetManagerFunc(t.layout)
	if err := t.bindKeys(); err != nil {
		g.Close()
		return nil, err
	}
	return t, nil
}

func (t *Tui) quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

func (t *Tui) refresh(g *gocui.Gui) error {
	if v, err := g.View("nav"); err == nil {
		v.Clear()
		fmt.Fprint(v, strings.Join(t.nav(), "\n"))
		_, oy := v.Origin()
		_, h := v.Size()
		if t.sel < oy {
			oy = t.sel
		} else if h > 0 && t.sel >= oy+h {
			oy = t.sel - h + 1
		}
		v.SetOrigin(0, oy)
		v.SetCursor(0, t.sel-oy)
	}
	if v, err := g.View("main"); err == nil {
		v.Clear()
		v.SetOrigin(0, 0)
		v.Title = t.title()
		fmt.Fprint(v, strings.Join(t.content, "\n"))
	}
	return nil
}

func (t *Tui) moveBy(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		t.move(delta)
		return t.refresh(g)
	}
}

func (t *Tui) nextArch(g *gocui.Gui, v *gocui.View) error {
	if len(t.objs) > 1 {
		t.selectArch((t.arch + 1) % len(t.objs))
	}
	return t.refresh(g)
}

func (t *Tui) scroll(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		v, err := g.View("main")
		if err != nil {
			return err
		}
		ox, oy := v.Origin()
		if oy+delta < 0 {
			delta = -oy
		}
		return v.SetOrigin(ox, oy+delta)
	}
}

func (t *Tui) focus(name string) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		_, err := g.SetCurrentView(name)
		g.Cursor = name == "cmd"
		return err
	}
}

// enter runs the command line through the shell and shows its output.
func (t *Tui) enter(g *gocui.Gui, v *gocui.View) error {
	line := strings.TrimSpace(v.Buffer())
	v.Clear()
	v.SetCursor(0, 0)
	if line == "" {
		return nil
	}
	var buf bytes.Buffer
	t.shell.Writer = &buf
	if err := t.shell.Eval(line); err == repl.ErrQuit {
		return gocui.ErrQuit
	} else if err != nil {
		fmt.Fprintln(&buf, err)
	}
	t.content = append([]string{"> " + line}, cleanLines(buf.String())...)
	return t.refresh(g)
}

func (t *Tui) bindKeys() error {
	g := t.g
	bindings := []struct {
		view    string
		key     interface{}
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{"", gocui.KeyCtrlC, t.quit},
		{"nav", 'q', t.quit},
		{"nav", gocui.KeyArrowUp, t.moveBy(-1)},
		{"nav", gocui.KeyArrowDown, t.moveBy(1)},
		{"nav", 'k', t.moveBy(-1)},
		{"nav", 'j', t.moveBy(1)},
		{"nav", 'a', t.nextArch},
		{"nav", gocui.KeyPgup, t.scroll(-20)},
		{"nav", gocui.KeyPgdn, t.scroll(20)},
		{"nav", gocui.KeySpace, t.scroll(20)},
		{"nav", ':', t.focus("cmd")},
		{"nav", gocui.KeyTab, t.focus("cmd")},
		{"cmd", gocui.KeyTab, t.focus("nav")},
		{"cmd", gocui.KeyEsc, t.focus("nav")},
		{"cmd", gocui.KeyEnter, t.enter},
	}
	for _, b := range bindings {
		if err := g.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return errors.Wrapf(err, "keybinding %v", b.key)
		}
	}
	return nil
}

func (t *Tui) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	navWidth := 24
	fresh := false
	if v, err := g.SetView("nav", 0, 0, navWidth, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "pages"
		v.Highlight = true
		v.SelBgColor = gocui.ColorGreen
		v.SelFgColor = gocui.ColorBlack
		fresh = true
	}
	if v, err := g.SetView("main", navWidth+1, 0, maxX-1, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Wrap = false
	}
	if v, err := g.SetView("cmd", 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "command (tab)"
		v.Editable = true
	}
	if fresh {
		if _, err := g.SetCurrentView("nav"); err != nil {
			return err
		}
		return t.refresh(g)
	}
	return nil
}

func (t *Tui) Run() error {
	defer t.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (t *Tui) Close() {
	t.shell.Close()
	t.g.Close()
}
