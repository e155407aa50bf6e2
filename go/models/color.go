package models

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/mgutz/ansi"
)

var (
	StyleHeading = "white+b"
	StyleAddr    = "cyan"
	StyleName    = "green"
	StyleWarn    = "yellow"
	StyleError   = "red+b"
)

func ColorDefault() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Stdout returns a writer that understands ANSI sequences on any platform.
func Stdout() io.Writer {
	return colorable.NewColorableStdout()
}

type Painter struct {
	Enabled bool
}

func (p Painter) Paint(s, style string) string {
	if !p.Enabled || style == "" {
		return s
	}
	return ansi.Color(s, style)
}

// Pad right-pads s to width before painting so columns stay aligned.
func (p Painter) Pad(s, style string, width int) string {
	return p.Paint(runewidth.FillRight(s, width), style)
}
