package models

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const dumpWidth = 80

// dumpLayout groups bytes by word size; as many groups fit on a row as
// leave room for the address and text columns within dumpWidth.
type dumpLayout struct {
	group, groups int
}

func newDumpLayout(wordSize int) dumpLayout {
	g := wordSize / 8
	if g == 0 {
		g = 4
	}
	addrWidth := g*2 + 4
	return dumpLayout{group: g, groups: ((dumpWidth - addrWidth) * 3 / 4) / ((g + 1) * 2)}
}

func (l dumpLayout) rowSize() int { return l.group * l.groups }

func (l dumpLayout) row(addr uint64, p []byte) string {
	hexCols := make([]string, l.groups)
	textCols := make([]string, l.groups)
	for i := range hexCols {
		lo, hi := i*l.group, (i+1)*l.group
		if lo >= len(p) {
			hexCols[i] = strings.Repeat(" ", l.group*2)
			textCols[i] = strings.Repeat(" ", l.group)
			continue
		}
		pad := 0
		if hi > len(p) {
			pad, hi = hi-len(p), len(p)
		}
		text := append([]byte(nil), p[lo:hi]...)
		for j, b := range text {
			if !isPrint(b) {
				text[j] = '.'
			}
		}
		hexCols[i] = hex.EncodeToString(p[lo:hi]) + strings.Repeat("  ", pad)
		textCols[i] = string(text) + strings.Repeat(" ", pad)
	}
	return fmt.Sprintf("0x%0*x: %s [%s]", l.group*2, addr, strings.Join(hexCols, " "), strings.Join(textCols, " "))
}

// Dump formats n bytes of the section's data starting off bytes in, with
// addresses taken from the section. n <= 0 dumps to the end.
func (s *Section) Dump(off uint64, n int, wordSize int) ([]string, error) {
	if off > uint64(len(s.Data)) {
		return nil, errors.Errorf("offset %#x past end of %s (%#x bytes)", off, s.Name, len(s.Data))
	}
	data := s.Data[off:]
	if n > 0 && n < len(data) {
		data = data[:n]
	}
	l := newDumpLayout(wordSize)
	var lines []string
	for i := 0; i < len(data); i += l.rowSize() {
		end := i + l.rowSize()
		if end > len(data) {
			end = len(data)
		}
		lines = append(lines, l.row(s.Address+off+uint64(i), data[i:end]))
	}
	return lines, nil
}
