package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

type Ins interface {
	Addr() uint64
	Bytes() []byte
	Mnemonic() string
	OpStr() string
}

// FormatIns renders one instruction per line. With showBytes the raw
// encoding is printed right-aligned to the widest instruction in dis.
func FormatIns(dis []Ins, showBytes bool, symname func(uint64) (string, uint64)) string {
	var width int
	for _, ins := range dis {
		if n := len(ins.Bytes()); n > width {
			width = n
		}
	}
	var out []string
	for _, ins := range dis {
		if symname != nil {
			if name, base := symname(ins.Addr()); name != "" && base == ins.Addr() {
				out = append(out, fmt.Sprintf("%s:", name))
			}
		}
		line := fmt.Sprintf("%#x:", ins.Addr())
		if showBytes {
			pad := strings.Repeat(" ", (width-len(ins.Bytes()))*2)
			line += " " + pad + hex.EncodeToString(ins.Bytes())
		}
		line += " " + ins.Mnemonic()
		if op := ins.OpStr(); op != "" {
			line += " " + op
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
