package cpu

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

var ErrUnsupportedCpu = errors.New("no disassembler for cpu")

type Disassembler interface {
	Dis(mem []byte, addr uint64) ([]models.Ins, error)
}

// SymLookup names the symbol covering addr and returns its base.
type SymLookup func(addr uint64) (string, uint64)

const (
	BackendXArch    = "xarch"
	BackendCapstone = "capstone"
)

// New returns a disassembler for obj's cpu. backend picks the decoder
// library; syntax is one of intel, gnu or go and is ignored by capstone.
func New(backend, syntax string, obj *models.BinaryObject, symname SymLookup) (Disassembler, error) {
	switch backend {
	case "", BackendXArch:
		x := &XArch{Cpu: obj.CpuType, Syntax: syntax, Order: obj.ByteOrder(), Symname: symname}
		if !x.Supported() {
			return nil, errors.Wrapf(ErrUnsupportedCpu, "%s (xarch)", obj.CpuType)
		}
		return x, nil
	case BackendCapstone:
		arch, mode, ok := capstoneMode(obj.CpuType)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedCpu, "%s (capstone)", obj.CpuType)
		}
		return &Capstr{Arch: arch, Mode: mode}, nil
	}
	return nil, errors.Errorf("unknown disassembler backend %q", backend)
}

type ins struct {
	addr     uint64
	bytes    []byte
	mnemonic string
	opStr    string
}

func (i *ins) Addr() uint64     { return i.addr }
func (i *ins) Bytes() []byte    { return i.bytes }
func (i *ins) Mnemonic() string { return i.mnemonic }
func (i *ins) OpStr() string    { return i.opStr }

func newIns(addr uint64, mem []byte, text string) *ins {
	text = strings.TrimSpace(text)
	mnemonic, opStr := text, ""
	if i := strings.IndexByte(text, ' '); i >= 0 {
		mnemonic, opStr = text[:i], strings.TrimSpace(text[i+1:])
	}
	return &ins{addr: addr, bytes: mem, mnemonic: mnemonic, opStr: opStr}
}
