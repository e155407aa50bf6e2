package cpu

import (
	"encoding/binary"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/ppc64/ppc64asm"
	"golang.org/x/arch/x86/x86asm"

	"github.com/lunixbochs/binspect/go/models"
)

// XArch decodes with the pure-Go golang.org/x/arch disassemblers.
type XArch struct {
	Cpu     models.CpuType
	Syntax  string
	Order   binary.ByteOrder
	Symname SymLookup

	dc *models.Discache
}

func (x *XArch) Supported() bool {
	switch x.Cpu {
	case models.CpuX86, models.CpuX86_64, models.CpuARM, models.CpuARM64,
		models.CpuPowerPC, models.CpuPowerPC64:
		return true
	}
	return false
}

func (x *XArch) symname() func(uint64) (string, uint64) {
	if x.Symname == nil {
		return func(uint64) (string, uint64) { return "", 0 }
	}
	return x.Symname
}

// decode returns the length and text of the instruction at the start of
// mem. A zero length means mem does not start with a valid instruction.
func (x *XArch) decode(mem []byte, pc uint64) (int, string) {
	switch x.Cpu {
	case models.CpuX86, models.CpuX86_64:
		bits := 32
		if x.Cpu == models.CpuX86_64 {
			bits = 64
		}
		inst, err := x86asm.Decode(mem, bits)
		if err != nil || inst.Len == 0 {
			return 0, ""
		}
		switch x.Syntax {
		case "gnu":
			return inst.Len, x86asm.GNUSyntax(inst, pc, x.symname())
		case "go":
			return inst.Len, x86asm.GoSyntax(inst, pc, x.symname())
		default:
			return inst.Len, x86asm.IntelSyntax(inst, pc, x.symname())
		}
	case models.CpuARM64:
		inst, err := arm64asm.Decode(mem)
		if err != nil {
			return 0, ""
		}
		return 4, arm64asm.GNUSyntax(inst)
	case models.CpuARM:
		inst, err := armasm.Decode(mem, armasm.ModeARM)
		if err != nil || inst.Len == 0 {
			return 0, ""
		}
		return inst.Len, armasm.GNUSyntax(inst)
	case models.CpuPowerPC, models.CpuPowerPC64:
		inst, err := ppc64asm.Decode(mem, x.Order)
		if err != nil || inst.Len == 0 {
			return 0, ""
		}
		return inst.Len, ppc64asm.GNUSyntax(inst, pc)
	}
	return 0, ""
}

// badLen is how far to step over bytes that do not decode.
func (x *XArch) badLen() int {
	switch x.Cpu {
	case models.CpuX86, models.CpuX86_64:
		return 1
	}
	return 4
}

func (x *XArch) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if !x.Supported() {
		return nil, ErrUnsupportedCpu
	}
	if x.dc == nil {
		x.dc = models.NewDiscache()
	}
	if ent := x.dc.Get(addr, mem); ent != nil {
		return ent.Dis, nil
	}
	var ret []models.Ins
	for s := x.Stream(mem, addr); s.Next(); {
		ret = append(ret, s.Ins())
	}
	x.dc.Put(addr, mem, ret)
	return ret, nil
}
