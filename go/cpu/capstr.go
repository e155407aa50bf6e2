package cpu

import (
	cs "github.com/lunixbochs/capstr"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

func capstoneMode(cpu models.CpuType) (int, int, bool) {
	switch cpu {
	case models.CpuX86:
		return cs.ARCH_X86, cs.MODE_32, true
	case models.CpuX86_64:
		return cs.ARCH_X86, cs.MODE_64, true
	case models.CpuARM:
		return cs.ARCH_ARM, cs.MODE_ARM, true
	case models.CpuARM64:
		return cs.ARCH_ARM64, cs.MODE_ARM, true
	case models.CpuPowerPC:
		return cs.ARCH_PPC, cs.MODE_32 | cs.MODE_BIG_ENDIAN, true
	case models.CpuPowerPC64:
		return cs.ARCH_PPC, cs.MODE_64 | cs.MODE_BIG_ENDIAN, true
	}
	return 0, 0, false
}

// Capstr decodes through libcapstone.
type Capstr struct {
	Arch, Mode int

	cs *cs.Engine
	dc *models.Discache
}

func (c *Capstr) Open() error {
	engine, err := cs.New(c.Arch, c.Mode)
	if err != nil {
		return errors.Wrap(err, "cs.New() failed")
	}
	c.cs = engine
	c.dc = models.NewDiscache()
	return nil
}

func (c *Capstr) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if c.cs == nil {
		if err := c.Open(); err != nil {
			return nil, err
		}
	}
	if ent := c.dc.Get(addr, mem); ent != nil {
		return ent.Dis, nil
	}
	dis, err := c.cs.Dis(mem, addr, 0)
	if err != nil {
		return nil, errors.Wrap(err, "capstone disassembly failed")
	}
	ret := make([]models.Ins, len(dis))
	for i, v := range dis {
		ret[i] = v
	}
	c.dc.Put(addr, mem, ret)
	return ret, nil
}
