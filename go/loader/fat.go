package loader

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

// FatArch is one architecture descriptor from a universal header. Only
// Offset and Size drive parsing; the per-architecture header restates the
// cpu fields authoritatively.
type FatArch struct {
	CpuType    uint32
	CpuSubType uint32
	Offset     uint32
	Size       uint32
	Align      uint32
}

func (a FatArch) Cpu() models.CpuType {
	return mapCpuType(a.CpuType)
}

// ReadFatArches reads the big-endian architecture index of a fat container.
func ReadFatArches(r io.ReaderAt, size int64) ([]FatArch, error) {
	c := models.NewCursor(r, size)
	if _, err := c.U32(); err != nil {
		return nil, err
	}
	c.SetOrder(binary.BigEndian)
	n, err := c.U32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read architecture count")
	}
	var arches []FatArch
	for i := uint32(0); i < n; i++ {
		var arch FatArch
		if err := c.Unpack(&arch); err != nil {
			return nil, errors.Wrapf(err, "failed to read architecture %d", i)
		}
		arches = append(arches, arch)
	}
	return arches, nil
}
