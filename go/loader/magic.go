package loader

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/binspect/go/models"
)

// Magic values as read in little-endian order from offset 0.
const (
	MagicLE32 uint32 = 0xfeedface
	MagicLE64 uint32 = 0xfeedfacf
	MagicBE32 uint32 = 0xecafdeef
	MagicBE64 uint32 = 0xfcafdeef
	MagicFat  uint32 = 0xcafebabe
	MagicFatR uint32 = 0xbebafeca
)

type Kind int

const (
	KindUnknown Kind = iota
	KindObject
	KindFat
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindFat:
		return "fat"
	default:
		return "unknown"
	}
}

func getMagic(r io.ReaderAt) (uint32, bool) {
	var buf [4]byte
	if n, _ := r.ReadAt(buf[:], 0); n < len(buf) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(buf[:]), true
}

func classify(magic uint32) Kind {
	switch magic {
	case MagicLE32, MagicLE64, MagicBE32, MagicBE64:
		return KindObject
	case MagicFat, MagicFatR:
		return KindFat
	}
	return KindUnknown
}

// Detect peeks at the leading magic without consuming anything.
func Detect(r io.ReaderAt) Kind {
	magic, ok := getMagic(r)
	if !ok {
		return KindUnknown
	}
	return classify(magic)
}

func MatchMachO(r io.ReaderAt) bool {
	return Detect(r) != KindUnknown
}

// objectMagic maps a per-architecture magic to its word size and byte order.
func objectMagic(magic uint32) (int, models.Endian, bool) {
	switch magic {
	case MagicLE32:
		return 32, models.LittleEndian, true
	case MagicLE64:
		return 64, models.LittleEndian, true
	case MagicBE32:
		return 32, models.BigEndian, true
	case MagicBE64:
		return 64, models.BigEndian, true
	}
	return 0, 0, false
}
