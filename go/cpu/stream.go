package cpu

import "github.com/lunixbochs/binspect/go/models"

// Stream decodes lazily, one instruction per Next.
type Stream struct {
	x   *XArch
	mem []byte
	pc  uint64
	cur models.Ins
	err error
}

func (x *XArch) Stream(mem []byte, addr uint64) *Stream {
	s := &Stream{x: x, mem: mem, pc: addr}
	if !x.Supported() {
		s.err = ErrUnsupportedCpu
	}
	return s
}

func (s *Stream) Next() bool {
	if s.err != nil || len(s.mem) == 0 {
		return false
	}
	n, text := s.x.decode(s.mem, s.pc)
	if n == 0 {
		n = s.x.badLen()
		if n > len(s.mem) {
			n = len(s.mem)
		}
		text = "(bad)"
	}
	s.cur = newIns(s.pc, s.mem[:n], text)
	s.mem = s.mem[n:]
	s.pc += uint64(n)
	return true
}

func (s *Stream) Ins() models.Ins { return s.cur }
func (s *Stream) Err() error      { return s.err }

// Take returns up to count instructions from the start of mem, or all of
// them when count <= 0. Streaming backends stop decoding at count.
func Take(d Disassembler, mem []byte, addr uint64, count int) ([]models.Ins, error) {
	if x, ok := d.(*XArch); ok && count > 0 {
		var ret []models.Ins
		s := x.Stream(mem, addr)
		for len(ret) < count && s.Next() {
			ret = append(ret, s.Ins())
		}
		return ret, s.Err()
	}
	dis, err := d.Dis(mem, addr)
	if err != nil {
		return nil, err
	}
	if count > 0 && count < len(dis) {
		dis = dis[:count]
	}
	return dis, nil
}
