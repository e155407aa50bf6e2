package models

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var ErrTruncated = errors.New("unexpected end of input")

// Cursor is a sequential reader over a fixed-size byte source. Seeking is
// unchecked; the next read validates the position against the source size.
type Cursor struct {
	r     io.ReaderAt
	size  uint64
	pos   uint64
	order binary.ByteOrder
}

// NewCursor returns a little-endian cursor positioned at 0.
func NewCursor(r io.ReaderAt, size int64) *Cursor {
	if size < 0 {
		size = 0
	}
	return &Cursor{r: r, size: uint64(size), order: binary.LittleEndian}
}

func NewBytesCursor(p []byte) *Cursor {
	return NewCursor(bytes.NewReader(p), int64(len(p)))
}

func (c *Cursor) Pos() uint64  { return c.pos }
func (c *Cursor) Size() uint64 { return c.size }

func (c *Cursor) Seek(off uint64) { c.pos = off }

func (c *Cursor) Order() binary.ByteOrder { return c.order }

func (c *Cursor) SetOrder(order binary.ByteOrder) { c.order = order }

func (c *Cursor) check(n uint64) error {
	if c.pos > c.size || n > c.size-c.pos {
		return errors.Wrapf(ErrTruncated, "read of %d bytes at %#x (size %#x)", n, c.pos, c.size)
	}
	return nil
}

// Read returns the next n bytes.
func (c *Cursor) Read(n uint64) ([]byte, error) {
	if err := c.check(n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n > 0 {
		if got, err := c.r.ReadAt(buf, int64(c.pos)); uint64(got) < n {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrapf(ErrTruncated, "read of %d bytes at %#x: %v", n, c.pos, err)
		}
	}
	c.pos += n
	return buf, nil
}

// Skip advances past n bytes without reading them.
func (c *Cursor) Skip(n uint64) error {
	if err := c.check(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *Cursor) U8() (uint8, error) {
	b, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(b), nil
}

// Word reads a 32 or 64 bit value depending on bits.
func (c *Cursor) Word(bits int) (uint64, error) {
	if bits == 64 {
		return c.U64()
	}
	v, err := c.U32()
	return uint64(v), err
}

// Unpack fills a fixed-layout struct in the cursor's byte order.
func (c *Cursor) Unpack(v interface{}) error {
	n, err := struc.Sizeof(v)
	if err != nil {
		return errors.Wrap(err, "struc.Sizeof() failed")
	}
	b, err := c.Read(uint64(n))
	if err != nil {
		return err
	}
	return errors.Wrap(struc.UnpackWithOrder(bytes.NewReader(b), v, c.order), "struc.Unpack() failed")
}

// CString returns p up to the first NUL byte.
func CString(p []byte) string {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		return string(p[:i])
	}
	return string(p)
}
