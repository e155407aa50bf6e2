// Package snapshot saves parsed objects to disk so they can be inspected
// again without the original binary.
//
// A snapshot is a fixed struc header followed by a snappy stream holding
// the objects as JSON.
package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

const (
	Magic   = "BISN"
	Version = 1
)

var ErrBadMagic = errors.New("not a snapshot file")

type Header struct {
	Magic   string `struc:"[4]byte" json:"-"`
	Version uint32 `json:"version"`
	// Source is the base name of the parsed file. Right-null-padded.
	Source string `struc:"[64]byte" json:"source"`
	Arches uint32 `json:"arches"`
}

func Write(w io.Writer, source string, objs []*models.BinaryObject) error {
	if len(source) > 64 {
		source = source[:64]
	}
	header := &Header{
		Magic:   Magic,
		Version: Version,
		Source:  source,
		Arches:  uint32(len(objs)),
	}
	if err := struc.Pack(w, header); err != nil {
		return errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(zw).Encode(objs); err != nil {
		zw.Close()
		return errors.Wrap(err, "failed to encode objects")
	}
	return errors.Wrap(zw.Close(), "failed to flush snapshot")
}

func Read(r io.Reader) (*Header, []*models.BinaryObject, error) {
	var header Header
	if err := struc.Unpack(r, &header); err != nil {
		return nil, nil, errors.Wrap(err, "failed to unpack header")
	}
	if header.Magic != Magic {
		return nil, nil, errors.WithStack(ErrBadMagic)
	}
	if header.Version != Version {
		return nil, nil, errors.Errorf("unsupported snapshot version %d", header.Version)
	}
	header.Source = strings.TrimRight(header.Source, "\x00")
	var objs []*models.BinaryObject
	if err := json.NewDecoder(snappy.NewReader(r)).Decode(&objs); err != nil {
		return nil, nil, errors.Wrap(err, "failed to decode objects")
	}
	if len(objs) != int(header.Arches) {
		return nil, nil, errors.Errorf("header lists %d arches, found %d", header.Arches, len(objs))
	}
	return &header, objs, nil
}

// Match reports whether p starts with the snapshot magic.
func Match(p []byte) bool {
	return bytes.HasPrefix(p, []byte(Magic))
}

func Save(path, source string, objs []*models.BinaryObject) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, source, objs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Load(path string) (*Header, []*models.BinaryObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Read(f)
}
