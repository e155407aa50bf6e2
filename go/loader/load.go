package loader

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

type options struct {
	skipBadSlices bool
}

type Option func(*options)

// WithSkipBadSlices makes Parse drop fat architectures that fail to parse
// instead of failing the whole file. Parse still fails if none survive.
func WithSkipBadSlices(skip bool) Option {
	return func(o *options) { o.skipBadSlices = skip }
}

// ParseFile reads path into memory and parses it.
func ParseFile(path string, opts ...Option) ([]*models.BinaryObject, error) {
	p, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(p), int64(len(p)), opts...)
}

// Parse returns one BinaryObject per architecture in r, in file order.
func Parse(r io.ReaderAt, size int64, opts ...Option) ([]*models.BinaryObject, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	switch Detect(r) {
	case KindObject:
		obj, err := ParseSlice(r, size, 0, 0)
		if err != nil {
			return nil, err
		}
		return []*models.BinaryObject{obj}, nil
	case KindFat:
		return parseFat(r, size, &o)
	}
	return nil, errors.WithStack(ErrNotMachO)
}

func parseFat(r io.ReaderAt, size int64, o *options) ([]*models.BinaryObject, error) {
	arches, err := ReadFatArches(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read fat header")
	}
	objs := make([]*models.BinaryObject, 0, len(arches))
	var firstErr error
	for i, arch := range arches {
		obj, err := ParseSlice(r, size, uint64(arch.Offset), uint64(arch.Size))
		if err != nil {
			err = errors.Wrapf(err, "arch %d (%s) at %#x", i, arch.Cpu(), arch.Offset)
			if !o.skipBadSlices {
				return nil, err
			}
			log.WithError(err).Warn("skipping architecture")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		objs = append(objs, obj)
	}
	if len(objs) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return objs, nil
}

// ParseSlice parses the single object that starts at offset. size is the
// length of the whole input; sliceSize is recorded but not enforced.
func ParseSlice(r io.ReaderAt, size int64, offset, sliceSize uint64) (*models.BinaryObject, error) {
	c := models.NewCursor(r, size)
	return newObjectParser(c, offset, sliceSize).parse()
}
