package loader

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/models"
)

var (
	ErrNotMachO         = errors.New("not a Mach-O file")
	ErrTruncated        = models.ErrTruncated
	ErrMalformedCommand = errors.New("malformed load command")
)

// UnsupportedCommandError stops a slice's parse on a load command type
// outside the known catalog.
type UnsupportedCommandError struct {
	Cmd    uint32
	Index  int
	Offset uint64
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported load command %#x (command %d at %#x)", e.Cmd, e.Index, e.Offset)
}

// IsUnsupportedCommand reports whether err was caused by an unknown load command.
func IsUnsupportedCommand(err error) bool {
	_, ok := errors.Cause(err).(*UnsupportedCommandError)
	return ok
}
