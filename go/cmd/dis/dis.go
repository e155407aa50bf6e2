package dis

import (
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	var section *string
	var addr *uint64
	var count *int
	c.SetupFlags = func() error {
		section = c.Flags.String("section", "program", "code section (program or stubs)")
		addr = c.Flags.Uint64("addr", 0, "start address (default: section start)")
		count = c.Flags.Int("count", 0, "instructions to show (0 shows the whole section)")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		t, ok := models.ParseSectionType(*section)
		if !ok {
			return errors.Errorf("unknown section type %q", *section)
		}
		for _, i := range c.Selected(objs) {
			if err := report.New(objs[i], i, c.Config).Disas(c.Config.Output, t, *addr, *count); err != nil {
				return err
			}
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("dis", "disassemble a code section", Main) }
