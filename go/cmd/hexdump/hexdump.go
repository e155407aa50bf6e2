package hexdump

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
	var off *uint64
	var n *int
	c.SetupFlags = func() error {
		section = c.Flags.String("section", "program", "section to dump")
		off = c.Flags.Uint64("off", 0, "start offset within the section")
		n = c.Flags.Int("n", 0, "bytes to dump (0 dumps to the end)")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		t, ok := models.ParseSectionType(*section)
		if !ok {
			return errors.Errorf("unknown section type %q", *section)
		}
		for _, i := range c.Selected(objs) {
			if err := report.New(objs[i], i, c.Config).Hexdump(c.Config.Output, t, *off, *n); err != nil {
				return err
			}
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("hexdump", "hex dump a section", Main) }
