package strings

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
	c.SetupFlags = func() error {
		section = c.Flags.String("section", "cstring", "section to read (cstring, objc-methnames or strtab)")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		t, ok := models.ParseSectionType(*section)
		if !ok {
			return errors.Errorf("unknown section type %q", *section)
		}
		for _, i := range c.Selected(objs) {
			if err := report.New(objs[i], i, c.Config).Strings(c.Config.Output, t); err != nil {
				return err
			}
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("strings", "print strings from a string section", Main) }
