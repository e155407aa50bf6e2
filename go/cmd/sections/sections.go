package sections

import (
	"os"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		for _, i := range c.Selected(objs) {
			if err := report.New(objs[i], i, c.Config).Sections(c.Config.Output); err != nil {
				return err
			}
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("sections", "list typed sections", Main) }
