package lua

import (
	"os"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/ui"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		r, err := ui.NewRepl(objs, c.Config)
		if err != nil {
			return err
		}
		r.Run()
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("lua", "interactive lua prompt", Main) }
