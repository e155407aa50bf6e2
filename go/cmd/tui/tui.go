package tui

import (
	"os"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/ui"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		t, err := ui.NewTui(objs, c.Config)
		if err != nil {
			return err
		}
		return t.Run()
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("tui", "browse a file in a terminal ui", Main) }
