package info

import (
	"os"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	var all, commands, segments, dylibs *bool
	c.SetupFlags = func() error {
		all = c.Flags.Bool("a", false, "show everything")
		commands = c.Flags.Bool("l", false, "list load commands")
		segments = c.Flags.Bool("s", false, "list segments")
		dylibs = c.Flags.Bool("L", false, "list linked libraries")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		w := c.Config.Output
		for _, i := range c.Selected(objs) {
			r := report.New(objs[i], i, c.Config)
			steps := []struct {
				on bool
				fn func() error
			}{
				{true, func() error { return r.Info(w) }},
				{*all || *commands, func() error { return r.Commands(w) }},
				{*all || *segments, func() error { return r.Segments(w) }},
				{*all || *dylibs, func() error { return r.Dylibs(w) }},
			}
			for _, s := range steps {
				if !s.on {
					continue
				}
				if err := s.fn(); err != nil {
					return err
				}
			}
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("info", "summarize headers and load commands", Main) }
