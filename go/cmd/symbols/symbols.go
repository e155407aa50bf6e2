package symbols

import (
	"os"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	var filter *string
	var indirect, stubs, sorted *bool
	c.SetupFlags = func() error {
		filter = c.Flags.String("filter", "", "only show symbols containing this string")
		indirect = c.Flags.Bool("indirect", false, "list the indirect symbol table")
		stubs = c.Flags.Bool("stubs", false, "list resolved stubs")
		sorted = c.Flags.Bool("sort", false, "sort by name")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		for _, i := range c.Selected(objs) {
			r := report.New(objs[i], i, c.Config)
			var err error
			if *stubs {
				err = r.Stubs(c.Config.Output)
			} else {
				err = r.Symbols(c.Config.Output, report.SymbolOptions{Filter: *filter, Dynamic: *indirect, Sort: *sorted})
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("symbols", "list symbols, indirect symbols or stubs", Main) }
