package verify

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/loader"
	"github.com/lunixbochs/binspect/go/models"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		f, err := os.Open(c.Path)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		mismatches, err := loader.Verify(f, objs)
		if err != nil {
			return err
		}
		for _, m := range mismatches {
			fmt.Fprintln(c.Config.Output, m)
		}
		if len(mismatches) > 0 {
			return errors.Errorf("%d mismatches against debug/macho", len(mismatches))
		}
		fmt.Fprintf(c.Config.Output, "%s: %d arches match debug/macho\n", c.Path, len(objs))
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("verify", "cross-check parsing against debug/macho", Main) }
