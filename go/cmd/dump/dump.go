package dump

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/snapshot"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	var out *string
	c.SetupFlags = func() error {
		out = c.Flags.String("o", "", "snapshot output file (default <file>.bisn)")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		var keep []*models.BinaryObject
		for _, i := range c.Selected(objs) {
			keep = append(keep, objs[i])
		}
		path := *out
		if path == "" {
			path = c.Path + ".bisn"
		}
		if err := snapshot.Save(path, filepath.Base(c.Path), keep); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
		log.WithFields(log.Fields{"path": path, "arches": len(keep)}).Info("wrote snapshot")
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("dump", "save parsed objects to a snapshot file", Main) }
