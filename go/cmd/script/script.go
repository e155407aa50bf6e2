package script

import (
	"os"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/lua"
	"github.com/lunixbochs/binspect/go/models"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	c.Usage = "<file> <script.lua> [args...]"
	c.RunObjects = func(objs []*models.BinaryObject, args []string) error {
		if len(args) < 1 {
			c.Flags.Usage()
			os.Exit(1)
		}
		L, err := lua.NewRepl(objs, c.Config, c.Config.Output)
		if err != nil {
			return err
		}
		defer L.Close()
		if c.Arch >= 0 {
			if err := L.Select(c.Arch); err != nil {
				return err
			}
		}
		return L.Run(args[0], args[1:])
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("script", "run a lua script against a file", Main) }
