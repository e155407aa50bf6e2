package shell

import (
	"os"
	"strconv"

	"github.com/lunixbochs/binspect/go/cmd"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/repl"
)

func Main(args []string) {
	c := cmd.NewInspectCmd()
	var listen *int
	c.SetupFlags = func() error {
		listen = c.Flags.Int("listen", -1, "serve the shell on localhost:<port> instead of the terminal")
		return nil
	}
	c.RunObjects = func(objs []*models.BinaryObject, _ []string) error {
		s := repl.NewShell(objs, c.Config, c.Config.Output)
		if c.Arch >= 0 {
			s.Eval("arch " + strconv.Itoa(c.Arch))
		}
		if *listen > 0 {
			conn, err := repl.Accept("localhost", strconv.Itoa(*listen))
			if err != nil {
				return err
			}
			defer conn.Close()
			return s.Serve(conn)
		}
		return s.Run()
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("shell", "interactive command shell", Main) }
