package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/errors"

	"github.com/lunixbochs/binspect/go/loader"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/snapshot"
)

// InspectCmd is the shared front end of every subcommand: common flags,
// config loading and input parsing. Subcommands add flags in SetupFlags and
// do their work in RunObjects.
type InspectCmd struct {
	Config *models.Config
	Flags  *flag.FlagSet

	// Usage is appended to "Usage: <cmd> [options]".
	Usage      string
	NoInput    bool
	SetupFlags func() error
	RunObjects func(objs []*models.BinaryObject, args []string) error

	Path string
	Arch int
}

func NewInspectCmd() *InspectCmd {
	fs := flag.NewFlagSet("cli", flag.ExitOnError)
	return &InspectCmd{Flags: fs, Usage: "<file>", Arch: -1}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (c *InspectCmd) PrintError(err error) {
	// print an error, and a stacktrace if available
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if c.Config == nil || !c.Config.Verbose {
		return
	}
	if err, ok := err.(stackTracer); ok {
		var frames [][]string
		for _, f := range err.StackTrace() {
			fileline := fmt.Sprintf("%s:%d", f, f)
			method := fmt.Sprintf("%n", f)
			frames = append(frames, []string{fileline, method})
			if method == "main" {
				break
			}
		}
		width := 0
		for _, f := range frames {
			if len(f[0]) > width {
				width = len(f[0])
			}
		}
		for _, f := range frames {
			fmt.Fprintf(os.Stderr, "%-*s | %s()\n", width, f[0], f[1])
		}
	}
}

// Open parses a file, or loads it if it is a snapshot written by dump.
func Open(path string, skipBad bool) ([]*models.BinaryObject, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if snapshot.Match(data) {
		hdr, objs, err := snapshot.Read(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: bad snapshot", path)
		}
		log.WithFields(log.Fields{"path": path, "source": hdr.Source}).Debug("loaded snapshot")
		return objs, nil
	}
	objs, err := loader.Parse(bytes.NewReader(data), int64(len(data)), loader.WithSkipBadSlices(skipBad))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	log.WithFields(log.Fields{"path": path, "arches": len(objs)}).Debug("parsed")
	return objs, nil
}

// Selected returns the indices of the architectures to act on.
func (c *InspectCmd) Selected(objs []*models.BinaryObject) []int {
	var ret []int
	for i := range objs {
		if c.Arch < 0 || c.Arch == i {
			ret = append(ret, i)
		}
	}
	return ret
}

func (c *InspectCmd) Run(argv []string) int {
	fs := c.Flags
	verbose := fs.Bool("v", false, "verbose output")
	color := fs.Bool("color", models.ColorDefault(), "colorize output")
	skipBad := fs.Bool("skip-bad", false, "skip fat slices that fail to parse instead of failing")
	configPath := fs.String("config", "", "load config from json file")
	demangle := fs.Bool("demangle", false, "demangle symbols using c++filt")
	disbytes := fs.Bool("disbytes", false, "show instruction bytes with disassembly")
	dis := fs.String("dis", "", "disassembler backend (xarch or capstone)")
	syntax := fs.String("syntax", "", "x86 assembly syntax (intel, gnu or go)")
	strsize := fs.Int("strsize", 0, "truncate printed strings to length (0 uses config)")
	fs.IntVar(&c.Arch, "arch", -1, "only act on architecture <n> of a fat file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] %s\n\nOptions:\n", argv[0], c.Usage)
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		models.PrintFlags(os.Stderr, flags)
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			panic(err)
		}
	}
	fs.Parse(argv[1:])

	log.SetHandler(cli.New(os.Stderr))
	if *verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	config, err := models.LoadConfig()
	if err != nil {
		log.WithError(err).Warn("ignoring config")
	}
	if *configPath != "" {
		data, err := ioutil.ReadFile(*configPath)
		if err == nil {
			err = config.Merge(data)
		}
		if err != nil {
			c.PrintError(err)
			return 1
		}
	}
	// explicit flags win over config files
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			config.Verbose = *verbose
		case "color":
			config.Color = *color
		case "skip-bad":
			config.SkipBadSlices = *skipBad
		case "demangle":
			config.Demangle = *demangle
		case "disbytes":
			config.DisBytes = *disbytes
		case "dis":
			config.DisBackend = *dis
		case "syntax":
			config.DisSyntax = *syntax
		case "strsize":
			config.Strsize = *strsize
		}
	})
	config.Output = models.Stdout()
	c.Config = config

	args := fs.Args()
	var objs []*models.BinaryObject
	if !c.NoInput {
		if len(args) < 1 {
			fs.Usage()
			return 1
		}
		c.Path, args = args[0], args[1:]
		objs, err = Open(c.Path, config.SkipBadSlices)
		if err != nil {
			c.PrintError(err)
			return 1
		}
		if c.Arch >= len(objs) {
			c.PrintError(errors.Errorf("%s has %d architectures, no arch %d", c.Path, len(objs), c.Arch))
			return 1
		}
	}
	if err := c.RunObjects(objs, args); err != nil {
		c.PrintError(err)
		return 1
	}
	return 0
}
