package cmd

import (
	"fmt"
	"os"
	"strings"
)

type command struct {
	name, desc string
	main       func(args []string)
}

var commands = make(map[string]*command)
var order []string
var pad int

// Register adds a subcommand. main gets argv with "binspect <name>" joined
// into argv[0].
func Register(name, desc string, main func(args []string)) {
	if len(name) > pad {
		pad = len(name)
	}
	commands[name] = &command{name, desc, main}
	order = append(order, name)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Commands:")
	fstr := fmt.Sprintf("  %%-%ds | %%s\n", pad)
	for _, name := range order {
		cmd := commands[name]
		fmt.Fprintf(os.Stderr, fstr, cmd.name, cmd.desc)
	}
	fmt.Fprintf(os.Stderr, "\nExample: %s symbols -filter _main /bin/ls\n\n", os.Args[0])
}

func Main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Command '%s' not found.\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	args := append([]string{strings.Join(os.Args[:2], " ")}, os.Args[2:]...)
	cmd.main(args)
}
