package main

import (
	"github.com/lunixbochs/binspect/go/cmd"

	_ "github.com/lunixbochs/binspect/go/cmd/dis"
	_ "github.com/lunixbochs/binspect/go/cmd/dump"
	_ "github.com/lunixbochs/binspect/go/cmd/hexdump"
	_ "github.com/lunixbochs/binspect/go/cmd/info"
	_ "github.com/lunixbochs/binspect/go/cmd/sections"
	_ "github.com/lunixbochs/binspect/go/cmd/strings"
	_ "github.com/lunixbochs/binspect/go/cmd/symbols"
	_ "github.com/lunixbochs/binspect/go/cmd/verify"

	_ "github.com/lunixbochs/binspect/go/cmd/lua"
	_ "github.com/lunixbochs/binspect/go/cmd/script"
	_ "github.com/lunixbochs/binspect/go/cmd/shell"
	_ "github.com/lunixbochs/binspect/go/cmd/tui"
)

func main() { cmd.Main() }
