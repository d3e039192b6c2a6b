package main

import (
	"os"

	"github.com/couimet/rangeLink-sub005/cmd/rangelink/commands"
)

func main() {
	g := commands.NewGlobal()
	cli := &commands.CLI{}

	parser, err := commands.New(cli, g)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	os.Exit(commands.ExitCode(os.Stderr, ctx.Run(), cli.Verbose, cli.Logger()))
}
