package main

import (
	"context"
	"log"
	"os"

	"github.com/ChainSafe/mips-vm/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "mips-vm"
	app.Usage = "MIPS assembler, runtime and compatibility analyzer"
	app.Description = "Assembles MIPS32 programs, runs them on an emulated MIPS machine and checks them against VM profiles"
	app.Commands = []*cli.Command{
		cmd.AssembleCommand,
		cmd.RunCommand,
		cmd.AnalyzeCommand,
		cmd.TraceCommand,
	}
	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
