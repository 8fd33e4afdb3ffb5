// Package cmd defines all the commands for the cli
package cmd

import (
	"fmt"
	"os"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/renderer"
	"github.com/urfave/cli/v2"
)

var FunctionNameFlag = &cli.StringFlag{
	Name:     "function",
	Usage:    "Label of the routine to trace. Ex: print_result",
	Required: true,
}

func CreateTraceCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "trace",
		Usage:       "Generates stack trace for a given label",
		Description: "Generates the chain of calls, jumps and branches from the entry point to a label",
		ArgsUsage:   "<file.asm>",
		Action:      action,
		Flags: []cli.Flag{
			FunctionNameFlag,
		},
	}
}

var TraceCommand = CreateTraceCommand(TraceCaller)

func TraceCaller(ctx *cli.Context) error {
	path, err := sourcePath(ctx)
	if err != nil {
		return err
	}
	function := ctx.String(FunctionNameFlag.Name)

	prog, err := analyzer.LoadProgram(path)
	if err != nil {
		return err
	}
	callStack, err := analyzer.TraceCaller(prog, function, analyzer.IsEntry)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, renderer.BuildCallStack(os.Stdout, callStack))
	return err
}
