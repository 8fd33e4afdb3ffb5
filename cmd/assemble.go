package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/renderer"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	ObjectFormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "format of the listing. Options: text, json, dump",
		Required: false,
		Value:    "text",
	}
	OutputPathFlag = &cli.PathFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "output file path for the listing. Default: stdout",
		Required: false,
	}
)

func CreateAssembleCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "assemble",
		Usage:       "Assembles a program and prints its symbols, data and instructions",
		Description: "Assembles a program and prints its symbols, data and instructions",
		ArgsUsage:   "<file.asm>",
		Action:      action,
		Flags: []cli.Flag{
			ObjectFormatFlag,
			OutputPathFlag,
		},
	}
}

var AssembleCommand = CreateAssembleCommand(Assemble)

func Assemble(ctx *cli.Context) error {
	path, err := sourcePath(ctx)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading source file: %w", err)
	}
	obj, err := assembler.AssembleSource(string(source))
	if err != nil {
		return fmt.Errorf("error assembling %s: %w", path, err)
	}

	objRenderer, err := renderer.NewObject(ctx.String(ObjectFormatFlag.Name))
	if err != nil {
		return err
	}
	outputPath := ctx.Path(OutputPathFlag.Name)
	if dump, ok := objRenderer.(*renderer.DumpRenderer); ok && outputPath == "" {
		dump.WithColor(term.IsTerminal(int(os.Stdout.Fd())))
	}
	return withOutput(outputPath, func(output io.Writer) error {
		return objRenderer.RenderObject(obj, output)
	})
}
