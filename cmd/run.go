package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/ChainSafe/mips-vm/vm"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	MaxStepsFlag = &cli.Uint64Flag{
		Name:     "max-steps",
		Usage:    "stop after executing this many instructions. Overrides the profile, 0 keeps it",
		Required: false,
	}
	ExecTraceFlag = &cli.BoolFlag{
		Name:     "trace",
		Usage:    "print every executed instruction to stderr",
		Required: false,
		Value:    false,
	}
	BacktraceDepthFlag = &cli.IntFlag{
		Name:     "backtrace-depth",
		Usage:    "number of call frames kept for the error backtrace",
		Required: false,
		Value:    64,
	}
)

func CreateRunCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Assembles and executes a program",
		Description: "Assembles a program and executes it with the process standard streams. Ctrl-C stops it between instructions",
		ArgsUsage:   "<file.asm>",
		Action:      action,
		Flags: []cli.Flag{
			VMProfileFlag,
			MaxStepsFlag,
			ExecTraceFlag,
			BacktraceDepthFlag,
		},
	}
}

var RunCommand = CreateRunCommand(Run)

func Run(ctx *cli.Context) error {
	prof, err := loadProfile(ctx)
	if err != nil {
		return err
	}
	if steps := ctx.Uint64(MaxStepsFlag.Name); steps > 0 {
		prof.MaxSteps = steps
	}

	path, err := sourcePath(ctx)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading source file: %w", err)
	}

	opts := []vm.Option{
		vm.WithProfile(prof),
		vm.WithBacktraceDepth(ctx.Int(BacktraceDepthFlag.Name)),
	}
	if ctx.Bool(ExecTraceFlag.Name) {
		opts = append(opts, vm.WithTrace(os.Stderr))
	}
	machine := vm.New(string(source), os.Stdin, os.Stdout, os.Stderr, opts...)
	if err := machine.Assemble(); err != nil {
		return fmt.Errorf("error assembling %s: %w", path, err)
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()
	if err := machine.Execute(runCtx); err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stdout, "\n-- program is finished running (%d steps) --\n", machine.Steps())
	}
	return nil
}
