package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/analyzer/opcode"
	"github.com/ChainSafe/mips-vm/analyzer/syscall"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/ChainSafe/mips-vm/renderer"
	"github.com/urfave/cli/v2"
)

var (
	VMProfileFlag = &cli.PathFlag{
		Name:     "vm-profile",
		Usage:    "Path to the VM profile config file. Default: built-in mars profile",
		Required: false,
	}
	AnalysisTypeFlag = &cli.StringFlag{
		Name:     "analysis-type",
		Usage:    "Type of analysis to perform. Options: opcode, syscall",
		Required: false,
	}
	FormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "format of the output. Options: json, text",
		Required: false,
		Value:    "text",
	}
	ReportOutputPathFlag = &cli.PathFlag{
		Name:     "report-output-path",
		Usage:    "output file path for report. Default: stdout",
		Required: false,
	}
	TraceFlag = &cli.BoolFlag{
		Name:     "with-trace",
		Usage:    "enable full stack trace output",
		Required: false,
		Value:    false,
	}
)

func CreateAnalyzeCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "analyze",
		Usage:       "Checks the program compatibility against the VM profile",
		Description: "Checks the program compatibility against the VM profile",
		ArgsUsage:   "<file.asm>",
		Action:      action,
		Flags: []cli.Flag{
			VMProfileFlag,
			AnalysisTypeFlag,
			FormatFlag,
			ReportOutputPathFlag,
			TraceFlag,
		},
	}
}

var AnalyzeCommand = CreateAnalyzeCommand(AnalyzeCompatibility)

func AnalyzeCompatibility(ctx *cli.Context) error {
	prof, err := loadProfile(ctx)
	if err != nil {
		return err
	}

	source, err := sourcePath(ctx)
	if err != nil {
		return err
	}
	format := ctx.String(FormatFlag.Name)
	reportOutputPath := ctx.Path(ReportOutputPathFlag.Name)
	analysisType := ctx.String(AnalysisTypeFlag.Name)
	withTrace := ctx.Bool(TraceFlag.Name)

	prog, err := analyzer.LoadProgram(source)
	if err != nil {
		return err
	}

	issues, err := analyze(prof, prog, analysisType, withTrace)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeReport(issues, format, reportOutputPath, prof); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

// loadProfile reads the --vm-profile file or falls back to the default profile.
func loadProfile(ctx *cli.Context) (*profile.VMProfile, error) {
	path := ctx.Path(VMProfileFlag.Name)
	if path == "" {
		return profile.Default(), nil
	}
	prof, err := profile.LoadProfile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return prof, nil
}

func sourcePath(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one source file, got %d arguments", ctx.NArg())
	}
	return ctx.Args().First(), nil
}

// analyze runs the selected analyzer(s).
func analyze(prof *profile.VMProfile, prog *analyzer.Program, mode string, withTrace bool) ([]*analyzer.Issue, error) {
	switch mode {
	case "opcode":
		return opcode.NewAnalyser(prof).Analyze(prog, withTrace)
	case "syscall":
		return syscall.NewAnalyser(prof).Analyze(prog, withTrace)
	case "":
	default:
		return nil, fmt.Errorf("invalid analysis type: %s", mode)
	}
	// by default analyze both
	opIssues, err := opcode.NewAnalyser(prof).Analyze(prog, withTrace)
	if err != nil {
		return nil, err
	}
	sysIssues, err := syscall.NewAnalyser(prof).Analyze(prog, withTrace)
	if err != nil {
		return nil, err
	}

	return append(opIssues, sysIssues...), nil
}

// writeReport outputs the results in the specified format.
func writeReport(issues []*analyzer.Issue, format, outputPath string, prof *profile.VMProfile) error {
	rendererInstance, err := renderer.New(format, prof)
	if err != nil {
		return err
	}
	return withOutput(outputPath, func(output io.Writer) error {
		return rendererInstance.Render(issues, output)
	})
}

// withOutput calls write with stdout, or with the file at outputPath when set.
func withOutput(outputPath string, write func(io.Writer) error) error {
	if outputPath == "" {
		return write(os.Stdout)
	}
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("unable to determine absolute path: %w", err)
	}
	output, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	defer func() {
		_ = output.Close()
	}()
	return write(output)
}
