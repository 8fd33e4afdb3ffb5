// Package opcode implements analyzer.Analyzer for detecting incompatible instructions.
package opcode

import (
	"fmt"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/profile"
)

type opcode struct {
	profile *profile.VMProfile
}

func NewAnalyser(profile *profile.VMProfile) analyzer.Analyzer {
	return &opcode{profile: profile}
}

func (op *opcode) Analyze(prog *analyzer.Program, withTrace bool) ([]*analyzer.Issue, error) {
	issues := make([]*analyzer.Issue, 0)
	for _, segment := range prog.Graph.Segments() {
		for i := segment.Start; i < segment.End; i++ {
			message, ok := op.check(prog.Object.Instructions[i])
			if ok {
				continue
			}
			source, err := analyzer.TraceInstruction(prog, i, analyzer.IsEntry)
			if err != nil { // non-reachable portion ignored
				continue
			}

			issue := &analyzer.Issue{
				Severity:  analyzer.IssueSeverityCritical,
				CallStack: source,
				Message:   message,
			}
			if analyzer.ShouldIgnoreSource(source, op.profile) {
				issue.Severity = analyzer.IssueSeverityWarning
			}
			if !withTrace {
				source.CallStack = nil
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// check decodes word and reports whether the profile can execute it.
func (op *opcode) check(word uint32) (string, bool) {
	spec, ok := instruction.SpecOf(instruction.Decode(word))
	if !ok {
		return fmt.Sprintf("Unknown Instruction Word Detected: 0x%08x", word), false
	}
	if !op.profile.InstructionAllowed(spec.Mnemonic) {
		return fmt.Sprintf("Potential Incompatible Instruction Detected: %s (opcode 0x%02x, funct 0x%02x)",
			spec.Mnemonic, spec.Op, spec.Func), false
	}
	return "", true
}

// TraceStack generates callstack for a label to debug
func (op *opcode) TraceStack(prog *analyzer.Program, label string) (*analyzer.CallStack, error) {
	return analyzer.TraceCaller(prog, label, analyzer.IsEntry)
}
