// Package syscall implements analyzer.Analyzer for detecting syscalls a VM
// profile cannot serve.
package syscall

import (
	"fmt"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/analyzer/callgraph"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/ChainSafe/mips-vm/vm"
)

const (
	syscallReferenceURL = "https://courses.missouristate.edu/kenvollmar/mars/help/syscallhelp.html"
	potentialImpactMsg  = `This syscall is present in the program, but its execution depends on the actual runtime behavior.
             If the execution path does not reach this syscall, it may not affect execution.`
	unresolvedImpactMsg = `The syscall number is computed at runtime and could not be resolved statically.`
)

// syscallAnalyser analyzes system calls of an assembled program.
type syscallAnalyser struct {
	profile *profile.VMProfile
}

// NewAnalyser initializes an analyser for syscalls.
func NewAnalyser(profile *profile.VMProfile) analyzer.Analyzer {
	return &syscallAnalyser{profile: profile}
}

// Analyze resolves the number of every reachable syscall and reports the ones
// the profile rejects.
func (a *syscallAnalyser) Analyze(prog *analyzer.Program, withTrace bool) ([]*analyzer.Issue, error) {
	issues := make([]*analyzer.Issue, 0)
	for _, segment := range prog.Graph.Segments() {
		for i := segment.Start; i < segment.End; i++ {
			if !callgraph.IsSyscall(prog.Object.ObjInstructions[i]) {
				continue
			}
			syscalls, err := prog.Graph.RetrieveSyscallNum(i)
			if err != nil {
				return nil, fmt.Errorf("failed to retrieve syscall number: %w", err)
			}
			for _, syscall := range syscalls {
				issue := a.categorize(syscall)
				if issue == nil {
					continue
				}
				source, err := analyzer.TraceInstruction(prog, syscall.Index, analyzer.IsEntry)
				if err != nil { // non-reachable portion ignored
					continue
				}
				if analyzer.ShouldIgnoreSource(source, a.profile) {
					issue.Severity = analyzer.IssueSeverityWarning
				}
				if !withTrace {
					source.CallStack = nil
				}
				issue.CallStack = source
				issues = append(issues, issue)
			}
		}
	}
	return issues, nil
}

// categorize returns nil for a syscall the profile serves.
func (a *syscallAnalyser) categorize(syscall *callgraph.Syscall) *analyzer.Issue {
	if !syscall.Resolved {
		return &analyzer.Issue{
			Severity:  analyzer.IssueSeverityWarning,
			Message:   "Unresolved Syscall Number Detected",
			Impact:    unresolvedImpactMsg,
			Reference: syscallReferenceURL,
		}
	}
	name, known := vm.SyscallName(syscall.Number)
	switch {
	case !known:
		return &analyzer.Issue{
			Severity:  analyzer.IssueSeverityCritical,
			Message:   fmt.Sprintf("Unknown Syscall Detected: %d", syscall.Number),
			Impact:    potentialImpactMsg,
			Reference: syscallReferenceURL,
		}
	case a.profile.SyscallNoop(syscall.Number):
		return &analyzer.Issue{
			Severity:  analyzer.IssueSeverityWarning,
			Message:   fmt.Sprintf("Potential NOOP Syscall Detected: %d (%s)", syscall.Number, name),
			Impact:    potentialImpactMsg,
			Reference: syscallReferenceURL,
		}
	case !a.profile.SyscallAllowed(syscall.Number):
		return &analyzer.Issue{
			Severity:  analyzer.IssueSeverityCritical,
			Message:   fmt.Sprintf("Potential Incompatible Syscall Detected: %d (%s)", syscall.Number, name),
			Impact:    potentialImpactMsg,
			Reference: syscallReferenceURL,
		}
	}
	return nil
}

// TraceStack generates callstack for a label to debug
func (a *syscallAnalyser) TraceStack(prog *analyzer.Program, label string) (*analyzer.CallStack, error) {
	return analyzer.TraceCaller(prog, label, analyzer.IsEntry)
}
