package opcode

import (
	"testing"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func program(t *testing.T, source string) *analyzer.Program {
	t.Helper()
	obj, err := assembler.AssembleSource(source)
	require.NoError(t, err)
	return analyzer.NewProgram("prog.asm", obj)
}

func integerProfile() *profile.VMProfile {
	p := profile.Default()
	p.AllowedInstructions = []string{"addiu", "addu", "jal", "jr", "syscall", "lui", "ori"}
	return p
}

const source = `main:
	li $a0, 1
	jal convert
	li $v0, 10
	syscall
convert:
	mtc1 $a0, $f0
	cvt.s.w $f2, $f0
	jr $ra
unused:
	sqrt.s $f4, $f2
`

func TestAnalyze(t *testing.T) {
	prog := program(t, source)
	issues, err := NewAnalyser(integerProfile()).Analyze(prog, true)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, analyzer.IssueSeverityCritical, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "mtc1")
	assert.Equal(t, "convert", issues[0].CallStack.Label)
	assert.Equal(t, 7, issues[0].CallStack.Line)
	assert.Equal(t, assembler.Address(4), issues[0].CallStack.Address)
	require.NotNil(t, issues[0].CallStack.CallStack)
	assert.Equal(t, "main", issues[0].CallStack.CallStack.Label)
	assert.Equal(t, 3, issues[0].CallStack.CallStack.Line)

	assert.Contains(t, issues[1].Message, "cvt.s.w")
}

func TestAnalyzeWithoutTrace(t *testing.T) {
	issues, err := NewAnalyser(integerProfile()).Analyze(program(t, source), false)
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.Nil(t, issue.CallStack.CallStack)
	}
}

func TestAnalyzeIgnoredLabel(t *testing.T) {
	p := integerProfile()
	p.IgnoredLabels = []string{"convert"}
	issues, err := NewAnalyser(p).Analyze(program(t, source), false)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.Equal(t, analyzer.IssueSeverityWarning, issue.Severity)
	}
}

func TestAnalyzeAllowAll(t *testing.T) {
	issues, err := NewAnalyser(profile.Default()).Analyze(program(t, source), true)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestAnalyzeUnknownWord(t *testing.T) {
	prog := program(t, "li $v0, 10\nsyscall\n")
	prog.Object.Instructions[0] = 0xfc000000
	issues, err := NewAnalyser(profile.Default()).Analyze(prog, false)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Unknown Instruction Word Detected: 0xfc000000", issues[0].Message)
}

func TestTraceStack(t *testing.T) {
	stack, err := NewAnalyser(profile.Default()).TraceStack(program(t, source), "convert")
	require.NoError(t, err)
	assert.Equal(t, 2, stack.Depth())

	_, err = NewAnalyser(profile.Default()).TraceStack(program(t, source), "unused")
	assert.ErrorIs(t, err, analyzer.ErrUnreachable)
}
