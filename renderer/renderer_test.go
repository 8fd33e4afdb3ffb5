package renderer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issues() []*analyzer.Issue {
	caller := &analyzer.CallStack{File: "prog.asm", AbsPath: "/tmp/prog.asm", Line: 3, Label: "main", Address: 0x00400004}
	return []*analyzer.Issue{
		{
			Severity:  analyzer.IssueSeverityCritical,
			Message:   "Potential Incompatible Syscall Detected: 2 (print_float)",
			Impact:    "impact",
			Reference: "https://example.com",
			CallStack: &analyzer.CallStack{
				File: "prog.asm", AbsPath: "/tmp/prog.asm", Line: 9, Label: "emit", Address: 0x00400020,
				CallStack: caller,
			},
		},
		{
			Severity:  analyzer.IssueSeverityCritical,
			Message:   "Potential Incompatible Syscall Detected: 2 (print_float)",
			CallStack: &analyzer.CallStack{File: "prog.asm", Line: 12, Label: "main", Address: 0x00400028},
		},
		{
			Severity:  analyzer.IssueSeverityWarning,
			Message:   "Unresolved Syscall Number Detected",
			CallStack: &analyzer.CallStack{File: "prog.asm", Line: 5, Label: "main", Address: 0x0040000c},
		},
	}
}

func TestTextRenderer(t *testing.T) {
	var out bytes.Buffer
	r, err := New("text", profile.Default())
	require.NoError(t, err)
	require.NoError(t, r.Render(issues(), &out))

	report := out.String()
	assert.Contains(t, report, "VM Profile: mars")
	assert.Contains(t, report, "Critical Issues: 1")
	assert.Contains(t, report, "Warnings: 1")
	assert.Contains(t, report, "Total Issues: 2")
	assert.Contains(t, report, "1. [CRITICAL] Potential Incompatible Syscall Detected: 2 (print_float)")
	assert.Contains(t, report, "2. [WARNING] Unresolved Syscall Number Detected")
	assert.Contains(t, report, "-> prog.asm:9 (/tmp/prog.asm) : (emit @ 0x00400020)")
	assert.Contains(t, report, "-> prog.asm:3 (/tmp/prog.asm) : (main @ 0x00400004)")
	assert.Contains(t, report, "Reference: https://example.com")
	assert.Equal(t, "text", r.Format())
}

func TestTextRendererNoIssues(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewTextRenderer(profile.Default()).Render(nil, &out))
	assert.Empty(t, out.String())
}

func TestJSONRenderer(t *testing.T) {
	var out bytes.Buffer
	r, err := New("json", profile.Default())
	require.NoError(t, err)
	require.NoError(t, r.Render(issues(), &out))

	var decoded []*analyzer.Issue
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, issues(), decoded)
}

func TestInvalidFormat(t *testing.T) {
	_, err := New("html", profile.Default())
	assert.Error(t, err)
	_, err = NewObject("html")
	assert.Error(t, err)
}

const source = `
	.data
n:	.word 42
	.text
main:
	la $t0, n
	jal done
done:
	syscall
`

func assemble(t *testing.T) *assembler.Object {
	t.Helper()
	obj, err := assembler.AssembleSource(source)
	require.NoError(t, err)
	return obj
}

func TestListingRenderer(t *testing.T) {
	var out bytes.Buffer
	r, err := NewObject("text")
	require.NoError(t, err)
	require.NoError(t, r.RenderObject(assemble(t), &out))

	listing := out.String()
	assert.Contains(t, listing, "0x10010000  n")
	assert.Contains(t, listing, "0x00400000  main")
	assert.Contains(t, listing, "0x10010000  00 00 00 2a")
	assert.Contains(t, listing, "main:\n  0x00400000  3c011001  lui $at, 0x1001")
	assert.Contains(t, listing, "jal 0x0040000c <done>")
	assert.Contains(t, listing, "done:\n  0x0040000c  0000000c  syscall")
	assert.True(t, strings.HasSuffix(listing, "# line 9\n"))
}

func TestJSONObjectRenderer(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewJSONRenderer().RenderObject(assemble(t), &out))

	var decoded struct {
		Symbols      map[string]string `json:"symbols"`
		Relocations  map[string]string `json:"relocations"`
		Data         string            `json:"data"`
		Instructions []struct {
			Address string `json:"address"`
			Word    string `json:"word"`
			Line    int    `json:"line"`
		} `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "0x10010000", decoded.Symbols["n"])
	assert.Equal(t, "done", decoded.Relocations["0x00400008"])
	assert.Equal(t, "0000002a", decoded.Data)
	require.Len(t, decoded.Instructions, 4)
	assert.Equal(t, "0x0000000c", decoded.Instructions[3].Word)
	assert.Equal(t, 6, decoded.Instructions[0].Line)
}

func TestDumpRenderer(t *testing.T) {
	var out bytes.Buffer
	r, err := NewObject("dump")
	require.NoError(t, err)
	require.NoError(t, r.RenderObject(assemble(t), &out))
	assert.Contains(t, out.String(), "Symbols")
	assert.Contains(t, out.String(), "Relocations")
	assert.NotContains(t, out.String(), "\033[")
	assert.Equal(t, "dump", r.Format())
}
