package callgraph

import (
	"testing"

	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `
	.data
msg: .asciiz "hi"
	.text
main:
	li $a0, 2
	jal print
	beq $a0, $0, done
	j main
print:
	li $v0, 1
	syscall
	jr $ra
done:
	li $v0, 10
	syscall
`

func build(t *testing.T, source string) *Graph {
	t.Helper()
	obj, err := assembler.AssembleSource(source)
	require.NoError(t, err)
	return Build(obj)
}

func labels(segments []*Segment) []string {
	return lo.Map(segments, func(s *Segment, _ int) string { return s.Label })
}

func TestBuildSegments(t *testing.T) {
	g := build(t, program)

	assert.Equal(t, []string{"main", "print", "done"}, labels(g.Segments()))
	main, ok := g.Segment("main")
	require.True(t, ok)
	assert.Equal(t, 0, main.Start)
	assert.Equal(t, 4, main.End)
	assert.Equal(t, assembler.TextBase, main.Address())

	callee, ok := g.Segment("print")
	require.True(t, ok)
	assert.Equal(t, callee, g.SegmentOf(5))
	assert.Nil(t, g.SegmentOf(42))

	_, ok = g.Segment("msg")
	assert.False(t, ok)
	_, ok = g.Segment("missing")
	assert.False(t, ok)
}

func TestEdges(t *testing.T) {
	g := build(t, program)
	main, _ := g.Segment("main")
	callee, _ := g.Segment("print")
	done, _ := g.Segment("done")

	assert.Equal(t, []Edge{{Parent: main, Site: 1, Kind: EdgeCall}}, g.Edges(callee))
	assert.Equal(t, []Edge{{Parent: main, Site: 2, Kind: EdgeBranch}}, g.Edges(done))
	assert.Equal(t, []Edge{{Parent: main, Site: 3, Kind: EdgeJump}}, g.Edges(main))
	assert.Equal(t, []*Segment{main}, g.ParentsOf(callee))
}

func TestFallthrough(t *testing.T) {
	g := build(t, "li $t0, 3\nloop:\naddi $t0, $t0, 1\nbne $t0, $0, loop\n")

	assert.Equal(t, []string{EntryLabel, "loop"}, labels(g.Segments()))
	entry := g.Segments()[0]
	loop := g.Segments()[1]
	assert.Equal(t, []Edge{
		{Parent: entry, Site: 0, Kind: EdgeFallthrough},
		{Parent: loop, Site: 2, Kind: EdgeBranch},
	}, g.Edges(loop))
	assert.Len(t, g.Instructions(loop), 2)
}

func TestRetrieveSyscallNum(t *testing.T) {
	g := build(t, program)

	got, err := g.RetrieveSyscallNum(5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Number)
	assert.True(t, got[0].Resolved)

	got, err = g.RetrieveSyscallNum(8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Number)

	_, err = g.RetrieveSyscallNum(0)
	assert.Error(t, err)
}

func TestRetrieveSyscallNumAcrossSegments(t *testing.T) {
	g := build(t, `
	li $v0, 4
	j emit
other:
	li $t0, 11
	move $v0, $t0
	j emit
emit:
	syscall
`)
	emit, _ := g.Segment("emit")
	got, err := g.RetrieveSyscallNum(emit.Start)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{4, 11}, lo.Map(got, func(s *Syscall, _ int) int { return s.Number }))
	assert.True(t, lo.EveryBy(got, func(s *Syscall) bool { return s.Resolved && s.Segment == emit }))
}

func TestRetrieveSyscallNumLargeImmediate(t *testing.T) {
	g := build(t, "li $v0, 0x12345\nsyscall\n")
	got, err := g.RetrieveSyscallNum(2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0x12345, got[0].Number)
}

func TestRetrieveSyscallNumUnresolved(t *testing.T) {
	cases := map[string]string{
		"loaded":   "lw $v0, 0($sp)\nsyscall\n",
		"computed": "li $t0, 2\nsll $v0, $t0, 2\nsyscall\n",
		"unset":    "syscall\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			g := build(t, source)
			index := g.Object().Len() - 1
			got, err := g.RetrieveSyscallNum(index)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.False(t, got[0].Resolved)
		})
	}
}

func TestRetrieveSyscallNumLoop(t *testing.T) {
	g := build(t, "li $v0, 1\nloop:\nsyscall\nj loop\n")
	got, err := g.RetrieveSyscallNum(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Number)
}

func TestEdgeKindString(t *testing.T) {
	assert.Equal(t, "call", EdgeCall.String())
	assert.Equal(t, "fallthrough", EdgeFallthrough.String())
}
