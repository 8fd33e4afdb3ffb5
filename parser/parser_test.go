package parser

import (
	"errors"
	"testing"

	"github.com/ChainSafe/mips-vm/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegments(t *testing.T) {
	root, err := ParseSource(`
.data
msg: .asciiz "Hello, World"
num: .word 42, 7
.text
main:
	addu $t0, $0, $t1
	syscall
`)
	require.NoError(t, err)

	require.Len(t, root.Data, 2)
	msg, ok := root.Data[0].(*ast.Label)
	require.True(t, ok)
	assert.Equal(t, "msg", msg.Name)
	assert.Equal(t, &ast.Data{Directive: ".asciiz", Values: []string{`"Hello, World"`}, Line: 3}, msg.Child)
	num := root.Data[1].(*ast.Label)
	assert.Equal(t, []string{"42", "7"}, num.Child.(*ast.Data).Values)

	require.Len(t, root.Text, 2)
	main, ok := root.Text[0].(*ast.Label)
	require.True(t, ok)
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, "addu $t0, $0, $t1", main.Child.String())
	assert.Equal(t, "syscall", root.Text[1].String())

	assert.Equal(t, []*ast.Directive{{Name: ".data", Line: 2}, {Name: ".text", Line: 5}}, root.Directives)
}

func TestParseDefaultsToText(t *testing.T) {
	root, err := ParseSource("addi $t0, $t0, 1\n")
	require.NoError(t, err)
	require.Len(t, root.Text, 1)
	assert.Empty(t, root.Data)
	assert.Empty(t, root.Directives)
}

func TestParseArguments(t *testing.T) {
	root, err := ParseSource("lw $t0, -4($sp)\nsw $t1, ($a0)\nj end\nli $a0, 'A'\nori $t0, $t1, 0x10")
	require.NoError(t, err)
	require.Len(t, root.Text, 5)

	lw := root.Text[0].(*ast.Operation)
	assert.Equal(t, &ast.Register{Name: "$t0"}, lw.Args[0])
	assert.Equal(t, &ast.Offset{Offset: ast.Immediate{Text: "-4"}, Register: ast.Register{Name: "$sp"}}, lw.Args[1])

	sw := root.Text[1].(*ast.Operation)
	assert.Equal(t, &ast.Offset{Offset: ast.Immediate{Text: "0"}, Register: ast.Register{Name: "$a0"}}, sw.Args[1])

	j := root.Text[2].(*ast.Operation)
	assert.Equal(t, &ast.Address{Label: "end"}, j.Args[0])

	li := root.Text[3].(*ast.Transformed)
	assert.Equal(t, "addiu $a0, $0, 65", li.String())

	ori := root.Text[4].(*ast.Operation)
	assert.Equal(t, &ast.Immediate{Text: "0x10"}, ori.Args[2])
}

func TestParseLabels(t *testing.T) {
	root, err := ParseSource("a:\nb:\n  syscall\nc: nop\nend:\n")
	require.NoError(t, err)
	require.Len(t, root.Text, 3)

	a := root.Text[0].(*ast.Label)
	b := a.Child.(*ast.Label)
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, "syscall", b.Child.String())

	c := root.Text[1].(*ast.Label)
	_, ok := c.Child.(*ast.Transformed)
	assert.True(t, ok)

	end := root.Text[2].(*ast.Label)
	assert.Equal(t, "end", end.Name)
	assert.Nil(t, end.Child)
}

func TestParseLabelBeforeSegmentSwitch(t *testing.T) {
	root, err := ParseSource("done:\n.data\nx: .word 1\n")
	require.NoError(t, err)
	require.Len(t, root.Text, 1)
	assert.Equal(t, "done:", root.Text[0].String())
	require.Len(t, root.Data, 1)
}

func TestParseUnlabeledData(t *testing.T) {
	root, err := ParseSource(".data\n.word 1\n")
	require.NoError(t, err)
	require.Len(t, root.Data, 1)
	assert.Equal(t, ".word 1", root.Data[0].String())
}

func TestParseErrors(t *testing.T) {
	type testcase struct {
		source string
		err    error
		line   int
	}
	cases := map[string]testcase{
		"unknown root directive": {source: ".globl main\n", err: ErrUnknownDirective, line: 1},
		"directive args":         {source: "\n.data 0x10010000\n", err: ErrUnexpectedToken, line: 2},
		"multi token data":       {source: ".data\nx: .word 1 2\n", err: ErrNotImplemented, line: 2},
		"data without directive": {source: ".data\nx: word 1\n", err: ErrUnexpectedToken, line: 2},
		"leading comma":          {source: ", add\n", err: ErrUnexpectedToken, line: 1},
		"bad offset":             {source: "lw $t0, 4($t1\n", err: ErrUnexpectedToken, line: 1},
		"pseudo arity":           {source: "move $t0\n", err: ErrOperandCount, line: 1},
		"li label":               {source: "li $t0, foo\n", err: ErrBadOperand, line: 1},
		"li too large":           {source: "li $t0, 0x100000000\n", err: ErrBadOperand, line: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSource(tc.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.line, perr.Line)
		})
	}
}
