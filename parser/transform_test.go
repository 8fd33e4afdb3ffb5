package parser

import (
	"testing"

	"github.com/ChainSafe/mips-vm/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expand(t *testing.T, source string) string {
	t.Helper()
	root, err := ParseSource(source)
	require.NoError(t, err)
	require.Len(t, root.Text, 1)
	return root.Text[0].String()
}

func TestTransform(t *testing.T) {
	cases := map[string]string{
		"bge $t0, $t1, L":        "slt $at, $t0, $t1; beq $at, $0, L",
		"bgt $t0, $t1, L":        "slt $at, $t1, $t0; bne $at, $0, L",
		"ble $t0, $t1, L":        "slt $at, $t1, $t0; beq $at, $0, L",
		"blt $t0, $t1, L":        "slt $at, $t0, $t1; bne $at, $0, L",
		"la $a0, msg":            "lui $at, upper(msg); ori $a0, $at, lower(msg)",
		"la $a0, 0x10010004":     "lui $at, 0x1001; ori $a0, $at, 0x4",
		"li $t0, 10":             "addiu $t0, $0, 10",
		"li $t0, 0xFFFFFFFF":     "lui $at, 0xffff; ori $t0, $at, 0xffff",
		"li $t0, -1":             "lui $at, 0xffff; ori $t0, $at, 0xffff",
		"move $t0, $t1":          "addu $t0, $0, $t1",
		"sgt $t0, $t1, $t2":      "slt $t0, $t2, $t1",
		"seq $t0, $t1, $t2":      "subu $t0, $t1, $t2; ori $at, $0, 1; sltu $t0, $t0, $at",
		"nop":                    "sll $at, $at, $0",
		"b L":                    "beq $0, $0, L",
		"beqz $t0, L":            "beq $t0, $0, L",
		"bnez $t0, L":            "bne $t0, $0, L",
		"neg $t0, $t1":           "sub $t0, $0, $t1",
		"not $t0, $t1":           "nor $t0, $t1, $0",
		"mul $t0, $t1, $t2":      "mult $t1, $t2; mflo $t0",
		"addi $sp, $sp, -8":      "lui $at, 0xffff; ori $at, $at, 0xfff8; add $sp, $sp, $at",
		"addiu $t0, $t0, 65536":  "lui $at, 0x1; ori $at, $at, 0x0; addu $t0, $t0, $at",
		"andi $t0, $t0, 0x10000": "lui $at, 0x1; ori $at, $at, 0x0; and $t0, $t0, $at",
		"ori $t0, $t0, 0x12345":  "lui $at, 0x1; ori $at, $at, 0x2345; or $t0, $t0, $at",
		"xori $t0, $t0, -2":      "lui $at, 0xffff; ori $at, $at, 0xfffe; xor $t0, $t0, $at",
		"slti $t0, $t0, -2":      "lui $at, 0xffff; ori $at, $at, 0xfffe; slt $t0, $t0, $at",
		"sltiu $t0, $t0, -2":     "lui $at, 0xffff; ori $at, $at, 0xfffe; sltu $t0, $t0, $at",
	}
	for source, want := range cases {
		t.Run(source, func(t *testing.T) {
			assert.Equal(t, want, expand(t, source))
		})
	}
}

func TestTransformPassThrough(t *testing.T) {
	for _, source := range []string{"addi $t0, $t0, 1", "ori $t0, $t0, 0xffff", "add $t0, $t1, $t2", "addiu $t0, $t0, label"} {
		root, err := ParseSource(source)
		require.NoError(t, err)
		_, ok := root.Text[0].(*ast.Operation)
		assert.True(t, ok, source)
	}
}

func TestTransformKeepsOriginal(t *testing.T) {
	root, err := ParseSource("main: li $t0, 0x10000")
	require.NoError(t, err)
	label := root.Text[0].(*ast.Label)
	tr, ok := label.Child.(*ast.Transformed)
	require.True(t, ok)
	assert.Equal(t, "li $t0, 0x10000", tr.Original.String())
	require.Len(t, tr.Children, 2)
	assert.Equal(t, 1, tr.Children[0].Line)
}

func TestTransformIdempotent(t *testing.T) {
	root, err := ParseSource("li $t0, 0x10000\nmove $t1, $t0")
	require.NoError(t, err)
	before := root.Text[0].String() + root.Text[1].String()
	require.NoError(t, Transform(root))
	assert.Equal(t, before, root.Text[0].String()+root.Text[1].String())
}
