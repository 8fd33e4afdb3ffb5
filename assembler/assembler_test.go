package assembler

import (
	"errors"
	"testing"

	"github.com/ChainSafe/mips-vm/data"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/parser"
	"github.com/ChainSafe/mips-vm/registers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `
	.data
foo: .word 42
bar: .asciiz "foo"
	.text
main:
	li $t0, 20
	li $t1, 22
	add $t2, $t0, $t1
check:
	li $t3, 42
	beq $t2, $t3, exit

	j check
exit:
	li $v0, 10
	syscall
`

func TestAssembleProgram(t *testing.T) {
	obj, err := AssembleSource(program)
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 0, 0, 42, 'f', 'o', 'o', 0}, obj.Data)
	assert.Equal(t, map[uint32]string{0x00400014: "check"}, obj.Relocations)
	assert.Equal(t, map[string]uint32{
		"foo":   DataBase,
		"bar":   DataBase + 4,
		"main":  TextBase,
		"check": 0x0040000c,
		"exit":  0x00400018,
	}, obj.Symbols)

	require.Equal(t, 8, obj.Len())
	assert.Equal(t, instruction.I{Op: instruction.OpAddiu, Rt: registers.T0, Imm: 20}, obj.ObjInstructions[0])
	assert.Equal(t, instruction.R{Func: instruction.FnAdd, Rd: registers.T0 + 2, Rs: registers.T0, Rt: registers.T0 + 1}, obj.ObjInstructions[2])
	assert.Equal(t, instruction.I{Op: instruction.OpBeq, Rs: registers.T0 + 2, Rt: registers.T0 + 3, Imm: 1}, obj.ObjInstructions[4])
	assert.Equal(t, instruction.J{Op: instruction.OpJ, Addr: 0x0040000c}, obj.ObjInstructions[5])
	assert.Equal(t, instruction.R{Func: instruction.FnSyscall}, obj.ObjInstructions[7])

	for i, in := range obj.ObjInstructions {
		assert.Equal(t, instruction.Encode(in), obj.Instructions[i])
	}
	assert.Equal(t, []int{7, 8, 9, 11, 12, 14, 16, 17}, obj.Lines)
}

func TestAssembleLoadAddress(t *testing.T) {
	obj, err := AssembleSource(".data\npad: .space 6\nmsg: .asciiz \"hi\"\n.text\nla $a0, msg\nsyscall")
	require.NoError(t, err)

	require.Equal(t, 3, obj.Len())
	assert.Equal(t, instruction.I{Op: instruction.OpLui, Rt: registers.AT, Imm: 0x1001}, obj.ObjInstructions[0])
	assert.Equal(t, instruction.I{Op: instruction.OpOri, Rs: registers.AT, Rt: registers.A0, Imm: 0x0006}, obj.ObjInstructions[1])
	assert.Equal(t, instruction.R{Func: instruction.FnSyscall}, obj.ObjInstructions[2])
}

func TestAssembleBranchOffsets(t *testing.T) {
	obj, err := AssembleSource(`
top:
	nop
	nop
	bne $t0, $0, top
	beq $t0, $0, bottom
	nop
	nop
bottom:
	nop
`)
	require.NoError(t, err)

	backward := obj.ObjInstructions[2].(instruction.I)
	assert.Equal(t, int16(-3), int16(backward.Imm))
	forward := obj.ObjInstructions[3].(instruction.I)
	assert.Equal(t, int16(2), int16(forward.Imm))

	// target = index + 1 + offset
	assert.Equal(t, obj.Symbols["top"], Address(2+1+int(int16(backward.Imm))))
	assert.Equal(t, obj.Symbols["bottom"], Address(3+1+int(int16(forward.Imm))))
}

func TestAssembleJumpsAreAbsolute(t *testing.T) {
	obj, err := AssembleSource("main:\n\tjal f\n\tj main\nf:\n\tjr $ra\n\tjalr $t9\n")
	require.NoError(t, err)

	assert.Equal(t, instruction.J{Op: instruction.OpJal, Addr: Address(2)}, obj.ObjInstructions[0])
	assert.Equal(t, instruction.J{Op: instruction.OpJ, Addr: TextBase}, obj.ObjInstructions[1])
	assert.Equal(t, instruction.R{Func: instruction.FnJr, Rs: registers.RA}, obj.ObjInstructions[2])
	assert.Equal(t, instruction.R{Func: instruction.FnJalr, Rs: 25, Rd: registers.RA}, obj.ObjInstructions[3])
	assert.Len(t, obj.Relocations, 2)
}

func TestAssembleMemoryAndFloat(t *testing.T) {
	obj, err := AssembleSource(`
	lw $t0, -4($sp)
	sb $t1, ($a0)
	lwc1 $f2, 8($gp)
	add.d $f0, $f2, $f4
	c.lt.s $f1, $f3
	mfc1 $t0, $f12
	bc1t done
	sll $t0, $t1, 4
done:
	syscall
`)
	require.NoError(t, err)

	assert.Equal(t, instruction.I{Op: instruction.OpLw, Rs: registers.SP, Rt: registers.T0, Imm: 0xfffc}, obj.ObjInstructions[0])
	assert.Equal(t, instruction.I{Op: instruction.OpSb, Rs: registers.A0, Rt: registers.T0 + 1}, obj.ObjInstructions[1])
	assert.Equal(t, instruction.I{Op: instruction.OpLwc1, Rs: registers.GP, Rt: 2, Imm: 8}, obj.ObjInstructions[2])
	assert.Equal(t, instruction.FR{Op: instruction.OpCop1, Fmt: instruction.FmtD, Func: instruction.FnFAdd, Fd: 0, Fs: 2, Ft: 4}, obj.ObjInstructions[3])
	assert.Equal(t, instruction.FR{Op: instruction.OpCop1, Fmt: instruction.FmtS, Func: instruction.FnCLt, Fs: 1, Ft: 3}, obj.ObjInstructions[4])
	assert.Equal(t, instruction.FR{Op: instruction.OpCop1, Fmt: instruction.FmtMF, Ft: registers.T0, Fs: 12}, obj.ObjInstructions[5])
	assert.Equal(t, instruction.FI{Op: instruction.OpCop1, Fmt: instruction.FmtBC, Ft: 1, Imm: 1}, obj.ObjInstructions[6])
	assert.Equal(t, instruction.R{Func: instruction.FnSll, Rd: registers.T0, Rt: registers.T0 + 1, Sh: 4}, obj.ObjInstructions[7])
}

func TestAssembleIdempotent(t *testing.T) {
	root, err := parser.ParseSource(program)
	require.NoError(t, err)

	first, err := Assemble(root)
	require.NoError(t, err)
	second, err := Assemble(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestObjectLabels(t *testing.T) {
	obj, err := AssembleSource("a:\nb:\n\tnop\nc:\n\tnop\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, obj.Labels(TextBase))
	label, ok := obj.Label(TextBase + 4)
	assert.True(t, ok)
	assert.Equal(t, "c", label)
	_, ok = obj.Label(TextBase + 8)
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, obj.SymbolNames())

	i, ok := obj.Index(TextBase + 4)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = obj.Index(TextBase + 8)
	assert.False(t, ok)
	_, ok = obj.Index(TextBase + 2)
	assert.False(t, ok)
}

func TestAssembleErrors(t *testing.T) {
	type testcase struct {
		source string
		err    error
		line   int
	}
	cases := map[string]testcase{
		"unknown mnemonic":   {source: "\nfoo $t0\n", err: ErrUnknownMnemonic, line: 2},
		"missing label":      {source: "beq $t0, $t1, nowhere\n", err: ErrBadLabel, line: 1},
		"missing jump":       {source: "j nowhere\n", err: ErrInvalidJump, line: 1},
		"branch to data":     {source: ".data\nx: .word 1\n.text\nbeq $0, $0, x\n", err: ErrBadLabel, line: 4},
		"duplicate label":    {source: "a: nop\na: nop\n", err: ErrDuplicateLabel, line: 2},
		"duplicate segments": {source: ".data\na: .word 1\n.text\na: nop\n", err: ErrDuplicateLabel, line: 4},
		"operand count":      {source: "add $t0, $t1\n", err: ErrOperandCount, line: 1},
		"bad register":       {source: "add $t0, $t1, $bogus\n", err: ErrBadOperand, line: 1},
		"shift too large":    {source: "sll $t0, $t1, 32\n", err: ErrBadOperand, line: 1},
		"shift by register":  {source: "sll $t0, $t1, $t2\n", err: ErrBadOperand, line: 1},
		"bad data":           {source: ".data\nx: .word 0x100000000\n", err: data.ErrBadValue, line: 2},
		"data overflow":      {source: ".data\n.space 0x300000\n.space 0x300000\n", err: data.ErrBadValue, line: 3},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := AssembleSource(tc.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
			var aerr *Error
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, tc.line, aerr.Line)
		})
	}
}
