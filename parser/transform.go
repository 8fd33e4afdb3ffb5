package parser

import (
	"fmt"

	"github.com/ChainSafe/mips-vm/ast"
)

type expander func(op *ast.Operation) ([]*ast.Operation, error)

var pseudoOps = map[string]expander{
	"bge":  compareBranch("beq", false),
	"bgt":  compareBranch("bne", true),
	"ble":  compareBranch("beq", true),
	"blt":  compareBranch("bne", false),
	"la":   loadAddress,
	"li":   loadImmediate,
	"move": move,
	"sgt":  setGreater,
	"seq":  setEqual,
	"nop":  nop,
	"b":    branchAlways,
	"beqz": branchZero("beq"),
	"bnez": branchZero("bne"),
	"neg":  negate,
	"not":  not,
	"mul":  multiply,

	"addi":  immediateArithmetic("add"),
	"addiu": immediateArithmetic("addu"),
	"andi":  immediateArithmetic("and"),
	"ori":   immediateArithmetic("or"),
	"xori":  immediateArithmetic("xor"),
	"slti":  immediateArithmetic("slt"),
	"sltiu": immediateArithmetic("sltu"),
}

// Transform replaces pseudo-instructions in the text segment with Transformed
// nodes. Operations already wrapped are left alone.
func Transform(root *ast.Root) error {
	for i, node := range root.Text {
		n, err := transformNode(node)
		if err != nil {
			return err
		}
		root.Text[i] = n
	}
	return nil
}

func transformNode(node ast.Node) (ast.Node, error) {
	switch n := node.(type) {
	case *ast.Label:
		if n.Child == nil {
			return n, nil
		}
		child, err := transformNode(n.Child)
		if err != nil {
			return nil, err
		}
		n.Child = child
		return n, nil
	case *ast.Operation:
		expand, ok := pseudoOps[n.Name]
		if !ok {
			return n, nil
		}
		children, err := expand(n)
		if err != nil {
			return nil, err
		}
		if children == nil {
			return n, nil
		}
		return &ast.Transformed{Original: n, Children: children}, nil
	}
	return node, nil
}

func operandError(op *ast.Operation, err error, format string, args ...any) error {
	return &Error{Line: op.Line, Err: err, Msg: fmt.Sprintf("%s: ", op.Name) + fmt.Sprintf(format, args...)}
}

func arity(op *ast.Operation, n int) error {
	if len(op.Args) != n {
		return operandError(op, ErrOperandCount, "expected %d, got %d", n, len(op.Args))
	}
	return nil
}

func at() *ast.Register {
	return ast.Reg("$at")
}

func zero() *ast.Register {
	return ast.Reg("$0")
}

func half(v uint16) *ast.Immediate {
	return &ast.Immediate{Text: fmt.Sprintf("0x%x", v)}
}

// compareBranch expands bge/bgt/ble/blt into slt on $at and a branch
// against $0. swap compares ry < rx instead of rx < ry.
func compareBranch(branch string, swap bool) expander {
	return func(op *ast.Operation) ([]*ast.Operation, error) {
		if err := arity(op, 3); err != nil {
			return nil, err
		}
		rx, ry, label := op.Args[0], op.Args[1], op.Args[2]
		if swap {
			rx, ry = ry, rx
		}
		return []*ast.Operation{
			ast.Op("slt", op.Line, at(), rx, ry),
			ast.Op(branch, op.Line, at(), zero(), label),
		}, nil
	}
}

func loadAddress(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 2); err != nil {
		return nil, err
	}
	switch target := op.Args[1].(type) {
	case *ast.Address:
		return []*ast.Operation{
			ast.Op("lui", op.Line, at(), &ast.Address{Label: target.Label, Part: ast.Upper}),
			ast.Op("ori", op.Line, op.Args[0], at(), &ast.Address{Label: target.Label, Part: ast.Lower}),
		}, nil
	case *ast.Immediate:
		upper, lower, err := target.Split()
		if err != nil {
			return nil, operandError(op, ErrBadOperand, "%v", err)
		}
		return []*ast.Operation{
			ast.Op("lui", op.Line, at(), half(upper)),
			ast.Op("ori", op.Line, op.Args[0], at(), half(lower)),
		}, nil
	}
	return nil, operandError(op, ErrBadOperand, "expected a label, got %s", op.Args[1])
}

func loadImmediate(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 2); err != nil {
		return nil, err
	}
	imm, ok := op.Args[1].(*ast.Immediate)
	if !ok {
		return nil, operandError(op, ErrBadOperand, "expected an immediate, got %s", op.Args[1])
	}
	upper, lower, err := imm.Split()
	if err != nil {
		return nil, operandError(op, ErrBadOperand, "%v", err)
	}
	if upper == 0 {
		return []*ast.Operation{ast.Op("addiu", op.Line, op.Args[0], zero(), imm)}, nil
	}
	return []*ast.Operation{
		ast.Op("lui", op.Line, at(), half(upper)),
		ast.Op("ori", op.Line, op.Args[0], at(), half(lower)),
	}, nil
}

func move(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 2); err != nil {
		return nil, err
	}
	return []*ast.Operation{ast.Op("addu", op.Line, op.Args[0], zero(), op.Args[1])}, nil
}

func setGreater(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 3); err != nil {
		return nil, err
	}
	return []*ast.Operation{ast.Op("slt", op.Line, op.Args[0], op.Args[2], op.Args[1])}, nil
}

func setEqual(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 3); err != nil {
		return nil, err
	}
	rd := op.Args[0]
	return []*ast.Operation{
		ast.Op("subu", op.Line, rd, op.Args[1], op.Args[2]),
		ast.Op("ori", op.Line, at(), zero(), ast.Imm(1)),
		ast.Op("sltu", op.Line, rd, rd, at()),
	}, nil
}

func nop(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 0); err != nil {
		return nil, err
	}
	return []*ast.Operation{ast.Op("sll", op.Line, at(), at(), zero())}, nil
}

func branchAlways(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 1); err != nil {
		return nil, err
	}
	return []*ast.Operation{ast.Op("beq", op.Line, zero(), zero(), op.Args[0])}, nil
}

func branchZero(branch string) expander {
	return func(op *ast.Operation) ([]*ast.Operation, error) {
		if err := arity(op, 2); err != nil {
			return nil, err
		}
		return []*ast.Operation{ast.Op(branch, op.Line, op.Args[0], zero(), op.Args[1])}, nil
	}
}

func negate(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 2); err != nil {
		return nil, err
	}
	return []*ast.Operation{ast.Op("sub", op.Line, op.Args[0], zero(), op.Args[1])}, nil
}

func not(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 2); err != nil {
		return nil, err
	}
	return []*ast.Operation{ast.Op("nor", op.Line, op.Args[0], op.Args[1], zero())}, nil
}

func multiply(op *ast.Operation) ([]*ast.Operation, error) {
	if err := arity(op, 3); err != nil {
		return nil, err
	}
	return []*ast.Operation{
		ast.Op("mult", op.Line, op.Args[1], op.Args[2]),
		ast.Op("mflo", op.Line, op.Args[0]),
	}, nil
}

// immediateArithmetic leaves the operation alone when its literal immediate
// fits 16 bits, otherwise builds the value in $at and uses the register form.
func immediateArithmetic(rop string) expander {
	return func(op *ast.Operation) ([]*ast.Operation, error) {
		if len(op.Args) != 3 {
			return nil, nil
		}
		imm, ok := op.Args[2].(*ast.Immediate)
		if !ok {
			return nil, nil
		}
		upper, lower, err := imm.Split()
		if err != nil {
			return nil, operandError(op, ErrBadOperand, "%v", err)
		}
		if upper == 0 {
			return nil, nil
		}
		return []*ast.Operation{
			ast.Op("lui", op.Line, at(), half(upper)),
			ast.Op("ori", op.Line, at(), at(), half(lower)),
			ast.Op(rop, op.Line, op.Args[0], op.Args[1], at()),
		}, nil
	}
}
