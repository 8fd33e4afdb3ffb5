// Package assembler turns a transformed AST into machine words.
package assembler

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/mips-vm/ast"
	"github.com/ChainSafe/mips-vm/data"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/parser"
)

var (
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrBadLabel        = errors.New("bad label")
	ErrInvalidJump     = errors.New("invalid jump")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrBadOperand      = errors.New("invalid operand")
	ErrOperandCount    = errors.New("wrong number of operands")
)

// Error locates an assembly failure at its source line.
type Error struct {
	Line int
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type assembler struct {
	flat       []*ast.Operation
	textLabels map[string]int
	dataLabels map[string]uint32
	data       []byte
}

// AssembleSource lexes, parses, transforms and assembles source.
func AssembleSource(source string) (*Object, error) {
	root, err := parser.ParseSource(source)
	if err != nil {
		return nil, err
	}
	return Assemble(root)
}

// Assemble encodes the text segment and lays out the data segment. The AST is
// not modified, so assembling the same root twice yields identical objects.
func Assemble(root *ast.Root) (*Object, error) {
	a := &assembler{
		textLabels: make(map[string]int),
		dataLabels: make(map[string]uint32),
		data:       make([]byte, 0),
	}
	for _, node := range root.Data {
		if err := a.walkData(node); err != nil {
			return nil, err
		}
	}
	for _, node := range root.Text {
		if err := a.walkText(node); err != nil {
			return nil, err
		}
	}

	obj := &Object{
		Symbols:         a.symbols(),
		Relocations:     make(map[uint32]string),
		Data:            a.data,
		Instructions:    make([]uint32, len(a.flat)),
		ObjInstructions: make([]instruction.Instruction, len(a.flat)),
		Lines:           make([]int, len(a.flat)),
	}
	for i, op := range a.flat {
		spec, ok := instruction.Lookup(op.Name)
		if !ok {
			return nil, &Error{Line: op.Line, Op: op.String(), Err: ErrUnknownMnemonic}
		}
		if spec.IsJump() {
			if err := a.relocate(obj, op, i); err != nil {
				return nil, err
			}
		}
		args, err := a.interpolate(spec, op, i)
		if err != nil {
			return nil, &Error{Line: op.Line, Op: op.String(), Err: err}
		}
		in, err := encode(spec, args)
		if err != nil {
			return nil, &Error{Line: op.Line, Op: op.String(), Err: err}
		}
		obj.ObjInstructions[i] = in
		obj.Instructions[i] = instruction.Encode(in)
		obj.Lines[i] = op.Line
	}
	return obj, nil
}

func (a *assembler) define(name string, line int) error {
	_, text := a.textLabels[name]
	_, dat := a.dataLabels[name]
	if text || dat {
		return &Error{Line: line, Err: fmt.Errorf("%w: %s", ErrDuplicateLabel, name)}
	}
	return nil
}

func (a *assembler) walkText(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Label:
		if err := a.define(n.Name, n.Line); err != nil {
			return err
		}
		// a label names the next instruction to be appended
		a.textLabels[n.Name] = len(a.flat)
		if n.Child != nil {
			return a.walkText(n.Child)
		}
	case *ast.Operation:
		a.flat = append(a.flat, n)
	case *ast.Transformed:
		a.flat = append(a.flat, n.Children...)
	default:
		return fmt.Errorf("%w: %s in text segment", ErrBadOperand, node)
	}
	return nil
}

func (a *assembler) walkData(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Label:
		if err := a.define(n.Name, n.Line); err != nil {
			return err
		}
		a.dataLabels[n.Name] = uint32(len(a.data))
		if n.Child != nil {
			return a.walkData(n.Child)
		}
	case *ast.Data:
		d, err := data.FromDirective(n.Directive, n.Values)
		if err != nil {
			return &Error{Line: n.Line, Op: n.String(), Err: err}
		}
		if len(a.data)+d.Size() > data.MaxSegmentSize {
			err := fmt.Errorf("%w: data segment exceeds %d bytes", data.ErrBadValue, data.MaxSegmentSize)
			return &Error{Line: n.Line, Op: n.String(), Err: err}
		}
		a.data = append(a.data, d.Bytes()...)
	default:
		return fmt.Errorf("%w: %s in data segment", ErrBadOperand, node)
	}
	return nil
}

func (a *assembler) symbols() map[string]uint32 {
	symbols := make(map[string]uint32, len(a.textLabels)+len(a.dataLabels))
	for name, index := range a.textLabels {
		symbols[name] = Address(index)
	}
	for name, offset := range a.dataLabels {
		symbols[name] = DataBase + offset
	}
	return symbols
}

func (a *assembler) relocate(obj *Object, op *ast.Operation, index int) error {
	if len(op.Args) != 1 {
		return &Error{Line: op.Line, Op: op.String(), Err: ErrOperandCount}
	}
	target, ok := op.Args[0].(*ast.Address)
	if !ok {
		return nil
	}
	if _, ok := obj.Symbols[target.Label]; !ok {
		return &Error{Line: op.Line, Op: op.String(), Err: fmt.Errorf("%w: %s", ErrInvalidJump, target.Label)}
	}
	obj.Relocations[Address(index)] = target.Label
	return nil
}

// interpolate replaces label operands with immediates: branches get the
// word offset target-current-1, everything else the absolute address.
func (a *assembler) interpolate(spec instruction.Spec, op *ast.Operation, index int) ([]ast.Node, error) {
	args := make([]ast.Node, len(op.Args))
	for i, arg := range op.Args {
		addr, ok := arg.(*ast.Address)
		if !ok {
			args[i] = arg
			continue
		}
		value, err := a.resolve(spec, addr, index)
		if err != nil {
			return nil, err
		}
		switch addr.Part {
		case ast.Upper:
			value = int64(uint32(value) >> 16)
		case ast.Lower:
			value = int64(uint32(value) & 0xffff)
		}
		args[i] = ast.Imm(value)
	}
	return args, nil
}

func (a *assembler) resolve(spec instruction.Spec, addr *ast.Address, index int) (int64, error) {
	if target, ok := a.textLabels[addr.Label]; ok {
		if spec.IsBranch() && addr.Part == ast.Whole {
			return int64(target - index - 1), nil
		}
		return int64(Address(target)), nil
	}
	if offset, ok := a.dataLabels[addr.Label]; ok {
		if spec.IsBranch() {
			return 0, fmt.Errorf("%w: branch to data label %s", ErrBadLabel, addr.Label)
		}
		return int64(DataBase + offset), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrBadLabel, addr.Label)
}
