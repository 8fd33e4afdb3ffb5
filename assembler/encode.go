package assembler

import (
	"fmt"

	"github.com/ChainSafe/mips-vm/ast"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/registers"
)

// encode builds the instruction for spec from resolved operands. Label
// operands have already been replaced by immediates.
func encode(spec instruction.Spec, args []ast.Node) (instruction.Instruction, error) {
	var (
		in  instruction.Instruction
		err error
	)
	switch spec.Format {
	case instruction.FormatR:
		in, err = encodeR(spec, args)
	case instruction.FormatI:
		in, err = encodeI(spec, args)
	case instruction.FormatJ:
		in, err = encodeJ(spec, args)
	case instruction.FormatFR:
		in, err = encodeFR(spec, args)
	case instruction.FormatFI:
		in, err = encodeFI(spec, args)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownMnemonic, spec.Mnemonic)
	}
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func want(args []ast.Node, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrOperandCount, n, len(args))
	}
	return nil
}

func encodeR(spec instruction.Spec, args []ast.Node) (instruction.Instruction, error) {
	in := instruction.R{Op: spec.Op, Func: spec.Func}
	var err error
	switch spec.Layout {
	case instruction.LayoutNone:
		err = want(args, 0)
	case instruction.LayoutRdRsRt:
		if err = want(args, 3); err == nil {
			err = regs(args, &in.Rd, &in.Rs, &in.Rt)
		}
	case instruction.LayoutRdRtRs:
		if err = want(args, 3); err == nil {
			err = regs(args, &in.Rd, &in.Rt, &in.Rs)
		}
	case instruction.LayoutRdRtSh:
		if err = want(args, 3); err == nil {
			if err = regs(args[:2], &in.Rd, &in.Rt); err == nil {
				in.Sh, err = shamt(args[2])
			}
		}
	case instruction.LayoutRsRt:
		if err = want(args, 2); err == nil {
			err = regs(args, &in.Rs, &in.Rt)
		}
	case instruction.LayoutRd:
		if err = want(args, 1); err == nil {
			err = regs(args, &in.Rd)
		}
	case instruction.LayoutRs:
		if err = want(args, 1); err == nil {
			err = regs(args, &in.Rs)
		}
	case instruction.LayoutJalr:
		switch len(args) {
		case 1:
			in.Rd = registers.RA
			err = regs(args, &in.Rs)
		case 2:
			err = regs(args, &in.Rd, &in.Rs)
		default:
			err = fmt.Errorf("%w: expected 1 or 2, got %d", ErrOperandCount, len(args))
		}
	default:
		err = fmt.Errorf("%w: layout %d for %s", ErrBadOperand, spec.Layout, spec.Mnemonic)
	}
	return in, err
}

func encodeI(spec instruction.Spec, args []ast.Node) (instruction.Instruction, error) {
	in := instruction.I{Op: spec.Op}
	var err error
	switch spec.Layout {
	case instruction.LayoutRtRsImm:
		if err = want(args, 3); err == nil {
			if err = regs(args[:2], &in.Rt, &in.Rs); err == nil {
				in.Imm, err = imm16(args[2])
			}
		}
	case instruction.LayoutRsRtOff:
		if err = want(args, 3); err == nil {
			if err = regs(args[:2], &in.Rs, &in.Rt); err == nil {
				in.Imm, err = imm16(args[2])
			}
		}
	case instruction.LayoutRsOff:
		if err = want(args, 2); err == nil {
			if err = regs(args[:1], &in.Rs); err == nil {
				in.Imm, err = imm16(args[1])
			}
		}
	case instruction.LayoutRtImm:
		if err = want(args, 2); err == nil {
			if err = regs(args[:1], &in.Rt); err == nil {
				in.Imm, err = imm16(args[1])
			}
		}
	case instruction.LayoutRtMem:
		if err = want(args, 2); err == nil {
			if err = regs(args[:1], &in.Rt); err == nil {
				in.Rs, in.Imm, err = mem(args[1])
			}
		}
	case instruction.LayoutFtMem:
		if err = want(args, 2); err == nil {
			if in.Rt, err = freg(args[0]); err == nil {
				in.Rs, in.Imm, err = mem(args[1])
			}
		}
	default:
		err = fmt.Errorf("%w: layout %d for %s", ErrBadOperand, spec.Layout, spec.Mnemonic)
	}
	return in, err
}

func encodeJ(spec instruction.Spec, args []ast.Node) (instruction.Instruction, error) {
	if err := want(args, 1); err != nil {
		return nil, err
	}
	imm, ok := args[0].(*ast.Immediate)
	if !ok {
		return nil, fmt.Errorf("%w: expected a jump target, got %s", ErrInvalidJump, args[0])
	}
	v, err := imm.Value()
	if err != nil {
		return nil, err
	}
	if v < 0 || v > int64(instruction.AddrMask) {
		return nil, fmt.Errorf("%w: target 0x%x out of range", ErrInvalidJump, v)
	}
	return instruction.J{Op: spec.Op, Addr: uint32(v)}, nil
}

func encodeFR(spec instruction.Spec, args []ast.Node) (instruction.Instruction, error) {
	in := instruction.FR{Op: spec.Op, Fmt: spec.Fmt, Func: spec.Func}
	var err error
	switch spec.Layout {
	case instruction.LayoutFdFsFt:
		if err = want(args, 3); err == nil {
			err = fregs(args, &in.Fd, &in.Fs, &in.Ft)
		}
	case instruction.LayoutFdFs:
		if err = want(args, 2); err == nil {
			err = fregs(args, &in.Fd, &in.Fs)
		}
	case instruction.LayoutFsFt:
		if err = want(args, 2); err == nil {
			err = fregs(args, &in.Fs, &in.Ft)
		}
	case instruction.LayoutRtFs:
		if err = want(args, 2); err == nil {
			if err = regs(args[:1], &in.Ft); err == nil {
				in.Fs, err = freg(args[1])
			}
		}
	default:
		err = fmt.Errorf("%w: layout %d for %s", ErrBadOperand, spec.Layout, spec.Mnemonic)
	}
	return in, err
}

func encodeFI(spec instruction.Spec, args []ast.Node) (instruction.Instruction, error) {
	if err := want(args, 1); err != nil {
		return nil, err
	}
	off, err := imm16(args[0])
	if err != nil {
		return nil, err
	}
	return instruction.FI{Op: spec.Op, Fmt: spec.Fmt, Ft: spec.Ft, Imm: off}, nil
}

func reg(node ast.Node) (uint8, error) {
	r, ok := node.(*ast.Register)
	if !ok {
		return 0, fmt.Errorf("%w: expected a register, got %s", ErrBadOperand, node)
	}
	index, ok := registers.Index(r.Name)
	if !ok || index >= 32 {
		return 0, fmt.Errorf("%w: %w %s", ErrBadOperand, registers.ErrUnknownRegister, r.Name)
	}
	return uint8(index), nil
}

func regs(args []ast.Node, fields ...*uint8) error {
	for i, f := range fields {
		v, err := reg(args[i])
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

func freg(node ast.Node) (uint8, error) {
	r, ok := node.(*ast.Register)
	if !ok {
		return 0, fmt.Errorf("%w: expected a float register, got %s", ErrBadOperand, node)
	}
	index, ok := registers.FloatIndex(r.Name)
	if !ok {
		return 0, fmt.Errorf("%w: %w %s", ErrBadOperand, registers.ErrUnknownRegister, r.Name)
	}
	return uint8(index), nil
}

func fregs(args []ast.Node, fields ...*uint8) error {
	for i, f := range fields {
		v, err := freg(args[i])
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// imm16 accepts both signed and unsigned 16-bit literals.
func imm16(node ast.Node) (uint16, error) {
	imm, ok := node.(*ast.Immediate)
	if !ok {
		return 0, fmt.Errorf("%w: expected an immediate, got %s", ErrBadOperand, node)
	}
	v, err := imm.Value()
	if err != nil {
		return 0, err
	}
	if v < -(1<<15) || v > 1<<16-1 {
		return 0, fmt.Errorf("%w: %d does not fit 16 bits", ErrBadOperand, v)
	}
	return uint16(v), nil
}

// shamt also takes $0, which nop expands to.
func shamt(node ast.Node) (uint8, error) {
	if _, ok := node.(*ast.Register); ok {
		r, err := reg(node)
		if err != nil {
			return 0, err
		}
		if r != registers.Zero {
			return 0, fmt.Errorf("%w: shift amount must be an immediate, got %s", ErrBadOperand, node)
		}
		return 0, nil
	}
	imm, ok := node.(*ast.Immediate)
	if !ok {
		return 0, fmt.Errorf("%w: expected a shift amount, got %s", ErrBadOperand, node)
	}
	v, err := imm.Value()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 31 {
		return 0, fmt.Errorf("%w: shift amount %d", ErrBadOperand, v)
	}
	return uint8(v), nil
}

func mem(node ast.Node) (uint8, uint16, error) {
	switch m := node.(type) {
	case *ast.Offset:
		base, err := reg(&m.Register)
		if err != nil {
			return 0, 0, err
		}
		off, err := imm16(&m.Offset)
		return base, off, err
	case *ast.Immediate:
		off, err := imm16(m)
		return 0, off, err
	}
	return 0, 0, fmt.Errorf("%w: expected imm(reg), got %s", ErrBadOperand, node)
}
