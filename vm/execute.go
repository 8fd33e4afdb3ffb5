package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/registers"
)

var (
	ErrUnknownRType = errors.New("unknown R-type instruction")
	ErrUnknownIType = errors.New("unknown I-type instruction")
	ErrUnknownJType = errors.New("unknown J-type instruction")
	ErrUnknownFType = errors.New("unknown coprocessor 1 instruction")
)

func (m *MIPS) execute(in instruction.Instruction) error {
	switch i := in.(type) {
	case instruction.R:
		return m.executeR(i)
	case instruction.I:
		return m.executeI(i)
	case instruction.J:
		return m.executeJ(i)
	case instruction.FR:
		return m.executeFR(i)
	case instruction.FI:
		return m.executeFI(i)
	}
	return fmt.Errorf("%w: %T", ErrUnknownInstructionWord, in)
}

// signExtend widens a 16-bit offset.
func signExtend(imm uint16) uint32 {
	return uint32(int32(int16(imm)))
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (m *MIPS) branch(imm uint16) {
	m.set(registers.PC, m.get(registers.PC)+signExtend(imm)<<2)
}

func (m *MIPS) call(target uint32) {
	pc := m.get(registers.PC)
	index := int((pc - assembler.TextBase) / 4)
	m.frames.Push(frame{target: target, ret: pc + 4, line: m.line(index)})
}

func (m *MIPS) executeR(i instruction.R) error {
	rs, rt := m.get(int(i.Rs)), m.get(int(i.Rt))
	rd := int(i.Rd)
	switch i.Func {
	case instruction.FnAdd, instruction.FnAddu:
		m.set(rd, rs+rt)
	case instruction.FnSub, instruction.FnSubu:
		m.set(rd, rs-rt)
	case instruction.FnMult:
		p := uint64(int64(int32(rs)) * int64(int32(rt)))
		m.set(registers.HI, uint32(p>>32))
		m.set(registers.LO, uint32(p))
	case instruction.FnMultu:
		p := uint64(rs) * uint64(rt)
		m.set(registers.HI, uint32(p>>32))
		m.set(registers.LO, uint32(p))
	case instruction.FnDiv:
		if rt != 0 {
			m.set(registers.LO, uint32(int32(rs)/int32(rt)))
			m.set(registers.HI, uint32(int32(rs)%int32(rt)))
		}
	case instruction.FnDivu:
		if rt != 0 {
			m.set(registers.LO, rs/rt)
			m.set(registers.HI, rs%rt)
		}
	case instruction.FnMfhi:
		m.set(rd, m.get(registers.HI))
	case instruction.FnMflo:
		m.set(rd, m.get(registers.LO))
	case instruction.FnMthi:
		m.set(registers.HI, rs)
	case instruction.FnMtlo:
		m.set(registers.LO, rs)
	case instruction.FnAnd:
		m.set(rd, rs&rt)
	case instruction.FnOr:
		m.set(rd, rs|rt)
	case instruction.FnXor:
		m.set(rd, rs^rt)
	case instruction.FnNor:
		m.set(rd, ^(rs | rt))
	case instruction.FnSll:
		m.set(rd, rt<<i.Sh)
	case instruction.FnSrl:
		m.set(rd, rt>>i.Sh)
	case instruction.FnSra:
		m.set(rd, uint32(int32(rt)>>i.Sh))
	case instruction.FnSllv:
		m.set(rd, rt<<(rs&31))
	case instruction.FnSrlv:
		m.set(rd, rt>>(rs&31))
	case instruction.FnSrav:
		m.set(rd, uint32(int32(rt)>>(rs&31)))
	case instruction.FnSlt:
		m.set(rd, boolWord(int32(rs) < int32(rt)))
	case instruction.FnSltu:
		m.set(rd, boolWord(rs < rt))
	case instruction.FnJr:
		if i.Rs == registers.RA {
			m.frames.Pop()
		}
		m.set(registers.PC, rs-4)
	case instruction.FnJalr:
		m.call(rs)
		m.set(rd, m.get(registers.PC)+4)
		m.set(registers.PC, rs-4)
	case instruction.FnSyscall:
		return m.syscall()
	default:
		return fmt.Errorf("%w: func 0x%02x", ErrUnknownRType, i.Func)
	}
	return nil
}

func (m *MIPS) executeI(i instruction.I) error {
	rs, rt := m.get(int(i.Rs)), m.get(int(i.Rt))
	imm := uint32(i.Imm)
	addr := rs + signExtend(i.Imm)
	target := int(i.Rt)
	switch i.Op {
	case instruction.OpAddi, instruction.OpAddiu:
		m.set(target, rs+imm)
	case instruction.OpSlti:
		m.set(target, boolWord(int32(rs) < int32(imm)))
	case instruction.OpSltiu:
		m.set(target, boolWord(rs < imm))
	case instruction.OpAndi:
		m.set(target, rs&imm)
	case instruction.OpOri:
		m.set(target, rs|imm)
	case instruction.OpXori:
		m.set(target, rs^imm)
	case instruction.OpLui:
		m.set(target, imm<<16)
	case instruction.OpBeq:
		if rs == rt {
			m.branch(i.Imm)
		}
	case instruction.OpBne:
		if rs != rt {
			m.branch(i.Imm)
		}
	case instruction.OpBlez:
		if int32(rs) <= 0 {
			m.branch(i.Imm)
		}
	case instruction.OpBgtz:
		if int32(rs) > 0 {
			m.branch(i.Imm)
		}
	case instruction.OpLb:
		m.set(target, uint32(int32(int8(m.readByte(addr)))))
	case instruction.OpLbu:
		m.set(target, uint32(m.readByte(addr)))
	case instruction.OpLh:
		m.set(target, uint32(int32(int16(m.readHalf(addr)))))
	case instruction.OpLhu:
		m.set(target, uint32(m.readHalf(addr)))
	case instruction.OpLw, instruction.OpLl:
		m.set(target, m.readWord(addr))
	case instruction.OpSb:
		return m.writeByte(addr, byte(rt))
	case instruction.OpSh:
		return m.writeHalf(addr, uint16(rt))
	case instruction.OpSw:
		return m.writeWord(addr, rt)
	case instruction.OpSc:
		if err := m.writeWord(addr, rt); err != nil {
			return err
		}
		m.set(target, 1)
	case instruction.OpLwc1:
		return m.fp.Set(target, m.readWord(addr))
	case instruction.OpSwc1:
		w, err := m.fp.Get(target)
		if err != nil {
			return err
		}
		return m.writeWord(addr, w)
	case instruction.OpLdc1:
		if target%2 != 0 {
			return fmt.Errorf("%w: %s", registers.ErrOddRegister, registers.FloatName(target))
		}
		if err := m.fp.Set(target, m.readWord(addr)); err != nil {
			return err
		}
		return m.fp.Set(target+1, m.readWord(addr+4))
	case instruction.OpSdc1:
		if target%2 != 0 {
			return fmt.Errorf("%w: %s", registers.ErrOddRegister, registers.FloatName(target))
		}
		hi, err := m.fp.Get(target)
		if err != nil {
			return err
		}
		lo, err := m.fp.Get(target + 1)
		if err != nil {
			return err
		}
		if err := m.writeWord(addr, hi); err != nil {
			return err
		}
		return m.writeWord(addr+4, lo)
	default:
		return fmt.Errorf("%w: op 0x%02x", ErrUnknownIType, i.Op)
	}
	return nil
}

// Jump targets are absolute addresses.
func (m *MIPS) executeJ(i instruction.J) error {
	switch i.Op {
	case instruction.OpJ:
		m.set(registers.PC, i.Addr-4)
	case instruction.OpJal:
		m.call(i.Addr)
		m.set(registers.RA, m.get(registers.PC)+4)
		m.set(registers.PC, i.Addr-4)
	default:
		return fmt.Errorf("%w: op 0x%02x", ErrUnknownJType, i.Op)
	}
	return nil
}

func (m *MIPS) executeFR(i instruction.FR) error {
	fd, fs, ft := int(i.Fd), int(i.Fs), int(i.Ft)
	switch i.Fmt {
	case instruction.FmtMF:
		w, err := m.fp.Get(fs)
		if err != nil {
			return err
		}
		m.set(ft, w)
		return nil
	case instruction.FmtMT:
		return m.fp.Set(fs, m.get(ft))
	case instruction.FmtS, instruction.FmtD, instruction.FmtW:
	default:
		return fmt.Errorf("%w: fmt 0x%02x", ErrUnknownFType, i.Fmt)
	}

	switch i.Func {
	case instruction.FnCvtS:
		return m.convert(i.Fmt, instruction.FmtS, fd, fs)
	case instruction.FnCvtD:
		return m.convert(i.Fmt, instruction.FmtD, fd, fs)
	case instruction.FnCvtW:
		return m.convert(i.Fmt, instruction.FmtW, fd, fs)
	}
	if i.Fmt == instruction.FmtW {
		return fmt.Errorf("%w: func 0x%02x on words", ErrUnknownFType, i.Func)
	}

	a, err := m.readFloat(i.Fmt, fs)
	if err != nil {
		return err
	}
	var b float64
	switch i.Func {
	case instruction.FnFAdd, instruction.FnFSub, instruction.FnFMul, instruction.FnFDiv,
		instruction.FnCEq, instruction.FnCLt, instruction.FnCLe:
		if b, err = m.readFloat(i.Fmt, ft); err != nil {
			return err
		}
	}

	switch i.Func {
	case instruction.FnFAdd:
		return m.writeFloat(i.Fmt, fd, a+b)
	case instruction.FnFSub:
		return m.writeFloat(i.Fmt, fd, a-b)
	case instruction.FnFMul:
		return m.writeFloat(i.Fmt, fd, a*b)
	case instruction.FnFDiv:
		return m.writeFloat(i.Fmt, fd, a/b)
	case instruction.FnFSqrt:
		return m.writeFloat(i.Fmt, fd, math.Sqrt(a))
	case instruction.FnFAbs:
		return m.writeFloat(i.Fmt, fd, math.Abs(a))
	case instruction.FnFNeg:
		return m.writeFloat(i.Fmt, fd, -a)
	case instruction.FnFMov:
		return m.writeFloat(i.Fmt, fd, a)
	case instruction.FnCEq:
		m.fpCond = a == b
	case instruction.FnCLt:
		m.fpCond = a < b
	case instruction.FnCLe:
		m.fpCond = a <= b
	default:
		return fmt.Errorf("%w: func 0x%02x", ErrUnknownFType, i.Func)
	}
	return nil
}

func (m *MIPS) executeFI(i instruction.FI) error {
	if i.Fmt != instruction.FmtBC {
		return fmt.Errorf("%w: fmt 0x%02x", ErrUnknownFType, i.Fmt)
	}
	// bit 0 of ft selects bc1t over bc1f
	if m.fpCond == (i.Ft&1 == 1) {
		m.branch(i.Imm)
	}
	return nil
}

func (m *MIPS) convert(from, to uint8, fd, fs int) error {
	if from == to {
		return fmt.Errorf("%w: conversion to the same format", ErrUnknownFType)
	}
	v, err := m.readFloat(from, fs)
	if err != nil {
		return err
	}
	return m.writeFloat(to, fd, v)
}

func (m *MIPS) readFloat(format uint8, index int) (float64, error) {
	switch format {
	case instruction.FmtS:
		return m.fp.Single(index)
	case instruction.FmtD:
		return m.fp.Double(index)
	case instruction.FmtW:
		w, err := m.fp.Get(index)
		return float64(int32(w)), err
	}
	return 0, fmt.Errorf("%w: fmt 0x%02x", ErrUnknownFType, format)
}

func (m *MIPS) writeFloat(format uint8, index int, v float64) error {
	switch format {
	case instruction.FmtS:
		return m.fp.SetSingle(index, v)
	case instruction.FmtD:
		return m.fp.SetDouble(index, v)
	case instruction.FmtW:
		return m.fp.Set(index, truncateWord(v))
	}
	return fmt.Errorf("%w: fmt 0x%02x", ErrUnknownFType, format)
}

// truncateWord converts toward zero. NaN and out of range values give
// 0x7fffffff.
func truncateWord(v float64) uint32 {
	t := math.Trunc(v)
	if math.IsNaN(t) || t > math.MaxInt32 || t < math.MinInt32 {
		return math.MaxInt32
	}
	return uint32(int32(t))
}
