// Package instruction encodes and decodes MIPS32 machine words.
package instruction

import (
	"errors"
	"fmt"
)

var ErrFieldWidth = errors.New("field exceeds its bit width")

// Format identifies one of the five word layouts.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatJ
	FormatFR
	FormatFI
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatJ:
		return "J"
	case FormatFR:
		return "FR"
	case FormatFI:
		return "FI"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Instruction is implemented by R, I, J, FR and FI only.
type Instruction interface {
	Format() Format
	// Encode packs the fields into a word, truncating each to its width.
	Encode() uint32
	// Validate reports a field that does not fit its width.
	Validate() error
	isInstruction()
}

// R is a register-register operation.
type R struct {
	Op, Rs, Rt, Rd, Sh, Func uint8
}

// I carries a 16-bit immediate.
type I struct {
	Op, Rs, Rt uint8
	Imm        uint16
}

// J carries a 26-bit jump address.
type J struct {
	Op   uint8
	Addr uint32
}

// FR is a coprocessor 1 register operation.
type FR struct {
	Op, Fmt, Ft, Fs, Fd, Func uint8
}

// FI is a coprocessor 1 operation with an immediate, the fmt field is FmtBC.
type FI struct {
	Op, Fmt, Ft uint8
	Imm         uint16
}

func (R) Format() Format  { return FormatR }
func (I) Format() Format  { return FormatI }
func (J) Format() Format  { return FormatJ }
func (FR) Format() Format { return FormatFR }
func (FI) Format() Format { return FormatFI }

func (R) isInstruction()  {}
func (I) isInstruction()  {}
func (J) isInstruction()  {}
func (FR) isInstruction() {}
func (FI) isInstruction() {}

func (r R) Encode() uint32 {
	return uint32(r.Op)<<OpShift&OpMask |
		uint32(r.Rs)<<RsShift&RsMask |
		uint32(r.Rt)<<RtShift&RtMask |
		uint32(r.Rd)<<RdShift&RdMask |
		uint32(r.Sh)<<ShShift&ShMask |
		uint32(r.Func)<<FuncShift&FuncMask
}

func (i I) Encode() uint32 {
	return uint32(i.Op)<<OpShift&OpMask |
		uint32(i.Rs)<<RsShift&RsMask |
		uint32(i.Rt)<<RtShift&RtMask |
		uint32(i.Imm)&ImmMask
}

func (j J) Encode() uint32 {
	return uint32(j.Op)<<OpShift&OpMask | j.Addr&AddrMask
}

func (f FR) Encode() uint32 {
	return uint32(f.Op)<<OpShift&OpMask |
		uint32(f.Fmt)<<FmtShift&FmtMask |
		uint32(f.Ft)<<FtShift&FtMask |
		uint32(f.Fs)<<FsShift&FsMask |
		uint32(f.Fd)<<FdShift&FdMask |
		uint32(f.Func)<<FuncShift&FuncMask
}

func (f FI) Encode() uint32 {
	return uint32(f.Op)<<OpShift&OpMask |
		uint32(f.Fmt)<<FmtShift&FmtMask |
		uint32(f.Ft)<<FtShift&FtMask |
		uint32(f.Imm)&ImmMask
}

func (r R) Validate() error {
	return checkFields(
		field{"op", uint32(r.Op), 6}, field{"rs", uint32(r.Rs), 5}, field{"rt", uint32(r.Rt), 5},
		field{"rd", uint32(r.Rd), 5}, field{"sh", uint32(r.Sh), 5}, field{"func", uint32(r.Func), 6},
	)
}

func (i I) Validate() error {
	return checkFields(field{"op", uint32(i.Op), 6}, field{"rs", uint32(i.Rs), 5}, field{"rt", uint32(i.Rt), 5})
}

func (j J) Validate() error {
	return checkFields(field{"op", uint32(j.Op), 6}, field{"addr", j.Addr, 26})
}

func (f FR) Validate() error {
	return checkFields(
		field{"op", uint32(f.Op), 6}, field{"fmt", uint32(f.Fmt), 5}, field{"ft", uint32(f.Ft), 5},
		field{"fs", uint32(f.Fs), 5}, field{"fd", uint32(f.Fd), 5}, field{"func", uint32(f.Func), 6},
	)
}

func (f FI) Validate() error {
	return checkFields(field{"op", uint32(f.Op), 6}, field{"fmt", uint32(f.Fmt), 5}, field{"ft", uint32(f.Ft), 5})
}

type field struct {
	name  string
	value uint32
	width uint
}

func checkFields(fields ...field) error {
	for _, f := range fields {
		if f.value>>f.width != 0 {
			return fmt.Errorf("%w: %s=%d does not fit %d bits", ErrFieldWidth, f.name, f.value, f.width)
		}
	}
	return nil
}

// Decode splits a word into the variant selected by its opcode.
func Decode(word uint32) Instruction {
	op := uint8((word & OpMask) >> OpShift)
	switch {
	case op == OpSpecial:
		return R{
			Op:   op,
			Rs:   uint8((word & RsMask) >> RsShift),
			Rt:   uint8((word & RtMask) >> RtShift),
			Rd:   uint8((word & RdMask) >> RdShift),
			Sh:   uint8((word & ShMask) >> ShShift),
			Func: uint8((word & FuncMask) >> FuncShift),
		}
	case op >= 1 && op <= 3:
		return J{Op: op, Addr: word & AddrMask}
	case op == OpCop1:
		fmtField := uint8((word & FmtMask) >> FmtShift)
		if fmtField == FmtBC {
			return FI{
				Op:  op,
				Fmt: fmtField,
				Ft:  uint8((word & FtMask) >> FtShift),
				Imm: uint16(word & ImmMask),
			}
		}
		return FR{
			Op:   op,
			Fmt:  fmtField,
			Ft:   uint8((word & FtMask) >> FtShift),
			Fs:   uint8((word & FsMask) >> FsShift),
			Fd:   uint8((word & FdMask) >> FdShift),
			Func: uint8((word & FuncMask) >> FuncShift),
		}
	default:
		return I{
			Op:  op,
			Rs:  uint8((word & RsMask) >> RsShift),
			Rt:  uint8((word & RtMask) >> RtShift),
			Imm: uint16(word & ImmMask),
		}
	}
}

// Encode is the inverse of Decode.
func Encode(in Instruction) uint32 {
	return in.Encode()
}
