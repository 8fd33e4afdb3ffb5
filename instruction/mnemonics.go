package instruction

import (
	"github.com/samber/lo"
)

// Layout is the textual operand order of a mnemonic.
type Layout uint8

const (
	LayoutNone    Layout = iota // syscall
	LayoutRdRsRt                // add rd, rs, rt
	LayoutRdRtRs                // sllv rd, rt, rs
	LayoutRdRtSh                // sll rd, rt, sh
	LayoutRsRt                  // mult rs, rt
	LayoutRd                    // mfhi rd
	LayoutRs                    // jr rs
	LayoutJalr                  // jalr [rd,] rs
	LayoutRtRsImm               // addi rt, rs, imm
	LayoutRsRtOff               // beq rs, rt, label
	LayoutRsOff                 // blez rs, label
	LayoutRtImm                 // lui rt, imm
	LayoutRtMem                 // lw rt, imm(rs)
	LayoutFtMem                 // lwc1 ft, imm(rs)
	LayoutTarget                // j label
	LayoutFdFsFt                // add.s fd, fs, ft
	LayoutFdFs                  // mov.s fd, fs
	LayoutFsFt                  // c.eq.s fs, ft
	LayoutRtFs                  // mfc1 rt, fs
	LayoutOff                   // bc1t label
)

// Spec is a row of the mnemonic table.
type Spec struct {
	Mnemonic string
	Format   Format
	Op       uint8
	Func     uint8
	Fmt      uint8
	Ft       uint8 // condition bit of bc1t/bc1f
	Layout   Layout
}

// IsBranch reports whether the label operand is encoded pc-relative.
func (s Spec) IsBranch() bool {
	return s.Layout == LayoutRsRtOff || s.Layout == LayoutRsOff || s.Layout == LayoutOff
}

// IsJump reports whether the mnemonic takes an absolute jump target.
func (s Spec) IsJump() bool {
	return s.Layout == LayoutTarget
}

func rSpec(name string, fn uint8, layout Layout) Spec {
	return Spec{Mnemonic: name, Format: FormatR, Op: OpSpecial, Func: fn, Layout: layout}
}

func iSpec(name string, op uint8, layout Layout) Spec {
	return Spec{Mnemonic: name, Format: FormatI, Op: op, Layout: layout}
}

func frSpec(name string, format, fn uint8, layout Layout) Spec {
	return Spec{Mnemonic: name, Format: FormatFR, Op: OpCop1, Fmt: format, Func: fn, Layout: layout}
}

var specs = []Spec{
	rSpec("sll", FnSll, LayoutRdRtSh),
	rSpec("srl", FnSrl, LayoutRdRtSh),
	rSpec("sra", FnSra, LayoutRdRtSh),
	rSpec("sllv", FnSllv, LayoutRdRtRs),
	rSpec("srlv", FnSrlv, LayoutRdRtRs),
	rSpec("srav", FnSrav, LayoutRdRtRs),
	rSpec("jr", FnJr, LayoutRs),
	rSpec("jalr", FnJalr, LayoutJalr),
	rSpec("syscall", FnSyscall, LayoutNone),
	rSpec("mfhi", FnMfhi, LayoutRd),
	rSpec("mthi", FnMthi, LayoutRs),
	rSpec("mflo", FnMflo, LayoutRd),
	rSpec("mtlo", FnMtlo, LayoutRs),
	rSpec("mult", FnMult, LayoutRsRt),
	rSpec("multu", FnMultu, LayoutRsRt),
	rSpec("div", FnDiv, LayoutRsRt),
	rSpec("divu", FnDivu, LayoutRsRt),
	rSpec("add", FnAdd, LayoutRdRsRt),
	rSpec("addu", FnAddu, LayoutRdRsRt),
	rSpec("sub", FnSub, LayoutRdRsRt),
	rSpec("subu", FnSubu, LayoutRdRsRt),
	rSpec("and", FnAnd, LayoutRdRsRt),
	rSpec("or", FnOr, LayoutRdRsRt),
	rSpec("xor", FnXor, LayoutRdRsRt),
	rSpec("nor", FnNor, LayoutRdRsRt),
	rSpec("slt", FnSlt, LayoutRdRsRt),
	rSpec("sltu", FnSltu, LayoutRdRsRt),

	{Mnemonic: "j", Format: FormatJ, Op: OpJ, Layout: LayoutTarget},
	{Mnemonic: "jal", Format: FormatJ, Op: OpJal, Layout: LayoutTarget},

	iSpec("beq", OpBeq, LayoutRsRtOff),
	iSpec("bne", OpBne, LayoutRsRtOff),
	iSpec("blez", OpBlez, LayoutRsOff),
	iSpec("bgtz", OpBgtz, LayoutRsOff),
	iSpec("addi", OpAddi, LayoutRtRsImm),
	iSpec("addiu", OpAddiu, LayoutRtRsImm),
	iSpec("slti", OpSlti, LayoutRtRsImm),
	iSpec("sltiu", OpSltiu, LayoutRtRsImm),
	iSpec("andi", OpAndi, LayoutRtRsImm),
	iSpec("ori", OpOri, LayoutRtRsImm),
	iSpec("xori", OpXori, LayoutRtRsImm),
	iSpec("lui", OpLui, LayoutRtImm),
	iSpec("lb", OpLb, LayoutRtMem),
	iSpec("lh", OpLh, LayoutRtMem),
	iSpec("lw", OpLw, LayoutRtMem),
	iSpec("lbu", OpLbu, LayoutRtMem),
	iSpec("lhu", OpLhu, LayoutRtMem),
	iSpec("sb", OpSb, LayoutRtMem),
	iSpec("sh", OpSh, LayoutRtMem),
	iSpec("sw", OpSw, LayoutRtMem),
	iSpec("ll", OpLl, LayoutRtMem),
	iSpec("sc", OpSc, LayoutRtMem),
	iSpec("lwc1", OpLwc1, LayoutFtMem),
	iSpec("ldc1", OpLdc1, LayoutFtMem),
	iSpec("swc1", OpSwc1, LayoutFtMem),
	iSpec("sdc1", OpSdc1, LayoutFtMem),
	iSpec("l.s", OpLwc1, LayoutFtMem),
	iSpec("l.d", OpLdc1, LayoutFtMem),
	iSpec("s.s", OpSwc1, LayoutFtMem),
	iSpec("s.d", OpSdc1, LayoutFtMem),

	frSpec("add.s", FmtS, FnFAdd, LayoutFdFsFt),
	frSpec("add.d", FmtD, FnFAdd, LayoutFdFsFt),
	frSpec("sub.s", FmtS, FnFSub, LayoutFdFsFt),
	frSpec("sub.d", FmtD, FnFSub, LayoutFdFsFt),
	frSpec("mul.s", FmtS, FnFMul, LayoutFdFsFt),
	frSpec("mul.d", FmtD, FnFMul, LayoutFdFsFt),
	frSpec("div.s", FmtS, FnFDiv, LayoutFdFsFt),
	frSpec("div.d", FmtD, FnFDiv, LayoutFdFsFt),
	frSpec("sqrt.s", FmtS, FnFSqrt, LayoutFdFs),
	frSpec("sqrt.d", FmtD, FnFSqrt, LayoutFdFs),
	frSpec("abs.s", FmtS, FnFAbs, LayoutFdFs),
	frSpec("abs.d", FmtD, FnFAbs, LayoutFdFs),
	frSpec("mov.s", FmtS, FnFMov, LayoutFdFs),
	frSpec("mov.d", FmtD, FnFMov, LayoutFdFs),
	frSpec("neg.s", FmtS, FnFNeg, LayoutFdFs),
	frSpec("neg.d", FmtD, FnFNeg, LayoutFdFs),
	frSpec("cvt.s.d", FmtD, FnCvtS, LayoutFdFs),
	frSpec("cvt.s.w", FmtW, FnCvtS, LayoutFdFs),
	frSpec("cvt.d.s", FmtS, FnCvtD, LayoutFdFs),
	frSpec("cvt.d.w", FmtW, FnCvtD, LayoutFdFs),
	frSpec("cvt.w.s", FmtS, FnCvtW, LayoutFdFs),
	frSpec("cvt.w.d", FmtD, FnCvtW, LayoutFdFs),
	frSpec("c.eq.s", FmtS, FnCEq, LayoutFsFt),
	frSpec("c.eq.d", FmtD, FnCEq, LayoutFsFt),
	frSpec("c.lt.s", FmtS, FnCLt, LayoutFsFt),
	frSpec("c.lt.d", FmtD, FnCLt, LayoutFsFt),
	frSpec("c.le.s", FmtS, FnCLe, LayoutFsFt),
	frSpec("c.le.d", FmtD, FnCLe, LayoutFsFt),
	frSpec("mfc1", FmtMF, 0, LayoutRtFs),
	frSpec("mtc1", FmtMT, 0, LayoutRtFs),

	{Mnemonic: "bc1f", Format: FormatFI, Op: OpCop1, Fmt: FmtBC, Ft: 0, Layout: LayoutOff},
	{Mnemonic: "bc1t", Format: FormatFI, Op: OpCop1, Fmt: FmtBC, Ft: 1, Layout: LayoutOff},
}

// key identifies a decoded instruction in the reverse table.
type key struct {
	format Format
	op     uint8
	fn     uint8
	fmt    uint8
	ft     uint8
}

var (
	byMnemonic = lo.KeyBy(specs, func(s Spec) string { return s.Mnemonic })
	byKey      = buildReverse()
)

func buildReverse() map[key]Spec {
	table := make(map[key]Spec, len(specs))
	for _, s := range specs {
		k := specKey(s)
		// aliases such as l.s share a key with their canonical form
		if _, ok := table[k]; !ok {
			table[k] = s
		}
	}
	return table
}

func specKey(s Spec) key {
	switch s.Format {
	case FormatR:
		return key{format: s.Format, fn: s.Func}
	case FormatFR:
		if s.Fmt == FmtMF || s.Fmt == FmtMT {
			return key{format: s.Format, op: s.Op, fmt: s.Fmt}
		}
		return key{format: s.Format, op: s.Op, fn: s.Func, fmt: s.Fmt}
	case FormatFI:
		return key{format: s.Format, op: s.Op, fmt: s.Fmt, ft: s.Ft}
	default:
		return key{format: s.Format, op: s.Op}
	}
}

// Lookup returns the table row of a mnemonic.
func Lookup(mnemonic string) (Spec, bool) {
	s, ok := byMnemonic[mnemonic]
	return s, ok
}

// SpecOf returns the table row matching a decoded instruction.
func SpecOf(in Instruction) (Spec, bool) {
	var k key
	switch v := in.(type) {
	case R:
		k = key{format: FormatR, fn: v.Func}
	case I:
		k = key{format: FormatI, op: v.Op}
	case J:
		k = key{format: FormatJ, op: v.Op}
	case FR:
		if v.Fmt == FmtMF || v.Fmt == FmtMT {
			k = key{format: FormatFR, op: v.Op, fmt: v.Fmt}
		} else {
			k = key{format: FormatFR, op: v.Op, fn: v.Func, fmt: v.Fmt}
		}
	case FI:
		k = key{format: FormatFI, op: v.Op, fmt: v.Fmt, ft: v.Ft & 1}
	default:
		return Spec{}, false
	}
	s, ok := byKey[k]
	return s, ok
}

// Mnemonics lists every known mnemonic.
func Mnemonics() []string {
	return lo.Map(specs, func(s Spec, _ int) string { return s.Mnemonic })
}
