package instruction

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/mips-vm/registers"
)

// Disassemble renders a decoded instruction as assembly text. Words with no
// matching mnemonic render as a .word directive.
func Disassemble(in Instruction) string {
	s, ok := SpecOf(in)
	if !ok {
		return fmt.Sprintf(".word 0x%08x", in.Encode())
	}
	ops := operands(s, in)
	if len(ops) == 0 {
		return s.Mnemonic
	}
	return s.Mnemonic + " " + strings.Join(ops, ", ")
}

func operands(s Spec, in Instruction) []string {
	reg := func(i uint8) string { return registers.Name(int(i)) }
	freg := func(i uint8) string { return registers.FloatName(int(i)) }

	switch v := in.(type) {
	case R:
		switch s.Layout {
		case LayoutRdRsRt:
			return []string{reg(v.Rd), reg(v.Rs), reg(v.Rt)}
		case LayoutRdRtRs:
			return []string{reg(v.Rd), reg(v.Rt), reg(v.Rs)}
		case LayoutRdRtSh:
			return []string{reg(v.Rd), reg(v.Rt), fmt.Sprint(v.Sh)}
		case LayoutRsRt:
			return []string{reg(v.Rs), reg(v.Rt)}
		case LayoutRd:
			return []string{reg(v.Rd)}
		case LayoutRs:
			return []string{reg(v.Rs)}
		case LayoutJalr:
			return []string{reg(v.Rd), reg(v.Rs)}
		}
	case I:
		switch s.Layout {
		case LayoutRtRsImm:
			return []string{reg(v.Rt), reg(v.Rs), fmt.Sprint(v.Imm)}
		case LayoutRsRtOff:
			return []string{reg(v.Rs), reg(v.Rt), fmt.Sprint(int16(v.Imm))}
		case LayoutRsOff:
			return []string{reg(v.Rs), fmt.Sprint(int16(v.Imm))}
		case LayoutRtImm:
			return []string{reg(v.Rt), fmt.Sprintf("0x%x", v.Imm)}
		case LayoutRtMem:
			return []string{reg(v.Rt), fmt.Sprintf("%d(%s)", int16(v.Imm), reg(v.Rs))}
		case LayoutFtMem:
			return []string{freg(v.Rt), fmt.Sprintf("%d(%s)", int16(v.Imm), reg(v.Rs))}
		}
	case J:
		return []string{fmt.Sprintf("0x%08x", v.Addr)}
	case FR:
		switch s.Layout {
		case LayoutFdFsFt:
			return []string{freg(v.Fd), freg(v.Fs), freg(v.Ft)}
		case LayoutFdFs:
			return []string{freg(v.Fd), freg(v.Fs)}
		case LayoutFsFt:
			return []string{freg(v.Fs), freg(v.Ft)}
		case LayoutRtFs:
			return []string{reg(v.Ft), freg(v.Fs)}
		}
	case FI:
		return []string{fmt.Sprint(int16(v.Imm))}
	}
	return nil
}
