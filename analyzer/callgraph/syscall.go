package callgraph

import (
	"fmt"

	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/registers"
	"github.com/samber/lo"
)

// Syscall is one possible value of $v0 at a syscall instruction.
type Syscall struct {
	Number int
	// Resolved is false when $v0 is computed at runtime.
	Resolved bool
	// Segment holds the syscall instruction.
	Segment *Segment
	Index   int
}

// IsSyscall reports whether in is the syscall instruction.
func IsSyscall(in instruction.Instruction) bool {
	r, ok := in.(instruction.R)
	return ok && r.Op == instruction.OpSpecial && r.Func == instruction.FnSyscall
}

type visit struct {
	seg  *Segment
	from int
	reg  uint8
}

// RetrieveSyscallNum resolves the values $v0 may hold when the syscall at
// index executes. It follows constant loads and register moves backwards,
// crossing into parent segments at the start of a segment.
// Limitation: values computed from memory or arithmetic stay unresolved.
func (g *Graph) RetrieveSyscallNum(index int) ([]*Syscall, error) {
	seg := g.SegmentOf(index)
	if seg == nil {
		return nil, fmt.Errorf("no segment holds instruction %d", index)
	}
	if !IsSyscall(g.obj.ObjInstructions[index]) {
		return nil, fmt.Errorf("instruction %d is not a syscall", index)
	}
	values := g.resolve(registers.V0, seg, index-1, make(map[visit]bool))
	values = lo.Uniq(values)
	return lo.Map(values, func(v value, _ int) *Syscall {
		return &Syscall{Number: int(int32(v.word)), Resolved: v.known, Segment: seg, Index: index}
	}), nil
}

type value struct {
	word  uint32
	known bool
}

var unknown = value{}

// resolve walks backwards from the instruction at from looking for the
// instruction that last wrote reg.
func (g *Graph) resolve(reg uint8, seg *Segment, from int, seen map[visit]bool) []value {
	if reg == registers.Zero {
		return []value{{known: true}}
	}
	key := visit{seg: seg, from: from, reg: reg}
	if seen[key] {
		return nil
	}
	seen[key] = true

	for i := from; i >= seg.Start; i-- {
		in := g.obj.ObjInstructions[i]
		dest, ok := writes(in)
		if !ok || dest != reg {
			continue
		}
		return g.evaluate(in, seg, i, seen)
	}

	edges := g.Edges(seg)
	if len(edges) == 0 {
		return []value{unknown}
	}
	var values []value
	for _, e := range edges {
		values = append(values, g.resolve(reg, e.Parent, e.Site, seen)...)
	}
	return values
}

func (g *Graph) evaluate(in instruction.Instruction, seg *Segment, i int, seen map[visit]bool) []value {
	switch v := in.(type) {
	case instruction.I:
		imm := uint32(v.Imm)
		switch v.Op {
		case instruction.OpLui:
			return []value{{word: imm << 16, known: true}}
		case instruction.OpAddi, instruction.OpAddiu, instruction.OpOri, instruction.OpXori:
			return lo.Map(g.resolve(v.Rs, seg, i-1, seen), func(base value, _ int) value {
				if !base.known {
					return unknown
				}
				switch v.Op {
				case instruction.OpOri:
					return value{word: base.word | imm, known: true}
				case instruction.OpXori:
					return value{word: base.word ^ imm, known: true}
				default:
					return value{word: base.word + imm, known: true}
				}
			})
		}
	case instruction.R:
		switch v.Func {
		case instruction.FnAdd, instruction.FnAddu, instruction.FnOr:
			if v.Rs == registers.Zero {
				return g.resolve(v.Rt, seg, i-1, seen)
			}
			if v.Rt == registers.Zero {
				return g.resolve(v.Rs, seg, i-1, seen)
			}
		}
	}
	return []value{unknown}
}

// writes returns the general purpose register in stores its result in.
func writes(in instruction.Instruction) (uint8, bool) {
	spec, ok := instruction.SpecOf(in)
	if !ok {
		return 0, false
	}
	switch v := in.(type) {
	case instruction.R:
		switch spec.Layout {
		case instruction.LayoutRdRsRt, instruction.LayoutRdRtRs, instruction.LayoutRdRtSh,
			instruction.LayoutRd, instruction.LayoutJalr:
			return v.Rd, true
		}
	case instruction.I:
		switch spec.Layout {
		case instruction.LayoutRtRsImm, instruction.LayoutRtImm:
			return v.Rt, true
		case instruction.LayoutRtMem:
			if isLoad(v.Op) {
				return v.Rt, true
			}
		}
	case instruction.J:
		if v.Op == instruction.OpJal {
			return registers.RA, true
		}
	case instruction.FR:
		if v.Fmt == instruction.FmtMF {
			return v.Ft, true
		}
	}
	return 0, false
}

func isLoad(op uint8) bool {
	switch op {
	case instruction.OpLb, instruction.OpLh, instruction.OpLw, instruction.OpLbu,
		instruction.OpLhu, instruction.OpLl, instruction.OpSc:
		return true
	}
	return false
}
