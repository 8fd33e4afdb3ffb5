package analyzer

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/mips-vm/analyzer/callgraph"
	"github.com/ChainSafe/mips-vm/common/lifo"
	"github.com/ChainSafe/mips-vm/profile"
)

var (
	ErrUnknownLabel = errors.New("unknown label")
	ErrUnreachable  = errors.New("no trace found to the entry point")
)

// IsEntry reports whether execution starts in seg.
func IsEntry(seg *callgraph.Segment) bool {
	return seg.Start == 0
}

// step is a segment on a path towards the entry, with the instruction that
// transfers control to the previous step.
type step struct {
	seg  *callgraph.Segment
	site int
	prev *step
}

// TraceCaller finds a chain of segments through which control reaches label
// from a segment accepted by isEntry. The returned stack starts at label and
// ends at the entry, each caller frame pointing at its transferring
// instruction.
func TraceCaller(prog *Program, label string, isEntry func(*callgraph.Segment) bool) (*CallStack, error) {
	target, ok := prog.Graph.Segment(label)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownLabel, label, prog.File)
	}

	seen := make(map[*callgraph.Segment]bool)
	stack := lifo.New[*step](0)
	stack.Push(&step{seg: target, site: target.Start})

	for !stack.IsEmpty() {
		s, _ := stack.Pop()
		if seen[s.seg] {
			continue
		}
		seen[s.seg] = true
		if isEntry(s.seg) {
			return unwind(prog, s), nil
		}
		edges := prog.Graph.Edges(s.seg)
		// pushed in reverse so the lowest call site is explored first
		for i := len(edges) - 1; i >= 0; i-- {
			if e := edges[i]; !seen[e.Parent] {
				stack.Push(&step{seg: e.Parent, site: e.Site, prev: s})
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnreachable, label)
}

// TraceInstruction traces the segment holding the instruction at index and
// points the top frame at the instruction itself.
func TraceInstruction(prog *Program, index int, isEntry func(*callgraph.Segment) bool) (*CallStack, error) {
	seg := prog.Graph.SegmentOf(index)
	if seg == nil {
		return nil, fmt.Errorf("%w: instruction %d", ErrUnreachable, index)
	}
	stack, err := TraceCaller(prog, seg.Label, isEntry)
	if err != nil {
		return nil, err
	}
	frame := prog.Frame(seg, index)
	frame.CallStack = stack.CallStack
	return frame, nil
}

// unwind converts the path ending at entry into a stack starting at the
// traced label.
func unwind(prog *Program, entry *step) *CallStack {
	var top *CallStack
	for s := entry; s != nil; s = s.prev {
		frame := prog.Frame(s.seg, s.site)
		frame.CallStack = top
		top = frame
	}
	return top
}

// ShouldIgnoreSource reports whether any frame of callStack is in a label
// ignored by prof.
func ShouldIgnoreSource(callStack *CallStack, prof *profile.VMProfile) bool {
	for frame := callStack; frame != nil; frame = frame.CallStack {
		if prof.LabelIgnored(frame.Label) {
			return true
		}
	}
	return false
}
