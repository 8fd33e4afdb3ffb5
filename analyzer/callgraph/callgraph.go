// Package callgraph splits an assembled object into label delimited segments
// and links each segment to the segments that can transfer control into it.
package callgraph

import (
	"sort"

	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/samber/lo"
)

// EntryLabel names the first segment when the program does not label it.
const EntryLabel = "<entry>"

// EdgeKind is the way control reaches a segment from its parent.
type EdgeKind uint8

const (
	EdgeJump EdgeKind = iota
	EdgeCall
	EdgeBranch
	EdgeFallthrough
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeJump:
		return "jump"
	case EdgeCall:
		return "call"
	case EdgeBranch:
		return "branch"
	default:
		return "fallthrough"
	}
}

// Edge records the instruction that transfers control into a segment.
type Edge struct {
	Parent *Segment
	// Site is the index of the transferring instruction.
	Site int
	Kind EdgeKind
}

// Segment is a run of instructions [Start, End) beginning at a label.
type Segment struct {
	Label string
	Start int
	End   int
	edges []Edge
}

// Address returns the absolute address of the first instruction.
func (s *Segment) Address() uint32 {
	return assembler.Address(s.Start)
}

// Contains reports whether the instruction index belongs to the segment.
func (s *Segment) Contains(index int) bool {
	return index >= s.Start && index < s.End
}

// Graph is the control flow between segments of one object.
type Graph struct {
	obj      *assembler.Object
	segments []*Segment
}

// Build splits obj at every text label and records jump, call, branch and
// fallthrough edges between the resulting segments.
func Build(obj *assembler.Object) *Graph {
	g := &Graph{obj: obj}
	starts := lo.Uniq(lo.FilterMap(lo.Values(obj.Symbols), func(addr uint32, _ int) (int, bool) {
		return obj.Index(addr)
	}))
	if obj.Len() > 0 && !lo.Contains(starts, 0) {
		starts = append(starts, 0)
	}
	sort.Ints(starts)

	for i, start := range starts {
		end := obj.Len()
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		label, ok := obj.Label(assembler.Address(start))
		if !ok {
			label = EntryLabel
		}
		g.segments = append(g.segments, &Segment{Label: label, Start: start, End: end})
	}

	for _, seg := range g.segments {
		for i := seg.Start; i < seg.End; i++ {
			g.link(seg, i)
		}
		if next := g.SegmentOf(seg.End); next != nil && !endsFlow(obj.ObjInstructions[seg.End-1]) {
			next.addEdge(Edge{Parent: seg, Site: seg.End - 1, Kind: EdgeFallthrough})
		}
	}
	return g
}

func (g *Graph) link(seg *Segment, i int) {
	switch in := g.obj.ObjInstructions[i].(type) {
	case instruction.J:
		kind := EdgeJump
		if in.Op == instruction.OpJal {
			kind = EdgeCall
		}
		addr := in.Addr
		if label, ok := g.obj.Relocations[assembler.Address(i)]; ok {
			addr = g.obj.Symbols[label]
		}
		if index, ok := g.obj.Index(addr); ok {
			g.SegmentOf(index).addEdge(Edge{Parent: seg, Site: i, Kind: kind})
		}
	case instruction.I, instruction.FI:
		spec, ok := instruction.SpecOf(in)
		if !ok || !spec.IsBranch() {
			return
		}
		var imm uint16
		switch v := in.(type) {
		case instruction.I:
			imm = v.Imm
		case instruction.FI:
			imm = v.Imm
		}
		target := i + 1 + int(int16(imm))
		if to := g.SegmentOf(target); to != nil {
			to.addEdge(Edge{Parent: seg, Site: i, Kind: EdgeBranch})
		}
	}
}

// endsFlow reports whether control never falls through past in.
func endsFlow(in instruction.Instruction) bool {
	switch v := in.(type) {
	case instruction.J:
		return v.Op == instruction.OpJ
	case instruction.R:
		return v.Func == instruction.FnJr
	}
	return false
}

func (s *Segment) addEdge(e Edge) {
	if lo.ContainsBy(s.edges, func(x Edge) bool { return x.Parent == e.Parent && x.Site == e.Site }) {
		return
	}
	s.edges = append(s.edges, e)
}

// Object returns the object the graph was built from.
func (g *Graph) Object() *assembler.Object {
	return g.obj
}

// Segments returns all segments in address order.
func (g *Graph) Segments() []*Segment {
	return g.segments
}

// Segment finds the segment beginning at label.
func (g *Graph) Segment(label string) (*Segment, bool) {
	if seg, ok := lo.Find(g.segments, func(s *Segment) bool { return s.Label == label }); ok {
		return seg, true
	}
	addr, ok := g.obj.Symbols[label]
	if !ok {
		return nil, false
	}
	index, ok := g.obj.Index(addr)
	if !ok {
		return nil, false
	}
	seg := g.SegmentOf(index)
	return seg, seg != nil && seg.Start == index
}

// SegmentOf returns the segment holding the instruction index, or nil.
func (g *Graph) SegmentOf(index int) *Segment {
	i := sort.Search(len(g.segments), func(i int) bool { return g.segments[i].End > index })
	if i < len(g.segments) && g.segments[i].Contains(index) {
		return g.segments[i]
	}
	return nil
}

// Edges returns the edges into seg ordered by call site.
func (g *Graph) Edges(seg *Segment) []Edge {
	edges := append([]Edge{}, seg.edges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Site < edges[j].Site })
	return edges
}

// ParentsOf returns the distinct segments with an edge into seg.
func (g *Graph) ParentsOf(seg *Segment) []*Segment {
	return lo.Uniq(lo.Map(g.Edges(seg), func(e Edge, _ int) *Segment { return e.Parent }))
}

// Instructions returns the decoded instructions of seg.
func (g *Graph) Instructions(seg *Segment) []instruction.Instruction {
	return g.obj.ObjInstructions[seg.Start:seg.End]
}
