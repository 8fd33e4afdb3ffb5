package assembler

import (
	"sort"

	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/samber/lo"
)

// Memory layout shared by the assembler and the runtime.
const (
	TextBase uint32 = 0x00400000
	DataBase uint32 = 0x10010000
)

// Object is the in-memory result of a successful assembly.
type Object struct {
	// Symbols maps every label to its absolute address.
	Symbols map[string]uint32
	// Relocations maps the address of each j/jal to the label it targets.
	Relocations map[uint32]string
	Data        []byte
	// Instructions and ObjInstructions are index aligned.
	Instructions    []uint32
	ObjInstructions []instruction.Instruction
	// Lines holds the source line of each instruction.
	Lines []int
}

// Address returns the absolute address of the instruction at index.
func Address(index int) uint32 {
	return TextBase + uint32(index)*4
}

// Index maps a text address back to an instruction index.
func (o *Object) Index(addr uint32) (int, bool) {
	if addr < TextBase || (addr-TextBase)%4 != 0 {
		return 0, false
	}
	i := int((addr - TextBase) / 4)
	return i, i < len(o.Instructions)
}

// Labels returns the labels bound to addr in sorted order.
func (o *Object) Labels(addr uint32) []string {
	labels := lo.Keys(lo.PickByValues(o.Symbols, []uint32{addr}))
	sort.Strings(labels)
	return labels
}

// Label returns the first label bound to addr.
func (o *Object) Label(addr uint32) (string, bool) {
	labels := o.Labels(addr)
	if len(labels) == 0 {
		return "", false
	}
	return labels[0], true
}

// SymbolNames returns every label sorted by address, then name.
func (o *Object) SymbolNames() []string {
	names := lo.Keys(o.Symbols)
	sort.Slice(names, func(i, j int) bool {
		a, b := o.Symbols[names[i]], o.Symbols[names[j]]
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Len is the number of instructions.
func (o *Object) Len() int {
	return len(o.Instructions)
}
