package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/k0kubun/pp/v3"
)

// ListingRenderer prints an object as an annotated listing.
type ListingRenderer struct{}

func NewListingRenderer() *ListingRenderer {
	return &ListingRenderer{}
}

// RenderObject writes the symbol table, the data segment as a hex dump and
// one line per instruction.
func (r *ListingRenderer) RenderObject(obj *assembler.Object, output io.Writer) error {
	var out strings.Builder

	out.WriteString("symbols:\n")
	for _, name := range obj.SymbolNames() {
		out.WriteString(fmt.Sprintf("  0x%08x  %s\n", obj.Symbols[name], name))
	}

	out.WriteString("\n.data\n")
	for off := 0; off < len(obj.Data); off += 16 {
		end := min(off+16, len(obj.Data))
		out.WriteString(fmt.Sprintf("  0x%08x ", assembler.DataBase+uint32(off)))
		for _, b := range obj.Data[off:end] {
			out.WriteString(fmt.Sprintf(" %02x", b))
		}
		out.WriteString("\n")
	}

	out.WriteString("\n.text\n")
	for i, word := range obj.Instructions {
		addr := assembler.Address(i)
		for _, label := range obj.Labels(addr) {
			out.WriteString(label + ":\n")
		}
		text := instruction.Disassemble(obj.ObjInstructions[i])
		if target, ok := obj.Relocations[addr]; ok {
			text += " <" + target + ">"
		}
		out.WriteString(fmt.Sprintf("  0x%08x  %08x  %-32s # line %d\n", addr, word, text, obj.Lines[i]))
	}

	_, err := io.WriteString(output, out.String())
	return err
}

func (r *ListingRenderer) Format() string {
	return "text"
}

// DumpRenderer pretty prints the object structure.
type DumpRenderer struct {
	colored bool
}

func NewDumpRenderer() *DumpRenderer {
	return &DumpRenderer{}
}

// WithColor enables ANSI colors in the dump.
func (r *DumpRenderer) WithColor(colored bool) *DumpRenderer {
	r.colored = colored
	return r
}

func (r *DumpRenderer) RenderObject(obj *assembler.Object, output io.Writer) error {
	printer := pp.New()
	printer.SetColoringEnabled(r.colored)
	_, err := printer.Fprintln(output, obj)
	return err
}

func (r *DumpRenderer) Format() string {
	return "dump"
}
