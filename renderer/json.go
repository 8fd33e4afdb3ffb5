package renderer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/instruction"
)

// JSONRenderer renders issues and objects in JSON format.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Render(issues []*analyzer.Issue, output io.Writer) error {
	return json.NewEncoder(output).Encode(issues)
}

type jsonInstruction struct {
	Address     string `json:"address"`
	Word        string `json:"word"`
	Disassembly string `json:"disassembly"`
	Line        int    `json:"line"`
}

type jsonObject struct {
	Symbols      map[string]string `json:"symbols"`
	Relocations  map[string]string `json:"relocations"`
	Data         string            `json:"data"`
	Instructions []jsonInstruction `json:"instructions"`
}

// RenderObject encodes addresses and words as hex strings.
func (r *JSONRenderer) RenderObject(obj *assembler.Object, output io.Writer) error {
	out := jsonObject{
		Symbols:      make(map[string]string, len(obj.Symbols)),
		Relocations:  make(map[string]string, len(obj.Relocations)),
		Data:         hex.EncodeToString(obj.Data),
		Instructions: make([]jsonInstruction, 0, obj.Len()),
	}
	for name, addr := range obj.Symbols {
		out.Symbols[name] = fmt.Sprintf("0x%08x", addr)
	}
	for addr, label := range obj.Relocations {
		out.Relocations[fmt.Sprintf("0x%08x", addr)] = label
	}
	for i, word := range obj.Instructions {
		out.Instructions = append(out.Instructions, jsonInstruction{
			Address:     fmt.Sprintf("0x%08x", assembler.Address(i)),
			Word:        fmt.Sprintf("0x%08x", word),
			Disassembly: instruction.Disassemble(obj.ObjInstructions[i]),
			Line:        obj.Lines[i],
		})
	}
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func (r *JSONRenderer) Format() string {
	return "json"
}
