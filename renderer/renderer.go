// Package renderer provides a way to render issues and assembled objects in
// different formats.
package renderer

import (
	"fmt"
	"io"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/profile"
)

// Renderer defines the interface for rendering analysis results in different formats.
type Renderer interface {
	// Render takes a list of issues and outputs them in the desired format to the provided writer.
	Render(issues []*analyzer.Issue, output io.Writer) error

	// Format returns the name of the output format (e.g., "json", "text").
	Format() string
}

// ObjectRenderer renders the result of an assembly.
type ObjectRenderer interface {
	RenderObject(obj *assembler.Object, output io.Writer) error
	Format() string
}

// New returns the issue renderer for format.
func New(format string, prof *profile.VMProfile) (Renderer, error) {
	switch format {
	case "", "text":
		return NewTextRenderer(prof), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}
}

// NewObject returns the object renderer for format.
func NewObject(format string) (ObjectRenderer, error) {
	switch format {
	case "", "text":
		return NewListingRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	case "dump":
		return NewDumpRenderer(), nil
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}
}
