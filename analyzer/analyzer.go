// Package analyzer provides an interface for checking assembly programs for
// compatibility issues against a VM profile.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChainSafe/mips-vm/analyzer/callgraph"
	"github.com/ChainSafe/mips-vm/assembler"
)

// Analyzer represents the interface for the analyzer.
type Analyzer interface {
	// Analyze analyzes the provided program and returns any issues found.
	Analyze(prog *Program, withTrace bool) ([]*Issue, error)

	// TraceStack generates the call stack from the entry point to label.
	TraceStack(prog *Program, label string) (*CallStack, error)
}

// IssueSeverity represents the severity level of an issue.
type IssueSeverity string

const (
	IssueSeverityCritical IssueSeverity = "CRITICAL"
	IssueSeverityWarning  IssueSeverity = "WARNING"
)

// Issue represents a single issue found by the analyzer.
type Issue struct {
	CallStack *CallStack    `json:"callStack"`
	Message   string        `json:"message"` // A description of the issue.
	Severity  IssueSeverity `json:"severity"`
	Impact    string        `json:"impact,omitempty"`
	Reference string        `json:"reference,omitempty"`
}

// CallStack represents a location in the program where the issue originates.
type CallStack struct {
	File      string     `json:"file"`
	AbsPath   string     `json:"absPath"`
	Line      int        `json:"line"`      // The source line of the location.
	Label     string     `json:"label"`     // The label of the enclosing segment.
	Address   uint32     `json:"address"`   // The text address of the location.
	CallStack *CallStack `json:"callStack,omitempty"` // The trace of calls leading to this location.
}

// Copy creates a deep copy of the CallStack.
func (src *CallStack) Copy() *CallStack {
	if src == nil {
		return nil
	}
	dst := *src
	dst.CallStack = src.CallStack.Copy()
	return &dst
}

// AddCallStack appends stack at the end of the chain.
func (src *CallStack) AddCallStack(stack *CallStack) {
	if src.CallStack == nil {
		src.CallStack = stack
		return
	}
	src.CallStack.AddCallStack(stack)
}

// Depth counts the frames of the chain.
func (src *CallStack) Depth() int {
	if src == nil {
		return 0
	}
	return 1 + src.CallStack.Depth()
}

// Program is an assembled source file ready for analysis.
type Program struct {
	File    string
	AbsPath string
	Object  *assembler.Object
	Graph   *callgraph.Graph
}

// NewProgram builds the call graph of an already assembled object.
func NewProgram(path string, obj *assembler.Object) *Program {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return &Program{
		File:    filepath.Base(path),
		AbsPath: absPath,
		Object:  obj,
		Graph:   callgraph.Build(obj),
	}
}

// LoadProgram reads and assembles the source file at path.
func LoadProgram(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading source file: %w", err)
	}
	obj, err := assembler.AssembleSource(string(source))
	if err != nil {
		return nil, fmt.Errorf("error assembling %s: %w", path, err)
	}
	return NewProgram(path, obj), nil
}

// Frame returns the location of the instruction at index.
func (p *Program) Frame(seg *callgraph.Segment, index int) *CallStack {
	frame := &CallStack{
		File:    p.File,
		AbsPath: p.AbsPath,
		Label:   seg.Label,
		Address: assembler.Address(index),
	}
	if index < len(p.Object.Lines) {
		frame.Line = p.Object.Lines[index]
	}
	return frame
}
