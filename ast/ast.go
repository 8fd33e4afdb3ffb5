// Package ast defines the nodes produced by the parser and consumed by the
// assembler.
package ast

import (
	"fmt"
	"strings"
)

// Node is implemented by every node kind of this package only.
type Node interface {
	fmt.Stringer
	node()
}

// Root holds the two segments in source order.
type Root struct {
	Data []Node
	Text []Node
	// Directives are the segment switches in source order.
	Directives []*Directive
}

// Directive is a segment directive such as .data or .text.
type Directive struct {
	Name string
	Line int
}

// Data is a data declaration such as `.word 1, 2`.
type Data struct {
	Directive string
	Values    []string
	Line      int
}

// Label decorates at most one child node.
type Label struct {
	Name  string
	Child Node
	Line  int
}

// Operation is a mnemonic with its arguments.
type Operation struct {
	Name string
	Args []Node
	Line int
}

// Register is a `$name` operand.
type Register struct {
	Name string
}

// Immediate is a numeric literal operand.
type Immediate struct {
	Text string
}

// Offset is an `imm(reg)` memory operand.
type Offset struct {
	Offset   Immediate
	Register Register
}

// Part selects which half of a resolved address an Address node stands for.
type Part int

const (
	Whole Part = iota
	Upper
	Lower
)

// Address is a label reference.
type Address struct {
	Label string
	Part  Part
}

// Transformed replaces a pseudo-instruction with its expansion.
type Transformed struct {
	Original *Operation
	Children []*Operation
}

func (*Directive) node()   {}
func (*Data) node()        {}
func (*Label) node()       {}
func (*Operation) node()   {}
func (*Register) node()    {}
func (*Immediate) node()   {}
func (*Offset) node()      {}
func (*Address) node()     {}
func (*Transformed) node() {}

func (d *Directive) String() string { return d.Name }

func (d *Data) String() string {
	return strings.TrimSpace(d.Directive + " " + strings.Join(d.Values, ", "))
}

func (l *Label) String() string {
	if l.Child == nil {
		return l.Name + ":"
	}
	return l.Name + ": " + l.Child.String()
}

func (o *Operation) String() string {
	args := make([]string, len(o.Args))
	for i, arg := range o.Args {
		args[i] = arg.String()
	}
	return strings.TrimSpace(o.Name + " " + strings.Join(args, ", "))
}

func (r *Register) String() string { return r.Name }

func (i *Immediate) String() string { return i.Text }

func (o *Offset) String() string {
	return fmt.Sprintf("%s(%s)", o.Offset.Text, o.Register.Name)
}

func (a *Address) String() string {
	switch a.Part {
	case Upper:
		return "upper(" + a.Label + ")"
	case Lower:
		return "lower(" + a.Label + ")"
	}
	return a.Label
}

func (t *Transformed) String() string {
	ops := make([]string, len(t.Children))
	for i, op := range t.Children {
		ops[i] = op.String()
	}
	return strings.Join(ops, "; ")
}

// Op builds an operation node; used by the transformer.
func Op(name string, line int, args ...Node) *Operation {
	return &Operation{Name: name, Args: args, Line: line}
}

func Reg(name string) *Register {
	return &Register{Name: name}
}

func Imm(v int64) *Immediate {
	return &Immediate{Text: fmt.Sprint(v)}
}
