// Package parser builds an AST from lexer tokens and expands
// pseudo-instructions.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChainSafe/mips-vm/ast"
	"github.com/ChainSafe/mips-vm/data"
	"github.com/ChainSafe/mips-vm/lexer"
)

var (
	ErrUnexpectedToken  = errors.New("unexpected token")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrNotImplemented   = errors.New("not implemented")
	ErrOperandCount     = errors.New("wrong number of operands")
	ErrBadOperand       = errors.New("invalid operand")
)

// Error locates a parse failure in the source.
type Error struct {
	Line   int
	Column int
	Err    error
	Msg    string
}

func (e *Error) Error() string {
	pos := fmt.Sprintf("line %d", e.Line)
	if e.Column > 0 {
		pos = fmt.Sprintf("line %d:%d", e.Line, e.Column)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", pos, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", pos, e.Err, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func tokenError(err error, tok lexer.Token) *Error {
	return &Error{Line: tok.Line, Column: tok.Column, Err: err, Msg: strconv.Quote(tok.Text)}
}

type segment int

const (
	textSegment segment = iota
	dataSegment
)

type parser struct {
	tokens []lexer.Token
	pos    int
	root   *ast.Root
	seg    segment

	// labels waiting for the node of a following line
	pendingRoot *ast.Label
	pendingLeaf *ast.Label
	pendingSeg  segment
}

// ParseSource lexes and parses source.
func ParseSource(source string) (*ast.Root, error) {
	return Parse(lexer.Lex(source))
}

// Parse builds the AST of a token stream and runs Transform over it. Lines
// default to the text segment.
func Parse(tokens []lexer.Token) (*ast.Root, error) {
	p := &parser{tokens: tokens, root: &ast.Root{}, seg: textSegment}
	for {
		line, ok := p.nextLine()
		if !ok {
			break
		}
		if len(line) == 0 {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	p.flushPending()

	if err := Transform(p.root); err != nil {
		return nil, err
	}
	return p.root, nil
}

// nextLine returns the tokens up to the next EOL or EOS.
func (p *parser) nextLine() ([]lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return nil, false
	}
	start := p.pos
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		if tok.Kind == lexer.EOL || tok.Kind == lexer.EOS {
			return p.tokens[start : p.pos-1], true
		}
	}
	return p.tokens[start:], true
}

func (p *parser) parseLine(line []lexer.Token) error {
	var labels []*ast.Label
	for len(line) >= 2 && line[0].Kind == lexer.Text && line[1].Kind == lexer.Colon {
		labels = append(labels, &ast.Label{Name: line[0].Text, Line: line[0].Line})
		line = line[2:]
	}
	if len(line) == 0 {
		p.pend(labels)
		return nil
	}

	first := line[0]
	if first.Kind != lexer.Text {
		return tokenError(ErrUnexpectedToken, first)
	}

	if first.Text == ".data" || first.Text == ".text" {
		if len(line) > 1 {
			return tokenError(ErrUnexpectedToken, line[1])
		}
		p.pend(labels)
		p.flushPending()
		p.root.Directives = append(p.root.Directives, &ast.Directive{Name: first.Text, Line: first.Line})
		p.seg = textSegment
		if first.Text == ".data" {
			p.seg = dataSegment
		}
		return nil
	}

	var (
		node ast.Node
		err  error
	)
	switch p.seg {
	case dataSegment:
		node, err = p.parseData(line)
	default:
		node, err = p.parseOperation(line)
	}
	if err != nil {
		return err
	}
	p.pend(labels)
	p.add(node)
	return nil
}

func (p *parser) pend(labels []*ast.Label) {
	for _, label := range labels {
		if p.pendingLeaf != nil {
			p.pendingLeaf.Child = label
		} else {
			p.pendingRoot = label
			p.pendingSeg = p.seg
		}
		p.pendingLeaf = label
	}
}

func (p *parser) add(node ast.Node) {
	seg := p.seg
	if p.pendingLeaf != nil {
		p.pendingLeaf.Child = node
		node, seg = p.pendingRoot, p.pendingSeg
		p.pendingRoot, p.pendingLeaf = nil, nil
	}
	p.appendTo(seg, node)
}

// flushPending keeps labels with nothing left to decorate as bare nodes.
func (p *parser) flushPending() {
	if p.pendingRoot == nil {
		return
	}
	p.appendTo(p.pendingSeg, p.pendingRoot)
	p.pendingRoot, p.pendingLeaf = nil, nil
}

func (p *parser) appendTo(seg segment, node ast.Node) {
	if seg == dataSegment {
		p.root.Data = append(p.root.Data, node)
		return
	}
	p.root.Text = append(p.root.Text, node)
}

func (p *parser) parseData(line []lexer.Token) (ast.Node, error) {
	first := line[0]
	if !strings.HasPrefix(first.Text, ".") {
		return nil, tokenError(ErrUnexpectedToken, first)
	}
	values := make([]string, 0)
	for _, group := range groupByComma(line[1:]) {
		if len(group) != 1 {
			return nil, &Error{
				Line: group[0].Line, Column: group[0].Column, Err: ErrNotImplemented,
				Msg: "multi-token data value",
			}
		}
		tok := group[0]
		if tok.Kind != lexer.Text && tok.Kind != lexer.Char && tok.Kind != lexer.String {
			return nil, tokenError(ErrUnexpectedToken, tok)
		}
		values = append(values, tok.Text)
	}
	return &ast.Data{Directive: first.Text, Values: values, Line: first.Line}, nil
}

func (p *parser) parseOperation(line []lexer.Token) (ast.Node, error) {
	first := line[0]
	if strings.HasPrefix(first.Text, ".") {
		return nil, tokenError(ErrUnknownDirective, first)
	}
	op := &ast.Operation{Name: strings.ToLower(first.Text), Args: make([]ast.Node, 0), Line: first.Line}
	for _, group := range groupByComma(line[1:]) {
		arg, err := parseArg(group)
		if err != nil {
			return nil, err
		}
		op.Args = append(op.Args, arg)
	}
	return op, nil
}

func parseArg(group []lexer.Token) (ast.Node, error) {
	first := group[0]
	switch len(group) {
	case 1:
		switch first.Kind {
		case lexer.Text:
			switch {
			case strings.HasPrefix(first.Text, "$"):
				return &ast.Register{Name: first.Text}, nil
			case ast.IsNumeric(first.Text):
				return &ast.Immediate{Text: first.Text}, nil
			default:
				return &ast.Address{Label: first.Text}, nil
			}
		case lexer.Char:
			c, err := data.Char(first.Text)
			if err != nil {
				return nil, &Error{Line: first.Line, Column: first.Column, Err: ErrBadOperand, Msg: err.Error()}
			}
			return ast.Imm(int64(c)), nil
		}
	case 3:
		// ($reg)
		if isRegisterGroup(group) {
			return &ast.Offset{Offset: ast.Immediate{Text: "0"}, Register: ast.Register{Name: group[1].Text}}, nil
		}
	case 4:
		// imm($reg)
		if first.Kind == lexer.Text && ast.IsNumeric(first.Text) && isRegisterGroup(group[1:]) {
			return &ast.Offset{Offset: ast.Immediate{Text: first.Text}, Register: ast.Register{Name: group[2].Text}}, nil
		}
	}
	if len(group) > 1 {
		return nil, tokenError(ErrUnexpectedToken, group[1])
	}
	return nil, tokenError(ErrUnexpectedToken, first)
}

func isRegisterGroup(group []lexer.Token) bool {
	return len(group) == 3 &&
		group[0].Kind == lexer.LeftParen &&
		group[1].Kind == lexer.Text && strings.HasPrefix(group[1].Text, "$") &&
		group[2].Kind == lexer.RightParen
}

// groupByComma splits tokens on commas, dropping empty groups.
func groupByComma(tokens []lexer.Token) [][]lexer.Token {
	groups := make([][]lexer.Token, 0)
	var current []lexer.Token
	for _, tok := range tokens {
		if tok.Kind == lexer.Comma {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = nil
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
