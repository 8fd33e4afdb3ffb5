// Package lexer splits assembly source into tokens.
package lexer

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	Text Kind = iota
	LeftParen
	RightParen
	Comma
	Colon
	Char
	String
	EOL
	EOS
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "TEXT"
	case LeftParen:
		return "LEFT_PAREN"
	case RightParen:
		return "RIGHT_PAREN"
	case Comma:
		return "COMMA"
	case Colon:
		return "COLON"
	case Char:
		return "CHAR"
	case String:
		return "STRING"
	case EOL:
		return "EOL"
	case EOS:
		return "EOS"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a lexeme with its 1-based source position.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", t.Kind, t.Text, t.Line, t.Column)
}

var single = map[rune]Kind{
	':': Colon,
	'(': LeftParen,
	')': RightParen,
	',': Comma,
}

type lexer struct {
	tokens []Token

	pending   strings.Builder
	startLine int
	startCol  int

	line, col int
	inComment bool
	quote     rune // opening quote of the current literal, 0 outside
	escaped   bool
}

// Lex tokenises source. The result always ends with an EOS token; a literal
// that is never closed runs to the end of the input.
func Lex(source string) []Token {
	l := &lexer{line: 1}
	for _, c := range source {
		l.col++
		l.next(c)
	}
	l.flush()
	l.emit(EOS, "", l.line, l.col+1)
	return normalize(l.tokens)
}

func (l *lexer) next(c rune) {
	switch {
	case l.quote != 0:
		l.literal(c)
	case c == '\n':
		l.flush()
		l.inComment = false
		l.emit(EOL, "", l.line, l.col)
		l.line++
		l.col = 0
	case l.inComment:
	case c == '#':
		l.flush()
		l.inComment = true
	case c == '\'' || c == '"':
		l.flush()
		l.quote = c
		l.add(c)
	case c == ' ' || c == '\t' || c == '\r':
		l.flush()
	default:
		if kind, ok := single[c]; ok {
			l.flush()
			l.emit(kind, string(c), l.line, l.col)
			return
		}
		l.add(c)
	}
}

func (l *lexer) literal(c rune) {
	l.add(c)
	switch {
	case l.escaped:
		l.escaped = false
	case c == '\\':
		l.escaped = true
	case c == l.quote:
		kind := String
		if l.quote == '\'' {
			kind = Char
		}
		l.quote = 0
		l.emitPending(kind)
	}
	if c == '\n' {
		l.line++
		l.col = 0
	}
}

func (l *lexer) add(c rune) {
	if l.pending.Len() == 0 {
		l.startLine, l.startCol = l.line, l.col
	}
	l.pending.WriteRune(c)
}

func (l *lexer) flush() {
	if l.pending.Len() == 0 {
		return
	}
	kind := Text
	switch {
	case strings.HasPrefix(l.pending.String(), "'"):
		kind = Char
	case strings.HasPrefix(l.pending.String(), `"`):
		kind = String
	}
	l.emitPending(kind)
}

func (l *lexer) emitPending(kind Kind) {
	l.emit(kind, l.pending.String(), l.startLine, l.startCol)
	l.pending.Reset()
}

func (l *lexer) emit(kind Kind, text string, line, col int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Line: line, Column: col})
}

// normalize collapses EOL runs, drops leading EOLs and folds a trailing EOL
// into EOS.
func normalize(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case EOL:
			if len(out) == 0 || out[len(out)-1].Kind == EOL {
				continue
			}
		case EOS:
			if len(out) > 0 && out[len(out)-1].Kind == EOL {
				out[len(out)-1] = tok
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}
