// Package data turns data directives into the bytes of the data segment.
package data

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChainSafe/mips-vm/ast"
	"github.com/ChainSafe/mips-vm/binary"
)

// MaxSegmentSize bounds the data segment so it stays below the stack.
const MaxSegmentSize = 1 << 22

var (
	ErrUnknownDirective = errors.New("unknown data directive")
	ErrBadValue         = errors.New("invalid data value")
)

// Data is a sized byte producer for one directive.
type Data interface {
	Directive() string
	Size() int
	Bytes() []byte
}

type block struct {
	directive string
	bytes     []byte
}

func (b *block) Directive() string { return b.directive }
func (b *block) Size() int         { return len(b.bytes) }

func (b *block) Bytes() []byte {
	out := make([]byte, len(b.bytes))
	copy(out, b.bytes)
	return out
}

type encoder func(values []string) ([]byte, error)

var directives = map[string]encoder{
	".ascii":  func(values []string) ([]byte, error) { return ascii(values, false) },
	".asciiz": func(values []string) ([]byte, error) { return ascii(values, true) },
	".byte":   byteValues,
	".half":   func(values []string) ([]byte, error) { return integers(values, 2) },
	".word":   func(values []string) ([]byte, error) { return integers(values, 4) },
	".space":  space,
	".float":  func(values []string) ([]byte, error) { return floats(values, binary.Single) },
	".double": func(values []string) ([]byte, error) { return floats(values, binary.Double) },
}

// IsDirective reports whether name is a known data directive.
func IsDirective(name string) bool {
	_, ok := directives[name]
	return ok
}

// FromDirective encodes the raw values of a directive.
func FromDirective(directive string, values []string) (Data, error) {
	enc, ok := directives[directive]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDirective, directive)
	}
	b, err := enc(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", directive, err)
	}
	return &block{directive: directive, bytes: b}, nil
}

func ascii(values []string, terminate bool) ([]byte, error) {
	var out []byte
	for _, v := range values {
		s, err := Unquote(v, '"')
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
		if terminate {
			out = append(out, 0)
		}
	}
	return out, nil
}

func byteValues(values []string) ([]byte, error) {
	out := make([]byte, 0, len(values))
	for _, v := range values {
		if strings.HasPrefix(v, "'") {
			c, err := Char(v)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
			continue
		}
		n, err := ast.ParseImmediate(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadValue, err)
		}
		if n < -128 || n > 255 {
			return nil, fmt.Errorf("%w: %d does not fit a byte", ErrBadValue, n)
		}
		out = append(out, byte(n))
	}
	return out, nil
}

func integers(values []string, width int) ([]byte, error) {
	bits := uint(width * 8)
	lowest, highest := -(int64(1) << (bits - 1)), int64(1)<<bits-1
	out := make([]byte, 0, len(values)*width)
	for _, v := range values {
		n, err := ast.ParseImmediate(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadValue, err)
		}
		if n < lowest || n > highest {
			return nil, fmt.Errorf("%w: %d does not fit %d bits", ErrBadValue, n, bits)
		}
		for shift := int(bits) - 8; shift >= 0; shift -= 8 {
			out = append(out, byte(uint64(n)>>shift))
		}
	}
	return out, nil
}

func space(values []string) ([]byte, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected one size, got %d values", ErrBadValue, len(values))
	}
	n, err := ast.ParseImmediate(values[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadValue, err)
	}
	if n < 0 || n > MaxSegmentSize {
		return nil, fmt.Errorf("%w: size %d outside [0, %d]", ErrBadValue, n, MaxSegmentSize)
	}
	return make([]byte, n), nil
}

func floats(values []string, format binary.Format) ([]byte, error) {
	var out []byte
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadValue, v)
		}
		b, err := binary.FloatToBinary(f, format)
		if err != nil {
			return nil, err
		}
		out = append(out, b.Bytes()...)
	}
	return out, nil
}

// Char decodes a quoted character literal such as 'a' or '\n'.
func Char(v string) (byte, error) {
	s, err := Unquote(v, '\'')
	if err != nil {
		return 0, err
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %s is not a single character", ErrBadValue, v)
	}
	return s[0], nil
}

// Unquote strips the quotes of a literal and resolves its escapes.
func Unquote(v string, quote byte) ([]byte, error) {
	if len(v) < 2 || v[0] != quote || v[len(v)-1] != quote {
		return nil, fmt.Errorf("%w: unterminated or unquoted literal %s", ErrBadValue, v)
	}
	body := v[1 : len(v)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i == len(body) {
			return nil, fmt.Errorf("%w: dangling escape in %s", ErrBadValue, v)
		}
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		default:
			out = append(out, body[i])
		}
	}
	return out, nil
}
