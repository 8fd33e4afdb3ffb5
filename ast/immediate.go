package ast

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrBadImmediate = errors.New("invalid immediate")

var numericRegex = regexp.MustCompile(`^-?(0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|[0-9]+)$`)

// IsNumeric reports whether text is an integer literal.
func IsNumeric(text string) bool {
	return numericRegex.MatchString(text)
}

// ParseImmediate parses a signed decimal, 0x, 0o or 0b literal. Decimal is the
// default, a leading zero does not mean octal.
func ParseImmediate(text string) (int64, error) {
	if !IsNumeric(text) {
		return 0, fmt.Errorf("%w: %q", ErrBadImmediate, text)
	}
	digits, negative := strings.CutPrefix(text, "-")
	base := 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			digits = digits[2:]
		}
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil || v > 1<<63 || (!negative && v == 1<<63) {
		return 0, fmt.Errorf("%w: %q out of range", ErrBadImmediate, text)
	}
	if negative {
		return -int64(v), nil
	}
	return int64(v), nil
}

// Value parses the immediate text.
func (i *Immediate) Value() (int64, error) {
	return ParseImmediate(i.Text)
}

// Split returns the upper and lower 16-bit halves of the 32-bit value.
func (i *Immediate) Split() (upper, lower uint16, err error) {
	v, err := i.Value()
	if err != nil {
		return 0, 0, err
	}
	return SplitWord(v)
}

// Fits16 reports whether the upper half of the value is zero.
func (i *Immediate) Fits16() (bool, error) {
	upper, _, err := i.Split()
	return upper == 0, err
}

// SplitWord splits a value representable in 32 bits, signed or unsigned.
func SplitWord(v int64) (upper, lower uint16, err error) {
	if v < -(1<<31) || v > 1<<32-1 {
		return 0, 0, fmt.Errorf("%w: %d does not fit 32 bits", ErrBadImmediate, v)
	}
	w := uint32(v)
	return uint16(w >> 16), uint16(w), nil
}
