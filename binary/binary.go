// Package binary implements a fixed-size, big-endian bit container used as the
// intermediate form of floating point values in registers and memory.
package binary

import (
	"errors"
	"fmt"
)

var ErrOutOfBounds = errors.New("binary: out of bounds")

// Binary stores a byte-aligned bit string. Bit positions count from the least
// significant (rightmost) bit, bytes are indexed from the most significant.
type Binary struct {
	size int
	buf  []byte
}

// New returns a zeroed container of at least bits bits, rounded up to a whole byte.
func New(bits int) *Binary {
	if bits < 0 {
		bits = 0
	}
	size := (bits + 7) / 8 * 8
	return &Binary{size: size, buf: make([]byte, size/8)}
}

// FromBytes copies b into a new container.
func FromBytes(b []byte) *Binary {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &Binary{size: len(b) * 8, buf: buf}
}

// FromWords lays the words out big-endian, first word most significant.
func FromWords(words []uint32) *Binary {
	b := New(len(words) * 32)
	for i, w := range words {
		b.buf[i*4] = byte(w >> 24)
		b.buf[i*4+1] = byte(w >> 16)
		b.buf[i*4+2] = byte(w >> 8)
		b.buf[i*4+3] = byte(w)
	}
	return b
}

// Size returns the width in bits.
func (b *Binary) Size() int {
	return b.size
}

// Bytes returns a copy of the underlying bytes.
func (b *Binary) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// Words splits the container into 32-bit words, zero padding the tail.
func (b *Binary) Words() []uint32 {
	words := make([]uint32, (len(b.buf)+3)/4)
	for i, v := range b.buf {
		words[i/4] |= uint32(v) << (24 - 8*(i%4))
	}
	return words
}

func (b *Binary) Bit(pos int) (uint8, error) {
	if pos < 0 || pos >= b.size {
		return 0, fmt.Errorf("%w: bit %d of %d", ErrOutOfBounds, pos, b.size)
	}
	return (b.buf[len(b.buf)-1-pos/8] >> (pos % 8)) & 1, nil
}

func (b *Binary) SetBit(pos int, v uint8) error {
	if pos < 0 || pos >= b.size {
		return fmt.Errorf("%w: bit %d of %d", ErrOutOfBounds, pos, b.size)
	}
	idx := len(b.buf) - 1 - pos/8
	if v != 0 {
		b.buf[idx] |= 1 << (pos % 8)
	} else {
		b.buf[idx] &^= 1 << (pos % 8)
	}
	return nil
}

func (b *Binary) Byte(index int) (byte, error) {
	if index < 0 || index >= len(b.buf) {
		return 0, fmt.Errorf("%w: byte %d of %d", ErrOutOfBounds, index, len(b.buf))
	}
	return b.buf[index], nil
}

func (b *Binary) SetByte(index int, v byte) error {
	if index < 0 || index >= len(b.buf) {
		return fmt.Errorf("%w: byte %d of %d", ErrOutOfBounds, index, len(b.buf))
	}
	b.buf[index] = v
	return nil
}

// Range extracts width bits starting at bit from as an unsigned integer.
func (b *Binary) Range(from, width int) (uint64, error) {
	if width < 0 || width > 64 || from < 0 || from+width > b.size {
		return 0, fmt.Errorf("%w: range [%d, %d) of %d", ErrOutOfBounds, from, from+width, b.size)
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		bit, _ := b.Bit(from + i)
		v = v<<1 | uint64(bit)
	}
	return v, nil
}

// SetRange stores the low width bits of v starting at bit from.
func (b *Binary) SetRange(from, width int, v uint64) error {
	if width < 0 || width > 64 || from < 0 || from+width > b.size {
		return fmt.Errorf("%w: range [%d, %d) of %d", ErrOutOfBounds, from, from+width, b.size)
	}
	for i := 0; i < width; i++ {
		_ = b.SetBit(from+i, uint8(v>>i&1))
	}
	return nil
}

// Uint64 returns the whole container as an integer. Only valid up to 64 bits.
func (b *Binary) Uint64() (uint64, error) {
	return b.Range(0, b.size)
}
