// Package memory implements the byte addressed regions of the runtime.
package memory

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange    = errors.New("address out of range")
	ErrLimitExceeded = errors.New("memory limit exceeded")
)

// Change describes a single byte write.
type Change struct {
	Address  uint32
	Previous byte
	Value    byte
}

// Observer is notified after every byte write.
type Observer func(Change)

// Option configures a Memory.
type Option func(*Memory)

// WithLimit caps the size a growable region may reach. Zero means no cap.
func WithLimit(limit int) Option {
	return func(m *Memory) {
		m.limit = limit
	}
}

// WithObserver registers a write observer.
func WithObserver(observer Observer) Option {
	return func(m *Memory) {
		m.observer = observer
	}
}

// Memory is a contiguous region of bytes mapped at a base address.
type Memory struct {
	data     []byte
	base     uint32
	fixed    bool
	limit    int
	observer Observer
	index    func(addr uint32) int
}

// New returns a zeroed growable region of size bytes starting at base.
func New(size int, base uint32, opts ...Option) *Memory {
	m := &Memory{data: make([]byte, size), base: base}
	m.index = m.forward
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFixed returns a region holding a copy of initial that never grows.
func NewFixed(initial []byte, base uint32, opts ...Option) *Memory {
	m := New(len(initial), base, opts...)
	copy(m.data, initial)
	m.fixed = true
	return m
}

func (m *Memory) forward(addr uint32) int {
	return int(int64(addr) - int64(m.base))
}

// Base is the address of index zero for regular regions.
func (m *Memory) Base() uint32 {
	return m.base
}

// Size is the current capacity in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Bytes returns the backing slice.
func (m *Memory) Bytes() []byte {
	return m.data
}

// Get reads the byte at addr. Unwritten and out of range addresses read 0.
func (m *Memory) Get(addr uint32) byte {
	i := m.index(addr)
	if i < 0 || i >= len(m.data) {
		return 0
	}
	return m.data[i]
}

// Set writes the byte at addr, growing the region when allowed.
func (m *Memory) Set(addr uint32, value byte) error {
	i := m.index(addr)
	if i < 0 {
		return fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	if i >= len(m.data) {
		if m.fixed {
			return fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
		}
		if err := m.grow(i); err != nil {
			return fmt.Errorf("0x%08x: %w", addr, err)
		}
	}
	prev := m.data[i]
	m.data[i] = value
	if m.observer != nil {
		m.observer(Change{Address: addr, Previous: prev, Value: value})
	}
	return nil
}

// grow doubles the region until index fits.
func (m *Memory) grow(index int) error {
	if m.limit > 0 && index >= m.limit {
		return fmt.Errorf("%w: %d bytes", ErrLimitExceeded, m.limit)
	}
	size := len(m.data)
	if size == 0 {
		size = 1
	}
	for size <= index {
		size *= 2
	}
	if m.limit > 0 && size > m.limit {
		size = m.limit
	}
	data := make([]byte, size)
	copy(data, m.data)
	m.data = data
	return nil
}

// Reset zeroes the region, keeping its capacity.
func (m *Memory) Reset() {
	clear(m.data)
}
