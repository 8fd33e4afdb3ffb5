package vm

import (
	"strings"

	"github.com/ChainSafe/mips-vm/assembler"
)

type region interface {
	Get(addr uint32) byte
	Set(addr uint32, value byte) error
}

// region resolves the memory backing addr: the data segment, then the stack
// below StackPointer, then the heap.
func (m *MIPS) region(addr uint32) region {
	if addr >= assembler.DataBase && addr < assembler.DataBase+uint32(m.data.Size()) {
		return m.data
	}
	if addr < StackPointer {
		return m.stack
	}
	return m.heap
}

func (m *MIPS) readByte(addr uint32) byte {
	return m.region(addr).Get(addr)
}

func (m *MIPS) writeByte(addr uint32, b byte) error {
	return m.region(addr).Set(addr, b)
}

// Multi-byte values are big endian.

func (m *MIPS) readHalf(addr uint32) uint16 {
	return uint16(m.readByte(addr))<<8 | uint16(m.readByte(addr+1))
}

func (m *MIPS) writeHalf(addr uint32, v uint16) error {
	if err := m.writeByte(addr, byte(v>>8)); err != nil {
		return err
	}
	return m.writeByte(addr+1, byte(v))
}

func (m *MIPS) readWord(addr uint32) uint32 {
	var w uint32
	for i := uint32(0); i < 4; i++ {
		w = w<<8 | uint32(m.readByte(addr+i))
	}
	return w
}

func (m *MIPS) writeWord(addr uint32, w uint32) error {
	for i := uint32(0); i < 4; i++ {
		if err := m.writeByte(addr+i, byte(w>>(24-8*i))); err != nil {
			return err
		}
	}
	return nil
}

// readString reads a NUL terminated string.
func (m *MIPS) readString(addr uint32) string {
	var sb strings.Builder
	for {
		b := m.readByte(addr)
		if b == 0 {
			return sb.String()
		}
		sb.WriteByte(b)
		addr++
	}
}

func (m *MIPS) writeBytes(addr uint32, b []byte) error {
	for i, v := range b {
		if err := m.writeByte(addr+uint32(i), v); err != nil {
			return err
		}
	}
	return nil
}

func (m *MIPS) get(index int) uint32 {
	v, _ := m.regs.Get(index)
	return v
}

func (m *MIPS) set(index int, v uint32) {
	_ = m.regs.Set(index, v)
}

// ReadWord returns the big endian word at addr.
func (m *MIPS) ReadWord(addr uint32) uint32 {
	return m.readWord(addr)
}
