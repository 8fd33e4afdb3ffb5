package vm

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ChainSafe/mips-vm/memory"
	"github.com/ChainSafe/mips-vm/registers"
)

// Syscall codes, selected by $v0.
const (
	SysPrintInt    = 1
	SysPrintFloat  = 2
	SysPrintDouble = 3
	SysPrintString = 4
	SysReadInt     = 5
	SysReadFloat   = 6
	SysReadDouble  = 7
	SysReadString  = 8
	SysSbrk        = 9
	SysExit        = 10
	SysPrintChar   = 11
	SysReadChar    = 12
)

var (
	ErrUnknownSyscall    = errors.New("unknown syscall")
	ErrSyscallNotAllowed = errors.New("syscall not allowed by profile")
)

var syscalls = map[int]func(m *MIPS) error{
	SysPrintInt:    sysPrintInt,
	SysPrintFloat:  sysPrintFloat,
	SysPrintDouble: sysPrintDouble,
	SysPrintString: sysPrintString,
	SysReadInt:     sysReadInt,
	SysReadFloat:   sysReadFloat,
	SysReadDouble:  sysReadDouble,
	SysReadString:  sysReadString,
	SysSbrk:        sysSbrk,
	SysExit:        sysExit,
	SysPrintChar:   sysPrintChar,
	SysReadChar:    sysReadChar,
}

// SyscallName returns a short description of a known syscall code.
func SyscallName(code int) (string, bool) {
	name, ok := syscallNames[code]
	return name, ok
}

var syscallNames = map[int]string{
	SysPrintInt:    "print_int",
	SysPrintFloat:  "print_float",
	SysPrintDouble: "print_double",
	SysPrintString: "print_string",
	SysReadInt:     "read_int",
	SysReadFloat:   "read_float",
	SysReadDouble:  "read_double",
	SysReadString:  "read_string",
	SysSbrk:        "sbrk",
	SysExit:        "exit",
	SysPrintChar:   "print_char",
	SysReadChar:    "read_char",
}

func (m *MIPS) syscall() error {
	code := int(int32(m.get(registers.V0)))
	handler, ok := syscalls[code]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSyscall, code)
	}
	if m.profile.SyscallNoop(code) {
		return nil
	}
	if !m.profile.SyscallAllowed(code) {
		return fmt.Errorf("%w: %d", ErrSyscallNotAllowed, code)
	}
	return handler(m)
}

func sysPrintInt(m *MIPS) error {
	return m.io.Write(strconv.Itoa(int(int32(m.get(registers.A0)))))
}

func sysPrintFloat(m *MIPS) error {
	v, err := m.fp.Single(12)
	if err != nil {
		return err
	}
	return m.io.Write(strconv.FormatFloat(v, 'g', -1, 32))
}

func sysPrintDouble(m *MIPS) error {
	v, err := m.fp.Double(12)
	if err != nil {
		return err
	}
	return m.io.Write(strconv.FormatFloat(v, 'g', -1, 64))
}

func sysPrintString(m *MIPS) error {
	return m.io.Write(m.readString(m.get(registers.A0)))
}

func sysPrintChar(m *MIPS) error {
	return m.io.Write(string([]byte{byte(m.get(registers.A0))}))
}

func sysReadInt(m *MIPS) error {
	token, err := m.io.Read()
	if err != nil {
		return err
	}
	v, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", ErrBadInput, token)
	}
	m.set(registers.V0, uint32(int32(v)))
	return nil
}

func sysReadFloat(m *MIPS) error {
	token, err := m.io.Read()
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(token, 32)
	if err != nil {
		return fmt.Errorf("%w: %q is not a float", ErrBadInput, token)
	}
	return m.fp.SetSingle(0, v)
}

func sysReadDouble(m *MIPS) error {
	token, err := m.io.Read()
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a double", ErrBadInput, token)
	}
	return m.fp.SetDouble(0, v)
}

// sysReadString stores at most $a1-1 bytes of the next line, newline included,
// at $a0 and terminates them with NUL.
func sysReadString(m *MIPS) error {
	buf, size := m.get(registers.A0), int(int32(m.get(registers.A1)))
	if size < 1 {
		return nil
	}
	line, err := m.io.ReadLine(size - 1)
	if err != nil {
		return err
	}
	return m.writeBytes(buf, append([]byte(line), 0))
}

func sysReadChar(m *MIPS) error {
	b, err := m.io.ReadChar()
	if err != nil {
		return err
	}
	m.set(registers.V0, uint32(b))
	return nil
}

// sysSbrk returns the current heap break in $v0 and moves it up by $a0 bytes
// rounded to a word.
func sysSbrk(m *MIPS) error {
	n := int32(m.get(registers.A0))
	if n < 0 {
		return fmt.Errorf("%w: sbrk of %d bytes", ErrBadInput, n)
	}
	next := uint64(m.brk) + (uint64(n)+3)&^3
	if next > math.MaxUint32 {
		return fmt.Errorf("%w: sbrk of %d bytes past the address space", memory.ErrLimitExceeded, n)
	}
	if limit := m.profile.MemoryLimit; limit > 0 && next-uint64(HeapBase) > uint64(limit) {
		return fmt.Errorf("%w: sbrk of %d bytes", memory.ErrLimitExceeded, n)
	}
	m.set(registers.V0, m.brk)
	m.brk = uint32(next)
	return nil
}

func sysExit(m *MIPS) error {
	m.exited = true
	return nil
}
