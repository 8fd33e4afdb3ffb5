package vm

import (
	"io"

	"github.com/ChainSafe/mips-vm/memory"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/ChainSafe/mips-vm/registers"
)

// Option configures a MIPS instance.
type Option func(*MIPS)

// WithProfile sets the limits and allowed syscalls and instructions.
func WithProfile(p *profile.VMProfile) Option {
	return func(m *MIPS) {
		m.profile = p
	}
}

// WithRegisterObserver is called after every write to a primary or
// floating point register.
func WithRegisterObserver(observer registers.Observer) Option {
	return func(m *MIPS) {
		m.registerObserver = observer
	}
}

// WithMemoryObserver is called after every byte written to data, stack or
// heap memory.
func WithMemoryObserver(observer memory.Observer) Option {
	return func(m *MIPS) {
		m.memoryObserver = observer
	}
}

// WithTrace writes one disassembled line per executed instruction to w.
func WithTrace(w io.Writer) Option {
	return func(m *MIPS) {
		m.trace = w
	}
}

// WithBacktraceDepth bounds the number of call frames kept for backtraces.
func WithBacktraceDepth(depth int) Option {
	return func(m *MIPS) {
		m.backtraceDepth = depth
	}
}
