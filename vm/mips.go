// Package vm executes assembled MIPS programs.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ChainSafe/mips-vm/assembler"
	"github.com/ChainSafe/mips-vm/common/lifo"
	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/ChainSafe/mips-vm/memory"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/ChainSafe/mips-vm/registers"
)

// StackPointer is the initial $sp. The stack grows down from it and the
// heap grows up from it.
const (
	StackPointer uint32 = 0x7fffeffc
	HeapBase            = StackPointer
)

const defaultBacktraceDepth = 64

var (
	ErrRunning                = errors.New("program is running")
	ErrNotAssembled           = errors.New("program is not assembled")
	ErrStepLimit              = errors.New("step limit reached")
	ErrBadPC                  = errors.New("pc outside the text segment")
	ErrInstructionNotAllowed  = errors.New("instruction not allowed by profile")
	ErrUnknownInstructionWord = errors.New("unknown instruction")
)

// State is the lifecycle of a MIPS instance.
type State int32

const (
	StateUnassembled State = iota
	StateReady
	StateRunning
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateUnassembled:
		return "unassembled"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// frame is an active jal/jalr call.
type frame struct {
	target uint32
	ret    uint32
	line   int
}

// MIPS is a single program instance: its source, the assembled object and
// the machine state executing it.
type MIPS struct {
	source string
	io     *IO
	stderr io.Writer

	profile          *profile.VMProfile
	registerObserver registers.Observer
	memoryObserver   memory.Observer
	trace            io.Writer
	backtraceDepth   int

	state  atomic.Int32
	obj    *assembler.Object
	regs   *registers.Registers
	fp     *registers.Float
	fpCond bool
	data   *memory.Memory
	stack  *memory.Stack
	heap   *memory.Memory
	brk    uint32
	exited bool
	steps  uint64
	frames *lifo.Stack[frame]
}

// New returns an unassembled instance. Nil streams read nothing and discard
// output.
func New(source string, stdin io.Reader, stdout, stderr io.Writer, opts ...Option) *MIPS {
	if stderr == nil {
		stderr = io.Discard
	}
	m := &MIPS{
		source:         source,
		io:             NewIO(stdin, stdout),
		stderr:         stderr,
		profile:        profile.Default(),
		backtraceDepth: defaultBacktraceDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.reset(&assembler.Object{Symbols: map[string]uint32{}, Relocations: map[uint32]string{}})
	return m
}

// SetSource replaces the program. It takes effect on the next Assemble.
func (m *MIPS) SetSource(source string) {
	m.source = source
}

// Assemble builds the program and resets every register and memory region.
func (m *MIPS) Assemble() error {
	if m.State() == StateRunning {
		return ErrRunning
	}
	obj, err := assembler.AssembleSource(m.source)
	if err != nil {
		return err
	}
	m.reset(obj)
	m.state.Store(int32(StateReady))
	return nil
}

func (m *MIPS) reset(obj *assembler.Object) {
	limit := memory.WithLimit(m.profile.MemoryLimit)
	observe := memory.WithObserver(m.memoryObserver)

	m.obj = obj
	if m.regs == nil {
		m.regs = registers.NewPrimary(m.registerObserver)
		m.fp = registers.NewFloat(m.registerObserver)
		m.stack = memory.NewStack(m.profile.StackSize, StackPointer, limit, observe)
		m.heap = memory.New(m.profile.HeapSize, HeapBase, limit, observe)
	} else {
		m.regs.Reset()
		m.fp.Reset()
		m.stack.Reset()
		m.heap.Reset()
	}
	m.fpCond = false
	m.data = memory.NewFixed(obj.Data, assembler.DataBase, observe)
	m.brk = HeapBase
	m.exited = false
	m.steps = 0
	m.frames = lifo.New[frame](m.backtraceDepth)

	m.set(registers.SP, StackPointer)
	m.set(registers.PC, assembler.TextBase)
}

// Execute runs until the program exits, runs off the end of the text
// segment, fails, or ctx is done. Cancellation is checked between
// instructions and leaves the program resumable.
func (m *MIPS) Execute(ctx context.Context) error {
	switch m.State() {
	case StateUnassembled:
		return ErrNotAssembled
	case StateHalted:
		return nil
	}
	if !m.state.CompareAndSwap(int32(StateReady), int32(StateRunning)) {
		return ErrRunning
	}
	for {
		if err := ctx.Err(); err != nil {
			m.state.Store(int32(StateReady))
			return err
		}
		ok, err := m.step()
		if err != nil {
			m.state.Store(int32(StateHalted))
			m.backtrace(err)
			return err
		}
		if !ok {
			m.state.Store(int32(StateHalted))
			return nil
		}
	}
}

// ExecuteNextInstruction executes a single instruction. It reports false once
// the program has exited or run off the end of the text segment.
func (m *MIPS) ExecuteNextInstruction() (bool, error) {
	switch m.State() {
	case StateUnassembled:
		return false, ErrNotAssembled
	case StateRunning:
		return false, ErrRunning
	case StateHalted:
		return false, nil
	}
	ok, err := m.step()
	if err != nil || !ok {
		m.state.Store(int32(StateHalted))
	}
	return ok, err
}

func (m *MIPS) step() (bool, error) {
	if m.exited {
		return false, nil
	}
	pc := m.get(registers.PC)
	if pc < assembler.TextBase || (pc-assembler.TextBase)%4 != 0 {
		return false, fmt.Errorf("vm: pc 0x%08x: %w", pc, ErrBadPC)
	}
	index := int((pc - assembler.TextBase) / 4)
	if index >= m.obj.Len() {
		return false, nil
	}
	if limit := m.profile.MaxSteps; limit > 0 && m.steps >= limit {
		return false, fmt.Errorf("vm: pc 0x%08x: %w (%d)", pc, ErrStepLimit, limit)
	}

	in := m.obj.ObjInstructions[index]
	spec, ok := instruction.SpecOf(in)
	if !ok {
		return false, fmt.Errorf("vm: pc 0x%08x: %w: 0x%08x", pc, ErrUnknownInstructionWord, in.Encode())
	}
	if !m.profile.InstructionAllowed(spec.Mnemonic) {
		return false, fmt.Errorf("vm: pc 0x%08x: %w: %s", pc, ErrInstructionNotAllowed, spec.Mnemonic)
	}
	if m.trace != nil {
		fmt.Fprintf(m.trace, "0x%08x  %-28s # line %d\n", pc, instruction.Disassemble(in), m.line(index))
	}
	if err := m.execute(in); err != nil {
		return false, fmt.Errorf("vm: pc 0x%08x: %w", pc, err)
	}
	m.set(registers.PC, m.get(registers.PC)+4)
	m.steps++
	return true, nil
}

func (m *MIPS) line(index int) int {
	if index < len(m.obj.Lines) {
		return m.obj.Lines[index]
	}
	return 0
}

// backtrace writes the active call frames, innermost first.
func (m *MIPS) backtrace(err error) {
	fmt.Fprintf(m.stderr, "%v\n", err)
	if m.frames.IsEmpty() {
		return
	}
	fmt.Fprintln(m.stderr, "backtrace:")
	for i, f := range m.frames.Items() {
		name, ok := m.obj.Label(f.target)
		if !ok {
			name = fmt.Sprintf("0x%08x", f.target)
		}
		fmt.Fprintf(m.stderr, "  #%d %s called from line %d, returns to 0x%08x\n", i, name, f.line, f.ret)
	}
}

func (m *MIPS) State() State {
	return State(m.state.Load())
}

func (m *MIPS) Registers() *registers.Registers {
	return m.regs
}

func (m *MIPS) FPRegisters() *registers.Float {
	return m.fp
}

// FPCondition is the coprocessor 1 condition flag set by c.*.
func (m *MIPS) FPCondition() bool {
	return m.fpCond
}

// Object returns the assembled program, empty before Assemble.
func (m *MIPS) Object() *assembler.Object {
	return m.obj
}

// Steps counts the instructions executed since the last Assemble.
func (m *MIPS) Steps() uint64 {
	return m.steps
}

// Exited reports whether the program called exit.
func (m *MIPS) Exited() bool {
	return m.exited
}

// Memory returns the byte at addr.
func (m *MIPS) Memory(addr uint32) byte {
	return m.readByte(addr)
}

// ReadMemory returns n bytes starting at addr.
func (m *MIPS) ReadMemory(addr uint32, n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = m.readByte(addr + uint32(i))
	}
	return out
}
