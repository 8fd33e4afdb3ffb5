// Package registers implements the primary and floating point register files.
package registers

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/mips-vm/binary"
)

var (
	ErrUnknownRegister = errors.New("unknown register")
	ErrOddRegister     = errors.New("double precision access on odd register")
)

// Change describes a single register write.
type Change struct {
	Name     string
	Index    int
	Previous uint32
	Value    uint32
}

// Observer is notified after every register write.
type Observer func(Change)

// Registers is a fixed-size file of 32-bit registers.
type Registers struct {
	values   []uint32
	name     func(int) string
	lookup   func(string) (int, bool)
	zero     bool // index 0 always reads zero
	observer Observer
}

// NewPrimary returns the 35 slot file holding $0..$ra, pc, hi and lo.
func NewPrimary(observer Observer) *Registers {
	return &Registers{
		values:   make([]uint32, PrimarySize),
		name:     Name,
		lookup:   Index,
		zero:     true,
		observer: observer,
	}
}

func (r *Registers) Size() int {
	return len(r.values)
}

func (r *Registers) Get(index int) (uint32, error) {
	if index < 0 || index >= len(r.values) {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownRegister, index)
	}
	return r.values[index], nil
}

// Signed reads a register as a two's complement value.
func (r *Registers) Signed(index int) (int32, error) {
	v, err := r.Get(index)
	return int32(v), err
}

// Set writes a register. Writes to a hard wired $0 are discarded.
func (r *Registers) Set(index int, v uint32) error {
	if index < 0 || index >= len(r.values) {
		return fmt.Errorf("%w: index %d", ErrUnknownRegister, index)
	}
	if r.zero && index == Zero {
		return nil
	}
	prev := r.values[index]
	r.values[index] = v
	if r.observer != nil {
		r.observer(Change{Name: r.name(index), Index: index, Previous: prev, Value: v})
	}
	return nil
}

// Index resolves a register name for this file.
func (r *Registers) Index(name string) (int, error) {
	i, ok := r.lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return i, nil
}

func (r *Registers) GetNamed(name string) (uint32, error) {
	i, err := r.Index(name)
	if err != nil {
		return 0, err
	}
	return r.Get(i)
}

func (r *Registers) SetNamed(name string, v uint32) error {
	i, err := r.Index(name)
	if err != nil {
		return err
	}
	return r.Set(i, v)
}

// Values returns a snapshot of the file.
func (r *Registers) Values() []uint32 {
	out := make([]uint32, len(r.values))
	copy(out, r.values)
	return out
}

// Reset zeroes every register without notifying the observer.
func (r *Registers) Reset() {
	clear(r.values)
}

// Float is the 32 slot coprocessor 1 file. Doubles span an even/odd pair with
// the most significant word in the even register.
type Float struct {
	*Registers
}

func NewFloat(observer Observer) *Float {
	return &Float{Registers: &Registers{
		values:   make([]uint32, FloatSize),
		name:     FloatName,
		lookup:   FloatIndex,
		observer: observer,
	}}
}

func (f *Float) Single(index int) (float64, error) {
	w, err := f.Get(index)
	if err != nil {
		return 0, err
	}
	return binary.FloatFromBinary(binary.FromWords([]uint32{w}), binary.Single)
}

func (f *Float) SetSingle(index int, v float64) error {
	b, err := binary.FloatToBinary(v, binary.Single)
	if err != nil {
		return err
	}
	return f.Set(index, b.Words()[0])
}

func (f *Float) Double(index int) (float64, error) {
	if index%2 != 0 {
		return 0, fmt.Errorf("%w: %s", ErrOddRegister, FloatName(index))
	}
	hi, err := f.Get(index)
	if err != nil {
		return 0, err
	}
	lo, err := f.Get(index + 1)
	if err != nil {
		return 0, err
	}
	return binary.FloatFromBinary(binary.FromWords([]uint32{hi, lo}), binary.Double)
}

func (f *Float) SetDouble(index int, v float64) error {
	if index%2 != 0 {
		return fmt.Errorf("%w: %s", ErrOddRegister, FloatName(index))
	}
	if index < 0 || index+1 >= f.Size() {
		return fmt.Errorf("%w: index %d", ErrUnknownRegister, index)
	}
	b, err := binary.FloatToBinary(v, binary.Double)
	if err != nil {
		return err
	}
	words := b.Words()
	if err := f.Set(index, words[0]); err != nil {
		return err
	}
	return f.Set(index+1, words[1])
}
