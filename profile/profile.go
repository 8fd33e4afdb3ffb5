package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/ChainSafe/mips-vm/instruction"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid profile")

// VMProfile represents the limits and capabilities of a runtime.
type VMProfile struct {
	Name string `yaml:"name"`
	// MaxSteps stops execution after that many instructions. Zero means no limit.
	MaxSteps uint64 `yaml:"max_steps"`
	// MemoryLimit caps each growable region in bytes.
	MemoryLimit int `yaml:"memory_limit"`
	StackSize   int `yaml:"stack_size"`
	HeapSize    int `yaml:"heap_size"`
	// An empty list allows everything.
	AllowedSyscalls     []int    `yaml:"allowed_syscalls"`
	AllowedInstructions []string `yaml:"allowed_instructions"`
	// NOOPSyscalls are accepted but do nothing.
	NOOPSyscalls []int `yaml:"noop_syscalls,omitempty"`
	// IgnoredLabels downgrade analysis issues reached through them to warnings.
	IgnoredLabels []string `yaml:"ignored_labels,omitempty"`
}

// Default mirrors the MARS environment.
func Default() *VMProfile {
	return &VMProfile{
		Name:            "mars",
		MemoryLimit:     64 << 20,
		StackSize:       1024,
		HeapSize:        1024,
		AllowedSyscalls: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	}
}

// LoadProfile loads a VM profile from a YAML file.
func LoadProfile(filename string) (*VMProfile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer file.Close()

	profile := Default()
	if err := yaml.NewDecoder(file).Decode(profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks sizes and that every allowed instruction exists.
func (p *VMProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	}
	if p.StackSize <= 0 || p.HeapSize <= 0 {
		return fmt.Errorf("%w: stack and heap sizes must be positive", ErrInvalidProfile)
	}
	if p.MemoryLimit > 0 && (p.StackSize > p.MemoryLimit || p.HeapSize > p.MemoryLimit) {
		return fmt.Errorf("%w: initial sizes exceed memory limit %d", ErrInvalidProfile, p.MemoryLimit)
	}
	codes := append(append([]int{}, p.AllowedSyscalls...), p.NOOPSyscalls...)
	if bad, ok := lo.Find(codes, func(code int) bool { return code <= 0 }); ok {
		return fmt.Errorf("%w: syscall code %d", ErrInvalidProfile, bad)
	}
	for _, mnemonic := range p.AllowedInstructions {
		if _, ok := instruction.Lookup(mnemonic); !ok {
			return fmt.Errorf("%w: unknown instruction %q", ErrInvalidProfile, mnemonic)
		}
	}
	return nil
}

// SyscallAllowed reports whether code may be dispatched.
func (p *VMProfile) SyscallAllowed(code int) bool {
	return len(p.AllowedSyscalls) == 0 || lo.Contains(p.AllowedSyscalls, code)
}

// InstructionAllowed reports whether mnemonic may be executed.
func (p *VMProfile) InstructionAllowed(mnemonic string) bool {
	return len(p.AllowedInstructions) == 0 || lo.Contains(p.AllowedInstructions, mnemonic)
}

// SyscallNoop reports whether code is accepted without effect.
func (p *VMProfile) SyscallNoop(code int) bool {
	return lo.Contains(p.NOOPSyscalls, code)
}

// LabelIgnored reports whether label is listed in IgnoredLabels.
func (p *VMProfile) LabelIgnored(label string) bool {
	return lo.Contains(p.IgnoredLabels, label)
}
