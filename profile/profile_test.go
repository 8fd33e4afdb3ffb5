package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile("mars/mars-integer.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mars-integer", p.Name)
	assert.Equal(t, uint64(1000000), p.MaxSteps)
	assert.True(t, p.SyscallAllowed(10))
	assert.False(t, p.SyscallAllowed(2))
	assert.True(t, p.InstructionAllowed("addiu"))
	assert.False(t, p.InstructionAllowed("add.s"))
	assert.True(t, p.SyscallNoop(11))
	assert.True(t, p.LabelIgnored("debug"))
	assert.False(t, p.LabelIgnored("main"))
}

func TestLoadDefaultProfileFile(t *testing.T) {
	p, err := LoadProfile("mars/mars.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), withEmptyInstructions(p))
}

func withEmptyInstructions(p *VMProfile) *VMProfile {
	if len(p.AllowedInstructions) == 0 {
		p.AllowedInstructions = nil
	}
	return p
}

func TestProfileRoundTrip(t *testing.T) {
	p := Default()
	p.Name = "custom"
	p.MaxSteps = 42
	p.AllowedInstructions = []string{"syscall", "addiu"}

	raw, err := yaml.Marshal(p)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestLoadProfileMissingFieldsUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: partial\nmax_steps: 10\n"), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "partial", p.Name)
	assert.Equal(t, Default().StackSize, p.StackSize)
	assert.True(t, p.InstructionAllowed("anything"))
}

func TestValidate(t *testing.T) {
	type testcase struct {
		mutate func(p *VMProfile)
	}
	cases := map[string]testcase{
		"missing name":        {mutate: func(p *VMProfile) { p.Name = "" }},
		"zero stack":          {mutate: func(p *VMProfile) { p.StackSize = 0 }},
		"heap above limit":    {mutate: func(p *VMProfile) { p.MemoryLimit = 16; p.HeapSize = 32 }},
		"negative syscall":    {mutate: func(p *VMProfile) { p.AllowedSyscalls = []int{-1} }},
		"zero noop syscall":   {mutate: func(p *VMProfile) { p.NOOPSyscalls = []int{0} }},
		"unknown instruction": {mutate: func(p *VMProfile) { p.AllowedInstructions = []string{"frobnicate"} }},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := Default()
			tc.mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProfile)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unterminated"), 0o600))
	_, err = LoadProfile(path)
	assert.Error(t, err)
}
