package binary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatToBinary(t *testing.T) {
	single, err := FloatToBinary(42.42, Single)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x4229ae14}, single.Words())

	double, err := FloatToBinary(42.42, Double)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x404535c2, 0x8f5c28f6}, double.Words())
}

func TestFloatFromBinary(t *testing.T) {
	v, err := FloatFromBinary(FromWords([]uint32{0x4229ae14}), Single)
	require.NoError(t, err)
	assert.Equal(t, float64(float32(42.42)), v)

	v, err = FloatFromBinary(FromWords([]uint32{0x404535c2, 0x8f5c28f6}), Double)
	require.NoError(t, err)
	assert.Equal(t, 42.42, v)

	_, err = FloatFromBinary(New(16), Single)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSingleMatchesHardware(t *testing.T) {
	values := map[string]float64{
		"zero":      0,
		"negZero":   math.Copysign(0, -1),
		"one":       1,
		"negative":  -1.5,
		"tenth":     0.1,
		"large":     3.4e38,
		"subnormal": 1e-40,
		"tiny":      1.5e-45,
		"inf":       math.Inf(1),
		"negInf":    math.Inf(-1),
		"pi":        math.Pi,
	}
	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			want := math.Float32bits(float32(v))
			assert.Equal(t, want, SingleBits(v))
			assert.Equal(t, float64(math.Float32frombits(want)), SingleFromBits(want))
		})
	}
}

func TestDoubleMatchesHardware(t *testing.T) {
	values := map[string]float64{
		"zero":      0,
		"one":       1,
		"negative":  -2.75,
		"tenth":     0.1,
		"max":       math.MaxFloat64,
		"subnormal": 5e-324,
		"e":         math.E,
	}
	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			bits := math.Float64bits(v)
			hi, lo := DoubleWords(v)
			assert.Equal(t, uint32(bits>>32), hi)
			assert.Equal(t, uint32(bits), lo)
			assert.Equal(t, v, DoubleFromWords(hi, lo))
		})
	}
}

func TestSingleOverflow(t *testing.T) {
	assert.Equal(t, uint32(0x7f800000), SingleBits(1e39))
	assert.Equal(t, uint32(0xff800000), SingleBits(-1e39))
}

func TestNaN(t *testing.T) {
	bits := SingleBits(math.NaN())
	assert.Equal(t, uint32(0x7fc00000), bits)
	assert.True(t, math.IsNaN(SingleFromBits(bits)))
}
