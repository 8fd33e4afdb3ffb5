package binary

import (
	"fmt"
	"math"
)

// Format describes an IEEE-754 style layout: sign, exponent and mantissa widths
// plus the exponent bias.
type Format struct {
	Exponent int
	Mantissa int
	Bias     int
}

var (
	Single = Format{Exponent: 8, Mantissa: 23, Bias: 127}
	Double = Format{Exponent: 11, Mantissa: 52, Bias: 1023}
)

// Bits is the total encoded width.
func (f Format) Bits() int {
	return 1 + f.Exponent + f.Mantissa
}

func (f Format) maxExponent() uint64 {
	return uint64(1)<<f.Exponent - 1
}

// FloatToBinary encodes v in format f, rounding the mantissa to nearest even.
// Values too large for the format become infinities.
func FloatToBinary(v float64, f Format) (*Binary, error) {
	var sign, exp, mant uint64
	if math.Signbit(v) {
		sign = 1
		v = -v
	}

	switch {
	case math.IsNaN(v):
		exp = f.maxExponent()
		mant = 1 << (f.Mantissa - 1)
	case math.IsInf(v, 0):
		exp = f.maxExponent()
	case v == 0:
	default:
		frac, e := math.Frexp(v)
		frac, e = frac*2, e-1
		biased := e + f.Bias
		if biased <= 0 {
			// subnormal: v = mant * 2^(1-bias-mantissa)
			mant = uint64(math.RoundToEven(math.Ldexp(v, f.Bias-1+f.Mantissa)))
			if mant >= 1<<f.Mantissa {
				exp, mant = 1, mant-1<<f.Mantissa
			}
			break
		}
		mant = uint64(math.RoundToEven(math.Ldexp(frac-1, f.Mantissa)))
		if mant == 1<<f.Mantissa {
			mant = 0
			biased++
		}
		if uint64(biased) >= f.maxExponent() {
			exp, mant = f.maxExponent(), 0
		} else {
			exp = uint64(biased)
		}
	}

	b := New(f.Bits())
	if err := b.SetRange(f.Exponent+f.Mantissa, 1, sign); err != nil {
		return nil, err
	}
	if err := b.SetRange(f.Mantissa, f.Exponent, exp); err != nil {
		return nil, err
	}
	if err := b.SetRange(0, f.Mantissa, mant); err != nil {
		return nil, err
	}
	return b, nil
}

// FloatFromBinary decodes the low f.Bits() bits of b.
func FloatFromBinary(b *Binary, f Format) (float64, error) {
	if b.Size() < f.Bits() {
		return 0, fmt.Errorf("%w: %d bits cannot hold a %d bit float", ErrOutOfBounds, b.Size(), f.Bits())
	}
	sign, err := b.Range(f.Exponent+f.Mantissa, 1)
	if err != nil {
		return 0, err
	}
	exp, err := b.Range(f.Mantissa, f.Exponent)
	if err != nil {
		return 0, err
	}
	mant, err := b.Range(0, f.Mantissa)
	if err != nil {
		return 0, err
	}

	var v float64
	switch exp {
	case f.maxExponent():
		if mant != 0 {
			return math.NaN(), nil
		}
		v = math.Inf(1)
	case 0:
		v = math.Ldexp(float64(mant), 1-f.Bias-f.Mantissa)
	default:
		v = math.Ldexp(1+math.Ldexp(float64(mant), -f.Mantissa), int(exp)-f.Bias)
	}
	if sign == 1 {
		v = math.Copysign(v, -1)
	}
	return v, nil
}

// SingleBits encodes v as a 32-bit single precision word.
func SingleBits(v float64) uint32 {
	b, _ := FloatToBinary(v, Single)
	return b.Words()[0]
}

// SingleFromBits decodes a single precision word.
func SingleFromBits(w uint32) float64 {
	v, _ := FloatFromBinary(FromWords([]uint32{w}), Single)
	return v
}

// DoubleWords encodes v as two words, most significant first.
func DoubleWords(v float64) (hi, lo uint32) {
	b, _ := FloatToBinary(v, Double)
	words := b.Words()
	return words[0], words[1]
}

// DoubleFromWords decodes a double precision value from its two words.
func DoubleFromWords(hi, lo uint32) float64 {
	v, _ := FloatFromBinary(FromWords([]uint32{hi, lo}), Double)
	return v
}
