package codec

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// REAL8 layout: 1 sign bit, 7 exponent bits (base 16, excess 64) and a 56-bit
// fraction. value = fraction / 2^56 * 16^(exponent-64).
const (
	real8Bias         = 64
	real8MantissaBits = 56
)

// DecodeReal8 converts the first 8 bytes of b from REAL8 to a float64.
func DecodeReal8(b []byte) float64 {
	_ = b[7]
	exponent := int(b[0]&0x7f) - real8Bias
	var mantissa uint64
	for _, c := range b[1:8] {
		mantissa = mantissa<<8 | uint64(c)
	}
	v := math.Ldexp(float64(mantissa), 4*exponent-real8MantissaBits)
	if b[0]&0x80 != 0 {
		v = -v
	}
	return v
}

// EncodeReal8 converts v to REAL8. Zero encodes as eight zero bytes. NaN,
// infinities and magnitudes outside 16^-65..16^63 fail with ErrReal8Range.
func EncodeReal8(v float64) ([8]byte, error) {
	var out [8]byte
	if v == 0 {
		return out, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return out, errors.Wrapf(ErrReal8Range, "%v", v)
	}

	bits := math.Float64bits(v)
	sign := bits >> 63
	biased := int(bits>>52) & 0x7ff
	if biased == 0 {
		// subnormal doubles are far below the smallest REAL8
		return out, errors.Wrapf(ErrReal8Range, "%v", v)
	}
	exponent := biased - 1023

	// 16^x == 2^(4x): split the binary exponent into a base-16 exponent and a
	// 0..3 bit shift of the mantissa.
	b16 := exponent >> 2
	rem := uint(exponent & 3)

	// The implicit leading bit becomes explicit, costing one hex digit.
	b16++
	mantissa := (bits&(1<<52-1) | 1<<52) << rem

	b16 += real8Bias
	if b16 < 0 || b16 > 0x7f {
		return out, errors.Wrapf(ErrReal8Range, "%v", v)
	}

	binary.BigEndian.PutUint64(out[:], sign<<63|uint64(b16)<<real8MantissaBits|mantissa)
	return out, nil
}
