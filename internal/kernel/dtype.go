package kernel

import (
	"fmt"
	"math"

	"augment/internal/media"
)

// floatToIntEps keeps 1.0 from landing one past the integer maximum.
const floatToIntEps = 1e-3

// ConvertDType converts t to dtype, rescaling values between the intensity
// ranges of the two types:
//
//   - float -> float: plain cast
//   - int -> float:   divide by the input maximum
//   - float -> int:   multiply by max+1-eps and truncate
//   - int -> int:     shift by the difference in value bits
//
// Converting to the same dtype returns an identical copy.
func ConvertDType(t *media.Tensor, dtype media.DType) (*media.Tensor, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %v", media.ErrUnknownDType, dtype)
	}
	out := t.Clone()
	out.DType = dtype
	if t.DType == dtype {
		return out, nil
	}

	var fn func(float64) float64
	switch {
	case t.DType.IsFloat() && dtype.IsFloat():
		fn = func(v float64) float64 { return v }
	case !t.DType.IsFloat() && dtype.IsFloat():
		inMax := t.DType.MaxValue()
		fn = func(v float64) float64 { return v / inMax }
	case t.DType.IsFloat():
		if (t.DType == media.Float32 && (dtype == media.Int32 || dtype == media.Int64)) ||
			(t.DType == media.Float64 && dtype == media.Int64) {
			return nil, fmt.Errorf("%w: %s to %s", ErrUnsafeCast, t.DType, dtype)
		}
		scale := dtype.MaxValue() + 1.0 - floatToIntEps
		fn = func(v float64) float64 { return v * scale }
	default:
		shift := dtype.ValueBits() - t.DType.ValueBits()
		factor := math.Ldexp(1, shift)
		if shift < 0 {
			fn = func(v float64) float64 { return math.Floor(v * factor) }
		} else {
			fn = func(v float64) float64 { return v * factor }
		}
	}
	for i, v := range out.Data {
		out.Data[i] = dtype.Cast(fn(v))
	}
	return out, nil
}
