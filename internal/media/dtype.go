package media

import (
	"fmt"
	"math"
	"strings"

	"github.com/x448/float16"
)

// DType is the numeric element type of a tensor.
type DType int

const (
	Uint8 DType = iota
	Int8
	Int16
	Int32
	Int64
	Float16
	Float32
	Float64
)

var dtypeNames = []string{"uint8", "int8", "int16", "int32", "int64", "float16", "float32", "float64"}

var dtypeAliases = map[string]DType{
	"byte":   Uint8,
	"short":  Int16,
	"int":    Int32,
	"long":   Int64,
	"half":   Float16,
	"float":  Float32,
	"double": Float64,
}

// ParseDType resolves a canonical dtype name ("uint8", "float32", ...) or one
// of the usual aliases ("float", "double", "long", ...).
func ParseDType(name string) (DType, error) {
	if d, ok := lookup[DType](dtypeNames, name); ok {
		return d, nil
	}
	if d, ok := dtypeAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDType, name)
}

func (d DType) Valid() bool { return d >= Uint8 && d <= Float64 }

func (d DType) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DType(%d)", int(d))
	}
	return dtypeNames[d]
}

func (d DType) IsFloat() bool { return d >= Float16 && d <= Float64 }

// ValueBits is the number of bits carrying magnitude, sign bit excluded.
// It is zero for floating types.
func (d DType) ValueBits() int {
	switch d {
	case Uint8:
		return 8
	case Int8:
		return 7
	case Int16:
		return 15
	case Int32:
		return 31
	case Int64:
		return 63
	default:
		return 0
	}
}

// MaxValue is the largest intensity an image of this type can hold: 1.0 for
// floating types, the type maximum for integers.
func (d DType) MaxValue() float64 {
	if d.IsFloat() {
		return 1.0
	}
	return math.Ldexp(1, d.ValueBits()) - 1
}

// maxCast is the largest float64 an integer of type d can hold. 2^63-1 is
// not a float64, so int64 stops one ulp below 2^63.
func (d DType) maxCast() float64 {
	if d == Int64 {
		return math.Nextafter(math.Ldexp(1, 63), 0)
	}
	return d.MaxValue()
}

func (d DType) minValue() float64 {
	switch d {
	case Uint8:
		return 0
	case Int8, Int16, Int32, Int64:
		return -math.Ldexp(1, d.ValueBits())
	default:
		return math.Inf(-1)
	}
}

// Cast converts v into a value representable by d. Integer types truncate
// toward zero and saturate at the type bounds; NaN becomes zero. Floating
// types round to their precision.
func (d DType) Cast(v float64) float64 {
	switch d {
	case Float64:
		return v
	case Float32:
		return float64(float32(v))
	case Float16:
		return float64(float16.Fromfloat32(float32(v)).Float32())
	}
	if math.IsNaN(v) {
		return 0
	}
	v = math.Trunc(v)
	if lo := d.minValue(); v < lo {
		return lo
	}
	if hi := d.maxCast(); v > hi {
		return hi
	}
	return v
}
