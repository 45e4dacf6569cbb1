package transform

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"augment/internal/media"
)

var (
	ErrUnknownOp     = errors.New("transform: unknown op")
	ErrMissingOption = errors.New("transform: missing option")
)

// Options carries the string form of a transform's configuration, as read
// from a pipeline file. Which fields matter depends on the op.
type Options struct {
	Format        string
	DType         string
	ColorSpace    string
	OldColorSpace string
}

// Factory builds a Transform from Options.
type Factory func(Options) (Transform, error)

var reg = map[string]Factory{}

// Register makes a factory available to New under op.
func Register(op string, f Factory) { reg[op] = f }

// New builds the transform registered under op. Option strings are parsed
// here, so bad names fail before any value is transformed.
func New(op string, opts Options) (Transform, error) {
	f, ok := reg[op]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownOp, op, Ops())
	}
	t, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", op, err)
	}
	return t, nil
}

// Ops lists the registered op names in sorted order.
func Ops() []string {
	return slices.Sorted(maps.Keys(reg))
}

func init() {
	Register("convert_bounding_box_format", func(o Options) (Transform, error) {
		if o.Format == "" {
			return nil, fmt.Errorf("%w: format", ErrMissingOption)
		}
		t, err := NewConvertBoundingBoxFormat(o.Format)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	Register("convert_image_dtype", func(o Options) (Transform, error) {
		d := media.Float32
		if o.DType != "" {
			parsed, err := media.ParseDType(o.DType)
			if err != nil {
				return nil, err
			}
			d = parsed
		}
		t, err := NewConvertImageDtype(d)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	Register("convert_color_space", func(o Options) (Transform, error) {
		if o.ColorSpace == "" {
			return nil, fmt.Errorf("%w: color_space", ErrMissingOption)
		}
		var old []string
		if o.OldColorSpace != "" {
			old = append(old, o.OldColorSpace)
		}
		t, err := NewConvertColorSpace(o.ColorSpace, old...)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	Register("clamp_bounding_boxes", func(Options) (Transform, error) {
		return NewClampBoundingBoxes(), nil
	})
}
