package media

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat     = errors.New("media: unknown bounding box format")
	ErrUnknownColorSpace = errors.New("media: unknown color space")
	ErrUnknownDType      = errors.New("media: unknown dtype")
	ErrShape             = errors.New("media: invalid shape")
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindTensor Kind = iota
	KindImage
	KindVideo
	KindBoundingBoxes
	KindNative
)

var kindNames = []string{"tensor", "image", "video", "bounding_boxes", "native"}

func (k Kind) String() string {
	if k < KindTensor || k > KindNative {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	if k, ok := lookup[Kind](kindNames, name); ok {
		return k, nil
	}
	return 0, fmt.Errorf("media: unknown kind %q", name)
}

// Value is one of *Tensor, *Image, *Video, *BoundingBoxes or *Native.
type Value interface {
	Kind() Kind
	value()
}

// Size is the (height, width) extent bounding box coordinates refer to.
type Size struct {
	Height int
	Width  int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Height, s.Width) }

// Tensor is a dense row-major array without media metadata. Every element of
// Data is representable by DType; int64 elements are exact up to 2^53.
type Tensor struct {
	Shape []int
	DType DType
	Data  []float64
}

// MaxElements bounds the element count of any tensor.
const MaxElements = 1 << 27

// NewTensor copies shape and data into a new tensor, casting every element to
// dtype.
func NewTensor(shape []int, dtype DType, data []float64) (*Tensor, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDType, dtype)
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		if d != 0 && n > MaxElements/d {
			return nil, fmt.Errorf("%w: shape %v exceeds %d elements", ErrShape, shape, MaxElements)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v holds %d elements, got %d", ErrShape, shape, n, len(data))
	}
	t := &Tensor{
		Shape: append([]int(nil), shape...),
		DType: dtype,
		Data:  make([]float64, len(data)),
	}
	for i, v := range data {
		t.Data[i] = dtype.Cast(v)
	}
	return t, nil
}

func (*Tensor) Kind() Kind { return KindTensor }
func (*Tensor) value()     {}

// Channels returns the size of dimension -3, or 0 when the tensor has fewer
// than three dimensions.
func (t *Tensor) Channels() int {
	if len(t.Shape) < 3 {
		return 0
	}
	return t.Shape[len(t.Shape)-3]
}

func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Shape: append([]int(nil), t.Shape...),
		DType: t.DType,
		Data:  append([]float64(nil), t.Data...),
	}
}

// Image is a tensor of shape [..., C, H, W] tagged with a color space.
type Image struct {
	Tensor
	ColorSpace ColorSpace
}

func NewImage(shape []int, dtype DType, data []float64, cs ColorSpace) (*Image, error) {
	if len(shape) < 3 {
		return nil, fmt.Errorf("%w: image needs [..., C, H, W], got %v", ErrShape, shape)
	}
	t, err := NewTensor(shape, dtype, data)
	if err != nil {
		return nil, err
	}
	if err := checkChannels(t, cs); err != nil {
		return nil, err
	}
	return &Image{Tensor: *t, ColorSpace: cs}, nil
}

func (*Image) Kind() Kind { return KindImage }
func (*Image) value()     {}

// WrapLike returns a new image holding t and the receiver's color space.
func (i *Image) WrapLike(t *Tensor) *Image {
	return &Image{Tensor: *t, ColorSpace: i.ColorSpace}
}

// Video is a tensor of shape [..., T, C, H, W] tagged with a color space.
type Video struct {
	Tensor
	ColorSpace ColorSpace
}

func NewVideo(shape []int, dtype DType, data []float64, cs ColorSpace) (*Video, error) {
	if len(shape) < 4 {
		return nil, fmt.Errorf("%w: video needs [..., T, C, H, W], got %v", ErrShape, shape)
	}
	t, err := NewTensor(shape, dtype, data)
	if err != nil {
		return nil, err
	}
	if err := checkChannels(t, cs); err != nil {
		return nil, err
	}
	return &Video{Tensor: *t, ColorSpace: cs}, nil
}

func (*Video) Kind() Kind { return KindVideo }
func (*Video) value()     {}

func (v *Video) WrapLike(t *Tensor) *Video {
	return &Video{Tensor: *t, ColorSpace: v.ColorSpace}
}

func checkChannels(t *Tensor, cs ColorSpace) error {
	if !cs.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownColorSpace, cs)
	}
	if n := cs.NumChannels(); n != 0 && t.Channels() != n {
		return fmt.Errorf("%w: color space %s needs %d channels, got %d", ErrShape, cs, n, t.Channels())
	}
	return nil
}

// BoundingBoxes holds N boxes as a flat N×4 coordinate slice.
type BoundingBoxes struct {
	Data        []float64
	Format      BoundingBoxFormat
	SpatialSize Size
}

func NewBoundingBoxes(data []float64, format BoundingBoxFormat, size Size) (*BoundingBoxes, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates is not a multiple of 4", ErrShape, len(data))
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if size.Height < 0 || size.Width < 0 {
		return nil, fmt.Errorf("%w: negative spatial size %s", ErrShape, size)
	}
	return &BoundingBoxes{
		Data:        append([]float64(nil), data...),
		Format:      format,
		SpatialSize: size,
	}, nil
}

func (*BoundingBoxes) Kind() Kind { return KindBoundingBoxes }
func (*BoundingBoxes) value()     {}

func (b *BoundingBoxes) Len() int { return len(b.Data) / 4 }

// WrapLike returns boxes holding data and the receiver's metadata. A non-nil
// format overrides the receiver's.
func (b *BoundingBoxes) WrapLike(data []float64, format *BoundingBoxFormat) *BoundingBoxes {
	out := &BoundingBoxes{Data: data, Format: b.Format, SpatialSize: b.SpatialSize}
	if format != nil {
		out.Format = *format
	}
	return out
}
