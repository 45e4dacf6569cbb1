package transform

import (
	"augment/internal/kernel"
	"augment/internal/media"
)

// FormatArg is a bounding box format given as the enum or its name.
type FormatArg interface {
	media.BoundingBoxFormat | string
}

// ColorSpaceArg is a color space given as the enum or its name.
type ColorSpaceArg interface {
	media.ColorSpace | string
}

// ConvertBoundingBoxFormat rewrites bounding boxes into Format.
type ConvertBoundingBoxFormat struct {
	Format media.BoundingBoxFormat
}

func NewConvertBoundingBoxFormat[F FormatArg](format F) (*ConvertBoundingBoxFormat, error) {
	var f media.BoundingBoxFormat
	switch v := any(format).(type) {
	case string:
		parsed, err := media.ParseBoundingBoxFormat(v)
		if err != nil {
			return nil, err
		}
		f = parsed
	case media.BoundingBoxFormat:
		if !v.Valid() {
			return nil, media.ErrUnknownFormat
		}
		f = v
	}
	return &ConvertBoundingBoxFormat{Format: f}, nil
}

func (*ConvertBoundingBoxFormat) Name() string { return "ConvertBoundingBoxFormat" }

func (*ConvertBoundingBoxFormat) Applies(v media.Value) bool {
	return kinds{media.KindBoundingBoxes}.has(v)
}

func (t *ConvertBoundingBoxFormat) Params([]media.Value) Params {
	return Params{"format": t.Format}
}

func (t *ConvertBoundingBoxFormat) Apply(v media.Value, p Params) (media.Value, error) {
	b, ok := v.(*media.BoundingBoxes)
	if !ok {
		return nil, notApplicable(t, v)
	}
	format, ok := p["format"].(media.BoundingBoxFormat)
	if !ok {
		format = t.Format
	}
	out, err := kernel.ConvertBoundingBoxFormat(b.Data, b.Format, format)
	if err != nil {
		return nil, err
	}
	return b.WrapLike(out, &format), nil
}

// ConvertImageDtype converts simple tensors, images and videos to DType,
// rescaling intensities between the two types' ranges.
type ConvertImageDtype struct {
	DType media.DType
}

// NewConvertImageDtype targets float32 unless a dtype is given.
func NewConvertImageDtype(dtype ...media.DType) (*ConvertImageDtype, error) {
	d := media.Float32
	if len(dtype) > 0 {
		d = dtype[0]
	}
	if !d.Valid() {
		return nil, media.ErrUnknownDType
	}
	return &ConvertImageDtype{DType: d}, nil
}

func (*ConvertImageDtype) Name() string { return "ConvertImageDtype" }

func (*ConvertImageDtype) Applies(v media.Value) bool {
	return kinds{media.KindTensor, media.KindImage, media.KindVideo}.has(v)
}

func (t *ConvertImageDtype) Params([]media.Value) Params {
	return Params{"dtype": t.DType}
}

func (t *ConvertImageDtype) Apply(v media.Value, _ Params) (media.Value, error) {
	switch in := v.(type) {
	case *media.Tensor:
		return kernel.ConvertDType(in, t.DType)
	case *media.Image:
		out, err := kernel.ConvertDType(&in.Tensor, t.DType)
		if err != nil {
			return nil, err
		}
		return in.WrapLike(out), nil
	case *media.Video:
		out, err := kernel.ConvertDType(&in.Tensor, t.DType)
		if err != nil {
			return nil, err
		}
		return in.WrapLike(out), nil
	default:
		return nil, notApplicable(t, v)
	}
}

// ConvertColorSpace converts images, videos, simple tensors and native
// images to ColorSpace. OldColorSpace names the source for values that do
// not carry one.
type ConvertColorSpace struct {
	ColorSpace    media.ColorSpace
	OldColorSpace *media.ColorSpace
}

func NewConvertColorSpace[C ColorSpaceArg](colorSpace C, oldColorSpace ...C) (*ConvertColorSpace, error) {
	cs, err := colorSpaceOf(colorSpace)
	if err != nil {
		return nil, err
	}
	t := &ConvertColorSpace{ColorSpace: cs}
	if len(oldColorSpace) > 0 {
		old, err := colorSpaceOf(oldColorSpace[0])
		if err != nil {
			return nil, err
		}
		t.OldColorSpace = &old
	}
	return t, nil
}

func colorSpaceOf[C ColorSpaceArg](c C) (media.ColorSpace, error) {
	switch v := any(c).(type) {
	case string:
		return media.ParseColorSpace(v)
	case media.ColorSpace:
		if !v.Valid() {
			return 0, media.ErrUnknownColorSpace
		}
		return v, nil
	}
	return 0, media.ErrUnknownColorSpace
}

func (*ConvertColorSpace) Name() string { return "ConvertColorSpace" }

func (*ConvertColorSpace) Applies(v media.Value) bool {
	return kinds{media.KindTensor, media.KindImage, media.KindVideo, media.KindNative}.has(v)
}

func (t *ConvertColorSpace) Params([]media.Value) Params {
	p := Params{"color_space": t.ColorSpace}
	if t.OldColorSpace != nil {
		p["old_color_space"] = *t.OldColorSpace
	}
	return p
}

func (t *ConvertColorSpace) Apply(v media.Value, _ Params) (media.Value, error) {
	return kernel.ConvertColorSpace(v, t.ColorSpace, t.OldColorSpace)
}

// ClampBoundingBoxes clamps boxes to their own spatial size.
type ClampBoundingBoxes struct{}

func NewClampBoundingBoxes() *ClampBoundingBoxes { return &ClampBoundingBoxes{} }

func (*ClampBoundingBoxes) Name() string { return "ClampBoundingBoxes" }

func (*ClampBoundingBoxes) Applies(v media.Value) bool {
	return kinds{media.KindBoundingBoxes}.has(v)
}

func (*ClampBoundingBoxes) Params([]media.Value) Params { return Params{} }

func (t *ClampBoundingBoxes) Apply(v media.Value, _ Params) (media.Value, error) {
	b, ok := v.(*media.BoundingBoxes)
	if !ok {
		return nil, notApplicable(t, v)
	}
	out, err := kernel.ClampBoundingBoxes(b.Data, b.Format, b.SpatialSize)
	if err != nil {
		return nil, err
	}
	return b.WrapLike(out, nil), nil
}
