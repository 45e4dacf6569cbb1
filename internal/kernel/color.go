package kernel

import (
	"fmt"

	"augment/internal/media"
)

// ConvertColorSpace converts an image, video, simple tensor or native image
// to the target color space and returns a value of the same kind.
//
// Images and videos are converted from their own color space; old is used
// only when that tag is OTHER. Simple tensors carry no tag, so old is
// required. Native images are converted from whatever their concrete type
// encodes and ignore old.
func ConvertColorSpace(v media.Value, cs media.ColorSpace, old *media.ColorSpace) (media.Value, error) {
	switch in := v.(type) {
	case *media.Image:
		t, err := ConvertColorSpaceTensor(&in.Tensor, sourceColorSpace(in.ColorSpace, old), cs)
		if err != nil {
			return nil, err
		}
		return &media.Image{Tensor: *t, ColorSpace: cs}, nil
	case *media.Video:
		t, err := ConvertColorSpaceTensor(&in.Tensor, sourceColorSpace(in.ColorSpace, old), cs)
		if err != nil {
			return nil, err
		}
		return &media.Video{Tensor: *t, ColorSpace: cs}, nil
	case *media.Tensor:
		if old == nil {
			return nil, ErrMissingColorSpace
		}
		return ConvertColorSpaceTensor(in, *old, cs)
	case *media.Native:
		if cs == media.ColorSpaceOther {
			return nil, fmt.Errorf("%w: conversion to %s", ErrUnsupportedColorSpace, cs)
		}
		img, err := media.ConvertImage(in.Image, cs)
		if err != nil {
			return nil, err
		}
		return media.NewNative(img), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Kind())
	}
}

func sourceColorSpace(tag media.ColorSpace, old *media.ColorSpace) media.ColorSpace {
	if tag == media.ColorSpaceOther && old != nil {
		return *old
	}
	return tag
}

// ConvertColorSpaceTensor converts a [..., C, H, W] tensor between GRAY,
// GRAY_ALPHA, RGB and RGB_ALPHA. A missing alpha channel is filled with the
// dtype's max value; an alpha channel can only be dropped when it is fully
// opaque.
func ConvertColorSpaceTensor(t *media.Tensor, old, new media.ColorSpace) (*media.Tensor, error) {
	if old == new {
		return t.Clone(), nil
	}
	if old == media.ColorSpaceOther || new == media.ColorSpaceOther {
		return nil, fmt.Errorf("%w: conversion to or from %s", ErrUnsupportedColorSpace, media.ColorSpaceOther)
	}
	if !old.Valid() || !new.Valid() {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedColorSpace, old, new)
	}
	if t.Channels() != old.NumChannels() {
		return nil, fmt.Errorf("%w: %s needs %d channels, tensor has %d (shape %v)",
			ErrChannelMismatch, old, old.NumChannels(), t.Channels(), t.Shape)
	}

	l := newPlanes(t)
	inColor := old.NumChannels()
	if old.HasAlpha() {
		inColor--
	}
	outColor := new.NumChannels()
	if new.HasAlpha() {
		outColor--
	}

	if old.HasAlpha() && !new.HasAlpha() {
		alpha, opaque := inColor, t.DType.MaxValue()
		for o := 0; o < l.outer; o++ {
			for _, a := range l.plane(t.Data, o, alpha) {
				if a != opaque {
					return nil, ErrAlphaNotOpaque
				}
			}
		}
	}

	out := l.resized(t, new.NumChannels())
	ol := newPlanes(out)
	for o := 0; o < l.outer; o++ {
		switch {
		case inColor == outColor:
			for c := 0; c < outColor; c++ {
				copy(ol.plane(out.Data, o, c), l.plane(t.Data, o, c))
			}
		case inColor == 1:
			g := l.plane(t.Data, o, 0)
			for c := 0; c < outColor; c++ {
				copy(ol.plane(out.Data, o, c), g)
			}
		default:
			r, g, b := l.plane(t.Data, o, 0), l.plane(t.Data, o, 1), l.plane(t.Data, o, 2)
			dst := ol.plane(out.Data, o, 0)
			for i := range dst {
				dst[i] = t.DType.Cast(0.2989*r[i] + 0.587*g[i] + 0.114*b[i])
			}
		}
		if new.HasAlpha() {
			dst := ol.plane(out.Data, o, outColor)
			if old.HasAlpha() {
				copy(dst, l.plane(t.Data, o, inColor))
			} else {
				opaque := t.DType.MaxValue()
				for i := range dst {
					dst[i] = opaque
				}
			}
		}
	}
	return out, nil
}

// planes indexes a [..., C, H, W] buffer as outer × C planes of H*W values.
type planes struct {
	outer, channels, size int
}

func newPlanes(t *media.Tensor) planes {
	n := len(t.Shape)
	p := planes{outer: 1, channels: t.Shape[n-3], size: t.Shape[n-2] * t.Shape[n-1]}
	for _, d := range t.Shape[:n-3] {
		p.outer *= d
	}
	return p
}

func (p planes) plane(data []float64, outer, channel int) []float64 {
	start := (outer*p.channels + channel) * p.size
	return data[start : start+p.size]
}

func (p planes) resized(t *media.Tensor, channels int) *media.Tensor {
	shape := append([]int(nil), t.Shape...)
	shape[len(shape)-3] = channels
	return &media.Tensor{
		Shape: shape,
		DType: t.DType,
		Data:  make([]float64, p.outer*channels*p.size),
	}
}
