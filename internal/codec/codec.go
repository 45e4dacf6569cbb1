// Package codec serializes media values as CBOR so they can travel in Kafka
// records and gRPC payloads.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/fxamacker/cbor/v2"

	"augment/internal/media"
)

var ErrMalformed = errors.New("codec: malformed media value")

// envelope is the wire form of every media kind. Only the fields relevant to
// Kind are set.
type envelope struct {
	Kind        string    `cbor:"kind"`
	Shape       []int     `cbor:"shape,omitempty"`
	DType       string    `cbor:"dtype,omitempty"`
	Data        []float64 `cbor:"data,omitempty"`
	ColorSpace  string    `cbor:"color_space,omitempty"`
	Format      string    `cbor:"format,omitempty"`
	SpatialSize []int     `cbor:"spatial_size,omitempty"`
	PNG         []byte    `cbor:"png,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Shortest float encoding stores integer-valued pixels in two bytes.
	encMode, err = cbor.EncOptions{ShortestFloat: cbor.ShortestFloat16, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{MaxArrayElements: media.MaxElements, MaxMapPairs: 64}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode returns the CBOR encoding of v.
func Encode(v media.Value) ([]byte, error) {
	env := envelope{Kind: v.Kind().String()}
	switch in := v.(type) {
	case *media.Tensor:
		putTensor(&env, in)
	case *media.Image:
		putTensor(&env, &in.Tensor)
		env.ColorSpace = in.ColorSpace.String()
	case *media.Video:
		putTensor(&env, &in.Tensor)
		env.ColorSpace = in.ColorSpace.String()
	case *media.BoundingBoxes:
		env.Data = in.Data
		env.Format = in.Format.String()
		env.SpatialSize = []int{in.SpatialSize.Height, in.SpatialSize.Width}
	case *media.Native:
		var buf bytes.Buffer
		if err := png.Encode(&buf, in.Image); err != nil {
			return nil, fmt.Errorf("codec: encode png: %w", err)
		}
		env.PNG = buf.Bytes()
		env.ColorSpace = in.ColorSpace().String()
	default:
		return nil, fmt.Errorf("codec: cannot encode %T", v)
	}
	return encMode.Marshal(env)
}

func putTensor(env *envelope, t *media.Tensor) {
	env.Shape = t.Shape
	env.DType = t.DType.String()
	env.Data = t.Data
}

// Decode parses a value produced by Encode. The value is validated the same
// way the media constructors validate their inputs.
func Decode(b []byte) (media.Value, error) {
	var env envelope
	if err := decMode.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	kind, err := media.ParseKind(env.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	v, err := decode(kind, &env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, nil
}

func decode(kind media.Kind, env *envelope) (media.Value, error) {
	switch kind {
	case media.KindBoundingBoxes:
		format, err := media.ParseBoundingBoxFormat(env.Format)
		if err != nil {
			return nil, err
		}
		if len(env.SpatialSize) != 2 {
			return nil, fmt.Errorf("spatial_size needs [height, width], got %v", env.SpatialSize)
		}
		return media.NewBoundingBoxes(env.Data, format, media.Size{Height: env.SpatialSize[0], Width: env.SpatialSize[1]})
	case media.KindNative:
		img, err := png.Decode(bytes.NewReader(env.PNG))
		if err != nil {
			return nil, err
		}
		return restoreNative(img, env.ColorSpace)
	}

	dtype, err := media.ParseDType(env.DType)
	if err != nil {
		return nil, err
	}
	if kind == media.KindTensor {
		return media.NewTensor(env.Shape, dtype, env.Data)
	}
	cs, err := media.ParseColorSpace(env.ColorSpace)
	if err != nil {
		return nil, err
	}
	if kind == media.KindImage {
		return media.NewImage(env.Shape, dtype, env.Data, cs)
	}
	return media.NewVideo(env.Shape, dtype, env.Data, cs)
}

// restoreNative brings a decoded PNG back to the concrete image type its
// color space tag names; PNG has no 3-channel or gray+alpha Go type of its own.
func restoreNative(img image.Image, tag string) (media.Value, error) {
	cs, err := media.ParseColorSpace(tag)
	if err != nil {
		return nil, err
	}
	if cs == media.ColorSpaceOther || media.ColorSpaceOf(img) == cs {
		return media.NewNative(img), nil
	}
	out, err := media.ConvertImage(img, cs)
	if err != nil {
		return nil, err
	}
	return media.NewNative(out), nil
}
