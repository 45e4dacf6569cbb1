package codec

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"augment/internal/media"
)

func TestEncodeDecode_Image(t *testing.T) {
	img, err := media.NewImage([]int{3, 1, 2}, media.Uint8, []float64{1, 2, 3, 4, 5, 255}, media.ColorSpaceRGB)
	require.NoError(t, err)

	b, err := Encode(img)
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestEncodeDecode_BoundingBoxesKeepMetadata(t *testing.T) {
	boxes, err := media.NewBoundingBoxes([]float64{0.5, 1.25, 10, 20}, media.FormatCXCYWH, media.Size{Height: 480, Width: 640})
	require.NoError(t, err)

	b, err := Encode(boxes)
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, boxes, got)
}

func TestEncodeDecode_NativeRestoresType(t *testing.T) {
	src := media.NewGrayAlphaImage(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 90, G: 90, B: 90, A: 10})
	src.Set(1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	b, err := Encode(media.NewNative(src))
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)

	n := got.(*media.Native)
	require.IsType(t, &media.GrayAlphaImage{}, n.Image)
	assert.Equal(t, src.Pix, n.Image.(*media.GrayAlphaImage).Pix)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00})
	require.ErrorIs(t, err, ErrMalformed)

	bad, err := encMode.Marshal(envelope{Kind: "image", Shape: []int{3, 2, 2}, DType: "uint8", Data: []float64{1}, ColorSpace: "RGB"})
	require.NoError(t, err)
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorContains(t, err, "shape")

	wrapped, err := encMode.Marshal(envelope{Kind: "image", Shape: []int{1 << 62, 3, 4, 1}, DType: "uint8", ColorSpace: "RGB"})
	require.NoError(t, err)
	_, err = Decode(wrapped)
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorIs(t, err, media.ErrShape)

	unknown, err := encMode.Marshal(envelope{Kind: "mask"})
	require.NoError(t, err)
	_, err = Decode(unknown)
	require.ErrorIs(t, err, ErrMalformed)
}
