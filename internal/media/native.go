package media

import (
	"fmt"
	"image"
	"image/color"
)

// Native wraps an image from the standard image package.
type Native struct {
	Image image.Image
}

func NewNative(img image.Image) *Native { return &Native{Image: img} }

func (*Native) Kind() Kind { return KindNative }
func (*Native) value()     {}

// ColorSpace reports the color space implied by the concrete image type.
func (n *Native) ColorSpace() ColorSpace { return ColorSpaceOf(n.Image) }

// ColorSpaceOf maps a concrete image type onto a color space tag. Paletted,
// CMYK and unknown images are OTHER.
func ColorSpaceOf(img image.Image) ColorSpace {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ColorSpaceGray
	case *GrayAlphaImage:
		return ColorSpaceGrayAlpha
	case *RGBImage, *image.YCbCr:
		return ColorSpaceRGB
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.NYCbCrA:
		return ColorSpaceRGBAlpha
	default:
		return ColorSpaceOther
	}
}

// RGBImage is an opaque 8-bit image with three samples per pixel.
type RGBImage struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func NewRGBImage(r image.Rectangle) *RGBImage {
	return &RGBImage{Pix: make([]uint8, 3*r.Dx()*r.Dy()), Stride: 3 * r.Dx(), Rect: r}
}

func (p *RGBImage) ColorModel() color.Model { return color.RGBAModel }
func (p *RGBImage) Bounds() image.Rectangle { return p.Rect }

func (p *RGBImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: 0xff}
}

func (p *RGBImage) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// Set stores the straight (non-premultiplied) color channels of c; alpha is
// discarded.
func (p *RGBImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := p.PixOffset(x, y)
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = n.R, n.G, n.B
}

// GrayAlphaImage is an 8-bit image with a luminance and an alpha sample per
// pixel.
type GrayAlphaImage struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func NewGrayAlphaImage(r image.Rectangle) *GrayAlphaImage {
	return &GrayAlphaImage{Pix: make([]uint8, 2*r.Dx()*r.Dy()), Stride: 2 * r.Dx(), Rect: r}
}

func (p *GrayAlphaImage) ColorModel() color.Model { return color.NRGBAModel }
func (p *GrayAlphaImage) Bounds() image.Rectangle { return p.Rect }

func (p *GrayAlphaImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.NRGBA{}
	}
	i := p.PixOffset(x, y)
	l := p.Pix[i]
	return color.NRGBA{R: l, G: l, B: l, A: p.Pix[i+1]}
}

func (p *GrayAlphaImage) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *GrayAlphaImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := p.PixOffset(x, y)
	p.Pix[i], p.Pix[i+1] = luma(n), n.A
}

// luma is the ITU-R 601-2 luminance of the straight color channels.
func luma(c color.NRGBA) uint8 {
	return uint8((19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16)
}

// ConvertImage re-encodes img in the given color space. Alpha is dropped when
// the target has none and set to opaque when the source has none.
func ConvertImage(img image.Image, cs ColorSpace) (image.Image, error) {
	b := img.Bounds()
	switch cs {
	case ColorSpaceGray:
		out := image.NewGray(b)
		eachPixel(img, func(x, y int, c color.NRGBA) { out.Pix[out.PixOffset(x, y)] = luma(c) })
		return out, nil
	case ColorSpaceGrayAlpha:
		out := NewGrayAlphaImage(b)
		eachPixel(img, func(x, y int, c color.NRGBA) {
			i := out.PixOffset(x, y)
			out.Pix[i], out.Pix[i+1] = luma(c), c.A
		})
		return out, nil
	case ColorSpaceRGB:
		out := NewRGBImage(b)
		eachPixel(img, func(x, y int, c color.NRGBA) {
			i := out.PixOffset(x, y)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c.R, c.G, c.B
		})
		return out, nil
	case ColorSpaceRGBAlpha:
		out := image.NewNRGBA(b)
		eachPixel(img, func(x, y int, c color.NRGBA) { out.SetNRGBA(x, y, c) })
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert native image to %s", ErrUnknownColorSpace, cs)
	}
}

func eachPixel(img image.Image, fn func(x, y int, c color.NRGBA)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			fn(x, y, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
		}
	}
}
