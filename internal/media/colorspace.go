package media

import "fmt"

// ColorSpace tags the pixel encoding of an image or video.
type ColorSpace int

const (
	ColorSpaceOther ColorSpace = iota
	ColorSpaceGray
	ColorSpaceGrayAlpha
	ColorSpaceRGB
	ColorSpaceRGBAlpha
)

var colorSpaceNames = []string{"OTHER", "GRAY", "GRAY_ALPHA", "RGB", "RGB_ALPHA"}

func ParseColorSpace(name string) (ColorSpace, error) {
	if cs, ok := lookup[ColorSpace](colorSpaceNames, name); ok {
		return cs, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColorSpace, name)
}

func (c ColorSpace) Valid() bool { return c >= ColorSpaceOther && c <= ColorSpaceRGBAlpha }

func (c ColorSpace) String() string {
	if !c.Valid() {
		return fmt.Sprintf("ColorSpace(%d)", int(c))
	}
	return colorSpaceNames[c]
}

// NumChannels is the channel count implied by the color space, or 0 for OTHER.
func (c ColorSpace) NumChannels() int {
	switch c {
	case ColorSpaceGray:
		return 1
	case ColorSpaceGrayAlpha:
		return 2
	case ColorSpaceRGB:
		return 3
	case ColorSpaceRGBAlpha:
		return 4
	default:
		return 0
	}
}

func (c ColorSpace) HasAlpha() bool {
	return c == ColorSpaceGrayAlpha || c == ColorSpaceRGBAlpha
}
