package kernel

import (
	"fmt"
	"math"

	"augment/internal/media"
)

// ConvertBoundingBoxFormat rewrites N×4 box coordinates from one format to
// another, going through XYXY.
func ConvertBoundingBoxFormat(data []float64, old, new media.BoundingBoxFormat) ([]float64, error) {
	if err := checkBoxes(data, old, new); err != nil {
		return nil, err
	}
	out := append([]float64(nil), data...)
	if old == new {
		return out, nil
	}
	for i := 0; i < len(out); i += 4 {
		b := out[i : i+4 : i+4]
		toXYXY(b, old)
		fromXYXY(b, new)
	}
	return out, nil
}

// ClampBoundingBoxes limits x coordinates to [0, width] and y coordinates to
// [0, height]. The result is in the input format.
func ClampBoundingBoxes(data []float64, format media.BoundingBoxFormat, size media.Size) ([]float64, error) {
	if err := checkBoxes(data, format, format); err != nil {
		return nil, err
	}
	w, h := float64(size.Width), float64(size.Height)
	out := append([]float64(nil), data...)
	for i := 0; i < len(out); i += 4 {
		b := out[i : i+4 : i+4]
		toXYXY(b, format)
		b[0], b[2] = clamp(b[0], 0, w), clamp(b[2], 0, w)
		b[1], b[3] = clamp(b[1], 0, h), clamp(b[3], 0, h)
		fromXYXY(b, format)
	}
	return out, nil
}

func checkBoxes(data []float64, formats ...media.BoundingBoxFormat) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("%w: %d coordinates is not a multiple of 4", media.ErrShape, len(data))
	}
	for _, f := range formats {
		if !f.Valid() {
			return fmt.Errorf("%w: %v", media.ErrUnknownFormat, f)
		}
	}
	return nil
}

func toXYXY(b []float64, from media.BoundingBoxFormat) {
	switch from {
	case media.FormatXYWH:
		b[2] += b[0]
		b[3] += b[1]
	case media.FormatCXCYWH:
		cx, cy, w, h := b[0], b[1], b[2], b[3]
		b[0], b[1] = cx-0.5*w, cy-0.5*h
		b[2], b[3] = cx+0.5*w, cy+0.5*h
	}
}

func fromXYXY(b []float64, to media.BoundingBoxFormat) {
	switch to {
	case media.FormatXYWH:
		b[2] -= b[0]
		b[3] -= b[1]
	case media.FormatCXCYWH:
		x1, y1, x2, y2 := b[0], b[1], b[2], b[3]
		b[0], b[1] = (x1+x2)/2, (y1+y2)/2
		b[2], b[3] = x2-x1, y2-y1
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
