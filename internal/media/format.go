package media

import (
	"fmt"
	"strings"
)

// BoundingBoxFormat is the coordinate convention of a bounding box.
type BoundingBoxFormat int

const (
	// FormatXYXY is (x_min, y_min, x_max, y_max).
	FormatXYXY BoundingBoxFormat = iota
	// FormatXYWH is (x_min, y_min, width, height).
	FormatXYWH
	// FormatCXCYWH is (center_x, center_y, width, height).
	FormatCXCYWH
)

var formatNames = []string{"XYXY", "XYWH", "CXCYWH"}

func ParseBoundingBoxFormat(name string) (BoundingBoxFormat, error) {
	if f, ok := lookup[BoundingBoxFormat](formatNames, name); ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func (f BoundingBoxFormat) Valid() bool { return f >= FormatXYXY && f <= FormatCXCYWH }

func (f BoundingBoxFormat) String() string {
	if !f.Valid() {
		return fmt.Sprintf("BoundingBoxFormat(%d)", int(f))
	}
	return formatNames[f]
}

// lookup matches name against names case-insensitively and returns the index
// as T.
func lookup[T ~int](names []string, name string) (T, bool) {
	name = strings.TrimSpace(name)
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return T(i), true
		}
	}
	return 0, false
}
