package kernel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"augment/internal/media"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

var allFormats = []media.BoundingBoxFormat{media.FormatXYXY, media.FormatXYWH, media.FormatCXCYWH}

func TestConvertBoundingBoxFormat_KnownValues(t *testing.T) {
	xyxy := []float64{10, 20, 30, 60, 0, 0, 5, 5}

	xywh, err := ConvertBoundingBoxFormat(xyxy, media.FormatXYXY, media.FormatXYWH)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 20, 40, 0, 0, 5, 5}, xywh)

	cxcywh, err := ConvertBoundingBoxFormat(xyxy, media.FormatXYXY, media.FormatCXCYWH)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 40, 20, 40, 2.5, 2.5, 5, 5}, cxcywh)

	back, err := ConvertBoundingBoxFormat(cxcywh, media.FormatCXCYWH, media.FormatXYWH)
	require.NoError(t, err)
	assert.Equal(t, xywh, back)
}

func TestConvertBoundingBoxFormat_RoundTrip(t *testing.T) {
	orig := []float64{1.5, 2.25, 17.75, 40.125, -3, 4, 9, 12.5}
	for _, a := range allFormats {
		for _, b := range allFormats {
			there, err := ConvertBoundingBoxFormat(orig, a, b)
			require.NoError(t, err)
			again, err := ConvertBoundingBoxFormat(there, b, a)
			require.NoError(t, err)
			if diff := cmp.Diff(orig, again, approx); diff != "" {
				t.Fatalf("%s -> %s -> %s mismatch (-want +got):\n%s", a, b, a, diff)
			}
		}
	}
}

func TestConvertBoundingBoxFormat_DoesNotMutateInput(t *testing.T) {
	in := []float64{1, 2, 3, 4}
	out, err := ConvertBoundingBoxFormat(in, media.FormatXYXY, media.FormatXYXY)
	require.NoError(t, err)
	out[0] = 99
	assert.Equal(t, 1.0, in[0])

	_, err = ConvertBoundingBoxFormat([]float64{1, 2, 3}, media.FormatXYXY, media.FormatXYWH)
	require.ErrorIs(t, err, media.ErrShape)
}

func TestClampBoundingBoxes_CornerScenario(t *testing.T) {
	size := media.Size{Height: 100, Width: 100}
	got, err := ClampBoundingBoxes([]float64{-5, 10, 50, 200}, media.FormatXYXY, size)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 50, 100}, got)
}

func TestClampBoundingBoxes_UsesOwnFormat(t *testing.T) {
	size := media.Size{Height: 100, Width: 100}
	cxcywh, err := ConvertBoundingBoxFormat([]float64{-5, 10, 50, 200}, media.FormatXYXY, media.FormatCXCYWH)
	require.NoError(t, err)

	got, err := ClampBoundingBoxes(cxcywh, media.FormatCXCYWH, size)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{25, 55, 50, 90}, got, approx); diff != "" {
		t.Fatalf("clamped cxcywh mismatch (-want +got):\n%s", diff)
	}
}

func TestClampBoundingBoxes_Idempotent(t *testing.T) {
	size := media.Size{Height: 48, Width: 64}
	inBounds := []float64{0, 0, 64, 48, 3, 4, 10, 20}
	for _, f := range allFormats {
		boxes, err := ConvertBoundingBoxFormat(inBounds, media.FormatXYXY, f)
		require.NoError(t, err)
		got, err := ClampBoundingBoxes(boxes, f, size)
		require.NoError(t, err)
		if diff := cmp.Diff(boxes, got, approx); diff != "" {
			t.Fatalf("%s: in-bounds clamp changed boxes (-want +got):\n%s", f, diff)
		}
	}

	once, err := ClampBoundingBoxes([]float64{-10, -10, 500, 500}, media.FormatXYWH, size)
	require.NoError(t, err)
	twice, err := ClampBoundingBoxes(once, media.FormatXYWH, size)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Equal(t, []float64{0, 0, 64, 48}, once)
}
