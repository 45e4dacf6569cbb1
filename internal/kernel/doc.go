// Package kernel holds the functional conversions behind the meta transforms:
// bounding box format conversion and clamping, dtype conversion with value
// rescaling, and color space conversion. Kernels never modify their inputs.
package kernel

import "errors"

var (
	ErrUnsafeCast            = errors.New("kernel: dtype conversion cannot be performed safely")
	ErrAlphaNotOpaque        = errors.New("kernel: cannot strip an alpha channel holding values other than the max value")
	ErrUnsupportedColorSpace = errors.New("kernel: unsupported color space conversion")
	ErrMissingColorSpace     = errors.New("kernel: source color space required for simple tensors")
	ErrChannelMismatch       = errors.New("kernel: channel count does not match color space")
	ErrUnsupportedKind       = errors.New("kernel: unsupported media kind")
)
