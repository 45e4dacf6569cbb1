// Package transform defines the meta transforms: ConvertBoundingBoxFormat,
// ConvertImageDtype, ConvertColorSpace and ClampBoundingBoxes. Each is
// configured once at construction and applied through the same two-phase
// contract: resolve Params for a sample, then Apply to every applicable value.
package transform
