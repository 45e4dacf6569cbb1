// Package media defines the values the meta transforms operate on: simple
// tensors, images, videos, bounding boxes and native Go images. The set of
// variants is closed; every variant implements Value.
package media
