package kafka

import (
	"context"

	"augment/internal/frame"
)

// EmitFunc hands one consumed record to the pipeline.
type EmitFunc func(*frame.Frame) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, EmitFunc) error
	Close() error
}

// AckAware adapters want to hear when a frame's checkpoint is durable.
type AckAware interface {
	OnAck(frame.Checkpoint)
}
