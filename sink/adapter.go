package sink

import (
	"fmt"
	"maps"
	"slices"

	"augment/internal/frame"
)

// EmitFn is what a sink calls to notify the pipeline that a frame
// (or a batch of frames) has been durably processed.
type EmitFn func(frame.Checkpoint)

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error     // driver-specific config struct
	Push(*frame.Frame) error // consume one frame
	Close() error            // idempotent
}

// AckAware is optional; sinks that need to emit acks simply implement it.
// The compiler wires the callback if present.
type AckAware interface {
	BindAck(EmitFn)
}

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q (registered: %v)", name, slices.Sorted(maps.Keys(reg)))
}
