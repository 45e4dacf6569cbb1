// Package frame is the unit of work moving from a source, through the
// transform stages, into sinks.
package frame

import (
	"fmt"
	"time"
)

// Checkpoint identifies the source record a frame came from. Sinks hand it
// back once the frame is durably processed.
type Checkpoint struct {
	Topic     string
	Partition int32
	Offset    int64
}

func (c Checkpoint) String() string {
	return fmt.Sprintf("%s[%d]@%d", c.Topic, c.Partition, c.Offset)
}

// Frame carries one encoded media value.
type Frame struct {
	Key        []byte
	Value      []byte
	Headers    map[string][]byte
	Ts         time.Time
	Checkpoint Checkpoint
}

// WithValue returns a copy of f carrying value. Headers are shared.
func (f *Frame) WithValue(value []byte) *Frame {
	out := *f
	out.Value = value
	return &out
}
