package stdout

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"augment/internal/codec"
	"augment/internal/frame"
	"augment/internal/media"
	"augment/sink"
)

type Config struct {
	PrintCounter bool // prepend seq#
	BatchSize    int  // ack after N frames; 0 acks every frame
	FlushMS      int  // ack pending frames after this delay; 0 = disabled
	Out          io.Writer
}

type driver struct {
	cfg Config
	out io.Writer
	ack sink.EmitFn
	seq atomic.Uint64

	mu      sync.Mutex // guards pending+timer
	pending []frame.Checkpoint
	timer   *time.Timer
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	d.out = c.Out
	if d.out == nil {
		d.out = os.Stdout
	}
	return nil
}

func (d *driver) Push(f *frame.Frame) error {
	line := describe(f.Value)
	if d.cfg.PrintCounter {
		fmt.Fprintf(d.out, "[sink %06d] %s %s\n", d.seq.Add(1), f.Checkpoint, line)
	} else {
		fmt.Fprintf(d.out, "[sink] %s %s\n", f.Checkpoint, line)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, f.Checkpoint)
	if d.cfg.BatchSize <= 1 || len(d.pending) >= d.cfg.BatchSize {
		d.flushLocked()
		return nil
	}
	if d.cfg.FlushMS > 0 && d.timer == nil {
		d.timer = time.AfterFunc(time.Duration(d.cfg.FlushMS)*time.Millisecond, d.timerFlush)
	}
	return nil
}

func (d *driver) Close() error {
	d.mu.Lock()
	d.flushLocked()
	d.mu.Unlock()
	return nil
}

func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

func (d *driver) timerFlush() {
	d.mu.Lock()
	d.flushLocked()
	d.mu.Unlock()
}

// must be called with d.mu held
func (d *driver) flushLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.ack != nil {
		for _, cp := range d.pending {
			d.ack(cp)
		}
	}
	d.pending = d.pending[:0]
}

// describe summarizes an encoded media value on one line.
func describe(payload []byte) string {
	v, err := codec.Decode(payload)
	if err != nil {
		return fmt.Sprintf("<%d bytes, undecodable>", len(payload))
	}
	switch m := v.(type) {
	case *media.Tensor:
		return fmt.Sprintf("tensor %s %v", m.DType, m.Shape)
	case *media.Image:
		return fmt.Sprintf("image %s %v %s", m.DType, m.Shape, m.ColorSpace)
	case *media.Video:
		return fmt.Sprintf("video %s %v %s", m.DType, m.Shape, m.ColorSpace)
	case *media.BoundingBoxes:
		return fmt.Sprintf("bounding_boxes n=%d %s %s", m.Len(), m.Format, m.SpatialSize)
	case *media.Native:
		return fmt.Sprintf("native %v %s", m.Image.Bounds().Size(), m.ColorSpace())
	default:
		return v.Kind().String()
	}
}

func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
