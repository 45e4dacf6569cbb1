package stdout

import (
	"bytes"
	"strings"
	"testing"

	"augment/internal/codec"
	"augment/internal/frame"
	"augment/internal/media"
)

func boxesFrame(t *testing.T, offset int64) *frame.Frame {
	t.Helper()
	b, err := media.NewBoundingBoxes([]float64{0, 0, 1, 1}, media.FormatXYWH, media.Size{Height: 10, Width: 20})
	if err != nil {
		t.Fatalf("boxes: %v", err)
	}
	payload, err := codec.Encode(b)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &frame.Frame{Value: payload, Checkpoint: frame.Checkpoint{Topic: "media", Partition: 0, Offset: offset}}
}

func TestDriver_PrintsSummaryAndBatchesAcks(t *testing.T) {
	var out bytes.Buffer
	d := &driver{}
	if err := d.Configure(Config{PrintCounter: true, BatchSize: 2, Out: &out}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	var acked []frame.Checkpoint
	d.BindAck(func(cp frame.Checkpoint) { acked = append(acked, cp) })

	if err := d.Push(boxesFrame(t, 1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(acked) != 0 {
		t.Fatalf("acked before batch filled: %v", acked)
	}
	if err := d.Push(boxesFrame(t, 2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(acked) != 2 {
		t.Fatalf("want 2 acks after batch, got %d", len(acked))
	}

	if err := d.Push(boxesFrame(t, 3)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(acked) != 3 {
		t.Fatalf("close should flush pending acks, got %d", len(acked))
	}

	first := strings.SplitN(out.String(), "\n", 2)[0]
	want := "[sink 000001] media[0]@1 bounding_boxes n=1 XYWH 10x20"
	if first != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", first, want)
	}
}

func TestDriver_ConfigureRejectsWrongType(t *testing.T) {
	d := &driver{}
	if err := d.Configure(struct{}{}); err == nil {
		t.Fatal("expected error for foreign config type")
	}
}
