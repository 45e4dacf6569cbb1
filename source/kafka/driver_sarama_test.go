package kafka

import (
	"sync/atomic"
	"testing"

	"golang.org/x/sync/semaphore"

	"augment/internal/frame"
	"augment/internal/logging"
)

func newTestDriver() *SaramaDriver {
	return &SaramaDriver{
		pending:  make(map[frame.Checkpoint]func()),
		inflight: semaphore.NewWeighted(4),
		log:      logging.L(),
	}
}

func TestSaramaDriver_OnAckRunsCallbackOnce(t *testing.T) {
	d := newTestDriver()

	var called int32
	cp := frame.Checkpoint{Topic: "t", Partition: 2, Offset: 99}
	d.track(cp, func() { atomic.AddInt32(&called, 1) })

	d.OnAck(cp)
	d.OnAck(cp)
	if got := atomic.LoadInt32(&called); got != 1 {
		t.Fatalf("callback ran %d times, want 1", got)
	}
	if len(d.pending) != 0 {
		t.Fatalf("pending not cleared: %v", d.pending)
	}
}

func TestSaramaDriver_OnAckUnknownCheckpoint(t *testing.T) {
	d := newTestDriver()
	d.OnAck(frame.Checkpoint{Topic: "t", Partition: 1, Offset: 42})
}

func TestGroupHandler_CleanupReleasesSlots(t *testing.T) {
	d := newTestDriver()
	if !d.inflight.TryAcquire(4) {
		t.Fatal("acquire all slots")
	}
	for i := int64(0); i < 3; i++ {
		d.track(frame.Checkpoint{Topic: "t", Offset: i}, func() {})
	}
	d.inflight.Release(1)

	h := &groupHandler{driver: d}
	if err := h.Cleanup(nil); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if !d.inflight.TryAcquire(4) {
		t.Fatal("cleanup should return every pending slot")
	}
}

func TestTracker_OutOfOrderResolution(t *testing.T) {
	var tr tracker[int64]
	r1 := tr.Track(1)
	r2 := tr.Track(2)
	r3 := tr.Track(3)

	if got := r3(); got != nil {
		t.Fatalf("resolving 3 first: want nil, got %d", *got)
	}
	if got := r2(); got != nil {
		t.Fatalf("resolving 2 before 1: want nil, got %d", *got)
	}
	if got := r1(); got == nil || *got != 3 {
		t.Fatalf("resolving 1 should advance to 3, got %v", got)
	}
	if tr.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", tr.Pending())
	}

	r4 := tr.Track(4)
	if got := r4(); got == nil || *got != 4 {
		t.Fatalf("want 4, got %v", got)
	}
	if got := r4(); got == nil || *got != 4 {
		t.Fatalf("resolve must be idempotent, got %v", got)
	}
}
