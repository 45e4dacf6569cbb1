package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"augment/internal/codec"
	"augment/internal/frame"
	"augment/internal/logging"
	"augment/internal/media"
	"augment/internal/stage"
	"augment/internal/telemetry"
	"augment/sink"
	"augment/source/kafka"
)

type step struct {
	stage    stage.Stage
	timeout  time.Duration
	attempts int // retries after the first try
	backoff  time.Duration
}

// Runner moves frames from a source through an ordered list of stages into
// every sink. A frame is acked to subscribers once every push succeeded and
// every ack-aware sink acked it. Frames that cannot be
// decoded or transformed are dropped and acked so they never hold back the
// commit position.
type Runner struct {
	source   kafka.Adapter
	steps    []step
	sinks    []sink.Adapter
	ackSinks int
	log      *slog.Logger

	ctx context.Context

	mu      sync.Mutex
	subs    []func(frame.Checkpoint)
	waiting map[frame.Checkpoint]int // acks still missing per frame
}

func NewRunner() *Runner {
	return &Runner{
		log:     logging.For("pipeline"),
		ctx:     context.Background(),
		waiting: make(map[frame.Checkpoint]int),
	}
}

// AddSink appends s and, if it acks, binds it to the runner.
func (r *Runner) AddSink(s sink.Adapter) {
	if aw, ok := s.(sink.AckAware); ok {
		aw.BindAck(r.sinkAck)
		r.ackSinks++
	}
	r.sinks = append(r.sinks, s)
}

func (r *Runner) SetSource(s kafka.Adapter) { r.source = s }

// AddTransformer appends a stage. A zero timeout means no per-attempt
// deadline; attempts counts retries of transient failures.
func (r *Runner) AddTransformer(s stage.Stage, timeout time.Duration, attempts int, backoff time.Duration) {
	r.steps = append(r.steps, step{stage: s, timeout: timeout, attempts: attempts, backoff: backoff})
}

func (r *Runner) SubscribeAck(fn func(frame.Checkpoint)) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

func (r *Runner) sinkAck(cp frame.Checkpoint) {
	r.mu.Lock()
	n, ok := r.waiting[cp]
	if !ok {
		r.mu.Unlock()
		return
	}
	if n > 1 {
		r.waiting[cp] = n - 1
		r.mu.Unlock()
		return
	}
	delete(r.waiting, cp)
	r.mu.Unlock()
	r.ack(cp)
}

func (r *Runner) ack(cp frame.Checkpoint) {
	r.mu.Lock()
	handlers := append([]func(frame.Checkpoint){}, r.subs...)
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(cp)
	}
}

func (r *Runner) pushFrame(f *frame.Frame) error {
	out, err := r.process(r.ctx, f)
	if err != nil {
		if r.ctx.Err() != nil {
			return r.ctx.Err()
		}
		r.log.Warn("dropping frame", "checkpoint", f.Checkpoint.String(), "err", err)
		telemetry.FrameDropped()
		r.ack(f.Checkpoint)
		return nil
	}

	// One share per ack-aware sink plus one held until every push succeeded.
	// Registered before pushing: sinks may ack synchronously.
	r.mu.Lock()
	r.waiting[f.Checkpoint] = r.ackSinks + 1
	r.mu.Unlock()
	for _, s := range r.sinks {
		if err := s.Push(out); err != nil {
			r.mu.Lock()
			delete(r.waiting, f.Checkpoint)
			r.mu.Unlock()
			return err
		}
	}
	r.sinkAck(f.Checkpoint)
	telemetry.FrameProcessed()
	return nil
}

func (r *Runner) process(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if len(r.steps) == 0 {
		return f, nil
	}
	v, err := codec.Decode(f.Value)
	if err != nil {
		return nil, err
	}
	for _, s := range r.steps {
		if v, err = r.runStep(ctx, s, v); err != nil {
			return nil, err
		}
	}
	b, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return f.WithValue(b), nil
}

func (r *Runner) runStep(ctx context.Context, s step, v media.Value) (media.Value, error) {
	for attempt := 0; ; attempt++ {
		actx, cancel := ctx, context.CancelFunc(func() {})
		if s.timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		out, err := s.stage.Apply(actx, v)
		cancel()
		if err == nil {
			return out, nil
		}
		if attempt >= s.attempts || !stage.IsRetryable(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("stage %s: %w", s.stage.Name(), err)
		}
		r.log.Debug("retrying stage", "stage", s.stage.Name(), "attempt", attempt+1, "err", err)
		select {
		case <-time.After(s.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *Runner) Start(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	r.ctx = ctx
	go func() {
		if err := r.source.Run(ctx, r.pushFrame); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Error("source stopped", "err", err)
		}
	}()
	return nil
}

// Close releases the source, every sink and every stage holding a
// connection.
func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, s := range r.sinks {
		errs = append(errs, s.Close())
	}
	chain := make(stage.Chain, 0, len(r.steps))
	for _, s := range r.steps {
		chain = append(chain, s.stage)
	}
	errs = append(errs, chain.Close())
	return errors.Join(errs...)
}
