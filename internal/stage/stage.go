// Package stage adapts transforms, local or remote, to the pipeline's
// context-aware Apply contract.
package stage

import (
	"context"
	"errors"
	"io"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"augment/internal/media"
	"augment/internal/telemetry"
	"augment/internal/transform"
	"augment/internal/transport"
)

// Stage is one step of a pipeline.
type Stage interface {
	Name() string
	Apply(ctx context.Context, v media.Value) (media.Value, error)
}

// Chain applies its stages in order. It satisfies transport.Applier.
type Chain []Stage

func (c Chain) Apply(ctx context.Context, v media.Value) (media.Value, error) {
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.Apply(ctx, v)
		if err != nil {
			return nil, err
		}
		v = out
	}
	return v, nil
}

// Close closes every stage holding resources.
func (c Chain) Close() error {
	var errs []error
	for _, s := range c {
		if cl, ok := s.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}

// Local runs a transform in process and records its metrics.
type Local struct {
	name string
	t    transform.Transform
}

func NewLocal(name string, t transform.Transform) *Local {
	return &Local{name: name, t: t}
}

func (l *Local) Name() string { return l.name }

func (l *Local) Apply(_ context.Context, v media.Value) (media.Value, error) {
	if !l.t.Applies(v) {
		return v, nil
	}
	start := time.Now()
	out, err := transform.Run(l.t, v)
	telemetry.ObserveTransform(l.t.Name(), v.Kind(), time.Since(start), err)
	return out, err
}

// Remote forwards values to a Transformer service over gRPC.
type Remote struct {
	name string
	c    *transport.Client
}

func NewRemote(name string, c *transport.Client) *Remote {
	return &Remote{name: name, c: c}
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) Apply(ctx context.Context, v media.Value) (media.Value, error) {
	return r.c.Apply(ctx, v)
}

func (r *Remote) Close() error { return r.c.Close() }

// IsRetryable reports whether err is transient: a deadline, or a gRPC status
// signalling an unavailable or overloaded peer. Transform errors are
// deterministic and never retried.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}
