package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"augment/internal/media"
)

type applyFunc func(context.Context, media.Value) (media.Value, error)

func (f applyFunc) Apply(ctx context.Context, v media.Value) (media.Value, error) { return f(ctx, v) }

func startBufconn(t *testing.T, chain Applier) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(chain)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testBoxes(t *testing.T) *media.BoundingBoxes {
	t.Helper()
	b, err := media.NewBoundingBoxes([]float64{1, 2, 3, 4}, media.FormatXYXY, media.Size{Height: 10, Width: 10})
	require.NoError(t, err)
	return b
}

func TestApply_RoundTrip(t *testing.T) {
	c := startBufconn(t, applyFunc(func(_ context.Context, v media.Value) (media.Value, error) {
		b := v.(*media.BoundingBoxes)
		f := media.FormatXYWH
		return b.WrapLike([]float64{1, 2, 2, 2}, &f), nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := c.Apply(ctx, testBoxes(t))
	require.NoError(t, err)

	b, ok := out.(*media.BoundingBoxes)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, media.FormatXYWH, b.Format)
	assert.Equal(t, []float64{1, 2, 2, 2}, b.Data)
	assert.Equal(t, media.Size{Height: 10, Width: 10}, b.SpatialSize)
}

func TestApply_TransformErrorIsInvalidArgument(t *testing.T) {
	c := startBufconn(t, applyFunc(func(context.Context, media.Value) (media.Value, error) {
		return nil, errors.New("alpha not opaque")
	}))

	_, err := c.Apply(context.Background(), testBoxes(t))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, err.Error(), "alpha not opaque")
}

func TestApply_GarbageIsInvalidArgument(t *testing.T) {
	c := startBufconn(t, applyFunc(func(_ context.Context, v media.Value) (media.Value, error) { return v, nil }))

	out := new(wrapperspb.BytesValue)
	err := c.conn.Invoke(context.Background(), applyMethod, wrapperspb.Bytes([]byte{0xff, 0x00}), out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestApply_PanicIsInternalAndServerSurvives(t *testing.T) {
	var calls int
	c := startBufconn(t, applyFunc(func(_ context.Context, v media.Value) (media.Value, error) {
		calls++
		if calls == 1 {
			panic("slice bounds out of range")
		}
		return v, nil
	}))

	_, err := c.Apply(context.Background(), testBoxes(t))
	assert.Equal(t, codes.Internal, status.Code(err))

	_, err = c.Apply(context.Background(), testBoxes(t))
	require.NoError(t, err)
}

func TestHealth_Serving(t *testing.T) {
	c := startBufconn(t, applyFunc(func(_ context.Context, v media.Value) (media.Value, error) { return v, nil }))
	require.NoError(t, c.Health(context.Background()))
}
