package stage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"augment/internal/kernel"
	"augment/internal/media"
	"augment/internal/transform"
	"augment/internal/transport"
)

func gray(t *testing.T) Stage {
	t.Helper()
	tr, err := transform.NewConvertColorSpace(media.ColorSpaceGray)
	require.NoError(t, err)
	return NewLocal("gray", tr)
}

func rgbImage(t *testing.T) *media.Image {
	t.Helper()
	img, err := media.NewImage([]int{3, 1, 2}, media.Uint8, []float64{10, 20, 10, 20, 10, 20}, media.ColorSpaceRGB)
	require.NoError(t, err)
	return img
}

func TestLocal_SkipsInapplicable(t *testing.T) {
	b, err := media.NewBoundingBoxes([]float64{0, 0, 1, 1}, media.FormatXYXY, media.Size{Height: 2, Width: 2})
	require.NoError(t, err)

	out, err := gray(t).Apply(context.Background(), b)
	require.NoError(t, err)
	assert.Same(t, b, out)
}

func TestChain_AppliesInOrder(t *testing.T) {
	toFloat, err := transform.NewConvertImageDtype(media.Float32)
	require.NoError(t, err)
	chain := Chain{gray(t), NewLocal("float", toFloat)}

	out, err := chain.Apply(context.Background(), rgbImage(t))
	require.NoError(t, err)
	img := out.(*media.Image)
	assert.Equal(t, media.ColorSpaceGray, img.ColorSpace)
	assert.Equal(t, media.Float32, img.DType)
	assert.Equal(t, []int{1, 1, 2}, img.Shape)
}

func TestChain_StopsOnError(t *testing.T) {
	tr, err := transform.NewConvertColorSpace(media.ColorSpaceRGB)
	require.NoError(t, err)
	tensor, err := media.NewTensor([]int{1, 1, 1}, media.Uint8, []float64{5})
	require.NoError(t, err)

	_, err = Chain{NewLocal("rgb", tr), gray(t)}.Apply(context.Background(), tensor)
	require.ErrorIs(t, err, kernel.ErrMissingColorSpace)
}

func TestRemote_ThroughTransport(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := transport.NewServer(Chain{gray(t)})
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	cli, err := transport.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	r := NewRemote("remote-gray", cli)
	defer r.Close()

	out, err := r.Apply(context.Background(), rgbImage(t))
	require.NoError(t, err)
	assert.Equal(t, media.ColorSpaceGray, out.(*media.Image).ColorSpace)
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{context.DeadlineExceeded, true},
		{fmt.Errorf("stage: %w", context.DeadlineExceeded), true},
		{status.Error(codes.Unavailable, "down"), true},
		{status.Error(codes.DeadlineExceeded, "slow"), true},
		{status.Error(codes.InvalidArgument, "bad"), false},
		{kernel.ErrAlphaNotOpaque, false},
		{errors.New("boom"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsRetryable(c.err), "%v", c.err)
	}
}
