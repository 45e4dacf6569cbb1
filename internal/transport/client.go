package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"augment/internal/codec"
	"augment/internal/media"
)

// Client calls a remote Transformer service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects lazily to target; without options it uses plaintext.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Apply(ctx context.Context, v media.Value) (media.Value, error) {
	b, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}
	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(ctx, applyMethod, wrapperspb.Bytes(b), out); err != nil {
		return nil, err
	}
	return codec.Decode(out.GetValue())
}

// Health reports an error unless the remote Transformer service is SERVING.
func (c *Client) Health(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("transport: %s is %s", ServiceName, resp.GetStatus())
	}
	return nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
