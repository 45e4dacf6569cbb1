package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"augment/internal/codec"
	"augment/internal/logging"
	"augment/internal/media"
)

// Applier is whatever the service runs on each request, typically a
// stage.Chain.
type Applier interface {
	Apply(ctx context.Context, v media.Value) (media.Value, error)
}

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// StartServer listens on port and registers the Transformer service backed
// by chain. Serve must be called to accept connections.
func StartServer(port int, chain Applier) (*Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	s := NewServer(chain)
	s.lis = lis
	return s, nil
}

// NewServer builds a server without a listener; see Serve.
func NewServer(chain Applier, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
	}
	Register(s.grpc, chain)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve accepts connections on the listener from StartServer, or on lis if
// given.
func (s *Server) Serve(lis ...net.Listener) error {
	l := s.lis
	if len(lis) > 0 {
		l = lis[0]
	}
	if l == nil {
		return fmt.Errorf("transport: no listener")
	}
	return s.grpc.Serve(l)
}

func (s *Server) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// Register adds the Transformer service to any gRPC registrar.
func Register(r grpc.ServiceRegistrar, chain Applier) {
	r.RegisterService(&serviceDesc, &service{chain: chain, log: logging.For("transport")})
}

type service struct {
	chain Applier
	log   *slog.Logger
}

func (s *service) Apply(ctx context.Context, in *wrapperspb.BytesValue) (_ *wrapperspb.BytesValue, err error) {
	id := uuid.NewString()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("transform panicked", "request_id", id, "panic", r)
			err = status.Errorf(codes.Internal, "transform panicked: %v", r)
		}
	}()

	v, err := codec.Decode(in.GetValue())
	if err != nil {
		s.log.Warn("rejecting undecodable value", "request_id", id, "err", err)
		return nil, status.Errorf(codes.InvalidArgument, "decode: %v", err)
	}
	out, err := s.chain.Apply(ctx, v)
	if err != nil {
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		s.log.Warn("transform failed", "request_id", id, "kind", v.Kind().String(), "err", err)
		return nil, status.Errorf(codes.InvalidArgument, "transform: %v", err)
	}
	b, err := codec.Encode(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	s.log.Debug("applied", "request_id", id, "kind", v.Kind().String(), "took", time.Since(start))
	return wrapperspb.Bytes(b), nil
}
