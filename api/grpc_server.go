package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// TransportGRPC labels requests served by GRPCServer.
	TransportGRPC = "grpc"

	// FrameServiceName is the gRPC service carrying conversions. It is also
	// the service name reported by the standard health service.
	FrameServiceName = "hierachain.frame.v1.FrameService"

	// ConvertMethod is the full name of the unary conversion method.
	ConvertMethod = "/" + FrameServiceName + "/Convert"

	// GRPCCodecName is the content-subtype of Convert calls. Request and
	// reply bodies are raw bytes: an Arrow IPC stream in, FrameResponse
	// JSON out.
	GRPCCodecName = "arrowipc"

	// AuthMetadataKey carries the token on authenticated calls.
	AuthMetadataKey = "x-auth-token"
)

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// rawCodec passes message bodies through untouched.
type rawCodec struct{}

func (rawCodec) Name() string { return GRPCCodecName }

func (rawCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case []byte:
		return m, nil
	case *[]byte:
		return *m, nil
	default:
		return nil, fmt.Errorf("%s codec: cannot marshal %T", GRPCCodecName, v)
	}
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("%s codec: cannot unmarshal into %T", GRPCCodecName, v)
	}
	*dst = append((*dst)[:0], data...)
	return nil
}

// FrameServiceServer is the server side of FrameService.
type FrameServiceServer interface {
	Convert(ctx context.Context, payload []byte) ([]byte, error)
}

var frameServiceDesc = grpc.ServiceDesc{
	ServiceName: FrameServiceName,
	HandlerType: (*FrameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Convert", Handler: convertHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hierachain/frame/v1/frame.proto",
}

func convertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	var payload []byte
	if err := dec(&payload); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrameServiceServer).Convert(ctx, payload)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConvertMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FrameServiceServer).Convert(ctx, *req.(*[]byte))
	}
	return interceptor(ctx, &payload, info, handler)
}

// GRPCServer serves FrameService and the standard gRPC health service.
type GRPCServer struct {
	handler *ArrowHandler
	auth    *Authenticator
	logger  zerolog.Logger

	// Server state
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	startTime  time.Time

	// Control
	running bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// NewGRPCServer creates a GRPCServer. auth may be nil.
func NewGRPCServer(handler *ArrowHandler, auth *Authenticator, logger zerolog.Logger) *GRPCServer {
	if handler == nil {
		handler = NewArrowHandler()
	}
	return &GRPCServer{
		handler: handler,
		auth:    auth,
		logger:  logger.With().Str("component", "grpc_server").Logger(),
	}
}

// Start starts the gRPC server and blocks until it is stopped.
func (s *GRPCServer) Start(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}
	defer s.wg.Done()

	return s.serve(lis)
}

// StartAsync starts the gRPC server asynchronously and returns immediately.
func (s *GRPCServer) StartAsync(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}

	go func() {
		defer s.wg.Done()
		if err := s.serve(lis); err != nil {
			s.logger.Error().Err(err).Msg("grpc serve failed")
		}
	}()
	return nil
}

func (s *GRPCServer) listen(address string) (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrServerRunning
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.grpcServer = grpc.NewServer(
		grpc.MaxRecvMsgSize(MaxMessageSize),
		grpc.MaxSendMsgSize(MaxMessageSize),
		grpc.UnaryInterceptor(s.authInterceptor),
	)
	s.grpcServer.RegisterService(&frameServiceDesc, s)

	s.health = health.NewServer()
	s.health.SetServingStatus(FrameServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	s.listener = lis
	s.startTime = time.Now()
	s.running = true
	s.wg.Add(1)

	s.logger.Info().Str("address", lis.Addr().String()).Bool("auth", s.auth.IsEnabled()).Msg("grpc server listening")
	return lis, nil
}

func (s *GRPCServer) serve(lis net.Listener) error {
	s.mu.RLock()
	srv := s.grpcServer
	s.mu.RUnlock()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil when not running.
func (s *GRPCServer) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Uptime reports how long the server has been running.
func (s *GRPCServer) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}

// Stop marks the service NOT_SERVING, drains in-flight calls and waits for
// Serve to return.
func (s *GRPCServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.listener = nil
	srv, hs := s.grpcServer, s.health
	s.mu.Unlock()

	hs.Shutdown()
	srv.GracefulStop()
	s.wg.Wait()
	s.logger.Info().Msg("grpc server stopped")
}

// Convert implements FrameServiceServer.
func (s *GRPCServer) Convert(ctx context.Context, payload []byte) ([]byte, error) {
	reply, err := s.handler.ProcessBatch(ctx, TransportGRPC, payload)
	if err != nil {
		return nil, status.FromContextError(err).Err()
	}
	return reply, nil
}

// authInterceptor checks the token of Convert calls. Health checks stay
// open.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != ConvertMethod || !s.auth.IsEnabled() {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(AuthMetadataKey); len(values) > 0 {
			token = values[0]
		}
	}

	if err := s.auth.ValidateToken(token); err != nil {
		s.handler.metrics.RecordRequest(TransportGRPC, StatusRejected)
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	return handler(ctx, req)
}
