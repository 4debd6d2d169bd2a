package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// GRPCClient calls FrameService. It is safe for concurrent use.
type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

// DialGRPC creates a client for target. token is sent with every Convert
// call when not empty. The connection is established lazily.
func DialGRPC(target, token string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxMessageSize),
			grpc.MaxCallSendMsgSize(MaxMessageSize),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", target, err)
	}
	return &GRPCClient{conn: conn, token: token}, nil
}

// Convert sends an Arrow IPC payload and decodes the reply, like
// Client.Convert.
func (c *GRPCClient) Convert(ctx context.Context, payload []byte) (*FrameResponse, error) {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, AuthMetadataKey, c.token)
	}

	var raw []byte
	if err := c.conn.Invoke(ctx, ConvertMethod, payload, &raw, grpc.CallContentSubtype(GRPCCodecName)); err != nil {
		return nil, err
	}
	return decodeFrameResponse(raw)
}

// Health returns the serving status of FrameService.
func (c *GRPCClient) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: FrameServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Close closes the connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
