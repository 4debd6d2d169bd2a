package api

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// freeEndpoint returns a tcp:// endpoint on a port that was free a moment ago.
func freeEndpoint(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return fmt.Sprintf("tcp://127.0.0.1:%d", port)
}

func startZmqServer(t *testing.T, auth *Authenticator) string {
	t.Helper()

	endpoint := freeEndpoint(t)
	server := NewZmqServer(NewArrowHandler(), auth, zerolog.Nop())
	require.NoError(t, server.Start(endpoint))
	t.Cleanup(server.Stop)
	return endpoint
}

func zmqRequest(t *testing.T, endpoint string, frames ...[]byte) FrameResponse {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := zmq4.NewReq(ctx)
	defer req.Close()

	require.NoError(t, req.Dial(endpoint))
	require.NoError(t, req.Send(zmq4.NewMsgFrom(frames...)))

	msg, err := req.Recv()
	require.NoError(t, err)
	require.Len(t, msg.Frames, 1)

	var resp FrameResponse
	require.NoError(t, json.Unmarshal(msg.Frames[0], &resp))
	return resp
}

func TestZmqServer_Convert(t *testing.T) {
	endpoint := startZmqServer(t, nil)

	resp := zmqRequest(t, endpoint, samplePayload(t))
	require.Empty(t, resp.Error)
	require.Equal(t, 3, resp.RowCount)
	require.Equal(t, sampleTable, resp.Table)
}

func TestZmqServer_ConversionError(t *testing.T) {
	endpoint := startZmqServer(t, nil)

	resp := zmqRequest(t, endpoint, unsupportedPayload(t))
	require.Contains(t, resp.Error, "unsupported type")

	// the socket keeps serving after an error reply
	resp = zmqRequest(t, endpoint, samplePayload(t))
	require.Empty(t, resp.Error)
}

func TestZmqServer_Auth(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, Token: "secret"})
	endpoint := startZmqServer(t, auth)

	resp := zmqRequest(t, endpoint, []byte("secret"), samplePayload(t))
	require.Empty(t, resp.Error)
	require.Equal(t, 3, resp.RowCount)

	resp = zmqRequest(t, endpoint, []byte("wrong"), samplePayload(t))
	require.Equal(t, ErrAuthTokenMismatch.Error(), resp.Error)

	resp = zmqRequest(t, endpoint, samplePayload(t))
	require.Contains(t, resp.Error, "unexpected message with 1 frames")
}

func TestZmqServer_StartTwice(t *testing.T) {
	server := NewZmqServer(nil, nil, zerolog.Nop())
	require.NoError(t, server.Start(freeEndpoint(t)))
	defer server.Stop()

	require.ErrorIs(t, server.Start(freeEndpoint(t)), ErrServerRunning)
}
