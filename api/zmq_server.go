package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// TransportZMQ labels requests served by ZmqServer.
const TransportZMQ = "zmq"

// ZmqServer answers conversion requests on a ZeroMQ REP socket.
//
// A request is a single-frame message holding the IPC payload, or
// [token, payload] when auth is enabled. Every request gets exactly one
// reply, as REP requires.
type ZmqServer struct {
	handler *ArrowHandler
	auth    *Authenticator
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	socket zmq4.Socket

	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewZmqServer creates a ZmqServer. auth may be nil.
func NewZmqServer(handler *ArrowHandler, auth *Authenticator, logger zerolog.Logger) *ZmqServer {
	if handler == nil {
		handler = NewArrowHandler()
	}
	return &ZmqServer{
		handler: handler,
		auth:    auth,
		logger:  logger.With().Str("component", "zmq_server").Logger(),
	}
}

// Start binds endpoint (e.g. "tcp://127.0.0.1:5555") and serves in the
// background.
func (s *ZmqServer) Start(endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerRunning
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.socket = zmq4.NewRep(s.ctx)

	if err := s.socket.Listen(endpoint); err != nil {
		s.cancel()
		return fmt.Errorf("failed to bind %s: %w", endpoint, err)
	}

	s.running = true
	s.wg.Add(1)
	go s.serveLoop()

	s.logger.Info().Str("endpoint", endpoint).Bool("auth", s.auth.IsEnabled()).Msg("zmq server listening")
	return nil
}

// Stop closes the socket and waits for the serve loop to exit.
func (s *ZmqServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	if err := s.socket.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("socket close")
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info().Msg("zmq server stopped")
}

func (s *ZmqServer) serveLoop() {
	defer s.wg.Done()

	for {
		msg, err := s.socket.Recv()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			s.logger.Debug().Err(err).Msg("recv failed")
			continue
		}

		reply := s.handle(msg.Frames)
		if err := s.socket.Send(zmq4.NewMsg(reply)); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Warn().Err(err).Msg("send failed")
		}
	}
}

// handle always produces a reply so the REP state machine stays in step.
func (s *ZmqServer) handle(frames [][]byte) []byte {
	var token string
	var payload []byte

	switch {
	case s.auth.IsEnabled() && len(frames) == 2:
		token, payload = string(frames[0]), frames[1]
	case !s.auth.IsEnabled() && len(frames) == 1:
		payload = frames[0]
	default:
		s.handler.metrics.RecordRequest(TransportZMQ, StatusRejected)
		return s.rejection(fmt.Errorf("unexpected message with %d frames", len(frames)))
	}

	if err := s.auth.ValidateToken(token); err != nil {
		s.handler.metrics.RecordRequest(TransportZMQ, StatusRejected)
		return s.rejection(err)
	}

	reply, err := s.handler.ProcessBatch(s.ctx, TransportZMQ, payload)
	if err != nil {
		return s.rejection(err)
	}
	return reply
}

func (s *ZmqServer) rejection(err error) []byte {
	out, mErr := json.Marshal(&FrameResponse{Error: err.Error()})
	if mErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return out
}
