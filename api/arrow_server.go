package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// TransportTCP labels requests served by ArrowServer.
const TransportTCP = "tcp"

// ErrServerRunning is returned when starting a server twice.
var ErrServerRunning = errors.New("server is already running")

// ArrowServer is a TCP server that converts length-prefixed Arrow IPC
// messages and answers each with a JSON FrameResponse.
type ArrowServer struct {
	listener net.Listener
	handler  *ArrowHandler
	auth     *Authenticator
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewArrowServer creates a new ArrowServer. auth may be nil.
func NewArrowServer(handler *ArrowHandler, auth *Authenticator, logger zerolog.Logger) *ArrowServer {
	if handler == nil {
		handler = NewArrowHandler()
	}
	return &ArrowServer{
		handler: handler,
		auth:    auth,
		logger:  logger.With().Str("component", "arrow_server").Logger(),
	}
}

// Start starts the server and blocks until it is stopped.
func (s *ArrowServer) Start(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}
	defer s.wg.Done()

	s.acceptLoop(lis)
	return nil
}

// StartAsync starts the server in a background goroutine.
func (s *ArrowServer) StartAsync(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}

	go func() {
		defer s.wg.Done()
		s.acceptLoop(lis)
	}()
	return nil
}

// listen binds address and registers the accept loop in the wait group
// before any connection can be accepted.
func (s *ArrowServer) listen(address string) (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrServerRunning
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.listener = lis
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true
	// released when the accept loop returns
	s.wg.Add(1)

	s.logger.Info().Str("address", lis.Addr().String()).Bool("auth", s.auth.IsEnabled()).Msg("arrow server listening")
	return lis, nil
}

// Addr returns the bound address, or nil before Start.
func (s *ArrowServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *ArrowServer) acceptLoop(lis net.Listener) {
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Stop closes the listener and waits for open connections to finish their
// current request.
func (s *ArrowServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	if err := s.listener.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("listener close")
	}
	s.listener = nil
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info().Msg("arrow server stopped")
}

// handleConnection serves one client until it disconnects.
func (s *ArrowServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	// unblock reads on shutdown
	stop := context.AfterFunc(s.ctx, func() { _ = conn.Close() })
	defer stop()

	log := s.logger.With().Str("remote", conn.RemoteAddr().String()).Logger()

	if s.auth.IsEnabled() {
		if err := s.authenticate(conn); err != nil {
			log.Warn().Err(err).Msg("authentication failed")
			s.handler.metrics.RecordRequest(TransportTCP, StatusRejected)
			return
		}
	}

	for {
		payload, err := ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && s.ctx.Err() == nil {
				log.Debug().Err(err).Msg("read failed")
			}
			return
		}

		response, err := s.handler.ProcessBatch(s.ctx, TransportTCP, payload)
		if err != nil {
			log.Warn().Err(err).Msg("no response produced")
			return
		}

		if err := WriteMessage(conn, response); err != nil {
			log.Debug().Err(err).Msg("write failed")
			return
		}
	}
}

// authenticate runs the handshake: one AuthMessage in, one AuthResponse out.
func (s *ArrowServer) authenticate(conn net.Conn) error {
	payload, err := ReadMessage(conn)
	if err != nil {
		return err
	}

	var msg AuthMessage
	authErr := json.Unmarshal(payload, &msg)
	if authErr != nil || msg.Type != "auth" {
		authErr = ErrAuthTokenInvalid
	} else {
		authErr = s.auth.ValidateToken(msg.Token)
	}

	resp := AuthResponse{Success: authErr == nil}
	if authErr != nil {
		resp.Error = authErr.Error()
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := WriteMessage(conn, out); err != nil {
		return err
	}
	return authErr
}
