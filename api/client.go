package api

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/goccy/go-json"
)

// Client talks to an ArrowServer over one TCP connection. It is not safe
// for concurrent use.
type Client struct {
	conn net.Conn
}

// Dial connects to an ArrowServer.
func Dial(address string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return &Client{conn: conn}, nil
}

// Authenticate performs the auth handshake. It must be the first call on
// a server with auth enabled.
func (c *Client) Authenticate(token string) error {
	out, err := json.Marshal(AuthMessage{Type: "auth", Token: token})
	if err != nil {
		return err
	}
	if err := WriteMessage(c.conn, out); err != nil {
		return err
	}

	raw, err := ReadMessage(c.conn)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	var resp AuthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("invalid auth response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrAuthTokenMismatch, resp.Error)
	}
	return nil
}

// Convert sends an Arrow IPC payload and decodes the reply. A reply that
// carries an error is returned together with that error.
func (c *Client) Convert(payload []byte) (*FrameResponse, error) {
	if err := WriteMessage(c.conn, payload); err != nil {
		return nil, err
	}

	raw, err := ReadMessage(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return decodeFrameResponse(raw)
}

// decodeFrameResponse decodes a reply. A reply that carries an error is
// returned together with that error.
func decodeFrameResponse(raw []byte) (*FrameResponse, error) {
	var resp FrameResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if resp.Error != "" {
		return &resp, errors.New(resp.Error)
	}
	return &resp, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
