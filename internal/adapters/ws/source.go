// Package ws implements a frame source for bridges that expose the beacon
// stream over a websocket. Each binary message is one frame; text messages
// are bridge chatter and are ignored.
package ws

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/beaconsync/internal/ports"
)

const handshakeTimeout = 10 * time.Second

// Source implements ports.FrameSource over a websocket client connection.
type Source struct {
	url    string
	conn   *websocket.Conn
	logger ports.Logger
}

// NewSource creates a websocket frame source for the given ws:// or wss:// URL.
func NewSource(url string, logger ports.Logger) *Source {
	return &Source{url: url, logger: logger}
}

// Open dials the bridge.
func (s *Source) Open(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("ws dial %s: %w", s.url, err)
	}
	s.conn = conn
	s.logger.Info("ws source connected", ports.String("url", s.url))
	return nil
}

// Next returns the next binary message. Returns io.EOF when the peer
// closes the connection or the transport drops.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			// Any read failure on a websocket is terminal for the
			// connection; the agent reconnects through Open.
			return nil, io.EOF
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

// Close closes the connection; a blocked Next returns io.EOF.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
