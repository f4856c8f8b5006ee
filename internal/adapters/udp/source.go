// Package udp implements a frame source for bridges that relay beacon
// notifications as UDP datagrams, one datagram per frame.
package udp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bft-labs/beaconsync/internal/ports"
)

// readDeadline bounds each blocking read so context cancellation is
// observed promptly.
const readDeadline = 500 * time.Millisecond

// maxDatagram is larger than any frame the bridge emits; oversized
// datagrams are truncated by the kernel, undersized ones are rejected by
// the codec downstream.
const maxDatagram = 2048

// Source implements ports.FrameSource over a UDP listener.
type Source struct {
	listen string
	conn   net.PacketConn
	logger ports.Logger
}

// NewSource creates a UDP frame source listening on the given address.
func NewSource(listen string, logger ports.Logger) *Source {
	return &Source{listen: listen, logger: logger}
}

// Open binds the UDP listener.
func (s *Source) Open(ctx context.Context) error {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", s.listen)
	if err != nil {
		return fmt.Errorf("udp listen %s: %w", s.listen, err)
	}
	s.conn = conn
	s.logger.Info("udp source listening", ports.String("addr", conn.LocalAddr().String()))
	return nil
}

// Next returns the payload of the next datagram. Returns io.EOF once the
// listener is closed.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	buf := make([]byte, maxDatagram)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(readDeadline))
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("udp read: %w", err)
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		return frame, nil
	}
}

// Close shuts down the listener; a blocked Next returns io.EOF.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
