// Package serial implements a frame source for UART BLE bridges. The
// bridge forwards each beacon notification as one checksummed envelope on
// the serial line; this adapter re-synchronizes on the sync pair after any
// corruption and drops envelopes that fail their checksum.
package serial

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/bft-labs/beaconsync/internal/ports"
)

// readTimeout bounds each blocking port read so context cancellation is
// observed promptly.
const readTimeout = 500 * time.Millisecond

// Source implements ports.FrameSource over a serial port.
type Source struct {
	device string
	baud   int
	port   serial.Port
	logger ports.Logger

	badChecksums uint64
}

// NewSource creates a serial frame source for the given device and baud rate.
func NewSource(device string, baud int, logger ports.Logger) *Source {
	return &Source{device: device, baud: baud, logger: logger}
}

// Open opens the serial port.
func (s *Source) Open(ctx context.Context) error {
	mode := &serial.Mode{
		BaudRate: s.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(s.device, mode)
	if err != nil {
		return fmt.Errorf("serial open %s: %w", s.device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("serial read timeout: %w", err)
	}
	s.port = port
	s.logger.Info("serial source open",
		ports.String("device", s.device),
		ports.Int("baud", s.baud),
	)
	return nil
}

// Next reads envelopes until one carries a beacon payload with a valid
// checksum, and returns that payload. Returns io.EOF when the port is
// closed or the device disappears.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	for {
		payload, streamID, err := s.readEnvelope(ctx)
		if errors.Is(err, errBadEnvelope) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if streamID != StreamBeacon {
			continue
		}
		return payload, nil
	}
}

// readEnvelope scans for the sync pair, then reads the header, payload and
// checksum of one envelope.
func (s *Source) readEnvelope(ctx context.Context) ([]byte, uint8, error) {
	// Scan byte-by-byte until the sync pair lines up. This is what makes
	// the stream recover after a partial or corrupted envelope.
	var prev byte
	for {
		b, err := s.readByte(ctx)
		if err != nil {
			return nil, 0, err
		}
		if prev == Sync1 && b == Sync2 {
			break
		}
		prev = b
	}

	header := make([]byte, headerLen-2) // id + length, sync already consumed
	if err := s.readFull(ctx, header); err != nil {
		return nil, 0, err
	}
	streamID := header[0]
	length := binary.LittleEndian.Uint16(header[1:3])
	if length > maxPayload {
		s.logger.Warn("serial envelope length out of range", ports.Int("length", int(length)))
		return nil, 0, errBadEnvelope
	}

	rest := make([]byte, int(length)+checksumLen)
	if err := s.readFull(ctx, rest); err != nil {
		return nil, 0, err
	}

	envelope := make([]byte, 0, headerLen+int(length)+checksumLen)
	envelope = append(envelope, Sync1, Sync2)
	envelope = append(envelope, header...)
	envelope = append(envelope, rest...)
	if !VerifyChecksum(envelope) {
		s.badChecksums++
		s.logger.Warn("serial envelope checksum mismatch",
			ports.Uint64("total_bad", s.badChecksums),
		)
		return nil, 0, errBadEnvelope
	}

	return rest[:length], streamID, nil
}

// errBadEnvelope is internal to Next's retry loop; it never escapes.
var errBadEnvelope = fmt.Errorf("serial: bad envelope")

func (s *Source) readByte(ctx context.Context) (byte, error) {
	var b [1]byte
	if err := s.readFull(ctx, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// readFull fills buf from the port, treating zero-byte reads as timeouts
// (go.bug.st/serial returns n=0, err=nil on read timeout).
func (s *Source) readFull(ctx context.Context, buf []byte) error {
	filled := 0
	for filled < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.port.Read(buf[filled:])
		if err != nil {
			return io.EOF
		}
		filled += n
	}
	return nil
}

// Close closes the serial port; a blocked Next returns io.EOF.
func (s *Source) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
