package ports

import "context"

// FrameSource delivers raw beacon frames from a transport. The transport's
// connection lifecycle (BLE discovery, pairing, bridge protocol) is the
// adapter's concern; the application layer only sees a stream of byte
// buffers, one per beacon notification.
type FrameSource interface {
	// Open establishes the transport connection.
	Open(ctx context.Context) error

	// Next blocks until the next raw frame is available and returns it.
	// Returns io.EOF when the transport disconnects or the stream ends;
	// the caller starts a new session before reopening. The returned
	// buffer is owned by the caller.
	Next(ctx context.Context) ([]byte, error)

	// Close releases all resources held by the source.
	Close() error
}
