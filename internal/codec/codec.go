// Package codec decodes the beacon wire frame into a typed event.
//
// Wire layout (little-endian), produced by the beacon firmware once per
// notification:
//
//	offset 0..3  : sequence     (u32)
//	offset 4..11 : beaconMicros (u64)  microseconds since beacon boot
//
// Trailing bytes are transport framing and are ignored here.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bft-labs/beaconsync/internal/domain"
)

// FrameLen is the minimum frame length: 4-byte sequence + 8-byte timestamp.
const FrameLen = 12

// ErrFrameTooShort is returned for frames below FrameLen. Short frames are
// dropped by the caller; they never abort a session.
var ErrFrameTooShort = errors.New("codec: frame too short")

// Decode parses a raw frame into an Event. The returned event carries no
// arrival stamp: ReceiverNanos is not on the wire and must be filled in by
// the caller from its monotonic clock at the moment of receipt.
func Decode(b []byte) (domain.Event, error) {
	if len(b) < FrameLen {
		return domain.Event{}, fmt.Errorf("%w: got %d bytes, need %d", ErrFrameTooShort, len(b), FrameLen)
	}
	return domain.Event{
		Sequence:     binary.LittleEndian.Uint32(b[0:4]),
		BeaconMicros: binary.LittleEndian.Uint64(b[4:12]),
	}, nil
}
