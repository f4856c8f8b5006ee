package serial

import "encoding/binary"

// UART bridges cannot rely on datagram boundaries, so frames travel in a
// small envelope: two sync bytes, a stream id, a little-endian u16 payload
// length, the payload, and a two-byte Fletcher checksum computed over
// everything between the sync bytes and the checksum itself.
const (
	Sync1 = 0xB5
	Sync2 = 0x62

	// StreamBeacon marks beacon notification payloads; other stream ids
	// are skipped so the bridge can multiplex its own control traffic.
	StreamBeacon = 0x01

	headerLen   = 5 // sync1 sync2 id len(2)
	checksumLen = 2

	// maxPayload bounds a single envelope; real beacon payloads are
	// 12 bytes, so anything near the cap means a corrupt length field.
	maxPayload = 512
)

// Checksum computes the Fletcher-8 checksum over data (excluding sync bytes).
func Checksum(data []byte) (ckA, ckB uint8) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}

// EncodeEnvelope wraps a payload in the bridge envelope. Used by tests and
// by tooling that replays captures into the serial bridge.
func EncodeEnvelope(streamID uint8, payload []byte) []byte {
	buf := make([]byte, 0, headerLen+len(payload)+checksumLen)
	buf = append(buf, Sync1, Sync2, streamID)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)
	ckA, ckB := Checksum(buf[2:])
	return append(buf, ckA, ckB)
}

// VerifyChecksum checks a complete envelope (sync through checksum).
func VerifyChecksum(envelope []byte) bool {
	if len(envelope) < headerLen+checksumLen {
		return false
	}
	ckA, ckB := Checksum(envelope[2 : len(envelope)-checksumLen])
	return envelope[len(envelope)-2] == ckA && envelope[len(envelope)-1] == ckB
}
