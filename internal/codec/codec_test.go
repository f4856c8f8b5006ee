package codec

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		frame        []byte
		wantSeq      uint32
		wantMicros   uint64
		wantShortErr bool
	}{
		{
			name:       "minimal frame",
			frame:      []byte{0x01, 0x00, 0x00, 0x00, 0xE8, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			wantSeq:    1,
			wantMicros: 1000,
		},
		{
			name:       "trailing bytes ignored",
			frame:      []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xDE, 0xAD, 0xBE, 0xEF},
			wantSeq:    0xFFFFFFFF,
			wantMicros: 1,
		},
		{
			name:       "max timestamp",
			frame:      []byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			wantSeq:    0,
			wantMicros: ^uint64(0),
		},
		{
			name:         "eleven bytes",
			frame:        []byte{0x01, 0x00, 0x00, 0x00, 0xE8, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00},
			wantShortErr: true,
		},
		{
			name:         "empty frame",
			frame:        nil,
			wantShortErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.frame)

			if tt.wantShortErr {
				if !errors.Is(err, ErrFrameTooShort) {
					t.Fatalf("Decode() error = %v, want ErrFrameTooShort", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if ev.Sequence != tt.wantSeq {
				t.Errorf("Sequence = %d, want %d", ev.Sequence, tt.wantSeq)
			}
			if ev.BeaconMicros != tt.wantMicros {
				t.Errorf("BeaconMicros = %d, want %d", ev.BeaconMicros, tt.wantMicros)
			}
			if ev.ReceiverNanos != 0 {
				t.Errorf("ReceiverNanos = %d, want 0 (stamped by caller)", ev.ReceiverNanos)
			}
		})
	}
}
