package timemap

import (
	"errors"
	"math"
	"testing"

	"github.com/bft-labs/beaconsync/internal/domain"
)

func TestBeaconToReceiverNs_Identity(t *testing.T) {
	// Under the identity fit a beacon microsecond maps to exactly a
	// thousand receiver nanoseconds.
	fit := domain.IdentityFit()

	tests := []struct {
		micros uint64
		want   int64
	}{
		{0, 0},
		{1, 1000},
		{1000, 1000000},
		{123456789, 123456789000},
	}

	for _, tt := range tests {
		got, err := BeaconToReceiverNs(fit, tt.micros)
		if err != nil {
			t.Fatalf("BeaconToReceiverNs(%d) error = %v", tt.micros, err)
		}
		if got != tt.want {
			t.Errorf("BeaconToReceiverNs(%d) = %d, want %d", tt.micros, got, tt.want)
		}
	}
}

func TestBeaconToReceiverNs_AffineAndRounding(t *testing.T) {
	fit := domain.Fit{Alpha: 100.4, Beta: 1.0}

	got, err := BeaconToReceiverNs(fit, 1)
	if err != nil {
		t.Fatalf("BeaconToReceiverNs() error = %v", err)
	}
	// 100.4 + 1000 rounds to 1100.
	if got != 1100 {
		t.Errorf("BeaconToReceiverNs() = %d, want 1100", got)
	}

	fit = domain.Fit{Alpha: 100.6, Beta: 1.0}
	got, err = BeaconToReceiverNs(fit, 1)
	if err != nil {
		t.Fatalf("BeaconToReceiverNs() error = %v", err)
	}
	if got != 1101 {
		t.Errorf("BeaconToReceiverNs() = %d, want 1101", got)
	}
}

func TestBeaconToReceiverNs_Overflow(t *testing.T) {
	tests := []struct {
		name string
		fit  domain.Fit
	}{
		{"positive overflow", domain.Fit{Alpha: 0, Beta: math.MaxFloat64}},
		{"negative overflow", domain.Fit{Alpha: -math.MaxFloat64, Beta: 1.0}},
		{"nan alpha", domain.Fit{Alpha: math.NaN(), Beta: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BeaconToReceiverNs(tt.fit, 1000)
			if !errors.Is(err, ErrMappingOverflow) {
				t.Errorf("BeaconToReceiverNs() error = %v, want ErrMappingOverflow", err)
			}
		})
	}
}

func TestBeaconToReceiverMs(t *testing.T) {
	fit := domain.IdentityFit()

	got, err := BeaconToReceiverMs(fit, 5000)
	if err != nil {
		t.Fatalf("BeaconToReceiverMs() error = %v", err)
	}
	if got != 5.0 {
		t.Errorf("BeaconToReceiverMs(5000) = %v, want 5.0", got)
	}

	_, err = BeaconToReceiverMs(domain.Fit{Alpha: 0, Beta: math.MaxFloat64}, 1000)
	if !errors.Is(err, ErrMappingOverflow) {
		t.Errorf("BeaconToReceiverMs() error = %v, want ErrMappingOverflow", err)
	}
}

func TestResidualMs(t *testing.T) {
	// receiverNanos = 1e6 + 2*beaconNanos
	fit := domain.Fit{Alpha: 1e6, Beta: 2.0}

	// A sample exactly on the line has zero residual.
	if got := ResidualMs(fit, 1000, uint64(1e6+2*1e6)); got != 0.0 {
		t.Errorf("ResidualMs() = %v, want 0.0", got)
	}

	// 3ms above the line.
	if got := ResidualMs(fit, 1000, uint64(1e6+2*1e6+3e6)); got != 3.0 {
		t.Errorf("ResidualMs() = %v, want 3.0", got)
	}

	// Residuals are absolute: 3ms below the line reads the same.
	if got := ResidualMs(fit, 1000, uint64(1e6+2*1e6-3e6)); got != 3.0 {
		t.Errorf("ResidualMs() = %v, want 3.0", got)
	}
}
