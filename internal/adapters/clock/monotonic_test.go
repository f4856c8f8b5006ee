package clock

import (
	"testing"
	"time"
)

func TestMonotonic_NeverDecreases(t *testing.T) {
	c := NewMonotonic()

	prev := c.Nanos()
	for i := 0; i < 100; i++ {
		cur := c.Nanos()
		if cur < prev {
			t.Fatalf("Nanos() went backwards: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

func TestMonotonic_Advances(t *testing.T) {
	c := NewMonotonic()

	start := c.Nanos()
	time.Sleep(5 * time.Millisecond)
	end := c.Nanos()

	if end-start < uint64(4*time.Millisecond) {
		t.Errorf("advanced %dns over a 5ms sleep", end-start)
	}
}
