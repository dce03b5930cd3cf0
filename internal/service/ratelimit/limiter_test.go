package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("request past burst allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("keys must not share a bucket")
	}

	now = now.Add(500 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatal("expected one token after 0.5s at 2 rps")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("only one token should have refilled")
	}
}
