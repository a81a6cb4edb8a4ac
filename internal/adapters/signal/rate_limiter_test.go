package signal

import (
	"testing"
	"time"
)

func TestCallRateLimiterWindow(t *testing.T) {
	rl := NewCallRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("u1") {
		t.Error("fourth attempt inside the window should be throttled")
	}

	// Independent per user.
	if !rl.Allow("u2") {
		t.Error("another user must not be throttled by u1's attempts")
	}

	// Attempts expire once the window slides past them.
	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Error("attempt after the window elapsed should be allowed")
	}
}

func TestCallRateLimiterDisabled(t *testing.T) {
	rl := NewCallRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("u1") {
			t.Fatal("limit <= 0 must disable throttling")
		}
	}
}
