package app

import (
	"testing"
	"time"
)

func TestReactionLimiterWindow(t *testing.T) {
	rl := NewReactionLimiter(2, time.Minute)

	if !rl.Allow("p1") || !rl.Allow("p1") {
		t.Fatal("first two reactions should pass")
	}
	if rl.Allow("p1") {
		t.Error("third reaction inside the window should be blocked")
	}
	if !rl.Allow("p2") {
		t.Error("limits are per participant")
	}
}

func TestReactionLimiterDisabled(t *testing.T) {
	rl := NewReactionLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow("p1") {
			t.Fatal("disabled limiter should always allow")
		}
	}
}

func TestReactionLimiterForget(t *testing.T) {
	rl := NewReactionLimiter(1, time.Minute)
	rl.Allow("p1")
	if rl.Allow("p1") {
		t.Fatal("window should be exhausted")
	}
	rl.Forget("p1")
	if !rl.Allow("p1") {
		t.Error("Forget should reset the participant's window")
	}
}
