package communityhub

import (
	"testing"
	"time"
)

func TestLoginLimiterAllowsUpToMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d blocked, want allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("attempt 4 allowed, want blocked")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	if !l.Allow("10.0.0.1") {
		t.Fatal("first attempt blocked")
	}
	if l.Allow("10.0.0.1") {
		t.Error("second attempt from same IP allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("attempt from different IP blocked")
	}
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	l := NewLoginLimiter(1, 10*time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatal("first attempt blocked")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Error("attempt after window expiry blocked")
	}
}
