package server

import (
	"testing"
	"time"

	"github.com/lawnchairsociety/mazeforge/internal/config"
)

// testClock is a manually advanced clock for the limiter.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, strikes, lockout, maxLockout int) (*BadRequestLimiter, *testClock) {
	t.Helper()
	l := NewBadRequestLimiter(config.RateLimitConfig{
		MaxBadRequests:    strikes,
		LockoutSeconds:    lockout,
		MaxLockoutSeconds: maxLockout,
	})
	t.Cleanup(l.Stop)

	clock := &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l.now = clock.now
	return l, clock
}

func TestBadRequestLimiterLocksOut(t *testing.T) {
	l, clock := newTestLimiter(t, 3, 10, 60)
	ip := "192.168.1.1"

	for i := 1; i < 3; i++ {
		if locked, _ := l.Strike(ip); locked {
			t.Fatalf("strike %d should not lock", i)
		}
	}
	locked, d := l.Strike(ip)
	if !locked || d != 10*time.Second {
		t.Fatalf("third strike = %v, %v; want locked for 10s", locked, d)
	}
	if l.Strikes(ip) != 0 {
		t.Errorf("Strikes() after lockout = %d, want 0", l.Strikes(ip))
	}

	clock.advance(4 * time.Second)
	if locked, left := l.Locked(ip); !locked || left != 6*time.Second {
		t.Errorf("Locked() = %v, %v; want true, 6s", locked, left)
	}
	if locked, _ := l.Strike(ip); !locked {
		t.Error("strikes during a lockout should report locked")
	}

	clock.advance(7 * time.Second)
	if locked, _ := l.Locked(ip); locked {
		t.Error("lockout should have expired")
	}
}

func TestBadRequestLimiterBackoff(t *testing.T) {
	l, clock := newTestLimiter(t, 1, 10, 35)
	ip := "10.0.0.7"

	want := []time.Duration{10 * time.Second, 20 * time.Second, 35 * time.Second, 35 * time.Second}
	for i, w := range want {
		locked, d := l.Strike(ip)
		if !locked || d != w {
			t.Errorf("lockout %d = %v, %v; want %v", i+1, locked, d, w)
		}
		clock.advance(d + time.Second)
	}
}

func TestBadRequestLimiterForgive(t *testing.T) {
	l, _ := newTestLimiter(t, 2, 10, 60)
	ip := "192.168.1.1"

	l.Strike(ip)
	l.Strike(ip)
	if locked, _ := l.Locked(ip); !locked {
		t.Fatal("ip should be locked")
	}

	l.Forgive(ip)
	if locked, _ := l.Locked(ip); locked {
		t.Error("Forgive should lift the lockout")
	}
	if locked, _ := l.Strike(ip); locked {
		t.Error("first strike after Forgive should not lock")
	}
}

func TestBadRequestLimiterIPsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 2, 10, 60)

	l.Strike("10.0.0.1")
	l.Strike("10.0.0.1")
	l.Strike("10.0.0.2")

	if locked, _ := l.Locked("10.0.0.2"); locked {
		t.Error("10.0.0.2 should not be locked")
	}
	if n := l.Strikes("10.0.0.2"); n != 1 {
		t.Errorf("Strikes(10.0.0.2) = %d, want 1", n)
	}
	if n := l.Strikes("10.0.0.3"); n != 0 {
		t.Errorf("Strikes for an unknown ip = %d, want 0", n)
	}
}

func TestBadRequestLimiterCleanup(t *testing.T) {
	l, clock := newTestLimiter(t, 1, 10, 60)

	l.Strike("10.0.0.1")
	clock.advance(11 * time.Minute)
	l.cleanup()

	l.mu.Lock()
	_, kept := l.offenders["10.0.0.1"]
	l.mu.Unlock()
	if kept {
		t.Error("cleanup should drop expired offenders")
	}
}

func TestBadRequestLimiterDefaults(t *testing.T) {
	l := NewBadRequestLimiter(config.RateLimitConfig{})
	defer l.Stop()

	if l.maxStrikes != 10 || l.lockout != 30*time.Second || l.maxLockout != 5*time.Minute {
		t.Errorf("defaults = %d, %v, %v", l.maxStrikes, l.lockout, l.maxLockout)
	}
	l.Stop()
}
