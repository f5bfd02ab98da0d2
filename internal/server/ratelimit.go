package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/mazeforge/internal/config"
)

// BadRequestLimiter locks out client IPs that keep sending requests the
// server cannot parse or answer. Each lockout doubles the previous one, up to
// a ceiling.
type BadRequestLimiter struct {
	mu          sync.Mutex
	offenders   map[string]*offender
	maxStrikes  int
	lockout     time.Duration
	maxLockout  time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type offender struct {
	strikes     int
	lockouts    int
	lockedUntil time.Time
}

// NewBadRequestLimiter starts a limiter. Call Stop to end its cleanup loop.
func NewBadRequestLimiter(cfg config.RateLimitConfig) *BadRequestLimiter {
	l := &BadRequestLimiter{
		offenders:   make(map[string]*offender),
		maxStrikes:  cfg.MaxBadRequests,
		lockout:     time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:  time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if l.maxStrikes <= 0 {
		l.maxStrikes = 10
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Second
	}
	if l.maxLockout < l.lockout {
		l.maxLockout = max(l.lockout, 5*time.Minute)
	}

	go l.cleanupLoop(5 * time.Minute)
	return l
}

// Stop ends the cleanup loop.
func (l *BadRequestLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// Locked reports whether ip is locked out and for how much longer.
func (l *BadRequestLimiter) Locked(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.offenders[ip]
	if !ok {
		return false, 0
	}
	if now := l.now(); now.Before(o.lockedUntil) {
		return true, o.lockedUntil.Sub(now)
	}
	return false, 0
}

// Strike records one bad request from ip and reports whether that put ip
// (or kept it) behind a lockout.
func (l *BadRequestLimiter) Strike(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.offenders[ip]
	if !ok {
		o = &offender{}
		l.offenders[ip] = o
	}

	now := l.now()
	if now.Before(o.lockedUntil) {
		return true, o.lockedUntil.Sub(now)
	}

	o.strikes++
	if o.strikes < l.maxStrikes {
		return false, 0
	}

	o.lockouts++
	d := l.lockout
	for i := 1; i < o.lockouts && d < l.maxLockout; i++ {
		d *= 2
	}
	d = min(d, l.maxLockout)

	o.lockedUntil = now.Add(d)
	o.strikes = 0
	return true, d
}

// Forgive clears every strike and lockout recorded for ip.
func (l *BadRequestLimiter) Forgive(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.offenders, ip)
}

// Strikes returns the strikes ip has collected towards its next lockout.
func (l *BadRequestLimiter) Strikes(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o, ok := l.offenders[ip]; ok {
		return o.strikes
	}
	return 0
}

func (l *BadRequestLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCleanup:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup drops offenders whose lockout ended over ten minutes ago and who
// have not struck since.
func (l *BadRequestLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-10 * time.Minute)
	for ip, o := range l.offenders {
		if o.lockedUntil.Before(cutoff) && o.strikes == 0 {
			delete(l.offenders, ip)
		}
	}
}
