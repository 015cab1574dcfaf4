// Package ratelimit limits requests per client IP with token buckets.
//
// Each client address gets its own bucket that refills at Rate tokens per
// second up to Burst. Buckets idle for longer than EntryTTL are dropped by a
// background sweep; call Stop to end it.
package ratelimit

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// Defaults applied by New.
const (
	DefaultRate            = 100
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 1 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	Rate            float64       // tokens per second
	Burst           int           // maximum bucket capacity, defaults to 2*Rate
	TrustedProxies  []string      // CIDRs or single addresses allowed to set X-Forwarded-For
	CleanupInterval time.Duration // how often idle buckets are swept
	EntryTTL        time.Duration // how long a bucket lives without activity
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the wait until the next token when denied, or until the
	// bucket is full again when allowed. Whole seconds, at least 1 when non-zero.
	RetryAfter int64
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// Limiter is a per-IP token-bucket rate limiter.
type Limiter struct {
	rate     float64
	burst    int
	ttl      time.Duration
	interval time.Duration
	trusted  []netip.Prefix
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a Limiter and starts its cleanup goroutine.
// Unparseable trusted proxy entries are ignored.
func New(cfg Config) *Limiter {
	l := newLimiter(cfg, time.Now)
	go l.sweep()
	return l
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	rate := cfg.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rate * 2)
	}
	l := &Limiter{
		rate:     rate,
		burst:    burst,
		ttl:      cfg.EntryTTL,
		interval: cfg.CleanupInterval,
		now:      now,
		buckets:  make(map[string]*bucket),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	if l.ttl <= 0 {
		l.ttl = DefaultEntryTTL
	}
	if l.interval <= 0 {
		l.interval = DefaultCleanupInterval
	}
	for _, entry := range cfg.TrustedProxies {
		if p, ok := parsePrefix(entry); ok {
			l.trusted = append(l.trusted, p)
		}
	}
	return l
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int { return l.burst }

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Allow takes one token from the bucket of client.
func (l *Limiter) Allow(client string) Decision {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastUpdate: now}
		l.buckets[client] = b
	}
	l.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastUpdate).Seconds() * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastUpdate = now

	d := Decision{Limit: l.burst}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
		d.Remaining = int(b.tokens)
		d.RetryAfter = l.seconds(float64(l.burst) - b.tokens)
		return d
	}
	d.RetryAfter = l.seconds(1 - b.tokens)
	if d.RetryAfter < 1 {
		d.RetryAfter = 1
	}
	return d
}

// seconds converts a token deficit to whole seconds, rounding small waits up to 1.
func (l *Limiter) seconds(deficit float64) int64 {
	if deficit <= 0 {
		return 0
	}
	s := int64(deficit / l.rate)
	if s < 1 {
		s = 1
	}
	return s
}

// ClientIP returns the address rate limits apply to. Forwarding headers are
// honoured only when the direct peer is a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := remoteIP(r.RemoteAddr)
	if !l.isTrusted(remote) {
		return remote
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	return remote
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		<-l.doneCh
	})
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.doneCh)

	for {
		select {
		case <-ticker.C:
			l.removeIdle()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) removeIdle() {
	cutoff := l.now().Add(-l.ttl)

	l.mu.Lock()
	defer l.mu.Unlock()

	for client, b := range l.buckets {
		b.mu.Lock()
		if b.lastUpdate.Before(cutoff) {
			delete(l.buckets, client)
		}
		b.mu.Unlock()
	}
}

func (l *Limiter) isTrusted(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range l.trusted {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

func parsePrefix(s string) (netip.Prefix, bool) {
	s = strings.TrimSpace(s)
	if p, err := netip.ParsePrefix(s); err == nil {
		return p.Masked(), true
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return netip.PrefixFrom(addr, addr.BitLen()), true
	}
	return netip.Prefix{}, false
}

func remoteIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
