package redisserver

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// rateLimiter holds one token bucket per client IP. Buckets are reference
// counted by open connections and dropped when the last one closes.
type rateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	refs int
}

// newRateLimiter returns nil when requestsPerSecond is not positive.
func newRateLimiter(requestsPerSecond int) *rateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:   rate.Limit(requestsPerSecond),
		burst:   requestsPerSecond,
		buckets: make(map[string]*bucket),
	}
}

// acquire returns the limiter for ip and pins it until release.
func (rl *rateLimiter) acquire(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[ip] = b
	}
	b.refs++
	return b.lim
}

func (rl *rateLimiter) release(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		return
	}
	b.refs--
	if b.refs <= 0 {
		delete(rl.buckets, ip)
	}
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// remoteIP strips the port from addr. Addresses without one (net.Pipe,
// unix sockets) are returned as-is.
func remoteIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
